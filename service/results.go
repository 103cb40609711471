package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dwqueries/models"
	"dwqueries/transcript"
)

type ResultsStorage struct {
	resultsDir string
	now        func() time.Time
}

func NewResultsStorage(resultsDir string) (*ResultsStorage, error) {
	if err := os.MkdirAll(resultsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	return &ResultsStorage{
		resultsDir: resultsDir,
		now:        time.Now,
	}, nil
}

// GenerateFileName creates a unique filename from the query name and a timestamp.
func (r *ResultsStorage) GenerateFileName(queryName, format string) string {
	now := r.now()
	stem := strings.TrimSuffix(filepath.Base(queryName), filepath.Ext(queryName))
	return fmt.Sprintf("%s_%s_%d.%s", stem, now.Format("20060102_150405"), now.UnixNano(), format)
}

// SaveResult writes rs as JSON or CSV and returns the file name.
func (r *ResultsStorage) SaveResult(rs *models.ResultSet, queryName, format string) (string, error) {
	switch format {
	case "csv":
		return r.SaveResultAsCSV(rs, queryName)
	case "json", "":
		return r.SaveResultAsJSON(rs, queryName)
	default:
		return "", fmt.Errorf("unsupported result format %q", format)
	}
}

// SaveResultAsJSON saves a result set as a JSON file. Missing cells are null.
func (r *ResultsStorage) SaveResultAsJSON(rs *models.ResultSet, queryName string) (string, error) {
	filename := r.GenerateFileName(queryName, "json")
	filePath := filepath.Join(r.resultsDir, filename)

	resultData := models.ResultFile{
		Filename:  filename,
		Query:     queryName,
		Timestamp: r.now().Format(time.RFC3339),
		Columns:   []string{},
		Rows:      [][]interface{}{},
	}
	if rs != nil {
		resultData.Columns = rs.Columns
		for _, row := range rs.Rows {
			values := make([]interface{}, len(row))
			for i, c := range row {
				if !c.Missing {
					values[i] = c.Value
				}
			}
			resultData.Rows = append(resultData.Rows, values)
		}
		resultData.RowCount = len(rs.Rows)
	}

	data, err := json.MarshalIndent(resultData, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return filename, nil
}

// SaveResultAsCSV saves a result set as a CSV file. Missing cells are empty.
func (r *ResultsStorage) SaveResultAsCSV(rs *models.ResultSet, queryName string) (string, error) {
	filename := r.GenerateFileName(queryName, "csv")
	filePath := filepath.Join(r.resultsDir, filename)

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if rs != nil {
		if err := writer.Write(rs.Columns); err != nil {
			return "", fmt.Errorf("failed to write CSV header: %w", err)
		}

		for _, row := range rs.Rows {
			record := make([]string, len(row))
			for i, c := range row {
				if !c.Missing {
					record[i] = transcript.FormatCell(c)
				}
			}
			if err := writer.Write(record); err != nil {
				return "", fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}

	return filename, nil
}

// GetResultFile reads a result file
func (r *ResultsStorage) GetResultFile(filename string) (*models.ResultFile, error) {
	filePath := r.GetResultFilePath(filename)

	switch filepath.Ext(filename) {
	case ".json":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}

		var result models.ResultFile
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
		}

		return &result, nil

	case ".csv":
		file, err := os.Open(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer file.Close()

		reader := csv.NewReader(file)
		records, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		info, err := file.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat CSV file: %w", err)
		}

		result := &models.ResultFile{
			Filename:  filename,
			Columns:   []string{},
			Rows:      [][]interface{}{},
			Timestamp: info.ModTime().Format(time.RFC3339),
		}
		if len(records) == 0 {
			return result, nil
		}

		// First row is header
		result.Columns = records[0]
		for _, record := range records[1:] {
			row := make([]interface{}, len(record))
			for j, val := range record {
				row[j] = val
			}
			result.Rows = append(result.Rows, row)
		}
		result.RowCount = len(result.Rows)

		return result, nil
	}

	return nil, fmt.Errorf("unsupported file format")
}

// ListResultFiles returns all result files
func (r *ResultsStorage) ListResultFiles() ([]models.ResultFileInfo, error) {
	files, err := os.ReadDir(r.resultsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read results directory: %w", err)
	}

	resultFiles := []models.ResultFileInfo{}
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		ext := filepath.Ext(file.Name())
		if ext != ".json" && ext != ".csv" {
			continue
		}

		info, err := file.Info()
		if err != nil {
			continue
		}

		resultFiles = append(resultFiles, models.ResultFileInfo{
			Filename: file.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().Format(time.RFC3339),
			Format:   ext[1:], // Remove the dot
		})
	}

	return resultFiles, nil
}

// GetResultFilePath returns the full path to a result file
func (r *ResultsStorage) GetResultFilePath(filename string) string {
	return filepath.Join(r.resultsDir, filepath.Base(filename))
}
