package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"dwqueries/models"
	"dwqueries/transcript"
)

// parsedQuery is the structured output for one query of a transcript.
type parsedQuery struct {
	Query   string                         `json:"query" yaml:"query"`
	Table   *transcript.ParsedTable        `json:"table,omitempty" yaml:"table,omitempty"`
	Numeric map[string][]transcript.Number `json:"numeric,omitempty" yaml:"numeric,omitempty"`
	Error   string                         `json:"error,omitempty" yaml:"error,omitempty"`
}

// errParseFailed marks a parse run where at least one query failed. The
// per-query errors have already been reported.
var errParseFailed = errors.New("one or more queries could not be parsed")

func newParseCmd() *cobra.Command {
	var (
		path    string
		ids     []string
		numeric []string
	)

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse the tables of one or more queries from a transcript",
		Long:  "Reads a transcript file (or stdin with '-') and reconstructs the table printed for each --query.",
		Example: `  dwqueries parse --transcript session.log --query query1.sql --query query2.sql
  dwqueries parse --transcript - --query query3.sql --numeric Trips -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := readTranscript(cmd, path)
			if err != nil {
				return err
			}

			results := make([]parsedQuery, 0, len(ids))
			failed := false
			for _, res := range transcript.ParseBlocks(text, ids) {
				pq := parsedQuery{Query: res.QueryID, Table: res.Table}
				if res.Err != nil {
					pq.Error = res.Err.Error()
					failed = true
				} else if len(numeric) > 0 {
					pq.Numeric = make(map[string][]transcript.Number, len(numeric))
					for _, col := range numeric {
						nums, err := res.Table.NumericColumn(col)
						if err != nil {
							pq.Error = err.Error()
							failed = true
							continue
						}
						pq.Numeric[col] = nums
					}
				}
				results = append(results, pq)
			}

			done, err := printStructured(cmd, results)
			if !done {
				err = printParsedTables(cmd.OutOrStdout(), cmd.ErrOrStderr(), results, numeric)
			}
			if err != nil {
				return err
			}
			if failed {
				return errParseFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "transcript", "-", "Transcript file, or - for stdin")
	cmd.Flags().StringArrayVarP(&ids, "query", "q", nil, "Query identifier to parse, e.g. query1.sql (repeatable)")
	cmd.Flags().StringArrayVar(&numeric, "numeric", nil, "Column to normalize as numbers (repeatable)")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func readTranscript(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read transcript from stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}
	return string(data), nil
}

// printParsedTables writes each table back in transcript form, followed by
// count, sum and mean for every numeric column.
func printParsedTables(out, errOut io.Writer, results []parsedQuery, numeric []string) error {
	for _, pq := range results {
		if pq.Table == nil {
			fmt.Fprintf(errOut, "%s: %s\n", pq.Query, pq.Error)
			continue
		}

		entry := transcript.Entry(pq.Query, toResultSet(pq.Table), nil, false, transcript.RenderOptions{})
		if _, err := io.WriteString(out, entry); err != nil {
			return err
		}

		for _, col := range numeric {
			nums, ok := pq.Numeric[col]
			if !ok {
				continue
			}
			mean := transcript.MissingValue
			if m, ok := transcript.Mean(nums); ok {
				mean = strconv.FormatFloat(m, 'f', -1, 64)
			}
			fmt.Fprintf(out, "%s: count=%d sum=%s mean=%s\n", col, transcript.Count(nums),
				strconv.FormatFloat(transcript.Sum(nums), 'f', -1, 64), mean)
		}
		if pq.Error != "" {
			fmt.Fprintf(errOut, "%s: %s\n", pq.Query, pq.Error)
		}
	}
	return nil
}

func toResultSet(t *transcript.ParsedTable) *models.ResultSet {
	rs := &models.ResultSet{Columns: t.Columns, Rows: make([][]models.Cell, len(t.Rows))}
	for i, row := range t.Rows {
		cells := make([]models.Cell, len(row))
		for j, v := range row {
			cells[j] = models.Cell{Value: v, Missing: v == transcript.MissingValue}
		}
		rs.Rows[i] = cells
	}
	return rs
}
