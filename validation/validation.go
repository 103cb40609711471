package validation

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var paramNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsValidQueryName reports whether name can address a query file in the
// queries directory. It must be a bare file name ending in .sql.
func IsValidQueryName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if trimmed != name || len(name) <= len(".sql") {
		return false
	}

	if filepath.Ext(name) != ".sql" {
		return false
	}

	return isBareFileName(name)
}

// IsValidParamName reports whether name is a usable parameter identifier.
func IsValidParamName(name string) bool {
	return paramNamePattern.MatchString(name)
}

// IsValidResultFilename reports whether filename can address a saved result
// file. Only .json and .csv files directly inside the results directory are
// served.
func IsValidResultFilename(filename string) bool {
	if !isBareFileName(filename) {
		return false
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json", ".csv":
		return true
	}
	return false
}

// IsValidFormat reports whether format is a supported result file format.
// Empty selects the default (json).
func IsValidFormat(format string) bool {
	switch format {
	case "", "json", "csv":
		return true
	}
	return false
}

// isBareFileName rejects empty names, path separators, parent references
// and control characters.
func isBareFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
