// Package queries discovers .sql files and handles their parameter directives.
package queries

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"dwqueries/models"
)

var paramsDirective = regexp.MustCompile(`(?im)^\s*--\s*params\s*:\s*(.+?)\s*$`)

// ParamCoercionError reports raw input that does not parse as the declared type.
type ParamCoercionError struct {
	Param string
	Type  models.ParamType
	Input string
	Err   error
}

func (e *ParamCoercionError) Error() string {
	return fmt.Sprintf("parameter %s (%s): invalid value %q", e.Param, e.Type, e.Input)
}

func (e *ParamCoercionError) Unwrap() error { return e.Err }

// Discover lists the *.sql files in dir sorted by file name.
func Discover(dir string) ([]models.QueryFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read queries directory: %w", err)
	}

	// os.ReadDir returns entries sorted by filename.
	var files []models.QueryFile
	for _, entry := range entries {
		if !entry.Type().IsRegular() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		files = append(files, NewQueryFile(entry.Name(), string(content)))
	}
	return files, nil
}

// NewQueryFile builds a QueryFile from a file name and its SQL text.
func NewQueryFile(name, sqlText string) models.QueryFile {
	sqlText = strings.ToValidUTF8(sqlText, "")
	return models.QueryFile{
		Name:   name,
		Title:  Title(name, sqlText),
		SQL:    sqlText,
		Params: ParseParamSpecs(sqlText),
	}
}

// Title returns the first line's comment text, or the file stem when the
// file does not open with a comment.
func Title(name, sqlText string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	for _, line := range strings.Split(sqlText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "--") {
			return stem
		}
		if title := strings.TrimSpace(strings.TrimLeft(line, "- ")); title != "" {
			return title
		}
		return stem
	}
	return stem
}

// ParseParamSpecs reads the first "-- params: name[:type], ..." directive.
func ParseParamSpecs(sqlText string) []models.ParamSpec {
	m := paramsDirective.FindStringSubmatch(sqlText)
	if m == nil {
		return nil
	}

	var specs []models.ParamSpec
	for _, part := range strings.Split(m[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, rawType := part, "str"
		if i := strings.Index(part, ":"); i >= 0 {
			name = strings.TrimSpace(part[:i])
			rawType = strings.TrimSpace(part[i+1:])
		}
		rawType = strings.ToLower(rawType)
		specs = append(specs, models.ParamSpec{Name: name, Type: normalizeType(rawType), RawType: rawType})
	}
	return specs
}

func normalizeType(raw string) models.ParamType {
	switch raw {
	case "int", "integer", "bigint":
		return models.ParamInteger
	case "float", "double", "decimal":
		return models.ParamFloat
	default:
		return models.ParamString
	}
}

// Coerce converts raw user input to the declared type. It never substitutes
// a default: bad input is a *ParamCoercionError.
func Coerce(spec models.ParamSpec, raw string) (models.ParamValue, error) {
	switch spec.Type {
	case models.ParamInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return models.ParamValue{}, &ParamCoercionError{Param: spec.Name, Type: spec.Type, Input: raw, Err: err}
		}
		return models.ParamValue{Spec: spec, Value: n}, nil
	case models.ParamFloat:
		s := strings.TrimSpace(raw)
		if isHexOrSpecial(s) {
			return models.ParamValue{}, &ParamCoercionError{Param: spec.Name, Type: spec.Type, Input: raw}
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return models.ParamValue{}, &ParamCoercionError{Param: spec.Name, Type: spec.Type, Input: raw, Err: err}
		}
		return models.ParamValue{Spec: spec, Value: f}, nil
	default:
		return models.ParamValue{Spec: spec, Value: raw}, nil
	}
}

func isHexOrSpecial(s string) bool {
	s = strings.ToLower(strings.TrimLeft(s, "+-"))
	return strings.HasPrefix(s, "0x") || strings.Contains(s, "_") ||
		strings.HasPrefix(s, "inf") || strings.HasPrefix(s, "nan")
}

// CoerceAll coerces raw values for specs in declared order. A parameter
// without a raw value is coerced from the empty string.
func CoerceAll(specs []models.ParamSpec, raw map[string]string) ([]models.ParamValue, error) {
	values := make([]models.ParamValue, 0, len(specs))
	for _, spec := range specs {
		v, err := Coerce(spec, raw[spec.Name])
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// Args returns the positional driver arguments for values.
func Args(values []models.ParamValue) []interface{} {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v.Value
	}
	return args
}
