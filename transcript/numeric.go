package transcript

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a parsed numeric cell. Valid is false for missing values.
type Number struct {
	Value float64
	Valid bool
}

// MarshalJSON encodes a missing Number as null.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// MarshalYAML encodes a missing Number as null.
func (n Number) MarshalYAML() (interface{}, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Value, nil
}

// ToNumeric converts cells to numbers. "None", "" and anything that does not
// parse become missing; it never fails.
func ToNumeric(cells []string) []Number {
	out := make([]Number, len(cells))
	for i, c := range cells {
		out[i] = parseNumber(c)
	}
	return out
}

func parseNumber(cell string) Number {
	s := strings.TrimSpace(cell)
	if s == "" || s == MissingValue || !isDecimal(s) {
		return Number{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Number{}
	}
	return Number{Value: f, Valid: true}
}

// isDecimal rejects the non-decimal spellings strconv.ParseFloat accepts:
// hex floats, digit separators and the Inf/NaN words.
func isDecimal(s string) bool {
	s = strings.ToLower(strings.TrimLeft(s, "+-"))
	return !strings.HasPrefix(s, "0x") && !strings.Contains(s, "_") &&
		!strings.HasPrefix(s, "inf") && !strings.HasPrefix(s, "nan")
}

// Count returns the number of present values.
func Count(nums []Number) int {
	n := 0
	for _, v := range nums {
		if v.Valid {
			n++
		}
	}
	return n
}

// Sum adds the present values. Missing values are skipped, not read as zero.
func Sum(nums []Number) float64 {
	var total float64
	for _, v := range nums {
		if v.Valid {
			total += v.Value
		}
	}
	return total
}

// Mean averages the present values. ok is false when none are present.
func Mean(nums []Number) (mean float64, ok bool) {
	n := Count(nums)
	if n == 0 {
		return 0, false
	}
	return Sum(nums) / float64(n), true
}
