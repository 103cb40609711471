// Package transcript renders result sets as ASCII tables and recovers
// structured tables from transcripts made of such renderings.
//
// The format is the one a human reads on a terminal:
//
//	--- Running: query1.sql ---
//	FullDate   | Trips | Revenue
//	-----------+-------+--------
//	2024-07-01 | 1021  | 18311.5
//	(1 rows)
//
// Nothing is escaped. A cell containing "|" shifts the columns of its row;
// the parser pads or truncates such rows instead of rejecting them.
package transcript

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"dwqueries/models"
)

const (
	markerPrefix = "--- Running:"
	markerSuffix = " ---"

	// NoResultSet is printed for statements that returned no result set.
	NoResultSet = "(no result set)"
	// MissingValue is printed for NULL cells.
	MissingValue = "None"
)

// RenderOptions controls Render. The zero value prints every row.
type RenderOptions struct {
	MaxRows int
}

// Marker returns the run marker line for a query name.
func Marker(name string) string {
	return markerPrefix + " " + name + markerSuffix
}

// Render prints rs as an ASCII table followed by a row-count footer.
// A nil rs renders as "(no result set)".
func Render(rs *models.ResultSet, opts RenderOptions) string {
	if rs == nil {
		return NoResultSet
	}
	if len(rs.Rows) == 0 {
		return "(0 rows)"
	}

	shown := rs.Rows
	if opts.MaxRows > 0 && len(shown) > opts.MaxRows {
		shown = shown[:opts.MaxRows]
	}

	cols := make([]string, len(rs.Columns))
	widths := make([]int, len(rs.Columns))
	for i, c := range rs.Columns {
		cols[i] = sanitize(c)
		widths[i] = utf8.RuneCountInString(cols[i])
	}

	data := make([][]string, len(shown))
	for r, row := range shown {
		data[r] = make([]string, len(cols))
		for i := range cols {
			if i < len(row) {
				data[r][i] = FormatCell(row[i])
			}
			if n := utf8.RuneCountInString(data[r][i]); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	writeRow(&b, cols, widths)

	dashes := make([]string, len(widths))
	for i, w := range widths {
		dashes[i] = strings.Repeat("-", w)
	}
	b.WriteString(strings.Join(dashes, "-+-"))
	b.WriteByte('\n')

	for _, row := range data {
		writeRow(&b, row, widths)
	}

	if len(shown) < len(rs.Rows) {
		fmt.Fprintf(&b, "... (%d rows total, showing first %d)", len(rs.Rows), len(shown))
	} else {
		fmt.Fprintf(&b, "(%d rows)", len(rs.Rows))
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	for i, c := range cells {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(c)
		if pad := widths[i] - utf8.RuneCountInString(c); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
	}
	b.WriteByte('\n')
}

// FormatCell returns the printed form of one cell.
func FormatCell(c models.Cell) string {
	if c.Missing || c.Value == nil {
		return MissingValue
	}

	var s string
	switch v := c.Value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		s = strconv.FormatBool(v)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			s = v.Format("2006-01-02")
		} else {
			s = v.Format("2006-01-02 15:04:05")
		}
	default:
		s = fmt.Sprint(v)
	}
	return sanitize(s)
}

// sanitize keeps cell text on one line and out of the run-marker namespace.
func sanitize(s string) string {
	if strings.ContainsAny(s, "\r\n") {
		s = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(s)
	}
	if strings.Contains(s, markerPrefix) {
		s = strings.ReplaceAll(s, markerPrefix, "--- Running :")
	}
	return s
}
