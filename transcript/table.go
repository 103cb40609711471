package transcript

import (
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

var (
	footerPattern    = regexp.MustCompile(`^\((\d+) rows\)$`)
	truncatedPattern = regexp.MustCompile(`^\.\.\. \((\d+) rows total`)
)

// HeaderNotFoundError means a block has no header line followed by a
// dash separator line.
type HeaderNotFoundError struct{}

func (e *HeaderNotFoundError) Error() string {
	return "could not locate table header in block"
}

// ErrColumnNotFound is returned when a ParsedTable has no such column.
var ErrColumnNotFound = errors.New("column not found")

// ParsedTable is a table reconstructed from transcript text. Every row has
// exactly len(Columns) fields.
type ParsedTable struct {
	Columns      []string   `json:"columns" yaml:"columns"`
	Rows         [][]string `json:"rows" yaml:"rows"`
	DeclaredRows *int       `json:"declared_rows,omitempty" yaml:"declared_rows,omitempty"`
	Truncated    bool       `json:"truncated,omitempty" yaml:"truncated,omitempty"`
}

type parseState int

const (
	seekHeader parseState = iota
	readRows
	done
)

// ParseTable reconstructs the ASCII table in block.
//
// The header is the first line with a "|" that is immediately followed by a
// separator line. Data lines with too few fields are padded with empty
// strings and lines with too many are cut to the header width. Lines
// starting with "..." and lines without "|" contribute no row. A line like
// "(12 rows)" ends the table.
func ParseTable(block string) (*ParsedTable, error) {
	lines := strings.Split(strings.ReplaceAll(block, "\r\n", "\n"), "\n")

	table := &ParsedTable{Rows: [][]string{}}
	state := seekHeader
	for i := 0; i < len(lines) && state != done; i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch state {
		case seekHeader:
			if !strings.Contains(line, "|") || isSeparator(line) {
				continue
			}
			if i+1 < len(lines) && isSeparator(lines[i+1]) {
				table.Columns = splitFields(line)
				state = readRows
				i++
			}

		case readRows:
			switch {
			case strings.HasPrefix(trimmed, "(") && strings.Contains(trimmed, "rows"):
				if m := footerPattern.FindStringSubmatch(trimmed); m != nil {
					table.DeclaredRows = atoiPtr(m[1])
				}
				state = done
			case strings.HasPrefix(trimmed, "..."):
				if m := truncatedPattern.FindStringSubmatch(trimmed); m != nil {
					table.DeclaredRows = atoiPtr(m[1])
					table.Truncated = true
				}
			case !strings.Contains(line, "|"):
			default:
				table.Rows = append(table.Rows, reconcile(splitFields(line), len(table.Columns)))
			}
		}
	}

	if state == seekHeader {
		return nil, &HeaderNotFoundError{}
	}
	return table, nil
}

// isSeparator reports whether line is made only of dashes and plus signs
// after optional leading whitespace, with at least one dash.
func isSeparator(line string) bool {
	s := strings.TrimRight(strings.TrimLeft(line, " \t"), " \t\r")
	if !strings.HasPrefix(s, "-") {
		return false
	}
	return strings.Trim(s, "-+") == ""
}

func splitFields(line string) []string {
	fields := strings.Split(line, "|")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func reconcile(fields []string, width int) []string {
	if len(fields) > width {
		return fields[:width]
	}
	for len(fields) < width {
		fields = append(fields, "")
	}
	return fields
}

func atoiPtr(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// ColumnIndex returns the position of the named column, or -1.
func (t *ParsedTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns the cells of the named column in row order.
func (t *ParsedTable) Column(name string) ([]string, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	cells := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = row[idx]
	}
	return cells, nil
}

// NumericColumn returns the named column normalized with ToNumeric.
func (t *ParsedTable) NumericColumn(name string) ([]Number, error) {
	cells, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	return ToNumeric(cells), nil
}

// Where returns a copy holding only the rows whose column equals value.
// An unknown column yields no rows.
func (t *ParsedTable) Where(column, value string) *ParsedTable {
	return t.filter(column, func(cell string) bool { return cell == value })
}

// WhereNot returns a copy holding only the rows whose column differs from value.
func (t *ParsedTable) WhereNot(column, value string) *ParsedTable {
	return t.filter(column, func(cell string) bool { return cell != value })
}

func (t *ParsedTable) filter(column string, keep func(string) bool) *ParsedTable {
	out := &ParsedTable{Columns: t.Columns, Rows: [][]string{}}
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return out
	}
	for _, row := range t.Rows {
		if keep(row[idx]) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// BlockResult is the outcome of parsing one query's block.
type BlockResult struct {
	QueryID string
	Table   *ParsedTable
	Err     error
}

// Parse extracts and parses the block of one query.
func Parse(text, queryID string) (*ParsedTable, error) {
	block, err := ExtractBlock(text, queryID)
	if err != nil {
		return nil, err
	}
	return ParseTable(block)
}

// ParseBlocks parses several queries of one transcript concurrently. Each
// identifier gets its own result; a failing block does not affect the others.
func ParseBlocks(text string, queryIDs []string) []BlockResult {
	results := make([]BlockResult, len(queryIDs))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, id := range queryIDs {
		g.Go(func() error {
			table, err := Parse(text, id)
			results[i] = BlockResult{QueryID: id, Table: table, Err: err}
			return nil
		})
	}
	// Parse errors live in results; the group only bounds and joins the work.
	g.Wait()
	return results
}
