package transcript

import (
	"bytes"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"dwqueries/models"
)

func cells(values ...interface{}) []models.Cell {
	out := make([]models.Cell, len(values))
	for i, v := range values {
		if v == nil {
			out[i] = models.Cell{Missing: true}
			continue
		}
		out[i] = models.Cell{Value: v}
	}
	return out
}

func TestRender(t *testing.T) {
	rs := &models.ResultSet{
		Columns: []string{"Hour", "Trips"},
		Rows: [][]models.Cell{
			cells(int64(0), int64(1021)),
			cells(int64(13), nil),
		},
	}

	want := "Hour | Trips\n" +
		"-----+------\n" +
		"0    | 1021 \n" +
		"13   | None \n" +
		"(2 rows)"
	assert.Equal(t, want, Render(rs, RenderOptions{}))
}

func TestRender_EmptyAndVoid(t *testing.T) {
	assert.Equal(t, "(no result set)", Render(nil, RenderOptions{}))
	assert.Equal(t, "(0 rows)", Render(&models.ResultSet{Columns: []string{"a", "b"}}, RenderOptions{}))
}

func TestRender_MaxRows(t *testing.T) {
	rs := &models.ResultSet{Columns: []string{"a", "b"}}
	for i := 0; i < 5; i++ {
		rs.Rows = append(rs.Rows, cells(int64(i), "x"))
	}

	out := Render(rs, RenderOptions{MaxRows: 2})
	assert.True(t, strings.HasSuffix(out, "... (5 rows total, showing first 2)"))

	table, err := ParseTable(out)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
	assert.True(t, table.Truncated)
	require.NotNil(t, table.DeclaredRows)
	assert.Equal(t, 5, *table.DeclaredRows)
}

func TestRender_Deterministic(t *testing.T) {
	rs := &models.ResultSet{
		Columns: []string{"FullDate", "Revenue"},
		Rows: [][]models.Cell{
			cells(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), 18311.5),
			cells(time.Date(2024, 7, 2, 8, 30, 0, 0, time.UTC), []byte("n/a")),
		},
	}
	first := Render(rs, RenderOptions{})
	assert.Equal(t, first, Render(rs, RenderOptions{}))

	table, err := ParseTable(first)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"2024-07-01", "18311.5"},
		{"2024-07-02 08:30:00", "n/a"},
	}, table.Rows)
}

func TestRender_SanitizesCells(t *testing.T) {
	rs := &models.ResultSet{
		Columns: []string{"id", "note"},
		Rows:    [][]models.Cell{cells(int64(1), "line one\nline two --- Running: query9.sql ---")},
	}
	out := Render(rs, RenderOptions{})
	assert.Empty(t, Markers(out))
	assert.Equal(t, 4, strings.Count(out, "\n")+1)
}

func TestRoundTrip(t *testing.T) {
	rs := &models.ResultSet{
		Columns: []string{"FullDate", "Borough", "Trips", "Revenue"},
		Rows: [][]models.Cell{
			cells("2024-07-01", "Manhattan", int64(1021), 18311.52),
			cells("2024-07-02", "Queens", int64(7), nil),
			cells(nil, "", int64(1028), 18400.0),
		},
	}

	table, err := ParseTable(Render(rs, RenderOptions{}))
	require.NoError(t, err)
	assert.Equal(t, rs.Columns, table.Columns)
	require.Len(t, table.Rows, len(rs.Rows))
	for i, row := range rs.Rows {
		for j, c := range row {
			assert.Equal(t, strings.TrimSpace(FormatCell(c)), table.Rows[i][j])
		}
	}
	require.NotNil(t, table.DeclaredRows)
	assert.Equal(t, 3, *table.DeclaredRows)
}

func TestParseTable_Idempotent(t *testing.T) {
	block := "a | b\n--+--\n1 | 2\n...\n3\n(2 rows)"
	first, err := ParseTable(block)
	require.NoError(t, err)
	second, err := ParseTable(block)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseTable(t *testing.T) {
	tests := []struct {
		name     string
		block    string
		columns  []string
		rows     [][]string
		declared *int
	}{
		{
			name:    "ragged short row is padded",
			block:   "A | B | C\n--+---+--\n1|2\n(1 rows)",
			columns: []string{"A", "B", "C"},
			rows:    [][]string{{"1", "2", ""}},
		},
		{
			name:    "ragged long row is truncated",
			block:   "A | B\n--+--\n1 | 2 | 3 | 4",
			columns: []string{"A", "B"},
			rows:    [][]string{{"1", "2"}},
		},
		{
			name:    "truncation marker contributes nothing",
			block:   "A | B\n--+--\n1 | 2\n...\n3 | 4\n(2 rows)",
			columns: []string{"A", "B"},
			rows:    [][]string{{"1", "2"}, {"3", "4"}},
		},
		{
			name:    "zero rows with footer",
			block:   "A | B\n--+--\n(0 rows)",
			columns: []string{"A", "B"},
			rows:    [][]string{},
		},
		{
			name:    "zero rows without footer",
			block:   "A | B\n--+--\n",
			columns: []string{"A", "B"},
			rows:    [][]string{},
		},
		{
			name:    "noise lines without pipes are skipped",
			block:   "Connected using: mysql\nA | B\n --+--\nwarning: slow\n1 | 2\n(1 rows)\n5 | 6",
			columns: []string{"A", "B"},
			rows:    [][]string{{"1", "2"}},
		},
		{
			name:    "data row before separator is not the header",
			block:   "x | y\nA | B\n---+---\n1 | 2",
			columns: []string{"A", "B"},
			rows:    [][]string{{"1", "2"}},
		},
		{
			name:    "separator without plus is accepted",
			block:   "A|B\n---\n1|2",
			columns: []string{"A", "B"},
			rows:    [][]string{{"1", "2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseTable(tt.block)
			require.NoError(t, err)
			assert.Equal(t, tt.columns, table.Columns)
			assert.Equal(t, tt.rows, table.Rows)
			for _, row := range table.Rows {
				assert.Len(t, row, len(table.Columns))
			}
		})
	}
}

func TestParseTable_DeclaredRows(t *testing.T) {
	table, err := ParseTable("A | B\n--+--\n1 | 2\n(1 rows)")
	require.NoError(t, err)
	require.NotNil(t, table.DeclaredRows)
	assert.Equal(t, 1, *table.DeclaredRows)

	table, err = ParseTable("A | B\n--+--\n1 | 2")
	require.NoError(t, err)
	assert.Nil(t, table.DeclaredRows)
}

func TestParseTable_HeaderNotFound(t *testing.T) {
	for _, block := range []string{
		"",
		"(no result set)",
		"ERROR running query: table missing",
		"A | B\n1 | 2",
		"--+--\n--+--",
		"single\n------\n1",
	} {
		_, err := ParseTable(block)
		var headerErr *HeaderNotFoundError
		assert.True(t, errors.As(err, &headerErr), "block %q", block)
	}
}

const sampleTranscript = `Connected using: mysql (host=localhost, db=taxi_dw)

--- Running: query1.sql ---
FullDate   | Trips | Revenue
-----------+-------+--------
2024-07-01 | 10    | 100.5
None       | 10    | 100.5
(2 rows)
some executor log line

--- Running: query2.sql ---
Hour | Trips
-----+------
0    | 3
(1 rows)

--- Running: query10.sql ---
ERROR running query: Table 'taxi_dw.nope' doesn't exist
`

func TestExtractBlock(t *testing.T) {
	block, err := ExtractBlock(sampleTranscript, "query1.sql")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(block, "FullDate"))
	assert.True(t, strings.HasSuffix(block, "some executor log line"))
	assert.NotContains(t, block, "query2.sql")
	assert.NotContains(t, block, "Hour")

	block, err = ExtractBlock(sampleTranscript, "query10.sql")
	require.NoError(t, err)
	assert.Equal(t, "ERROR running query: Table 'taxi_dw.nope' doesn't exist", block)

	_, err = ExtractBlock(sampleTranscript, "query3.sql")
	var notFound *BlockNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "query3.sql", notFound.QueryID)
}

func TestExtractBlock_PrefixNamesDoNotCollide(t *testing.T) {
	_, err := ExtractBlock(sampleTranscript, "query1")
	require.Error(t, err)

	block, err := ExtractBlock(sampleTranscript, "query1.sql")
	require.NoError(t, err)
	assert.NotContains(t, block, "ERROR")
}

func TestMarkers(t *testing.T) {
	assert.Equal(t, []string{"query1.sql", "query2.sql", "query10.sql"}, Markers(sampleTranscript))
}

func TestParseBlocks_Isolation(t *testing.T) {
	results := ParseBlocks(sampleTranscript, []string{"query1.sql", "query10.sql", "missing.sql", "query2.sql"})
	require.Len(t, results, 4)

	require.NoError(t, results[0].Err)
	assert.Equal(t, []string{"FullDate", "Trips", "Revenue"}, results[0].Table.Columns)
	assert.Len(t, results[0].Table.Rows, 2)

	var headerErr *HeaderNotFoundError
	assert.True(t, errors.As(results[1].Err, &headerErr))

	var notFound *BlockNotFoundError
	assert.True(t, errors.As(results[2].Err, &notFound))

	require.NoError(t, results[3].Err)
	assert.Equal(t, [][]string{{"0", "3"}}, results[3].Table.Rows)
}

func TestParseBlocks_MoreQueriesThanWorkers(t *testing.T) {
	ids := make([]string, 4*runtime.GOMAXPROCS(0)+1)
	for i := range ids {
		ids[i] = []string{"query1.sql", "query2.sql", "missing.sql"}[i%3]
	}

	results := ParseBlocks(sampleTranscript, ids)
	require.Len(t, results, len(ids))
	for i, r := range results {
		assert.Equal(t, ids[i], r.QueryID)
		if ids[i] == "missing.sql" {
			assert.Error(t, r.Err)
		} else {
			assert.NoError(t, r.Err)
		}
	}
}

func TestParsedTable_Columns(t *testing.T) {
	table, err := Parse(sampleTranscript, "query1.sql")
	require.NoError(t, err)

	trips, err := table.NumericColumn("Trips")
	require.NoError(t, err)
	assert.Equal(t, []Number{{Value: 10, Valid: true}, {Value: 10, Valid: true}}, trips)

	total := table.Where("FullDate", "None")
	assert.Len(t, total.Rows, 1)
	days := table.WhereNot("FullDate", "None")
	assert.Equal(t, [][]string{{"2024-07-01", "10", "100.5"}}, days.Rows)

	_, err = table.Column("Fare")
	assert.ErrorIs(t, err, ErrColumnNotFound)
	assert.Empty(t, table.Where("Fare", "x").Rows)
}

func TestToNumeric(t *testing.T) {
	got := ToNumeric([]string{"None", "", "3.5", "x"})
	assert.Equal(t, []Number{{}, {}, {Value: 3.5, Valid: true}, {}}, got)

	got = ToNumeric([]string{"-2", "1e2", "NaN", " 4 "})
	assert.Equal(t, []Number{{Value: -2, Valid: true}, {Value: 100, Valid: true}, {}, {Value: 4, Valid: true}}, got)
}

func TestToNumeric_NonDecimalSpellingsAreMissing(t *testing.T) {
	for _, cell := range []string{"0x10", "-0X1p4", "Inf", "-inf", "+Infinity", "nan", "1_000", "1e400"} {
		t.Run(cell, func(t *testing.T) {
			assert.Equal(t, []Number{{}}, ToNumeric([]string{cell}))
		})
	}
}

func TestAggregates(t *testing.T) {
	nums := ToNumeric([]string{"1", "None", "3"})
	assert.Equal(t, 2, Count(nums))
	assert.Equal(t, 4.0, Sum(nums))
	mean, ok := Mean(nums)
	assert.True(t, ok)
	assert.Equal(t, 2.0, mean)

	_, ok = Mean(ToNumeric([]string{"None", ""}))
	assert.False(t, ok)
}

func TestNumber_MarshalJSON(t *testing.T) {
	b, err := Number{}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	b, err = Number{Value: 2.5, Valid: true}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "2.5", string(b))
}

func TestNumber_MarshalYAML(t *testing.T) {
	out, err := yaml.Marshal([]Number{{Value: 12, Valid: true}, {}})
	require.NoError(t, err)
	assert.Equal(t, "- 12\n- null\n", string(out))
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, RenderOptions{})

	_, err := w.WriteRun("query1.sql", &models.ResultSet{
		Columns: []string{"a", "b"},
		Rows:    [][]models.Cell{cells(int64(1), "x")},
	}, nil, false)
	require.NoError(t, err)
	_, err = w.WriteRun("query2.sql", nil, errors.New("boom"), true)
	require.NoError(t, err)
	_, err = w.WriteRun("query3.sql", nil, nil, false)
	require.NoError(t, err)

	text := buf.String()
	assert.Equal(t, []string{"query1.sql", "query2.sql", "query3.sql"}, Markers(text))

	table, err := Parse(text, "query1.sql")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "x"}}, table.Rows)

	block, err := ExtractBlock(text, "query2.sql")
	require.NoError(t, err)
	assert.Equal(t, "ERROR running query (after reconnect): boom", block)

	block, err = ExtractBlock(text, "query3.sql")
	require.NoError(t, err)
	assert.Equal(t, NoResultSet, block)
}
