package queries

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwqueries/models"
)

func TestParseParamSpecs(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []models.ParamSpec
	}{
		{
			name: "no directive",
			sql:  "SELECT 1;",
			want: nil,
		},
		{
			name: "typed and bare names",
			sql:  "-- Trips per zone\n-- params: zone:int, ratio:double, label\nSELECT ?",
			want: []models.ParamSpec{
				{Name: "zone", Type: models.ParamInteger, RawType: "int"},
				{Name: "ratio", Type: models.ParamFloat, RawType: "double"},
				{Name: "label", Type: models.ParamString, RawType: "str"},
			},
		},
		{
			name: "case insensitive, first match wins",
			sql:  "SELECT 1\n  --  PARAMS :  n:BIGINT \n-- params: other:int",
			want: []models.ParamSpec{{Name: "n", Type: models.ParamInteger, RawType: "bigint"}},
		},
		{
			name: "unknown type falls back to string",
			sql:  "-- params: day:date, amount:decimal",
			want: []models.ParamSpec{
				{Name: "day", Type: models.ParamString, RawType: "date"},
				{Name: "amount", Type: models.ParamFloat, RawType: "decimal"},
			},
		},
		{
			name: "empty entries skipped",
			sql:  "-- params: a:integer, , b",
			want: []models.ParamSpec{
				{Name: "a", Type: models.ParamInteger, RawType: "integer"},
				{Name: "b", Type: models.ParamString, RawType: "str"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseParamSpecs(tt.sql))
		})
	}
}

func TestCoerce(t *testing.T) {
	intSpec := models.ParamSpec{Name: "n", Type: models.ParamInteger}
	floatSpec := models.ParamSpec{Name: "f", Type: models.ParamFloat}
	strSpec := models.ParamSpec{Name: "s", Type: models.ParamString}

	tests := []struct {
		name    string
		spec    models.ParamSpec
		raw     string
		want    interface{}
		wantErr bool
	}{
		{name: "integer", spec: intSpec, raw: "12", want: int64(12)},
		{name: "negative integer", spec: intSpec, raw: "-7", want: int64(-7)},
		{name: "integer rejects decimal", spec: intSpec, raw: "12.5", wantErr: true},
		{name: "integer rejects grouping", spec: intSpec, raw: "1,000", wantErr: true},
		{name: "integer rejects underscore", spec: intSpec, raw: "1_000", wantErr: true},
		{name: "integer rejects empty", spec: intSpec, raw: "", wantErr: true},
		{name: "float", spec: floatSpec, raw: "12.5", want: 12.5},
		{name: "float exponent", spec: floatSpec, raw: "1e3", want: 1000.0},
		{name: "float rejects text", spec: floatSpec, raw: "abc", wantErr: true},
		{name: "float rejects nan", spec: floatSpec, raw: "NaN", wantErr: true},
		{name: "float rejects hex", spec: floatSpec, raw: "0x1p3", wantErr: true},
		{name: "string unchanged", spec: strSpec, raw: "  Manhattan ", want: "  Manhattan "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Coerce(tt.spec, tt.raw)
			if tt.wantErr {
				var coerceErr *ParamCoercionError
				require.True(t, errors.As(err, &coerceErr))
				assert.Equal(t, tt.spec.Name, coerceErr.Param)
				assert.Equal(t, tt.raw, coerceErr.Input)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Value)
			assert.Equal(t, tt.spec, v.Spec)
		})
	}
}

func TestCoerceAll(t *testing.T) {
	specs := []models.ParamSpec{
		{Name: "zone", Type: models.ParamInteger},
		{Name: "borough", Type: models.ParamString},
	}

	values, err := CoerceAll(specs, map[string]string{"zone": "161", "borough": "Manhattan"})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(161), "Manhattan"}, Args(values))

	_, err = CoerceAll(specs, map[string]string{"borough": "Queens"})
	var coerceErr *ParamCoercionError
	require.True(t, errors.As(err, &coerceErr))
	assert.Equal(t, "zone", coerceErr.Param)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Revenue by day", Title("query1.sql", "\n\n-- Revenue by day\nSELECT 1"))
	assert.Equal(t, "query2", Title("query2.sql", "SELECT 1 -- not a title"))
	assert.Equal(t, "query3", Title("query3.sql", "---\nSELECT 1"))
	assert.Equal(t, "query4", Title("query4.sql", ""))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("query2.sql", "SELECT 2;")
	write("query1.sql", "-- KPIs\n-- params: month:int\nSELECT ?;")
	write("notes.txt", "ignored")
	write("query3.SQL", "ignored, suffix is case sensitive")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.sql"), 0o755))

	files, err := Discover(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "query1.sql", files[0].Name)
	assert.Equal(t, "KPIs", files[0].Title)
	assert.Equal(t, []models.ParamSpec{{Name: "month", Type: models.ParamInteger, RawType: "int"}}, files[0].Params)
	assert.Equal(t, "query2.sql", files[1].Name)
	assert.Equal(t, "query2", files[1].Title)
	assert.Empty(t, files[1].Params)
}

func TestDiscover_MissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
