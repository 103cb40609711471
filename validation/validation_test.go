package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidQueryName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain", "query1.sql", true},
		{"upper extension", "Query1.SQL", false},
		{"missing extension", "query1", false},
		{"extension only", ".sql", false},
		{"wrong extension", "query1.txt", false},
		{"subdirectory", "sub/query1.sql", false},
		{"windows separator", `sub\query1.sql`, false},
		{"parent reference", "../query1.sql", false},
		{"surrounding space", " query1.sql", false},
		{"control char", "query\n1.sql", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidQueryName(tt.input))
		})
	}
}

func TestIsValidParamName(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"zone", true},
		{"_start_date", true},
		{"zone2", true},
		{"2zone", false},
		{"zone-id", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidParamName(tt.input))
		})
	}
}

func TestIsValidResultFilename(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"query1_20240701_120000_1.json", true},
		{"query1_20240701_120000_1.csv", true},
		{"query1.html", false},
		{"../secret.json", false},
		{"dir/file.csv", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidResultFilename(tt.input))
		})
	}
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, IsValidFormat(""))
	assert.True(t, IsValidFormat("json"))
	assert.True(t, IsValidFormat("csv"))
	assert.False(t, IsValidFormat("xml"))
}
