package models

// ParamType is the declared type of a query parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
	ParamFloat   ParamType = "float"
)

type ParamSpec struct {
	Name    string    `json:"name"`
	Type    ParamType `json:"type"`
	RawType string    `json:"raw_type,omitempty"` // type as written in the directive
}

// ParamValue is a coerced runtime value bound to a ParamSpec.
// Value holds a string, int64 or float64 depending on Spec.Type.
type ParamValue struct {
	Spec  ParamSpec   `json:"spec"`
	Value interface{} `json:"value"`
}

// QueryFile is one executable .sql file discovered in the queries directory.
type QueryFile struct {
	Name   string      `json:"name"`
	Title  string      `json:"title"`
	SQL    string      `json:"sql,omitempty"`
	Params []ParamSpec `json:"params,omitempty"`
}

// Cell is one value of a result row. Missing marks SQL NULL.
type Cell struct {
	Value   interface{} `json:"value"`
	Missing bool        `json:"missing,omitempty"`
}

// ResultSet is the outcome of a statement that produced rows.
// A nil *ResultSet stands for a statement with no result set.
type ResultSet struct {
	Columns []string `json:"columns"`
	Rows    [][]Cell `json:"rows"`
}

type SQLFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ResultFile is a result set persisted to the results directory.
type ResultFile struct {
	Filename  string          `json:"filename"`
	Query     string          `json:"query,omitempty"`
	Timestamp string          `json:"timestamp"`
	Columns   []string        `json:"columns"`
	Rows      [][]interface{} `json:"rows"`
	RowCount  int             `json:"row_count"`
	Error     string          `json:"error,omitempty"`
}

type ResultFileInfo struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
	Format   string `json:"format"`
}

// TranscriptEntry is one query run appended to a session transcript.
type TranscriptEntry struct {
	SessionID string `json:"session_id"`
	Seq       int    `json:"seq"`
	Query     string `json:"query"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}
