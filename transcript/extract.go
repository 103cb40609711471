package transcript

import (
	"fmt"
	"regexp"
	"strings"
)

var markerPattern = regexp.MustCompile(`--- Running: (\S.*?) ---`)

// BlockNotFoundError means the transcript has no marker for the query.
type BlockNotFoundError struct {
	QueryID string
}

func (e *BlockNotFoundError) Error() string {
	return fmt.Sprintf("could not find output for %s in the transcript", e.QueryID)
}

// ExtractBlock returns the text between the marker of queryID and the next
// run marker (or the end of the transcript), trimmed of surrounding blank
// lines. When a query ran more than once the first run is used.
func ExtractBlock(text, queryID string) (string, error) {
	marker := Marker(queryID)
	start := strings.Index(text, marker)
	if start < 0 {
		return "", &BlockNotFoundError{QueryID: queryID}
	}

	block := text[start+len(marker):]
	if loc := markerPattern.FindStringIndex(block); loc != nil {
		block = block[:loc[0]]
	}
	return strings.TrimSpace(block), nil
}

// Markers lists the query identifiers of every run marker, in order.
func Markers(text string) []string {
	var ids []string
	for _, m := range markerPattern.FindAllStringSubmatch(text, -1) {
		ids = append(ids, m[1])
	}
	return ids
}
