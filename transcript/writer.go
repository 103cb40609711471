package transcript

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"dwqueries/models"
)

// Writer appends query runs to a transcript.
type Writer struct {
	mu   sync.Mutex
	out  io.Writer
	opts RenderOptions
}

func NewWriter(out io.Writer, opts RenderOptions) *Writer {
	return &Writer{out: out, opts: opts}
}

// Entry formats one run: a blank line, the marker, then the table or the
// error line. The returned text ends with a newline.
func Entry(name string, rs *models.ResultSet, runErr error, afterReconnect bool, opts RenderOptions) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(Marker(name))
	b.WriteString("\n")
	switch {
	case runErr != nil && afterReconnect:
		fmt.Fprintf(&b, "ERROR running query (after reconnect): %s\n", sanitize(runErr.Error()))
	case runErr != nil:
		fmt.Fprintf(&b, "ERROR running query: %s\n", sanitize(runErr.Error()))
	default:
		b.WriteString(Render(rs, opts))
		b.WriteString("\n")
	}
	return b.String()
}

// WriteRun appends one run and returns the text written.
func (w *Writer) WriteRun(name string, rs *models.ResultSet, runErr error, afterReconnect bool) (string, error) {
	text := Entry(name, rs, runErr, afterReconnect, w.opts)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := io.WriteString(w.out, text); err != nil {
		return text, fmt.Errorf("failed to write transcript: %w", err)
	}
	return text, nil
}
