package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dwqueries/db"
	"dwqueries/models"
	"dwqueries/queries"
	"dwqueries/transcript"
	"dwqueries/warehouse"
)

// QueryExecutor runs one statement against the warehouse.
type QueryExecutor interface {
	Execute(ctx context.Context, sqlText string, params []models.ParamValue) (*models.ResultSet, error)
	Ping(ctx context.Context) error
	Driver() string
	State() warehouse.State
}

type RunOptions struct {
	Save   bool
	Format string // "json" or "csv"
}

// RunOutcome describes one query run.
type RunOutcome struct {
	Query    string              `json:"query"`
	Params   []models.ParamValue `json:"params,omitempty"`
	Result   *models.ResultSet   `json:"result,omitempty"`
	Text     string              `json:"text"`
	Filename string              `json:"filename,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// Runner executes query files for one session and appends every run to the
// session transcript.
type Runner struct {
	exec    QueryExecutor
	writer  *transcript.Writer
	store   *db.DB
	results *ResultsStorage
	logger  *slog.Logger

	sessionID string

	// runMu keeps transcript order equal to execution order.
	runMu sync.Mutex

	mu      sync.Mutex
	seq     int
	history strings.Builder
}

// NewRunner creates a session. store and results may be nil.
func NewRunner(exec QueryExecutor, writer *transcript.Writer, store *db.DB, results *ResultsStorage, logger *slog.Logger) *Runner {
	return &Runner{
		exec:      exec,
		writer:    writer,
		store:     store,
		results:   results,
		logger:    logger,
		sessionID: uuid.NewString(),
	}
}

func (r *Runner) SessionID() string { return r.sessionID }

func (r *Runner) Executor() QueryExecutor { return r.exec }

// Transcript returns the text of every run of this session so far.
func (r *Runner) Transcript() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.String()
}

// Run coerces raw parameters, executes qf and writes the run to the
// transcript.
//
// A *queries.ParamCoercionError is returned before anything is executed or
// written. Execution failures are written to the transcript in place of the
// table and returned alongside the outcome; the session stays usable.
func (r *Runner) Run(ctx context.Context, qf models.QueryFile, raw map[string]string, opts RunOptions) (*RunOutcome, error) {
	params, err := queries.CoerceAll(qf.Params, raw)
	if err != nil {
		return nil, err
	}

	r.runMu.Lock()
	defer r.runMu.Unlock()

	logger := r.logger.With("query", qf.Name, "session", r.sessionID)
	start := time.Now()

	rs, runErr := r.exec.Execute(ctx, qf.SQL, params)

	var execErr *warehouse.ExecutionError
	afterReconnect := errors.As(runErr, &execErr) && execErr.AfterReconnect

	text, err := r.writer.WriteRun(qf.Name, rs, runErr, afterReconnect)
	if err != nil {
		return nil, err
	}

	outcome := &RunOutcome{Query: qf.Name, Params: params, Result: rs, Text: text}
	if runErr != nil {
		outcome.Error = runErr.Error()
		logger.Error("query failed", "error", runErr, "after_reconnect", afterReconnect)
	} else {
		rows := 0
		if rs != nil {
			rows = len(rs.Rows)
		}
		logger.Info("query finished", "rows", rows, "driver", r.exec.Driver(), "duration", time.Since(start))
	}

	r.record(qf.Name, text, logger)

	if runErr == nil && opts.Save && r.results != nil {
		filename, err := r.results.SaveResult(rs, qf.Name, opts.Format)
		if err != nil {
			logger.Warn("failed to save result", "error", err)
		} else {
			outcome.Filename = filename
		}
	}

	return outcome, runErr
}

func (r *Runner) record(query, text string, logger *slog.Logger) {
	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.history.WriteString(text)
	r.mu.Unlock()

	if r.store == nil {
		return
	}
	err := r.store.AppendTranscript(models.TranscriptEntry{
		SessionID: r.sessionID,
		Seq:       seq,
		Query:     query,
		Text:      text,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		logger.Warn("failed to persist transcript entry", "error", err)
	}
}

// FindQuery returns the query file with the given name.
func FindQuery(files []models.QueryFile, name string) (models.QueryFile, error) {
	for _, f := range files {
		if f.Name == name {
			return f, nil
		}
	}
	return models.QueryFile{}, fmt.Errorf("query %s: %w", name, ErrQueryNotFound)
}

var ErrQueryNotFound = errors.New("query not found")
