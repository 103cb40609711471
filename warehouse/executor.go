package warehouse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"dwqueries/config"
	"dwqueries/models"
	"dwqueries/queries"
)

// State is the executor's connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateExecuting    State = "executing"
)

// Attempt records why one backend failed to connect.
type Attempt struct {
	Backend string
	Err     error
}

// ConnectionError lists every backend that was tried and why it failed.
type ConnectionError struct {
	Attempts []Attempt
}

func (e *ConnectionError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %v", a.Backend, a.Err)
	}
	if len(parts) == 0 {
		return "failed to connect to the warehouse: no backends configured"
	}
	return "failed to connect to the warehouse (" + strings.Join(parts, "; ") + ")"
}

func (e *ConnectionError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a.Err
	}
	return errs
}

// StaleConnectionError wraps a driver error that the active backend
// recognized as a dropped connection.
type StaleConnectionError struct {
	Backend string
	Err     error
}

func (e *StaleConnectionError) Error() string {
	return fmt.Sprintf("stale %s connection: %v", e.Backend, e.Err)
}

func (e *StaleConnectionError) Unwrap() error { return e.Err }

// ExecutionError is a statement failure reported for one query.
// AfterReconnect is set when it happened on the retry following a stale
// connection, or when that reconnect itself failed.
type ExecutionError struct {
	AfterReconnect bool
	Err            error
}

func (e *ExecutionError) Error() string {
	return e.Err.Error()
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// ResolveConnection tries backends in order and returns the first one that
// connects and answers a ping.
func ResolveConnection(ctx context.Context, cfg config.Warehouse, backends []Backend, logger *slog.Logger) (Conn, Backend, error) {
	connErr := &ConnectionError{}
	for _, b := range backends {
		conn, err := b.Open(ctx, cfg)
		if err != nil {
			logger.Debug("warehouse backend failed", "backend", b.Name(), "addr", cfg.Addr(), "error", err)
			connErr.Attempts = append(connErr.Attempts, Attempt{Backend: b.Name(), Err: err})
			continue
		}
		logger.Info("connected to warehouse", "backend", b.Name(), "addr", cfg.Addr(), "database", cfg.Database)
		return conn, b, nil
	}
	return nil, nil, connErr
}

// Executor owns the warehouse connection and runs one statement at a time.
type Executor struct {
	mu       sync.Mutex
	cfg      config.Warehouse
	backends []Backend
	logger   *slog.Logger

	conn    Conn
	backend Backend

	// Readable while a statement holds mu.
	state  atomic.Value // State
	driver atomic.Value // string
}

// Connect validates cfg and opens the first reachable backend. A
// *config.ConfigurationError is returned before any connection attempt.
func Connect(ctx context.Context, cfg config.Warehouse, backends []Backend, logger *slog.Logger) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Executor{cfg: cfg, backends: backends, logger: logger}
	e.driver.Store("")
	e.state.Store(StateConnecting)
	conn, backend, err := ResolveConnection(ctx, cfg, backends, logger)
	if err != nil {
		return nil, err
	}
	e.setConn(conn, backend)
	return e, nil
}

// Driver returns the name of the active backend, or "" when disconnected.
func (e *Executor) Driver() string {
	return e.driver.Load().(string)
}

func (e *Executor) State() State {
	return e.state.Load().(State)
}

func (e *Executor) setConn(conn Conn, backend Backend) {
	e.conn, e.backend = conn, backend
	if backend == nil {
		e.driver.Store("")
		e.state.Store(StateDisconnected)
		return
	}
	e.driver.Store(backend.Name())
	e.state.Store(StateConnected)
}

// Ping checks the active connection without reconnecting.
func (e *Executor) Ping(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.conn == nil {
		return errors.New("warehouse connection is not initialized")
	}
	return e.conn.Ping(ctx)
}

// Execute runs sqlText with params bound positionally. It returns nil when
// the statement produced no result set.
//
// When the active backend reports a stale connection, the connection is
// replaced and the statement retried exactly once. Any other failure, and any
// failure of the retry, is returned as an *ExecutionError. There is no
// statement timeout: a statement that never finishes blocks the caller
// unless ctx is cancelled.
func (e *Executor) Execute(ctx context.Context, sqlText string, params []models.ParamValue) (*models.ResultSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	query := StripTerminators(sqlText)
	args := queries.Args(params)

	// A previous failed reconnect leaves no connection; this attempt then
	// spends its one reconnect up front.
	if e.conn == nil {
		if err := e.reconnect(ctx); err != nil {
			return nil, &ExecutionError{AfterReconnect: true, Err: err}
		}
		rs, err := e.run(ctx, query, args)
		if err != nil {
			return nil, &ExecutionError{AfterReconnect: true, Err: err}
		}
		return rs, nil
	}

	rs, err := e.run(ctx, query, args)
	if err == nil {
		return rs, nil
	}
	if !e.backend.IsStale(err) {
		return nil, &ExecutionError{Err: err}
	}

	stale := &StaleConnectionError{Backend: e.backend.Name(), Err: err}
	e.logger.Warn("stale warehouse connection, reconnecting", "backend", stale.Backend, "error", err)

	if err := e.reconnect(ctx); err != nil {
		return nil, &ExecutionError{AfterReconnect: true, Err: errors.Join(stale, err)}
	}

	rs, err = e.run(ctx, query, args)
	if err != nil {
		return nil, &ExecutionError{AfterReconnect: true, Err: errors.Join(stale, err)}
	}
	return rs, nil
}

func (e *Executor) run(ctx context.Context, query string, args []interface{}) (*models.ResultSet, error) {
	e.state.Store(StateExecuting)
	rs, err := e.conn.Query(ctx, query, args...)
	e.state.Store(StateConnected)
	return rs, err
}

// reconnect closes the current connection best-effort and resolves a new one
// through the full backend list.
func (e *Executor) reconnect(ctx context.Context) error {
	if e.conn != nil {
		if err := e.conn.Close(); err != nil {
			e.logger.Debug("closing stale connection failed", "error", err)
		}
	}
	e.setConn(nil, nil)
	e.state.Store(StateConnecting)

	conn, backend, err := ResolveConnection(ctx, e.cfg, e.backends, e.logger)
	if err != nil {
		e.state.Store(StateDisconnected)
		return err
	}
	e.setConn(conn, backend)
	return nil
}

// Close releases the connection.
func (e *Executor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.conn == nil {
		return nil
	}
	err := e.conn.Close()
	e.setConn(nil, nil)
	return err
}

// StripTerminators removes trailing semicolons and whitespace.
func StripTerminators(sqlText string) string {
	s := strings.TrimSpace(sqlText)
	for strings.HasSuffix(s, ";") {
		s = strings.TrimRightFunc(strings.TrimSuffix(s, ";"), unicode.IsSpace)
	}
	return s
}
