package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"dwqueries/config"
	"dwqueries/db"
	"dwqueries/service"
	"dwqueries/transcript"
	"dwqueries/warehouse"
)

// session bundles everything one producer session owns.
type session struct {
	runner  *service.Runner
	exec    *warehouse.Executor
	store   *db.DB
	results *service.ResultsStorage
	closers []io.Closer
}

// openSession connects to the warehouse and wires the runner. The transcript
// goes to out and, when cfg.TranscriptPath is set, is appended to that file.
func openSession(ctx context.Context, cfg config.Config, out io.Writer, logger *slog.Logger) (*session, error) {
	exec, err := warehouse.Connect(ctx, cfg.Warehouse, warehouse.DefaultBackends(cfg.Warehouse.Engine), logger)
	if err != nil {
		return nil, err
	}
	s := &session{exec: exec, closers: []io.Closer{exec}}

	if cfg.TranscriptPath != "" {
		f, err := openTranscriptFile(cfg.TranscriptPath)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, f)
		out = io.MultiWriter(out, f)
	}

	store, err := db.New(cfg.DBPath)
	if err != nil {
		logger.Warn("transcript store unavailable, sessions will not be persisted", "path", cfg.DBPath, "error", err)
	} else {
		s.store = store
		s.closers = append(s.closers, store)
	}

	results, err := service.NewResultsStorage(cfg.ResultsDir)
	if err != nil {
		logger.Warn("results storage unavailable", "dir", cfg.ResultsDir, "error", err)
	} else {
		s.results = results
	}

	writer := transcript.NewWriter(out, transcript.RenderOptions{MaxRows: cfg.MaxRows})
	s.runner = service.NewRunner(exec, writer, s.store, s.results, logger)

	logger.Info("session started",
		"session", s.runner.SessionID(),
		"driver", exec.Driver(),
		"engine", cfg.Warehouse.Engine,
		"addr", cfg.Warehouse.Addr(),
		"database", cfg.Warehouse.Database,
	)
	return s, nil
}

func openTranscriptFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create transcript directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript file: %w", err)
	}
	return f, nil
}

// Close releases resources in reverse order of acquisition.
func (s *session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
