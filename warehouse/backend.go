// Package warehouse connects to the data warehouse through an ordered list
// of driver backends and executes statements with a single
// reconnect-and-retry on stale connections.
package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dwqueries/config"
	"dwqueries/models"
)

// Backend is one way of reaching the warehouse. Each backend decides which
// of its driver's errors mean the connection went stale.
type Backend interface {
	Name() string
	Open(ctx context.Context, cfg config.Warehouse) (Conn, error)
	IsStale(err error) bool
}

// Conn is an open, exclusively owned warehouse connection.
type Conn interface {
	Ping(ctx context.Context) error
	// Query runs a statement and returns its rows, or nil when the
	// statement produced no result set.
	Query(ctx context.Context, query string, args ...interface{}) (*models.ResultSet, error)
	Close() error
}

// DefaultBackends returns the hard-coded backend order for an engine.
func DefaultBackends(engine string) []Backend {
	switch engine {
	case config.EngineSQLServer:
		return []Backend{SQLServerBackend{}}
	default:
		return []Backend{MySQLBackend{}, MySQLBackend{TextProtocol: true}}
	}
}

// sqlConn runs every statement on one pinned *sql.Conn. A pinned conn never
// redials on driver.ErrBadConn, so a dropped session reaches the executor.
type sqlConn struct {
	db   *sql.DB
	conn *sql.Conn
}

func openSQL(ctx context.Context, driverName, dsn string, timeout time.Duration) (*sqlConn, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driverName, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := db.Conn(pingCtx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	c := &sqlConn{db: db, conn: conn}
	if err := c.Ping(pingCtx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *sqlConn) Ping(ctx context.Context) error {
	return c.conn.PingContext(ctx)
}

func (c *sqlConn) Query(ctx context.Context, query string, args ...interface{}) (*models.ResultSet, error) {
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	// Statements such as INSERT or CREATE come back without columns.
	if len(columns) == 0 {
		return nil, rows.Err()
	}

	result := &models.ResultSet{Columns: columns, Rows: [][]models.Cell{}}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make([]models.Cell, len(columns))
		for i, val := range values {
			row[i] = toCell(val)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *sqlConn) Close() error {
	// database/sql already closed the pinned conn if the driver reported it bad.
	err := c.conn.Close()
	if errors.Is(err, sql.ErrConnDone) {
		err = nil
	}
	return errors.Join(err, c.db.Close())
}

func toCell(val interface{}) models.Cell {
	switch v := val.(type) {
	case nil:
		return models.Cell{Missing: true}
	case []byte:
		// Drivers reuse the scan buffer.
		return models.Cell{Value: string(v)}
	default:
		return models.Cell{Value: v}
	}
}
