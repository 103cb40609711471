package warehouse

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"

	mssql "github.com/microsoft/go-mssqldb"

	"dwqueries/config"
)

// SQL Server error numbers raised when the transport under a session breaks.
var sqlServerDisconnects = map[int32]bool{
	233:   true, // no process is on the other end of the pipe
	10053: true, // connection aborted by the host
	10054: true, // connection reset by peer
}

// SQLServerBackend talks to SQL Server with microsoft/go-mssqldb.
type SQLServerBackend struct{}

func (SQLServerBackend) Name() string { return "sqlserver" }

// DSN builds the connection string for cfg.
func (SQLServerBackend) DSN(cfg config.Warehouse) string {
	connStr := fmt.Sprintf("server=%s;port=%d;database=%s;dial timeout=%d",
		cfg.Host, cfg.Port, cfg.Database, int(cfg.ConnectTimeout.Seconds()))

	if cfg.User != "" {
		connStr += fmt.Sprintf(";user id=%s;password=%s", cfg.User, cfg.Password)
	} else {
		connStr += ";trusted_connection=true"
	}

	// TLS without CA verification so internal certs work.
	connStr += ";encrypt=true;TrustServerCertificate=true"
	return connStr
}

func (b SQLServerBackend) Open(ctx context.Context, cfg config.Warehouse) (Conn, error) {
	return openSQL(ctx, "sqlserver", b.DSN(cfg), cfg.ConnectTimeout)
}

// IsStale recognizes sessions whose transport was closed or reset.
func (SQLServerBackend) IsStale(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return sqlServerDisconnects[msErr.Number]
	}
	return false
}
