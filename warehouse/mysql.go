package warehouse

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"

	"github.com/go-sql-driver/mysql"

	"dwqueries/config"
)

// MySQL client error numbers that mean the session is gone.
const (
	mysqlServerGone     = 2006
	mysqlServerLost     = 2013
	mysqlIdleDisconnect = 4031
)

// MySQLBackend talks to MySQL with go-sql-driver/mysql. With TextProtocol
// set, parameters are interpolated client side instead of using
// server-side prepared statements.
type MySQLBackend struct {
	TextProtocol bool
}

func (b MySQLBackend) Name() string {
	if b.TextProtocol {
		return "mysql-text"
	}
	return "mysql"
}

// DSN builds the driver data source name for cfg.
func (b MySQLBackend) DSN(cfg config.Warehouse) string {
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = cfg.Addr()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.DBName = cfg.Database
	mc.Timeout = cfg.ConnectTimeout
	mc.InterpolateParams = b.TextProtocol
	return mc.FormatDSN()
}

func (b MySQLBackend) Open(ctx context.Context, cfg config.Warehouse) (Conn, error) {
	return openSQL(ctx, "mysql", b.DSN(cfg), cfg.ConnectTimeout)
}

// IsStale recognizes dropped MySQL sessions: the driver's invalid
// connection error, database/sql's bad or done connection errors, an
// unexpected EOF on the socket, and the server-gone/lost client codes.
func (b MySQLBackend) IsStale(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlServerGone, mysqlServerLost, mysqlIdleDisconnect:
			return true
		}
	}
	return false
}
