package warehouse

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const countingDriverName = "warehouse-counting"

// countingDriver records how many sessions database/sql dials per DSN.
type countingDriver struct {
	mu    sync.Mutex
	dials map[string]int
}

var dialCounter = &countingDriver{dials: map[string]int{}}

func init() {
	sql.Register(countingDriverName, dialCounter)
}

func (d *countingDriver) Open(name string) (driver.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials[name]++
	return &countingConn{}, nil
}

func (d *countingDriver) dialsFor(name string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials[name]
}

type countingConn struct{}

func (c *countingConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (c *countingConn) Close() error                        { return nil }
func (c *countingConn) Begin() (driver.Tx, error)           { return nil, driver.ErrSkip }
func (c *countingConn) Ping(context.Context) error          { return nil }

// QueryContext drops the session on "fail" and answers everything else with
// one row holding a NULL.
func (c *countingConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if strings.HasPrefix(query, "fail") {
		return nil, driver.ErrBadConn
	}
	return &countingRows{columns: []string{"Hour", "Trips"}, data: [][]driver.Value{{int64(1), nil}}}, nil
}

type countingRows struct {
	columns []string
	data    [][]driver.Value
}

func (r *countingRows) Columns() []string { return r.columns }
func (r *countingRows) Close() error      { return nil }

func (r *countingRows) Next(dest []driver.Value) error {
	if len(r.data) == 0 {
		return io.EOF
	}
	copy(dest, r.data[0])
	r.data = r.data[1:]
	return nil
}

func TestSQLConn_DroppedSessionIsNotRedialed(t *testing.T) {
	dsn := t.Name()
	conn, err := openSQL(context.Background(), countingDriverName, dsn, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, dialCounter.dialsFor(dsn))

	_, err = conn.Query(context.Background(), "fail now")
	require.Error(t, err)
	assert.True(t, MySQLBackend{}.IsStale(err), "got %v", err)
	assert.True(t, SQLServerBackend{}.IsStale(err), "got %v", err)
	assert.Equal(t, 1, dialCounter.dialsFor(dsn), "database/sql must not dial a replacement session")

	assert.NoError(t, conn.Close())
}

func TestSQLConn_QueryScansRows(t *testing.T) {
	dsn := t.Name()
	conn, err := openSQL(context.Background(), countingDriverName, dsn, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	rs, err := conn.Query(context.Background(), "SELECT hour, trips FROM trips")
	require.NoError(t, err)
	require.NotNil(t, rs)
	assert.Equal(t, []string{"Hour", "Trips"}, rs.Columns)
	require.Len(t, rs.Rows, 1)
	assert.Equal(t, int64(1), rs.Rows[0][0].Value)
	assert.True(t, rs.Rows[0][1].Missing)
	assert.Equal(t, 1, dialCounter.dialsFor(dsn))
}
