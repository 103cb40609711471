package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwqueries/cache"
	"dwqueries/handlers"
	"dwqueries/models"
	"dwqueries/service"
	"dwqueries/transcript"
	"dwqueries/warehouse"
)

type idleExecutor struct{}

func (idleExecutor) Execute(context.Context, string, []models.ParamValue) (*models.ResultSet, error) {
	return nil, nil
}

func (idleExecutor) Ping(context.Context) error { return nil }

func (idleExecutor) Driver() string { return "" }

func (idleExecutor) State() warehouse.State { return warehouse.StateDisconnected }

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := service.NewRunner(idleExecutor{}, transcript.NewWriter(io.Discard, transcript.RenderOptions{}), nil, nil, logger)
	h := handlers.New(runner, nil, cache.New(time.Minute), nil, t.TempDir(), logger)
	return NewRouter(h, logger)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/queries", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouter_Routes(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		path string
		want int
	}{
		{"/health", http.StatusOK},
		{"/api/queries", http.StatusOK},
		{"/api/transcript", http.StatusOK},
		{"/api/results/files", http.StatusServiceUnavailable},
		{"/swagger/doc.json", http.StatusOK},
		{"/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}
