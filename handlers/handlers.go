package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"dwqueries/cache"
	"dwqueries/db"
	"dwqueries/models"
	"dwqueries/queries"
	"dwqueries/service"
)

// @title           Warehouse Query Runner API
// @version         1.0
// @description     Run parameterized SQL files against a MySQL or SQL Server warehouse and parse the transcript tables they produce
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:9090
// @BasePath  /

// @schemes   http https

type Handlers struct {
	runner     *service.Runner
	db         *db.DB
	cache      *cache.Cache
	results    *service.ResultsStorage
	queriesDir string
	logger     *slog.Logger
}

// New wires the API. database and results may be nil.
func New(runner *service.Runner, database *db.DB, tableCache *cache.Cache, results *service.ResultsStorage, queriesDir string, logger *slog.Logger) *Handlers {
	return &Handlers{
		runner:     runner,
		db:         database,
		cache:      tableCache,
		results:    results,
		queriesDir: queriesDir,
		logger:     logger,
	}
}

// Routes registers every API route on r.
func (h *Handlers) Routes(r gin.IRouter) {
	r.GET("/health", h.HealthHandler)

	r.GET("/api/queries", h.ListQueriesHandler)
	r.POST("/api/queries/:name/run", h.RunQueryHandler)

	r.GET("/api/transcript", h.GetTranscriptHandler)
	r.GET("/api/transcript/sessions", h.ListSessionsHandler)
	r.GET("/api/transcript/tables/:query", h.GetTableHandler)
	r.POST("/api/transcript/parse", h.ParseTranscriptHandler)

	r.GET("/api/results/files", h.ListResultFilesHandler)
	r.GET("/api/results/file/:filename", h.GetResultFileHandler)
}

// loadQueries scans the queries directory and snapshots it into the store.
// When the directory cannot be read the last snapshot is served instead.
func (h *Handlers) loadQueries() ([]models.QueryFile, error) {
	files, err := queries.Discover(h.queriesDir)
	if err != nil {
		if h.db == nil {
			return nil, err
		}
		h.logger.Warn("failed to scan queries directory, using stored catalog", "dir", h.queriesDir, "error", err)

		stored, dbErr := h.db.GetSQLFiles()
		if dbErr != nil || len(stored) == 0 {
			return nil, err
		}
		files = make([]models.QueryFile, len(stored))
		for i, f := range stored {
			files[i] = queries.NewQueryFile(f.Name, f.Content)
		}
		return files, nil
	}

	if h.db != nil {
		for _, f := range files {
			if err := h.db.StoreSQLFile(f.Name, f.SQL); err != nil {
				h.logger.Warn("failed to store query file", "query", f.Name, "error", err)
			}
		}
	}
	return files, nil
}
