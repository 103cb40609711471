package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"dwqueries/models"
	"dwqueries/service"
	"dwqueries/validation"
)

// RunQueryRequest is the body of a query run. Params values are raw strings
// coerced against the query's declared parameter types.
type RunQueryRequest struct {
	Params map[string]string `json:"params" example:"zone:12"`
	Save   bool              `json:"save" example:"true"`
	Format string            `json:"format" example:"json"` // "json" or "csv"
}

// ListQueriesHandler lists the runnable query files
// @Summary      List query files
// @Description  Rescan the queries directory and return every .sql file with its title and declared parameters
// @Tags         Queries
// @Produce      json
// @Success      200  {object}  map[string][]models.QueryFile  "Discovered query files"
// @Failure      500  {object}  map[string]string              "Failed to load query files"
// @Router       /api/queries [get]
func (h *Handlers) ListQueriesHandler(c *gin.Context) {
	files, err := h.loadQueries()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to load query files: %v", err)})
		return
	}
	if files == nil {
		files = []models.QueryFile{}
	}

	c.JSON(http.StatusOK, gin.H{"queries": files})
}

// RunQueryHandler executes one query file and appends it to the session transcript
// @Summary      Run query file
// @Description  Coerce the parameters, execute the query against the warehouse, append the run to the session transcript and optionally save the result
// @Tags         Queries
// @Accept       json
// @Produce      json
// @Param        name     path      string           true   "Query file name"
// @Param        request  body      RunQueryRequest  false  "Parameters and save options"
// @Success      200      {object}  service.RunOutcome  "Query run outcome"
// @Failure      400      {object}  map[string]string   "Invalid request or parameter"
// @Failure      404      {object}  map[string]string   "Query not found"
// @Failure      502      {object}  map[string]string   "Query execution error"
// @Failure      503      {object}  map[string]string   "Warehouse unreachable"
// @Router       /api/queries/{name}/run [post]
func (h *Handlers) RunQueryHandler(c *gin.Context) {
	name := c.Param("name")
	if !validation.IsValidQueryName(name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query name"})
		return
	}

	var req RunQueryRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
	}

	if !validation.IsValidFormat(req.Format) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unsupported format %q", req.Format)})
		return
	}
	for param := range req.Params {
		if !validation.IsValidParamName(param) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid parameter name %q", param)})
			return
		}
	}

	files, err := h.loadQueries()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to load query files: %v", err)})
		return
	}

	qf, err := service.FindQuery(files, name)
	if err != nil {
		writeError(c, err)
		return
	}

	outcome, err := h.runner.Run(c.Request.Context(), qf, req.Params, service.RunOptions{Save: req.Save, Format: req.Format})
	if err != nil {
		if outcome == nil {
			writeError(c, err)
			return
		}
		c.JSON(httpStatusFromError(err), gin.H{"error": err.Error(), "result": outcome})
		return
	}

	c.JSON(http.StatusOK, outcome)
}
