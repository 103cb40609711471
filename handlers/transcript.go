package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"dwqueries/transcript"
)

// ParseRequest asks for the tables of several queries in one transcript.
// An empty Transcript selects the current session.
type ParseRequest struct {
	Transcript string   `json:"transcript"`
	Queries    []string `json:"queries" binding:"required,min=1"`
	Numeric    []string `json:"numeric" example:"Trips"`
}

// ParsedBlock is the outcome for one query of a ParseRequest.
type ParsedBlock struct {
	Query   string                         `json:"query"`
	Table   *transcript.ParsedTable        `json:"table,omitempty"`
	Numeric map[string][]transcript.Number `json:"numeric,omitempty"`
	Status  int                            `json:"status"`
	Error   string                         `json:"error,omitempty"`
}

// GetTranscriptHandler returns a session transcript
// @Summary      Get transcript
// @Description  Return the transcript text of the current session, or of a stored session when session is given
// @Tags         Transcript
// @Produce      json
// @Param        session  query     string  false  "Session ID"
// @Success      200      {object}  map[string]string  "Transcript text"
// @Failure      404      {object}  map[string]string  "Session not found"
// @Failure      500      {object}  map[string]string  "Failed to load transcript"
// @Router       /api/transcript [get]
func (h *Handlers) GetTranscriptHandler(c *gin.Context) {
	session := c.Query("session")
	if session == "" || session == h.runner.SessionID() {
		c.JSON(http.StatusOK, gin.H{"session": h.runner.SessionID(), "transcript": h.runner.Transcript()})
		return
	}

	if h.db == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	text, err := h.db.GetTranscript(session)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to load transcript: %v", err)})
		return
	}
	if text == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session, "transcript": text})
}

// ListSessionsHandler lists stored transcript sessions
// @Summary      List sessions
// @Description  List the IDs of every session with a stored transcript
// @Tags         Transcript
// @Produce      json
// @Success      200  {object}  map[string][]string  "Session IDs"
// @Failure      500  {object}  map[string]string    "Failed to list sessions"
// @Router       /api/transcript/sessions [get]
func (h *Handlers) ListSessionsHandler(c *gin.Context) {
	sessions := []string{}
	if h.db != nil {
		stored, err := h.db.ListSessions()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to list sessions: %v", err)})
			return
		}
		sessions = append(sessions, stored...)
	}

	c.JSON(http.StatusOK, gin.H{"current": h.runner.SessionID(), "sessions": sessions})
}

// GetTableHandler parses one query's table from the current session
// @Summary      Get parsed table
// @Description  Parse the table printed for a query in the current session transcript
// @Tags         Transcript
// @Produce      json
// @Param        query  path      string  true  "Query identifier, e.g. query1.sql"
// @Success      200    {object}  transcript.ParsedTable  "Parsed table"
// @Failure      404    {object}  map[string]string       "Query block not found"
// @Failure      422    {object}  map[string]string       "Block has no table"
// @Router       /api/transcript/tables/{query} [get]
func (h *Handlers) GetTableHandler(c *gin.Context) {
	table, err := h.cache.ParseTable(h.runner.Transcript(), c.Param("query"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, table)
}

// ParseTranscriptHandler parses the tables of several queries
// @Summary      Parse transcript
// @Description  Extract and parse the tables of the given queries. Each query succeeds or fails on its own; numeric columns are normalized with missing values as null
// @Tags         Transcript
// @Accept       json
// @Produce      json
// @Param        request  body      ParseRequest  true  "Transcript and query identifiers"
// @Success      200      {object}  map[string][]ParsedBlock  "Per-query parse results"
// @Failure      400      {object}  map[string]string          "Invalid request"
// @Router       /api/transcript/parse [post]
func (h *Handlers) ParseTranscriptHandler(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	text := req.Transcript
	if text == "" {
		text = h.runner.Transcript()
	}

	blocks := make([]ParsedBlock, len(req.Queries))
	for i, id := range req.Queries {
		blocks[i] = h.parseBlock(text, id, req.Numeric)
	}

	c.JSON(http.StatusOK, gin.H{"results": blocks})
}

func (h *Handlers) parseBlock(text, id string, numeric []string) ParsedBlock {
	block := ParsedBlock{Query: id, Status: http.StatusOK}

	table, err := h.cache.ParseTable(text, id)
	if err != nil {
		block.Status = httpStatusFromError(err)
		block.Error = err.Error()
		return block
	}
	block.Table = table

	if len(numeric) > 0 {
		block.Numeric = make(map[string][]transcript.Number, len(numeric))
		for _, col := range numeric {
			nums, err := table.NumericColumn(col)
			if err != nil {
				block.Status = httpStatusFromError(err)
				block.Error = err.Error()
				continue
			}
			block.Numeric[col] = nums
		}
	}
	return block
}
