package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"dwqueries/validation"
)

// ListResultFilesHandler lists all result files
// @Summary      List result files
// @Description  Get a list of all saved query result files (JSON/CSV)
// @Tags         Results
// @Produce      json
// @Success      200  {object}  map[string][]models.ResultFileInfo  "List of result files"
// @Failure      503  {object}  map[string]string                   "Results storage not configured"
// @Failure      500  {object}  map[string]string                   "Failed to list files"
// @Router       /api/results/files [get]
func (h *Handlers) ListResultFilesHandler(c *gin.Context) {
	if h.results == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Results storage is not configured"})
		return
	}

	files, err := h.results.ListResultFiles()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to list files: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": files})
}

// GetResultFileHandler retrieves a specific result file
// @Summary      Get result file
// @Description  Get the complete content of a specific result file by filename
// @Tags         Results
// @Produce      json
// @Param        filename  path      string  true  "Result file name"
// @Success      200       {object}  models.ResultFile  "Result file content"
// @Failure      400       {object}  map[string]string  "Invalid filename"
// @Failure      404       {object}  map[string]string  "File not found"
// @Failure      503       {object}  map[string]string  "Results storage not configured"
// @Router       /api/results/file/{filename} [get]
func (h *Handlers) GetResultFileHandler(c *gin.Context) {
	filename := c.Param("filename")
	if !validation.IsValidResultFilename(filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filename"})
		return
	}

	if h.results == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Results storage is not configured"})
		return
	}

	resultFile, err := h.results.GetResultFile(filename)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("File not found: %v", err)})
		return
	}

	c.JSON(http.StatusOK, resultFile)
}
