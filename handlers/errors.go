package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dwqueries/queries"
	"dwqueries/service"
	"dwqueries/transcript"
	"dwqueries/warehouse"
)

// httpStatusFromError maps the error taxonomy onto HTTP status codes.
// A connection failure inside an execution error reports as 503.
func httpStatusFromError(err error) int {
	var (
		coerceErr *queries.ParamCoercionError
		blockErr  *transcript.BlockNotFoundError
		headerErr *transcript.HeaderNotFoundError
		connErr   *warehouse.ConnectionError
		execErr   *warehouse.ExecutionError
	)

	switch {
	case errors.As(err, &coerceErr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrQueryNotFound), errors.As(err, &blockErr):
		return http.StatusNotFound
	case errors.As(err, &headerErr), errors.Is(err, transcript.ErrColumnNotFound):
		return http.StatusUnprocessableEntity
	case errors.As(err, &connErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &execErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(httpStatusFromError(err), gin.H{"error": err.Error()})
}
