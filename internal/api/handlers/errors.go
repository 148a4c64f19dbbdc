package handlers

import (
	"net/http"

	"stock-compare/internal/api/models"
	"stock-compare/internal/data"

	"github.com/gin-gonic/gin"
)

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// writeFetchError reports an upstream failure. The API key belongs to the service,
// so upstream auth failures are a gateway problem, not the caller's.
func writeFetchError(c *gin.Context, err error) {
	msErr, ok := data.AsMarketstackError(err)
	if !ok {
		writeError(c, http.StatusBadGateway, "DATA_FETCH_ERROR", err.Error())
		return
	}

	statusCode := http.StatusBadGateway
	switch {
	case msErr.Code == "MISSING_API_KEY":
		statusCode = http.StatusServiceUnavailable
	case msErr.StatusCode == http.StatusTooManyRequests:
		statusCode = http.StatusTooManyRequests
	}
	c.JSON(statusCode, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    msErr.Code,
			Message: msErr.Message,
			Details: map[string]interface{}{
				"status_code": msErr.StatusCode,
				"retry_after": msErr.RetryAfter,
			},
		},
	})
}
