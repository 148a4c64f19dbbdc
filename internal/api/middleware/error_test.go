package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorHandler_HidesPanicValue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gin.DefaultErrorWriter = io.Discard

	cases := map[string]interface{}{
		"string": "db password=hunter2",
		"error":  errors.New("db password=hunter2"),
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			core, logs := observer.New(zap.ErrorLevel)
			router := gin.New()
			router.Use(Logger(zap.NewNop()))
			router.Use(ErrorHandler(zap.New(core)))
			router.GET("/boom", func(c *gin.Context) { panic(value) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.NotContains(t, w.Body.String(), "hunter2")

			var body struct {
				Error struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
			assert.Equal(t, "An unexpected error occurred", body.Error.Message)

			entries := logs.FilterMessage("panic recovered").All()
			require.Len(t, entries, 1)
			assert.Contains(t, entries[0].ContextMap(), "panic")
			assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
		})
	}
}
