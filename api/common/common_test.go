package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anoixa/photo-gallery/internal/apperr"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, err error) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/test", func(c *gin.Context) { RespondServiceError(c, err) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"unauthorized", apperr.Unauthorized("no access"), http.StatusUnauthorized, "no access"},
		{"forbidden", apperr.Forbidden("nope"), http.StatusForbidden, "nope"},
		{"not found", apperr.NotFound("gallery not found"), http.StatusNotFound, "gallery not found"},
		{"already shared", apperr.AlreadyShared("shared"), http.StatusConflict, "shared"},
		{"invalid code", apperr.InvalidCode("bad code"), http.StatusBadRequest, "bad code"},
		{"validation", apperr.Validation("bad input"), http.StatusBadRequest, "bad input"},
		{"pending", apperr.Pending("pending"), http.StatusConflict, "pending"},
		{"too many", apperr.TooManyRequests("wait"), http.StatusTooManyRequests, "wait"},
		{"internal hides detail", apperr.Internal("db exploded", errors.New("secret dsn")), http.StatusInternalServerError, "Internal server error"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := serve(t, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tt.wantMsg, resp.Msg)
			assert.NotContains(t, w.Body.String(), "secret dsn")
		})
	}
}

func TestRespondSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ok", func(c *gin.Context) { RespondSuccess(c, gin.H{"id": 1}) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","msg":"","data":{"id":1}}`, w.Body.String())
}
