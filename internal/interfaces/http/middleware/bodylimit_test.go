package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ledger/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bodyLimitRouter(limit int64) *gin.Engine {
	r := gin.New()
	r.Use(BodyLimit(limit))
	r.POST("/collections", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.String(http.StatusRequestEntityTooLarge, "cut off")
				return
			}
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.String(http.StatusCreated, "ok")
	})
	r.GET("/collections", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestBodyLimit(t *testing.T) {
	small := `{"quantity":"12.5","unit":"litre"}`
	notes := `{"notes":"` + strings.Repeat("n", 300) + `"}`

	tests := []struct {
		name          string
		method        string
		body          string
		contentLength int64
		wantStatus    int
	}{
		{"within limit", http.MethodPost, small, int64(len(small)), http.StatusCreated},
		{"declared length over limit", http.MethodPost, notes, int64(len(notes)), http.StatusRequestEntityTooLarge},
		{"chunked body over limit", http.MethodPost, notes, -1, http.StatusRequestEntityTooLarge},
		{"request without body", http.MethodGet, "", 0, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/collections", strings.NewReader(tt.body))
			req.ContentLength = tt.contentLength
			w := httptest.NewRecorder()
			bodyLimitRouter(128).ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestBodyLimit_RejectionEnvelope(t *testing.T) {
	body := strings.Repeat("x", 64)
	req := httptest.NewRequest(http.MethodPost, "/collections", strings.NewReader(body))
	req.ContentLength = int64(len(body))
	w := httptest.NewRecorder()
	bodyLimitRouter(16).ServeHTTP(w, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodePayloadTooLarge, resp.Code)
}
