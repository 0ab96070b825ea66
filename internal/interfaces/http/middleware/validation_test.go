package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ledger/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError(t *testing.T) {
	type collectionInput struct {
		SupplierID     string `json:"supplier_id" binding:"required,uuid"`
		CollectionDate string `json:"collection_date" binding:"required,datetime=2006-01-02"`
		Unit           string `json:"unit" binding:"required,max=5"`
	}

	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req collectionInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(nil))
	})

	t.Run("reports every field by json name", func(t *testing.T) {
		body := strings.NewReader(`{"supplier_id":"nope","collection_date":"15/03/2024","unit":"kilogram"}`)
		req := httptest.NewRequest(http.MethodPost, "/test", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeValidation, resp.Code)
		assert.Equal(t, []string{"Invalid UUID format"}, resp.Errors["supplier_id"])
		assert.Equal(t, []string{"Must be a date in 2006-01-02 format"}, resp.Errors["collection_date"])
		assert.Equal(t, []string{"Must be at most 5 characters"}, resp.Errors["unit"])
		assert.NotEmpty(t, resp.RequestID)
	})

	t.Run("valid input passes", func(t *testing.T) {
		body := strings.NewReader(`{"supplier_id":"6f1c1c52-2a8e-4c36-9d0c-6a0c7b4f1e11","collection_date":"2024-03-15","unit":"kg"}`)
		req := httptest.NewRequest(http.MethodPost, "/test", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestFieldErrors_NotValidation(t *testing.T) {
	_, ok := FieldErrors(assert.AnError)
	assert.False(t, ok)
}

func TestGetRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set(RequestIDHeader, "from-header")

	assert.Equal(t, "from-header", GetRequestID(c))

	c.Set(RequestIDKey, "from-context")
	assert.Equal(t, "from-context", GetRequestID(c))
}
