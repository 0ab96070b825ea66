package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ledger/backend/internal/infrastructure/cache"
	"github.com/ledger/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenIdempotencyStore struct {
	cache.IdempotencyStore
}

func (brokenIdempotencyStore) Claim(context.Context, string, string, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}

func idempotentRouter(store cache.IdempotencyStore, status int, calls *int32) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(JWTUserIDKey, c.GetHeader("X-Test-User"))
		c.Next()
	})
	router.POST("/payments", Idempotency(IdempotencyConfig{Store: store, TTL: time.Minute}), func(c *gin.Context) {
		n := atomic.AddInt32(calls, 1)
		c.JSON(status, gin.H{"call": n})
	})
	return router
}

func postPayment(router *gin.Engine, key, user, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", user)
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysFirstResponse(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	var calls int32
	router := idempotentRouter(store, http.StatusCreated, &calls)

	first := postPayment(router, "key-1", "u1", `{"amount":"100"}`)
	second := postPayment(router, "key-1", "u1", `{"amount":"100"}`)

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, `{"call":1}`, second.Body.String())
	assert.Equal(t, "true", second.Header().Get(IdempotentReplayedHeader))
	assert.Empty(t, first.Header().Get(IdempotentReplayedHeader))
	assert.Equal(t, int32(1), calls)
}

func TestIdempotency_DifferentBodyRejected(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	var calls int32
	router := idempotentRouter(store, http.StatusCreated, &calls)

	postPayment(router, "key-1", "u1", `{"amount":"100"}`)
	w := postPayment(router, "key-1", "u1", `{"amount":"250"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeIdempotencyConflict, decodeError(t, w).Code)
	assert.Equal(t, int32(1), calls)
}

func TestIdempotency_ScopedPerUser(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	var calls int32
	router := idempotentRouter(store, http.StatusCreated, &calls)

	postPayment(router, "key-1", "u1", `{}`)
	w := postPayment(router, "key-1", "u2", `{}`)

	assert.Empty(t, w.Header().Get(IdempotentReplayedHeader))
	assert.Equal(t, int32(2), calls)
}

func TestIdempotency_InProgress(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	var calls int32
	router := idempotentRouter(store, http.StatusCreated, &calls)

	hash := requestHash(http.MethodPost, "/payments", []byte(`{}`))
	claimed, err := store.Claim(context.Background(), "idem:u1:POST:/payments:key-1", hash, time.Minute)
	require.NoError(t, err)
	require.True(t, claimed)

	w := postPayment(router, "key-1", "u1", `{}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeRequestInProgress, decodeError(t, w).Code)
	assert.Zero(t, calls)
}

func TestIdempotency_ServerErrorReleasesKey(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	var calls int32
	router := idempotentRouter(store, http.StatusInternalServerError, &calls)

	postPayment(router, "key-1", "u1", `{}`)
	postPayment(router, "key-1", "u1", `{}`)

	assert.Equal(t, int32(2), calls)
}

func TestIdempotency_WithoutHeader(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	var calls int32
	router := idempotentRouter(store, http.StatusCreated, &calls)

	postPayment(router, "", "u1", `{}`)
	postPayment(router, "", "u1", `{}`)

	assert.Equal(t, int32(2), calls)
}

func TestIdempotency_KeyTooLong(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	var calls int32
	router := idempotentRouter(store, http.StatusCreated, &calls)

	w := postPayment(router, strings.Repeat("k", 300), "u1", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, calls)
}

func TestIdempotency_StoreFailureFailsOpen(t *testing.T) {
	var calls int32
	router := idempotentRouter(brokenIdempotencyStore{}, http.StatusCreated, &calls)

	w := postPayment(router, "key-1", "u1", `{}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int32(1), calls)
}

// contextAwareStore fails writes on a cancelled context, like a Redis client does
type contextAwareStore struct {
	*cache.InMemoryIdempotencyStore
}

func (s contextAwareStore) Complete(ctx context.Context, key string, record cache.IdempotencyRecord, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.InMemoryIdempotencyStore.Complete(ctx, key, record, ttl)
}

func (s contextAwareStore) Release(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.InMemoryIdempotencyStore.Release(ctx, key)
}

func TestIdempotency_PanicReleasesKey(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	var calls int32

	router := gin.New()
	router.Use(gin.RecoveryWithWriter(io.Discard))
	router.POST("/payments", Idempotency(IdempotencyConfig{Store: contextAwareStore{store}, TTL: time.Minute}), func(c *gin.Context) {
		if atomic.AddInt32(&calls, 1) == 1 {
			panic("ledger write blew up")
		}
		c.JSON(http.StatusCreated, gin.H{"call": calls})
	})

	first := postPayment(router, "key-1", "u1", `{"amount":"40"}`)
	require.Equal(t, http.StatusInternalServerError, first.Code)

	retry := postPayment(router, "key-1", "u1", `{"amount":"40"}`)
	assert.Equal(t, http.StatusCreated, retry.Code)
	assert.Empty(t, retry.Header().Get(IdempotentReplayedHeader))
	assert.Equal(t, int32(2), calls)
}

func TestIdempotency_ClientDisconnectStillRecordsResponse(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	var calls int32

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := gin.New()
	router.POST("/payments", Idempotency(IdempotencyConfig{Store: contextAwareStore{store}, TTL: time.Minute}), func(c *gin.Context) {
		atomic.AddInt32(&calls, 1)
		c.JSON(http.StatusCreated, gin.H{"id": "pay-1"})
		cancel()
	})

	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(`{"amount":"40"}`)).WithContext(ctx)
	req.Header.Set(IdempotencyKeyHeader, "key-1")
	router.ServeHTTP(httptest.NewRecorder(), req)
	require.Error(t, ctx.Err())

	retry := postPayment(router, "key-1", "", `{"amount":"40"}`)
	assert.Equal(t, http.StatusCreated, retry.Code)
	assert.Equal(t, "true", retry.Header().Get(IdempotentReplayedHeader))
	assert.JSONEq(t, `{"id":"pay-1"}`, retry.Body.String())
	assert.Equal(t, int32(1), calls)
}
