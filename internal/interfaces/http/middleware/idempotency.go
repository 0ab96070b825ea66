package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ledger/backend/internal/infrastructure/cache"
	"github.com/ledger/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Idempotency headers
const (
	IdempotencyKeyHeader      = "Idempotency-Key"
	IdempotentReplayedHeader  = "Idempotent-Replayed"
	maxIdempotencyKeyLength   = 255
	idempotencyStoreKeyPrefix = "idem:"
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Store  cache.IdempotencyStore
	TTL    time.Duration
	Logger *zap.Logger
}

// Idempotency replays the first response of a request carrying an
// Idempotency-Key header, so a client retrying a create after a timeout
// does not record the same collection or payment twice. Keys are scoped to
// the authenticated user and the route. Reusing a key with a different body
// is rejected. Requests without the header pass through untouched.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = cache.DefaultIdempotencyTTL
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" || cfg.Store == nil {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			abortWithError(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Idempotency-Key is too long")
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			abortWithError(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge,
				"Request body exceeds maximum allowed size")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		ctx := c.Request.Context()
		storeKey := idempotencyStoreKeyPrefix + GetJWTUserID(c) + ":" + c.Request.Method + ":" + c.FullPath() + ":" + key
		hash := requestHash(c.Request.Method, c.Request.URL.Path, body)

		claimed, err := cfg.Store.Claim(ctx, storeKey, hash, ttl)
		if err != nil {
			log.Error("Idempotency store unavailable, processing request without replay protection",
				zap.Error(err))
			c.Next()
			return
		}

		if !claimed {
			replay(c, cfg.Store, storeKey, hash, log)
			return
		}

		recorder := &responseRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		defer finishIdempotent(c, cfg.Store, storeKey, hash, ttl, recorder, log)
		c.Next()
	}
}

// finishIdempotent stores the response for replay, or releases the key when
// the handler failed or panicked so the client can retry. Store writes
// outlive the request context: a client that hung up still leaves a record.
func finishIdempotent(c *gin.Context, store cache.IdempotencyStore, storeKey, hash string,
	ttl time.Duration, recorder *responseRecorder, log *zap.Logger) {
	ctx := context.WithoutCancel(c.Request.Context())

	if r := recover(); r != nil {
		if err := store.Release(ctx, storeKey); err != nil {
			log.Warn("Failed to release idempotency key", zap.Error(err))
		}
		panic(r)
	}

	status := c.Writer.Status()
	if status >= http.StatusInternalServerError {
		if err := store.Release(ctx, storeKey); err != nil {
			log.Warn("Failed to release idempotency key", zap.Error(err))
		}
		return
	}

	record := cache.IdempotencyRecord{
		RequestHash: hash,
		Status:      status,
		ContentType: c.Writer.Header().Get("Content-Type"),
		Body:        recorder.body.Bytes(),
	}
	if err := store.Complete(ctx, storeKey, record, ttl); err != nil {
		log.Warn("Failed to store idempotent response", zap.Error(err))
	}
}

func replay(c *gin.Context, store cache.IdempotencyStore, storeKey, hash string, log *zap.Logger) {
	record, err := store.Get(c.Request.Context(), storeKey)
	if err != nil {
		log.Error("Failed to read idempotency record", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
		return
	}

	switch {
	case record == nil, record.Pending && record.RequestHash == hash:
		abortWithError(c, http.StatusConflict, dto.ErrCodeRequestInProgress,
			"A request with this Idempotency-Key is still being processed")
	case record.RequestHash != hash:
		abortWithError(c, http.StatusUnprocessableEntity, dto.ErrCodeIdempotencyConflict,
			"Idempotency-Key was already used with a different request")
	default:
		c.Header(IdempotentReplayedHeader, "true")
		contentType := record.ContentType
		if contentType == "" {
			contentType = "application/json; charset=utf-8"
		}
		c.Data(record.Status, contentType, record.Body)
		c.Abort()
	}
}

func requestHash(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// responseRecorder tees the response body so it can be stored for replay
type responseRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
