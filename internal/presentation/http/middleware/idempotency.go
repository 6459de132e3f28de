package middleware

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sangkips/receipt-print-api/internal/domain/entity"
	"github.com/sangkips/receipt-print-api/internal/domain/repository"
	"github.com/sangkips/receipt-print-api/internal/presentation/http/dto/response"
)

const (
	// IdempotencyKeyHeader carries the client's key for a print request
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long a printed response can be replayed
	IdempotencyKeyTTL = 24 * time.Hour

	replayedHeader = "X-Idempotency-Replayed"
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo   repository.IdempotencyRepository
	Logger *zap.Logger
	// Required rejects POST requests that carry no key
	Required bool
}

// bodyRecorder tees the response body so it can be stored
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// inFlight tracks keys whose first request has not finished yet
type inFlight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func (f *inFlight) acquire(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.keys[key]; busy {
		return false
	}
	f.keys[key] = struct{}{}
	return true
}

func (f *inFlight) release(key string) {
	f.mu.Lock()
	delete(f.keys, key)
	f.mu.Unlock()
}

// Idempotency replays the stored response when a terminal retries a request
// with the same key. Only 2xx responses are stored so a failed print can be
// retried. A retry that arrives while the first request is still printing
// gets 409.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pending := &inFlight{keys: make(map[string]struct{})}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			if config.Required && c.Request.Method == http.MethodPost {
				response.BadRequest(c, IdempotencyKeyHeader+" header is required for this request")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		terminalID := c.GetString("terminal_id")
		if terminalID == "" {
			c.Next()
			return
		}
		endpoint := c.Request.Method + " " + c.FullPath()
		log := logger.With(zap.String("terminal_id", terminalID), zap.String("idempotency_key", key))

		slot := terminalID + "\x00" + key
		if !pending.acquire(slot) {
			response.ErrorWithCode(c, http.StatusConflict, "A request with this "+IdempotencyKeyHeader+" is still in progress")
			c.Abort()
			return
		}
		defer pending.release(slot)

		existing, err := config.Repo.GetByKey(c.Request.Context(), key, terminalID)
		if err != nil {
			log.Warn("Idempotency lookup failed", zap.Error(err))
			c.Next()
			return
		}
		if existing != nil && !existing.IsExpired() {
			if existing.Endpoint != endpoint {
				response.ErrorWithCode(c, http.StatusUnprocessableEntity, IdempotencyKeyHeader+" was already used for "+existing.Endpoint)
				c.Abort()
				return
			}
			log.Debug("Replaying stored response")
			c.Header(replayedHeader, "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		status := rec.Status()
		if status < 200 || status >= 300 {
			return
		}
		err = config.Repo.Create(c.Request.Context(), &entity.IdempotencyKey{
			Key:          key,
			TerminalID:   terminalID,
			Endpoint:     endpoint,
			ResponseCode: status,
			ResponseBody: rec.body.String(),
			ExpiresAt:    time.Now().Add(IdempotencyKeyTTL),
		})
		if err != nil {
			log.Warn("Failed to store idempotency key", zap.Error(err))
		}
	}
}
