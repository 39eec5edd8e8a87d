package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/cartcore-backend/internal/errors"
	pkgredis "github.com/ikkim/cartcore-backend/pkg/redis"
)

const IdempotencyKeyHeader = "Idempotency-Key"

// idempotencyRecord with a zero Status marks a request still in flight.
type idempotencyRecord struct {
	Status      int    `json:"status"`
	Body        string `json:"body"`
	ContentType string `json:"content_type,omitempty"`
	RequestHash string `json:"request_hash"`
}

// Idempotency replays the stored response when a request repeats an
// Idempotency-Key with the same body. Requests without the header pass through.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempotencyKey := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if store == nil || idempotencyKey == "" {
			c.Next()
			return
		}

		log := GetLoggerFromContext(c)
		ctx := c.Request.Context()

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			apperrors.Malformed(c, "")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		requestHash := hashBody(body)
		key := store.IdempotencyKey(buildScope(c), idempotencyKey)

		stored, err := store.Get(ctx, key)
		if err != nil && !pkgredis.IsNil(err) {
			log.Error("Failed to read idempotency record", err, map[string]interface{}{
				"idempotency_key": idempotencyKey,
			})
			apperrors.InternalError(c, "")
			c.Abort()
			return
		}
		if stored != "" {
			if replayStored(c, stored, requestHash) {
				log.Info("Replayed idempotent response", map[string]interface{}{
					"idempotency_key": idempotencyKey,
				})
			}
			c.Abort()
			return
		}

		pending, err := json.Marshal(idempotencyRecord{RequestHash: requestHash})
		if err != nil {
			apperrors.InternalError(c, "")
			c.Abort()
			return
		}
		reserved, err := store.SetNX(ctx, key, string(pending), ttl)
		if err != nil {
			log.Error("Failed to reserve idempotency key", err, map[string]interface{}{
				"idempotency_key": idempotencyKey,
			})
			apperrors.InternalError(c, "")
			c.Abort()
			return
		}
		if !reserved {
			apperrors.Conflict(c, apperrors.IdempotencyInProgress, "같은 요청이 처리 중입니다")
			c.Abort()
			return
		}

		capture := &responseCapture{ResponseWriter: c.Writer}
		c.Writer = capture

		c.Next()

		// the record must land even if the client has gone away
		ctx = context.WithoutCancel(ctx)
		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			// let the client retry after a server failure
			if err := store.Del(ctx, key); err != nil {
				log.Error("Failed to release idempotency key", err, map[string]interface{}{
					"idempotency_key": idempotencyKey,
				})
			}
			return
		}

		record := idempotencyRecord{
			Status:      status,
			Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
			ContentType: capture.Header().Get("Content-Type"),
			RequestHash: requestHash,
		}
		payload, err := json.Marshal(record)
		if err != nil {
			log.Error("Failed to encode idempotency record", err, nil)
			return
		}
		if err := store.Set(ctx, key, string(payload), ttl); err != nil {
			log.Error("Failed to persist idempotency record", err, map[string]interface{}{
				"idempotency_key": idempotencyKey,
			})
		}
	}
}

func replayStored(c *gin.Context, stored, requestHash string) bool {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		apperrors.InternalError(c, "")
		return false
	}
	if record.RequestHash != requestHash {
		apperrors.Conflict(c, apperrors.IdempotencyKeyReused, "같은 멱등성 키로 다른 요청을 보낼 수 없습니다")
		return false
	}
	if record.Status == 0 {
		apperrors.Conflict(c, apperrors.IdempotencyInProgress, "같은 요청이 처리 중입니다")
		return false
	}

	body, err := base64.StdEncoding.DecodeString(record.Body)
	if err != nil {
		apperrors.InternalError(c, "")
		return false
	}
	contentType := record.ContentType
	if contentType == "" {
		contentType = "application/json; charset=utf-8"
	}
	c.Header("Idempotent-Replayed", "true")
	c.Data(record.Status, contentType, body)
	return true
}

func buildScope(c *gin.Context) string {
	userID, _ := GetUserID(c)
	return fmt.Sprintf("%d|%s|%s", userID, c.Request.Method, c.Request.URL.Path)
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

type responseCapture struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *responseCapture) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseCapture) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}
