package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/cartcore-backend/internal/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	str, _ := value.(string)
	f.data[key] = str
	return nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeStore) Del(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func idempotentRouter(store *fakeStore, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/purchase", func(c *gin.Context) {
		c.Set(UserIDKey, uint(7))
		c.Next()
	}, Idempotency(store, time.Hour), handler)
	return router
}

func postPurchase(router *gin.Engine, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/purchase", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	calls := 0
	router := idempotentRouter(store, func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"order_id": calls})
	})

	first := postPurchase(router, "abc", `{"coupon_id":1}`)
	require.Equal(t, http.StatusCreated, first.Code)

	second := postPurchase(router, "abc", `{"coupon_id":1}`)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, 1, calls)
}

func TestIdempotency_RejectsDifferentBody(t *testing.T) {
	store := newFakeStore()
	router := idempotentRouter(store, func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	require.Equal(t, http.StatusCreated, postPurchase(router, "abc", `{"coupon_id":1}`).Code)

	w := postPurchase(router, "abc", `{"coupon_id":2}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperrors.IdempotencyKeyReused, decodeErrorCode(t, w))
}

func TestIdempotency_InFlightRequestConflicts(t *testing.T) {
	store := newFakeStore()
	router := idempotentRouter(store, func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	// a pending reservation left by a request that has not finished
	key := store.IdempotencyKey("7|POST|/purchase", "abc")
	require.NoError(t, store.Set(context.Background(), key, `{"status":0,"body":"","request_hash":"`+hashBody([]byte(`{}`))+`"}`, time.Hour))

	w := postPurchase(router, "abc", `{}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperrors.IdempotencyInProgress, decodeErrorCode(t, w))
}

func TestIdempotency_ServerErrorReleasesKey(t *testing.T) {
	store := newFakeStore()
	fail := true
	calls := 0
	router := idempotentRouter(store, func(c *gin.Context) {
		calls++
		if fail {
			_ = c.Error(errors.New("db down"))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_SERVER_ERROR"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	assert.Equal(t, http.StatusInternalServerError, postPurchase(router, "abc", `{}`).Code)
	assert.Empty(t, store.data)

	fail = false
	assert.Equal(t, http.StatusCreated, postPurchase(router, "abc", `{}`).Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotency_ClientErrorsAreReplayed(t *testing.T) {
	store := newFakeStore()
	calls := 0
	router := idempotentRouter(store, func(c *gin.Context) {
		calls++
		apperrors.BadRequest(c, apperrors.NoItemsInCart, "장바구니가 비어 있습니다")
	})

	first := postPurchase(router, "abc", `{}`)
	second := postPurchase(router, "abc", `{}`)
	assert.Equal(t, http.StatusBadRequest, first.Code)
	assert.Equal(t, http.StatusBadRequest, second.Code)
	assert.Equal(t, apperrors.NoItemsInCart, decodeErrorCode(t, second))
	assert.Equal(t, 1, calls)
}

func TestIdempotency_WithoutHeaderPassesThrough(t *testing.T) {
	store := newFakeStore()
	calls := 0
	router := idempotentRouter(store, func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	postPurchase(router, "", `{}`)
	postPurchase(router, "", `{}`)
	assert.Equal(t, 2, calls)
	assert.Empty(t, store.data)
}

func TestIdempotency_HandlerSeesOriginalBody(t *testing.T) {
	store := newFakeStore()
	var got map[string]interface{}
	router := idempotentRouter(store, func(c *gin.Context) {
		require.NoError(t, c.ShouldBindJSON(&got))
		c.Status(http.StatusNoContent)
	})

	postPurchase(router, "abc", `{"coupon_id":3}`)
	assert.Equal(t, float64(3), got["coupon_id"])
}
