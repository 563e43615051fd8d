package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-crewpay/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb, _ := redismock.NewClientMock()

	handlerCalled := false
	r := gin.New()
	r.POST("/debts", middleware.Idempotency(rdb), func(c *gin.Context) {
		handlerCalled = true
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/debts", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.True(t, handlerCalled)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestIdempotency_ReplayedKeyReturnsCachedResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("idemp:/debts::req-123").SetVal(`{"id":"abc"}`)

	handlerCalled := false
	r := gin.New()
	r.POST("/debts", middleware.Idempotency(rdb), func(c *gin.Context) {
		handlerCalled = true
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/debts", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.False(t, handlerCalled)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"abc"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_ConcurrentDuplicateRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("idemp:/debts::req-123").RedisNil()
	mock.ExpectSetNX("idemp:/debts::req-123:lock", "locked", 30*time.Second).SetVal(false)

	handlerCalled := false
	r := gin.New()
	r.POST("/debts", middleware.Idempotency(rdb), func(c *gin.Context) {
		handlerCalled = true
	})

	req := httptest.NewRequest(http.MethodPost, "/debts", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.False(t, handlerCalled)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "PROCESSING")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_FreshKeyAcquiresLock(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("idemp:/debts::req-123").RedisNil()
	mock.ExpectSetNX("idemp:/debts::req-123:lock", "locked", 30*time.Second).SetVal(true)

	var cacheKey, lockKey string
	r := gin.New()
	r.POST("/debts", middleware.Idempotency(rdb), func(c *gin.Context) {
		cacheKey = c.GetString("idempotency_cache_key")
		lockKey = c.GetString("idempotency_lock_key")
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/debts", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "idemp:/debts::req-123", cacheKey)
	assert.Equal(t, "idemp:/debts::req-123:lock", lockKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}
