package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"rafiq-chat/internal/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newLimitedRouter(limit int) *gin.Engine {
	store := ratelimit.NewMemoryStore(ratelimit.Config{Limit: limit, Window: time.Minute})
	r := gin.New()
	r.Use(RateLimit(store))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func doGet(r *gin.Engine, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitRejectsOverLimit(t *testing.T) {
	r := newLimitedRouter(2)

	assert.Equal(t, http.StatusOK, doGet(r, "1.2.3.4").Code)
	assert.Equal(t, http.StatusOK, doGet(r, "1.2.3.4").Code)

	w := doGet(r, "1.2.3.4")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "تجاوزت الحد المسموح")
}

func TestRateLimitHeadersSet(t *testing.T) {
	r := newLimitedRouter(5)
	w := doGet(r, "1.2.3.4")
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitSeparatesClients(t *testing.T) {
	r := newLimitedRouter(1)
	assert.Equal(t, http.StatusOK, doGet(r, "1.1.1.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(r, "1.1.1.1").Code)
	assert.Equal(t, http.StatusOK, doGet(r, "2.2.2.2").Code)
}

func TestRecoveryReturns500(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "UNKNOWN_ERROR")
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.POST("/api/chat", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
