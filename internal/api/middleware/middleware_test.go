package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-assistant/internal/pkg/common"
)

func init() {
	gin.SetMode(gin.TestMode)
	common.InitNopLogger()
}

func TestWebhookKey(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"session and message", `{"session":{"session_id":"abc","message_id":3}}`, "abc:3"},
		{"no session", `{"request":{}}`, ""},
		{"invalid json", `{`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WebhookKey([]byte(tt.body)))
		})
	}
}

func newDedupRouter(d *Deduplicator, calls *atomic.Int32) *gin.Engine {
	r := gin.New()
	r.POST("/hook", d.Handler(), func(c *gin.Context) {
		n := calls.Add(1)
		c.JSON(http.StatusOK, gin.H{"call": n})
	})
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDeduplicatorReplaysResponse(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDeduplicator(time.Second, WebhookKey)
	d.now = func() time.Time { return now }
	var calls atomic.Int32
	r := newDedupRouter(d, &calls)

	body := `{"session":{"session_id":"s","message_id":1}}`
	first := post(r, body)
	second := post(r, body)

	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, second.Header().Get("Content-Type"), "application/json")

	now = now.Add(2 * time.Second)
	third := post(r, body)
	assert.Equal(t, int32(2), calls.Load())
	assert.NotEqual(t, first.Body.String(), third.Body.String())
}

func TestDeduplicatorIgnoresUnkeyedRequests(t *testing.T) {
	d := NewDeduplicator(time.Second, WebhookKey)
	var calls atomic.Int32
	r := newDedupRouter(d, &calls)

	post(r, `{}`)
	post(r, `{}`)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 0, d.Len())
}

func TestDeduplicatorRejectsInFlightDuplicate(t *testing.T) {
	d := NewDeduplicator(time.Second, WebhookKey)
	d.requests["s:1"] = &recordedResponse{at: d.now()}
	var calls atomic.Int32
	r := newDedupRouter(d, &calls)

	w := post(r, `{"session":{"session_id":"s","message_id":1}}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, int32(0), calls.Load())
}

func TestDeduplicatorCleanup(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDeduplicator(time.Second, WebhookKey)
	d.now = func() time.Time { return now }
	d.requests["old"] = &recordedResponse{at: now.Add(-5 * time.Second), done: true}
	d.requests["fresh"] = &recordedResponse{at: now, done: true}

	d.cleanup()

	assert.Equal(t, 1, d.Len())
	_, ok := d.requests["fresh"]
	assert.True(t, ok)
}

func TestRateLimiterRefills(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }

	allowed := func(key string) bool {
		ok, _ := rl.Allow(key)
		return ok
	}

	assert.True(t, allowed("a"))
	assert.True(t, allowed("a"))
	ok, wait := rl.Allow("a")
	assert.False(t, ok)
	assert.Equal(t, 500*time.Millisecond, wait)

	// 其他用戶端不受影響
	assert.True(t, allowed("b"))

	now = now.Add(500 * time.Millisecond)
	assert.True(t, allowed("a"))
	assert.False(t, allowed("a"))

	now = now.Add(time.Hour)
	assert.True(t, allowed("a"))
	assert.True(t, allowed("a"))
	assert.False(t, allowed("a"))
}

func TestRateLimiterPrune(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }

	rl.Allow("idle")
	rl.Allow("busy")
	rl.Allow("busy")
	now = now.Add(600 * time.Millisecond)

	assert.Equal(t, 1, rl.prune())
	assert.Equal(t, 1, rl.Len())
}

func TestRecoveryReturnsInternalError(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeInternalError)
}
