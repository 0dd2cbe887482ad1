package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-assistant/internal/pkg/common"
)

// KeyFunc 由請求體算出去重鍵，回傳空字串表示不去重
type KeyFunc func(body []byte) string

// WebhookKey 語音平台重送時 session_id 與 message_id 不變
func WebhookKey(body []byte) string {
	var envelope struct {
		Session struct {
			SessionID string `json:"session_id"`
			MessageID int64  `json:"message_id"`
		} `json:"session"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Session.SessionID == "" {
		return ""
	}
	return envelope.Session.SessionID + ":" + strconv.FormatInt(envelope.Session.MessageID, 10)
}

// recordedResponse 已完成請求的回應
type recordedResponse struct {
	at          time.Time
	done        bool
	status      int
	contentType string
	body        []byte
}

// Deduplicator 在時間窗內重播相同鍵的回應
type Deduplicator struct {
	mu       sync.Mutex
	window   time.Duration
	key      KeyFunc
	requests map[string]*recordedResponse
	now      func() time.Time
}

// NewDeduplicator window 不大於 0 時使用 1 秒
func NewDeduplicator(window time.Duration, key KeyFunc) *Deduplicator {
	if window <= 0 {
		window = time.Second
	}
	return &Deduplicator{
		window:   window,
		key:      key,
		requests: make(map[string]*recordedResponse),
		now:      time.Now,
	}
}

// Start 定期清除過期紀錄，直到 ctx 結束
func (d *Deduplicator) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * d.window
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.cleanup()
			}
		}
	}()
}

func (d *Deduplicator) cleanup() {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	for k, r := range d.requests {
		if now.Sub(r.at) > d.window {
			delete(d.requests, k)
		}
	}
}

// Len 目前紀錄數
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.requests)
}

// bodyRecorder 同時寫出並保留回應內容
type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Handler 去重中間件：重複請求直接重播上次回應，處理中則回 429
func (d *Deduplicator) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost || c.Request.Body == nil {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			common.LogWarn("Failed to read request body", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrInvalidRequest.ToResponse(false))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		key := d.key(body)
		if key == "" {
			c.Next()
			return
		}

		now := d.now()
		d.mu.Lock()
		if prev, ok := d.requests[key]; ok && now.Sub(prev.at) <= d.window {
			if !prev.done {
				d.mu.Unlock()
				common.LogInfo("重複請求處理中", zap.String("key", key))
				c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrTooManyRequests.ToResponse(false))
				return
			}
			status, contentType, replay := prev.status, prev.contentType, prev.body
			d.mu.Unlock()
			common.LogInfo("重播重複請求的回應", zap.String("key", key))
			c.Data(status, contentType, replay)
			c.Abort()
			return
		}
		entry := &recordedResponse{at: now}
		d.requests[key] = entry
		d.mu.Unlock()

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		d.mu.Lock()
		entry.done = true
		entry.status = recorder.Status()
		entry.contentType = recorder.Header().Get("Content-Type")
		entry.body = recorder.buf.Bytes()
		d.mu.Unlock()
	}
}
