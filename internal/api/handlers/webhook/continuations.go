package webhook

import (
	"sync"
	"time"
)

type pendingChunks struct {
	chunks []string
	at     time.Time
}

// continuations 每個會話尚未讀出的段落
type continuations struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*pendingChunks
	now     func() time.Time
}

func newContinuations(ttl time.Duration) *continuations {
	return &continuations{
		ttl:     ttl,
		entries: make(map[string]*pendingChunks),
		now:     time.Now,
	}
}

// set 取代會話的待讀段落，順便清掉過期的
func (c *continuations) set(sessionID string, chunks []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.ttl > 0 {
		for id, p := range c.entries {
			if now.Sub(p.at) > c.ttl {
				delete(c.entries, id)
			}
		}
	}
	c.entries[sessionID] = &pendingChunks{chunks: chunks, at: now}
}

// pop 取出下一段；more 表示之後還有
func (c *continuations) pop(sessionID string) (chunk string, more bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, exists := c.entries[sessionID]
	if !exists || len(p.chunks) == 0 {
		return "", false, false
	}
	chunk, p.chunks = p.chunks[0], p.chunks[1:]
	p.at = c.now()
	if len(p.chunks) == 0 {
		delete(c.entries, sessionID)
	}
	return chunk, len(p.chunks) > 0, true
}

func (c *continuations) clear(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sessionID)
}
