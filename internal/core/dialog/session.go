package dialog

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"recipe-assistant/internal/core/search"
	"recipe-assistant/internal/pkg/common"
)

// SessionState 單一會話的狀態
// AwaitingSelection 為 true 時 AllResults 一定非空
type SessionState struct {
	ID                string                `json:"session_id"`
	PreviousTitles    []string              `json:"previous_titles"`
	CurrentIntent     Intent                `json:"current_intent"`
	LastQuery         string                `json:"last_query"`
	AwaitingSelection bool                  `json:"awaiting_selection"`
	CurrentPage       int                   `json:"current_page"`
	AllResults        []search.ScoredRecipe `json:"-"`
	LastShown         []search.ScoredRecipe `json:"-"`
	LastShownTitle    string                `json:"last_shown_title"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

func newSessionState(id string, now time.Time) *SessionState {
	return &SessionState{ID: id, CreatedAt: now, UpdatedAt: now}
}

// clearResults 回到沒有待選列表的狀態
func (s *SessionState) clearResults() {
	s.AllResults = nil
	s.LastShown = nil
	s.CurrentPage = 0
	s.AwaitingSelection = false
}

// markShown 記錄已顯示的食譜
func (s *SessionState) markShown(title string) {
	s.LastShownTitle = title
	s.AwaitingSelection = false
	if !s.HasShown(title) {
		s.PreviousTitles = append(s.PreviousTitles, title)
	}
}

// HasShown 食譜是否已顯示過
func (s *SessionState) HasShown(title string) bool {
	for _, t := range s.PreviousTitles {
		if t == title {
			return true
		}
	}
	return false
}

func (s *SessionState) clone() SessionState {
	c := *s
	c.PreviousTitles = append([]string(nil), s.PreviousTitles...)
	c.AllResults = append([]search.ScoredRecipe(nil), s.AllResults...)
	c.LastShown = append([]search.ScoredRecipe(nil), s.LastShown...)
	return c
}

type sessionEntry struct {
	mu    sync.Mutex
	state *SessionState
}

// Store 會話狀態存放處，同一會話的回合依序執行
type Store struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewStore ttl 為 0 時不過期
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *Store) entry(id string) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		e = &sessionEntry{state: newSessionState(id, s.now())}
		s.sessions[id] = e
	}
	return e
}

// With 在會話鎖內執行 fn，會話不存在時建立
func (s *Store) With(id string, fn func(state *SessionState)) {
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	fn(e.state)
	e.state.UpdatedAt = s.now()
}

// Snapshot 取得會話狀態的副本
func (s *Store) Snapshot(id string) (SessionState, bool) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return SessionState{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone(), true
}

// Reset 刪除會話，回傳是否存在
func (s *Store) Reset(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// Len 會話數量
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Cleanup 移除閒置超過 ttl 的會話；正在處理中的會話略過
func (s *Store) Cleanup() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, e := range s.sessions {
		if !e.mu.TryLock() {
			continue
		}
		if e.state.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}

// Start 定期清理，直到 ctx 結束
func (s *Store) Start(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Cleanup(); n > 0 {
					common.LogDebug("清理閒置會話",
						zap.Int("removed", n),
						zap.Int("remaining", s.Len()),
					)
				}
			}
		}
	}()
}
