package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shouni/logo-reimaginer/pkg/generator"
)

// Store はセッション ID ごとに Session を保持するインメモリのストアです。
// セッションをまたいだ永続化は行いません。
type Store struct {
	generator generator.ImageGenerator
	prompt    string

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore は Store を初期化します。
func NewStore(gen generator.ImageGenerator, prompt string) *Store {
	return &Store{
		generator: gen,
		prompt:    prompt,
		sessions:  make(map[string]*Session),
	}
}

// Create は新しいセッションを生成して登録します。
func (st *Store) Create() *Session {
	s := NewSession(uuid.NewString(), st.generator, st.prompt)
	st.mu.Lock()
	st.sessions[s.ID()] = s
	st.mu.Unlock()
	return s
}

// Get は ID に対応するセッションを返します。
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

// GetOrCreate は既存のセッションを返し、なければ新規に作成します。
func (st *Store) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if s, ok := st.Get(id); ok {
			return s, false
		}
	}
	return st.Create(), true
}

// Delete はセッションを破棄し、保持していたプレビューを解放します。
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

// Len は保持しているセッション数を返します。
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep は maxIdle を超えて操作のないセッションを破棄します。loading 中のセッションは残します。
func (st *Store) Sweep(maxIdle time.Duration) int {
	now := time.Now()
	var expired []*Session

	st.mu.Lock()
	for id, s := range st.sessions {
		idle, loading := s.idleSince(now)
		if loading || idle < maxIdle {
			continue
		}
		delete(st.sessions, id)
		expired = append(expired, s)
	}
	st.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		slog.Info("放置されたセッションを破棄しました", "count", len(expired), "remaining", st.Len())
	}
	return len(expired)
}

// RunSweeper は ctx が終了するまで定期的に Sweep を実行します。
func (st *Store) RunSweeper(ctx context.Context, maxIdle, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Sweep(maxIdle)
		}
	}
}
