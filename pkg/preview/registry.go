package preview

import (
	"sync"

	"github.com/google/uuid"
)

// DefaultPathPrefix はプレビュー配信エンドポイントのパスです。
const DefaultPathPrefix = "/previews/"

type entry struct {
	data     []byte
	mimeType string
}

// Stats は生成・解放されたハンドル数の集計です。
type Stats struct {
	Created  int
	Released int
	Live     int
}

// Registry は画面表示用のプレビューをトークン単位で保持します。
// 解放されないハンドルは残り続けるため、呼び出し側が Release する必要があります。
type Registry struct {
	mu       sync.RWMutex
	prefix   string
	entries  map[string]entry
	created  int
	released int
}

// NewRegistry は Registry を生成します。prefix が空なら DefaultPathPrefix を使います。
func NewRegistry(prefix string) *Registry {
	if prefix == "" {
		prefix = DefaultPathPrefix
	}
	return &Registry{
		prefix:  prefix,
		entries: make(map[string]entry),
	}
}

// Create はバイト列を登録してハンドルを返します。
func (r *Registry) Create(data []byte, mimeType string) *Handle {
	token := uuid.NewString()

	r.mu.Lock()
	r.entries[token] = entry{data: data, mimeType: mimeType}
	r.created++
	r.mu.Unlock()

	return &Handle{registry: r, token: token}
}

// Open はトークンに紐づくプレビューを返します。解放済みなら false です。
func (r *Registry) Open(token string) ([]byte, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[token]
	return e.data, e.mimeType, ok
}

// Stats は現在の集計を返します。
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{Created: r.created, Released: r.released, Live: len(r.entries)}
}

func (r *Registry) release(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[token]; !ok {
		return false
	}
	delete(r.entries, token)
	r.released++
	return true
}

// Handle は domain.PreviewHandle の実装です。
type Handle struct {
	registry *Registry
	token    string
	once     sync.Once
}

// Token はハンドルの識別子を返します。
func (h *Handle) Token() string { return h.token }

// URL は画面から参照できるパスを返します。
func (h *Handle) URL() string {
	return h.registry.prefix + h.token
}

// Release はプレビューを解放します。二回目以降は何もせず false を返します。
func (h *Handle) Release() bool {
	released := false
	h.once.Do(func() {
		released = h.registry.release(h.token)
	})
	return released
}
