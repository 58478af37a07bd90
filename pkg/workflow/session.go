package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shouni/logo-reimaginer/pkg/domain"
	"github.com/shouni/logo-reimaginer/pkg/generator"
)

var (
	ErrNoMainImage    = errors.New("upload the current logo to begin")
	ErrInFlight       = errors.New("a generation is already in progress")
	ErrNothingToRetry = errors.New("there is no failed generation to retry")
)

// Session はひとつのブラウザセッションのフォーム状態と生成ライフサイクルを保持します。
// idle → loading → success | failure の遷移のみを許可し、loading 中の取り消しはありません。
type Session struct {
	id        string
	generator generator.ImageGenerator
	prompt    string

	mu         sync.Mutex
	main       *domain.UploadedImage
	font       *domain.UploadedImage
	state      domain.GenerationState
	formError  string
	lastReq    *domain.GenerationRequest
	lastActive time.Time
	closed     bool
}

// NewSession は Session を生成します。
func NewSession(id string, gen generator.ImageGenerator, prompt string) *Session {
	return &Session{
		id:         id,
		generator:  gen,
		prompt:     prompt,
		lastActive: time.Now(),
	}
}

func (s *Session) ID() string { return s.id }

// SetImage はスロットに画像をセットします。既存の画像があればそのプレビューを解放します。
func (s *Session) SetImage(slot domain.Slot, img *domain.UploadedImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.closed {
		img.ReleasePreview()
		return
	}

	old := s.slotPtr(slot)
	if *old != nil && *old != img {
		(*old).ReleasePreview()
	}
	*old = img
	s.formError = ""
}

// RemoveImage はスロットの画像を取り除き、プレビューを解放します。
func (s *Session) RemoveImage(slot domain.Slot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	p := s.slotPtr(slot)
	if *p == nil {
		return false
	}
	(*p).ReleasePreview()
	*p = nil
	if slot == domain.SlotMain {
		// メインロゴがなくなった時点で再送用のペイロードも手放す
		s.lastReq = nil
	}
	return true
}

// ReportIngestionError はフォームレベルのエラーを記録します。
// 生成状態とアップロード済みの画像には触れません。
func (s *Session) ReportIngestionError(slot domain.Slot, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.formError = fmt.Sprintf("Failed to process %s: %v", slot.Label(), err)
}

// CanSubmit は送信ボタンを有効にできるかを返します。
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSubmitLocked()
}

func (s *Session) canSubmitLocked() bool {
	return s.main != nil && !s.state.IsLoading()
}

// State は現在の生成状態を返します。
func (s *Session) State() domain.GenerationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit は現在の画像から生成要求を組み立て、完了まで待ちます。
// ガード違反のときだけエラーを返し、生成の失敗は failure 状態として記録されます。
func (s *Session) Submit(ctx context.Context) (domain.GenerationState, error) {
	req, err := s.begin()
	if err != nil {
		return s.State(), err
	}
	return s.run(ctx, req), nil
}

// Retry は直前に失敗したリクエストを同じ入力で再実行します。
func (s *Session) Retry(ctx context.Context) (domain.GenerationState, error) {
	req, err := s.beginRetry()
	if err != nil {
		return s.State(), err
	}
	return s.run(ctx, req), nil
}

// Start は Submit の非同期版です。loading への遷移は呼び出し中に完了し、
// 外部呼び出しはリクエストのキャンセルから切り離して実行されます。
func (s *Session) Start(ctx context.Context) (<-chan struct{}, error) {
	req, err := s.begin()
	if err != nil {
		return nil, err
	}
	return s.runAsync(ctx, req), nil
}

// StartRetry は Retry の非同期版です。
func (s *Session) StartRetry(ctx context.Context) (<-chan struct{}, error) {
	req, err := s.beginRetry()
	if err != nil {
		return nil, err
	}
	return s.runAsync(ctx, req), nil
}

func (s *Session) runAsync(ctx context.Context, req domain.GenerationRequest) <-chan struct{} {
	done := make(chan struct{})
	detached := context.WithoutCancel(ctx)
	go func() {
		defer close(done)
		s.run(detached, req)
	}()
	return done
}

func (s *Session) begin() (domain.GenerationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.main == nil {
		return domain.GenerationRequest{}, ErrNoMainImage
	}
	if s.state.IsLoading() {
		return domain.GenerationRequest{}, ErrInFlight
	}

	req, err := domain.NewGenerationRequest(s.main, s.font, s.prompt)
	if err != nil {
		return domain.GenerationRequest{}, err
	}
	s.lastReq = &req
	s.state = s.state.Loading()
	return req, nil
}

func (s *Session) beginRetry() (domain.GenerationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.state.IsLoading() {
		return domain.GenerationRequest{}, ErrInFlight
	}
	if s.state.Phase() != domain.PhaseFailure {
		return domain.GenerationRequest{}, ErrNothingToRetry
	}
	if s.main == nil {
		return domain.GenerationRequest{}, ErrNoMainImage
	}
	if s.lastReq == nil {
		return domain.GenerationRequest{}, ErrNothingToRetry
	}
	s.state = s.state.Loading()
	return *s.lastReq, nil
}

func (s *Session) run(ctx context.Context, req domain.GenerationRequest) domain.GenerationState {
	slog.InfoContext(ctx, "生成を開始します", "session", s.id, "has_font_reference", req.HasFont())

	res, err := s.generator.Generate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err != nil {
		slog.WarnContext(ctx, "生成に失敗しました", "session", s.id, "error", err)
		s.state = s.state.Failed(generator.UserMessage(err))
	} else if res == nil || len(res.Data) == 0 {
		s.state = s.state.Failed(generator.FallbackMessage)
	} else {
		s.state = s.state.Succeeded(res)
	}
	return s.state
}

// Close はセッションが保持するすべてのプレビューを解放します。
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.main.ReleasePreview()
	s.font.ReleasePreview()
	s.main, s.font = nil, nil
}

// idleSince は最後の操作からの経過時間と loading 中かどうかを返します。
func (s *Session) idleSince(now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive), s.state.IsLoading()
}

func (s *Session) touch() {
	s.lastActive = time.Now()
}

func (s *Session) slotPtr(slot domain.Slot) **domain.UploadedImage {
	if slot == domain.SlotFont {
		return &s.font
	}
	return &s.main
}
