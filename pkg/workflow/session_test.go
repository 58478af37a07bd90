package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/shouni/logo-reimaginer/pkg/domain"
	"github.com/shouni/logo-reimaginer/pkg/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrompt = "redesign the logo"

func TestSession_SubmitWithoutMainImage(t *testing.T) {
	gen := &fakeGenerator{}
	s := NewSession("s1", gen, testPrompt)

	assert.False(t, s.CanSubmit())

	st, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNoMainImage)
	assert.Equal(t, domain.PhaseIdle, st.Phase())
	assert.Empty(t, gen.calls(), "generator must never be invoked without a main image")
}

func TestSession_SubmitSuccess(t *testing.T) {
	imageB := &domain.ImageResponse{Data: []byte("image-B"), MimeType: "image/png"}
	gen := &fakeGenerator{results: []fakeResult{{resp: imageB}}}
	s := NewSession("s1", gen, testPrompt)

	imageA, _ := uploaded("a.png", "image-A")
	s.SetImage(domain.SlotMain, imageA)
	require.True(t, s.CanSubmit())

	st, err := s.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.PhaseSuccess, st.Phase())
	assert.Same(t, imageB, st.Result())
	assert.Empty(t, st.Error())

	calls := gen.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []byte("image-A"), calls[0].MainPayload)
	assert.False(t, calls[0].HasFont())
	assert.Equal(t, testPrompt, calls[0].Prompt)
}

func TestSession_FailureThenRetry(t *testing.T) {
	netErr := &generator.GenerationError{Reason: "image generation request failed", Err: errors.New("network unreachable")}
	gen := &fakeGenerator{results: []fakeResult{
		{err: netErr},
		{resp: &domain.ImageResponse{Data: []byte("image-B"), MimeType: "image/png"}},
	}}
	s := NewSession("s1", gen, testPrompt)

	imageA, _ := uploaded("a.png", "image-A")
	s.SetImage(domain.SlotMain, imageA)

	st, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseFailure, st.Phase())
	assert.Contains(t, st.Error(), "network unreachable")
	assert.Nil(t, st.Result())

	st, err = s.Retry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseSuccess, st.Phase())
	assert.Empty(t, st.Error())

	calls := gen.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0], calls[1], "retry must replay the same stored inputs")
}

func TestSession_FailureClearsPreviousResult(t *testing.T) {
	gen := &fakeGenerator{results: []fakeResult{
		{resp: &domain.ImageResponse{Data: []byte("first"), MimeType: "image/png"}},
		{err: errors.New("quota exceeded")},
	}}
	s := NewSession("s1", gen, testPrompt)
	imageA, _ := uploaded("a.png", "image-A")
	s.SetImage(domain.SlotMain, imageA)

	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	st, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseFailure, st.Phase())
	assert.Nil(t, st.Result())

	_, ok := s.Result()
	assert.False(t, ok)
}

func TestSession_RetryWithoutFailure(t *testing.T) {
	s := NewSession("s1", &fakeGenerator{}, testPrompt)
	_, err := s.Retry(context.Background())
	assert.ErrorIs(t, err, ErrNothingToRetry)

	imageA, _ := uploaded("a.png", "image-A")
	s.SetImage(domain.SlotMain, imageA)
	_, err = s.Submit(context.Background())
	require.NoError(t, err)

	_, err = s.Retry(context.Background())
	assert.ErrorIs(t, err, ErrNothingToRetry, "retry is only offered after a failure")
}

func TestSession_RetryAfterMainImageRemoved(t *testing.T) {
	netErr := &generator.GenerationError{Reason: "image generation request failed", Err: errors.New("timeout")}
	gen := &fakeGenerator{results: []fakeResult{{err: netErr}}}
	s := NewSession("s1", gen, testPrompt)

	imageA, _ := uploaded("a.png", "image-A")
	s.SetImage(domain.SlotMain, imageA)

	st, err := s.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.PhaseFailure, st.Phase())

	require.True(t, s.RemoveImage(domain.SlotMain))
	assert.False(t, s.CanSubmit())

	st, err = s.Retry(context.Background())
	assert.ErrorIs(t, err, ErrNoMainImage)
	assert.Equal(t, domain.PhaseFailure, st.Phase(), "the failed state stays as it was")
	assert.Len(t, gen.calls(), 1, "retry must not reach the generator without a main image")

	_, err = s.StartRetry(context.Background())
	assert.ErrorIs(t, err, ErrNoMainImage)

	// 再アップロード後も、削除前のリクエストは再送されないのだ
	imageC, _ := uploaded("c.png", "image-C")
	s.SetImage(domain.SlotMain, imageC)
	_, err = s.Retry(context.Background())
	assert.ErrorIs(t, err, ErrNothingToRetry)
	assert.Len(t, gen.calls(), 1)
}

func TestSession_GuardWhileLoading(t *testing.T) {
	gen := &fakeGenerator{block: make(chan struct{})}
	s := NewSession("s1", gen, testPrompt)
	imageA, _ := uploaded("a.png", "image-A")
	s.SetImage(domain.SlotMain, imageA)

	done, err := s.Start(context.Background())
	require.NoError(t, err)

	assert.True(t, s.State().IsLoading())
	assert.False(t, s.CanSubmit())

	_, err = s.Start(context.Background())
	assert.ErrorIs(t, err, ErrInFlight)
	_, err = s.StartRetry(context.Background())
	assert.ErrorIs(t, err, ErrInFlight)

	close(gen.block)
	<-done

	assert.Equal(t, domain.PhaseSuccess, s.State().Phase())
	assert.Len(t, gen.calls(), 1, "only one call may be in flight")
}

func TestSession_StartSurvivesRequestCancellation(t *testing.T) {
	gen := &fakeGenerator{block: make(chan struct{})}
	s := NewSession("s1", gen, testPrompt)
	imageA, _ := uploaded("a.png", "image-A")
	s.SetImage(domain.SlotMain, imageA)

	ctx, cancel := context.WithCancel(context.Background())
	done, err := s.Start(ctx)
	require.NoError(t, err)
	cancel()

	close(gen.block)
	<-done
	assert.Equal(t, domain.PhaseSuccess, s.State().Phase())
}

func TestSession_ImageLifecycle(t *testing.T) {
	t.Run("差し替えで古いプレビューが一度だけ解放されるのだ", func(t *testing.T) {
		s := NewSession("s1", &fakeGenerator{}, testPrompt)
		first, p1 := uploaded("a.png", "A")
		second, p2 := uploaded("b.png", "B")

		s.SetImage(domain.SlotMain, first)
		s.SetImage(domain.SlotMain, second)

		assert.Equal(t, 1, p1.count())
		assert.Equal(t, 0, p2.count())
	})

	t.Run("取り込み直後の削除で解放は一度だけなのだ", func(t *testing.T) {
		s := NewSession("s1", &fakeGenerator{}, testPrompt)
		img, p := uploaded("a.png", "A")

		s.SetImage(domain.SlotFont, img)
		assert.True(t, s.RemoveImage(domain.SlotFont))
		assert.False(t, s.RemoveImage(domain.SlotFont))
		s.Close()

		assert.Equal(t, 1, p.count())
	})

	t.Run("Close で残っているプレビューを解放するのだ", func(t *testing.T) {
		s := NewSession("s1", &fakeGenerator{}, testPrompt)
		main, pm := uploaded("a.png", "A")
		font, pf := uploaded("f.png", "F")
		s.SetImage(domain.SlotMain, main)
		s.SetImage(domain.SlotFont, font)

		s.Close()
		s.Close()

		assert.Equal(t, 1, pm.count())
		assert.Equal(t, 1, pf.count())
	})

	t.Run("Close 後のアップロードは即座に解放するのだ", func(t *testing.T) {
		s := NewSession("s1", &fakeGenerator{}, testPrompt)
		s.Close()

		img, p := uploaded("late.png", "L")
		s.SetImage(domain.SlotMain, img)
		assert.Equal(t, 1, p.count())
		assert.Nil(t, s.Snapshot().Main)
	})
}

func TestSession_IngestionErrorKeepsState(t *testing.T) {
	s := NewSession("s1", &fakeGenerator{}, testPrompt)
	img, p := uploaded("a.png", "A")
	s.SetImage(domain.SlotMain, img)

	s.ReportIngestionError(domain.SlotFont, errors.New("file exceeds the upload size limit"))

	v := s.Snapshot()
	assert.Contains(t, v.FormError, "font reference image")
	assert.Equal(t, domain.PhaseIdle, v.Phase)
	require.NotNil(t, v.Main, "an already uploaded image must survive")
	assert.Equal(t, 0, p.count())

	other, _ := uploaded("f.png", "F")
	s.SetImage(domain.SlotFont, other)
	assert.Empty(t, s.Snapshot().FormError, "a successful upload clears the form error")
}

func TestSession_Snapshot(t *testing.T) {
	s := NewSession("s1", &fakeGenerator{}, testPrompt)
	img, _ := uploaded("a.png", "A")
	s.SetImage(domain.SlotMain, img)

	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	v := s.Snapshot()
	assert.Equal(t, domain.PhaseSuccess, v.Phase)
	assert.True(t, v.HasResult)
	assert.Equal(t, "image/png", v.ResultType)
	assert.True(t, v.CanSubmit)
	require.NotNil(t, v.Main)
	assert.Equal(t, "/previews/a.png", v.Main.PreviewURL)
	assert.Nil(t, v.Font)
}
