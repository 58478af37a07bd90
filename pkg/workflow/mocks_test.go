package workflow

import (
	"context"
	"sync"

	"github.com/shouni/logo-reimaginer/pkg/domain"
)

// fakeGenerator は generator.ImageGenerator のテスト用モックなのだ。
type fakeGenerator struct {
	mu       sync.Mutex
	requests []domain.GenerationRequest
	results  []fakeResult
	block    chan struct{} // nil でなければ close されるまで待つのだ
}

type fakeResult struct {
	resp *domain.ImageResponse
	err  error
}

func (f *fakeGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	idx := len(f.requests) - 1
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if idx < len(f.results) {
		return f.results[idx].resp, f.results[idx].err
	}
	return &domain.ImageResponse{Data: []byte("generated"), MimeType: "image/png"}, nil
}

func (f *fakeGenerator) calls() []domain.GenerationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.GenerationRequest(nil), f.requests...)
}

// fakePreview は解放回数を数えるプレビューハンドルなのだ。
type fakePreview struct {
	mu       sync.Mutex
	url      string
	released int
}

func (p *fakePreview) URL() string { return p.url }

func (p *fakePreview) Release() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released++
	return p.released == 1
}

func (p *fakePreview) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}

func uploaded(name string, payload string) (*domain.UploadedImage, *fakePreview) {
	p := &fakePreview{url: "/previews/" + name}
	return &domain.UploadedImage{
		Filename: name,
		Size:     int64(len(payload)),
		MimeType: "image/png",
		Payload:  []byte(payload),
		Preview:  p,
	}, p
}
