package server

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shouni/logo-reimaginer/pkg/ingest"
	"github.com/shouni/logo-reimaginer/pkg/preview"
	"github.com/shouni/logo-reimaginer/pkg/workflow"
)

//go:embed templates/index.html
var templateFS embed.FS

// multipartOverhead はファイル本体以外のフォームデータ分の余裕です。
const multipartOverhead = 1 << 20

// Config は画面表示に使う設定値です。
type Config struct {
	BrandName    string
	DownloadName string
	Rules        []string
}

// Server は UI とセッション API を提供する HTTP ハンドラ群です。
type Server struct {
	store    *workflow.Store
	previews *preview.Registry
	ingestor *ingest.Ingestor
	cfg      Config
	page     *template.Template
}

// New は依存関係を注入して Server を初期化します。
func New(store *workflow.Store, previews *preview.Registry, ingestor *ingest.Ingestor, cfg Config) (*Server, error) {
	if store == nil || previews == nil || ingestor == nil {
		return nil, fmt.Errorf("store, previews and ingestor are required")
	}
	if cfg.DownloadName == "" {
		cfg.DownloadName = "reimagined.png"
	}
	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("テンプレートの読み込みに失敗しました: %w", err)
	}
	return &Server{
		store:    store,
		previews: previews,
		ingestor: ingestor,
		cfg:      cfg,
		page:     page,
	}, nil
}

// Router はルーティングとミドルウェアを組み立てます。
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		requestLogger,
	)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get(preview.DefaultPathPrefix+"{token}", s.handlePreview)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Put("/images/{slot}", s.handleUpload)
		r.Delete("/images/{slot}", s.handleRemove)
		r.Post("/generate", s.handleGenerate)
		r.Post("/retry", s.handleRetry)
		r.Get("/result", s.handleResult)
		r.Get("/result/download", s.handleDownload)
		r.Delete("/session", s.handleEndSession)
	})

	return r
}
