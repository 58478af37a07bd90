package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/genai"

	"github.com/shouni/logo-reimaginer/pkg/config"
	"github.com/shouni/logo-reimaginer/pkg/generator"
	"github.com/shouni/logo-reimaginer/pkg/ingest"
	"github.com/shouni/logo-reimaginer/pkg/preview"
	"github.com/shouni/logo-reimaginer/pkg/prompt"
	"github.com/shouni/logo-reimaginer/pkg/server"
	"github.com/shouni/logo-reimaginer/pkg/workflow"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("起動に失敗しました", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		return err
	}

	brief, err := prompt.Build(cfg.BrandName)
	if err != nil {
		return err
	}

	previews := preview.NewRegistry("")
	ingestor, err := ingest.NewIngestor(previews, ingest.Options{
		MaxBytes:        cfg.MaxUploadBytes,
		Compress:        cfg.CompressUploads,
		CompressQuality: cfg.CompressQuality,
	})
	if err != nil {
		return err
	}

	store := workflow.NewStore(gen, brief)
	go store.RunSweeper(ctx, cfg.SessionIdleTimeout, time.Minute)

	srv, err := server.New(store, previews, ingestor, server.Config{
		BrandName:    cfg.BrandName,
		DownloadName: cfg.DownloadName,
		Rules:        prompt.Rules(cfg.BrandName),
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     srv.Router(),
		ReadTimeout: cfg.HTTPReadTimeout,
		IdleTimeout: cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("サーバーを起動しました", "port", cfg.Port, "model", cfg.ImageModel, "backend", cfg.Backend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP サーバーが停止しました: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("シャットダウンに失敗しました", "error", err)
	}
	slog.Info("サーバーを停止しました", "live_previews", previews.Stats().Live)
	return nil
}

// newGenerator は設定されたバックエンド用の genai クライアントから生成器を組み立てます。
func newGenerator(ctx context.Context, cfg *config.Config) (*generator.GeminiGenerator, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Backend == config.BackendVertex {
		clientCfg = &genai.ClientConfig{
			Project:  cfg.ProjectID,
			Location: cfg.Location,
			Backend:  genai.BackendVertexAI,
		}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("genai クライアントの作成に失敗しました: %w", err)
	}
	model, err := generator.NewSDKModel(client)
	if err != nil {
		return nil, err
	}
	core, err := generator.NewGeminiImageCore(model)
	if err != nil {
		return nil, err
	}
	return generator.NewGeminiGenerator(core, generator.Options{
		Model:       cfg.ImageModel,
		AspectRatio: cfg.AspectRatio,
		Seed:        cfg.Seed,
	})
}
