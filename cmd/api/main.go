package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/life-coach/backend/internal/config"
	"github.com/zhouzirui/life-coach/backend/internal/handler"
	"github.com/zhouzirui/life-coach/backend/internal/service/ai"
	"github.com/zhouzirui/life-coach/backend/internal/service/history"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	store, err := openHistoryStore(cfg.History)
	if err != nil {
		log.Fatalf("failed to open history store: %v", err)
	}
	defer store.Close()
	log.Printf("history store ready (backend=%s)", cfg.History.Backend)

	if !cfg.AI.Enabled() {
		log.Println("warning: ARK_API_KEY 未配置，聊天请求将返回上游不可用错误")
	}
	upstream := ai.NewClient(cfg.AI)

	router := handler.NewRouter(store, upstream)

	startServer(ctx, cfg.Server, router)
}

func openHistoryStore(cfg config.HistoryConfig) (history.Store, error) {
	switch cfg.Backend {
	case config.HistoryBackendSQLite:
		return history.NewSQLiteStore(cfg.DBPath)
	case config.HistoryBackendFile:
		return history.NewFileStore(cfg.FilePath)
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Life Coach backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
