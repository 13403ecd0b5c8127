package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/liuwen/deepchat/internal/auth"
	"github.com/liuwen/deepchat/internal/config"
	"github.com/liuwen/deepchat/internal/handler"
	"github.com/liuwen/deepchat/internal/service/ai"
	chatservice "github.com/liuwen/deepchat/internal/service/chat"
	"github.com/liuwen/deepchat/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	conversationStore, closeStore, err := openStore(cfg.Store)
	if err != nil {
		log.Fatalf("failed to open conversation store: %v", err)
	}
	defer closeStore()

	aiService, err := ai.NewService(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("failed to initialize completion provider: %v", err)
	}

	if len(cfg.Auth.Tokens) == 0 {
		log.Println("warning: DEEPCHAT_TOKENS is empty, every request will be rejected as unauthenticated")
	}
	authenticator := auth.NewTokenRegistry(cfg.Auth.Tokens)

	chatSvc := chatservice.NewService(conversationStore, aiService)
	router := handler.NewRouter(chatSvc, authenticator)

	startServer(ctx, cfg.Server, router)
}

func openStore(cfg config.StoreConfig) (store.Store, func(), error) {
	if cfg.Path == "" {
		log.Println("STORE_PATH not set, keeping conversations in memory")
		return store.NewMemoryStore(), func() {}, nil
	}

	boltStore, err := store.NewBoltStore(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("conversation store opened at %s", cfg.Path)
	return boltStore, func() { _ = boltStore.Close() }, nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("deepchat api listening on %s", serverCfg.Addr)
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
