package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"remixcanvas/internal/api"
	"remixcanvas/internal/config"
	"remixcanvas/internal/llm"
	"remixcanvas/internal/remix"
	mediastore "remixcanvas/internal/store/media"
	workspacestore "remixcanvas/internal/store/workspace"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	client, err := llm.NewGeminiClient(ctx, llm.GeminiModels{
		Text:  cfg.Models.Text,
		Image: cfg.Models.Image,
		Video: cfg.Models.Video,
	})
	if err != nil {
		log.Fatalf("gemini client: %v", err)
	}
	wrapped := llm.Chain(client,
		llm.Logging(),
		llm.Retry(3, 500*time.Millisecond),
		llm.RateLimit(1, 2),
	)
	defer wrapped.Close()

	workspaces, cleanup, err := buildWorkspaceStore(cfg)
	if err != nil {
		log.Fatalf("workspace store: %v", err)
	}
	defer cleanup()

	media, err := buildMediaStore(cfg)
	if err != nil {
		log.Fatalf("media store: %v", err)
	}

	service := remix.NewService(wrapped, workspaces, media)
	server := api.NewServer(cfg.Port, workspaces, service)

	go func() {
		if err := server.Start(); err != nil {
			log.Printf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("bye")
}

// buildWorkspaceStore layers the persistence stack: postgres when a DSN is
// configured, file otherwise, then an LRU cache, then debounced saves.
func buildWorkspaceStore(cfg *config.Config) (workspacestore.Store, func(), error) {
	var backend workspacestore.Store
	var closeBackend func()
	if cfg.PostgresDSN != "" {
		pg, err := workspacestore.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		backend = pg
		closeBackend = func() { _ = pg.Close() }
	} else {
		fs, err := workspacestore.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		backend = fs
		closeBackend = func() {}
	}
	cached, err := workspacestore.NewCachedStore(backend, 256)
	if err != nil {
		closeBackend()
		return nil, nil, err
	}
	saver := workspacestore.NewDebouncedSaver(cached, cfg.SaveDebounce)
	cleanup := func() {
		saver.Close()
		closeBackend()
	}
	return saver, cleanup, nil
}

func buildMediaStore(cfg *config.Config) (mediastore.Store, error) {
	if !cfg.Media.Enabled {
		log.Println("media: no S3 endpoint configured, using in-memory store")
		return mediastore.NewMemoryStore(), nil
	}
	return mediastore.NewS3Store(mediastore.S3Config{
		Endpoint:  cfg.Media.Endpoint,
		Region:    cfg.Media.Region,
		AccessKey: cfg.Media.AccessKey,
		SecretKey: cfg.Media.SecretKey,
		Bucket:    cfg.Media.Bucket,
		UseSSL:    cfg.Media.UseSSL,
	})
}
