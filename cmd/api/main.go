package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Aayan-01/CLOT/internal/application"
	appanalysis "github.com/Aayan-01/CLOT/internal/application/analysis"
	appchat "github.com/Aayan-01/CLOT/internal/application/chat"
	"github.com/Aayan-01/CLOT/internal/config"
	domain "github.com/Aayan-01/CLOT/internal/domain/analysis"
	"github.com/Aayan-01/CLOT/internal/domain/session"
	"github.com/Aayan-01/CLOT/internal/infra/ai/gemini"
	"github.com/Aayan-01/CLOT/internal/infra/ai/openai"
	"github.com/Aayan-01/CLOT/internal/infra/db/memory"
	mysqlstore "github.com/Aayan-01/CLOT/internal/infra/db/mysql"
	pgstore "github.com/Aayan-01/CLOT/internal/infra/db/postgres"
	"github.com/Aayan-01/CLOT/internal/infra/httpserver"
	"github.com/Aayan-01/CLOT/internal/infra/storage"
	"github.com/Aayan-01/CLOT/internal/logging"
	"github.com/Aayan-01/CLOT/internal/metrics"
	"github.com/Aayan-01/CLOT/internal/telemetry"
)

const version = "1.0.0"

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Env, cfg.Log.Level)

	ctx := context.Background()

	if _, err := telemetry.InitTracer("clot-api", version); err != nil {
		log.Fatal().Err(err).Msg("tracer init failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.ShutdownTracer(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	m := metrics.New()

	sessions, closeStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("session store init failed")
	}
	defer closeStore()

	images, imageBackend, uploadsDir := newImageStore(ctx, cfg)

	model, closeModel := newModelClient(ctx, cfg)
	defer closeModel()

	analyzeSvc := &appanalysis.Service{
		Model:        model,
		Images:       images,
		ImageBackend: imageBackend,
		Sessions:     sessions,
		Metrics:      m,
	}
	chatSvc := &appchat.Service{
		Model:    model,
		Sessions: sessions,
		Metrics:  m,
	}

	handler := httpserver.NewRouter(analyzeSvc, chatSvc, sessions, m, httpserver.Config{
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		UploadsDir:      uploadsDir,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		// writes stay open across the three sequential model calls
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepLoop(sweepCtx, sessions, m, cfg.SweepInterval())

	go func() {
		log.Info().Str("addr", addr).Str("provider", cfg.AI.Provider).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down server...")
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, func(), error) {
	noop := func() {}

	switch cfg.Session.Store {
	case "", "memory":
		log.Info().Msg("using in-memory session store")
		return memory.NewSessionStore(cfg.SessionTTL(), application.SystemClock{}), noop, nil

	case "mysql":
		db, err := mysqlstore.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, noop, err
		}
		store := mysqlstore.NewSessionStore(db, cfg.SessionTTL(), application.SystemClock{})
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, noop, err
		}
		log.Info().Str("host", cfg.Database.Host).Msg("using mysql session store")
		return store, func() { db.Close() }, nil

	case "postgres":
		db, err := pgstore.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, noop, err
		}
		store := pgstore.NewSessionStore(db, cfg.SessionTTL(), application.SystemClock{})
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, noop, err
		}
		log.Info().Str("host", cfg.Database.Host).Msg("using postgres session store")
		return store, func() { db.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}

// newImageStore picks minio when configured, otherwise a local
// directory. Returns the store, its name for metrics, and the directory
// the router should serve when the store is local.
func newImageStore(ctx context.Context, cfg *config.Config) (domain.ImageStore, string, string) {
	if cfg.Minio.Endpoint != "" {
		store, err := storage.NewMinio(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Warn().Err(err).Msg("minio unavailable, falling back to local image store")
		} else {
			log.Info().Str("bucket", cfg.Minio.BucketName).Msg("using minio image store")
			return store, "minio", ""
		}
	}

	store, err := storage.NewLocal(cfg.Uploads.Dir, cfg.Uploads.BaseURL)
	if err != nil {
		log.Warn().Err(err).Msg("local image store unavailable, images will not be persisted")
		return nil, "", ""
	}
	log.Info().Str("dir", store.Dir()).Msg("using local image store")
	return store, "local", store.Dir()
}

// newModelClient builds the configured provider. A missing key is not
// fatal: the service starts and answers 503 on analyze and chat.
func newModelClient(ctx context.Context, cfg *config.Config) (domain.ModelClient, func()) {
	noop := func() {}

	switch cfg.AI.Provider {
	case "", "gemini":
		if cfg.AI.Gemini.APIKey == "" {
			log.Warn().Msg("GEMINI_API_KEY missing; analyze and chat will answer 503")
			return nil, noop
		}
		client, err := gemini.NewClient(ctx, cfg.AI.Gemini.APIKey, cfg.AI.Gemini.Model, cfg.AITimeout())
		if err != nil {
			log.Error().Err(err).Msg("gemini client init failed")
			return nil, noop
		}
		log.Info().Str("model", cfg.AI.Gemini.Model).Msg("using gemini provider")
		return client, func() { client.Close() }

	case "openai":
		if cfg.AI.OpenAI.APIKey == "" {
			log.Warn().Msg("OPENAI_API_KEY missing; analyze and chat will answer 503")
			return nil, noop
		}
		log.Info().Str("model", cfg.AI.OpenAI.Model).Msg("using openai provider")
		return openai.NewClient(cfg.AI.OpenAI.APIKey, cfg.AI.OpenAI.Model, cfg.AITimeout()), noop

	default:
		log.Warn().Str("provider", cfg.AI.Provider).Msg("unknown ai provider; analyze and chat will answer 503")
		return nil, noop
	}
}

// sweepLoop drops expired sessions on a fixed interval until ctx ends.
func sweepLoop(ctx context.Context, sessions session.Store, m *metrics.Metrics, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sessions.Sweep(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("session sweep failed")
				continue
			}
			if removed > 0 {
				m.SessionsExpiredTotal.Add(float64(removed))
				log.Info().Int("removed", removed).Msg("session sweep completed")
			}
		}
	}
}
