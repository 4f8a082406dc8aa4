package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lumio_social/internal/cache"
	"lumio_social/internal/config"
	"lumio_social/internal/database"
	"lumio_social/internal/handler"
	"lumio_social/internal/host"
	"lumio_social/internal/model"
	"lumio_social/internal/queue"
	"lumio_social/internal/redis"
	"lumio_social/internal/repository"
	"lumio_social/internal/reward"
	"lumio_social/internal/service"
	"lumio_social/internal/session"
	"lumio_social/internal/storage"
	"lumio_social/internal/store"
	"lumio_social/internal/worker"
)

// streamMaxLen caps the forum stream; ranking consumers only need the tail.
const streamMaxLen = 100_000

const shutdownTimeout = 10 * time.Second

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Redis. Without it the forum still runs, but events,
	// rankings and wallet login are off.
	rdb, err := redis.Connect(ctx, cfg.RedisURL)
	if err != nil {
		if cfg.SessionBackend == config.SessionBackendRedis {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Printf("[Server] Redis unavailable, running without events and login: %v", err)
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// 3. Session backend
	sessions, closeSessions, err := openSessions(cfg, rdb)
	if err != nil {
		return err
	}
	defer closeSessions()

	// 4. Event stream and ranking workers
	var (
		publisher queue.Publisher = queue.NopPublisher{}
		ranking   cache.RankingCache
		authSvc   *service.AuthService
	)
	if rdb != nil {
		publisher = queue.NewPublisher(rdb.Client, streamMaxLen)
		ranking = cache.NewRankingCache(rdb.Client)
		authSvc = service.NewAuthService(repository.NewChallengeRepository(rdb.Client), cfg)

		workerCfg := worker.DefaultManagerConfig()
		workerCfg.WorkerCount = cfg.WorkerCount
		manager := worker.NewManager(queue.NewConsumer(rdb.Client, queue.StreamForum, queue.ConsumerGroupRanking), worker.NewHandler(ranking), workerCfg)
		if err := manager.Start(ctx); err != nil {
			return fmt.Errorf("failed to start workers: %w", err)
		}
		defer manager.Stop()
	}

	// 5. Media storage
	var mediaSvc *service.MediaService
	bucket, err := storage.NewR2Bucket(ctx, cfg)
	switch {
	case err == nil:
		mediaSvc = service.NewMediaService(bucket)
	case errors.Is(err, model.ErrMediaDisabled):
		log.Println("[Server] R2 not configured, media uploads disabled")
	default:
		return fmt.Errorf("failed to init media storage: %w", err)
	}

	// 6. Forum engine
	limits := service.Limits{
		MaxPostLength:         cfg.MaxPostLength,
		MaxCommentLength:      cfg.MaxCommentLength,
		MaxUsernameLength:     cfg.MaxUsernameLength,
		MaxSocialHandleLength: cfg.MaxSocialHandleLength,
		MaxDescriptionLength:  cfg.MaxDescriptionLength,
	}
	forum := service.NewForumService(store.New(), sessions, limits, reward.FromTimestamp)
	runtime := host.NewRuntime(forum, &host.SystemClock{}, publisher)

	router := NewRouter(RouterConfig{
		AuthHandler:        handler.NewAuthHandler(authSvc),
		PostHandler:        handler.NewPostHandler(runtime),
		CommentHandler:     handler.NewCommentHandler(runtime),
		ProfileHandler:     handler.NewProfileHandler(runtime),
		LeaderboardHandler: handler.NewLeaderboardHandler(ranking),
		MediaHandler:       handler.NewMediaHandler(mediaSvc),
		JWTSecret:          cfg.JWTSecret,
	})

	// 7. Setup Server
	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, stdhttp.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("[Server] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openSessions picks the session lookup backend named by cfg.
func openSessions(cfg *config.Config, rdb *redis.Client) (session.Lookup, func(), error) {
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		return repository.NewRedisSessionRepository(rdb.Client), func() {}, nil
	case config.SessionBackendPostgres:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return repository.NewPostgresSessionRepository(db), func() { db.Close() }, nil
	case config.SessionBackendMemory, "":
		return session.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
}
