package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campusinterview/internal/cache"
	"campusinterview/internal/catalog"
	"campusinterview/internal/config"
	"campusinterview/internal/logger"
	"campusinterview/internal/model"
	"campusinterview/internal/repository"
	"campusinterview/internal/service"
	"campusinterview/internal/transport/rest"
	"campusinterview/internal/transport/ws"
)

var _ service.UndoStack = (*cache.UndoCache)(nil)

// App holds the wired interview stack and the connections it owns
type App struct {
	Config       *config.Config
	Log          *logger.Logger
	SessionRepo  repository.SessionRepository
	Topics       []model.Topic
	Interview    *service.InterviewService
	WSHub        *ws.Hub
	SessionCache cache.SessionCache

	closers []func() error
}

// New connects the configured stores and builds the interview service
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	var mongoDB *mongo.Database
	if cfg.Store == config.StoreMongo || cfg.TopicSource == config.TopicsMongo {
		db, err := a.connectMongo(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		mongoDB = db
	}

	repo, err := a.openStore(ctx, mongoDB)
	if err != nil {
		a.Close()
		return nil, err
	}

	var undo service.UndoStack = service.NewMemoryUndoStack(cfg.Interview.UndoCapacity)
	if cfg.RedisAddr != "" {
		rdb, err := a.connectRedis(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.SessionCache = cache.NewSessionCache(rdb, cfg.SessionCacheTTL)
		repo = repository.NewCachedSessionRepo(repo, a.SessionCache, log)
		undo = cache.NewUndoCache(rdb, cfg.Interview.UndoCapacity)
		log.Info("redis session cache and undo store enabled", "addr", cfg.RedisAddr)
	}
	a.SessionRepo = repo

	topics, err := a.loadTopics(ctx, mongoDB)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Topics = topics

	var provider service.FollowupProvider
	if cfg.AI.IsEnabled() {
		p, err := service.NewGeminiProvider(ctx, cfg.AI, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		provider = p
		log.Info("AI follow-ups enabled", "model", cfg.AI.FollowupModel)
	} else {
		log.Info("GEMINI_API_KEY not set, using preset follow-ups only")
	}

	followups := service.NewFollowupGenerator(cfg.Interview, provider, log)
	a.Interview = service.NewInterviewService(repo, topics, cfg.Interview, followups, undo, log)

	a.WSHub = ws.NewHub(log)
	a.Interview.SetBroadcaster(a.WSHub)
	a.closers = append(a.closers, func() error {
		a.WSHub.Close()
		return nil
	})

	return a, nil
}

// Router builds the HTTP handler for the wired service
func (a *App) Router() http.Handler {
	return rest.NewRouter(&rest.Container{
		InterviewService: a.Interview,
		WSHub:            a.WSHub,
		Logger:           a.Log,
		AllowedOrigins:   a.Config.AllowedOrigins,
	})
}

// Serve runs the HTTP server until ctx is cancelled, then drains it
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + a.Config.Port,
		Handler: a.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("ListenAndServe: %w", err)
	case <-ctx.Done():
	}
	a.Log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.Log.Info("server exited")
	return nil
}

// Close releases every connection in reverse order of acquisition
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func (a *App) connectMongo(ctx context.Context) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(a.Config.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	a.closers = append(a.closers, func() error {
		return client.Disconnect(context.Background())
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	a.Log.Info("connected to MongoDB", "db", a.Config.MongoDB)
	return client.Database(a.Config.MongoDB), nil
}

func (a *App) connectRedis(ctx context.Context) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: a.Config.RedisAddr,
	})
	a.closers = append(a.closers, rdb.Close)

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return rdb, nil
}

func (a *App) openStore(ctx context.Context, db *mongo.Database) (repository.SessionRepository, error) {
	switch a.Config.Store {
	case config.StoreMemory:
		a.Log.Warn("using in-memory session store, sessions are lost on restart")
		return repository.NewMemorySessionRepo(), nil
	case config.StoreSQLite:
		repo, err := repository.NewSQLiteSessionRepo(a.Config.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, repo.Close)
		a.Log.Info("using SQLite session store", "path", a.Config.SQLitePath)
		return repo, nil
	case config.StoreMongo:
		if err := repository.EnsureSessionIndexes(ctx, db); err != nil {
			return nil, err
		}
		return repository.NewMongoSessionRepo(db), nil
	default:
		return nil, fmt.Errorf("unknown store %q", a.Config.Store)
	}
}

func (a *App) loadTopics(ctx context.Context, db *mongo.Database) ([]model.Topic, error) {
	var (
		topics []model.Topic
		err    error
	)
	switch a.Config.TopicSource {
	case config.TopicsBuiltin:
		topics = catalog.Builtin()
	case config.TopicsYAML:
		topics, err = catalog.LoadFile(a.Config.TopicsFile)
	case config.TopicsMongo:
		topics, err = repository.NewTopicRepo(db).GetAll(ctx)
		if err == nil {
			err = catalog.Validate(topics)
		}
	default:
		err = fmt.Errorf("unknown topic source %q", a.Config.TopicSource)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load topics: %w", err)
	}
	a.Log.Info("topic catalog loaded", "source", a.Config.TopicSource, "topics", len(topics))
	return topics, nil
}
