package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hrforms/internal/cache"
	"hrforms/internal/config"
	"hrforms/internal/editor"
	"hrforms/internal/repository"
	"hrforms/internal/service"
	"hrforms/internal/transport/rest"
	"hrforms/internal/transport/ws"
)

// App wires the stores, services and transports of the server.
type App struct {
	Config *config.Config
	Log    zerolog.Logger

	Mongo *mongo.Client
	Redis *redis.Client

	FormRepo     repository.FormRepo
	FeedbackRepo repository.FeedbackRepo
	Drafts       cache.DraftCache

	AuthService     *service.AuthService
	FormService     *service.FormService
	EditorService   *service.EditorService
	FeedbackService *service.FeedbackService
	WSHub           *ws.Hub
}

// New connects to MongoDB and Redis and builds every service.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	mongoClient, db, err := ConnectMongo(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Str("database", cfg.MongoDatabase).Msg("connected to MongoDB")

	rdb, err := ConnectRedis(ctx, cfg)
	if err != nil {
		mongoClient.Disconnect(ctx)
		return nil, err
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis")

	a := &App{
		Config:       cfg,
		Log:          log,
		Mongo:        mongoClient,
		Redis:        rdb,
		FormRepo:     repository.NewFormRepo(db),
		FeedbackRepo: repository.NewFeedbackRepo(db),
		Drafts:       cache.NewDraftCache(rdb, cfg.DraftTTL),
	}
	a.wire()
	return a, nil
}

func (a *App) wire() {
	a.WSHub = ws.NewHub(a.Log.With().Str("component", "ws").Logger())
	a.AuthService = service.NewAuthService(a.Config.JWTSecret, a.Config.TenantKeys)
	a.FormService = service.NewFormService(a.FormRepo, a.Log.With().Str("component", "forms").Logger())
	syncer := editor.NewSyncer(a.FormRepo, a.Log.With().Str("component", "sync").Logger())
	a.EditorService = service.NewEditorService(a.FormService, a.Drafts, syncer, a.Log.With().Str("component", "editor").Logger())
	a.FeedbackService = service.NewFeedbackService(a.FormService, a.FeedbackRepo, a.Log.With().Str("component", "feedback").Logger())

	// Inject broadcaster (wsHub implements service.Broadcaster)
	a.EditorService.SetBroadcaster(a.WSHub)
}

// Router builds the HTTP handler.
func (a *App) Router() http.Handler {
	return rest.NewRouter(&rest.Container{
		AuthService:     a.AuthService,
		FormService:     a.FormService,
		EditorService:   a.EditorService,
		FeedbackService: a.FeedbackService,
		WSHub:           a.WSHub,
		CORSOrigins:     a.Config.CORSOrigins,
		Log:             a.Log.With().Str("component", "http").Logger(),
	})
}

// Close releases the database connections.
func (a *App) Close(ctx context.Context) {
	if err := a.Redis.Close(); err != nil {
		a.Log.Warn().Err(err).Msg("close redis")
	}
	if err := a.Mongo.Disconnect(ctx); err != nil {
		a.Log.Warn().Err(err).Msg("disconnect mongo")
	}
}

// ConnectMongo opens and pings a MongoDB client.
func ConnectMongo(ctx context.Context, cfg *config.Config) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, client.Database(cfg.MongoDatabase), nil
}

// ConnectRedis opens and pings a Redis client.
func ConnectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
