package container

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/befriend-app/befriend-backend/internal/config"
	"github.com/befriend-app/befriend-backend/internal/delivery/http"
	"github.com/befriend-app/befriend-backend/internal/delivery/http/handler"
	"github.com/befriend-app/befriend-backend/internal/delivery/http/middleware"
	"github.com/befriend-app/befriend-backend/internal/infrastructure/database"
	"github.com/befriend-app/befriend-backend/internal/infrastructure/gemini"
	"github.com/befriend-app/befriend-backend/internal/infrastructure/identity"
	"github.com/befriend-app/befriend-backend/internal/infrastructure/server"
	"github.com/befriend-app/befriend-backend/internal/metrics"
	"github.com/befriend-app/befriend-backend/internal/repository"
	"github.com/befriend-app/befriend-backend/internal/repository/cache"
	firestorerepo "github.com/befriend-app/befriend-backend/internal/repository/firestore"
	"github.com/befriend-app/befriend-backend/internal/repository/postgres"
	"github.com/befriend-app/befriend-backend/internal/usecase/discover"
	"github.com/befriend-app/befriend-backend/internal/usecase/profile"
	"github.com/befriend-app/befriend-backend/internal/usecase/recommend"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	DB        *sqlx.DB
	Firestore *firestore.Client
	Redis     *redis.Client
	Gemini    *gemini.GeminiClient
	Metrics   *metrics.Metrics
	Server    *server.Server
}

// NewContainer connects to the configured backends and wires the HTTP stack.
// On error every resource opened so far is released.
func NewContainer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Container, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Container{Config: cfg, Logger: log, Metrics: metrics.New()}
	ready := false
	defer func() {
		if !ready {
			_ = c.Close()
		}
	}()

	profileRepo, err := c.profileRepository(ctx)
	if err != nil {
		return nil, err
	}

	var discoverCache repository.DiscoverCache
	if cfg.Redis.Enabled {
		c.Redis, err = database.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		discoverCache = cache.NewDiscoverCache(c.Redis, cfg.Discover.CacheTTL)
		log.Info("discover cache enabled", zap.String("addr", cfg.Redis.GetAddr()), zap.Duration("ttl", cfg.Discover.CacheTTL))
	}

	var recommender recommend.Recommender = recommend.NewHeuristicRecommender()
	if cfg.Gemini.APIKey != "" {
		geminiClient, gerr := gemini.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if gerr != nil {
			// Discover still works on the heuristic ranking.
			log.Warn("failed to initialize gemini client", zap.Error(gerr))
		} else {
			c.Gemini = geminiClient
			recommender = recommend.NewGeminiRecommender(geminiClient, cfg.Discover.Area, log.Named("recommend"))
			log.Info("gemini recommender enabled", zap.String("model", geminiClient.Model()))
		}
	}

	verifier, err := identity.NewVerifier(&cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize identity verifier: %w", err)
	}

	// Initialize use cases
	discoverUseCase := discover.NewDiscoverUseCase(profileRepo, recommender, discoverCache, c.Metrics, log.Named("discover"))
	profileUseCase := profile.NewProfileUseCase(profileRepo)

	// Initialize handlers
	discoverHandler := handler.NewDiscoverHandler(discoverUseCase, log)
	profileHandler := handler.NewProfileHandler(profileUseCase, log)
	sessionHandler := handler.NewSessionHandler(profileUseCase, log)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(verifier, log)
	rateLimiter := middleware.NewKeyedRateLimiter(cfg.Discover.RatePerMin, cfg.Discover.RateBurst)

	router := http.NewRouter(
		discoverHandler,
		profileHandler,
		sessionHandler,
		authMiddleware,
		rateLimiter,
		c.Metrics,
		log.Named("http"),
		cfg.Server.AllowedOrigins,
	)

	c.Server = server.NewServer(&cfg.Server, router.Setup(), log)
	ready = true
	return c, nil
}

func (c *Container) profileRepository(ctx context.Context) (repository.ProfileRepository, error) {
	switch c.Config.Store {
	case config.StoreBackendFirestore:
		client, err := database.NewFirestoreClient(ctx, &c.Config.Firestore)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize firestore: %w", err)
		}
		c.Firestore = client
		c.Logger.Info("profile store: firestore", zap.String("project", c.Config.Firestore.ProjectID))
		return firestorerepo.NewProfileRepository(client), nil
	default:
		db, err := database.NewPostgresDB(ctx, &c.Config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db
		c.Logger.Info("profile store: postgres", zap.String("host", c.Config.Database.Host), zap.String("db", c.Config.Database.DBName))
		return postgres.NewProfileRepository(db), nil
	}
}

// Close closes all connections
func (c *Container) Close() error {
	var errs []error

	if c.Gemini != nil {
		if err := c.Gemini.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close gemini: %w", err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if c.Firestore != nil {
		if err := c.Firestore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close firestore: %w", err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
