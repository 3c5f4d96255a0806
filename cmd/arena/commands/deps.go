package commands

import (
	"context"
	"fmt"

	"github.com/witchakorn/stockarena/internal/challenge"
	"github.com/witchakorn/stockarena/internal/predictor"
	"github.com/witchakorn/stockarena/internal/pricefeed"
	"github.com/witchakorn/stockarena/pkg/config"
	"github.com/witchakorn/stockarena/pkg/database"
	"github.com/witchakorn/stockarena/pkg/httputil"
	"github.com/witchakorn/stockarena/pkg/logger"
	"github.com/witchakorn/stockarena/pkg/redis"
)

// deps holds the wired application components shared by commands
// ⭐ SSOT: 컴포넌트 조립은 이 파일에서만
type deps struct {
	cfg       *config.Config
	log       *logger.Logger
	db        *database.DB
	redis     *redis.Client
	repo      *challenge.Repository
	lifecycle *challenge.Lifecycle
	verifier  *challenge.Verifier
}

// initDeps loads config and wires every component behind the CLI
func initDeps(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := challenge.EnsureSchema(ctx, db.Pool); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		redisClient = nil
	}

	var quoteCache *redis.Cache
	if redisClient != nil && redisClient.Enabled() {
		quoteCache = redis.NewCache(redisClient, "arena")
	}

	httpClient := httputil.New(cfg, log)

	repo := challenge.NewRepository(db.Pool)
	pred := predictor.NewClient(httputil.NewWithTimeout(cfg, log, cfg.Predictor.Timeout), cfg, log)
	feed := pricefeed.NewFeed(httpClient, cfg, quoteCache, log)

	zlog := log.Zerolog()
	verifierCfg := challenge.VerifierConfig{CountDegraded: cfg.Challenge.CountDegraded}

	return &deps{
		cfg:       cfg,
		log:       log,
		db:        db,
		redis:     redisClient,
		repo:      repo,
		lifecycle: challenge.NewLifecycle(repo, pred, feed, zlog),
		verifier:  challenge.NewVerifier(repo, feed, verifierCfg, zlog),
	}, nil
}

// close releases held connections
func (d *deps) close() {
	if d.redis != nil {
		d.redis.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}

// reportCache returns the cache for report payloads, nil when disabled
func (d *deps) reportCache() *redis.Cache {
	if d.redis == nil || !d.redis.Enabled() {
		return nil
	}
	return redis.NewCache(d.redis, "arena")
}
