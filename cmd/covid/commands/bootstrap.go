package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/wonny/covidtrend/internal/dataset"
	"github.com/wonny/covidtrend/internal/metrics"
	"github.com/wonny/covidtrend/internal/modelconfig"
	"github.com/wonny/covidtrend/internal/query"
	"github.com/wonny/covidtrend/pkg/config"
	"github.com/wonny/covidtrend/pkg/httputil"
	"github.com/wonny/covidtrend/pkg/logger"
	"github.com/wonny/covidtrend/pkg/redis"
)

// app holds everything a command needs after startup
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	store  *dataset.Store
	model  *modelconfig.Config
	facade *query.Facade
	redis  *redis.Client
}

// bootstrap loads config, the dataset and the model, and builds the facade.
// A malformed dataset is fatal (DataLoadError). Redis is optional: if it is
// enabled but unreachable the app runs without the cache.
func bootstrap(ctx context.Context, logOut io.Writer) (*app, error) {
	// 1. Load config
	cfg, err := config.LoadWith(config.Overrides{
		DatasetSource:   sourceFlag,
		ModelConfigPath: modelConfigFlag,
	})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.NewWithWriter(cfg, logOut)

	// 3. Model config
	model, err := modelconfig.Load(cfg.ModelConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load model config: %w", err)
	}

	// 4. Load dataset (remote sources go through the retrying HTTP client)
	httpClient := httputil.New(cfg, log)
	store, err := dataset.Open(ctx, cfg.Dataset.Source, dataset.LoadOptions{
		Country: cfg.Dataset.Country,
		MinDate: cfg.Dataset.MinDate,
		MaxDate: cfg.Dataset.MaxDate,
	}, httpClient, log.Component("dataset"))
	if err != nil {
		return nil, err
	}
	stats := store.Stats()
	metrics.SetDatasetStats(stats.Rows, stats.Regions)

	// 5. Redis (forecast cache, shared rate limit)
	rdb, err := redis.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		rdb = &redis.Client{}
	}

	opts := query.Options{Model: model, CacheTTL: redis.ForecastTTL(cfg.Redis.CacheTTL)}
	if rdb.Enabled() {
		opts.Cache = redis.NewCache(rdb, redis.KeyPrefix)
	}

	// 6. Query facade
	facade, err := query.New(store, opts, log.Component("query"))
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("create query facade: %w", err)
	}

	return &app{
		cfg:    cfg,
		log:    log,
		store:  store,
		model:  model,
		facade: facade,
		redis:  rdb,
	}, nil
}

// cliBootstrap is bootstrap for one-shot commands: logs go to stderr so stdout stays clean
func cliBootstrap(ctx context.Context) (*app, error) {
	return bootstrap(ctx, os.Stderr)
}

func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
}
