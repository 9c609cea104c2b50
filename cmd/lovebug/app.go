package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/ferretcode/lovebug/internal/analyzer"
	"github.com/ferretcode/lovebug/internal/cache"
	"github.com/ferretcode/lovebug/internal/crawler"
	"github.com/ferretcode/lovebug/internal/location"
	"github.com/ferretcode/lovebug/internal/store"
	"github.com/ferretcode/lovebug/internal/websocket"
	"github.com/ferretcode/lovebug/internal/workflow"
	"github.com/ferretcode/lovebug/pkg/types"
)

const indexTimeout = 10 * time.Second

// app holds the components every subcommand shares.
type app struct {
	config    *types.LovebugConfig
	logger    *slog.Logger
	store     *store.Store
	cache     cache.Cache
	extractor *location.Extractor
	hub       *websocket.Hub
	workflow  *workflow.Workflow
}

func newApp(ctx context.Context, config *types.LovebugConfig) (*app, error) {
	logger := types.NewLogger(config, os.Stdout)
	slog.SetDefault(logger)

	reports, err := store.Connect(config.MongodbUrl, config.DatabaseName, config.Timezone)
	if err != nil {
		return nil, err
	}

	responses, err := cache.Open(ctx, config.RedisUrl, config.CacheTtl(), logger)
	if err != nil {
		reports.Close(ctx)
		return nil, err
	}

	var classifier analyzer.Classifier
	if config.OpenaiApiKey != "" {
		classifier = analyzer.NewOpenAIClassifier(config.OpenaiApiKey, config.OpenaiModel)
		logger.Info("model classification enabled", "model", config.OpenaiModel)
	}

	extractor := location.NewExtractor()
	source := crawler.NewSourceFromConfig(ctx, config, logger)
	c := crawler.New(source, analyzer.New(classifier, logger), extractor, logger)
	hub := websocket.NewHub(config.AllowedOrigins, logger)

	return &app{
		config:    config,
		logger:    logger,
		store:     reports,
		cache:     responses,
		extractor: extractor,
		hub:       hub,
		workflow:  workflow.New(c, reports, responses, hub, logger),
	}, nil
}

func (a *app) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	return a.store.EnsureIndexes(ctx)
}

func (a *app) close(ctx context.Context) {
	a.hub.Close()

	if closer, ok := a.cache.(*cache.RedisCache); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("error closing redis", "err", err)
		}
	}

	if err := a.store.Close(ctx); err != nil {
		a.logger.Warn("error disconnecting mongodb", "err", err)
	}
}
