package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ferretcode/lovebug/internal/api"
	"github.com/ferretcode/lovebug/internal/auth"
	"github.com/ferretcode/lovebug/internal/bootstrap"
	"github.com/ferretcode/lovebug/internal/dashboard"
	"github.com/ferretcode/lovebug/internal/launcher"
	"github.com/ferretcode/lovebug/internal/workflow"
	"github.com/ferretcode/lovebug/pkg/types"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, websocket hub and crawl scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := types.LoadConfig()
			if err != nil {
				return err
			}

			launcher.Banner(cmd.OutOrStdout(), config)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, config)
		},
	}
}

func serve(ctx context.Context, config *types.LovebugConfig) error {
	ln, err := launcher.Listen(config)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, config)
	if err != nil {
		ln.Close()
		return err
	}
	defer a.close(context.Background())

	go func() {
		if err := a.ensureIndexes(ctx); err != nil {
			a.logger.Warn("error creating indexes", "err", err)
		}
	}()

	scheduler := workflow.NewScheduler(a.workflow, config.CrawlInterval(), a.logger)
	scheduler.Start()

	handler := api.NewHandler(
		a.store,
		dashboard.New(config, a.store, a.cache, scheduler, a.hub),
		a.extractor,
		a.workflow,
		bootstrap.NewSeeder(a.store, a.logger),
		a.cache,
		a.logger,
	)

	router := newRouter(routerDeps{
		config:  config,
		handler: handler,
		auth:    auth.NewAuthService(config.AdminApiKey, a.logger),
		hub:     a.hub,
		cache:   a.cache,
		logger:  a.logger,
	})

	err = launcher.Serve(ctx, ln, router, a.logger)

	stopCtx, cancel := context.WithTimeout(context.Background(), launcher.ShutdownTimeout)
	defer cancel()
	scheduler.Stop(stopCtx)

	return err
}
