package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"dqportal/internal/api"
	"dqportal/internal/config"
	"dqportal/internal/fetch"
	"dqportal/internal/logging"
	"dqportal/internal/schema"
	"dqportal/internal/snapshot"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose  bool
	openPage bool
	cfg      *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "dqportal",
	Short: "dqportal is a federated data-quality dashboard backend",
	Long: `A dashboard backend that periodically retrieves federated descriptive statistics,
aggregates them into availability, completeness and plausibility views and serves
them over HTTP.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		// Load configuration
		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("dqportal starting")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dataSchema, err := schema.Load(cfg.SchemaPath)
	if err != nil {
		return err
	}

	var client fetch.Client
	if cfg.UseMockData {
		log.Info().Msg("Serving mock payloads instead of orchestration tasks")
		client = fetch.NewFileClient(cfg.MockDescriptivesPath, cfg.MockStatisticsPath)
	} else {
		client = fetch.NewTaskClient(cfg.Fetch, dataSchema)
	}

	store := snapshot.NewStore()
	refresher := fetch.NewRefresher(client, store, cfg.RefreshInterval)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.NewServer(store, dataSchema, cfg.Unit),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return refresher.Run(gctx)
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.ListenAddr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if openPage {
		if err := browser.OpenURL("http://localhost" + cfg.ListenAddr); err != nil {
			log.Warn().Err(err).Msg("Failed to open browser")
		}
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.Flags().BoolVar(&openPage, "open", false, "open the dashboard in the default browser")
}
