package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ChevesR/ibit-strategy-v5/internal/collector"
	"github.com/ChevesR/ibit-strategy-v5/internal/config"
	"github.com/ChevesR/ibit-strategy-v5/internal/dashboard"
	"github.com/ChevesR/ibit-strategy-v5/internal/model"
	"github.com/ChevesR/ibit-strategy-v5/internal/notifier"
	"github.com/ChevesR/ibit-strategy-v5/internal/portfolio"
	"github.com/ChevesR/ibit-strategy-v5/internal/scheduler"
	"github.com/ChevesR/ibit-strategy-v5/internal/server"
	"github.com/ChevesR/ibit-strategy-v5/internal/store"
	"github.com/ChevesR/ibit-strategy-v5/pkg/logger"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dashboard",
		Short:         "IBIT strategy dashboard",
		Long:          "Tracks progress toward 1 BTC worth of IBIT, fits a power-law model to BTC history and comments on call options.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Configuration file path (default $CONFIG_PATH or configs/config.yaml)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func loadConfig(cmd *cobra.Command, logOut io.Writer) (*config.Config, zerolog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = "configs/config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path = v
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("config validation: %w", err)
	}
	log := logger.NewWithWriter(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty}, logOut)
	logger.SetGlobalLogger(log)
	return cfg, log, nil
}

func settingsFrom(cfg *config.Config) dashboard.Settings {
	return dashboard.Settings{
		GoalShares:  cfg.Goal.Shares,
		FBTCRatio:   cfg.Goal.FBTCToIBITRatio,
		HorizonDays: cfg.Projection.HorizonDays,
		StepDays:    cfg.Projection.StepDays,
	}
}

func newCollector(cfg *config.Config, log zerolog.Logger) *collector.Collector {
	fetcher := collector.NewYahooFetcher(cfg.Proxy)
	log.Info().Str("source", fetcher.Name()).Msg("data source selected")
	return collector.NewCollector(fetcher, cfg.DataSource.ReferenceSymbol, cfg.DataSource.TrackingSymbol, cfg.DataSource.HistoryRange, log)
}

func readPortfolio(path string) (*model.Portfolio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open portfolio: %w", err)
	}
	defer f.Close()

	p, err := portfolio.NewParser().Parse(path, f)
	if err != nil {
		return nil, fmt.Errorf("parse portfolio %s: %w", path, err)
	}
	p.UploadedAt = time.Now()
	return p, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the refresh scheduler and the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd, os.Stdout)
			if err != nil {
				return err
			}
			return runServe(cfg, log)
		},
	}
}

func runServe(cfg *config.Config, log zerolog.Logger) error {
	log.Info().Str("version", version).Msg("IBIT strategy dashboard starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := store.New()
	svc := dashboard.NewService(settingsFrom(cfg), log)

	if cfg.Portfolio.File != "" {
		p, err := readPortfolio(cfg.Portfolio.File)
		if err != nil {
			log.Warn().Err(err).Msg("preloaded portfolio ignored")
		} else {
			st.SetPortfolio(p)
			log.Info().Str("file", p.Source).Int("holdings", len(p.Holdings)).Msg("portfolio preloaded")
		}
	}

	var (
		tn *notifier.TelegramNotifier
		n  scheduler.Notifier
	)
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		n = tn
	}

	sched := scheduler.NewScheduler(ctx, newCollector(cfg, log), svc, st, n, log)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.ReportCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	if err := sched.RefreshNow(ctx); err != nil {
		log.Warn().Err(err).Msg("initial price refresh failed, retrying on schedule")
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("Telegram polling started")
	}

	srv := server.New(server.Config{
		Log:       log,
		Addr:      cfg.Server.Addr,
		Store:     st,
		Dashboard: svc,
	})
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received, stopping")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	return nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch prices once and print the dashboard to the terminal",
		Long: `Fetch current prices and BTC history, fit the power-law model and print
the dashboard. With --portfolio the goal progress, projection and option
commentary for that file are included.
Example: dashboard report --portfolio holdings.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("portfolio")
			if path == "" {
				path = cfg.Portfolio.File
			}

			var p *model.Portfolio
			if path != "" {
				if p, err = readPortfolio(path); err != nil {
					return err
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			snap, err := newCollector(cfg, log).Collect(ctx)
			if err != nil {
				return err
			}

			d, err := dashboard.NewService(settingsFrom(cfg), log).Build(snap, p, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderReport(d))
			return nil
		},
	}
	cmd.Flags().StringP("portfolio", "p", "", "Portfolio file (.xlsx or .csv)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ibit-strategy dashboard %s\n", version)
		},
	}
}
