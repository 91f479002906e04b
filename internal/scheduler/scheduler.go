package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/ChevesR/ibit-strategy-v5/internal/collector"
	"github.com/ChevesR/ibit-strategy-v5/internal/dashboard"
	"github.com/ChevesR/ibit-strategy-v5/internal/notifier"
	"github.com/ChevesR/ibit-strategy-v5/internal/store"
)

// Notifier delivers report text to the user.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages the refresh and report cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Dashboard *dashboard.Service
	Store     *store.Store
	Notifier  Notifier
	Ctx       context.Context

	now func() time.Time
	log zerolog.Logger
}

// NewScheduler creates a new Scheduler. n may be nil to disable reports.
func NewScheduler(ctx context.Context, col *collector.Collector, svc *dashboard.Service, st *store.Store, n Notifier, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Dashboard: svc,
		Store:     st,
		Notifier:  n,
		Ctx:       ctx,
		now:       time.Now,
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterAll registers the price refresh and the report task. An empty
// reportCron or a nil notifier skips the report.
func (s *Scheduler) RegisterAll(refreshCron, reportCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if reportCron == "" || s.Notifier == nil {
		return nil
	}
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RefreshNow collects a market snapshot synchronously and stores it.
func (s *Scheduler) RefreshNow(ctx context.Context) error {
	snap, err := s.Collector.Collect(ctx)
	if err != nil {
		return err
	}
	s.Store.SetSnapshot(snap)
	return nil
}

// Build renders the dashboard from whatever is currently stored.
func (s *Scheduler) Build() (*dashboard.Dashboard, error) {
	return s.Dashboard.Build(s.Store.Snapshot(), s.Store.Portfolio(), s.now())
}

func (s *Scheduler) refreshTask() {
	if err := s.RefreshNow(s.Ctx); err != nil {
		s.log.Error().Err(err).Msg("price refresh failed")
	}
}

func (s *Scheduler) reportTask() {
	s.log.Info().Msg("running report task")
	d, err := s.Build()
	if err != nil {
		s.log.Error().Err(err).Msg("build report")
		s.trySend(fmt.Sprintf("❌ Dashboard unavailable: %v", err))
		return
	}
	s.trySend(notifier.FormatReport(d))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	var cmd string
	if fields := strings.Fields(command); len(fields) > 0 {
		cmd = strings.ToLower(fields[0])
	}
	if cmd == "/refresh" {
		if err := s.RefreshNow(ctx); err != nil {
			return fmt.Sprintf("❌ Refresh failed: %v", err)
		}
		cmd = "/prices"
	}

	switch cmd {
	case "/dashboard", "/prices", "/goal", "/options":
	default:
		return "Available commands:\n• /dashboard\n• /prices\n• /goal\n• /options\n• /refresh"
	}

	d, err := s.Build()
	if err != nil {
		return fmt.Sprintf("❌ Dashboard unavailable: %v", err)
	}
	switch cmd {
	case "/prices":
		return notifier.FormatPrices(d.Prices)
	case "/goal":
		if d.Portfolio == nil {
			return d.Hint
		}
		return notifier.FormatGoal(d.Portfolio)
	case "/options":
		if d.Portfolio == nil {
			return d.Hint
		}
		return notifier.FormatOptions(d.Portfolio)
	default:
		return notifier.FormatReport(d)
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
