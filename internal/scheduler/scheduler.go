package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StockSentinel/internal/logger"
	"StockSentinel/internal/model"
	"StockSentinel/internal/notifier"

	"github.com/robfig/cron/v3"
)

// AnalyzeFunc returns the level analysis for one symbol.
type AnalyzeFunc func(ctx context.Context, symbol string) (*model.StockAnalysis, error)

// Notifier delivers the scheduled report.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the watchlist report on a cron schedule.
type Scheduler struct {
	Cron      *cron.Cron
	Analyze   AnalyzeFunc
	Notifier  Notifier
	Watchlist []string
	Ctx       context.Context

	mu  sync.Mutex // serialises report runs
	log *logger.Logger
	now func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, analyze AnalyzeFunc, n Notifier, watchlist []string, log *logger.Logger) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Analyze:   analyze,
		Notifier:  n,
		Watchlist: watchlist,
		Ctx:       ctx,
		log:       log.Component("scheduler"),
		now:       time.Now,
	}
}

// Register adds the watchlist report. An empty watchlist registers nothing.
func (s *Scheduler) Register(reportCron string) error {
	if len(s.Watchlist) == 0 {
		s.log.Infof("watchlist empty, report not scheduled")
		return nil
	}
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task %q: %w", reportCron, err)
	}
	s.log.Infof("watchlist report scheduled: %s (%d symbols)", reportCron, len(s.Watchlist))
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Infof("scheduler started")
}

// Stop stops the cron scheduler and waits for a running report to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Infof("scheduler stopped")
}

// RunReportNow executes the report immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunReportNow() {
	s.reportTask()
}

func (s *Scheduler) reportTask() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Infof("running watchlist report")
	report := s.BuildReport(s.Ctx)
	if err := s.Notifier.SendWithRetry(s.Ctx, report, 3); err != nil {
		s.log.Errorf("send watchlist report: %v", err)
	}
}

// BuildReport analyzes every watched symbol and formats the digest.
func (s *Scheduler) BuildReport(ctx context.Context) string {
	var (
		analyses []*model.StockAnalysis
		failed   []string
	)
	for _, sym := range s.Watchlist {
		a, err := s.Analyze(ctx, sym)
		if err != nil {
			s.log.Warnf("report: analyze %s: %v", sym, err)
			failed = append(failed, sym)
			continue
		}
		analyses = append(analyses, a)
	}
	return notifier.FormatWatchlistReport(analyses, failed, s.now())
}
