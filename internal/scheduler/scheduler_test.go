package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"StockSentinel/internal/collector"
	"StockSentinel/internal/levels"
	"StockSentinel/internal/logger"
	"StockSentinel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (f *fakeNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return f.err
}

func newTestScheduler(t *testing.T, watchlist []string) (*Scheduler, *fakeNotifier) {
	t.Helper()
	fetcher := &collector.MockFetcher{Charts: map[string]*model.Chart{
		"AAPL":   collector.MockChart("AAPL", 100, 30),
		"PTT.BK": collector.MockChart("PTT.BK", 34.5, 30),
	}}
	col := collector.NewCollector(fetcher, 20, levels.DefaultThresholdPercent, false, logger.Nop())
	n := &fakeNotifier{}
	s := NewScheduler(context.Background(), col.Analyze, n, watchlist, logger.Nop())
	s.now = func() time.Time { return time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC) }
	return s, n
}

func TestRunReportNow(t *testing.T) {
	s, n := newTestScheduler(t, []string{"AAPL", "NOPE", "PTT.BK"})

	s.RunReportNow()

	require.Len(t, n.texts, 1)
	report := n.texts[0]
	assert.Contains(t, report, "2024-03-05")
	assert.Contains(t, report, "*AAPL* $100.00")
	assert.Contains(t, report, "*PTT.BK* $34.50")
	assert.Contains(t, report, "❌ ไม่พบข้อมูล: NOPE")
}

func TestRunReportNow_SendFailureIsLogged(t *testing.T) {
	s, n := newTestScheduler(t, []string{"AAPL"})
	n.err = errors.New("telegram down")
	assert.NotPanics(t, s.RunReportNow)
	assert.Len(t, n.texts, 1)
}

func TestRegister(t *testing.T) {
	s, _ := newTestScheduler(t, []string{"AAPL"})
	require.NoError(t, s.Register("0 0 9 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)

	assert.Error(t, s.Register("not a cron"))
}

func TestRegister_EmptyWatchlist(t *testing.T) {
	s, _ := newTestScheduler(t, nil)
	require.NoError(t, s.Register("0 0 9 * * 1-5"))
	assert.Empty(t, s.Cron.Entries())
}

func TestStartStop(t *testing.T) {
	s, _ := newTestScheduler(t, []string{"AAPL"})
	require.NoError(t, s.Register("@every 1h"))
	s.Start()
	s.Stop()
}
