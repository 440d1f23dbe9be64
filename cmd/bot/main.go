package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"StockSentinel/internal/bot"
	"StockSentinel/internal/cache"
	"StockSentinel/internal/collector"
	"StockSentinel/internal/config"
	"StockSentinel/internal/logger"
	"StockSentinel/internal/notifier"
	"StockSentinel/internal/recorder"
	"StockSentinel/internal/scheduler"
	"StockSentinel/internal/server"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Env); err != nil {
		logger.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	log := logger.Get()
	log.Infof("StockSentinel starting...")

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init fetcher and collector
	fetcher := collector.NewYahooFetcher(collector.YahooOptions{
		UserAgent:         cfg.DataSource.UserAgent,
		Range:             cfg.DataSource.Range,
		Interval:          cfg.DataSource.Interval,
		Timeout:           time.Duration(cfg.DataSource.TimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.DataSource.RequestsPerSecond,
		Proxy:             cfg.Proxy,
	})
	col := collector.NewCollector(fetcher, cfg.DataSource.WindowSessions,
		cfg.Analysis.ThresholdPercent, cfg.Analysis.HistoricalMA, log)
	log.Infof("data source: %s, threshold %.2f%%", fetcher.Name(), cfg.Analysis.ThresholdPercent)

	var wg sync.WaitGroup

	// Init cache
	var quoteCache cache.Cache
	if cfg.Cache.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Warnf("init redis cache failed, using memory: %v", err)
		} else {
			quoteCache = rc
			defer rc.Close()
			log.Infof("quote cache: redis %s", cfg.Cache.RedisAddr)
		}
	}
	if quoteCache == nil {
		mc := cache.NewMemoryCache()
		quoteCache = mc
		wg.Add(1)
		go func() {
			defer wg.Done()
			sweepCache(ctx, mc, time.Minute)
		}()
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
			log.Warnf("create data dir: %v", err)
		}
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warnf("init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init Telegram notifier
	tn, err := notifier.NewTelegramNotifier(notifier.TelegramOptions{
		Token:  cfg.Telegram.BotToken,
		ChatID: cfg.Telegram.ChatID,
		Proxy:  cfg.Proxy,
	}, log)
	if err != nil {
		log.Fatalf("init telegram: %v", err)
	}

	handler := bot.NewHandler(tn, col, fetcher, quoteCache,
		time.Duration(cfg.Cache.TTLSeconds)*time.Second, rec, log)

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, handler.Lookup, tn, cfg.Schedule.Watchlist, log)
	if err := sched.Register(cfg.Schedule.ReportCron); err != nil {
		log.Fatalf("register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// HTTP server: webhook endpoint in webhook mode, health and metrics always
	var webhook server.UpdateHandler
	if cfg.Telegram.Mode == config.ModeWebhook {
		webhook = handler.HandleUpdate
	}
	srv := server.New(webhook, log)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
			log.Errorf("http server: %v", err)
			stop()
		}
	}()

	if cfg.Telegram.Mode == config.ModePolling {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tn.StartPolling(ctx, func(ctx context.Context, u notifier.Update) {
				if err := handler.HandleUpdate(ctx, u); err != nil {
					log.Errorw("handle update", "chat_id", u.ChatID, "error", err)
				}
			})
		}()
		log.Infof("telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Infof("RUN_ON_START enabled, sending watchlist report now")
		go sched.RunReportNow()
	}

	log.Infof("StockSentinel is running in %s mode. Press Ctrl+C to stop.", cfg.Telegram.Mode)

	<-ctx.Done()
	log.Infof("shutdown signal received, stopping...")
	wg.Wait()
	log.Infof("StockSentinel stopped")
}

func sweepCache(ctx context.Context, mc *cache.MemoryCache, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mc.Sweep()
		}
	}
}
