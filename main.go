package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"investimmo-bot/cache"
	"investimmo-bot/config"
	"investimmo-bot/dvf"
	"investimmo-bot/geo"
	"investimmo-bot/models"
	"investimmo-bot/notify"
	"investimmo-bot/scraper"
	"investimmo-bot/scraper/browser"
	"investimmo-bot/scraper/demo"
	"investimmo-bot/scraper/static"
	"investimmo-bot/services"
	"investimmo-bot/storage"
	"investimmo-bot/transit"
	"investimmo-bot/utils"
	"investimmo-bot/web"
)

func main() {
	cfg := config.Load()

	serve := flag.Bool("serve", false, "start the dashboard instead of running a single scan")
	city := flag.String("city", cfg.City, "city to scan")
	budget := flag.Int("budget", cfg.Budget, "maximum purchase price in euros")
	flag.Parse()

	logger := utils.NewLogger()
	if strings.EqualFold(cfg.LogLevel, "debug") {
		logger.SetDebug(true)
	}

	logger.Info("=== InvestImmo Bot starting ===")
	logger.Info("Config — source: %s | rent factor: %.4f | threshold: %.1f %% | reference: %s",
		cfg.ListingSource, cfg.RentFactor, cfg.OpportunityThreshold, cfg.ReferenceMethod)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.Warn("Close failed: %v", err)
			}
		}
	}()

	httpClient := utils.NewHTTPClient(utils.HTTPClientOptions{
		Timeout:    cfg.HTTPTimeout,
		RatePerSec: cfg.HTTPRatePerSec,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: time.Second,
		Logger:     logger,
	})

	refCache := newCache(cfg, logger)
	closers = append(closers, refCache)

	board := services.NewOpportunityBoard(cfg.OpportunityThreshold)
	analyzer := &services.Analyzer{
		Geo:         geo.NewClient(cfg.GeoAPIURL, httpClient, logger),
		Reference:   dvf.NewService(dvf.NewClient(cfg.DVFAPIURL, httpClient), refCache, cfg.ReferenceMethod, cfg.ReferenceTTL, logger),
		Source:      newSource(cfg, logger),
		Cleaner:     services.NewCleaner(logger),
		Scorer:      services.NewScorer(cfg.RentFactor),
		Board:       board,
		Logger:      logger,
		Transit:     transitClient(cfg, httpClient),
		Destination: models.Coordinates{Lat: cfg.DestinationLat, Lon: cfg.DestinationLon},
		Limit:       cfg.ListingLimit,
	}
	sinks, pgWriter := wireSinks(ctx, cfg, analyzer, logger)
	closers = append(closers, sinks...)

	if *serve {
		if err := runServer(ctx, cfg, analyzer, board, logger); err != nil {
			logger.Error("%v", err)
			os.Exit(1)
		}
		return
	}

	report, err := analyzer.Scan(ctx, *city, *budget)
	if errors.Is(err, geo.ErrCommuneNotFound) {
		logger.Error("Unknown city %q", *city)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("Scan failed: %v", err)
		os.Exit(1)
	}

	insightSvc := services.NewInsightService(logger, board)
	insightSvc.Print(report, insightSvc.Generate(report.Listings))

	if pgWriter != nil {
		printStoredTop(ctx, pgWriter, logger)
	}

	if cfg.CSVOutputPath != "" {
		fmt.Printf("  Done. Raw CSV → %s\n\n", cfg.CSVOutputPath)
	}
}

func runServer(ctx context.Context, cfg *config.Config, analyzer *services.Analyzer, board *services.OpportunityBoard, logger *utils.Logger) error {
	srv, err := web.NewServer(cfg.HTTPPort, analyzer, board, web.Defaults{City: cfg.City, Budget: cfg.Budget}, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	logger.Info("Shutting down gracefully...")
	if err := srv.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Shutdown complete")
	return nil
}

func newCache(cfg *config.Config, logger *utils.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		return cache.NewMemory()
	}
	r, err := cache.NewRedis(cache.RedisOptions{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Warn("Redis unavailable (%v), using in-memory cache", err)
		return cache.NewMemory()
	}
	logger.Info("Reference cache: redis at %s", cfg.RedisAddr)
	return r
}

func newSource(cfg *config.Config, logger *utils.Logger) scraper.Source {
	if cfg.ListingSource == "demo" {
		return demo.New()
	}

	sel, err := config.LoadSelectors(cfg.SelectorsFile)
	if err != nil {
		logger.Warn("Listing source %q disabled (%v), falling back to demo listings", cfg.ListingSource, err)
		return demo.New()
	}

	switch cfg.ListingSource {
	case "browser":
		return browser.New(browser.Options{
			ChromeBin:      cfg.ChromeBin,
			Pages:          cfg.PagesToScrape,
			MaxConcurrency: cfg.MaxConcurrency,
			RateLimitMs:    cfg.RateLimitMs,
			MaxRetries:     cfg.MaxRetries,
		}, sel, logger)
	case "static":
		return static.New(static.Options{
			Pages:          cfg.PagesToScrape,
			MaxConcurrency: cfg.MaxConcurrency,
			RateLimitMs:    cfg.RateLimitMs,
			Timeout:        cfg.HTTPTimeout,
		}, sel, logger)
	}

	logger.Warn("Unknown listing source %q, falling back to demo listings", cfg.ListingSource)
	return demo.New()
}

// transitClient returns nil when no SNCF key is configured so the analyzer
// skips journey times altogether.
func transitClient(cfg *config.Config, httpClient *utils.HTTPClient) services.JourneyPlanner {
	if cfg.SNCFAPIKey == "" {
		return nil
	}
	return transit.NewClient(cfg.SNCFAPIURL, cfg.SNCFAPIKey, httpClient)
}

// wireSinks attaches the configured snapshot and notification backends to
// the analyzer. A backend that cannot be reached is skipped with a warning.
func wireSinks(ctx context.Context, cfg *config.Config, analyzer *services.Analyzer, logger *utils.Logger) ([]io.Closer, *storage.PostgresWriter) {
	var (
		closers []io.Closer
		pg      *storage.PostgresWriter
	)

	if cfg.CSVOutputPath != "" {
		csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
		if err != nil {
			logger.Warn("CSV export disabled: %v", err)
		} else {
			analyzer.RawWriter = csvWriter
			closers = append(closers, csvWriter)
		}
	}

	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Warn("PostgreSQL snapshots disabled: %v", err)
		} else {
			analyzer.Writers = append(analyzer.Writers, pgWriter)
			closers = append(closers, pgWriter)
			pg = pgWriter
			logger.Info("Scored listings stored in PostgreSQL (table: scored_listings)")
		}
	}

	if cfg.MongoURI != "" {
		mongoWriter, err := storage.NewMongoWriter(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Warn("MongoDB snapshots disabled: %v", err)
		} else {
			analyzer.Writers = append(analyzer.Writers, mongoWriter)
			closers = append(closers, mongoWriter)
			logger.Info("Scored listings stored in MongoDB (%s.scored_listings)", cfg.MongoDB)
		}
	}

	if cfg.RabbitMQURL != "" {
		publisher, err := notify.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQQueue)
		if err != nil {
			logger.Warn("Opportunity notifications disabled: %v", err)
		} else {
			analyzer.Notifier = publisher
			closers = append(closers, publisher)
			logger.Info("New opportunities published to queue %s", cfg.RabbitMQQueue)
		}
	}

	return closers, pg
}

// printStoredTop lists the best listings stored across every past scan.
func printStoredTop(ctx context.Context, pg *storage.PostgresWriter, logger *utils.Logger) {
	top, err := pg.FetchTop(ctx, 5)
	if err != nil {
		logger.Warn("Failed to fetch stored listings: %v", err)
		return
	}
	fmt.Printf("  Best stored listings (all scans):\n")
	for i, l := range top {
		fmt.Printf("  %d. %-10s %5.2f %% – %s € – %s\n", i+1, l.City, l.Yield, services.FormatEuros(l.Price), l.URL)
	}
	fmt.Println()
}
