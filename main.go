package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"house-finder/config"
	"house-finder/models"
	"house-finder/scraper"
	"house-finder/scraper/lavoz"
	"house-finder/services"
	"house-finder/storage"
	"house-finder/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		utils.NewLogger(os.Stderr, false).Error("Invalid configuration: %v", err)
		return 2
	}
	if cfg == nil {
		// help was printed
		return 0
	}

	logger := utils.NewLogger(os.Stderr, cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== House finder starting ===")
	logger.Info("Search %s | command: %s %s | store: %s", cfg.Search.Key(), cfg.Command, cfg.Category, cfg.Backend)

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open the snapshot store: %v", err)
		return 1
	}
	defer store.Close()

	var opener services.LinkOpener
	if cfg.Browser {
		opener = services.NewBrowserOpener(os.Stderr)
	}

	a := &app{
		cfg:    cfg,
		store:  store,
		walker: catalogWalker(cfg, logger),
		out:    os.Stdout,
		opener: opener,
		clock:  time.Now,
		logger: logger,
	}
	return a.run(ctx)
}

// walkerFunc builds the page walker for a discovery run. The returned func
// releases whatever the walker holds open.
type walkerFunc func(ctx context.Context) (services.Walker, func() error, error)

// app executes one command against an opened snapshot store. The stored
// history is written back only when the command succeeded.
type app struct {
	cfg    *config.Config
	store  storage.SnapshotStore
	walker walkerFunc
	out    io.Writer
	opener services.LinkOpener
	clock  func() time.Time
	logger *utils.Logger
}

func (a *app) run(ctx context.Context) int {
	cfg, logger := a.cfg, a.logger
	key := cfg.Search.Key()

	history, err := a.store.Load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrCorruptStore) {
			logger.Error("The stored history is corrupt, refusing to continue: %v", err)
		} else {
			logger.Error("Failed to load the stored history: %v", err)
		}
		return 1
	}
	snapshot := history.Snapshot(key)
	reconciler := services.NewReconciler(a.clock)

	switch cfg.Command {
	case config.CommandRemove:
		l, err := reconciler.Discard(snapshot, cfg.RemoveID)
		if errors.Is(err, services.ErrUnknownListing) {
			logger.Error("Listing %s is not tracked for search %s, nothing changed", cfg.RemoveID, key)
			return 1
		} else if err != nil {
			logger.Error("Failed to discard listing %s: %v", cfg.RemoveID, err)
			return 1
		}
		logger.Info("Listing %s discarded (%s)", l.ID, l.Description)

	default:
		presenter := services.NewPresenter(a.out, a.opener, cfg.Search.UnitType, cfg.Search.Operation, logger)

		if cfg.Discovers() {
			result, err := a.discover(ctx, reconciler, snapshot)
			if err != nil {
				logger.Error("Search failed, history left untouched: %v", err)
				return 1
			}
			snapshot = result.Snapshot
			presenter.ShowRemovals(result.Removed)
		} else {
			logger.Info("Category %s shows no new listings, skipping the catalog search", cfg.Category)
		}

		if n := presenter.Show(snapshot, cfg.Show); n == 0 {
			logger.Info("No %s listings to show", cfg.Category)
		}
	}

	history[key] = snapshot
	if err := a.store.Save(ctx, history); err != nil {
		logger.Error("Failed to save the history: %v", err)
		return 1
	}

	if cfg.ExportDir != "" {
		path, err := storage.ExportSnapshot(cfg.ExportDir, key, snapshot)
		if err != nil {
			logger.Error("CSV export failed: %v", err)
		} else {
			logger.Info("Listings exported to %s", path)
		}
	}

	insightSvc := services.NewInsightService(a.out, logger)
	insightSvc.Print(insightSvc.Generate(key, snapshot, reconciler.Today()))
	return 0
}

func (a *app) discover(ctx context.Context, reconciler *services.Reconciler, prior *models.Snapshot) (*services.RunResult, error) {
	walker, release, err := a.walker(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	tracker := services.NewTracker(walker, reconciler, services.NewCleaner(a.logger), a.logger)
	return tracker.Discover(ctx, prior)
}

func openStore(ctx context.Context, cfg *config.Config, logger *utils.Logger) (storage.SnapshotStore, error) {
	if cfg.Backend == "postgres" {
		return storage.NewPostgresStore(ctx, cfg.DSN(), logger)
	}
	return storage.NewJSONStore(cfg.StorePath, logger)
}

// catalogWalker pages through the La Voz catalog with the configured fetcher.
func catalogWalker(cfg *config.Config, logger *utils.Logger) walkerFunc {
	return func(ctx context.Context) (services.Walker, func() error, error) {
		searchURL := lavoz.SearchURL(cfg.Search)
		logger.Debug("Search URL: %s", searchURL)

		var fetcher scraper.PageFetcher
		if cfg.Fetcher == "chrome" {
			cf, err := lavoz.NewChromeFetcher(searchURL, cfg.ChromeBin, cfg.UserAgent, cfg.RequestTimeout, logger)
			if err != nil {
				return nil, nil, err
			}
			fetcher = cf
		} else {
			fetcher = lavoz.NewHTTPFetcher(searchURL, cfg.UserAgent, cfg.RequestTimeout, logger)
		}

		driver := scraper.NewDriver(fetcher, lavoz.NewExtractor(), scraper.Options{
			MaxConcurrency: cfg.MaxConcurrency,
			RateLimitMs:    cfg.RateLimitMs,
			MaxAttempts:    cfg.MaxAttempts,
			MaxPages:       cfg.MaxPages,
		}, logger)
		return driver, fetcher.Close, nil
	}
}
