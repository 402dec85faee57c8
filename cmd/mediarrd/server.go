package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	v1 "github.com/vmunix/mediarr/internal/api/v1"
	"github.com/vmunix/mediarr/internal/catalog"
	"github.com/vmunix/mediarr/internal/config"
	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/library"
	"github.com/vmunix/mediarr/internal/metadata"
	"github.com/vmunix/mediarr/internal/migrations"
	"github.com/vmunix/mediarr/internal/probe"
	"github.com/vmunix/mediarr/internal/queue"
	"github.com/vmunix/mediarr/internal/scanner"
	"github.com/vmunix/mediarr/internal/server"
	"github.com/vmunix/mediarr/internal/tmdb"
	"github.com/vmunix/mediarr/pkg/anidb"
	"github.com/vmunix/mediarr/pkg/anilist"
	"github.com/vmunix/mediarr/pkg/jikan"
)

const shutdownTimeout = 30 * time.Second

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger writes to stdout, teeing into a rotated file when one is configured.
func newLogger(cfg *config.Config) (*slog.Logger, func()) {
	var out io.Writer = os.Stdout
	closer := func() {}
	if cfg.Log.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		}
		out = io.MultiWriter(os.Stdout, rotated)
		closer = func() { _ = rotated.Close() }
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	})), closer
}

// newResolver wires the provider clients into a metadata resolver.
func newResolver(cfg *config.Config, cache *metadata.Cache, logger *slog.Logger) (*metadata.Resolver, *catalog.DB) {
	timeout := cfg.Metadata.ProviderTimeout
	src := metadata.Sources{
		AniList: anilist.New(anilist.WithTimeout(timeout), anilist.WithLogger(logger)),
		Jikan:   jikan.New(jikan.WithTimeout(timeout), jikan.WithLogger(logger)),
		AniDB:   anidb.New(anidb.WithTimeout(timeout), anidb.WithLogger(logger)),
	}
	if cfg.Metadata.TMDBAPIKey != "" {
		src.TMDB = tmdb.NewClient(cfg.Metadata.TMDBAPIKey,
			tmdb.WithLanguage(cfg.Metadata.Language),
			tmdb.WithLogger(logger),
		)
	}

	var cat *catalog.DB
	if cfg.Metadata.AnimeDBEnabled() {
		cat = catalog.New(cfg.Paths.CacheDir, catalog.WithLogger(logger.With("component", "catalog")))
		src.Catalog = cat
	}

	return metadata.NewResolver(src,
		metadata.WithCache(cache),
		metadata.WithProviderTimeout(timeout),
		metadata.WithLogger(logger),
	), cat
}

func runServer(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, closeLog := newLogger(cfg)
	defer closeLog()

	db, err := migrations.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	applied, err := migrations.Up(ctx, db)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if len(applied) > 0 {
		logger.Info("migrations applied", "versions", applied)
	}

	// === Stores ===
	libraryStore := library.NewStore(db)
	queueStore := queue.NewStore(db)
	eventLog := events.NewEventLog(db)
	cache := metadata.NewCache(db)

	for _, lib := range cfg.LibraryDefs() {
		if err := libraryStore.UpsertLibrary(lib); err != nil {
			return err
		}
		logger.Info("library configured", "id", lib.ID, "name", lib.Name, "path", lib.Path, "type", lib.Kind)
	}

	if n, err := cache.Prune(ctx); err != nil {
		logger.Warn("prune metadata cache failed", "error", err)
	} else if n > 0 {
		logger.Info("pruned metadata cache", "entries", n)
	}

	// === Services ===
	bus := events.NewBus(eventLog, logger)
	defer func() { _ = bus.Close() }()

	resolver, cat := newResolver(cfg, cache, logger)
	prober := probe.New(
		probe.WithFFprobePath(cfg.Tools.FFprobePath),
		probe.WithFFmpegPath(cfg.Tools.FFmpegPath),
	)

	sc := scanner.New(libraryStore, resolver, queueStore, prober,
		scanner.WithLogger(logger),
		scanner.WithBus(bus),
		scanner.WithExtensions(cfg.Scanner.VideoExtensions),
		scanner.WithEpisodeMetadata(cfg.Metadata.FetchEpisodeMetadata),
	)
	coord := server.NewCoordinator(sc, libraryStore, logger)

	runner := server.NewRunner(server.Deps{
		Coordinator: coord,
		Queues:      queueStore,
		Images:      queue.NewImageFetcher(cfg.Paths.ImageDir(), libraryStore, queue.WithImageLogger(logger)).Handle,
		Thumbnails:  queue.NewThumbnailGenerator(cfg.Paths.ImageDir(), prober, libraryStore, logger).Handle,
		Bus:         bus,
		EventLog:    eventLog,
	}, server.Config{
		ScanEnabled:              cfg.Scanner.IsEnabled(),
		QuickScanInterval:        cfg.Scanner.QuickScanInterval,
		FullScanInterval:         cfg.Scanner.FullScanInterval,
		MissingThumbnailInterval: cfg.Scanner.MissingThumbnailInterval,
		RetryFailedThumbnails:    cfg.Scanner.RetryThumbnails(),
		UnmatchedRetry:           cfg.Scanner.UnmatchedRetry,
		ScanOnStartup:            cfg.Scanner.ScanOnStartup,
		StartupDelay:             cfg.Queues.StartupDelay,
		ImageDelay:               cfg.Queues.ImageItemDelay,
		ImageIdle:                cfg.Queues.ImageIdle,
		ThumbnailDelay:           cfg.Queues.ThumbnailItemDelay,
		ThumbnailIdle:            cfg.Queues.ThumbnailIdle,
	}, logger)

	// === HTTP ===
	deps := v1.ServerDeps{
		Library:  libraryStore,
		Queues:   queueStore,
		Scanner:  coord,
		EventLog: eventLog,
		Version:  version,
	}
	if cat != nil {
		deps.Catalog = cat
	}
	api, err := v1.New(deps, logger)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: api.Handler(), ReadHeaderTimeout: 10 * time.Second}

	logger.Info("server starting",
		"addr", addr,
		"database", cfg.Database.Path,
		"libraries", len(cfg.Libraries),
		"tmdb", cfg.Metadata.TMDBAPIKey != "",
		"anime_db", cat != nil,
		"scanner", cfg.Scanner.IsEnabled(),
		"log_level", cfg.Server.LogLevel,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runner.Run(gctx) })
	g.Go(func() error {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
