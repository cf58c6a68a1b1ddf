package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/readkeeper/internal/client/cli"
	"github.com/dmitrijs2005/readkeeper/internal/client/client"
	"github.com/dmitrijs2005/readkeeper/internal/client/config"
	"github.com/dmitrijs2005/readkeeper/internal/client/gateway"
	"github.com/dmitrijs2005/readkeeper/internal/client/intercept"
	"github.com/dmitrijs2005/readkeeper/internal/client/reading"
	"github.com/dmitrijs2005/readkeeper/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/readkeeper/internal/client/services"
	"github.com/dmitrijs2005/readkeeper/internal/client/state"
	"github.com/dmitrijs2005/readkeeper/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()

	if err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(logging.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "readkeeper",
		Version:     buildinfo.Version(),
	}, os.Stderr)

	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewSQLiteRepositoryManager()
	store := services.NewLocalStore(db, rm, logger)
	tokens := services.NewTokenStore(db, rm, logger)

	target, err := url.Parse(cfg.ServerBaseURL)
	if err != nil {
		return fmt.Errorf("parse server url: %w", err)
	}
	manifest := intercept.DefaultManifest()
	if cfg.ManifestPath != "" {
		if manifest, err = intercept.LoadManifest(cfg.ManifestPath); err != nil {
			return fmt.Errorf("load manifest: %w", err)
		}
	}

	ic := intercept.New(store, rm.Caches(db), intercept.Options{
		BaseURL:        target,
		APIPrefix:      cfg.APIPrefix,
		Names:          intercept.NewCacheNames(cfg.CachePrefix, cfg.CacheVersion),
		Manifest:       manifest,
		NetworkTimeout: cfg.RequestTimeout,
		Logger:         logger,
	})
	// Starting offline must still serve retained items, so interception is
	// activated without the shell and the install is retried on reconnect.
	if err := ic.Install(ctx); err != nil {
		logger.Warn(ctx, "shell install incomplete", "error", err)
	}
	if err := ic.Activate(ctx); err != nil {
		logger.Warn(ctx, "stale cache cleanup failed", "error", err)
	}

	// Reads go through the interceptor, whose own deadline fires first so a
	// slow network still ends in the local fallback.
	api, err := client.NewHTTPClient(client.Options{
		BaseURL:   cfg.ServerBaseURL,
		APIPrefix: cfg.APIPrefix,
		Transport: ic,
		Timeout:   2 * cfg.RequestTimeout,
		Tokens:    tokens,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	// Sync needs real network failures, so it bypasses the fallback.
	syncAPI, err := client.NewHTTPClient(client.Options{
		BaseURL:   cfg.ServerBaseURL,
		APIPrefix: cfg.APIPrefix,
		Transport: ic.Next(),
		Timeout:   cfg.RequestTimeout,
		Tokens:    tokens,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	progress := state.NewProgress()
	conn := state.NewConnectivity(logger)

	syncSvc, err := services.NewSyncService(syncAPI, store, progress, services.SyncOptions{
		PollInterval:  cfg.ProgressPollInterval,
		ViewCacheSize: cfg.ViewCacheSize,
		Assets:        ic,
		Logger:        logger,
		Reader:        api,
	})
	if err != nil {
		return err
	}
	defer syncSvc.Close()

	authSvc := services.NewAuthService(api, tokens, db, rm)
	positions := rm.Positions(db)
	tracker := reading.NewTracker(positions, reading.TrackerOptions{
		Anchor:       cfg.AnchorOffset,
		SaveInterval: cfg.PositionSaveInterval,
		Logger:       logger,
	})
	defer tracker.Close()

	conn.OnOnline(func(ctx context.Context) {
		if err := ic.InstallIfMissing(ctx); err != nil {
			logger.Warn(ctx, "shell install retry failed", "error", err)
		}
	})
	go conn.Watch(ctx, cfg.OnlineCheckInterval, cfg.RequestTimeout, authSvc.Ping)

	gw := gateway.New(cfg.ListenAddr, gateway.Deps{
		Store:        store,
		Sync:         syncSvc,
		Positions:    positions,
		Progress:     progress,
		Connectivity: conn,
		Tokens:       tokens,
		Target:       target,
		Transport:    ic,
		Logger:       logger,
	})
	gwErr := make(chan error, 1)
	go func() { gwErr <- gw.Start() }()

	// The REPL blocks on stdin, so it is not waited for once ctx is done.
	var replDone chan struct{}
	if !cfg.Headless {
		replDone = make(chan struct{})
		app := cli.NewApp(cli.Deps{
			Auth:         authSvc,
			Library:      syncSvc,
			Store:        store,
			Tracker:      tracker,
			Progress:     progress,
			Connectivity: conn,
			Logger:       logger,
		})
		go func() {
			defer close(replDone)
			app.Run(ctx)
		}()
	}

	select {
	case <-ctx.Done():
	case <-replDone:
	case err = <-gwErr:
		if err != nil {
			err = fmt.Errorf("gateway: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if serr := gw.Stop(shutdownCtx); serr != nil && !errors.Is(serr, context.DeadlineExceeded) {
		logger.Warn(ctx, "gateway shutdown", "error", serr)
	}
	return err
}
