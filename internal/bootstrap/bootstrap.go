// Package bootstrap builds the sync pipeline from configuration. The server,
// the sync CLI and the bridge child share it so all three sign, fetch and
// persist the same way.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	app "github.com/sellerpulse/backend/internal/application/analytics"
	"github.com/sellerpulse/backend/internal/infrastructure/bridge"
	"github.com/sellerpulse/backend/internal/infrastructure/cache"
	"github.com/sellerpulse/backend/internal/infrastructure/config"
	"github.com/sellerpulse/backend/internal/infrastructure/logger"
	"github.com/sellerpulse/backend/internal/infrastructure/persistence"
	"github.com/sellerpulse/backend/internal/infrastructure/signer"
	"github.com/sellerpulse/backend/internal/infrastructure/storage"
	"github.com/sellerpulse/backend/internal/infrastructure/telemetry"
	"github.com/sellerpulse/backend/internal/infrastructure/tiktok"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// bridgeBinary is looked up next to the running executable when no bridge command is configured
const bridgeBinary = "bridge"

// Closer releases what a constructor opened
type Closer func() error

// closers runs in reverse order and joins the errors
type closers []Closer

func (c closers) Close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenDatabase connects with the zap-backed GORM logger and installs DB tracing
func OpenDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	var gormOpts []logger.GormLoggerOption
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		gormOpts = append(gormOpts, logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	}
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), gormOpts...)

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		return nil, err
	}

	tracing := telemetry.DefaultDBTracingConfig()
	tracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	tracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	tracing.DBName = cfg.Database.DBName
	if err := telemetry.NewDBTracingPlugin(tracing, log).Register(db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("register db tracing: %w", err)
	}
	return db, nil
}

// NewSigners returns the X-Bogus and X-Gnarly signers of the configured provider
func NewSigners(cfg *config.Config, log *zap.Logger) (bogus, gnarly signer.Signer, closeFn Closer, err error) {
	switch cfg.Signer.Provider {
	case config.SignerCommand:
		bogusPath, bogusArgs := splitCommand(cfg.Signer.BogusCommand)
		gnarlyPath, gnarlyArgs := splitCommand(cfg.Signer.GnarlyCmd)
		if bogusPath == "" || gnarlyPath == "" {
			return nil, nil, nil, errors.New("signer.bogus_command and signer.gnarly_command are required for the command provider")
		}
		return signer.NewCommand(bogusPath, bogusArgs, cfg.Signer.Timeout, log),
			signer.NewCommand(gnarlyPath, gnarlyArgs, cfg.Signer.Timeout, log),
			func() error { return nil }, nil

	default:
		runtime, err := signer.NewBrowserRuntime(signer.BrowserConfig{
			ScriptPath:  cfg.Signer.ScriptPath,
			RemoteURL:   cfg.Signer.ChromeURL,
			NoSandbox:   cfg.Signer.NoSandbox,
			EvalTimeout: cfg.Signer.Timeout,
			Logger:      log,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return signer.Script{Runtime: runtime, Function: signer.FunctionBogus},
			signer.Script{Runtime: runtime, Function: signer.FunctionGnarly},
			runtime.Close, nil
	}
}

// NewTikTokClient builds the signed in-process vendor client
func NewTikTokClient(cfg *config.Config, log *zap.Logger) (*tiktok.Client, Closer, error) {
	tc := TikTokConfig(cfg)

	bogus, gnarly, closeSigners, err := NewSigners(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	invoker := tiktok.NewSigningInvoker(bogus, gnarly, tc.UserAgent, tc.GnarlyVersion, nil)

	client, err := tiktok.NewClient(tc, invoker, nil, log)
	if err != nil {
		_ = closeSigners()
		return nil, nil, err
	}
	return client, closeSigners, nil
}

// TikTokConfig maps the tiktok section onto the client defaults
func TikTokConfig(cfg *config.Config) tiktok.Config {
	tc := tiktok.DefaultConfig()
	if cfg.TikTok.UserAgent != "" {
		tc.UserAgent = cfg.TikTok.UserAgent
	}
	if cfg.TikTok.SecChUa != "" {
		tc.SecChUa = cfg.TikTok.SecChUa
	}
	if cfg.TikTok.TimezoneName != "" {
		tc.TimezoneName = cfg.TikTok.TimezoneName
	}
	if cfg.TikTok.SignerVersion != "" {
		tc.GnarlyVersion = cfg.TikTok.SignerVersion
	}
	if cfg.TikTok.Timeout > 0 {
		tc.Timeout = cfg.TikTok.Timeout
	}
	return tc
}

// NewPageFetcher returns the bridge subprocess fetcher or the in-process client
func NewPageFetcher(cfg *config.Config, log *zap.Logger) (app.PageFetcher, Closer, error) {
	if cfg.Sync.Fetcher == config.FetcherInProcess {
		client, closeFn, err := NewTikTokClient(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Using in-process page fetcher", zap.String("signer", cfg.Signer.Provider))
		return tiktok.NewFetcher(client), closeFn, nil
	}

	path := cfg.Bridge.Command
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, nil, fmt.Errorf("locate bridge binary: %w", err)
		}
		path = filepath.Join(filepath.Dir(exe), bridgeBinary)
	}
	log.Info("Using bridge page fetcher", zap.String("bridge", path))
	return bridge.NewClient(bridge.ClientConfig{
		Path:    path,
		Args:    cfg.Bridge.Args,
		Timeout: cfg.Bridge.Timeout,
	}, log), func() error { return nil }, nil
}

// SyncDeps are the optional collaborators of the sync service
type SyncDeps struct {
	Recorder app.SyncRecorder
}

// NewSyncService wires the repositories, fetcher, lock, pacing and archive.
// The returned Closer releases the fetcher, the lock backend and nothing else;
// the database stays owned by the caller.
func NewSyncService(ctx context.Context, cfg *config.Config, db *persistence.Database, deps SyncDeps, log *zap.Logger) (*app.SyncService, Closer, error) {
	var cleanup closers
	fail := func(err error) (*app.SyncService, Closer, error) {
		_ = cleanup.Close()
		return nil, nil, err
	}

	fetcher, closeFetcher, err := NewPageFetcher(cfg, log)
	if err != nil {
		return fail(err)
	}
	cleanup = append(cleanup, closeFetcher)

	svc := app.NewSyncService(
		persistence.NewGormShopRepository(db.DB),
		persistence.NewGormProductRepository(db.DB),
		persistence.NewGormSnapshotRepository(db.DB),
		fetcher,
		nil,
		app.SyncConfig{
			PageSize: cfg.Sync.PageSize,
			MaxPage:  cfg.Sync.MaxPage,
			LockTTL:  cfg.Sync.LockTTL,
		},
		log,
	)

	lock, err := cache.NewSyncLockFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	).Create(ctx)
	if err != nil {
		return fail(err)
	}
	cleanup = append(cleanup, lock.Close)
	svc.WithLock(lock)

	if interval := cfg.Sync.RequestInterval(); interval > 0 {
		svc.WithLimiter(rate.NewLimiter(rate.Every(interval), 1))
		log.Info("Page pacing enabled", zap.Duration("interval", interval))
	}

	if cfg.Archive.Bucket != "" {
		archive, err := storage.NewS3RawArchive(ctx, cfg.Archive, storage.WithLogger(log))
		if err != nil {
			return fail(err)
		}
		svc.WithArchive(archive)
		log.Info("Raw page archive enabled", zap.String("bucket", archive.Bucket()))
	}

	if deps.Recorder != nil {
		svc.WithRecorder(deps.Recorder)
	}

	return svc, cleanup.Close, nil
}

// NewQueryService wires the aggregation service
func NewQueryService(db *persistence.Database, log *zap.Logger) *app.QueryService {
	return app.NewQueryService(
		persistence.NewGormShopRepository(db.DB),
		persistence.NewGormAnalyticsRepository(db.DB),
		log,
	)
}

// splitCommand splits "path arg1 arg2" on whitespace
func splitCommand(s string) (string, []string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}
