package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"scrollreel/internal/blobstore"
	"scrollreel/internal/config"
	"scrollreel/internal/ingest"
	"scrollreel/internal/logging"
	"scrollreel/internal/store"
)

// Daemon serves the animation API and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	blobs    *blobstore.Store
	pipeline *ingest.Pipeline
	nonces   *nonceSigner
	api      *apiServer
	version  string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	group   *errgroup.Group
}

// Status represents daemon runtime information.
type Status struct {
	Version        string
	PID            int
	Running        bool
	AnimationCount int
	FrameCount     int
	FramesDir      string
	DBPath         string
	LockFilePath   string
	FramesBaseURL  string
}

// Option customizes a Daemon.
type Option func(*Daemon)

// WithVersion sets the version reported by /api/status.
func WithVersion(version string) Option {
	return func(d *Daemon) { d.version = version }
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || st == nil {
		return nil, errors.New("daemon requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	secret := strings.TrimSpace(cfg.API.NonceSecret)
	if secret == "" {
		secret = uuid.NewString()
		logger.Info("generated ephemeral nonce secret; nonces reset on restart",
			logging.String(logging.FieldEventType, "nonce_secret_generated"),
		)
	}

	blobs := blobstore.New(cfg.Paths.FramesDir, cfg.FramesBaseURL(), cfg.Ingest.MinFreeBytes)
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		blobs:    blobs,
		pipeline: ingest.New(cfg, st, blobs, logger),
		nonces:   newNonceSigner(secret),
		version:  "dev",
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Handler returns the HTTP handler serving the API and frame files.
func (d *Daemon) Handler() http.Handler {
	return d.api.handler
}

// Addr returns the listening address once started.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// Start acquires the daemon lock and starts the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another scrollreel daemon instance is already running")
	}

	serve, err := d.api.listen()
	if err != nil {
		_ = d.lock.Unlock()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(serve)
	group.Go(func() error {
		<-groupCtx.Done()
		d.api.shutdown()
		return nil
	})
	d.cancel = cancel
	d.group = group

	d.running.Store(true)
	d.logger.Info("scrollreel daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.Addr()),
		logging.String("frames_dir", d.cfg.Paths.FramesDir),
	)
	return nil
}

// Wait blocks until the server stops and returns its error, if any.
func (d *Daemon) Wait() error {
	if d.group == nil {
		return nil
	}
	return d.group.Wait()
}

// Run starts the daemon and blocks until ctx is canceled or the server fails.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	err := d.Wait()
	d.Stop()
	return err
}

// Stop stops the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.Wait(); err != nil {
		d.logger.Warn("api server stopped with error", logging.Error(err))
	}
	d.group = nil
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("scrollreel daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status reports daemon runtime information.
func (d *Daemon) Status(ctx context.Context) (Status, error) {
	stats, err := d.store.Stats(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Version:        d.version,
		PID:            os.Getpid(),
		Running:        d.running.Load(),
		AnimationCount: stats.Animations,
		FrameCount:     stats.Frames,
		FramesDir:      d.cfg.Paths.FramesDir,
		DBPath:         d.store.Path(),
		LockFilePath:   d.lockPath,
		FramesBaseURL:  d.cfg.FramesBaseURL(),
	}, nil
}
