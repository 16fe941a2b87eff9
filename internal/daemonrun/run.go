package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"scrollreel/internal/blobstore"
	"scrollreel/internal/config"
	"scrollreel/internal/daemon"
	"scrollreel/internal/logging"
	"scrollreel/internal/store"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	Version     string
}

// PIDFileName is the daemon pid file written beneath the log directory.
const PIDFileName = "scrollreeld.pid"

// Run starts the scrollreel daemon and blocks until a signal arrives or the
// API server fails.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("scrollreeld-%s.log", runID))

	level := strings.TrimSpace(opts.LogLevel)
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.LogPath(), logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update scrollreeld.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "scrollreeld-*.log", Exclude: []string{logPath}},
	)
	logStorageSnapshot(logger, cfg)

	pidPath := filepath.Join(cfg.Paths.LogDir, PIDFileName)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open animation store", logging.Error(err))
		return err
	}
	defer st.Close()

	var daemonOpts []daemon.Option
	if v := strings.TrimSpace(opts.Version); v != "" {
		daemonOpts = append(daemonOpts, daemon.WithVersion(v))
	}
	d, err := daemon.New(cfg, st, logger, daemonOpts...)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}

	if err := d.Run(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "daemon stopped with error", "daemon_run_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the api_bind address and that no other daemon holds the lock"),
			logging.String(logging.FieldImpact, "frames cannot be uploaded or served"),
		)
		return err
	}
	logger.Info("scrollreel daemon shutting down")
	return nil
}

// ensureCurrentLogPointer points the stable log name at this run's file.
func ensureCurrentLogPointer(current, target string) error {
	if current == "" || target == "" {
		return nil
	}
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logStorageSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "storage_snapshot"),
		logging.String("frames_dir", cfg.Paths.FramesDir),
		logging.String("database", cfg.DatabasePath()),
		logging.String("frames_base_url", cfg.FramesBaseURL()),
		logging.String("max_frame_size", humanize.IBytes(uint64(cfg.Ingest.MaxFrameBytes))),
		logging.Bool("uniform_dimensions", cfg.Ingest.EnforceUniformDimensions),
		logging.Bool("api_token_set", strings.TrimSpace(cfg.Paths.APIToken) != ""),
	}
	if free, err := blobstore.FreeBytes(cfg.Paths.FramesDir); err == nil {
		attrs = append(attrs, logging.String("frames_free", humanize.IBytes(free)))
	}
	logger.Info("storage snapshot", logging.Args(attrs...)...)
}
