package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"scrollreel/internal/api"
	"scrollreel/internal/daemonctl"
	"scrollreel/internal/daemonrun"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	var startLogLevel string
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the scrollreel daemon in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}
			result, err := daemonctl.EnsureStarted(cmd.Context(), client, exe, daemonctl.LaunchOptions{
				ConfigPath: ctx.configPath(),
				LogLevel:   startLogLevel,
			}, 10*time.Second)
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			switch result.State {
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintf(stdout, "Daemon already running (pid %d)\n", result.PID)
			default:
				fmt.Fprintf(stdout, "Daemon started (pid %d) at %s\n", result.PID, client.BaseURL())
			}
			return nil
		},
	}
	startCmd.Flags().StringVar(&startLogLevel, "log-level", "", "Override the configured log level")

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the scrollreel daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.StopAndTerminate(cmd.Context(), client, cfg, 5*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.ForcedKill {
				fmt.Fprintf(stdout, "Daemon did not exit in time; killed pid %d\n", result.PID)
				return nil
			}
			fmt.Fprintf(stdout, "Daemon stopped (pid %d)\n", result.PID)
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				var apiErr *api.Error
				if errors.As(err, &apiErr) {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"running": false})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderStatusSection("Daemon", []statusLine{{
					label: "scrollreeld", kind: statusWarn, message: "Not running (run `scrollreel start`)",
				}}, shouldColorize(cmd.OutOrStdout())))
				return nil
			}
			return emit(ctx, cmd, status, func() string {
				return renderStatusSection("Daemon", statusLines(status, client.BaseURL()), shouldColorize(cmd.OutOrStdout()))
			})
		},
	}

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check database and frame storage health",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			health, err := client.Health(cmd.Context())
			if err != nil {
				return err
			}
			return emit(ctx, cmd, health, func() string {
				return renderStatusSection("Health", healthLines(health), shouldColorize(cmd.OutOrStdout()))
			})
		},
	}

	return []*cobra.Command{startCmd, stopCmd, statusCmd, healthCmd}
}

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	var development bool
	cmd := &cobra.Command{
		Use:    "daemon",
		Short:  "Run the scrollreel daemon in the foreground",
		Hidden: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    logLevel,
				Development: development,
				Version:     version,
			})
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	cmd.Flags().BoolVar(&development, "dev", false, "Include source locations in log output")
	return cmd
}

func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}

func statusLines(status api.StatusResponse, address string) []statusLine {
	return []statusLine{
		{label: "scrollreeld", kind: statusOK, message: fmt.Sprintf("Running (pid %d, version %s)", status.PID, status.Version)},
		{label: "API", kind: statusInfo, message: address},
		{label: "Animations", kind: statusInfo, message: strconv.Itoa(status.AnimationCount)},
		{label: "Frames", kind: statusInfo, message: strconv.Itoa(status.FrameCount)},
		{label: "Frames dir", kind: statusInfo, message: status.FramesDir},
		{label: "Public URL", kind: statusInfo, message: status.FramesBaseURL},
		{label: "Database", kind: statusInfo, message: status.DBPath},
	}
}

func healthLines(h api.HealthResponse) []statusLine {
	lines := make([]statusLine, 0, 6)
	if h.DatabaseReadable {
		lines = append(lines, statusLine{label: "Database", kind: statusOK, message: fmt.Sprintf("Readable (schema v%d)", h.SchemaVersion)})
	} else {
		msg := "Unreadable"
		if h.Error != "" {
			msg += ": " + h.Error
		}
		lines = append(lines, statusLine{label: "Database", kind: statusError, message: msg})
	}
	if h.IntegrityCheck {
		lines = append(lines, statusLine{label: "Integrity", kind: statusOK, message: "ok"})
	} else {
		lines = append(lines, statusLine{label: "Integrity", kind: statusError, message: "integrity_check failed"})
	}
	if len(h.DriftedCounts) == 0 {
		lines = append(lines, statusLine{label: "Frame counts", kind: statusOK, message: "consistent"})
	} else {
		lines = append(lines, statusLine{label: "Frame counts", kind: statusWarn, message: fmt.Sprintf("drifted for animations %v", h.DriftedCounts)})
	}
	lines = append(lines,
		statusLine{label: "Contents", kind: statusInfo, message: fmt.Sprintf("%d animations, %d frames", h.Animations, h.Frames)},
		statusLine{label: "Free space", kind: statusInfo, message: humanize.IBytes(h.FreeBytes)},
	)
	return lines
}

func formatTimestamp(value string) string {
	if value == "" {
		return "-"
	}
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return value
	}
	return humanize.Time(ts)
}
