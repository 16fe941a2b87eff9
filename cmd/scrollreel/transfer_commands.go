package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"scrollreel/internal/api"
	"scrollreel/internal/fileutil"
	"scrollreel/internal/manifest"
	"scrollreel/internal/uploader"
)

const (
	manifestFileName  = "manifest.yaml"
	exportConcurrency = 4
)

type exportResult struct {
	Dir      string `json:"dir"`
	Frames   int    `json:"frames"`
	Copied   int    `json:"copied"`
	Download int    `json:"downloaded"`
}

type importResult struct {
	Animation api.Animation   `json:"animation"`
	Upload    uploader.Report `json:"upload"`
	Rejected  []string        `json:"rejected,omitempty"`
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write an animation's manifest and frame files to a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAnimationID(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			raw, err := client.Manifest(cmd.Context(), id)
			if err != nil {
				return err
			}
			m, err := manifest.Read(bytes.NewReader(raw))
			if err != nil {
				return fmt.Errorf("daemon returned an invalid manifest: %w", err)
			}

			dir := strings.TrimSpace(outDir)
			if dir == "" {
				dir = "animation-" + strconv.FormatInt(id, 10)
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create export directory: %w", err)
			}

			localDir := filepath.Join(cfg.Paths.FramesDir, strconv.FormatInt(id, 10))
			result, err := exportFrames(cmd.Context(), client, m, localDir, dir)
			if err != nil {
				return err
			}
			if _, err := fileutil.WriteAtomic(filepath.Join(dir, manifestFileName), bytes.NewReader(raw), 0o644); err != nil {
				return fmt.Errorf("write manifest: %w", err)
			}
			return emit(ctx, cmd, result, func() string {
				return fmt.Sprintf("Exported %d frames of animation %d to %s", result.Frames, id, result.Dir)
			})
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Destination directory (default animation-<id>)")
	return cmd
}

// exportFrames copies frames from the local frames directory when the daemon
// shares this filesystem and downloads them otherwise.
func exportFrames(ctx context.Context, client *api.Client, m manifest.Manifest, localDir, dest string) (exportResult, error) {
	result := exportResult{Dir: dest, Frames: len(m.Frames)}
	copied := make([]bool, len(m.Frames))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(exportConcurrency)
	for i, frame := range m.Frames {
		target := filepath.Join(dest, frame.File)
		group.Go(func() error {
			local := filepath.Join(localDir, frame.File)
			if _, err := os.Stat(local); err == nil {
				if err := fileutil.CopyFile(local, target); err != nil {
					return fmt.Errorf("copy %s: %w", frame.File, err)
				}
				copied[i] = true
				return nil
			} else if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("inspect %s: %w", local, err)
			}
			if frame.URL == "" {
				return fmt.Errorf("frame %d has no download url", frame.Ordinal)
			}
			return downloadFrame(groupCtx, client, frame.URL, target)
		})
	}
	if err := group.Wait(); err != nil {
		return exportResult{}, err
	}
	for _, c := range copied {
		if c {
			result.Copied++
		} else {
			result.Download++
		}
	}
	return result, nil
}

func downloadFrame(ctx context.Context, client *api.Client, url, target string) error {
	var buf bytes.Buffer
	if _, err := client.Download(ctx, url, &buf); err != nil {
		return err
	}
	if _, err := fileutil.WriteAtomic(target, &buf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(target), err)
	}
	return nil
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Create an animation from an exported manifest directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			file, err := os.Open(filepath.Join(dir, manifestFileName))
			if err != nil {
				return fmt.Errorf("open manifest: %w", err)
			}
			m, err := manifest.Read(file)
			file.Close()
			if err != nil {
				return err
			}

			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			name := m.Title
			if cmd.Flags().Changed("title") {
				name = title
			}
			anim, err := client.CreateAnimation(cmd.Context(), name)
			if err != nil {
				return err
			}

			easing := string(m.Settings.Easing)
			loops := m.Settings.LoopCount
			settings, err := client.UpdateSettings(cmd.Context(), anim.ID, &easing, &loops)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			batch := uploader.Batch{Uploader: client}
			if !ctx.jsonOutput() {
				batch.OnProgress = func(p uploader.Progress) { printProgress(stdout, p) }
			}
			report := batch.Run(cmd.Context(), anim.ID, m.Paths(dir))

			result := importResult{Animation: settings.Animation, Upload: report, Rejected: settings.Rejected}
			result.Animation.FrameCount = report.FrameCount
			if err := emit(ctx, cmd, result, func() string {
				return fmt.Sprintf("Imported %s as animation %d\n%s", anim.DisplayTitle(), anim.ID, renderUploadReport(report))
			}); err != nil {
				return err
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d frames failed to import", report.Failed, len(m.Frames))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Title for the new animation (default: manifest title)")
	return cmd
}
