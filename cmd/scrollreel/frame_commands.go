package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"scrollreel/internal/frames"
	"scrollreel/internal/uploader"
	"scrollreel/internal/validation"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <id> <file|dir>...",
		Short: "Upload frame images; the frame number comes from each file name",
		Long: "Upload frame images to an animation. Each file name must end in -<number>,\n" +
			"for example product-12.webp, which becomes frame 12. Directories are expanded\n" +
			"to the image files they contain. A failed file does not stop the batch.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAnimationID(args[0])
			if err != nil {
				return err
			}
			files, err := collectFrameFiles(args[1:])
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no image files found (supported: %s)", strings.Join(validation.SupportedExtensions(), ", "))
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			batch := uploader.Batch{Uploader: client}
			if !ctx.jsonOutput() {
				batch.OnProgress = func(p uploader.Progress) { printProgress(stdout, p) }
			}
			report := batch.Run(cmd.Context(), id, files)

			if err := emit(ctx, cmd, report, func() string { return renderUploadReport(report) }); err != nil {
				return err
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d uploads failed", report.Failed, len(files))
			}
			return cmd.Context().Err()
		},
	}
}

func newDeleteFrameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-frame <id> <frame>",
		Short: "Delete one frame; later frames keep their numbers",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAnimationID(args[0])
			if err != nil {
				return err
			}
			ordinal, err := parseFrameNumber(args[1])
			if err != nil {
				return err
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			resp, err := client.DeleteFrame(cmd.Context(), id, ordinal)
			if err != nil {
				return err
			}
			return emit(ctx, cmd, resp, func() string {
				lines := []string{fmt.Sprintf("Deleted frame %d; animation %d has %d frames", ordinal, id, resp.FrameCount)}
				for _, w := range resp.Warnings {
					lines = append(lines, "warning: "+w)
				}
				return strings.Join(lines, "\n")
			})
		},
	}
}

// collectFrameFiles expands directories to their image files. Files named
// explicitly are kept even when their extension is unsupported so the
// daemon can report why they were rejected.
func collectFrameFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("inspect %q: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read directory %q: %w", arg, err)
		}
		var found []string
		for _, entry := range entries {
			if entry.IsDir() || !slices.Contains(validation.SupportedExtensions(), frames.Extension(entry.Name())) {
				continue
			}
			found = append(found, filepath.Join(arg, entry.Name()))
		}
		slices.SortFunc(found, compareFrameFiles)
		files = append(files, found...)
	}
	return files, nil
}

// compareFrameFiles orders by parsed frame number, falling back to name.
func compareFrameFiles(a, b string) int {
	na, errA := frames.ParseOrdinal(a)
	nb, errB := frames.ParseOrdinal(b)
	switch {
	case errA == nil && errB == nil && na != nb:
		return na - nb
	case errA == nil && errB != nil:
		return -1
	case errA != nil && errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func printProgress(w io.Writer, p uploader.Progress) {
	name := filepath.Base(p.File)
	if p.Err != nil {
		fmt.Fprintf(w, "[%d/%d] %s: FAILED: %s\n", p.Index, p.Total, name, explainError(p.Err))
		return
	}
	verb := "frame"
	if p.Response.Replaced {
		verb = "replaced frame"
	}
	fmt.Fprintf(w, "[%d/%d] %s -> %s %d\n", p.Index, p.Total, name, verb, p.Response.FrameIndex)
}

func renderUploadReport(r uploader.Report) string {
	lines := []string{fmt.Sprintf("Uploaded %d, failed %d; animation has %d frames", r.Succeeded, r.Failed, r.FrameCount)}
	if r.Skipped > 0 {
		lines = append(lines, fmt.Sprintf("Skipped %d after cancellation", r.Skipped))
	}
	for _, w := range r.Warnings {
		lines = append(lines, "warning: "+w)
	}
	return strings.Join(lines, "\n")
}

func parseFrameNumber(arg string) (int, error) {
	ordinal, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || ordinal < 1 {
		return 0, fmt.Errorf("invalid frame number %q", arg)
	}
	return ordinal, nil
}
