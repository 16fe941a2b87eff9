// Package uploader sends a batch of frame files to the daemon one at a
// time, continuing past individual failures.
package uploader

import (
	"context"
	"path/filepath"

	"scrollreel/internal/api"
)

// FrameUploader uploads one frame file. api.Client implements it.
type FrameUploader interface {
	UploadFrame(ctx context.Context, animationID int64, path string) (api.FrameUploadResponse, error)
}

// Progress is reported after each file.
type Progress struct {
	Index    int
	Total    int
	File     string
	Response *api.FrameUploadResponse
	Err      error
}

// Failure is one file that did not upload.
type Failure struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// Report summarizes a finished batch.
type Report struct {
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped,omitempty"`
	FrameCount int       `json:"frameCount"`
	Failures   []Failure `json:"failures,omitempty"`
	Warnings   []string  `json:"warnings,omitempty"`
}

// Batch uploads files sequentially.
type Batch struct {
	Uploader   FrameUploader
	OnProgress func(Progress)
}

// Run uploads files in the order given. A failure is recorded and the batch
// moves on. Cancellation stops the batch before the next file; files not
// attempted are counted as skipped.
func (b Batch) Run(ctx context.Context, animationID int64, files []string) Report {
	var report Report
	for i, file := range files {
		if ctx.Err() != nil {
			report.Skipped = len(files) - i
			break
		}
		resp, err := b.Uploader.UploadFrame(ctx, animationID, file)
		progress := Progress{Index: i + 1, Total: len(files), File: file, Err: err}
		if err != nil {
			report.Failed++
			report.Failures = append(report.Failures, Failure{File: filepath.Base(file), Message: api.MessageOf(err)})
		} else {
			report.Succeeded++
			report.FrameCount = resp.FrameCount
			for _, w := range resp.Warnings {
				report.Warnings = append(report.Warnings, filepath.Base(file)+": "+w)
			}
			progress.Response = &resp
		}
		if b.OnProgress != nil {
			b.OnProgress(progress)
		}
	}
	return report
}
