// Package validation decides whether an uploaded file is an acceptable frame.
package validation

import (
	"errors"
	"io"
	"net/http"
	"slices"

	"github.com/dustin/go-humanize"

	"scrollreel/internal/frames"
)

// DefaultMaxBytes is the largest accepted frame, 5 MiB.
const DefaultMaxBytes int64 = 5 << 20

const sniffLen = 512

// Format is one accepted raster format.
type Format struct {
	Name       string
	MIME       string
	Extensions []string
}

var formats = []Format{
	{Name: "webp", MIME: "image/webp", Extensions: []string{"webp"}},
	{Name: "jpeg", MIME: "image/jpeg", Extensions: []string{"jpg", "jpeg"}},
	{Name: "png", MIME: "image/png", Extensions: []string{"png"}},
}

// Formats lists the accepted formats.
func Formats() []Format {
	return slices.Clone(formats)
}

// SupportedExtensions lists the accepted extensions without dots.
func SupportedExtensions() []string {
	var out []string
	for _, f := range formats {
		out = append(out, f.Extensions...)
	}
	return out
}

func formatForExtension(ext string) (Format, bool) {
	for _, f := range formats {
		if slices.Contains(f.Extensions, ext) {
			return f, true
		}
	}
	return Format{}, false
}

func formatForMIME(mime string) (Format, bool) {
	for _, f := range formats {
		if f.MIME == mime {
			return f, true
		}
	}
	return Format{}, false
}

// Upload describes one received file. TransportErr carries any failure the
// transport reported while receiving it.
type Upload struct {
	FileName     string
	Size         int64
	TransportErr error
	Content      io.ReadSeeker
}

// Limits bounds what Validate accepts.
type Limits struct {
	MaxBytes int64
}

func (l Limits) maxBytes() int64 {
	if l.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return l.MaxBytes
}

// Checked is a successful validation outcome.
type Checked struct {
	Extension string
	MIME      string
}

// Validate runs the transport, extension, size, and content checks in order
// and reports the first failure. Content is rewound to the start on success.
func Validate(up Upload, limits Limits) (Checked, error) {
	if up.TransportErr != nil {
		return Checked{}, frames.NewError(frames.KindTransport, up.TransportErr, "upload of %q did not complete", frames.BaseName(up.FileName))
	}

	ext := frames.Extension(up.FileName)
	format, ok := formatForExtension(ext)
	if !ok {
		return Checked{}, frames.NewError(frames.KindUnsupportedExtension, nil, "%q is not a supported frame type (use webp, jpg, jpeg, or png)", frames.BaseName(up.FileName))
	}

	if limit := limits.maxBytes(); up.Size > limit {
		return Checked{}, frames.NewError(frames.KindFileTooLarge, nil, "%q is %s; the limit is %s", frames.BaseName(up.FileName), humanize.IBytes(uint64(up.Size)), humanize.IBytes(uint64(limit)))
	}

	mime, err := sniff(up.Content)
	if err != nil {
		return Checked{}, frames.NewError(frames.KindTransport, err, "could not read %q", frames.BaseName(up.FileName))
	}
	sniffed, ok := formatForMIME(mime)
	if !ok || sniffed.Name != format.Name {
		return Checked{}, frames.NewError(frames.KindContentTypeMismatch, nil, "%q does not contain %s image data (detected %s)", frames.BaseName(up.FileName), format.Name, mime)
	}
	return Checked{Extension: ext, MIME: mime}, nil
}

func sniff(r io.ReadSeeker) (string, error) {
	if r == nil {
		return "", errors.New("no content")
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}
