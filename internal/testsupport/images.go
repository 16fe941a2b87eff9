package testsupport

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill := color.RGBA{R: 0x20, G: 0x80, B: 0xc0, A: 0xff}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill)
		}
	}
	return img
}

// PNGBytes encodes a solid w×h PNG.
func PNGBytes(t testing.TB, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(w, h)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// JPEGBytes encodes a solid w×h JPEG.
func JPEGBytes(t testing.TB, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, solid(w, h), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// WebPBytes returns a lossless WebP header declaring a w×h image. The
// payload is truncated after the header, which is enough for config probes
// and content sniffing but not for a full decode.
func WebPBytes(w, h int) []byte {
	var chunk bytes.Buffer
	chunk.WriteByte(0x2f)
	bits := uint32(w-1) | uint32(h-1)<<14
	_ = binary.Write(&chunk, binary.LittleEndian, bits)
	chunk.WriteByte(0)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(4+8+chunk.Len()))
	buf.WriteString("WEBP")
	buf.WriteString("VP8L")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(5))
	buf.Write(chunk.Bytes())
	return buf.Bytes()
}
