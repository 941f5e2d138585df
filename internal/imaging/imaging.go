// Package imaging normalizes uploaded item photos.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxDimension bounds the longer side of a stored photo.
const MaxDimension = 1024

// MaxUploadBytes bounds the size of an accepted upload.
const MaxUploadBytes = 20 << 20

// JPEGQuality is the compression quality of stored photos.
const JPEGQuality = 85

// ErrUnsupported is returned for uploads that are not JPEG or PNG.
var ErrUnsupported = errors.New("unsupported image format")

// ErrTooLarge is returned for uploads over MaxUploadBytes.
var ErrTooLarge = errors.New("image too large")

// Photo is a normalized photo ready for storage.
type Photo struct {
	Data          []byte
	MIME          string
	Width, Height int
}

// Process sniffs the upload, flattens transparency onto white, bounds it to
// MaxDimension and re-encodes it as JPEG.
func Process(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrTooLarge
	}

	switch mime := http.DetectContentType(data); mime {
	case "image/jpeg", "image/png":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, mime)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding photo: %w", err)
	}

	dst := fit(src, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding photo: %w", err)
	}

	b := dst.Bounds()
	return &Photo{Data: buf.Bytes(), MIME: "image/jpeg", Width: b.Dx(), Height: b.Dy()}, nil
}

// fit draws src onto a white canvas no larger than maxDim on either side,
// keeping the aspect ratio. Smaller images are never upscaled.
func fit(src image.Image, maxDim int) *image.RGBA {
	sb := src.Bounds()
	w, h := scaled(sb.Dx(), sb.Dy(), maxDim)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	if w == sb.Dx() && h == sb.Dy() {
		draw.Draw(dst, dst.Bounds(), src, sb.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Over, nil)
	}
	return dst
}

func scaled(w, h, maxDim int) (int, int) {
	if w <= maxDim && h <= maxDim {
		return w, h
	}
	if w > h {
		return maxDim, max(1, h*maxDim/w)
	}
	return max(1, w*maxDim/h), maxDim
}
