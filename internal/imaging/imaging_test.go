package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeJPEG(w, h int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, solid(w, h, color.RGBA{255, 0, 0, 255}), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestProcessDimensions(t *testing.T) {
	tests := []struct {
		name         string
		data         []byte
		wantW, wantH int
	}{
		{"small jpeg kept", encodeJPEG(50, 40), 50, 40},
		{"square jpeg bounded", encodeJPEG(2048, 2048), MaxDimension, MaxDimension},
		{"wide png bounded", encodePNG(solid(3000, 1500, color.RGBA{0, 0, 255, 255})), MaxDimension, MaxDimension / 2},
		{"tall jpeg bounded", encodeJPEG(600, 2400), 256, MaxDimension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			photo, err := Process(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if photo.MIME != "image/jpeg" {
				t.Errorf("expected image/jpeg, got %s", photo.MIME)
			}
			if photo.Width != tt.wantW || photo.Height != tt.wantH {
				t.Errorf("expected %dx%d, got %dx%d", tt.wantW, tt.wantH, photo.Width, photo.Height)
			}

			img, _, err := image.Decode(bytes.NewReader(photo.Data))
			if err != nil {
				t.Fatalf("decoding result: %v", err)
			}
			if b := img.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("encoded size %dx%d", b.Dx(), b.Dy())
			}
		})
	}
}

func TestProcessFlattensTransparency(t *testing.T) {
	photo, err := Process(bytes.NewReader(encodePNG(solid(10, 10, color.RGBA{}))))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	img, _, _ := image.Decode(bytes.NewReader(photo.Data))
	r, g, b, _ := img.At(5, 5).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("expected white background, got %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestProcessRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"text", []byte("not an image"), ErrUnsupported},
		{"gif", []byte("GIF89a..."), ErrUnsupported},
		{"oversized", append([]byte{0xff, 0xd8, 0xff}, make([]byte, MaxUploadBytes)...), ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Process(bytes.NewReader(tt.data)); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
