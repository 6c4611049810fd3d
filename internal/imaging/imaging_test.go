package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"
)

func fill(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fill(w, h, color.RGBA{255, 0, 0, 255}), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encoding test JPEG: %v", err)
	}
	return buf.Bytes()
}

func TestProcessJPEGAndPNG(t *testing.T) {
	result, err := Process(bytes.NewReader(encodeJPEG(t, 100, 100)))
	if err != nil {
		t.Fatalf("Process JPEG: %v", err)
	}
	if result.MIME != "image/jpeg" || len(result.Data) == 0 {
		t.Errorf("got %q with %d bytes", result.MIME, len(result.Data))
	}

	var buf bytes.Buffer
	png.Encode(&buf, fill(100, 100, color.RGBA{0, 0, 255, 255}))
	result, err = Process(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Process PNG: %v", err)
	}
	// Everything comes out as JPEG.
	if result.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", result.MIME)
	}
}

func TestProcessGIF(t *testing.T) {
	var buf bytes.Buffer
	if err := gif.Encode(&buf, fill(60, 60, color.RGBA{0, 255, 0, 255}), nil); err != nil {
		t.Fatalf("encoding test GIF: %v", err)
	}
	result, err := Process(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Process GIF: %v", err)
	}
	if result.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", result.MIME)
	}
}

func TestProcessDownscale(t *testing.T) {
	result, err := Process(bytes.NewReader(encodeJPEG(t, 2048, 2048)))
	if err != nil {
		t.Fatalf("Process large image: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		t.Errorf("expected max %dx%d, got %dx%d", MaxDimension, MaxDimension, bounds.Dx(), bounds.Dy())
	}
}

func TestProcessAspectRatioPreserved(t *testing.T) {
	result, err := Process(bytes.NewReader(encodeJPEG(t, 2560, 1280)))
	if err != nil {
		t.Fatalf("Process wide image: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != MaxDimension || bounds.Dy() != MaxDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", MaxDimension, MaxDimension/2, bounds.Dx(), bounds.Dy())
	}
}

func TestProcessSmallImageNotUpscaled(t *testing.T) {
	result, err := Process(bytes.NewReader(encodeJPEG(t, 50, 50)))
	if err != nil {
		t.Fatalf("Process small image: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 50 || bounds.Dy() != 50 {
		t.Errorf("small image should not be resized: got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestProcessInvalidFormat(t *testing.T) {
	_, err := Process(bytes.NewReader([]byte("not an image")))
	if err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestProcessOversizedUpload(t *testing.T) {
	// A body over the byte cap is refused before decoding.
	big := append(encodeJPEG(t, 10, 10), make([]byte, MaxUploadBytes)...)
	if _, err := Process(bytes.NewReader(big)); err == nil {
		t.Error("expected error for oversized upload")
	}
}
