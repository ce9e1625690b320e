package luma

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/gridsnap/gridsnap/pkg/board"
	"github.com/gridsnap/gridsnap/pkg/cache"
	"github.com/gridsnap/gridsnap/pkg/errors"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func solidImage(c color.Color, w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestAverage(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
		want float64
	}{
		{"white", solidImage(color.White, 10, 10), 1.0},
		{"black", solidImage(color.Black, 10, 10), 0.0},
		{"red", solidImage(color.NRGBA{R: 255, A: 255}, 10, 10), 0.2126},
		{"green", solidImage(color.NRGBA{G: 255, A: 255}, 10, 10), 0.7152},
		{"mid gray", solidImage(color.NRGBA{R: 128, G: 128, B: 128, A: 255}, 10, 10), 128.0 / 255},
	}
	for _, tt := range tests {
		got := Average(tt.img)
		if math.Abs(got-tt.want) > 0.01 {
			t.Errorf("%s: Average = %.4f, want %.4f", tt.name, got, tt.want)
		}
	}
}

func TestAverageDownscalesLargeImages(t *testing.T) {
	// A large checkerboard must still average near the midpoint.
	img := image.NewNRGBA(image.Rect(0, 0, 512, 512))
	for y := 0; y < 512; y++ {
		for x := 0; x < 512; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	got := Average(img)
	if math.Abs(got-0.5) > 0.02 {
		t.Errorf("checkerboard Average = %.4f, want ~0.5", got)
	}
}

func TestSampleBytesSource(t *testing.T) {
	s := NewSampler(testLogger())
	data := encodePNG(t, solidImage(color.White, 4, 4))

	got, err := s.Sample(context.Background(), board.BytesSource(data))
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if math.Abs(got-1.0) > 0.01 {
		t.Errorf("Sample = %.4f, want ~1.0", got)
	}
}

func TestSampleFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "black.png")
	if err := os.WriteFile(path, encodePNG(t, solidImage(color.Black, 4, 4)), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewSampler(testLogger())
	got, err := s.Sample(context.Background(), board.FileSource(path))
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if got > 0.01 {
		t.Errorf("Sample = %.4f, want ~0", got)
	}
}

func TestSampleURLSource(t *testing.T) {
	data := encodePNG(t, solidImage(color.White, 4, 4))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	s := NewSampler(testLogger())
	got, err := s.Sample(context.Background(), board.URLSource(srv.URL))
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if math.Abs(got-1.0) > 0.01 {
		t.Errorf("Sample = %.4f, want ~1.0", got)
	}
}

func TestSampleURLNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	s := NewSampler(testLogger())
	_, err := s.Sample(context.Background(), board.URLSource(srv.URL))
	if errors.GetCode(err) != errors.ErrCodeNetwork {
		t.Errorf("code = %v, want NETWORK_ERROR", errors.GetCode(err))
	}
}

func TestSampleUndecodableBytes(t *testing.T) {
	s := NewSampler(testLogger())
	_, err := s.Sample(context.Background(), board.BytesSource([]byte("not an image")))
	if errors.GetCode(err) != errors.ErrCodeDecodeFailed {
		t.Errorf("code = %v, want DECODE_FAILED", errors.GetCode(err))
	}
}

func TestSampleMissingSource(t *testing.T) {
	s := NewSampler(testLogger())
	_, err := s.Sample(context.Background(), board.ImageSource{})
	if errors.GetCode(err) != errors.ErrCodeSamplingFailed {
		t.Errorf("code = %v, want SAMPLING_FAILED", errors.GetCode(err))
	}
}

type countingBackend struct {
	calls int
	value float64
}

func (b *countingBackend) Sample(context.Context, board.ImageSource) (float64, error) {
	b.calls++
	return b.value, nil
}

func TestCachedSamplerMemoizes(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	backend := &countingBackend{value: 0.75}
	s := NewCachedSampler(backend, fc, testLogger())
	src := board.FileSource("/some/image.png")

	for i := 0; i < 3; i++ {
		got, err := s.Sample(context.Background(), src)
		if err != nil {
			t.Fatalf("Sample #%d: %v", i, err)
		}
		if math.Abs(got-0.75) > 1e-9 {
			t.Errorf("Sample #%d = %.4f, want 0.75", i, got)
		}
	}
	if backend.calls != 1 {
		t.Errorf("backend called %d times, want 1", backend.calls)
	}
}

func TestCachedSamplerDistinctSources(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	backend := &countingBackend{value: 0.3}
	s := NewCachedSampler(backend, fc, testLogger())

	s.Sample(context.Background(), board.FileSource("/a.png"))
	s.Sample(context.Background(), board.FileSource("/b.png"))
	if backend.calls != 2 {
		t.Errorf("backend called %d times, want 2", backend.calls)
	}
}

func TestCachedSamplerNullCachePassthrough(t *testing.T) {
	backend := &countingBackend{value: 0.4}
	s := NewCachedSampler(backend, cache.NewNullCache(), testLogger())

	s.Sample(context.Background(), board.FileSource("/a.png"))
	s.Sample(context.Background(), board.FileSource("/a.png"))
	if backend.calls != 2 {
		t.Errorf("backend called %d times, want 2 with NullCache", backend.calls)
	}
}
