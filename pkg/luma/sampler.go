// Package luma computes the average brightness of images.
//
// The sampled value is the mean relative luminance (Rec. 709 weights) over
// the image's pixels, scaled to [0,1]. Images are downscaled before
// averaging; at grid-sorting granularity the average of a 64px thumbnail is
// indistinguishable from the full-resolution one and orders of magnitude
// cheaper to compute.
package luma

import (
	"bytes"
	"context"
	"image"
	"io"
	"net/http"
	"os"
	"time"

	// Stdlib decoders register themselves with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	// Extra formats boards commonly serve.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gridsnap/gridsnap/pkg/board"
	"github.com/gridsnap/gridsnap/pkg/errors"
)

const (
	// maxEdge is the thumbnail bound used before averaging.
	maxEdge = 64

	// maxImageBytes caps how much of a remote body is read. Anything larger
	// is not a board image.
	maxImageBytes = 32 << 20

	fetchTimeout = 15 * time.Second
)

// Sampler fetches, decodes and averages image sources.
type Sampler struct {
	client *http.Client
	logger *log.Logger
}

// NewSampler builds a Sampler with a dedicated HTTP client for URL sources.
func NewSampler(logger *log.Logger) *Sampler {
	if logger == nil {
		logger = log.Default()
	}
	return &Sampler{
		client: &http.Client{Timeout: fetchTimeout},
		logger: logger,
	}
}

// Sample resolves the source to pixels and returns its average luminance
// in [0,1].
func (s *Sampler) Sample(ctx context.Context, src board.ImageSource) (float64, error) {
	data, err := s.resolve(ctx, src)
	if err != nil {
		return 0, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeDecodeFailed, err, "decode image")
	}
	return Average(img), nil
}

// resolve turns an ImageSource into encoded image bytes. URL fetches retry
// on transient failures the same way the board API client does.
func (s *Sampler) resolve(ctx context.Context, src board.ImageSource) ([]byte, error) {
	switch src.Kind {
	case board.SourceBytes:
		return src.Data, nil

	case board.SourceFile:
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeSamplingFailed, err, "read %s", src.Path)
		}
		return data, nil

	case board.SourceURL:
		var data []byte
		err := board.RetryWithBackoff(ctx, func() error {
			var ferr error
			data, ferr = s.fetch(ctx, src.URL)
			return ferr
		})
		if err != nil {
			return nil, err
		}
		s.logger.Debug("fetched image", "url", src.URL, "bytes", len(data))
		return data, nil

	default:
		return nil, errors.New(errors.ErrCodeSamplingFailed, "item has no image source")
	}
}

func (s *Sampler) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "build request for %s", url)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, board.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", url))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, board.Retryable(errors.New(errors.ErrCodeNetwork, "fetch %s: %s", url, resp.Status))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.ErrCodeNetwork, "fetch %s: %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, board.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read body of %s", url))
	}
	if len(data) > maxImageBytes {
		return nil, errors.New(errors.ErrCodeSamplingFailed, "image at %s exceeds %d bytes", url, maxImageBytes)
	}
	return data, nil
}

// Average computes the mean Rec. 709 relative luminance of an image,
// downscaled to at most maxEdge per side first.
func Average(img image.Image) float64 {
	thumb := imaging.Fit(img, maxEdge, maxEdge, imaging.Box)
	px := thumb.Pix
	n := len(px) / 4
	if n == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < len(px); i += 4 {
		r := float64(px[i])
		g := float64(px[i+1])
		b := float64(px[i+2])
		sum += 0.2126*r + 0.7152*g + 0.0722*b
	}
	return sum / (255 * float64(n))
}
