// Package board defines the board collaborator interface and the image item
// data model shared by every gridsnap component.
//
// A board is an infinite 2D canvas owned by an external host application.
// gridsnap never owns board state; it reads the current selection, computes
// new geometry, and writes mutations back. The package ships four
// implementations of the Board interface:
//
//   - MemoryBoard: in-process store, used by tests and the local server
//   - Client: HTTP client speaking the board REST API
//   - Server: chi HTTP handler exposing any Board over that API
//   - MongoBoard: persistent store backed by a MongoDB collection
package board

import (
	"context"
	"strconv"
	"sync"
)

// MetaLuma is the metadata key under which a cached luminance value is
// persisted on an item, as a decimal string in [0,1]. It is an explicit
// constant so callers never probe ad-hoc metadata shapes.
const MetaLuma = "luma"

// SourceKind discriminates the variants of ImageSource.
type SourceKind string

const (
	SourceNone  SourceKind = ""
	SourceURL   SourceKind = "url"
	SourceFile  SourceKind = "file"
	SourceBytes SourceKind = "bytes"
)

// ImageSource identifies where an item's pixels live. It is produced once at
// the boundary (board API response or file import) so downstream code never
// inspects ad-hoc field shapes.
type ImageSource struct {
	Kind SourceKind `json:"kind,omitempty" bson:"kind,omitempty"`
	URL  string     `json:"url,omitempty" bson:"url,omitempty"`
	Path string     `json:"path,omitempty" bson:"path,omitempty"`
	Data []byte     `json:"data,omitempty" bson:"data,omitempty"`
}

// URLSource builds an ImageSource referring to a remote image.
func URLSource(url string) ImageSource { return ImageSource{Kind: SourceURL, URL: url} }

// FileSource builds an ImageSource referring to a local file.
func FileSource(path string) ImageSource { return ImageSource{Kind: SourceFile, Path: path} }

// BytesSource builds an ImageSource holding raw encoded image bytes.
func BytesSource(data []byte) ImageSource { return ImageSource{Kind: SourceBytes, Data: data} }

// IsZero reports whether the source refers to nothing.
func (s ImageSource) IsZero() bool { return s.Kind == SourceNone }

// CacheContent returns the bytes that identify this source for cache keying.
func (s ImageSource) CacheContent() []byte {
	switch s.Kind {
	case SourceURL:
		return []byte("url:" + s.URL)
	case SourceFile:
		return []byte("file:" + s.Path)
	case SourceBytes:
		return s.Data
	default:
		return nil
	}
}

// Item is one image widget on the board. X and Y are the widget's center;
// W and H are its full extent. gridsnap treats items as mutable by reference
// for the duration of one operation and never persists them itself.
type Item struct {
	ID       string            `json:"id" bson:"_id"`
	Title    string            `json:"title" bson:"title"`
	X        float64           `json:"x" bson:"x"`
	Y        float64           `json:"y" bson:"y"`
	W        float64           `json:"w" bson:"w"`
	H        float64           `json:"h" bson:"h"`
	Selected bool              `json:"selected,omitempty" bson:"selected"`
	Source   ImageSource       `json:"source,omitempty" bson:"source,omitempty"`
	Meta     map[string]string `json:"meta,omitempty" bson:"meta,omitempty"`
}

// Luma returns the cached luminance from item metadata, if present and valid.
func (it *Item) Luma() (float64, bool) {
	if it.Meta == nil {
		return 0, false
	}
	return parseLuma(it.Meta[MetaLuma])
}

// Clone returns a deep copy of the item.
func (it *Item) Clone() *Item {
	cp := *it
	if it.Meta != nil {
		cp.Meta = make(map[string]string, len(it.Meta))
		for k, v := range it.Meta {
			cp.Meta[k] = v
		}
	}
	return &cp
}

// Mutation is a partial update of one item. Nil fields are left untouched.
type Mutation struct {
	ID    string            `json:"id"`
	Title *string           `json:"title,omitempty"`
	X     *float64          `json:"x,omitempty"`
	Y     *float64          `json:"y,omitempty"`
	W     *float64          `json:"w,omitempty"`
	H     *float64          `json:"h,omitempty"`
	Meta  map[string]string `json:"meta,omitempty"`
}

// NotifyLevel classifies user-facing notifications.
type NotifyLevel string

const (
	NotifyInfo  NotifyLevel = "info"
	NotifyError NotifyLevel = "error"
)

// CreateImageRequest describes a new image widget for Board.CreateImage.
type CreateImageRequest struct {
	Title  string      `json:"title"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	W      float64     `json:"w"`
	H      float64     `json:"h"`
	Source ImageSource       `json:"source,omitempty"`
	Meta   map[string]string `json:"meta,omitempty"`
}

// Board is the host canvas collaborator. All methods honor ctx cancellation.
type Board interface {
	// Selection returns the currently selected image items.
	Selection(ctx context.Context) ([]*Item, error)

	// Apply writes one mutation to the board. Each call is atomic from the
	// caller's perspective; no cross-call ordering is guaranteed.
	Apply(ctx context.Context, m Mutation) error

	// CreateImage adds a new image widget and returns it with its assigned ID.
	CreateImage(ctx context.Context, req CreateImageRequest) (*Item, error)

	// Notify sends fire-and-forget user feedback.
	Notify(ctx context.Context, level NotifyLevel, message string)
}

// CommitResult captures the outcome of one mutation within a batch commit.
type CommitResult struct {
	ID  string
	Err error
}

// Commit applies all mutations as a best-effort concurrent batch with
// per-item result capture. Every mutation is attempted regardless of sibling
// failures; already-applied mutations are never rolled back. The returned
// slice parallels muts.
func Commit(ctx context.Context, b Board, muts []Mutation) []CommitResult {
	results := make([]CommitResult, len(muts))
	var wg sync.WaitGroup
	for i, m := range muts {
		wg.Add(1)
		go func(i int, m Mutation) {
			defer wg.Done()
			results[i] = CommitResult{ID: m.ID, Err: b.Apply(ctx, m)}
		}(i, m)
	}
	wg.Wait()
	return results
}

// FailedIDs extracts the item IDs whose mutations failed.
func FailedIDs(results []CommitResult) []string {
	var ids []string
	for _, r := range results {
		if r.Err != nil {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

func parseLuma(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v > 1 {
		return 0, false
	}
	return v, true
}

// FormatLuma renders a luminance value for storage under MetaLuma.
func FormatLuma(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
