package align

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/gridsnap/gridsnap/pkg/board"
	"github.com/gridsnap/gridsnap/pkg/errors"
)

// Strategy selects how the selection is ordered before layout.
type Strategy string

const (
	// StrategyNumber orders by the number extracted from each title.
	StrategyNumber Strategy = "number"

	// StrategyAlphabetical orders by case-insensitive title.
	StrategyAlphabetical Strategy = "alphabetical"

	// StrategyGeometry orders in reading order: rows top to bottom,
	// left to right within a row.
	StrategyGeometry Strategy = "geometry"

	// StrategyColor orders by average luminance, brightest first.
	StrategyColor Strategy = "color"
)

// ParseStrategy validates a strategy name from config or flags.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyNumber, StrategyAlphabetical, StrategyGeometry, StrategyColor:
		return Strategy(s), nil
	default:
		return "", errors.New(errors.ErrCodeInvalidSort,
			"unknown sort strategy %q (must be one of: number, alphabetical, geometry, color)", s)
	}
}

// Sampler computes the average luminance of an image source in [0,1].
// pkg/luma provides the production implementation.
type Sampler interface {
	Sample(ctx context.Context, src board.ImageSource) (float64, error)
}

// neutralLuma is the fallback luminance assigned when sampling one item
// fails: the midpoint of the range, so the item lands mid-sequence instead
// of at either extreme.
const neutralLuma = 0.5

// orderingKey holds the per-item sort inputs, computed fresh per invocation.
type orderingKey struct {
	item      *board.Item
	index     int // position in the input slice, final tie-break
	hasNumber bool
	number    int64
	title     string // lowercased for case-insensitive comparison
	luma      float64
}

// Order produces a total order over items for the given strategy. The input
// slice is not modified; a freshly ordered slice is returned.
//
// For StrategyNumber with strict=true, any item whose title carries no
// parseable number fails the whole operation with *errors.MissingNumberError
// before any mutation is attempted.
//
// For StrategyColor, luminance comes from item metadata when cached there,
// otherwise from sampler. Individual sampling failures fall back to a
// neutral mid-range value; if no item yields a luminance at all, the whole
// operation silently downgrades to geometry ordering.
func Order(ctx context.Context, items []*board.Item, strategy Strategy, strict bool, sampler Sampler, logger *log.Logger) ([]*board.Item, error) {
	if logger == nil {
		logger = log.Default()
	}
	keys := makeKeys(items)

	switch strategy {
	case StrategyNumber:
		return orderByNumber(keys, strict)
	case StrategyAlphabetical:
		orderAlphabetical(keys)
	case StrategyGeometry:
		orderGeometric(keys)
	case StrategyColor:
		if !sampleLuminance(ctx, keys, sampler, logger) {
			logger.Warn("no luminance available for any item, falling back to reading order")
			orderGeometric(keys)
		} else {
			orderByLuma(keys)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidSort, "unknown sort strategy %q", string(strategy))
	}

	return extractItems(keys), nil
}

// NumberUntitled assigns sequential numeric titles ("1", "2", ...) to items
// whose title is empty, numbering them in reading order. The items are
// updated in place and the corresponding mutations are returned so the
// caller can commit the write-back before layout proceeds.
//
// This pre-pass runs before number and color sorts so freshly imported or
// pasted widgets without titles still get a stable, number-capable order.
func NumberUntitled(items []*board.Item) []board.Mutation {
	var untitled []*orderingKey
	for i, it := range items {
		if strings.TrimSpace(it.Title) == "" {
			untitled = append(untitled, &orderingKey{item: it, index: i})
		}
	}
	if len(untitled) == 0 {
		return nil
	}

	sort.SliceStable(untitled, func(i, j int) bool {
		return readingOrderLess(untitled[i], untitled[j])
	})

	muts := make([]board.Mutation, 0, len(untitled))
	for seq, k := range untitled {
		title := strconv.Itoa(seq + 1)
		k.item.Title = title
		t := title
		muts = append(muts, board.Mutation{ID: k.item.ID, Title: &t})
	}
	return muts
}

func makeKeys(items []*board.Item) []*orderingKey {
	keys := make([]*orderingKey, len(items))
	for i, it := range items {
		n, ok := ExtractNumber(it.Title)
		keys[i] = &orderingKey{
			item:      it,
			index:     i,
			hasNumber: ok,
			number:    n,
			title:     strings.ToLower(it.Title),
		}
	}
	return keys
}

func extractItems(keys []*orderingKey) []*board.Item {
	out := make([]*board.Item, len(keys))
	for i, k := range keys {
		out[i] = k.item
	}
	return out
}

// orderByNumber sorts numbered items first (ascending), unnumbered after
// (alphabetical). Strict mode rejects the operation when any item is
// unnumbered.
func orderByNumber(keys []*orderingKey, strict bool) ([]*board.Item, error) {
	if strict {
		var missing []string
		for _, k := range keys {
			if !k.hasNumber {
				missing = append(missing, k.item.Title)
			}
		}
		if len(missing) > 0 {
			return nil, errors.NewMissingNumber(missing)
		}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.hasNumber != b.hasNumber {
			return a.hasNumber // numbered items first
		}
		if a.hasNumber && a.number != b.number {
			return a.number < b.number
		}
		if a.title != b.title {
			return a.title < b.title
		}
		return a.index < b.index
	})
	return extractItems(keys), nil
}

func orderAlphabetical(keys []*orderingKey) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.title != b.title {
			return a.title < b.title
		}
		return a.index < b.index
	})
}

func orderGeometric(keys []*orderingKey) {
	sort.SliceStable(keys, func(i, j int) bool {
		return readingOrderLess(keys[i], keys[j])
	})
}

// readingOrderLess compares two items in reading order. Two items share a
// row when their vertical center distance is at most half the smaller item
// height; the tolerance band keeps near-aligned items from being split into
// different rows by sub-pixel offsets.
func readingOrderLess(a, b *orderingKey) bool {
	dy := a.item.Y - b.item.Y
	tol := minFloat(a.item.H, b.item.H) / 2
	if dy < -tol {
		return true
	}
	if dy > tol {
		return false
	}
	if a.item.X != b.item.X {
		return a.item.X < b.item.X
	}
	return a.index < b.index
}

func orderByLuma(keys []*orderingKey) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.luma != b.luma {
			return a.luma > b.luma // brightest first
		}
		return a.index < b.index
	})
}

// sampleLuminance fills each key's luma from metadata or the sampler.
// Sampling runs as a best-effort concurrent batch with per-item result
// capture. It reports whether at least one item yielded a real luminance.
func sampleLuminance(ctx context.Context, keys []*orderingKey, sampler Sampler, logger *log.Logger) bool {
	obtained := make([]bool, len(keys))

	var wg sync.WaitGroup
	for i, k := range keys {
		if v, ok := k.item.Luma(); ok {
			k.luma = v
			obtained[i] = true
			continue
		}
		if sampler == nil || k.item.Source.IsZero() {
			k.luma = neutralLuma
			continue
		}
		wg.Add(1)
		go func(i int, k *orderingKey) {
			defer wg.Done()
			v, err := sampler.Sample(ctx, k.item.Source)
			if err != nil {
				logger.Debug("luminance sampling failed", "item", k.item.ID, "err", err)
				k.luma = neutralLuma
				return
			}
			k.luma = v
			obtained[i] = true
		}(i, k)
	}
	wg.Wait()

	for _, ok := range obtained {
		if ok {
			return true
		}
	}
	return false
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
