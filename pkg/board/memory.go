package board

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/gridsnap/gridsnap/pkg/errors"
)

// MemoryBoard is an in-process Board. It backs the local board server and
// serves as the reference implementation and test double.
type MemoryBoard struct {
	mu    sync.RWMutex
	items map[string]*Item

	// Notifications records Notify calls in order, newest last.
	notifyMu      sync.Mutex
	notifications []Notification
}

// Notification is one recorded Notify call.
type Notification struct {
	Level   NotifyLevel
	Message string
}

// NewMemoryBoard creates an empty in-memory board.
func NewMemoryBoard() *MemoryBoard {
	return &MemoryBoard{items: make(map[string]*Item)}
}

// Put inserts or replaces an item. Intended for test setup and server seeding.
func (b *MemoryBoard) Put(it *Item) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items[it.ID] = it.Clone()
}

// Get returns a copy of the item with the given ID.
func (b *MemoryBoard) Get(id string) (*Item, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	it, ok := b.items[id]
	if !ok {
		return nil, false
	}
	return it.Clone(), true
}

// Items returns copies of all items, ordered by ID for determinism.
func (b *MemoryBoard) Items() []*Item {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Item, 0, len(b.items))
	for _, it := range b.items {
		out = append(out, it.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Selection returns copies of all selected items, ordered by ID.
func (b *MemoryBoard) Selection(ctx context.Context) ([]*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []*Item
	for _, it := range b.items {
		if it.Selected {
			out = append(out, it.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Apply writes one mutation. Unknown IDs fail with NOT_FOUND.
func (b *MemoryBoard) Apply(ctx context.Context, m Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	it, ok := b.items[m.ID]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "no item with id %q", m.ID)
	}
	if m.Title != nil {
		it.Title = *m.Title
	}
	if m.X != nil {
		it.X = *m.X
	}
	if m.Y != nil {
		it.Y = *m.Y
	}
	if m.W != nil {
		it.W = *m.W
	}
	if m.H != nil {
		it.H = *m.H
	}
	for k, v := range m.Meta {
		if it.Meta == nil {
			it.Meta = make(map[string]string)
		}
		it.Meta[k] = v
	}
	return nil
}

// CreateImage adds a new image widget with a generated UUID.
func (b *MemoryBoard) CreateImage(ctx context.Context, req CreateImageRequest) (*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	it := &Item{
		ID:     uuid.NewString(),
		Title:  req.Title,
		X:      req.X,
		Y:      req.Y,
		W:      req.W,
		H:      req.H,
		Source: req.Source,
		Meta:   req.Meta,
	}
	b.mu.Lock()
	b.items[it.ID] = it
	b.mu.Unlock()
	return it.Clone(), nil
}

// Notify records the notification.
func (b *MemoryBoard) Notify(ctx context.Context, level NotifyLevel, message string) {
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()
	b.notifications = append(b.notifications, Notification{Level: level, Message: message})
}

// Notifications returns all recorded notifications.
func (b *MemoryBoard) Notifications() []Notification {
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()
	out := make([]Notification, len(b.notifications))
	copy(out, b.notifications)
	return out
}

// SelectAll marks every item on the board as selected. Test helper.
func (b *MemoryBoard) SelectAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, it := range b.items {
		it.Selected = true
	}
}

// Ensure MemoryBoard implements Board.
var _ Board = (*MemoryBoard)(nil)
