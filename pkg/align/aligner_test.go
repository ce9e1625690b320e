package align

import (
	"context"
	"math"
	"testing"

	"github.com/gridsnap/gridsnap/pkg/board"
	"github.com/gridsnap/gridsnap/pkg/errors"
)

func seededBoard() *board.MemoryBoard {
	mem := board.NewMemoryBoard()
	mem.Put(&board.Item{ID: "i1", Title: "b_2", Selected: true, X: 300, Y: 100, W: 100, H: 80})
	mem.Put(&board.Item{ID: "i2", Title: "a_1", Selected: true, X: 100, Y: 200, W: 100, H: 80})
	mem.Put(&board.Item{ID: "i3", Title: "c", Selected: true, X: 200, Y: 300, W: 100, H: 80})
	mem.Put(&board.Item{ID: "ignored", Title: "z_9", X: 999, Y: 999, W: 10, H: 10})
	return mem
}

func defaultOpts() Options {
	return Options{
		Strategy: StrategyNumber,
		Grid:     Config{Columns: 3, HGap: 10, VGap: 10},
	}
}

func TestRunEndToEnd(t *testing.T) {
	mem := seededBoard()
	a := NewAligner(mem, nil, testLogger())

	if err := a.Run(context.Background(), defaultOpts()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// a_1, b_2, c left to right on one row.
	i1, _ := mem.Get("i1")
	i2, _ := mem.Get("i2")
	i3, _ := mem.Get("i3")
	if !(i2.X < i1.X && i1.X < i3.X) {
		t.Errorf("grid order wrong: a_1 at %.0f, b_2 at %.0f, c at %.0f", i2.X, i1.X, i3.X)
	}
	if i1.Y != i2.Y || i2.Y != i3.Y {
		t.Errorf("single row expected, got y = %.0f, %.0f, %.0f", i1.Y, i2.Y, i3.Y)
	}

	// Default anchor keeps the top-left corner of the original bounds.
	if left := i2.X - i2.W/2; math.Abs(left-50) > 1e-9 {
		t.Errorf("left edge = %.1f, want 50", left)
	}
	if top := i1.Y - i1.H/2; math.Abs(top-60) > 1e-9 {
		t.Errorf("top edge = %.1f, want 60", top)
	}

	// Unselected items are untouched.
	ign, _ := mem.Get("ignored")
	if ign.X != 999 || ign.Y != 999 {
		t.Errorf("unselected item moved: %+v", ign)
	}

	notes := mem.Notifications()
	if len(notes) != 1 || notes[0].Level != board.NotifyInfo {
		t.Errorf("notifications = %+v", notes)
	}
}

func TestRunEmptySelection(t *testing.T) {
	mem := board.NewMemoryBoard()
	mem.Put(&board.Item{ID: "a", Title: "x_1"}) // not selected
	a := NewAligner(mem, nil, testLogger())

	if err := a.Run(context.Background(), defaultOpts()); err != nil {
		t.Fatalf("empty selection should not error: %v", err)
	}
	notes := mem.Notifications()
	if len(notes) != 1 || notes[0].Level != board.NotifyInfo {
		t.Errorf("expected an informational notification, got %+v", notes)
	}
}

func TestRunStrictLeavesBoardUntouched(t *testing.T) {
	mem := seededBoard() // "c" has no number
	before := snapshot(mem)

	a := NewAligner(mem, nil, testLogger())
	opts := defaultOpts()
	opts.Strict = true

	err := a.Run(context.Background(), opts)
	var mn *errors.MissingNumberError
	if !errors.As(err, &mn) {
		t.Fatalf("Run strict = %v, want MissingNumberError", err)
	}

	after := snapshot(mem)
	for id, was := range before {
		if after[id] != was {
			t.Errorf("item %s changed despite strict failure: %+v -> %+v", id, was, after[id])
		}
	}
}

type itemState struct {
	title      string
	x, y, w, h float64
}

func snapshot(mem *board.MemoryBoard) map[string]itemState {
	out := make(map[string]itemState)
	for _, it := range mem.Items() {
		out[it.ID] = itemState{it.Title, it.X, it.Y, it.W, it.H}
	}
	return out
}

func TestRunInvalidColumns(t *testing.T) {
	mem := seededBoard()
	a := NewAligner(mem, nil, testLogger())
	opts := defaultOpts()
	opts.Grid.Columns = 0

	err := a.Run(context.Background(), opts)
	if errors.GetCode(err) != errors.ErrCodeInvalidColumns {
		t.Fatalf("code = %v, want INVALID_COLUMNS", errors.GetCode(err))
	}
	// Validation failures happen before any read or write.
	it, _ := mem.Get("i1")
	if it.X != 300 {
		t.Error("board touched on validation failure")
	}
}

func TestRunBusy(t *testing.T) {
	a := NewAligner(board.NewMemoryBoard(), nil, testLogger())
	a.inFlight.Store(true)

	err := a.Run(context.Background(), defaultOpts())
	if errors.GetCode(err) != errors.ErrCodeBusy {
		t.Fatalf("code = %v, want BUSY", errors.GetCode(err))
	}

	a.inFlight.Store(false)
	// The guard resets after a completed run.
	mem := seededBoard()
	a.Board = mem
	if err := a.Run(context.Background(), defaultOpts()); err != nil {
		t.Fatalf("Run after release: %v", err)
	}
}

func TestRunNumbersUntitled(t *testing.T) {
	mem := board.NewMemoryBoard()
	mem.Put(&board.Item{ID: "u1", Selected: true, X: 100, Y: 0, W: 50, H: 50})
	mem.Put(&board.Item{ID: "u2", Selected: true, X: 0, Y: 0, W: 50, H: 50})
	a := NewAligner(mem, nil, testLogger())

	if err := a.Run(context.Background(), defaultOpts()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	u1, _ := mem.Get("u1")
	u2, _ := mem.Get("u2")
	if u2.Title != "1" || u1.Title != "2" {
		t.Errorf("titles after numbering = %q, %q", u2.Title, u1.Title)
	}
}

func TestRunMatchWidthCommitsResize(t *testing.T) {
	mem := board.NewMemoryBoard()
	mem.Put(&board.Item{ID: "big", Title: "a_1", Selected: true, X: 0, Y: 0, W: 200, H: 100})
	mem.Put(&board.Item{ID: "small", Title: "a_2", Selected: true, X: 300, Y: 0, W: 100, H: 100})
	a := NewAligner(mem, nil, testLogger())

	opts := defaultOpts()
	opts.Grid.SizeMode = SizeMatchWidth
	if err := a.Run(context.Background(), opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	big, _ := mem.Get("big")
	if big.W != 100 || big.H != 50 {
		t.Errorf("resize not committed: %+v", big)
	}
}

func TestRunItemsAlignsExplicitList(t *testing.T) {
	mem := board.NewMemoryBoard()
	// Neither item is selected; RunItems must align them anyway.
	mem.Put(&board.Item{ID: "a", Title: "x_2", X: 300, Y: 0, W: 100, H: 80})
	mem.Put(&board.Item{ID: "b", Title: "x_1", X: 0, Y: 0, W: 100, H: 80})
	a := NewAligner(mem, nil, testLogger())

	items, _ := mem.Selection(context.Background())
	if len(items) != 0 {
		t.Fatal("precondition: nothing selected")
	}
	ia, _ := mem.Get("a")
	ib, _ := mem.Get("b")
	if err := a.RunItems(context.Background(), []*board.Item{ia.Clone(), ib.Clone()}, defaultOpts()); err != nil {
		t.Fatalf("RunItems: %v", err)
	}

	ga, _ := mem.Get("a")
	gb, _ := mem.Get("b")
	if !(gb.X < ga.X) {
		t.Errorf("x_1 should land left of x_2: %.0f vs %.0f", gb.X, ga.X)
	}
}

func TestBuildPlanDoesNotWrite(t *testing.T) {
	mem := seededBoard()
	before := snapshot(mem)
	a := NewAligner(mem, nil, testLogger())

	plan, err := a.BuildPlan(context.Background(), defaultOpts())
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if plan.Empty() || len(plan.Placements) != 3 {
		t.Fatalf("plan = %+v", plan)
	}
	after := snapshot(mem)
	for id := range before {
		if before[id] != after[id] {
			t.Errorf("BuildPlan wrote to the board: item %s", id)
		}
	}
}
