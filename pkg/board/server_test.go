package board

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
)

// newTestServer wires a MemoryBoard behind the HTTP handler and returns a
// Client speaking to it, exercising the full client/server round trip.
func newTestServer(t *testing.T) (*MemoryBoard, *Client) {
	t.Helper()
	mem := NewMemoryBoard()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	srv := httptest.NewServer(NewHandler(mem, logger))
	t.Cleanup(srv.Close)
	return mem, NewClient(srv.URL)
}

func TestClientServerSelection(t *testing.T) {
	ctx := context.Background()
	mem, client := newTestServer(t)
	mem.Put(&Item{ID: "a", Title: "alps_1", Selected: true, X: 10, Y: 20, W: 100, H: 80})
	mem.Put(&Item{ID: "b", Title: "beach"})

	sel, err := client.Selection(ctx)
	if err != nil {
		t.Fatalf("Selection: %v", err)
	}
	if len(sel) != 1 || sel[0].ID != "a" {
		t.Fatalf("Selection = %+v, want the single selected item", sel)
	}
	if sel[0].W != 100 || sel[0].H != 80 {
		t.Errorf("geometry lost in transit: %+v", sel[0])
	}
}

func TestClientServerApply(t *testing.T) {
	ctx := context.Background()
	mem, client := newTestServer(t)
	mem.Put(&Item{ID: "a", X: 0, Y: 0})

	x, y := 42.0, 7.5
	if err := client.Apply(ctx, Mutation{ID: "a", X: &x, Y: &y}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got, _ := mem.Get("a")
	if got.X != 42 || got.Y != 7.5 {
		t.Errorf("item after remote mutation = %+v", got)
	}
}

func TestClientServerApplyUnknownID(t *testing.T) {
	ctx := context.Background()
	_, client := newTestServer(t)

	x := 1.0
	err := client.Apply(ctx, Mutation{ID: "ghost", X: &x})
	if err == nil {
		t.Fatal("Apply to unknown item should fail")
	}
}

func TestClientServerCreateImage(t *testing.T) {
	ctx := context.Background()
	mem, client := newTestServer(t)

	it, err := client.CreateImage(ctx, CreateImageRequest{
		Title:  "import_3.jpg",
		X:      1, Y: 2, W: 300, H: 200,
		Source: FileSource("/imports/import_3.jpg"),
	})
	if err != nil {
		t.Fatalf("CreateImage: %v", err)
	}
	if it.ID == "" {
		t.Error("remote CreateImage should return an assigned ID")
	}
	got, ok := mem.Get(it.ID)
	if !ok {
		t.Fatal("created item missing from backing store")
	}
	if got.Source.Kind != SourceFile || got.Source.Path != "/imports/import_3.jpg" {
		t.Errorf("source lost in transit: %+v", got.Source)
	}
}

func TestClientServerNotify(t *testing.T) {
	ctx := context.Background()
	mem, client := newTestServer(t)

	client.Notify(ctx, NotifyInfo, "arranged 4 images")

	notes := mem.Notifications()
	if len(notes) != 1 || notes[0].Level != NotifyInfo || notes[0].Message != "arranged 4 images" {
		t.Errorf("Notifications = %+v", notes)
	}
}

func TestClientHealth(t *testing.T) {
	ctx := context.Background()
	_, client := newTestServer(t)
	if err := client.Health(ctx); err != nil {
		t.Errorf("Health: %v", err)
	}
}
