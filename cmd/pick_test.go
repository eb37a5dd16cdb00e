package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"

	"github.com/kamal-hamza/collage-cli/internal/core/domain"
	"github.com/kamal-hamza/collage-cli/internal/core/ports/mocks"
	"github.com/kamal-hamza/collage-cli/internal/core/services"
	"github.com/kamal-hamza/collage-cli/internal/eventbus"
)

// newPickFixture returns a selection over eight landscape photos p1..p8
func newPickFixture(t *testing.T) (*mocks.MockCatalog, *services.SelectionService, []pickEntry) {
	t.Helper()

	catalog := mocks.NewMockCatalog()
	var entries []pickEntry
	for i := 1; i <= 8; i++ {
		p := catalog.Add(fmt.Sprintf("p%d", i), 400, 300)
		entries = append(entries, pickEntry{photo: p, width: 400, height: 300})
	}

	bus := eventbus.New(eventbus.WithReplay(domain.EventSelectionChanged))
	t.Cleanup(bus.Close)

	opts := services.DefaultSelectionOptions()
	opts.Debounce = 5 * time.Millisecond
	selection := services.NewSelectionService(catalog, bus, opts)
	t.Cleanup(selection.Close)

	return catalog, selection, entries
}

// scriptedFinder answers finder rounds from a fixed list and records
// how many photos each round saw
type scriptedFinder struct {
	answers []int
	seen    []int
	err     error
}

func (f *scriptedFinder) find(entries []pickEntry, photos domain.Selection, opts services.SelectionOptions) (int, error) {
	f.seen = append(f.seen, len(photos))
	if len(f.seen) > len(f.answers) {
		if f.err != nil {
			return 0, f.err
		}
		return 0, fuzzyfinder.ErrAbort
	}
	return f.answers[len(f.seen)-1], nil
}

func TestPickInteractiveStopsWhenFull(t *testing.T) {
	_, selection, entries := newPickFixture(t)
	finder := &scriptedFinder{answers: []int{0, 1, 2, 3, 4, 5, 6, 7}}

	result, err := pickInteractive(context.Background(), selection, entries, finder.find)
	if err != nil {
		t.Fatalf("pickInteractive failed: %v", err)
	}

	if len(finder.seen) != 6 {
		t.Errorf("Expected 6 finder rounds, got %d", len(finder.seen))
	}
	for i, n := range finder.seen {
		if n != i {
			t.Errorf("round %d: expected %d settled photos, got %d", i, i, n)
		}
	}

	if got := strings.Join(result.photos.IDs(), ","); got != "p1,p2,p3,p4,p5,p6" {
		t.Errorf("Expected p1..p6, got %s", got)
	}
	if result.photos.CanAdd(6) {
		t.Error("Expected the selection to be full")
	}
	if result.taps != 6 || result.accepted != 6 {
		t.Errorf("Expected 6 taps and 6 accepted, got %d and %d", result.taps, result.accepted)
	}
}

func TestPickInteractiveAbort(t *testing.T) {
	_, selection, entries := newPickFixture(t)
	finder := &scriptedFinder{answers: []int{0, 0, 1}}

	result, err := pickInteractive(context.Background(), selection, entries, finder.find)
	if err != nil {
		t.Fatalf("pickInteractive failed: %v", err)
	}

	if got := strings.Join(result.photos.IDs(), ","); got != "p1,p2" {
		t.Errorf("Expected p1,p2, got %s", got)
	}
	if result.taps != 3 || result.accepted != 2 {
		t.Errorf("Expected 3 taps and 2 accepted, got %d and %d", result.taps, result.accepted)
	}
	if result.limitHits != 0 {
		t.Errorf("Expected no limit hits, got %d", result.limitHits)
	}
}

func TestPickInteractiveFinderError(t *testing.T) {
	_, selection, entries := newPickFixture(t)
	finder := &scriptedFinder{err: errors.New("no tty")}

	_, err := pickInteractive(context.Background(), selection, entries, finder.find)
	if err == nil || !strings.Contains(err.Error(), "picker failed") {
		t.Errorf("Expected picker failure, got %v", err)
	}
}

func TestPickByIDReportsLimit(t *testing.T) {
	catalog, selection, _ := newPickFixture(t)

	result, err := pickByID(context.Background(), catalog, selection,
		[]string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8"})
	if err != nil {
		t.Fatalf("pickByID failed: %v", err)
	}

	if len(result.photos) != 6 {
		t.Errorf("Expected 6 photos, got %d", len(result.photos))
	}
	if result.limitHits != 2 {
		t.Errorf("Expected 2 limit hits, got %d", result.limitHits)
	}
	if result.taps != 8 || result.accepted != 6 {
		t.Errorf("Expected 8 taps and 6 accepted, got %d and %d", result.taps, result.accepted)
	}
}

func TestPickByIDKeepsOrderAndSkipsDuplicates(t *testing.T) {
	catalog, selection, _ := newPickFixture(t)
	catalog.Add("tall", 300, 400)

	result, err := pickByID(context.Background(), catalog, selection, []string{"p3", "tall", "p1", "p3"})
	if err != nil {
		t.Fatalf("pickByID failed: %v", err)
	}

	if got := strings.Join(result.photos.IDs(), ","); got != "p3,p1" {
		t.Errorf("Expected p3,p1, got %s", got)
	}
	if result.limitHits != 0 {
		t.Errorf("Expected no limit hits, got %d", result.limitHits)
	}
}

func TestPickByIDUnknownPhoto(t *testing.T) {
	catalog, selection, _ := newPickFixture(t)

	_, err := pickByID(context.Background(), catalog, selection, []string{"p1", "missing"})
	if err == nil || !strings.Contains(err.Error(), `unknown photo "missing"`) {
		t.Errorf("Expected unknown photo error, got %v", err)
	}
}

func TestPickPrompt(t *testing.T) {
	photos := domain.Selection{{ID: "a"}, {ID: "b"}}
	if got := pickPrompt(photos, 6); got != "2 photos (2/6) > " {
		t.Errorf("Unexpected prompt %q", got)
	}
}
