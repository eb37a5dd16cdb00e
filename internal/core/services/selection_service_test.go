package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamal-hamza/collage-cli/internal/core/domain"
	"github.com/kamal-hamza/collage-cli/internal/core/ports/mocks"
	"github.com/kamal-hamza/collage-cli/internal/eventbus"
)

const testDebounce = 20 * time.Millisecond

type pipelineFixture struct {
	catalog *mocks.MockCatalog
	bus     eventbus.EventBus
	svc     *SelectionService
	events  *eventRecorder
	photos  []domain.Photo // landscape photos "p1".."p8"
}

func newPipeline(t *testing.T, debounce time.Duration) *pipelineFixture {
	t.Helper()

	catalog := mocks.NewMockCatalog()
	var photos []domain.Photo
	for i := 1; i <= 8; i++ {
		photos = append(photos, catalog.Add(fmt.Sprintf("p%d", i), 400, 300))
	}

	bus := eventbus.New(eventbus.WithReplay(domain.EventSelectionChanged))
	t.Cleanup(bus.Close)

	events := recordEvents(t, bus,
		domain.EventSelectionChanged,
		domain.EventThumbnailStatus,
		domain.EventCollageStatus,
		domain.EventPickerOpened,
		domain.EventPickerClosed,
	)

	opts := DefaultSelectionOptions()
	opts.Debounce = debounce
	svc := NewSelectionService(catalog, bus, opts)
	t.Cleanup(svc.Close)

	// Initial empty snapshot
	events.waitCount(t, domain.EventSelectionChanged, 1)

	return &pipelineFixture{catalog: catalog, bus: bus, svc: svc, events: events, photos: photos}
}

// tapSettled taps and waits until the debounce window has passed
func (f *pipelineFixture) tapSettled(session *PickerSession, photo domain.Photo) {
	session.Tap(photo)
	time.Sleep(f.svc.Options().Debounce * 4)
}

func TestSelectionService_InitialSnapshotIsEmpty(t *testing.T) {
	f := newPipeline(t, testDebounce)

	sels := f.events.selections()
	require.Len(t, sels, 1)
	assert.Empty(t, sels[0])
	assert.Empty(t, f.svc.Snapshot())
}

func TestSelectionService_AcceptsInOrderUpToCapacity(t *testing.T) {
	for _, n := range []int{1, 3, 6, 8} {
		t.Run(fmt.Sprintf("%d taps", n), func(t *testing.T) {
			f := newPipeline(t, testDebounce)
			session := f.svc.OpenPicker()

			for _, p := range f.photos[:n] {
				f.tapSettled(session, p)
			}

			want := n
			if want > domain.DefaultMaxPhotos {
				want = domain.DefaultMaxPhotos
			}
			var wantIDs []string
			for _, p := range f.photos[:want] {
				wantIDs = append(wantIDs, p.ID)
			}
			assert.Equal(t, wantIDs, f.svc.Snapshot().IDs())
		})
	}
}

func TestSelectionService_OneRepublishPerAcceptedEvent(t *testing.T) {
	f := newPipeline(t, testDebounce)
	session := f.svc.OpenPicker()

	for _, p := range f.photos[:4] {
		f.tapSettled(session, p)
	}
	f.svc.Clear()

	f.events.waitCount(t, domain.EventSelectionChanged, 6)
	time.Sleep(4 * testDebounce)

	sels := f.events.selections()
	require.Len(t, sels, 6, "initial + 4 appends + clear")
	for i := 1; i <= 4; i++ {
		assert.Len(t, sels[i], i)
	}
	assert.Empty(t, sels[5])
}

func TestSelectionService_CapacityGateIsSticky(t *testing.T) {
	f := newPipeline(t, testDebounce)
	session := f.svc.OpenPicker()

	for _, p := range f.photos[:6] {
		f.tapSettled(session, p)
	}
	require.Equal(t, 6, f.svc.Snapshot().Len())

	// Valid, distinct, landscape: still rejected
	f.tapSettled(session, f.photos[6])
	f.tapSettled(session, f.photos[7])

	assert.Equal(t, 6, f.svc.Snapshot().Len())
	taps, accepted := session.Stats()
	assert.Equal(t, 8, taps)
	assert.Equal(t, 6, accepted)
}

func TestSelectionService_DuplicateNeverAppendedTwice(t *testing.T) {
	f := newPipeline(t, testDebounce)
	session := f.svc.OpenPicker()

	p1, p2 := f.photos[0], f.photos[1]
	f.tapSettled(session, p1)
	f.tapSettled(session, p1)
	f.tapSettled(session, p2)
	f.tapSettled(session, p1)

	assert.Equal(t, []string{"p1", "p2"}, f.svc.Snapshot().IDs())
}

func TestSelectionService_RejectsPortraitAndSquare(t *testing.T) {
	f := newPipeline(t, testDebounce)
	portrait := f.catalog.Add("tall", 300, 400)
	square := f.catalog.Add("square", 300, 300)
	session := f.svc.OpenPicker()

	f.tapSettled(session, portrait)
	f.tapSettled(session, square)
	f.tapSettled(session, f.photos[0])
	f.tapSettled(session, portrait)

	assert.Equal(t, []string{"p1"}, f.svc.Snapshot().IDs())
}

func TestSelectionService_PortraitAllowedWhenPolicyOff(t *testing.T) {
	catalog := mocks.NewMockCatalog()
	portrait := catalog.Add("tall", 300, 400)
	bus := eventbus.New()
	defer bus.Close()

	svc := NewSelectionService(catalog, bus, SelectionOptions{Debounce: testDebounce})
	defer svc.Close()

	session := svc.OpenPicker()
	session.Tap(portrait)

	require.Eventually(t, func() bool { return svc.Snapshot().Len() == 1 }, waitFor, tick)
}

func TestSelectionService_UnknownPhotoIsSkipped(t *testing.T) {
	f := newPipeline(t, testDebounce)
	session := f.svc.OpenPicker()

	f.tapSettled(session, domain.Photo{ID: "ghost"})

	assert.Empty(t, f.svc.Snapshot())
}

func TestSelectionService_DebounceKeepsLastTap(t *testing.T) {
	f := newPipeline(t, 100*time.Millisecond)
	session := f.svc.OpenPicker()

	session.Tap(f.photos[0])
	session.Tap(f.photos[1])

	// Nothing is applied inside the window
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, f.svc.Snapshot())

	require.Eventually(t, func() bool { return f.svc.Snapshot().Len() == 1 }, waitFor, tick)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, []string{"p2"}, f.svc.Snapshot().IDs())
}

func TestSelectionService_DebounceTimerRestarts(t *testing.T) {
	f := newPipeline(t, 80*time.Millisecond)
	session := f.svc.OpenPicker()

	session.Tap(f.photos[0])
	time.Sleep(50 * time.Millisecond)
	session.Tap(f.photos[1])
	time.Sleep(50 * time.Millisecond)

	// 100ms after the first tap, but only 50ms after the second
	assert.Empty(t, f.svc.Snapshot())

	require.Eventually(t, func() bool { return f.svc.Snapshot().Len() == 1 }, waitFor, tick)
	assert.Equal(t, []string{"p2"}, f.svc.Snapshot().IDs())
}

func TestSelectionService_ClearRepublishesAndReopensGate(t *testing.T) {
	f := newPipeline(t, testDebounce)
	session := f.svc.OpenPicker()

	for _, p := range f.photos[:6] {
		f.tapSettled(session, p)
	}
	f.tapSettled(session, f.photos[6])
	require.Equal(t, 6, f.svc.Snapshot().Len())

	f.svc.Clear()
	f.events.waitCount(t, domain.EventSelectionChanged, 8)
	sels := f.events.selections()
	assert.Empty(t, sels[len(sels)-1])

	f.tapSettled(session, f.photos[6])
	assert.Equal(t, []string{"p7"}, f.svc.Snapshot().IDs())
}

func TestSelectionService_ClearOnEmptyStillRepublishes(t *testing.T) {
	f := newPipeline(t, testDebounce)

	f.svc.Clear()
	f.svc.Clear()

	f.events.waitCount(t, domain.EventSelectionChanged, 3)
	for _, sel := range f.events.selections() {
		assert.Empty(t, sel)
	}
}

func TestSelectionService_LimitReachedScenario(t *testing.T) {
	f := newPipeline(t, testDebounce)
	session := f.svc.OpenPicker()

	for i, p := range f.photos[:6] {
		f.tapSettled(session, p)
		sel := f.svc.Snapshot()
		assert.Equal(t, (i+1)%2 == 0, sel.CanSave(), "after %d photos", i+1)
	}
	assert.Zero(t, f.events.count(domain.EventCollageStatus))

	f.tapSettled(session, f.photos[6])
	f.events.waitCount(t, domain.EventCollageStatus, 1)

	status := f.events.ofType(domain.EventCollageStatus)[0].(domain.CollageStatusEvent)
	assert.Equal(t, domain.CollageLimitReached, status.Status)
	assert.Equal(t, session.ID(), status.SessionID)
	assert.Equal(t, []string{"p1", "p2", "p3", "p4", "p5", "p6"}, f.svc.Snapshot().IDs())
}

func TestSelectionService_LimitReachedIgnoresOtherGates(t *testing.T) {
	f := newPipeline(t, testDebounce)
	portrait := f.catalog.Add("tall", 300, 400)
	session := f.svc.OpenPicker()

	for _, p := range f.photos[:6] {
		f.tapSettled(session, p)
	}

	session.Tap(portrait)    // wrong orientation
	session.Tap(f.photos[0]) // duplicate
	session.Tap(f.photos[7]) // valid

	f.events.waitCount(t, domain.EventCollageStatus, 3)
	time.Sleep(4 * testDebounce)
	assert.Equal(t, 3, f.events.count(domain.EventCollageStatus))
}

func TestSelectionService_ThumbnailReadyOncePerSession(t *testing.T) {
	f := newPipeline(t, testDebounce)

	session := f.svc.OpenPicker()
	session.Close()
	session.Close()

	f.events.waitCount(t, domain.EventThumbnailStatus, 1)
	time.Sleep(4 * testDebounce)
	assert.Equal(t, 1, f.events.count(domain.EventThumbnailStatus))

	ready := f.events.ofType(domain.EventThumbnailStatus)[0].(domain.ThumbnailStatusEvent)
	assert.Equal(t, domain.ThumbnailReady, ready.Status)

	closed := f.events.ofType(domain.EventPickerClosed)
	require.Len(t, closed, 1)
	assert.Equal(t, 0, closed[0].(domain.PickerClosedEvent).Taps)

	// A second session fires again
	f.svc.OpenPicker().Close()
	f.events.waitCount(t, domain.EventThumbnailStatus, 2)
}

func TestSelectionService_CloseFlushesPendingBeforeReady(t *testing.T) {
	f := newPipeline(t, time.Second)
	session := f.svc.OpenPicker()

	session.Tap(f.photos[0])
	session.Tap(f.photos[1])
	session.Close()

	f.events.waitCount(t, domain.EventThumbnailStatus, 1)
	assert.Equal(t, []string{"p2"}, f.svc.Snapshot().IDs())

	var order []domain.EventType
	for _, e := range f.events.all() {
		order = append(order, e.Type())
	}
	assert.Equal(t, []domain.EventType{
		domain.EventSelectionChanged, // initial
		domain.EventPickerOpened,
		domain.EventSelectionChanged,
		domain.EventPickerClosed,
		domain.EventThumbnailStatus,
	}, order)

	closed := f.events.ofType(domain.EventPickerClosed)[0].(domain.PickerClosedEvent)
	assert.Equal(t, 2, closed.Taps)
	assert.Equal(t, 1, closed.Accepted)
}

func TestSelectionService_TapsAfterSessionCloseIgnored(t *testing.T) {
	f := newPipeline(t, testDebounce)
	session := f.svc.OpenPicker()
	session.Close()

	f.tapSettled(session, f.photos[0])

	assert.Empty(t, f.svc.Snapshot())
}

func TestSelectionService_TeardownCancelsPendingTimers(t *testing.T) {
	f := newPipeline(t, 50*time.Millisecond)
	session := f.svc.OpenPicker()

	session.Tap(f.photos[0])
	f.svc.Close()

	time.Sleep(150 * time.Millisecond)
	session.Tap(f.photos[1])
	session.Close()
	f.svc.Clear()
	time.Sleep(150 * time.Millisecond)

	assert.Len(t, f.events.selections(), 1, "only the initial snapshot")
	assert.Zero(t, f.events.count(domain.EventThumbnailStatus))
	assert.Zero(t, f.events.count(domain.EventPickerClosed))
}

func TestSelectionService_OpenPickerAfterTeardown(t *testing.T) {
	f := newPipeline(t, testDebounce)
	f.svc.Close()

	session := f.svc.OpenPicker()
	f.tapSettled(session, f.photos[0])
	session.Close()

	assert.Zero(t, f.events.count(domain.EventPickerOpened))
	assert.Empty(t, f.svc.Snapshot())
}

func TestSelectionService_LateSubscriberGetsLastSnapshot(t *testing.T) {
	f := newPipeline(t, testDebounce)
	session := f.svc.OpenPicker()
	f.tapSettled(session, f.photos[0])
	f.tapSettled(session, f.photos[1])

	late := recordEvents(t, f.bus, domain.EventSelectionChanged)
	late.waitCount(t, domain.EventSelectionChanged, 1)

	assert.Equal(t, []string{"p1", "p2"}, late.selections()[0].IDs())
}

func TestSelectionService_SnapshotIsACopy(t *testing.T) {
	f := newPipeline(t, testDebounce)
	session := f.svc.OpenPicker()
	f.tapSettled(session, f.photos[0])

	snap := f.svc.Snapshot()
	snap[0] = domain.Photo{ID: "mutated"}

	assert.Equal(t, []string{"p1"}, f.svc.Snapshot().IDs())
}

func TestPickerSession_SettleWaitsForDebounce(t *testing.T) {
	f := newPipeline(t, 50*time.Millisecond)
	session := f.svc.OpenPicker()

	session.Tap(f.photos[0])
	assert.Empty(t, f.svc.Snapshot(), "still inside the debounce window")

	require.NoError(t, session.Settle(context.Background()))
	assert.Equal(t, []string{"p1"}, f.svc.Snapshot().IDs())

	// Nothing pending, returns at once
	require.NoError(t, session.Settle(context.Background()))
}

func TestPickerSession_SettleAfterRejectedTap(t *testing.T) {
	f := newPipeline(t, time.Hour)
	tall := f.catalog.Add("tall", 300, 400)
	session := f.svc.OpenPicker()

	session.Tap(tall)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, session.Settle(ctx))
	assert.Empty(t, f.svc.Snapshot())
}

func TestPickerSession_SettleReleasedByTeardown(t *testing.T) {
	f := newPipeline(t, time.Hour)
	session := f.svc.OpenPicker()
	session.Tap(f.photos[0])

	f.svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, session.Settle(ctx))
	assert.Empty(t, f.svc.Snapshot())
}

func TestPickerSession_SettleHonorsContext(t *testing.T) {
	f := newPipeline(t, time.Hour)
	session := f.svc.OpenPicker()
	session.Tap(f.photos[0])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, session.Settle(ctx), context.Canceled)
}
