package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/sleepr/internal/constants"
	"github.com/julianstephens/sleepr/internal/storage"
)

type recordingSender struct {
	mu          sync.Mutex
	sent        []Content
	fail        bool
	unavailable bool
}

func (s *recordingSender) Send(_ context.Context, c Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("tray unreachable")
	}
	s.sent = append(s.sent, c)
	return nil
}

func (s *recordingSender) Available(context.Context) error {
	if s.unavailable {
		return ErrSenderUnavailable
	}
	return nil
}

type mapClaimer struct {
	claimed map[string]bool
}

func (c *mapClaimer) key(kind string, slot time.Time) string {
	return kind + "|" + slot.Format(constants.DateFormat)
}

func (c *mapClaimer) Claim(kind string, slot time.Time) bool {
	k := c.key(kind, slot)
	if c.claimed[k] {
		return false
	}
	c.claimed[k] = true
	return true
}

func (c *mapClaimer) Release(kind string, slot time.Time) {
	delete(c.claimed, c.key(kind, slot))
}

var evening = time.Date(2024, 6, 3, 20, 30, 0, 0, time.UTC)

func setupOutbox(t *testing.T, opts ...OutboxOption) (*Outbox, *recordingSender, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	sender := &recordingSender{}
	opts = append([]OutboxOption{WithClock(func() time.Time { return evening })}, opts...)
	return NewOutbox(store, sender, opts...), sender, store
}

func TestOutbox_RequestPermission(t *testing.T) {
	o, sender, _ := setupOutbox(t)
	ctx := context.Background()

	if p, _ := o.RequestPermission(ctx); p != PermissionDenied {
		t.Errorf("expected denied before opt-in, got %s", p)
	}

	if err := o.SetOptIn(true); err != nil {
		t.Fatal(err)
	}
	if p, _ := o.RequestPermission(ctx); p != PermissionGranted {
		t.Errorf("expected granted after opt-in, got %s", p)
	}

	sender.unavailable = true
	if p, _ := o.RequestPermission(ctx); p != PermissionDenied {
		t.Errorf("expected denied with unavailable sender, got %s", p)
	}

	sender.unavailable = false
	o.SetOptIn(false)
	if p, _ := o.RequestPermission(ctx); p != PermissionDenied {
		t.Errorf("expected denied after opt-out, got %s", p)
	}
}

func TestOutbox_ScheduleAndCancelAll(t *testing.T) {
	o, _, store := setupOutbox(t)
	ctx := context.Background()

	id1, err := o.Schedule(ctx, Content{Kind: "blueLight", Title: "a"}, Daily(21, 0))
	if err != nil {
		t.Fatalf("schedule daily: %v", err)
	}
	id2, err := o.Schedule(ctx, Content{Kind: "roomTemp", Title: "b"}, At(evening.Add(-time.Hour)))
	if err != nil {
		t.Fatalf("schedule once: %v", err)
	}
	if id1 == "" || id1 == id2 {
		t.Errorf("expected distinct ids, got %q and %q", id1, id2)
	}

	pending, err := o.Pending()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	// Sorted by next fire: the one-shot at 19:30 first, daily 21:00 today second.
	if pending[0].ID != id2 || !pending[1].NextFire.Equal(time.Date(2024, 6, 3, 21, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected pending order or fire time: %+v", pending)
	}

	if _, err := o.Schedule(ctx, Content{}, Trigger{}); err == nil {
		t.Error("expected error for one-shot without a time")
	}

	if err := o.CancelAll(ctx); err != nil {
		t.Fatalf("cancel all: %v", err)
	}
	if err := o.CancelAll(ctx); err != nil {
		t.Fatalf("cancel all must be idempotent: %v", err)
	}
	if _, err := store.Get(constants.KeyScheduledNotifications); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("outbox should be empty, got %v", err)
	}
}

func TestOutbox_DailyPastTimeRollsToTomorrow(t *testing.T) {
	o, _, _ := setupOutbox(t)

	if _, err := o.Schedule(context.Background(), Content{Kind: "caffeine"}, Daily(16, 0)); err != nil {
		t.Fatal(err)
	}
	pending, _ := o.Pending()
	want := time.Date(2024, 6, 4, 16, 0, 0, 0, time.UTC)
	if !pending[0].NextFire.Equal(want) {
		t.Errorf("expected %v, got %v", want, pending[0].NextFire)
	}
}

func TestOutbox_Dispatch(t *testing.T) {
	o, sender, _ := setupOutbox(t)
	ctx := context.Background()

	o.Schedule(ctx, Content{Kind: "blueLight", Title: "blue"}, Daily(21, 0))
	o.Schedule(ctx, Content{Kind: "roomTemp", Title: "room"}, At(time.Date(2024, 6, 3, 21, 45, 0, 0, time.UTC)))

	var delivered []Delivered
	o.OnDelivered(func(d Delivered) { delivered = append(delivered, d) })

	// Nothing due yet.
	n, err := o.Dispatch(ctx, time.Date(2024, 6, 3, 20, 59, 0, 0, time.UTC))
	if err != nil || n != 0 {
		t.Fatalf("expected nothing delivered, got %d (err %v)", n, err)
	}

	n, err = o.Dispatch(ctx, time.Date(2024, 6, 3, 21, 0, 20, 0, time.UTC))
	if err != nil || n != 1 {
		t.Fatalf("expected one delivery, got %d (err %v)", n, err)
	}
	if sender.sent[0].Title != "blue" {
		t.Errorf("unexpected delivery %+v", sender.sent[0])
	}
	if len(delivered) != 1 || delivered[0].Content.Kind != "blueLight" {
		t.Fatalf("listener not called: %+v", delivered)
	}

	n, _ = o.Dispatch(ctx, time.Date(2024, 6, 3, 21, 46, 0, 0, time.UTC))
	if n != 1 || sender.sent[1].Title != "room" {
		t.Fatalf("expected one-shot delivery, got %d", n)
	}

	pending, _ := o.Pending()
	if len(pending) != 1 {
		t.Fatalf("one-shot should leave the outbox, got %+v", pending)
	}
	if want := time.Date(2024, 6, 4, 21, 0, 0, 0, time.UTC); !pending[0].NextFire.Equal(want) {
		t.Errorf("daily entry should advance to %v, got %v", want, pending[0].NextFire)
	}
}

func TestOutbox_DispatchSkipsStaleEntries(t *testing.T) {
	o, sender, _ := setupOutbox(t, WithStaleness(10*time.Minute))
	ctx := context.Background()
	o.Schedule(ctx, Content{Kind: "blueLight"}, Daily(21, 0))
	o.Schedule(ctx, Content{Kind: "roomTemp"}, At(time.Date(2024, 6, 3, 21, 0, 0, 0, time.UTC)))

	// Machine was asleep for half an hour.
	n, err := o.Dispatch(ctx, time.Date(2024, 6, 3, 21, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 || len(sender.sent) != 0 {
		t.Errorf("stale notifications must not be delivered, got %d", n)
	}

	pending, _ := o.Pending()
	if len(pending) != 1 || pending[0].NextFire.Day() != 4 {
		t.Errorf("expected only the daily entry, moved to tomorrow: %+v", pending)
	}
}

func TestOutbox_DispatchClaimsSlots(t *testing.T) {
	claimer := &mapClaimer{claimed: map[string]bool{}}
	o, sender, _ := setupOutbox(t, WithClaimer(claimer))
	ctx := context.Background()

	// A daily entry and a catch-up one-shot for the same slot.
	o.Schedule(ctx, Content{Kind: "blueLight"}, Daily(21, 0))
	o.Schedule(ctx, Content{Kind: "blueLight"}, At(time.Date(2024, 6, 3, 21, 0, 30, 0, time.UTC)))

	n, _ := o.Dispatch(ctx, time.Date(2024, 6, 3, 21, 1, 0, 0, time.UTC))
	if n != 1 || len(sender.sent) != 1 {
		t.Errorf("expected exactly one delivery for the slot, got %d", n)
	}
}

func TestOutbox_DispatchFailureReleasesClaim(t *testing.T) {
	claimer := &mapClaimer{claimed: map[string]bool{}}
	o, sender, _ := setupOutbox(t, WithClaimer(claimer))
	ctx := context.Background()
	o.Schedule(ctx, Content{Kind: "roomTemp"}, Daily(21, 45))

	sender.fail = true
	n, err := o.Dispatch(ctx, time.Date(2024, 6, 3, 21, 45, 5, 0, time.UTC))
	if err != nil {
		t.Fatalf("send failures are not dispatch errors: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no deliveries, got %d", n)
	}
	if !claimer.Claim("roomTemp", time.Date(2024, 6, 3, 21, 45, 0, 0, time.UTC)) {
		t.Error("failed delivery should release the slot")
	}
}

func TestNextDaily(t *testing.T) {
	from := time.Date(2024, 6, 1, 21, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 3, 22, 0, 0, 0, time.UTC)
	got := nextDaily(from, now, 21*60)
	if want := time.Date(2024, 6, 4, 21, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("nextDaily = %v, want %v", got, want)
	}
}
