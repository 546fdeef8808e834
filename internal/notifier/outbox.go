package notifier

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/sleepr/internal/constants"
	"github.com/julianstephens/sleepr/internal/logger"
	"github.com/julianstephens/sleepr/internal/storage"
	"github.com/julianstephens/sleepr/internal/utils"
)

// Pending is a notification waiting in the outbox.
type Pending struct {
	ID       string    `json:"id"`
	Content  Content   `json:"content"`
	Trigger  Trigger   `json:"trigger"`
	NextFire time.Time `json:"next_fire"`
}

// Outbox is a Facility backed by the key-value store. Dispatch delivers whatever is due.
type Outbox struct {
	mu     sync.Mutex
	store  storage.Provider
	sender Sender
	now    func() time.Time

	grace     time.Duration
	staleness time.Duration
	claimer   Claimer
	listeners []Listener
}

var _ Facility = (*Outbox)(nil)

type OutboxOption func(*Outbox)

func WithClock(now func() time.Time) OutboxOption {
	return func(o *Outbox) { o.now = now }
}

// WithGraceWindow sets how far past a daily time Schedule still counts today's occurrence.
func WithGraceWindow(d time.Duration) OutboxOption {
	return func(o *Outbox) { o.grace = d }
}

// WithStaleness sets how late a due notification may still be delivered.
func WithStaleness(d time.Duration) OutboxOption {
	return func(o *Outbox) { o.staleness = d }
}

func WithClaimer(c Claimer) OutboxOption {
	return func(o *Outbox) { o.claimer = c }
}

func NewOutbox(store storage.Provider, sender Sender, opts ...OutboxOption) *Outbox {
	o := &Outbox{
		store:     store,
		sender:    sender,
		now:       time.Now,
		grace:     constants.DefaultGraceWindow,
		staleness: constants.DefaultStaleness,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// OnDelivered registers a listener called after each successful delivery.
func (o *Outbox) OnDelivered(l Listener) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, l)
}

// SetOptIn records whether the user allows notifications.
func (o *Outbox) SetOptIn(granted bool) error {
	value := constants.PermissionDenied
	if granted {
		value = constants.PermissionGranted
	}
	return o.store.Set(constants.KeyNotificationPermission, value)
}

// RequestPermission is granted when the user opted in and the sender can deliver.
func (o *Outbox) RequestPermission(ctx context.Context) (Permission, error) {
	v, err := o.store.Get(constants.KeyNotificationPermission)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return PermissionDenied, fmt.Errorf("reading notification permission: %w", err)
	}
	if v != constants.PermissionGranted {
		return PermissionDenied, nil
	}
	if err := o.sender.Available(ctx); err != nil {
		logger.Debug("Notification sender unavailable", "error", err)
		return PermissionDenied, nil
	}
	return PermissionGranted, nil
}

func (o *Outbox) Schedule(ctx context.Context, content Content, trigger Trigger) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	pending, err := o.load()
	if err != nil {
		return "", err
	}

	p := Pending{
		ID:      uuid.New().String(),
		Content: content,
		Trigger: trigger,
	}
	if trigger.Daily {
		p.NextFire = utils.NextOccurrence(o.now(), trigger.MinuteOfDay(), o.grace)
	} else {
		if trigger.At.IsZero() {
			return "", errors.New("one-shot trigger needs a time")
		}
		p.NextFire = trigger.At
	}

	pending = append(pending, p)
	if err := o.save(pending); err != nil {
		return "", err
	}
	logger.Debug("Notification scheduled", "id", p.ID, "kind", content.Kind, "next_fire", p.NextFire)
	return p.ID, nil
}

func (o *Outbox) CancelAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.store.Delete(constants.KeyScheduledNotifications); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("cancelling notifications: %w", err)
	}
	return nil
}

// Pending returns the outbox sorted by next fire time.
func (o *Outbox) Pending() ([]Pending, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	pending, err := o.load()
	if err != nil {
		return nil, err
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].NextFire.Before(pending[j].NextFire) })
	return pending, nil
}

// Dispatch delivers every notification due at now. Daily entries move to their next day and
// one-shot entries leave the outbox whether or not delivery succeeded. Entries more than the
// staleness window late are skipped. It returns the number of notifications delivered.
func (o *Outbox) Dispatch(ctx context.Context, now time.Time) (int, error) {
	o.mu.Lock()
	pending, err := o.load()
	if err != nil {
		o.mu.Unlock()
		return 0, err
	}

	var due []Pending
	kept := pending[:0]
	for _, p := range pending {
		if p.NextFire.After(now) {
			kept = append(kept, p)
			continue
		}
		if now.Sub(p.NextFire) > o.staleness {
			logger.Info("Skipping stale notification", "id", p.ID, "kind", p.Content.Kind, "due", p.NextFire)
		} else {
			due = append(due, p)
		}
		if p.Trigger.Daily {
			p.NextFire = nextDaily(p.NextFire, now, p.Trigger.MinuteOfDay())
			kept = append(kept, p)
		}
	}

	if len(due) > 0 || len(kept) != len(pending) {
		if err := o.save(kept); err != nil {
			o.mu.Unlock()
			return 0, err
		}
	}
	listeners := append([]Listener(nil), o.listeners...)
	o.mu.Unlock()

	delivered := 0
	for _, p := range due {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		if o.claimer != nil && !o.claimer.Claim(p.Content.Kind, p.NextFire) {
			logger.Debug("Notification already delivered for slot", "kind", p.Content.Kind, "slot", p.NextFire)
			continue
		}
		if err := o.sender.Send(ctx, p.Content); err != nil {
			logger.Warn("Error delivering notification", "id", p.ID, "kind", p.Content.Kind, "error", err)
			if o.claimer != nil {
				o.claimer.Release(p.Content.Kind, p.NextFire)
			}
			continue
		}
		delivered++

		d := Delivered{ID: p.ID, Content: p.Content, Trigger: p.Trigger, Slot: p.NextFire, DeliveredAt: now}
		for _, l := range listeners {
			l(d)
		}
	}
	return delivered, nil
}

// nextDaily returns the first occurrence at minuteOfDay strictly after both from and now.
func nextDaily(from, now time.Time, minuteOfDay int) time.Time {
	next := utils.AtMinuteOfDay(from.AddDate(0, 0, 1), minuteOfDay)
	for !next.After(now) {
		next = utils.AtMinuteOfDay(next.AddDate(0, 0, 1), minuteOfDay)
	}
	return next
}

func (o *Outbox) load() ([]Pending, error) {
	var pending []Pending
	if err := storage.GetJSON(o.store, constants.KeyScheduledNotifications, &pending); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return pending, nil
}

func (o *Outbox) save(pending []Pending) error {
	if pending == nil {
		pending = []Pending{}
	}
	if err := storage.SetJSON(o.store, constants.KeyScheduledNotifications, pending); err != nil {
		return fmt.Errorf("saving notifications: %w", err)
	}
	return nil
}
