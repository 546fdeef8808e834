// Package reminder turns a bedtime and its offset reminders into registered notifications.
//
// Every change goes through OnConfigChanged, which waits for a quiet period before calling
// ScheduleAll. ScheduleAll always starts from a clean slate: it cancels everything the
// facility holds and registers the full derived set again.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/sleepr/internal/constants"
	sleeprerrors "github.com/julianstephens/sleepr/internal/errors"
	"github.com/julianstephens/sleepr/internal/logger"
	"github.com/julianstephens/sleepr/internal/models"
	"github.com/julianstephens/sleepr/internal/notifier"
	"github.com/julianstephens/sleepr/internal/utils"
)

// Strategy picks how reminders are registered with the facility.
type Strategy string

const (
	// StrategyDaily registers hour/minute recurrences that survive across days.
	StrategyDaily Strategy = "daily"
	// StrategyOnce registers one-shot instants and re-registers after each delivery.
	StrategyOnce Strategy = "once"
)

// ParseStrategy resolves a strategy name; empty means daily.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyDaily:
		return StrategyDaily, nil
	case StrategyOnce:
		return StrategyOnce, nil
	}
	return "", fmt.Errorf("unknown recurrence strategy %q (expected daily or once)", s)
}

// PermissionState is the sticky permission status shown to the user.
type PermissionState string

const (
	PermissionUnknown     PermissionState = "unknown"
	PermissionGranted     PermissionState = "granted"
	PermissionNeedsPrompt PermissionState = "needs-prompt"
	// PermissionNeedsSettings means the user denied twice and has to allow notifications
	// from system settings.
	PermissionNeedsSettings PermissionState = "needs-settings"
)

type Scheduler struct {
	facility notifier.Facility
	ledger   *Ledger
	now      func() time.Time

	grace    time.Duration
	debounce time.Duration
	strategy Strategy

	// mu serialises ScheduleAll and delivery handling.
	mu      sync.Mutex
	lastCfg *models.ReminderConfig

	debounceMu sync.Mutex
	timer      *time.Timer
	generation uint64
	pending    *models.ReminderConfig
	onSchedule func(models.ReminderConfig, error)
	config     func() (models.ReminderConfig, error)

	permMu    sync.Mutex
	permState PermissionState
	denials   int
}

type Option func(*Scheduler)

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func WithGraceWindow(d time.Duration) Option {
	return func(s *Scheduler) { s.grace = d }
}

func WithDebounce(d time.Duration) Option {
	return func(s *Scheduler) { s.debounce = d }
}

func WithStrategy(st Strategy) Option {
	return func(s *Scheduler) { s.strategy = st }
}

// WithScheduleHook is called after every debounced ScheduleAll.
func WithScheduleHook(fn func(models.ReminderConfig, error)) Option {
	return func(s *Scheduler) { s.onSchedule = fn }
}

// WithConfigSource reads the current config when a delivery needs the next occurrence.
// Other processes may have changed it since this one last scheduled.
func WithConfigSource(fn func() (models.ReminderConfig, error)) Option {
	return func(s *Scheduler) { s.config = fn }
}

func New(facility notifier.Facility, ledger *Ledger, opts ...Option) *Scheduler {
	s := &Scheduler{
		facility:  facility,
		ledger:    ledger,
		now:       time.Now,
		grace:     constants.DefaultGraceWindow,
		debounce:  constants.DefaultDebounce,
		strategy:  StrategyDaily,
		permState: PermissionUnknown,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Plan returns the notifications ScheduleAll would register for cfg right now.
func (s *Scheduler) Plan(cfg models.ReminderConfig) []Notification {
	return plan(cfg, s.now(), s.grace)
}

// ScheduleAll replaces every registered notification with the set derived from cfg.
// Permission is re-checked first; without it nothing is touched and ErrPermissionDenied is
// returned. A failed registration is logged and the rest are still attempted; the
// failures come back joined.
func (s *Scheduler) ScheduleAll(ctx context.Context, cfg models.ReminderConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPermission(ctx); err != nil {
		return err
	}

	if err := s.cancelAll(ctx); err != nil {
		return err
	}

	c := cfg
	s.lastCfg = &c

	var errs []error
	scheduled := 0
	for _, n := range plan(cfg, s.now(), s.grace) {
		id, err := s.facility.Schedule(ctx, n.Content(), s.trigger(n))
		if err != nil {
			logger.Warn("Error scheduling reminder", "kind", n.Kind, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", n.Kind, err))
			continue
		}
		scheduled++
		logger.Debug("Reminder scheduled", "kind", n.Kind, "id", id, "fire_at", n.FireAt)
	}

	logger.Info("Reminders scheduled", "count", scheduled, "failed", len(errs), "strategy", s.strategy)
	return errors.Join(errs...)
}

func (s *Scheduler) trigger(n Notification) notifier.Trigger {
	if s.strategy == StrategyOnce {
		return notifier.At(n.FireAt)
	}
	return notifier.Daily(n.Hour, n.Minute)
}

// cancelAll retries a failing cancel a few times. Registering on top of a stale set would
// double every reminder, so a cancel that keeps failing aborts the schedule.
func (s *Scheduler) cancelAll(ctx context.Context) error {
	var err error
	for attempt := 0; attempt < constants.NotifyMaxRetries; attempt++ {
		if err = s.facility.CancelAll(ctx); err == nil {
			return nil
		}
		logger.Warn("Error cancelling notifications", "attempt", attempt+1, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(constants.NotifyRetryDelay):
		}
	}
	return fmt.Errorf("cancelling notifications: %w", err)
}

// OnConfigChanged schedules cfg after the debounce period. A newer call before then restarts
// the wait, and only the newest config is scheduled.
func (s *Scheduler) OnConfigChanged(cfg models.ReminderConfig) {
	s.debounceMu.Lock()
	defer s.debounceMu.Unlock()

	c := cfg
	s.pending = &c
	s.generation++
	gen := s.generation
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() { s.fire(gen) })
}

// Flush runs a pending debounced schedule immediately.
func (s *Scheduler) Flush() {
	s.debounceMu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	gen := s.generation
	s.debounceMu.Unlock()
	s.fire(gen)
}

// Stop drops any pending debounced schedule.
func (s *Scheduler) Stop() {
	s.debounceMu.Lock()
	defer s.debounceMu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	s.generation++
}

func (s *Scheduler) fire(gen uint64) {
	s.debounceMu.Lock()
	if gen != s.generation || s.pending == nil {
		s.debounceMu.Unlock()
		return
	}
	cfg := *s.pending
	s.pending = nil
	s.timer = nil
	hook := s.onSchedule
	s.debounceMu.Unlock()

	err := s.ScheduleAll(context.Background(), cfg)
	if err != nil {
		logger.Warn("Debounced schedule failed", "error", err)
	}
	if hook != nil {
		hook(cfg, err)
	}
}

// RequestPermission asks the facility for permission and updates the sticky state. The
// first denial asks for a prompt again; a second denial in a row sends the user to system
// settings.
func (s *Scheduler) RequestPermission(ctx context.Context) (PermissionState, error) {
	p, err := s.facility.RequestPermission(ctx)

	s.permMu.Lock()
	defer s.permMu.Unlock()

	if err == nil && p == notifier.PermissionGranted {
		s.denials = 0
		s.permState = PermissionGranted
		return s.permState, nil
	}

	s.denials++
	if s.denials >= 2 {
		s.permState = PermissionNeedsSettings
	} else {
		s.permState = PermissionNeedsPrompt
	}
	if err != nil {
		logger.Warn("Error requesting notification permission", "error", err)
		return s.permState, fmt.Errorf("%w: %v", sleeprerrors.ErrPermissionDenied, err)
	}
	return s.permState, sleeprerrors.ErrPermissionDenied
}

// PermissionState returns the last known permission state.
func (s *Scheduler) PermissionState() PermissionState {
	s.permMu.Lock()
	defer s.permMu.Unlock()
	return s.permState
}

// checkPermission is the silent re-check before scheduling. Revocation moves the state back
// to needs-prompt without counting as a user denial.
func (s *Scheduler) checkPermission(ctx context.Context) error {
	p, err := s.facility.RequestPermission(ctx)

	s.permMu.Lock()
	defer s.permMu.Unlock()

	if err == nil && p == notifier.PermissionGranted {
		s.denials = 0
		s.permState = PermissionGranted
		return nil
	}
	if s.permState != PermissionNeedsSettings {
		s.permState = PermissionNeedsPrompt
	}
	if err != nil {
		return fmt.Errorf("%w: %v", sleeprerrors.ErrPermissionDenied, err)
	}
	return sleeprerrors.ErrPermissionDenied
}

// CheckAndFireNow queues an immediate notification for every reminder whose time today
// passed no more than the grace window ago and has not fired yet. It returns the kinds
// queued.
func (s *Scheduler) CheckAndFireNow(ctx context.Context, cfg models.ReminderConfig) ([]models.ReminderKind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPermission(ctx); err != nil {
		return nil, err
	}

	now := s.now()
	var fired []models.ReminderKind
	var errs []error
	for _, n := range plan(cfg, now, s.grace) {
		target := utils.AtMinuteOfDay(now, n.MinuteOfDay())
		late := now.Sub(target)
		if late < 0 || late > s.grace {
			continue
		}
		if s.ledger != nil && s.ledger.Delivered(string(n.Kind), target) {
			continue
		}
		if _, err := s.facility.Schedule(ctx, n.Content(), notifier.At(now)); err != nil {
			logger.Warn("Error queueing catch-up reminder", "kind", n.Kind, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", n.Kind, err))
			continue
		}
		logger.Info("Catch-up reminder queued", "kind", n.Kind, "target", target)
		fired = append(fired, n.Kind)
	}
	return fired, errors.Join(errs...)
}

// OnDelivered is the facility's delivery listener. It records the slot and, for the once
// strategy, registers the next day's occurrence.
func (s *Scheduler) OnDelivered(d notifier.Delivered) {
	if s.ledger != nil {
		s.ledger.Claim(d.Content.Kind, d.Slot)
	}
	if s.strategy != StrategyOnce || d.Trigger.Daily {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.currentConfig()
	if !ok {
		return
	}
	for _, n := range plan(cfg, s.now(), s.grace) {
		if string(n.Kind) != d.Content.Kind {
			continue
		}
		next := utils.AtMinuteOfDay(d.Slot.AddDate(0, 0, 1), n.MinuteOfDay())
		if _, err := s.facility.Schedule(context.Background(), n.Content(), notifier.At(next)); err != nil {
			logger.Warn("Error rescheduling reminder", "kind", n.Kind, "error", err)
			return
		}
		logger.Debug("Reminder rescheduled", "kind", n.Kind, "fire_at", next)
		return
	}
}

// currentConfig prefers the config source and falls back to the last scheduled config.
func (s *Scheduler) currentConfig() (models.ReminderConfig, bool) {
	if s.config != nil {
		cfg, err := s.config()
		if err == nil {
			return cfg, true
		}
		logger.Warn("Error reading reminder settings, using last scheduled", "error", err)
	}
	if s.lastCfg == nil {
		return models.ReminderConfig{}, false
	}
	return *s.lastCfg, true
}
