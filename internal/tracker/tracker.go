// Package tracker owns today's habit checklist and the weekly streak.
//
// A day moves from open (habits editable) to completable (all mandatory habits
// checked) to closed (after CompleteDay). A closed day is read-only until the
// local calendar date moves past the stored completion date, at which point the
// next rollover check reopens it with an empty checklist.
package tracker

import (
	"errors"
	"sync"
	"time"

	"github.com/julianstephens/sleepr/internal/constants"
	sleeprerrors "github.com/julianstephens/sleepr/internal/errors"
	"github.com/julianstephens/sleepr/internal/logger"
	"github.com/julianstephens/sleepr/internal/models"
	"github.com/julianstephens/sleepr/internal/storage"
	"github.com/julianstephens/sleepr/internal/utils"
)

// State is a snapshot of the tracker.
type State struct {
	Today      string
	Keys       []models.HabitKey
	Habits     models.HabitSet
	Streak     models.StreakRecord
	Completion models.CompletionState
	Phase      models.Phase
}

type Tracker struct {
	mu    sync.Mutex
	store storage.Provider
	now   func() time.Time

	bonus      models.BonusSettings
	habits     models.HabitSet
	habitsDate string
	streak     models.StreakRecord
	completion models.CompletionState
}

type Option func(*Tracker)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

func New(store storage.Provider, opts ...Option) *Tracker {
	t := &Tracker{
		store:  store,
		now:    time.Now,
		habits: models.NewHabitSet(models.MandatoryHabits),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// LoadState reads the checklist, streak and completion date from the store, seeds a
// default bedtime when none exists, and applies the rollover check. Read failures are
// logged and leave the affected piece at its default.
func (t *Tracker) LoadState() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	habits := models.HabitSet{}
	if err := storage.GetJSON(t.store, constants.KeyHabits, &habits); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Error("Error loading habits", "error", err)
	}
	t.habits = habits

	var streak models.StreakRecord
	if err := storage.GetJSON(t.store, constants.KeyStreak, &streak); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Error("Error loading streak", "error", err)
	}
	t.streak = streak

	t.habitsDate = t.getString(constants.KeyHabitsDate)
	t.completion = models.CompletionState{LastCompletionDate: t.getString(constants.KeyLastCompletionDate)}

	if _, err := t.store.Get(constants.KeyBedtime); errors.Is(err, storage.ErrNotFound) {
		def := models.DefaultReminderConfig(now)
		t.persist(constants.KeyBedtime, utils.FormatBedtime(def.Bedtime))
	}

	cfg, err := storage.LoadReminderConfig(t.store, now)
	if err != nil {
		logger.Error("Error loading reminder settings", "error", err)
	}
	t.bonus = cfg.Bonus()
	t.habits = t.habits.Restrict(models.EnabledHabits(t.bonus))

	t.rollover(utils.LocalDate(now))
	return t.snapshot(now)
}

// CheckRollover re-derives today's state from the wall clock. It is the focus/foreground
// hook: when the local date has moved past the checklist's date it reopens the day with
// an empty checklist and returns true. Calling it again on the same date is a no-op.
func (t *Tracker) CheckRollover() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rollover(utils.LocalDate(t.now()))
}

// ToggleHabit flips one habit. It returns ErrDayClosed, leaving state untouched, when
// today is already completed.
func (t *Tracker) ToggleHabit(key models.HabitKey) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rollover(utils.LocalDate(t.now()))
	if t.completion.IsDayCompleted {
		return sleeprerrors.ErrDayClosed
	}
	if _, ok := t.habits[key]; !ok {
		return sleeprerrors.ErrUnknownHabit
	}

	t.habits[key] = !t.habits[key]
	t.persistJSON(constants.KeyHabits, t.habits)
	return nil
}

// CompleteDay closes today. Every mandatory habit must be checked; the streak entry for
// today's weekday records how many habits were checked.
func (t *Tracker) CompleteDay() (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	today := utils.LocalDate(now)
	t.rollover(today)

	if t.completion.IsDayCompleted {
		return t.snapshot(now), sleeprerrors.ErrDayClosed
	}
	if !t.habits.MandatoryComplete() {
		return t.snapshot(now), sleeprerrors.ErrMandatoryIncomplete
	}

	t.streak[models.WeekdayIndex(now)] = t.habits.CountTrue()
	t.completion = models.CompletionState{LastCompletionDate: today, IsDayCompleted: true}
	t.habits = models.FilledHabitSet(models.EnabledHabits(t.bonus), true)
	t.habitsDate = today

	t.persistJSON(constants.KeyStreak, t.streak)
	t.persist(constants.KeyLastCompletionDate, today)
	t.persistJSON(constants.KeyHabits, t.habits)
	t.persist(constants.KeyHabitsDate, today)

	logger.Info("Day completed", "date", today, "habits", t.streak[models.WeekdayIndex(now)])
	return t.snapshot(now), nil
}

// ResetStreak clears the checklist, the streak and the completion date. Writes are
// sequential; a failed write is logged and the remaining writes still run.
func (t *Tracker) ResetStreak() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	today := utils.LocalDate(now)

	t.habits = models.NewHabitSet(models.EnabledHabits(t.bonus))
	t.habitsDate = today
	t.streak = models.StreakRecord{}
	t.completion = models.CompletionState{}

	t.persistJSON(constants.KeyHabits, t.habits)
	t.persist(constants.KeyHabitsDate, today)
	t.persistJSON(constants.KeyStreak, t.streak)
	if err := t.store.Delete(constants.KeyLastCompletionDate); err != nil {
		logger.Error("Error resetting streak", "key", constants.KeyLastCompletionDate, "error", err)
	}

	logger.Info("Streak reset")
	return t.snapshot(now)
}

// SetCompletionDate back-dates the last completion. Debug only.
func (t *Tracker) SetCompletionDate(date string) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	day, err := utils.ParseDateInLocation(date, now.Location())
	if err != nil {
		return t.snapshot(now), sleeprerrors.ErrInvalidDate
	}

	count := t.habits.CountTrue()
	if count < len(models.MandatoryHabits) {
		count = len(models.MandatoryHabits)
	}
	t.streak[models.WeekdayIndex(day)] = count
	t.completion.LastCompletionDate = date
	wasClosed := t.completion.IsDayCompleted

	t.persistJSON(constants.KeyStreak, t.streak)
	t.persist(constants.KeyLastCompletionDate, date)

	t.rollover(utils.LocalDate(now))
	// Reopening today drops the all-true checklist a closed day carries.
	if wasClosed && !t.completion.IsDayCompleted {
		t.habits = models.NewHabitSet(models.EnabledHabits(t.bonus))
		t.persistJSON(constants.KeyHabits, t.habits)
	}
	return t.snapshot(now), nil
}

// SetBonusHabits changes which bonus habits appear on the checklist.
func (t *Tracker) SetBonusHabits(b models.BonusSettings) State {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.bonus = b
	t.habits = t.habits.Restrict(models.EnabledHabits(b))
	if t.completion.IsDayCompleted {
		t.habits = models.FilledHabitSet(models.EnabledHabits(b), true)
	}
	t.persistJSON(constants.KeyHabits, t.habits)
	return t.snapshot(now)
}

// State returns the current snapshot without touching the store.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot(t.now())
}

// rollover applies the per-day invariants for today. Caller holds mu.
func (t *Tracker) rollover(today string) bool {
	keys := models.EnabledHabits(t.bonus)
	closed := t.completion.LastCompletionDate != "" && t.completion.LastCompletionDate == today
	t.completion.IsDayCompleted = closed

	switch {
	case closed:
		if t.habits.CountTrue() != len(keys) {
			t.habits = models.FilledHabitSet(keys, true)
			t.persistJSON(constants.KeyHabits, t.habits)
		}
		if t.habitsDate != today {
			t.habitsDate = today
			t.persist(constants.KeyHabitsDate, today)
		}
		return false
	case t.habitsDate == today:
		return false
	case t.habitsDate == "" && t.completion.LastCompletionDate == "":
		// First run: adopt whatever checklist is stored as today's.
		t.habitsDate = today
		t.persist(constants.KeyHabitsDate, today)
		return false
	default:
		t.habits = models.NewHabitSet(keys)
		t.habitsDate = today
		t.persistJSON(constants.KeyHabits, t.habits)
		t.persist(constants.KeyHabitsDate, today)
		logger.Debug("New day, checklist reset", "date", today)
		return true
	}
}

func (t *Tracker) snapshot(now time.Time) State {
	return State{
		Today:      utils.LocalDate(now),
		Keys:       models.EnabledHabits(t.bonus),
		Habits:     t.habits.Clone(),
		Streak:     t.streak,
		Completion: t.completion,
		Phase:      models.PhaseOf(t.habits, t.completion),
	}
}

func (t *Tracker) getString(key string) string {
	v, err := t.store.Get(key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Error("Error loading state", "key", key, "error", err)
		}
		return ""
	}
	return v
}

func (t *Tracker) persist(key, value string) {
	if err := t.store.Set(key, value); err != nil {
		logger.Error("Error saving state", "key", key, "error", err)
	}
}

func (t *Tracker) persistJSON(key string, v any) {
	if err := storage.SetJSON(t.store, key, v); err != nil {
		logger.Error("Error saving state", "key", key, "error", err)
	}
}
