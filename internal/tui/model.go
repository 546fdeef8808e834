// Package tui is the interactive checklist screen.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/sleepr/internal/models"
	"github.com/julianstephens/sleepr/internal/storage"
	"github.com/julianstephens/sleepr/internal/tracker"
)

// BedtimeStep is how far one keypress moves the bedtime.
const BedtimeStep = 15

// ReminderScheduler receives every bedtime change and debounces it.
type ReminderScheduler interface {
	OnConfigChanged(cfg models.ReminderConfig)
}

// Deps is everything the screen needs from the rest of the app.
type Deps struct {
	Tracker   *tracker.Tracker
	Scheduler ReminderScheduler
	Store     storage.Provider
	Reminders models.ReminderConfig
	Now       func() time.Time
}

type tickMsg time.Time

type Model struct {
	tracker   *tracker.Tracker
	scheduler ReminderScheduler
	store     storage.Provider
	now       func() time.Time

	state     tracker.State
	reminders models.ReminderConfig
	cursor    int

	keys     KeyMap
	help     help.Model
	form     *huh.Form
	status   string
	quitting bool
	width    int
	height   int
}

func NewModel(d Deps) Model {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return Model{
		tracker:   d.Tracker,
		scheduler: d.Scheduler,
		store:     d.Store,
		now:       now,
		state:     d.Tracker.State(),
		reminders: d.Reminders,
		keys:      DefaultKeyMap(),
		help:      help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// tick re-runs the rollover check once a minute while the screen is open.
func tick() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) ShortHelp() []key.Binding {
	return m.keys.ShortHelp()
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

func (m Model) selected() (models.HabitKey, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Keys) {
		return "", false
	}
	return m.state.Keys[m.cursor], true
}
