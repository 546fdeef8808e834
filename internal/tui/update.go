package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	sleeprerrors "github.com/julianstephens/sleepr/internal/errors"
	"github.com/julianstephens/sleepr/internal/logger"
	"github.com/julianstephens/sleepr/internal/storage"
	"github.com/julianstephens/sleepr/internal/utils"
)

const confirmResetKey = "confirmReset"

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		m.checkRollover()
		return m, tick()

	case tea.FocusMsg:
		m.checkRollover()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.state.Keys)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Toggle):
		k, ok := m.selected()
		if !ok {
			break
		}
		if err := m.tracker.ToggleHabit(k); err != nil {
			m.status = m.describe(err)
		}
		m.refresh()

	case key.Matches(msg, m.keys.Complete):
		state, err := m.tracker.CompleteDay()
		m.state = state
		if err != nil {
			m.status = m.describe(err)
		} else {
			m.status = "Day completed. Sleep well!"
		}

	case key.Matches(msg, m.keys.Reset):
		m.form = newResetForm()
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Later):
		m.moveBedtime(BedtimeStep)

	case key.Matches(msg, m.keys.Earlier):
		m.moveBedtime(-BedtimeStep)
	}

	return m, nil
}

func newResetForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key(confirmResetKey).
				Title("Reset your streak?").
				Description("This clears every streak day and today's checklist.").
				Affirmative("Reset").
				Negative("Cancel"),
		),
	).WithTheme(huh.ThemeBase())
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if m.form.GetBool(confirmResetKey) {
			m.state = m.tracker.ResetStreak()
			m.cursor = 0
			m.status = "Streak reset."
		}
		m.form = nil
		return m, nil
	case huh.StateAborted:
		m.form = nil
		return m, nil
	}
	return m, cmd
}

// moveBedtime saves the new bedtime right away and hands scheduling to the debouncer, so
// holding the key registers reminders once.
func (m *Model) moveBedtime(delta int) {
	minutes := utils.WrapMinutes(m.reminders.BedtimeMinutes() + delta)
	m.reminders.Bedtime = utils.AtMinuteOfDay(m.now(), minutes)

	if m.store != nil {
		if err := storage.SaveReminderConfig(m.store, m.reminders); err != nil {
			logger.Error("Error saving bedtime", "error", err)
			m.status = "Could not save bedtime."
		}
	}
	if m.scheduler != nil {
		m.scheduler.OnConfigChanged(m.reminders)
	}
}

func (m *Model) checkRollover() {
	if m.tracker.CheckRollover() {
		m.cursor = 0
		m.status = "New day. Fresh checklist!"
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.state = m.tracker.State()
	if m.cursor >= len(m.state.Keys) {
		m.cursor = len(m.state.Keys) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) describe(err error) string {
	switch {
	case errors.Is(err, sleeprerrors.ErrDayClosed):
		return "Today is already completed."
	case errors.Is(err, sleeprerrors.ErrMandatoryIncomplete):
		return "Check every mandatory habit first."
	}
	return fmt.Sprintf("Error: %v", err)
}
