package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/sleepr/internal/models"
	"github.com/julianstephens/sleepr/internal/utils"
)

var weekdayLabels = [7]string{"M", "T", "W", "T", "F", "S", "S"}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.form != nil {
		return docStyle.Render(m.form.View())
	}

	ui := lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		"",
		m.viewStreak(),
		"",
		m.viewChecklist(),
		"",
		m.viewStatus(),
		m.help.View(m),
	)
	return docStyle.Render(ui)
}

func (m Model) viewHeader() string {
	bedtime := utils.FormatMinutes(m.reminders.BedtimeMinutes())
	return titleStyle.Render("sleepr") + mutedStyle.Render(fmt.Sprintf("  %s  ·  bedtime %s", m.state.Today, bedtime))
}

func (m Model) viewStreak() string {
	cells := make([]string, len(m.state.Streak))
	for i, count := range m.state.Streak {
		cells[i] = lipgloss.JoinVertical(lipgloss.Center, mutedStyle.Render(weekdayLabels[i]), tierGlyph(count))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, spaced(cells)...)
}

func spaced(cells []string) []string {
	out := make([]string, 0, len(cells)*2)
	for i, c := range cells {
		if i > 0 {
			out = append(out, "  ")
		}
		out = append(out, c)
	}
	return out
}

func tierGlyph(count int) string {
	switch models.StreakTier(count) {
	case models.TierBase:
		return baseTierStyle.Render("●")
	case models.TierSilver:
		return silverTierStyle.Render("◆")
	case models.TierGold:
		return goldTierStyle.Render("★")
	default:
		return mutedStyle.Render("·")
	}
}

func (m Model) viewChecklist() string {
	var b strings.Builder
	for i, k := range m.state.Keys {
		cursor := "  "
		if i == m.cursor && m.state.Phase != models.PhaseClosed {
			cursor = cursorStyle.Render("> ")
		}

		line := pendingStyle.Render("[ ] " + k.Label())
		if m.state.Habits[k] {
			line = doneStyle.Render("[x] " + k.Label())
		}
		if !k.IsMandatory() {
			line += mutedStyle.Render("  bonus")
		}
		b.WriteString(cursor + line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) viewStatus() string {
	if m.status != "" {
		if strings.HasPrefix(m.status, "Error") {
			return dangerStyle.Render(m.status)
		}
		return warningStyle.Render(m.status)
	}
	switch m.state.Phase {
	case models.PhaseClosed:
		return doneStyle.Render("Today is complete. See you tomorrow.")
	case models.PhaseCompletable:
		return warningStyle.Render("Ready! Press c to complete the day.")
	}
	return mutedStyle.Render("Check off tonight's habits.")
}
