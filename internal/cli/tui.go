package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/sleepr/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	ctx.Tracker.LoadState()
	cfg, err := ctx.ReminderConfig()
	if err != nil {
		return err
	}

	m := tui.NewModel(tui.Deps{
		Tracker:   ctx.Tracker,
		Scheduler: ctx.Scheduler,
		Store:     ctx.Store,
		Reminders: cfg,
		Now:       ctx.Now,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
	_, err = p.Run()
	// Bedtime changes made just before quitting are still scheduled.
	ctx.Scheduler.Flush()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
