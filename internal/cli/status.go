package cli

import (
	"context"
	"fmt"

	"github.com/julianstephens/sleepr/internal/models"
	"github.com/julianstephens/sleepr/internal/utils"
)

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *Context) error {
	state := ctx.Tracker.LoadState()
	cfg, err := ctx.ReminderConfig()
	if err != nil {
		return err
	}

	badge := ""
	if ctx.Gate.IsSubscribed(context.Background()) {
		badge = "  ★ Premium"
	}

	fmt.Printf("sleepr · %s%s\n\n", state.Today, badge)
	fmt.Printf("Bedtime: %s\n\n", utils.FormatMinutes(cfg.BedtimeMinutes()))

	switch state.Phase {
	case models.PhaseClosed:
		fmt.Println("Today is complete.")
	case models.PhaseCompletable:
		fmt.Println("Ready to complete. Run 'sleepr day complete'.")
	default:
		fmt.Println("Tonight's checklist:")
	}
	printChecklist(state.Keys, state.Habits)

	fmt.Println()
	fmt.Println(formatStreak(state.Streak))
	return nil
}
