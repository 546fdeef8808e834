package cli

import (
	"errors"
	"fmt"

	sleeprerrors "github.com/julianstephens/sleepr/internal/errors"
	"github.com/julianstephens/sleepr/internal/models"
)

type DayCmd struct {
	Complete DayCompleteCmd `cmd:"" help:"Close today once every mandatory habit is checked."`
}

type DayCompleteCmd struct{}

func (c *DayCompleteCmd) Run(ctx *Context) error {
	ctx.Tracker.LoadState()

	state, err := ctx.Tracker.CompleteDay()
	switch {
	case errors.Is(err, sleeprerrors.ErrDayClosed):
		fmt.Println("Today is already completed. See you tomorrow!")
		return nil
	case errors.Is(err, sleeprerrors.ErrMandatoryIncomplete):
		fmt.Println("Still to do:")
		for _, k := range models.MandatoryHabits {
			if !state.Habits[k] {
				fmt.Printf("  ○ %s\n", k.Label())
			}
		}
		return err
	case err != nil:
		return err
	}

	count := state.Streak[models.WeekdayIndex(ctx.Now())]
	fmt.Printf("✓ Day completed with %d habits %s\n", count, streakGlyph(count))
	fmt.Printf("Streak: %d of 7 days\n", state.Streak.CompletedDays())
	return nil
}

type StreakCmd struct {
	Show  StreakShowCmd  `cmd:"" help:"Show this week's streak." default:"1"`
	Reset StreakResetCmd `cmd:"" help:"Clear the streak and today's checklist."`
}

type StreakShowCmd struct{}

func (c *StreakShowCmd) Run(ctx *Context) error {
	state := ctx.Tracker.LoadState()
	fmt.Println(formatStreak(state.Streak))
	fmt.Printf("Completed: %d of 7 days\n", state.Streak.CompletedDays())
	return nil
}

type StreakResetCmd struct {
	Yes bool `help:"Skip the confirmation prompt." short:"y"`
}

func (c *StreakResetCmd) Run(ctx *Context) error {
	if !c.Yes {
		ok, err := confirmFunc("Reset your streak?", "This clears every streak day and today's checklist.")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Reset cancelled.")
			return nil
		}
	}

	if mgr, err := backupManager(ctx); err == nil {
		path, err := mgr.Create()
		if err != nil {
			return fmt.Errorf("failed to back up before reset: %w", err)
		}
		fmt.Printf("✓ Backup created: %s\n", path)
	}

	ctx.Tracker.LoadState()
	ctx.Tracker.ResetStreak()
	fmt.Println("✓ Streak reset")
	return nil
}
