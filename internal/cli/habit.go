package cli

import (
	"errors"
	"fmt"
	"strings"

	sleeprerrors "github.com/julianstephens/sleepr/internal/errors"
	"github.com/julianstephens/sleepr/internal/models"
)

type HabitCmd struct {
	List     HabitListCmd     `cmd:"" help:"Show today's checklist." default:"1"`
	Toggle   HabitToggleCmd   `cmd:"" help:"Check or uncheck a habit for today."`
	WindDown HabitWindDownCmd `cmd:"" name:"wind-down" help:"Add or remove the wind-down bonus habit."`
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *Context) error {
	state := ctx.Tracker.LoadState()
	printChecklist(state.Keys, state.Habits)
	return nil
}

type HabitToggleCmd struct {
	Key string `arg:"" help:"Habit key (goToBed, avoidBlueLight, roomTemp, didWindDown, avoidCaffeine, avoidLateEating)."`
}

func (c *HabitToggleCmd) Run(ctx *Context) error {
	key, ok := models.ParseHabitKey(c.Key)
	if !ok {
		return fmt.Errorf("%w: %q", sleeprerrors.ErrUnknownHabit, c.Key)
	}

	ctx.Tracker.LoadState()
	if err := ctx.Tracker.ToggleHabit(key); err != nil {
		if errors.Is(err, sleeprerrors.ErrDayClosed) {
			return fmt.Errorf("%w; the checklist reopens tomorrow", err)
		}
		if errors.Is(err, sleeprerrors.ErrUnknownHabit) {
			return fmt.Errorf("%q is not on today's checklist", c.Key)
		}
		return err
	}

	state := ctx.Tracker.State()
	if state.Habits[key] {
		fmt.Printf("✓ %s\n", key.Label())
	} else {
		fmt.Printf("○ %s\n", key.Label())
	}
	if state.Phase == models.PhaseCompletable {
		fmt.Println("All mandatory habits done. Run 'sleepr day complete' to close the day.")
	}
	return nil
}

type HabitWindDownCmd struct {
	State string `arg:"" enum:"on,off" help:"on or off."`
}

func (c *HabitWindDownCmd) Run(ctx *Context) error {
	cfg, err := ctx.ReminderConfig()
	if err != nil {
		return err
	}
	cfg.WindDownHabit = c.State == "on"
	if err := ctx.ApplyReminderConfig(cfg); err != nil {
		return err
	}
	fmt.Printf("Wind-down habit: %s\n", c.State)
	return nil
}

func printChecklist(keys []models.HabitKey, habits models.HabitSet) {
	for _, k := range keys {
		mark := "○"
		if habits[k] {
			mark = "✓"
		}
		tag := ""
		if !k.IsMandatory() {
			tag = " (bonus)"
		}
		fmt.Printf("  %s %-16s %s%s\n", mark, k, k.Label(), tag)
	}
}

var weekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// streakGlyph renders one streak day by tier.
func streakGlyph(count int) string {
	switch models.StreakTier(count) {
	case models.TierBase:
		return "●"
	case models.TierSilver:
		return "◆"
	case models.TierGold:
		return "★"
	default:
		return "·"
	}
}

func formatStreak(streak models.StreakRecord) string {
	parts := make([]string, len(streak))
	for i, count := range streak {
		parts[i] = fmt.Sprintf("%s %s", weekdayLabels[i], streakGlyph(count))
	}
	return strings.Join(parts, "  ")
}
