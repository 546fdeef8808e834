package cli

import (
	"fmt"

	"github.com/julianstephens/sleepr/internal/utils"
)

type BedtimeCmd struct {
	Show BedtimeShowCmd `cmd:"" help:"Show the bedtime." default:"1"`
	Set  BedtimeSetCmd  `cmd:"" help:"Change the bedtime and reschedule reminders."`
}

type BedtimeShowCmd struct{}

func (c *BedtimeShowCmd) Run(ctx *Context) error {
	cfg, err := ctx.ReminderConfig()
	if err != nil {
		return err
	}
	fmt.Printf("Bedtime: %s\n", utils.FormatMinutes(cfg.BedtimeMinutes()))
	return nil
}

type BedtimeSetCmd struct {
	Time string `arg:"" help:"Bedtime (HH:MM, 24-hour)."`
}

func (c *BedtimeSetCmd) Run(ctx *Context) error {
	minutes, err := utils.ParseTimeToMinutes(c.Time)
	if err != nil {
		return fmt.Errorf("invalid bedtime %q (expected HH:MM)", c.Time)
	}

	cfg, err := ctx.ReminderConfig()
	if err != nil {
		return err
	}
	cfg.Bedtime = utils.AtMinuteOfDay(ctx.Now(), minutes)
	if err := ctx.ApplyReminderConfig(cfg); err != nil {
		return err
	}

	fmt.Printf("✓ Bedtime set to %s\n", utils.FormatMinutes(minutes))
	return nil
}
