package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/sleepr/internal/models"
	"github.com/julianstephens/sleepr/internal/utils"
)

type RemindersCmd struct {
	List     RemindersListCmd     `cmd:"" help:"Show reminders and when they fire next." default:"1"`
	Set      RemindersSetCmd      `cmd:"" help:"Change one reminder."`
	Schedule RemindersScheduleCmd `cmd:"" help:"Register every reminder again."`
}

type RemindersListCmd struct{}

func (c *RemindersListCmd) Run(ctx *Context) error {
	cfg, err := ctx.ReminderConfig()
	if err != nil {
		return err
	}

	fmt.Printf("Bedtime: %s\n\n", utils.FormatMinutes(cfg.BedtimeMinutes()))
	for _, kind := range models.OffsetKinds {
		r, _ := cfg.Reminder(kind)
		state := "off"
		if r.Active() {
			state = "on"
		}
		fmt.Printf("  %-11s %-3s  %d %s before bedtime\n", kind, state, r.Offset, r.Unit)
	}

	fmt.Println("\nNext notifications:")
	for _, n := range ctx.Scheduler.Plan(cfg) {
		fmt.Printf("  %s  %-11s %s\n", n.FireAt.Format("Mon 15:04"), n.Kind, n.Title)
	}

	pending, err := ctx.Outbox.Pending()
	if err != nil {
		return err
	}
	fmt.Printf("\n%d notification(s) registered.\n", len(pending))
	return nil
}

type RemindersSetCmd struct {
	Kind    string `arg:"" enum:"blueLight,roomTemp,caffeine,lateEating" help:"Reminder (blueLight, roomTemp, caffeine, lateEating)."`
	Enable  bool   `help:"Turn the reminder on." xor:"state"`
	Disable bool   `help:"Turn the reminder off." xor:"state"`
	Offset  int    `help:"Offset before bedtime (minutes for blueLight/roomTemp, hours for caffeine/lateEating)." default:"-1"`
}

func (c *RemindersSetCmd) Run(ctx *Context) error {
	kind, ok := models.ParseReminderKind(c.Kind)
	if !ok {
		return fmt.Errorf("unknown reminder %q", c.Kind)
	}

	cfg, err := ctx.ReminderConfig()
	if err != nil {
		return err
	}
	r, _ := cfg.Reminder(kind)
	switch {
	case c.Enable:
		r.Enabled = true
	case c.Disable:
		r.Enabled = false
	}
	if c.Offset >= 0 {
		r.Offset = c.Offset
	}
	cfg.SetReminder(kind, r)

	if err := ctx.ApplyReminderConfig(cfg); err != nil {
		return err
	}

	if r.Active() {
		fmt.Printf("✓ %s: %d %s before bedtime\n", kind, r.Offset, r.Unit)
	} else {
		fmt.Printf("✓ %s: off\n", kind)
	}
	return nil
}

type RemindersScheduleCmd struct{}

func (c *RemindersScheduleCmd) Run(ctx *Context) error {
	cfg, err := ctx.ReminderConfig()
	if err != nil {
		return err
	}

	runCtx, cancel := withTimeout(30 * time.Second)
	defer cancel()

	if err := ctx.Scheduler.ScheduleAll(runCtx, cfg); err != nil {
		PrintPermissionHint(ctx.Scheduler.PermissionState())
		return err
	}
	pending, err := ctx.Outbox.Pending()
	if err != nil {
		return err
	}
	fmt.Printf("✓ %d reminder(s) scheduled\n", len(pending))
	return nil
}
