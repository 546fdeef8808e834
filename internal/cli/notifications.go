package cli

import (
	"context"
	"fmt"

	"github.com/julianstephens/sleepr/internal/reminder"
)

type NotificationsCmd struct {
	Status  NotificationsStatusCmd  `cmd:"" help:"Show whether notifications can be delivered." default:"1"`
	Enable  NotificationsEnableCmd  `cmd:"" help:"Allow notifications and schedule reminders."`
	Disable NotificationsDisableCmd `cmd:"" help:"Stop notifications and cancel reminders."`
}

type NotificationsStatusCmd struct{}

func (c *NotificationsStatusCmd) Run(ctx *Context) error {
	p, err := ctx.Outbox.RequestPermission(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Permission: %s\n", p)
	fmt.Printf("Sender:     %s\n", ctx.Config.Notifier.Sender)

	pending, err := ctx.Outbox.Pending()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println("No notifications registered.")
		return nil
	}
	fmt.Println("\nRegistered:")
	for _, n := range pending {
		repeat := "once"
		if n.Trigger.Daily {
			repeat = "daily"
		}
		fmt.Printf("  %s  %-5s  %s\n", n.NextFire.Format("Mon 15:04"), repeat, n.Content.Title)
	}
	return nil
}

type NotificationsEnableCmd struct{}

func (c *NotificationsEnableCmd) Run(ctx *Context) error {
	if err := ctx.Outbox.SetOptIn(true); err != nil {
		return fmt.Errorf("failed to save notification permission: %w", err)
	}

	runCtx := context.Background()
	state, err := ctx.Scheduler.RequestPermission(runCtx)
	PrintPermissionHint(state)
	if state != reminder.PermissionGranted {
		return err
	}

	cfg, err := ctx.ReminderConfig()
	if err != nil {
		return err
	}
	return ctx.Scheduler.ScheduleAll(runCtx, cfg)
}

type NotificationsDisableCmd struct{}

func (c *NotificationsDisableCmd) Run(ctx *Context) error {
	if err := ctx.Outbox.SetOptIn(false); err != nil {
		return fmt.Errorf("failed to save notification permission: %w", err)
	}
	if err := ctx.Outbox.CancelAll(context.Background()); err != nil {
		return err
	}
	fmt.Println("✓ Notifications disabled")
	return nil
}
