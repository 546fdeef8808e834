package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/sleepr/internal/keyring"
	"github.com/julianstephens/sleepr/internal/notifier"
	"github.com/julianstephens/sleepr/internal/utils"
	"github.com/julianstephens/sleepr/internal/validation"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false

	if err := checkStoreReachable(ctx); err != nil {
		fmt.Printf("❌ Storage reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Storage reachable: OK\n")

		if err := checkReminderSettings(ctx); err != nil {
			fmt.Printf("❌ Reminder settings: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Reminder settings: OK\n")
		}
	}

	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Printf("⚠ Backups present: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Backups present: OK\n")
	}

	if err := checkNotifications(ctx); err != nil {
		fmt.Printf("⚠ Notifications: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Notifications: OK\n")
	}

	if !keyring.IsAvailable() {
		fmt.Printf("⚠ OS keyring: WARNING\n")
		fmt.Printf("   keyring unavailable; PostgreSQL and subscription credentials cannot be stored\n")
	} else {
		fmt.Printf("✓ OS keyring: OK\n")
	}

	if err := checkClockTimezone(ctx); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	if _, err := ctx.Store.Keys(); err != nil {
		return fmt.Errorf("failed to query storage: %w", err)
	}
	return nil
}

func checkReminderSettings(ctx *Context) error {
	cfg, err := ctx.ReminderConfig()
	if err != nil {
		return err
	}
	return validation.ValidateReminderConfig(cfg)
}

func checkBackupsPresent(ctx *Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'sleepr backup create'")
	}
	return nil
}

func checkNotifications(ctx *Context) error {
	runCtx, cancel := withTimeout(5 * time.Second)
	defer cancel()

	p, err := ctx.Outbox.RequestPermission(runCtx)
	if err != nil {
		return err
	}
	if p != notifier.PermissionGranted {
		return fmt.Errorf("notifications are off or the %s sender is unavailable", ctx.Config.Notifier.Sender)
	}
	return nil
}

func checkClockTimezone(ctx *Context) error {
	if _, err := utils.LoadLocation(ctx.Config.Timezone); err != nil {
		return err
	}

	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	_, offset := now.Zone()
	if offset == 0 && now.Location() == time.UTC {
		fmt.Printf("   Note: timezone is UTC\n")
	}
	return nil
}
