package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/sleepr/internal/config"
	"github.com/julianstephens/sleepr/internal/models"
	"github.com/julianstephens/sleepr/internal/notifier"
	"github.com/julianstephens/sleepr/internal/paywall"
	"github.com/julianstephens/sleepr/internal/reminder"
	"github.com/julianstephens/sleepr/internal/storage"
	"github.com/julianstephens/sleepr/internal/tracker"
	"github.com/julianstephens/sleepr/internal/utils"
	"github.com/julianstephens/sleepr/internal/validation"
)

type Context struct {
	Store      storage.Provider
	Config     *config.AppConfig
	ConfigPath string

	Tracker   *tracker.Tracker
	Ledger    *reminder.Ledger
	Outbox    *notifier.Outbox
	Scheduler *reminder.Scheduler
	Paywall   paywall.Service
	Gate      *paywall.Gate

	Now func() time.Time
}

// NewContext wires the tracker, scheduler, outbox and paywall gate around store. Nothing is
// read from the store until a command asks for it.
func NewContext(store storage.Provider, cfg *config.AppConfig, sender notifier.Sender) (*Context, error) {
	loc, err := utils.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	return newContext(store, cfg, sender, func() time.Time { return time.Now().In(loc) })
}

func newContext(store storage.Provider, cfg *config.AppConfig, sender notifier.Sender, now func() time.Time) (*Context, error) {
	strategy, err := reminder.ParseStrategy(cfg.Recurrence)
	if err != nil {
		return nil, err
	}

	if sender == nil {
		sender = newSender(cfg)
	}

	ledger := reminder.NewLedger(store)
	outbox := notifier.NewOutbox(store, sender,
		notifier.WithClock(now),
		notifier.WithGraceWindow(cfg.GraceWindow()),
		notifier.WithStaleness(cfg.Staleness()),
		notifier.WithClaimer(ledger),
	)
	sched := reminder.New(outbox, ledger,
		reminder.WithClock(now),
		reminder.WithGraceWindow(cfg.GraceWindow()),
		reminder.WithDebounce(cfg.Debounce()),
		reminder.WithStrategy(strategy),
		reminder.WithConfigSource(func() (models.ReminderConfig, error) {
			return storage.LoadReminderConfig(store, now())
		}),
	)
	outbox.OnDelivered(sched.OnDelivered)

	svc := paywall.NewHTTPService(cfg.Paywall.BaseURL)

	return &Context{
		Store:     store,
		Config:    cfg,
		Tracker:   tracker.New(store, tracker.WithClock(now)),
		Ledger:    ledger,
		Outbox:    outbox,
		Scheduler: sched,
		Paywall:   svc,
		Gate:      paywall.NewGate(svc, cfg.PaywallTimeout()),
		Now:       now,
	}, nil
}

func newSender(cfg *config.AppConfig) notifier.Sender {
	if cfg.Notifier.Sender == "stdout" {
		return notifier.NewWriterSender(os.Stdout)
	}
	return notifier.NewTraySender()
}

// ReminderConfig reads bedtime and reminder settings anchored on today.
func (c *Context) ReminderConfig() (models.ReminderConfig, error) {
	cfg, err := storage.LoadReminderConfig(c.Store, c.Now())
	if err != nil {
		return cfg, fmt.Errorf("failed to load reminder settings: %w", err)
	}
	return cfg, nil
}

// ApplyReminderConfig validates and saves cfg, refreshes the checklist's bonus habits and
// reschedules every reminder.
func (c *Context) ApplyReminderConfig(cfg models.ReminderConfig) error {
	if err := validation.ValidateReminderConfig(cfg); err != nil {
		return err
	}
	if err := storage.SaveReminderConfig(c.Store, cfg); err != nil {
		return fmt.Errorf("failed to save reminder settings: %w", err)
	}

	c.Tracker.LoadState()
	c.Tracker.SetBonusHabits(cfg.Bonus())

	c.Scheduler.OnConfigChanged(cfg)
	c.Scheduler.Flush()
	if c.Scheduler.PermissionState() != reminder.PermissionGranted {
		fmt.Println("Reminders are saved but notifications are off. Run 'sleepr notifications enable'.")
	}
	return nil
}

// PrintPermissionHint explains what the user can do about a permission state.
func PrintPermissionHint(state reminder.PermissionState) {
	switch state {
	case reminder.PermissionGranted:
		fmt.Println("✓ Notifications enabled")
	case reminder.PermissionNeedsSettings:
		fmt.Println("❌ Notifications are still blocked.")
		fmt.Println("   Start the sleepr tray app, or set 'notifier.sender: stdout' in config.yaml,")
		fmt.Println("   then run 'sleepr notifications enable' again.")
	default:
		fmt.Println("⚠ Notifications are not available right now. Run 'sleepr notifications enable' to try again.")
	}
}

func withTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}
