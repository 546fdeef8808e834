package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/sleepr/internal/config"
	"github.com/julianstephens/sleepr/internal/constants"
	sleeprerrors "github.com/julianstephens/sleepr/internal/errors"
	"github.com/julianstephens/sleepr/internal/models"
	"github.com/julianstephens/sleepr/internal/notifier"
	"github.com/julianstephens/sleepr/internal/storage"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

// Monday 3 June 2024, 20:00 local.
var mondayEvening = time.Date(2024, 6, 3, 20, 0, 0, 0, time.Local)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Timezone:            "Local",
		DebounceMs:          10,
		GraceSeconds:        60,
		StalenessSec:        600,
		Recurrence:          "daily",
		DispatchIntervalSec: 15,
		Paywall:             config.PaywallConfig{TimeoutSec: 1},
		Notifier:            config.NotifierConfig{Sender: "stdout"},
	}
}

func setupContext(t *testing.T, store storage.Provider) (*Context, *fakeClock, *bytes.Buffer) {
	t.Helper()
	clock := &fakeClock{t: mondayEvening}
	out := &bytes.Buffer{}
	ctx, err := newContext(store, testConfig(), notifier.NewWriterSender(out), clock.Now)
	if err != nil {
		t.Fatalf("failed to build context: %v", err)
	}
	t.Cleanup(ctx.Scheduler.Stop)
	ctx.Tracker.LoadState()
	return ctx, clock, out
}

func stubConfirm(t *testing.T, answer bool) {
	t.Helper()
	orig := confirmFunc
	confirmFunc = func(string, string) (bool, error) { return answer, nil }
	t.Cleanup(func() { confirmFunc = orig })
}

func pendingKinds(t *testing.T, ctx *Context) map[string]int {
	t.Helper()
	pending, err := ctx.Outbox.Pending()
	if err != nil {
		t.Fatalf("failed to read outbox: %v", err)
	}
	kinds := map[string]int{}
	for _, p := range pending {
		kinds[p.Content.Kind]++
	}
	return kinds
}

func completeMandatory(t *testing.T, ctx *Context) {
	t.Helper()
	for _, k := range models.MandatoryHabits {
		if err := (&HabitToggleCmd{Key: string(k)}).Run(ctx); err != nil {
			t.Fatalf("toggle %s: %v", k, err)
		}
	}
}

func TestHabitToggleCmd_UnknownKey(t *testing.T) {
	ctx, _, _ := setupContext(t, storage.NewMemoryStore())

	err := (&HabitToggleCmd{Key: "drinkWater"}).Run(ctx)
	if !errors.Is(err, sleeprerrors.ErrUnknownHabit) {
		t.Errorf("expected ErrUnknownHabit, got %v", err)
	}

	// Known but not on the checklist until caffeine reminders are on.
	err = (&HabitToggleCmd{Key: string(models.HabitAvoidCaffeine)}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "not on today's checklist") {
		t.Errorf("expected checklist error, got %v", err)
	}
}

func TestDayCompleteCmd(t *testing.T) {
	ctx, _, _ := setupContext(t, storage.NewMemoryStore())

	if err := (&DayCompleteCmd{}).Run(ctx); !errors.Is(err, sleeprerrors.ErrMandatoryIncomplete) {
		t.Fatalf("expected ErrMandatoryIncomplete, got %v", err)
	}

	completeMandatory(t, ctx)
	if err := (&DayCompleteCmd{}).Run(ctx); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if got := ctx.Tracker.State().Streak[0]; got != 3 {
		t.Errorf("expected Monday streak 3, got %d", got)
	}

	// Completing twice is reported, not an error.
	if err := (&DayCompleteCmd{}).Run(ctx); err != nil {
		t.Errorf("second complete should not fail: %v", err)
	}

	err := (&HabitToggleCmd{Key: string(models.HabitGoToBed)}).Run(ctx)
	if !errors.Is(err, sleeprerrors.ErrDayClosed) {
		t.Errorf("expected ErrDayClosed, got %v", err)
	}
}

func TestStreakResetCmd_Cancelled(t *testing.T) {
	ctx, _, _ := setupContext(t, storage.NewMemoryStore())
	completeMandatory(t, ctx)
	if err := (&DayCompleteCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	stubConfirm(t, false)
	if err := (&StreakResetCmd{}).Run(ctx); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if ctx.Tracker.State().Streak[0] != 3 {
		t.Error("cancelled reset must not touch the streak")
	}
}

func TestStreakResetCmd_BacksUpSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sleepr.db")
	store := storage.NewSQLiteStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx, _, _ := setupContext(t, store)
	completeMandatory(t, ctx)
	if err := (&DayCompleteCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	stubConfirm(t, true)
	if err := (&StreakResetCmd{}).Run(ctx); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	state := ctx.Tracker.State()
	if state.Streak != (models.StreakRecord{}) || state.Completion.LastCompletionDate != "" {
		t.Errorf("expected cleared state, got %+v", state)
	}

	entries, err := os.ReadDir(filepath.Join(filepath.Dir(dbPath), constants.BackupDirName))
	if err != nil {
		t.Fatalf("backup directory missing: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected one backup, got %d", len(entries))
	}
}

func TestBedtimeSetCmd(t *testing.T) {
	ctx, _, _ := setupContext(t, storage.NewMemoryStore())

	if err := (&BedtimeSetCmd{Time: "25:00"}).Run(ctx); err == nil {
		t.Error("expected error for invalid time")
	}

	if err := (&BedtimeSetCmd{Time: "23:30"}).Run(ctx); err != nil {
		t.Fatalf("set bedtime failed: %v", err)
	}
	cfg, err := ctx.ReminderConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BedtimeMinutes() != 23*60+30 {
		t.Errorf("bedtime = %d minutes", cfg.BedtimeMinutes())
	}

	// Without permission nothing is registered.
	if n := len(pendingKinds(t, ctx)); n != 0 {
		t.Errorf("expected no notifications without permission, got %d", n)
	}
}

func TestNotificationsEnableCmd_SchedulesReminders(t *testing.T) {
	ctx, _, _ := setupContext(t, storage.NewMemoryStore())

	if err := (&NotificationsEnableCmd{}).Run(ctx); err != nil {
		t.Fatalf("enable failed: %v", err)
	}
	kinds := pendingKinds(t, ctx)
	for _, k := range []models.ReminderKind{models.ReminderBlueLight, models.ReminderRoomTemp, models.ReminderWindDown} {
		if kinds[string(k)] != 1 {
			t.Errorf("expected one %s notification, got %d", k, kinds[string(k)])
		}
	}
	if len(kinds) != 3 {
		t.Errorf("unexpected notifications: %v", kinds)
	}

	cmd := &RemindersSetCmd{Kind: "caffeine", Enable: true, Offset: 6}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("reminders set failed: %v", err)
	}
	if kinds := pendingKinds(t, ctx); kinds[string(models.ReminderCaffeine)] != 1 || len(kinds) != 4 {
		t.Errorf("expected caffeine reminder to be added once, got %v", kinds)
	}
	if _, ok := ctx.Tracker.State().Habits[models.HabitAvoidCaffeine]; !ok {
		t.Error("caffeine habit should join the checklist")
	}

	if err := (&NotificationsDisableCmd{}).Run(ctx); err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	if n := len(pendingKinds(t, ctx)); n != 0 {
		t.Errorf("expected outbox to be empty, got %d", n)
	}
}

func TestRemindersSetCmd_RejectsLargeOffset(t *testing.T) {
	ctx, _, _ := setupContext(t, storage.NewMemoryStore())

	if err := (&RemindersSetCmd{Kind: "blueLight", Offset: 500}).Run(ctx); err == nil {
		t.Error("expected validation error")
	}
	cfg, _ := ctx.ReminderConfig()
	if cfg.BlueLight.Offset != constants.DefaultBlueLightMinutes {
		t.Errorf("invalid settings must not be saved, got offset %d", cfg.BlueLight.Offset)
	}
}

func TestDispatchOnce_DeliversDueReminders(t *testing.T) {
	ctx, clock, out := setupContext(t, storage.NewMemoryStore())
	if err := (&NotificationsEnableCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	runCtx := context.Background()

	n, err := dispatchOnce(runCtx, ctx)
	if err != nil || n != 0 {
		t.Fatalf("nothing is due at 20:00, got %d (err %v)", n, err)
	}

	// Blue light and wind-down are both due at 21:00. The catch-up path queues them too;
	// each still fires once.
	clock.t = time.Date(2024, 6, 3, 21, 0, 30, 0, time.Local)
	n, err = dispatchOnce(runCtx, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 deliveries, got %d:\n%s", n, out.String())
	}
	if !strings.Contains(out.String(), constants.BlueLightTitle) || !strings.Contains(out.String(), constants.WindDownTitle) {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	clock.t = clock.t.Add(30 * time.Second)
	if n, _ := dispatchOnce(runCtx, ctx); n != 0 {
		t.Errorf("expected no repeat deliveries, got %d", n)
	}
}

func TestDispatchOnce_RollsOverChecklist(t *testing.T) {
	ctx, clock, _ := setupContext(t, storage.NewMemoryStore())
	if err := (&HabitToggleCmd{Key: string(models.HabitGoToBed)}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	clock.t = time.Date(2024, 6, 4, 8, 0, 0, 0, time.Local)
	if _, err := dispatchOnce(context.Background(), ctx); err != nil {
		t.Fatal(err)
	}
	state := ctx.Tracker.State()
	if state.Today != "2024-06-04" || state.Habits[models.HabitGoToBed] {
		t.Errorf("expected a fresh checklist for 2024-06-04, got %+v", state)
	}
}

func TestDebugSetCompletionDateCmd(t *testing.T) {
	ctx, _, _ := setupContext(t, storage.NewMemoryStore())

	err := (&DebugSetCompletionDateCmd{Date: "03/06/2024"}).Run(ctx)
	if !errors.Is(err, sleeprerrors.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}

	if err := (&DebugSetCompletionDateCmd{Date: "yesterday"}).Run(ctx); err != nil {
		t.Fatalf("set completion date failed: %v", err)
	}
	state := ctx.Tracker.State()
	if state.Completion.LastCompletionDate != "2024-06-02" {
		t.Errorf("last completion = %q", state.Completion.LastCompletionDate)
	}
	if state.Streak[6] != 3 {
		t.Errorf("expected Sunday streak 3, got %d", state.Streak[6])
	}
	if state.Phase == models.PhaseClosed {
		t.Error("yesterday's completion must not close today")
	}
}

func TestDumpStore(t *testing.T) {
	ctx, _, _ := setupContext(t, storage.NewMemoryStore())
	if err := (&NotificationsEnableCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	dump, err := dumpStore(ctx)
	if err != nil {
		t.Fatalf("dump failed: %v", err)
	}
	if dump[constants.KeyNotificationPermission] != constants.PermissionGranted {
		t.Errorf("permission = %v", dump[constants.KeyNotificationPermission])
	}
	raw, ok := dump[constants.KeyScheduledNotifications].(json.RawMessage)
	if !ok {
		t.Fatalf("outbox should be embedded as JSON, got %T", dump[constants.KeyScheduledNotifications])
	}
	var pending []notifier.Pending
	if err := json.Unmarshal(raw, &pending); err != nil || len(pending) != 3 {
		t.Errorf("unexpected outbox %s (err %v)", raw, err)
	}
}

func TestBackupCmd_RequiresSQLite(t *testing.T) {
	ctx, _, _ := setupContext(t, storage.NewMemoryStore())

	if err := (&BackupCreateCmd{}).Run(ctx); err == nil {
		t.Error("expected error for non-SQLite store")
	}
	if err := (&BackupListCmd{}).Run(ctx); err == nil {
		t.Error("expected error for non-SQLite store")
	}
}

func TestSubscriptionStatusCmd_NotConfigured(t *testing.T) {
	ctx, _, _ := setupContext(t, storage.NewMemoryStore())

	start := time.Now()
	if err := (&SubscriptionStatusCmd{}).Run(ctx); err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("subscription check should not wait without a service")
	}
}
