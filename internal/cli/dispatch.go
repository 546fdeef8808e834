package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	sleeprerrors "github.com/julianstephens/sleepr/internal/errors"
	"github.com/julianstephens/sleepr/internal/logger"
)

// DispatchCmd stands in for the OS notification service: it delivers whatever is due, fires
// catch-up reminders and keeps the checklist's day current.
type DispatchCmd struct {
	Once bool `help:"Run a single pass and exit."`
}

func (c *DispatchCmd) Run(ctx *Context) error {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx.Tracker.LoadState()

	if c.Once {
		n, err := dispatchOnce(runCtx, ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Delivered %d notification(s)\n", n)
		return nil
	}

	cfg, err := ctx.ReminderConfig()
	if err != nil {
		return err
	}
	if err := ctx.Scheduler.ScheduleAll(runCtx, cfg); err != nil {
		if errors.Is(err, sleeprerrors.ErrPermissionDenied) {
			PrintPermissionHint(ctx.Scheduler.PermissionState())
		} else {
			logger.Warn("Initial schedule incomplete", "error", err)
		}
	}

	interval := ctx.Config.DispatchInterval()
	fmt.Printf("Dispatching notifications every %s (Ctrl+C to stop)\n", interval)
	logger.Info("Dispatcher started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := dispatchOnce(runCtx, ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Dispatch failed", "error", err)
		}
		select {
		case <-runCtx.Done():
			logger.Info("Dispatcher stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// dispatchOnce runs the rollover check, the catch-up check and one outbox pass.
func dispatchOnce(runCtx context.Context, ctx *Context) (int, error) {
	if ctx.Tracker.CheckRollover() {
		logger.Info("New day, checklist reset", "date", ctx.Tracker.State().Today)
	}

	cfg, err := ctx.ReminderConfig()
	if err != nil {
		return 0, err
	}
	fired, err := ctx.Scheduler.CheckAndFireNow(runCtx, cfg)
	switch {
	case errors.Is(err, sleeprerrors.ErrPermissionDenied):
		logger.Debug("Skipping catch-up, notifications not permitted")
	case err != nil:
		logger.Warn("Catch-up incomplete", "error", err)
	}
	if len(fired) > 0 {
		logger.Info("Catch-up reminders queued", "kinds", fired)
	}

	return ctx.Outbox.Dispatch(runCtx, ctx.Now())
}
