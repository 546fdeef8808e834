package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/sleepr/internal/cli"
	"github.com/julianstephens/sleepr/internal/config"
	"github.com/julianstephens/sleepr/internal/constants"
	sleeprerrors "github.com/julianstephens/sleepr/internal/errors"
	"github.com/julianstephens/sleepr/internal/logger"
	"github.com/julianstephens/sleepr/internal/storage"
)

var CLI struct {
	Version   kong.VersionFlag
	Config    string `help:"SQLite path, *.json path, 'memory', or a PostgreSQL connection string ('postgres' reads it from the keyring or SLEEPR_DB_CONNECTION). Credentials must NOT be embedded in the connection string." type:"string" default:"~/.config/sleepr/sleepr.db"`
	AppConfig string `help:"Application config file." name:"app-config" type:"path" default:"~/.config/sleepr/config.yaml"`
	LogDebug  bool   `help:"Verbose logging to stderr." name:"debug"`

	Init          cli.InitCmd          `cmd:"" help:"Initialize sleepr storage."`
	Status        cli.StatusCmd        `cmd:"" help:"Show tonight's checklist and the weekly streak." default:"1"`
	Habit         cli.HabitCmd         `cmd:"" help:"Check off habits."`
	Day           cli.DayCmd           `cmd:"" help:"Complete the day."`
	Streak        cli.StreakCmd        `cmd:"" help:"Show or reset the streak."`
	Bedtime       cli.BedtimeCmd       `cmd:"" help:"Show or change the bedtime."`
	Reminders     cli.RemindersCmd     `cmd:"" help:"Manage bedtime reminders."`
	Notifications cli.NotificationsCmd `cmd:"" help:"Manage notification permission."`
	Dispatch      cli.DispatchCmd      `cmd:"" help:"Deliver due notifications (run in the background)."`
	Tui           cli.TuiCmd           `cmd:"" help:"Launch the interactive TUI."`
	Subscription  cli.SubscriptionCmd  `cmd:"" help:"Premium subscription."`
	Keyring       cli.KeyringCmd       `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Backup        cli.BackupCmd        `cmd:"" help:"Manage database backups."`
	ConfigCmd     cli.ConfigCmd        `cmd:"" name:"config" help:"Show or write the application config."`
	Doctor        cli.DoctorCmd        `cmd:"" help:"Run health checks and diagnostics."`
	Debug         cli.DebugCmd         `cmd:"" help:"Debug commands for troubleshooting."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Sleep-hygiene coach: nightly habit checklist, streaks and bedtime reminders"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	storePath := expandHome(CLI.Config)
	if err := logger.Init(logger.Config{Debug: CLI.LogDebug, Dir: logDir(storePath)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	appCfg, err := config.Load(CLI.AppConfig)
	if err != nil {
		sleeprerrors.Fatal(err)
	}

	command := ctx.Command()
	store, err := storage.Open(storePath)
	if err != nil {
		if needsStore(command) {
			sleeprerrors.Fatal(err)
		}
		store = storage.NewMemoryStore()
	}
	defer store.Close()

	appCtx, err := cli.NewContext(store, appCfg, nil)
	if err != nil {
		sleeprerrors.Fatal(err)
	}
	appCtx.ConfigPath = CLI.AppConfig

	if needsStore(command) && !strings.HasPrefix(command, "init") {
		if err := store.Load(); err != nil {
			sleeprerrors.Fatal(err)
		}
	}

	err = ctx.Run(appCtx)
	appCtx.Scheduler.Stop()
	if err != nil {
		store.Close()
		sleeprerrors.Fatal(err)
	}
}

// needsStore is false for commands that must work before a database is reachable.
func needsStore(command string) bool {
	for _, prefix := range []string{"keyring", "config", "subscription key"} {
		if strings.HasPrefix(command, prefix) {
			return false
		}
	}
	return true
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// logDir keeps logs next to a file store, or in the default config directory otherwise.
func logDir(storePath string) string {
	if storage.IsPostgresURL(storePath) || storePath == "postgres" || storePath == "memory" || storePath == ":memory:" {
		return expandHome(filepath.Dir(constants.DefaultConfigPath))
	}
	return filepath.Dir(storePath)
}
