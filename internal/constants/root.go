package constants

import "time"

const (
	AppName            = "sleepr"
	Version            = "v0.3.0"
	DefaultKeyringUser = "database-connection"
	PaywallKeyringUser = "paywall-api-key"
	DefaultConfigPath  = "~/.config/sleepr/sleepr.db"
	ConfigFileName     = "config.yaml"
	EnvPrefix          = "SLEEPR"

	// DateFormat is the local calendar date format used for completion keys (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the time-of-day format accepted on the command line (HH:MM)
	TimeFormat = "15:04"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "sleepr-"
	BackupFileSuffix = ".db"

	LogDirName = "logs"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "sleepr-notifier.lock"
	NotificationDurationMs = 8000
	TrayAppIdentifier      = "com.julianstephens.sleepr"
	TrayExecutablePrefix   = "sleepr-tray"

	// Scheduling constants
	DefaultDebounce         = 1000 * time.Millisecond
	DefaultGraceWindow      = 60 * time.Second
	DefaultStaleness        = 10 * time.Minute
	DefaultDispatchInterval = 15 * time.Second
	DefaultPaywallTimeout   = 5 * time.Second
	WindDownLead            = 60 // minutes before bedtime

	DaysInWeek = 7
)
