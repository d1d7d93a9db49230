package constants

import "time"

const (
	AppName            = "pokrok"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/pokrok"
	DefaultDBPath      = "~/.config/pokrok/pokrok.db"
	DefaultConfigFile  = "~/.config/pokrok/config.yaml"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "pokrok-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifierLockfileName   = "pokrok-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.pokrok"

	// Server defaults
	DefaultListenAddr   = "127.0.0.1:8420"
	DefaultServerURL    = "http://127.0.0.1:8420"
	DefaultCacheTTL     = 30 * time.Second
	DefaultPollInterval = 60 * time.Second
	MaxRequestBodyBytes = 1 << 20

	// NextOccurrenceScanLimit bounds the forward scan for recurring steps.
	NextOccurrenceScanLimit = 365

	// MaterializeDays is how far ahead "all"-mode recurring steps get instances.
	MaterializeDays = 28
)
