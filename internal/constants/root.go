package constants

import "time"

const (
	AppName            = "willdone"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/willdone/willdone.db"
	Version            = "v0.1.0"

	// DateTimeFormat is the persisted timestamp format (spec: YYYY-MM-DDTHH:MM:SS, local time, no offset).
	DateTimeFormat = "2006-01-02T15:04:05"

	// DateFormat is the calendar-day format used for date-scoped reads (YYYY-MM-DD).
	DateFormat = "2006-01-02"

	// ClockFormat is the zero-padded daily-recurrence time format (HH:MM).
	ClockFormat = "15:04"

	// DefaultTaskMinutes is used when a task's estimated duration is unknown (zero).
	DefaultTaskMinutes = 30

	// NotifyMaxRetries / NotifyRetryDelay bound the notify command's retries while the database is busy.
	NotifyMaxRetries = 3
	NotifyRetryDelay = 100 * time.Millisecond

	// TrayAppIdentifier names the companion tray process the notifier looks for.
	TrayAppIdentifier = "willdone-tray"

	// NotifierLockfileName is the file the tray process publishes its port/secret to.
	NotifierLockfileName = "willdone-tray.lock"

	// NotificationDurationMs is how long a toast notification stays visible.
	NotificationDurationMs = 5000
)

// BlockStatus is the finite enumeration of TimeBlock lifecycle states.
type BlockStatus string

const (
	BlockWILL      BlockStatus = "WILL"
	BlockNOW       BlockStatus = "NOW"
	BlockPENDING   BlockStatus = "PENDING"
	BlockDONE      BlockStatus = "DONE"
	BlockUNPLUGGED BlockStatus = "UNPLUGGED"
)

// TransitionAction is the finite enumeration of transitions process_transition accepts.
type TransitionAction string

const (
	CompleteOnTime TransitionAction = "COMPLETE_ON_TIME"
	CompleteNow    TransitionAction = "COMPLETE_NOW"
	CompleteAgo    TransitionAction = "COMPLETE_AGO"
	Delay          TransitionAction = "DELAY"
)
