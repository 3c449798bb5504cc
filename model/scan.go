package model

// ScanStatus is the persisted state of a guild's scan job.
type ScanStatus string

const (
	ScanIdle      ScanStatus = "idle"
	ScanScanning  ScanStatus = "scanning"
	ScanCompleted ScanStatus = "completed"
	ScanCancelled ScanStatus = "cancelled"
	ScanFailed    ScanStatus = "failed"
)

// Terminal reports whether the status is a finished state.
func (s ScanStatus) Terminal() bool {
	return s == ScanCompleted || s == ScanCancelled || s == ScanFailed
}

// ScanProgress is the live/last-run record for a guild's scan. Counters are
// mutated continuously while a scan runs and read by status commands.
type ScanProgress struct {
	GuildID         string     `db:"guild_id"`
	Status          ScanStatus `db:"status"`
	TotalChannels   int64      `db:"total_channels"`
	ScannedChannels int64      `db:"scanned_channels"`
	ScannedMessages int64      `db:"scanned_messages"`
	EmojisFound     int64      `db:"emojis_found"`
	StartedAt       int64      `db:"started_at"`
	CompletedAt     int64      `db:"completed_at"`
	LastError       string     `db:"last_error"`
}

// SyncMode selects how a scan treats existing data.
type SyncMode string

const (
	// SyncAppend resumes after the guild's watermark when resolvable.
	SyncAppend SyncMode = "append"
	// SyncRescan deletes all existing usage rows for the guild first,
	// unless the scan is a dry run.
	SyncRescan SyncMode = "rescan"
)

// ScanOptions is the per-run configuration of a scan job.
type ScanOptions struct {
	// ChannelID limits the scan to one channel; empty means all
	// non-ignored channels in the guild.
	ChannelID string
	SyncMode  SyncMode
	DryRun    bool
}
