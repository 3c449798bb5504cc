package model

// TrackingMode selects which emoji get recorded for a guild.
type TrackingMode string

const (
	TrackAll       TrackingMode = "all"
	TrackWhitelist TrackingMode = "whitelist"
	TrackBlacklist TrackingMode = "blacklist"
)

// ThreadPolicy controls how threads are handled during scanning.
type ThreadPolicy string

const (
	ThreadsIgnore     ThreadPolicy = "ignore_all"
	ThreadsActiveOnly ThreadPolicy = "active_only"
	ThreadsAll        ThreadPolicy = "all_threads"
)

// ScanScope is the default breadth of a scan.
type ScanScope string

const (
	ScopeServer   ScanScope = "server"
	ScopeCategory ScanScope = "category"
	ScopeChannel  ScanScope = "channel"
)

// GuildConfig holds per-guild tracking configuration. Created lazily on
// first access and never deleted.
type GuildConfig struct {
	GuildID            string
	DefaultScanScope   ScanScope
	IgnoredChannels    []string
	IgnoredCategories  []string
	ThreadPolicy       ThreadPolicy
	TrackingMode       TrackingMode
	AllowExternal      bool
	AdminOverrideRoles []string
	TrackEdits         bool
	RetainDeleted      bool
	LastScanTimestamp  int64
	// LastScanMessageID is the watermark an append-mode scan resumes after.
	LastScanMessageID string
}

// IsChannelIgnored reports whether a channel or its category is on the
// guild's ignore lists.
func (c *GuildConfig) IsChannelIgnored(channelID, categoryID string) bool {
	for _, id := range c.IgnoredChannels {
		if id == channelID {
			return true
		}
	}
	if categoryID != "" {
		for _, id := range c.IgnoredCategories {
			if id == categoryID {
				return true
			}
		}
	}
	return false
}

// EmojiFilter is one whitelist or blacklist entry. Unique per
// (guild, emoji identity, filter type).
type EmojiFilter struct {
	ID         int64        `db:"id"`
	GuildID    string       `db:"guild_id"`
	EmojiID    string       `db:"emoji_id"`
	EmojiName  string       `db:"emoji_name"`
	FilterType TrackingMode `db:"filter_type"`
}

// Dataset is a user-defined saved set of channel ids, unique per
// (guild, name).
type Dataset struct {
	ID         int64
	GuildID    string
	Name       string
	ChannelIDs []string
	CreatedBy  string
	CreatedAt  int64
}
