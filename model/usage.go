package model

// BulkUserID is the reserved sentinel user id for usage rows ingested by a
// bulk import with no attributable author. Rows carrying it are excluded
// from per-user aggregations and rankings but still count toward emoji
// totals.
const BulkUserID = "0"

// EmojiUsage is one occurrence (or pre-aggregated count) of an emoji in a
// message or reaction. EmojiID is empty for unicode emoji; the two identity
// forms are mutually exclusive.
type EmojiUsage struct {
	ID         int64  `db:"id"`
	GuildID    string `db:"guild_id"`
	ChannelID  string `db:"channel_id"`
	UserID     string `db:"user_id"`
	MessageID  string `db:"message_id"`
	EmojiID    string `db:"emoji_id"`
	EmojiName  string `db:"emoji_name"`
	Animated   bool   `db:"animated"`
	IsExternal bool   `db:"is_external"`
	IsReaction bool   `db:"is_reaction"`
	Count      int64  `db:"count"`
	// Timestamp is when the row was recorded; MessageTimestamp is when the
	// message was sent. They differ for rows written by a historical scan,
	// and date-range filters apply to MessageTimestamp.
	Timestamp        int64 `db:"timestamp"`
	MessageTimestamp int64 `db:"message_timestamp"`
}

// IsCustom reports whether the usage refers to a custom (id-bearing) emoji.
func (u *EmojiUsage) IsCustom() bool {
	return u.EmojiID != ""
}
