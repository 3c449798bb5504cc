package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"emoticon-bot/emoji"
	"emoticon-bot/model"
)

// AddEmojiFilter inserts a whitelist or blacklist entry, ignoring
// duplicates.
func AddEmojiFilter(db *sqlx.DB, f *model.EmojiFilter) error {
	_, err := db.NamedExec(`INSERT OR IGNORE INTO emoji_filters
			(guild_id, emoji_id, emoji_name, filter_type)
		VALUES (:guild_id, :emoji_id, :emoji_name, :filter_type)`, f)
	if err != nil {
		return fmt.Errorf("failed to add emoji filter: %w", err)
	}
	return nil
}

// RemoveEmojiFilter deletes a filter entry and reports whether one existed.
func RemoveEmojiFilter(db *sqlx.DB, guildID, emojiID, emojiName, filterType string) (bool, error) {
	res, err := db.Exec(`DELETE FROM emoji_filters
		WHERE guild_id = ? AND emoji_id = ? AND emoji_name = ? AND filter_type = ?`,
		guildID, emojiID, emojiName, filterType)
	if err != nil {
		return false, fmt.Errorf("failed to remove emoji filter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// ListEmojiFilters returns all filter entries of one type for a guild.
func ListEmojiFilters(db *sqlx.DB, guildID, filterType string) ([]model.EmojiFilter, error) {
	var filters []model.EmojiFilter
	err := db.Select(&filters, `SELECT * FROM emoji_filters
		WHERE guild_id = ? AND filter_type = ? ORDER BY id ASC`, guildID, filterType)
	if err != nil {
		return nil, fmt.Errorf("failed to list emoji filters: %w", err)
	}
	return filters, nil
}

func hasEmojiFilter(db *sqlx.DB, guildID, emojiID, emojiName, filterType string) (bool, error) {
	var count int64
	err := db.Get(&count, `SELECT COUNT(*) FROM emoji_filters
		WHERE guild_id = ? AND emoji_id = ? AND emoji_name = ? AND filter_type = ?`,
		guildID, emojiID, emojiName, filterType)
	if err != nil {
		return false, fmt.Errorf("failed to check emoji filter: %w", err)
	}
	return count > 0, nil
}

// ShouldTrack decides whether an extracted emoji is recorded for a guild,
// applying the external-emoji policy and then the tracking mode.
func ShouldTrack(db *sqlx.DB, cfg *model.GuildConfig, e *emoji.Extracted) (bool, error) {
	if e.IsExternal && !cfg.AllowExternal {
		return false, nil
	}
	switch cfg.TrackingMode {
	case model.TrackWhitelist:
		return hasEmojiFilter(db, cfg.GuildID, e.ID, e.Name, string(model.TrackWhitelist))
	case model.TrackBlacklist:
		listed, err := hasEmojiFilter(db, cfg.GuildID, e.ID, e.Name, string(model.TrackBlacklist))
		if err != nil {
			return false, err
		}
		return !listed, nil
	default:
		return true, nil
	}
}
