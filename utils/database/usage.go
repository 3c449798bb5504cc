package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"emoticon-bot/model"
)

// InsertUsage records one emoji usage event.
func InsertUsage(db *sqlx.DB, u *model.EmojiUsage) error {
	_, err := db.NamedExec(`INSERT INTO emoji_usage (
			guild_id, channel_id, user_id, message_id, emoji_id, emoji_name,
			animated, is_external, is_reaction, count, timestamp, message_timestamp
		) VALUES (
			:guild_id, :channel_id, :user_id, :message_id, :emoji_id, :emoji_name,
			:animated, :is_external, :is_reaction, :count, :timestamp, :message_timestamp
		)`, u)
	if err != nil {
		return fmt.Errorf("failed to insert emoji usage: %w", err)
	}
	return nil
}

// DeleteMessageUsage removes the message's non-reaction rows, the first
// step of edit reconciliation (delete then recreate from current content).
func DeleteMessageUsage(db *sqlx.DB, guildID, messageID string) error {
	_, err := db.Exec(`DELETE FROM emoji_usage
		WHERE guild_id = ? AND message_id = ? AND is_reaction = 0`, guildID, messageID)
	if err != nil {
		return fmt.Errorf("failed to delete usage for message %s: %w", messageID, err)
	}
	return nil
}

// PurgeMessageUsage removes every row for a deleted message, reactions
// included. Callers gate this on the retain-deleted policy.
func PurgeMessageUsage(db *sqlx.DB, guildID, messageID string) error {
	_, err := db.Exec(`DELETE FROM emoji_usage
		WHERE guild_id = ? AND message_id = ?`, guildID, messageID)
	if err != nil {
		return fmt.Errorf("failed to purge usage for message %s: %w", messageID, err)
	}
	return nil
}

// DeleteOneReaction removes a single user's reaction row for one emoji on
// one message.
func DeleteOneReaction(db *sqlx.DB, guildID, messageID, userID, emojiID, emojiName string) error {
	_, err := db.Exec(`DELETE FROM emoji_usage
		WHERE id IN (
			SELECT id FROM emoji_usage
			WHERE guild_id = ? AND message_id = ? AND user_id = ?
			  AND emoji_id = ? AND emoji_name = ? AND is_reaction = 1
			LIMIT 1
		)`, guildID, messageID, userID, emojiID, emojiName)
	if err != nil {
		return fmt.Errorf("failed to delete reaction usage on message %s: %w", messageID, err)
	}
	return nil
}

// DeleteGuildUsage wipes all usage rows for a guild, used by rescan mode.
func DeleteGuildUsage(db *sqlx.DB, guildID string) error {
	_, err := db.Exec(`DELETE FROM emoji_usage WHERE guild_id = ?`, guildID)
	if err != nil {
		return fmt.Errorf("failed to delete usage for guild %s: %w", guildID, err)
	}
	return nil
}

// UsageRowCount returns the number of stored rows for a guild (or all
// guilds with an empty id), for the runtime stats card.
func UsageRowCount(db *sqlx.DB, guildID string) (int64, error) {
	var count int64
	var err error
	if guildID == "" {
		err = db.Get(&count, `SELECT COUNT(*) FROM emoji_usage`)
	} else {
		err = db.Get(&count, `SELECT COUNT(*) FROM emoji_usage WHERE guild_id = ?`, guildID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count usage rows: %w", err)
	}
	return count, nil
}
