package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"emoticon-bot/model"
)

// GetScanProgress returns the guild's scan record, or nil when no scan has
// ever run.
func GetScanProgress(db *sqlx.DB, guildID string) (*model.ScanProgress, error) {
	var p model.ScanProgress
	err := db.Get(&p, `SELECT * FROM scan_progress WHERE guild_id = ?`, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan progress: %w", err)
	}
	return &p, nil
}

// SaveScanProgress upserts the guild's scan record.
func SaveScanProgress(db *sqlx.DB, p *model.ScanProgress) error {
	_, err := db.NamedExec(`INSERT INTO scan_progress (
			guild_id, status, total_channels, scanned_channels,
			scanned_messages, emojis_found, started_at, completed_at, last_error
		) VALUES (
			:guild_id, :status, :total_channels, :scanned_channels,
			:scanned_messages, :emojis_found, :started_at, :completed_at, :last_error
		)
		ON CONFLICT(guild_id) DO UPDATE SET
			status = excluded.status,
			total_channels = excluded.total_channels,
			scanned_channels = excluded.scanned_channels,
			scanned_messages = excluded.scanned_messages,
			emojis_found = excluded.emojis_found,
			started_at = excluded.started_at,
			completed_at = excluded.completed_at,
			last_error = excluded.last_error`, p)
	if err != nil {
		return fmt.Errorf("failed to save scan progress: %w", err)
	}
	return nil
}
