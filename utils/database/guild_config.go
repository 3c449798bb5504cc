package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"emoticon-bot/model"
)

type guildConfigRow struct {
	GuildID            string `db:"guild_id"`
	DefaultScanScope   string `db:"default_scan_scope"`
	IgnoredChannels    string `db:"ignored_channels"`
	IgnoredCategories  string `db:"ignored_categories"`
	ThreadPolicy       string `db:"thread_policy"`
	TrackingMode       string `db:"tracking_mode"`
	AllowExternal      bool   `db:"allow_external"`
	AdminOverrideRoles string `db:"admin_override_roles"`
	TrackEdits         bool   `db:"track_edits"`
	RetainDeleted      bool   `db:"retain_deleted"`
	LastScanTimestamp  int64  `db:"last_scan_timestamp"`
	LastScanMessageID  string `db:"last_scan_message_id"`
}

func (r *guildConfigRow) toModel() *model.GuildConfig {
	return &model.GuildConfig{
		GuildID:            r.GuildID,
		DefaultScanScope:   model.ScanScope(r.DefaultScanScope),
		IgnoredChannels:    splitIDs(r.IgnoredChannels),
		IgnoredCategories:  splitIDs(r.IgnoredCategories),
		ThreadPolicy:       model.ThreadPolicy(r.ThreadPolicy),
		TrackingMode:       model.TrackingMode(r.TrackingMode),
		AllowExternal:      r.AllowExternal,
		AdminOverrideRoles: splitIDs(r.AdminOverrideRoles),
		TrackEdits:         r.TrackEdits,
		RetainDeleted:      r.RetainDeleted,
		LastScanTimestamp:  r.LastScanTimestamp,
		LastScanMessageID:  r.LastScanMessageID,
	}
}

// GetOrCreateGuildConfig returns the guild's config, inserting the default
// row on first access.
func GetOrCreateGuildConfig(db *sqlx.DB, guildID string) (*model.GuildConfig, error) {
	cfg, err := getGuildConfig(db, guildID)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// INSERT OR IGNORE keeps concurrent first accesses from racing.
	_, err = db.Exec(`INSERT OR IGNORE INTO guild_configs (guild_id) VALUES (?)`, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to create guild config for %s: %w", guildID, err)
	}
	return getGuildConfig(db, guildID)
}

func getGuildConfig(db *sqlx.DB, guildID string) (*model.GuildConfig, error) {
	var row guildConfigRow
	err := db.Get(&row, `SELECT * FROM guild_configs WHERE guild_id = ?`, guildID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get guild config for %s: %w", guildID, err)
	}
	return row.toModel(), nil
}

// SaveGuildConfig writes every field of the config back, last writer wins.
func SaveGuildConfig(db *sqlx.DB, cfg *model.GuildConfig) error {
	row := guildConfigRow{
		GuildID:            cfg.GuildID,
		DefaultScanScope:   string(cfg.DefaultScanScope),
		IgnoredChannels:    joinIDs(cfg.IgnoredChannels),
		IgnoredCategories:  joinIDs(cfg.IgnoredCategories),
		ThreadPolicy:       string(cfg.ThreadPolicy),
		TrackingMode:       string(cfg.TrackingMode),
		AllowExternal:      cfg.AllowExternal,
		AdminOverrideRoles: joinIDs(cfg.AdminOverrideRoles),
		TrackEdits:         cfg.TrackEdits,
		RetainDeleted:      cfg.RetainDeleted,
		LastScanTimestamp:  cfg.LastScanTimestamp,
		LastScanMessageID:  cfg.LastScanMessageID,
	}

	_, err := db.NamedExec(`INSERT INTO guild_configs (
			guild_id, default_scan_scope, ignored_channels, ignored_categories,
			thread_policy, tracking_mode, allow_external, admin_override_roles,
			track_edits, retain_deleted, last_scan_timestamp, last_scan_message_id
		) VALUES (
			:guild_id, :default_scan_scope, :ignored_channels, :ignored_categories,
			:thread_policy, :tracking_mode, :allow_external, :admin_override_roles,
			:track_edits, :retain_deleted, :last_scan_timestamp, :last_scan_message_id
		) ON CONFLICT(guild_id) DO UPDATE SET
			default_scan_scope = excluded.default_scan_scope,
			ignored_channels = excluded.ignored_channels,
			ignored_categories = excluded.ignored_categories,
			thread_policy = excluded.thread_policy,
			tracking_mode = excluded.tracking_mode,
			allow_external = excluded.allow_external,
			admin_override_roles = excluded.admin_override_roles,
			track_edits = excluded.track_edits,
			retain_deleted = excluded.retain_deleted,
			last_scan_timestamp = excluded.last_scan_timestamp,
			last_scan_message_id = excluded.last_scan_message_id`, row)
	if err != nil {
		return fmt.Errorf("failed to save guild config for %s: %w", cfg.GuildID, err)
	}
	return nil
}

// UpdateScanWatermark records the last completed scan time and the message
// id an append-mode scan should resume after.
func UpdateScanWatermark(db *sqlx.DB, guildID string, timestamp int64, lastMessageID string) error {
	_, err := db.Exec(`UPDATE guild_configs
		SET last_scan_timestamp = ?, last_scan_message_id = ?
		WHERE guild_id = ?`, timestamp, lastMessageID, guildID)
	if err != nil {
		return fmt.Errorf("failed to update scan watermark for %s: %w", guildID, err)
	}
	return nil
}
