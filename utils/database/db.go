// Package database is the SQLite persistence layer: the six analytics
// entities plus the filtered and grouped aggregate queries the commands are
// built on.
package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init opens the database and ensures all tables exist.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS emoji_usage (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			guild_id TEXT NOT NULL,
			channel_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			message_id TEXT NOT NULL,
			emoji_id TEXT NOT NULL DEFAULT '',
			emoji_name TEXT NOT NULL,
			animated INTEGER NOT NULL DEFAULT 0,
			is_external INTEGER NOT NULL DEFAULT 0,
			is_reaction INTEGER NOT NULL DEFAULT 0,
			count INTEGER NOT NULL DEFAULT 1,
			timestamp INTEGER NOT NULL,
			message_timestamp INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_usage_guild_emoji ON emoji_usage(guild_id, emoji_id, emoji_name);`,
		`CREATE INDEX IF NOT EXISTS idx_usage_guild_user ON emoji_usage(guild_id, user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_usage_guild_channel ON emoji_usage(guild_id, channel_id);`,
		`CREATE INDEX IF NOT EXISTS idx_usage_guild_message ON emoji_usage(guild_id, message_id);`,
		`CREATE TABLE IF NOT EXISTS guild_configs (
			guild_id TEXT NOT NULL PRIMARY KEY,
			default_scan_scope TEXT NOT NULL DEFAULT 'server',
			ignored_channels TEXT NOT NULL DEFAULT '',
			ignored_categories TEXT NOT NULL DEFAULT '',
			thread_policy TEXT NOT NULL DEFAULT 'active_only',
			tracking_mode TEXT NOT NULL DEFAULT 'all',
			allow_external INTEGER NOT NULL DEFAULT 1,
			admin_override_roles TEXT NOT NULL DEFAULT '',
			track_edits INTEGER NOT NULL DEFAULT 1,
			retain_deleted INTEGER NOT NULL DEFAULT 1,
			last_scan_timestamp INTEGER NOT NULL DEFAULT 0,
			last_scan_message_id TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS emoji_filters (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			guild_id TEXT NOT NULL,
			emoji_id TEXT NOT NULL DEFAULT '',
			emoji_name TEXT NOT NULL,
			filter_type TEXT NOT NULL,
			UNIQUE(guild_id, emoji_id, emoji_name, filter_type)
		);`,
		`CREATE TABLE IF NOT EXISTS datasets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			guild_id TEXT NOT NULL,
			name TEXT NOT NULL,
			channel_ids TEXT NOT NULL DEFAULT '',
			created_by TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			UNIQUE(guild_id, name)
		);`,
		`CREATE TABLE IF NOT EXISTS component_settings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			guild_id TEXT NOT NULL,
			target TEXT NOT NULL,
			show_ids INTEGER,
			show_percentages INTEGER,
			compact_mode INTEGER,
			tie_grouping TEXT,
			UNIQUE(guild_id, target)
		);`,
		`CREATE TABLE IF NOT EXISTS scan_progress (
			guild_id TEXT NOT NULL PRIMARY KEY,
			status TEXT NOT NULL DEFAULT 'idle',
			total_channels INTEGER NOT NULL DEFAULT 0,
			scanned_channels INTEGER NOT NULL DEFAULT 0,
			scanned_messages INTEGER NOT NULL DEFAULT 0,
			emojis_found INTEGER NOT NULL DEFAULT 0,
			started_at INTEGER NOT NULL DEFAULT 0,
			completed_at INTEGER NOT NULL DEFAULT 0,
			last_error TEXT NOT NULL DEFAULT ''
		);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return db, nil
}

// joinIDs and splitIDs carry id lists in a single TEXT column.
func joinIDs(ids []string) string {
	return strings.Join(ids, ",")
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
