package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"emoticon-bot/model"
)

type componentSettingsRow struct {
	ID              int64          `db:"id"`
	GuildID         string         `db:"guild_id"`
	Target          string         `db:"target"`
	ShowIDs         sql.NullBool   `db:"show_ids"`
	ShowPercentages sql.NullBool   `db:"show_percentages"`
	CompactMode     sql.NullBool   `db:"compact_mode"`
	TieGrouping     sql.NullString `db:"tie_grouping"`
}

func (r *componentSettingsRow) toPartial() model.PartialRenderSettings {
	var p model.PartialRenderSettings
	if r.ShowIDs.Valid {
		v := r.ShowIDs.Bool
		p.ShowIDs = &v
	}
	if r.ShowPercentages.Valid {
		v := r.ShowPercentages.Bool
		p.ShowPercentages = &v
	}
	if r.CompactMode.Valid {
		v := r.CompactMode.Bool
		p.CompactMode = &v
	}
	if r.TieGrouping.Valid {
		v := model.TieGrouping(r.TieGrouping.String)
		p.TieGrouping = &v
	}
	return p
}

func nullBool(b *bool) interface{} {
	if b == nil {
		return nil
	}
	return *b
}

// GetComponentSettings loads the stored settings tier for one target. A
// missing row is an all-inherit tier, not an error.
func GetComponentSettings(db *sqlx.DB, guildID string, target model.SettingsTarget) (model.PartialRenderSettings, error) {
	var row componentSettingsRow
	err := db.Get(&row, `SELECT * FROM component_settings WHERE guild_id = ? AND target = ?`,
		guildID, string(target))
	if errors.Is(err, sql.ErrNoRows) {
		return model.PartialRenderSettings{}, nil
	}
	if err != nil {
		return model.PartialRenderSettings{}, fmt.Errorf("failed to get %s settings: %w", target, err)
	}
	return row.toPartial(), nil
}

// SaveComponentSettings upserts the settings tier for one target. Nil
// fields are stored as NULL and keep inheriting.
func SaveComponentSettings(db *sqlx.DB, guildID string, target model.SettingsTarget, p model.PartialRenderSettings) error {
	var tie interface{}
	if p.TieGrouping != nil {
		tie = string(*p.TieGrouping)
	}
	_, err := db.Exec(`INSERT INTO component_settings
			(guild_id, target, show_ids, show_percentages, compact_mode, tie_grouping)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(guild_id, target) DO UPDATE SET
			show_ids = excluded.show_ids,
			show_percentages = excluded.show_percentages,
			compact_mode = excluded.compact_mode,
			tie_grouping = excluded.tie_grouping`,
		guildID, string(target),
		nullBool(p.ShowIDs), nullBool(p.ShowPercentages), nullBool(p.CompactMode), tie)
	if err != nil {
		return fmt.Errorf("failed to save %s settings: %w", target, err)
	}
	return nil
}

// ResetComponentSettings deletes the stored tier so every field inherits
// again.
func ResetComponentSettings(db *sqlx.DB, guildID string, target model.SettingsTarget) error {
	_, err := db.Exec(`DELETE FROM component_settings WHERE guild_id = ? AND target = ?`,
		guildID, string(target))
	if err != nil {
		return fmt.Errorf("failed to reset %s settings: %w", target, err)
	}
	return nil
}
