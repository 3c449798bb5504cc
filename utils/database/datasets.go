package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"emoticon-bot/model"
)

// ErrDatasetExists is returned when a dataset name is already taken in the
// guild.
var ErrDatasetExists = errors.New("dataset name already exists")

// CreateDataset stores a named channel set for a guild.
func CreateDataset(db *sqlx.DB, guildID, name string, channelIDs []string, createdBy string) error {
	_, err := db.Exec(`INSERT INTO datasets (guild_id, name, channel_ids, created_by, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		guildID, name, joinIDs(channelIDs), createdBy, time.Now().Unix())
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return ErrDatasetExists
		}
		return fmt.Errorf("failed to create dataset %s: %w", name, err)
	}
	return nil
}

// DeleteDataset removes a dataset by name and reports whether it existed.
func DeleteDataset(db *sqlx.DB, guildID, name string) (bool, error) {
	res, err := db.Exec(`DELETE FROM datasets WHERE guild_id = ? AND name = ?`, guildID, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete dataset %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// GetDataset looks up a dataset by name. Returns nil without error when it
// does not exist.
func GetDataset(db *sqlx.DB, guildID, name string) (*model.Dataset, error) {
	var row datasetRow
	err := db.Get(&row, `SELECT * FROM datasets WHERE guild_id = ? AND name = ?`, guildID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset %s: %w", name, err)
	}
	return row.toModel(), nil
}

// ListDatasets returns all datasets for a guild ordered by creation.
func ListDatasets(db *sqlx.DB, guildID string) ([]model.Dataset, error) {
	var rows []datasetRow
	err := db.Select(&rows, `SELECT * FROM datasets WHERE guild_id = ? ORDER BY created_at ASC, id ASC`, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	out := make([]model.Dataset, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row.toModel())
	}
	return out, nil
}

type datasetRow struct {
	ID         int64  `db:"id"`
	GuildID    string `db:"guild_id"`
	Name       string `db:"name"`
	ChannelIDs string `db:"channel_ids"`
	CreatedBy  string `db:"created_by"`
	CreatedAt  int64  `db:"created_at"`
}

func (r *datasetRow) toModel() *model.Dataset {
	return &model.Dataset{
		ID:         r.ID,
		GuildID:    r.GuildID,
		Name:       r.Name,
		ChannelIDs: splitIDs(r.ChannelIDs),
		CreatedBy:  r.CreatedBy,
		CreatedAt:  r.CreatedAt,
	}
}
