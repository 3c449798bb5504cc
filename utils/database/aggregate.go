package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"emoticon-bot/model"
)

// UsageFilter narrows aggregation queries. A nil Channels slice means no
// channel restriction; a non-nil empty slice matches nothing (the caller's
// permission filter stripped every channel).
type UsageFilter struct {
	GuildID          string
	Channels         []string
	ExcludedChannels []string
	Users            []string
	ExcludedUsers    []string
	// EmojiNames are substring-matched against emoji_name.
	EmojiNames []string
	// EmojiID/EmojiName select one exact emoji identity. EmojiID is set for
	// custom emoji; unicode identities use EmojiName with an empty EmojiID.
	EmojiID   string
	EmojiName string
	// ExactEmoji forces the identity match even when EmojiID is empty.
	ExactEmoji bool
	After      *time.Time
	Before     *time.Time
	// ReactionsOnly / MessagesOnly split the two usage sources.
	ReactionsOnly bool
	MessagesOnly  bool
	// ExcludeBulk drops rows attributed to the bulk pseudo-user, required
	// for any per-user grouping.
	ExcludeBulk bool
}

// EmojiCount is one leaderboard row grouped by emoji identity.
type EmojiCount struct {
	EmojiID   string `db:"emoji_id"`
	EmojiName string `db:"emoji_name"`
	Animated  bool   `db:"animated"`
	UseCount  int64  `db:"use_count"`
}

// UserCount is one leaderboard row grouped by user.
type UserCount struct {
	UserID   string `db:"user_id"`
	UseCount int64  `db:"use_count"`
}

// ChannelCount is one breakdown row grouped by channel.
type ChannelCount struct {
	ChannelID string `db:"channel_id"`
	UseCount  int64  `db:"use_count"`
}

// UserDensity pairs a user with uses-per-message density.
type UserDensity struct {
	UserID   string  `db:"user_id"`
	UseCount int64   `db:"use_count"`
	Messages int64   `db:"messages"`
	Density  float64 `db:"-"`
}

func (f *UsageFilter) where() (string, []interface{}) {
	clauses := []string{"guild_id = ?"}
	args := []interface{}{f.GuildID}

	in := func(column string, ids []string, negate bool) {
		if len(ids) == 0 {
			return
		}
		ph := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
		op := "IN"
		if negate {
			op = "NOT IN"
		}
		clauses = append(clauses, fmt.Sprintf("%s %s (%s)", column, op, ph))
		for _, id := range ids {
			args = append(args, id)
		}
	}

	if f.Channels != nil && len(f.Channels) == 0 {
		clauses = append(clauses, "1 = 0")
	}
	in("channel_id", f.Channels, false)
	in("channel_id", f.ExcludedChannels, true)
	in("user_id", f.Users, false)
	in("user_id", f.ExcludedUsers, true)

	if len(f.EmojiNames) > 0 {
		sub := make([]string, 0, len(f.EmojiNames))
		for _, name := range f.EmojiNames {
			sub = append(sub, "emoji_name LIKE ?")
			args = append(args, "%"+name+"%")
		}
		clauses = append(clauses, "("+strings.Join(sub, " OR ")+")")
	}

	if f.EmojiID != "" {
		clauses = append(clauses, "emoji_id = ?")
		args = append(args, f.EmojiID)
	} else if f.ExactEmoji {
		clauses = append(clauses, "emoji_name = ? AND emoji_id = ''")
		args = append(args, f.EmojiName)
	}

	if f.After != nil {
		clauses = append(clauses, "message_timestamp >= ?")
		args = append(args, f.After.Unix())
	}
	if f.Before != nil {
		// inclusive: an event at exactly the bound still counts
		clauses = append(clauses, "message_timestamp <= ?")
		args = append(args, f.Before.Unix())
	}

	if f.ReactionsOnly {
		clauses = append(clauses, "is_reaction = 1")
	}
	if f.MessagesOnly {
		clauses = append(clauses, "is_reaction = 0")
	}
	if f.ExcludeBulk {
		clauses = append(clauses, "user_id != ?")
		args = append(args, model.BulkUserID)
	}

	return strings.Join(clauses, " AND "), args
}

// TotalCount returns the summed usage count matching the filter.
func TotalCount(db *sqlx.DB, f *UsageFilter) (int64, error) {
	where, args := f.where()
	var total int64
	err := db.Get(&total, `SELECT COALESCE(SUM(count), 0) FROM emoji_usage WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to sum usage counts: %w", err)
	}
	return total, nil
}

// TopEmojis returns emoji grouped by identity ordered by use count. Ties
// break by first recorded row so ranks stay stable across runs. Pass
// ascending for the least-used view; limit <= 0 means no limit.
func TopEmojis(db *sqlx.DB, f *UsageFilter, limit int, ascending bool) ([]EmojiCount, error) {
	where, args := f.where()
	dir := "DESC"
	if ascending {
		dir = "ASC"
	}
	query := fmt.Sprintf(`SELECT emoji_id, emoji_name, MAX(animated) AS animated,
			SUM(count) AS use_count
		FROM emoji_usage WHERE %s
		GROUP BY emoji_id, emoji_name
		ORDER BY use_count %s, MIN(id) ASC`, where, dir)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	var rows []EmojiCount
	if err := db.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query top emoji: %w", err)
	}
	return rows, nil
}

// TopUsers returns users ordered by total usage. The bulk pseudo-user is
// always excluded from user groupings.
func TopUsers(db *sqlx.DB, f *UsageFilter, limit int) ([]UserCount, error) {
	filtered := *f
	filtered.ExcludeBulk = true
	where, args := filtered.where()
	query := `SELECT user_id, SUM(count) AS use_count
		FROM emoji_usage WHERE ` + where + `
		GROUP BY user_id
		ORDER BY use_count DESC, MIN(id) ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	var rows []UserCount
	if err := db.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query top users: %w", err)
	}
	return rows, nil
}

// TopUserDensity ranks users by uses per distinct message, filtering out
// users below minMessages so single-message outliers don't dominate.
func TopUserDensity(db *sqlx.DB, f *UsageFilter, minMessages int64, limit int) ([]UserDensity, error) {
	filtered := *f
	filtered.ExcludeBulk = true
	where, args := filtered.where()
	query := `SELECT user_id, SUM(count) AS use_count,
			COUNT(DISTINCT message_id) AS messages
		FROM emoji_usage WHERE ` + where + `
		GROUP BY user_id
		HAVING messages >= ?
		ORDER BY CAST(SUM(count) AS REAL) / COUNT(DISTINCT message_id) DESC, MIN(id) ASC`
	args = append(args, minMessages)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	var rows []UserDensity
	if err := db.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query user density: %w", err)
	}
	for i := range rows {
		if rows[i].Messages > 0 {
			rows[i].Density = float64(rows[i].UseCount) / float64(rows[i].Messages)
		}
	}
	return rows, nil
}

// TopChannels returns channels ordered by total usage.
func TopChannels(db *sqlx.DB, f *UsageFilter, limit int) ([]ChannelCount, error) {
	where, args := f.where()
	query := `SELECT channel_id, SUM(count) AS use_count
		FROM emoji_usage WHERE ` + where + `
		GROUP BY channel_id
		ORDER BY use_count DESC, MIN(id) ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	var rows []ChannelCount
	if err := db.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query top channels: %w", err)
	}
	return rows, nil
}

// UniqueEmojiCount counts distinct emoji identities matching the filter.
func UniqueEmojiCount(db *sqlx.DB, f *UsageFilter) (int64, error) {
	where, args := f.where()
	var count int64
	err := db.Get(&count, `SELECT COUNT(*) FROM (
			SELECT 1 FROM emoji_usage WHERE `+where+`
			GROUP BY emoji_id, emoji_name
		)`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count unique emoji: %w", err)
	}
	return count, nil
}

// ReactionSplit returns message-content and reaction usage totals.
func ReactionSplit(db *sqlx.DB, f *UsageFilter) (messages, reactions int64, err error) {
	where, args := f.where()
	var row struct {
		Messages  int64 `db:"messages"`
		Reactions int64 `db:"reactions"`
	}
	err = db.Get(&row, `SELECT
			COALESCE(SUM(CASE WHEN is_reaction = 0 THEN count ELSE 0 END), 0) AS messages,
			COALESCE(SUM(CASE WHEN is_reaction = 1 THEN count ELSE 0 END), 0) AS reactions
		FROM emoji_usage WHERE `+where, args...)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query reaction split: %w", err)
	}
	return row.Messages, row.Reactions, nil
}
