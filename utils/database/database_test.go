package database

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emoticon-bot/emoji"
	"emoticon-bot/model"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Init(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func insertUsage(t *testing.T, db *sqlx.DB, u model.EmojiUsage) {
	t.Helper()
	if u.Count == 0 {
		u.Count = 1
	}
	if u.Timestamp == 0 {
		u.Timestamp = time.Now().Unix()
	}
	require.NoError(t, InsertUsage(db, &u))
}

func TestGuildConfigDefaults(t *testing.T) {
	db := newTestDB(t)

	cfg, err := GetOrCreateGuildConfig(db, "g1")
	require.NoError(t, err)
	assert.Equal(t, model.ScopeServer, cfg.DefaultScanScope)
	assert.Equal(t, model.ThreadsActiveOnly, cfg.ThreadPolicy)
	assert.Equal(t, model.TrackAll, cfg.TrackingMode)
	assert.True(t, cfg.AllowExternal)
	assert.True(t, cfg.TrackEdits)
	assert.True(t, cfg.RetainDeleted)
	assert.Empty(t, cfg.IgnoredChannels)
}

func TestGuildConfigRoundTrip(t *testing.T) {
	db := newTestDB(t)

	cfg, err := GetOrCreateGuildConfig(db, "g1")
	require.NoError(t, err)

	cfg.TrackingMode = model.TrackWhitelist
	cfg.IgnoredChannels = []string{"100", "200"}
	cfg.AdminOverrideRoles = []string{"555"}
	cfg.AllowExternal = false
	require.NoError(t, SaveGuildConfig(db, cfg))

	got, err := GetOrCreateGuildConfig(db, "g1")
	require.NoError(t, err)
	assert.Equal(t, model.TrackWhitelist, got.TrackingMode)
	assert.Equal(t, []string{"100", "200"}, got.IgnoredChannels)
	assert.Equal(t, []string{"555"}, got.AdminOverrideRoles)
	assert.False(t, got.AllowExternal)
}

func TestUpdateScanWatermark(t *testing.T) {
	db := newTestDB(t)

	_, err := GetOrCreateGuildConfig(db, "g1")
	require.NoError(t, err)
	require.NoError(t, UpdateScanWatermark(db, "g1", 1700000000, "999"))

	cfg, err := GetOrCreateGuildConfig(db, "g1")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), cfg.LastScanTimestamp)
	assert.Equal(t, "999", cfg.LastScanMessageID)
}

func TestTopEmojisOrderAndTies(t *testing.T) {
	db := newTestDB(t)

	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: "u1", MessageID: "m1", EmojiName: "pog", EmojiID: "1", Count: 5})
	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: "u1", MessageID: "m2", EmojiName: "kek", EmojiID: "2", Count: 3})
	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: "u2", MessageID: "m3", EmojiName: "lul", EmojiID: "3", Count: 3})

	rows, err := TopEmojis(db, &UsageFilter{GuildID: "g"}, 0, false)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "pog", rows[0].EmojiName)
	// tied counts keep first-recorded order
	assert.Equal(t, "kek", rows[1].EmojiName)
	assert.Equal(t, "lul", rows[2].EmojiName)

	asc, err := TopEmojis(db, &UsageFilter{GuildID: "g"}, 1, true)
	require.NoError(t, err)
	require.Len(t, asc, 1)
	assert.Equal(t, "kek", asc[0].EmojiName)
}

func TestTopEmojisUnicodeIdentity(t *testing.T) {
	db := newTestDB(t)

	// a unicode emoji and a custom emoji sharing a name stay distinct
	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: "u", MessageID: "m1", EmojiName: "😀"})
	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: "u", MessageID: "m2", EmojiName: "😀", EmojiID: "42"})

	rows, err := TopEmojis(db, &UsageFilter{GuildID: "g"}, 0, false)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	total, err := TotalCount(db, &UsageFilter{GuildID: "g", EmojiName: "😀", ExactEmoji: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestChannelFilterSemantics(t *testing.T) {
	db := newTestDB(t)

	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "100", UserID: "u", MessageID: "m1", EmojiName: "a"})
	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "200", UserID: "u", MessageID: "m2", EmojiName: "b"})

	total, err := TotalCount(db, &UsageFilter{GuildID: "g"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	total, err = TotalCount(db, &UsageFilter{GuildID: "g", Channels: []string{"100"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// non-nil empty channel list matches nothing
	total, err = TotalCount(db, &UsageFilter{GuildID: "g", Channels: []string{}})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	total, err = TotalCount(db, &UsageFilter{GuildID: "g", ExcludedChannels: []string{"200"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestDateRangeFilter(t *testing.T) {
	db := newTestDB(t)

	old := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: "u", MessageID: "m1", EmojiName: "a", MessageTimestamp: old.Unix()})
	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: "u", MessageID: "m2", EmojiName: "b", MessageTimestamp: recent.Unix()})

	cut := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	total, err := TotalCount(db, &UsageFilter{GuildID: "g", After: &cut})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	total, err = TotalCount(db, &UsageFilter{GuildID: "g", Before: &cut})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// the before bound is inclusive: a row at exactly the cut still counts
	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: "u", MessageID: "m3", EmojiName: "c", MessageTimestamp: cut.Unix()})
	total, err = TotalCount(db, &UsageFilter{GuildID: "g", Before: &cut})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestTopUsersExcludesBulkRows(t *testing.T) {
	db := newTestDB(t)

	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: "u1", MessageID: "m1", EmojiName: "a", Count: 2})
	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: model.BulkUserID, MessageID: "m2", EmojiName: "a", Count: 50, IsReaction: true})

	users, err := TopUsers(db, &UsageFilter{GuildID: "g"}, 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].UserID)

	// bulk rows still count toward emoji totals
	total, err := TotalCount(db, &UsageFilter{GuildID: "g"})
	require.NoError(t, err)
	assert.Equal(t, int64(52), total)
}

func TestTopUserDensity(t *testing.T) {
	db := newTestDB(t)

	// u1: 6 uses over 2 messages, u2: 4 uses over 1 message
	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: "u1", MessageID: "m1", EmojiName: "a", Count: 3})
	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: "u1", MessageID: "m2", EmojiName: "a", Count: 3})
	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: "u2", MessageID: "m3", EmojiName: "a", Count: 4})

	rows, err := TopUserDensity(db, &UsageFilter{GuildID: "g"}, 1, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "u2", rows[0].UserID)
	assert.InDelta(t, 4.0, rows[0].Density, 0.001)
	assert.InDelta(t, 3.0, rows[1].Density, 0.001)

	rows, err = TopUserDensity(db, &UsageFilter{GuildID: "g"}, 2, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "u1", rows[0].UserID)
}

func TestReactionSplitAndUniqueCount(t *testing.T) {
	db := newTestDB(t)

	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: "u", MessageID: "m1", EmojiName: "a", Count: 3})
	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: "u", MessageID: "m1", EmojiName: "b", IsReaction: true, Count: 2})

	messages, reactions, err := ReactionSplit(db, &UsageFilter{GuildID: "g"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), messages)
	assert.Equal(t, int64(2), reactions)

	unique, err := UniqueEmojiCount(db, &UsageFilter{GuildID: "g"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), unique)
}

func TestEmojiNameSubstringFilter(t *testing.T) {
	db := newTestDB(t)

	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: "u", MessageID: "m1", EmojiName: "pepeLaugh", EmojiID: "1"})
	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: "u", MessageID: "m2", EmojiName: "pepeCry", EmojiID: "2"})
	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: "u", MessageID: "m3", EmojiName: "kek", EmojiID: "3"})

	total, err := TotalCount(db, &UsageFilter{GuildID: "g", EmojiNames: []string{"pepe"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestDeleteMessageUsageKeepsReactions(t *testing.T) {
	db := newTestDB(t)

	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: "u", MessageID: "m1", EmojiName: "a"})
	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: "u", MessageID: "m1", EmojiName: "b", IsReaction: true})

	require.NoError(t, DeleteMessageUsage(db, "g", "m1"))

	messages, reactions, err := ReactionSplit(db, &UsageFilter{GuildID: "g"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), messages)
	assert.Equal(t, int64(1), reactions)

	require.NoError(t, PurgeMessageUsage(db, "g", "m1"))
	total, err := TotalCount(db, &UsageFilter{GuildID: "g"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestDeleteOneReaction(t *testing.T) {
	db := newTestDB(t)

	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: "u", MessageID: "m1", EmojiName: "a", IsReaction: true})
	insertUsage(t, db, model.EmojiUsage{GuildID: "g", ChannelID: "c", UserID: "u", MessageID: "m1", EmojiName: "a", IsReaction: true})

	require.NoError(t, DeleteOneReaction(db, "g", "m1", "u", "", "a"))

	total, err := TotalCount(db, &UsageFilter{GuildID: "g"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestDeleteGuildUsageScopedToGuild(t *testing.T) {
	db := newTestDB(t)

	insertUsage(t, db, model.EmojiUsage{GuildID: "g1", ChannelID: "c", UserID: "u", MessageID: "m1", EmojiName: "a"})
	insertUsage(t, db, model.EmojiUsage{GuildID: "g2", ChannelID: "c", UserID: "u", MessageID: "m2", EmojiName: "a"})

	require.NoError(t, DeleteGuildUsage(db, "g1"))

	count, err := UsageRowCount(db, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestShouldTrack(t *testing.T) {
	db := newTestDB(t)
	cfg := &model.GuildConfig{GuildID: "g", TrackingMode: model.TrackAll, AllowExternal: true}

	ok, err := ShouldTrack(db, cfg, &emoji.Extracted{Name: "a"})
	require.NoError(t, err)
	assert.True(t, ok)

	cfg.AllowExternal = false
	ok, err = ShouldTrack(db, cfg, &emoji.Extracted{Name: "a", ID: "1", IsExternal: true})
	require.NoError(t, err)
	assert.False(t, ok)

	cfg.TrackingMode = model.TrackWhitelist
	ok, err = ShouldTrack(db, cfg, &emoji.Extracted{Name: "a"})
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, AddEmojiFilter(db, &model.EmojiFilter{GuildID: "g", EmojiName: "a", FilterType: model.TrackWhitelist}))
	ok, err = ShouldTrack(db, cfg, &emoji.Extracted{Name: "a"})
	require.NoError(t, err)
	assert.True(t, ok)

	cfg.TrackingMode = model.TrackBlacklist
	require.NoError(t, AddEmojiFilter(db, &model.EmojiFilter{GuildID: "g", EmojiName: "b", FilterType: model.TrackBlacklist}))
	ok, err = ShouldTrack(db, cfg, &emoji.Extracted{Name: "b"})
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = ShouldTrack(db, cfg, &emoji.Extracted{Name: "a"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEmojiFilterCRUD(t *testing.T) {
	db := newTestDB(t)

	f := &model.EmojiFilter{GuildID: "g", EmojiID: "1", EmojiName: "a", FilterType: model.TrackWhitelist}
	require.NoError(t, AddEmojiFilter(db, f))
	// duplicates are ignored
	require.NoError(t, AddEmojiFilter(db, f))

	filters, err := ListEmojiFilters(db, "g", string(model.TrackWhitelist))
	require.NoError(t, err)
	assert.Len(t, filters, 1)

	removed, err := RemoveEmojiFilter(db, "g", "1", "a", string(model.TrackWhitelist))
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = RemoveEmojiFilter(db, "g", "1", "a", string(model.TrackWhitelist))
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestDatasets(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, CreateDataset(db, "g", "mains", []string{"100", "200"}, "u1"))
	err := CreateDataset(db, "g", "mains", []string{"300"}, "u1")
	assert.ErrorIs(t, err, ErrDatasetExists)

	ds, err := GetDataset(db, "g", "mains")
	require.NoError(t, err)
	require.NotNil(t, ds)
	assert.Equal(t, []string{"100", "200"}, ds.ChannelIDs)

	missing, err := GetDataset(db, "g", "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := ListDatasets(db, "g")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	deleted, err := DeleteDataset(db, "g", "mains")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = DeleteDataset(db, "g", "mains")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestComponentSettingsNullFieldsInherit(t *testing.T) {
	db := newTestDB(t)

	compact := true
	require.NoError(t, SaveComponentSettings(db, "g", model.TargetLeaderboard,
		model.PartialRenderSettings{CompactMode: &compact}))

	p, err := GetComponentSettings(db, "g", model.TargetLeaderboard)
	require.NoError(t, err)
	require.NotNil(t, p.CompactMode)
	assert.True(t, *p.CompactMode)
	assert.Nil(t, p.ShowIDs)
	assert.Nil(t, p.TieGrouping)

	// missing target rows are an all-inherit tier
	p, err = GetComponentSettings(db, "g", model.TargetProfile)
	require.NoError(t, err)
	assert.True(t, p.IsZero())

	require.NoError(t, ResetComponentSettings(db, "g", model.TargetLeaderboard))
	p, err = GetComponentSettings(db, "g", model.TargetLeaderboard)
	require.NoError(t, err)
	assert.True(t, p.IsZero())
}

func TestScanProgressUpsert(t *testing.T) {
	db := newTestDB(t)

	missing, err := GetScanProgress(db, "g")
	require.NoError(t, err)
	assert.Nil(t, missing)

	p := &model.ScanProgress{GuildID: "g", Status: model.ScanScanning, TotalChannels: 5, StartedAt: 100}
	require.NoError(t, SaveScanProgress(db, p))

	p.Status = model.ScanCompleted
	p.ScannedChannels = 5
	p.ScannedMessages = 1234
	p.CompletedAt = 200
	require.NoError(t, SaveScanProgress(db, p))

	got, err := GetScanProgress(db, "g")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.ScanCompleted, got.Status)
	assert.Equal(t, int64(1234), got.ScannedMessages)
	assert.True(t, got.Status.Terminal())
}
