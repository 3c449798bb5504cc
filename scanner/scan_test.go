package scanner

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emoticon-bot/model"
	"emoticon-bot/utils/database"
)

type fakeFetcher struct {
	mu                 sync.Mutex
	channels           []*discordgo.Channel
	messages           map[string][]*discordgo.Message
	reactionUsers      map[string][]*discordgo.User
	forbiddenReactions map[string]bool
	pages              int
	onPage             func(page int)
}

func forbiddenErr() error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}
}

func (f *fakeFetcher) GuildChannels(string, ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	return f.channels, nil
}

func (f *fakeFetcher) GuildThreadsActive(string, ...discordgo.RequestOption) (*discordgo.ThreadsList, error) {
	return &discordgo.ThreadsList{}, nil
}

func (f *fakeFetcher) ThreadsArchived(string, *time.Time, int, ...discordgo.RequestOption) (*discordgo.ThreadsList, error) {
	return &discordgo.ThreadsList{}, nil
}

func (f *fakeFetcher) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	var out []*discordgo.Message
	for _, m := range f.messages[channelID] {
		if afterID == "" || (m.ID != afterID && laterSnowflake(m.ID, afterID) == m.ID) {
			out = append(out, m)
		}
		if len(out) == limit {
			break
		}
	}
	f.mu.Lock()
	f.pages++
	page := f.pages
	f.mu.Unlock()
	if f.onPage != nil {
		f.onPage(page)
	}
	return out, nil
}

func (f *fakeFetcher) MessageReactions(channelID, messageID, emojiID string, limit int, beforeID, afterID string, _ ...discordgo.RequestOption) ([]*discordgo.User, error) {
	key := channelID + ":" + messageID + ":" + emojiID
	if f.forbiddenReactions[key] {
		return nil, forbiddenErr()
	}
	if afterID != "" {
		return nil, nil
	}
	return f.reactionUsers[key], nil
}

func newTestManager(t *testing.T) (*Manager, *sqlx.DB) {
	t.Helper()
	db, err := database.Init(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewManager(db, log, Config{}), db
}

func testGuild() *discordgo.Guild {
	return &discordgo.Guild{
		ID:     "g",
		Emojis: []*discordgo.Emoji{{ID: "111", Name: "pepe"}},
	}
}

func msg(id, author, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        id,
		Author:    &discordgo.User{ID: author},
		Content:   content,
		Timestamp: time.Now(),
	}
}

func waitDone(t *testing.T, job *Job) {
	t.Helper()
	select {
	case <-job.Done():
	case <-time.After(30 * time.Second):
		t.Fatal("scan did not finish in time")
	}
}

func TestScanRecordsMessagesAndReactions(t *testing.T) {
	m, db := newTestManager(t)

	reacted := msg("1002", "u2", "\U0001F600\U0001F600")
	reacted.Reactions = []*discordgo.MessageReactions{{
		Count: 2,
		Emoji: &discordgo.Emoji{ID: "111", Name: "pepe"},
	}}
	bot := msg("1003", "bot", "<:pepe:111>")
	bot.Author.Bot = true

	f := &fakeFetcher{
		channels: []*discordgo.Channel{{ID: "c1", Type: discordgo.ChannelTypeGuildText}},
		messages: map[string][]*discordgo.Message{
			"c1": {msg("1001", "u1", "hi <:pepe:111>"), reacted, bot},
		},
		reactionUsers: map[string][]*discordgo.User{
			"c1:1002:pepe:111": {{ID: "u1"}, {ID: "u2"}, {ID: "b", Bot: true}},
		},
	}

	job, err := m.Start(f, testGuild(), model.ScanOptions{SyncMode: model.SyncAppend}, nil)
	require.NoError(t, err)
	waitDone(t, job)

	// 1 custom + 2 unicode + 2 attributed reactions
	total, err := database.TotalCount(db, &database.UsageFilter{GuildID: "g"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	_, reactions, err := database.ReactionSplit(db, &database.UsageFilter{GuildID: "g"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), reactions)

	progress, err := database.GetScanProgress(db, "g")
	require.NoError(t, err)
	require.NotNil(t, progress)
	assert.Equal(t, model.ScanCompleted, progress.Status)
	assert.Equal(t, int64(1), progress.TotalChannels)
	// the bot-authored message still counts as scanned
	assert.Equal(t, int64(3), progress.ScannedMessages)

	cfg, err := database.GetOrCreateGuildConfig(db, "g")
	require.NoError(t, err)
	assert.Equal(t, "1003", cfg.LastScanMessageID)
}

func TestScanForbiddenReactionFallsBackToBulk(t *testing.T) {
	m, db := newTestManager(t)

	reacted := msg("1001", "u1", "")
	reacted.Reactions = []*discordgo.MessageReactions{{
		Count: 4,
		Emoji: &discordgo.Emoji{ID: "111", Name: "pepe"},
	}}

	f := &fakeFetcher{
		channels:           []*discordgo.Channel{{ID: "c1", Type: discordgo.ChannelTypeGuildText}},
		messages:           map[string][]*discordgo.Message{"c1": {reacted}},
		forbiddenReactions: map[string]bool{"c1:1001:pepe:111": true},
	}

	job, err := m.Start(f, testGuild(), model.ScanOptions{SyncMode: model.SyncAppend}, nil)
	require.NoError(t, err)
	waitDone(t, job)

	total, err := database.TotalCount(db, &database.UsageFilter{GuildID: "g"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	// bulk rows never surface in user rankings
	users, err := database.TopUsers(db, &database.UsageFilter{GuildID: "g"}, 0)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestScanAppendResumesAfterWatermark(t *testing.T) {
	m, db := newTestManager(t)

	f := &fakeFetcher{
		channels: []*discordgo.Channel{{ID: "c1", Type: discordgo.ChannelTypeGuildText}},
		messages: map[string][]*discordgo.Message{
			"c1": {msg("1001", "u1", "<:pepe:111>"), msg("1002", "u1", "<:pepe:111>")},
		},
	}

	_, err := database.GetOrCreateGuildConfig(db, "g")
	require.NoError(t, err)
	require.NoError(t, database.UpdateScanWatermark(db, "g", time.Now().Unix(), "1001"))

	job, err := m.Start(f, testGuild(), model.ScanOptions{SyncMode: model.SyncAppend}, nil)
	require.NoError(t, err)
	waitDone(t, job)

	total, err := database.TotalCount(db, &database.UsageFilter{GuildID: "g"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestScanDryRunRescanPreservesData(t *testing.T) {
	m, db := newTestManager(t)

	seed := &model.EmojiUsage{
		GuildID: "g", ChannelID: "c0", UserID: "u9", MessageID: "m0",
		EmojiName: "old", Timestamp: 1, Count: 1,
	}
	require.NoError(t, database.InsertUsage(db, seed))

	f := &fakeFetcher{
		channels: []*discordgo.Channel{{ID: "c1", Type: discordgo.ChannelTypeGuildText}},
		messages: map[string][]*discordgo.Message{
			"c1": {msg("1001", "u1", "<:pepe:111>")},
		},
	}

	job, err := m.Start(f, testGuild(), model.ScanOptions{SyncMode: model.SyncRescan, DryRun: true}, nil)
	require.NoError(t, err)
	waitDone(t, job)

	// nothing deleted, nothing written
	total, err := database.TotalCount(db, &database.UsageFilter{GuildID: "g"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	progress, err := database.GetScanProgress(db, "g")
	require.NoError(t, err)
	require.NotNil(t, progress)
	assert.Equal(t, model.ScanCompleted, progress.Status)
	assert.Equal(t, int64(1), progress.EmojisFound)

	cfg, err := database.GetOrCreateGuildConfig(db, "g")
	require.NoError(t, err)
	assert.Empty(t, cfg.LastScanMessageID)
}

func TestScanSecondStartReturnsErrScanActive(t *testing.T) {
	m, _ := newTestManager(t)

	var msgs []*discordgo.Message
	for i := 0; i < 250; i++ {
		msgs = append(msgs, msg(fmt.Sprintf("%04d", 1000+i), "u1", "\U0001F600"))
	}
	f := &fakeFetcher{
		channels: []*discordgo.Channel{{ID: "c1", Type: discordgo.ChannelTypeGuildText}},
		messages: map[string][]*discordgo.Message{"c1": msgs},
	}

	job, err := m.Start(f, testGuild(), model.ScanOptions{SyncMode: model.SyncAppend}, nil)
	require.NoError(t, err)

	_, err = m.Start(f, testGuild(), model.ScanOptions{SyncMode: model.SyncAppend}, nil)
	assert.ErrorIs(t, err, ErrScanActive)

	require.True(t, m.Stop("g"))
	waitDone(t, job)
	assert.Nil(t, m.Running("g"))
}

func TestScanCancelReleasesLockAndPersistsStatus(t *testing.T) {
	m, db := newTestManager(t)

	var msgs []*discordgo.Message
	for i := 0; i < 250; i++ {
		msgs = append(msgs, msg(fmt.Sprintf("%04d", 1000+i), "u1", "\U0001F600"))
	}
	f := &fakeFetcher{
		channels: []*discordgo.Channel{{ID: "c1", Type: discordgo.ChannelTypeGuildText}},
		messages: map[string][]*discordgo.Message{"c1": msgs},
	}
	f.onPage = func(page int) {
		if page == 1 {
			m.Stop("g")
		}
	}

	job, err := m.Start(f, testGuild(), model.ScanOptions{SyncMode: model.SyncAppend}, nil)
	require.NoError(t, err)
	waitDone(t, job)

	progress, err := database.GetScanProgress(db, "g")
	require.NoError(t, err)
	require.NotNil(t, progress)
	assert.Equal(t, model.ScanCancelled, progress.Status)

	// a cancelled guild can start a new scan right away
	f2 := &fakeFetcher{channels: []*discordgo.Channel{}, messages: map[string][]*discordgo.Message{}}
	job2, err := m.Start(f2, testGuild(), model.ScanOptions{SyncMode: model.SyncAppend}, nil)
	require.NoError(t, err)
	waitDone(t, job2)
}
