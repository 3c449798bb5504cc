package query

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGuild() *discordgo.Guild {
	return &discordgo.Guild{
		ID: "guild1",
		Channels: []*discordgo.Channel{
			{ID: "100", Name: "general"},
			{ID: "200", Name: "general-chat"},
			{ID: "300", Name: "memes"},
		},
		Members: []*discordgo.Member{
			{User: &discordgo.User{ID: "1", Username: "alice"}, Nick: "Al"},
			{User: &discordgo.User{ID: "2", Username: "bob"}},
		},
	}
}

func TestParseCombinedQuery(t *testing.T) {
	p := NewParser(testGuild())

	q := p.Parse("#general -@12345 after:2024-01-01 --compact")

	assert.Equal(t, []string{"100"}, q.Channels)
	assert.Equal(t, []string{"12345"}, q.ExcludedUsers)
	require.NotNil(t, q.DateAfter)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *q.DateAfter)
	require.NotNil(t, q.Flags.CompactMode)
	assert.True(t, *q.Flags.CompactMode)
	assert.Empty(t, q.Warnings)
}

func TestParseChannelByNameCaseInsensitive(t *testing.T) {
	p := NewParser(testGuild())

	q := p.Parse("#GeNeRaL -#memes")
	assert.Equal(t, []string{"100"}, q.Channels)
	assert.Equal(t, []string{"300"}, q.ExcludedChannels)
}

func TestParseUserByNameAndNick(t *testing.T) {
	p := NewParser(testGuild())

	q := p.Parse("@alice -@bob")
	assert.Equal(t, []string{"1"}, q.Users)
	assert.Equal(t, []string{"2"}, q.ExcludedUsers)

	q = p.Parse("@Al")
	assert.Equal(t, []string{"1"}, q.Users)
}

func TestParseUnresolvedRefWarnsAndKeepsOthers(t *testing.T) {
	p := NewParser(testGuild())

	q := p.Parse("#nope #general @ghost")
	assert.Equal(t, []string{"100"}, q.Channels)
	assert.Empty(t, q.Users)
	require.Len(t, q.Warnings, 2)
	assert.Contains(t, q.Warnings[0], "Could not resolve channel: nope")
	assert.Contains(t, q.Warnings[1], "Could not resolve user: ghost")
}

func TestParseSuggestsCloseNames(t *testing.T) {
	p := NewParser(testGuild())

	q := p.Parse("#generel")
	require.Len(t, q.Warnings, 1)
	assert.Contains(t, q.Warnings[0], "did you mean")
	assert.Contains(t, q.Warnings[0], "general")
}

func TestParseInvalidDateWarnsNonFatal(t *testing.T) {
	p := NewParser(testGuild())

	q := p.Parse("#general after:2024-13-40")
	assert.Nil(t, q.DateAfter)
	assert.Equal(t, []string{"100"}, q.Channels)
	require.Len(t, q.Warnings, 1)
	assert.Contains(t, q.Warnings[0], "Invalid date")
}

func TestParseFlagsStrippedBeforeFilterScan(t *testing.T) {
	p := NewParser(testGuild())

	q := p.Parse("--no-ids --no-percentages --expanded")
	require.NotNil(t, q.Flags.ShowIDs)
	assert.False(t, *q.Flags.ShowIDs)
	require.NotNil(t, q.Flags.ShowPercentages)
	assert.False(t, *q.Flags.ShowPercentages)
	require.NotNil(t, q.Flags.CompactMode)
	assert.False(t, *q.Flags.CompactMode)
	// Nothing left over should parse as a filter.
	assert.Empty(t, q.Channels)
	assert.Empty(t, q.Users)
	assert.Empty(t, q.Warnings)
}

func TestParseRoleAndEmojiFilters(t *testing.T) {
	p := NewParser(testGuild())

	q := p.Parse("role:Staff emoji:pepe emoji:kek")
	assert.Equal(t, []string{"Staff"}, q.Roles)
	assert.Equal(t, []string{"pepe", "kek"}, q.Emojis)
}

func TestParseEmptyQuery(t *testing.T) {
	q := NewParser(nil).Parse("")
	assert.Empty(t, q.Channels)
	assert.Empty(t, q.Warnings)
	assert.True(t, q.Flags.IsZero())
}
