package emoticon

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emoticon-bot/model"
	"emoticon-bot/permissions"
	"emoticon-bot/query"
	"emoticon-bot/utils/database"
)

func testGuild() *discordgo.Guild {
	return &discordgo.Guild{
		ID:      "guild1",
		OwnerID: "owner",
		Roles: []*discordgo.Role{
			{ID: "guild1", Name: "@everyone", Permissions: 0},
			{ID: "r-staff", Name: "Staff"},
			{ID: "r-ghost", Name: "Ghost"},
		},
		Channels: []*discordgo.Channel{
			{ID: "secret", Type: discordgo.ChannelTypeGuildText},
		},
		Members: []*discordgo.Member{
			{User: &discordgo.User{ID: "u1", Username: "alice"}, Roles: []string{"r-staff"}},
			{User: &discordgo.User{ID: "u2", Username: "bob"}, Roles: []string{"r-staff"}},
			{User: &discordgo.User{ID: "u3", Username: "carol"}},
		},
	}
}

func denyAll(userID, channelID string) (int64, error) {
	return 0, nil
}

// a viewer with no viewable channels must see no data, not all of it
func TestVisibleChannelsEmptyMatchesNothing(t *testing.T) {
	guild := testGuild()
	pf := permissions.NewFilter(guild, nil, denyAll)
	viewer := &discordgo.Member{User: &discordgo.User{ID: "u3"}}

	channels := visibleChannels(pf, viewer, nil)
	require.NotNil(t, channels)
	assert.Empty(t, channels)

	channels = visibleChannels(pf, viewer, []string{"secret"})
	require.NotNil(t, channels)
	assert.Empty(t, channels)

	db, err := database.Init(":memory:")
	require.NoError(t, err)
	defer db.Close()
	for n := 0; n < 7; n++ {
		require.NoError(t, database.InsertUsage(db, &model.EmojiUsage{
			GuildID: "guild1", ChannelID: "secret", UserID: "u1",
			MessageID: "m1", EmojiName: "grin", Count: 1,
			Timestamp: time.Now().Unix(), MessageTimestamp: time.Now().Unix(),
		}))
	}

	total, err := database.TotalCount(db, &database.UsageFilter{GuildID: "guild1", Channels: channels})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestRoleMembersResolvesName(t *testing.T) {
	guild := testGuild()
	parsed := &query.ParsedQuery{}

	users := roleMembers(guild, parsed, "staff")
	assert.ElementsMatch(t, []string{"u1", "u2"}, users)
	assert.Empty(t, parsed.Warnings)

	users = roleMembers(guild, parsed, "r-staff")
	assert.ElementsMatch(t, []string{"u1", "u2"}, users)
}

func TestRoleMembersUnresolvableWarns(t *testing.T) {
	guild := testGuild()
	parsed := &query.ParsedQuery{}

	users := roleMembers(guild, parsed, "stafff")
	assert.Empty(t, users)
	require.Len(t, parsed.Warnings, 1)
	assert.Contains(t, parsed.Warnings[0], "Could not resolve role: stafff")
	assert.Contains(t, parsed.Warnings[0], "Staff")
}

// a role nobody holds must filter everything out, not nothing
func TestRoleMembersEmptyRoleMatchesNothing(t *testing.T) {
	guild := testGuild()
	parsed := &query.ParsedQuery{}

	users := roleMembers(guild, parsed, "Ghost")
	assert.Equal(t, []string{noMatchUser}, users)
	assert.Empty(t, parsed.Warnings)
}
