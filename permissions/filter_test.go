package permissions

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"

	"emoticon-bot/model"
)

func testGuild() *discordgo.Guild {
	return &discordgo.Guild{
		ID:      "guild1",
		OwnerID: "owner",
		Roles: []*discordgo.Role{
			{ID: "guild1", Permissions: 0}, // @everyone
			{ID: "admins", Permissions: discordgo.PermissionAdministrator},
			{ID: "mods", Permissions: discordgo.PermissionManageMessages},
		},
		Channels: []*discordgo.Channel{
			{ID: "general", Type: discordgo.ChannelTypeGuildText},
			{ID: "secret", Type: discordgo.ChannelTypeGuildText},
			{ID: "voice", Type: discordgo.ChannelTypeGuildVoice},
		},
	}
}

func member(userID string, roles ...string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: userID}, Roles: roles}
}

// resolver that grants view on everything except "secret"
func openExceptSecret(userID, channelID string) (int64, error) {
	if channelID == "secret" {
		return 0, nil
	}
	return discordgo.PermissionViewChannel, nil
}

func TestHasOverrideOwner(t *testing.T) {
	f := NewFilter(testGuild(), nil, openExceptSecret)
	assert.True(t, f.HasOverride(member("owner")))
}

func TestHasOverrideAdministratorRole(t *testing.T) {
	f := NewFilter(testGuild(), nil, openExceptSecret)
	assert.True(t, f.HasOverride(member("u1", "admins")))
	assert.False(t, f.HasOverride(member("u1", "mods")))
}

func TestHasOverrideConfiguredRole(t *testing.T) {
	cfg := &model.GuildConfig{AdminOverrideRoles: []string{"mods"}}
	f := NewFilter(testGuild(), cfg, openExceptSecret)
	assert.True(t, f.HasOverride(member("u1", "mods")))
	assert.False(t, f.HasOverride(member("u1")))
}

func TestViewableChannelsOverrideGetsEverything(t *testing.T) {
	f := NewFilter(testGuild(), nil, func(string, string) (int64, error) {
		return 0, nil // no view permission anywhere
	})
	got := f.ViewableChannels(member("owner"))
	assert.ElementsMatch(t, []string{"general", "secret", "voice"}, got)
}

func TestViewableChannelsSubsetWithoutOverride(t *testing.T) {
	f := NewFilter(testGuild(), nil, openExceptSecret)
	got := f.ViewableChannels(member("u1"))
	assert.Equal(t, []string{"general"}, got)
}

func TestFilterChannels(t *testing.T) {
	f := NewFilter(testGuild(), nil, openExceptSecret)

	got := f.FilterChannels(member("u1"), []string{"general", "secret"})
	assert.Equal(t, []string{"general"}, got)

	got = f.FilterChannels(member("u1", "admins"), []string{"general", "secret"})
	assert.Equal(t, []string{"general", "secret"}, got)
}

func TestCanViewResolverErrorReadsAsHidden(t *testing.T) {
	f := NewFilter(testGuild(), nil, func(string, string) (int64, error) {
		return 0, errors.New("channel deleted")
	})
	assert.False(t, f.CanView(member("u1"), "general"))
}

func TestCanViewCachesPerViewerChannel(t *testing.T) {
	calls := 0
	f := NewFilter(testGuild(), nil, func(u, c string) (int64, error) {
		calls++
		return discordgo.PermissionViewChannel, nil
	})

	m := member("u1")
	f.CanView(m, "general")
	f.CanView(m, "general")
	assert.Equal(t, 1, calls)

	f.CanView(member("u2"), "general")
	assert.Equal(t, 2, calls)
}
