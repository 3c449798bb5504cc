// Package permissions computes which channels a viewer may see aggregated
// data for. This is a privacy boundary: visibility is always evaluated
// against current permission state, never state at ingestion time, so users
// cannot read counts out of channels they have since lost access to.
package permissions

import (
	"github.com/bwmarrin/discordgo"

	"emoticon-bot/model"
)

// ResolveFunc returns the viewer's effective permission bits for a channel.
// *discordgo.Session.UserChannelPermissions satisfies it via a closure.
type ResolveFunc func(userID, channelID string) (int64, error)

// Filter answers channel-visibility questions for one command invocation.
// Results are cached per (viewer, channel) for the lifetime of the instance
// and never invalidated, so a Filter must not be kept across invocations if
// roles or permissions can change in between.
type Filter struct {
	guild   *discordgo.Guild
	cfg     *model.GuildConfig
	resolve ResolveFunc
	cache   map[string]bool
}

// NewFilter builds a filter for a guild. cfg may be nil when no guild
// config exists yet; only the admin-override role set is read from it.
func NewFilter(guild *discordgo.Guild, cfg *model.GuildConfig, resolve ResolveFunc) *Filter {
	return &Filter{
		guild:   guild,
		cfg:     cfg,
		resolve: resolve,
		cache:   make(map[string]bool),
	}
}

// HasOverride reports whether the viewer bypasses channel filtering
// entirely: the guild owner, anyone with the Administrator permission, or
// anyone holding a configured override role.
func (f *Filter) HasOverride(member *discordgo.Member) bool {
	if member.User != nil && member.User.ID == f.guild.OwnerID {
		return true
	}

	rolePerms := make(map[string]int64, len(f.guild.Roles))
	for _, r := range f.guild.Roles {
		rolePerms[r.ID] = r.Permissions
	}
	// The @everyone role shares the guild's id and applies to every member.
	perms := rolePerms[f.guild.ID]
	for _, id := range member.Roles {
		perms |= rolePerms[id]
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}

	if f.cfg != nil {
		for _, override := range f.cfg.AdminOverrideRoles {
			for _, id := range member.Roles {
				if id == override {
					return true
				}
			}
		}
	}
	return false
}

// CanView reports whether the viewer's effective permissions include
// view-channel. Resolution failures (deleted channel, missing access) read
// as not viewable rather than as errors.
func (f *Filter) CanView(member *discordgo.Member, channelID string) bool {
	key := member.User.ID + ":" + channelID
	if v, ok := f.cache[key]; ok {
		return v
	}

	perms, err := f.resolve(member.User.ID, channelID)
	canView := err == nil && perms&discordgo.PermissionViewChannel != 0

	f.cache[key] = canView
	return canView
}

// ViewableChannels returns every channel id the viewer may see. Override
// viewers get the guild's full channel set regardless of per-channel state.
func (f *Filter) ViewableChannels(member *discordgo.Member) []string {
	if f.HasOverride(member) {
		ids := make([]string, 0, len(f.guild.Channels))
		for _, ch := range f.guild.Channels {
			ids = append(ids, ch.ID)
		}
		return ids
	}

	var ids []string
	for _, ch := range f.guild.Channels {
		if !messageBearing(ch.Type) {
			continue
		}
		if f.CanView(member, ch.ID) {
			ids = append(ids, ch.ID)
		}
	}
	return ids
}

// FilterChannels reduces channelIDs to the subset the viewer may see.
// Override viewers get the input back unfiltered.
func (f *Filter) FilterChannels(member *discordgo.Member, channelIDs []string) []string {
	if f.HasOverride(member) {
		return channelIDs
	}

	var out []string
	for _, id := range channelIDs {
		if f.CanView(member, id) {
			out = append(out, id)
		}
	}
	return out
}

func messageBearing(t discordgo.ChannelType) bool {
	switch t {
	case discordgo.ChannelTypeGuildText,
		discordgo.ChannelTypeGuildNews,
		discordgo.ChannelTypeGuildForum,
		discordgo.ChannelTypeGuildNewsThread,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread:
		return true
	}
	return false
}
