package emoticon

import (
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"emoticon-bot/bot"
	"emoticon-bot/model"
	"emoticon-bot/permissions"
	"emoticon-bot/query"
	"emoticon-bot/render"
	"emoticon-bot/utils"
	"emoticon-bot/utils/database"
)

const embedColor = 0x5865F2 // Discord blurple

// queryContext bundles everything the analytics subcommands resolve before
// querying: parsed query, permission-restricted usage filter and render
// settings.
type queryContext struct {
	Guild    *discordgo.Guild
	Config   *model.GuildConfig
	Parsed   *query.ParsedQuery
	Perms    *permissions.Filter
	Filter   *database.UsageFilter
	Renderer *render.Renderer
}

// buildQueryContext parses the raw query and applies the viewer's channel
// visibility to produce the aggregation filter.
func buildQueryContext(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, rawQuery string, target model.SettingsTarget) (*queryContext, error) {
	guild, err := b.Guild(i.GuildID)
	if err != nil {
		return nil, err
	}
	cfg, err := database.GetOrCreateGuildConfig(b.DB, i.GuildID)
	if err != nil {
		return nil, err
	}

	parsed := query.NewParser(guild).Parse(rawQuery)

	pf := permissions.NewFilter(guild, cfg, func(userID, channelID string) (int64, error) {
		return s.State.UserChannelPermissions(userID, channelID)
	})

	channels := parsed.Channels
	if !pf.HasOverride(i.Member) {
		channels = visibleChannels(pf, i.Member, channels)
	}

	users := parsed.Users
	for _, roleRef := range parsed.Roles {
		users = append(users, roleMembers(guild, parsed, roleRef)...)
	}

	f := &database.UsageFilter{
		GuildID:          i.GuildID,
		Channels:         channels,
		ExcludedChannels: parsed.ExcludedChannels,
		Users:            users,
		ExcludedUsers:    parsed.ExcludedUsers,
		EmojiNames:       parsed.Emojis,
		After:            parsed.DateAfter,
		Before:           parsed.DateBefore,
	}

	settings := resolveRenderSettings(b, i.GuildID, target, parsed.Flags)

	return &queryContext{
		Guild:    guild,
		Config:   cfg,
		Parsed:   parsed,
		Perms:    pf,
		Filter:   f,
		Renderer: render.NewRenderer(settings),
	}, nil
}

// noMatchUser is an impossible user id: snowflakes are never negative, so
// filtering on it matches no rows.
const noMatchUser = "-1"

// roleMembers resolves a role reference (name or id) to the ids of the
// members holding it. An unresolvable role adds a parser-style warning; a
// resolved role with no members yields the impossible user id so the
// filter matches nothing instead of going unrestricted.
func roleMembers(guild *discordgo.Guild, parsed *query.ParsedQuery, roleRef string) []string {
	var roleID string
	for _, r := range guild.Roles {
		if r.ID == roleRef || strings.EqualFold(r.Name, roleRef) {
			roleID = r.ID
			break
		}
	}
	if roleID == "" {
		msg := "Could not resolve role: " + roleRef
		names := make([]string, 0, len(guild.Roles))
		for _, r := range guild.Roles {
			names = append(names, r.Name)
		}
		if suggestions := utils.ClosestMatches(roleRef, names, 3); len(suggestions) > 0 {
			msg += " (did you mean: " + strings.Join(suggestions, ", ") + "?)"
		}
		parsed.Warnings = append(parsed.Warnings, msg)
		return nil
	}

	var users []string
	for _, m := range guild.Members {
		for _, r := range m.Roles {
			if r == roleID {
				users = append(users, m.User.ID)
				break
			}
		}
	}
	if len(users) == 0 {
		return []string{noMatchUser}
	}
	return users
}

// visibleChannels applies the viewer's channel visibility to the requested
// set. The result is never nil for a restricted viewer: a viewer with no
// permitted channels must match nothing, not everything.
func visibleChannels(pf *permissions.Filter, member *discordgo.Member, requested []string) []string {
	var channels []string
	if requested == nil {
		channels = pf.ViewableChannels(member)
	} else {
		channels = pf.FilterChannels(member, requested)
	}
	if channels == nil {
		channels = []string{}
	}
	return channels
}

// resolveRenderSettings merges the three settings tiers over the defaults.
func resolveRenderSettings(b *bot.Bot, guildID string, target model.SettingsTarget, runtime model.PartialRenderSettings) model.RenderSettings {
	global, err := database.GetComponentSettings(b.DB, guildID, model.TargetGlobal)
	if err != nil {
		b.Log.WithError(err).Warn("failed to load global display settings")
	}
	var command model.PartialRenderSettings
	if target != model.TargetGlobal {
		command, err = database.GetComponentSettings(b.DB, guildID, target)
		if err != nil {
			b.Log.WithError(err).Warn("failed to load command display settings")
		}
	}
	return render.MergeSettings(&global, &command, &runtime)
}

// warningsBlock formats parser warnings for prepending to a response.
func warningsBlock(warnings []string) string {
	if len(warnings) == 0 {
		return ""
	}
	return "⚠️ " + strings.Join(warnings, "\n⚠️ ") + "\n\n"
}

// displayName prefers the guild nickname.
func displayName(guild *discordgo.Guild, userID string) string {
	for _, m := range guild.Members {
		if m.User != nil && m.User.ID == userID {
			if m.Nick != "" {
				return m.Nick
			}
			if m.User.GlobalName != "" {
				return m.User.GlobalName
			}
			return m.User.Username
		}
	}
	return "<@" + userID + ">"
}

func analyticsEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       embedColor,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}
