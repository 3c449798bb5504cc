// Package emoticon implements the /emoticon command surface: scans,
// leaderboards, emoji and user analytics, settings and datasets.
package emoticon

import (
	"github.com/bwmarrin/discordgo"

	"emoticon-bot/bot"
	"emoticon-bot/utils"
)

// Handle routes a /emoticon invocation to its subcommand handler.
func Handle(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.GuildID == "" || i.Member == nil {
		utils.SendErrorResponse(s, i, "This command can only be used in a server.")
		return
	}

	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]

	switch sub.Name {
	case "scan":
		handleScan(s, i, b, sub.Options)
	case "stop":
		handleStop(s, i, b)
	case "status":
		handleStatus(s, i, b)
	case "leaderboard":
		handleLeaderboard(s, i, b, sub.Options)
	case "info":
		handleInfo(s, i, b, sub.Options)
	case "profile":
		handleProfile(s, i, b, sub.Options)
	case "compare":
		handleCompare(s, i, b, sub.Options)
	case "settings":
		handleSettings(s, i, b, sub)
	case "dataset":
		handleDataset(s, i, b, sub)
	case "help":
		handleHelp(s, i)
	case "stats":
		handleStats(s, i, b)
	}
}

// option helpers: absent options return zero values.

func stringOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name, fallback string) string {
	for _, o := range opts {
		if o.Name == name {
			return o.StringValue()
		}
	}
	return fallback
}

func boolOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) (value, set bool) {
	for _, o := range opts {
		if o.Name == name {
			return o.BoolValue(), true
		}
	}
	return false, false
}

func userOption(s *discordgo.Session, opts []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.User {
	for _, o := range opts {
		if o.Name == name {
			return o.UserValue(s)
		}
	}
	return nil
}

func channelOption(s *discordgo.Session, opts []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.Channel {
	for _, o := range opts {
		if o.Name == name {
			return o.ChannelValue(s)
		}
	}
	return nil
}

// hasManageGuild reports whether the invoker can use admin subcommands.
func hasManageGuild(i *discordgo.InteractionCreate) bool {
	return i.Member.Permissions&(discordgo.PermissionManageGuild|discordgo.PermissionAdministrator) != 0
}
