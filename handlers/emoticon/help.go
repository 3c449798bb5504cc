package emoticon

import (
	"github.com/bwmarrin/discordgo"

	"emoticon-bot/query"
	"emoticon-bot/utils"
)

func handleHelp(s *discordgo.Session, i *discordgo.InteractionCreate) {
	embed := analyticsEmbed("Emoji Analytics Help", "")
	embed.Fields = []*discordgo.MessageEmbedField{
		{
			Name: "Analytics",
			Value: "`/emoticon leaderboard` — top emojis, users or density\n" +
				"`/emoticon info <emoji>` — stats for one emoji\n" +
				"`/emoticon profile [user]` — a user's emoji profile\n" +
				"`/emoticon compare <a> <b>` — head-to-head comparison",
		},
		{
			Name: "Scanning",
			Value: "`/emoticon scan` — index channel history\n" +
				"`/emoticon stop` — cancel a running scan\n" +
				"`/emoticon status` — scan progress",
		},
		{
			Name: "Configuration",
			Value: "`/emoticon settings …` — scope, filters, display, privacy, ignore list\n" +
				"`/emoticon dataset …` — saved channel sets for reuse in queries",
		},
		{
			Name:  "Query Syntax",
			Value: query.HelpText(),
		},
	}
	utils.SendEphemeralEmbed(s, i, embed)
}
