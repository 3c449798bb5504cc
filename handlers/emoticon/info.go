package emoticon

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"emoticon-bot/bot"
	"emoticon-bot/emoji"
	"emoticon-bot/model"
	"emoticon-bot/utils"
	"emoticon-bot/utils/database"
)

func handleInfo(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	raw := stringOption(opts, "emoji", "")

	qc, err := buildQueryContext(s, i, b, stringOption(opts, "query", ""), model.TargetInfo)
	if err != nil {
		b.Log.WithError(err).Warn("failed to build info query")
		utils.SendErrorResponse(s, i, "Could not process this request.")
		return
	}

	target, ok := emoji.NewExtractor(qc.Guild.Emojis).ParseOne(raw)
	if !ok {
		msg := fmt.Sprintf("`%s` is not an emoji I recognize.", raw)
		names := make([]string, 0, len(qc.Guild.Emojis))
		for _, e := range qc.Guild.Emojis {
			names = append(names, e.Name)
		}
		if suggestions := utils.ClosestMatches(raw, names, 3); len(suggestions) > 0 {
			msg += " Did you mean: `" + strings.Join(suggestions, "`, `") + "`?"
		}
		utils.SendErrorResponse(s, i, msg)
		return
	}

	f := *qc.Filter
	if target.ID != "" {
		f.EmojiID = target.ID
	} else {
		f.EmojiName = target.Name
		f.ExactEmoji = true
	}

	total, err := database.TotalCount(b.DB, &f)
	if err != nil {
		b.Log.WithError(err).Error("emoji info query failed")
		utils.SendErrorResponse(s, i, "Could not load the emoji statistics.")
		return
	}

	label := qc.Renderer.Emoji(target.ID, target.Name, target.Animated)
	if total == 0 {
		utils.SendEmbedResponse(s, i, analyticsEmbed("Emoji Info",
			warningsBlock(qc.Parsed.Warnings)+
				fmt.Sprintf("%s has no recorded uses for the specified filters.", label)))
		return
	}

	// rank against every emoji under the same scope filters
	fullOrder, err := database.TopEmojis(b.DB, qc.Filter, 0, false)
	if err != nil {
		b.Log.WithError(err).Error("emoji rank query failed")
		utils.SendErrorResponse(s, i, "Could not load the emoji statistics.")
		return
	}
	rank := 0
	for pos, row := range fullOrder {
		if row.EmojiID == target.ID && (target.ID != "" || row.EmojiName == target.Name) {
			rank = pos + 1
			break
		}
	}

	msgCount, reactCount, err := database.ReactionSplit(b.DB, &f)
	if err != nil {
		b.Log.WithError(err).Error("reaction split query failed")
		utils.SendErrorResponse(s, i, "Could not load the emoji statistics.")
		return
	}

	topUsers, err := database.TopUsers(b.DB, &f, 5)
	if err != nil {
		b.Log.WithError(err).Error("emoji top users query failed")
		utils.SendErrorResponse(s, i, "Could not load the emoji statistics.")
		return
	}
	topChannels, err := database.TopChannels(b.DB, &f, 5)
	if err != nil {
		b.Log.WithError(err).Error("emoji top channels query failed")
		utils.SendErrorResponse(s, i, "Could not load the emoji statistics.")
		return
	}

	embed := analyticsEmbed("Emoji Info: "+label, warningsBlock(qc.Parsed.Warnings))
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Total Uses", Value: fmt.Sprintf("%d", total), Inline: true},
		{Name: "Rank", Value: fmt.Sprintf("#%d of %d", rank, len(fullOrder)), Inline: true},
		{Name: "Text / Reactions", Value: fmt.Sprintf("%d / %d", msgCount, reactCount), Inline: true},
	}
	if len(topUsers) > 0 {
		lines := make([]string, 0, len(topUsers))
		for pos, u := range topUsers {
			lines = append(lines, fmt.Sprintf("%d. %s (%d)", pos+1, displayName(qc.Guild, u.UserID), u.UseCount))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Top Users", Value: strings.Join(lines, "\n"), Inline: true,
		})
	}
	if len(topChannels) > 0 {
		lines := make([]string, 0, len(topChannels))
		for pos, c := range topChannels {
			lines = append(lines, fmt.Sprintf("%d. <#%s> (%d)", pos+1, c.ChannelID, c.UseCount))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Top Channels", Value: strings.Join(lines, "\n"), Inline: true,
		})
	}
	if target.IsExternal {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "External emoji (not from this server)"}
	}
	utils.SendEmbedResponse(s, i, embed)
}
