package emoticon

import (
	"github.com/bwmarrin/discordgo"

	"emoticon-bot/bot"
	"emoticon-bot/model"
	"emoticon-bot/render"
	"emoticon-bot/utils"
	"emoticon-bot/utils/database"
)

func handleProfile(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	target := userOption(s, opts, "user")
	if target == nil {
		target = i.Member.User
	}
	if target.Bot {
		utils.SendErrorResponse(s, i, "Bots are not tracked.")
		return
	}

	qc, err := buildQueryContext(s, i, b, stringOption(opts, "query", ""), model.TargetProfile)
	if err != nil {
		b.Log.WithError(err).Warn("failed to build profile query")
		utils.SendErrorResponse(s, i, "Could not process this request.")
		return
	}

	f := *qc.Filter
	f.Users = []string{target.ID}
	f.ExcludeBulk = true

	total, err := database.TotalCount(b.DB, &f)
	if err != nil {
		b.Log.WithError(err).Error("profile total query failed")
		utils.SendErrorResponse(s, i, "Could not load the profile.")
		return
	}

	name := displayName(qc.Guild, target.ID)
	if total == 0 {
		utils.SendEmbedResponse(s, i, analyticsEmbed("Emoji Profile: "+name,
			warningsBlock(qc.Parsed.Warnings)+"*No recorded emoji usage for the specified filters.*"))
		return
	}

	unique, err := database.UniqueEmojiCount(b.DB, &f)
	if err != nil {
		b.Log.WithError(err).Error("profile vocabulary query failed")
		utils.SendErrorResponse(s, i, "Could not load the profile.")
		return
	}
	textCount, reactionCount, err := database.ReactionSplit(b.DB, &f)
	if err != nil {
		b.Log.WithError(err).Error("profile split query failed")
		utils.SendErrorResponse(s, i, "Could not load the profile.")
		return
	}
	top, err := database.TopEmojis(b.DB, &f, 5, false)
	if err != nil {
		b.Log.WithError(err).Error("profile top emoji query failed")
		utils.SendErrorResponse(s, i, "Could not load the profile.")
		return
	}

	profile := render.Profile{
		DisplayName:   name,
		Total:         total,
		UniqueEmojis:  unique,
		ReactionCount: reactionCount,
		TextCount:     textCount,
	}
	for _, row := range top {
		profile.TopEmojis = append(profile.TopEmojis, render.Entry{
			EmojiID:   row.EmojiID,
			EmojiName: row.EmojiName,
			Animated:  row.Animated,
			Count:     row.UseCount,
		})
	}
	if len(top) > 0 {
		profile.SignatureEmoji = qc.Renderer.Emoji(top[0].EmojiID, top[0].EmojiName, top[0].Animated)
	}

	embed := analyticsEmbed("Emoji Profile: "+name,
		warningsBlock(qc.Parsed.Warnings)+qc.Renderer.ProfileText(profile))
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: target.AvatarURL("128")}
	utils.SendEmbedResponse(s, i, embed)
}
