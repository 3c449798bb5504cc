package emoticon

import (
	"fmt"
	"regexp"

	"github.com/bwmarrin/discordgo"

	"emoticon-bot/bot"
	"emoticon-bot/emoji"
	"emoticon-bot/model"
	"emoticon-bot/utils"
	"emoticon-bot/utils/database"
)

var userMentionPattern = regexp.MustCompile(`^<@!?(\d+)>$`)

func handleCompare(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	qc, err := buildQueryContext(s, i, b, stringOption(opts, "query", ""), model.TargetGlobal)
	if err != nil {
		b.Log.WithError(err).Warn("failed to build compare query")
		utils.SendErrorResponse(s, i, "Could not process this request.")
		return
	}

	nameA, countA, ok := resolveEntity(b, qc, stringOption(opts, "entity_a", ""))
	if !ok {
		utils.SendErrorResponse(s, i, fmt.Sprintf("`%s` is not a user mention or an emoji I recognize.", stringOption(opts, "entity_a", "")))
		return
	}
	nameB, countB, ok := resolveEntity(b, qc, stringOption(opts, "entity_b", ""))
	if !ok {
		utils.SendErrorResponse(s, i, fmt.Sprintf("`%s` is not a user mention or an emoji I recognize.", stringOption(opts, "entity_b", "")))
		return
	}

	embed := analyticsEmbed("⚔️ Comparison",
		warningsBlock(qc.Parsed.Warnings)+qc.Renderer.Comparison(nameA, countA, nameB, countB))
	utils.SendEmbedResponse(s, i, embed)
}

// resolveEntity turns a raw argument into a label and a usage count under
// the shared query filter. User mentions count everything the user did;
// anything else is parsed as an emoji.
func resolveEntity(b *bot.Bot, qc *queryContext, raw string) (string, int64, bool) {
	if m := userMentionPattern.FindStringSubmatch(raw); m != nil {
		f := *qc.Filter
		f.Users = []string{m[1]}
		f.ExcludeBulk = true
		count, err := database.TotalCount(b.DB, &f)
		if err != nil {
			b.Log.WithError(err).Error("compare user query failed")
			return "", 0, false
		}
		return displayName(qc.Guild, m[1]), count, true
	}

	e, ok := emoji.NewExtractor(qc.Guild.Emojis).ParseOne(raw)
	if !ok {
		return "", 0, false
	}
	f := *qc.Filter
	if e.ID != "" {
		f.EmojiID = e.ID
	} else {
		f.EmojiName = e.Name
		f.ExactEmoji = true
	}
	count, err := database.TotalCount(b.DB, &f)
	if err != nil {
		b.Log.WithError(err).Error("compare emoji query failed")
		return "", 0, false
	}
	return qc.Renderer.Emoji(e.ID, e.Name, e.Animated), count, true
}
