package emoticon

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"emoticon-bot/bot"
	"emoticon-bot/model"
	"emoticon-bot/render"
	"emoticon-bot/utils"
	"emoticon-bot/utils/database"
)

// densityMinMessages keeps drive-by accounts off the density board.
const densityMinMessages = 5

func handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	boardType := stringOption(opts, "type", "global")
	ascending := stringOption(opts, "sort", "most") == "least"

	qc, err := buildQueryContext(s, i, b, stringOption(opts, "query", ""), model.TargetLeaderboard)
	if err != nil {
		b.Log.WithError(err).Warn("failed to build leaderboard query")
		utils.SendErrorResponse(s, i, "Could not process this request.")
		return
	}

	if name := stringOption(opts, "dataset", ""); name != "" {
		if ok := applyDataset(s, i, b, qc, name); !ok {
			return
		}
	}

	var (
		title       string
		description string
	)
	switch boardType {
	case "user":
		title = "🏆 Top Emoji Users"
		description, err = userBoard(b, qc)
	case "density":
		title = "📈 Emoji Density"
		description, err = densityBoard(b, qc)
	default:
		if ascending {
			title = "📉 Least Used Emojis"
		} else {
			title = "🏆 Emoji Leaderboard"
		}
		description, err = emojiBoard(b, qc, ascending)
	}
	if err != nil {
		b.Log.WithError(err).Error("leaderboard query failed")
		utils.SendErrorResponse(s, i, "Could not load the leaderboard.")
		return
	}

	embed := analyticsEmbed(title, warningsBlock(qc.Parsed.Warnings)+description)
	if qc.Parsed.Raw != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Filter: " + qc.Parsed.Raw}
	}
	utils.SendEmbedResponse(s, i, embed)
}

// applyDataset replaces the filter's channel set with the saved dataset's
// channels, re-restricted to what the invoker may view. Reports false after
// responding when the dataset does not exist.
func applyDataset(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, qc *queryContext, name string) bool {
	ds, err := database.GetDataset(b.DB, i.GuildID, name)
	if err != nil {
		b.Log.WithError(err).Warn("failed to load dataset")
		utils.SendErrorResponse(s, i, "Could not load the dataset.")
		return false
	}
	if ds == nil {
		msg := fmt.Sprintf("Dataset `%s` does not exist.", name)
		if all, err := database.ListDatasets(b.DB, i.GuildID); err == nil && len(all) > 0 {
			names := make([]string, 0, len(all))
			for _, d := range all {
				names = append(names, d.Name)
			}
			if suggestions := utils.ClosestMatches(name, names, 3); len(suggestions) > 0 {
				msg += " Did you mean: `" + strings.Join(suggestions, "`, `") + "`?"
			}
		}
		utils.SendErrorResponse(s, i, msg)
		return false
	}

	channels := ds.ChannelIDs
	if !qc.Perms.HasOverride(i.Member) {
		channels = qc.Perms.FilterChannels(i.Member, channels)
	}
	if channels == nil {
		channels = []string{}
	}
	qc.Filter.Channels = channels
	return true
}

func emojiBoard(b *bot.Bot, qc *queryContext, ascending bool) (string, error) {
	total, err := database.TotalCount(b.DB, qc.Filter)
	if err != nil {
		return "", err
	}
	rows, err := database.TopEmojis(b.DB, qc.Filter, qc.Renderer.Settings.MaxEntries, ascending)
	if err != nil {
		return "", err
	}
	entries := make([]render.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, render.Entry{
			EmojiID:   r.EmojiID,
			EmojiName: r.EmojiName,
			Animated:  r.Animated,
			Count:     r.UseCount,
		})
	}
	return qc.Renderer.Leaderboard(entries, total, 1), nil
}

func userBoard(b *bot.Bot, qc *queryContext) (string, error) {
	f := *qc.Filter
	f.ExcludeBulk = true
	total, err := database.TotalCount(b.DB, &f)
	if err != nil {
		return "", err
	}
	rows, err := database.TopUsers(b.DB, qc.Filter, qc.Renderer.Settings.MaxEntries)
	if err != nil {
		return "", err
	}
	entries := make([]render.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, render.Entry{
			UserID: r.UserID,
			Name:   displayName(qc.Guild, r.UserID),
			Count:  r.UseCount,
		})
	}
	if qc.Renderer.Settings.TieGrouping == model.TieGroup {
		entries = groupTies(entries)
	}
	return qc.Renderer.Leaderboard(entries, total, 1), nil
}

func densityBoard(b *bot.Bot, qc *queryContext) (string, error) {
	rows, err := database.TopUserDensity(b.DB, qc.Filter, densityMinMessages, qc.Renderer.Settings.MaxEntries)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "*No data found for the specified filters.*", nil
	}
	lines := make([]string, 0, len(rows)+1)
	for rank, r := range rows {
		lines = append(lines, fmt.Sprintf("**%d.** %s — **%.2f** emojis/message (%d uses, %d messages)",
			rank+1, displayName(qc.Guild, r.UserID), r.Density, r.UseCount, r.Messages))
	}
	lines = append(lines, fmt.Sprintf("\n*Minimum %d messages to qualify.*", densityMinMessages))
	return strings.Join(lines, "\n"), nil
}

// groupTies collapses consecutive equal-count entries into the first one,
// carrying the other names in TiedWith.
func groupTies(entries []render.Entry) []render.Entry {
	out := make([]render.Entry, 0, len(entries))
	for _, e := range entries {
		if n := len(out); n > 0 && out[n-1].Count == e.Count {
			out[n-1].TiedWith = append(out[n-1].TiedWith, e.Name)
			continue
		}
		out = append(out, e)
	}
	return out
}
