package emoticon

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"

	"emoticon-bot/bot"
	"emoticon-bot/utils"
	"emoticon-bot/utils/database"
)

var channelMentionPattern = regexp.MustCompile(`<#(\d+)>`)

func handleDataset(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, group *discordgo.ApplicationCommandInteractionDataOption) {
	if len(group.Options) == 0 {
		return
	}
	sub := group.Options[0]

	switch sub.Name {
	case "create":
		datasetCreate(s, i, b, sub.Options)
	case "delete":
		datasetDelete(s, i, b, sub.Options)
	case "list":
		datasetList(s, i, b)
	}
}

func datasetCreate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	if !hasManageGuild(i) {
		utils.SendErrorResponse(s, i, "You need the Manage Server permission to manage datasets.")
		return
	}

	name := strings.TrimSpace(stringOption(opts, "name", ""))
	if name == "" {
		utils.SendErrorResponse(s, i, "Dataset names cannot be empty.")
		return
	}

	raw := stringOption(opts, "channels", "")
	matches := channelMentionPattern.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		utils.SendErrorResponse(s, i, "Mention at least one channel, e.g. `#general #memes`.")
		return
	}
	channels := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			channels = append(channels, m[1])
		}
	}

	err := database.CreateDataset(b.DB, i.GuildID, name, channels, i.Member.User.ID)
	if errors.Is(err, database.ErrDatasetExists) {
		utils.SendErrorResponse(s, i, fmt.Sprintf("A dataset named `%s` already exists.", name))
		return
	}
	if err != nil {
		b.Log.WithError(err).Error("failed to create dataset")
		utils.SendErrorResponse(s, i, "Could not create the dataset.")
		return
	}
	utils.SendEphemeralResponse(s, i, fmt.Sprintf("✅ Dataset `%s` created with %d channels.", name, len(channels)))
}

func datasetDelete(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	if !hasManageGuild(i) {
		utils.SendErrorResponse(s, i, "You need the Manage Server permission to manage datasets.")
		return
	}

	name := stringOption(opts, "name", "")
	existed, err := database.DeleteDataset(b.DB, i.GuildID, name)
	if err != nil {
		b.Log.WithError(err).Error("failed to delete dataset")
		utils.SendErrorResponse(s, i, "Could not delete the dataset.")
		return
	}
	if !existed {
		utils.SendErrorResponse(s, i, fmt.Sprintf("Dataset `%s` does not exist.", name))
		return
	}
	utils.SendEphemeralResponse(s, i, fmt.Sprintf("✅ Dataset `%s` deleted.", name))
}

func datasetList(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	datasets, err := database.ListDatasets(b.DB, i.GuildID)
	if err != nil {
		b.Log.WithError(err).Error("failed to list datasets")
		utils.SendErrorResponse(s, i, "Could not list the datasets.")
		return
	}
	if len(datasets) == 0 {
		utils.SendEphemeralResponse(s, i, "No datasets saved. Create one with `/emoticon dataset create`.")
		return
	}

	lines := make([]string, 0, len(datasets))
	for _, d := range datasets {
		lines = append(lines, fmt.Sprintf("**%s** — %d channels", d.Name, len(d.ChannelIDs)))
	}
	utils.SendEphemeralEmbed(s, i, analyticsEmbed("Saved Datasets", strings.Join(lines, "\n")))
}
