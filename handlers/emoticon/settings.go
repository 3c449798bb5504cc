package emoticon

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"emoticon-bot/bot"
	"emoticon-bot/emoji"
	"emoticon-bot/model"
	"emoticon-bot/utils"
	"emoticon-bot/utils/database"
)

const filterListPageSize = 10

func handleSettings(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, group *discordgo.ApplicationCommandInteractionDataOption) {
	if !hasManageGuild(i) {
		utils.SendErrorResponse(s, i, "You need the Manage Server permission to change settings.")
		return
	}
	if len(group.Options) == 0 {
		return
	}
	sub := group.Options[0]

	cfg, err := database.GetOrCreateGuildConfig(b.DB, i.GuildID)
	if err != nil {
		b.Log.WithError(err).Error("failed to load guild config")
		utils.SendErrorResponse(s, i, "Could not load the server settings.")
		return
	}

	switch sub.Name {
	case "scope":
		settingsScope(s, i, b, cfg, sub.Options)
	case "filters":
		settingsFilters(s, i, b, cfg, sub.Options)
	case "filterlist":
		settingsFilterList(s, i, b, cfg, sub.Options)
	case "display":
		settingsDisplay(s, i, b, sub.Options)
	case "privacy":
		settingsPrivacy(s, i, b, cfg, sub.Options)
	case "ignore":
		settingsIgnore(s, i, b, cfg, sub.Options)
	}
}

// invoking a settings subcommand with no options shows the current values
// instead of changing anything

func settingsScope(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, cfg *model.GuildConfig, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(opts) == 0 {
		utils.SendEphemeralEmbed(s, i, analyticsEmbed("Scope Settings",
			fmt.Sprintf("**Default Scan Scope:** %s\n**Thread Policy:** %s",
				cfg.DefaultScanScope, threadPolicyLabel(cfg.ThreadPolicy))))
		return
	}

	if v := stringOption(opts, "default_scope", ""); v != "" {
		cfg.DefaultScanScope = model.ScanScope(v)
	}
	switch stringOption(opts, "thread_policy", "") {
	case "ignore":
		cfg.ThreadPolicy = model.ThreadsIgnore
	case "active":
		cfg.ThreadPolicy = model.ThreadsActiveOnly
	case "all":
		cfg.ThreadPolicy = model.ThreadsAll
	}

	if err := database.SaveGuildConfig(b.DB, cfg); err != nil {
		b.Log.WithError(err).Error("failed to save guild config")
		utils.SendErrorResponse(s, i, "Could not save the settings.")
		return
	}
	utils.SendEphemeralResponse(s, i, fmt.Sprintf("✅ Scope updated: scan scope `%s`, thread policy `%s`.",
		cfg.DefaultScanScope, threadPolicyLabel(cfg.ThreadPolicy)))
}

func settingsFilters(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, cfg *model.GuildConfig, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	allowExternal, externalSet := boolOption(opts, "allow_external")
	mode := stringOption(opts, "tracking_mode", "")

	if mode == "" && !externalSet {
		utils.SendEphemeralEmbed(s, i, analyticsEmbed("Filter Settings",
			fmt.Sprintf("**Tracking Mode:** %s\n**Allow External Emojis:** %t",
				cfg.TrackingMode, cfg.AllowExternal)))
		return
	}

	if mode != "" {
		cfg.TrackingMode = model.TrackingMode(mode)
	}
	if externalSet {
		cfg.AllowExternal = allowExternal
	}

	if err := database.SaveGuildConfig(b.DB, cfg); err != nil {
		b.Log.WithError(err).Error("failed to save guild config")
		utils.SendErrorResponse(s, i, "Could not save the settings.")
		return
	}
	utils.SendEphemeralResponse(s, i, fmt.Sprintf("✅ Filters updated: tracking mode `%s`, external emojis `%t`.",
		cfg.TrackingMode, cfg.AllowExternal))
}

func settingsFilterList(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, cfg *model.GuildConfig, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	action := stringOption(opts, "action", "list")
	listName := stringOption(opts, "list", "whitelist")

	if action == "list" {
		embed, components, err := filterListPage(b, i.GuildID, listName, 1)
		if err != nil {
			b.Log.WithError(err).Error("failed to list emoji filters")
			utils.SendErrorResponse(s, i, "Could not load the filter list.")
			return
		}
		err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds:     []*discordgo.MessageEmbed{embed},
				Components: components,
				Flags:      discordgo.MessageFlagsEphemeral,
			},
		})
		if err != nil {
			b.Log.WithError(err).Warn("failed to send filter list")
		}
		return
	}

	raw := stringOption(opts, "emoji", "")
	if raw == "" {
		utils.SendErrorResponse(s, i, "Specify an emoji to add or remove.")
		return
	}
	guild, err := b.Guild(i.GuildID)
	if err != nil {
		utils.SendErrorResponse(s, i, "Could not resolve this server.")
		return
	}
	target, ok := emoji.NewExtractor(guild.Emojis).ParseOne(raw)
	if !ok {
		utils.SendErrorResponse(s, i, fmt.Sprintf("`%s` is not an emoji I recognize.", raw))
		return
	}
	label := emoji.FormatEmoji(target.ID, target.Name, target.Animated)

	switch action {
	case "add":
		err := database.AddEmojiFilter(b.DB, &model.EmojiFilter{
			GuildID:    i.GuildID,
			EmojiID:    target.ID,
			EmojiName:  target.Name,
			FilterType: model.TrackingMode(listName),
		})
		if err != nil {
			b.Log.WithError(err).Error("failed to add emoji filter")
			utils.SendErrorResponse(s, i, "Could not update the filter list.")
			return
		}
		utils.SendEphemeralResponse(s, i, fmt.Sprintf("✅ Added %s to the %s.", label, listName))
	case "remove":
		existed, err := database.RemoveEmojiFilter(b.DB, i.GuildID, target.ID, target.Name, listName)
		if err != nil {
			b.Log.WithError(err).Error("failed to remove emoji filter")
			utils.SendErrorResponse(s, i, "Could not update the filter list.")
			return
		}
		if !existed {
			utils.SendEphemeralResponse(s, i, fmt.Sprintf("%s is not on the %s.", label, listName))
			return
		}
		utils.SendEphemeralResponse(s, i, fmt.Sprintf("✅ Removed %s from the %s.", label, listName))
	}
}

// filterListPage builds one page of a guild's whitelist or blacklist.
func filterListPage(b *bot.Bot, guildID, listName string, page int) (*discordgo.MessageEmbed, []discordgo.MessageComponent, error) {
	filters, err := database.ListEmojiFilters(b.DB, guildID, listName)
	if err != nil {
		return nil, nil, err
	}

	title := "Emoji Blacklist"
	if listName == "whitelist" {
		title = "Emoji Whitelist"
	}
	if len(filters) == 0 {
		return analyticsEmbed(title, "*The list is empty.*"), nil, nil
	}

	totalPages := (len(filters) + filterListPageSize - 1) / filterListPageSize
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * filterListPageSize
	end := start + filterListPageSize
	if end > len(filters) {
		end = len(filters)
	}

	lines := make([]string, 0, end-start)
	for pos, f := range filters[start:end] {
		lines = append(lines, fmt.Sprintf("%d. %s", start+pos+1, emoji.FormatEmoji(f.EmojiID, f.EmojiName, false)))
	}

	embed := analyticsEmbed(title, strings.Join(lines, "\n"))
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Page %d/%d • %d entries", page, totalPages, len(filters)),
	}
	components := utils.CreatePaginationComponents(page, totalPages, "emoticon_filters", listName)
	return embed, components, nil
}

// HandleFilterListPage services the previous/next buttons on a filter list.
// Custom ids look like "emoticon_filters:<page>:<list>".
func HandleFilterListPage(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	parts := strings.Split(i.MessageComponentData().CustomID, ":")
	if len(parts) != 3 {
		return
	}
	page, err := strconv.Atoi(parts[1])
	if err != nil {
		return
	}

	embed, components, err := filterListPage(b, i.GuildID, parts[2], page)
	if err != nil {
		b.Log.WithError(err).Error("failed to page emoji filter list")
		return
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
	if err != nil {
		b.Log.WithError(err).Warn("failed to update filter list page")
	}
}

func settingsDisplay(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	target := model.SettingsTarget(stringOption(opts, "target", "global"))

	var update model.PartialRenderSettings
	if v, set := boolOption(opts, "show_ids"); set {
		update.ShowIDs = &v
	}
	if v, set := boolOption(opts, "show_percentages"); set {
		update.ShowPercentages = &v
	}
	if v, set := boolOption(opts, "compact_mode"); set {
		update.CompactMode = &v
	}
	if v := stringOption(opts, "tie_grouping", ""); v != "" {
		tie := model.TieGrouping(v)
		update.TieGrouping = &tie
	}

	if update.IsZero() {
		stored, err := database.GetComponentSettings(b.DB, i.GuildID, target)
		if err != nil {
			b.Log.WithError(err).Error("failed to load display settings")
			utils.SendErrorResponse(s, i, "Could not load the display settings.")
			return
		}
		utils.SendEphemeralEmbed(s, i, analyticsEmbed(
			fmt.Sprintf("Display Settings (%s)", target),
			fmt.Sprintf("**Show IDs:** %s\n**Show Percentages:** %s\n**Compact Mode:** %s\n**Tie Grouping:** %s",
				settingValue(stored.ShowIDs), settingValue(stored.ShowPercentages),
				settingValue(stored.CompactMode), tieValue(stored.TieGrouping))))
		return
	}

	stored, err := database.GetComponentSettings(b.DB, i.GuildID, target)
	if err != nil {
		b.Log.WithError(err).Error("failed to load display settings")
		utils.SendErrorResponse(s, i, "Could not save the display settings.")
		return
	}
	if update.ShowIDs != nil {
		stored.ShowIDs = update.ShowIDs
	}
	if update.ShowPercentages != nil {
		stored.ShowPercentages = update.ShowPercentages
	}
	if update.CompactMode != nil {
		stored.CompactMode = update.CompactMode
	}
	if update.TieGrouping != nil {
		stored.TieGrouping = update.TieGrouping
	}

	if err := database.SaveComponentSettings(b.DB, i.GuildID, target, stored); err != nil {
		b.Log.WithError(err).Error("failed to save display settings")
		utils.SendErrorResponse(s, i, "Could not save the display settings.")
		return
	}
	utils.SendEphemeralResponse(s, i, fmt.Sprintf("✅ Display settings for `%s` updated.", target))
}

func settingValue(v *bool) string {
	if v == nil {
		return "inherit"
	}
	return strconv.FormatBool(*v)
}

func tieValue(v *model.TieGrouping) string {
	if v == nil {
		return "inherit"
	}
	return string(*v)
}

func settingsPrivacy(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, cfg *model.GuildConfig, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	trackEdits, editsSet := boolOption(opts, "track_edits")
	retainDeleted, retainSet := boolOption(opts, "retain_deleted")

	if !editsSet && !retainSet {
		utils.SendEphemeralEmbed(s, i, analyticsEmbed("Privacy Settings",
			fmt.Sprintf("**Track Edits:** %t\n**Retain Deleted:** %t",
				cfg.TrackEdits, cfg.RetainDeleted)))
		return
	}

	if editsSet {
		cfg.TrackEdits = trackEdits
	}
	if retainSet {
		cfg.RetainDeleted = retainDeleted
	}

	if err := database.SaveGuildConfig(b.DB, cfg); err != nil {
		b.Log.WithError(err).Error("failed to save guild config")
		utils.SendErrorResponse(s, i, "Could not save the settings.")
		return
	}
	utils.SendEphemeralResponse(s, i, fmt.Sprintf("✅ Privacy updated: track edits `%t`, retain deleted `%t`.",
		cfg.TrackEdits, cfg.RetainDeleted))
}

func settingsIgnore(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, cfg *model.GuildConfig, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	action := stringOption(opts, "action", "list")

	if action == "list" {
		var sb strings.Builder
		sb.WriteString("**Ignored Channels:**\n")
		if len(cfg.IgnoredChannels) == 0 {
			sb.WriteString("*none*\n")
		}
		for _, id := range cfg.IgnoredChannels {
			fmt.Fprintf(&sb, "<#%s>\n", id)
		}
		sb.WriteString("\n**Ignored Categories:**\n")
		if len(cfg.IgnoredCategories) == 0 {
			sb.WriteString("*none*")
		}
		for _, id := range cfg.IgnoredCategories {
			fmt.Fprintf(&sb, "<#%s>\n", id)
		}
		utils.SendEphemeralEmbed(s, i, analyticsEmbed("Ignore List", strings.TrimRight(sb.String(), "\n")))
		return
	}

	channel := channelOption(s, opts, "channel")
	category := channelOption(s, opts, "category")
	if channel == nil && category == nil {
		utils.SendErrorResponse(s, i, "Specify a channel or a category.")
		return
	}

	var changed []string
	if channel != nil {
		cfg.IgnoredChannels, _ = toggleID(cfg.IgnoredChannels, channel.ID, action == "add")
		changed = append(changed, fmt.Sprintf("<#%s>", channel.ID))
	}
	if category != nil {
		cfg.IgnoredCategories, _ = toggleID(cfg.IgnoredCategories, category.ID, action == "add")
		changed = append(changed, fmt.Sprintf("<#%s>", category.ID))
	}

	if err := database.SaveGuildConfig(b.DB, cfg); err != nil {
		b.Log.WithError(err).Error("failed to save guild config")
		utils.SendErrorResponse(s, i, "Could not save the settings.")
		return
	}

	verb := "Ignoring"
	if action == "remove" {
		verb = "No longer ignoring"
	}
	utils.SendEphemeralResponse(s, i, fmt.Sprintf("✅ %s %s.", verb, strings.Join(changed, ", ")))
}

func threadPolicyLabel(p model.ThreadPolicy) string {
	switch p {
	case model.ThreadsIgnore:
		return "ignore"
	case model.ThreadsAll:
		return "all"
	default:
		return "active"
	}
}

// toggleID adds or removes an id from a list, keeping it duplicate-free.
func toggleID(ids []string, id string, add bool) ([]string, bool) {
	for pos, existing := range ids {
		if existing != id {
			continue
		}
		if add {
			return ids, false
		}
		return append(ids[:pos], ids[pos+1:]...), true
	}
	if add {
		return append(ids, id), true
	}
	return ids, false
}
