package handlers

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"emoticon-bot/bot"
	"emoticon-bot/emoji"
	"emoticon-bot/model"
	"emoticon-bot/utils/database"
)

// trackingContext resolves the per-event state live ingestion needs; ok is
// false when the event is outside a guild or the channel is ignored.
func trackingContext(s *discordgo.Session, b *bot.Bot, guildID, channelID string) (*model.GuildConfig, *emoji.Extractor, bool) {
	if guildID == "" {
		return nil, nil, false
	}
	cfg, err := database.GetOrCreateGuildConfig(b.DB, guildID)
	if err != nil {
		b.Log.WithError(err).Warn("failed to load guild config")
		return nil, nil, false
	}

	categoryID := ""
	if ch, err := s.State.Channel(channelID); err == nil {
		categoryID = ch.ParentID
	}
	if cfg.IsChannelIgnored(channelID, categoryID) {
		return nil, nil, false
	}

	var guildEmojis []*discordgo.Emoji
	if g, err := s.State.Guild(guildID); err == nil {
		guildEmojis = g.Emojis
	}
	return cfg, emoji.NewExtractor(guildEmojis), true
}

func recordExtracted(b *bot.Bot, cfg *model.GuildConfig, found []emoji.Extracted, channelID, userID, messageID string, isReaction bool, msgTime time.Time) {
	for _, e := range found {
		track, err := database.ShouldTrack(b.DB, cfg, &e)
		if err != nil {
			b.Log.WithError(err).Warn("failed to check tracking filter")
			continue
		}
		if !track {
			continue
		}
		usage := &model.EmojiUsage{
			GuildID:          cfg.GuildID,
			ChannelID:        channelID,
			UserID:           userID,
			MessageID:        messageID,
			EmojiID:          e.ID,
			EmojiName:        e.Name,
			Animated:         e.Animated,
			IsExternal:       e.IsExternal,
			IsReaction:       isReaction,
			Count:            e.Count,
			Timestamp:        time.Now().Unix(),
			MessageTimestamp: msgTime.Unix(),
		}
		if err := database.InsertUsage(b.DB, usage); err != nil {
			b.Log.WithError(err).Warn("failed to record emoji usage")
		}
	}
}

func handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate, b *bot.Bot) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	cfg, ext, ok := trackingContext(s, b, m.GuildID, m.ChannelID)
	if !ok {
		return
	}
	recordExtracted(b, cfg, ext.ExtractMessage(m.Content), m.ChannelID, m.Author.ID, m.ID, false, m.Timestamp)
}

// handleMessageUpdate reconciles edits by deleting the message's
// non-reaction rows and recreating them from the current content.
func handleMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate, b *bot.Bot) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	cfg, ext, ok := trackingContext(s, b, m.GuildID, m.ChannelID)
	if !ok || !cfg.TrackEdits {
		return
	}

	if err := database.DeleteMessageUsage(b.DB, m.GuildID, m.ID); err != nil {
		b.Log.WithError(err).Warn("failed to reconcile edited message")
		return
	}
	msgTime, err := discordgo.SnowflakeTimestamp(m.ID)
	if err != nil {
		msgTime = time.Now()
	}
	recordExtracted(b, cfg, ext.ExtractMessage(m.Content), m.ChannelID, m.Author.ID, m.ID, false, msgTime)
}

func handleMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete, b *bot.Bot) {
	if m.GuildID == "" {
		return
	}
	cfg, err := database.GetOrCreateGuildConfig(b.DB, m.GuildID)
	if err != nil {
		b.Log.WithError(err).Warn("failed to load guild config")
		return
	}
	if cfg.RetainDeleted {
		return
	}
	if err := database.PurgeMessageUsage(b.DB, m.GuildID, m.ID); err != nil {
		b.Log.WithError(err).Warn("failed to purge deleted message")
	}
}

func handleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd, b *bot.Bot) {
	if r.Member != nil && r.Member.User != nil && r.Member.User.Bot {
		return
	}
	cfg, ext, ok := trackingContext(s, b, r.GuildID, r.ChannelID)
	if !ok {
		return
	}

	e := ext.ExtractEmoji(&r.Emoji)
	// a live event is exactly one user's action
	e.Count = 1

	msgTime, err := discordgo.SnowflakeTimestamp(r.MessageID)
	if err != nil {
		msgTime = time.Now()
	}
	recordExtracted(b, cfg, []emoji.Extracted{e}, r.ChannelID, r.UserID, r.MessageID, true, msgTime)
}

func handleReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove, b *bot.Bot) {
	if r.GuildID == "" {
		return
	}
	cfg, err := database.GetOrCreateGuildConfig(b.DB, r.GuildID)
	if err != nil {
		b.Log.WithError(err).Warn("failed to load guild config")
		return
	}
	if cfg.RetainDeleted {
		return
	}

	var guildEmojis []*discordgo.Emoji
	if g, err := s.State.Guild(r.GuildID); err == nil {
		guildEmojis = g.Emojis
	}
	e := emoji.NewExtractor(guildEmojis).ExtractEmoji(&r.Emoji)
	if err := database.DeleteOneReaction(b.DB, r.GuildID, r.MessageID, r.UserID, e.ID, e.Name); err != nil {
		b.Log.WithError(err).Warn("failed to remove reaction usage")
	}
}
