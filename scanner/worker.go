package scanner

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"emoticon-bot/emoji"
	"emoticon-bot/model"
	"emoticon-bot/utils/database"
)

const messagePageSize = 100

// scanChannel walks one channel's history oldest-first, starting after the
// given watermark, and returns the newest message id it saw.
func (m *Manager) scanChannel(ctx context.Context, f Fetcher, cfg *model.GuildConfig, job *Job, ext *emoji.Extractor, channel *discordgo.Channel, afterID string) (string, error) {
	newest := ""
	after := afterID
	for {
		if err := ctx.Err(); err != nil {
			return newest, err
		}

		msgs, err := f.ChannelMessages(channel.ID, messagePageSize, "", after, "")
		if err != nil {
			return newest, fmt.Errorf("failed to fetch messages for channel %s: %w", channel.ID, err)
		}
		if len(msgs) == 0 {
			return newest, nil
		}

		// the API does not promise an order for the "after" window, so
		// find the batch's newest id ourselves
		batchNewest := msgs[0].ID
		for _, msg := range msgs[1:] {
			batchNewest = laterSnowflake(batchNewest, msg.ID)
		}

		for _, msg := range msgs {
			if err := m.limiter.Wait(ctx); err != nil {
				return newest, err
			}
			m.processMessage(ctx, f, cfg, job, ext, channel, msg)
			atomic.AddInt64(&job.scannedMessages, 1)
			job.maybeReportProgress()
		}

		newest = laterSnowflake(newest, batchNewest)
		after = batchNewest
		if len(msgs) < messagePageSize {
			return newest, nil
		}
	}
}

func (m *Manager) processMessage(ctx context.Context, f Fetcher, cfg *model.GuildConfig, job *Job, ext *emoji.Extractor, channel *discordgo.Channel, msg *discordgo.Message) {
	if msg.Author == nil || msg.Author.Bot {
		return
	}
	msgTime := msg.Timestamp.Unix()

	for _, e := range ext.ExtractMessage(msg.Content) {
		track, err := database.ShouldTrack(m.db, cfg, &e)
		if err != nil {
			m.log.WithError(err).Warn("failed to check tracking filter")
			continue
		}
		if !track {
			continue
		}
		atomic.AddInt64(&job.emojisFound, e.Count)
		if job.Options.DryRun {
			continue
		}
		usage := &model.EmojiUsage{
			GuildID:          cfg.GuildID,
			ChannelID:        channel.ID,
			UserID:           msg.Author.ID,
			MessageID:        msg.ID,
			EmojiID:          e.ID,
			EmojiName:        e.Name,
			Animated:         e.Animated,
			IsExternal:       e.IsExternal,
			Count:            e.Count,
			Timestamp:        time.Now().Unix(),
			MessageTimestamp: msgTime,
		}
		if err := database.InsertUsage(m.db, usage); err != nil {
			m.log.WithError(err).Warn("failed to record scanned emoji")
		}
	}

	for _, r := range msg.Reactions {
		if r.Emoji == nil {
			continue
		}
		e := ext.ExtractReaction(r)
		track, err := database.ShouldTrack(m.db, cfg, &e)
		if err != nil {
			m.log.WithError(err).Warn("failed to check tracking filter")
			continue
		}
		if !track {
			continue
		}
		if job.Options.DryRun {
			atomic.AddInt64(&job.emojisFound, int64(r.Count))
			continue
		}
		m.recordReactionUsers(ctx, f, cfg, job, e, channel, msg, r, msgTime)
	}
}

// recordReactionUsers enumerates a reaction's users and records one
// count-1 event per non-bot user. When the user list is not accessible the
// whole reaction is attributed to the bulk pseudo-user so emoji totals
// stay correct.
func (m *Manager) recordReactionUsers(ctx context.Context, f Fetcher, cfg *model.GuildConfig, job *Job, e emoji.Extracted, channel *discordgo.Channel, msg *discordgo.Message, r *discordgo.MessageReactions, msgTime int64) {
	apiName := r.Emoji.APIName()
	after := ""
	for {
		if ctx.Err() != nil {
			return
		}
		if err := m.limiter.Wait(ctx); err != nil {
			return
		}

		users, err := f.MessageReactions(channel.ID, msg.ID, apiName, messagePageSize, "", after)
		if err != nil {
			if isForbidden(err) {
				m.recordBulkReaction(cfg, job, e, channel, msg, int64(r.Count), msgTime)
			} else {
				m.log.WithError(err).WithField("message", msg.ID).Warn("failed to enumerate reaction users")
			}
			return
		}
		if len(users) == 0 {
			return
		}

		for _, u := range users {
			if u.Bot {
				continue
			}
			atomic.AddInt64(&job.emojisFound, 1)
			usage := &model.EmojiUsage{
				GuildID:          cfg.GuildID,
				ChannelID:        channel.ID,
				UserID:           u.ID,
				MessageID:        msg.ID,
				EmojiID:          e.ID,
				EmojiName:        e.Name,
				Animated:         e.Animated,
				IsExternal:       e.IsExternal,
				IsReaction:       true,
				Count:            1,
				Timestamp:        time.Now().Unix(),
				MessageTimestamp: msgTime,
			}
			if err := database.InsertUsage(m.db, usage); err != nil {
				m.log.WithError(err).Warn("failed to record scanned reaction")
			}
		}

		if len(users) < messagePageSize {
			return
		}
		after = users[len(users)-1].ID
	}
}

func (m *Manager) recordBulkReaction(cfg *model.GuildConfig, job *Job, e emoji.Extracted, channel *discordgo.Channel, msg *discordgo.Message, count, msgTime int64) {
	if count <= 0 {
		return
	}
	atomic.AddInt64(&job.emojisFound, count)
	usage := &model.EmojiUsage{
		GuildID:          cfg.GuildID,
		ChannelID:        channel.ID,
		UserID:           model.BulkUserID,
		MessageID:        msg.ID,
		EmojiID:          e.ID,
		EmojiName:        e.Name,
		Animated:         e.Animated,
		IsExternal:       e.IsExternal,
		IsReaction:       true,
		Count:            count,
		Timestamp:        time.Now().Unix(),
		MessageTimestamp: msgTime,
	}
	if err := database.InsertUsage(m.db, usage); err != nil {
		m.log.WithError(err).Warn("failed to record bulk reaction")
	}
}

func isForbidden(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusForbidden
	}
	return false
}
