package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"emoticon-bot/emoji"
	"emoticon-bot/model"
	"emoticon-bot/utils/database"
)

func (m *Manager) run(ctx context.Context, f Fetcher, guild *discordgo.Guild, job *Job) {
	log := m.log.WithField("guild", guild.ID)

	cfg, err := database.GetOrCreateGuildConfig(m.db, guild.ID)
	if err != nil {
		m.fail(job, log, err)
		return
	}

	targets, err := m.resolveTargets(f, guild, cfg, job.Options)
	if err != nil {
		m.fail(job, log, err)
		return
	}
	atomic.StoreInt64(&job.totalChannels, int64(len(targets)))

	if job.Options.SyncMode == model.SyncRescan && !job.Options.DryRun {
		if err := database.DeleteGuildUsage(m.db, guild.ID); err != nil {
			m.fail(job, log, err)
			return
		}
	}

	afterID := ""
	if job.Options.SyncMode == model.SyncAppend {
		afterID = cfg.LastScanMessageID
	}

	started := job.Snapshot()
	if err := database.SaveScanProgress(m.db, &started); err != nil {
		log.WithError(err).Warn("failed to persist scan start")
	}
	log.WithFields(map[string]interface{}{
		"channels": len(targets),
		"mode":     job.Options.SyncMode,
		"dry_run":  job.Options.DryRun,
	}).Info("scan started")

	ext := emoji.NewExtractor(guild.Emojis)

	sem := make(chan struct{}, m.cfg.ChannelConcurrency)
	var wg sync.WaitGroup
	var watermarkMu sync.Mutex
	watermark := afterID
	for _, channel := range targets {
		wg.Add(1)
		go func(channel *discordgo.Channel) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}

			newest, err := m.scanChannel(ctx, f, cfg, job, ext, channel, afterID)
			switch {
			case err == nil:
			case isForbidden(err):
				log.WithField("channel", channel.ID).Warn("no access to channel, skipping")
			case errors.Is(err, context.Canceled):
			default:
				log.WithError(err).WithField("channel", channel.ID).Error("channel scan failed")
			}

			atomic.AddInt64(&job.scannedChannels, 1)
			if newest != "" {
				watermarkMu.Lock()
				watermark = laterSnowflake(watermark, newest)
				watermarkMu.Unlock()
			}
			job.maybeReportProgress()
		}(channel)
	}
	wg.Wait()

	final := job.Snapshot()
	final.CompletedAt = time.Now().Unix()
	if ctx.Err() != nil {
		final.Status = model.ScanCancelled
	} else {
		final.Status = model.ScanCompleted
	}
	if err := database.SaveScanProgress(m.db, &final); err != nil {
		log.WithError(err).Warn("failed to persist scan result")
	}

	if final.Status == model.ScanCompleted && !job.Options.DryRun && watermark != "" {
		if err := database.UpdateScanWatermark(m.db, guild.ID, final.CompletedAt, watermark); err != nil {
			log.WithError(err).Warn("failed to update scan watermark")
		}
	}

	log.WithFields(map[string]interface{}{
		"status":   final.Status,
		"messages": final.ScannedMessages,
		"emojis":   final.EmojisFound,
		"elapsed":  time.Since(job.startedAt).Round(time.Second).String(),
	}).Info("scan finished")

	if job.progressFn != nil {
		job.progressFn(final)
	}
}

func (m *Manager) fail(job *Job, log *logrus.Entry, err error) {
	log.WithError(err).Error("scan failed")
	final := job.Snapshot()
	final.Status = model.ScanFailed
	final.CompletedAt = time.Now().Unix()
	final.LastError = err.Error()
	if saveErr := database.SaveScanProgress(m.db, &final); saveErr != nil {
		log.WithError(saveErr).Warn("failed to persist scan failure")
	}
	if job.progressFn != nil {
		job.progressFn(final)
	}
}

// resolveTargets builds the list of channels and threads the scan walks,
// applying the guild's ignore lists, the scope option, and the thread
// policy.
func (m *Manager) resolveTargets(f Fetcher, guild *discordgo.Guild, cfg *model.GuildConfig, opts model.ScanOptions) ([]*discordgo.Channel, error) {
	channels, err := f.GuildChannels(guild.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guild channels: %w", err)
	}

	inScope := func(ch *discordgo.Channel) bool {
		if opts.ChannelID == "" {
			return true
		}
		return ch.ID == opts.ChannelID || ch.ParentID == opts.ChannelID
	}

	var targets []*discordgo.Channel
	threadParents := make(map[string]*discordgo.Channel)
	for _, ch := range channels {
		if cfg.IsChannelIgnored(ch.ID, ch.ParentID) || !inScope(ch) {
			continue
		}
		switch ch.Type {
		case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
			targets = append(targets, ch)
			threadParents[ch.ID] = ch
		case discordgo.ChannelTypeGuildForum:
			// forums carry no messages directly, only threads
			threadParents[ch.ID] = ch
		}
	}

	if cfg.ThreadPolicy == model.ThreadsIgnore {
		return targets, nil
	}

	active, err := f.GuildThreadsActive(guild.ID)
	if err != nil {
		m.log.WithError(err).WithField("guild", guild.ID).Warn("failed to list active threads")
	} else {
		for _, th := range active.Threads {
			if _, ok := threadParents[th.ParentID]; !ok {
				continue
			}
			if cfg.IsChannelIgnored(th.ID, "") {
				continue
			}
			targets = append(targets, th)
		}
	}

	if cfg.ThreadPolicy != model.ThreadsAll {
		return targets, nil
	}

	for parentID := range threadParents {
		archived, err := m.archivedThreads(f, parentID)
		if err != nil {
			m.log.WithError(err).WithField("channel", parentID).Warn("failed to list archived threads")
			continue
		}
		for _, th := range archived {
			if cfg.IsChannelIgnored(th.ID, "") {
				continue
			}
			targets = append(targets, th)
		}
	}
	return targets, nil
}

// archivedThreads pages through a channel's archived threads using the
// archive timestamp cursor.
func (m *Manager) archivedThreads(f Fetcher, channelID string) ([]*discordgo.Channel, error) {
	var threads []*discordgo.Channel
	var before *time.Time
	for {
		page, err := f.ThreadsArchived(channelID, before, 100)
		if err != nil {
			return threads, err
		}
		if len(page.Threads) == 0 {
			return threads, nil
		}
		threads = append(threads, page.Threads...)
		if !page.HasMore {
			return threads, nil
		}
		last := page.Threads[len(page.Threads)-1]
		if last.ThreadMetadata == nil {
			return threads, nil
		}
		before = &last.ThreadMetadata.ArchiveTimestamp
	}
}

// laterSnowflake returns the larger of two snowflake ids. Snowflakes are
// numeric strings, so the longer one wins and equal lengths compare
// lexicographically.
func laterSnowflake(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if len(a) != len(b) {
		if len(a) > len(b) {
			return a
		}
		return b
	}
	if a >= b {
		return a
	}
	return b
}
