package scanner

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"emoticon-bot/model"
)

// Defaults for the tunables in Config.
const (
	defaultChannelConcurrency = 5
	defaultMessageInterval    = 10 * time.Millisecond
	defaultProgressInterval   = 5 * time.Second
)

// Config are the scan pacing tunables. Zero values fall back to the
// defaults above.
type Config struct {
	// ChannelConcurrency caps how many channels are walked at once.
	ChannelConcurrency int
	// MessageInterval paces history processing, shared across guilds.
	MessageInterval time.Duration
	// ProgressInterval throttles the progress callback.
	ProgressInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.ChannelConcurrency <= 0 {
		c.ChannelConcurrency = defaultChannelConcurrency
	}
	if c.MessageInterval <= 0 {
		c.MessageInterval = defaultMessageInterval
	}
	if c.ProgressInterval <= 0 {
		c.ProgressInterval = defaultProgressInterval
	}
	return c
}

// Fetcher is the slice of the Discord history API a scan reads through.
// *discordgo.Session satisfies it.
type Fetcher interface {
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	GuildThreadsActive(guildID string, options ...discordgo.RequestOption) (*discordgo.ThreadsList, error)
	ThreadsArchived(channelID string, before *time.Time, limit int, options ...discordgo.RequestOption) (*discordgo.ThreadsList, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	MessageReactions(channelID, messageID, emojiID string, limit int, beforeID, afterID string, options ...discordgo.RequestOption) ([]*discordgo.User, error)
}

// ProgressFunc receives throttled progress snapshots while a scan runs and
// a final snapshot when it ends.
type ProgressFunc func(p model.ScanProgress)

// Job is one running scan. Counters are written by workers and read
// through Snapshot by status commands.
type Job struct {
	GuildID string
	Options model.ScanOptions

	startedAt time.Time
	cancel    func()
	finished  chan struct{}

	totalChannels   int64
	scannedChannels int64
	scannedMessages int64
	emojisFound     int64

	progressMu       sync.Mutex
	lastProgress     time.Time
	progressInterval time.Duration
	progressFn       ProgressFunc
}

// Cancel requests a cooperative stop. The job keeps running until workers
// observe the cancellation.
func (j *Job) Cancel() {
	j.cancel()
}

// Done is closed once the job has fully stopped and released its guild
// lock.
func (j *Job) Done() <-chan struct{} {
	return j.finished
}

// Snapshot returns the job's live counters as a progress record.
func (j *Job) Snapshot() model.ScanProgress {
	return model.ScanProgress{
		GuildID:         j.GuildID,
		Status:          model.ScanScanning,
		TotalChannels:   atomic.LoadInt64(&j.totalChannels),
		ScannedChannels: atomic.LoadInt64(&j.scannedChannels),
		ScannedMessages: atomic.LoadInt64(&j.scannedMessages),
		EmojisFound:     atomic.LoadInt64(&j.emojisFound),
		StartedAt:       j.startedAt.Unix(),
	}
}

// maybeReportProgress invokes the progress callback at most once per
// interval. Workers call it after each unit of work.
func (j *Job) maybeReportProgress() {
	if j.progressFn == nil {
		return
	}
	j.progressMu.Lock()
	if time.Since(j.lastProgress) < j.progressInterval {
		j.progressMu.Unlock()
		return
	}
	j.lastProgress = time.Now()
	j.progressMu.Unlock()

	j.progressFn(j.Snapshot())
}
