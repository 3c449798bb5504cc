// Package scanner walks a guild's channel history under rate limits,
// extracting emoji usage into the database while reporting live progress.
// One scan per guild runs at a time; scans are cancellable and, in append
// mode, resume after the last completed scan's watermark.
package scanner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"emoticon-bot/model"
)

// ErrScanActive is returned when a scan is already running for the guild.
var ErrScanActive = errors.New("a scan is already running for this guild")

// Manager owns the per-guild scan locks and spawns jobs.
type Manager struct {
	db      *sqlx.DB
	cfg     Config
	limiter *rate.Limiter
	log     *logrus.Entry

	mu   sync.Mutex
	jobs map[string]*Job
}

func NewManager(db *sqlx.DB, log *logrus.Logger, cfg Config) *Manager {
	cfg = cfg.withDefaults()
	return &Manager{
		db:  db,
		cfg: cfg,
		// the message pace is shared across all guilds
		limiter: rate.NewLimiter(rate.Every(cfg.MessageInterval), 10),
		log:     log.WithField("module", "scanner"),
		jobs:    make(map[string]*Job),
	}
}

// Running returns the guild's active job, or nil. The in-process lock is
// authoritative over persisted status: a "scanning" row with no job here
// is a stale record from a previous process.
func (m *Manager) Running(guildID string) *Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs[guildID]
}

// Stop cancels the guild's active job and reports whether one was running.
func (m *Manager) Stop(guildID string) bool {
	m.mu.Lock()
	job := m.jobs[guildID]
	m.mu.Unlock()
	if job == nil {
		return false
	}
	job.Cancel()
	return true
}

// Start launches a scan for the guild. Exactly one scan per guild may run;
// a second Start returns ErrScanActive until the first fully stops.
func (m *Manager) Start(f Fetcher, guild *discordgo.Guild, opts model.ScanOptions, progressFn ProgressFunc) (*Job, error) {
	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{
		GuildID:          guild.ID,
		Options:          opts,
		startedAt:        time.Now(),
		cancel:           cancel,
		finished:         make(chan struct{}),
		progressInterval: m.cfg.ProgressInterval,
		progressFn:       progressFn,
	}

	m.mu.Lock()
	if _, running := m.jobs[guild.ID]; running {
		m.mu.Unlock()
		cancel()
		return nil, ErrScanActive
	}
	m.jobs[guild.ID] = job
	m.mu.Unlock()

	go func() {
		defer func() {
			m.mu.Lock()
			delete(m.jobs, guild.ID)
			m.mu.Unlock()
			close(job.finished)
		}()
		m.run(ctx, f, guild, job)
	}()

	return job, nil
}
