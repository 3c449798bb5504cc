package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"emoticon-bot/commands"
	"emoticon-bot/config"
	"emoticon-bot/scanner"
)

type Bot struct {
	Session            *discordgo.Session
	DB                 *sqlx.DB
	Config             *config.Config
	Log                *logrus.Logger
	Scans              *scanner.Manager
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	RegisteredCommands []*discordgo.ApplicationCommand
	StartedAt          time.Time
}

func New(cfg *config.Config, db *sqlx.DB, log *logrus.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildEmojis |
		discordgo.IntentMessageContent

	return &Bot{
		Session: dg,
		DB:      db,
		Config:  cfg,
		Log:     log,
		Scans: scanner.NewManager(db, log, scanner.Config{
			ChannelConcurrency: cfg.Scan.ChannelConcurrency,
			MessageInterval:    cfg.Scan.MessageInterval,
			ProgressInterval:   cfg.Scan.ProgressInterval,
		}),
		StartedAt: time.Now(),
	}, nil
}

// Guild returns the guild with channels and cached members, preferring
// state and falling back to the REST API.
func (b *Bot) Guild(guildID string) (*discordgo.Guild, error) {
	if g, err := b.Session.State.Guild(guildID); err == nil {
		return g, nil
	}
	g, err := b.Session.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild %s: %w", guildID, err)
	}
	if len(g.Channels) == 0 {
		channels, err := b.Session.GuildChannels(guildID)
		if err == nil {
			g.Channels = channels
		}
	}
	return g, nil
}

// RefreshCommands bulk-overwrites the command tree, either per configured
// guild or globally when no guilds are configured.
func (b *Bot) RefreshCommands() {
	cmds := commands.Generate()
	targets := b.Config.GuildIDs
	if len(targets) == 0 {
		targets = []string{""}
	}

	b.RegisteredCommands = make([]*discordgo.ApplicationCommand, 0, len(targets))
	for _, guildID := range targets {
		registered, err := b.Session.ApplicationCommandBulkOverwrite(b.Config.AppID, guildID, cmds)
		if err != nil {
			scope := guildID
			if scope == "" {
				scope = "global"
			}
			b.Log.WithError(err).WithField("scope", scope).Error("cannot update commands")
			continue
		}
		b.RegisteredCommands = append(b.RegisteredCommands, registered...)
	}
}

func (b *Bot) Close() {
	b.Log.Info("gracefully shutting down")
	if err := b.Session.Close(); err != nil {
		b.Log.WithError(err).Warn("error closing session")
	}
}
