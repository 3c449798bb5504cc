// Package config loads the bot configuration: secrets from the
// environment (.env supported) and tunables from an optional config.yaml.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	BotToken      string
	AppID         string
	LogWebhookURL string
	LogLevel      string
	DatabasePath  string
	// GuildIDs restricts command registration to the listed guilds.
	// Empty means register globally.
	GuildIDs []string
	Scan     ScanConfig
}

// ScanConfig are the history-scan pacing tunables.
type ScanConfig struct {
	ChannelConcurrency int
	MessageInterval    time.Duration
	ProgressInterval   time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Info(".env file not found, relying on environment variables")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./data")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("log.level", "info")
	v.SetDefault("database.path", "data/emoticon.db")
	v.SetDefault("scan.channel_concurrency", 5)
	v.SetDefault("scan.message_interval", 10*time.Millisecond)
	v.SetDefault("scan.progress_interval", 5*time.Second)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	token := v.GetString("bot_token")
	if token == "" {
		return nil, errors.New("BOT_TOKEN environment variable not set")
	}
	appID := v.GetString("app_id")
	if appID == "" {
		return nil, errors.New("APP_ID environment variable not set")
	}

	var guildIDs []string
	for _, id := range strings.Split(v.GetString("guild_ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			guildIDs = append(guildIDs, id)
		}
	}

	return &Config{
		BotToken:      token,
		AppID:         appID,
		LogWebhookURL: v.GetString("log_webhook_url"),
		LogLevel:      v.GetString("log.level"),
		DatabasePath:  v.GetString("database.path"),
		GuildIDs:      guildIDs,
		Scan: ScanConfig{
			ChannelConcurrency: v.GetInt("scan.channel_concurrency"),
			MessageInterval:    v.GetDuration("scan.message_interval"),
			ProgressInterval:   v.GetDuration("scan.progress_interval"),
		},
	}, nil
}
