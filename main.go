package main

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"emoticon-bot/bot"
	"emoticon-bot/config"
	"emoticon-bot/handlers"
	"emoticon-bot/utils/database"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), os.ModePerm); err != nil {
		log.WithError(err).Fatal("failed to create data directory")
	}
	db, err := database.Init(cfg.DatabasePath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer db.Close()

	b, err := bot.New(cfg, db, log)
	if err != nil {
		log.WithError(err).Fatal("failed to create bot")
	}
	defer b.Close()

	handlers.Register(b)

	if err := b.Run(); err != nil {
		log.WithError(err).Fatal("failed to start bot")
	}
}
