package bot

import (
	"os"
	"os/signal"
	"syscall"

	"emoticon-bot/utils"
)

func (b *Bot) Run() error {
	if err := b.Session.Open(); err != nil {
		return err
	}

	b.Log.Info("registering commands")
	b.RefreshCommands()

	b.Log.Info("bot is now running, press CTRL-C to exit")
	if err := utils.LogInfo(b.Config.LogWebhookURL, "System", "Startup", "Bot has started successfully."); err != nil {
		b.Log.WithError(err).Warn("failed to send startup log")
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
	return nil
}
