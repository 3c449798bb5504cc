// Package handlers wires gateway events and interactions to the analytics
// engine: passive message/reaction tracking plus the /emoticon command
// dispatch.
package handlers

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"emoticon-bot/bot"
	"emoticon-bot/handlers/emoticon"
	"emoticon-bot/utils"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"emoticon": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			emoticon.Handle(s, i, b)
		},
	}
	addHandlers(b)
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.Log.Infof("logged in as %s#%s", s.State.User.Username, s.State.User.Discriminator)
		if err := utils.LogInfo(b.Config.LogWebhookURL, "System", "Ready", "Gateway session established."); err != nil {
			b.Log.WithError(err).Warn("failed to send ready log")
		}
	})

	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
				h(s, i)
			}
		case discordgo.InteractionMessageComponent:
			if strings.HasPrefix(i.MessageComponentData().CustomID, "emoticon_filters:") {
				emoticon.HandleFilterListPage(s, i, b)
			}
		}
	})

	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		handleMessageCreate(s, m, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageUpdate) {
		handleMessageUpdate(s, m, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageDelete) {
		handleMessageDelete(s, m, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		handleReactionAdd(s, r, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
		handleReactionRemove(s, r, b)
	})
}
