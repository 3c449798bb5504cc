package emoticon

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"emoticon-bot/bot"
	"emoticon-bot/model"
	"emoticon-bot/scanner"
	"emoticon-bot/utils"
	"emoticon-bot/utils/database"
)

func handleScan(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	if !hasManageGuild(i) {
		utils.SendErrorResponse(s, i, "You need the Manage Server permission to start a scan.")
		return
	}

	// a running scan turns this into a status view
	if job := b.Scans.Running(i.GuildID); job != nil {
		utils.SendEphemeralEmbed(s, i, scanProgressEmbed(job.Snapshot()))
		return
	}

	scanOpts := model.ScanOptions{SyncMode: model.SyncAppend}
	if stringOption(opts, "scope", "server") == "current" {
		scanOpts.ChannelID = i.ChannelID
	}
	if stringOption(opts, "sync_mode", "append") == "rescan" {
		scanOpts.SyncMode = model.SyncRescan
	}
	scanOpts.DryRun, _ = boolOption(opts, "dry_run")

	guild, err := b.Guild(i.GuildID)
	if err != nil {
		utils.SendErrorResponse(s, i, "Could not resolve this server.")
		return
	}

	if err := utils.DeferResponse(s, i, false); err != nil {
		b.Log.WithError(err).Warn("failed to defer scan response")
		return
	}

	// the start embed goes out before the job exists so a fast scan's
	// completion embed is never overwritten by it
	interaction := i.Interaction
	utils.EditResponseEmbed(s, interaction, analyticsEmbed("🔍 Scan Started",
		"Indexing channel history. Progress updates will appear here.\nUse `/emoticon stop` to cancel."))

	_, err = b.Scans.Start(s, guild, scanOpts, func(p model.ScanProgress) {
		utils.EditResponseEmbed(s, interaction, scanProgressEmbed(p))
	})
	if errors.Is(err, scanner.ErrScanActive) {
		utils.EditResponseError(s, interaction, "A scan is already running. Use `/emoticon stop` to cancel it.")
		return
	}
	if err != nil {
		utils.EditResponseError(s, interaction, "Failed to start the scan.")
		return
	}

	mode := "append"
	if scanOpts.SyncMode == model.SyncRescan {
		mode = "rescan"
	}
	detail := fmt.Sprintf("Guild: %s, mode: %s, dry run: %t", i.GuildID, mode, scanOpts.DryRun)
	if err := utils.LogInfo(b.Config.LogWebhookURL, "Scanner", "Scan started", detail); err != nil {
		b.Log.WithError(err).Warn("failed to send scan log")
	}
}

func handleStop(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !hasManageGuild(i) {
		utils.SendErrorResponse(s, i, "You need the Manage Server permission to stop a scan.")
		return
	}
	if b.Scans.Stop(i.GuildID) {
		utils.SendEphemeralResponse(s, i, "⏹️ Cancelling the scan. It may take a moment to wind down.")
		return
	}
	utils.SendEphemeralResponse(s, i, "No scan is currently running.")
}

func handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if job := b.Scans.Running(i.GuildID); job != nil {
		utils.SendEphemeralEmbed(s, i, scanProgressEmbed(job.Snapshot()))
		return
	}

	progress, err := database.GetScanProgress(b.DB, i.GuildID)
	if err != nil {
		b.Log.WithError(err).Warn("failed to load scan progress")
		utils.SendErrorResponse(s, i, "Could not load the scan status.")
		return
	}
	if progress == nil || progress.Status == model.ScanIdle {
		utils.SendEphemeralResponse(s, i, "No scan is currently in progress.")
		return
	}

	if progress.Status == model.ScanScanning {
		// persisted "scanning" with no live job means a previous process
		// died mid-scan
		embed := scanProgressEmbed(*progress)
		embed.Title = "⚠️ Stale Scan Record"
		embed.Description = "A previous scan did not finish cleanly. Starting a new scan is safe."
		utils.SendEphemeralEmbed(s, i, embed)
		return
	}

	statusText := map[model.ScanStatus]string{
		model.ScanCompleted: "✅ Completed",
		model.ScanCancelled: "⏹️ Cancelled",
		model.ScanFailed:    "❌ Failed",
	}[progress.Status]

	embed := analyticsEmbed("Scan Status", "")
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Status", Value: statusText, Inline: true},
		{Name: "Last Run", Value: fmt.Sprintf("<t:%d:R>", progress.StartedAt), Inline: true},
		{Name: "Messages", Value: fmt.Sprintf("%d", progress.ScannedMessages), Inline: true},
	}
	if progress.LastError != "" {
		lastErr := progress.LastError
		if len(lastErr) > 200 {
			lastErr = lastErr[:200]
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Last Error", Value: lastErr})
	}
	utils.SendEphemeralEmbed(s, i, embed)
}

func scanProgressEmbed(p model.ScanProgress) *discordgo.MessageEmbed {
	switch p.Status {
	case model.ScanCompleted:
		embed := analyticsEmbed("✅ Scan Complete", "")
		embed.Fields = progressFields(p)
		return embed
	case model.ScanCancelled:
		embed := analyticsEmbed("⏹️ Scan Cancelled", "")
		embed.Fields = progressFields(p)
		return embed
	case model.ScanFailed:
		embed := analyticsEmbed("❌ Scan Failed", p.LastError)
		embed.Fields = progressFields(p)
		return embed
	default:
		pct := 0.0
		if p.TotalChannels > 0 {
			pct = float64(p.ScannedChannels) / float64(p.TotalChannels) * 100
		}
		embed := analyticsEmbed("📊 Scan in Progress",
			fmt.Sprintf("Progress: **%.1f%%**\n\nUse `/emoticon stop` to cancel the scan.", pct))
		embed.Fields = progressFields(p)
		return embed
	}
}

func progressFields(p model.ScanProgress) []*discordgo.MessageEmbedField {
	return []*discordgo.MessageEmbedField{
		{Name: "Channels", Value: fmt.Sprintf("%d/%d", p.ScannedChannels, p.TotalChannels), Inline: true},
		{Name: "Messages", Value: fmt.Sprintf("%d", p.ScannedMessages), Inline: true},
		{Name: "Emojis Found", Value: fmt.Sprintf("%d", p.EmojisFound), Inline: true},
	}
}
