package emoticon

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"emoticon-bot/bot"
	"emoticon-bot/utils"
	"emoticon-bot/utils/database"
)

func handleStats(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	cpuCount, _ := cpu.Counts(true)
	cpuPercent, _ := cpu.Percent(0, false)
	vm, _ := mem.VirtualMemory()
	hostInfo, _ := host.Info()

	cpuUsage := "n/a"
	if len(cpuPercent) > 0 {
		cpuUsage = fmt.Sprintf("%.1f%%", cpuPercent[0])
	}

	var dbSize int64
	if info, err := os.Stat(b.Config.DatabasePath); err == nil {
		dbSize = info.Size() / 1024 / 1024
	}

	guildRows, err := database.UsageRowCount(b.DB, i.GuildID)
	if err != nil {
		b.Log.WithError(err).Warn("failed to count guild usage rows")
	}
	totalRows, err := database.UsageRowCount(b.DB, "")
	if err != nil {
		b.Log.WithError(err).Warn("failed to count usage rows")
	}

	embed := &discordgo.MessageEmbed{
		Title: "Bot Statistics",
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💻 OS", Value: fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion), Inline: true},
			{Name: "🐹 Go Version", Value: runtime.Version(), Inline: true},
			{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "🔼 CPU Cores", Value: fmt.Sprintf("%d", cpuCount), Inline: true},
			{Name: "🔥 CPU Usage", Value: cpuUsage, Inline: true},
			{Name: "🧠 Memory", Value: fmt.Sprintf("%.1f%% (%d MB / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024), Inline: true},
			{Name: "🗃️ Database Size", Value: fmt.Sprintf("%d MB", dbSize), Inline: true},
			{Name: "📊 Usage Rows (server)", Value: fmt.Sprintf("%d", guildRows), Inline: true},
			{Name: "📈 Usage Rows (total)", Value: fmt.Sprintf("%d", totalRows), Inline: true},
			{Name: "⏱️ WebSocket Latency", Value: s.HeartbeatLatency().String(), Inline: true},
			{Name: "🌍 Cached Guilds", Value: fmt.Sprintf("%d", len(s.State.Guilds)), Inline: true},
			{Name: "⏳ Uptime", Value: time.Since(b.StartedAt).Round(time.Second).String(), Inline: true},
		},
	}
	utils.SendEphemeralEmbed(s, i, embed)
}
