package render

import (
	"fmt"
	"strings"

	"emoticon-bot/emoji"
	"emoticon-bot/model"
)

// Entry is one aggregated leaderboard row. For emoji leaderboards the
// identity fields are set; for user leaderboards Name carries the display
// name and UserID the id.
type Entry struct {
	EmojiID   string
	EmojiName string
	Animated  bool
	UserID    string
	Name      string
	Count     int64
	// TiedWith lists display names sharing this entry's count, when the
	// caller chose to compute tie groups.
	TiedWith []string
}

// Renderer formats aggregated results as message text. It holds no state
// beyond the resolved settings and performs no queries.
type Renderer struct {
	Settings model.RenderSettings
}

// NewRenderer builds a renderer from resolved settings.
func NewRenderer(settings model.RenderSettings) *Renderer {
	return &Renderer{Settings: settings}
}

// Emoji renders an emoji identity, appending the raw id when show-ids is
// on.
func (r *Renderer) Emoji(id, name string, animated bool) string {
	s := emoji.FormatEmoji(id, name, animated)
	if id != "" && r.Settings.ShowIDs {
		s += fmt.Sprintf(" (`%s`)", id)
	}
	return s
}

// TieGroup renders the members of a tie group: either every name, or up to
// maxShown names plus "and K others".
func (r *Renderer) TieGroup(names []string, maxShown int) string {
	if r.Settings.TieGrouping == model.TieListAll || len(names) <= maxShown {
		return strings.Join(names, ", ")
	}
	shown := names[:maxShown]
	return fmt.Sprintf("%s, and %d others", strings.Join(shown, ", "), len(names)-maxShown)
}

// Leaderboard renders entries as ranked lines. Ranks start at startRank so
// pages after the first keep their absolute positions; total is the
// occurrence sum used for percentages.
func (r *Renderer) Leaderboard(entries []Entry, total int64, startRank int) string {
	if len(entries) == 0 {
		return "*No data found for the specified filters.*"
	}

	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		lines = append(lines, r.entryLine(startRank+i, e, total))
	}
	if r.Settings.CompactMode {
		return strings.Join(lines, " | ")
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) entryLine(rank int, e Entry, total int64) string {
	label := e.Name
	if label == "" {
		label = r.Emoji(e.EmojiID, e.EmojiName, e.Animated)
	}

	pct := 0.0
	if total > 0 {
		pct = float64(e.Count) / float64(total) * 100
	}

	if r.Settings.CompactMode {
		line := fmt.Sprintf("%d. %s (%d)", rank, label, e.Count)
		if r.Settings.ShowPercentages {
			line += fmt.Sprintf(" %.1f%%", pct)
		}
		return line
	}

	line := fmt.Sprintf("**%d.** %s — **%d** uses", rank, label, e.Count)
	if r.Settings.ShowPercentages {
		line += fmt.Sprintf(" (%.1f%%)", pct)
	}
	if len(e.TiedWith) > 0 {
		line += fmt.Sprintf("\n    *(Tie: %s)*", r.TieGroup(e.TiedWith, 3))
	}
	return line
}

// Profile summarizes one user's usage: signature emoji, total, vocabulary
// size and reaction-vs-text split.
type Profile struct {
	DisplayName    string
	SignatureEmoji string
	Total          int64
	UniqueEmojis   int64
	ReactionCount  int64
	TextCount      int64
	TopEmojis      []Entry
}

// ProfileText renders a profile summary.
func (r *Renderer) ProfileText(p Profile) string {
	ratio := 0.0
	if p.Total > 0 {
		ratio = float64(p.ReactionCount) / float64(p.Total) * 100
	}

	sig := p.SignatureEmoji
	if sig == "" {
		sig = "None"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Signature Emoji:** %s\n", sig)
	fmt.Fprintf(&b, "**Total Uses:** %d\n", p.Total)
	fmt.Fprintf(&b, "**Vocabulary:** %d unique emojis\n", p.UniqueEmojis)
	fmt.Fprintf(&b, "**Reaction Ratio:** %.1f%% reactions vs text", ratio)

	if len(p.TopEmojis) > 0 {
		b.WriteString("\n\n**Top Emojis**\n")
		for i, e := range p.TopEmojis {
			fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, r.Emoji(e.EmojiID, e.EmojiName, e.Animated), e.Count)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Comparison renders a two-entity split with percentages and a verdict
// line; equal counts get an explicit tie message.
func (r *Renderer) Comparison(nameA string, countA int64, nameB string, countB int64) string {
	total := countA + countB
	pctA, pctB := 50.0, 50.0
	if total > 0 {
		pctA = float64(countA) / float64(total) * 100
		pctB = float64(countB) / float64(total) * 100
	}

	var verdict string
	switch {
	case countA > countB:
		verdict = fmt.Sprintf("**%s** leads by **%.1f%%**", nameA, leadPercent(countA, countB))
	case countB > countA:
		verdict = fmt.Sprintf("**%s** leads by **%.1f%%**", nameB, leadPercent(countB, countA))
	default:
		verdict = "**It's a tie!**"
	}

	return fmt.Sprintf("**%s**: %d (%.1f%%)\n**%s**: %d (%.1f%%)\n\n%s",
		nameA, countA, pctA, nameB, countB, pctB, verdict)
}

func leadPercent(winner, loser int64) float64 {
	if loser == 0 {
		return 100
	}
	return float64(winner-loser) / float64(loser) * 100
}

// Rank returns the 1-based position of the entry matching the identity in
// fullOrder, which must already be the complete descending-sorted result.
// Ties keep their first-occurrence order; 0 means not present.
func Rank(fullOrder []Entry, emojiID, emojiName string) int {
	for i, e := range fullOrder {
		if e.EmojiID == emojiID && e.EmojiName == emojiName {
			return i + 1
		}
	}
	return 0
}
