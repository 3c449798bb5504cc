// Package query parses the compact filter language accepted by the
// analytics commands.
package query

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"emoticon-bot/model"
	"emoticon-bot/utils"
)

// ParsedQuery is the structured result of parsing one query string.
// Unresolvable references and bad dates land in Warnings; they never abort
// the parse, and one bad token does not discard the others.
type ParsedQuery struct {
	Channels         []string
	ExcludedChannels []string
	Users            []string
	ExcludedUsers    []string
	// Roles are collected by name; resolution to member sets is up to the
	// caller.
	Roles []string
	// Emojis are substring filters against emoji names.
	Emojis []string

	DateAfter  *time.Time
	DateBefore *time.Time

	// Flags are the runtime display overrides, the highest settings tier.
	Flags model.PartialRenderSettings

	Warnings []string
	Raw      string
}

var (
	channelPattern    = regexp.MustCompile(`(-?)#([\w-]+)`)
	userPattern       = regexp.MustCompile(`(-?)@([\w-]+)`)
	rolePattern       = regexp.MustCompile(`role:(\w+)`)
	emojiPattern      = regexp.MustCompile(`emoji:(\w+)`)
	dateAfterPattern  = regexp.MustCompile(`after:(\S+)`)
	dateBeforePattern = regexp.MustCompile(`before:(\S+)`)
)

// displayFlags in match order: negated forms first so "--no-ids" is
// consumed before "--ids" can match inside it.
var displayFlags = []struct {
	token string
	apply func(*model.PartialRenderSettings)
}{
	{"--no-ids", func(p *model.PartialRenderSettings) { p.ShowIDs = boolPtr(false) }},
	{"--ids", func(p *model.PartialRenderSettings) { p.ShowIDs = boolPtr(true) }},
	{"--no-percentages", func(p *model.PartialRenderSettings) { p.ShowPercentages = boolPtr(false) }},
	{"--percentages", func(p *model.PartialRenderSettings) { p.ShowPercentages = boolPtr(true) }},
	{"--compact", func(p *model.PartialRenderSettings) { p.CompactMode = boolPtr(true) }},
	{"--expanded", func(p *model.PartialRenderSettings) { p.CompactMode = boolPtr(false) }},
}

func boolPtr(v bool) *bool { return &v }

// Parser resolves channel and user references against one guild snapshot.
type Parser struct {
	guild *discordgo.Guild
}

// NewParser builds a parser for a guild. A nil guild disables name
// resolution; numeric references still parse.
func NewParser(guild *discordgo.Guild) *Parser {
	return &Parser{guild: guild}
}

// Parse scans the whole string for each token kind independently; tokens
// may appear in any order and any number of times.
func (p *Parser) Parse(raw string) *ParsedQuery {
	result := &ParsedQuery{Raw: raw}
	if raw == "" {
		return result
	}

	// Strip display flags first so flag text never collides with the
	// filter regexes.
	rest := raw
	for _, f := range displayFlags {
		if strings.Contains(rest, f.token) {
			f.apply(&result.Flags)
			rest = strings.ReplaceAll(rest, f.token, "")
		}
	}

	for _, m := range channelPattern.FindAllStringSubmatch(rest, -1) {
		id, ok := p.resolveChannel(m[2])
		if !ok {
			result.warnUnresolved("channel", m[2], p.channelNames())
			continue
		}
		if m[1] == "-" {
			result.ExcludedChannels = append(result.ExcludedChannels, id)
		} else {
			result.Channels = append(result.Channels, id)
		}
	}

	for _, m := range userPattern.FindAllStringSubmatch(rest, -1) {
		id, ok := p.resolveUser(m[2])
		if !ok {
			result.warnUnresolved("user", m[2], p.memberNames())
			continue
		}
		if m[1] == "-" {
			result.ExcludedUsers = append(result.ExcludedUsers, id)
		} else {
			result.Users = append(result.Users, id)
		}
	}

	for _, m := range rolePattern.FindAllStringSubmatch(rest, -1) {
		result.Roles = append(result.Roles, m[1])
	}
	for _, m := range emojiPattern.FindAllStringSubmatch(rest, -1) {
		result.Emojis = append(result.Emojis, m[1])
	}

	if m := dateAfterPattern.FindStringSubmatch(rest); m != nil {
		result.DateAfter = result.parseDate(m[1])
	}
	if m := dateBeforePattern.FindStringSubmatch(rest); m != nil {
		result.DateBefore = result.parseDate(m[1])
	}

	return result
}

func (q *ParsedQuery) parseDate(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		q.Warnings = append(q.Warnings, fmt.Sprintf("Invalid date format: %s (expected YYYY-MM-DD)", s))
		return nil
	}
	return &t
}

func (q *ParsedQuery) warnUnresolved(kind, ref string, candidates []string) {
	msg := fmt.Sprintf("Could not resolve %s: %s", kind, ref)
	if suggestions := utils.ClosestMatches(ref, candidates, 3); len(suggestions) > 0 {
		msg += " (did you mean: " + strings.Join(suggestions, ", ") + "?)"
	}
	q.Warnings = append(q.Warnings, msg)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (p *Parser) resolveChannel(ref string) (string, bool) {
	if isDigits(ref) {
		return ref, true
	}
	if p.guild == nil {
		return "", false
	}
	for _, ch := range p.guild.Channels {
		if strings.EqualFold(ch.Name, ref) {
			return ch.ID, true
		}
	}
	return "", false
}

func (p *Parser) resolveUser(ref string) (string, bool) {
	if isDigits(ref) {
		return ref, true
	}
	if p.guild == nil {
		return "", false
	}
	for _, m := range p.guild.Members {
		if strings.EqualFold(m.User.Username, ref) || strings.EqualFold(m.Nick, ref) {
			return m.User.ID, true
		}
	}
	return "", false
}

func (p *Parser) channelNames() []string {
	if p.guild == nil {
		return nil
	}
	names := make([]string, 0, len(p.guild.Channels))
	for _, ch := range p.guild.Channels {
		names = append(names, ch.Name)
	}
	return names
}

func (p *Parser) memberNames() []string {
	if p.guild == nil {
		return nil
	}
	var names []string
	for _, m := range p.guild.Members {
		names = append(names, m.User.Username)
		if m.Nick != "" {
			names = append(names, m.Nick)
		}
	}
	return names
}

// HelpText describes the query syntax for the help command.
func HelpText() string {
	return strings.TrimSpace(`
**Filters**
` + "`#channel`" + ` — include a channel · ` + "`-#channel`" + ` — exclude it
` + "`@user`" + ` — include a user · ` + "`-@user`" + ` — exclude them
` + "`role:Name`" + ` — filter by role
` + "`emoji:name`" + ` — filter by emoji name substring
` + "`after:YYYY-MM-DD`" + ` / ` + "`before:YYYY-MM-DD`" + ` — date bounds

**Display flags**
` + "`--ids` / `--no-ids`" + ` — toggle emoji ids
` + "`--percentages` / `--no-percentages`" + ` — toggle percentages
` + "`--compact` / `--expanded`" + ` — output density

**Example:** ` + "`#general -@Bots after:2024-01-01 --compact`")
}
