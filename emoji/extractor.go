// Package emoji extracts normalized emoji-usage tuples from message content
// and reaction payloads.
package emoji

import (
	"regexp"

	"github.com/bwmarrin/discordgo"
)

// Extracted is one normalized emoji occurrence tuple. ID is empty for
// unicode emoji, in which case Name holds the character itself.
type Extracted struct {
	ID         string
	Name       string
	Animated   bool
	IsExternal bool
	Count      int64
}

// customEmojiPattern matches the bracket form <:name:id> / <a:name:id>.
// Anything that does not match is simply not an emoji, never an error.
var customEmojiPattern = regexp.MustCompile(`<(a)?:(\w+):(\d+)>`)

// unicodeEmojiRanges are the recognized codepoint blocks: emoticons,
// pictographs, transport, alchemical, geometric extended, arrows-C,
// supplemental symbols, chess, extended-A, dingbats and enclosed
// characters. Codepoints are matched one at a time; multi-codepoint
// sequences (flags, ZWJ combos, skin-tone modifiers) are intentionally not
// merged into grapheme clusters, since changing that would break
// comparability with previously recorded counts.
var unicodeEmojiRanges = [][2]rune{
	{0x1F600, 0x1F64F},
	{0x1F300, 0x1F5FF},
	{0x1F680, 0x1F6FF},
	{0x1F700, 0x1F77F},
	{0x1F780, 0x1F7FF},
	{0x1F800, 0x1F8FF},
	{0x1F900, 0x1F9FF},
	{0x1FA00, 0x1FA6F},
	{0x1FA70, 0x1FAFF},
	{0x2702, 0x27B0},
	{0x24C2, 0x1F251},
}

func isEmojiRune(r rune) bool {
	for _, rng := range unicodeEmojiRanges {
		if r >= rng[0] && r <= rng[1] {
			return true
		}
	}
	return false
}

// Extractor turns raw message text and reaction payloads into Extracted
// tuples. The guild's own emoji id set is captured at construction time, so
// an Extractor must not outlive a guild emoji change; build one per event.
type Extractor struct {
	guildEmojiIDs map[string]bool
}

// NewExtractor builds an extractor for a guild's current emoji list. A nil
// or empty list means every custom emoji is considered external.
func NewExtractor(guildEmojis []*discordgo.Emoji) *Extractor {
	ids := make(map[string]bool, len(guildEmojis))
	for _, e := range guildEmojis {
		ids[e.ID] = true
	}
	return &Extractor{guildEmojiIDs: ids}
}

// ExtractMessage returns the deduplicated emoji tuples found in content.
// Repeats of the same identity are summed into one tuple, preserving
// first-seen order.
func (x *Extractor) ExtractMessage(content string) []Extracted {
	var found []Extracted

	for _, m := range customEmojiPattern.FindAllStringSubmatch(content, -1) {
		found = append(found, Extracted{
			ID:         m[3],
			Name:       m[2],
			Animated:   m[1] == "a",
			IsExternal: !x.guildEmojiIDs[m[3]],
			Count:      1,
		})
	}

	for _, r := range content {
		if isEmojiRune(r) {
			found = append(found, Extracted{
				Name:  string(r),
				Count: 1,
			})
		}
	}

	return consolidate(found)
}

// ExtractReaction returns one tuple for a message reaction, carrying the
// reaction's aggregate count. Live single add/remove events should force
// Count to 1 afterwards.
func (x *Extractor) ExtractReaction(r *discordgo.MessageReactions) Extracted {
	e := x.ExtractEmoji(r.Emoji)
	if r.Count > 0 {
		e.Count = int64(r.Count)
	}
	return e
}

// ExtractEmoji normalizes a single discordgo emoji value.
func (x *Extractor) ExtractEmoji(e *discordgo.Emoji) Extracted {
	if e.ID == "" {
		// Unicode emoji arrive with the character in the name field.
		return Extracted{Name: e.Name, Count: 1}
	}
	name := e.Name
	if name == "" {
		name = "unknown"
	}
	return Extracted{
		ID:         e.ID,
		Name:       name,
		Animated:   e.Animated,
		IsExternal: !x.guildEmojiIDs[e.ID],
		Count:      1,
	}
}

// ParseOne extracts the first emoji from a user-supplied argument string,
// for commands that take an emoji parameter. ok is false when the string
// contains no recognizable emoji.
func (x *Extractor) ParseOne(s string) (Extracted, bool) {
	all := x.ExtractMessage(s)
	if len(all) == 0 {
		return Extracted{}, false
	}
	return all[0], true
}

// Format renders the tuple back to its message form: the bracket tag for
// custom emoji, the character itself for unicode.
func (e Extracted) Format() string {
	return FormatEmoji(e.ID, e.Name, e.Animated)
}

// FormatEmoji renders an emoji identity to its message form.
func FormatEmoji(id, name string, animated bool) string {
	if id == "" {
		return name
	}
	prefix := ""
	if animated {
		prefix = "a"
	}
	return "<" + prefix + ":" + name + ":" + id + ">"
}

func consolidate(in []Extracted) []Extracted {
	var out []Extracted
	index := make(map[string]int, len(in))
	for _, e := range in {
		key := e.ID + ":" + e.Name
		if i, ok := index[key]; ok {
			out[i].Count += e.Count
			continue
		}
		index[key] = len(out)
		out = append(out, e)
	}
	return out
}
