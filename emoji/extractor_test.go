package emoji

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guildEmojis() []*discordgo.Emoji {
	return []*discordgo.Emoji{
		{ID: "111", Name: "pepe"},
		{ID: "222", Name: "kek", Animated: true},
	}
}

func TestExtractMessageCustomEmoji(t *testing.T) {
	x := NewExtractor(guildEmojis())

	got := x.ExtractMessage("hello <:pepe:111> world <a:kek:222>")
	require.Len(t, got, 2)

	assert.Equal(t, "111", got[0].ID)
	assert.Equal(t, "pepe", got[0].Name)
	assert.False(t, got[0].Animated)
	assert.False(t, got[0].IsExternal)
	assert.Equal(t, int64(1), got[0].Count)

	assert.Equal(t, "222", got[1].ID)
	assert.True(t, got[1].Animated)
}

func TestExtractMessageRepeatedTagSumsCount(t *testing.T) {
	x := NewExtractor(guildEmojis())

	got := x.ExtractMessage("<:pepe:111> <:pepe:111> <:pepe:111>")
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].Count)
}

func TestExtractMessageExternalEmoji(t *testing.T) {
	x := NewExtractor(guildEmojis())

	got := x.ExtractMessage("<:stolen:999>")
	require.Len(t, got, 1)
	assert.True(t, got[0].IsExternal)
}

func TestExtractMessageUnicodeEmoji(t *testing.T) {
	x := NewExtractor(nil)

	got := x.ExtractMessage("nice \U0001F600 very \U0001F600 wow \U0001F680")
	require.Len(t, got, 2)

	assert.Empty(t, got[0].ID)
	assert.Equal(t, "\U0001F600", got[0].Name)
	assert.Equal(t, int64(2), got[0].Count)
	assert.Equal(t, "\U0001F680", got[1].Name)
	assert.Equal(t, int64(1), got[1].Count)
}

func TestExtractMessageMalformedTagIgnored(t *testing.T) {
	x := NewExtractor(guildEmojis())

	assert.Empty(t, x.ExtractMessage("<:broken:abc> <pepe:111> ::111::"))
}

func TestExtractMessageIdentityExclusive(t *testing.T) {
	x := NewExtractor(guildEmojis())

	for _, e := range x.ExtractMessage("<:pepe:111> \U0001F600") {
		if e.ID != "" {
			assert.NotEmpty(t, e.Name, "custom emoji keep their name")
		} else {
			assert.NotEmpty(t, e.Name, "unicode emoji carry the character")
		}
	}
}

func TestExtractReaction(t *testing.T) {
	x := NewExtractor(guildEmojis())

	got := x.ExtractReaction(&discordgo.MessageReactions{
		Count: 7,
		Emoji: &discordgo.Emoji{ID: "111", Name: "pepe"},
	})
	assert.Equal(t, "111", got.ID)
	assert.Equal(t, int64(7), got.Count)
	assert.False(t, got.IsExternal)

	uni := x.ExtractReaction(&discordgo.MessageReactions{
		Count: 2,
		Emoji: &discordgo.Emoji{Name: "\U0001F600"},
	})
	assert.Empty(t, uni.ID)
	assert.Equal(t, "\U0001F600", uni.Name)
	assert.Equal(t, int64(2), uni.Count)
}

func TestParseOne(t *testing.T) {
	x := NewExtractor(guildEmojis())

	e, ok := x.ParseOne("<a:kek:222>")
	require.True(t, ok)
	assert.Equal(t, "222", e.ID)

	_, ok = x.ParseOne("just text")
	assert.False(t, ok)
}

func TestFormatEmoji(t *testing.T) {
	assert.Equal(t, "<:pepe:111>", FormatEmoji("111", "pepe", false))
	assert.Equal(t, "<a:kek:222>", FormatEmoji("222", "kek", true))
	assert.Equal(t, "\U0001F600", FormatEmoji("", "\U0001F600", false))
}
