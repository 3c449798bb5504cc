package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emoticon-bot/model"
)

func boolPtr(v bool) *bool { return &v }

func TestMergeSettingsPrecedence(t *testing.T) {
	global := &model.PartialRenderSettings{ShowIDs: boolPtr(false)}
	command := &model.PartialRenderSettings{ShowIDs: boolPtr(true)}

	got := MergeSettings(global, command, nil)
	assert.True(t, got.ShowIDs)

	runtime := &model.PartialRenderSettings{ShowIDs: boolPtr(false)}
	got = MergeSettings(global, command, runtime)
	assert.False(t, got.ShowIDs)
}

func TestMergeSettingsNilNeverClears(t *testing.T) {
	global := &model.PartialRenderSettings{ShowPercentages: boolPtr(false)}

	// Command tier present but unset fields must not reset the global.
	got := MergeSettings(global, &model.PartialRenderSettings{}, nil)
	assert.False(t, got.ShowPercentages)

	got = MergeSettings(nil, nil, nil)
	assert.Equal(t, model.DefaultRenderSettings(), got)
}

func TestMergeSettingsIdempotent(t *testing.T) {
	tie := model.TieListAll
	global := &model.PartialRenderSettings{ShowIDs: boolPtr(true)}
	command := &model.PartialRenderSettings{TieGrouping: &tie}
	runtime := &model.PartialRenderSettings{CompactMode: boolPtr(true)}

	once := MergeSettings(global, command, runtime)
	again := MergeSettings(AsPartial(once), nil, nil)
	assert.Equal(t, once, again)
}

func TestRankStableTies(t *testing.T) {
	entries := []Entry{
		{EmojiID: "1", EmojiName: "a", Count: 50},
		{EmojiID: "2", EmojiName: "b", Count: 30},
		{EmojiID: "3", EmojiName: "c", Count: 30},
		{EmojiID: "4", EmojiName: "d", Count: 10},
	}

	assert.Equal(t, 1, Rank(entries, "1", "a"))
	assert.Equal(t, 2, Rank(entries, "2", "b"))
	assert.Equal(t, 3, Rank(entries, "3", "c"))
	assert.Equal(t, 4, Rank(entries, "4", "d"))
	assert.Equal(t, 0, Rank(entries, "9", "missing"))
}

func TestLeaderboardExpanded(t *testing.T) {
	r := NewRenderer(model.DefaultRenderSettings())

	out := r.Leaderboard([]Entry{
		{EmojiID: "111", EmojiName: "pepe", Count: 75},
		{EmojiName: "\U0001F600", Count: 25},
	}, 100, 1)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "**1.** <:pepe:111> — **75** uses (75.0%)", lines[0])
	assert.Equal(t, "**2.** \U0001F600 — **25** uses (25.0%)", lines[1])
}

func TestLeaderboardCompactAndStartRank(t *testing.T) {
	s := model.DefaultRenderSettings()
	s.CompactMode = true
	s.ShowPercentages = false
	r := NewRenderer(s)

	out := r.Leaderboard([]Entry{
		{Name: "alice", Count: 5},
		{Name: "bob", Count: 3},
	}, 8, 11)
	assert.Equal(t, "11. alice (5) | 12. bob (3)", out)
}

func TestLeaderboardShowIDs(t *testing.T) {
	s := model.DefaultRenderSettings()
	s.ShowIDs = true
	r := NewRenderer(s)

	out := r.Leaderboard([]Entry{{EmojiID: "111", EmojiName: "pepe", Count: 1}}, 1, 1)
	assert.Contains(t, out, "(`111`)")
}

func TestLeaderboardEmpty(t *testing.T) {
	r := NewRenderer(model.DefaultRenderSettings())
	assert.Equal(t, "*No data found for the specified filters.*", r.Leaderboard(nil, 0, 1))
}

func TestTieGroupModes(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e"}

	grouped := NewRenderer(model.DefaultRenderSettings())
	assert.Equal(t, "a, b, c, and 2 others", grouped.TieGroup(names, 3))

	s := model.DefaultRenderSettings()
	s.TieGrouping = model.TieListAll
	listAll := NewRenderer(s)
	assert.Equal(t, "a, b, c, d, e", listAll.TieGroup(names, 3))

	assert.Equal(t, "a, b", grouped.TieGroup([]string{"a", "b"}, 3))
}

func TestComparison(t *testing.T) {
	r := NewRenderer(model.DefaultRenderSettings())

	out := r.Comparison("alice", 150, "bob", 100)
	assert.Contains(t, out, "**alice**: 150 (60.0%)")
	assert.Contains(t, out, "**bob**: 100 (40.0%)")
	assert.Contains(t, out, "**alice** leads by **50.0%**")

	tie := r.Comparison("a", 10, "b", 10)
	assert.Contains(t, tie, "**It's a tie!**")

	blowout := r.Comparison("a", 5, "b", 0)
	assert.Contains(t, blowout, "leads by **100.0%**")
}

func TestProfileText(t *testing.T) {
	r := NewRenderer(model.DefaultRenderSettings())

	out := r.ProfileText(Profile{
		DisplayName:    "alice",
		SignatureEmoji: "<:pepe:111>",
		Total:          200,
		UniqueEmojis:   12,
		ReactionCount:  50,
		TextCount:      150,
		TopEmojis:      []Entry{{EmojiID: "111", EmojiName: "pepe", Count: 80}},
	})
	assert.Contains(t, out, "**Signature Emoji:** <:pepe:111>")
	assert.Contains(t, out, "**Vocabulary:** 12 unique emojis")
	assert.Contains(t, out, "**Reaction Ratio:** 25.0% reactions vs text")
	assert.Contains(t, out, "1. <:pepe:111> (80)")

	empty := r.ProfileText(Profile{DisplayName: "bob"})
	assert.Contains(t, empty, "**Signature Emoji:** None")
	assert.Contains(t, empty, "0.0% reactions")
}
