package emoticon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"emoticon-bot/model"
	"emoticon-bot/render"
)

func TestGroupTies(t *testing.T) {
	entries := []render.Entry{
		{Name: "alice", Count: 10},
		{Name: "bob", Count: 7},
		{Name: "carol", Count: 7},
		{Name: "dave", Count: 7},
		{Name: "erin", Count: 3},
	}

	grouped := groupTies(entries)

	assert.Len(t, grouped, 3)
	assert.Equal(t, "alice", grouped[0].Name)
	assert.Empty(t, grouped[0].TiedWith)
	assert.Equal(t, "bob", grouped[1].Name)
	assert.Equal(t, []string{"carol", "dave"}, grouped[1].TiedWith)
	assert.Equal(t, "erin", grouped[2].Name)
}

func TestGroupTiesNoTies(t *testing.T) {
	entries := []render.Entry{
		{Name: "alice", Count: 5},
		{Name: "bob", Count: 4},
	}
	assert.Equal(t, entries, groupTies(entries))
}

func TestToggleID(t *testing.T) {
	ids, changed := toggleID(nil, "123", true)
	assert.True(t, changed)
	assert.Equal(t, []string{"123"}, ids)

	ids, changed = toggleID(ids, "123", true)
	assert.False(t, changed)
	assert.Equal(t, []string{"123"}, ids)

	ids, changed = toggleID(ids, "123", false)
	assert.True(t, changed)
	assert.Empty(t, ids)

	ids, changed = toggleID(ids, "456", false)
	assert.False(t, changed)
	assert.Empty(t, ids)
}

func TestThreadPolicyLabel(t *testing.T) {
	assert.Equal(t, "ignore", threadPolicyLabel(model.ThreadsIgnore))
	assert.Equal(t, "active", threadPolicyLabel(model.ThreadsActiveOnly))
	assert.Equal(t, "all", threadPolicyLabel(model.ThreadsAll))
}

func TestSettingValue(t *testing.T) {
	assert.Equal(t, "inherit", settingValue(nil))
	v := true
	assert.Equal(t, "true", settingValue(&v))

	assert.Equal(t, "inherit", tieValue(nil))
	tie := model.TieListAll
	assert.Equal(t, "list_all", tieValue(&tie))
}
