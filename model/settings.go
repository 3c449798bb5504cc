package model

// TieGrouping controls how tied leaderboard entries are listed.
type TieGrouping string

const (
	// TieGroup shows up to a few names plus "and K others".
	TieGroup TieGrouping = "group"
	// TieListAll lists every tied member.
	TieListAll TieGrouping = "list_all"
)

// SettingsTarget names the command a ComponentSettings row applies to.
type SettingsTarget string

const (
	TargetGlobal      SettingsTarget = "global"
	TargetLeaderboard SettingsTarget = "leaderboard"
	TargetInfo        SettingsTarget = "info"
	TargetProfile     SettingsTarget = "profile"
)

// RenderSettings is a fully resolved set of display options.
type RenderSettings struct {
	ShowIDs         bool
	ShowPercentages bool
	CompactMode     bool
	TieGrouping     TieGrouping
	MaxEntries      int
}

// DefaultRenderSettings are the hard-coded bottom tier of the settings
// inheritance chain.
func DefaultRenderSettings() RenderSettings {
	return RenderSettings{
		ShowIDs:         false,
		ShowPercentages: true,
		CompactMode:     false,
		TieGrouping:     TieGroup,
		MaxEntries:      10,
	}
}

// PartialRenderSettings is one tier of display options. A nil field means
// "inherit"; only explicitly set fields override a lower tier.
type PartialRenderSettings struct {
	ShowIDs         *bool
	ShowPercentages *bool
	CompactMode     *bool
	TieGrouping     *TieGrouping
}

// IsZero reports whether no field is set.
func (p *PartialRenderSettings) IsZero() bool {
	return p == nil || (p.ShowIDs == nil && p.ShowPercentages == nil &&
		p.CompactMode == nil && p.TieGrouping == nil)
}

// ComponentSettings is the stored form of one settings tier, per
// (guild, target).
type ComponentSettings struct {
	ID       int64
	GuildID  string
	Target   SettingsTarget
	Settings PartialRenderSettings
}
