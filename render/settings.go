// Package render turns aggregated usage into leaderboard, profile and
// comparison text, under three-tier inheritable display settings.
package render

import "emoticon-bot/model"

// MergeSettings resolves the settings inheritance chain into a concrete
// value. Precedence, highest first: runtime flags, command-specific stored
// setting, global stored setting, hard-coded defaults. A nil field at a
// higher tier never clears a lower tier's value.
func MergeSettings(global, command, runtime *model.PartialRenderSettings) model.RenderSettings {
	out := model.DefaultRenderSettings()
	for _, tier := range []*model.PartialRenderSettings{global, command, runtime} {
		if tier == nil {
			continue
		}
		if tier.ShowIDs != nil {
			out.ShowIDs = *tier.ShowIDs
		}
		if tier.ShowPercentages != nil {
			out.ShowPercentages = *tier.ShowPercentages
		}
		if tier.CompactMode != nil {
			out.CompactMode = *tier.CompactMode
		}
		if tier.TieGrouping != nil {
			out.TieGrouping = *tier.TieGrouping
		}
	}
	return out
}

// AsPartial converts a resolved settings value back into a fully populated
// tier, so re-merging a resolved value is an identity operation.
func AsPartial(s model.RenderSettings) *model.PartialRenderSettings {
	tie := s.TieGrouping
	return &model.PartialRenderSettings{
		ShowIDs:         &s.ShowIDs,
		ShowPercentages: &s.ShowPercentages,
		CompactMode:     &s.CompactMode,
		TieGrouping:     &tie,
	}
}
