package engagement

import "github.com/sleepsheep/sheep/internal/domain"

var unlockables = []domain.Unlockable{
	{ID: "hat_simple", Kind: domain.UnlockAccessory, RequiredPoints: 50},
	{ID: "scarf_cozy", Kind: domain.UnlockAccessory, RequiredPoints: 100},
	{ID: "glasses_cute", Kind: domain.UnlockAccessory, RequiredPoints: 150},
	{ID: "blanket_warm", Kind: domain.UnlockAccessory, RequiredPoints: 200},

	{ID: "meadow", Kind: domain.UnlockTheme, RequiredStreak: 7},
	{ID: "moonlit_hill", Kind: domain.UnlockTheme, RequiredStreak: 14},
	{ID: "cloud_realm", Kind: domain.UnlockTheme, RequiredStreak: 30},

	{ID: "alarm_harp", Kind: domain.UnlockSound, RequiredPoints: 100},
	{ID: "alarm_xylophone", Kind: domain.UnlockSound, RequiredPoints: 250},
	{ID: "alarm_chime", Kind: domain.UnlockSound, RequiredPoints: 500},
}

// AllUnlockables returns every cosmetic reward.
func AllUnlockables() []domain.Unlockable {
	out := make([]domain.Unlockable, len(unlockables))
	copy(out, unlockables)
	return out
}

// UnlockableItems returns the rewards available at the given total and
// streak. Accessories and sounds are gated on points, themes on streak.
func UnlockableItems(points, streak int) []domain.Unlockable {
	out := []domain.Unlockable{}
	for _, u := range unlockables {
		if u.RequiredStreak > 0 {
			if streak >= u.RequiredStreak {
				out = append(out, u)
			}
			continue
		}
		if points >= u.RequiredPoints {
			out = append(out, u)
		}
	}
	return out
}
