package rules

import "github.com/nstehr/neuroclick/model"

// RuleEnv exposes game state to expr conditions. Resources are floats so a
// condition compares them against fractional thresholds without truncation.
type RuleEnv struct {
	Clicks       float64
	DataPoints   float64
	Efficiency   float64
	UpgradeLevel int
	Interval     int
}

func newEnv(gs *model.GameState) RuleEnv {
	return RuleEnv{
		Clicks:       float64(gs.Clicks),
		DataPoints:   float64(gs.DataPoints),
		Efficiency:   gs.Efficiency,
		UpgradeLevel: gs.UpgradeLevel,
		Interval:     gs.AutoClickRate,
	}
}

// envName maps a rule field to its RuleEnv identifier.
func envName(f model.Field) string {
	switch f {
	case model.FieldClicks:
		return "Clicks"
	case model.FieldDataPoints:
		return "DataPoints"
	}
	return ""
}
