package session

import (
	"math"
	"time"

	"github.com/nstehr/neuroclick/model"
	"github.com/nstehr/neuroclick/rules"
)

// Gain factors applied to efficiency on every tick.
const (
	clickGain = 1.0
	dataGain  = 0.2
)

// AdvanceTick performs one automatic tick on gs: click gain, history sample,
// data gain, then one rule pass. The caller must own gs for the duration.
func AdvanceTick(gs *model.GameState, engine *rules.Engine, now time.Time) []rules.Firing {
	gs.Clicks += clickIncrement(gs)
	gs.History.Append(model.Sample{Time: now, Clicks: gs.Clicks})
	gs.DataPoints += int64(math.Floor(dataGain * gs.Efficiency))
	return engine.Evaluate(gs)
}

func clickIncrement(gs *model.GameState) int64 {
	return int64(math.Floor(clickGain * gs.Efficiency))
}
