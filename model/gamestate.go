package model

import "math"

// Defaults for a fresh session.
const (
	DefaultEfficiency    = 1.0
	DefaultAutoClickRate = 1000
	// MinAutoClickRate is the floor boosts cannot go below.
	MinAutoClickRate = 200
)

// GameState is the whole mutable state of one session. JSON names match the
// save format, so snapshots stay portable between versions.
type GameState struct {
	Clicks        int64   `json:"clicks"`
	DataPoints    int64   `json:"dataPoints"`
	Efficiency    float64 `json:"efficiency"`
	AutoClickRate int     `json:"autoClickRate"`
	UpgradeLevel  int     `json:"upgradeLevel"`
	Rules         []Rule  `json:"rules"`

	Active  bool     `json:"-"`
	History *History `json:"-"`
}

// NewGameState returns the default state.
func NewGameState() *GameState {
	return &GameState{
		Efficiency:    DefaultEfficiency,
		AutoClickRate: DefaultAutoClickRate,
		Rules:         []Rule{},
		History:       NewHistory(),
	}
}

// Clone returns a deep copy. Renderers and the persistence layer work on
// clones so they never race the tick loop.
func (gs *GameState) Clone() *GameState {
	c := *gs
	c.Rules = append([]Rule(nil), gs.Rules...)
	if c.Rules == nil {
		c.Rules = []Rule{}
	}
	if gs.History != nil {
		c.History = gs.History.Clone()
	}
	return &c
}

// Valid reports whether the numeric invariants hold.
func (gs *GameState) Valid() bool {
	return gs.Clicks >= 0 &&
		gs.DataPoints >= 0 &&
		gs.Efficiency >= DefaultEfficiency && !math.IsInf(gs.Efficiency, 0) &&
		gs.AutoClickRate >= MinAutoClickRate &&
		gs.UpgradeLevel >= 0
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
