package rules

import (
	"log/slog"

	"github.com/nstehr/neuroclick/model"
)

// Action costs and effects.
const (
	TrainCost         = 100
	TrainGain         = 0.1
	UpgradeBaseCost   = 500
	UpgradeCostStep   = 250
	UpgradeGain       = 0.2
	BoostCost         = 200
	BoostIntervalStep = 100
)

// UpgradeCost is the click price of the next upgrade at the given level.
func UpgradeCost(level int) int64 {
	return UpgradeBaseCost + int64(level)*UpgradeCostStep
}

func CanTrain(gs *model.GameState) bool   { return gs.DataPoints >= TrainCost }
func CanUpgrade(gs *model.GameState) bool { return gs.Clicks >= UpgradeCost(gs.UpgradeLevel) }
func CanBoost(gs *model.GameState) bool   { return gs.DataPoints >= BoostCost }

// Train spends data points to raise efficiency by 0.1.
func Train(gs *model.GameState) bool {
	if !CanTrain(gs) {
		return false
	}
	gs.DataPoints -= TrainCost
	gs.Efficiency = model.Round2(gs.Efficiency + TrainGain)
	slog.Debug("trained", "efficiency", gs.Efficiency, "dataPoints", gs.DataPoints)
	return true
}

// Upgrade spends clicks to raise efficiency by 0.2. Each purchase makes the
// next one 250 clicks dearer.
func Upgrade(gs *model.GameState) bool {
	cost := UpgradeCost(gs.UpgradeLevel)
	if gs.Clicks < cost {
		return false
	}
	gs.Clicks -= cost
	gs.Efficiency = model.Round2(gs.Efficiency + UpgradeGain)
	gs.UpgradeLevel++
	slog.Debug("upgraded", "level", gs.UpgradeLevel, "cost", cost, "efficiency", gs.Efficiency)
	return true
}

// Boost spends data points to shorten the auto-click interval, never below
// the 200ms floor.
func Boost(gs *model.GameState) bool {
	if !CanBoost(gs) {
		return false
	}
	gs.DataPoints -= BoostCost
	gs.AutoClickRate = max(model.MinAutoClickRate, gs.AutoClickRate-BoostIntervalStep)
	slog.Debug("boosted", "interval", gs.AutoClickRate, "dataPoints", gs.DataPoints)
	return true
}

var actions = map[model.Action]ActionFunc{
	model.ActionTrain:   Train,
	model.ActionUpgrade: Upgrade,
	model.ActionBoost:   Boost,
}

// Lookup returns the function for a, or nil when a is not in the set.
func Lookup(a model.Action) ActionFunc {
	return actions[a]
}
