package rules

import (
	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/neuroclick/model"
)

// ActionFunc mutates the game state when a rule's condition is true.
// It reports whether the action was applied; an unaffordable action is a
// no-op, not an error.
type ActionFunc func(gs *model.GameState) bool

// Rule is the compiled form of a model.Rule: a condition → action pair.
type Rule struct {
	Def          model.Rule  // persisted definition
	ConditionSrc string      // expr source derived from Def
	program      *vm.Program // compiled bytecode
	Action       ActionFunc
}

// Firing records one rule whose condition held during a pass.
type Firing struct {
	RuleID  int64
	Action  model.Action
	Applied bool
}
