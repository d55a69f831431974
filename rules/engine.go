package rules

import (
	"log/slog"
	"sync"

	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/neuroclick/model"
)

// Engine runs compiled rules against game state each tick.
// Rules fire in insertion order, one evaluation per rule per pass. Actions
// mutate the state immediately, so a later rule sees what an earlier rule
// did in the same pass. There is no fixpoint loop: a rule enabled by a rule
// after it waits for the next tick.
type Engine struct {
	mu    sync.RWMutex
	rules []*Rule
}

// NewEngine compiles all rule conditions into expr bytecode.
func NewEngine(defs []model.Rule) (*Engine, error) {
	compiled, err := compileRules(defs)
	if err != nil {
		return nil, err
	}
	return &Engine{rules: compiled}, nil
}

// Evaluate runs one pass over gs and returns the rules whose condition held.
func (e *Engine) Evaluate(gs *model.GameState) []Firing {
	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	var fired []Firing
	for _, r := range rules {
		result, err := vm.Run(r.program, newEnv(gs))
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Def.ID, "condition", r.ConditionSrc, "error", err)
			continue
		}

		match, ok := result.(bool)
		if !ok || !match {
			continue
		}

		applied := r.Action(gs)
		slog.Debug("rule fired", "rule", r.Def.ID, "condition", r.ConditionSrc, "action", r.Def.Action, "applied", applied)
		fired = append(fired, Firing{RuleID: r.Def.ID, Action: r.Def.Action, Applied: applied})
	}
	return fired
}

// Swap atomically replaces the rule set. Compiles first; if compilation
// fails the old rules remain active.
func (e *Engine) Swap(defs []model.Rule) error {
	compiled, err := compileRules(defs)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.rules = compiled
	e.mu.Unlock()
	slog.Debug("rule set swapped", "count", len(compiled))
	return nil
}

// Len reports how many rules are active.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rules)
}

func compileRules(defs []model.Rule) ([]*Rule, error) {
	compiled := make([]*Rule, 0, len(defs))
	for _, s := range defs {
		r, err := Compile(s)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, r)
	}
	return compiled, nil
}
