package rules

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/nstehr/neuroclick/model"
)

// ErrInvalidRule is returned when a rule names a field, operator or action
// outside its enumeration, or carries a non-finite threshold.
var ErrInvalidRule = errors.New("invalid rule")

// NewRule validates the parts of a rule and assembles it. Rules are never
// handed to the engine without passing through here.
func NewRule(id int64, field model.Field, op model.Operator, threshold float64, action model.Action) (model.Rule, error) {
	r := model.Rule{ID: id, Field: field, Operator: op, Threshold: threshold, Action: action}
	if err := Validate(r); err != nil {
		return model.Rule{}, err
	}
	return r, nil
}

// Validate checks r against the enumerations.
func Validate(r model.Rule) error {
	switch {
	case !r.Field.Valid():
		return fmt.Errorf("%w: unknown field %q", ErrInvalidRule, r.Field)
	case !r.Operator.Valid():
		return fmt.Errorf("%w: unknown operator %q", ErrInvalidRule, r.Operator)
	case !r.Action.Valid():
		return fmt.Errorf("%w: unknown action %q", ErrInvalidRule, r.Action)
	case math.IsNaN(r.Threshold) || math.IsInf(r.Threshold, 0):
		return fmt.Errorf("%w: threshold %v is not finite", ErrInvalidRule, r.Threshold)
	}
	return nil
}

// ParseField coerces free-form input ("Clicks", " primary ") to a Field.
func ParseField(s string) (model.Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clicks", "primary", "primaryresource":
		return model.FieldClicks, nil
	case "datapoints", "data", "secondary", "secondaryresource":
		return model.FieldDataPoints, nil
	}
	return "", fmt.Errorf("%w: unknown field %q", ErrInvalidRule, s)
}

// ParseOperator coerces free-form input to an Operator. "=" is accepted as "==".
func ParseOperator(s string) (model.Operator, error) {
	s = strings.TrimSpace(s)
	if s == "=" {
		s = "=="
	}
	op := model.Operator(s)
	if !op.Valid() {
		return "", fmt.Errorf("%w: unknown operator %q", ErrInvalidRule, s)
	}
	return op, nil
}

// ParseAction coerces free-form input to an Action.
func ParseAction(s string) (model.Action, error) {
	a := model.Action(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidRule, s)
	}
	return a, nil
}

// Compile turns a validated rule into bytecode bound to its action.
func Compile(def model.Rule) (*Rule, error) {
	if err := Validate(def); err != nil {
		return nil, err
	}
	r := &Rule{
		Def:          def,
		ConditionSrc: conditionSrc(def),
		Action:       Lookup(def.Action),
	}
	prog, err := expr.Compile(r.ConditionSrc, expr.Env(RuleEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile rule %d: %w", def.ID, err)
	}
	r.program = prog
	return r, nil
}

// conditionSrc renders e.g. `DataPoints >= 100.0`. The threshold is always
// written as a float literal so both sides compare as float64.
func conditionSrc(def model.Rule) string {
	lit := strconv.FormatFloat(def.Threshold, 'f', -1, 64)
	if !strings.ContainsRune(lit, '.') {
		lit += ".0"
	}
	return fmt.Sprintf("%s %s %s", envName(def.Field), def.Operator, lit)
}
