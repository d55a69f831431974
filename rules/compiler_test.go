package rules

import (
	"errors"
	"math"
	"testing"

	"github.com/expr-lang/expr"
	"github.com/nstehr/neuroclick/model"
)

func TestNewRuleRejectsOutOfSetValues(t *testing.T) {
	tests := []struct {
		name      string
		field     model.Field
		op        model.Operator
		threshold float64
		action    model.Action
	}{
		{"field", "gold", model.OpGreater, 1, model.ActionTrain},
		{"operator", model.FieldClicks, "!=", 1, model.ActionTrain},
		{"action", model.FieldClicks, model.OpGreater, 1, "sell"},
		{"NaN threshold", model.FieldClicks, model.OpGreater, math.NaN(), model.ActionTrain},
		{"infinite threshold", model.FieldClicks, model.OpGreater, math.Inf(1), model.ActionTrain},
	}
	for _, tc := range tests {
		_, err := NewRule(1, tc.field, tc.op, tc.threshold, tc.action)
		if !errors.Is(err, ErrInvalidRule) {
			t.Errorf("%s: err = %v, want ErrInvalidRule", tc.name, err)
		}
	}
}

func TestNewRule(t *testing.T) {
	r, err := NewRule(42, model.FieldDataPoints, model.OpEqual, 12.5, model.ActionBoost)
	if err != nil {
		t.Fatalf("NewRule: %v", err)
	}
	want := model.Rule{ID: 42, Field: model.FieldDataPoints, Operator: model.OpEqual, Threshold: 12.5, Action: model.ActionBoost}
	if r != want {
		t.Errorf("NewRule = %+v, want %+v", r, want)
	}
}

func TestParseField(t *testing.T) {
	tests := []struct {
		in   string
		want model.Field
	}{
		{"clicks", model.FieldClicks},
		{" Clicks ", model.FieldClicks},
		{"primary", model.FieldClicks},
		{"dataPoints", model.FieldDataPoints},
		{"DATAPOINTS", model.FieldDataPoints},
		{"secondaryResource", model.FieldDataPoints},
	}
	for _, tc := range tests {
		got, err := ParseField(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParseField(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
	if _, err := ParseField("gold"); !errors.Is(err, ErrInvalidRule) {
		t.Errorf("ParseField(gold) err = %v, want ErrInvalidRule", err)
	}
}

func TestParseOperator(t *testing.T) {
	for _, op := range model.Operators {
		got, err := ParseOperator(" " + string(op) + " ")
		if err != nil || got != op {
			t.Errorf("ParseOperator(%q) = %q, %v", op, got, err)
		}
	}
	if got, _ := ParseOperator("="); got != model.OpEqual {
		t.Errorf("ParseOperator(=) = %q, want ==", got)
	}
	if _, err := ParseOperator("=>"); !errors.Is(err, ErrInvalidRule) {
		t.Errorf("ParseOperator(=>) err = %v, want ErrInvalidRule", err)
	}
}

func TestParseAction(t *testing.T) {
	for _, a := range model.Actions {
		got, err := ParseAction("  " + string(a))
		if err != nil || got != a {
			t.Errorf("ParseAction(%q) = %q, %v", a, got, err)
		}
	}
	if got, _ := ParseAction("Upgrade"); got != model.ActionUpgrade {
		t.Errorf("ParseAction(Upgrade) = %q", got)
	}
	if _, err := ParseAction(""); !errors.Is(err, ErrInvalidRule) {
		t.Errorf("ParseAction(\"\") err = %v, want ErrInvalidRule", err)
	}
}

func TestConditionSrc(t *testing.T) {
	tests := []struct {
		rule model.Rule
		want string
	}{
		{model.Rule{Field: model.FieldClicks, Operator: model.OpGreaterEqual, Threshold: 100}, "Clicks >= 100.0"},
		{model.Rule{Field: model.FieldDataPoints, Operator: model.OpLess, Threshold: 2.5}, "DataPoints < 2.5"},
		{model.Rule{Field: model.FieldDataPoints, Operator: model.OpEqual, Threshold: -3}, "DataPoints == -3.0"},
	}
	for _, tc := range tests {
		got := conditionSrc(tc.rule)
		if got != tc.want {
			t.Errorf("conditionSrc(%+v) = %q, want %q", tc.rule, got, tc.want)
		}
		if _, err := expr.Compile(got, expr.Env(RuleEnv{}), expr.AsBool()); err != nil {
			t.Errorf("%q failed to compile: %v", got, err)
		}
	}
}

func TestCompileBindsAction(t *testing.T) {
	for _, a := range model.Actions {
		r, err := Compile(model.Rule{ID: 1, Field: model.FieldClicks, Operator: model.OpGreater, Threshold: 0, Action: a})
		if err != nil {
			t.Fatalf("Compile(%s): %v", a, err)
		}
		if r.Action == nil {
			t.Errorf("Compile(%s) left Action nil", a)
		}
	}
}
