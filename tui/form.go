package tui

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/nstehr/neuroclick/model"
	"github.com/nstehr/neuroclick/rules"
)

// ruleDraft holds the form's bound values. It lives behind a pointer so the
// form keeps writing to the same fields while the model is copied around.
type ruleDraft struct {
	Field     string
	Operator  string
	Threshold string
	Action    string
}

func newRuleDraft() *ruleDraft {
	return &ruleDraft{
		Field:     string(model.FieldClicks),
		Operator:  string(model.OpGreaterEqual),
		Threshold: "0",
		Action:    string(model.ActionTrain),
	}
}

func newRuleForm(d *ruleDraft) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("When").
				Options(stringOptions(model.Fields)...).
				Value(&d.Field),
			huh.NewSelect[string]().
				Title("is").
				Options(stringOptions(model.Operators)...).
				Value(&d.Operator),
			huh.NewInput().
				Title("than").
				Value(&d.Threshold).
				Validate(validateThreshold),
			huh.NewSelect[string]().
				Title("then").
				Options(stringOptions(model.Actions)...).
				Value(&d.Action),
		),
	).WithShowHelp(true)
}

func stringOptions[T ~string](values []T) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(values))
	for _, v := range values {
		opts = append(opts, huh.NewOption(string(v), string(v)))
	}
	return opts
}

func validateThreshold(s string) error {
	_, err := parseThreshold(s)
	return err
}

func parseThreshold(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.New("enter a number")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("enter a finite number")
	}
	return v, nil
}

// parse coerces the draft into rule parts.
func (d *ruleDraft) parse() (model.Field, model.Operator, float64, model.Action, error) {
	field, err := rules.ParseField(d.Field)
	if err != nil {
		return "", "", 0, "", err
	}
	op, err := rules.ParseOperator(d.Operator)
	if err != nil {
		return "", "", 0, "", err
	}
	threshold, err := parseThreshold(d.Threshold)
	if err != nil {
		return "", "", 0, "", fmt.Errorf("%w: %v", rules.ErrInvalidRule, err)
	}
	action, err := rules.ParseAction(d.Action)
	if err != nil {
		return "", "", 0, "", err
	}
	return field, op, threshold, action, nil
}
