package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/nstehr/neuroclick/model"
	"github.com/nstehr/neuroclick/rules"
)

// SaveKey is the single key the snapshot lives under.
const SaveKey = "neuroclick_save"

// SaveInterval is the autosave cadence.
const SaveInterval = 5 * time.Second

// ErrMalformedSnapshot means the stored blob could not be turned back into a
// valid state. Callers fall back to defaults.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// snapshot is the persisted subset of model.GameState.
type snapshot struct {
	Clicks        int64        `json:"clicks"`
	DataPoints    int64        `json:"dataPoints"`
	Efficiency    float64      `json:"efficiency"`
	AutoClickRate int          `json:"autoClickRate"`
	UpgradeLevel  int          `json:"upgradeLevel"`
	Rules         []model.Rule `json:"rules"`
}

// wireSnapshot decodes leniently: numbers arrive as float64 (other writers
// may emit 42.0) and pointers tell a missing field from a zero one.
type wireSnapshot struct {
	Clicks        *float64        `json:"clicks"`
	DataPoints    *float64        `json:"dataPoints"`
	Efficiency    *float64        `json:"efficiency"`
	AutoClickRate *float64        `json:"autoClickRate"`
	UpgradeLevel  *float64        `json:"upgradeLevel"`
	Rules         json.RawMessage `json:"rules"`
}

// Encode renders the persisted fields of gs. History and Active are not saved.
func Encode(gs *model.GameState) (string, error) {
	s := snapshot{
		Clicks:        gs.Clicks,
		DataPoints:    gs.DataPoints,
		Efficiency:    gs.Efficiency,
		AutoClickRate: gs.AutoClickRate,
		UpgradeLevel:  gs.UpgradeLevel,
		Rules:         gs.Rules,
	}
	if s.Rules == nil {
		s.Rules = []model.Rule{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(b), nil
}

// Decode parses a snapshot blob. Required numeric fields must be present and
// satisfy the state invariants; rules default to empty. Rules that fail
// validation are dropped with a warning so one bad rule does not cost the
// whole save.
func Decode(blob string) (*model.GameState, error) {
	var w wireSnapshot
	if err := json.Unmarshal([]byte(blob), &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	clicks, err := wholeNumber("clicks", w.Clicks)
	if err != nil {
		return nil, err
	}
	dataPoints, err := wholeNumber("dataPoints", w.DataPoints)
	if err != nil {
		return nil, err
	}
	rate, err := wholeNumber("autoClickRate", w.AutoClickRate)
	if err != nil {
		return nil, err
	}
	level, err := wholeNumber("upgradeLevel", w.UpgradeLevel)
	if err != nil {
		return nil, err
	}
	if w.Efficiency == nil {
		return nil, fmt.Errorf("%w: missing efficiency", ErrMalformedSnapshot)
	}

	gs := model.NewGameState()
	gs.Clicks = clicks
	gs.DataPoints = dataPoints
	gs.Efficiency = *w.Efficiency
	gs.AutoClickRate = int(rate)
	gs.UpgradeLevel = int(level)
	if !gs.Valid() {
		return nil, fmt.Errorf("%w: values out of range", ErrMalformedSnapshot)
	}

	gs.Rules = decodeRules(w.Rules)
	return gs, nil
}

func wholeNumber(name string, v *float64) (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: missing %s", ErrMalformedSnapshot, name)
	}
	if *v != math.Trunc(*v) || math.Abs(*v) > 1<<53 {
		return 0, fmt.Errorf("%w: %s = %v is not a whole number", ErrMalformedSnapshot, name, *v)
	}
	return int64(*v), nil
}

func decodeRules(raw json.RawMessage) []model.Rule {
	out := []model.Rule{}
	if len(raw) == 0 || string(raw) == "null" {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		slog.Warn("discarding unreadable rules", "error", err)
		return out
	}
	for _, item := range items {
		var r model.Rule
		if err := json.Unmarshal(item, &r); err != nil {
			slog.Warn("dropping unreadable rule", "rule", string(item), "error", err)
			continue
		}
		if err := rules.Validate(r); err != nil {
			slog.Warn("dropping invalid rule", "rule", r.ID, "error", err)
			continue
		}
		out = append(out, r)
	}
	return out
}

// Save writes the snapshot of gs under SaveKey.
func Save(ctx context.Context, store Store, gs *model.GameState) error {
	blob, err := Encode(gs)
	if err != nil {
		return err
	}
	if err := store.Set(ctx, SaveKey, blob); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot under SaveKey. ok is false when nothing was saved.
func Load(ctx context.Context, store Store) (gs *model.GameState, ok bool, err error) {
	blob, found, err := store.Get(ctx, SaveKey)
	if err != nil {
		return nil, false, fmt.Errorf("load snapshot: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	gs, err = Decode(blob)
	if err != nil {
		return nil, true, err
	}
	return gs, true, nil
}

// Export returns the raw stored blob, or "" when nothing was saved.
func Export(ctx context.Context, store Store) (string, error) {
	blob, _, err := store.Get(ctx, SaveKey)
	if err != nil {
		return "", fmt.Errorf("export snapshot: %w", err)
	}
	return blob, nil
}

// Import replaces the stored blob verbatim. The live state is untouched; a
// session must reload to pick it up.
func Import(ctx context.Context, store Store, blob string) error {
	if err := store.Set(ctx, SaveKey, blob); err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	return nil
}
