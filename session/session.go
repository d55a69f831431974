// Package session owns a running game: the state, the rule engine, the tick
// scheduler and the autosave loop. Every mutation goes through Session's lock,
// so a tick, a manual action and a save snapshot never interleave.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/nstehr/neuroclick/model"
	"github.com/nstehr/neuroclick/rules"
	"github.com/nstehr/neuroclick/storage"
)

// Session is the single writer of one player's GameState.
type Session struct {
	mu     sync.Mutex
	saveMu sync.Mutex // orders snapshot writes against imports and resets
	store  storage.Store
	state  *model.GameState
	engine *rules.Engine

	stop chan struct{} // non-nil while the scheduler runs
	wg   sync.WaitGroup

	obsMu     sync.RWMutex
	observers []func(model.View)

	now          func() time.Time
	after        func(time.Duration) <-chan time.Time
	saveInterval time.Duration
}

// New creates a session and restores it from store. A missing or malformed
// snapshot yields the default state; it is never fatal.
func New(ctx context.Context, store storage.Store) *Session {
	engine, _ := rules.NewEngine(nil)
	s := &Session{
		store:        store,
		engine:       engine,
		now:          time.Now,
		after:        time.After,
		saveInterval: storage.SaveInterval,
	}
	s.mu.Lock()
	s.reloadLocked(ctx)
	s.mu.Unlock()
	return s
}

// reloadLocked replaces the live state with whatever the store holds.
func (s *Session) reloadLocked(ctx context.Context) {
	gs, ok, err := storage.Load(ctx, s.store)
	switch {
	case err != nil:
		slog.Warn("could not restore saved game, starting fresh", "error", err)
		gs = model.NewGameState()
	case !ok:
		slog.Info("no saved game, starting fresh")
		gs = model.NewGameState()
	default:
		slog.Info("saved game restored", "clicks", gs.Clicks, "dataPoints", gs.DataPoints,
			"efficiency", gs.Efficiency, "interval", gs.AutoClickRate, "rules", len(gs.Rules))
	}

	if err := s.engine.Swap(gs.Rules); err != nil {
		slog.Error("restored rules failed to compile, dropping them", "error", err)
		gs.Rules = []model.Rule{}
		_ = s.engine.Swap(nil)
	}
	s.state = gs
}

// Subscribe registers fn to receive a view after every tick and mutation.
// fn runs outside the session lock and must not block for long.
func (s *Session) Subscribe(fn func(model.View)) {
	s.obsMu.Lock()
	s.observers = append(s.observers, fn)
	s.obsMu.Unlock()
}

func (s *Session) notify(v model.View) {
	observeState(v)
	s.obsMu.RLock()
	observers := s.observers
	s.obsMu.RUnlock()
	for _, fn := range observers {
		fn(v)
	}
}

// Snapshot returns a deep copy of the current state for rendering.
func (s *Session) Snapshot() model.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() model.View {
	gs := s.state
	return model.View{
		Clicks:        gs.Clicks,
		DataPoints:    gs.DataPoints,
		Efficiency:    gs.Efficiency,
		AutoClickRate: gs.AutoClickRate,
		UpgradeLevel:  gs.UpgradeLevel,
		UpgradeCost:   rules.UpgradeCost(gs.UpgradeLevel),
		Active:        gs.Active,
		Rules:         slices.Clone(gs.Rules),
		History:       gs.History.Samples(),
		HistoryMax:    gs.History.Max(),
		CanTrain:      rules.CanTrain(gs),
		CanUpgrade:    rules.CanUpgrade(gs),
		CanBoost:      rules.CanBoost(gs),
	}
}

// mutate runs fn under the lock, then notifies observers.
func (s *Session) mutate(fn func(gs *model.GameState)) {
	s.mu.Lock()
	fn(s.state)
	v := s.viewLocked()
	s.mu.Unlock()
	s.notify(v)
}

// Click is a manual click: the same gain an automatic tick gives.
func (s *Session) Click() {
	s.mutate(func(gs *model.GameState) {
		gs.Clicks += clickIncrement(gs)
	})
	manualActionsTotal.WithLabelValues("click", "true").Inc()
}

func (s *Session) Train() bool   { return s.apply(model.ActionTrain) }
func (s *Session) Upgrade() bool { return s.apply(model.ActionUpgrade) }
func (s *Session) Boost() bool   { return s.apply(model.ActionBoost) }

func (s *Session) apply(a model.Action) bool {
	var applied bool
	s.mutate(func(gs *model.GameState) {
		applied = rules.Lookup(a)(gs)
	})
	manualActionsTotal.WithLabelValues(string(a), strconv.FormatBool(applied)).Inc()
	return applied
}

// AddRule validates and appends a rule. It is evaluated after all existing
// rules. The ID is the creation time in Unix milliseconds, bumped past the
// newest existing ID so rules added within one millisecond stay distinct.
func (s *Session) AddRule(field model.Field, op model.Operator, threshold float64, action model.Action) (model.Rule, error) {
	s.mu.Lock()
	id := s.now().UnixMilli()
	for _, existing := range s.state.Rules {
		id = max(id, existing.ID+1)
	}
	r, err := rules.NewRule(id, field, op, threshold, action)
	if err != nil {
		s.mu.Unlock()
		return model.Rule{}, err
	}

	next := append(slices.Clone(s.state.Rules), r)
	if err := s.engine.Swap(next); err != nil {
		s.mu.Unlock()
		return model.Rule{}, fmt.Errorf("add rule: %w", err)
	}
	s.state.Rules = next
	v := s.viewLocked()
	s.mu.Unlock()

	slog.Info("rule added", "id", r.ID, "field", r.Field, "operator", r.Operator, "threshold", r.Threshold, "action", r.Action)
	s.notify(v)
	return r, nil
}

// RemoveRule deletes the first rule with the given ID.
func (s *Session) RemoveRule(id int64) bool {
	s.mu.Lock()
	i := slices.IndexFunc(s.state.Rules, func(r model.Rule) bool { return r.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	next := slices.Delete(slices.Clone(s.state.Rules), i, i+1)
	if err := s.engine.Swap(next); err != nil {
		s.mu.Unlock()
		slog.Error("rule removal failed", "id", id, "error", err)
		return false
	}
	s.state.Rules = next
	v := s.viewLocked()
	s.mu.Unlock()

	slog.Info("rule removed", "id", id)
	s.notify(v)
	return true
}

// Rules returns the rules in evaluation order.
func (s *Session) Rules() []model.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Rules)
}

// Save writes the current state to the store. Failures are returned for the
// caller to log; the autosave loop just retries on its next cadence.
func (s *Session) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	gs := s.state.Clone()
	s.mu.Unlock()

	if err := storage.Save(ctx, s.store, gs); err != nil {
		savesTotal.WithLabelValues("error").Inc()
		return err
	}
	savesTotal.WithLabelValues("ok").Inc()
	return nil
}

// Export returns the raw stored snapshot, as last written by a save.
func (s *Session) Export(ctx context.Context) (string, error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return storage.Export(ctx, s.store)
}

// Import replaces the stored snapshot with blob verbatim and reloads the
// session from it, as a restart would: the scheduler stops and history is
// cleared. A blob that does not parse leaves the session on defaults.
func (s *Session) Import(ctx context.Context, blob string) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if err := storage.Import(ctx, s.store, blob); err != nil {
		return err
	}

	s.mu.Lock()
	s.stopLocked()
	s.reloadLocked(ctx)
	v := s.viewLocked()
	s.mu.Unlock()

	slog.Info("save imported", "bytes", len(blob))
	s.notify(v)
	return nil
}

// Reset discards all progress and persists the default state.
func (s *Session) Reset(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	s.stopLocked()
	s.state = model.NewGameState()
	_ = s.engine.Swap(nil)
	gs := s.state.Clone()
	v := s.viewLocked()
	s.mu.Unlock()

	s.notify(v)
	if err := storage.Save(ctx, s.store, gs); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	slog.Info("game reset")
	return nil
}

// Run drives the autosave loop until ctx is cancelled, then stops the
// scheduler and writes one final snapshot.
func (s *Session) Run(ctx context.Context) error {
	slog.Info("session started", "saveInterval", s.saveInterval)
	ticker := time.NewTicker(s.saveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Stop()
			s.wg.Wait()
			// ctx is already cancelled; the final flush gets its own.
			flushCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := s.Save(flushCtx); err != nil {
				slog.Warn("final save failed", "error", err)
			}
			slog.Info("session stopped")
			return nil
		case <-ticker.C:
			if err := s.Save(ctx); err != nil {
				slog.Warn("autosave failed, retrying next cadence", "error", err)
			}
		}
	}
}
