package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nstehr/neuroclick/ipc"
	"github.com/nstehr/neuroclick/model"
	"github.com/nstehr/neuroclick/rules"
)

type fakeGame struct {
	clicks   int
	toggles  int
	trained  bool
	rules    []model.Rule
	blob     string
	imported string
	resets   int
}

func (f *fakeGame) Click()        { f.clicks++ }
func (f *fakeGame) Toggle() bool  { f.toggles++; return f.toggles%2 == 1 }
func (f *fakeGame) Train() bool   { f.trained = true; return false }
func (f *fakeGame) Upgrade() bool { return false }
func (f *fakeGame) Boost() bool   { return false }

func (f *fakeGame) AddRule(field model.Field, op model.Operator, threshold float64, action model.Action) (model.Rule, error) {
	r, err := rules.NewRule(int64(len(f.rules)+1), field, op, threshold, action)
	if err != nil {
		return model.Rule{}, err
	}
	f.rules = append(f.rules, r)
	return r, nil
}

func (f *fakeGame) RemoveRule(id int64) bool {
	for i, r := range f.rules {
		if r.ID == id {
			f.rules = append(f.rules[:i], f.rules[i+1:]...)
			return true
		}
	}
	return false
}

func (f *fakeGame) Snapshot() model.View {
	return model.View{Clicks: int64(f.clicks), Rules: f.rules}
}

func (f *fakeGame) Export(context.Context) (string, error) { return f.blob, nil }

func (f *fakeGame) Import(_ context.Context, blob string) error {
	f.imported = blob
	return nil
}

func (f *fakeGame) Reset(context.Context) error {
	f.resets++
	return nil
}

func envelope(t *testing.T, msgType string, data any) ipc.Envelope {
	t.Helper()
	env, err := ipc.NewEnvelope(msgType, data)
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	return env
}

func TestHandleHelloRepliesWithState(t *testing.T) {
	game := &fakeGame{clicks: 7}
	a := New(context.Background(), nil, game)

	resp, err := a.HandleHello(envelope(t, ipc.TypeHello, ipc.HelloMessage{Client: "browser"}))
	if err != nil {
		t.Fatalf("HandleHello: %v", err)
	}
	if resp == nil || resp.Type != ipc.TypeState {
		t.Fatalf("response = %+v, want state", resp)
	}
	var v model.View
	if err := json.Unmarshal(resp.Data, &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.Clicks != 7 {
		t.Errorf("Clicks = %d, want 7", v.Clicks)
	}
	if a.Client != "browser" {
		t.Errorf("Client = %q, want browser", a.Client)
	}
}

func TestHandleHelloWithoutData(t *testing.T) {
	a := New(context.Background(), nil, &fakeGame{})
	if _, err := a.HandleHello(ipc.Envelope{Type: ipc.TypeHello}); err != nil {
		t.Fatalf("HandleHello: %v", err)
	}
}

func TestManualCommandsReplyWithNothing(t *testing.T) {
	game := &fakeGame{}
	a := New(context.Background(), nil, game)

	handlers := []ipc.Handler{
		a.HandleClick,
		a.HandleToggle,
		a.action(model.ActionTrain, game.Train),
	}
	for _, h := range handlers {
		resp, err := h(ipc.Envelope{})
		if err != nil || resp != nil {
			t.Errorf("handler returned (%v, %v), want (nil, nil)", resp, err)
		}
	}
	if game.clicks != 1 || game.toggles != 1 || !game.trained {
		t.Errorf("game = %+v, want one click, one toggle, train attempted", game)
	}
}

func TestHandleAddRule(t *testing.T) {
	tests := []struct {
		name    string
		cmd     ipc.AddRuleCommand
		wantErr error
	}{
		{"canonical", ipc.AddRuleCommand{Field: "dataPoints", Operator: ">=", Threshold: 100, Action: "train"}, nil},
		{"aliases", ipc.AddRuleCommand{Field: " Primary ", Operator: "=", Threshold: 5, Action: "BOOST"}, nil},
		{"bad field", ipc.AddRuleCommand{Field: "gold", Operator: ">", Threshold: 1, Action: "train"}, rules.ErrInvalidRule},
		{"bad operator", ipc.AddRuleCommand{Field: "clicks", Operator: "!=", Threshold: 1, Action: "train"}, rules.ErrInvalidRule},
		{"bad action", ipc.AddRuleCommand{Field: "clicks", Operator: ">", Threshold: 1, Action: "sell"}, rules.ErrInvalidRule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := &fakeGame{}
			a := New(context.Background(), nil, game)
			_, err := a.HandleAddRule(envelope(t, ipc.TypeAddRule, tt.cmd))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if len(game.rules) != 0 {
					t.Errorf("rules = %d, want 0", len(game.rules))
				}
				return
			}
			if err != nil {
				t.Fatalf("HandleAddRule: %v", err)
			}
			if len(game.rules) != 1 {
				t.Fatalf("rules = %d, want 1", len(game.rules))
			}
		})
	}
}

func TestHandleRemoveRule(t *testing.T) {
	game := &fakeGame{}
	a := New(context.Background(), nil, game)
	if _, err := game.AddRule(model.FieldClicks, model.OpGreater, 1, model.ActionBoost); err != nil {
		t.Fatal(err)
	}

	if _, err := a.HandleRemoveRule(envelope(t, ipc.TypeRemoveRule, ipc.RemoveRuleCommand{ID: 99})); !errors.Is(err, ErrUnknownRule) {
		t.Errorf("remove unknown: err = %v, want ErrUnknownRule", err)
	}
	if _, err := a.HandleRemoveRule(envelope(t, ipc.TypeRemoveRule, ipc.RemoveRuleCommand{ID: 1})); err != nil {
		t.Errorf("remove existing: %v", err)
	}
	if len(game.rules) != 0 {
		t.Errorf("rules = %d, want 0", len(game.rules))
	}
}

func TestHandleExportImportReset(t *testing.T) {
	game := &fakeGame{blob: `{"clicks":42}`}
	a := New(context.Background(), nil, game)

	resp, err := a.HandleExport(ipc.Envelope{Type: ipc.TypeExport})
	if err != nil {
		t.Fatalf("HandleExport: %v", err)
	}
	var exp ipc.ExportMessage
	if err := resp.Decode(&exp); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if exp.Blob != game.blob {
		t.Errorf("Blob = %q, want %q", exp.Blob, game.blob)
	}

	if _, err := a.HandleImport(envelope(t, ipc.TypeImport, ipc.ImportCommand{Blob: "raw"})); err != nil {
		t.Fatalf("HandleImport: %v", err)
	}
	if game.imported != "raw" {
		t.Errorf("imported = %q, want raw", game.imported)
	}

	if _, err := a.HandleImport(ipc.Envelope{Type: ipc.TypeImport}); err == nil {
		t.Error("import without data: want error")
	}

	if _, err := a.HandleReset(ipc.Envelope{Type: ipc.TypeReset}); err != nil {
		t.Fatalf("HandleReset: %v", err)
	}
	if game.resets != 1 {
		t.Errorf("resets = %d, want 1", game.resets)
	}
}
