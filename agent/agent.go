// Package agent translates commands from one connected client into session
// calls. State updates reach the client through the server's broadcast, so
// mutating handlers reply with nothing unless they fail.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nstehr/neuroclick/ipc"
	"github.com/nstehr/neuroclick/model"
	"github.com/nstehr/neuroclick/rules"
)

// Game is the part of a session a client may drive.
type Game interface {
	Click()
	Toggle() bool
	Train() bool
	Upgrade() bool
	Boost() bool
	AddRule(field model.Field, op model.Operator, threshold float64, action model.Action) (model.Rule, error)
	RemoveRule(id int64) bool
	Snapshot() model.View
	Export(ctx context.Context) (string, error)
	Import(ctx context.Context, blob string) error
	Reset(ctx context.Context) error
}

var ErrUnknownRule = errors.New("unknown rule")

// Agent serves a single client connection.
type Agent struct {
	Conn   *ipc.Connection
	Client string
	game   Game
	ctx    context.Context
}

func New(ctx context.Context, conn *ipc.Connection, game Game) *Agent {
	return &Agent{Conn: conn, game: game, ctx: ctx}
}

// Register installs a handler for every client command on the connection.
func (a *Agent) Register() {
	a.Conn.RegisterHandler(ipc.TypeHello, a.HandleHello)
	a.Conn.RegisterHandler(ipc.TypeClick, a.HandleClick)
	a.Conn.RegisterHandler(ipc.TypeToggle, a.HandleToggle)
	a.Conn.RegisterHandler(ipc.TypeTrain, a.action(model.ActionTrain, a.game.Train))
	a.Conn.RegisterHandler(ipc.TypeUpgrade, a.action(model.ActionUpgrade, a.game.Upgrade))
	a.Conn.RegisterHandler(ipc.TypeBoost, a.action(model.ActionBoost, a.game.Boost))
	a.Conn.RegisterHandler(ipc.TypeAddRule, a.HandleAddRule)
	a.Conn.RegisterHandler(ipc.TypeRemoveRule, a.HandleRemoveRule)
	a.Conn.RegisterHandler(ipc.TypeExport, a.HandleExport)
	a.Conn.RegisterHandler(ipc.TypeImport, a.HandleImport)
	a.Conn.RegisterHandler(ipc.TypeReset, a.HandleReset)
}

// HandleHello completes the handshake by sending the current state.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if len(env.Data) > 0 {
		if err := env.Decode(&hello); err != nil {
			return nil, err
		}
	}
	a.Client = hello.Client
	slog.Info("client identified", "client", a.Client, "conn", a.connName())
	return a.state()
}

func (a *Agent) HandleClick(ipc.Envelope) (*ipc.Envelope, error) {
	a.game.Click()
	return nil, nil
}

func (a *Agent) HandleToggle(ipc.Envelope) (*ipc.Envelope, error) {
	active := a.game.Toggle()
	slog.Debug("automation toggled", "client", a.Client, "active", active)
	return nil, nil
}

// action wraps a manual purchase. Being unable to afford it is not an error.
func (a *Agent) action(name model.Action, fn func() bool) ipc.Handler {
	return func(ipc.Envelope) (*ipc.Envelope, error) {
		applied := fn()
		slog.Debug("manual action", "client", a.Client, "action", name, "applied", applied)
		return nil, nil
	}
}

func (a *Agent) HandleAddRule(env ipc.Envelope) (*ipc.Envelope, error) {
	var cmd ipc.AddRuleCommand
	if err := env.Decode(&cmd); err != nil {
		return nil, err
	}
	field, err := rules.ParseField(cmd.Field)
	if err != nil {
		return nil, err
	}
	op, err := rules.ParseOperator(cmd.Operator)
	if err != nil {
		return nil, err
	}
	action, err := rules.ParseAction(cmd.Action)
	if err != nil {
		return nil, err
	}
	if _, err := a.game.AddRule(field, op, cmd.Threshold, action); err != nil {
		return nil, err
	}
	return nil, nil
}

func (a *Agent) HandleRemoveRule(env ipc.Envelope) (*ipc.Envelope, error) {
	var cmd ipc.RemoveRuleCommand
	if err := env.Decode(&cmd); err != nil {
		return nil, err
	}
	if !a.game.RemoveRule(cmd.ID) {
		return nil, fmt.Errorf("remove rule %d: %w", cmd.ID, ErrUnknownRule)
	}
	return nil, nil
}

func (a *Agent) HandleExport(ipc.Envelope) (*ipc.Envelope, error) {
	blob, err := a.game.Export(a.ctx)
	if err != nil {
		return nil, err
	}
	env, err := ipc.NewEnvelope(ipc.TypeExport, ipc.ExportMessage{Blob: blob})
	if err != nil {
		return nil, err
	}
	return &env, nil
}

func (a *Agent) HandleImport(env ipc.Envelope) (*ipc.Envelope, error) {
	var cmd ipc.ImportCommand
	if err := env.Decode(&cmd); err != nil {
		return nil, err
	}
	if err := a.game.Import(a.ctx, cmd.Blob); err != nil {
		return nil, err
	}
	slog.Info("save imported by client", "client", a.Client)
	return nil, nil
}

func (a *Agent) HandleReset(ipc.Envelope) (*ipc.Envelope, error) {
	if err := a.game.Reset(a.ctx); err != nil {
		return nil, err
	}
	slog.Info("game reset by client", "client", a.Client)
	return nil, nil
}

func (a *Agent) connName() string {
	if a.Conn == nil {
		return ""
	}
	return a.Conn.Client
}

func (a *Agent) state() (*ipc.Envelope, error) {
	env, err := ipc.NewEnvelope(ipc.TypeState, a.game.Snapshot())
	if err != nil {
		return nil, err
	}
	return &env, nil
}
