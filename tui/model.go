// Package tui is the terminal front end. It renders session snapshots and
// forwards key presses to the session; it holds no game state of its own.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/nstehr/neuroclick/model"
)

const refreshInterval = 100 * time.Millisecond

// Game is the session surface the UI drives.
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
}

type refreshMsg time.Time

type statusMsg struct {
	text string
	err  error
}

func refreshCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

type Model struct {
	ctx  context.Context
	game Game
	keys keyMap
	help help.Model

	view   model.View
	form   *huh.Form
	draft  *ruleDraft
	status statusMsg

	readClipboard  func() (string, error)
	writeClipboard func(string) error

	width    int
	quitting bool
}

func New(ctx context.Context, game Game) Model {
	return Model{
		ctx:            ctx,
		game:           game,
		keys:           defaultKeys(),
		help:           help.New(),
		view:           game.Snapshot(),
		readClipboard:  clipboard.ReadAll,
		writeClipboard: clipboard.WriteAll,
	}
}

// Run blocks until the player quits or ctx is cancelled.
func Run(ctx context.Context, game Game) error {
	p := tea.NewProgram(New(ctx, game), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return refreshCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.view = m.game.Snapshot()
		return m, refreshCmd()
	case statusMsg:
		m.status = msg
		if msg.err != nil {
			slog.Warn("tui action failed", "error", msg.err)
		}
		m.view = m.game.Snapshot()
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(keyMsg, m.keys.Toggle):
		m.game.Toggle()
	case key.Matches(keyMsg, m.keys.Click):
		m.game.Click()
	case key.Matches(keyMsg, m.keys.Train):
		m.status = purchaseStatus("train", m.game.Train())
	case key.Matches(keyMsg, m.keys.Upgrade):
		m.status = purchaseStatus("upgrade", m.game.Upgrade())
	case key.Matches(keyMsg, m.keys.Boost):
		m.status = purchaseStatus("boost", m.game.Boost())
	case key.Matches(keyMsg, m.keys.AddRule):
		m.draft = newRuleDraft()
		m.form = newRuleForm(m.draft)
		return m, m.form.Init()
	case key.Matches(keyMsg, m.keys.RemoveRule):
		m.status = m.removeLastRule()
	case key.Matches(keyMsg, m.keys.Export):
		return m, m.exportCmd()
	case key.Matches(keyMsg, m.keys.Import):
		return m, m.importCmd()
	}
	m.view = m.game.Snapshot()
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.form, m.draft = nil, nil
		m.status = statusMsg{text: "rule discarded"}
		return m, nil
	}

	next, cmd := m.form.Update(msg)
	if f, ok := next.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.status = m.submitRule(m.draft)
		m.form, m.draft = nil, nil
		m.view = m.game.Snapshot()
		return m, nil
	case huh.StateAborted:
		m.form, m.draft = nil, nil
		m.status = statusMsg{text: "rule discarded"}
		return m, nil
	}
	return m, cmd
}

func (m Model) submitRule(d *ruleDraft) statusMsg {
	field, op, threshold, action, err := d.parse()
	if err != nil {
		return statusMsg{err: err}
	}
	r, err := m.game.AddRule(field, op, threshold, action)
	if err != nil {
		return statusMsg{err: err}
	}
	return statusMsg{text: "rule added: " + describeRule(r)}
}

func (m Model) removeLastRule() statusMsg {
	rs := m.game.Snapshot().Rules
	if len(rs) == 0 {
		return statusMsg{text: "no rules to remove"}
	}
	last := rs[len(rs)-1]
	if !m.game.RemoveRule(last.ID) {
		return statusMsg{err: fmt.Errorf("rule %d already gone", last.ID)}
	}
	return statusMsg{text: "rule removed: " + describeRule(last)}
}

func (m Model) exportCmd() tea.Cmd {
	ctx, game, write := m.ctx, m.game, m.writeClipboard
	return func() tea.Msg {
		blob, err := game.Export(ctx)
		if err != nil {
			return statusMsg{err: err}
		}
		if blob == "" {
			return statusMsg{text: "nothing saved yet"}
		}
		if err := write(blob); err != nil {
			return statusMsg{err: fmt.Errorf("clipboard: %w", err)}
		}
		return statusMsg{text: "save copied to clipboard"}
	}
}

func (m Model) importCmd() tea.Cmd {
	ctx, game, read := m.ctx, m.game, m.readClipboard
	return func() tea.Msg {
		blob, err := read()
		if err != nil {
			return statusMsg{err: fmt.Errorf("clipboard: %w", err)}
		}
		if strings.TrimSpace(blob) == "" {
			return statusMsg{text: "clipboard is empty"}
		}
		if err := game.Import(ctx, blob); err != nil {
			return statusMsg{err: err}
		}
		return statusMsg{text: "save imported"}
	}
}

func purchaseStatus(action string, applied bool) statusMsg {
	if applied {
		return statusMsg{text: action + " done"}
	}
	return statusMsg{text: "cannot afford " + action}
}
