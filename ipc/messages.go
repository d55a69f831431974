package ipc

import "github.com/nstehr/neuroclick/model"

// Server → client message types.
const (
	TypeState  = "state"
	TypeExport = "export"
	TypeError  = "error"
)

// StateMessage is the full session view, sent on connect, after every
// command and on every tick.
type StateMessage = model.View

type ExportMessage struct {
	Blob string `json:"blob"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}
