package ipc

// Client → server command types. A client asks for the raw save with
// TypeExport and gets a TypeExport reply.
const (
	TypeHello      = "hello"
	TypeClick      = "click"
	TypeToggle     = "toggle"
	TypeTrain      = "train"
	TypeUpgrade    = "upgrade"
	TypeBoost      = "boost"
	TypeAddRule    = "add_rule"
	TypeRemoveRule = "remove_rule"
	TypeImport     = "import"
	TypeReset      = "reset"
)

// AddRuleCommand carries free-form rule parts; the server coerces them to
// the enumerations before building the rule.
type AddRuleCommand struct {
	Field     string  `json:"field"`
	Operator  string  `json:"operator"`
	Threshold float64 `json:"threshold"`
	Action    string  `json:"action"`
}

type RemoveRuleCommand struct {
	ID int64 `json:"id"`
}

type ImportCommand struct {
	Blob string `json:"blob"`
}

// HelloMessage opens a session. The server answers with the current state.
type HelloMessage struct {
	Client string `json:"client"`
}
