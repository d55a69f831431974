package model

// Field names a numeric state value a rule condition can read.
type Field string

const (
	FieldClicks     Field = "clicks"
	FieldDataPoints Field = "dataPoints"
)

// Operator is a comparison between a field and a rule's threshold.
type Operator string

const (
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "=="
	OpLess         Operator = "<"
	OpGreater      Operator = ">"
)

// Action names one of the three state-changing operations.
type Action string

const (
	ActionTrain   Action = "train"
	ActionUpgrade Action = "upgrade"
	ActionBoost   Action = "boost"
)

var (
	Fields    = []Field{FieldClicks, FieldDataPoints}
	Operators = []Operator{OpGreaterEqual, OpLessEqual, OpEqual, OpLess, OpGreater}
	Actions   = []Action{ActionTrain, ActionUpgrade, ActionBoost}
)

func (f Field) Valid() bool {
	return f == FieldClicks || f == FieldDataPoints
}

func (o Operator) Valid() bool {
	switch o {
	case OpGreaterEqual, OpLessEqual, OpEqual, OpLess, OpGreater:
		return true
	}
	return false
}

func (a Action) Valid() bool {
	switch a {
	case ActionTrain, ActionUpgrade, ActionBoost:
		return true
	}
	return false
}

// Rule is the persisted form of an automation rule: when Field Operator
// Threshold holds, run Action. Construct through rules.NewRule so the
// enumerations are checked.
type Rule struct {
	ID        int64    `json:"id"`
	Field     Field    `json:"conditionField"`
	Operator  Operator `json:"conditionOperator"`
	Threshold float64  `json:"conditionValue"`
	Action    Action   `json:"action"`
}
