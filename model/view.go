package model

// View is a read-only picture of a session for renderers: the persisted
// fields, scheduler status, trend window and what the player can afford.
type View struct {
	Clicks        int64    `json:"clicks"`
	DataPoints    int64    `json:"dataPoints"`
	Efficiency    float64  `json:"efficiency"`
	AutoClickRate int      `json:"autoClickRate"`
	UpgradeLevel  int      `json:"upgradeLevel"`
	UpgradeCost   int64    `json:"upgradeCost"`
	Active        bool     `json:"active"`
	Rules         []Rule   `json:"rules"`
	History       []Sample `json:"history"`
	HistoryMax    int64    `json:"historyMax"`
	CanTrain      bool     `json:"canTrain"`
	CanUpgrade    bool     `json:"canUpgrade"`
	CanBoost      bool     `json:"canBoost"`
}
