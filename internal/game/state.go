package game

import "time"

// Tab identifiers persisted so a reload restores the last-viewed panel.
const (
	TabGame  = "game"
	TabStats = "stats"
	TabAdmin = "admin"
)

func isValidTab(tab string) bool {
	switch tab {
	case TabGame, TabStats, TabAdmin:
		return true
	}
	return false
}

// UpgradeState is the persisted per-upgrade progress. Costs and bonuses
// live in the mode definition, never in the save slot.
type UpgradeState struct {
	Level int `json:"level"`
}

// GameState is one save slot's worth of progress. One exists per mode;
// the inactive mode's state lives only in storage.
type GameState struct {
	Currency          float64                  `json:"currency"`
	TotalEarned       float64                  `json:"totalEarned"`
	CurrencyPerClick  float64                  `json:"currencyPerClick"`
	CurrencyPerSecond float64                  `json:"currencyPerSecond"`
	CPCOverridden     bool                     `json:"currencyPerClickOverridden"`
	CPSOverridden     bool                     `json:"currencyPerSecondOverridden"`
	Upgrades          map[string]*UpgradeState `json:"upgrades"`
	ActiveTab         string                   `json:"activeTab"`
	AdminUnlocked     bool                     `json:"adminUnlocked"`
	UnlockedMode      string                   `json:"unlockedMode,omitempty"`
}

// DefaultState builds a fresh slot for the given mode: zero balances,
// level-0 upgrades for every upgrade the mode defines, derived stats at
// their bases.
func DefaultState(mode *Mode) *GameState {
	st := &GameState{
		CurrencyPerClick:  1,
		CurrencyPerSecond: 0,
		Upgrades:          make(map[string]*UpgradeState, len(mode.Upgrades)),
		ActiveTab:         TabGame,
	}
	for _, def := range mode.Upgrades {
		st.Upgrades[def.ID] = &UpgradeState{}
	}
	return st
}

// Clone returns an independently mutable deep copy.
func (s *GameState) Clone() *GameState {
	cp := *s
	cp.Upgrades = make(map[string]*UpgradeState, len(s.Upgrades))
	for id, us := range s.Upgrades {
		u := *us
		cp.Upgrades[id] = &u
	}
	return &cp
}

// PurchaseRecord is the audit entry written after a successful upgrade
// purchase.
type PurchaseRecord struct {
	ID          string
	Mode        string
	UpgradeID   string
	Level       int
	Price       float64
	CoinsBefore float64
	CoinsAfter  float64
	At          time.Time
}
