package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UpgradeDef is the immutable definition of one purchasable upgrade.
// The same upgrade id can carry a different name and bonus magnitude
// under another mode.
type UpgradeDef struct {
	ID             string  `yaml:"id" json:"id"`
	Name           string  `yaml:"name" json:"name"`
	BaseCost       float64 `yaml:"base_cost" json:"baseCost"`
	CostMultiplier float64 `yaml:"cost_multiplier" json:"costMultiplier"`
	CPCBonus       float64 `yaml:"cpc_bonus" json:"cpcBonus"`
	CPSBonus       float64 `yaml:"cps_bonus" json:"cpsBonus"`
}

// Mode is one game skin: flavor text plus its own upgrade table.
type Mode struct {
	ID       string       `yaml:"id" json:"id"`
	Label    string       `yaml:"label" json:"label"`
	Tagline  string       `yaml:"tagline" json:"tagline"`
	Upgrades []UpgradeDef `yaml:"upgrades" json:"upgrades"`
}

// Upgrade returns the definition for an upgrade id, or nil if this mode
// does not define it.
func (m *Mode) Upgrade(id string) *UpgradeDef {
	for i := range m.Upgrades {
		if m.Upgrades[i].ID == id {
			return &m.Upgrades[i]
		}
	}
	return nil
}

// ModeSet holds every available mode. The first mode is the default.
type ModeSet struct {
	order []string
	modes map[string]*Mode
}

func NewModeSet(modes []Mode) (*ModeSet, error) {
	if len(modes) == 0 {
		return nil, fmt.Errorf("no modes defined")
	}
	ms := &ModeSet{modes: make(map[string]*Mode, len(modes))}
	for i := range modes {
		m := modes[i]
		if m.ID == "" {
			return nil, fmt.Errorf("mode %d has no id", i)
		}
		if _, dup := ms.modes[m.ID]; dup {
			return nil, fmt.Errorf("duplicate mode id %q", m.ID)
		}
		for _, u := range m.Upgrades {
			if u.BaseCost <= 0 || u.CostMultiplier <= 1 {
				return nil, fmt.Errorf("mode %q upgrade %q has invalid cost curve", m.ID, u.ID)
			}
		}
		ms.modes[m.ID] = &m
		ms.order = append(ms.order, m.ID)
	}
	return ms, nil
}

func (ms *ModeSet) Get(id string) *Mode {
	return ms.modes[id]
}

func (ms *ModeSet) Default() *Mode {
	return ms.modes[ms.order[0]]
}

func (ms *ModeSet) IDs() []string {
	out := make([]string, len(ms.order))
	copy(out, ms.order)
	return out
}

// DefaultModes is the built-in mode table, used when no modes.yaml is
// present. The "midnight" skin reuses the classic upgrade ids with its
// own labels and bonus magnitudes, unlocked via redeem code.
func DefaultModes() *ModeSet {
	ms, err := NewModeSet([]Mode{
		{
			ID:      "classic",
			Label:   "Clickforge",
			Tagline: "Forge clicks. Buy hammers. Repeat.",
			Upgrades: []UpgradeDef{
				{ID: "click_power", Name: "Heavier Hammer", BaseCost: 10, CostMultiplier: 1.5, CPCBonus: 1},
				{ID: "auto_clicker", Name: "Apprentice Smith", BaseCost: 25, CostMultiplier: 1.6, CPSBonus: 1},
				{ID: "click_farm", Name: "Forge Hall", BaseCost: 500, CostMultiplier: 1.8, CPSBonus: 10},
			},
		},
		{
			ID:      "midnight",
			Label:   "Midnight Forge",
			Tagline: "The forge never sleeps.",
			Upgrades: []UpgradeDef{
				{ID: "click_power", Name: "Phantom Hammer", BaseCost: 10, CostMultiplier: 1.5, CPCBonus: 2},
				{ID: "auto_clicker", Name: "Night Shift", BaseCost: 25, CostMultiplier: 1.6, CPSBonus: 2},
				{ID: "click_farm", Name: "Moonlit Foundry", BaseCost: 500, CostMultiplier: 1.8, CPSBonus: 25},
			},
		},
	})
	if err != nil {
		panic(err)
	}
	return ms
}

// LoadModesFile reads a mode table from YAML, replacing the built-in one.
func LoadModesFile(path string) (*ModeSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Modes []Mode `yaml:"modes"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return NewModeSet(doc.Modes)
}
