package game

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Stat names an admin-overridable derived stat.
type Stat string

const (
	StatPerClick  Stat = "currencyPerClick"
	StatPerSecond Stat = "currencyPerSecond"
)

// Persister is the storage contract the engine writes through to.
// Implementations absorb storage failures internally: a failed save must
// never interrupt the in-memory mutation that triggered it.
type Persister interface {
	LoadSlot(mode string, def *GameState) *GameState
	SaveSlot(mode string, st *GameState)
	ActiveMode() string
	SetActiveMode(mode string)
	DeleteAll()
	LogPurchase(rec PurchaseRecord)
}

// Observer receives a full snapshot after every state change.
type Observer func(Snapshot)

// UpgradeView pairs an upgrade definition with the player's progress and
// the recomputed next-purchase price.
type UpgradeView struct {
	UpgradeDef
	Level    int     `json:"level"`
	NextCost float64 `json:"nextCost"`
}

// Snapshot is the read-only view handed to presentation. All visual
// formatting happens on the other side of this boundary.
type Snapshot struct {
	Mode      string        `json:"mode"`
	ModeLabel string        `json:"modeLabel"`
	Tagline   string        `json:"tagline"`
	Modes     []string      `json:"modes"`
	State     GameState     `json:"state"`
	Upgrades  []UpgradeView `json:"upgrades"`
}

// Engine owns the canonical game state for the active mode. All mutation
// goes through its operations; each one is atomic and writes through to
// the persister before observers see the new snapshot.
type Engine struct {
	mu    sync.Mutex
	modes *ModeSet
	store Persister
	obs   Observer

	mode *Mode
	st   *GameState
}

func NewEngine(modes *ModeSet, store Persister, obs Observer) *Engine {
	mode := modes.Default()
	if id := store.ActiveMode(); id != "" {
		if m := modes.Get(id); m != nil {
			mode = m
		} else {
			log.Println("unknown active mode", id, "- falling back to", mode.ID)
		}
	}

	e := &Engine{
		modes: modes,
		store: store,
		obs:   obs,
		mode:  mode,
	}
	e.st = store.LoadSlot(mode.ID, DefaultState(mode))
	// Bonus magnitudes may have changed since the slot was written.
	e.recomputeLocked()
	return e
}

// Snapshot returns the current state without mutating anything.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	snap := e.snapshotLocked()
	e.mu.Unlock()
	return snap
}

// Click applies one manual click.
func (e *Engine) Click() Snapshot {
	e.mu.Lock()
	e.st.Currency += e.st.CurrencyPerClick
	e.st.TotalEarned += e.st.CurrencyPerClick
	e.store.SaveSlot(e.mode.ID, e.st)
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
	return snap
}

// Tick applies one interval of passive income. It returns the balance
// after the tick plus whether anything was actually earned, so the
// clock can skip persisting an idle profile. Rounding (not truncation)
// is deliberate: sub-1 rates must eventually pay out instead of
// truncating to zero forever. Saving is the clock's job, not the
// tick's.
func (e *Engine) Tick() (float64, bool) {
	e.mu.Lock()
	earned := math.Round(e.st.CurrencyPerSecond)
	if e.st.CurrencyPerSecond <= 0 || earned == 0 {
		bal := e.st.Currency
		e.mu.Unlock()
		return bal, false
	}
	e.st.Currency += earned
	e.st.TotalEarned += earned
	bal := e.st.Currency
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
	return bal, true
}

// SaveNow persists the active slot immediately.
func (e *Engine) SaveNow() {
	e.mu.Lock()
	e.store.SaveSlot(e.mode.ID, e.st)
	e.mu.Unlock()
}

// Buy purchases the next level of an upgrade. The deduction and the
// level bump happen together or not at all.
func (e *Engine) Buy(upgradeID string) (Snapshot, error) {
	e.mu.Lock()
	def := e.mode.Upgrade(upgradeID)
	if def == nil {
		e.mu.Unlock()
		return Snapshot{}, ErrUnknownUpgrade
	}
	us := e.st.Upgrades[upgradeID]
	if us == nil {
		us = &UpgradeState{}
		e.st.Upgrades[upgradeID] = us
	}

	cost := NextCost(def.BaseCost, def.CostMultiplier, us.Level)
	if e.st.Currency < cost {
		e.mu.Unlock()
		return Snapshot{}, ErrInsufficientFunds
	}

	before := e.st.Currency
	e.st.Currency -= cost
	us.Level++

	// A level change re-enables derivation for the stat this upgrade feeds.
	if def.CPCBonus != 0 {
		e.st.CPCOverridden = false
	}
	if def.CPSBonus != 0 {
		e.st.CPSOverridden = false
	}
	e.recomputeLocked()

	e.store.SaveSlot(e.mode.ID, e.st)
	e.store.LogPurchase(PurchaseRecord{
		ID:          uuid.NewString(),
		Mode:        e.mode.ID,
		UpgradeID:   upgradeID,
		Level:       us.Level,
		Price:       cost,
		CoinsBefore: before,
		CoinsAfter:  e.st.Currency,
		At:          time.Now().UTC(),
	})

	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
	return snap, nil
}

// Recompute re-derives both stats from upgrade levels. Idempotent;
// override-frozen values are left untouched.
func (e *Engine) Recompute() Snapshot {
	e.mu.Lock()
	e.recomputeLocked()
	e.store.SaveSlot(e.mode.ID, e.st)
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
	return snap
}

// SetOverride pins a derived stat to an explicit value until the feeding
// upgrade's level next changes. Admin capability.
func (e *Engine) SetOverride(stat Stat, value float64) (Snapshot, error) {
	if !isFiniteNonNegative(value) {
		return Snapshot{}, ErrInvalidInput
	}
	e.mu.Lock()
	switch stat {
	case StatPerClick:
		e.st.CurrencyPerClick = value
		e.st.CPCOverridden = true
	case StatPerSecond:
		e.st.CurrencyPerSecond = value
		e.st.CPSOverridden = true
	default:
		e.mu.Unlock()
		return Snapshot{}, ErrInvalidInput
	}
	e.store.SaveSlot(e.mode.ID, e.st)
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
	return snap, nil
}

// SetUpgradeLevel sets an upgrade level directly, bypassing cost. Admin
// capability. Clears the fed stat's override and re-derives.
func (e *Engine) SetUpgradeLevel(upgradeID string, level float64) (Snapshot, error) {
	if !isFiniteNonNegative(level) || level != math.Trunc(level) {
		return Snapshot{}, ErrInvalidInput
	}
	e.mu.Lock()
	def := e.mode.Upgrade(upgradeID)
	if def == nil {
		e.mu.Unlock()
		return Snapshot{}, ErrUnknownUpgrade
	}
	us := e.st.Upgrades[upgradeID]
	if us == nil {
		us = &UpgradeState{}
		e.st.Upgrades[upgradeID] = us
	}
	us.Level = int(level)
	if def.CPCBonus != 0 {
		e.st.CPCOverridden = false
	}
	if def.CPSBonus != 0 {
		e.st.CPSOverridden = false
	}
	e.recomputeLocked()
	e.store.SaveSlot(e.mode.ID, e.st)
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
	return snap, nil
}

// SetCurrency sets the balance directly. Admin-granted increases count
// toward lifetime earnings; decreases never reduce them.
func (e *Engine) SetCurrency(value float64) (Snapshot, error) {
	if !isFiniteNonNegative(value) {
		return Snapshot{}, ErrInvalidInput
	}
	e.mu.Lock()
	if delta := value - e.st.Currency; delta > 0 {
		e.st.TotalEarned += delta
	}
	e.st.Currency = value
	e.store.SaveSlot(e.mode.ID, e.st)
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
	return snap, nil
}

// SetActiveTab remembers the last-viewed panel so a reload restores it.
func (e *Engine) SetActiveTab(tab string) (Snapshot, error) {
	if !isValidTab(tab) {
		return Snapshot{}, ErrInvalidInput
	}
	e.mu.Lock()
	e.st.ActiveTab = tab
	e.store.SaveSlot(e.mode.ID, e.st)
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
	return snap, nil
}

// Redeem applies a secret code. Grant codes pay out every time; unlock
// codes report "already active" instead of reapplying.
func (e *Engine) Redeem(code string) (Snapshot, RedeemResult, error) {
	norm := normalizeCode(code)
	if norm == "" {
		return Snapshot{}, RedeemResult{}, ErrEmptyInput
	}
	c, ok := codeTable[norm]
	if !ok {
		return Snapshot{}, RedeemResult{}, ErrInvalidCode
	}

	e.mu.Lock()
	var res RedeemResult
	switch c.effect {
	case codeGrantCurrency:
		e.st.Currency += c.amount
		e.st.TotalEarned += c.amount
		res.Message = fmt.Sprintf("Granted %.0f clicks.", c.amount)
	case codeUnlockAdmin:
		if e.st.AdminUnlocked {
			res = RedeemResult{Message: "Admin panel already unlocked.", AlreadyActive: true}
			snap := e.snapshotLocked()
			e.mu.Unlock()
			return snap, res, nil
		}
		e.st.AdminUnlocked = true
		res.Message = "Admin panel unlocked."
	case codeUnlockMode:
		// The active slot never records its own mode in UnlockedMode,
		// so redeeming while playing the unlocked mode needs its own
		// check.
		if e.st.UnlockedMode == c.mode || e.mode.ID == c.mode {
			res = RedeemResult{Message: "Mode already unlocked.", AlreadyActive: true}
			snap := e.snapshotLocked()
			e.mu.Unlock()
			return snap, res, nil
		}
		e.st.UnlockedMode = c.mode
		label := c.mode
		if m := e.modes.Get(c.mode); m != nil {
			label = m.Label
		}
		res.Message = fmt.Sprintf("Unlocked %s.", label)
	}

	e.store.SaveSlot(e.mode.ID, e.st)
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
	return snap, res, nil
}

// SwitchMode saves the outgoing slot, flips the selector, and loads the
// incoming slot. Always a save-then-load pair so the slots stay fully
// independent.
func (e *Engine) SwitchMode(modeID string) (Snapshot, error) {
	m := e.modes.Get(modeID)
	if m == nil {
		return Snapshot{}, ErrUnknownMode
	}

	e.mu.Lock()
	if m.ID == e.mode.ID {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, nil
	}
	if m.ID != e.modes.Default().ID && e.st.UnlockedMode != m.ID {
		e.mu.Unlock()
		return Snapshot{}, ErrModeLocked
	}

	e.store.SaveSlot(e.mode.ID, e.st)
	e.mode = m
	e.store.SetActiveMode(m.ID)
	e.st = e.store.LoadSlot(m.ID, DefaultState(m))
	e.recomputeLocked()

	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
	return snap, nil
}

// ResetAll wipes every slot and the mode selector, then starts over on
// the default mode. There is no undo.
func (e *Engine) ResetAll() Snapshot {
	e.mu.Lock()
	e.store.DeleteAll()
	e.mode = e.modes.Default()
	e.st = DefaultState(e.mode)
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
	return snap
}

func (e *Engine) recomputeLocked() {
	if !e.st.CPCOverridden {
		cpc := 1.0
		for _, def := range e.mode.Upgrades {
			if us := e.st.Upgrades[def.ID]; us != nil {
				cpc += float64(us.Level) * def.CPCBonus
			}
		}
		e.st.CurrencyPerClick = cpc
	}
	if !e.st.CPSOverridden {
		cps := 0.0
		for _, def := range e.mode.Upgrades {
			if us := e.st.Upgrades[def.ID]; us != nil {
				cps += float64(us.Level) * def.CPSBonus
			}
		}
		e.st.CurrencyPerSecond = cps
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		Mode:      e.mode.ID,
		ModeLabel: e.mode.Label,
		Tagline:   e.mode.Tagline,
		Modes:     e.modes.IDs(),
		State:     *e.st.Clone(),
	}
	for _, def := range e.mode.Upgrades {
		lvl := 0
		if us := e.st.Upgrades[def.ID]; us != nil {
			lvl = us.Level
		}
		snap.Upgrades = append(snap.Upgrades, UpgradeView{
			UpgradeDef: def,
			Level:      lvl,
			NextCost:   NextCost(def.BaseCost, def.CostMultiplier, lvl),
		})
	}
	return snap
}

func (e *Engine) notify(snap Snapshot) {
	if e.obs != nil {
		e.obs(snap)
	}
}

func isFiniteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
