// Package store persists save slots to a durable key-value medium.
// Storage failures are logged and absorbed: gameplay continues on the
// in-memory state, trading durability for availability.
package store

import (
	"encoding/json"
	"log"
	"math"

	"clickforge/internal/game"
)

// KV is the only capability required of a storage backend. Local SQLite
// and remote Postgres both satisfy it.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// purchaseLogger is implemented by backends that keep a purchase audit
// table. Optional; the in-memory backend keeps a slice for tests.
type purchaseLogger interface {
	LogPurchase(rec game.PurchaseRecord) error
}

const activeModeKey = "active_mode"

func slotKey(mode string) string {
	return "save:" + mode
}

// SlotStore loads and saves per-mode game state on top of a KV backend,
// merging loaded payloads onto the default template so fields added
// after a slot was written get backfilled.
type SlotStore struct {
	kv    KV
	modes []string
}

func NewSlotStore(kv KV, modes []string) *SlotStore {
	return &SlotStore{kv: kv, modes: modes}
}

// LoadSlot reads a mode's slot and merges it onto a copy of def. Absent
// slots, corrupt payloads and read errors all fall back to the default
// template; the caller never sees an error.
func (s *SlotStore) LoadSlot(mode string, def *game.GameState) *game.GameState {
	st := def.Clone()

	raw, ok, err := s.kv.Get(slotKey(mode))
	if err != nil {
		log.Println("load slot", mode, "failed:", err)
		return st
	}
	if !ok {
		return st
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		log.Println("corrupt save data for mode", mode, "- using defaults:", err)
		return st
	}

	mergeState(st, payload)
	return st
}

// SaveSlot serializes and writes a mode's slot. Write failures are
// logged; the mutation that triggered the save stays applied in memory.
func (s *SlotStore) SaveSlot(mode string, st *game.GameState) {
	raw, err := json.Marshal(st)
	if err != nil {
		log.Println("marshal slot", mode, "failed:", err)
		return
	}
	if err := s.kv.Set(slotKey(mode), string(raw)); err != nil {
		log.Println("save slot", mode, "failed:", err)
	}
}

// ActiveMode returns the persisted mode selector, or "" if unset.
func (s *SlotStore) ActiveMode() string {
	v, ok, err := s.kv.Get(activeModeKey)
	if err != nil {
		log.Println("load active mode failed:", err)
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

func (s *SlotStore) SetActiveMode(mode string) {
	if err := s.kv.Set(activeModeKey, mode); err != nil {
		log.Println("save active mode failed:", err)
	}
}

// Raw returns a mode's serialized slot as stored, for tooling.
func (s *SlotStore) Raw(mode string) (string, bool, error) {
	return s.kv.Get(slotKey(mode))
}

// Modes returns the slot ids this store manages.
func (s *SlotStore) Modes() []string {
	out := make([]string, len(s.modes))
	copy(out, s.modes)
	return out
}

// DeleteAll clears every mode's slot and the mode selector. Full reset
// only.
func (s *SlotStore) DeleteAll() {
	for _, mode := range s.modes {
		if err := s.kv.Delete(slotKey(mode)); err != nil {
			log.Println("delete slot", mode, "failed:", err)
		}
	}
	if err := s.kv.Delete(activeModeKey); err != nil {
		log.Println("delete active mode failed:", err)
	}
}

// LogPurchase forwards to the backend's audit table when it has one.
func (s *SlotStore) LogPurchase(rec game.PurchaseRecord) {
	pl, ok := s.kv.(purchaseLogger)
	if !ok {
		return
	}
	if err := pl.LogPurchase(rec); err != nil {
		log.Println("purchase log write failed:", err)
	}
}

// mergeState copies recognized fields from a decoded payload onto st.
// A field that is missing, null or the wrong type keeps the template
// default. Present zero values are legitimate and are kept: merging is
// type-checked, never falsy-coalesced.
func mergeState(st *game.GameState, p map[string]any) {
	if v, ok := numField(p, "currency"); ok && v >= 0 {
		st.Currency = v
	}
	if v, ok := numField(p, "totalEarned"); ok && v >= 0 {
		st.TotalEarned = v
	}
	if v, ok := numField(p, "currencyPerClick"); ok && v >= 0 {
		st.CurrencyPerClick = v
	}
	if v, ok := numField(p, "currencyPerSecond"); ok && v >= 0 {
		st.CurrencyPerSecond = v
	}
	if v, ok := boolField(p, "currencyPerClickOverridden"); ok {
		st.CPCOverridden = v
	}
	if v, ok := boolField(p, "currencyPerSecondOverridden"); ok {
		st.CPSOverridden = v
	}
	if v, ok := strField(p, "activeTab"); ok {
		st.ActiveTab = v
	}
	if v, ok := boolField(p, "adminUnlocked"); ok {
		st.AdminUnlocked = v
	}
	if v, ok := strField(p, "unlockedMode"); ok {
		st.UnlockedMode = v
	}

	ups, ok := p["upgrades"].(map[string]any)
	if !ok {
		return
	}
	// Merge per upgrade id; entries the template does not know are dropped.
	for id, us := range st.Upgrades {
		u, ok := ups[id].(map[string]any)
		if !ok {
			continue
		}
		if lvl, ok := numField(u, "level"); ok && lvl >= 0 && lvl == math.Trunc(lvl) {
			us.Level = int(lvl)
		}
	}
}

func numField(p map[string]any, key string) (float64, bool) {
	v, ok := p[key].(float64)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func boolField(p map[string]any, key string) (bool, bool) {
	v, ok := p[key].(bool)
	return v, ok
}

func strField(p map[string]any, key string) (string, bool) {
	v, ok := p[key].(string)
	return v, ok
}
