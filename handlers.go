package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"clickforge/internal/game"
)

/* ======================
   Request / Response Types
   ====================== */

type BuyRequest struct {
	UpgradeID string `json:"upgradeId"`
}

type RedeemRequest struct {
	Code string `json:"code"`
}

type SwitchModeRequest struct {
	Mode string `json:"mode"`
}

type TabRequest struct {
	Tab string `json:"tab"`
}

type AdminSetRequest struct {
	Field     string   `json:"field"`
	UpgradeID string   `json:"upgradeId,omitempty"`
	Value     *float64 `json:"value"`
}

type IntentResponse struct {
	OK            bool           `json:"ok"`
	Error         string         `json:"error,omitempty"`
	Message       string         `json:"message,omitempty"`
	AlreadyActive bool           `json:"alreadyActive,omitempty"`
	Snapshot      *game.Snapshot `json:"snapshot,omitempty"`
}

func writeIntent(w http.ResponseWriter, resp IntentResponse) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func writeOK(w http.ResponseWriter, snap game.Snapshot) {
	writeIntent(w, IntentResponse{OK: true, Snapshot: &snap})
}

func writeErr(w http.ResponseWriter, err error) {
	writeIntent(w, IntentResponse{OK: false, Error: errorCode(err)})
}

// errorCode maps engine outcomes to the stable strings the front end
// renders. Outcomes are data, not HTTP failures.
func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrInsufficientFunds):
		return "INSUFFICIENT_FUNDS"
	case errors.Is(err, game.ErrUnknownUpgrade):
		return "UNKNOWN_UPGRADE"
	case errors.Is(err, game.ErrUnknownMode):
		return "UNKNOWN_MODE"
	case errors.Is(err, game.ErrModeLocked):
		return "MODE_LOCKED"
	case errors.Is(err, game.ErrInvalidCode):
		return "INVALID_CODE"
	case errors.Is(err, game.ErrEmptyInput):
		return "EMPTY_CODE"
	}
	return "INVALID_INPUT"
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

/* ======================
   Handlers
   ====================== */

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func stateHandler(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, engine.Snapshot())
	}
}

func clickHandler(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		writeOK(w, engine.Click())
	}
}

func buyHandler(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		var req BuyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, game.ErrInvalidInput)
			return
		}
		snap, err := engine.Buy(req.UpgradeID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, snap)
	}
}

func redeemHandler(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		var req RedeemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, game.ErrInvalidInput)
			return
		}
		snap, res, err := engine.Redeem(req.Code)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeIntent(w, IntentResponse{
			OK:            true,
			Message:       res.Message,
			AlreadyActive: res.AlreadyActive,
			Snapshot:      &snap,
		})
	}
}

func switchModeHandler(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		var req SwitchModeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, game.ErrInvalidInput)
			return
		}
		snap, err := engine.SwitchMode(req.Mode)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, snap)
	}
}

func tabHandler(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		var req TabRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, game.ErrInvalidInput)
			return
		}
		snap, err := engine.SetActiveTab(req.Tab)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, snap)
	}
}

// adminSetHandler is the intentional, self-disclosed cheat surface. It
// only opens after the unlock code has been redeemed on this profile.
func adminSetHandler(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		if !engine.Snapshot().State.AdminUnlocked {
			writeIntent(w, IntentResponse{OK: false, Error: "ADMIN_LOCKED"})
			return
		}
		var req AdminSetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
			writeErr(w, game.ErrInvalidInput)
			return
		}

		var snap game.Snapshot
		var err error
		switch req.Field {
		case string(game.StatPerClick):
			snap, err = engine.SetOverride(game.StatPerClick, *req.Value)
		case string(game.StatPerSecond):
			snap, err = engine.SetOverride(game.StatPerSecond, *req.Value)
		case "currency":
			snap, err = engine.SetCurrency(*req.Value)
		case "upgradeLevel":
			snap, err = engine.SetUpgradeLevel(req.UpgradeID, *req.Value)
		default:
			err = game.ErrInvalidInput
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, snap)
	}
}

func resetHandler(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		writeOK(w, engine.ResetAll())
	}
}

/* ======================
   Routes
   ====================== */

func registerRoutes(mux *http.ServeMux, engine *game.Engine, hub *Hub) {
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/state", stateHandler(engine))
	mux.HandleFunc("/click", clickHandler(engine))
	mux.HandleFunc("/buy", buyHandler(engine))
	mux.HandleFunc("/redeem", redeemHandler(engine))
	mux.HandleFunc("/switch-mode", switchModeHandler(engine))
	mux.HandleFunc("/tab", tabHandler(engine))
	mux.HandleFunc("/admin/set", adminSetHandler(engine))
	mux.HandleFunc("/reset", resetHandler(engine))
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r)
	})
}
