package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"clickforge/internal/game"
	"clickforge/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	modes := game.DefaultModes()
	slots := store.NewSlotStore(store.NewMemory(), modes.IDs())
	engine := game.NewEngine(modes, slots, nil)

	hub := NewHub()
	go hub.Run()

	mux := http.NewServeMux()
	registerRoutes(mux, engine, hub)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, srv *httptest.Server, path, body string) IntentResponse {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out IntentResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClickEndpoint(t *testing.T) {
	srv := newTestServer(t)

	out := postJSON(t, srv, "/click", "{}")
	require.True(t, out.OK)
	require.Equal(t, 1.0, out.Snapshot.State.Currency)
}

func TestClickRejectsGet(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/click")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestBuyEndpointOutcomes(t *testing.T) {
	srv := newTestServer(t)

	out := postJSON(t, srv, "/buy", `{"upgradeId": "click_power"}`)
	require.False(t, out.OK)
	require.Equal(t, "INSUFFICIENT_FUNDS", out.Error)

	out = postJSON(t, srv, "/buy", `{"upgradeId": "warp_drive"}`)
	require.False(t, out.OK)
	require.Equal(t, "UNKNOWN_UPGRADE", out.Error)

	// Earn enough, then buy.
	for i := 0; i < 10; i++ {
		postJSON(t, srv, "/click", "{}")
	}
	out = postJSON(t, srv, "/buy", `{"upgradeId": "click_power"}`)
	require.True(t, out.OK)
	require.Equal(t, 0.0, out.Snapshot.State.Currency)
}

func TestRedeemEndpoint(t *testing.T) {
	srv := newTestServer(t)

	out := postJSON(t, srv, "/redeem", `{"code": ""}`)
	require.Equal(t, "EMPTY_CODE", out.Error)

	out = postJSON(t, srv, "/redeem", `{"code": "NOPE"}`)
	require.Equal(t, "INVALID_CODE", out.Error)

	out = postJSON(t, srv, "/redeem", `{"code": "BORNTOCODE"}`)
	require.True(t, out.OK)
	require.Equal(t, 5000.0, out.Snapshot.State.Currency)

	out = postJSON(t, srv, "/redeem", `{"code": "OPENSESAME"}`)
	require.True(t, out.OK)
	require.False(t, out.AlreadyActive)

	out = postJSON(t, srv, "/redeem", `{"code": "OPENSESAME"}`)
	require.True(t, out.OK)
	require.True(t, out.AlreadyActive)
}

func TestAdminGate(t *testing.T) {
	srv := newTestServer(t)

	out := postJSON(t, srv, "/admin/set", `{"field": "currency", "value": 100}`)
	require.False(t, out.OK)
	require.Equal(t, "ADMIN_LOCKED", out.Error)

	postJSON(t, srv, "/redeem", `{"code": "OPENSESAME"}`)

	out = postJSON(t, srv, "/admin/set", `{"field": "currency", "value": 100}`)
	require.True(t, out.OK)
	require.Equal(t, 100.0, out.Snapshot.State.Currency)

	out = postJSON(t, srv, "/admin/set", `{"field": "currency", "value": -1}`)
	require.Equal(t, "INVALID_INPUT", out.Error)

	out = postJSON(t, srv, "/admin/set", `{"field": "currency"}`)
	require.Equal(t, "INVALID_INPUT", out.Error)
}

func TestSwitchModeEndpoint(t *testing.T) {
	srv := newTestServer(t)

	out := postJSON(t, srv, "/switch-mode", `{"mode": "midnight"}`)
	require.Equal(t, "MODE_LOCKED", out.Error)

	postJSON(t, srv, "/redeem", `{"code": "MOONSHINE"}`)

	out = postJSON(t, srv, "/switch-mode", `{"mode": "midnight"}`)
	require.True(t, out.OK)
	require.Equal(t, "midnight", out.Snapshot.Mode)
}

func TestResetEndpoint(t *testing.T) {
	srv := newTestServer(t)

	postJSON(t, srv, "/redeem", `{"code": "BORNTOCODE"}`)
	out := postJSON(t, srv, "/reset", "{}")
	require.True(t, out.OK)
	require.Equal(t, 0.0, out.Snapshot.State.Currency)
}
