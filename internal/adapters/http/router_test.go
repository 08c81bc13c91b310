package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avolkov/parley/internal/chat"
	"github.com/avolkov/parley/internal/config"
	"github.com/avolkov/parley/internal/gateway"
	"github.com/avolkov/parley/internal/metrics"
)

func testRouter() (*chat.State, http.Handler) {
	cfg := &config.Config{
		Mode:          "release",
		ClientURL:     "http://localhost:3000",
		ReadLimit:     32768,
		PingPeriod:    54 * time.Second,
		SendBuffer:    32,
		MsgRateLimit:  10,
		MsgRateWindow: 2 * time.Second,
	}
	state := chat.NewState()
	collector := metrics.NewCollector()
	gw := gateway.New(state, collector, cfg)
	return state, SetupRouter(cfg, state, gw, collector)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	state, r := testRouter()
	state.Invites.Create("c1", "general", time.Hour)

	w := get(t, r, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Status        string          `json:"status"`
		Users         int             `json:"users"`
		Connections   int             `json:"connections"`
		ActiveInvites int             `json:"activeInvites"`
		Rooms         []chat.RoomStat `json:"rooms"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if body.Status != "online" {
		t.Errorf("status = %q", body.Status)
	}
	if body.ActiveInvites != 1 {
		t.Errorf("activeInvites = %d, want 1", body.ActiveInvites)
	}
	if len(body.Rooms) != 3 {
		t.Errorf("rooms = %d, want 3", len(body.Rooms))
	}
}

func TestValidateInvite_OK(t *testing.T) {
	state, r := testRouter()
	inv := state.Invites.Create("c1", "tech", time.Hour)

	w := get(t, r, "/api/invite/validate/"+inv.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var body struct {
		Success bool `json:"success"`
		Invite  struct {
			Room    string `json:"room"`
			Uses    int    `json:"uses"`
			MaxUses int    `json:"maxUses"`
		} `json:"invite"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if !body.Success || body.Invite.Room != "tech" || body.Invite.MaxUses != 5 {
		t.Errorf("body = %+v", body)
	}
}

func TestValidateInvite_Rejections(t *testing.T) {
	state, r := testRouter()
	expired := state.Invites.Create("c1", "general", -time.Minute)

	tests := []struct {
		name   string
		token  string
		reason string
	}{
		{"unknown token", "deadbeef", "Invalid link"},
		{"expired token", expired.Token, "Link expired"},
		// Lazy cleanup deleted it during the previous request.
		{"expired token gone", expired.Token, "Invalid link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, r, "/api/invite/validate/"+tt.token)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", w.Code)
			}
			var body struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("body: %v", err)
			}
			if body.Success || body.Error != tt.reason {
				t.Errorf("body = %+v, want reason %q", body, tt.reason)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, r := testRouter()
	w := get(t, r, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	_, r := testRouter()
	w := get(t, r, "/health")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allow-origin = %q", got)
	}
}
