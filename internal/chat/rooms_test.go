package chat

import (
	"fmt"
	"testing"
	"time"

	"github.com/avolkov/parley/internal/domain"
)

func msg(room domain.RoomID, n int) domain.Message {
	return domain.Message{
		ID:        fmt.Sprintf("m-%d", n),
		Text:      fmt.Sprintf("message %d", n),
		Timestamp: time.Now(),
		Kind:      domain.MessageText,
		Room:      room,
	}
}

func TestRoomRegistry_FixedRooms(t *testing.T) {
	r := NewRoomRegistry()

	tests := []struct {
		room domain.RoomID
		name string
	}{
		{"general", "General Chat"},
		{"tech", "Technology"},
		{"gaming", "Gaming"},
	}
	for _, tt := range tests {
		t.Run(string(tt.room), func(t *testing.T) {
			name, ok := r.DisplayName(tt.room)
			if !ok {
				t.Fatalf("room %q missing", tt.room)
			}
			if name != tt.name {
				t.Errorf("DisplayName = %q, want %q", name, tt.name)
			}
		})
	}

	if _, ok := r.DisplayName("secret"); ok {
		t.Error("unknown room should not resolve")
	}
}

func TestRoomRegistry_HistoryCapFIFO(t *testing.T) {
	r := NewRoomRegistry()
	for i := 1; i <= HistoryCap+1; i++ {
		r.Append("general", msg("general", i))
	}

	h := r.RecentHistory("general", HistoryCap+10)
	if len(h) != HistoryCap {
		t.Fatalf("history length = %d, want %d", len(h), HistoryCap)
	}
	// Oldest entry evicted, the newest 100 remain in original order.
	if h[0].ID != "m-2" {
		t.Errorf("oldest surviving id = %q, want m-2", h[0].ID)
	}
	for i := 1; i < len(h); i++ {
		if h[i].ID != fmt.Sprintf("m-%d", i+2) {
			t.Fatalf("order broken at %d: got %q", i, h[i].ID)
		}
	}
}

func TestRoomRegistry_RecentHistoryWindow(t *testing.T) {
	r := NewRoomRegistry()
	for i := 1; i <= 60; i++ {
		r.Append("tech", msg("tech", i))
	}

	h := r.RecentHistory("tech", HistoryWindow)
	if len(h) != HistoryWindow {
		t.Fatalf("window = %d, want %d", len(h), HistoryWindow)
	}
	if h[0].ID != "m-11" || h[len(h)-1].ID != "m-60" {
		t.Errorf("window bounds = %q..%q, want m-11..m-60", h[0].ID, h[len(h)-1].ID)
	}
}

func TestRoomRegistry_UnknownRoomTolerated(t *testing.T) {
	r := NewRoomRegistry()

	// None of these should panic or create tracking.
	r.Join("secret", "c1")
	r.Append("secret", msg("secret", 1))
	r.Leave("secret", "c1")

	if got := r.MemberCount("secret"); got != 0 {
		t.Errorf("MemberCount(secret) = %d, want 0", got)
	}
	if h := r.RecentHistory("secret", 50); h != nil {
		t.Errorf("RecentHistory(secret) = %v, want nil", h)
	}
}

func TestRoomRegistry_Membership(t *testing.T) {
	r := NewRoomRegistry()
	r.Join("general", "c1")
	r.Join("general", "c2")
	r.Join("tech", "c3")

	if got := r.MemberCount("general"); got != 2 {
		t.Errorf("MemberCount(general) = %d, want 2", got)
	}
	r.Leave("general", "c1")
	if got := r.MemberCount("general"); got != 1 {
		t.Errorf("after leave MemberCount(general) = %d, want 1", got)
	}

	members := r.Members("general")
	if len(members) != 1 || members[0] != "c2" {
		t.Errorf("Members(general) = %v, want [c2]", members)
	}
}

func TestRoomRegistry_Snapshot(t *testing.T) {
	r := NewRoomRegistry()
	r.Join("general", "c1")
	r.Append("general", msg("general", 1))
	r.Append("general", msg("general", 2))

	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot has %d rooms, want 3", len(snap))
	}
	var general *RoomStat
	for i := range snap {
		if snap[i].Name == "General Chat" {
			general = &snap[i]
		}
	}
	if general == nil {
		t.Fatal("General Chat missing from snapshot")
	}
	if general.Users != 1 || general.Messages != 2 {
		t.Errorf("general stat = %+v, want users 1 messages 2", *general)
	}
}
