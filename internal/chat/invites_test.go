package chat

import (
	"errors"
	"testing"
	"time"

	"github.com/avolkov/parley/internal/domain"
)

func TestInviteLedger_CreateTokenShape(t *testing.T) {
	l := NewInviteLedger()
	inv := l.Create("conn-1", "general", 24*time.Hour)

	if len(inv.Token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(inv.Token))
	}
	for _, r := range inv.Token {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			t.Fatalf("token contains non-hex rune %q", r)
		}
	}
	if inv.MaxUses != domain.InviteMaxUses {
		t.Errorf("MaxUses = %d, want %d", inv.MaxUses, domain.InviteMaxUses)
	}
	if inv.Uses != 0 {
		t.Errorf("Uses = %d, want 0", inv.Uses)
	}
	if !inv.ExpiresAt.After(inv.CreatedAt) {
		t.Error("ExpiresAt should be after CreatedAt")
	}
}

func TestInviteLedger_NoCollisions(t *testing.T) {
	l := NewInviteLedger()
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		inv := l.Create("conn-1", "general", time.Hour)
		if _, dup := seen[inv.Token]; dup {
			t.Fatalf("duplicate token after %d creations", i)
		}
		seen[inv.Token] = struct{}{}
	}
}

func TestInviteLedger_UseLimitBoundary(t *testing.T) {
	l := NewInviteLedger()
	inv := l.Create("issuer", "tech", time.Hour)

	for i := 0; i < domain.InviteMaxUses; i++ {
		if _, err := l.Validate(inv.Token); err != nil {
			t.Fatalf("validation %d failed: %v", i+1, err)
		}
		l.Consume(inv.Token)
	}

	_, err := l.Validate(inv.Token)
	if !errors.Is(err, ErrInviteExhausted) {
		t.Fatalf("6th validate error = %v, want ErrInviteExhausted", err)
	}
	if got := l.ListByIssuer("issuer"); len(got) != 0 {
		t.Errorf("exhausted token still listed: %v", got)
	}
}

func TestInviteLedger_Expiry(t *testing.T) {
	l := NewInviteLedger()
	inv := l.Create("issuer", "general", -time.Minute)

	_, err := l.Validate(inv.Token)
	if !errors.Is(err, ErrInviteExpired) {
		t.Fatalf("validate error = %v, want ErrInviteExpired", err)
	}
	// Lazy cleanup: expired token is gone now.
	if _, err := l.Validate(inv.Token); !errors.Is(err, ErrInviteInvalid) {
		t.Errorf("second validate error = %v, want ErrInviteInvalid", err)
	}
	if l.Count() != 0 {
		t.Errorf("Count() = %d, want 0", l.Count())
	}
}

func TestInviteLedger_UnknownToken(t *testing.T) {
	l := NewInviteLedger()
	if _, err := l.Validate("no-such-token"); !errors.Is(err, ErrInviteInvalid) {
		t.Errorf("validate error = %v, want ErrInviteInvalid", err)
	}
}

func TestInviteLedger_RevokeAuthorization(t *testing.T) {
	l := NewInviteLedger()
	inv := l.Create("alice", "general", time.Hour)

	if l.Revoke(inv.Token, "bob") {
		t.Error("Revoke by non-issuer should no-op")
	}
	if _, err := l.Validate(inv.Token); err != nil {
		t.Errorf("token should survive foreign revoke, got %v", err)
	}

	if !l.Revoke(inv.Token, "alice") {
		t.Error("Revoke by issuer should succeed")
	}
	if _, err := l.Validate(inv.Token); !errors.Is(err, ErrInviteInvalid) {
		t.Errorf("validate after revoke = %v, want ErrInviteInvalid", err)
	}
}

func TestInviteLedger_ListByIssuer(t *testing.T) {
	l := NewInviteLedger()
	l.Create("alice", "general", time.Hour)
	l.Create("alice", "tech", time.Hour)
	l.Create("bob", "general", time.Hour)

	if got := len(l.ListByIssuer("alice")); got != 2 {
		t.Errorf("alice has %d invites, want 2", got)
	}
	if got := len(l.ListByIssuer("carol")); got != 0 {
		t.Errorf("carol has %d invites, want 0", got)
	}
}

func TestInviteLedger_IssuerOutlivesConnection(t *testing.T) {
	// The issuer id is stored by value; nothing invalidates the token
	// when that connection goes away. Only expiry, exhaustion and
	// revocation kill it.
	l := NewInviteLedger()
	inv := l.Create("gone", "general", time.Hour)
	if _, err := l.Validate(inv.Token); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
