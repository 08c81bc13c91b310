package chat

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avolkov/parley/internal/domain"
)

// Rejection reasons. The messages are part of the client contract and
// go out verbatim in invite_error payloads and HTTP 400 bodies.
var (
	ErrInviteInvalid   = errors.New("Invalid link")
	ErrInviteExpired   = errors.New("Link expired")
	ErrInviteExhausted = errors.New("Link usage limit reached")
)

// InviteLedger owns every live invite token. Expired and exhausted
// tokens are deleted lazily on validation; there is no background sweep.
type InviteLedger struct {
	mu      sync.Mutex
	invites map[string]*domain.Invite
}

func NewInviteLedger() *InviteLedger {
	return &InviteLedger{invites: make(map[string]*domain.Invite)}
}

// newToken returns 32 random bytes hex-encoded, 256 bits of entropy.
func newToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return hex.EncodeToString(b)
}

// Create issues a token for room. Room validity is not checked here;
// that is the caller's call to make.
func (l *InviteLedger) Create(issuer domain.ConnID, room domain.RoomID, ttl time.Duration) domain.Invite {
	inv := &domain.Invite{
		Token:     newToken(),
		Issuer:    issuer,
		Room:      room,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(ttl),
		Uses:      0,
		MaxUses:   domain.InviteMaxUses,
	}
	l.mu.Lock()
	l.invites[inv.Token] = inv
	l.mu.Unlock()
	log.Info().Str("module", "chat.invites").Str("sid", string(issuer)).Str("room", string(room)).Msg("invite created")
	return *inv
}

// Validate reports whether token currently admits a join. Expired and
// exhausted tokens are removed as a side effect.
func (l *InviteLedger) Validate(token string) (domain.Invite, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	inv, ok := l.invites[token]
	if !ok {
		return domain.Invite{}, ErrInviteInvalid
	}
	if time.Now().After(inv.ExpiresAt) {
		delete(l.invites, token)
		return domain.Invite{}, ErrInviteExpired
	}
	if inv.Uses >= inv.MaxUses {
		delete(l.invites, token)
		return domain.Invite{}, ErrInviteExhausted
	}
	return *inv, nil
}

// Consume increments the use counter. Callers must have validated
// first; validate and consume stay separate operations on purpose, the
// dispatch loop serializes them anyway.
func (l *InviteLedger) Consume(token string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if inv, ok := l.invites[token]; ok {
		inv.Uses++
	}
}

func (l *InviteLedger) ListByIssuer(issuer domain.ConnID) []domain.Invite {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Invite, 0)
	for _, inv := range l.invites {
		if inv.Issuer == issuer {
			out = append(out, *inv)
		}
	}
	return out
}

// Revoke deletes token if requester issued it. A mismatched requester
// is a silent no-op so non-owners can't probe which tokens exist.
func (l *InviteLedger) Revoke(token string, requester domain.ConnID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	inv, ok := l.invites[token]
	if !ok || inv.Issuer != requester {
		return false
	}
	delete(l.invites, token)
	log.Info().Str("module", "chat.invites").Str("sid", string(requester)).Msg("invite revoked")
	return true
}

func (l *InviteLedger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.invites)
}
