package chat

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/avolkov/parley/internal/domain"
)

// PresenceDirectory maps each live connection to its profile. It is
// the single owner of profile records; readers get copies.
type PresenceDirectory struct {
	mu       sync.RWMutex
	profiles map[domain.ConnID]*domain.Profile
}

func NewPresenceDirectory() *PresenceDirectory {
	return &PresenceDirectory{profiles: make(map[domain.ConnID]*domain.Profile)}
}

// Register inserts the profile for a fresh connection. Connection ids
// are never reused, so sid must not already be present.
func (p *PresenceDirectory) Register(sid domain.ConnID, profile *domain.Profile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles[sid] = profile
	log.Info().Str("module", "chat.presence").Str("sid", string(sid)).Str("username", profile.Username).Msg("registered")
}

func (p *PresenceDirectory) Get(sid domain.ConnID) (domain.Profile, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	prof, ok := p.profiles[sid]
	if !ok {
		return domain.Profile{}, false
	}
	return *prof, true
}

// SetRoom mutates the room field in place; the rest of the profile is
// immutable after registration.
func (p *PresenceDirectory) SetRoom(sid domain.ConnID, room domain.RoomID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	prof, ok := p.profiles[sid]
	if !ok {
		return false
	}
	prof.Room = room
	return true
}

func (p *PresenceDirectory) Unregister(sid domain.ConnID) (domain.Profile, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prof, ok := p.profiles[sid]
	if !ok {
		return domain.Profile{}, false
	}
	delete(p.profiles, sid)
	log.Info().Str("module", "chat.presence").Str("sid", string(sid)).Msg("unregistered")
	return *prof, true
}

// ListByRoom is a linear scan. Fine at the tens-to-hundreds of
// concurrent users a single process serves.
func (p *PresenceDirectory) ListByRoom(room domain.RoomID) []domain.Profile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]domain.Profile, 0)
	for _, prof := range p.profiles {
		if prof.Room == room {
			out = append(out, *prof)
		}
	}
	return out
}

func (p *PresenceDirectory) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.profiles)
}
