package domain

import "time"

// InviteMaxUses caps how many joins a single link admits.
const InviteMaxUses = 5

// Invite is a shareable join token. The issuer is stored by value: the
// link outlives the issuing connection and dies only by expiry, by
// exhaustion or by explicit revocation.
type Invite struct {
	Token     string    `json:"token"`
	Issuer    ConnID    `json:"-"`
	Room      RoomID    `json:"room"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Uses      int       `json:"uses"`
	MaxUses   int       `json:"maxUses"`
}
