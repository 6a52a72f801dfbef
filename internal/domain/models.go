package domain

import (
	"time"
)

const (
	RoleTank    = "tank"
	RoleDamage  = "damage"
	RoleSupport = "support"
)

// Roles in display order.
var Roles = []string{RoleTank, RoleDamage, RoleSupport}

// UserAccount links a Discord identity to a BattleTag. At most one account
// per Discord identity.
type UserAccount struct {
	ID        string // nanoid
	DiscordID string
	BattleTag string
	CreatedAt time.Time
}

// RankSnapshot is one observation of a player's per-role skill ratings.
// A nil level means the role had no competitive record at observation time.
// Snapshots are append-only and never mutated.
type RankSnapshot struct {
	ID         string // nanoid
	UserID     string
	Tank       *int
	Damage     *int
	Support    *int
	ObservedAt time.Time
}

// Level returns the snapshot's rating for the given role.
func (s RankSnapshot) Level(role string) *int {
	switch role {
	case RoleTank:
		return s.Tank
	case RoleDamage:
		return s.Damage
	case RoleSupport:
		return s.Support
	}
	return nil
}
