package model

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Member is one person reachable over the messaging channel, scoped to a
// space. Admin rights are a per-space role, not a global flag.
type Member struct {
	ID        int64
	Phone     string
	Name      string
	Role      Role
	SpaceID   *int64
	OptedIn   bool
	CreatedAt time.Time
}

// Space is an isolated group of members sharing one set of drafts, polls,
// and facts.
type Space struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
