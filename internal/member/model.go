package member

import "time"

// Role is a member's office within the group
type Role string

const (
	RoleMember    Role = "member"
	RoleTreasurer Role = "treasurer"
	RoleSecretary Role = "secretary"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleTreasurer, RoleSecretary:
		return true
	}
	return false
}

// Member is an individual belonging to exactly one group
type Member struct {
	ID          int64     `json:"id"`
	GroupID     int64     `json:"group_id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	Role        Role      `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`

	// Populated from JOIN
	GroupName string `json:"group_name,omitempty"`
}
