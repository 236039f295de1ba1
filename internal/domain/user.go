package domain

import "time"

const (
	UserRoleParticipant   = "Participant"
	UserRoleLeader        = "Leader"
	UserRoleAdministrator = "Administrator"
)

// User is a community member account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Avatar       string    `json:"avatar,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CanManageRosters reports whether a role may remove or move other
// participants.
func CanManageRosters(role string) bool {
	return role == UserRoleLeader || role == UserRoleAdministrator
}

// CanManageRosters reports whether the user may remove or move other
// participants.
func (u *User) CanManageRosters() bool {
	return CanManageRosters(u.Role)
}
