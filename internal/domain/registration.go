package domain

import "time"

const (
	RegistrationStatusActive    = "active"
	RegistrationStatusCancelled = "cancelled"
	RegistrationStatusAttended  = "attended"
	RegistrationStatusNoShow    = "no_show"
)

const (
	AuditActionRegistered        = "registered"
	AuditActionAdminRemoved      = "admin_removed"
	AuditActionMovedBetweenRoles = "moved_between_roles"
)

// AuditEntry is one append-only line of a registration's history.
type AuditEntry struct {
	Action      string    `json:"action"`
	PerformedBy string    `json:"performedBy"`
	PerformedAt time.Time `json:"performedAt"`
	Note        string    `json:"note,omitempty"`
}

// EventSnapshot captures the event and role as they were at registration time.
type EventSnapshot struct {
	Title           string    `json:"title"`
	Date            time.Time `json:"date"`
	Location        string    `json:"location,omitempty"`
	RoleName        string    `json:"roleName"`
	RoleDescription string    `json:"roleDescription,omitempty"`
}

// UserSnapshot captures the user as they were at registration time.
type UserSnapshot struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

// Registration is the ledger record for one user's registration in one role
// of one event. At most one active record exists per (user, event, role).
type Registration struct {
	ID                  string        `json:"id"`
	UserID              string        `json:"userId"`
	EventID             string        `json:"eventId"`
	RoleID              string        `json:"roleId"`
	Status              string        `json:"status"`
	EventSnapshot       EventSnapshot `json:"eventSnapshot"`
	UserSnapshot        UserSnapshot  `json:"userSnapshot"`
	Notes               string        `json:"notes,omitempty"`
	SpecialRequirements string        `json:"specialRequirements,omitempty"`
	RegisteredBy        string        `json:"registeredBy,omitempty"`
	AuditTrail          []AuditEntry  `json:"auditTrail"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

// AddAuditEntry appends an entry to the registration's audit trail.
func (r *Registration) AddAuditEntry(action, performedBy, note string) {
	r.AuditTrail = append(r.AuditTrail, AuditEntry{
		Action:      action,
		PerformedBy: performedBy,
		PerformedAt: time.Now().UTC(),
		Note:        note,
	})
}

// RosterEvent is the payload published on the realtime signal channel after
// a successful roster mutation.
type RosterEvent struct {
	Type      string    `json:"type"`
	EventID   string    `json:"eventId"`
	RoleID    string    `json:"roleId"`
	ToRoleID  string    `json:"toRoleId,omitempty"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	RosterEventSignup = "signup"
	RosterEventCancel = "cancel"
	RosterEventRemove = "remove"
	RosterEventMove   = "move"
)
