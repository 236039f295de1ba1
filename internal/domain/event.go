package domain

import "time"

// Signup is one participant entry embedded in a role's roster. The display
// fields are denormalized from the user at signup time.
type Signup struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

// FullName returns the participant's display name.
func (s Signup) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Role is a capacity-limited slot group within an event.
type Role struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	MaxParticipants int      `json:"maxParticipants"`
	CurrentSignups  []Signup `json:"currentSignups"`
}

// IsFull reports whether the role has no remaining capacity.
func (r *Role) IsFull() bool {
	return len(r.CurrentSignups) >= r.MaxParticipants
}

// IndexOf returns the position of userID in the roster, or -1.
func (r *Role) IndexOf(userID string) int {
	for i, s := range r.CurrentSignups {
		if s.UserID == userID {
			return i
		}
	}
	return -1
}

// HasUser reports whether userID is already on the roster.
func (r *Role) HasUser(userID string) bool {
	return r.IndexOf(userID) >= 0
}

// Event is the roster aggregate: an event and its roles with their embedded
// signups, persisted and loaded as a single unit.
type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	EventType string    `json:"type,omitempty"`
	Date      time.Time `json:"date"`
	Location  string    `json:"location,omitempty"`
	Purpose   string    `json:"purpose,omitempty"`
	Format    string    `json:"format,omitempty"`
	CreatedBy string    `json:"createdBy,omitempty"`
	Roles     []Role    `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FindRole returns a pointer into the event's role slice, or nil when the
// role does not exist. Mutations through the pointer are part of the
// aggregate and land on the next Save.
func (e *Event) FindRole(roleID string) *Role {
	for i := range e.Roles {
		if e.Roles[i].ID == roleID {
			return &e.Roles[i]
		}
	}
	return nil
}
