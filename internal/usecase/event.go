package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/domain"
)

// EventUsecase covers event management: creation, listing, and cached reads
// for display.
type EventUsecase struct {
	events EventRepository
	cache  EventCache
}

func NewEventUsecase(events EventRepository, cache EventCache) *EventUsecase {
	return &EventUsecase{events: events, cache: cache}
}

// RoleInput describes one role of a new event.
type RoleInput struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	MaxParticipants int    `json:"maxParticipants"`
}

// CreateEventInput is the validated input for creating an event.
type CreateEventInput struct {
	Title     string      `json:"title"`
	EventType string      `json:"type"`
	Date      time.Time   `json:"date"`
	Location  string      `json:"location"`
	Purpose   string      `json:"purpose"`
	Format    string      `json:"format"`
	Roles     []RoleInput `json:"roles"`
	CreatedBy string      `json:"-"`
}

// Create validates the input and persists a new event aggregate.
func (u *EventUsecase) Create(ctx context.Context, input CreateEventInput) (*domain.Event, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, domain.ValidationError{Message: "event title is required"}
	}
	if input.Date.IsZero() {
		return nil, domain.ValidationError{Message: "event date is required"}
	}
	if len(input.Roles) == 0 {
		return nil, domain.ValidationError{Message: "at least one role is required"}
	}

	seen := make(map[string]bool, len(input.Roles))
	roles := make([]domain.Role, 0, len(input.Roles))
	for _, r := range input.Roles {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, domain.ValidationError{Message: "role name is required"}
		}
		if seen[name] {
			return nil, domain.ValidationError{Message: "role names must be unique within an event"}
		}
		seen[name] = true
		if r.MaxParticipants <= 0 {
			return nil, domain.ValidationError{Message: "role capacity must be a positive integer"}
		}
		roles = append(roles, domain.Role{
			ID:              uuid.NewString(),
			Name:            name,
			Description:     r.Description,
			MaxParticipants: r.MaxParticipants,
			CurrentSignups:  []domain.Signup{},
		})
	}

	event := &domain.Event{
		ID:        uuid.NewString(),
		Title:     input.Title,
		EventType: input.EventType,
		Date:      input.Date,
		Location:  input.Location,
		Purpose:   input.Purpose,
		Format:    input.Format,
		CreatedBy: input.CreatedBy,
		Roles:     roles,
	}
	if err := u.events.Save(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Get returns an event, serving display reads from the cache when possible.
// Cached copies may lag a roster write by up to the cache TTL; mutating
// operations read through the repository instead.
func (u *EventUsecase) Get(ctx context.Context, id string) (*domain.Event, error) {
	if event, ok := u.cache.Get(ctx, id); ok {
		return event, nil
	}
	event, err := u.events.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.cache.Set(ctx, event)
	return event, nil
}

// List returns all events.
func (u *EventUsecase) List(ctx context.Context) ([]domain.Event, error) {
	return u.events.List(ctx)
}

// Invalidate drops the cached copy of an event after a roster mutation.
func (u *EventUsecase) Invalidate(ctx context.Context, id string) {
	u.cache.Delete(ctx, id)
}
