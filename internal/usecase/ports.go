package usecase

import (
	"context"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/domain"
)

// EventRepository defines storage for the event roster aggregate. FindByID
// loads the event together with its roles and signups as one unit.
type EventRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Event, error)
	// Save persists the aggregate in a single atomic write. When roleIDs are
	// given, only those roles' rosters are written and every other role's
	// stored roster is left untouched; callers holding a lock scoped to
	// specific roles must name exactly those roles, or a save from a stale
	// aggregate copy can erase a concurrent writer's work on a role the
	// caller never locked. With no roleIDs the whole aggregate is written,
	// including removal of roles absent from it.
	Save(ctx context.Context, event *domain.Event, roleIDs ...string) error
	List(ctx context.Context) ([]domain.Event, error)
}

// RegistrationRepository defines storage for registration ledger records.
// Lookups return domain.ErrNotFound when no record matches.
type RegistrationRepository interface {
	// FindByTuple returns the record for (user, event, role) regardless of
	// its status.
	FindByTuple(ctx context.Context, userID, eventID, roleID string) (*domain.Registration, error)
	// FindActive returns the active record for (user, event, role).
	FindActive(ctx context.Context, userID, eventID, roleID string) (*domain.Registration, error)
	Create(ctx context.Context, reg *domain.Registration) error
	Save(ctx context.Context, reg *domain.Registration) error
	// DeleteActive hard-deletes the active record for (user, event, role).
	// Deleting a tuple with no active record is not an error.
	DeleteActive(ctx context.Context, userID, eventID, roleID string) error
	// DeleteByID hard-deletes a record by its identifier.
	DeleteByID(ctx context.Context, id string) error
}

// UserRepository defines storage for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// PromoRepository defines storage for promo codes.
type PromoRepository interface {
	Create(ctx context.Context, promo *domain.PromoCode) error
	FindByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	// Redeem atomically consumes one use of a currently redeemable code and
	// returns the updated record, or domain.ErrNotFound when no redeemable
	// row matched.
	Redeem(ctx context.Context, code string) (*domain.PromoCode, error)
}

// EventCache is a read-through display cache for event aggregates.
type EventCache interface {
	Get(ctx context.Context, id string) (*domain.Event, bool)
	Set(ctx context.Context, event *domain.Event)
	Delete(ctx context.Context, id string)
}
