package usecase

import (
	"context"
	"fmt"
	"log/slog"

	stderrors "errors"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/domain"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/lock"
)

// RegistrationUsecase implements the four roster operations. Each operation
// runs under a lock scoped to exactly the roles and users it mutates, so
// concurrent callers cannot overbook a role or leave the roster and the
// registration ledger inconsistent.
//
// Expected business-rule violations (missing event/role/user, full role,
// duplicate signup) are reported via a result with Success=false and a
// display-ready message. Only storage errors surface differently, and even
// those are converted to a failed result at each operation's top level.
type RegistrationUsecase struct {
	locks         *lock.Manager
	events        EventRepository
	registrations RegistrationRepository
}

func NewRegistrationUsecase(
	locks *lock.Manager,
	events EventRepository,
	registrations RegistrationRepository,
) *RegistrationUsecase {
	return &RegistrationUsecase{
		locks:         locks,
		events:        events,
		registrations: registrations,
	}
}

// Outcome is the part of a result every operation shares. Event is the
// persisted aggregate and is only set on success.
type Outcome struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Event   *domain.Event `json:"event,omitempty"`
}

func refused(message string) Outcome {
	return Outcome{Success: false, Message: message}
}

func succeeded(message string, event *domain.Event) Outcome {
	return Outcome{Success: true, Message: message, Event: event}
}

func failed(err error) Outcome {
	message := err.Error()
	if message == "" {
		message = "The operation did not succeed"
	}
	return Outcome{Success: false, Message: message}
}

// SignupInput carries everything needed to place a user into a role.
type SignupInput struct {
	UserID              string        `json:"userId"`
	RoleID              string        `json:"roleId"`
	User                domain.Signup `json:"user"`
	Notes               string        `json:"notes"`
	SpecialRequirements string        `json:"specialRequirements"`
	RegisteredBy        string        `json:"registeredBy"`
}

type SignupResult struct {
	Outcome
	Registration *domain.Registration `json:"registration,omitempty"`
}

type CancelInput struct {
	UserID string `json:"userId"`
	RoleID string `json:"roleId"`
}

type CancelResult struct {
	Outcome
	CancelledRole string `json:"cancelledRole,omitempty"`
}

type RemoveResult struct {
	Outcome
	RemovedUser string `json:"removedUser,omitempty"`
	RoleName    string `json:"roleName,omitempty"`
}

type MoveResult struct {
	Outcome
	UserName string `json:"userName,omitempty"`
	FromRole string `json:"fromRole,omitempty"`
	ToRole   string `json:"toRole,omitempty"`
}

// SignupForEvent places a user into a role of an event. Concurrent signups
// for the same role serialize; signups for different roles of the same event
// proceed concurrently.
func (u *RegistrationUsecase) SignupForEvent(ctx context.Context, eventID string, input SignupInput) SignupResult {
	key := fmt.Sprintf("signup:%s:%s", eventID, input.RoleID)
	result, err := lock.Do(u.locks, key, func() (SignupResult, error) {
		return u.signup(ctx, eventID, input)
	})
	if err != nil {
		slog.ErrorContext(ctx, "signup failed",
			slog.String("eventId", eventID),
			slog.String("roleId", input.RoleID),
			slog.String("error", err.Error()),
			slog.String("module", "registration"),
		)
		return SignupResult{Outcome: failed(err)}
	}
	return result
}

func (u *RegistrationUsecase) signup(ctx context.Context, eventID string, input SignupInput) (SignupResult, error) {
	event, err := u.events.FindByID(ctx, eventID)
	if stderrors.Is(err, domain.ErrNotFound) {
		return SignupResult{Outcome: refused("Event not found")}, nil
	}
	if err != nil {
		return SignupResult{}, errors.Wrap(err, "load event")
	}

	role := event.FindRole(input.RoleID)
	if role == nil {
		return SignupResult{Outcome: refused("Role not found in this event")}, nil
	}
	if role.HasUser(input.UserID) {
		return SignupResult{Outcome: refused("User is already signed up for this role")}, nil
	}
	// The capacity check happens after loading inside the lock; that is what
	// makes it race-free against other signups for the same role.
	if role.IsFull() {
		return SignupResult{Outcome: refused("This role is already full")}, nil
	}

	entry := input.User
	entry.UserID = input.UserID
	role.CurrentSignups = append(role.CurrentSignups, entry)

	// Only this role is saved: the lock covers (event, role), so writing
	// the rest of the aggregate could clobber a concurrent signup to a
	// sibling role.
	if err := u.events.Save(ctx, event, role.ID); err != nil {
		return SignupResult{}, errors.Wrap(err, "save event")
	}

	reg, err := u.registrations.FindByTuple(ctx, input.UserID, eventID, input.RoleID)
	switch {
	case err == nil:
		// A prior record for this tuple exists in some state: reactivate it
		// instead of creating a duplicate.
		reg.Status = domain.RegistrationStatusActive
		if input.Notes != "" {
			reg.Notes = input.Notes
		}
		if input.SpecialRequirements != "" {
			reg.SpecialRequirements = input.SpecialRequirements
		}
		reg.AddAuditEntry(domain.AuditActionRegistered, input.RegisteredBy,
			"Re-registered for role after previous cancellation")
		if err := u.registrations.Save(ctx, reg); err != nil {
			return SignupResult{}, errors.Wrap(err, "save registration")
		}
	case stderrors.Is(err, domain.ErrNotFound):
		reg = &domain.Registration{
			ID:      uuid.NewString(),
			UserID:  input.UserID,
			EventID: eventID,
			RoleID:  input.RoleID,
			Status:  domain.RegistrationStatusActive,
			EventSnapshot: domain.EventSnapshot{
				Title:           event.Title,
				Date:            event.Date,
				Location:        event.Location,
				RoleName:        role.Name,
				RoleDescription: role.Description,
			},
			UserSnapshot: domain.UserSnapshot{
				Username:  entry.Username,
				FirstName: entry.FirstName,
				LastName:  entry.LastName,
				Email:     entry.Email,
				Avatar:    entry.Avatar,
			},
			Notes:               input.Notes,
			SpecialRequirements: input.SpecialRequirements,
			RegisteredBy:        input.RegisteredBy,
		}
		reg.AddAuditEntry(domain.AuditActionRegistered, input.RegisteredBy,
			"Registered for role: "+role.Name)
		if err := u.registrations.Create(ctx, reg); err != nil {
			return SignupResult{}, errors.Wrap(err, "create registration")
		}
	default:
		return SignupResult{}, errors.Wrap(err, "find registration")
	}

	return SignupResult{
		Outcome:      succeeded("Successfully signed up for the event!", event),
		Registration: reg,
	}, nil
}

// CancelSignup removes a user's own signup and hard-deletes the matching
// active ledger record.
func (u *RegistrationUsecase) CancelSignup(ctx context.Context, eventID string, input CancelInput) CancelResult {
	key := fmt.Sprintf("cancel:%s:%s:%s", eventID, input.RoleID, input.UserID)
	result, err := lock.Do(u.locks, key, func() (CancelResult, error) {
		return u.cancel(ctx, eventID, input)
	})
	if err != nil {
		slog.ErrorContext(ctx, "cancel failed",
			slog.String("eventId", eventID),
			slog.String("roleId", input.RoleID),
			slog.String("userId", input.UserID),
			slog.String("error", err.Error()),
			slog.String("module", "registration"),
		)
		return CancelResult{Outcome: failed(err)}
	}
	return result
}

func (u *RegistrationUsecase) cancel(ctx context.Context, eventID string, input CancelInput) (CancelResult, error) {
	event, err := u.events.FindByID(ctx, eventID)
	if stderrors.Is(err, domain.ErrNotFound) {
		return CancelResult{Outcome: refused("Event not found")}, nil
	}
	if err != nil {
		return CancelResult{}, errors.Wrap(err, "load event")
	}

	role := event.FindRole(input.RoleID)
	if role == nil {
		return CancelResult{Outcome: refused("Role not found")}, nil
	}

	idx := role.IndexOf(input.UserID)
	if idx < 0 {
		return CancelResult{Outcome: refused("User was not signed up for this role")}, nil
	}
	role.CurrentSignups = append(role.CurrentSignups[:idx], role.CurrentSignups[idx+1:]...)

	if err := u.events.Save(ctx, event, role.ID); err != nil {
		return CancelResult{}, errors.Wrap(err, "save event")
	}

	// Cancellation is deletion, not a status transition: the record is gone
	// and any later re-signup creates a fresh one.
	if err := u.registrations.DeleteActive(ctx, input.UserID, eventID, input.RoleID); err != nil {
		return CancelResult{}, errors.Wrap(err, "delete registration")
	}

	return CancelResult{
		Outcome:       succeeded("Successfully cancelled your event signup", event),
		CancelledRole: role.Name,
	}, nil
}

// RemoveUserFromRole is the administrative variant of cancel.
func (u *RegistrationUsecase) RemoveUserFromRole(ctx context.Context, eventID, targetUserID, roleID, removedBy string) RemoveResult {
	key := fmt.Sprintf("remove:%s:%s:%s", eventID, roleID, targetUserID)
	result, err := lock.Do(u.locks, key, func() (RemoveResult, error) {
		return u.remove(ctx, eventID, targetUserID, roleID, removedBy)
	})
	if err != nil {
		slog.ErrorContext(ctx, "remove failed",
			slog.String("eventId", eventID),
			slog.String("roleId", roleID),
			slog.String("userId", targetUserID),
			slog.String("error", err.Error()),
			slog.String("module", "registration"),
		)
		return RemoveResult{Outcome: failed(err)}
	}
	return result
}

func (u *RegistrationUsecase) remove(ctx context.Context, eventID, targetUserID, roleID, removedBy string) (RemoveResult, error) {
	event, err := u.events.FindByID(ctx, eventID)
	if stderrors.Is(err, domain.ErrNotFound) {
		return RemoveResult{Outcome: refused("Event not found")}, nil
	}
	if err != nil {
		return RemoveResult{}, errors.Wrap(err, "load event")
	}

	role := event.FindRole(roleID)
	if role == nil {
		return RemoveResult{Outcome: refused("Role not found in this event")}, nil
	}

	idx := role.IndexOf(targetUserID)
	if idx < 0 {
		return RemoveResult{Outcome: refused("User not found in this role")}, nil
	}
	removed := role.CurrentSignups[idx]
	role.CurrentSignups = append(role.CurrentSignups[:idx], role.CurrentSignups[idx+1:]...)

	if err := u.events.Save(ctx, event, role.ID); err != nil {
		return RemoveResult{}, errors.Wrap(err, "save event")
	}

	reg, err := u.registrations.FindActive(ctx, targetUserID, eventID, roleID)
	switch {
	case err == nil:
		// The audit entry is appended to the in-memory record only: the
		// record is hard-deleted right after, so the entry never reaches
		// storage.
		reg.AddAuditEntry(domain.AuditActionAdminRemoved, removedBy,
			"Removed from role: "+role.Name)
		if err := u.registrations.DeleteByID(ctx, reg.ID); err != nil {
			return RemoveResult{}, errors.Wrap(err, "delete registration")
		}
	case stderrors.Is(err, domain.ErrNotFound):
		// Roster had the user but the ledger did not; nothing to delete.
	default:
		return RemoveResult{}, errors.Wrap(err, "find registration")
	}

	return RemoveResult{
		Outcome:     succeeded("User successfully removed from role", event),
		RemovedUser: removed.FullName(),
		RoleName:    role.Name,
	}, nil
}

// MoveUserBetweenRoles relocates a participant from one role of an event to
// another. Both role mutations land in one event save, so no reader outside
// the lock can observe a half-moved roster.
func (u *RegistrationUsecase) MoveUserBetweenRoles(ctx context.Context, eventID, userID, fromRoleID, toRoleID, movedBy string) MoveResult {
	key := fmt.Sprintf("move:%s:%s:%s:%s", eventID, fromRoleID, toRoleID, userID)
	result, err := lock.Do(u.locks, key, func() (MoveResult, error) {
		return u.move(ctx, eventID, userID, fromRoleID, toRoleID, movedBy)
	})
	if err != nil {
		slog.ErrorContext(ctx, "move failed",
			slog.String("eventId", eventID),
			slog.String("fromRoleId", fromRoleID),
			slog.String("toRoleId", toRoleID),
			slog.String("userId", userID),
			slog.String("error", err.Error()),
			slog.String("module", "registration"),
		)
		return MoveResult{Outcome: failed(err)}
	}
	return result
}

func (u *RegistrationUsecase) move(ctx context.Context, eventID, userID, fromRoleID, toRoleID, movedBy string) (MoveResult, error) {
	event, err := u.events.FindByID(ctx, eventID)
	if stderrors.Is(err, domain.ErrNotFound) {
		return MoveResult{Outcome: refused("Event not found")}, nil
	}
	if err != nil {
		return MoveResult{}, errors.Wrap(err, "load event")
	}

	fromRole := event.FindRole(fromRoleID)
	toRole := event.FindRole(toRoleID)
	if fromRole == nil || toRole == nil {
		return MoveResult{Outcome: refused("One or both roles not found")}, nil
	}

	// Only the target role needs a capacity check; the source only shrinks.
	if toRole.IsFull() {
		return MoveResult{Outcome: refused("Target role is at full capacity")}, nil
	}

	idx := fromRole.IndexOf(userID)
	if idx < 0 {
		return MoveResult{Outcome: refused("User not found in source role")}, nil
	}
	moved := fromRole.CurrentSignups[idx]
	fromRole.CurrentSignups = append(fromRole.CurrentSignups[:idx], fromRole.CurrentSignups[idx+1:]...)
	toRole.CurrentSignups = append(toRole.CurrentSignups, moved)

	if err := u.events.Save(ctx, event, fromRole.ID, toRole.ID); err != nil {
		return MoveResult{}, errors.Wrap(err, "save event")
	}

	reg, err := u.registrations.FindActive(ctx, userID, eventID, fromRoleID)
	switch {
	case err == nil:
		reg.RoleID = toRoleID
		reg.EventSnapshot.RoleName = toRole.Name
		reg.EventSnapshot.RoleDescription = toRole.Description
		reg.AddAuditEntry(domain.AuditActionMovedBetweenRoles, movedBy,
			fmt.Sprintf("Moved from %s to %s", fromRole.Name, toRole.Name))
		if err := u.registrations.Save(ctx, reg); err != nil {
			return MoveResult{}, errors.Wrap(err, "save registration")
		}
	case stderrors.Is(err, domain.ErrNotFound):
		// No ledger record to carry over.
	default:
		return MoveResult{}, errors.Wrap(err, "find registration")
	}

	return MoveResult{
		Outcome:  succeeded("User successfully moved between roles", event),
		UserName: moved.FullName(),
		FromRole: fromRole.Name,
		ToRole:   toRole.Name,
	}, nil
}
