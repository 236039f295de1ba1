package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/domain"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/infra/database/models"
)

// EventRepository persists the event roster aggregate. Save writes in a
// single transaction, so a move that touches two roles is never observable
// half-applied.
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	var m models.Event
	err := r.db.WithContext(ctx).
		Preload("Roles", func(db *gorm.DB) *gorm.DB {
			return db.Order("event_roles.position ASC")
		}).
		Preload("Roles.Signups", func(db *gorm.DB) *gorm.DB {
			return db.Order("role_signups.position ASC")
		}).
		Take(&m, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, domain.NotFoundError{Resource: "event"}
	}
	if err != nil {
		return nil, err
	}
	return toDomainEvent(&m), nil
}

func (r *EventRepository) Save(ctx context.Context, event *domain.Event, roleIDs ...string) error {
	touched := make(map[string]bool, len(roleIDs))
	for _, id := range roleIDs {
		touched[id] = true
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.Event{
			ID:        event.ID,
			Title:     event.Title,
			EventType: event.EventType,
			Date:      event.Date,
			Location:  event.Location,
			Purpose:   event.Purpose,
			Format:    event.Format,
			CreatedBy: event.CreatedBy,
		}
		if err := tx.Omit(clause.Associations).Save(&row).Error; err != nil {
			return err
		}

		keptIDs := make([]string, 0, len(event.Roles))
		for i := range event.Roles {
			role := &event.Roles[i]
			keptIDs = append(keptIDs, role.ID)

			// A scoped save leaves every unnamed role's rows alone; the
			// caller's aggregate copy may be stale for those roles.
			if len(touched) > 0 && !touched[role.ID] {
				continue
			}

			roleRow := models.EventRole{
				ID:              role.ID,
				EventID:         event.ID,
				Name:            role.Name,
				Description:     role.Description,
				MaxParticipants: role.MaxParticipants,
				Position:        i,
			}
			if err := tx.Omit(clause.Associations).Save(&roleRow).Error; err != nil {
				return err
			}

			// Replace the role's roster wholesale; the signup rows carry no
			// identity of their own beyond (role, user).
			if err := tx.Where("role_id = ?", role.ID).Delete(&models.RoleSignup{}).Error; err != nil {
				return err
			}
			for j, s := range role.CurrentSignups {
				signupRow := models.RoleSignup{
					RoleID:    role.ID,
					UserID:    s.UserID,
					Username:  s.Username,
					FirstName: s.FirstName,
					LastName:  s.LastName,
					Email:     s.Email,
					Avatar:    s.Avatar,
					Position:  j,
				}
				if err := tx.Create(&signupRow).Error; err != nil {
					return err
				}
			}
		}

		// Only a full save removes roles dropped from the aggregate; a
		// scoped save never knows the complete role set.
		if len(touched) == 0 && len(keptIDs) > 0 {
			if err := tx.Where("event_id = ? AND id NOT IN ?", event.ID, keptIDs).
				Delete(&models.EventRole{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *EventRepository) List(ctx context.Context) ([]domain.Event, error) {
	var rows []models.Event
	err := r.db.WithContext(ctx).
		Preload("Roles", func(db *gorm.DB) *gorm.DB {
			return db.Order("event_roles.position ASC")
		}).
		Preload("Roles.Signups", func(db *gorm.DB) *gorm.DB {
			return db.Order("role_signups.position ASC")
		}).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Event, 0, len(rows))
	for i := range rows {
		out = append(out, *toDomainEvent(&rows[i]))
	}
	return out, nil
}

func toDomainEvent(m *models.Event) *domain.Event {
	roles := make([]domain.Role, 0, len(m.Roles))
	for _, r := range m.Roles {
		signups := make([]domain.Signup, 0, len(r.Signups))
		for _, s := range r.Signups {
			signups = append(signups, domain.Signup{
				UserID:    s.UserID,
				Username:  s.Username,
				FirstName: s.FirstName,
				LastName:  s.LastName,
				Email:     s.Email,
				Avatar:    s.Avatar,
			})
		}
		roles = append(roles, domain.Role{
			ID:              r.ID,
			Name:            r.Name,
			Description:     r.Description,
			MaxParticipants: r.MaxParticipants,
			CurrentSignups:  signups,
		})
	}
	return &domain.Event{
		ID:        m.ID,
		Title:     m.Title,
		EventType: m.EventType,
		Date:      m.Date,
		Location:  m.Location,
		Purpose:   m.Purpose,
		Format:    m.Format,
		CreatedBy: m.CreatedBy,
		Roles:     roles,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
