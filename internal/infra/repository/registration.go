package repository

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/domain"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/infra/database/models"
)

// RegistrationRepository persists ledger records. Snapshots and the audit
// trail are stored as JSON text columns.
type RegistrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) FindByTuple(ctx context.Context, userID, eventID, roleID string) (*domain.Registration, error) {
	var m models.Registration
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ? AND role_id = ?", userID, eventID, roleID).
		Take(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, domain.NotFoundError{Resource: "registration"}
	}
	if err != nil {
		return nil, err
	}
	return toDomainRegistration(&m)
}

func (r *RegistrationRepository) FindActive(ctx context.Context, userID, eventID, roleID string) (*domain.Registration, error) {
	var m models.Registration
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ? AND role_id = ? AND status = ?",
			userID, eventID, roleID, domain.RegistrationStatusActive).
		Take(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, domain.NotFoundError{Resource: "registration"}
	}
	if err != nil {
		return nil, err
	}
	return toDomainRegistration(&m)
}

func (r *RegistrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	m, err := toModelRegistration(reg)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *RegistrationRepository) Save(ctx context.Context, reg *domain.Registration) error {
	m, err := toModelRegistration(reg)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *RegistrationRepository) DeleteActive(ctx context.Context, userID, eventID, roleID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ? AND role_id = ? AND status = ?",
			userID, eventID, roleID, domain.RegistrationStatusActive).
		Delete(&models.Registration{}).Error
}

func (r *RegistrationRepository) DeleteByID(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Registration{}, "id = ?", id).Error
}

func toModelRegistration(reg *domain.Registration) (*models.Registration, error) {
	eventSnapshot, err := json.Marshal(reg.EventSnapshot)
	if err != nil {
		return nil, err
	}
	userSnapshot, err := json.Marshal(reg.UserSnapshot)
	if err != nil {
		return nil, err
	}
	audit, err := json.Marshal(reg.AuditTrail)
	if err != nil {
		return nil, err
	}
	return &models.Registration{
		ID:                  reg.ID,
		UserID:              reg.UserID,
		EventID:             reg.EventID,
		RoleID:              reg.RoleID,
		Status:              reg.Status,
		EventSnapshot:       string(eventSnapshot),
		UserSnapshot:        string(userSnapshot),
		Notes:               reg.Notes,
		SpecialRequirements: reg.SpecialRequirements,
		RegisteredBy:        reg.RegisteredBy,
		AuditTrail:          string(audit),
	}, nil
}

func toDomainRegistration(m *models.Registration) (*domain.Registration, error) {
	reg := &domain.Registration{
		ID:                  m.ID,
		UserID:              m.UserID,
		EventID:             m.EventID,
		RoleID:              m.RoleID,
		Status:              m.Status,
		Notes:               m.Notes,
		SpecialRequirements: m.SpecialRequirements,
		RegisteredBy:        m.RegisteredBy,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	if m.EventSnapshot != "" {
		if err := json.Unmarshal([]byte(m.EventSnapshot), &reg.EventSnapshot); err != nil {
			return nil, err
		}
	}
	if m.UserSnapshot != "" {
		if err := json.Unmarshal([]byte(m.UserSnapshot), &reg.UserSnapshot); err != nil {
			return nil, err
		}
	}
	if m.AuditTrail != "" {
		if err := json.Unmarshal([]byte(m.AuditTrail), &reg.AuditTrail); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
