package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/domain"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/infra/database/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(toModelUser(user)).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var m models.User
	err := r.db.WithContext(ctx).Take(&m, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return nil, err
	}
	return toDomainUser(&m), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m models.User
	err := r.db.WithContext(ctx).Take(&m, "email = ?", email).Error
	if err == gorm.ErrRecordNotFound {
		return nil, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return nil, err
	}
	return toDomainUser(&m), nil
}

func toModelUser(u *domain.User) *models.User {
	return &models.User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Avatar:       u.Avatar,
		Role:         u.Role,
	}
}

func toDomainUser(m *models.User) *domain.User {
	return &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Avatar:       m.Avatar,
		Role:         m.Role,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
