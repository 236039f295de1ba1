package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/domain"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/infra/database/models"
)

type PromoRepository struct {
	db *gorm.DB
}

func NewPromoRepository(db *gorm.DB) *PromoRepository {
	return &PromoRepository{db: db}
}

func (r *PromoRepository) Create(ctx context.Context, promo *domain.PromoCode) error {
	return r.db.WithContext(ctx).Create(toModelPromo(promo)).Error
}

func (r *PromoRepository) FindByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	var m models.PromoCode
	err := r.db.WithContext(ctx).Take(&m, "code = ?", code).Error
	if err == gorm.ErrRecordNotFound {
		return nil, domain.NotFoundError{Resource: "promo code"}
	}
	if err != nil {
		return nil, err
	}
	return toDomainPromo(&m), nil
}

// Redeem consumes one use with a guarded update, so concurrent redemptions
// of the last use cannot both succeed.
func (r *PromoRepository) Redeem(ctx context.Context, code string) (*domain.PromoCode, error) {
	var redeemed *domain.PromoCode
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PromoCode{}).
			Where("code = ? AND is_active AND uses < max_uses AND (expires_at IS NULL OR expires_at > now())", code).
			UpdateColumn("uses", gorm.Expr("uses + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFoundError{Resource: "redeemable promo code"}
		}

		var m models.PromoCode
		if err := tx.Take(&m, "code = ?", code).Error; err != nil {
			return err
		}
		redeemed = toDomainPromo(&m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return redeemed, nil
}

func toModelPromo(p *domain.PromoCode) *models.PromoCode {
	return &models.PromoCode{
		ID:              p.ID,
		Code:            p.Code,
		Description:     p.Description,
		DiscountPercent: p.DiscountPercent,
		MaxUses:         p.MaxUses,
		Uses:            p.Uses,
		IsActive:        p.IsActive,
		ExpiresAt:       p.ExpiresAt,
		CreatedBy:       p.CreatedBy,
	}
}

func toDomainPromo(m *models.PromoCode) *domain.PromoCode {
	return &domain.PromoCode{
		ID:              m.ID,
		Code:            m.Code,
		Description:     m.Description,
		DiscountPercent: m.DiscountPercent,
		MaxUses:         m.MaxUses,
		Uses:            m.Uses,
		IsActive:        m.IsActive,
		ExpiresAt:       m.ExpiresAt,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
