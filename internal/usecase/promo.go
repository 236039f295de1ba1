package usecase

import (
	"context"
	"strings"
	"time"

	stderrors "errors"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/domain"
)

// PromoUsecase covers promo code management and redemption. Successful
// validations are cached briefly; redemption always goes to storage.
type PromoUsecase struct {
	promos PromoRepository
	cache  *gocache.Cache
	now    func() time.Time
}

func NewPromoUsecase(promos PromoRepository) *PromoUsecase {
	return &PromoUsecase{
		promos: promos,
		cache:  gocache.New(time.Minute, 5*time.Minute),
		now:    time.Now,
	}
}

// CreatePromoInput is the validated input for declaring a promo code.
type CreatePromoInput struct {
	Code            string     `json:"code"`
	Description     string     `json:"description"`
	DiscountPercent int        `json:"discountPercent"`
	MaxUses         int        `json:"maxUses"`
	ExpiresAt       *time.Time `json:"expiresAt"`
	CreatedBy       string     `json:"-"`
}

// Create declares a new promo code.
func (u *PromoUsecase) Create(ctx context.Context, input CreatePromoInput) (*domain.PromoCode, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, domain.ValidationError{Message: "promo code is required"}
	}
	if input.DiscountPercent <= 0 || input.DiscountPercent > 100 {
		return nil, domain.ValidationError{Message: "discount must be between 1 and 100 percent"}
	}
	if input.MaxUses <= 0 {
		return nil, domain.ValidationError{Message: "max uses must be a positive integer"}
	}

	promo := &domain.PromoCode{
		ID:              uuid.NewString(),
		Code:            code,
		Description:     input.Description,
		DiscountPercent: input.DiscountPercent,
		MaxUses:         input.MaxUses,
		IsActive:        true,
		ExpiresAt:       input.ExpiresAt,
		CreatedBy:       input.CreatedBy,
	}
	if err := u.promos.Create(ctx, promo); err != nil {
		return nil, err
	}
	return promo, nil
}

// Validate checks that a code is currently redeemable without consuming a
// use.
func (u *PromoUsecase) Validate(ctx context.Context, code string) (*domain.PromoCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	if cached, ok := u.cache.Get(code); ok {
		return cached.(*domain.PromoCode), nil
	}

	promo, err := u.promos.FindByCode(ctx, code)
	if stderrors.Is(err, domain.ErrNotFound) {
		return nil, domain.ValidationError{Message: "promo code not found"}
	}
	if err != nil {
		return nil, err
	}
	if !promo.IsActive {
		return nil, domain.ValidationError{Message: "promo code is not active"}
	}
	if promo.Expired(u.now()) {
		return nil, domain.ValidationError{Message: "promo code has expired"}
	}
	if promo.Exhausted() {
		return nil, domain.ValidationError{Message: "promo code has no uses remaining"}
	}

	u.cache.SetDefault(code, promo)
	return promo, nil
}

// Redeem atomically consumes one use of a code.
func (u *PromoUsecase) Redeem(ctx context.Context, code string) (*domain.PromoCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	promo, err := u.promos.Redeem(ctx, code)
	if stderrors.Is(err, domain.ErrNotFound) {
		u.cache.Delete(code)
		// No redeemable row matched; validate to surface the precise reason.
		if _, verr := u.Validate(ctx, code); verr != nil {
			return nil, verr
		}
		return nil, domain.ValidationError{Message: "promo code could not be redeemed"}
	}
	if err != nil {
		return nil, err
	}

	u.cache.Delete(code)
	return promo, nil
}
