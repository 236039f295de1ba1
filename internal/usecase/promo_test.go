package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/domain"
)

type memPromoRepo struct {
	promos map[string]*domain.PromoCode
	now    func() time.Time
}

func newMemPromoRepo() *memPromoRepo {
	return &memPromoRepo{
		promos: make(map[string]*domain.PromoCode),
		now:    time.Now,
	}
}

func (m *memPromoRepo) Create(ctx context.Context, promo *domain.PromoCode) error {
	m.promos[promo.Code] = promo
	return nil
}

func (m *memPromoRepo) FindByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	if p, ok := m.promos[code]; ok {
		out := *p
		return &out, nil
	}
	return nil, domain.NotFoundError{Resource: "promo code"}
}

func (m *memPromoRepo) Redeem(ctx context.Context, code string) (*domain.PromoCode, error) {
	p, ok := m.promos[code]
	if !ok || !p.IsActive || p.Exhausted() || p.Expired(m.now()) {
		return nil, domain.NotFoundError{Resource: "promo code"}
	}
	p.Uses++
	out := *p
	return &out, nil
}

func TestPromoCreateValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   CreatePromoInput
		wantErr string
	}{
		{
			name:  "valid",
			input: CreatePromoInput{Code: "spring24", DiscountPercent: 20, MaxUses: 10},
		},
		{
			name:    "missing code",
			input:   CreatePromoInput{DiscountPercent: 20, MaxUses: 10},
			wantErr: "promo code is required",
		},
		{
			name:    "bad discount",
			input:   CreatePromoInput{Code: "X", DiscountPercent: 120, MaxUses: 10},
			wantErr: "discount must be between 1 and 100 percent",
		},
		{
			name:    "bad max uses",
			input:   CreatePromoInput{Code: "X", DiscountPercent: 20},
			wantErr: "max uses must be a positive integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewPromoUsecase(newMemPromoRepo())
			promo, err := uc.Create(ctx, tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "SPRING24", promo.Code, "codes are normalized to upper case")
			assert.True(t, promo.IsActive)
		})
	}
}

func TestPromoValidate(t *testing.T) {
	ctx := context.Background()
	repo := newMemPromoRepo()
	uc := NewPromoUsecase(repo)

	expired := time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, &domain.PromoCode{Code: "EXPIRED", DiscountPercent: 10, MaxUses: 5, IsActive: true, ExpiresAt: &expired}))
	require.NoError(t, repo.Create(ctx, &domain.PromoCode{Code: "USEDUP", DiscountPercent: 10, MaxUses: 2, Uses: 2, IsActive: true}))
	require.NoError(t, repo.Create(ctx, &domain.PromoCode{Code: "PAUSED", DiscountPercent: 10, MaxUses: 5, IsActive: false}))
	require.NoError(t, repo.Create(ctx, &domain.PromoCode{Code: "GOOD", DiscountPercent: 10, MaxUses: 5, IsActive: true}))

	_, err := uc.Validate(ctx, "missing")
	assert.EqualError(t, err, "promo code not found")

	_, err = uc.Validate(ctx, "expired")
	assert.EqualError(t, err, "promo code has expired")

	_, err = uc.Validate(ctx, "usedup")
	assert.EqualError(t, err, "promo code has no uses remaining")

	_, err = uc.Validate(ctx, "paused")
	assert.EqualError(t, err, "promo code is not active")

	promo, err := uc.Validate(ctx, " good ")
	require.NoError(t, err)
	assert.Equal(t, "GOOD", promo.Code)
}

func TestPromoRedeem(t *testing.T) {
	ctx := context.Background()
	repo := newMemPromoRepo()
	uc := NewPromoUsecase(repo)

	require.NoError(t, repo.Create(ctx, &domain.PromoCode{Code: "ONCE", DiscountPercent: 10, MaxUses: 1, IsActive: true}))

	promo, err := uc.Redeem(ctx, "once")
	require.NoError(t, err)
	assert.Equal(t, 1, promo.Uses)

	_, err = uc.Redeem(ctx, "once")
	require.Error(t, err)
	assert.EqualError(t, err, "promo code has no uses remaining")
}
