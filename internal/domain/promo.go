package domain

import "time"

// PromoCode is a redeemable discount code for paid events.
type PromoCode struct {
	ID              string     `json:"id"`
	Code            string     `json:"code"`
	Description     string     `json:"description,omitempty"`
	DiscountPercent int        `json:"discountPercent"`
	MaxUses         int        `json:"maxUses"`
	Uses            int        `json:"uses"`
	IsActive        bool       `json:"isActive"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	CreatedBy       string     `json:"createdBy,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Expired reports whether the code is past its expiry at the given time.
func (p *PromoCode) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

// Exhausted reports whether the code has no uses remaining.
func (p *PromoCode) Exhausted() bool {
	return p.Uses >= p.MaxUses
}
