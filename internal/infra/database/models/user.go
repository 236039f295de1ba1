package models

import (
	"time"
)

type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:text"`
	Username     string    `json:"username" gorm:"type:text;not null;index:user_username,unique"`
	Email        string    `json:"email" gorm:"type:text;not null;index:user_email,unique"`
	PasswordHash string    `json:"-" gorm:"type:text;not null"`
	FirstName    string    `json:"firstName" gorm:"type:text"`
	LastName     string    `json:"lastName" gorm:"type:text"`
	Avatar       string    `json:"avatar" gorm:"type:text"`
	Role         string    `json:"role" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"createdAt" gorm:"type:timestamp with time zone;not null"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"type:timestamp with time zone;not null"`
}

type PromoCode struct {
	ID              string     `json:"id" gorm:"primaryKey;type:text"`
	Code            string     `json:"code" gorm:"type:text;not null;index:promo_code,unique"`
	Description     string     `json:"description" gorm:"type:text"`
	DiscountPercent int        `json:"discountPercent" gorm:"not null"`
	MaxUses         int        `json:"maxUses" gorm:"not null"`
	Uses            int        `json:"uses" gorm:"not null;default:0"`
	IsActive        bool       `json:"isActive" gorm:"not null;default:true"`
	ExpiresAt       *time.Time `json:"expiresAt" gorm:"type:timestamp with time zone"`
	CreatedBy       string     `json:"createdBy" gorm:"type:text"`
	CreatedAt       time.Time  `json:"createdAt" gorm:"type:timestamp with time zone;not null"`
	UpdatedAt       time.Time  `json:"updatedAt" gorm:"type:timestamp with time zone;not null"`
}
