package models

import (
	"time"
)

type Event struct {
	ID        string      `json:"id" gorm:"primaryKey;type:text"`
	Title     string      `json:"title" gorm:"type:text;not null"`
	EventType string      `json:"type" gorm:"type:text"`
	Date      time.Time   `json:"date" gorm:"type:timestamp with time zone;not null;index"`
	Location  string      `json:"location" gorm:"type:text"`
	Purpose   string      `json:"purpose" gorm:"type:text"`
	Format    string      `json:"format" gorm:"type:text"`
	CreatedBy string      `json:"createdBy" gorm:"type:text;index"`
	Roles     []EventRole `json:"roles" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE;"`
	CreatedAt time.Time   `json:"createdAt" gorm:"type:timestamp with time zone;not null"`
	UpdatedAt time.Time   `json:"updatedAt" gorm:"type:timestamp with time zone;not null"`
}

type EventRole struct {
	ID              string       `json:"id" gorm:"primaryKey;type:text"`
	EventID         string       `json:"eventId" gorm:"type:text;not null;index"`
	Name            string       `json:"name" gorm:"type:text;not null"`
	Description     string       `json:"description" gorm:"type:text"`
	MaxParticipants int          `json:"maxParticipants" gorm:"not null"`
	Position        int          `json:"position" gorm:"not null;default:0"`
	Signups         []RoleSignup `json:"signups" gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE;"`
}

type RoleSignup struct {
	ID        int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	RoleID    string `json:"roleId" gorm:"type:text;not null;index:role_signup_role_user,unique"`
	UserID    string `json:"userId" gorm:"type:text;not null;index:role_signup_role_user,unique"`
	Username  string `json:"username" gorm:"type:text"`
	FirstName string `json:"firstName" gorm:"type:text"`
	LastName  string `json:"lastName" gorm:"type:text"`
	Email     string `json:"email" gorm:"type:text"`
	Avatar    string `json:"avatar" gorm:"type:text"`
	Position  int    `json:"position" gorm:"not null;default:0"`
}
