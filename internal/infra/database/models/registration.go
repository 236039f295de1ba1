package models

import (
	"time"
)

type Registration struct {
	ID                  string    `json:"id" gorm:"primaryKey;type:text"`
	UserID              string    `json:"userId" gorm:"type:text;not null;index:registration_tuple"`
	EventID             string    `json:"eventId" gorm:"type:text;not null;index:registration_tuple"`
	RoleID              string    `json:"roleId" gorm:"type:text;not null;index:registration_tuple"`
	Status              string    `json:"status" gorm:"type:text;not null;index"`
	EventSnapshot       string    `json:"eventSnapshot" gorm:"type:text"`
	UserSnapshot        string    `json:"userSnapshot" gorm:"type:text"`
	Notes               string    `json:"notes" gorm:"type:text"`
	SpecialRequirements string    `json:"specialRequirements" gorm:"type:text"`
	RegisteredBy        string    `json:"registeredBy" gorm:"type:text"`
	AuditTrail          string    `json:"auditTrail" gorm:"type:text"`
	CreatedAt           time.Time `json:"createdAt" gorm:"type:timestamp with time zone;not null"`
	UpdatedAt           time.Time `json:"updatedAt" gorm:"type:timestamp with time zone;not null"`
}
