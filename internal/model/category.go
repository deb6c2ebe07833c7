package model

import "github.com/google/uuid"

type Category struct {
	BaseModel
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index" json:"association_id"`

	Products []Product `json:"-"`
}
