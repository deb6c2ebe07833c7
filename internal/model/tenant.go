package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant is an association. Every other row is scoped by its ID.
// Created on first authenticated contact, never updated or deleted.
type Tenant struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}

func (Tenant) TableName() string {
	return "associations"
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
