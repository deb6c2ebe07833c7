package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TxIn  TransactionType = "IN"
	TxOut TransactionType = "OUT"
)

// Sign is +1 for IN and -1 for OUT
func (t TransactionType) Sign() int {
	if t == TxOut {
		return -1
	}
	return 1
}

// Transaction is one immutable ledger line with no UpdatedAt or
// DeletedAt: rows are inserted once and never touched again.
type Transaction struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	Type      TransactionType `gorm:"type:varchar(10);not null" json:"type"`
	Quantity  int             `gorm:"not null;check:chk_transactions_quantity_positive,quantity > 0" json:"quantity"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"-"`
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"association_id"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`
	CreatedBy string          `gorm:"type:varchar(255)" json:"created_by"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

// Delta is the signed quantity this line contributes to its product
func (t *Transaction) Delta() int {
	return t.Type.Sign() * t.Quantity
}
