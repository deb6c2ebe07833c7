package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product quantity is only ever written by the stock ledger.
// A check constraint keeps it non-negative at the store level.
type Product struct {
	BaseModel
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	Quantity    int             `gorm:"not null;default:0;check:chk_products_quantity_floor,quantity >= 0" json:"quantity"`
	ImageURL    string          `gorm:"type:varchar(512)" json:"image_url"`
	Unit        string          `gorm:"type:varchar(20)" json:"unit"`
	CategoryID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	Category    *Category       `gorm:"foreignKey:CategoryID" json:"-"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"association_id"`

	Transactions []Transaction `json:"-"`
}

// StockValue is price × quantity
func (p *Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// CategoryName is empty when the category was not preloaded
func (p *Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}
