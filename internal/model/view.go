package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductView is a Product with its category name materialized for readers
type ProductView struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	ImageURL     string          `json:"image_url"`
	Unit         string          `json:"unit"`
	CategoryID   uuid.UUID       `json:"category_id"`
	CategoryName string          `json:"category_name"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToView requires Category to be preloaded for CategoryName to be filled
func (p *Product) ToView() ProductView {
	return ProductView{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Quantity:     p.Quantity,
		ImageURL:     p.ImageURL,
		Unit:         p.Unit,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName(),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func ToProductViews(products []Product) []ProductView {
	views := make([]ProductView, len(products))
	for i := range products {
		views[i] = products[i].ToView()
	}
	return views
}

// TransactionView carries the product attributes as they are now, not as
// they were when the movement was recorded.
type TransactionView struct {
	ID           uuid.UUID       `json:"id"`
	Type         TransactionType `json:"type"`
	Quantity     int             `json:"quantity"`
	ProductID    uuid.UUID       `json:"product_id"`
	CreatedAt    time.Time       `json:"created_at"`
	CreatedBy    string          `json:"created_by"`
	ProductName  string          `json:"product_name"`
	CategoryName string          `json:"category_name"`
	ImageURL     string          `json:"image_url"`
	Price        decimal.Decimal `json:"price"`
	Unit         string          `json:"unit"`
}

func (t *Transaction) ToView() TransactionView {
	v := TransactionView{
		ID:        t.ID,
		Type:      t.Type,
		Quantity:  t.Quantity,
		ProductID: t.ProductID,
		CreatedAt: t.CreatedAt,
		CreatedBy: t.CreatedBy,
	}
	if t.Product != nil {
		v.ProductName = t.Product.Name
		v.CategoryName = t.Product.CategoryName()
		v.ImageURL = t.Product.ImageURL
		v.Price = t.Product.Price
		v.Unit = t.Product.Unit
	}
	return v
}

func ToTransactionViews(txs []Transaction) []TransactionView {
	views := make([]TransactionView, len(txs))
	for i := range txs {
		views[i] = txs[i].ToView()
	}
	return views
}
