package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock level thresholds. Quantities strictly between LowStockMax and
// InStockMin belong to no bucket.
const (
	LowStockMax = 2
	InStockMin  = 6
)

type StockLevel string

const (
	LevelOut     StockLevel = "out_of_stock"
	LevelLow     StockLevel = "low_stock"
	LevelIn      StockLevel = "in_stock"
	LevelUnbound StockLevel = ""
)

// LevelOf buckets a quantity
func LevelOf(quantity int) StockLevel {
	switch {
	case quantity == 0:
		return LevelOut
	case quantity > 0 && quantity <= LowStockMax:
		return LevelLow
	case quantity >= InStockMin:
		return LevelIn
	default:
		return LevelUnbound
	}
}

type OverviewStats struct {
	TotalProducts     int64           `json:"total_products"`
	TotalCategories   int64           `json:"total_categories"`
	TotalTransactions int64           `json:"total_transactions"`
	StockValue        decimal.Decimal `json:"stock_value"`
}

// CategoryCount is one slice of the category distribution chart
type CategoryCount struct {
	Name         string `json:"name"`
	ProductCount int    `json:"value"`
}

type StockSummary struct {
	InStockCount     int           `json:"in_stock_count"`
	LowStockCount    int           `json:"low_stock_count"`
	OutOfStockCount  int           `json:"out_of_stock_count"`
	CriticalProducts []ProductView `json:"critical_products"`
}

// StockMovementData for chart data
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// InvariantViolation reports a product whose stored quantity disagrees
// with the sum of its ledger lines.
type InvariantViolation struct {
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	StoredQuantity int       `json:"stored_quantity"`
	LedgerQuantity int       `json:"ledger_quantity"`
}
