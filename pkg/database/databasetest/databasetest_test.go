package databasetest

import (
	"testing"

	"go-asso-stock/internal/model"
)

func TestNew_IsolatedAndMigrated(t *testing.T) {
	first := New(t)
	second := New(t)

	if err := first.Create(&model.Tenant{Email: "a@example.org", Name: "A"}).Error; err != nil {
		t.Fatalf("Expected migrated tenants table, got %v", err)
	}

	var count int64
	if err := second.Model(&model.Tenant{}).Count(&count).Error; err != nil {
		t.Fatalf("count tenants: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected a fresh database, got %d tenants", count)
	}

	sqlDB, err := first.DB()
	if err != nil {
		t.Fatalf("get handle: %v", err)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("Expected a single connection, got %d", got)
	}
}
