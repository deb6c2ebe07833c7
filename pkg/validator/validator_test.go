package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type priced struct {
	ID    uuid.UUID        `validate:"uuid_required"`
	Price *decimal.Decimal `validate:"required,gte=0"`
	Qty   int              `validate:"gt=0"`
}

func TestValidateStruct(t *testing.T) {
	zero := decimal.Zero
	positive := decimal.RequireFromString("9.99")
	negative := decimal.RequireFromString("-0.01")

	testCases := []struct {
		name    string
		input   priced
		wantTag string
	}{
		{"valid", priced{ID: uuid.New(), Price: &positive, Qty: 1}, ""},
		{"zero price is allowed", priced{ID: uuid.New(), Price: &zero, Qty: 1}, ""},
		{"missing price", priced{ID: uuid.New(), Qty: 1}, "required"},
		{"negative price", priced{ID: uuid.New(), Price: &negative, Qty: 1}, "gte"},
		{"nil uuid", priced{Price: &positive, Qty: 1}, "uuid_required"},
		{"zero quantity", priced{ID: uuid.New(), Price: &positive}, "gt"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			errs := ValidateStruct(&tc.input)
			if tc.wantTag == "" {
				if len(errs) != 0 {
					t.Fatalf("Expected no errors, got %s", errs[0].Error())
				}
				return
			}
			if len(errs) != 1 {
				t.Fatalf("Expected exactly one error, got %d", len(errs))
			}
			if errs[0].Tag != tc.wantTag {
				t.Errorf("Expected tag %q, got %q", tc.wantTag, errs[0].Tag)
			}
		})
	}
}
