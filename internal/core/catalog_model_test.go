package core_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pharmacy-backoffice/internal/core"
)

func validDrug() core.Drug {
	return core.Drug{
		ID: "AMOX-500", Name: "Amoxicillin 500mg",
		CurrentStock: 150, MinStockLevel: 100, MaxStockLevel: 1000, ReorderLevel: 200,
		UnitPrice:    decimal.NewFromFloat(0.35),
		SellingPrice: decimal.NewFromFloat(0.80),
	}
}

func TestDrug_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*core.Drug)
		expectErr bool
	}{
		{"valid", func(d *core.Drug) {}, false},
		{"missing id", func(d *core.Drug) { d.ID = "" }, true},
		{"negative stock", func(d *core.Drug) { d.CurrentStock = -1 }, true},
		{"min above max", func(d *core.Drug) { d.MinStockLevel = 2000 }, true},
		{"negative price", func(d *core.Drug) { d.UnitPrice = decimal.NewFromInt(-1) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDrug()
			tt.mutate(&d)
			err := d.Validate()
			if tt.expectErr && !errors.Is(err, core.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDrug_StockStatus(t *testing.T) {
	tests := []struct {
		name    string
		current int
		want    core.StockStatus
	}{
		{"zero stock", 0, core.StockOut},
		{"at minimum", 100, core.StockLow},
		{"below minimum", 50, core.StockLow},
		{"normal", 500, core.StockNormal},
		{"at maximum", 1000, core.StockOver},
		{"above maximum", 1500, core.StockOver},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDrug()
			d.CurrentStock = tt.current
			if got := d.StockStatus(); got != tt.want {
				t.Errorf("stock %d: got %s, want %s", tt.current, got, tt.want)
			}
		})
	}
}

func TestBatch_Validate(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	base := core.Batch{
		ID: "b1", DrugID: "AMOX-500", BatchNumber: "AMX01",
		ManufacturingDate: now.AddDate(-1, 0, 0), ExpiryDate: now.AddDate(1, 0, 0),
		Quantity: 500, RemainingQuantity: 200, Status: core.BatchActive,
	}

	if err := base.Validate(); err != nil {
		t.Fatalf("valid batch rejected: %v", err)
	}

	inverted := base
	inverted.ManufacturingDate, inverted.ExpiryDate = inverted.ExpiryDate, inverted.ManufacturingDate
	if err := inverted.Validate(); !errors.Is(err, core.ErrValidation) {
		t.Errorf("inverted dates: expected ErrValidation, got %v", err)
	}

	over := base
	over.RemainingQuantity = 501
	if err := over.Validate(); !errors.Is(err, core.ErrValidation) {
		t.Errorf("remaining above quantity: expected ErrValidation, got %v", err)
	}

	unknown := base
	unknown.Status = "melted"
	if err := unknown.Validate(); !errors.Is(err, core.ErrValidation) {
		t.Errorf("unknown status: expected ErrValidation, got %v", err)
	}
}

func TestBatch_EffectiveStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := core.Batch{Status: core.BatchActive, ExpiryDate: now.Add(24 * time.Hour)}

	if got := b.EffectiveStatus(now); got != core.BatchActive {
		t.Errorf("before expiry: got %s, want active", got)
	}
	if got := b.EffectiveStatus(now.Add(24 * time.Hour)); got != core.BatchExpired {
		t.Errorf("at expiry instant: got %s, want expired", got)
	}

	// Stored terminal statuses are never overridden by the clock.
	recalled := core.Batch{Status: core.BatchRecalled, ExpiryDate: now.Add(24 * time.Hour)}
	if got := recalled.EffectiveStatus(now.AddDate(1, 0, 0)); got != core.BatchRecalled {
		t.Errorf("recalled batch: got %s, want recalled", got)
	}
}

func TestBatch_DaysUntilExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		expiry time.Time
		want   int
	}{
		{"exactly 30 days", now.Add(30 * 24 * time.Hour), 30},
		{"twelve hours rounds up", now.Add(12 * time.Hour), 1},
		{"expired now", now, 0},
		{"expired yesterday", now.Add(-24 * time.Hour), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := core.Batch{ExpiryDate: tt.expiry}
			if got := b.DaysUntilExpiry(now); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSupplierPricing_Validate(t *testing.T) {
	sp := core.SupplierPricing{
		SupplierID: "S1", DrugID: "D1",
		ContractPrice: decimal.NewFromFloat(1.00),
		ListPrice:     decimal.NewFromFloat(1.20),
		PriceBreaks: []core.PriceBreak{
			{MinQty: 100, Price: decimal.NewFromFloat(0.90)},
			{MinQty: 500, Price: decimal.NewFromFloat(0.80)},
		},
	}
	if err := sp.Validate(); err != nil {
		t.Fatalf("valid pricing rejected: %v", err)
	}

	unsorted := sp
	unsorted.PriceBreaks = []core.PriceBreak{
		{MinQty: 500, Price: decimal.NewFromFloat(0.80)},
		{MinQty: 100, Price: decimal.NewFromFloat(0.90)},
	}
	if err := unsorted.Validate(); !errors.Is(err, core.ErrValidation) {
		t.Errorf("unsorted breaks: expected ErrValidation, got %v", err)
	}

	rising := sp
	rising.PriceBreaks = []core.PriceBreak{
		{MinQty: 100, Price: decimal.NewFromFloat(0.80)},
		{MinQty: 500, Price: decimal.NewFromFloat(0.90)},
	}
	if err := rising.Validate(); !errors.Is(err, core.ErrValidation) {
		t.Errorf("rising break prices: expected ErrValidation, got %v", err)
	}
}

func TestSupplier_Validate_BulkTierOrdering(t *testing.T) {
	s := core.Supplier{
		ID: "S1", Name: "MedCo",
		BulkDiscounts: []core.BulkDiscountTier{
			{MinQuantity: decimal.NewFromInt(10000), DiscountPercent: decimal.NewFromInt(15)},
			{MinQuantity: decimal.NewFromInt(5000), DiscountPercent: decimal.NewFromInt(10)},
		},
	}
	if err := s.Validate(); !errors.Is(err, core.ErrValidation) {
		t.Errorf("descending bulk tiers: expected ErrValidation, got %v", err)
	}
}
