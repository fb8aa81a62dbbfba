package core_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"pharmacy-backoffice/internal/core"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testPricing() core.SupplierPricing {
	return core.SupplierPricing{
		SupplierID: "S1", DrugID: "D1",
		ContractPrice: dec("1.00"),
		ListPrice:     dec("1.20"),
		PriceBreaks: []core.PriceBreak{
			{MinQty: 100, Price: dec("0.90")},
			{MinQty: 500, Price: dec("0.80")},
			{MinQty: 2000, Price: dec("0.70")},
		},
	}
}

func TestResolveUnitPrice(t *testing.T) {
	sp := testPricing()
	tests := []struct {
		qty  int
		want string
	}{
		{1, "1.00"},
		{99, "1.00"},
		{100, "0.90"},
		{499, "0.90"},
		{500, "0.80"},
		{1999, "0.80"},
		{2000, "0.70"},
		{100000, "0.70"},
	}
	for _, tt := range tests {
		got, err := core.ResolveUnitPrice(sp, tt.qty)
		if err != nil {
			t.Fatalf("qty %d: %v", tt.qty, err)
		}
		if !got.Equal(dec(tt.want)) {
			t.Errorf("qty %d: got %s, want %s", tt.qty, got, tt.want)
		}
	}
}

func TestResolveUnitPrice_MonotonicallyNonIncreasing(t *testing.T) {
	sp := testPricing()
	prev := decimal.Decimal{}
	for qty := 1; qty <= 3000; qty++ {
		price, err := core.ResolveUnitPrice(sp, qty)
		if err != nil {
			t.Fatalf("qty %d: %v", qty, err)
		}
		if qty > 1 && price.GreaterThan(prev) {
			t.Fatalf("price rose from %s to %s between qty %d and %d", prev, price, qty-1, qty)
		}
		prev = price
	}
}

func TestResolveUnitPrice_RejectsNonPositiveQuantity(t *testing.T) {
	sp := testPricing()
	for _, qty := range []int{0, -5} {
		if _, err := core.ResolveUnitPrice(sp, qty); !errors.Is(err, core.ErrValidation) {
			t.Errorf("qty %d: expected ErrValidation, got %v", qty, err)
		}
	}
}

func linesTotaling(total string) []core.OrderLineItem {
	return []core.OrderLineItem{{
		ID: "l1", DrugID: "D1", Quantity: 1, UnitPrice: dec(total), Total: dec(total),
	}}
}

func TestComputeOrderTotals_ManagerTierShippingScenario(t *testing.T) {
	// Subtotal just under the executive threshold, supplier with no bulk
	// discount and a free-shipping threshold the order does not reach.
	supplier := core.Supplier{
		ID: "S1", ShippingCost: dec("50"), FreeShippingThreshold: dec("10000"),
	}
	totals := core.ComputeOrderTotals(linesTotaling("4999.99"), supplier, dec("0.10"))

	if !totals.BulkDiscount.IsZero() {
		t.Errorf("expected no bulk discount, got %s", totals.BulkDiscount)
	}
	if !totals.TaxAmount.Equal(dec("499.999")) {
		t.Errorf("tax: got %s, want 499.999", totals.TaxAmount)
	}
	if !totals.ShippingCost.Equal(dec("50")) {
		t.Errorf("shipping below threshold: got %s, want 50", totals.ShippingCost)
	}
	if !totals.GrandTotal.Equal(dec("5549.989")) {
		t.Errorf("grand total: got %s, want 5549.989", totals.GrandTotal)
	}

	level, required := core.ApprovalTierFor(dec("4999.99"))
	if level != core.LevelManager || required != 1 {
		t.Errorf("tier for 4999.99: got %s/%d, want manager/1", level, required)
	}
}

func TestComputeOrderTotals_BulkDiscountScenario(t *testing.T) {
	// Subtotal 12500 hits the 10000→15% tier: discount 1875, taxable
	// 10625, tax 1062.50, free shipping, grand total 11687.50.
	supplier := core.Supplier{
		ID:                    "S1",
		ShippingCost:          dec("50"),
		FreeShippingThreshold: dec("1000"),
		BulkDiscounts: []core.BulkDiscountTier{
			{MinQuantity: dec("5000"), DiscountPercent: dec("10")},
			{MinQuantity: dec("10000"), DiscountPercent: dec("15")},
		},
	}
	totals := core.ComputeOrderTotals(linesTotaling("12500"), supplier, dec("0.10"))

	if !totals.BulkDiscount.Equal(dec("1875")) {
		t.Errorf("bulk discount: got %s, want 1875", totals.BulkDiscount)
	}
	if !totals.TaxAmount.Equal(dec("1062.5")) {
		t.Errorf("tax: got %s, want 1062.5", totals.TaxAmount)
	}
	if !totals.ShippingCost.IsZero() {
		t.Errorf("shipping above threshold: got %s, want 0", totals.ShippingCost)
	}
	if !totals.GrandTotal.Equal(dec("11687.5")) {
		t.Errorf("grand total: got %s, want 11687.5", totals.GrandTotal)
	}
}

func TestComputeOrderTotals_Idempotent(t *testing.T) {
	supplier := core.Supplier{
		ID: "S1", ShippingCost: dec("25"), FreeShippingThreshold: dec("500"),
		BulkDiscounts: []core.BulkDiscountTier{
			{MinQuantity: dec("1000"), DiscountPercent: dec("5")},
		},
	}
	lines := []core.OrderLineItem{
		{ID: "l1", Quantity: 100, UnitPrice: dec("4.50"), Total: dec("450")},
		{ID: "l2", Quantity: 200, UnitPrice: dec("3.25"), Total: dec("650")},
	}
	first := core.ComputeOrderTotals(lines, supplier, dec("0.10"))
	second := core.ComputeOrderTotals(lines, supplier, dec("0.10"))

	if !first.Subtotal.Equal(second.Subtotal) ||
		!first.BulkDiscount.Equal(second.BulkDiscount) ||
		!first.TaxAmount.Equal(second.TaxAmount) ||
		!first.ShippingCost.Equal(second.ShippingCost) ||
		!first.GrandTotal.Equal(second.GrandTotal) {
		t.Errorf("totals differ between calls: %+v vs %+v", first, second)
	}
}

func TestComputeOrderTotals_EmptyOrder(t *testing.T) {
	supplier := core.Supplier{ID: "S1", ShippingCost: dec("50"), FreeShippingThreshold: dec("1000")}
	totals := core.ComputeOrderTotals(nil, supplier, dec("0.10"))
	if !totals.Subtotal.IsZero() {
		t.Errorf("empty order subtotal: got %s", totals.Subtotal)
	}
	// An empty order still carries the shipping cost on paper; submission
	// is blocked earlier by the minimum-order and non-empty-lines guards.
	if !totals.GrandTotal.Equal(dec("50")) {
		t.Errorf("empty order grand total: got %s, want 50", totals.GrandTotal)
	}
}

func TestCheckMinimumOrder(t *testing.T) {
	supplier := core.Supplier{ID: "S1", MinimumOrderAmount: dec("250")}
	if err := core.CheckMinimumOrder(dec("249.99"), supplier); !errors.Is(err, core.ErrBelowMinimumOrder) {
		t.Errorf("expected ErrBelowMinimumOrder, got %v", err)
	}
	if err := core.CheckMinimumOrder(dec("250"), supplier); err != nil {
		t.Errorf("at minimum: unexpected error %v", err)
	}
}

func TestComputeInvoiceTotals_TaxableLinesOnly(t *testing.T) {
	lines := []core.InvoiceLine{
		{Description: "Rx item", Total: dec("100"), Taxable: false},
		{Description: "OTC item", Total: dec("200"), Taxable: true},
	}
	totals := core.ComputeInvoiceTotals(lines, decimal.Zero, dec("10"), decimal.Zero, dec("0.10"))

	if !totals.Subtotal.Equal(dec("300")) {
		t.Errorf("subtotal: got %s, want 300", totals.Subtotal)
	}
	if !totals.TaxAmount.Equal(dec("20")) {
		t.Errorf("tax on taxable lines only: got %s, want 20", totals.TaxAmount)
	}
	if !totals.GrandTotal.Equal(dec("330")) {
		t.Errorf("grand total: got %s, want 330", totals.GrandTotal)
	}
}

func TestComputeInvoiceTotals_InsuranceNeverNegative(t *testing.T) {
	lines := []core.InvoiceLine{{Description: "item", Total: dec("120"), Taxable: true}}
	totals := core.ComputeInvoiceTotals(lines, decimal.Zero, decimal.Zero, dec("100000"), dec("0.10"))
	if !totals.GrandTotal.IsZero() {
		t.Errorf("grand total floored at zero: got %s", totals.GrandTotal)
	}
	if totals.GrandTotal.IsNegative() {
		t.Errorf("grand total must never be negative, got %s", totals.GrandTotal)
	}
}
