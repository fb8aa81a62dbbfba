package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ResolveUnitPrice returns the unit price for ordering qty units under the
// given pricing record: the highest qualifying price break, or the contract
// price when no break qualifies. Given a well-formed break list (ascending
// quantities, non-increasing prices, enforced by SupplierPricing.Validate
// at load time) the result is monotonically non-increasing in qty.
func ResolveUnitPrice(sp SupplierPricing, qty int) (decimal.Decimal, error) {
	if qty <= 0 {
		return decimal.Zero, fmt.Errorf("quantity must be positive, got %d: %w", qty, ErrValidation)
	}
	price := sp.ContractPrice
	for _, pb := range sp.PriceBreaks {
		if pb.MinQty > qty {
			break
		}
		price = pb.Price
	}
	return price, nil
}

// OrderTotals is the financial summary of a purchase order. All figures are
// recomputed from the line items; nothing here is free-typed.
type OrderTotals struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	BulkDiscount decimal.Decimal `json:"bulk_discount"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
}

// ComputeOrderTotals derives the totals for a set of line items against a
// supplier's terms. taxRate is a fraction (0.10 for 10%), supplied by
// configuration. Deterministic and side-effect free: identical inputs yield
// identical totals, and GrandTotal is never negative.
func ComputeOrderTotals(lines []OrderLineItem, supplier Supplier, taxRate decimal.Decimal) OrderTotals {
	subtotal := decimal.Zero
	for _, li := range lines {
		subtotal = subtotal.Add(li.Total)
	}

	// Highest bulk tier whose threshold the subtotal reaches.
	discount := decimal.Zero
	for _, t := range supplier.BulkDiscounts {
		if t.MinQuantity.GreaterThan(subtotal) {
			break
		}
		discount = subtotal.Mul(t.DiscountPercent).Div(hundred)
	}

	taxableBase := subtotal.Sub(discount)
	if taxableBase.IsNegative() {
		taxableBase = decimal.Zero
	}
	tax := taxableBase.Mul(taxRate)

	shipping := supplier.ShippingCost
	if supplier.FreeShippingThreshold.IsPositive() &&
		subtotal.Sub(discount).GreaterThanOrEqual(supplier.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	return OrderTotals{
		Subtotal:     subtotal,
		BulkDiscount: discount,
		TaxAmount:    tax,
		ShippingCost: shipping,
		GrandTotal:   subtotal.Sub(discount).Add(tax).Add(shipping),
	}
}

// CheckMinimumOrder reports ErrBelowMinimumOrder when the subtotal does not
// reach the supplier's minimum. Called at submission, never on line edits.
func CheckMinimumOrder(subtotal decimal.Decimal, supplier Supplier) error {
	if subtotal.LessThan(supplier.MinimumOrderAmount) {
		return fmt.Errorf("subtotal %s below supplier %s minimum %s: %w",
			subtotal.StringFixed(2), supplier.ID, supplier.MinimumOrderAmount.StringFixed(2),
			ErrBelowMinimumOrder)
	}
	return nil
}

// InvoiceLine is one billed line on a customer invoice. Tax applies only to
// lines flagged taxable.
type InvoiceLine struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
	Taxable     bool
}

// InvoiceTotals is the invoice-side financial summary.
type InvoiceTotals struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	ShippingCost      decimal.Decimal `json:"shipping_cost"`
	InsuranceCoverage decimal.Decimal `json:"insurance_coverage"`
	GrandTotal        decimal.Decimal `json:"grand_total"`
}

// ComputeInvoiceTotals is the invoice variant of the totals computation:
// only taxable lines contribute to the taxable base, and the insurance
// coverage amount is subtracted last with the grand total floored at zero.
func ComputeInvoiceTotals(lines []InvoiceLine, discount, shipping, insurance, taxRate decimal.Decimal) InvoiceTotals {
	subtotal := decimal.Zero
	taxable := decimal.Zero
	for _, li := range lines {
		subtotal = subtotal.Add(li.Total)
		if li.Taxable {
			taxable = taxable.Add(li.Total)
		}
	}

	taxableBase := taxable.Sub(discount)
	if taxableBase.IsNegative() {
		taxableBase = decimal.Zero
	}
	tax := taxableBase.Mul(taxRate)

	total := subtotal.Sub(discount).Add(tax).Add(shipping).Sub(insurance)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return InvoiceTotals{
		Subtotal:          subtotal,
		DiscountAmount:    discount,
		TaxAmount:         tax,
		ShippingCost:      shipping,
		InsuranceCoverage: insurance,
		GrandTotal:        total,
	}
}
