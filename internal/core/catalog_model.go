package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BatchStatus is the stored lifecycle status of a batch. Expiry is derived
// from the clock on read, never stored as a one-way flag; see EffectiveStatus.
type BatchStatus string

const (
	BatchActive     BatchStatus = "active"
	BatchExpired    BatchStatus = "expired"
	BatchRecalled   BatchStatus = "recalled"
	BatchQuarantine BatchStatus = "quarantine"
	BatchDisposed   BatchStatus = "disposed"
)

// StockStatus classifies a drug's current stock against its configured levels.
// Overstock is informational only and never produces an alert.
type StockStatus string

const (
	StockOut    StockStatus = "out_of_stock"
	StockLow    StockStatus = "low"
	StockNormal StockStatus = "normal"
	StockOver   StockStatus = "overstock"
)

// Drug is a catalog entry. Stock counts are whole units; prices are per unit.
type Drug struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	GenericName           string          `json:"generic_name,omitempty"`
	Category              string          `json:"category,omitempty"`
	CurrentStock          int             `json:"current_stock"`
	MinStockLevel         int             `json:"min_stock_level"`
	MaxStockLevel         int             `json:"max_stock_level"`
	ReorderLevel          int             `json:"reorder_level"`
	UnitPrice             decimal.Decimal `json:"unit_price"`
	SellingPrice          decimal.Decimal `json:"selling_price"`
	ControlledSubstance   bool            `json:"controlled_substance"`
	RefrigerationRequired bool            `json:"refrigeration_required"`
	PrescriptionRequired  bool            `json:"prescription_required"`
}

// Validate enforces the catalog invariants at construction time so that the
// alert generator and pricing engine never have to re-check them.
func (d Drug) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("drug id is required: %w", ErrValidation)
	}
	if d.CurrentStock < 0 || d.MinStockLevel < 0 || d.MaxStockLevel < 0 || d.ReorderLevel < 0 {
		return fmt.Errorf("drug %s: stock levels must be non-negative: %w", d.ID, ErrValidation)
	}
	if d.MinStockLevel > d.MaxStockLevel {
		return fmt.Errorf("drug %s: min stock level %d exceeds max stock level %d: %w",
			d.ID, d.MinStockLevel, d.MaxStockLevel, ErrValidation)
	}
	if d.UnitPrice.IsNegative() || d.SellingPrice.IsNegative() {
		return fmt.Errorf("drug %s: prices must be non-negative: %w", d.ID, ErrValidation)
	}
	return nil
}

// StockStatus classifies the drug's current stock level.
func (d Drug) StockStatus() StockStatus {
	switch {
	case d.CurrentStock == 0:
		return StockOut
	case d.CurrentStock <= d.MinStockLevel:
		return StockLow
	case d.MaxStockLevel > 0 && d.CurrentStock >= d.MaxStockLevel:
		return StockOver
	default:
		return StockNormal
	}
}

// Batch is a received lot of a drug with its own expiry window and remaining
// quantity. BatchNumber is unique per drug.
type Batch struct {
	ID                string
	DrugID            string
	BatchNumber       string
	ManufacturingDate time.Time
	ExpiryDate        time.Time
	Quantity          int
	RemainingQuantity int
	Status            BatchStatus
}

// Validate enforces batch invariants: date ordering, quantity bounds, and a
// known stored status.
func (b Batch) Validate() error {
	if b.DrugID == "" || b.BatchNumber == "" {
		return fmt.Errorf("batch requires drug id and batch number: %w", ErrValidation)
	}
	if !b.ManufacturingDate.Before(b.ExpiryDate) {
		return fmt.Errorf("batch %s: manufacturing date must precede expiry date: %w",
			b.BatchNumber, ErrValidation)
	}
	if b.Quantity < 0 || b.RemainingQuantity < 0 || b.RemainingQuantity > b.Quantity {
		return fmt.Errorf("batch %s: remaining quantity %d outside [0, %d]: %w",
			b.BatchNumber, b.RemainingQuantity, b.Quantity, ErrValidation)
	}
	switch b.Status {
	case BatchActive, BatchExpired, BatchRecalled, BatchQuarantine, BatchDisposed:
		return nil
	default:
		return fmt.Errorf("batch %s: unknown status %q: %w", b.BatchNumber, b.Status, ErrValidation)
	}
}

// DaysUntilExpiry returns ceil((expiry - now) / 24h). Zero or negative means
// the batch has lapsed.
func (b Batch) DaysUntilExpiry(now time.Time) int {
	d := b.ExpiryDate.Sub(now)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// EffectiveStatus derives the status at the given instant. A stored active
// batch whose expiry date has passed reads as expired; stored terminal
// statuses (recalled, quarantine, disposed, expired) are returned as-is.
func (b Batch) EffectiveStatus(now time.Time) BatchStatus {
	if b.Status == BatchActive && !now.Before(b.ExpiryDate) {
		return BatchExpired
	}
	return b.Status
}

// BulkDiscountTier is a supplier-level discount applied to the order
// subtotal. Tiers are kept sorted ascending by MinQuantity.
type BulkDiscountTier struct {
	MinQuantity     decimal.Decimal
	DiscountPercent decimal.Decimal
}

// Supplier master data relevant to ordering.
type Supplier struct {
	ID                    string
	Name                  string
	PaymentTerms          string
	MinimumOrderAmount    decimal.Decimal
	ShippingCost          decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	BulkDiscounts         []BulkDiscountTier
	LeadTimeDays          int
}

// Validate enforces supplier invariants, including strictly ascending,
// non-overlapping bulk discount tiers with percentages in [0, 100].
func (s Supplier) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("supplier id is required: %w", ErrValidation)
	}
	if s.MinimumOrderAmount.IsNegative() || s.ShippingCost.IsNegative() || s.FreeShippingThreshold.IsNegative() {
		return fmt.Errorf("supplier %s: amounts must be non-negative: %w", s.ID, ErrValidation)
	}
	hundred := decimal.NewFromInt(100)
	for i, t := range s.BulkDiscounts {
		if t.MinQuantity.IsNegative() {
			return fmt.Errorf("supplier %s: bulk tier %d has negative threshold: %w", s.ID, i, ErrValidation)
		}
		if t.DiscountPercent.IsNegative() || t.DiscountPercent.GreaterThan(hundred) {
			return fmt.Errorf("supplier %s: bulk tier %d percent outside [0,100]: %w", s.ID, i, ErrValidation)
		}
		if i > 0 && !s.BulkDiscounts[i-1].MinQuantity.LessThan(t.MinQuantity) {
			return fmt.Errorf("supplier %s: bulk tiers must be strictly ascending by threshold: %w", s.ID, ErrValidation)
		}
	}
	return nil
}

// PriceBreak is a per-product quantity tier with its own unit price,
// below the supplier's bulk discount layer.
type PriceBreak struct {
	MinQty int
	Price  decimal.Decimal
}

// SupplierPricing is one supplier's terms for one drug.
type SupplierPricing struct {
	SupplierID      string
	DrugID          string
	ContractPrice   decimal.Decimal
	ListPrice       decimal.Decimal
	MinimumOrderQty int
	PriceBreaks     []PriceBreak
}

// Validate enforces the well-formedness the pricing engine relies on:
// breaks strictly ascending by quantity with monotonically non-increasing
// prices. The engine itself does not re-validate on every resolution.
func (sp SupplierPricing) Validate() error {
	if sp.SupplierID == "" || sp.DrugID == "" {
		return fmt.Errorf("supplier pricing requires supplier and drug ids: %w", ErrValidation)
	}
	if sp.ContractPrice.IsNegative() || sp.ListPrice.IsNegative() {
		return fmt.Errorf("pricing %s/%s: prices must be non-negative: %w", sp.SupplierID, sp.DrugID, ErrValidation)
	}
	if sp.MinimumOrderQty < 0 {
		return fmt.Errorf("pricing %s/%s: minimum order qty must be non-negative: %w", sp.SupplierID, sp.DrugID, ErrValidation)
	}
	for i, pb := range sp.PriceBreaks {
		if pb.MinQty <= 0 {
			return fmt.Errorf("pricing %s/%s: break %d needs positive min qty: %w", sp.SupplierID, sp.DrugID, i, ErrValidation)
		}
		if pb.Price.IsNegative() {
			return fmt.Errorf("pricing %s/%s: break %d has negative price: %w", sp.SupplierID, sp.DrugID, i, ErrValidation)
		}
		if i > 0 {
			if sp.PriceBreaks[i-1].MinQty >= pb.MinQty {
				return fmt.Errorf("pricing %s/%s: breaks must be strictly ascending by qty: %w", sp.SupplierID, sp.DrugID, ErrValidation)
			}
			if sp.PriceBreaks[i-1].Price.LessThan(pb.Price) {
				return fmt.Errorf("pricing %s/%s: break prices must not increase with qty: %w", sp.SupplierID, sp.DrugID, ErrValidation)
			}
		}
	}
	return nil
}
