package core

import "context"

// CatalogRepository is the read/write boundary for master data. The engine
// never touches ambient global state; adapters hand it one of these.
type CatalogRepository interface {
	GetDrug(ctx context.Context, drugID string) (*Drug, error)
	ListDrugs(ctx context.Context) ([]Drug, error)
	ListBatches(ctx context.Context) ([]Batch, error)
	ListBatchesForDrug(ctx context.Context, drugID string) ([]Batch, error)
	GetSupplier(ctx context.Context, supplierID string) (*Supplier, error)
	// GetSupplierPricing returns the pricing record for (supplier, drug).
	// Absence is reported as ErrPricingNotFound.
	GetSupplierPricing(ctx context.Context, supplierID, drugID string) (*SupplierPricing, error)

	// Upserts used by seeding and stock adjustments. All validate before
	// writing; malformed records never enter the catalog.
	PutDrug(ctx context.Context, d Drug) error
	PutBatch(ctx context.Context, b Batch) error
	PutSupplier(ctx context.Context, s Supplier) error
	PutSupplierPricing(ctx context.Context, sp SupplierPricing) error
}

// OrderRepository persists purchase orders with optimistic versioning.
type OrderRepository interface {
	Create(ctx context.Context, po *PurchaseOrder) error
	Get(ctx context.Context, orderID string) (*PurchaseOrder, error)
	// List returns orders, newest first, optionally filtered by status
	// (empty string means all).
	List(ctx context.Context, status OrderStatus) ([]PurchaseOrder, error)
	// Update writes po if and only if the stored version equals
	// po.Version, then increments it. A mismatch is ErrStaleOrderState.
	Update(ctx context.Context, po *PurchaseOrder) error
}
