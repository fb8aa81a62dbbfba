// Package memory provides in-process repository implementations. They back
// the engine in tests and in demo deployments without a database, and they
// implement the same error taxonomy and version semantics as the Postgres
// store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"pharmacy-backoffice/internal/core"
)

type pricingKey struct {
	supplierID string
	drugID     string
}

// CatalogStore is a mutex-guarded in-memory core.CatalogRepository.
type CatalogStore struct {
	mu        sync.RWMutex
	drugs     map[string]core.Drug
	batches   map[string]core.Batch
	suppliers map[string]core.Supplier
	pricing   map[pricingKey]core.SupplierPricing
	drugOrder []string
}

// NewCatalogStore returns an empty catalog store.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		drugs:     make(map[string]core.Drug),
		batches:   make(map[string]core.Batch),
		suppliers: make(map[string]core.Supplier),
		pricing:   make(map[pricingKey]core.SupplierPricing),
	}
}

func (s *CatalogStore) GetDrug(ctx context.Context, drugID string) (*core.Drug, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drugs[drugID]
	if !ok {
		return nil, fmt.Errorf("drug %s: %w", drugID, core.ErrNotFound)
	}
	return &d, nil
}

func (s *CatalogStore) ListDrugs(ctx context.Context) ([]core.Drug, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Drug, 0, len(s.drugOrder))
	for _, id := range s.drugOrder {
		out = append(out, s.drugs[id])
	}
	return out, nil
}

func (s *CatalogStore) ListBatches(ctx context.Context) ([]core.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Batch, 0, len(s.batches))
	for _, b := range s.batches {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DrugID != out[j].DrugID {
			return out[i].DrugID < out[j].DrugID
		}
		return out[i].BatchNumber < out[j].BatchNumber
	})
	return out, nil
}

func (s *CatalogStore) ListBatchesForDrug(ctx context.Context, drugID string) ([]core.Batch, error) {
	all, _ := s.ListBatches(ctx)
	var out []core.Batch
	for _, b := range all {
		if b.DrugID == drugID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *CatalogStore) GetSupplier(ctx context.Context, supplierID string) (*core.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sup, ok := s.suppliers[supplierID]
	if !ok {
		return nil, fmt.Errorf("supplier %s: %w", supplierID, core.ErrNotFound)
	}
	return &sup, nil
}

func (s *CatalogStore) GetSupplierPricing(ctx context.Context, supplierID, drugID string) (*core.SupplierPricing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.pricing[pricingKey{supplierID, drugID}]
	if !ok {
		return nil, fmt.Errorf("pricing for supplier %s drug %s: %w", supplierID, drugID, core.ErrPricingNotFound)
	}
	return &sp, nil
}

func (s *CatalogStore) PutDrug(ctx context.Context, d core.Drug) error {
	if err := d.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.drugs[d.ID]; !exists {
		s.drugOrder = append(s.drugOrder, d.ID)
	}
	s.drugs[d.ID] = d
	return nil
}

func (s *CatalogStore) PutBatch(ctx context.Context, b core.Batch) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drugs[b.DrugID]; !ok {
		return fmt.Errorf("batch %s references drug %s: %w", b.BatchNumber, b.DrugID, core.ErrNotFound)
	}
	s.batches[b.DrugID+"/"+b.BatchNumber] = b
	return nil
}

func (s *CatalogStore) PutSupplier(ctx context.Context, sup core.Supplier) error {
	if err := sup.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppliers[sup.ID] = sup
	return nil
}

func (s *CatalogStore) PutSupplierPricing(ctx context.Context, sp core.SupplierPricing) error {
	if err := sp.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.suppliers[sp.SupplierID]; !ok {
		return fmt.Errorf("pricing references supplier %s: %w", sp.SupplierID, core.ErrNotFound)
	}
	if _, ok := s.drugs[sp.DrugID]; !ok {
		return fmt.Errorf("pricing references drug %s: %w", sp.DrugID, core.ErrNotFound)
	}
	s.pricing[pricingKey{sp.SupplierID, sp.DrugID}] = sp
	return nil
}

// OrderStore is an in-memory core.OrderRepository with optimistic
// versioning: Update is a compare-and-swap on the order version under the
// store mutex, so two racing writers can never both succeed.
type OrderStore struct {
	mu     sync.Mutex
	orders map[string]*core.PurchaseOrder
	seq    []string
}

// NewOrderStore returns an empty order store.
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]*core.PurchaseOrder)}
}

func (s *OrderStore) Create(ctx context.Context, po *core.PurchaseOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[po.ID]; exists {
		return fmt.Errorf("order %s already exists: %w", po.ID, core.ErrValidation)
	}
	po.Version = 1
	s.orders[po.ID] = clone(po)
	s.seq = append(s.seq, po.ID)
	return nil
}

func (s *OrderStore) Get(ctx context.Context, orderID string) (*core.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	po, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderID, core.ErrNotFound)
	}
	return clone(po), nil
}

func (s *OrderStore) List(ctx context.Context, status core.OrderStatus) ([]core.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.PurchaseOrder, 0, len(s.seq))
	// Newest first.
	for i := len(s.seq) - 1; i >= 0; i-- {
		po := s.orders[s.seq[i]]
		if status != "" && po.Status != status {
			continue
		}
		out = append(out, *clone(po))
	}
	return out, nil
}

func (s *OrderStore) Update(ctx context.Context, po *core.PurchaseOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.orders[po.ID]
	if !ok {
		return fmt.Errorf("order %s: %w", po.ID, core.ErrNotFound)
	}
	if stored.Version != po.Version {
		return fmt.Errorf("order %s version %d, expected %d: %w",
			po.ID, stored.Version, po.Version, core.ErrStaleOrderState)
	}
	po.Version++
	s.orders[po.ID] = clone(po)
	return nil
}

// clone deep-copies an order so callers never alias stored state.
func clone(po *core.PurchaseOrder) *core.PurchaseOrder {
	cp := *po
	cp.LineItems = append([]core.OrderLineItem(nil), po.LineItems...)
	cp.ApprovalHistory = append([]core.ApprovalRecord(nil), po.ApprovalHistory...)
	if po.SubmittedAt != nil {
		t := *po.SubmittedAt
		cp.SubmittedAt = &t
	}
	return &cp
}
