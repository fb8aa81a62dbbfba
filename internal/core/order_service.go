package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderService is the order assembly facade: it composes the pricing engine
// and approval workflow into the operations a caller needs. Line items are
// editable only while the order is a draft; once submitted, amendments
// require a new order. Every write goes through the repository's optimistic
// version check, so concurrent writers on the same order resolve
// first-writer-wins and the loser sees ErrStaleOrderState.
type OrderService interface {
	CreateOrder(ctx context.Context, supplierID string, priority OrderPriority, notes string) (*PurchaseOrder, error)
	AddLineItem(ctx context.Context, orderID, drugID string, quantity int) (*PurchaseOrder, error)
	UpdateLineItem(ctx context.Context, orderID, lineID string, quantity int) (*PurchaseOrder, error)
	RemoveLineItem(ctx context.Context, orderID, lineID string) (*PurchaseOrder, error)
	SubmitOrder(ctx context.Context, orderID string) (*PurchaseOrder, error)
	RecordApproval(ctx context.Context, orderID, approverID string, role ApproverRole, action ApprovalAction, comments string) (*PurchaseOrder, error)
	// BulkApprove applies the same vote to many orders. Each order is
	// processed independently: one failure never blocks the rest, and
	// there is no cross-order atomicity.
	BulkApprove(ctx context.Context, orderIDs []string, approverID string, role ApproverRole, action ApprovalAction, comments string) []BulkApprovalResult
	// Fulfillment transitions, driven by the caller's delivery feed.
	MarkInTransit(ctx context.Context, orderID string) (*PurchaseOrder, error)
	MarkDelayed(ctx context.Context, orderID string) (*PurchaseOrder, error)
	MarkDelivered(ctx context.Context, orderID string) (*PurchaseOrder, error)
	CancelOrder(ctx context.Context, orderID string) (*PurchaseOrder, error)
	GetOrder(ctx context.Context, orderID string) (*PurchaseOrder, error)
	ListOrders(ctx context.Context, status OrderStatus) ([]PurchaseOrder, error)
}

// BulkApprovalResult is one order's outcome from a bulk action.
type BulkApprovalResult struct {
	OrderID string
	Order   *PurchaseOrder
	Err     error
}

type orderService struct {
	catalog CatalogRepository
	orders  OrderRepository
	taxRate decimal.Decimal
	now     func() time.Time
}

// NewOrderService constructs the order facade. taxRate is a fraction
// (0.10 for 10%); now is the injected clock (time.Now in production).
func NewOrderService(catalog CatalogRepository, orders OrderRepository, taxRate decimal.Decimal, now func() time.Time) OrderService {
	if now == nil {
		now = time.Now
	}
	return &orderService{catalog: catalog, orders: orders, taxRate: taxRate, now: now}
}

func (s *orderService) CreateOrder(ctx context.Context, supplierID string, priority OrderPriority, notes string) (*PurchaseOrder, error) {
	if _, err := s.catalog.GetSupplier(ctx, supplierID); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if priority == "" {
		priority = PriorityRoutine
	}

	po := &PurchaseOrder{
		ID:         uuid.NewString(),
		SupplierID: supplierID,
		Status:     StatusDraft,
		Priority:   priority,
		Notes:      notes,
		CreatedAt:  s.now(),
	}
	if err := s.orders.Create(ctx, po); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return po, nil
}

func (s *orderService) AddLineItem(ctx context.Context, orderID, drugID string, quantity int) (*PurchaseOrder, error) {
	return s.editLines(ctx, orderID, func(po *PurchaseOrder, supplier Supplier) error {
		drug, err := s.catalog.GetDrug(ctx, drugID)
		if err != nil {
			return err
		}
		unitPrice, err := s.resolvePrice(ctx, po.SupplierID, drugID, quantity)
		if err != nil {
			return err
		}
		po.LineItems = append(po.LineItems, OrderLineItem{
			ID:        uuid.NewString(),
			DrugID:    drug.ID,
			DrugName:  drug.Name,
			Quantity:  quantity,
			UnitPrice: unitPrice,
			Total:     unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		})
		return nil
	})
}

func (s *orderService) UpdateLineItem(ctx context.Context, orderID, lineID string, quantity int) (*PurchaseOrder, error) {
	return s.editLines(ctx, orderID, func(po *PurchaseOrder, supplier Supplier) error {
		i := po.FindLine(lineID)
		if i < 0 {
			return fmt.Errorf("line %s not on order %s: %w", lineID, po.ID, ErrNotFound)
		}
		unitPrice, err := s.resolvePrice(ctx, po.SupplierID, po.LineItems[i].DrugID, quantity)
		if err != nil {
			return err
		}
		po.LineItems[i].Quantity = quantity
		po.LineItems[i].UnitPrice = unitPrice
		po.LineItems[i].Total = unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
		return nil
	})
}

func (s *orderService) RemoveLineItem(ctx context.Context, orderID, lineID string) (*PurchaseOrder, error) {
	return s.editLines(ctx, orderID, func(po *PurchaseOrder, supplier Supplier) error {
		i := po.FindLine(lineID)
		if i < 0 {
			return fmt.Errorf("line %s not on order %s: %w", lineID, po.ID, ErrNotFound)
		}
		po.LineItems = append(po.LineItems[:i], po.LineItems[i+1:]...)
		return nil
	})
}

// editLines runs a line mutation under the draft-only guard, then recomputes
// totals and writes the order back with the version check.
func (s *orderService) editLines(ctx context.Context, orderID string, mutate func(*PurchaseOrder, Supplier) error) (*PurchaseOrder, error) {
	po, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if po.Status != StatusDraft {
		return nil, fmt.Errorf("order %s line items are immutable: status is %s (must be %s): %w",
			po.ID, po.Status, StatusDraft, ErrInvalidState)
	}
	supplier, err := s.catalog.GetSupplier(ctx, po.SupplierID)
	if err != nil {
		return nil, err
	}
	if err := mutate(po, *supplier); err != nil {
		return nil, err
	}
	po.Totals = ComputeOrderTotals(po.LineItems, *supplier, s.taxRate)
	if err := s.orders.Update(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

// resolvePrice re-resolves the unit price on every add/update so a quantity
// change always picks up the correct price break.
func (s *orderService) resolvePrice(ctx context.Context, supplierID, drugID string, quantity int) (decimal.Decimal, error) {
	sp, err := s.catalog.GetSupplierPricing(ctx, supplierID, drugID)
	if err != nil {
		return decimal.Zero, err
	}
	return ResolveUnitPrice(*sp, quantity)
}

func (s *orderService) SubmitOrder(ctx context.Context, orderID string) (*PurchaseOrder, error) {
	po, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	supplier, err := s.catalog.GetSupplier(ctx, po.SupplierID)
	if err != nil {
		return nil, err
	}
	if err := submitOrder(po, *supplier, s.now()); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

func (s *orderService) RecordApproval(ctx context.Context, orderID, approverID string, role ApproverRole, action ApprovalAction, comments string) (*PurchaseOrder, error) {
	po, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := applyApproval(po, approverID, role, action, comments, s.now()); err != nil {
		return nil, err
	}
	// First writer wins: if another approver raced us here, the version
	// check fails and the caller re-reads and retries.
	if err := s.orders.Update(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

func (s *orderService) BulkApprove(ctx context.Context, orderIDs []string, approverID string, role ApproverRole, action ApprovalAction, comments string) []BulkApprovalResult {
	results := make([]BulkApprovalResult, 0, len(orderIDs))
	for _, id := range orderIDs {
		po, err := s.RecordApproval(ctx, id, approverID, role, action, comments)
		results = append(results, BulkApprovalResult{OrderID: id, Order: po, Err: err})
	}
	return results
}

func (s *orderService) MarkInTransit(ctx context.Context, orderID string) (*PurchaseOrder, error) {
	return s.transition(ctx, orderID, StatusInTransit)
}

func (s *orderService) MarkDelayed(ctx context.Context, orderID string) (*PurchaseOrder, error) {
	return s.transition(ctx, orderID, StatusDelayed)
}

func (s *orderService) MarkDelivered(ctx context.Context, orderID string) (*PurchaseOrder, error) {
	return s.transition(ctx, orderID, StatusDelivered)
}

func (s *orderService) CancelOrder(ctx context.Context, orderID string) (*PurchaseOrder, error) {
	return s.transition(ctx, orderID, StatusCancelled)
}

func (s *orderService) transition(ctx context.Context, orderID string, to OrderStatus) (*PurchaseOrder, error) {
	po, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(po.Status, to) {
		return nil, fmt.Errorf("order %s cannot move from %s to %s: %w", po.ID, po.Status, to, ErrInvalidState)
	}
	po.Status = to
	if err := s.orders.Update(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (*PurchaseOrder, error) {
	return s.orders.Get(ctx, orderID)
}

func (s *orderService) ListOrders(ctx context.Context, status OrderStatus) ([]PurchaseOrder, error) {
	return s.orders.List(ctx, status)
}
