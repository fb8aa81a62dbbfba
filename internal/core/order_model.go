package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the purchase-order state machine:
//
//	Draft → PendingApproval → Approved → InTransit → Delivered
//	                       ↘ Rejected              ↘ Delayed → Delivered
//	         PendingApproval → Cancelled              Delayed → Cancelled
//
// Delivered, Cancelled and Rejected are terminal; no transition leaves them.
type OrderStatus string

const (
	StatusDraft           OrderStatus = "draft"
	StatusPendingApproval OrderStatus = "pending_approval"
	StatusApproved        OrderStatus = "approved"
	StatusInTransit       OrderStatus = "in_transit"
	StatusDelayed         OrderStatus = "delayed"
	StatusDelivered       OrderStatus = "delivered"
	StatusCancelled       OrderStatus = "cancelled"
	StatusRejected        OrderStatus = "rejected"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusDraft:           {StatusPendingApproval, StatusApproved, StatusCancelled},
	StatusPendingApproval: {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:        {StatusInTransit},
	StatusInTransit:       {StatusDelivered, StatusDelayed},
	StatusDelayed:         {StatusDelivered, StatusCancelled},
}

// CanTransition reports whether from → to is a legal move in the order FSM.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusRejected
}

// OrderPriority is caller-assigned and does not affect the FSM.
type OrderPriority string

const (
	PriorityRoutine OrderPriority = "routine"
	PriorityUrgent  OrderPriority = "urgent"
)

// OrderLineItem is one drug position on a purchase order. UnitPrice is
// resolved by the pricing engine whenever the line is added or updated,
// never free-typed, and Total is always Quantity × UnitPrice.
type OrderLineItem struct {
	ID        string          `json:"id"`
	DrugID    string          `json:"drug_id"`
	DrugName  string          `json:"drug_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// ApprovalAction is what an approver did.
type ApprovalAction string

const (
	ActionApproved     ApprovalAction = "approved"
	ActionRejected     ApprovalAction = "rejected"
	ActionAutoApproved ApprovalAction = "auto_approved"
)

// ApprovalLevel is the tier a vote counts toward.
type ApprovalLevel string

const (
	LevelAuto      ApprovalLevel = "auto"
	LevelManager   ApprovalLevel = "manager"
	LevelExecutive ApprovalLevel = "executive"
)

// ApprovalRecord is one vote in the order's approval history. Append-only:
// once written it is never mutated.
type ApprovalRecord struct {
	ApproverID string         `json:"approver_id"`
	Role       ApproverRole   `json:"role"`
	Action     ApprovalAction `json:"action"`
	Level      ApprovalLevel  `json:"level"`
	Timestamp  time.Time      `json:"timestamp"`
	Comments   string         `json:"comments,omitempty"`
}

// PurchaseOrder is an order to a supplier. Totals are derived from the line
// items by the pricing engine; Version backs the optimistic concurrency
// check on every write.
type PurchaseOrder struct {
	ID                 string           `json:"id"`
	SupplierID         string           `json:"supplier_id"`
	Status             OrderStatus      `json:"status"`
	Priority           OrderPriority    `json:"priority"`
	LineItems          []OrderLineItem  `json:"line_items"`
	Totals             OrderTotals      `json:"totals"`
	ApprovalLevel      ApprovalLevel    `json:"approval_level"`
	RequiredApprovals  int              `json:"required_approvals"`
	CompletedApprovals int              `json:"completed_approvals"`
	ApprovalHistory    []ApprovalRecord `json:"approval_history"`
	Notes              string           `json:"notes,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	SubmittedAt        *time.Time       `json:"submitted_at,omitempty"`
	Version            int64            `json:"version"`
}

// FindLine returns the index of the line with the given id, or -1.
func (po *PurchaseOrder) FindLine(lineID string) int {
	for i, li := range po.LineItems {
		if li.ID == lineID {
			return i
		}
	}
	return -1
}

// HasVoteFrom reports whether the approver already appears in the history.
func (po *PurchaseOrder) HasVoteFrom(approverID string) bool {
	for _, rec := range po.ApprovalHistory {
		if rec.ApproverID == approverID {
			return true
		}
	}
	return false
}
