package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ApproverRole is the organizational role of a human approver.
type ApproverRole string

const (
	RoleManager  ApproverRole = "manager"
	RoleDirector ApproverRole = "director"
	RoleCLevel   ApproverRole = "c_level"

	// systemApproverID marks auto-approval records written by the engine.
	systemApproverID = "system"
)

// Tier thresholds on the order grand total. Fixed policy, not per-supplier.
var (
	autoApproveLimit   = decimal.NewFromInt(1000)
	executiveThreshold = decimal.NewFromInt(5000)
)

// ApprovalTierFor maps an order grand total to its approval tier and the
// number of human approvals it requires. Computed once at submission and
// never retroactively recomputed if totals change afterwards.
func ApprovalTierFor(grandTotal decimal.Decimal) (ApprovalLevel, int) {
	switch {
	case grandTotal.LessThan(autoApproveLimit):
		return LevelAuto, 0
	case grandTotal.LessThan(executiveThreshold):
		return LevelManager, 1
	default:
		return LevelExecutive, 2
	}
}

// roleLevel classifies a role into the tier it can satisfy. Directors and
// C-level officers both count as executive-level.
func roleLevel(role ApproverRole) (ApprovalLevel, error) {
	switch role {
	case RoleManager:
		return LevelManager, nil
	case RoleDirector, RoleCLevel:
		return LevelExecutive, nil
	default:
		return "", fmt.Errorf("unknown approver role %q: %w", role, ErrValidation)
	}
}

// submitOrder transitions a draft order into the approval workflow. Guards:
// status Draft, at least one line item, subtotal at or above the supplier
// minimum. Auto-tier orders skip straight to Approved with an AutoApproved
// record; everything else waits in PendingApproval.
func submitOrder(po *PurchaseOrder, supplier Supplier, now time.Time) error {
	if po.Status != StatusDraft {
		return fmt.Errorf("order %s cannot be submitted: status is %s (must be %s): %w",
			po.ID, po.Status, StatusDraft, ErrInvalidState)
	}
	if len(po.LineItems) == 0 {
		return fmt.Errorf("order %s has no line items: %w", po.ID, ErrValidation)
	}
	if err := CheckMinimumOrder(po.Totals.Subtotal, supplier); err != nil {
		return err
	}

	level, required := ApprovalTierFor(po.Totals.GrandTotal)
	po.ApprovalLevel = level
	po.RequiredApprovals = required
	po.CompletedApprovals = 0
	po.SubmittedAt = &now

	if level == LevelAuto {
		po.ApprovalHistory = append(po.ApprovalHistory, ApprovalRecord{
			ApproverID: systemApproverID,
			Action:     ActionAutoApproved,
			Level:      LevelAuto,
			Timestamp:  now,
			Comments:   fmt.Sprintf("auto-approved: total %s under %s", po.Totals.GrandTotal.StringFixed(2), autoApproveLimit.StringFixed(2)),
		})
		po.Status = StatusApproved
		return nil
	}

	po.Status = StatusPendingApproval
	return nil
}

// applyApproval records one approver's vote on a pending order.
//
// A rejection is final: the order transitions to Rejected immediately and no
// further votes are accepted. An approval increments the completed count and
// transitions to Approved once the requirement is met. For the executive
// tier the role ordering must hold: a manager-level vote first, then an
// executive-level vote. Each approver gets at most one vote.
func applyApproval(po *PurchaseOrder, approverID string, role ApproverRole, action ApprovalAction, comments string, now time.Time) error {
	if approverID == "" {
		return fmt.Errorf("approver id is required: %w", ErrValidation)
	}
	if action != ActionApproved && action != ActionRejected {
		return fmt.Errorf("approval action must be %s or %s, got %q: %w",
			ActionApproved, ActionRejected, action, ErrValidation)
	}
	if po.Status != StatusPendingApproval {
		return fmt.Errorf("order %s cannot accept approvals: status is %s (must be %s): %w",
			po.ID, po.Status, StatusPendingApproval, ErrInvalidState)
	}
	if po.HasVoteFrom(approverID) {
		return fmt.Errorf("approver %s already voted on order %s: %w", approverID, po.ID, ErrDuplicateApproval)
	}

	level, err := roleLevel(role)
	if err != nil {
		return err
	}

	rec := ApprovalRecord{
		ApproverID: approverID,
		Role:       role,
		Action:     action,
		Level:      level,
		Timestamp:  now,
		Comments:   comments,
	}

	if action == ActionRejected {
		po.ApprovalHistory = append(po.ApprovalHistory, rec)
		po.Status = StatusRejected
		return nil
	}

	if po.ApprovalLevel == LevelExecutive {
		// Order matters: manager sign-off first, then director/C-level.
		switch po.CompletedApprovals {
		case 0:
			if level != LevelManager {
				return fmt.Errorf("order %s requires a manager approval before an executive one: %w",
					po.ID, ErrValidation)
			}
		case 1:
			if level != LevelExecutive {
				return fmt.Errorf("order %s requires a director or C-level approval to complete: %w",
					po.ID, ErrValidation)
			}
		}
	}

	po.ApprovalHistory = append(po.ApprovalHistory, rec)
	po.CompletedApprovals++
	if po.CompletedApprovals >= po.RequiredApprovals {
		po.Status = StatusApproved
	}
	return nil
}
