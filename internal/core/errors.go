package core

import "errors"

// Engine error taxonomy. Every error returned by the engine wraps exactly one
// of these sentinels so callers can branch with errors.Is. The engine never
// logs and never retries internally; recovery is the caller's decision
// (retry on ErrStaleOrderState, fix input on ErrValidation, and so on).
var (
	// ErrNotFound covers missing drug, supplier, order, or line references.
	ErrNotFound = errors.New("not found")

	// ErrPricingNotFound means the supplier has no pricing record for the
	// requested product.
	ErrPricingNotFound = errors.New("supplier pricing not found")

	// ErrValidation covers malformed input: non-positive quantities,
	// inverted date ranges, unsorted tier lists, out-of-order executive
	// approvals.
	ErrValidation = errors.New("validation failed")

	// ErrBelowMinimumOrder is reported at submission when the order
	// subtotal does not reach the supplier's minimum order amount.
	ErrBelowMinimumOrder = errors.New("below supplier minimum order amount")

	// ErrInvalidState means the operation is not permitted in the order's
	// current status (for example editing lines after submission).
	ErrInvalidState = errors.New("invalid order state")

	// ErrDuplicateApproval means the approver has already voted on this
	// order. At most one vote per approver per order.
	ErrDuplicateApproval = errors.New("duplicate approval")

	// ErrStaleOrderState is the optimistic-concurrency conflict: the order
	// changed between read and write. Re-read and retry.
	ErrStaleOrderState = errors.New("stale order state")
)
