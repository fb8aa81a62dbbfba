package core_test

import (
	"testing"

	"pharmacy-backoffice/internal/core"
)

func TestApprovalTierFor(t *testing.T) {
	tests := []struct {
		total    string
		level    core.ApprovalLevel
		required int
	}{
		{"0", core.LevelAuto, 0},
		{"999.99", core.LevelAuto, 0},
		{"1000", core.LevelManager, 1},
		{"1000.01", core.LevelManager, 1},
		{"4999.99", core.LevelManager, 1},
		{"5000", core.LevelExecutive, 2},
		{"125000", core.LevelExecutive, 2},
	}
	for _, tt := range tests {
		level, required := core.ApprovalTierFor(dec(tt.total))
		if level != tt.level || required != tt.required {
			t.Errorf("tier for %s: got %s/%d, want %s/%d",
				tt.total, level, required, tt.level, tt.required)
		}
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to core.OrderStatus }{
		{core.StatusDraft, core.StatusPendingApproval},
		{core.StatusDraft, core.StatusApproved}, // auto tier
		{core.StatusDraft, core.StatusCancelled},
		{core.StatusPendingApproval, core.StatusApproved},
		{core.StatusPendingApproval, core.StatusRejected},
		{core.StatusPendingApproval, core.StatusCancelled},
		{core.StatusApproved, core.StatusInTransit},
		{core.StatusInTransit, core.StatusDelivered},
		{core.StatusInTransit, core.StatusDelayed},
		{core.StatusDelayed, core.StatusDelivered},
		{core.StatusDelayed, core.StatusCancelled},
	}
	for _, tr := range allowed {
		if !core.CanTransition(tr.from, tr.to) {
			t.Errorf("%s -> %s should be allowed", tr.from, tr.to)
		}
	}

	forbidden := []struct{ from, to core.OrderStatus }{
		{core.StatusDraft, core.StatusInTransit},
		{core.StatusDraft, core.StatusRejected},
		{core.StatusApproved, core.StatusCancelled},
		{core.StatusApproved, core.StatusDraft},
		{core.StatusInTransit, core.StatusCancelled},
		{core.StatusDelivered, core.StatusCancelled},
		{core.StatusCancelled, core.StatusDraft},
		{core.StatusRejected, core.StatusPendingApproval},
		{core.StatusRejected, core.StatusApproved},
	}
	for _, tr := range forbidden {
		if core.CanTransition(tr.from, tr.to) {
			t.Errorf("%s -> %s should be forbidden", tr.from, tr.to)
		}
	}
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	terminal := []core.OrderStatus{core.StatusDelivered, core.StatusCancelled, core.StatusRejected}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	live := []core.OrderStatus{
		core.StatusDraft, core.StatusPendingApproval, core.StatusApproved,
		core.StatusInTransit, core.StatusDelayed,
	}
	for _, s := range live {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
