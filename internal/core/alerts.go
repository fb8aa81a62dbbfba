package core

import "time"

// AlertType identifies what condition a stock alert reports.
type AlertType string

const (
	AlertLowStock     AlertType = "low_stock"
	AlertReorder      AlertType = "reorder"
	AlertExpiringSoon AlertType = "expiring_soon"
	AlertExpired      AlertType = "expired"
)

// AlertPriority ranks alerts for triage.
type AlertPriority string

const (
	PriorityLow      AlertPriority = "low"
	PriorityMedium   AlertPriority = "medium"
	PriorityHigh     AlertPriority = "high"
	PriorityCritical AlertPriority = "critical"
)

const expiryWarningDays = 30
const expiryUrgentDays = 7

// StockAlert is a derived record, regenerated on demand from catalog state.
// It is never the source of truth. BatchID is set only for expiry alerts.
type StockAlert struct {
	Type            AlertType     `json:"type"`
	Priority        AlertPriority `json:"priority"`
	DrugID          string        `json:"drug_id"`
	DrugName        string        `json:"drug_name"`
	BatchID         string        `json:"batch_id,omitempty"`
	BatchNumber     string        `json:"batch_number,omitempty"`
	CurrentStock    int           `json:"current_stock"`
	Threshold       int           `json:"threshold,omitempty"`
	DaysUntilExpiry int           `json:"days_until_expiry,omitempty"`
}

// GenerateAlerts derives the alert set for a catalog snapshot at the given
// instant. Pure and deterministic: the same snapshot and clock always yield
// the same sequence (drugs in input order, stock alerts before that drug's
// batch alerts). Rules are evaluated independently, so one drug can emit
// both low_stock and reorder at once.
func GenerateAlerts(drugs []Drug, batches []Batch, now time.Time) []StockAlert {
	byDrug := make(map[string][]Batch, len(drugs))
	for _, b := range batches {
		byDrug[b.DrugID] = append(byDrug[b.DrugID], b)
	}

	var alerts []StockAlert
	for _, d := range drugs {
		if d.CurrentStock <= d.MinStockLevel {
			p := PriorityHigh
			if d.CurrentStock == 0 {
				p = PriorityCritical
			}
			alerts = append(alerts, StockAlert{
				Type:         AlertLowStock,
				Priority:     p,
				DrugID:       d.ID,
				DrugName:     d.Name,
				CurrentStock: d.CurrentStock,
				Threshold:    d.MinStockLevel,
			})
		}
		if d.CurrentStock <= d.ReorderLevel {
			alerts = append(alerts, StockAlert{
				Type:         AlertReorder,
				Priority:     PriorityMedium,
				DrugID:       d.ID,
				DrugName:     d.Name,
				CurrentStock: d.CurrentStock,
				Threshold:    d.ReorderLevel,
			})
		}

		for _, b := range byDrug[d.ID] {
			// Terminal stored statuses (recalled, quarantine, disposed,
			// already marked expired) are handled elsewhere; only batches
			// stored as active are scanned for expiry.
			if b.Status != BatchActive {
				continue
			}
			days := b.DaysUntilExpiry(now)
			switch {
			case days <= 0:
				alerts = append(alerts, StockAlert{
					Type:            AlertExpired,
					Priority:        PriorityCritical,
					DrugID:          d.ID,
					DrugName:        d.Name,
					BatchID:         b.ID,
					BatchNumber:     b.BatchNumber,
					CurrentStock:    d.CurrentStock,
					DaysUntilExpiry: days,
				})
			case days <= expiryWarningDays:
				p := PriorityMedium
				if days <= expiryUrgentDays {
					p = PriorityHigh
				}
				alerts = append(alerts, StockAlert{
					Type:            AlertExpiringSoon,
					Priority:        p,
					DrugID:          d.ID,
					DrugName:        d.Name,
					BatchID:         b.ID,
					BatchNumber:     b.BatchNumber,
					CurrentStock:    d.CurrentStock,
					DaysUntilExpiry: days,
				})
			}
		}
	}
	return alerts
}
