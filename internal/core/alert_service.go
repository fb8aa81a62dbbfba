package core

import (
	"context"
	"time"
)

// AlertService derives stock and expiry alerts from the current catalog.
type AlertService interface {
	// CurrentAlerts snapshots the catalog and regenerates the alert set.
	// Idempotent and side-effect free.
	CurrentAlerts(ctx context.Context) ([]StockAlert, error)
	// DrugStockStatus classifies one drug's stock level.
	DrugStockStatus(ctx context.Context, drugID string) (StockStatus, error)
}

type alertService struct {
	catalog CatalogRepository
	now     func() time.Time
}

// NewAlertService constructs an AlertService with an injected clock so
// expiry logic is deterministic under test.
func NewAlertService(catalog CatalogRepository, now func() time.Time) AlertService {
	if now == nil {
		now = time.Now
	}
	return &alertService{catalog: catalog, now: now}
}

func (s *alertService) CurrentAlerts(ctx context.Context) ([]StockAlert, error) {
	drugs, err := s.catalog.ListDrugs(ctx)
	if err != nil {
		return nil, err
	}
	batches, err := s.catalog.ListBatches(ctx)
	if err != nil {
		return nil, err
	}
	return GenerateAlerts(drugs, batches, s.now()), nil
}

func (s *alertService) DrugStockStatus(ctx context.Context, drugID string) (StockStatus, error) {
	drug, err := s.catalog.GetDrug(ctx, drugID)
	if err != nil {
		return "", err
	}
	return drug.StockStatus(), nil
}
