// Command seed loads a small sample pharmacy catalog into the configured
// PostgreSQL database so the server has data to work with in demos.
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"pharmacy-backoffice/internal/config"
	"pharmacy-backoffice/internal/core"
	"pharmacy-backoffice/internal/db"
	"pharmacy-backoffice/internal/store/postgres"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL must be set to seed the database")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	catalog := postgres.NewCatalogStore(pool)
	now := time.Now()

	drugs := []core.Drug{
		{
			ID: "AMOX-500", Name: "Amoxicillin 500mg", GenericName: "amoxicillin",
			Category: "antibiotic", CurrentStock: 40, MinStockLevel: 100,
			MaxStockLevel: 2000, ReorderLevel: 300,
			UnitPrice:    decimal.NewFromFloat(0.35),
			SellingPrice: decimal.NewFromFloat(0.80),
			PrescriptionRequired: true,
		},
		{
			ID: "INSU-GLAR", Name: "Insulin Glargine 100U/mL", GenericName: "insulin glargine",
			Category: "antidiabetic", CurrentStock: 55, MinStockLevel: 20,
			MaxStockLevel: 200, ReorderLevel: 40,
			UnitPrice:    decimal.NewFromFloat(24.50),
			SellingPrice: decimal.NewFromFloat(42.00),
			RefrigerationRequired: true, PrescriptionRequired: true,
		},
		{
			ID: "IBUP-200", Name: "Ibuprofen 200mg", GenericName: "ibuprofen",
			Category: "analgesic", CurrentStock: 1800, MinStockLevel: 200,
			MaxStockLevel: 1500, ReorderLevel: 400,
			UnitPrice:    decimal.NewFromFloat(0.05),
			SellingPrice: decimal.NewFromFloat(0.15),
		},
		{
			ID: "MORP-10", Name: "Morphine Sulfate 10mg", GenericName: "morphine sulfate",
			Category: "opioid analgesic", CurrentStock: 0, MinStockLevel: 10,
			MaxStockLevel: 60, ReorderLevel: 15,
			UnitPrice:    decimal.NewFromFloat(2.10),
			SellingPrice: decimal.NewFromFloat(5.00),
			ControlledSubstance: true, PrescriptionRequired: true,
		},
	}
	for _, d := range drugs {
		if err := catalog.PutDrug(ctx, d); err != nil {
			log.Fatalf("seed drug %s: %v", d.ID, err)
		}
	}

	batches := []core.Batch{
		{
			ID: "b-amox-1", DrugID: "AMOX-500", BatchNumber: "AMX2406A",
			ManufacturingDate: now.AddDate(-1, 0, 0), ExpiryDate: now.AddDate(0, 0, 12),
			Quantity: 500, RemainingQuantity: 40, Status: core.BatchActive,
		},
		{
			ID: "b-insu-1", DrugID: "INSU-GLAR", BatchNumber: "ING2501B",
			ManufacturingDate: now.AddDate(0, -6, 0), ExpiryDate: now.AddDate(1, 0, 0),
			Quantity: 100, RemainingQuantity: 55, Status: core.BatchActive,
		},
		{
			ID: "b-ibup-1", DrugID: "IBUP-200", BatchNumber: "IBU2312C",
			ManufacturingDate: now.AddDate(-2, 0, 0), ExpiryDate: now.AddDate(0, -1, 0),
			Quantity: 2000, RemainingQuantity: 300, Status: core.BatchActive,
		},
	}
	for _, b := range batches {
		if err := catalog.PutBatch(ctx, b); err != nil {
			log.Fatalf("seed batch %s: %v", b.BatchNumber, err)
		}
	}

	supplier := core.Supplier{
		ID: "SUP-MEDCO", Name: "MedCo Wholesale", PaymentTerms: "net 30",
		MinimumOrderAmount:    decimal.NewFromInt(250),
		ShippingCost:          decimal.NewFromInt(50),
		FreeShippingThreshold: decimal.NewFromInt(1000),
		BulkDiscounts: []core.BulkDiscountTier{
			{MinQuantity: decimal.NewFromInt(5000), DiscountPercent: decimal.NewFromInt(10)},
			{MinQuantity: decimal.NewFromInt(10000), DiscountPercent: decimal.NewFromInt(15)},
		},
		LeadTimeDays: 5,
	}
	if err := catalog.PutSupplier(ctx, supplier); err != nil {
		log.Fatalf("seed supplier: %v", err)
	}

	pricing := []core.SupplierPricing{
		{
			SupplierID: "SUP-MEDCO", DrugID: "AMOX-500",
			ContractPrice: decimal.NewFromFloat(0.32), ListPrice: decimal.NewFromFloat(0.40),
			MinimumOrderQty: 100,
			PriceBreaks: []core.PriceBreak{
				{MinQty: 500, Price: decimal.NewFromFloat(0.30)},
				{MinQty: 2000, Price: decimal.NewFromFloat(0.27)},
			},
		},
		{
			SupplierID: "SUP-MEDCO", DrugID: "INSU-GLAR",
			ContractPrice: decimal.NewFromFloat(23.75), ListPrice: decimal.NewFromFloat(26.00),
			MinimumOrderQty: 10,
			PriceBreaks: []core.PriceBreak{
				{MinQty: 50, Price: decimal.NewFromFloat(22.90)},
			},
		},
		{
			SupplierID: "SUP-MEDCO", DrugID: "IBUP-200",
			ContractPrice: decimal.NewFromFloat(0.045), ListPrice: decimal.NewFromFloat(0.06),
			MinimumOrderQty: 500,
		},
	}
	for _, sp := range pricing {
		if err := catalog.PutSupplierPricing(ctx, sp); err != nil {
			log.Fatalf("seed pricing %s: %v", sp.DrugID, err)
		}
	}

	log.Printf("seeded %d drugs, %d batches, 1 supplier, %d pricing records",
		len(drugs), len(batches), len(pricing))
}
