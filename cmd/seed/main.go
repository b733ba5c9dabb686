package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"whatsapp-commerce-billing/internal/config"
	"whatsapp-commerce-billing/internal/domain/model"
	pg "whatsapp-commerce-billing/internal/infra/db/postgres"
)

func main() {
	// ---- Config ----
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect Postgres
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	catalog := pg.NewCatalogRepo(pool)
	vouchers := pg.NewVoucherRepo(pool)

	// If the catalog is already seeded, do nothing.
	if _, err := catalog.FindProduct(ctx, "prod-api-access"); err == nil {
		fmt.Println("catalog already present. No changes.")
		return
	}

	products := []*model.Product{
		{ID: "prod-api-access", Name: "API Access", PriceIDR: decimal.NewFromInt(150_000), PriceUSD: decimal.NewFromInt(10), Active: true},
		{ID: "prod-catalog-sync", Name: "Catalog Sync", PriceIDR: decimal.NewFromInt(250_000), PriceUSD: decimal.NewFromInt(17), Active: true},
	}
	now := time.Now()
	for _, p := range products {
		p.CreatedAt = now
		if err := catalog.SaveProduct(ctx, nil, p); err != nil {
			log.Fatalf("seed product %q: %v", p.Name, err)
		}
		fmt.Printf("seeded product: %s (%s IDR)\n", p.Name, p.PriceIDR)
	}

	addons := []*model.Addon{
		{ID: "addon-extra-session", Name: "Extra Session", PriceIDR: decimal.NewFromInt(100_000), PriceUSD: decimal.NewFromInt(7), Active: true},
		{ID: "addon-priority-support", Name: "Priority Support", PriceIDR: decimal.NewFromInt(200_000), PriceUSD: decimal.NewFromInt(14), Active: true},
	}
	for _, a := range addons {
		a.CreatedAt = now
		if err := catalog.SaveAddon(ctx, nil, a); err != nil {
			log.Fatalf("seed addon %q: %v", a.Name, err)
		}
		fmt.Printf("seeded addon: %s (%s IDR)\n", a.Name, a.PriceIDR)
	}

	packages := []*model.WhatsAppPackage{
		{ID: "pkg-starter", Name: "Starter", PriceMonthIDR: decimal.NewFromInt(155_000), PriceYearIDR: decimal.NewFromInt(1_550_000), MaxSessions: 1, Active: true},
		{ID: "pkg-business", Name: "Business", PriceMonthIDR: decimal.NewFromInt(450_000), PriceYearIDR: decimal.NewFromInt(4_500_000), MaxSessions: 3, Active: true},
		{ID: "pkg-enterprise", Name: "Enterprise", PriceMonthIDR: decimal.NewFromInt(1_200_000), PriceYearIDR: decimal.NewFromInt(12_000_000), MaxSessions: 10, Active: true},
	}
	for _, w := range packages {
		w.CreatedAt = now
		if err := catalog.SavePackage(ctx, nil, w); err != nil {
			log.Fatalf("seed package %q: %v", w.Name, err)
		}
		fmt.Printf("seeded package: %s (%s IDR/month)\n", w.Name, w.PriceMonthIDR)
	}

	// One sample voucher so the validate flow can be exercised immediately.
	maxDiscount := decimal.NewFromInt(100_000)
	welcome := &model.Voucher{
		ID:           uuid.NewString(),
		Code:         "WELCOME10",
		Name:         "Welcome 10%",
		Description:  "10% off your first order",
		Kind:         string(model.ScopeTotal),
		DiscountType: string(model.CalcPercentage),
		Value:        decimal.NewFromInt(10),
		MaxDiscount:  &maxDiscount,
		IsActive:     true,
		StartDate:    time.Now(),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := vouchers.Save(ctx, nil, welcome); err != nil {
		log.Fatalf("seed voucher: %v", err)
	}
	fmt.Printf("seeded voucher: %s\n", welcome.Code)

	fmt.Println("✅ Seeding complete.")
}
