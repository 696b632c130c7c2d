package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"aucengine/internal/auction"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestExpirySweeperRecordsLapsedAuctions(t *testing.T) {
	repo := newStubRepo()
	registry := auction.NewRegistry("admin", 0)
	now := t0

	if _, err := registry.Create("bob", 100_000, 1, "vase", 1000, t0); err != nil {
		t.Fatalf("create: err=%v", err)
	}
	if _, err := registry.Create("carol", 200_000, 1, "clock", 5000, t0); err != nil {
		t.Fatalf("create: err=%v", err)
	}

	sweeper := &ExpirySweeper{
		Engine: registry,
		Repo:   repo,
		Now:    func() int64 { return now },
	}

	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("run: err=%v", err)
	}
	if len(repo.expiries) != 0 {
		t.Fatalf("expiries=%d want 0 before end time", len(repo.expiries))
	}

	now = t0 + 1000
	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("run: err=%v", err)
	}
	if len(repo.expiries) != 1 {
		t.Fatalf("expiries=%d want 1", len(repo.expiries))
	}
	rec := repo.expiries[0]
	if rec == nil {
		t.Fatalf("expiry record missing for auction 0")
	}
	if rec.Seller != "bob" || rec.EndsAt != t0+1000 {
		t.Fatalf("record=%+v", rec)
	}
	if rec.LastPrice != 99_000 {
		t.Fatalf("last price=%d want 99000", rec.LastPrice)
	}

	// Registry state is untouched; expiry stays a call-time condition.
	a, _ := registry.Get(0)
	if a.Status != auction.StatusActive {
		t.Fatalf("status=%q want active", a.Status)
	}
}

func TestStatsComputeCountsAndVolumes(t *testing.T) {
	repo := newStubRepo()
	registry := auction.NewRegistry("admin", 0)
	now := t0

	// sold at full price
	if _, err := registry.Create("bob", 100_000, 1, "vase", 1000, t0); err != nil {
		t.Fatalf("create: err=%v", err)
	}
	if _, err := registry.Buy(0, 100_000, "alice", t0); err != nil {
		t.Fatalf("buy: err=%v", err)
	}
	// stopped
	if _, err := registry.Create("bob", 100_000, 1, "clock", 1000, t0); err != nil {
		t.Fatalf("create: err=%v", err)
	}
	if err := registry.Stop(1, "admin"); err != nil {
		t.Fatalf("stop: err=%v", err)
	}
	// still active
	if _, err := registry.Create("carol", 50_000, 1, "lamp", 5000, t0); err != nil {
		t.Fatalf("create: err=%v", err)
	}
	// lapsed unsold
	if _, err := registry.Create("carol", 50_000, 1, "chair", 100, t0); err != nil {
		t.Fatalf("create: err=%v", err)
	}

	now = t0 + 500
	stats := &StatsService{
		Engine: registry,
		Repo:   repo,
		Now:    func() int64 { return now },
	}
	snap := stats.Compute()

	if snap.SoldCount != 1 || snap.StoppedCount != 1 || snap.ActiveCount != 1 || snap.ExpiredCount != 1 {
		t.Fatalf("counts=%+v", snap)
	}
	if !snap.SaleVolume.Equal(dec(100_000)) {
		t.Fatalf("sale volume=%s want 100000", snap.SaleVolume)
	}
	if !snap.FeeVolume.Equal(dec(10_000)) {
		t.Fatalf("fee volume=%s want 10000", snap.FeeVolume)
	}
	// one sale at its starting price, zero discount
	if !snap.AvgDiscountPct.IsZero() {
		t.Fatalf("avg discount=%s want 0", snap.AvgDiscountPct)
	}
	// 1 sold of 3 closed
	if snap.SellThroughPct.StringFixed(4) != "33.3333" {
		t.Fatalf("sell through=%s", snap.SellThroughPct)
	}

	if err := stats.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: err=%v", err)
	}
	latest, err := stats.Latest(context.Background())
	if err != nil {
		t.Fatalf("latest: err=%v", err)
	}
	if latest.SoldCount != 1 {
		t.Fatalf("latest=%+v", latest)
	}
}
