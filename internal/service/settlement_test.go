package service

import (
	"context"
	"errors"
	"testing"

	"aucengine/internal/auction"
	"aucengine/internal/events"
	"aucengine/internal/ledger"
)

const t0 = int64(1_700_000_000)

type settlementFixture struct {
	svc  *SettlementService
	repo *stubRepo
	book *ledger.Book
	now  int64
}

func newSettlementFixture() *settlementFixture {
	repo := newStubRepo()
	book := ledger.NewBook(repo, nil)
	f := &settlementFixture{
		repo: repo,
		book: book,
		now:  t0,
	}
	f.svc = &SettlementService{
		Engine: auction.NewRegistry("admin", 0),
		Book:   book,
		Repo:   repo,
		Hub:    events.NewHub(4, nil),
		Now:    func() int64 { return f.now },
	}
	return f
}

func (f *settlementFixture) balance(t *testing.T, identity string) uint64 {
	t.Helper()
	b, err := f.book.Balance(context.Background(), identity)
	if err != nil {
		t.Fatalf("balance %s: err=%v", identity, err)
	}
	return b
}

func TestBuySettlesAndRoutesFunds(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	if err := f.book.Deposit(ctx, "alice", 150_000, "deposit"); err != nil {
		t.Fatalf("deposit: err=%v", err)
	}
	a, err := f.svc.CreateAuction(ctx, "bob", CreateParams{
		StartingPrice: 100_000,
		DiscountRate:  1,
		Item:          "rare vase",
		Duration:      1000,
	})
	if err != nil {
		t.Fatalf("create: err=%v", err)
	}

	ch, cancel := f.svc.Hub.Subscribe()
	defer cancel()

	f.now = t0 + 10
	receipt, err := f.svc.Buy(ctx, a.ID, 120_000, "alice")
	if err != nil {
		t.Fatalf("buy: err=%v", err)
	}
	if receipt.Price != 99_990 {
		t.Fatalf("price=%d want 99990", receipt.Price)
	}
	if receipt.Fee != 9_999 {
		t.Fatalf("fee=%d want 9999", receipt.Fee)
	}
	if receipt.SellerProceeds != 89_991 {
		t.Fatalf("proceeds=%d want 89991", receipt.SellerProceeds)
	}
	if receipt.Refund != 20_010 {
		t.Fatalf("refund=%d want 20010", receipt.Refund)
	}
	if receipt.TransferStatus != "completed" {
		t.Fatalf("transfer status=%q", receipt.TransferStatus)
	}

	if got := f.balance(t, "alice"); got != 50_010 {
		t.Fatalf("buyer balance=%d want 50010", got)
	}
	if got := f.balance(t, "bob"); got != 89_991 {
		t.Fatalf("seller balance=%d want 89991", got)
	}
	if got := f.balance(t, "admin"); got != 9_999 {
		t.Fatalf("operator balance=%d want 9999", got)
	}

	rec, _ := f.repo.GetAuctionRecord(ctx, a.ID)
	if rec == nil || rec.Status != string(auction.StatusSold) {
		t.Fatalf("mirror record=%+v", rec)
	}
	if rec.Buyer != "alice" || rec.FinalPrice != 99_990 {
		t.Fatalf("mirror buyer=%q final=%d", rec.Buyer, rec.FinalPrice)
	}
	if len(f.repo.receipts) != 1 {
		t.Fatalf("receipts=%d want 1", len(f.repo.receipts))
	}

	select {
	case ev := <-ch:
		if ev.AuctionID != a.ID || ev.FinalPrice != 99_990 || ev.Buyer != "alice" {
			t.Fatalf("event=%+v", ev)
		}
	default:
		t.Fatalf("no event published")
	}
}

func TestBuyInsufficientFundsLeavesAuctionOpen(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	a, err := f.svc.CreateAuction(ctx, "bob", CreateParams{
		StartingPrice: 100_000, DiscountRate: 1, Item: "vase", Duration: 1000,
	})
	if err != nil {
		t.Fatalf("create: err=%v", err)
	}
	_, err = f.svc.Buy(ctx, a.ID, 100_000, "alice")
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("err=%v want insufficient funds", err)
	}
	got, _ := f.svc.Engine.Get(a.ID)
	if got.Status != auction.StatusActive {
		t.Fatalf("status=%q want active", got.Status)
	}
	if len(f.repo.receipts) != 0 {
		t.Fatalf("receipts=%d want 0", len(f.repo.receipts))
	}
}

func TestBuyEngineRejectionReversesDebit(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	if err := f.book.Deposit(ctx, "alice", 500, "deposit"); err != nil {
		t.Fatalf("deposit: err=%v", err)
	}
	a, err := f.svc.CreateAuction(ctx, "bob", CreateParams{
		StartingPrice: 100_000, DiscountRate: 1, Item: "vase", Duration: 1000,
	})
	if err != nil {
		t.Fatalf("create: err=%v", err)
	}
	_, err = f.svc.Buy(ctx, a.ID, 500, "alice")
	if !errors.Is(err, auction.ErrInsufficientValue) {
		t.Fatalf("err=%v want insufficient value", err)
	}
	if got := f.balance(t, "alice"); got != 500 {
		t.Fatalf("buyer balance=%d want 500 after reversal", got)
	}
	got, _ := f.svc.Engine.Get(a.ID)
	if got.Status != auction.StatusActive {
		t.Fatalf("status=%q want active", got.Status)
	}
}

func TestSecondBuyRestoresFunds(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	_ = f.book.Deposit(ctx, "alice", 200_000, "deposit")
	_ = f.book.Deposit(ctx, "carol", 200_000, "deposit")
	a, err := f.svc.CreateAuction(ctx, "bob", CreateParams{
		StartingPrice: 100_000, DiscountRate: 1, Item: "vase", Duration: 1000,
	})
	if err != nil {
		t.Fatalf("create: err=%v", err)
	}
	if _, err := f.svc.Buy(ctx, a.ID, 100_000, "alice"); err != nil {
		t.Fatalf("first buy: err=%v", err)
	}
	_, err = f.svc.Buy(ctx, a.ID, 100_000, "carol")
	if !errors.Is(err, auction.ErrStopped) {
		t.Fatalf("err=%v want stopped", err)
	}
	if got := f.balance(t, "carol"); got != 200_000 {
		t.Fatalf("second buyer balance=%d want 200000", got)
	}
}

func TestBuyTransferFailureKeepsSale(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	_ = f.book.Deposit(ctx, "alice", 200_000, "deposit")
	a, err := f.svc.CreateAuction(ctx, "bob", CreateParams{
		StartingPrice: 100_000, DiscountRate: 1, Item: "vase", Duration: 1000,
	})
	if err != nil {
		t.Fatalf("create: err=%v", err)
	}
	f.repo.failCreditFor = "bob"

	receipt, err := f.svc.Buy(ctx, a.ID, 100_000, "alice")
	if err == nil {
		t.Fatalf("expected transfer error")
	}
	if receipt == nil {
		t.Fatalf("receipt missing despite committed sale")
	}
	if receipt.TransferStatus != "transfer_failed" {
		t.Fatalf("transfer status=%q", receipt.TransferStatus)
	}
	if receipt.FailureReason == "" {
		t.Fatalf("failure reason empty")
	}
	got, _ := f.svc.Engine.Get(a.ID)
	if got.Status != auction.StatusSold {
		t.Fatalf("status=%q want sold", got.Status)
	}
}

func TestStopMirrorsRecord(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	a, err := f.svc.CreateAuction(ctx, "bob", CreateParams{
		StartingPrice: 100_000, DiscountRate: 1, Item: "vase", Duration: 1000,
	})
	if err != nil {
		t.Fatalf("create: err=%v", err)
	}
	if err := f.svc.Stop(ctx, a.ID, "admin"); err != nil {
		t.Fatalf("stop: err=%v", err)
	}
	rec, _ := f.repo.GetAuctionRecord(ctx, a.ID)
	if rec == nil || rec.Status != string(auction.StatusStopped) {
		t.Fatalf("mirror record=%+v", rec)
	}
	if err := f.svc.Stop(ctx, a.ID, "bob"); !errors.Is(err, auction.ErrNotAuthorized) {
		t.Fatalf("err=%v want not authorized", err)
	}
}

func TestDefaultDurationSubstitution(t *testing.T) {
	f := newSettlementFixture()
	f.svc.DefaultDuration = 3600
	ctx := context.Background()

	a, err := f.svc.CreateAuction(ctx, "bob", CreateParams{
		StartingPrice: 100_000, DiscountRate: 1, Item: "vase",
	})
	if err != nil {
		t.Fatalf("create: err=%v", err)
	}
	if a.EndsAt != t0+3600 {
		t.Fatalf("endsAt=%d want %d", a.EndsAt, t0+3600)
	}
}

func TestRehydrateToleratesMissingMirrorRow(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	// Mirror rows 0 and 2 survive; row 1's write was lost.
	for _, id := range []uint64{0, 2} {
		a := auction.Auction{
			ID: id, Seller: "bob", StartingPrice: 100_000, DiscountRate: 1,
			Item: "vase", StartAt: t0, EndsAt: t0 + 1000, Status: auction.StatusActive,
		}
		if err := f.repo.UpsertAuctionRecord(ctx, recordFromAuction(a)); err != nil {
			t.Fatalf("seed: err=%v", err)
		}
	}

	fresh := &SettlementService{
		Engine: auction.NewRegistry("admin", 0),
		Book:   f.book,
		Repo:   f.repo,
		Now:    func() int64 { return f.now },
	}
	if err := fresh.Rehydrate(ctx); err != nil {
		t.Fatalf("rehydrate: err=%v", err)
	}
	if fresh.Engine.Len() != 3 {
		t.Fatalf("len=%d want 3", fresh.Engine.Len())
	}
	gap, err := fresh.Engine.Get(1)
	if err != nil {
		t.Fatalf("get gap: err=%v", err)
	}
	if gap.Status != auction.StatusStopped {
		t.Fatalf("gap status=%q want stopped", gap.Status)
	}
	survivor, _ := fresh.Engine.Get(2)
	if survivor.Item != "vase" || survivor.Status != auction.StatusActive {
		t.Fatalf("survivor=%+v", survivor)
	}
}

func TestRehydrateRestoresArena(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	_, err := f.svc.CreateAuction(ctx, "bob", CreateParams{
		StartingPrice: 100_000, DiscountRate: 1, Item: "vase", Duration: 1000,
	})
	if err != nil {
		t.Fatalf("create: err=%v", err)
	}
	_, err = f.svc.CreateAuction(ctx, "carol", CreateParams{
		StartingPrice: 50_000, DiscountRate: 2, Item: "clock", Duration: 1000,
	})
	if err != nil {
		t.Fatalf("create: err=%v", err)
	}

	fresh := &SettlementService{
		Engine: auction.NewRegistry("admin", 0),
		Book:   f.book,
		Repo:   f.repo,
		Now:    func() int64 { return f.now },
	}
	if err := fresh.Rehydrate(ctx); err != nil {
		t.Fatalf("rehydrate: err=%v", err)
	}
	if fresh.Engine.Len() != 2 {
		t.Fatalf("len=%d want 2", fresh.Engine.Len())
	}
	a, err := fresh.Engine.Get(1)
	if err != nil {
		t.Fatalf("get: err=%v", err)
	}
	if a.Seller != "carol" || a.StartingPrice != 50_000 {
		t.Fatalf("restored=%+v", a)
	}
}
