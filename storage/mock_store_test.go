package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"polycopy/models"
)

func TestMockStoreSaveTradeDedup(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	trade := &models.Trade{
		ID:            "t1",
		TraderAddress: "0xABCDEF",
		MarketID:      "123",
		Side:          models.SideBuy,
		Size:          10,
		Price:         0.5,
		Timestamp:     time.Now(),
	}

	saved, err := store.SaveTrade(ctx, trade)
	if err != nil {
		t.Fatalf("SaveTrade: %v", err)
	}
	if !saved {
		t.Error("first save should report new")
	}
	if got := store.Trades["t1"].TraderAddress; got != "0xabcdef" {
		t.Errorf("address not lowercased: %q", got)
	}

	saved, err = store.SaveTrade(ctx, trade)
	if err != nil {
		t.Fatalf("SaveTrade: %v", err)
	}
	if saved {
		t.Error("second save should report duplicate")
	}
	if len(store.Trades) != 1 {
		t.Errorf("stored %d trades, want 1", len(store.Trades))
	}
}

func TestMockStoreLatestTradeTime(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	if _, found, _ := store.LatestTradeTime(ctx, "0xabc"); found {
		t.Error("no trades yet, found should be false")
	}

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"t1", "t2", "t3"} {
		store.SaveTrade(ctx, &models.Trade{
			ID:            id,
			TraderAddress: "0xABC",
			MarketID:      "m",
			Side:          models.SideBuy,
			Size:          1,
			Price:         0.5,
			Timestamp:     base.Add(time.Duration(i) * time.Minute),
		})
	}

	latest, found, err := store.LatestTradeTime(ctx, "0xAbC")
	if err != nil {
		t.Fatalf("LatestTradeTime: %v", err)
	}
	if !found {
		t.Fatal("expected trades for trader")
	}
	if want := base.Add(2 * time.Minute); !latest.Equal(want) {
		t.Errorf("latest = %v, want %v", latest, want)
	}
}

func TestMockStoreActiveTraderAddresses(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	store.CreateFollow(ctx, &models.Follow{FollowerID: 1, TraderAddress: "0xBBB", Active: true})
	store.CreateFollow(ctx, &models.Follow{FollowerID: 2, TraderAddress: "0xbbb", Active: true})
	store.CreateFollow(ctx, &models.Follow{FollowerID: 1, TraderAddress: "0xaaa", Active: true})
	store.CreateFollow(ctx, &models.Follow{FollowerID: 1, TraderAddress: "0xccc", Active: false})

	addrs, err := store.ListActiveTraderAddresses(ctx)
	if err != nil {
		t.Fatalf("ListActiveTraderAddresses: %v", err)
	}
	if len(addrs) != 2 || addrs[0] != "0xaaa" || addrs[1] != "0xbbb" {
		t.Errorf("addrs = %v, want [0xaaa 0xbbb]", addrs)
	}
}

func TestMockStoreCopyOrderTransitions(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	order := &models.CopyOrder{FollowerID: 1, OriginalTradeID: "t1", Size: 10, TargetPrice: 0.5}
	if err := store.CreateCopyOrder(ctx, order); err != nil {
		t.Fatalf("CreateCopyOrder: %v", err)
	}
	if order.Status != models.StatusPending {
		t.Fatalf("new order status = %q, want pending", order.Status)
	}

	has, err := store.HasCopyOrder(ctx, 1, "t1")
	if err != nil || !has {
		t.Fatalf("HasCopyOrder = %v, %v; want true", has, err)
	}
	if has, _ := store.HasCopyOrder(ctx, 2, "t1"); has {
		t.Error("different follower should not match")
	}

	if err := store.MarkCopyOrderFilled(ctx, order.ID, 0.52, 4.0, "0xtx"); err != nil {
		t.Fatalf("MarkCopyOrderFilled: %v", err)
	}
	got := store.CopyOrders[order.ID]
	if got.Status != models.StatusFilled || got.FilledPrice == nil || *got.FilledPrice != 0.52 {
		t.Errorf("filled order = %+v", got)
	}
	if got.FilledAt == nil {
		t.Error("FilledAt should be set")
	}

	// Terminal states absorb further transitions
	if err := store.MarkCopyOrderFailed(ctx, order.ID, "late failure"); !errors.Is(err, ErrNotPending) {
		t.Errorf("MarkCopyOrderFailed on filled order = %v, want ErrNotPending", err)
	}
	if err := store.MarkCopyOrderSkipped(ctx, order.ID, 9.0, "late skip"); !errors.Is(err, ErrNotPending) {
		t.Errorf("MarkCopyOrderSkipped on filled order = %v, want ErrNotPending", err)
	}
	if err := store.MarkCopyOrderFilled(ctx, 9999, 0.5, 0, ""); !errors.Is(err, ErrNotPending) {
		t.Errorf("unknown order = %v, want ErrNotPending", err)
	}
}

func TestMockStoreErrorInjectionOneShot(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	injected := errors.New("boom")
	store.ErrorOnNext["SaveTrade"] = injected

	trade := &models.Trade{ID: "t1", TraderAddress: "0xabc", MarketID: "m", Side: models.SideBuy, Size: 1, Price: 0.5, Timestamp: time.Now()}
	if _, err := store.SaveTrade(ctx, trade); !errors.Is(err, injected) {
		t.Fatalf("first call err = %v, want injected", err)
	}
	if _, err := store.SaveTrade(ctx, trade); err != nil {
		t.Fatalf("second call err = %v, want nil", err)
	}
	if store.Calls["SaveTrade"] != 2 {
		t.Errorf("SaveTrade calls = %d, want 2", store.Calls["SaveTrade"])
	}
}

func TestMockStoreCopyOrderStats(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	mk := func(status models.CopyOrderStatus, size, price float64) {
		o := &models.CopyOrder{FollowerID: 1, OriginalTradeID: "t", Size: size, TargetPrice: price}
		store.CreateCopyOrder(ctx, o)
		switch status {
		case models.StatusFilled:
			store.MarkCopyOrderFilled(ctx, o.ID, price, 0, "0xtx")
		case models.StatusFailed:
			store.MarkCopyOrderFailed(ctx, o.ID, "err")
		case models.StatusSkipped:
			store.MarkCopyOrderSkipped(ctx, o.ID, 9, "slippage")
		}
	}

	mk(models.StatusPending, 10, 0.5)
	mk(models.StatusFilled, 10, 0.5)
	mk(models.StatusFilled, 20, 0.25)
	mk(models.StatusFailed, 5, 0.5)
	mk(models.StatusSkipped, 5, 0.5)

	stats, err := store.CopyOrderStats(ctx)
	if err != nil {
		t.Fatalf("CopyOrderStats: %v", err)
	}
	if stats["total_orders"] != 5 || stats["pending_orders"] != 1 || stats["filled_orders"] != 2 {
		t.Errorf("counts wrong: %v", stats)
	}
	if got := stats["filled_usd"].(float64); got != 10 {
		t.Errorf("filled_usd = %v, want 10", got)
	}
}
