package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"polycopy/api"
	"polycopy/config"
	"polycopy/models"
	"polycopy/storage"
)

var watcherNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestWatcher(store *storage.MockStore, client *api.MockMarketClient) *Watcher {
	w := NewWatcher(store, client, config.WatcherConfig{
		PollIntervalSecs: 30,
		IdleIntervalSecs: 60,
		LookbackMins:     60,
	})
	w.now = func() time.Time { return watcherNow }
	return w
}

func addFollow(t *testing.T, store *storage.MockStore, trader string) models.Follow {
	t.Helper()
	follower := models.Follower{Name: "Alice", Email: "alice@example.com", WalletAddress: "0xaaa"}
	if err := store.CreateFollower(context.Background(), &follower); err != nil {
		t.Fatalf("create follower: %v", err)
	}
	follow := models.Follow{
		FollowerID:     follower.ID,
		TraderAddress:  trader,
		CopyPercentage: 10,
		MaxTradeUSD:    100,
		MaxSlippagePct: 5,
		Active:         true,
	}
	if err := store.CreateFollow(context.Background(), &follow); err != nil {
		t.Fatalf("create follow: %v", err)
	}
	return follow
}

func TestSyncOnceIdleWhenNobodyFollowed(t *testing.T) {
	store := storage.NewMockStore()
	client := api.NewMockMarketClient()
	w := newTestWatcher(store, client)

	idle, err := w.syncOnce(context.Background())
	if err != nil {
		t.Fatalf("syncOnce: %v", err)
	}
	if !idle {
		t.Error("expected idle cycle with no active follows")
	}
	if client.Calls["GetTrades"] != 0 {
		t.Errorf("expected no trade fetches, got %d", client.Calls["GetTrades"])
	}
}

func TestSyncTraderDefaultCursor(t *testing.T) {
	store := storage.NewMockStore()
	client := api.NewMockMarketClient()
	w := newTestWatcher(store, client)

	if err := w.syncTrader(context.Background(), "0xTrader"); err != nil {
		t.Fatalf("syncTrader: %v", err)
	}

	if len(client.TradesRequests) != 1 {
		t.Fatalf("expected 1 trades request, got %d", len(client.TradesRequests))
	}
	req := client.TradesRequests[0]
	if req.UserAddress != "0xtrader" {
		t.Errorf("address not lowercased: %s", req.UserAddress)
	}
	wantAfter := watcherNow.Add(-time.Hour).Unix()
	if req.After != wantAfter {
		t.Errorf("cursor = %d, want %d (one hour before now)", req.After, wantAfter)
	}
}

func TestSyncTraderCursorFromLatestTrade(t *testing.T) {
	store := storage.NewMockStore()
	client := api.NewMockMarketClient()
	w := newTestWatcher(store, client)

	latest := watcherNow.Add(-5 * time.Minute)
	store.SaveTrade(context.Background(), &models.Trade{
		ID:            "old-trade",
		TraderAddress: "0xtrader",
		MarketID:      "123",
		Side:          models.SideBuy,
		Size:          1,
		Price:         0.5,
		Timestamp:     latest,
	})

	if err := w.syncTrader(context.Background(), "0xtrader"); err != nil {
		t.Fatalf("syncTrader: %v", err)
	}
	if got := client.TradesRequests[0].After; got != latest.Unix() {
		t.Errorf("cursor = %d, want latest stored timestamp %d", got, latest.Unix())
	}
}

func TestSyncTraderDeduplicates(t *testing.T) {
	store := storage.NewMockStore()
	client := api.NewMockMarketClient()
	client.TradesResponse = []api.ActivityTrade{
		{
			ID:      "trade-1",
			AssetID: "555",
			Side:    "buy",
			Size:    100,
			Price:   0.40,
			Title:   "Will it rain?",
		},
	}
	w := newTestWatcher(store, client)

	for i := 0; i < 2; i++ {
		if err := w.syncTrader(context.Background(), "0xtrader"); err != nil {
			t.Fatalf("syncTrader pass %d: %v", i, err)
		}
	}

	if len(store.Trades) != 1 {
		t.Fatalf("expected 1 stored trade after two passes, got %d", len(store.Trades))
	}
	trade := store.Trades["trade-1"]
	if trade.Side != models.SideBuy {
		t.Errorf("side = %s, want BUY", trade.Side)
	}
	if trade.MarketID != "555" {
		t.Errorf("market = %s, want 555", trade.MarketID)
	}
	if trade.MarketQuestion != "Will it rain?" {
		t.Errorf("question = %s", trade.MarketQuestion)
	}
}

func TestNormalizeFallbacksAndRejects(t *testing.T) {
	w := newTestWatcher(storage.NewMockStore(), api.NewMockMarketClient())

	// Natural key falls back to transaction hash
	trade, ok := w.normalize("0xt", api.ActivityTrade{
		TransactionHash: "0xhash",
		Market:          "cond-1",
		Side:            "SELL",
		Size:            5,
		Price:           0.2,
	})
	if !ok {
		t.Fatal("expected trade to normalize")
	}
	if trade.ID != "0xhash" {
		t.Errorf("id = %s, want 0xhash", trade.ID)
	}
	if trade.MarketID != "cond-1" {
		t.Errorf("market = %s, want cond-1", trade.MarketID)
	}
	if trade.Timestamp != watcherNow {
		t.Errorf("missing timestamp should default to now, got %v", trade.Timestamp)
	}

	// No identifier at all
	if _, ok := w.normalize("0xt", api.ActivityTrade{Market: "m", Side: "BUY"}); ok {
		t.Error("trade without id should be dropped")
	}

	// Unknown side
	if _, ok := w.normalize("0xt", api.ActivityTrade{ID: "x", Market: "m", Side: "REDEEM"}); ok {
		t.Error("non BUY/SELL side should be dropped")
	}
}

func TestSyncOnceIsolatesTraderErrors(t *testing.T) {
	store := storage.NewMockStore()
	client := api.NewMockMarketClient()
	w := newTestWatcher(store, client)

	addFollow(t, store, "0xaaa1")
	second := models.Follow{FollowerID: 1, TraderAddress: "0xbbb2", CopyPercentage: 10, MaxTradeUSD: 100, MaxSlippagePct: 5, Active: true}
	if err := store.CreateFollow(context.Background(), &second); err != nil {
		t.Fatalf("create follow: %v", err)
	}

	client.TradesResponse = []api.ActivityTrade{
		{ID: "t-ok", AssetID: "9", Side: "BUY", Size: 10, Price: 0.5, Timestamp: api.Timestamp(watcherNow)},
	}
	// First trader's fetch fails; the second must still be ingested
	client.ErrorOnNext["GetTrades"] = errors.New("boom")

	if _, err := w.syncOnce(context.Background()); err != nil {
		t.Fatalf("syncOnce: %v", err)
	}
	if client.Calls["GetTrades"] != 2 {
		t.Fatalf("expected both traders fetched, got %d calls", client.Calls["GetTrades"])
	}
	if len(store.Trades) != 1 {
		t.Errorf("expected surviving trader's trade stored, got %d trades", len(store.Trades))
	}
}

