package storage

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"polycopy/models"
)

// Integration test against live Postgres and Redis. Requires
// DATABASE_URL (or the POSTGRES_* variables) and a reachable Redis.
func newIntegrationStore(t *testing.T) *PostgresStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if os.Getenv("DATABASE_URL") == "" && os.Getenv("POSTGRES_HOST") == "" {
		t.Skip("no database configured, set DATABASE_URL to run")
	}

	store, err := NewPostgres()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPostgresTradeDedupAndTransitions(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()

	// Unique per run: email and wallet carry unique constraints
	runID := time.Now().Format("20060102150405.000000000")
	digits := strings.ReplaceAll(runID, ".", "")
	wallet := "0x" + strings.Repeat("0", 40-len(digits)) + digits
	follower := models.Follower{
		Name:                "integration",
		Email:               "integration-" + runID + "@test.local",
		WalletAddress:       wallet,
		EncryptedPrivateKey: "enc",
	}
	if err := store.CreateFollower(ctx, &follower); err != nil {
		t.Fatalf("create follower: %v", err)
	}

	tradeID := "it-" + runID
	trade := models.Trade{
		ID:            tradeID,
		TraderAddress: "0x0000000000000000000000000000000000000002",
		MarketID:      "1",
		Side:          models.SideBuy,
		Size:          1,
		Price:         0.5,
		Timestamp:     time.Now().UTC(),
	}
	fresh, err := store.SaveTrade(ctx, &trade)
	if err != nil || !fresh {
		t.Fatalf("first save: fresh=%v err=%v", fresh, err)
	}
	fresh, err = store.SaveTrade(ctx, &trade)
	if err != nil || fresh {
		t.Fatalf("second save: fresh=%v err=%v, want duplicate", fresh, err)
	}

	order := models.CopyOrder{
		FollowerID:      follower.ID,
		OriginalTradeID: tradeID,
		Size:            1,
		TargetPrice:     0.5,
		Status:          models.StatusPending,
	}
	if err := store.CreateCopyOrder(ctx, &order); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := store.MarkCopyOrderFilled(ctx, order.ID, 0.52, 4.0, "0xtx"); err != nil {
		t.Fatalf("mark filled: %v", err)
	}
	if err := store.MarkCopyOrderFailed(ctx, order.ID, "late"); !errors.Is(err, ErrNotPending) {
		t.Errorf("second transition err = %v, want ErrNotPending", err)
	}

	got, err := store.GetCopyOrder(ctx, order.ID)
	if err != nil || got == nil {
		t.Fatalf("get order: %v", err)
	}
	if got.Status != models.StatusFilled || got.FilledPrice == nil || *got.FilledPrice != 0.52 {
		t.Errorf("order after transition = %+v", got)
	}
}
