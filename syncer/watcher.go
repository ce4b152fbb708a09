// Package syncer contains the trade ingestion and copy execution loops.
package syncer

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"polycopy/api"
	"polycopy/config"
	"polycopy/models"
	"polycopy/storage"
)

// Watcher polls the activity feed of every followed trader and stores
// new trades for the executor to copy.
type Watcher struct {
	store   storage.DataStore
	client  api.MarketClient
	cfg     config.WatcherConfig
	metrics *MetricsRecorder

	running bool
	stopCh  chan struct{}
	now     func() time.Time
}

// NewWatcher creates a new trade watcher.
func NewWatcher(store storage.DataStore, client api.MarketClient, cfg config.WatcherConfig) *Watcher {
	return &Watcher{
		store:   store,
		client:  client,
		cfg:     cfg,
		metrics: NewMetricsRecorder(store),
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}
}

// Start begins the polling loop in a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	if w.running {
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	go w.run(ctx)

	log.Printf("[Watcher] Started with poll=%ds, idle=%ds, lookback=%dm",
		w.cfg.PollIntervalSecs, w.cfg.IdleIntervalSecs, w.cfg.LookbackMins)
	return nil
}

// Stop halts the watcher.
func (w *Watcher) Stop() {
	if w.running {
		close(w.stopCh)
		w.running = false
		log.Printf("[Watcher] Stopped")
	}
}

func (w *Watcher) run(ctx context.Context) {
	for {
		interval := time.Duration(w.cfg.PollIntervalSecs) * time.Second
		if idle, err := w.syncOnce(ctx); err != nil {
			log.Printf("[Watcher] Sync error: %v", err)
		} else if idle {
			interval = time.Duration(w.cfg.IdleIntervalSecs) * time.Second
		}

		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-time.After(interval):
		}
	}
}

// syncOnce ingests trades for every followed trader. Returns true when
// nobody is being followed and the loop should back off.
func (w *Watcher) syncOnce(ctx context.Context) (bool, error) {
	addresses, err := w.store.ListActiveTraderAddresses(ctx)
	if err != nil {
		return false, fmt.Errorf("list traders: %w", err)
	}
	if len(addresses) == 0 {
		return true, nil
	}

	// One trader failing must not block the others
	for _, address := range addresses {
		if err := w.syncTrader(ctx, address); err != nil {
			log.Printf("[Watcher] Error syncing %s: %v", address, err)
		}
	}
	return false, nil
}

// syncTrader fetches and stores new trades for a single trader. The
// cursor is the latest stored execution timestamp, or one lookback
// period ago when the trader has no stored trades yet.
func (w *Watcher) syncTrader(ctx context.Context, address string) error {
	address = strings.ToLower(address)

	cursor, ok, err := w.store.LatestTradeTime(ctx, address)
	if err != nil {
		return fmt.Errorf("latest trade time: %w", err)
	}
	if !ok {
		cursor = w.now().Add(-time.Duration(w.cfg.LookbackMins) * time.Minute)
	}

	activity, err := w.client.GetTrades(ctx, address, cursor.Unix())
	if err != nil {
		return fmt.Errorf("fetch trades: %w", err)
	}

	inserted := 0
	for _, raw := range activity {
		trade, ok := w.normalize(address, raw)
		if !ok {
			continue
		}
		fresh, err := w.store.SaveTrade(ctx, &trade)
		if err != nil {
			log.Printf("[Watcher] Error saving trade %s: %v", trade.ID, err)
			continue
		}
		if fresh {
			inserted++
			log.Printf("[Watcher] New trade %s: %s %s %.2f @ %.4f (%s)",
				trade.ID, address, trade.Side, trade.Size, trade.Price, trade.MarketQuestion)
		}
	}

	if inserted > 0 {
		w.metrics.AddTradesIngested(ctx, inserted)
	}
	return nil
}

// normalize converts a raw activity record into a trade row. Records
// with no resolvable identifier or market are dropped.
func (w *Watcher) normalize(address string, raw api.ActivityTrade) (models.Trade, bool) {
	id := raw.TradeID()
	marketID := raw.MarketID()
	if id == "" || marketID == "" {
		return models.Trade{}, false
	}

	side := models.Side(strings.ToUpper(raw.Side))
	if side != models.SideBuy && side != models.SideSell {
		return models.Trade{}, false
	}

	return models.Trade{
		ID:             id,
		TraderAddress:  address,
		MarketID:       marketID,
		MarketQuestion: raw.Question(),
		Side:           side,
		Size:           raw.Size.Float64(),
		Price:          raw.Price.Float64(),
		Timestamp:      raw.Timestamp.Time(w.now()),
	}, true
}

