package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"polycopy/api"
	"polycopy/config"
	"polycopy/models"
	"polycopy/secrets"
	"polycopy/storage"
)

// Failure causes. Each one sends a pending copy order to the failed
// state with a recognizable error message.
var (
	ErrPriceUnavailable = errors.New("current price unavailable")
	ErrSubmissionFailed = errors.New("order submission failed")
	ErrFillTimeout      = errors.New("order not filled within wait window")
)

// Executor sizes copyable trades into pending orders, then drains them
// one at a time: price check, slippage gate, sign, submit, and a single
// fill poll.
type Executor struct {
	store   storage.DataStore
	client  api.MarketClient
	cipher  secrets.Cipher
	cfg     config.ExecutorConfig
	metrics *MetricsRecorder

	running bool
	stopCh  chan struct{}
	now     func() time.Time
	wait    func(ctx context.Context, d time.Duration)
}

// NewExecutor creates a new copy order executor.
func NewExecutor(store storage.DataStore, client api.MarketClient, cipher secrets.Cipher, cfg config.ExecutorConfig) *Executor {
	return &Executor{
		store:   store,
		client:  client,
		cipher:  cipher,
		cfg:     cfg,
		metrics: NewMetricsRecorder(store),
		stopCh:  make(chan struct{}),
		now:     time.Now,
		wait:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// Start begins the execution loop in a goroutine.
func (e *Executor) Start(ctx context.Context) error {
	if e.running {
		return fmt.Errorf("executor already running")
	}
	e.running = true
	go e.run(ctx)

	log.Printf("[Executor] Started with poll=%ds, fillWait=%ds",
		e.cfg.PollIntervalSecs, e.cfg.FillWaitSecs)
	return nil
}

// Stop halts the executor.
func (e *Executor) Stop() {
	if e.running {
		close(e.stopCh)
		e.running = false
		log.Printf("[Executor] Stopped")
	}
}

func (e *Executor) run(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(e.cfg.PollIntervalSecs) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stopCh:
			return
		case <-ticker.C:
			if err := e.processPending(ctx); err != nil {
				log.Printf("[Executor] Error processing pending orders: %v", err)
			}
		}
	}
}

// processPending sizes newly copyable trades into pending orders, then
// executes every pending order sequentially, with a short pause between
// orders so submissions stay rate-limit friendly.
func (e *Executor) processPending(ctx context.Context) error {
	if err := e.planCopies(ctx); err != nil {
		log.Printf("[Executor] Error planning copies: %v", err)
	}

	orders, err := e.store.ListPendingCopyOrders(ctx)
	if err != nil {
		return fmt.Errorf("list pending orders: %w", err)
	}
	if len(orders) == 0 {
		return nil
	}

	log.Printf("[Executor] Processing %d pending orders", len(orders))
	for i, order := range orders {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := e.executeOrder(ctx, order); err != nil {
			log.Printf("[Executor] Order %d failed: %v", order.ID, err)
			msg := truncate(err.Error(), e.cfg.MaxErrorMsgLength)
			if markErr := e.store.MarkCopyOrderFailed(ctx, order.ID, msg); markErr != nil && !errors.Is(markErr, storage.ErrNotPending) {
				log.Printf("[Executor] Error marking order %d failed: %v", order.ID, markErr)
			}
			e.metrics.AddOrdersFailed(ctx, 1)
		}
		if i < len(orders)-1 {
			e.wait(ctx, time.Duration(e.cfg.OrderPauseSecs)*time.Second)
		}
	}
	return nil
}

// planCopies walks trades ingested inside the copy window and creates a
// pending copy order for every active follow that does not have one yet.
func (e *Executor) planCopies(ctx context.Context) error {
	since := e.now().Add(-time.Duration(e.cfg.CopyWindowMins) * time.Minute)
	trades, err := e.store.ListTradesSince(ctx, since)
	if err != nil {
		return fmt.Errorf("list recent trades: %w", err)
	}

	for _, trade := range trades {
		follows, err := e.store.ListActiveFollowsForTrader(ctx, trade.TraderAddress)
		if err != nil {
			log.Printf("[Executor] Error listing follows for %s: %v", trade.TraderAddress, err)
			continue
		}

		for _, follow := range follows {
			exists, err := e.store.HasCopyOrder(ctx, follow.FollowerID, trade.ID)
			if err != nil {
				log.Printf("[Executor] Error checking copy order: %v", err)
				continue
			}
			if exists {
				continue
			}

			size := CalculateCopySize(trade.Size, follow.CopyPercentage, follow.MaxTradeUSD, trade.Price)
			if size <= 0 {
				continue
			}

			order := models.CopyOrder{
				FollowerID:      follow.FollowerID,
				OriginalTradeID: trade.ID,
				Size:            size,
				TargetPrice:     trade.Price,
				Status:          models.StatusPending,
			}
			if err := e.store.CreateCopyOrder(ctx, &order); err != nil {
				log.Printf("[Executor] Error creating copy order for follower %d trade %s: %v",
					follow.FollowerID, trade.ID, err)
				continue
			}
			e.metrics.AddOrdersCreated(ctx, 1)
			log.Printf("[Executor] Copy order %d: follower=%d trade=%s size=%.2f target=%.4f",
				order.ID, follow.FollowerID, trade.ID, size, trade.Price)
		}
	}
	return nil
}

// executeOrder runs one copy order through the full pipeline. A nil
// return means the order reached filled or skipped; any error leaves it
// to the caller to record the failure.
func (e *Executor) executeOrder(ctx context.Context, order models.CopyOrder) error {
	if order.Status != models.StatusPending {
		return nil
	}

	trade, err := e.store.GetTrade(ctx, order.OriginalTradeID)
	if err != nil {
		return fmt.Errorf("load original trade: %w", err)
	}
	if trade == nil {
		return fmt.Errorf("original trade %s not found", order.OriginalTradeID)
	}

	follow, err := e.store.GetFollow(ctx, order.FollowerID, trade.TraderAddress)
	if err != nil {
		return fmt.Errorf("load follow: %w", err)
	}
	if follow == nil {
		return fmt.Errorf("follow of %s by follower %d no longer exists", trade.TraderAddress, order.FollowerID)
	}

	current, err := e.client.BestPrice(ctx, trade.MarketID, trade.Side)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPriceUnavailable, err)
	}

	slip := Slippage(order.TargetPrice, current)
	if slip > follow.MaxSlippagePct {
		log.Printf("[Executor] Order %d skipped: slippage %.2f%% > %.2f%%",
			order.ID, slip, follow.MaxSlippagePct)
		if err := e.store.MarkCopyOrderSkipped(ctx, order.ID,
			slip, fmt.Sprintf("slippage %.2f%% exceeds limit %.2f%%", slip, follow.MaxSlippagePct)); err != nil {
			return fmt.Errorf("mark skipped: %w", err)
		}
		e.metrics.AddOrdersSkipped(ctx, 1)
		return nil
	}

	follower, err := e.store.GetFollower(ctx, order.FollowerID)
	if err != nil {
		return fmt.Errorf("load follower: %w", err)
	}
	if follower == nil {
		return fmt.Errorf("follower %d not found", order.FollowerID)
	}

	keyHex, err := e.cipher.Decrypt(follower.EncryptedPrivateKey)
	if err != nil {
		return fmt.Errorf("decrypt signing key: %w", err)
	}
	key, err := secrets.ParsePrivateKey(keyHex)
	if err != nil {
		return err
	}
	maker := crypto.PubkeyToAddress(key.PublicKey)

	if follower.HasAPICredentials() {
		apiKey, err := e.cipher.Decrypt(follower.EncryptedAPIKey)
		if err != nil {
			return fmt.Errorf("decrypt api key: %w", err)
		}
		apiSecret, err := e.cipher.Decrypt(follower.EncryptedAPISecret)
		if err != nil {
			return fmt.Errorf("decrypt api secret: %w", err)
		}
		passphrase, err := e.cipher.Decrypt(follower.EncryptedAPIPassphrase)
		if err != nil {
			return fmt.Errorf("decrypt api passphrase: %w", err)
		}
		e.client.SetCredentials(api.Credentials{Key: apiKey, Secret: apiSecret, Passphrase: passphrase})
	} else {
		log.Printf("[Executor] Follower %d has no API credentials, submitting unauthenticated", follower.ID)
		e.client.ClearCredentials()
	}

	now := e.now()
	nonce := now.UnixMilli()
	expiration := now.Add(time.Hour).Unix()

	hash, err := api.HashOrder(api.OrderArgs{
		Maker:      maker,
		TokenID:    trade.MarketID,
		Size:       order.Size,
		Price:      current,
		Nonce:      nonce,
		Expiration: expiration,
	})
	if err != nil {
		return fmt.Errorf("hash order: %w", err)
	}
	signature, err := api.SignOrderHash(hash, key)
	if err != nil {
		return err
	}

	resp, err := e.client.PlaceOrder(ctx, api.PlaceOrderRequest{
		TokenID:    trade.MarketID,
		Price:      current,
		Size:       order.Size,
		Side:       string(trade.Side),
		Signature:  signature,
		Signer:     maker.Hex(),
		Nonce:      nonce,
		Expiration: expiration,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	if resp.ErrorMsg != "" {
		return fmt.Errorf("%w: %s", ErrSubmissionFailed, resp.ErrorMsg)
	}
	if resp.OrderID == "" {
		return fmt.Errorf("%w: no order id returned", ErrSubmissionFailed)
	}
	log.Printf("[Executor] Order %d submitted as %s (%.2f @ %.4f)",
		order.ID, resp.OrderID, order.Size, current)

	// One fill check after a short wait; anything still open gets cancelled
	e.wait(ctx, time.Duration(e.cfg.FillWaitSecs)*time.Second)

	status, err := e.client.GetOrder(ctx, resp.OrderID)
	if err != nil {
		// The order may still be live; do not leave it on the book
		if cancelErr := e.client.CancelOrder(ctx, resp.OrderID); cancelErr != nil {
			log.Printf("[Executor] Error cancelling order %s: %v", resp.OrderID, cancelErr)
		}
		return fmt.Errorf("poll order %s: %w", resp.OrderID, err)
	}

	if !isFilled(status.Status) {
		if cancelErr := e.client.CancelOrder(ctx, resp.OrderID); cancelErr != nil {
			log.Printf("[Executor] Error cancelling order %s: %v", resp.OrderID, cancelErr)
		}
		return fmt.Errorf("%w: status %q", ErrFillTimeout, status.Status)
	}

	if err := e.store.MarkCopyOrderFilled(ctx, order.ID, current, slip, status.TransactionHash); err != nil {
		return fmt.Errorf("mark filled: %w", err)
	}
	if err := e.store.IncrementFollowCopies(ctx, follow.ID); err != nil {
		log.Printf("[Executor] Error incrementing copies for follow %d: %v", follow.ID, err)
	}
	e.metrics.AddOrdersFilled(ctx, 1)

	log.Printf("[Executor] Order %d filled at %.4f (slippage %.2f%%)", order.ID, current, slip)
	return nil
}

func isFilled(status string) bool {
	return strings.EqualFold(status, "filled")
}

func truncate(s string, max int) string {
	if max <= 0 {
		max = 500
	}
	if len(s) <= max {
		return s
	}
	return s[:max]
}
