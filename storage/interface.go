package storage

import (
	"context"
	"errors"
	"time"

	"polycopy/models"
)

// ErrNotPending is returned when a terminal transition targets a copy
// order that is no longer pending.
var ErrNotPending = errors.New("storage: copy order is not pending")

// DataStore defines the interface for storage backends
type DataStore interface {
	Close() error

	// Follower operations
	CreateFollower(ctx context.Context, follower *models.Follower) error
	GetFollower(ctx context.Context, id int) (*models.Follower, error)
	ListFollowers(ctx context.Context) ([]models.Follower, error)
	SetFollowerCredentials(ctx context.Context, id int, encKey, encSecret, encPassphrase string) error

	// Follow operations
	CreateFollow(ctx context.Context, follow *models.Follow) error
	GetFollow(ctx context.Context, followerID int, traderAddress string) (*models.Follow, error)
	ListActiveFollowsForTrader(ctx context.Context, traderAddress string) ([]models.Follow, error)
	ListActiveTraderAddresses(ctx context.Context) ([]string, error)
	SetFollowActive(ctx context.Context, id int, active bool) error
	IncrementFollowCopies(ctx context.Context, id int) error

	// Trade operations
	SaveTrade(ctx context.Context, trade *models.Trade) (bool, error) // false if already stored
	GetTrade(ctx context.Context, id string) (*models.Trade, error)
	LatestTradeTime(ctx context.Context, traderAddress string) (time.Time, bool, error)
	ListTradesSince(ctx context.Context, since time.Time) ([]models.Trade, error)

	// Copy order operations
	CreateCopyOrder(ctx context.Context, order *models.CopyOrder) error
	GetCopyOrder(ctx context.Context, id int) (*models.CopyOrder, error)
	HasCopyOrder(ctx context.Context, followerID int, tradeID string) (bool, error)
	ListPendingCopyOrders(ctx context.Context) ([]models.CopyOrder, error)
	ListCopyOrders(ctx context.Context, limit int) ([]models.CopyOrder, error)
	MarkCopyOrderFilled(ctx context.Context, id int, filledPrice, slippage float64, txHash string) error
	MarkCopyOrderFailed(ctx context.Context, id int, errMsg string) error
	MarkCopyOrderSkipped(ctx context.Context, id int, slippage float64, reason string) error
	CopyOrderStats(ctx context.Context) (map[string]interface{}, error)

	// Redis operations (for metrics and caching)
	GetRedisValue(ctx context.Context, key string) (string, error)
	SetRedisValue(ctx context.Context, key, value string, ttl time.Duration) error
}

// Ensure both implementations satisfy the interface
var _ DataStore = (*PostgresStore)(nil)
var _ DataStore = (*MockStore)(nil)
