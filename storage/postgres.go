package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"polycopy/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// PostgresStore wraps PostgreSQL persistence with Redis caching
type PostgresStore struct {
	pool  *pgxpool.Pool
	redis *redis.Client
}

// NewPostgres creates a new PostgreSQL store with connection pooling and Redis cache
func NewPostgres() (*PostgresStore, error) {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		host := getEnv("POSTGRES_HOST", "localhost")
		port := getEnv("POSTGRES_PORT", "5432")
		user := getEnv("POSTGRES_USER", "polycopy")
		password := getEnv("POSTGRES_PASSWORD", "polycopy123")
		dbname := getEnv("POSTGRES_DB", "polycopy")
		connStr = fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, password, host, port, dbname)
	}

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	config.MaxConns = 20
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	// Keep slow queries from hanging the executor loop
	config.ConnConfig.RuntimeParams["statement_timeout"] = "30000"
	config.ConnConfig.RuntimeParams["lock_timeout"] = "10000"

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	redisHost := getEnv("REDIS_HOST", "localhost")
	redisPort := getEnv("REDIS_PORT", "6379")
	redisPassword := getEnv("REDIS_PASSWORD", "")

	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", redisHost, redisPort),
		Password:     redisPassword,
		DB:           0,
		PoolSize:     20,
		MinIdleConns: 2,
		MaxRetries:   3,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	store := &PostgresStore{pool: pool, redis: rdb}
	if err := store.runMigrations(context.Background()); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Close releases database connections
func (s *PostgresStore) Close() error {
	if s.redis != nil {
		s.redis.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS followers (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		wallet_address TEXT NOT NULL UNIQUE,
		encrypted_private_key TEXT NOT NULL DEFAULT '',
		encrypted_api_key TEXT NOT NULL DEFAULT '',
		encrypted_api_secret TEXT NOT NULL DEFAULT '',
		encrypted_api_passphrase TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS follows (
		id SERIAL PRIMARY KEY,
		follower_id INTEGER NOT NULL REFERENCES followers(id) ON DELETE CASCADE,
		trader_address TEXT NOT NULL,
		copy_percentage DOUBLE PRECISION NOT NULL,
		max_trade_usd DOUBLE PRECISION NOT NULL,
		max_slippage_pct DOUBLE PRECISION NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		total_copies INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (follower_id, trader_address)
	);
	CREATE INDEX IF NOT EXISTS idx_follows_trader ON follows(trader_address) WHERE active;

	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		trader_address TEXT NOT NULL,
		market_id TEXT NOT NULL,
		market_question TEXT,
		side TEXT NOT NULL,
		size DOUBLE PRECISION NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_trades_trader ON trades(trader_address, timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_trades_created ON trades(created_at DESC);

	CREATE TABLE IF NOT EXISTS copy_orders (
		id SERIAL PRIMARY KEY,
		follower_id INTEGER NOT NULL REFERENCES followers(id) ON DELETE CASCADE,
		original_trade_id TEXT NOT NULL REFERENCES trades(id),
		size DOUBLE PRECISION NOT NULL,
		target_price DOUBLE PRECISION NOT NULL,
		filled_price DOUBLE PRECISION,
		slippage DOUBLE PRECISION,
		status TEXT NOT NULL DEFAULT 'pending',
		error_message TEXT NOT NULL DEFAULT '',
		tx_hash TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		filled_at TIMESTAMPTZ,
		UNIQUE (follower_id, original_trade_id)
	);
	CREATE INDEX IF NOT EXISTS idx_copy_orders_status ON copy_orders(status);
	`

	_, err := s.pool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

// ============================================================================
// FOLLOWERS
// ============================================================================

// CreateFollower inserts a follower and populates its ID and CreatedAt.
func (s *PostgresStore) CreateFollower(ctx context.Context, follower *models.Follower) error {
	follower.WalletAddress = strings.ToLower(follower.WalletAddress)
	err := s.pool.QueryRow(ctx, `
		INSERT INTO followers (name, email, wallet_address, encrypted_private_key,
			encrypted_api_key, encrypted_api_secret, encrypted_api_passphrase)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, follower.Name, follower.Email, follower.WalletAddress, follower.EncryptedPrivateKey,
		follower.EncryptedAPIKey, follower.EncryptedAPISecret, follower.EncryptedAPIPassphrase,
	).Scan(&follower.ID, &follower.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create follower: %w", err)
	}
	return nil
}

// GetFollower returns a follower by ID, or nil if not found.
func (s *PostgresStore) GetFollower(ctx context.Context, id int) (*models.Follower, error) {
	var f models.Follower
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email, wallet_address, encrypted_private_key,
			   encrypted_api_key, encrypted_api_secret, encrypted_api_passphrase, created_at
		FROM followers WHERE id = $1`, id).Scan(
		&f.ID, &f.Name, &f.Email, &f.WalletAddress, &f.EncryptedPrivateKey,
		&f.EncryptedAPIKey, &f.EncryptedAPISecret, &f.EncryptedAPIPassphrase, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

// ListFollowers returns all followers ordered by creation time.
func (s *PostgresStore) ListFollowers(ctx context.Context) ([]models.Follower, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, email, wallet_address, encrypted_private_key,
			   encrypted_api_key, encrypted_api_secret, encrypted_api_passphrase, created_at
		FROM followers
		ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	followers := make([]models.Follower, 0)
	for rows.Next() {
		var f models.Follower
		if err := rows.Scan(&f.ID, &f.Name, &f.Email, &f.WalletAddress, &f.EncryptedPrivateKey,
			&f.EncryptedAPIKey, &f.EncryptedAPISecret, &f.EncryptedAPIPassphrase, &f.CreatedAt); err != nil {
			return nil, err
		}
		followers = append(followers, f)
	}
	return followers, rows.Err()
}

// SetFollowerCredentials replaces the encrypted exchange API credentials for a follower.
func (s *PostgresStore) SetFollowerCredentials(ctx context.Context, id int, encKey, encSecret, encPassphrase string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE followers
		SET encrypted_api_key = $2, encrypted_api_secret = $3, encrypted_api_passphrase = $4
		WHERE id = $1
	`, id, encKey, encSecret, encPassphrase)
	if err != nil {
		return fmt.Errorf("postgres: set credentials: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("follower not found: %d", id)
	}
	return nil
}

// ============================================================================
// FOLLOWS
// ============================================================================

// CreateFollow inserts a follow relationship and populates its ID and CreatedAt.
func (s *PostgresStore) CreateFollow(ctx context.Context, follow *models.Follow) error {
	follow.TraderAddress = strings.ToLower(follow.TraderAddress)
	err := s.pool.QueryRow(ctx, `
		INSERT INTO follows (follower_id, trader_address, copy_percentage, max_trade_usd, max_slippage_pct, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, follow.FollowerID, follow.TraderAddress, follow.CopyPercentage,
		follow.MaxTradeUSD, follow.MaxSlippagePct, follow.Active,
	).Scan(&follow.ID, &follow.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create follow: %w", err)
	}

	s.redis.Del(ctx, "traders:active")
	return nil
}

// GetFollow returns the follow for (follower, trader), or nil if none exists.
func (s *PostgresStore) GetFollow(ctx context.Context, followerID int, traderAddress string) (*models.Follow, error) {
	var f models.Follow
	err := s.pool.QueryRow(ctx, `
		SELECT id, follower_id, trader_address, copy_percentage, max_trade_usd,
			   max_slippage_pct, active, total_copies, created_at
		FROM follows
		WHERE follower_id = $1 AND trader_address = $2
	`, followerID, strings.ToLower(traderAddress)).Scan(
		&f.ID, &f.FollowerID, &f.TraderAddress, &f.CopyPercentage, &f.MaxTradeUSD,
		&f.MaxSlippagePct, &f.Active, &f.TotalCopies, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

// ListActiveFollowsForTrader returns all active follows of a trader address.
func (s *PostgresStore) ListActiveFollowsForTrader(ctx context.Context, traderAddress string) ([]models.Follow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, follower_id, trader_address, copy_percentage, max_trade_usd,
			   max_slippage_pct, active, total_copies, created_at
		FROM follows
		WHERE trader_address = $1 AND active
		ORDER BY id
	`, strings.ToLower(traderAddress))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	follows := make([]models.Follow, 0)
	for rows.Next() {
		var f models.Follow
		if err := rows.Scan(&f.ID, &f.FollowerID, &f.TraderAddress, &f.CopyPercentage,
			&f.MaxTradeUSD, &f.MaxSlippagePct, &f.Active, &f.TotalCopies, &f.CreatedAt); err != nil {
			return nil, err
		}
		follows = append(follows, f)
	}
	return follows, rows.Err()
}

// ListActiveTraderAddresses returns the distinct trader addresses with at
// least one active follow. Cached in Redis for 30 seconds.
func (s *PostgresStore) ListActiveTraderAddresses(ctx context.Context) ([]string, error) {
	const cacheKey = "traders:active"
	if cached, err := s.redis.SMembers(ctx, cacheKey).Result(); err == nil && len(cached) > 0 {
		return cached, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT trader_address FROM follows WHERE active ORDER BY trader_address`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	addresses := make([]string, 0)
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, err
		}
		addresses = append(addresses, addr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(addresses) > 0 {
		s.redis.SAdd(ctx, cacheKey, addresses)
		s.redis.Expire(ctx, cacheKey, 30*time.Second)
	}

	return addresses, nil
}

// SetFollowActive toggles a follow on or off.
func (s *PostgresStore) SetFollowActive(ctx context.Context, id int, active bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE follows SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("postgres: set follow active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("follow not found: %d", id)
	}
	s.redis.Del(ctx, "traders:active")
	return nil
}

// IncrementFollowCopies bumps the copy counter after a successful fill.
func (s *PostgresStore) IncrementFollowCopies(ctx context.Context, id int) error {
	_, err := s.pool.Exec(ctx, `UPDATE follows SET total_copies = total_copies + 1 WHERE id = $1`, id)
	return err
}

// ============================================================================
// TRADES
// ============================================================================

// SaveTrade inserts a trade if its ID has not been seen before. Returns
// true when a new row was written.
func (s *PostgresStore) SaveTrade(ctx context.Context, trade *models.Trade) (bool, error) {
	trade.TraderAddress = strings.ToLower(trade.TraderAddress)
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO trades (id, trader_address, market_id, market_question, side, size, price, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`, trade.ID, trade.TraderAddress, trade.MarketID, trade.MarketQuestion,
		string(trade.Side), trade.Size, trade.Price, trade.Timestamp)
	if err != nil {
		return false, fmt.Errorf("postgres: save trade: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetTrade returns a trade by its exchange-assigned ID, or nil if unknown.
func (s *PostgresStore) GetTrade(ctx context.Context, id string) (*models.Trade, error) {
	var t models.Trade
	var side string
	err := s.pool.QueryRow(ctx, `
		SELECT id, trader_address, market_id, market_question, side, size, price, timestamp, created_at
		FROM trades WHERE id = $1`, id).Scan(
		&t.ID, &t.TraderAddress, &t.MarketID, &t.MarketQuestion, &side,
		&t.Size, &t.Price, &t.Timestamp, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	t.Side = models.Side(side)
	return &t, nil
}

// LatestTradeTime returns the most recent execution timestamp stored for a
// trader. The bool is false when no trades are stored yet.
func (s *PostgresStore) LatestTradeTime(ctx context.Context, traderAddress string) (time.Time, bool, error) {
	var ts *time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT MAX(timestamp) FROM trades WHERE trader_address = $1
	`, strings.ToLower(traderAddress)).Scan(&ts)
	if err != nil {
		return time.Time{}, false, err
	}
	if ts == nil {
		return time.Time{}, false, nil
	}
	return *ts, true, nil
}

// ListTradesSince returns trades ingested after the given instant, oldest
// first. Ordering follows ingestion time so replays are deterministic.
func (s *PostgresStore) ListTradesSince(ctx context.Context, since time.Time) ([]models.Trade, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, trader_address, market_id, market_question, side, size, price, timestamp, created_at
		FROM trades
		WHERE created_at >= $1
		ORDER BY created_at
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trades := make([]models.Trade, 0)
	for rows.Next() {
		var t models.Trade
		var side string
		if err := rows.Scan(&t.ID, &t.TraderAddress, &t.MarketID, &t.MarketQuestion,
			&side, &t.Size, &t.Price, &t.Timestamp, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Side = models.Side(side)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// ============================================================================
// COPY ORDERS
// ============================================================================

// CreateCopyOrder inserts a pending copy order and populates ID and CreatedAt.
func (s *PostgresStore) CreateCopyOrder(ctx context.Context, order *models.CopyOrder) error {
	if order.Status == "" {
		order.Status = models.StatusPending
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO copy_orders (follower_id, original_trade_id, size, target_price, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, order.FollowerID, order.OriginalTradeID, order.Size, order.TargetPrice, string(order.Status),
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create copy order: %w", err)
	}
	return nil
}

// GetCopyOrder returns a copy order by ID, or nil if not found.
func (s *PostgresStore) GetCopyOrder(ctx context.Context, id int) (*models.CopyOrder, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, follower_id, original_trade_id, size, target_price, filled_price, slippage,
			   status, error_message, tx_hash, created_at, filled_at
		FROM copy_orders WHERE id = $1`, id)
	order, err := scanCopyOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return order, nil
}

// HasCopyOrder reports whether any copy order exists for (follower, trade).
func (s *PostgresStore) HasCopyOrder(ctx context.Context, followerID int, tradeID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM copy_orders WHERE follower_id = $1 AND original_trade_id = $2
		)`, followerID, tradeID).Scan(&exists)
	return exists, err
}

// ListPendingCopyOrders returns all pending copy orders, oldest first.
func (s *PostgresStore) ListPendingCopyOrders(ctx context.Context) ([]models.CopyOrder, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, follower_id, original_trade_id, size, target_price, filled_price, slippage,
			   status, error_message, tx_hash, created_at, filled_at
		FROM copy_orders
		WHERE status = 'pending'
		ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return collectCopyOrders(rows)
}

// ListCopyOrders returns the most recent copy orders.
func (s *PostgresStore) ListCopyOrders(ctx context.Context, limit int) ([]models.CopyOrder, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, follower_id, original_trade_id, size, target_price, filled_price, slippage,
			   status, error_message, tx_hash, created_at, filled_at
		FROM copy_orders
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return collectCopyOrders(rows)
}

// MarkCopyOrderFilled transitions a pending order to filled. Returns
// ErrNotPending if the order already reached a terminal state.
func (s *PostgresStore) MarkCopyOrderFilled(ctx context.Context, id int, filledPrice, slippage float64, txHash string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE copy_orders
		SET status = 'filled', filled_price = $2, slippage = $3, tx_hash = $4, filled_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id, filledPrice, slippage, txHash)
	if err != nil {
		return fmt.Errorf("postgres: mark filled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotPending
	}
	return nil
}

// MarkCopyOrderFailed transitions a pending order to failed.
func (s *PostgresStore) MarkCopyOrderFailed(ctx context.Context, id int, errMsg string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE copy_orders
		SET status = 'failed', error_message = $2
		WHERE id = $1 AND status = 'pending'
	`, id, errMsg)
	if err != nil {
		return fmt.Errorf("postgres: mark failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotPending
	}
	return nil
}

// MarkCopyOrderSkipped transitions a pending order to skipped, recording
// the slippage that triggered the skip.
func (s *PostgresStore) MarkCopyOrderSkipped(ctx context.Context, id int, slippage float64, reason string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE copy_orders
		SET status = 'skipped', slippage = $2, error_message = $3
		WHERE id = $1 AND status = 'pending'
	`, id, slippage, reason)
	if err != nil {
		return fmt.Errorf("postgres: mark skipped: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotPending
	}
	return nil
}

// CopyOrderStats returns aggregate counts and volume across copy orders.
func (s *PostgresStore) CopyOrderStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total, pending, filled, failed, skipped int
	var filledUSD float64
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'filled'),
			COUNT(*) FILTER (WHERE status = 'failed'),
			COUNT(*) FILTER (WHERE status = 'skipped'),
			COALESCE(SUM(size * filled_price) FILTER (WHERE status = 'filled'), 0)
		FROM copy_orders
	`).Scan(&total, &pending, &filled, &failed, &skipped, &filledUSD)
	if err != nil {
		return nil, err
	}

	stats["total_orders"] = total
	stats["pending_orders"] = pending
	stats["filled_orders"] = filled
	stats["failed_orders"] = failed
	stats["skipped_orders"] = skipped
	stats["filled_usd"] = filledUSD

	var traderCount int
	if err := s.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT trader_address) FROM follows WHERE active
	`).Scan(&traderCount); err == nil {
		stats["monitored_traders"] = traderCount
	}

	return stats, nil
}

func scanCopyOrder(row pgx.Row) (*models.CopyOrder, error) {
	var o models.CopyOrder
	var status string
	if err := row.Scan(&o.ID, &o.FollowerID, &o.OriginalTradeID, &o.Size, &o.TargetPrice,
		&o.FilledPrice, &o.Slippage, &status, &o.ErrorMessage, &o.TxHash,
		&o.CreatedAt, &o.FilledAt); err != nil {
		return nil, err
	}
	o.Status = models.CopyOrderStatus(status)
	return &o, nil
}

func collectCopyOrders(rows pgx.Rows) ([]models.CopyOrder, error) {
	defer rows.Close()
	orders := make([]models.CopyOrder, 0)
	for rows.Next() {
		order, err := scanCopyOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// ============================================================================
// REDIS
// ============================================================================

// GetRedisValue reads a raw Redis string value.
func (s *PostgresStore) GetRedisValue(ctx context.Context, key string) (string, error) {
	val, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

// SetRedisValue writes a raw Redis string value with a TTL.
func (s *PostgresStore) SetRedisValue(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.redis.Set(ctx, key, value, ttl).Err()
}
