package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"polycopy/models"
)

// MockStore is an in-memory DataStore for testing
type MockStore struct {
	mu sync.RWMutex

	// Storage maps
	Followers  map[int]models.Follower
	Follows    map[int]models.Follow
	Trades     map[string]models.Trade
	CopyOrders map[int]models.CopyOrder
	RedisData  map[string]string

	nextFollowerID  int
	nextFollowID    int
	nextCopyOrderID int

	// Call tracking for assertions
	Calls map[string]int

	// Error injection for testing error paths
	ErrorOnNext map[string]error
}

// NewMockStore creates a new mock store
func NewMockStore() *MockStore {
	return &MockStore{
		Followers:       make(map[int]models.Follower),
		Follows:         make(map[int]models.Follow),
		Trades:          make(map[string]models.Trade),
		CopyOrders:      make(map[int]models.CopyOrder),
		RedisData:       make(map[string]string),
		nextFollowerID:  1,
		nextFollowID:    1,
		nextCopyOrderID: 1,
		Calls:           make(map[string]int),
		ErrorOnNext:     make(map[string]error),
	}
}

func (m *MockStore) trackCall(name string) error {
	m.Calls[name]++
	if err, ok := m.ErrorOnNext[name]; ok {
		delete(m.ErrorOnNext, name)
		return err
	}
	return nil
}

func (m *MockStore) Close() error {
	return m.trackCall("Close")
}

func (m *MockStore) CreateFollower(ctx context.Context, follower *models.Follower) error {
	if err := m.trackCall("CreateFollower"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	follower.ID = m.nextFollowerID
	m.nextFollowerID++
	follower.WalletAddress = strings.ToLower(follower.WalletAddress)
	if follower.CreatedAt.IsZero() {
		follower.CreatedAt = time.Now()
	}
	m.Followers[follower.ID] = *follower
	return nil
}

func (m *MockStore) GetFollower(ctx context.Context, id int) (*models.Follower, error) {
	if err := m.trackCall("GetFollower"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if f, ok := m.Followers[id]; ok {
		return &f, nil
	}
	return nil, nil
}

func (m *MockStore) ListFollowers(ctx context.Context) ([]models.Follower, error) {
	if err := m.trackCall("ListFollowers"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]models.Follower, 0, len(m.Followers))
	for _, f := range m.Followers {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockStore) SetFollowerCredentials(ctx context.Context, id int, encKey, encSecret, encPassphrase string) error {
	if err := m.trackCall("SetFollowerCredentials"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.Followers[id]
	if !ok {
		return fmt.Errorf("follower not found: %d", id)
	}
	f.EncryptedAPIKey = encKey
	f.EncryptedAPISecret = encSecret
	f.EncryptedAPIPassphrase = encPassphrase
	m.Followers[id] = f
	return nil
}

func (m *MockStore) CreateFollow(ctx context.Context, follow *models.Follow) error {
	if err := m.trackCall("CreateFollow"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	follow.ID = m.nextFollowID
	m.nextFollowID++
	follow.TraderAddress = strings.ToLower(follow.TraderAddress)
	if follow.CreatedAt.IsZero() {
		follow.CreatedAt = time.Now()
	}
	m.Follows[follow.ID] = *follow
	return nil
}

func (m *MockStore) GetFollow(ctx context.Context, followerID int, traderAddress string) (*models.Follow, error) {
	if err := m.trackCall("GetFollow"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	addr := strings.ToLower(traderAddress)
	for _, f := range m.Follows {
		if f.FollowerID == followerID && f.TraderAddress == addr {
			return &f, nil
		}
	}
	return nil, nil
}

func (m *MockStore) ListActiveFollowsForTrader(ctx context.Context, traderAddress string) ([]models.Follow, error) {
	if err := m.trackCall("ListActiveFollowsForTrader"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	addr := strings.ToLower(traderAddress)
	result := make([]models.Follow, 0)
	for _, f := range m.Follows {
		if f.TraderAddress == addr && f.Active {
			result = append(result, f)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockStore) ListActiveTraderAddresses(ctx context.Context) ([]string, error) {
	if err := m.trackCall("ListActiveTraderAddresses"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	result := make([]string, 0)
	for _, f := range m.Follows {
		if f.Active && !seen[f.TraderAddress] {
			seen[f.TraderAddress] = true
			result = append(result, f.TraderAddress)
		}
	}
	sort.Strings(result)
	return result, nil
}

func (m *MockStore) SetFollowActive(ctx context.Context, id int, active bool) error {
	if err := m.trackCall("SetFollowActive"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.Follows[id]
	if !ok {
		return fmt.Errorf("follow not found: %d", id)
	}
	f.Active = active
	m.Follows[id] = f
	return nil
}

func (m *MockStore) IncrementFollowCopies(ctx context.Context, id int) error {
	if err := m.trackCall("IncrementFollowCopies"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.Follows[id]
	if !ok {
		return fmt.Errorf("follow not found: %d", id)
	}
	f.TotalCopies++
	m.Follows[id] = f
	return nil
}

func (m *MockStore) SaveTrade(ctx context.Context, trade *models.Trade) (bool, error) {
	if err := m.trackCall("SaveTrade"); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.Trades[trade.ID]; exists {
		return false, nil
	}
	trade.TraderAddress = strings.ToLower(trade.TraderAddress)
	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = time.Now()
	}
	m.Trades[trade.ID] = *trade
	return true, nil
}

func (m *MockStore) GetTrade(ctx context.Context, id string) (*models.Trade, error) {
	if err := m.trackCall("GetTrade"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.Trades[id]; ok {
		return &t, nil
	}
	return nil, nil
}

func (m *MockStore) LatestTradeTime(ctx context.Context, traderAddress string) (time.Time, bool, error) {
	if err := m.trackCall("LatestTradeTime"); err != nil {
		return time.Time{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	addr := strings.ToLower(traderAddress)
	var latest time.Time
	found := false
	for _, t := range m.Trades {
		if t.TraderAddress == addr && t.Timestamp.After(latest) {
			latest = t.Timestamp
			found = true
		}
	}
	return latest, found, nil
}

func (m *MockStore) ListTradesSince(ctx context.Context, since time.Time) ([]models.Trade, error) {
	if err := m.trackCall("ListTradesSince"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]models.Trade, 0)
	for _, t := range m.Trades {
		if !t.CreatedAt.Before(since) {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *MockStore) CreateCopyOrder(ctx context.Context, order *models.CopyOrder) error {
	if err := m.trackCall("CreateCopyOrder"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	order.ID = m.nextCopyOrderID
	m.nextCopyOrderID++
	if order.Status == "" {
		order.Status = models.StatusPending
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	m.CopyOrders[order.ID] = *order
	return nil
}

func (m *MockStore) GetCopyOrder(ctx context.Context, id int) (*models.CopyOrder, error) {
	if err := m.trackCall("GetCopyOrder"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if o, ok := m.CopyOrders[id]; ok {
		return &o, nil
	}
	return nil, nil
}

func (m *MockStore) HasCopyOrder(ctx context.Context, followerID int, tradeID string) (bool, error) {
	if err := m.trackCall("HasCopyOrder"); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.CopyOrders {
		if o.FollowerID == followerID && o.OriginalTradeID == tradeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockStore) ListPendingCopyOrders(ctx context.Context) ([]models.CopyOrder, error) {
	if err := m.trackCall("ListPendingCopyOrders"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]models.CopyOrder, 0)
	for _, o := range m.CopyOrders {
		if o.Status == models.StatusPending {
			result = append(result, o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockStore) ListCopyOrders(ctx context.Context, limit int) ([]models.CopyOrder, error) {
	if err := m.trackCall("ListCopyOrders"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]models.CopyOrder, 0, len(m.CopyOrders))
	for _, o := range m.CopyOrders {
		result = append(result, o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockStore) MarkCopyOrderFilled(ctx context.Context, id int, filledPrice, slippage float64, txHash string) error {
	if err := m.trackCall("MarkCopyOrderFilled"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.CopyOrders[id]
	if !ok || o.Status != models.StatusPending {
		return ErrNotPending
	}
	now := time.Now()
	o.Status = models.StatusFilled
	o.FilledPrice = &filledPrice
	o.Slippage = &slippage
	o.TxHash = txHash
	o.FilledAt = &now
	m.CopyOrders[id] = o
	return nil
}

func (m *MockStore) MarkCopyOrderFailed(ctx context.Context, id int, errMsg string) error {
	if err := m.trackCall("MarkCopyOrderFailed"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.CopyOrders[id]
	if !ok || o.Status != models.StatusPending {
		return ErrNotPending
	}
	o.Status = models.StatusFailed
	o.ErrorMessage = errMsg
	m.CopyOrders[id] = o
	return nil
}

func (m *MockStore) MarkCopyOrderSkipped(ctx context.Context, id int, slippage float64, reason string) error {
	if err := m.trackCall("MarkCopyOrderSkipped"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.CopyOrders[id]
	if !ok || o.Status != models.StatusPending {
		return ErrNotPending
	}
	o.Status = models.StatusSkipped
	o.Slippage = &slippage
	o.ErrorMessage = reason
	m.CopyOrders[id] = o
	return nil
}

func (m *MockStore) CopyOrderStats(ctx context.Context) (map[string]interface{}, error) {
	if err := m.trackCall("CopyOrderStats"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := map[string]interface{}{}
	var total, pending, filled, failed, skipped int
	var filledUSD float64
	for _, o := range m.CopyOrders {
		total++
		switch o.Status {
		case models.StatusPending:
			pending++
		case models.StatusFilled:
			filled++
			if o.FilledPrice != nil {
				filledUSD += o.Size * *o.FilledPrice
			}
		case models.StatusFailed:
			failed++
		case models.StatusSkipped:
			skipped++
		}
	}
	stats["total_orders"] = total
	stats["pending_orders"] = pending
	stats["filled_orders"] = filled
	stats["failed_orders"] = failed
	stats["skipped_orders"] = skipped
	stats["filled_usd"] = filledUSD
	return stats, nil
}

func (m *MockStore) GetRedisValue(ctx context.Context, key string) (string, error) {
	if err := m.trackCall("GetRedisValue"); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RedisData[key], nil
}

func (m *MockStore) SetRedisValue(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := m.trackCall("SetRedisValue"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RedisData[key] = value
	return nil
}
