package api

import (
	"context"
	"sync"

	"polycopy/models"
)

// MockMarketClient is an in-memory MarketClient for testing, with call
// tracking and per-method error injection.
type MockMarketClient struct {
	mu sync.Mutex

	// Canned responses
	TradesResponse   []ActivityTrade
	MarketResponse   *GammaMarket
	BookResponse     *OrderBook
	MidpointResponse float64
	PlaceResponse    *OrderResponse
	OrderResponse    *OrderStatus

	// Call tracking for assertions
	Calls            map[string]int
	TradesRequests   []TradesRequest
	PlacedOrders     []PlaceOrderRequest
	CancelledOrders  []string
	PolledOrders     []string
	CredentialsSet   []Credentials
	CredentialsClear int

	// Error injection: the named method fails once with this error
	ErrorOnNext map[string]error

	creds *Credentials
}

// TradesRequest records one GetTrades invocation.
type TradesRequest struct {
	UserAddress string
	After       int64
}

// NewMockMarketClient creates a mock with sane defaults: one price
// available at 0.50, orders accepted and reported filled.
func NewMockMarketClient() *MockMarketClient {
	return &MockMarketClient{
		MidpointResponse: 0.50,
		PlaceResponse:    &OrderResponse{OrderID: "mock-order-1", Status: "live"},
		OrderResponse:    &OrderStatus{Status: "filled", TransactionHash: "0xmocktx"},
		Calls:            make(map[string]int),
		ErrorOnNext:      make(map[string]error),
	}
}

func (m *MockMarketClient) takeError(method string) error {
	m.Calls[method]++
	if err, ok := m.ErrorOnNext[method]; ok {
		delete(m.ErrorOnNext, method)
		return err
	}
	return nil
}

func (m *MockMarketClient) GetTrades(ctx context.Context, userAddress string, after int64) ([]ActivityTrade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TradesRequests = append(m.TradesRequests, TradesRequest{UserAddress: userAddress, After: after})
	if err := m.takeError("GetTrades"); err != nil {
		return nil, err
	}
	return m.TradesResponse, nil
}

func (m *MockMarketClient) GetMarket(ctx context.Context, marketID string) (*GammaMarket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeError("GetMarket"); err != nil {
		return nil, err
	}
	if m.MarketResponse == nil {
		return &GammaMarket{ID: marketID, Question: "Mock market"}, nil
	}
	return m.MarketResponse, nil
}

func (m *MockMarketClient) GetOrderBook(ctx context.Context, tokenID string) (*OrderBook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeError("GetOrderBook"); err != nil {
		return nil, err
	}
	if m.BookResponse == nil {
		return &OrderBook{AssetID: tokenID}, nil
	}
	return m.BookResponse, nil
}

func (m *MockMarketClient) GetMidpoint(ctx context.Context, tokenID string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeError("GetMidpoint"); err != nil {
		return 0, err
	}
	if m.MidpointResponse == 0 {
		return 0, ErrNoPrice
	}
	return m.MidpointResponse, nil
}

func (m *MockMarketClient) BestPrice(ctx context.Context, tokenID string, side models.Side) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeError("BestPrice"); err != nil {
		return 0, err
	}
	if m.MidpointResponse > 0 {
		return m.MidpointResponse, nil
	}
	return 0, ErrNoPrice
}

func (m *MockMarketClient) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlacedOrders = append(m.PlacedOrders, req)
	if err := m.takeError("PlaceOrder"); err != nil {
		return nil, err
	}
	return m.PlaceResponse, nil
}

func (m *MockMarketClient) GetOrder(ctx context.Context, orderID string) (*OrderStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PolledOrders = append(m.PolledOrders, orderID)
	if err := m.takeError("GetOrder"); err != nil {
		return nil, err
	}
	return m.OrderResponse, nil
}

func (m *MockMarketClient) CancelOrder(ctx context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CancelledOrders = append(m.CancelledOrders, orderID)
	return m.takeError("CancelOrder")
}

func (m *MockMarketClient) SetCredentials(creds Credentials) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = &creds
	m.CredentialsSet = append(m.CredentialsSet, creds)
}

func (m *MockMarketClient) ClearCredentials() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = nil
	m.CredentialsClear++
}

func (m *MockMarketClient) HasCredentials() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds != nil
}
