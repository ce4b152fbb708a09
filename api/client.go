package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"polycopy/models"
)

// ErrNoPrice is returned when neither the midpoint nor the order book
// yields a usable price for a token.
var ErrNoPrice = errors.New("no price available")

// MarketClient is the outbound surface of the market gateway. It enables
// dependency injection for testing.
type MarketClient interface {
	GetTrades(ctx context.Context, userAddress string, after int64) ([]ActivityTrade, error)
	GetMarket(ctx context.Context, marketID string) (*GammaMarket, error)
	GetOrderBook(ctx context.Context, tokenID string) (*OrderBook, error)
	GetMidpoint(ctx context.Context, tokenID string) (float64, error)
	BestPrice(ctx context.Context, tokenID string, side models.Side) (float64, error)
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderResponse, error)
	GetOrder(ctx context.Context, orderID string) (*OrderStatus, error)
	CancelOrder(ctx context.Context, orderID string) error

	SetCredentials(creds Credentials)
	ClearCredentials()
	HasCredentials() bool
}

// Ensure both implementations satisfy the interface.
var _ MarketClient = (*Client)(nil)
var _ MarketClient = (*MockMarketClient)(nil)

// Client talks to the exchange's three API surfaces: the data API for
// trade history, the gamma API for market metadata, and the CLOB for
// pricing and order lifecycle.
type Client struct {
	clobURL    string
	gammaURL   string
	dataURL    string
	httpClient *http.Client

	*Authenticator
}

// NewClient creates a market gateway client. Empty URLs fall back to the
// production endpoints.
func NewClient(clobURL, gammaURL, dataURL string) *Client {
	if clobURL == "" {
		clobURL = "https://clob.polymarket.com"
	}
	if gammaURL == "" {
		gammaURL = "https://gamma-api.polymarket.com"
	}
	if dataURL == "" {
		dataURL = "https://data-api.polymarket.com"
	}

	return &Client{
		clobURL:  strings.TrimRight(clobURL, "/"),
		gammaURL: strings.TrimRight(gammaURL, "/"),
		dataURL:  strings.TrimRight(dataURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Authenticator: NewAuthenticator(),
	}
}

// GetTrades fetches trades for a user address from the data API. When
// after is non-zero only trades strictly newer than that unix timestamp
// are requested.
func (c *Client) GetTrades(ctx context.Context, userAddress string, after int64) ([]ActivityTrade, error) {
	values := url.Values{}
	values.Set("user", userAddress)
	if after > 0 {
		values.Set("after", strconv.FormatInt(after, 10))
	}

	var trades []ActivityTrade
	if err := c.getJSON(ctx, c.dataURL+"/trades?"+values.Encode(), nil, &trades); err != nil {
		return nil, fmt.Errorf("get trades for %s: %w", userAddress, err)
	}
	return trades, nil
}

// GetMarket fetches market metadata from the gamma API.
func (c *Client) GetMarket(ctx context.Context, marketID string) (*GammaMarket, error) {
	var market GammaMarket
	if err := c.getJSON(ctx, c.gammaURL+"/markets/"+marketID, nil, &market); err != nil {
		return nil, fmt.Errorf("get market %s: %w", marketID, err)
	}
	return &market, nil
}

// GetOrderBook fetches the order book for a token.
func (c *Client) GetOrderBook(ctx context.Context, tokenID string) (*OrderBook, error) {
	values := url.Values{}
	values.Set("token_id", tokenID)

	var book OrderBook
	if err := c.getJSON(ctx, c.clobURL+"/book?"+values.Encode(), nil, &book); err != nil {
		return nil, fmt.Errorf("get order book: %w", err)
	}
	return &book, nil
}

// GetMidpoint fetches the midpoint price for a token. A missing or
// empty midpoint is reported as ErrNoPrice.
func (c *Client) GetMidpoint(ctx context.Context, tokenID string) (float64, error) {
	values := url.Values{}
	values.Set("token_id", tokenID)

	var resp struct {
		Mid Numeric `json:"mid"`
	}
	if err := c.getJSON(ctx, c.clobURL+"/midpoint?"+values.Encode(), nil, &resp); err != nil {
		return 0, fmt.Errorf("get midpoint: %w", err)
	}
	if resp.Mid == 0 {
		return 0, ErrNoPrice
	}
	return resp.Mid.Float64(), nil
}

// BestPrice returns the current price for a token: midpoint preferred,
// falling back to the top of the book (best ask for a BUY, best bid for
// a SELL). Returns ErrNoPrice when neither source has a value.
func (c *Client) BestPrice(ctx context.Context, tokenID string, side models.Side) (float64, error) {
	if mid, err := c.GetMidpoint(ctx, tokenID); err == nil && mid > 0 {
		return mid, nil
	}

	book, err := c.GetOrderBook(ctx, tokenID)
	if err != nil {
		return 0, err
	}

	var levels []OrderBookLevel
	if side == models.SideBuy {
		levels = book.Asks
	} else {
		levels = book.Bids
	}
	if len(levels) == 0 {
		return 0, ErrNoPrice
	}

	price, err := strconv.ParseFloat(levels[0].Price, 64)
	if err != nil || price <= 0 {
		return 0, ErrNoPrice
	}
	return price, nil
}

// PlaceOrder submits a signed replica order to the CLOB with
// authenticated headers.
func (c *Client) PlaceOrder(ctx context.Context, order PlaceOrderRequest) (*OrderResponse, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}

	headers := c.Headers("POST", "/order", string(body))

	req, err := http.NewRequestWithContext(ctx, "POST", c.clobURL+"/order", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	var resp OrderResponse
	if err := c.doJSON(req, &resp); err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}
	return &resp, nil
}

// GetOrder polls the status of an order by id.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*OrderStatus, error) {
	path := "/order/" + orderID
	headers := c.Headers("GET", path, "")

	var status OrderStatus
	if err := c.getJSON(ctx, c.clobURL+path, headers, &status); err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	return &status, nil
}

// CancelOrder cancels an open order by id.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	body := fmt.Sprintf(`{"orderID":%q}`, orderID)
	headers := c.Headers("DELETE", "/order", body)

	req, err := http.NewRequestWithContext(ctx, "DELETE", c.clobURL+"/order", strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	if err := c.doJSON(req, &struct{}{}); err != nil {
		return fmt.Errorf("cancel order %s: %w", orderID, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, headers map[string]string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return err
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s failed: %d %s", req.Method, req.URL.Path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
