package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Numeric handles Polymarket numbers that may arrive as strings or numbers.
type Numeric float64

func (n *Numeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || strings.EqualFold(string(data), "null") {
		*n = 0
		return nil
	}

	// Handle quoted numbers.
	if data[0] == '"' && data[len(data)-1] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*n = Numeric(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Numeric(f)
	return nil
}

func (n Numeric) Float64() float64 {
	return float64(n)
}

// Timestamp accepts the timestamp shapes the data API is known to emit:
// epoch seconds (integer or fractional), or an ISO-8601 string where a
// trailing "Z" means UTC. Anything else decodes to the zero time and the
// caller substitutes the current time.
type Timestamp time.Time

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || strings.EqualFold(string(data), "null") {
		*ts = Timestamp(time.Time{})
		return nil
	}

	if data[0] == '"' && data[len(data)-1] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, s); err == nil {
				*ts = Timestamp(t)
				return nil
			}
		}
		*ts = Timestamp(time.Time{})
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*ts = Timestamp(time.Time{})
		return nil
	}
	sec := int64(f)
	nsec := int64((f - float64(sec)) * float64(time.Second))
	*ts = Timestamp(time.Unix(sec, nsec).UTC())
	return nil
}

// Time returns the parsed time, or fallback when no usable value arrived.
func (ts Timestamp) Time(fallback time.Time) time.Time {
	t := time.Time(ts)
	if t.IsZero() {
		return fallback
	}
	return t
}

// ActivityTrade is a raw trade record from the data API. Several fields
// appear under more than one name depending on the endpoint version, so
// the accessors below resolve them as an explicit priority list.
type ActivityTrade struct {
	ID                   string    `json:"id"`
	TransactionHash      string    `json:"transaction_hash"`
	TransactionHashCamel string    `json:"transactionHash"`
	AssetID              string    `json:"asset_id"`
	Market               string    `json:"market"`
	Asset                string    `json:"asset"`
	Side                 string    `json:"side"`
	Size                 Numeric   `json:"size"`
	Price                Numeric   `json:"price"`
	Timestamp            Timestamp `json:"timestamp"`
	Title                string    `json:"title"`
}

// TradeID resolves the trade's natural key: id, then transaction_hash,
// then transactionHash.
func (t ActivityTrade) TradeID() string {
	if t.ID != "" {
		return t.ID
	}
	if t.TransactionHash != "" {
		return t.TransactionHash
	}
	return t.TransactionHashCamel
}

// MarketID resolves the market/token identifier: asset_id, then market,
// then asset.
func (t ActivityTrade) MarketID() string {
	if t.AssetID != "" {
		return t.AssetID
	}
	if t.Market != "" {
		return t.Market
	}
	return t.Asset
}

// Question returns the human-readable market label.
func (t ActivityTrade) Question() string {
	if t.Title == "" {
		return "Unknown"
	}
	return t.Title
}

// GammaMarket represents market metadata returned by the gamma API.
type GammaMarket struct {
	ID          string  `json:"id"`
	Question    string  `json:"question"`
	ConditionID string  `json:"conditionId"`
	Slug        string  `json:"slug"`
	Volume      Numeric `json:"volumeNum"`
	Liquidity   Numeric `json:"liquidityNum"`
	Closed      *bool   `json:"closed"`
	Outcomes    string  `json:"outcomes"` // JSON array as string e.g. "[\"Yes\",\"No\"]"
}

// OrderBook represents the order book for a token.
type OrderBook struct {
	Market    string           `json:"market"`
	AssetID   string           `json:"asset_id"`
	Timestamp string           `json:"timestamp"`
	Bids      []OrderBookLevel `json:"bids"`
	Asks      []OrderBookLevel `json:"asks"`
}

// OrderBookLevel represents a single price level.
type OrderBookLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// PlaceOrderRequest is the payload for submitting a signed replica order.
// Price and size go over the wire as strings, the way the CLOB expects.
type PlaceOrderRequest struct {
	TokenID    string
	Price      float64
	Size       float64
	Side       string
	Signature  string
	Signer     string
	Nonce      int64
	Expiration int64
}

func (r PlaceOrderRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TokenID    string `json:"token_id"`
		Price      string `json:"price"`
		Size       string `json:"size"`
		Side       string `json:"side"`
		Signature  string `json:"signature"`
		Signer     string `json:"signer"`
		Nonce      int64  `json:"nonce"`
		Expiration int64  `json:"expiration"`
	}{
		TokenID:    r.TokenID,
		Price:      strconv.FormatFloat(r.Price, 'f', -1, 64),
		Size:       strconv.FormatFloat(r.Size, 'f', -1, 64),
		Side:       strings.ToUpper(r.Side),
		Signature:  r.Signature,
		Signer:     r.Signer,
		Nonce:      r.Nonce,
		Expiration: r.Expiration,
	})
}

// OrderResponse is the response from placing an order.
type OrderResponse struct {
	OrderID  string `json:"order_id"`
	ErrorMsg string `json:"errorMsg"`
	Status   string `json:"status"`
}

// OrderStatus is the response from polling an order by id.
type OrderStatus struct {
	Status          string `json:"status"`
	TransactionHash string `json:"transaction_hash"`
}
