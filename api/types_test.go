package api

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNumericUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{"quoted float", `"1.5"`, 1.5, false},
		{"bare float", `1.5`, 1.5, false},
		{"bare int", `42`, 42, false},
		{"empty string", `""`, 0, false},
		{"null", `null`, 0, false},
		{"quoted garbage", `"abc"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Numeric
			err := json.Unmarshal([]byte(tt.input), &n)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if n.Float64() != tt.want {
				t.Errorf("got %v, want %v", n.Float64(), tt.want)
			}
		})
	}
}

func TestTimestampUnmarshal(t *testing.T) {
	fallback := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"epoch seconds", `1700000000`, time.Unix(1700000000, 0).UTC()},
		{"fractional epoch", `1700000000.5`, time.Unix(1700000000, int64(500*time.Millisecond)).UTC()},
		{"quoted epoch falls back", `"not a time"`, fallback},
		{"rfc3339", `"2023-11-14T22:13:20Z"`, time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)},
		{"no zone", `"2023-11-14T22:13:20"`, time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)},
		{"null falls back", `null`, fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			if err := json.Unmarshal([]byte(tt.input), &ts); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := ts.Time(fallback); !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestActivityTradeAccessors(t *testing.T) {
	full := ActivityTrade{
		ID:                   "id-1",
		TransactionHash:      "0xhash",
		TransactionHashCamel: "0xcamel",
		AssetID:              "asset-id",
		Market:               "market",
		Asset:                "asset",
		Title:                "Will it rain?",
	}
	if got := full.TradeID(); got != "id-1" {
		t.Errorf("TradeID = %q, want id first", got)
	}
	if got := full.MarketID(); got != "asset-id" {
		t.Errorf("MarketID = %q, want asset_id first", got)
	}
	if got := full.Question(); got != "Will it rain?" {
		t.Errorf("Question = %q", got)
	}

	noID := ActivityTrade{TransactionHash: "0xhash", TransactionHashCamel: "0xcamel"}
	if got := noID.TradeID(); got != "0xhash" {
		t.Errorf("TradeID = %q, want transaction_hash second", got)
	}

	camelOnly := ActivityTrade{TransactionHashCamel: "0xcamel"}
	if got := camelOnly.TradeID(); got != "0xcamel" {
		t.Errorf("TradeID = %q, want transactionHash last", got)
	}

	marketOnly := ActivityTrade{Market: "market"}
	if got := marketOnly.MarketID(); got != "market" {
		t.Errorf("MarketID = %q, want market second", got)
	}

	assetOnly := ActivityTrade{Asset: "asset"}
	if got := assetOnly.MarketID(); got != "asset" {
		t.Errorf("MarketID = %q, want asset last", got)
	}

	if got := (ActivityTrade{}).Question(); got != "Unknown" {
		t.Errorf("Question = %q, want Unknown for missing title", got)
	}
}

func TestPlaceOrderRequestWireShape(t *testing.T) {
	req := PlaceOrderRequest{
		TokenID:    "123456",
		Price:      0.47,
		Size:       12.5,
		Side:       "buy",
		Signature:  "0xsig",
		Signer:     "0xabc",
		Nonce:      1700000000123,
		Expiration: 1700003600,
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var wire map[string]json.RawMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("unmarshal wire: %v", err)
	}

	for field, want := range map[string]string{
		"price": `"0.47"`,
		"size":  `"12.5"`,
		"side":  `"BUY"`,
	} {
		if got := string(wire[field]); got != want {
			t.Errorf("%s = %s, want %s", field, got, want)
		}
	}
	if !strings.Contains(string(data), `"nonce":1700000000123`) {
		t.Errorf("nonce should stay numeric: %s", data)
	}
}
