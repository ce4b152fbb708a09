package models

import "time"

// Side represents buy or sell
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// CopyOrderStatus is the lifecycle state of a copy order.
// An order starts pending and moves exactly once into one of the
// terminal states; terminal states are never left again.
type CopyOrderStatus string

const (
	StatusPending CopyOrderStatus = "pending"
	StatusFilled  CopyOrderStatus = "filled"
	StatusFailed  CopyOrderStatus = "failed"
	StatusSkipped CopyOrderStatus = "skipped"
)

// Terminal reports whether the status is absorbing.
func (s CopyOrderStatus) Terminal() bool {
	return s == StatusFilled || s == StatusFailed || s == StatusSkipped
}

// Follower is a user who copies trades. Key material and exchange API
// credentials are stored encrypted and only decrypted at execution time.
type Follower struct {
	ID                     int       `json:"id"`
	Name                   string    `json:"name"`
	Email                  string    `json:"email"`
	WalletAddress          string    `json:"wallet_address"`
	EncryptedPrivateKey    string    `json:"-"`
	EncryptedAPIKey        string    `json:"-"`
	EncryptedAPISecret     string    `json:"-"`
	EncryptedAPIPassphrase string    `json:"-"`
	CreatedAt              time.Time `json:"created_at"`
}

// HasAPICredentials reports whether exchange API credentials are on file.
func (f Follower) HasAPICredentials() bool {
	return f.EncryptedAPIKey != "" && f.EncryptedAPISecret != "" && f.EncryptedAPIPassphrase != ""
}

// Follow is a follower's subscription to a single trader address,
// together with its risk settings.
type Follow struct {
	ID             int       `json:"id"`
	FollowerID     int       `json:"follower_id"`
	TraderAddress  string    `json:"trader_address"`
	CopyPercentage float64   `json:"copy_percentage"`
	MaxTradeUSD    float64   `json:"max_trade_usd"`
	MaxSlippagePct float64   `json:"max_slippage_pct"`
	Active         bool      `json:"active"`
	TotalCopies    int       `json:"total_copies"`
	CreatedAt      time.Time `json:"created_at"`
}

// Trade is an observed trade made by a monitored trader address.
// ID is the exchange-assigned trade/transaction identifier and acts as
// the natural key; a trade row is immutable once written.
type Trade struct {
	ID             string    `json:"id"`
	TraderAddress  string    `json:"trader_address"`
	MarketID       string    `json:"market_id"`
	MarketQuestion string    `json:"market_question"`
	Side           Side      `json:"side"`
	Size           float64   `json:"size"`
	Price          float64   `json:"price"`
	Timestamp      time.Time `json:"timestamp"`
	CreatedAt      time.Time `json:"created_at"`
}

// CopyOrder is one attempt to replicate a trade for one follower.
// At most one copy order exists per (follower, original trade) pair.
type CopyOrder struct {
	ID              int             `json:"id"`
	FollowerID      int             `json:"follower_id"`
	OriginalTradeID string          `json:"original_trade_id"`
	Size            float64         `json:"size"`
	TargetPrice     float64         `json:"target_price"`
	FilledPrice     *float64        `json:"filled_price,omitempty"`
	Slippage        *float64        `json:"slippage,omitempty"`
	Status          CopyOrderStatus `json:"status"`
	ErrorMessage    string          `json:"error_message,omitempty"`
	TxHash          string          `json:"tx_hash,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	FilledAt        *time.Time      `json:"filled_at,omitempty"`
}
