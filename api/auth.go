package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Credentials holds the exchange API credentials used for authenticated
// (L2) calls: order placement, order status, and cancellation.
type Credentials struct {
	Key        string
	Secret     string
	Passphrase string
}

// Authenticator produces per-request authentication headers. The
// signature covers timestamp + uppercased method + path + body, so
// headers are single-use: the timestamp is regenerated on every call and
// results must never be cached across requests.
type Authenticator struct {
	mu    sync.RWMutex
	creds *Credentials
	now   func() time.Time
}

// NewAuthenticator creates an authenticator with no credentials
// configured. Until SetCredentials is called, Headers returns an empty
// set and requests go out unauthenticated.
func NewAuthenticator() *Authenticator {
	return &Authenticator{now: time.Now}
}

// SetCredentials installs the credentials used for subsequent requests.
func (a *Authenticator) SetCredentials(creds Credentials) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.creds = &creds
}

// ClearCredentials removes any configured credentials.
func (a *Authenticator) ClearCredentials() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.creds = nil
}

// HasCredentials reports whether credentials are configured.
func (a *Authenticator) HasCredentials() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.creds != nil
}

// Headers returns the authentication headers for one request, or an
// empty map when no credentials are configured.
func (a *Authenticator) Headers(method, path, body string) map[string]string {
	a.mu.RLock()
	creds := a.creds
	a.mu.RUnlock()

	if creds == nil {
		return map[string]string{}
	}

	timestamp := strconv.FormatInt(a.now().Unix(), 10)
	message := timestamp + strings.ToUpper(method) + path + body

	mac := hmac.New(sha256.New, decodeSecret(creds.Secret))
	mac.Write([]byte(message))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return map[string]string{
		"POLY-API-KEY":        creds.Key,
		"POLY-API-SECRET":     creds.Secret,
		"POLY-API-PASSPHRASE": creds.Passphrase,
		"POLY-API-TIMESTAMP":  timestamp,
		"POLY-API-SIGNATURE":  signature,
	}
}

// decodeSecret recovers the HMAC key from its transport encoding.
// Secrets are issued URL-safe base64; standard base64 and raw bytes are
// accepted as fallbacks.
func decodeSecret(secret string) []byte {
	if key, err := base64.URLEncoding.DecodeString(secret); err == nil {
		return key
	}
	if key, err := base64.StdEncoding.DecodeString(secret); err == nil {
		return key
	}
	return []byte(secret)
}
