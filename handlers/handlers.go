package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"polycopy/middleware"
	"polycopy/models"
	"polycopy/secrets"
	"polycopy/storage"
	"polycopy/syncer"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the admin and status API
type Handler struct {
	store   storage.DataStore
	cipher  secrets.Cipher
	metrics *syncer.MetricsRecorder
}

// NewHandler creates a new handler
func NewHandler(store storage.DataStore, cipher secrets.Cipher) *Handler {
	return &Handler{
		store:   store,
		cipher:  cipher,
		metrics: syncer.NewMetricsRecorder(store),
	}
}

// Health reports service liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createFollowerRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required"`
	WalletAddress string `json:"wallet_address" binding:"required"`
	PrivateKey    string `json:"private_key" binding:"required"`
	APIKey        string `json:"api_key"`
	APISecret     string `json:"api_secret"`
	APIPassphrase string `json:"api_passphrase"`
}

// CreateFollower registers a follower. The private key and any exchange
// API credentials are encrypted before they touch the database.
func (h *Handler) CreateFollower(c *gin.Context) {
	var req createFollowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !middleware.IsValidEthAddress(req.WalletAddress) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wallet_address must be a valid Ethereum address"})
		return
	}
	if _, err := secrets.ParsePrivateKey(req.PrivateKey); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "private_key is not a valid hex key"})
		return
	}

	encKey, err := h.cipher.Encrypt(req.PrivateKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encrypt key material"})
		return
	}

	follower := models.Follower{
		Name:                strings.TrimSpace(req.Name),
		Email:               strings.ToLower(strings.TrimSpace(req.Email)),
		WalletAddress:       strings.ToLower(req.WalletAddress),
		EncryptedPrivateKey: encKey,
	}

	if req.APIKey != "" && req.APISecret != "" && req.APIPassphrase != "" {
		if follower.EncryptedAPIKey, err = h.cipher.Encrypt(req.APIKey); err == nil {
			follower.EncryptedAPISecret, err = h.cipher.Encrypt(req.APISecret)
		}
		if err == nil {
			follower.EncryptedAPIPassphrase, err = h.cipher.Encrypt(req.APIPassphrase)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encrypt credentials"})
			return
		}
	}

	if err := h.store.CreateFollower(c.Request.Context(), &follower); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create follower"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"follower": follower})
}

// ListFollowers returns all registered followers.
func (h *Handler) ListFollowers(c *gin.Context) {
	followers, err := h.store.ListFollowers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load followers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"followers": followers, "count": len(followers)})
}

// GetFollower returns a single follower by ID.
func (h *Handler) GetFollower(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid follower ID"})
		return
	}

	follower, err := h.store.GetFollower(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load follower"})
		return
	}
	if follower == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "follower not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"follower":        follower,
		"has_credentials": follower.HasAPICredentials(),
	})
}

type setCredentialsRequest struct {
	APIKey        string `json:"api_key" binding:"required"`
	APISecret     string `json:"api_secret" binding:"required"`
	APIPassphrase string `json:"api_passphrase" binding:"required"`
}

// SetFollowerCredentials replaces a follower's exchange API credentials.
func (h *Handler) SetFollowerCredentials(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid follower ID"})
		return
	}

	var req setCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	encKey, err := h.cipher.Encrypt(req.APIKey)
	if err == nil {
		var encSecret, encPassphrase string
		if encSecret, err = h.cipher.Encrypt(req.APISecret); err == nil {
			if encPassphrase, err = h.cipher.Encrypt(req.APIPassphrase); err == nil {
				err = h.store.SetFollowerCredentials(c.Request.Context(), id, encKey, encSecret, encPassphrase)
			}
		}
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}

type createFollowRequest struct {
	FollowerID     int     `json:"follower_id" binding:"required"`
	TraderAddress  string  `json:"trader_address" binding:"required"`
	CopyPercentage float64 `json:"copy_percentage" binding:"required"`
	MaxTradeUSD    float64 `json:"max_trade_usd" binding:"required"`
	MaxSlippagePct float64 `json:"max_slippage_pct"`
}

// CreateFollow subscribes a follower to a trader address.
func (h *Handler) CreateFollow(c *gin.Context) {
	var req createFollowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !middleware.IsValidEthAddress(req.TraderAddress) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "trader_address must be a valid Ethereum address"})
		return
	}
	if req.CopyPercentage <= 0 || req.CopyPercentage > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "copy_percentage must be between 0 and 100"})
		return
	}
	if req.MaxTradeUSD <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_trade_usd must be positive"})
		return
	}

	follower, err := h.store.GetFollower(c.Request.Context(), req.FollowerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load follower"})
		return
	}
	if follower == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "follower not found"})
		return
	}

	if req.MaxSlippagePct == 0 {
		req.MaxSlippagePct = 5.0
	}

	follow := models.Follow{
		FollowerID:     req.FollowerID,
		TraderAddress:  strings.ToLower(req.TraderAddress),
		CopyPercentage: req.CopyPercentage,
		MaxTradeUSD:    req.MaxTradeUSD,
		MaxSlippagePct: req.MaxSlippagePct,
		Active:         true,
	}
	if err := h.store.CreateFollow(c.Request.Context(), &follow); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create follow"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"follow": follow})
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetFollowActive toggles a follow on or off.
func (h *Handler) SetFollowActive(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid follow ID"})
		return
	}

	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.SetFollowActive(c.Request.Context(), id, *req.Active); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "follow not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// ListTraders returns the distinct trader addresses under active follows.
func (h *Handler) ListTraders(c *gin.Context) {
	addresses, err := h.store.ListActiveTraderAddresses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load traders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"traders": addresses, "count": len(addresses)})
}

// ListCopyOrders returns recent copy orders, optionally filtered by status.
func (h *Handler) ListCopyOrders(c *gin.Context) {
	limit := 100
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	orders, err := h.store.ListCopyOrders(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load orders"})
		return
	}

	if status := strings.ToLower(c.Query("status")); status != "" {
		filtered := make([]models.CopyOrder, 0, len(orders))
		for _, o := range orders {
			if string(o.Status) == status {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// GetCopyOrder returns a single copy order by ID.
func (h *Handler) GetCopyOrder(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetCopyOrder(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load order"})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// GetStats reports aggregate copy order statistics plus pipeline counters.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.store.CopyOrderStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	metrics, err := h.metrics.Load(c.Request.Context())
	if err != nil {
		metrics = &syncer.PipelineMetrics{}
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":   stats,
		"metrics": metrics,
	})
}
