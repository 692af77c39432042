package shared

import "errors"

// Domain-specific errors
var (
	// Product errors
	ErrProductNotFound      = errors.New("product not found")
	ErrProductNotAccepting  = errors.New("product is not accepting bids")
	ErrAuctionAlreadyEnded  = errors.New("auction already ended")
	ErrAuctionStillActive   = errors.New("auction is still active")
	ErrInvalidStartingPrice = errors.New("starting price must not be negative")
	ErrProductNameRequired  = errors.New("product name is required")

	// Bid errors
	ErrBidNotFound      = errors.New("bid not found")
	ErrBidAmountTooLow  = errors.New("bid amount must be higher than current price")
	ErrBidAmountInvalid = errors.New("bid amount must be greater than 0")
	ErrNoBidsFound      = errors.New("no bids found")
	ErrInvalidBidStatus = errors.New("invalid bid status")

	// Payment errors
	ErrBidNotWon           = errors.New("payment only allowed on a won bid")
	ErrPaymentAlreadyFinal = errors.New("payment status already finalized")

	// Account errors
	ErrProfileNotFound = errors.New("profile not found")
	ErrUnauthenticated = errors.New("authentication required")
	ErrNotAdmin        = errors.New("administrator privileges required")

	// Validation errors
	ErrInvalidTimeFormat = errors.New("invalid time format")
	ErrInvalidRequest    = errors.New("invalid request")

	// Database errors
	ErrDatabaseConnection  = errors.New("database connection failed")
	ErrDatabaseQuery       = errors.New("database query failed")
	ErrDatabaseTransaction = errors.New("database transaction failed")

	// WebSocket message validation errors
	ErrMessageTypeRequired    = errors.New("message type is required")
	ErrProductIDRequired      = errors.New("product_id is required")
	ErrBidIDRequired          = errors.New("bid_id is required")
	ErrInvalidAmount          = errors.New("valid amount is required")
	ErrNameRequired           = errors.New("name is required")
	ErrStartingPriceRequired  = errors.New("starting_price is required")
	ErrPhoneRequired          = errors.New("phone is required")
	ErrStatusRequired         = errors.New("status is required")
	ErrUnknownMessageType     = errors.New("unknown message type")
	ErrInvalidProductIDFormat = errors.New("invalid product_id format")
	ErrInvalidBidIDFormat     = errors.New("invalid bid_id format")
	ErrClientChannelNotFound  = errors.New("client event channel not found")
	ErrBroadcastFailed        = errors.New("broadcast failed")
	ErrClientNotSubscribed    = errors.New("client not subscribed to product")
	ErrWebSocketConnection    = errors.New("websocket connection failed")
	ErrWebSocketMessage       = errors.New("websocket message error")
)
