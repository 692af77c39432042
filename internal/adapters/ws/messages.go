package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"fyndak-auction-service/internal/domain/shared"

	"github.com/google/uuid"
)

type MessageType string

const (
	// Client to Server message types
	MessageTypeSubscribe      MessageType = "subscribe"
	MessageTypeUnsubscribe    MessageType = "unsubscribe"
	MessageTypePlaceBid       MessageType = "place_bid"
	MessageTypeCreateProduct  MessageType = "create_product"
	MessageTypeUpdateProduct  MessageType = "update_product"
	MessageTypeDeleteProduct  MessageType = "delete_product"
	MessageTypeGetProduct     MessageType = "get_product"
	MessageTypeListProducts   MessageType = "list_products"
	MessageTypeListBids       MessageType = "list_bids"
	MessageTypeMyBids         MessageType = "my_bids"
	MessageTypeListBidders    MessageType = "list_bidders"
	MessageTypeEndAuction     MessageType = "end_auction"
	MessageTypeSubmitPayment  MessageType = "submit_payment"
	MessageTypeConfirmPayment MessageType = "confirm_payment"
	MessageTypeCancelPayment  MessageType = "cancel_payment"
	MessageTypeSetBidStatus   MessageType = "set_bid_status"
	MessageTypeDebugBids      MessageType = "debug_product_bids"
	MessageTypePing           MessageType = "ping"

	// Server to Client message types
	MessageTypeBidPlaced      MessageType = "bid_placed"
	MessageTypeAuctionEnded   MessageType = "auction_ended"
	MessageTypeProductUpdate  MessageType = "product_update"
	MessageTypeProductCreated MessageType = "product_created"
	MessageTypePaymentUpdate  MessageType = "payment_update"
	MessageTypeError          MessageType = "error"
	MessageTypePong           MessageType = "pong"
)

type ClientMessage struct {
	Type      MessageType            `json:"type"`
	ProductID *uuid.UUID             `json:"product_id,omitempty"`
	BidID     *uuid.UUID             `json:"bid_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// ServerMessage represents a message sent from server to client
type ServerMessage struct {
	Type      MessageType            `json:"type"`
	ProductID *uuid.UUID             `json:"product_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Error     *string                `json:"error,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

func NewServerMessage(msgType MessageType) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Data:      make(map[string]interface{}),
		Timestamp: time.Now().Unix(),
	}
}

func NewErrorMessage(err string, productID *uuid.UUID) *ServerMessage {
	return &ServerMessage{
		Type:      MessageTypeError,
		ProductID: productID,
		Error:     &err,
		Timestamp: time.Now().Unix(),
	}
}

// ParseClientMessage parses a JSON message from client
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse client message: %w", err)
	}

	if msg.Type == "" {
		return nil, shared.ErrMessageTypeRequired
	}

	return &msg, nil
}

func (m *ClientMessage) validateProductID() error {
	if m.ProductID == nil || *m.ProductID == uuid.Nil {
		return shared.ErrProductIDRequired
	}
	return nil
}

func (m *ClientMessage) validateBidID() error {
	if m.BidID == nil || *m.BidID == uuid.Nil {
		return shared.ErrBidIDRequired
	}
	return nil
}

// Validate validates a client message
func (m *ClientMessage) Validate() error {
	switch m.Type {
	case MessageTypeSubscribe, MessageTypeUnsubscribe,
		MessageTypeGetProduct, MessageTypeDeleteProduct,
		MessageTypeListBids, MessageTypeListBidders,
		MessageTypeEndAuction, MessageTypeDebugBids,
		MessageTypeUpdateProduct:
		if err := m.validateProductID(); err != nil {
			return err
		}
	case MessageTypePlaceBid:
		if err := m.validateProductID(); err != nil {
			return err
		}
		amount, ok := m.Data["amount"].(float64)
		if !ok || amount <= 0 {
			return shared.ErrInvalidAmount
		}
	case MessageTypeCreateProduct:
		if m.Data["name"] == nil {
			return shared.ErrNameRequired
		}
		if m.Data["starting_price"] == nil {
			return shared.ErrStartingPriceRequired
		}
	case MessageTypeSubmitPayment:
		if err := m.validateBidID(); err != nil {
			return err
		}
		phone, ok := m.Data["phone"].(string)
		if !ok || phone == "" {
			return shared.ErrPhoneRequired
		}
	case MessageTypeConfirmPayment, MessageTypeCancelPayment:
		if err := m.validateBidID(); err != nil {
			return err
		}
	case MessageTypeSetBidStatus:
		if err := m.validateBidID(); err != nil {
			return err
		}
		status, ok := m.Data["status"].(string)
		if !ok || status == "" {
			return shared.ErrStatusRequired
		}
	case MessageTypeListProducts, MessageTypeMyBids, MessageTypePing:

	default:
		return shared.ErrUnknownMessageType
	}

	return nil
}
