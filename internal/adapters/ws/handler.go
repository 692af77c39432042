package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fyndak-auction-service/internal/domain/bid"
	"fyndak-auction-service/internal/domain/product"
	"fyndak-auction-service/internal/domain/shared"
	"fyndak-auction-service/internal/ports/inbound"
	"fyndak-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// WsHandler manages WebSocket connections and message routing
type WsHandler struct {
	clients        map[string]*WsClient // clientID -> Client
	clientsMu      sync.RWMutex
	eventChannels  map[string]chan outbound.Event // clientID -> local event channel
	channelsMu     sync.RWMutex
	upgrader       websocket.Upgrader
	catalogService inbound.CatalogService
	ledgerService  inbound.LedgerService
	closerService  inbound.CloserService
	paymentService inbound.PaymentService
	broadcaster    outbound.Broadcaster
	logger         zerolog.Logger
}

type WsHandlerParams struct {
	Upgrader       websocket.Upgrader
	CatalogService inbound.CatalogService
	LedgerService  inbound.LedgerService
	CloserService  inbound.CloserService
	PaymentService inbound.PaymentService
	Broadcaster    outbound.Broadcaster
	Logger         zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(params WsHandlerParams) *WsHandler {
	return &WsHandler{
		clients:        make(map[string]*WsClient),
		eventChannels:  make(map[string]chan outbound.Event),
		upgrader:       params.Upgrader,
		catalogService: params.CatalogService,
		ledgerService:  params.LedgerService,
		closerService:  params.CloserService,
		paymentService: params.PaymentService,
		broadcaster:    params.Broadcaster,
		logger:         params.Logger.With().Str("component", "ws_handler").Logger(),
	}
}

// HandleWebSocket handles WebSocket connection upgrades.
// The caller identifies itself with a user_id resolved by the external
// identity service; operations requiring a profile or the admin flag are
// verified against the profiles table by the application services.
func (handler *WsHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userIDStr := r.URL.Query().Get("user_id")
	if userIDStr == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		http.Error(w, "invalid user_id format", http.StatusBadRequest)
		return
	}

	conn, err := handler.upgrader.Upgrade(w, r, nil)
	if err != nil {
		handler.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := NewClient(WsClientParams{
		UserID:  userID,
		Conn:    conn,
		Handler: handler,
		Logger:  handler.logger,
	})

	handler.registerClient(client)
	handler.createEventChannel(client.id)

	client.Start()

	go handler.listenForClientEvents(client)

	go func() {
		<-client.ctx.Done()
		handler.unregisterClient(client)
	}()

	handler.logger.Info().Str("client_id", client.id).Str("user_id", client.userID.String()).Msg("WebSocket client connected")
}

// createEventChannel creates a local event channel for a client
func (handler *WsHandler) createEventChannel(clientID string) chan outbound.Event {
	handler.channelsMu.Lock()
	defer handler.channelsMu.Unlock()

	if eventChan, exists := handler.eventChannels[clientID]; exists {
		return eventChan
	}

	eventChan := make(chan outbound.Event, 100)
	handler.eventChannels[clientID] = eventChan

	return eventChan
}

func (handler *WsHandler) getEventChannel(clientID string) chan outbound.Event {
	handler.channelsMu.RLock()
	defer handler.channelsMu.RUnlock()

	return handler.eventChannels[clientID]
}

func (handler *WsHandler) removeEventChannel(clientID string) {
	handler.channelsMu.Lock()
	defer handler.channelsMu.Unlock()

	if eventChan, exists := handler.eventChannels[clientID]; exists {
		close(eventChan)
		delete(handler.eventChannels, clientID)
	}
}

func (handler *WsHandler) registerClient(client *WsClient) {
	handler.clientsMu.Lock()
	defer handler.clientsMu.Unlock()
	handler.clients[client.id] = client
	handler.logger.Debug().Str("client_id", client.id).Int("total_clients", len(handler.clients)).Msg("Client registered")
}

func (handler *WsHandler) unregisterClient(client *WsClient) {
	handler.clientsMu.Lock()
	defer handler.clientsMu.Unlock()

	delete(handler.clients, client.id)

	client.Stop()

	handler.removeEventChannel(client.id)

	handler.logger.Info().Str("client_id", client.id).Str("user_id", client.userID.String()).Int("total_clients", len(handler.clients)).Msg("WebSocket client disconnected")
}

// listenForClientEvents forwards change feed events to the WebSocket
func (handler *WsHandler) listenForClientEvents(client *WsClient) {
	eventChan := handler.getEventChannel(client.id)
	if eventChan == nil {
		handler.logger.Error().Str("client_id", client.id).Msg("No event channel found for client - this should not happen")
		return
	}

	for {
		select {
		case event := <-eventChan:
			wsMessage := handler.convertEventToMessage(event)

			if err := client.Send(wsMessage); err != nil {
				handler.logger.Error().
					Err(err).Str("client_id", client.id).Msg("Failed to send event to WebSocket client")
			}

		case <-client.ctx.Done():
			handler.logger.Debug().Str("client_id", client.id).Msg("Client disconnected, stopping event listener")
			return
		}
	}
}

func (handler *WsHandler) HandleClientMessage(client *WsClient, msg *ClientMessage) error {
	switch msg.Type {
	case MessageTypeSubscribe:
		return handler.handleSubscribe(client, msg)

	case MessageTypeUnsubscribe:
		return handler.handleUnsubscribe(client, msg)

	case MessageTypePlaceBid:
		return handler.handlePlaceBid(client, msg)

	case MessageTypeCreateProduct:
		return handler.handleCreateProduct(client, msg)

	case MessageTypeUpdateProduct:
		return handler.handleUpdateProduct(client, msg)

	case MessageTypeDeleteProduct:
		return handler.handleDeleteProduct(client, msg)

	case MessageTypeGetProduct:
		return handler.handleGetProduct(client, msg)

	case MessageTypeListProducts:
		return handler.handleListProducts(client, msg)

	case MessageTypeListBids:
		return handler.handleListBids(client, msg)

	case MessageTypeMyBids:
		return handler.handleMyBids(client, msg)

	case MessageTypeListBidders:
		return handler.handleListBidders(client, msg)

	case MessageTypeEndAuction:
		return handler.handleEndAuction(client, msg)

	case MessageTypeSubmitPayment:
		return handler.handleSubmitPayment(client, msg)

	case MessageTypeConfirmPayment, MessageTypeCancelPayment:
		return handler.handleFinalizePayment(client, msg)

	case MessageTypeSetBidStatus:
		return handler.handleSetBidStatus(client, msg)

	case MessageTypeDebugBids:
		return handler.handleDebugBids(client, msg)

	default:
		handler.logger.Warn().Str("client_id", client.id).Str("message_type", string(msg.Type)).Msg("Unknown message type from client")
		return shared.ErrUnknownMessageType
	}
}

func (handler *WsHandler) convertEventToMessage(event outbound.Event) *ServerMessage {
	switch event.Type {
	case outbound.EventTypeBidPlaced:
		return &ServerMessage{
			Type:      MessageTypeBidPlaced,
			ProductID: &event.ProductID,
			Data:      event.Data,
			Timestamp: event.Timestamp,
		}
	case outbound.EventTypeAuctionEnded:
		return &ServerMessage{
			Type:      MessageTypeAuctionEnded,
			ProductID: &event.ProductID,
			Data:      event.Data,
			Timestamp: event.Timestamp,
		}
	case outbound.EventTypePaymentUpdated:
		return &ServerMessage{
			Type:      MessageTypePaymentUpdate,
			ProductID: &event.ProductID,
			Data:      event.Data,
			Timestamp: event.Timestamp,
		}
	default:
		return &ServerMessage{
			Type:      MessageTypeProductUpdate,
			ProductID: &event.ProductID,
			Data:      event.Data,
			Timestamp: event.Timestamp,
		}
	}
}

// GetConnectedClients returns the number of connected clients
func (handler *WsHandler) GetConnectedClients() int {
	handler.clientsMu.RLock()
	defer handler.clientsMu.RUnlock()
	return len(handler.clients)
}

func (handler *WsHandler) handleSubscribe(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	eventChan := handler.getEventChannel(client.id)
	if eventChan == nil {
		handler.logger.Error().Str("client_id", client.id).Msg("No event channel found for client")
		return shared.ErrClientChannelNotFound
	}

	if err := handler.broadcaster.Subscribe(ctx, *msg.ProductID, client.id, eventChan); err != nil {
		handler.logger.Error().Err(err).Str("client_id", client.id).Str("product_id", msg.ProductID.String()).Msg("Failed to subscribe to product")
		return err
	}

	response := NewServerMessage(MessageTypeProductUpdate)
	response.ProductID = msg.ProductID
	response.Data["status"] = "subscribed"

	handler.logger.Info().Str("client_id", client.id).Str("product_id", msg.ProductID.String()).Msg("Client subscribed to product")
	return client.Send(response)
}

func (handler *WsHandler) handleUnsubscribe(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	if err := handler.broadcaster.Unsubscribe(ctx, *msg.ProductID, client.id); err != nil {
		return err
	}

	response := NewServerMessage(MessageTypeProductUpdate)
	response.ProductID = msg.ProductID
	response.Data["status"] = "unsubscribed"

	handler.logger.Info().Str("client_id", client.id).Str("product_id", msg.ProductID.String()).Msg("Client unsubscribed from product")
	return client.Send(response)
}

func (handler *WsHandler) handlePlaceBid(client *WsClient, msg *ClientMessage) error {
	amount, ok := msg.Data["amount"].(float64)
	if !ok {
		return shared.ErrInvalidAmount
	}

	ctx := context.Background()

	bidRequest := inbound.PlaceBidRequest{
		ProductID: *msg.ProductID,
		BidderID:  client.userID,
		ClientID:  client.id,
		Amount:    amount,
	}

	placed, err := handler.ledgerService.PlaceBid(ctx, bidRequest)
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), msg.ProductID))
	}

	handler.logger.Info().Str("bid_id", placed.ID.String()).Str("product_id", msg.ProductID.String()).Str("user_id", client.userID.String()).Float64("amount", amount).Msg("Bid placed successfully")

	return nil
}

func (handler *WsHandler) handleCreateProduct(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	name, ok := msg.Data["name"].(string)
	if !ok {
		return shared.ErrNameRequired
	}

	startingPrice, ok := msg.Data["starting_price"].(float64)
	if !ok {
		return shared.ErrStartingPriceRequired
	}

	req := inbound.CreateProductRequest{
		AdminID:       client.userID,
		Name:          name,
		StartingPrice: startingPrice,
	}
	req.Description, _ = msg.Data["description"].(string)
	req.ImageURL, _ = msg.Data["image_url"].(string)
	req.EndTime, _ = msg.Data["end_time"].(string)
	req.Category, _ = msg.Data["category"].(string)
	req.Location, _ = msg.Data["location"].(string)
	req.Condition, _ = msg.Data["condition"].(string)
	if sellerIDStr, ok := msg.Data["seller_id"].(string); ok {
		sellerID, err := uuid.Parse(sellerIDStr)
		if err != nil {
			return shared.ErrInvalidRequest
		}
		req.SellerID = &sellerID
	}

	created, err := handler.catalogService.CreateProduct(ctx, req)
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), nil))
	}

	response := handler.createProductResponse(created, MessageTypeProductCreated, nil)

	handler.logger.Info().Str("product_id", created.ID.String()).Str("user_id", client.userID.String()).Msg("Product created successfully")
	return client.Send(response)
}

func (handler *WsHandler) handleUpdateProduct(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	req := inbound.UpdateProductRequest{
		AdminID:   client.userID,
		ProductID: *msg.ProductID,
	}
	req.Name = optionalString(msg.Data, "name")
	req.Description = optionalString(msg.Data, "description")
	req.ImageURL = optionalString(msg.Data, "image_url")
	req.EndTime = optionalString(msg.Data, "end_time")
	req.Category = optionalString(msg.Data, "category")
	req.Location = optionalString(msg.Data, "location")
	req.Condition = optionalString(msg.Data, "condition")

	updated, err := handler.catalogService.UpdateProduct(ctx, req)
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), msg.ProductID))
	}

	return client.Send(handler.createProductResponse(updated, MessageTypeProductUpdate, msg.ProductID))
}

func (handler *WsHandler) handleDeleteProduct(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	if err := handler.catalogService.DeleteProduct(ctx, client.userID, *msg.ProductID); err != nil {
		return client.Send(NewErrorMessage(err.Error(), msg.ProductID))
	}

	response := NewServerMessage(MessageTypeProductUpdate)
	response.ProductID = msg.ProductID
	response.Data["status"] = "deleted"
	return client.Send(response)
}

func (handler *WsHandler) handleGetProduct(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	p, err := handler.catalogService.GetProduct(ctx, *msg.ProductID)
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), msg.ProductID))
	}

	return client.Send(handler.createProductResponse(p, MessageTypeProductUpdate, msg.ProductID))
}

func (handler *WsHandler) handleListProducts(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	limit, page := listWindow(msg.Data)

	var status *product.Status
	if statusStr, ok := msg.Data["status"].(string); ok && statusStr != "" {
		s := product.Status(statusStr)
		status = &s
	}

	req := inbound.ListProductsRequest{
		Page:     page,
		PageSize: limit,
		Status:   status,
	}

	products, err := handler.catalogService.ListProducts(ctx, req)
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), nil))
	}

	response := NewServerMessage(MessageTypeProductUpdate)
	response.Data["products"] = products
	response.Data["count"] = len(products)

	return client.Send(response)
}

func (handler *WsHandler) handleListBids(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	bids, err := handler.ledgerService.ListBidsForProduct(ctx, *msg.ProductID)
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), msg.ProductID))
	}

	response := NewServerMessage(MessageTypeProductUpdate)
	response.ProductID = msg.ProductID
	response.Data["bids"] = bids
	response.Data["count"] = len(bids)

	return client.Send(response)
}

func (handler *WsHandler) handleMyBids(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	bids, err := handler.ledgerService.ListBidsForBidder(ctx, client.userID)
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), nil))
	}

	response := NewServerMessage(MessageTypeProductUpdate)
	response.Data["bids"] = bids
	response.Data["count"] = len(bids)

	return client.Send(response)
}

func (handler *WsHandler) handleListBidders(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	bidders, err := handler.ledgerService.ListBiddersForProduct(ctx, client.userID, *msg.ProductID)
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), msg.ProductID))
	}

	response := NewServerMessage(MessageTypeProductUpdate)
	response.ProductID = msg.ProductID
	response.Data["bidders"] = bidders
	response.Data["count"] = len(bidders)

	return client.Send(response)
}

func (handler *WsHandler) handleEndAuction(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	result, err := handler.closerService.CloseAuction(ctx, client.userID, *msg.ProductID)
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), msg.ProductID))
	}

	response := NewServerMessage(MessageTypeAuctionEnded)
	response.ProductID = msg.ProductID
	response.Data["status"] = result.Status
	if result.WinnerID != nil {
		response.Data["winner_id"] = result.WinnerID.String()
	}
	if result.FinalPrice != nil {
		response.Data["final_price"] = *result.FinalPrice
	}

	handler.logger.Info().Str("product_id", msg.ProductID.String()).Str("user_id", client.userID.String()).Msg("Auction ended by administrator")
	return client.Send(response)
}

func (handler *WsHandler) handleSubmitPayment(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	phone, _ := msg.Data["phone"].(string)

	req := inbound.SubmitPaymentRequest{
		BidID:    *msg.BidID,
		BidderID: client.userID,
		Phone:    phone,
	}

	b, err := handler.paymentService.SubmitPayment(ctx, req)
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), nil))
	}

	return client.Send(handler.createPaymentResponse(b))
}

func (handler *WsHandler) handleFinalizePayment(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	var b *bid.Bid
	var err error
	if msg.Type == MessageTypeConfirmPayment {
		b, err = handler.paymentService.ConfirmPayment(ctx, client.userID, *msg.BidID)
	} else {
		b, err = handler.paymentService.CancelPayment(ctx, client.userID, *msg.BidID)
	}
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), nil))
	}

	return client.Send(handler.createPaymentResponse(b))
}

func (handler *WsHandler) handleSetBidStatus(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	statusStr, _ := msg.Data["status"].(string)

	req := inbound.SetBidStatusRequest{
		AdminID: client.userID,
		BidID:   *msg.BidID,
		Status:  bid.Status(statusStr),
	}

	b, err := handler.paymentService.SetBidStatus(ctx, req)
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), nil))
	}

	return client.Send(handler.createPaymentResponse(b))
}

func (handler *WsHandler) handleDebugBids(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	report, err := handler.ledgerService.DebugProductBids(ctx, client.userID, *msg.ProductID)
	if err != nil {
		return client.Send(NewErrorMessage(err.Error(), msg.ProductID))
	}

	response := NewServerMessage(MessageTypeProductUpdate)
	response.ProductID = msg.ProductID
	response.Data["report"] = report

	return client.Send(response)
}

func (handler *WsHandler) createProductResponse(p *product.Product, msgType MessageType, productID *uuid.UUID) *ServerMessage {
	response := NewServerMessage(msgType)
	if productID != nil {
		response.ProductID = productID
	}

	response.Data["product_id"] = p.ID
	response.Data["name"] = p.Name
	response.Data["starting_price"] = p.StartingPrice
	response.Data["current_price"] = p.CurrentPrice
	response.Data["status"] = p.Status
	if p.EndTime != nil {
		response.Data["end_time"] = p.EndTime.Format(time.RFC3339)
	}

	return response
}

func (handler *WsHandler) createPaymentResponse(b *bid.Bid) *ServerMessage {
	response := NewServerMessage(MessageTypePaymentUpdate)
	response.ProductID = &b.ProductID

	response.Data["bid_id"] = b.ID
	response.Data["status"] = b.Status
	response.Data["payment_status"] = b.PaymentStatus
	if b.PaymentPhone != "" {
		response.Data["payment_phone"] = b.PaymentPhone
	}
	if b.PaymentDate != nil {
		response.Data["payment_date"] = b.PaymentDate.Format(time.RFC3339)
	}

	return response
}

// listWindow derives the page window from a list_products payload.
// Missing or non-positive limit and offset fall back to the defaults, so a
// malformed window never breaks the request.
func listWindow(data map[string]interface{}) (limit, page int) {
	limit = 10
	if v, ok := data["limit"].(float64); ok && int(v) > 0 {
		limit = int(v)
	}

	offset := 0
	if v, ok := data["offset"].(float64); ok && int(v) > 0 {
		offset = int(v)
	}

	return limit, offset/limit + 1
}

func optionalString(data map[string]interface{}, key string) *string {
	if value, ok := data[key].(string); ok {
		return &value
	}
	return nil
}
