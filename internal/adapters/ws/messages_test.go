package ws

import (
	"fmt"
	"testing"

	"fyndak-auction-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestParseClientMessage(t *testing.T) {
	productID := uuid.New()

	raw := fmt.Sprintf(`{"type":"place_bid","product_id":"%s","data":{"amount":150}}`, productID)
	msg, err := ParseClientMessage([]byte(raw))
	require.NoError(t, err)
	require.Equal(t, MessageTypePlaceBid, msg.Type)
	require.Equal(t, productID, *msg.ProductID)
	require.Equal(t, 150.0, msg.Data["amount"])

	_, err = ParseClientMessage([]byte(`{"data":{}}`))
	require.ErrorIs(t, err, shared.ErrMessageTypeRequired)

	_, err = ParseClientMessage([]byte(`not json`))
	require.Error(t, err)
}

func TestClientMessageValidate(t *testing.T) {
	productID := uuid.New()
	bidID := uuid.New()

	tests := []struct {
		name    string
		msg     ClientMessage
		wantErr error
	}{
		{
			name:    "subscribe needs a product id",
			msg:     ClientMessage{Type: MessageTypeSubscribe},
			wantErr: shared.ErrProductIDRequired,
		},
		{
			name: "subscribe with product id",
			msg:  ClientMessage{Type: MessageTypeSubscribe, ProductID: &productID},
		},
		{
			name:    "place_bid needs an amount",
			msg:     ClientMessage{Type: MessageTypePlaceBid, ProductID: &productID, Data: map[string]interface{}{}},
			wantErr: shared.ErrInvalidAmount,
		},
		{
			name:    "place_bid rejects a non-positive amount",
			msg:     ClientMessage{Type: MessageTypePlaceBid, ProductID: &productID, Data: map[string]interface{}{"amount": -5.0}},
			wantErr: shared.ErrInvalidAmount,
		},
		{
			name: "place_bid with amount",
			msg:  ClientMessage{Type: MessageTypePlaceBid, ProductID: &productID, Data: map[string]interface{}{"amount": 150.0}},
		},
		{
			name:    "create_product needs a name",
			msg:     ClientMessage{Type: MessageTypeCreateProduct, Data: map[string]interface{}{"starting_price": 10.0}},
			wantErr: shared.ErrNameRequired,
		},
		{
			name:    "create_product needs a starting price",
			msg:     ClientMessage{Type: MessageTypeCreateProduct, Data: map[string]interface{}{"name": "Lamp"}},
			wantErr: shared.ErrStartingPriceRequired,
		},
		{
			name: "create_product complete",
			msg:  ClientMessage{Type: MessageTypeCreateProduct, Data: map[string]interface{}{"name": "Lamp", "starting_price": 10.0}},
		},
		{
			name:    "submit_payment needs a bid id",
			msg:     ClientMessage{Type: MessageTypeSubmitPayment, Data: map[string]interface{}{"phone": "070"}},
			wantErr: shared.ErrBidIDRequired,
		},
		{
			name:    "submit_payment needs a phone",
			msg:     ClientMessage{Type: MessageTypeSubmitPayment, BidID: &bidID, Data: map[string]interface{}{}},
			wantErr: shared.ErrPhoneRequired,
		},
		{
			name: "submit_payment complete",
			msg:  ClientMessage{Type: MessageTypeSubmitPayment, BidID: &bidID, Data: map[string]interface{}{"phone": "070"}},
		},
		{
			name:    "confirm_payment needs a bid id",
			msg:     ClientMessage{Type: MessageTypeConfirmPayment},
			wantErr: shared.ErrBidIDRequired,
		},
		{
			name:    "set_bid_status needs a status",
			msg:     ClientMessage{Type: MessageTypeSetBidStatus, BidID: &bidID, Data: map[string]interface{}{}},
			wantErr: shared.ErrStatusRequired,
		},
		{
			name: "set_bid_status complete",
			msg:  ClientMessage{Type: MessageTypeSetBidStatus, BidID: &bidID, Data: map[string]interface{}{"status": "won"}},
		},
		{
			name:    "end_auction needs a product id",
			msg:     ClientMessage{Type: MessageTypeEndAuction},
			wantErr: shared.ErrProductIDRequired,
		},
		{
			name: "list_products needs nothing",
			msg:  ClientMessage{Type: MessageTypeListProducts},
		},
		{
			name: "ping needs nothing",
			msg:  ClientMessage{Type: MessageTypePing},
		},
		{
			name:    "unknown type",
			msg:     ClientMessage{Type: MessageType("teleport")},
			wantErr: shared.ErrUnknownMessageType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
