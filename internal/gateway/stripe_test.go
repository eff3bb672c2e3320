package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83/webhook"
)

const stripeTestSecret = "whsec_test_secret"

func signStripe(payload []byte) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    stripeTestSecret,
		Timestamp: time.Now(),
	})
	return signed.Header
}

func TestParseStripePaymentIntentSucceeded(t *testing.T) {
	payload := []byte(`{
		"id": "evt_1", "object": "event", "type": "payment_intent.succeeded",
		"data": {"object": {
			"id": "pi_123", "object": "payment_intent", "status": "succeeded",
			"amount": 2500, "amount_received": 2500, "currency": "eur",
			"latest_charge": "ch_1",
			"metadata": {"customerEmail": "a@x.com", "items": "[{\"productId\":\"P1\",\"qty\":1}]"}
		}}
	}`)

	event, err := ParseStripeEvent(payload, signStripe(payload), stripeTestSecret)
	require.NoError(t, err)
	require.NotNil(t, event)

	assert.Equal(t, "pi_123", event.GatewayOrderID)
	assert.Equal(t, "ch_1", event.PaymentID)
	assert.Equal(t, int64(2500), event.Amount)
	assert.Equal(t, "EUR", event.Currency)
	assert.True(t, event.IsPaid())
	assert.Equal(t, "a@x.com", event.Notes.CustomerEmail)
	require.Len(t, event.Notes.Items, 1)
}

func TestParseStripeRejectsBadSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`)

	_, err := ParseStripeEvent(payload, "t=1700000000,v1=deadbeef", stripeTestSecret)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = ParseStripeEvent(payload, signStripe(payload), "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestParseStripeIgnoresOtherEvents(t *testing.T) {
	payload := []byte(`{"id":"evt_2","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`)

	event, err := ParseStripeEvent(payload, signStripe(payload), stripeTestSecret)
	assert.NoError(t, err)
	assert.Nil(t, event)
}

func TestUnconfiguredGatewaysFailFast(t *testing.T) {
	_, err := NewStripe("", "pk").CreateOrder(context.Background(), OrderRequest{Amount: 100})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewRazorpay("", "", "").CreateOrder(context.Background(), OrderRequest{Amount: 100})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOrderFromRazorpayResponse(t *testing.T) {
	order, err := orderFromRazorpay(map[string]interface{}{
		"id": "order_ABC", "amount": float64(100000), "currency": "INR", "receipt": "rcpt_1",
	})
	require.NoError(t, err)
	assert.Equal(t, &Order{ID: "order_ABC", Amount: 100000, Currency: "INR", Receipt: "rcpt_1"}, order)

	_, err = orderFromRazorpay(map[string]interface{}{})
	assert.Error(t, err)
}
