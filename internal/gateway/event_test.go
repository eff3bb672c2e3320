package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRazorpayPaymentCaptured(t *testing.T) {
	raw := []byte(`{
		"event": "payment.captured",
		"payload": {"payment": {"entity": {
			"id": "pay_1", "order_id": "order_ABC", "status": "captured",
			"amount": 100000, "currency": "INR",
			"notes": {"customerName": "A", "customerEmail": "a@x.com",
				"items": "[{\"productId\":\"P1\",\"qty\":2,\"price\":500}]"}
		}}}
	}`)

	event, err := ParseRazorpayEvent(raw)
	require.NoError(t, err)
	require.NotNil(t, event)

	assert.Equal(t, "order_ABC", event.GatewayOrderID)
	assert.Equal(t, "pay_1", event.PaymentID)
	assert.Equal(t, int64(100000), event.Amount)
	assert.Equal(t, "INR", event.Currency)
	assert.True(t, event.IsPaid())
	require.Len(t, event.Notes.Items, 1)
	assert.Equal(t, "P1", event.Notes.Items[0].ProductID)
	assert.Equal(t, raw, event.Raw)
}

func TestParseRazorpayOrderPaidPicksFirstPayment(t *testing.T) {
	raw := []byte(`{
		"event": "order.paid",
		"payload": {"order": {"entity": {
			"id": "order_ABC", "status": "paid", "amount_paid": 5000,
			"notes": [],
			"payments": [{"id": "pay_first"}, {"id": "pay_second"}]
		}}}
	}`)

	event, err := ParseRazorpayEvent(raw)
	require.NoError(t, err)
	require.NotNil(t, event)

	assert.Equal(t, "order_ABC", event.GatewayOrderID)
	assert.Equal(t, "pay_first", event.PaymentID)
	assert.Equal(t, int64(5000), event.Amount)
	assert.Equal(t, "INR", event.Currency)
	assert.True(t, event.IsPaid())
}

func TestParseRazorpayOrderPaidFallsBackToPaymentEntity(t *testing.T) {
	raw := []byte(`{
		"event": "order.paid",
		"payload": {
			"payment": {"entity": {"id": "pay_9", "order_id": "order_ABC"}},
			"order": {"entity": {"id": "order_ABC", "status": "paid"}}
		}
	}`)

	event, err := ParseRazorpayEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "pay_9", event.PaymentID)
}

func TestParseRazorpayIgnoredAndBroken(t *testing.T) {
	event, err := ParseRazorpayEvent([]byte(`{"event":"refund.created","payload":{}}`))
	assert.NoError(t, err)
	assert.Nil(t, event)

	_, err = ParseRazorpayEvent([]byte(`{"event":"payment.captured","payload":{}}`))
	assert.ErrorIs(t, err, ErrMissingEntity)

	_, err = ParseRazorpayEvent([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestPaymentEventIsPaid(t *testing.T) {
	assert.False(t, (&PaymentEvent{Kind: EventPaymentCaptured, Status: "failed"}).IsPaid())
	assert.False(t, (&PaymentEvent{Kind: EventPaymentCaptured, Status: "authorized"}).IsPaid())
	assert.True(t, (&PaymentEvent{Kind: EventOrderPaid}).IsPaid())
}
