package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanAdvanceTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{"", StatusCreated, true},
		{"", StatusPaid, true},
		{StatusCreated, StatusPaid, true},
		{StatusPaid, StatusCreated, false},
		{StatusPaid, StatusPaid, false},
		{StatusShipped, StatusPaid, false},
		{StatusPaid, StatusDelivered, true},
		{StatusShipped, StatusCancelled, true},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPaid, false},
		{StatusCreated, "refunded", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanAdvanceTo(tt.to))
		})
	}
}

func TestStatusesBelow(t *testing.T) {
	assert.Equal(t, []string{"", "created"}, StatusesBelow(StatusPaid))
	assert.Equal(t, []string{""}, StatusesBelow(StatusCreated))
	assert.NotContains(t, StatusesBelow(StatusCancelled), "delivered")
}

func TestPatchApplyShallowMerge(t *testing.T) {
	name := "A"
	paid := StatusPaid
	created := StatusCreated
	order := &Order{
		ID:       "order_A",
		Status:   StatusCreated,
		Items:    []OrderItem{{ProductID: "P1", Quantity: 1}},
		Metadata: map[string]string{"a": "1"},
	}

	OrderPatch{CustomerName: &name, Status: &paid, Metadata: map[string]string{"b": "2"}}.Apply(order)
	assert.Equal(t, "A", order.CustomerName)
	assert.Equal(t, StatusPaid, order.Status)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, order.Metadata)
	assert.Len(t, order.Items, 1)

	items := []OrderItem{{ProductID: "P2", Quantity: 3}}
	patch := OrderPatch{Status: &created, Items: items}
	patch.Apply(order)
	patch.Apply(order)
	assert.Equal(t, StatusPaid, order.Status)
	assert.Equal(t, items, order.Items)

	items[0].Quantity = 99
	assert.Equal(t, 3, order.Items[0].Quantity)
}

func TestOrderClone(t *testing.T) {
	order := &Order{ID: "x", Address: &Address{City: "Pune"}, Payment: &PaymentDetails{PaymentID: "p"}}
	c := order.Clone()
	c.Address.City = "Delhi"
	c.Payment.PaymentID = "q"
	assert.Equal(t, "Pune", order.Address.City)
	assert.Equal(t, "p", order.Payment.PaymentID)
	assert.Nil(t, (*Order)(nil).Clone())
}

func TestMergePaymentKeepsRecordedIdentifiers(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	current := &PaymentDetails{PaymentID: "pay_1", Signature: "sig", Verified: true, Source: PaymentSourceConfirmation}
	next := &PaymentDetails{Verified: true, VerifiedAt: at, Source: PaymentSourceWebhook, Raw: "{}"}

	merged := MergePayment(current, next)
	assert.Equal(t, "pay_1", merged.PaymentID)
	assert.Equal(t, "sig", merged.Signature)
	assert.Equal(t, "{}", merged.Raw)
	assert.Equal(t, PaymentSourceWebhook, merged.Source)
	assert.Equal(t, at, merged.VerifiedAt)

	// un nouvel identifiant l'emporte
	merged = MergePayment(current, &PaymentDetails{PaymentID: "pay_2"})
	assert.Equal(t, "pay_2", merged.PaymentID)
	assert.Equal(t, "sig", merged.Signature)

	assert.Same(t, current, MergePayment(current, nil))
	assert.Equal(t, "pay_3", MergePayment(nil, &PaymentDetails{PaymentID: "pay_3"}).PaymentID)
}

func TestPatchApplyMergesPayment(t *testing.T) {
	order := &Order{Status: StatusPaid, Payment: &PaymentDetails{PaymentID: "pay_1", Signature: "sig"}}
	OrderPatch{Payment: &PaymentDetails{Verified: true, Source: PaymentSourceWebhook}}.Apply(order)

	require.NotNil(t, order.Payment)
	assert.Equal(t, "pay_1", order.Payment.PaymentID)
	assert.Equal(t, "sig", order.Payment.Signature)
	assert.Equal(t, PaymentSourceWebhook, order.Payment.Source)
}
