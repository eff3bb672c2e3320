package gateway

import (
	"encoding/json"
	"errors"
	"strings"
)

// Types d'événements traités
const (
	EventPaymentCaptured        = "payment.captured"
	EventOrderPaid              = "order.paid"
	EventPaymentIntentSucceeded = "payment_intent.succeeded"
)

var (
	ErrMalformedEvent = errors.New("événement webhook illisible")
	ErrMissingEntity  = errors.New("entité absente de l'événement")
)

// PaymentEvent est la forme normalisée d'un événement de paiement,
// quelle que soit la passerelle d'origine
type PaymentEvent struct {
	Provider       string
	Kind           string
	GatewayOrderID string
	PaymentID      string // peut être vide selon la forme de l'événement
	Status         string
	Amount         int64
	Currency       string
	Notes          Notes
	Raw            []byte
}

// IsPaid : la passerelle considère le paiement comme encaissé
func (e *PaymentEvent) IsPaid() bool {
	switch strings.ToLower(e.Status) {
	case "captured", "paid", "succeeded":
		return true
	case "":
		// pas de statut dans l'entité : le type d'événement fait foi
		return e.Kind == EventPaymentCaptured || e.Kind == EventOrderPaid || e.Kind == EventPaymentIntentSucceeded
	}
	return false
}

type razorpayEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *razorpayWrapper `json:"payment"`
		Order   *razorpayWrapper `json:"order"`
	} `json:"payload"`
}

type razorpayWrapper struct {
	Entity json.RawMessage `json:"entity"`
}

type razorpayEntity struct {
	ID         string          `json:"id"`
	OrderID    string          `json:"order_id"`
	Status     string          `json:"status"`
	Amount     *int64          `json:"amount"`
	AmountPaid *int64          `json:"amount_paid"`
	Currency   string          `json:"currency"`
	Notes      json.RawMessage `json:"notes"`
	Payments   []struct {
		ID string `json:"id"`
	} `json:"payments"`
}

// ParseRazorpayEvent normalise un corps webhook Razorpay déjà vérifié.
// Retourne (nil, nil) pour les types d'événements ignorés.
func ParseRazorpayEvent(raw []byte) (*PaymentEvent, error) {
	var env razorpayEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.Join(ErrMalformedEvent, err)
	}

	var wrapper *razorpayWrapper
	switch env.Event {
	case EventPaymentCaptured:
		wrapper = env.Payload.Payment
	case EventOrderPaid:
		wrapper = env.Payload.Order
	default:
		return nil, nil
	}
	if wrapper == nil || len(wrapper.Entity) == 0 || string(wrapper.Entity) == "null" {
		return nil, ErrMissingEntity
	}

	var entity razorpayEntity
	if err := json.Unmarshal(wrapper.Entity, &entity); err != nil {
		return nil, errors.Join(ErrMalformedEvent, err)
	}

	event := &PaymentEvent{
		Provider: ProviderRazorpay,
		Kind:     env.Event,
		Status:   entity.Status,
		Currency: entity.Currency,
		Notes:    DecodeNotes(entity.Notes),
		Raw:      raw,
	}
	if event.Currency == "" {
		event.Currency = "INR"
	}
	if entity.Amount != nil {
		event.Amount = *entity.Amount
	} else if entity.AmountPaid != nil {
		event.Amount = *entity.AmountPaid
	}

	if env.Event == EventPaymentCaptured {
		// entité paiement : l'ID de commande est le parent
		event.GatewayOrderID = entity.OrderID
		event.PaymentID = entity.ID
	} else {
		// entité commande : premier paiement de la liste, sinon l'entité
		// paiement qui accompagne l'événement
		event.GatewayOrderID = entity.ID
		if len(entity.Payments) > 0 {
			event.PaymentID = entity.Payments[0].ID
		} else if env.Payload.Payment != nil {
			var payment razorpayEntity
			if json.Unmarshal(env.Payload.Payment.Entity, &payment) == nil {
				event.PaymentID = payment.ID
			}
		}
	}
	return event, nil
}
