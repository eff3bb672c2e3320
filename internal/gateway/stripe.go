package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/webhook"
)

// ErrInvalidSignature : la signature ne correspond pas au corps reçu
var ErrInvalidSignature = errors.New("signature invalide")

// StripeGateway crée un PaymentIntent par commande. L'ID du PaymentIntent
// tient lieu d'ID de commande passerelle.
type StripeGateway struct {
	publishableKey string
	configured     bool
}

func NewStripe(secretKey, publishableKey string) *StripeGateway {
	if secretKey != "" {
		stripe.Key = secretKey
	}
	return &StripeGateway{publishableKey: publishableKey, configured: secretKey != ""}
}

func (g *StripeGateway) Provider() string  { return ProviderStripe }
func (g *StripeGateway) PublicKey() string { return g.publishableKey }

func (g *StripeGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if !g.configured {
		return nil, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metadata := req.Notes.Encode()
	metadata[noteReceipt] = req.Receipt

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: metadata,
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe paymentintent.new: %w", err)
	}

	return &Order{
		ID:           intent.ID,
		Amount:       intent.Amount,
		Currency:     strings.ToUpper(string(intent.Currency)),
		Receipt:      req.Receipt,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// ParseStripeEvent vérifie l'en-tête Stripe-Signature puis normalise un
// payment_intent.succeeded. Les autres types donnent (nil, nil).
func ParseStripeEvent(payload []byte, signatureHeader, secret string) (*PaymentEvent, error) {
	if secret == "" {
		return nil, ErrNotConfigured
	}

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if event.Type != stripe.EventTypePaymentIntentSucceeded {
		return nil, nil
	}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, ErrMissingEntity
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, errors.Join(ErrMalformedEvent, err)
	}

	paymentID := pi.ID
	if pi.LatestCharge != nil && pi.LatestCharge.ID != "" {
		paymentID = pi.LatestCharge.ID
	}
	amount := pi.AmountReceived
	if amount == 0 {
		amount = pi.Amount
	}

	return &PaymentEvent{
		Provider:       ProviderStripe,
		Kind:           string(event.Type),
		GatewayOrderID: pi.ID,
		PaymentID:      paymentID,
		Status:         string(pi.Status),
		Amount:         amount,
		Currency:       strings.ToUpper(string(pi.Currency)),
		Notes:          NotesFromMetadata(pi.Metadata),
		Raw:            payload,
	}, nil
}
