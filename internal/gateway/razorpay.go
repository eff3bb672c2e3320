package gateway

import (
	"context"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"
)

// RazorpayGateway crée les commandes via l'API Orders de Razorpay
type RazorpayGateway struct {
	client    *razorpay.Client
	keyID     string
	publicKey string
}

// NewRazorpay : keyID/keySecret peuvent être vides, l'erreur est remontée au
// premier appel (ErrNotConfigured)
func NewRazorpay(keyID, keySecret, publicKey string) *RazorpayGateway {
	g := &RazorpayGateway{keyID: keyID, publicKey: publicKey}
	if keyID != "" && keySecret != "" {
		g.client = razorpay.NewClient(keyID, keySecret)
	}
	if g.publicKey == "" {
		g.publicKey = keyID
	}
	return g
}

func (g *RazorpayGateway) Provider() string  { return ProviderRazorpay }
func (g *RazorpayGateway) PublicKey() string { return g.publicKey }

func (g *RazorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if g.client == nil {
		return nil, ErrNotConfigured
	}
	// le SDK ne prend pas de contexte : on vérifie au moins l'annulation avant l'appel
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	notes := make(map[string]interface{})
	for k, v := range req.Notes.Encode() {
		notes[k] = v
	}

	body, err := g.client.Order.Create(map[string]interface{}{
		"amount":          req.Amount,
		"currency":        strings.ToUpper(req.Currency),
		"receipt":         req.Receipt,
		"payment_capture": 1,
		"notes":           notes,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay orders.create: %w", err)
	}
	return orderFromRazorpay(body)
}

func orderFromRazorpay(body map[string]interface{}) (*Order, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay orders.create: réponse sans id")
	}
	order := &Order{ID: id}
	if amount, ok := numberValue(body["amount"]); ok {
		order.Amount = int64(amount)
	}
	order.Currency, _ = body["currency"].(string)
	order.Receipt, _ = body["receipt"].(string)
	return order, nil
}
