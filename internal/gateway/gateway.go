package gateway

import (
	"context"
	"errors"
)

const (
	ProviderRazorpay = "razorpay"
	ProviderStripe   = "stripe"
)

// ErrNotConfigured : clés de la passerelle absentes de l'environnement
var ErrNotConfigured = errors.New("passerelle de paiement non configurée")

// OrderRequest décrit la commande à enregistrer côté passerelle
type OrderRequest struct {
	Amount   int64 // unités mineures
	Currency string
	Receipt  string
	Notes    Notes
}

// Order est la commande renvoyée par la passerelle
type Order struct {
	ID           string
	Amount       int64
	Currency     string
	Receipt      string
	ClientSecret string // Stripe uniquement
}

// Gateway enregistre une commande auprès du prestataire de paiement
type Gateway interface {
	Provider() string
	// PublicKey est la clé publiable renvoyée au client (keyId)
	PublicKey() string
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
}
