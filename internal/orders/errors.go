package orders

import (
	"errors"
	"fmt"

	"storefront_back_end/internal/gateway"
)

var (
	ErrInvalidSignature    = gateway.ErrInvalidSignature
	ErrMalformedEvent      = gateway.ErrMalformedEvent
	ErrMissingSignature    = errors.New("signature manquante")
	ErrSecretNotConfigured = errors.New("secret de signature non configuré")
	ErrOrderNotFound       = errors.New("commande introuvable")
	ErrProductNotFound     = errors.New("produit introuvable")
)

// ValidationError : requête refusée avant tout appel externe.
// Le message peut être affiché tel quel au client.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// GatewayError : la passerelle a refusé ou n'a pas pu créer la commande
type GatewayError struct {
	Provider string
	Err      error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("passerelle %s: %v", e.Provider, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }
