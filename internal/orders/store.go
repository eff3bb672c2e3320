package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront_back_end/internal/models"
)

// Store est le contrat de persistance des commandes : création si absente
// puis fusion de champs. Tout écrivain appelle CreateIfAbsent avant PatchMerge.
type Store interface {
	// CreateIfAbsent n'écrase jamais un document existant
	CreateIfAbsent(ctx context.Context, order *models.Order) (bool, error)
	// PatchMerge fusionne les champs non nil ; le statut ne recule jamais
	PatchMerge(ctx context.Context, id string, patch models.OrderPatch) error
	// Get retourne ErrOrderNotFound si la commande n'existe pas
	Get(ctx context.Context, id string) (*models.Order, error)
}

// StoreError : échec d'écriture ou de lecture du stockage des commandes
type StoreError struct {
	Op  string
	ID  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// DefaultCurrency est la devise des commandes Razorpay
const DefaultCurrency = "INR"

func newStoreError(op, id string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, ID: id, Err: err}
}

// upsert : createIfAbsent(placeholder) puis patchMerge(patch)
func upsert(ctx context.Context, store Store, placeholder *models.Order, patch models.OrderPatch) error {
	if _, err := store.CreateIfAbsent(ctx, placeholder); err != nil {
		return newStoreError("createIfAbsent", placeholder.ID, err)
	}
	if err := store.PatchMerge(ctx, placeholder.ID, patch); err != nil {
		return newStoreError("patchMerge", placeholder.ID, err)
	}
	return nil
}

// newPlaceholder est le document minimal écrit avant toute fusion
func newPlaceholder(recordID, gatewayOrderID string, now time.Time) *models.Order {
	return &models.Order{
		ID:             recordID,
		GatewayOrderID: gatewayOrderID,
		Status:         models.StatusCreated,
		Currency:       DefaultCurrency,
		OrderDate:      now,
		UpdatedAt:      now,
	}
}

// nonEmpty retourne nil pour une chaîne vide (champ inchangé dans un patch)
func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
