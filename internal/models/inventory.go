package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MovementSale = "sale"

	AlertLowStock   = "low_stock"
	AlertOutOfStock = "out_of_stock"

	// Seuil par défaut quand le produit n'en définit pas
	DefaultLowStockThreshold = 10
)

type StockMovement struct {
	ID        uuid.UUID `json:"id"`
	ProductID string    `json:"product_id"`
	Type      string    `json:"type"` // "sale"
	Quantity  int       `json:"quantity"`
	PrevStock int       `json:"prev_stock"`
	NewStock  int       `json:"new_stock"`
	Reason    string    `json:"reason"`
	OrderID   string    `json:"order_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type StockAlert struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      string     `json:"product_id"`
	ProductName    string     `json:"product_name"`
	CurrentStock   int        `json:"current_stock"`
	ThresholdStock int        `json:"threshold_stock"`
	AlertType      string     `json:"alert_type"` // "low_stock", "out_of_stock"
	IsResolved     bool       `json:"is_resolved"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// AlertFor retourne le type d'alerte à lever pour ce niveau de stock, ou ""
func AlertFor(stock, threshold int) string {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	switch {
	case stock == 0:
		return AlertOutOfStock
	case stock <= threshold:
		return AlertLowStock
	}
	return ""
}
