package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront_back_end/internal/models"
)

// ProductStore donne accès au stock des produits
type ProductStore interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	SetStock(ctx context.Context, id string, stock int) error
	RecordMovement(ctx context.Context, movement models.StockMovement) error
	RaiseAlert(ctx context.Context, alert models.StockAlert) error
}

// CacheInvalidator purge le cache produit après une écriture de stock
type CacheInvalidator interface {
	InvalidateProduct(ctx context.Context, productID string) error
}

type StockUpdate struct {
	ProductID string
	Quantity  int
	OrderID   string
}

type StockChange struct {
	ProductID string
	Previous  int
	Current   int
}

type StockFailure struct {
	ProductID string
	Err       error
}

// StockReport liste les produits ajustés et ceux en échec. Pas de rollback.
type StockReport struct {
	Applied []StockChange
	Failed  []StockFailure
}

func (r StockReport) FailedIDs() []string {
	ids := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		ids = append(ids, f.ProductID)
	}
	return ids
}

type StockAdjuster struct {
	products ProductStore
	cache    CacheInvalidator
	log      *zap.Logger
	now      func() time.Time
}

// NewStockAdjuster : cache peut être nil
func NewStockAdjuster(products ProductStore, cache CacheInvalidator, log *zap.Logger) *StockAdjuster {
	if log == nil {
		log = zap.NewNop()
	}
	return &StockAdjuster{products: products, cache: cache, log: log, now: time.Now}
}

// Apply décrémente le stock de chaque produit sans jamais passer sous zéro.
// L'échec d'un article n'interrompt pas les suivants.
func (a *StockAdjuster) Apply(ctx context.Context, updates []StockUpdate) StockReport {
	var report StockReport
	for _, u := range updates {
		change, err := a.applyOne(ctx, u)
		if err != nil {
			a.log.Error("❌ Erreur mise à jour stock",
				zap.String("product_id", u.ProductID), zap.Int("qty", u.Quantity), zap.Error(err))
			report.Failed = append(report.Failed, StockFailure{ProductID: u.ProductID, Err: err})
			continue
		}
		report.Applied = append(report.Applied, change)
	}
	return report
}

func (a *StockAdjuster) applyOne(ctx context.Context, u StockUpdate) (StockChange, error) {
	if u.ProductID == "" {
		return StockChange{}, errors.New("produit sans identifiant")
	}
	if u.Quantity <= 0 {
		return StockChange{}, fmt.Errorf("quantité invalide: %d", u.Quantity)
	}

	product, err := a.products.GetProduct(ctx, u.ProductID)
	if err != nil {
		return StockChange{}, fmt.Errorf("lecture produit: %w", err)
	}

	newStock := max(product.Stock-u.Quantity, 0)
	if err := a.products.SetStock(ctx, u.ProductID, newStock); err != nil {
		return StockChange{}, fmt.Errorf("écriture stock: %w", err)
	}

	change := StockChange{ProductID: u.ProductID, Previous: product.Stock, Current: newStock}
	a.log.Info("📦 Stock mis à jour",
		zap.String("product_id", u.ProductID), zap.Int("prev", product.Stock), zap.Int("new", newStock))

	// le stock est écrit : la suite ne fait plus échouer l'article
	now := a.now()
	movement := models.StockMovement{
		ID:        uuid.New(),
		ProductID: u.ProductID,
		Type:      models.MovementSale,
		Quantity:  -u.Quantity,
		PrevStock: product.Stock,
		NewStock:  newStock,
		Reason:    "Commande payée",
		OrderID:   u.OrderID,
		CreatedAt: now,
	}
	if err := a.products.RecordMovement(ctx, movement); err != nil {
		a.log.Warn("⚠️ Mouvement de stock non enregistré", zap.String("product_id", u.ProductID), zap.Error(err))
	}

	if alertType := models.AlertFor(newStock, product.LowStockThreshold); alertType != "" {
		threshold := product.LowStockThreshold
		if threshold <= 0 {
			threshold = models.DefaultLowStockThreshold
		}
		alert := models.StockAlert{
			ID:             uuid.New(),
			ProductID:      u.ProductID,
			ProductName:    product.Name,
			CurrentStock:   newStock,
			ThresholdStock: threshold,
			AlertType:      alertType,
			CreatedAt:      now,
		}
		if err := a.products.RaiseAlert(ctx, alert); err != nil {
			a.log.Warn("⚠️ Alerte stock non créée", zap.String("product_id", u.ProductID), zap.Error(err))
		}
	}

	if a.cache != nil {
		if err := a.cache.InvalidateProduct(ctx, u.ProductID); err != nil {
			a.log.Warn("⚠️ Cache produit non invalidé", zap.String("product_id", u.ProductID), zap.Error(err))
		}
	}
	return change, nil
}
