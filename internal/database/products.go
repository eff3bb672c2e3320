package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"storefront_back_end/internal/models"
	"storefront_back_end/internal/orders"
)

// ProductRepository : stock, mouvements et alertes du keyspace produits
type ProductRepository struct {
	session *gocql.Session
}

func NewProductRepository(session *gocql.Session) *ProductRepository {
	return &ProductRepository{session: session}
}

func (r *ProductRepository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := r.session.Query(`SELECT product_id, name, price, stock, low_stock_threshold, image_urls, is_active, updated_at
		FROM products WHERE product_id = ?`, id).
		WithContext(ctx).
		Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.LowStockThreshold, &p.ImageURLs, &p.IsActive, &p.UpdatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, orders.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lecture produit %s: %w", id, err)
	}
	return &p, nil
}

// SetStock écrit le nouveau stock (lecture-modification-écriture, pas de CAS)
func (r *ProductRepository) SetStock(ctx context.Context, id string, stock int) error {
	err := r.session.Query(`UPDATE products SET stock = ?, updated_at = ? WHERE product_id = ?`,
		stock, time.Now(), id).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("écriture stock %s: %w", id, err)
	}
	return nil
}

func (r *ProductRepository) RecordMovement(ctx context.Context, m models.StockMovement) error {
	return r.session.Query(`
		INSERT INTO stock_movements (
			id, product_id, type, quantity, prev_stock, new_stock, reason, order_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		gocql.UUID(m.ID), m.ProductID, m.Type, m.Quantity, m.PrevStock, m.NewStock, m.Reason, m.OrderID, m.CreatedAt,
	).WithContext(ctx).Exec()
}

// RaiseAlert ne crée pas de doublon si une alerte non résolue existe déjà
func (r *ProductRepository) RaiseAlert(ctx context.Context, a models.StockAlert) error {
	var existing gocql.UUID
	err := r.session.Query(`SELECT id FROM stock_alerts WHERE product_id = ? AND is_resolved = false LIMIT 1 ALLOW FILTERING`,
		a.ProductID).WithContext(ctx).Scan(&existing)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gocql.ErrNotFound) {
		return fmt.Errorf("lecture alertes %s: %w", a.ProductID, err)
	}

	return r.session.Query(`
		INSERT INTO stock_alerts (
			id, product_id, product_name, current_stock, threshold_stock,
			alert_type, is_resolved, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		gocql.UUID(a.ID), a.ProductID, a.ProductName, a.CurrentStock, a.ThresholdStock,
		a.AlertType, a.IsResolved, a.CreatedAt,
	).WithContext(ctx).Exec()
}
