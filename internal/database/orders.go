package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gocql/gocql"

	"storefront_back_end/internal/models"
	"storefront_back_end/internal/orders"
)

const orderColumns = `order_id, gateway_order_id, order_number, receipt, status, amount, currency,
	customer_name, customer_email, external_user_id, address, items, payment, metadata, order_date, updated_at`

// OrderRepository stocke les commandes dans ScyllaDB. items, address et
// payment sont sérialisés en JSON dans des colonnes text.
type OrderRepository struct {
	session *gocql.Session
	now     func() time.Time
}

func NewOrderRepository(session *gocql.Session) *OrderRepository {
	return &OrderRepository{session: session, now: time.Now}
}

// CreateIfAbsent : INSERT ... IF NOT EXISTS (LWT)
func (r *OrderRepository) CreateIfAbsent(ctx context.Context, order *models.Order) (bool, error) {
	row, err := orderRow(order)
	if err != nil {
		return false, err
	}
	query := `INSERT INTO orders (` + orderColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`

	existing := make(map[string]interface{})
	applied, err := r.session.Query(query, row...).WithContext(ctx).MapScanCAS(existing)
	if err != nil {
		return false, fmt.Errorf("insert commande %s: %w", order.ID, err)
	}
	return applied, nil
}

// PatchMerge écrit les champs non nil puis avance le statut par LWT
func (r *OrderRepository) PatchMerge(ctx context.Context, id string, patch models.OrderPatch) error {
	if patch.Payment != nil {
		current, err := r.payment(ctx, id)
		if err != nil {
			return err
		}
		patch.Payment = models.MergePayment(current, patch.Payment)
	}

	sets, args, err := patchAssignments(patch)
	if err != nil {
		return err
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, r.now(), id)

	query := "UPDATE orders SET " + strings.Join(sets, ", ") + " WHERE order_id = ?"
	if err := r.session.Query(query, args...).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("update commande %s: %w", id, err)
	}

	if patch.Status != nil {
		return r.advanceStatus(ctx, id, *patch.Status)
	}
	return nil
}

// payment relit le paiement enregistré pour ne pas effacer ses identifiants
func (r *OrderRepository) payment(ctx context.Context, id string) (*models.PaymentDetails, error) {
	var raw string
	err := r.session.Query(`SELECT payment FROM orders WHERE order_id = ?`, id).WithContext(ctx).Scan(&raw)
	if errors.Is(err, gocql.ErrNotFound) || (err == nil && raw == "") {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lecture paiement %s: %w", id, err)
	}
	var p models.PaymentDetails
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, nil
	}
	return &p, nil
}

// advanceStatus n'applique le statut que depuis un rang inférieur
func (r *OrderRepository) advanceStatus(ctx context.Context, id string, next models.OrderStatus) error {
	from := models.StatusesBelow(next)
	if len(from) == 0 {
		return nil
	}
	query := `UPDATE orders SET status = ? WHERE order_id = ? IF status IN ?`
	current := make(map[string]interface{})
	applied, err := r.session.Query(query, string(next), id, from).WithContext(ctx).MapScanCAS(current)
	if err != nil {
		return fmt.Errorf("statut commande %s: %w", id, err)
	}
	if applied {
		return nil
	}

	// une colonne status nulle ne matche pas IN : second essai explicite
	if s, _ := current["status"].(string); s == "" && models.OrderStatus("").CanAdvanceTo(next) {
		query = `UPDATE orders SET status = ? WHERE order_id = ? IF status = null`
		if _, err := r.session.Query(query, string(next), id).WithContext(ctx).MapScanCAS(map[string]interface{}{}); err != nil {
			return fmt.Errorf("statut commande %s: %w", id, err)
		}
	}
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	var (
		order                   models.Order
		status                  string
		address, items, payment string
	)
	err := r.session.Query(`SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, id).
		WithContext(ctx).
		Scan(&order.ID, &order.GatewayOrderID, &order.OrderNumber, &order.Receipt, &status, &order.Amount,
			&order.Currency, &order.CustomerName, &order.CustomerEmail, &order.ExternalUserID,
			&address, &items, &payment, &order.Metadata, &order.OrderDate, &order.UpdatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, orders.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lecture commande %s: %w", id, err)
	}
	order.Status = models.OrderStatus(status)

	if address != "" {
		var addr models.Address
		if err := json.Unmarshal([]byte(address), &addr); err == nil {
			order.Address = &addr
		}
	}
	if items != "" {
		if err := json.Unmarshal([]byte(items), &order.Items); err != nil {
			return nil, fmt.Errorf("items commande %s illisibles: %w", id, err)
		}
	}
	if payment != "" {
		var p models.PaymentDetails
		if err := json.Unmarshal([]byte(payment), &p); err == nil {
			order.Payment = &p
		}
	}
	return &order, nil
}

func orderRow(o *models.Order) ([]interface{}, error) {
	address, err := jsonText(o.Address, o.Address.IsZero())
	if err != nil {
		return nil, err
	}
	items, err := jsonText(o.Items, o.Items == nil)
	if err != nil {
		return nil, err
	}
	payment, err := jsonText(o.Payment, o.Payment == nil)
	if err != nil {
		return nil, err
	}
	return []interface{}{
		o.ID, o.GatewayOrderID, o.OrderNumber, o.Receipt, string(o.Status), o.Amount, o.Currency,
		o.CustomerName, o.CustomerEmail, o.ExternalUserID, address, items, payment, o.Metadata,
		o.OrderDate, o.UpdatedAt,
	}, nil
}

// patchAssignments traduit le patch en affectations CQL (hors statut)
func patchAssignments(p models.OrderPatch) ([]string, []interface{}, error) {
	var (
		sets []string
		args []interface{}
	)
	text := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}
	text("gateway_order_id", p.GatewayOrderID)
	text("order_number", p.OrderNumber)
	text("receipt", p.Receipt)
	text("currency", p.Currency)
	text("customer_name", p.CustomerName)
	text("customer_email", p.CustomerEmail)
	text("external_user_id", p.ExternalUserID)

	if p.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, *p.Amount)
	}
	if p.OrderDate != nil {
		sets = append(sets, "order_date = ?")
		args = append(args, *p.OrderDate)
	}

	for _, field := range []struct {
		col   string
		value interface{}
		set   bool
	}{
		{"address", p.Address, p.Address != nil},
		{"items", p.Items, p.Items != nil},
		{"payment", p.Payment, p.Payment != nil},
	} {
		if !field.set {
			continue
		}
		data, err := json.Marshal(field.value)
		if err != nil {
			return nil, nil, fmt.Errorf("sérialisation %s: %w", field.col, err)
		}
		sets = append(sets, field.col+" = ?")
		args = append(args, string(data))
	}

	if len(p.Metadata) > 0 {
		sets = append(sets, "metadata = metadata + ?")
		args = append(args, p.Metadata)
	}
	return sets, args, nil
}

func jsonText(v interface{}, empty bool) (string, error) {
	if empty {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
