package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront_back_end/internal/gateway"
	"storefront_back_end/internal/models"
)

// Catalog fournit le prix et le stock de référence des produits
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

// ImageResolver transforme une référence d'image en URL affichable
type ImageResolver interface {
	Resolve(ctx context.Context, ref string) string
}

type SessionItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Qty   int     `json:"qty"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`
}

// CheckoutSession est renvoyée au storefront pour ouvrir le paiement
type CheckoutSession struct {
	OrderID      string        `json:"orderId"`
	RecordID     string        `json:"recordId"`
	OrderNumber  string        `json:"orderNumber"`
	Amount       int64         `json:"amount"`
	Currency     string        `json:"currency"`
	Receipt      string        `json:"receipt"`
	KeyID        string        `json:"keyId"`
	ClientSecret string        `json:"clientSecret,omitempty"`
	Items        []SessionItem `json:"items"`
}

// CheckoutService crée la commande passerelle puis le document "created".
// Catalog, Images et Audit sont optionnels.
type CheckoutService struct {
	Gateway  gateway.Gateway
	Store    Store
	Catalog  Catalog
	Images   ImageResolver
	Audit    AuditSink
	Currency string

	log *zap.Logger
	now func() time.Time
}

func NewCheckoutService(gw gateway.Gateway, store Store, log *zap.Logger) *CheckoutService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutService{
		Gateway:  gw,
		Store:    store,
		Currency: DefaultCurrency,
		log:      log,
		now:      time.Now,
	}
}

func (s *CheckoutService) CreateSession(ctx context.Context, lines []models.CartLine, meta models.CheckoutMetadata) (*CheckoutSession, error) {
	// ✅ 1. Validation, aucun appel externe avant
	items, err := normalizeLines(lines)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(meta.CustomerName)
	email := strings.TrimSpace(meta.CustomerEmail)
	if name == "" {
		return nil, invalid("customerName", "nom du client requis")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, invalid("customerEmail", "e-mail du client requis")
	}

	// ✅ 2. Prix du catalogue (optionnel)
	if s.Catalog != nil {
		if items, err = s.reprice(ctx, items); err != nil {
			return nil, err
		}
	}

	amount := CartAmount(items)
	if amount <= 0 {
		return nil, invalid("amount", "le montant doit être positif")
	}

	orderNumber := strings.TrimSpace(meta.OrderNumber)
	if orderNumber == "" {
		orderNumber = NewOrderNumber()
	}
	receipt := BuildReceipt(orderNumber)
	currency := s.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	// ✅ 3. Commande passerelle
	notes := gateway.Notes{
		OrderNumber:    orderNumber,
		CustomerName:   name,
		CustomerEmail:  email,
		ExternalUserID: meta.ExternalUserID,
		Receipt:        receipt,
		Address:        meta.Address,
		Items:          items,
	}
	gwOrder, err := s.Gateway.CreateOrder(ctx, gateway.OrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		s.log.Error("❌ Erreur création commande passerelle",
			zap.String("provider", s.Gateway.Provider()), zap.String("receipt", receipt), zap.Error(err))
		return nil, &GatewayError{Provider: s.Gateway.Provider(), Err: err}
	}
	if gwOrder.Amount > 0 {
		amount = gwOrder.Amount
	}
	if gwOrder.Currency != "" {
		currency = strings.ToUpper(gwOrder.Currency)
	}
	if gwOrder.Receipt != "" {
		receipt = gwOrder.Receipt
	}
	s.log.Info("💳 Commande passerelle créée",
		zap.String("gateway_order_id", gwOrder.ID), zap.Int64("amount", amount), zap.String("email", email))

	// ✅ 4. Document "created" ; la passerelle fait foi si l'écriture échoue
	recordID := ToRecordID(gwOrder.ID)
	now := s.now()
	status := models.StatusCreated
	patch := models.OrderPatch{
		GatewayOrderID: &gwOrder.ID,
		OrderNumber:    &orderNumber,
		Receipt:        &receipt,
		Status:         &status,
		Amount:         &amount,
		Currency:       &currency,
		CustomerName:   &name,
		CustomerEmail:  &email,
		ExternalUserID: nonEmpty(meta.ExternalUserID),
		Items:          items,
	}
	if !meta.Address.IsZero() {
		patch.Address = meta.Address
	}
	if err := upsert(ctx, s.Store, newPlaceholder(recordID, gwOrder.ID, now), patch); err != nil {
		s.log.Error("❌ Document commande non écrit, il sera repris par le webhook",
			zap.String("record_id", recordID), zap.Error(err))
	} else {
		s.log.Info("🟪 Commande enregistrée", zap.String("record_id", recordID))
	}

	auditOrNoop(s.Audit).Record(ctx, AuditEvent{
		Kind:           AuditCheckoutCreated,
		RecordID:       recordID,
		GatewayOrderID: gwOrder.ID,
		Source:         s.Gateway.Provider(),
		Status:         string(models.StatusCreated),
		Amount:         amount,
		Detail:         map[string]any{"receipt": receipt, "items": len(items)},
		At:             now,
	})

	session := &CheckoutSession{
		OrderID:      gwOrder.ID,
		RecordID:     recordID,
		OrderNumber:  orderNumber,
		Amount:       amount,
		Currency:     currency,
		Receipt:      receipt,
		KeyID:        s.Gateway.PublicKey(),
		ClientSecret: gwOrder.ClientSecret,
		Items:        make([]SessionItem, 0, len(items)),
	}
	for _, it := range items {
		image := it.Image
		if image != "" && s.Images != nil {
			image = s.Images.Resolve(ctx, image)
		}
		session.Items = append(session.Items, SessionItem{
			ID:    it.ProductID,
			Name:  it.Name,
			Qty:   it.Quantity,
			Price: it.Price,
			Image: image,
		})
	}
	return session, nil
}

// reprice remplace nom, prix et image par ceux du catalogue et vérifie le stock
func (s *CheckoutService) reprice(ctx context.Context, items []models.OrderItem) ([]models.OrderItem, error) {
	out := make([]models.OrderItem, len(items))
	for i, it := range items {
		product, err := s.Catalog.GetProduct(ctx, it.ProductID)
		if errors.Is(err, ErrProductNotFound) {
			return nil, invalid("items", "produit introuvable: "+it.ProductID)
		}
		if err != nil {
			return nil, fmt.Errorf("lecture catalogue %s: %w", it.ProductID, err)
		}
		if !product.IsActive {
			return nil, invalid("items", "produit indisponible: "+it.ProductID)
		}
		if product.Stock < it.Quantity {
			return nil, invalid("items", fmt.Sprintf("stock insuffisant pour %s (%d disponibles)", product.Name, product.Stock))
		}
		it.Name = product.Name
		it.Price = product.Price
		if img := product.MainImage(); img != "" {
			it.Image = img
		}
		out[i] = it
	}
	return out, nil
}
