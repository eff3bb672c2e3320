package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront_back_end/internal/gateway"
	"storefront_back_end/internal/models"
)

// Notifier prévient le client que sa commande est payée
type Notifier interface {
	OrderConfirmed(ctx context.Context, order *models.Order) error
}

type WebhookResult struct {
	Kind      string
	RecordID  string
	Ignored   bool
	Duplicate bool // stock déjà décrémenté pour cette commande
	Stock     *StockReport
}

// WebhookService réconcilie les événements passerelle (source de vérité
// pour le stock). Stock, Ledger, Notifier et Audit sont optionnels.
type WebhookService struct {
	Store    Store
	Secret   string
	Stock    *StockAdjuster
	Ledger   StockLedger
	Notifier Notifier
	Audit    AuditSink

	log *zap.Logger
	now func() time.Time
}

func NewWebhookService(store Store, secret string, log *zap.Logger) *WebhookService {
	if log == nil {
		log = zap.NewNop()
	}
	return &WebhookService{Store: store, Secret: secret, log: log, now: time.Now}
}

// Ingest vérifie la signature sur le corps brut puis traite l'événement
// Razorpay. Une fois la signature validée, les erreurs en aval sont
// seulement journalisées.
func (s *WebhookService) Ingest(ctx context.Context, raw []byte, signature string) (*WebhookResult, error) {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		s.log.Warn("⚠️ Webhook sans signature")
		return nil, ErrMissingSignature
	}
	if s.Secret == "" {
		s.log.Error("❌ Secret webhook absent de la configuration")
		return nil, ErrSecretNotConfigured
	}
	if !VerifySignature(s.Secret, raw, signature) {
		s.log.Warn("⚠️ Signature webhook invalide")
		s.log.Debug("signature attendue", zap.String("expected", Sign(s.Secret, raw)), zap.String("received", signature))
		return nil, ErrInvalidSignature
	}

	event, err := gateway.ParseRazorpayEvent(raw)
	if err != nil {
		s.log.Warn("⚠️ Événement webhook illisible", zap.Error(err))
		if !errors.Is(err, ErrMalformedEvent) {
			err = errors.Join(ErrMalformedEvent, err)
		}
		return nil, err
	}
	if event == nil {
		s.log.Info("ℹ️ Événement ignoré")
		return &WebhookResult{Ignored: true}, nil
	}
	return s.Reconcile(ctx, event), nil
}

// Reconcile applique un événement vérifié : document commande, stock,
// e-mail. Partagé par les webhooks Razorpay et Stripe.
func (s *WebhookService) Reconcile(ctx context.Context, event *gateway.PaymentEvent) *WebhookResult {
	recordID := ToRecordID(event.GatewayOrderID)
	result := &WebhookResult{Kind: event.Kind, RecordID: recordID}
	now := s.now()
	paid := event.IsPaid()

	s.log.Info("📥 Événement paiement reçu",
		zap.String("provider", event.Provider), zap.String("kind", event.Kind),
		zap.String("record_id", recordID), zap.String("payment_id", event.PaymentID))

	// ✅ 1. Document commande
	patch := s.patchFor(event, now)
	stored := true
	if err := upsert(ctx, s.Store, newPlaceholder(recordID, event.GatewayOrderID, now), patch); err != nil {
		stored = false
		s.log.Error("❌ Commande non enregistrée depuis le webhook", zap.String("record_id", recordID), zap.Error(err))
	}

	auditOrNoop(s.Audit).Record(ctx, AuditEvent{
		Kind:           AuditWebhookApplied,
		RecordID:       recordID,
		GatewayOrderID: event.GatewayOrderID,
		PaymentID:      event.PaymentID,
		Source:         event.Provider,
		Status:         event.Status,
		Amount:         event.Amount,
		Detail:         map[string]any{"kind": event.Kind, "stored": stored},
		At:             now,
	})

	if !paid {
		s.log.Info("ℹ️ Paiement non encaissé, stock inchangé", zap.String("status", event.Status))
		return result
	}

	// ✅ 2. Articles : notes de l'événement, sinon commande enregistrée
	items := event.Notes.Items
	var order *models.Order
	if len(items) == 0 {
		order = s.load(ctx, recordID)
		if order != nil {
			items = order.Items
		}
	}
	updates := stockUpdates(recordID, items)
	if len(updates) == 0 {
		// la réservation reste libre pour un événement qui portera les articles
		s.log.Warn("⚠️ Aucun article à décrémenter, réservation différée", zap.String("record_id", recordID))
		return result
	}

	// ✅ 3. Réservation de la commande (un seul décrément par commande)
	if s.Ledger != nil {
		claimed, err := s.Ledger.Claim(ctx, recordID)
		switch {
		case err != nil:
			s.log.Warn("⚠️ Registre de stock indisponible, décrément appliqué quand même",
				zap.String("record_id", recordID), zap.Error(err))
		case !claimed:
			result.Duplicate = true
			s.log.Info("🔁 Stock déjà appliqué pour cette commande, on ignore", zap.String("record_id", recordID))
			return result
		}
	}

	if s.Stock != nil {
		report := s.Stock.Apply(ctx, updates)
		result.Stock = &report
		auditOrNoop(s.Audit).Record(ctx, AuditEvent{
			Kind:           AuditStockApplied,
			RecordID:       recordID,
			GatewayOrderID: event.GatewayOrderID,
			Source:         event.Provider,
			Detail:         map[string]any{"applied": len(report.Applied), "failed": report.FailedIDs()},
			At:             now,
		})
	}

	// ✅ 4. E-mail de confirmation
	if s.Notifier != nil {
		if order == nil {
			order = s.load(ctx, recordID)
		}
		if order != nil && order.CustomerEmail != "" {
			if err := s.Notifier.OrderConfirmed(ctx, order); err != nil {
				s.log.Error("❌ Erreur envoi e-mail confirmation", zap.String("email", order.CustomerEmail), zap.Error(err))
			} else {
				s.log.Info("📧 E-mail de confirmation envoyé", zap.String("email", order.CustomerEmail))
			}
		}
	}
	return result
}

func (s *WebhookService) patchFor(event *gateway.PaymentEvent, now time.Time) models.OrderPatch {
	notes := event.Notes
	patch := models.OrderPatch{
		GatewayOrderID: nonEmpty(event.GatewayOrderID),
		OrderNumber:    nonEmpty(notes.OrderNumber),
		Receipt:        nonEmpty(notes.Receipt),
		Currency:       nonEmpty(strings.ToUpper(event.Currency)),
		CustomerName:   nonEmpty(notes.CustomerName),
		CustomerEmail:  nonEmpty(notes.CustomerEmail),
		ExternalUserID: nonEmpty(notes.ExternalUserID),
		Address:        notes.Address,
		Payment: &models.PaymentDetails{
			PaymentID:  event.PaymentID,
			Verified:   true,
			VerifiedAt: now,
			Source:     models.PaymentSourceWebhook,
			Raw:        string(event.Raw),
		},
	}
	if event.Amount > 0 {
		amount := event.Amount
		patch.Amount = &amount
	}
	if len(notes.Items) > 0 {
		patch.Items = notes.Items
	}
	if event.IsPaid() {
		status := models.StatusPaid
		patch.Status = &status
	}
	return patch
}

func (s *WebhookService) load(ctx context.Context, recordID string) *models.Order {
	order, err := s.Store.Get(ctx, recordID)
	if err != nil {
		s.log.Warn("⚠️ Lecture commande impossible", zap.String("record_id", recordID),
			zap.Error(newStoreError("get", recordID, err)))
		return nil
	}
	return order
}

// stockUpdates ignore les articles sans produit
func stockUpdates(recordID string, items []models.OrderItem) []StockUpdate {
	updates := make([]StockUpdate, 0, len(items))
	for _, it := range items {
		if it.ProductID == "" {
			continue
		}
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		updates = append(updates, StockUpdate{ProductID: it.ProductID, Quantity: qty, OrderID: recordID})
	}
	return updates
}
