package orders

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront_back_end/internal/models"
)

type ConfirmRequest struct {
	GatewayOrderID string                  `json:"gatewayOrderId"`
	PaymentID      string                  `json:"paymentId"`
	Signature      string                  `json:"signature"`
	Metadata       *models.ConfirmMetadata `json:"metadata,omitempty"`
}

// ConfirmationService traite le retour client après paiement. C'est un
// chemin rapide pour l'affichage : il ne touche jamais au stock.
type ConfirmationService struct {
	Store  Store
	Secret string
	Audit  AuditSink

	log *zap.Logger
	now func() time.Time
}

func NewConfirmationService(store Store, secret string, log *zap.Logger) *ConfirmationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConfirmationService{Store: store, Secret: secret, log: log, now: time.Now}
}

func (s *ConfirmationService) Confirm(ctx context.Context, req ConfirmRequest) error {
	orderID := strings.TrimSpace(req.GatewayOrderID)
	paymentID := strings.TrimSpace(req.PaymentID)
	signature := strings.TrimSpace(req.Signature)
	if orderID == "" || paymentID == "" || signature == "" {
		return invalid("", "gatewayOrderId, paymentId et signature sont requis")
	}
	if s.Secret == "" {
		s.log.Error("❌ Secret de signature absent de la configuration")
		return ErrSecretNotConfigured
	}

	recordID := ToRecordID(orderID)
	audit := auditOrNoop(s.Audit)
	now := s.now()

	if !VerifySignature(s.Secret, ConfirmationMessage(orderID, paymentID), signature) {
		s.log.Warn("⚠️ Signature de confirmation invalide",
			zap.String("gateway_order_id", orderID), zap.String("payment_id", paymentID))
		s.log.Debug("signature attendue",
			zap.String("expected", Sign(s.Secret, ConfirmationMessage(orderID, paymentID))),
			zap.String("received", signature))
		audit.Record(ctx, AuditEvent{
			Kind:           AuditPaymentRejected,
			RecordID:       recordID,
			GatewayOrderID: orderID,
			PaymentID:      paymentID,
			Source:         models.PaymentSourceConfirmation,
			At:             now,
		})
		return ErrInvalidSignature
	}

	status := models.StatusPaid
	patch := models.OrderPatch{
		GatewayOrderID: &orderID,
		Status:         &status,
		Payment: &models.PaymentDetails{
			PaymentID:  paymentID,
			Signature:  signature,
			Verified:   true,
			VerifiedAt: now,
			Source:     models.PaymentSourceConfirmation,
		},
	}
	if meta := req.Metadata; meta != nil {
		patch.OrderNumber = nonEmpty(strings.TrimSpace(meta.OrderNumber))
		patch.CustomerName = nonEmpty(strings.TrimSpace(meta.CustomerName))
		patch.CustomerEmail = nonEmpty(strings.TrimSpace(meta.CustomerEmail))
		patch.ExternalUserID = nonEmpty(strings.TrimSpace(meta.ExternalUserID))
		if !meta.Address.IsZero() {
			patch.Address = meta.Address
		}
		if len(meta.Extra) > 0 {
			patch.Metadata = meta.Extra
		}
	}

	// le paiement est acquis côté passerelle : une erreur de stockage ne
	// fait pas échouer la réponse
	if err := upsert(ctx, s.Store, newPlaceholder(recordID, orderID, now), patch); err != nil {
		s.log.Error("❌ Commande payée non enregistrée", zap.String("record_id", recordID), zap.Error(err))
	} else {
		s.log.Info("✅ Paiement confirmé", zap.String("record_id", recordID), zap.String("payment_id", paymentID))
	}

	audit.Record(ctx, AuditEvent{
		Kind:           AuditPaymentConfirmed,
		RecordID:       recordID,
		GatewayOrderID: orderID,
		PaymentID:      paymentID,
		Source:         models.PaymentSourceConfirmation,
		Status:         string(models.StatusPaid),
		At:             now,
	})
	return nil
}
