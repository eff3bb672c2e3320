package orders

import (
	"context"
	"time"
)

// Types d'événements du journal de réconciliation
const (
	AuditCheckoutCreated  = "checkout.created"
	AuditPaymentConfirmed = "payment.confirmed"
	AuditPaymentRejected  = "payment.rejected"
	AuditWebhookApplied   = "webhook.applied"
	AuditStockApplied     = "stock.applied"
)

// AuditEvent trace une écriture sur une commande
type AuditEvent struct {
	Kind           string         `json:"kind"`
	RecordID       string         `json:"recordId"`
	GatewayOrderID string         `json:"gatewayOrderId"`
	PaymentID      string         `json:"paymentId,omitempty"`
	Source         string         `json:"source"`
	Status         string         `json:"status,omitempty"`
	Amount         int64          `json:"amount,omitempty"`
	Detail         map[string]any `json:"detail,omitempty"`
	At             time.Time      `json:"at"`
}

// AuditSink enregistre les événements ; les erreurs restent côté implémentation
type AuditSink interface {
	Record(ctx context.Context, event AuditEvent)
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, AuditEvent) {}

func auditOrNoop(sink AuditSink) AuditSink {
	if sink == nil {
		return noopAudit{}
	}
	return sink
}
