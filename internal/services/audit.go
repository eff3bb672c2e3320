package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront_back_end/internal/orders"
)

// AuditIndexer indexe les événements de réconciliation dans Elasticsearch
type AuditIndexer struct {
	client  esapi.Transport
	index   string
	timeout time.Duration
	log     *zap.Logger
}

var _ esapi.Transport = (*elasticsearch.Client)(nil)

func NewAuditIndexer(client esapi.Transport, index string, log *zap.Logger) *AuditIndexer {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditIndexer{client: client, index: index, timeout: 3 * time.Second, log: log}
}

// Record n'échoue jamais côté appelant : les erreurs sont journalisées
func (a *AuditIndexer) Record(ctx context.Context, event orders.AuditEvent) {
	if err := a.send(ctx, event); err != nil {
		a.log.Warn("⚠️ Événement d'audit non indexé",
			zap.String("kind", event.Kind), zap.String("record_id", event.RecordID), zap.Error(err))
	}
}

func (a *AuditIndexer) send(ctx context.Context, event orders.AuditEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("sérialisation: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req := esapi.IndexRequest{
		Index:      a.index,
		DocumentID: uuid.NewString(),
		Body:       bytes.NewReader(data),
	}
	res, err := req.Do(ctx, a.client)
	if err != nil {
		return fmt.Errorf("envoi Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elastic a renvoyé %s", res.Status())
	}
	return nil
}
