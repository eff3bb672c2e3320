package orders

import (
	"context"
	"errors"
	"sync"

	"storefront_back_end/internal/gateway"
	"storefront_back_end/internal/models"
)

type fakeGateway struct {
	CreateOrderFunc func(ctx context.Context, req gateway.OrderRequest) (*gateway.Order, error)
	calls           []gateway.OrderRequest
}

func (g *fakeGateway) Provider() string  { return gateway.ProviderRazorpay }
func (g *fakeGateway) PublicKey() string { return "rzp_test_key" }

func (g *fakeGateway) CreateOrder(ctx context.Context, req gateway.OrderRequest) (*gateway.Order, error) {
	g.calls = append(g.calls, req)
	if g.CreateOrderFunc != nil {
		return g.CreateOrderFunc(ctx, req)
	}
	return &gateway.Order{ID: "order_ABC", Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt}, nil
}

// failingStore échoue sur toutes les écritures
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) CreateIfAbsent(context.Context, *models.Order) (bool, error) {
	return false, errStoreDown
}
func (failingStore) PatchMerge(context.Context, string, models.OrderPatch) error { return errStoreDown }
func (failingStore) Get(context.Context, string) (*models.Order, error)         { return nil, errStoreDown }

type failingLedger struct{}

func (failingLedger) Claim(context.Context, string) (bool, error) { return false, errors.New("redis down") }

type recordingAudit struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (a *recordingAudit) Record(_ context.Context, e AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) kinds() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Kind)
	}
	return out
}

type recordingNotifier struct {
	sent []string
	err  error
}

func (n *recordingNotifier) OrderConfirmed(_ context.Context, order *models.Order) error {
	n.sent = append(n.sent, order.CustomerEmail)
	return n.err
}

type prefixResolver struct{}

func (prefixResolver) Resolve(_ context.Context, ref string) string { return "https://cdn.test/" + ref }
