package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83/webhook"

	"storefront_back_end/internal/gateway"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/orders"
)

const (
	keySecret     = "key_secret"
	webhookSecret = "whk_secret"
	stripeSecret  = "whsec_test"
)

type stubGateway struct {
	err error
}

func (g *stubGateway) Provider() string  { return gateway.ProviderRazorpay }
func (g *stubGateway) PublicKey() string { return "rzp_test_key" }

func (g *stubGateway) CreateOrder(ctx context.Context, req gateway.OrderRequest) (*gateway.Order, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &gateway.Order{ID: "order_ABC", Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt}, nil
}

type fixture struct {
	router   *gin.Engine
	store    *orders.MemoryStore
	products *orders.MemoryProducts
	gw       *stubGateway
}

func newFixture() *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{
		store:    orders.NewMemoryStore(),
		products: orders.NewMemoryProducts(models.Product{ID: "P1", Name: "Mug", Stock: 20, IsActive: true}),
		gw:       &stubGateway{},
	}

	h := NewHandler(nil)
	h.Store = f.store
	h.Checkout = orders.NewCheckoutService(f.gw, f.store, nil)
	h.Confirmation = orders.NewConfirmationService(f.store, keySecret, nil)
	h.Webhook = orders.NewWebhookService(f.store, webhookSecret, nil)
	h.Webhook.Stock = orders.NewStockAdjuster(f.products, nil, nil)
	h.Webhook.Ledger = orders.NewMemoryLedger()
	h.StripeWebhookSecret = stripeSecret

	r := gin.New()
	r.POST("/checkout", h.CreateCheckout)
	r.POST("/confirm", h.ConfirmPayment)
	r.POST("/webhook/razorpay", h.RazorpayWebhook)
	r.POST("/webhook/stripe", h.StripeWebhook)
	r.GET("/orders/:id", h.GetOrder)
	f.router = r
	return f
}

func (f *fixture) do(method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

const cartBody = `{
	"items": [{"product": {"id": "P1", "name": "Mug", "price": 500}, "quantity": 2}],
	"metadata": {"customerName": "A", "customerEmail": "a@x.com", "orderNumber": "ORD-1"}
}`

func TestCreateCheckout(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodPost, "/checkout", []byte(cartBody), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "order_ABC", body["orderId"])
	assert.Equal(t, "order_ABC", body["recordId"])
	assert.Equal(t, float64(100000), body["amount"])
	assert.Equal(t, "rzp_test_key", body["keyId"])
	assert.Equal(t, "rcpt_ORD-1", body["receipt"])

	order, err := f.store.Get(context.Background(), "order_ABC")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCreated, order.Status)
}

func TestCreateCheckoutValidation(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodPost, "/checkout", []byte(`{"items": [], "metadata": {"customerName": "A", "customerEmail": "a@x.com"}}`), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "items", decode(t, w)["field"])

	w = f.do(http.MethodPost, "/checkout", []byte(`{"items": `), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, f.store.Len())
}

func TestCreateCheckoutGatewayFailure(t *testing.T) {
	f := newFixture()
	f.gw.err = errors.New("BAD_REQUEST_ERROR")

	w := f.do(http.MethodPost, "/checkout", []byte(cartBody), nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, gateway.ProviderRazorpay, decode(t, w)["provider"])
	assert.Equal(t, 0, f.store.Len())
}

func TestConfirmPayment(t *testing.T) {
	f := newFixture()
	sig := orders.Sign(keySecret, orders.ConfirmationMessage("order_ABC", "pay_1"))
	body := []byte(`{"gatewayOrderId": "order_ABC", "paymentId": "pay_1", "signature": "` + sig + `"}`)

	w := f.do(http.MethodPost, "/confirm", body, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "order_ABC", decode(t, w)["recordId"])

	order, err := f.store.Get(context.Background(), "order_ABC")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, order.Status)
	// la confirmation ne touche pas au stock
	assert.Equal(t, 20, f.products.Stock("P1"))
}

func TestConfirmPaymentRejections(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodPost, "/confirm", []byte(`{"gatewayOrderId": "order_ABC", "paymentId": "pay_1"}`), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/confirm", []byte(`{"gatewayOrderId": "order_ABC", "paymentId": "pay_1", "signature": "00ff"}`), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Signature invalide", decode(t, w)["error"])
	assert.Equal(t, 0, f.store.Len())
}

func TestConfirmPaymentWithoutSecret(t *testing.T) {
	f := newFixture()
	h := NewHandler(nil)
	h.Confirmation = orders.NewConfirmationService(f.store, "", nil)
	f.router.POST("/confirm-unset", h.ConfirmPayment)

	w := f.do(http.MethodPost, "/confirm-unset", []byte(`{"gatewayOrderId": "order_ABC", "paymentId": "pay_1", "signature": "ab"}`), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

const capturedEvent = `{
	"event": "payment.captured",
	"payload": {"payment": {"entity": {
		"id": "pay_1", "order_id": "order_ABC", "status": "captured", "amount": 100000,
		"notes": {"customerEmail": "a@x.com", "items": "[{\"productId\":\"P1\",\"qty\":2,\"price\":500}]"}
	}}}
}`

func TestRazorpayWebhook(t *testing.T) {
	f := newFixture()
	raw := []byte(capturedEvent)
	headers := map[string]string{HeaderRazorpaySignature: orders.Sign(webhookSecret, raw)}

	w := f.do(http.MethodPost, "/webhook/razorpay", raw, headers)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "order_ABC", body["recordId"])
	assert.Equal(t, false, body["duplicate"])
	assert.Equal(t, float64(1), body["stockApplied"])
	assert.Equal(t, 18, f.products.Stock("P1"))

	// relivraison : acquittée sans second décrément
	w = f.do(http.MethodPost, "/webhook/razorpay", raw, headers)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["duplicate"])
	assert.Equal(t, 18, f.products.Stock("P1"))
}

func TestRazorpayWebhookRejections(t *testing.T) {
	f := newFixture()
	raw := []byte(capturedEvent)

	w := f.do(http.MethodPost, "/webhook/razorpay", raw, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/webhook/razorpay", raw, map[string]string{HeaderRazorpaySignature: orders.Sign("other", raw)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	bad := []byte(`{"event": "payment.captured", "payload": {}}`)
	w = f.do(http.MethodPost, "/webhook/razorpay", bad, map[string]string{HeaderRazorpaySignature: orders.Sign(webhookSecret, bad)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, 20, f.products.Stock("P1"))
	assert.Equal(t, 0, f.store.Len())
}

func TestRazorpayWebhookIgnoredEvent(t *testing.T) {
	f := newFixture()
	raw := []byte(`{"event": "refund.created", "payload": {}}`)

	w := f.do(http.MethodPost, "/webhook/razorpay", raw, map[string]string{HeaderRazorpaySignature: orders.Sign(webhookSecret, raw)})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["ignored"])
}

func TestRazorpayWebhookBodyTooLarge(t *testing.T) {
	f := newFixture()
	raw := []byte(`{"event": "` + strings.Repeat("x", MaxWebhookBody) + `"}`)

	w := f.do(http.MethodPost, "/webhook/razorpay", raw, map[string]string{HeaderRazorpaySignature: orders.Sign(webhookSecret, raw)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func signStripe(payload []byte) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    stripeSecret,
		Timestamp: time.Now(),
	}).Header
}

func TestStripeWebhook(t *testing.T) {
	f := newFixture()
	payload := []byte(`{
		"id": "evt_1", "object": "event", "type": "payment_intent.succeeded",
		"data": {"object": {
			"id": "pi_123", "object": "payment_intent", "status": "succeeded",
			"amount": 1000, "amount_received": 1000, "currency": "inr",
			"metadata": {"customerEmail": "a@x.com", "items": "[{\"productId\":\"P1\",\"qty\":3}]"}
		}}
	}`)

	w := f.do(http.MethodPost, "/webhook/stripe", payload, map[string]string{HeaderStripeSignature: signStripe(payload)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "order_pi_123", decode(t, w)["recordId"])
	assert.Equal(t, 17, f.products.Stock("P1"))

	w = f.do(http.MethodPost, "/webhook/stripe", payload, map[string]string{HeaderStripeSignature: "t=1,v1=00"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	other := []byte(`{"id":"evt_2","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`)
	w = f.do(http.MethodPost, "/webhook/stripe", other, map[string]string{HeaderStripeSignature: signStripe(other)})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["ignored"])
}

func TestStripeWebhookNotConfigured(t *testing.T) {
	f := newFixture()
	h := NewHandler(nil)
	h.Webhook = orders.NewWebhookService(f.store, "", nil)
	f.router.POST("/webhook/stripe-unset", h.StripeWebhook)

	w := f.do(http.MethodPost, "/webhook/stripe-unset", []byte(`{}`), map[string]string{HeaderStripeSignature: "t=1,v1=00"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetOrder(t *testing.T) {
	f := newFixture()
	w := f.do(http.MethodGet, "/orders/order_ABC", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	raw := []byte(capturedEvent)
	f.do(http.MethodPost, "/webhook/razorpay", raw, map[string]string{HeaderRazorpaySignature: orders.Sign(webhookSecret, raw)})

	for _, id := range []string{"order_ABC", "ABC"} {
		w = f.do(http.MethodGet, "/orders/"+id, nil, nil)
		require.Equal(t, http.StatusOK, w.Code, id)

		var order models.Order
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
		assert.Equal(t, "order_ABC", order.ID)
		assert.Equal(t, models.StatusPaid, order.Status)
		require.NotNil(t, order.Payment)
		assert.Empty(t, order.Payment.Raw)
	}
}
