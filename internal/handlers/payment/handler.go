package payment

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront_back_end/internal/gateway"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/orders"
)

// MaxWebhookBody borne la taille d'un corps webhook
const MaxWebhookBody = 64 << 10

const (
	HeaderRazorpaySignature = "X-Razorpay-Signature"
	HeaderStripeSignature   = "Stripe-Signature"
)

// Handler expose les opérations de commande en HTTP.
// Confirmation est nil quand la passerelle ne signe pas le retour client.
type Handler struct {
	Checkout            *orders.CheckoutService
	Confirmation        *orders.ConfirmationService
	Webhook             *orders.WebhookService
	Store               orders.Store
	StripeWebhookSecret string

	log *zap.Logger
}

func NewHandler(log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{log: log}
}

type checkoutRequest struct {
	Items    []models.CartLine       `json:"items"`
	Metadata models.CheckoutMetadata `json:"metadata"`
}

// CreateCheckout crée la commande passerelle pour un panier
func (h *Handler) CreateCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	session, err := h.Checkout.CreateSession(c.Request.Context(), req.Items, req.Metadata)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ConfirmPayment vérifie la signature renvoyée au client après paiement
func (h *Handler) ConfirmPayment(c *gin.Context) {
	var req orders.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	if err := h.Confirmation.Confirm(c.Request.Context(), req); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"recordId": orders.ToRecordID(req.GatewayOrderID),
	})
}

// RazorpayWebhook reçoit les événements Razorpay, signés sur le corps brut
func (h *Handler) RazorpayWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBody)
	raw, err := c.GetRawData()
	if err != nil {
		h.log.Warn("⚠️ Corps webhook illisible", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Corps de requête illisible"})
		return
	}

	result, err := h.Webhook.Ingest(c.Request.Context(), raw, c.GetHeader(HeaderRazorpaySignature))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, webhookBody(result))
}

// StripeWebhook reçoit les événements Stripe (payment_intent.succeeded)
func (h *Handler) StripeWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBody)
	raw, err := c.GetRawData()
	if err != nil {
		h.log.Warn("⚠️ Corps webhook illisible", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Corps de requête illisible"})
		return
	}

	event, err := gateway.ParseStripeEvent(raw, c.GetHeader(HeaderStripeSignature), h.StripeWebhookSecret)
	switch {
	case errors.Is(err, gateway.ErrNotConfigured):
		h.log.Error("❌ Secret webhook Stripe absent de la configuration")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook non configuré"})
		return
	case err != nil:
		h.log.Warn("⚠️ Événement Stripe rejeté", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Événement invalide"})
		return
	case event == nil:
		c.JSON(http.StatusOK, gin.H{"received": true, "ignored": true})
		return
	}

	c.JSON(http.StatusOK, webhookBody(h.Webhook.Reconcile(c.Request.Context(), event)))
}

// GetOrder accepte l'ID passerelle ou l'ID du document
func (h *Handler) GetOrder(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande requis"})
		return
	}

	order, err := h.Store.Get(c.Request.Context(), orders.ToRecordID(id))
	if errors.Is(err, orders.ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	if err != nil {
		h.log.Error("❌ Erreur lecture commande", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commande"})
		return
	}

	// la signature et le corps brut restent côté serveur
	if order.Payment != nil {
		order.Payment.Signature = ""
		order.Payment.Raw = ""
	}
	c.JSON(http.StatusOK, order)
}

func webhookBody(result *orders.WebhookResult) gin.H {
	body := gin.H{"received": true}
	if result == nil {
		return body
	}
	if result.Ignored {
		body["ignored"] = true
		return body
	}
	body["event"] = result.Kind
	body["recordId"] = result.RecordID
	body["duplicate"] = result.Duplicate
	if result.Stock != nil {
		body["stockApplied"] = len(result.Stock.Applied)
		if failed := result.Stock.FailedIDs(); len(failed) > 0 {
			body["stockFailed"] = failed
		}
	}
	return body
}

// fail traduit les erreurs métier en codes HTTP
func (h *Handler) fail(c *gin.Context, err error) {
	var validation *orders.ValidationError
	var gwErr *orders.GatewayError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message, "field": validation.Field})
	case errors.Is(err, orders.ErrMissingSignature):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature manquante"})
	case errors.Is(err, orders.ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
	case errors.Is(err, orders.ErrMalformedEvent), errors.Is(err, gateway.ErrMissingEntity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Événement invalide"})
	case errors.Is(err, orders.ErrSecretNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Paiement non configuré"})
	case errors.As(err, &gwErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Erreur passerelle de paiement", "provider": gwErr.Provider})
	default:
		h.log.Error("❌ Erreur inattendue", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne"})
	}
}
