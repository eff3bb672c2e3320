package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront_back_end/internal/handlers/payment"
	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/middleware"
)

// Options regroupe ce dont le routeur a besoin
type Options struct {
	AllowedOrigins    []string
	Redis             redis.Cmdable // nil = pas de rate limit
	CheckoutRateLimit int
	Log               *zap.Logger
}

func NewRouter(h *payment.Handler, opts Options) *gin.Engine {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(log))
	corsConfig := cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.AllowedOrigins) == 0 {
		// aucune origine configurée : API publique, sans cookies
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	r.Use(cors.New(corsConfig))

	RegisterRoutes(r, h, opts, log)
	return r
}

func RegisterRoutes(r *gin.Engine, h *payment.Handler, opts Options, log *zap.Logger) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/checkout", middleware.CheckoutRateLimit(opts.Redis, opts.CheckoutRateLimit, log), h.CreateCheckout)
		api.GET("/orders/:id", h.GetOrder)

		// Retour client signé (Razorpay uniquement)
		if h.Confirmation != nil {
			api.POST("/payment/confirm", h.ConfirmPayment)
		}

		// Webhooks : corps brut, pas de rate limit
		api.POST("/webhook/razorpay", h.RazorpayWebhook)
		api.POST("/webhook/stripe", h.StripeWebhook)
	}
}
