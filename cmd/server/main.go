package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront_back_end/internal/cache"
	"storefront_back_end/internal/config"
	"storefront_back_end/internal/database"
	"storefront_back_end/internal/gateway"
	"storefront_back_end/internal/handlers/payment"
	"storefront_back_end/internal/logger"
	"storefront_back_end/internal/orders"
	"storefront_back_end/internal/routes"
	"storefront_back_end/internal/services"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("❌ Logger non initialisé: %v", err)
	}
	defer zlog.Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup := build(ctx, cfg, zlog)
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("🚀 Serveur lancé", zap.String("port", cfg.Port), zap.String("provider", cfg.PaymentProvider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("❌ Erreur serveur", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("🛑 Arrêt du serveur")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("❌ Arrêt forcé", zap.Error(err))
	}
}

// build assemble les services. Redis, Elasticsearch, MinIO et SMTP sont
// optionnels : leur absence désactive seulement la fonctionnalité.
func build(ctx context.Context, cfg config.Config, zlog *zap.Logger) (*gin.Engine, func()) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// ✅ Stockage des commandes et des produits
	var store orders.Store
	var products orders.ProductStore
	switch cfg.OrderStore {
	case config.StoreMemory:
		zlog.Warn("⚠️ Commandes en mémoire, perdues au redémarrage")
		store = orders.NewMemoryStore()
		products = orders.NewMemoryProducts()
	default:
		scylla, err := database.NewScyllaManager(cfg.Scylla, zlog)
		if err != nil {
			zlog.Fatal("❌ Connexion ScyllaDB", zap.Error(err))
		}
		closers = append(closers, scylla.Close)

		ordersSession, err := scylla.OrdersSession()
		if err != nil {
			zlog.Fatal("❌ Session commandes", zap.Error(err))
		}
		productsSession, err := scylla.ProductsSession()
		if err != nil {
			zlog.Fatal("❌ Session produits", zap.Error(err))
		}
		store = database.NewOrderRepository(ordersSession)
		products = database.NewProductRepository(productsSession)
	}

	// ✅ Redis : registre de stock, cache produits, rate limit
	var redisClient redis.Cmdable
	var productCache orders.CacheInvalidator
	var ledger orders.StockLedger
	if client, err := database.NewRedis(ctx, cfg.Redis); err != nil {
		zlog.Warn("⚠️ Redis indisponible", zap.Error(err))
	} else {
		closers = append(closers, func() { client.Close() })
		redisClient = client
		productCache = cache.NewProductCache(client)
		ledger = cache.NewRedisLedger(client)
		zlog.Info("✅ Connexion Redis réussie")
	}
	if cfg.StockLedgerEnabled && ledger == nil {
		zlog.Warn("⚠️ Registre de stock en mémoire (un seul processus)")
		ledger = orders.NewMemoryLedger()
	}
	if !cfg.StockLedgerEnabled {
		ledger = nil
	}

	// ✅ Elasticsearch : journal d'audit
	var audit orders.AuditSink
	if client, err := database.NewElastic(cfg.Elastic); err != nil {
		zlog.Warn("⚠️ Elasticsearch indisponible, audit désactivé", zap.Error(err))
	} else {
		audit = services.NewAuditIndexer(client, cfg.Elastic.AuditIndex, zlog)
		zlog.Info("✅ Connexion Elasticsearch réussie")
	}

	// ✅ MinIO : URLs signées des images produits
	var images orders.ImageResolver
	if client, err := database.NewMinIO(ctx, cfg.MinIO); err != nil {
		zlog.Warn("⚠️ MinIO indisponible, images renvoyées telles quelles", zap.Error(err))
	} else {
		images = services.NewImageURLs(client, cfg.MinIO.Bucket, cfg.MinIO.URLExpiry, zlog)
		zlog.Info("✅ Connexion MinIO réussie")
	}

	// ✅ SMTP : e-mail de confirmation
	var notifier orders.Notifier
	if cfg.SMTP.Host != "" {
		client, err := services.NewSMTPClient(cfg.SMTP)
		if err != nil {
			zlog.Warn("⚠️ SMTP mal configuré, e-mails désactivés", zap.Error(err))
		} else {
			notifier = services.NewOrderMailer(client, cfg.SMTP.From, zlog)
		}
	}

	// ✅ Passerelle de paiement
	var gw gateway.Gateway
	switch cfg.PaymentProvider {
	case gateway.ProviderStripe:
		gw = gateway.NewStripe(cfg.Stripe.SecretKey, cfg.Stripe.PublishableKey)
	default:
		gw = gateway.NewRazorpay(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.PublicKeyID)
	}
	zlog.Info("💳 Passerelle de paiement", zap.String("provider", gw.Provider()))

	checkout := orders.NewCheckoutService(gw, store, zlog)
	checkout.Currency = cfg.Currency
	checkout.Images = images
	checkout.Audit = audit
	if cfg.CatalogPricingEnabled {
		checkout.Catalog = products
	}

	webhook := orders.NewWebhookService(store, cfg.Razorpay.WebhookSecret, zlog)
	webhook.Stock = orders.NewStockAdjuster(products, productCache, zlog)
	webhook.Ledger = ledger
	webhook.Notifier = notifier
	webhook.Audit = audit

	h := payment.NewHandler(zlog)
	h.Checkout = checkout
	h.Webhook = webhook
	h.Store = store
	h.StripeWebhookSecret = cfg.Stripe.WebhookSecret
	if gw.Provider() == gateway.ProviderRazorpay {
		confirmation := orders.NewConfirmationService(store, cfg.Razorpay.KeySecret, zlog)
		confirmation.Audit = audit
		h.Confirmation = confirmation
	}

	router := routes.NewRouter(h, routes.Options{
		AllowedOrigins:    cfg.AllowedOrigins,
		Redis:             redisClient,
		CheckoutRateLimit: cfg.CheckoutRateLimit,
		Log:               zlog,
	})
	return router, cleanup
}
