package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Modes de stockage des commandes
const (
	StoreScylla = "scylla"
	StoreMemory = "memory"
)

type Config struct {
	Env            string
	LogLevel       string
	Port           string
	AllowedOrigins []string

	PaymentProvider string // "razorpay" ou "stripe"
	Currency        string
	Razorpay        RazorpayConfig
	Stripe          StripeConfig

	OrderStore            string
	StockLedgerEnabled    bool
	CatalogPricingEnabled bool
	CheckoutRateLimit     int // requêtes par minute et par IP, 0 = désactivé

	Scylla  ScyllaConfig
	Redis   RedisConfig
	Elastic ElasticConfig
	MinIO   MinIOConfig
	SMTP    SMTPConfig
}

type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	PublicKeyID   string
}

type StripeConfig struct {
	SecretKey      string
	PublishableKey string
	WebhookSecret  string
}

type KeyspaceConfig struct {
	Keyspace string
	Role     string
	Password string
}

type ScyllaConfig struct {
	Hosts      []string
	SSLEnabled bool
	CACertPath string
	Timeout    time.Duration
	NumConns   int
	Orders     KeyspaceConfig
	Products   KeyspaceConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ElasticConfig struct {
	URL        string
	User       string
	Password   string
	AuditIndex string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	URLExpiry time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Load charge .env puis lit la configuration depuis l'environnement
func Load() Config {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé, on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
	return FromEnv()
}

// FromEnv lit la configuration. Les secrets ne sont pas validés ici :
// leur absence est signalée au premier usage.
func FromEnv() Config {
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	webhookSecret := getEnv("RAZORPAY_WEBHOOK_SECRET", keySecret)

	return Config{
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		PaymentProvider: strings.ToLower(getEnv("PAYMENT_PROVIDER", "razorpay")),
		Currency:        strings.ToUpper(getEnv("ORDER_CURRENCY", "INR")),
		Razorpay: RazorpayConfig{
			KeyID:         os.Getenv("RAZORPAY_KEY_ID"),
			KeySecret:     keySecret,
			WebhookSecret: webhookSecret,
			PublicKeyID:   getEnv("NEXT_PUBLIC_RAZORPAY_KEY_ID", os.Getenv("RAZORPAY_KEY_ID")),
		},
		Stripe: StripeConfig{
			SecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
			PublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),
			WebhookSecret:  os.Getenv("STRIPE_WEBHOOK_SECRET"),
		},

		OrderStore:            strings.ToLower(getEnv("ORDER_STORE", StoreScylla)),
		StockLedgerEnabled:    getBool("STOCK_LEDGER_ENABLED", true),
		CatalogPricingEnabled: getBool("CATALOG_PRICING_ENABLED", false),
		CheckoutRateLimit:     getInt("CHECKOUT_RATE_LIMIT", 20),

		Scylla: ScyllaConfig{
			Hosts:      splitList(getEnv("SCYLLA_HOSTS", "127.0.0.1")),
			SSLEnabled: strings.ToLower(os.Getenv("SCYLLA_SSL_ENABLED")) == "true",
			CACertPath: os.Getenv("SCYLLA_SSL_CA_PATH"),
			Timeout:    5 * time.Second,
			NumConns:   getInt("SCYLLA_NUM_CONNS", 20),
			Orders: KeyspaceConfig{
				Keyspace: getEnv("SCYLLA_KS_ORDERS_KEYSPACE", "storefront_orders"),
				Role:     os.Getenv("SCYLLA_KS_ORDERS_ROLE"),
				Password: os.Getenv("SCYLLA_KS_ORDERS_PASSWORD"),
			},
			Products: KeyspaceConfig{
				Keyspace: getEnv("SCYLLA_KS_PRODUCTS_KEYSPACE", "storefront_products"),
				Role:     os.Getenv("SCYLLA_KS_PRODUCTS_ROLE"),
				Password: os.Getenv("SCYLLA_KS_PRODUCTS_PASSWORD"),
			},
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_HOST"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		Elastic: ElasticConfig{
			URL:        os.Getenv("ELASTIC_URL"),
			User:       os.Getenv("ELASTIC_USER"),
			Password:   os.Getenv("ELASTIC_PASSWORD"),
			AuditIndex: getEnv("ELASTIC_AUDIT_INDEX", "order_events"),
		},
		MinIO: MinIOConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getEnv("MINIO_BUCKET", "storefront-images"),
			UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
			URLExpiry: getDuration("MINIO_URL_EXPIRY", time.Hour),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "noreply@storefront.local"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
