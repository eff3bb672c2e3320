package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	stockLedgerPrefix = "stock_applied:"
	// Durée de rétention du registre, au-delà des relivraisons de webhook
	StockLedgerTTL = 30 * 24 * time.Hour
)

// RedisLedger réserve une commande avant la décrémentation du stock (SET NX)
type RedisLedger struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisLedger(client redis.Cmdable) *RedisLedger {
	return &RedisLedger{client: client, ttl: StockLedgerTTL}
}

// Claim retourne true si la commande n'avait jamais été réservée
func (l *RedisLedger) Claim(ctx context.Context, recordID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, stockLedgerPrefix+recordID, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("registre stock %s: %w", recordID, err)
	}
	return ok, nil
}

// IncrementRateLimit incrémente le compteur et (re)pose la fenêtre
func IncrementRateLimit(ctx context.Context, client redis.Cmdable, key string, window time.Duration) (int64, error) {
	pipe := client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
