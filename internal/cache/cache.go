package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// ProductCache purge les entrées produit après une écriture de stock
type ProductCache struct {
	client redis.Cmdable
}

func NewProductCache(client redis.Cmdable) *ProductCache {
	return &ProductCache{client: client}
}

// InvalidateProduct invalide le cache d'un produit
func (c *ProductCache) InvalidateProduct(ctx context.Context, productID string) error {
	return c.client.Del(ctx, "product:"+productID, "product_name:"+productID).Err()
}
