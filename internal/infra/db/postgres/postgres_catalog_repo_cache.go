package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"whatsapp-commerce-billing/internal/domain/model"
	"whatsapp-commerce-billing/internal/domain/ports/repository"
	"whatsapp-commerce-billing/internal/infra/metrics"
	red "whatsapp-commerce-billing/internal/infra/redis"
)

var _ repository.CatalogRepository = (*catalogRepoCacheDecorator)(nil)

// catalogRepoCacheDecorator caches catalog reads in Redis. The catalog
// changes rarely and every checkout hits it, so a short TTL keeps the hot
// path off the database without a separate invalidation channel.
type catalogRepoCacheDecorator struct {
	inner repository.CatalogRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewCatalogRepoCacheDecorator(inner repository.CatalogRepository, cache red.RedisClient) repository.CatalogRepository {
	return &catalogRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   15 * time.Minute,
	}
}

func (d *catalogRepoCacheDecorator) FindProduct(ctx context.Context, id string) (*model.Product, error) {
	key := fmt.Sprintf("catalog:product:%s", id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("catalog_product", "hit")
		var p model.Product
		if json.Unmarshal([]byte(val), &p) == nil {
			return &p, nil
		}
	} else if err != redis.Nil {
		// Degrade to the database on Redis errors.
	}

	metrics.IncCacheRequest("catalog_product", "miss")
	p, err := d.inner.FindProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if bytes, merr := json.Marshal(p); merr == nil {
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return p, nil
}

func (d *catalogRepoCacheDecorator) FindAddon(ctx context.Context, id string) (*model.Addon, error) {
	key := fmt.Sprintf("catalog:addon:%s", id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("catalog_addon", "hit")
		var a model.Addon
		if json.Unmarshal([]byte(val), &a) == nil {
			return &a, nil
		}
	}

	metrics.IncCacheRequest("catalog_addon", "miss")
	a, err := d.inner.FindAddon(ctx, id)
	if err != nil {
		return nil, err
	}
	if bytes, merr := json.Marshal(a); merr == nil {
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return a, nil
}

func (d *catalogRepoCacheDecorator) FindPackage(ctx context.Context, id string) (*model.WhatsAppPackage, error) {
	key := fmt.Sprintf("catalog:package:%s", id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("catalog_package", "hit")
		var w model.WhatsAppPackage
		if json.Unmarshal([]byte(val), &w) == nil {
			return &w, nil
		}
	}

	metrics.IncCacheRequest("catalog_package", "miss")
	w, err := d.inner.FindPackage(ctx, id)
	if err != nil {
		return nil, err
	}
	if bytes, merr := json.Marshal(w); merr == nil {
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return w, nil
}
