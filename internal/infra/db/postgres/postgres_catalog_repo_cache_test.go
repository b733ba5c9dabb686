//go:build !integration

package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"

	"whatsapp-commerce-billing/internal/domain/model"
)

func TestCatalogRepoCacheDecorator(t *testing.T) {
	ctx := context.Background()
	product := &model.Product{ID: "prod-123", Name: "Landing Page", PriceIDR: decimal.NewFromInt(150000), Active: true}
	productJSON, _ := json.Marshal(product)

	t.Run("FindProduct should return from cache on hit", func(t *testing.T) {
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				return string(productJSON), nil // Simulate cache hit
			},
		}
		innerRepoCalled := false
		mockInnerRepo := &mockInnerCatalogRepo{
			FindProductFunc: func(ctx context.Context, id string) (*model.Product, error) {
				innerRepoCalled = true // This should not be called
				return nil, nil
			},
		}

		decorator := NewCatalogRepoCacheDecorator(mockInnerRepo, mockRedis)

		result, err := decorator.FindProduct(ctx, "prod-123")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if innerRepoCalled {
			t.Error("inner repository should not be called on a cache hit")
		}
		if result == nil || result.ID != "prod-123" {
			t.Error("did not return the correct product from cache")
		}
	})

	t.Run("FindProduct should fall through and populate cache on miss", func(t *testing.T) {
		var setKey string
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				return "", redis.Nil
			},
			SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
				setKey = key
				return nil
			},
		}
		mockInnerRepo := &mockInnerCatalogRepo{
			FindProductFunc: func(ctx context.Context, id string) (*model.Product, error) {
				return product, nil
			},
		}

		decorator := NewCatalogRepoCacheDecorator(mockInnerRepo, mockRedis)

		result, err := decorator.FindProduct(ctx, "prod-123")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result == nil || result.ID != "prod-123" {
			t.Error("did not return the product from the inner repo")
		}
		if setKey != "catalog:product:prod-123" {
			t.Errorf("cache not populated under the expected key, got %q", setKey)
		}
	})
}
