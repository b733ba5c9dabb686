//go:build !integration

package postgres

import (
	"context"
	"time"

	"whatsapp-commerce-billing/internal/domain/model"
	red "whatsapp-commerce-billing/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerCatalogRepo mocks the database repository that the catalog
// decorator wraps.
type mockInnerCatalogRepo struct {
	FindProductFunc func(ctx context.Context, id string) (*model.Product, error)
	FindAddonFunc   func(ctx context.Context, id string) (*model.Addon, error)
	FindPackageFunc func(ctx context.Context, id string) (*model.WhatsAppPackage, error)
}

func (m *mockInnerCatalogRepo) FindProduct(ctx context.Context, id string) (*model.Product, error) {
	return m.FindProductFunc(ctx, id)
}
func (m *mockInnerCatalogRepo) FindAddon(ctx context.Context, id string) (*model.Addon, error) {
	return m.FindAddonFunc(ctx, id)
}
func (m *mockInnerCatalogRepo) FindPackage(ctx context.Context, id string) (*model.WhatsAppPackage, error) {
	return m.FindPackageFunc(ctx, id)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	PingFunc   func(ctx context.Context) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
	CloseFunc  func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) Close() error { return m.CloseFunc() }
