//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
	"github.com/tienda-pos/backoffice-api/pkg/config"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client, err := Connect(ctx, config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStatsCache_GuardaYLee(t *testing.T) {
	c := NewRedisStatsCache(newTestClient(t), time.Minute, nil)
	ctx := context.Background()

	_, gen, ok := c.Get(ctx)
	require.False(t, ok)

	c.Set(ctx, gen, &entity.DocumentStats{TotalRevenue: decimal.RequireFromString("100.50"), ReceiptCount: 2})
	stats, _, ok := c.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "100.5", stats.TotalRevenue.String())
	assert.Equal(t, int64(2), stats.ReceiptCount)

	c.Invalidate(ctx)
	_, _, ok = c.Get(ctx)
	assert.False(t, ok)
}

func TestRedisStatsCache_NoGuardaResumenDeGeneracionVencida(t *testing.T) {
	c := NewRedisStatsCache(newTestClient(t), time.Minute, nil)
	ctx := context.Background()

	_, gen, ok := c.Get(ctx)
	require.False(t, ok)

	// Una escritura de documentos llega entre la lectura del repositorio y el Set.
	c.Invalidate(ctx)
	c.Set(ctx, gen, &entity.DocumentStats{TotalRevenue: decimal.NewFromInt(1)})

	_, newGen, ok := c.Get(ctx)
	assert.False(t, ok, "el resumen viejo no debe quedar en caché")
	assert.Equal(t, gen+1, newGen)
}

func TestRedisStatsCache_IgnoraResumenDeOtraGeneracion(t *testing.T) {
	client := newTestClient(t)
	c := NewRedisStatsCache(client, time.Minute, nil)
	ctx := context.Background()

	raw, err := encodeStats(7, &entity.DocumentStats{TotalRevenue: decimal.NewFromInt(9)})
	require.NoError(t, err)
	require.NoError(t, client.Set(ctx, StatsKey, raw, time.Minute).Err())

	_, gen, ok := c.Get(ctx)
	assert.False(t, ok)
	assert.Equal(t, int64(0), gen)
}
