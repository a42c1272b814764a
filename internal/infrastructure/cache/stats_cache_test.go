package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
	"github.com/tienda-pos/backoffice-api/pkg/config"
)

func TestEncodeDecodeStats(t *testing.T) {
	in := &entity.DocumentStats{
		TotalRevenue:   decimal.RequireFromString("52836.60"),
		QuotationCount: 3,
		VOICount:       1,
		ReceiptCount:   7,
	}
	raw, err := encodeStats(4, in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"gen":4,"totalRevenue":"52836.6","quotationCount":3,"voiCount":1,"receiptCount":7}`, string(raw))

	gen, out, err := decodeStats(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(4), gen)
	assert.True(t, in.TotalRevenue.Equal(out.TotalRevenue))
	assert.Equal(t, int64(7), out.ReceiptCount)
}

func TestDecodeStats_Corrupto(t *testing.T) {
	_, _, err := decodeStats([]byte(`{"totalRevenue":"abc"}`))
	assert.Error(t, err)
}

func TestParseGen(t *testing.T) {
	gen, err := parseGen(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	gen, err = parseGen("12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), gen)

	_, err = parseGen("x")
	assert.Error(t, err)
	_, err = parseGen(3)
	assert.Error(t, err)
}

func TestConnect_SinAddr(t *testing.T) {
	client, err := Connect(context.Background(), config.RedisConfig{})
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestRedisStatsCache_ServidorCaidoEsMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewRedisStatsCache(client, time.Minute, nil)
	ctx := context.Background()

	c.Set(ctx, 0, &entity.DocumentStats{TotalRevenue: decimal.Zero})
	c.Invalidate(ctx)
	stats, _, ok := c.Get(ctx)
	assert.False(t, ok)
	assert.Nil(t, stats)
}
