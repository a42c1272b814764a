// Package cache guarda en Redis el resumen del dashboard de documentos.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/tienda-pos/backoffice-api/internal/application/documents"
	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
	"github.com/tienda-pos/backoffice-api/pkg/config"
	"github.com/tienda-pos/backoffice-api/pkg/logger"
)

// StatsKey clave del resumen; GenKey contador de generación que avanza con cada escritura.
const (
	StatsKey = "backoffice:documents:stats"
	GenKey   = "backoffice:documents:stats:gen"
)

const defaultTTL = 30 * time.Second

var errStaleGen = errors.New("cache: generación vencida")

// Connect abre el cliente y hace ping. Addr vacío devuelve (nil, nil): caché deshabilitada.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisStatsCache implementa documents.StatsCache.
type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

var _ documents.StatsCache = (*RedisStatsCache)(nil)

// NewRedisStatsCache usa un cliente existente; el llamador lo cierra.
func NewRedisStatsCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisStatsCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RedisStatsCache{client: client, ttl: ttl, log: log}
}

type statsPayload struct {
	Gen            int64  `json:"gen"`
	TotalRevenue   string `json:"totalRevenue"`
	QuotationCount int64  `json:"quotationCount"`
	VOICount       int64  `json:"voiCount"`
	ReceiptCount   int64  `json:"receiptCount"`
}

func encodeStats(gen int64, s *entity.DocumentStats) ([]byte, error) {
	return json.Marshal(statsPayload{
		Gen:            gen,
		TotalRevenue:   s.TotalRevenue.String(),
		QuotationCount: s.QuotationCount,
		VOICount:       s.VOICount,
		ReceiptCount:   s.ReceiptCount,
	})
}

func decodeStats(b []byte) (int64, *entity.DocumentStats, error) {
	var p statsPayload
	if err := json.Unmarshal(b, &p); err != nil {
		return 0, nil, err
	}
	rev, err := decimal.NewFromString(p.TotalRevenue)
	if err != nil {
		return 0, nil, err
	}
	return p.Gen, &entity.DocumentStats{
		TotalRevenue:   rev,
		QuotationCount: p.QuotationCount,
		VOICount:       p.VOICount,
		ReceiptCount:   p.ReceiptCount,
	}, nil
}

// parseGen interpreta el valor de GenKey; ausente es la generación 0.
func parseGen(v any) (int64, error) {
	if v == nil {
		return 0, nil
	}
	str, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("generación con tipo %T", v)
	}
	return strconv.ParseInt(str, 10, 64)
}

// Get devuelve el resumen guardado y la generación vigente. Un resumen de otra
// generación, o cualquier error, cuenta como miss.
func (c *RedisStatsCache) Get(ctx context.Context) (*entity.DocumentStats, int64, bool) {
	vals, err := c.client.MGet(ctx, GenKey, StatsKey).Result()
	if err != nil {
		c.log.Warn().Err(err).Str("key", StatsKey).Msg("cache: lectura fallida")
		return nil, 0, false
	}
	gen, err := parseGen(vals[0])
	if err != nil {
		c.log.Warn().Err(err).Str("key", GenKey).Msg("cache: generación corrupta")
		return nil, 0, false
	}
	raw, ok := vals[1].(string)
	if !ok {
		return nil, gen, false
	}
	storedGen, stats, err := decodeStats([]byte(raw))
	if err != nil {
		c.log.Warn().Err(err).Str("key", StatsKey).Msg("cache: valor corrupto")
		return nil, gen, false
	}
	if storedGen != gen {
		return nil, gen, false
	}
	return stats, gen, true
}

// Set guarda el resumen con TTL solo si la generación sigue siendo gen. WATCH
// sobre GenKey aborta la escritura si una invalidación llega en medio.
func (c *RedisStatsCache) Set(ctx context.Context, gen int64, stats *entity.DocumentStats) {
	if stats == nil {
		return
	}
	raw, err := encodeStats(gen, stats)
	if err != nil {
		c.log.Warn().Err(err).Msg("cache: serializar resumen")
		return
	}
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, GenKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if errors.Is(err, redis.Nil) {
			cur = "0"
		}
		if cur != strconv.FormatInt(gen, 10) {
			return errStaleGen
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, StatsKey, raw, c.ttl)
			return nil
		})
		return err
	}, GenKey)
	switch {
	case err == nil, errors.Is(err, errStaleGen), errors.Is(err, redis.TxFailedErr):
		// Otra escritura avanzó la generación: el resumen ya no vale.
	default:
		c.log.Warn().Err(err).Str("key", StatsKey).Msg("cache: escritura fallida")
	}
}

// Invalidate avanza la generación y borra el resumen tras cualquier escritura de documentos.
func (c *RedisStatsCache) Invalidate(ctx context.Context) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenKey)
		pipe.Del(ctx, StatsKey)
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Str("key", StatsKey).Msg("cache: invalidación fallida")
	}
}
