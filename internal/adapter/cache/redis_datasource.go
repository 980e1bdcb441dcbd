package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/fixora/fieldreports/internal/config"
	"github.com/fixora/fieldreports/internal/domain"
	"github.com/fixora/fieldreports/internal/logger"
	"github.com/fixora/fieldreports/internal/ports"
)

const (
	keyPrefix      = "fieldreports:dataset:"
	techniciansKey = keyPrefix + "technicians"
	workOrdersKey  = keyPrefix + "work_orders"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// CachedDataSource serves technicians and work orders from Redis, falling
// through to the wrapped source on a miss. Redis failures are logged and
// never fail a load.
type CachedDataSource struct {
	next   ports.DataSource
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewCachedDataSource wraps next. A nil client disables caching.
func NewCachedDataSource(next ports.DataSource, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedDataSource {
	return &CachedDataSource{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "dataset_cache"}),
	}
}

var _ ports.DataSource = (*CachedDataSource)(nil)

func (c *CachedDataSource) GetTechnicians(ctx context.Context) ([]domain.Technician, error) {
	var technicians []domain.Technician
	if c.lookup(ctx, techniciansKey, &technicians) {
		return technicians, nil
	}

	technicians, err := c.next.GetTechnicians(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, techniciansKey, technicians)
	return technicians, nil
}

func (c *CachedDataSource) GetWorkOrders(ctx context.Context) ([]domain.WorkOrder, error) {
	var orders []domain.WorkOrder
	if c.lookup(ctx, workOrdersKey, &orders) {
		return orders, nil
	}

	orders, err := c.next.GetWorkOrders(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, workOrdersKey, orders)
	return orders, nil
}

// Invalidate drops the cached dataset so the next load reads the source
func (c *CachedDataSource) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, techniciansKey, workOrdersKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate dataset cache: %w", err)
	}
	return nil
}

func (c *CachedDataSource) lookup(ctx context.Context, key string, dest interface{}) bool {
	if c.client == nil {
		return false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn(ctx, "Dataset cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn(ctx, "Discarding undecodable cache entry", map[string]interface{}{"key": key, "error": err.Error()})
		return false
	}

	c.logger.Debug(ctx, "Dataset cache hit", map[string]interface{}{"key": key})
	return true
}

func (c *CachedDataSource) store(ctx context.Context, key string, value interface{}) {
	if c.client == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn(ctx, "Failed to encode cache entry", map[string]interface{}{"key": key, "error": err.Error()})
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn(ctx, "Dataset cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}
