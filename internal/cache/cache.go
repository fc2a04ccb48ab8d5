// Package cache mirrors the simulated catalog into Redis so other processes can read current
// prices without talking to the service.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"roundup/internal/models"
	"roundup/internal/money"

	"github.com/redis/go-redis/v9"
)

var ErrPriceNotCached = errors.New("price not cached")

// Connect parses a redis:// URL and checks the server is reachable.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = time.Second
	opts.ReadTimeout = 400 * time.Millisecond
	opts.WriteTimeout = 400 * time.Millisecond
	opts.OnConnect = func(ctx context.Context, cn *redis.Conn) error {
		_ = cn.ClientSetName(ctx, "roundup").Err()
		return nil
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

type Client interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

type CatalogCache struct {
	rdb Client
	ttl time.Duration
}

func NewCatalogCache(rdb Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{rdb: rdb, ttl: ttl}
}

func PriceKey(name string) string {
	return fmt.Sprintf("stock:%s:price", name)
}

func ProfitLossKey(name string) string {
	return fmt.Sprintf("stock:%s:profit_loss", name)
}

// PublishCatalog writes price and profit/loss for every stock. It stops at the first failure.
func (c *CatalogCache) PublishCatalog(ctx context.Context, stocks []models.Stock) error {
	for _, stock := range stocks {
		if err := c.rdb.Set(ctx, PriceKey(stock.Name), money.Format(stock.Price), c.ttl).Err(); err != nil {
			return fmt.Errorf("cache price %s: %w", stock.Name, err)
		}
		if err := c.rdb.Set(ctx, ProfitLossKey(stock.Name), money.Format(stock.ProfitLoss), c.ttl).Err(); err != nil {
			return fmt.Errorf("cache profit/loss %s: %w", stock.Name, err)
		}
	}
	return nil
}

func (c *CatalogCache) Price(ctx context.Context, name string) (float64, error) {
	raw, err := c.rdb.Get(ctx, PriceKey(name)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrPriceNotCached
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(raw, 64)
}
