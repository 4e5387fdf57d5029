package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/ajitseee/sweetshop/internal/dto"

	"github.com/redis/go-redis/v9"
)

const (
	keyList   = "sweets:list"
	keySearch = "sweets:search:"
)

// CatalogCache caches the sweet list and search results in Redis.
// A nil *CatalogCache is valid and behaves as a permanent miss.
type CatalogCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCatalogCache returns a cache backed by rdb, or nil when rdb is nil.
func NewCatalogCache(rdb *redis.Client, ttl time.Duration) *CatalogCache {
	if rdb == nil {
		return nil
	}
	return &CatalogCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached list, or nil on a miss.
func (c *CatalogCache) GetList(ctx context.Context) ([]dto.SweetResponse, error) {
	return c.get(ctx, keyList)
}

func (c *CatalogCache) SetList(ctx context.Context, list []dto.SweetResponse) error {
	return c.set(ctx, keyList, list)
}

// GetSearch returns the cached result for filter, or nil on a miss.
func (c *CatalogCache) GetSearch(ctx context.Context, filter dto.SweetFilter) ([]dto.SweetResponse, error) {
	return c.get(ctx, keySearch+SearchKey(filter))
}

func (c *CatalogCache) SetSearch(ctx context.Context, filter dto.SweetFilter, list []dto.SweetResponse) error {
	return c.set(ctx, keySearch+SearchKey(filter), list)
}

// InvalidateAll drops the list and every search key. Called after any write.
func (c *CatalogCache) InvalidateAll(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.rdb.Del(ctx, keyList).Err(); err != nil {
		return err
	}
	iter := c.rdb.Scan(ctx, 0, keySearch+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *CatalogCache) get(ctx context.Context, key string) ([]dto.SweetResponse, error) {
	if c == nil {
		return nil, nil
	}
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := []dto.SweetResponse{}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *CatalogCache) set(ctx context.Context, key string, list []dto.SweetResponse) error {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}

// SearchKey normalises a filter into a stable cache key suffix.
func SearchKey(f dto.SweetFilter) string {
	parts := []string{
		"n=" + strings.ToLower(strings.TrimSpace(f.Name)),
		"c=" + strings.ToLower(strings.TrimSpace(f.Category)),
		"min=",
		"max=",
	}
	if f.MinPrice != nil {
		parts[2] += f.MinPrice.String()
	}
	if f.MaxPrice != nil {
		parts[3] += f.MaxPrice.String()
	}
	return strings.Join(parts, "|")
}
