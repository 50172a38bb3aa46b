package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"route-optimizer-service/internal/domain"
	"route-optimizer-service/internal/ports"
)

const redisKeyPrefix = "geocode:"

// Redis-backed cache mapping address strings to resolved places.
// Entries expire so stale provider data ages out; the zero TTL means
// no expiry.
type RedisGeocodeCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisGeocodeCache(client *redis.Client, ttl time.Duration) *RedisGeocodeCache {
	return &RedisGeocodeCache{Client: client, TTL: ttl}
}

type redisPlace struct {
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// Fetch cached places for the given addresses.
func (r *RedisGeocodeCache) GetMany(ctx context.Context, addresses []string) (map[string]ports.Place, error) {
	if r.Client == nil {
		return nil, errors.New("geocode cache: redis client is nil")
	}

	uniq := dedupeKeys(addresses)
	if len(uniq) == 0 {
		return map[string]ports.Place{}, nil
	}

	keys := make([]string, len(uniq))
	for i, a := range uniq {
		keys[i] = redisKeyPrefix + a
	}

	values, err := r.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: mget: %w", err)
	}

	out := make(map[string]ports.Place, len(uniq))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Nil reply: a miss, not an error.
			continue
		}

		var p redisPlace
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("get geocode cache: decode entry for %q: %w", uniq[i], err)
		}

		out[uniq[i]] = ports.Place{
			DisplayName: p.DisplayName,
			Coords:      domain.Coordinates{Lon: p.Lon, Lat: p.Lat},
		}
	}

	return out, nil
}

// Store address -> place mappings in the cache.
func (r *RedisGeocodeCache) PutMany(ctx context.Context, places map[string]ports.Place) error {
	if r.Client == nil {
		return errors.New("geocode cache: redis client is nil")
	}

	if len(places) == 0 {
		return nil
	}

	pipe := r.Client.Pipeline()
	for addr, p := range places {
		if strings.TrimSpace(addr) == "" {
			return fmt.Errorf("insert geocode cache: empty address key")
		}

		payload, err := json.Marshal(redisPlace{
			DisplayName: p.DisplayName,
			Lat:         p.Coords.Lat,
			Lon:         p.Coords.Lon,
		})
		if err != nil {
			return fmt.Errorf("insert geocode cache addr=%q: encode: %w", addr, err)
		}

		pipe.Set(ctx, redisKeyPrefix+addr, payload, r.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert geocode cache: pipeline exec: %w", err)
	}

	return nil
}
