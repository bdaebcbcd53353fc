package traveltime

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "happyswims:travel"

// Cache holds driving times, in seconds, from a client's origin to each
// instructor. A missing or unreadable entry means the time is unknown.
type Cache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewCache(rdb redis.Cmdable, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func key(origin, instructorID string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, normalizeOrigin(origin), instructorID)
}

func normalizeOrigin(origin string) string {
	return strings.ToLower(strings.Join(strings.Fields(origin), " "))
}

// Lookup returns an entry for every instructor id; unknown times are nil.
// On a redis failure every time is unknown and the error is returned
// alongside so the caller can decide whether to log it.
func (c *Cache) Lookup(ctx context.Context, origin string, instructorIDs []string) (map[string]*int, error) {
	out := make(map[string]*int, len(instructorIDs))
	for _, id := range instructorIDs {
		out[id] = nil
	}
	if c == nil || c.rdb == nil || normalizeOrigin(origin) == "" || len(instructorIDs) == 0 {
		return out, nil
	}

	keys := make([]string, len(instructorIDs))
	for i, id := range instructorIDs {
		keys[i] = key(origin, id)
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return out, err
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		seconds, err := strconv.Atoi(s)
		if err != nil || seconds < 0 {
			continue
		}
		out[instructorIDs[i]] = &seconds
	}
	return out, nil
}

// Store records the travel time from origin to the instructor.
func (c *Cache) Store(ctx context.Context, origin, instructorID string, seconds int) error {
	if c == nil || c.rdb == nil {
		return errors.New("travel time cache is not configured")
	}
	if normalizeOrigin(origin) == "" || instructorID == "" {
		return errors.New("origin and instructor id are required")
	}
	if seconds < 0 {
		return errors.New("travel time must not be negative")
	}
	return c.rdb.Set(ctx, key(origin, instructorID), strconv.Itoa(seconds), c.ttl).Err()
}
