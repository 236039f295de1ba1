// Package cache provides the memcached-backed event display cache.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/domain"
)

const eventTTLSeconds = 60

// EventCache stores JSON-encoded event aggregates in memcached. Cache
// failures are logged and treated as misses; the repository stays the
// source of truth.
type EventCache struct {
	mc *memcache.Client
}

func NewEventCache(mc *memcache.Client) *EventCache {
	return &EventCache{mc: mc}
}

func eventKey(id string) string {
	return "event:" + id
}

func (c *EventCache) Get(ctx context.Context, id string) (*domain.Event, bool) {
	item, err := c.mc.Get(eventKey(id))
	if err == memcache.ErrCacheMiss {
		return nil, false
	}
	if err != nil {
		slog.DebugContext(ctx, "event cache get failed",
			slog.String("eventId", id),
			slog.String("error", err.Error()),
			slog.String("module", "cache"),
		)
		return nil, false
	}
	var event domain.Event
	if err := json.Unmarshal(item.Value, &event); err != nil {
		return nil, false
	}
	return &event, true
}

func (c *EventCache) Set(ctx context.Context, event *domain.Event) {
	value, err := json.Marshal(event)
	if err != nil {
		return
	}
	err = c.mc.Set(&memcache.Item{
		Key:        eventKey(event.ID),
		Value:      value,
		Expiration: eventTTLSeconds,
	})
	if err != nil {
		slog.DebugContext(ctx, "event cache set failed",
			slog.String("eventId", event.ID),
			slog.String("error", err.Error()),
			slog.String("module", "cache"),
		)
	}
}

func (c *EventCache) Delete(ctx context.Context, id string) {
	err := c.mc.Delete(eventKey(id))
	if err != nil && err != memcache.ErrCacheMiss {
		slog.DebugContext(ctx, "event cache delete failed",
			slog.String("eventId", id),
			slog.String("error", err.Error()),
			slog.String("module", "cache"),
		)
	}
}
