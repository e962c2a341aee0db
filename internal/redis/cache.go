package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"teamhub/internal/domain/chat"
)

// Cache key patterns:
// - room:{room_id}:history    - room message history, invalidated on write
// - message:{msg_id}:reactions - reaction aggregate, rewritten on change
// - last_seen:{user_id}       - last disconnect time

// CacheConfig contains TTLs for the read-side caches.
type CacheConfig struct {
	HistoryTTL   time.Duration
	ReactionsTTL time.Duration
	LastSeenTTL  time.Duration
}

// DefaultCacheConfig returns sensible defaults
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		HistoryTTL:   time.Minute,
		ReactionsTTL: 5 * time.Minute,
		LastSeenTTL:  24 * time.Hour,
	}
}

// CacheStore handles read-side caching in Redis. All methods are safe on a
// nil receiver so the service layer can run without Redis configured.
type CacheStore struct {
	client *goredis.Client
	config CacheConfig
}

// NewCacheStore creates a new cache store
func NewCacheStore(client *goredis.Client, config CacheConfig) *CacheStore {
	return &CacheStore{
		client: client,
		config: config,
	}
}

func roomHistoryKey(roomID uuid.UUID) string {
	return fmt.Sprintf("room:%s:history", roomID)
}

func reactionsKey(messageID uuid.UUID) string {
	return fmt.Sprintf("message:%s:reactions", messageID)
}

// GetRoomHistory retrieves cached room history. The second return is false on
// a miss.
func (c *CacheStore) GetRoomHistory(ctx context.Context, roomID uuid.UUID) ([]chat.MessageView, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, roomHistoryKey(roomID)).Result()
	if err != nil {
		return nil, false
	}
	var views []chat.MessageView
	if err := json.Unmarshal([]byte(data), &views); err != nil {
		return nil, false
	}
	return views, true
}

// SetRoomHistory caches room history.
func (c *CacheStore) SetRoomHistory(ctx context.Context, roomID uuid.UUID, views []chat.MessageView) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(views)
	if err != nil {
		return
	}
	c.client.Set(ctx, roomHistoryKey(roomID), data, c.config.HistoryTTL)
}

// InvalidateRoomHistory drops the cached history after a write to the room.
func (c *CacheStore) InvalidateRoomHistory(ctx context.Context, roomID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, roomHistoryKey(roomID))
}

// SetReactionAggregate stores the freshly recomputed aggregate for a message.
func (c *CacheStore) SetReactionAggregate(ctx context.Context, messageID uuid.UUID, aggregate map[string]chat.ReactionSummary) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(aggregate)
	if err != nil {
		return
	}
	c.client.Set(ctx, reactionsKey(messageID), data, c.config.ReactionsTTL)
}

// GetReactionAggregate retrieves a cached aggregate; false on a miss.
func (c *CacheStore) GetReactionAggregate(ctx context.Context, messageID uuid.UUID) (map[string]chat.ReactionSummary, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, reactionsKey(messageID)).Result()
	if err != nil {
		return nil, false
	}
	var aggregate map[string]chat.ReactionSummary
	if err := json.Unmarshal([]byte(data), &aggregate); err != nil {
		return nil, false
	}
	return aggregate, true
}

// InvalidateReactionAggregate drops the cached aggregate for a message.
func (c *CacheStore) InvalidateReactionAggregate(ctx context.Context, messageID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, reactionsKey(messageID))
}

// TouchLastSeen records the time a user's last connection dropped.
func (c *CacheStore) TouchLastSeen(ctx context.Context, userID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	key := fmt.Sprintf("last_seen:%s", userID)
	c.client.Set(ctx, key, time.Now().UTC().Format(time.RFC3339), c.config.LastSeenTTL)
}

// LastSeen returns the recorded last-seen time for a user; false when none
// is recorded.
func (c *CacheStore) LastSeen(ctx context.Context, userID uuid.UUID) (time.Time, bool) {
	if c == nil || c.client == nil {
		return time.Time{}, false
	}
	key := fmt.Sprintf("last_seen:%s", userID)
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, data)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
