package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"hrforms/internal/editor"
)

const (
	lockTTL   = 10 * time.Second
	lockRetry = 25 * time.Millisecond
)

// unlockScript deletes the lock only if it still holds the caller's token,
// so an expired holder cannot release someone else's lock.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// DraftCache handles Redis storage of in-progress editing sessions
type DraftCache interface {
	Set(ctx context.Context, session *editor.EditingSession) error
	Get(ctx context.Context, id string) (*editor.EditingSession, error)
	Delete(ctx context.Context, id string) error
	// Lock blocks until the caller holds the session's lock across every
	// API instance, or ctx is done.
	Lock(ctx context.Context, id string) (unlock func(), err error)
}

type draftCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftCache creates a new draft cache. Drafts expire ttl after their
// last write.
func NewDraftCache(client *redis.Client, ttl time.Duration) DraftCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &draftCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *draftCache) key(id string) string {
	return fmt.Sprintf("draft:%s", id)
}

func (c *draftCache) lockKey(id string) string {
	return fmt.Sprintf("draft:%s:lock", id)
}

func (c *draftCache) Set(ctx context.Context, session *editor.EditingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(session.ID), data, c.ttl).Err()
}

// Get returns nil, nil when the draft does not exist or has expired.
func (c *draftCache) Get(ctx context.Context, id string) (*editor.EditingSession, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session editor.EditingSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *draftCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

// Lock takes the session lock with SET NX. The lock expires after lockTTL
// in case its holder dies.
func (c *draftCache) Lock(ctx context.Context, id string) (func(), error) {
	key := c.lockKey(id)
	token := uuid.NewString()
	for {
		ok, err := c.client.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetry):
		}
	}
	return func() {
		unlockScript.Run(context.Background(), c.client, []string{key}, token)
	}, nil
}
