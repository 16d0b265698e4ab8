package v1

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"statuspage-cron/models"
)

// Sink receives every committed snapshot and reported error after the
// MetricsStore has been updated. Sink failures never affect the store.
type Sink interface {
	PublishSnapshot(ctx context.Context, snapshot models.Snapshot) error
	PublishError(ctx context.Context, sourceErr models.SourceError) error
	Forget(ctx context.Context, label string) error
}

const redisKeyPrefix = "statuspage"

func snapshotKey(label string) string  { return fmt.Sprintf("%s:snapshot:%s", redisKeyPrefix, label) }
func resourcesKey(label string) string { return fmt.Sprintf("%s:resources:%s", redisKeyPrefix, label) }
func errorKey(label string) string     { return fmt.Sprintf("%s:error:%s", redisKeyPrefix, label) }

// RedisPublisher mirrors the store into Redis for consumers running in other processes:
//
//	statuspage:snapshot:<label>   snapshot as JSON
//	statuspage:resources:<label>  hash resource id -> status
//	statuspage:error:<label>      last error as JSON, absent after a successful update
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// PublishSnapshot replaces all keys of the snapshot's source in one MULTI/EXEC.
func (p *RedisPublisher) PublishSnapshot(ctx context.Context, snapshot models.Snapshot) error {
	label := snapshot.SourceLabel()
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", label, err)
	}
	fields := resourceFields(snapshot)

	_, err = p.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, snapshotKey(label), payload, 0)
		pipe.Del(ctx, resourcesKey(label))
		if len(fields) > 0 {
			pipe.HSet(ctx, resourcesKey(label), fields)
		}
		pipe.Del(ctx, errorKey(label))
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish snapshot %s: %w", label, err)
	}
	return nil
}

func (p *RedisPublisher) PublishError(ctx context.Context, sourceErr models.SourceError) error {
	payload, err := json.Marshal(sourceErr)
	if err != nil {
		return fmt.Errorf("encode error %s: %w", sourceErr.SourceLabel, err)
	}
	if err := p.rdb.Set(ctx, errorKey(sourceErr.SourceLabel), payload, 0).Err(); err != nil {
		return fmt.Errorf("publish error %s: %w", sourceErr.SourceLabel, err)
	}
	return nil
}

// Forget removes every key of a source that is no longer configured.
func (p *RedisPublisher) Forget(ctx context.Context, label string) error {
	if err := p.rdb.Del(ctx, snapshotKey(label), resourcesKey(label), errorKey(label)).Err(); err != nil {
		return fmt.Errorf("forget %s: %w", label, err)
	}
	return nil
}

func resourceFields(snapshot models.Snapshot) map[string]interface{} {
	fields := make(map[string]interface{}, snapshot.Len())
	for id, status := range snapshot.Statuses() {
		fields[id] = status.String()
	}
	return fields
}
