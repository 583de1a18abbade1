package checkpoint

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"arango-etl/internal/filestore"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "arango-etl"

// Redis persists checkpoints in a Redis instance: the watermark as a plain
// key holding unix milliseconds, the processed ledger as a sorted set scored
// by file timestamp so the recency window maps onto ZREMRANGEBYSCORE.
//
// Only one driver mutates a stream's checkpoint at a time; the individual
// commands are atomic, so no transactions are needed for the max/evict steps.
type Redis struct {
	client *redis.Client
	window time.Duration
}

func NewRedis(addr string, poolSize int, window time.Duration) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			PoolSize: poolSize,
		}),
		window: window,
	}
}

// Ping verifies the backing store is reachable. Called once at startup so a
// misconfigured endpoint fails fast instead of on the first tick.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return &Error{Op: "ping", Err: err}
	}
	return nil
}

func watermarkKey(stream string) string {
	return fmt.Sprintf("%s:%s:watermark", keyPrefix, stream)
}

func processedKey(stream string) string {
	return fmt.Sprintf("%s:%s:processed", keyPrefix, stream)
}

func (r *Redis) Load(ctx context.Context, stream string) (Checkpoint, error) {
	var cp Checkpoint

	val, err := r.client.Get(ctx, watermarkKey(stream)).Result()
	switch {
	case err == redis.Nil:
		// no checkpoint yet, zero value
	case err != nil:
		return cp, &Error{Op: "load watermark", Stream: stream, Err: err}
	default:
		ms, perr := strconv.ParseInt(val, 10, 64)
		if perr != nil {
			return cp, &Error{Op: "load watermark", Stream: stream, Err: fmt.Errorf("corrupt value %q: %w", val, perr)}
		}
		cp.Watermark = time.UnixMilli(ms).UTC()
	}

	members, err := r.client.ZRangeWithScores(ctx, processedKey(stream), 0, -1).Result()
	if err != nil {
		return cp, &Error{Op: "load processed set", Stream: stream, Err: err}
	}

	cp.Recent = make(map[string]time.Time, len(members))
	for _, m := range members {
		key, ok := m.Member.(string)
		if !ok {
			continue
		}
		cp.Recent[key] = time.UnixMilli(int64(m.Score)).UTC()
	}
	return cp, nil
}

func (r *Redis) MarkProcessed(ctx context.Context, stream string, file filestore.FileDescriptor) error {
	err := r.client.ZAdd(ctx, processedKey(stream), redis.Z{
		Score:  float64(file.Timestamp.UnixMilli()),
		Member: file.Key,
	}).Err()
	if err != nil {
		return &Error{Op: "mark processed", Stream: stream, Err: err}
	}
	return r.evict(ctx, stream)
}

func (r *Redis) AdvanceWatermark(ctx context.Context, stream string, candidate time.Time) error {
	val, err := r.client.Get(ctx, watermarkKey(stream)).Result()
	if err != nil && err != redis.Nil {
		return &Error{Op: "advance watermark", Stream: stream, Err: err}
	}

	if err == nil {
		if ms, perr := strconv.ParseInt(val, 10, 64); perr == nil && !candidate.After(time.UnixMilli(ms)) {
			// already at or past the candidate, never regress
			return nil
		}
	}

	if err := r.client.Set(ctx, watermarkKey(stream), candidate.UnixMilli(), 0).Err(); err != nil {
		return &Error{Op: "advance watermark", Stream: stream, Err: err}
	}
	return r.evict(ctx, stream)
}

// evict trims ledger entries that fell behind watermark - window.
func (r *Redis) evict(ctx context.Context, stream string) error {
	if r.window <= 0 {
		return nil
	}

	val, err := r.client.Get(ctx, watermarkKey(stream)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return &Error{Op: "evict", Stream: stream, Err: err}
	}
	ms, perr := strconv.ParseInt(val, 10, 64)
	if perr != nil {
		return &Error{Op: "evict", Stream: stream, Err: fmt.Errorf("corrupt watermark %q: %w", val, perr)}
	}

	cutoff := time.UnixMilli(ms).Add(-r.window).UnixMilli()
	err = r.client.ZRemRangeByScore(ctx, processedKey(stream), "-inf", fmt.Sprintf("(%d", cutoff)).Err()
	if err != nil {
		return &Error{Op: "evict", Stream: stream, Err: err}
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
