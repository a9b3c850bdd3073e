package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"meme-journalist/internal/model"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no digest is mirrored for a day.
var ErrNotFound = errors.New("digest not found")

const dayLayout = "20060102"

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func digestKey(day string) string {
	return fmt.Sprintf("memes:digest:%s", day)
}

const daysZKey = "memes:digests"

// SaveDigest mirrors a digest under its calendar day and indexes the day by
// publish time. A later save on the same day replaces the earlier one.
func (s *RedisStore) SaveDigest(ctx context.Context, at time.Time, d model.Digest, ttl time.Duration) error {
	if d == nil {
		d = model.Digest{}
	}
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	day := at.Format(dayLayout)
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, digestKey(day), b, ttl)
	pipe.ZAdd(ctx, daysZKey, redis.Z{Score: float64(at.Unix()), Member: day})
	_, err = pipe.Exec(ctx)
	return err
}

// LoadDigest returns the digest mirrored for a YYYYMMDD day.
func (s *RedisStore) LoadDigest(ctx context.Context, day string) (model.Digest, error) {
	b, err := s.rdb.Get(ctx, digestKey(day)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var d model.Digest
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return d, nil
}

// Days lists up to n mirrored days, newest first. Days whose digest has
// expired are pruned from the index.
func (s *RedisStore) Days(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	days, err := s.rdb.ZRevRange(ctx, daysZKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(days))
	for _, day := range days {
		exists, err := s.rdb.Exists(ctx, digestKey(day)).Result()
		if err != nil {
			return nil, err
		}
		if exists == 0 {
			if err := s.rdb.ZRem(ctx, daysZKey, day).Err(); err != nil {
				return nil, err
			}
			continue
		}
		out = append(out, day)
	}
	return out, nil
}
