package mediastore

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisMetadataIndex is the go-redis/v9-backed MetadataIndex. Writes go
// through hSetStruct, adapted from the teacher's reflection-based
// HSetStruct helper; a sorted set keyed by upload time backs List and
// DeleteOlderThan without scanning every hash key.
type RedisMetadataIndex struct {
	rc *redis.Client
}

func NewRedisMetadataIndex(rc *redis.Client) *RedisMetadataIndex {
	return &RedisMetadataIndex{rc: rc}
}

func metaKey(id string) string { return "media:meta:" + id }

const metaIndexKey = "media:index"

func (idx *RedisMetadataIndex) Put(ctx context.Context, m UploadMetadata) error {
	pipe := idx.rc.TxPipeline()
	if err := hSetStruct(ctx, pipe, metaKey(m.ID), m); err != nil {
		return err
	}
	pipe.ZAdd(ctx, metaIndexKey, redis.Z{Score: float64(m.UploadedAt.Unix()), Member: m.ID})

	_, err := pipe.Exec(ctx)
	return err
}

func (idx *RedisMetadataIndex) Get(ctx context.Context, id string) (UploadMetadata, bool, error) {
	fields, err := idx.rc.HGetAll(ctx, metaKey(id)).Result()
	if err != nil {
		return UploadMetadata{}, false, fmt.Errorf("hgetall %s: %w", id, err)
	}
	if len(fields) == 0 {
		return UploadMetadata{}, false, nil
	}
	return decodeUploadMetadata(fields), true, nil
}

func (idx *RedisMetadataIndex) List(ctx context.Context) ([]UploadMetadata, error) {
	ids, err := idx.rc.ZRevRange(ctx, metaIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange %s: %w", metaIndexKey, err)
	}

	out := make([]UploadMetadata, 0, len(ids))
	for _, id := range ids {
		m, ok, err := idx.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (idx *RedisMetadataIndex) Delete(ctx context.Context, id string) error {
	pipe := idx.rc.TxPipeline()
	pipe.Del(ctx, metaKey(id))
	pipe.ZRem(ctx, metaIndexKey, id)
	_, err := pipe.Exec(ctx)
	return err
}

func (idx *RedisMetadataIndex) DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	ids, err := idx.rc.ZRangeByScore(ctx, metaIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(cutoff.Unix(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("zrangebyscore %s: %w", metaIndexKey, err)
	}

	for _, id := range ids {
		if err := idx.Delete(ctx, id); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// hSetStruct writes every "redis"-tagged field of value into key via an
// HSet, adapted from the teacher's repository/room/redis reflection
// helper to work against a generic struct instead of a fixed Member
// type.
func hSetStruct(ctx context.Context, pipe redis.Pipeliner, key string, value any) error {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	fields := make(map[string]any, v.NumField())
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		tag := t.Field(i).Tag.Get("redis")
		if tag == "" {
			tag = t.Field(i).Name
		}

		if ts, ok := field.Interface().(time.Time); ok {
			fields[tag] = ts.Unix()
			continue
		}

		fields[tag] = field.Interface()
	}

	return pipe.HSet(ctx, key, fields).Err()
}

func decodeUploadMetadata(fields map[string]string) UploadMetadata {
	size, _ := strconv.ParseInt(fields["size"], 10, 64)
	uploadedUnix, _ := strconv.ParseInt(fields["uploaded_at"], 10, 64)

	return UploadMetadata{
		ID:         fields["id"],
		Name:       fields["name"],
		Size:       size,
		MimeType:   fields["mime_type"],
		StorageKey: fields["storage_key"],
		UploadedAt: time.Unix(uploadedUnix, 0).UTC(),
	}
}
