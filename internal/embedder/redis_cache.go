package embedder

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyEmbedding = "embedding:%s"

// RedisCache shares embeddings between service instances
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// creates a redis-backed cache from a URL and verifies the connection
func NewRedisCacheFromURL(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func (r *RedisCache) Client() *redis.Client {
	return r.client
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	raw, err := r.client.Get(ctx, fmt.Sprintf(keyEmbedding, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to get embedding from redis: %w", err)
	}

	vector, err := decodeVector(raw)
	if err != nil {
		return nil, false, err
	}

	return vector, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, vector []float32) error {
	if err := r.client.Set(ctx, fmt.Sprintf(keyEmbedding, key), encodeVector(vector), r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set embedding in redis: %w", err)
	}

	return nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

// little-endian float32 packing
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))

	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}

	return buf
}

func decodeVector(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("cached embedding has invalid length %d", len(buf))
	}

	out := make([]float32, len(buf)/4)

	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}

	return out, nil
}
