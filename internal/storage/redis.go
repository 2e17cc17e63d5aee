package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/supersokol/workua-resume-toolkit/internal/config"
	"github.com/supersokol/workua-resume-toolkit/internal/constants"
	"github.com/supersokol/workua-resume-toolkit/internal/logger"
)

// Redis keeps the dedup set of cleaned-text MD5s, so a resume that was
// re-scraped with identical content is not processed twice.
type Redis struct {
	client *redis.Client
	cfg    config.RedisConfig
}

// NewRedis connects and pings the server.
func NewRedis(cfg *config.RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Address, err)
	}

	logger.Info().Str("address", cfg.Address).Msg("redis connected")
	return &Redis{client: client, cfg: *cfg}, nil
}

// Close releases the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// CheckAndAddCleanedTextMD5 reports whether the cleaned-text hash was
// seen before and records it when new. The set carries a TTL so the
// dedup window slides instead of growing forever.
func (r *Redis) CheckAndAddCleanedTextMD5(ctx context.Context, md5Hex string) (bool, error) {
	key := constants.CleanedTextMD5SetKey

	seen, err := r.client.SIsMember(ctx, key, md5Hex).Result()
	if err != nil {
		return false, fmt.Errorf("check cleaned-text md5: %w", err)
	}
	if seen {
		return true, nil
	}

	pipe := r.client.TxPipeline()
	pipe.SAdd(ctx, key, md5Hex)
	pipe.ExpireNX(ctx, key, r.cfg.MD5ExpireDuration())
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("record cleaned-text md5: %w", err)
	}
	return false, nil
}
