package caching

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"assochub/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	tiersKey         = "assochub:tiers:active"
	platformStatsKey = "assochub:platform:stats"
)

// CacheService holds read-heavy reference data. A miss returns nil, nil.
type CacheService interface {
	GetTiers(ctx context.Context) ([]*models.SubscriptionTier, error)
	SetTiers(ctx context.Context, tiers []*models.SubscriptionTier, ttl time.Duration) error
	InvalidateTiers(ctx context.Context) error

	GetPlatformStats(ctx context.Context) (*models.PlatformStats, error)
	SetPlatformStats(ctx context.Context, stats *models.PlatformStats, ttl time.Duration) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client redis.Cmdable
}

// NewRedisClient accepts either host:port or a redis:// URL.
func NewRedisClient(addr, password string, db int, log *logrus.Logger) *redis.Client {
	var client *redis.Client
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opts, err := redis.ParseURL(addr)
		if err == nil {
			client = redis.NewClient(opts)
		} else {
			log.WithError(err).Warn("invalid redis url, falling back to address form")
		}
	}
	if client == nil {
		client = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		})
	}

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.WithError(err).Warn("redis ping failed on initialization")
	}
	return client
}

func NewRedisCacheService(client redis.Cmdable) CacheService {
	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetTiers(ctx context.Context) ([]*models.SubscriptionTier, error) {
	var tiers []*models.SubscriptionTier
	found, err := r.getJSON(ctx, tiersKey, &tiers)
	if err != nil || !found {
		return nil, err
	}
	return tiers, nil
}

func (r *redisCacheService) SetTiers(ctx context.Context, tiers []*models.SubscriptionTier, ttl time.Duration) error {
	return r.setJSON(ctx, tiersKey, tiers, ttl)
}

func (r *redisCacheService) InvalidateTiers(ctx context.Context) error {
	return r.client.Del(ctx, tiersKey).Err()
}

func (r *redisCacheService) GetPlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	var stats models.PlatformStats
	found, err := r.getJSON(ctx, platformStatsKey, &stats)
	if err != nil || !found {
		return nil, err
	}
	return &stats, nil
}

func (r *redisCacheService) SetPlatformStats(ctx context.Context, stats *models.PlatformStats, ttl time.Duration) error {
	return r.setJSON(ctx, platformStatsKey, stats, ttl)
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCacheService) getJSON(ctx context.Context, key string, v interface{}) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil // cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}
