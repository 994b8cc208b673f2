package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-messenger/internal/logger"
	"github.com/sbilibin2017/gw-messenger/internal/models"
)

// ProfileCacheRepository caches public user profiles in Redis
type ProfileCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached profiles
}

// NewProfileCacheRepository creates a new repository instance with the given TTL
func NewProfileCacheRepository(client *redis.Client, expiration time.Duration) *ProfileCacheRepository {
	return &ProfileCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func profileKey(username string) string {
	return fmt.Sprintf("user_profile:%s", username)
}

// GetProfile returns the cached profile, or nil on a cache miss
func (r *ProfileCacheRepository) GetProfile(ctx context.Context, username string) (*models.User, error) {
	key := profileKey(username)

	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		logger.FromContext(ctx).Infow("profile cache", "key", key, "result", "miss")
		return nil, nil
	}
	if err != nil {
		logger.FromContext(ctx).Infow("profile cache", "key", key, "error", err)
		return nil, err
	}

	var profile models.User
	if err := json.Unmarshal(val, &profile); err != nil {
		logger.FromContext(ctx).Infow("profile cache", "key", key, "value", string(val), "error", err)
		return nil, err
	}

	logger.FromContext(ctx).Infow("profile cache", "key", key, "result", "hit")
	return &profile, nil
}

// SetProfile caches the profile with expiration
func (r *ProfileCacheRepository) SetProfile(ctx context.Context, profile *models.User) error {
	key := profileKey(profile.Username)

	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, key, data, r.exp).Err()

	logger.FromContext(ctx).Infow("profile cache",
		"key", key,
		"result", "set",
		"error", err,
	)

	return err
}

// DeleteProfile evicts the cached profile
func (r *ProfileCacheRepository) DeleteProfile(ctx context.Context, username string) error {
	key := profileKey(username)
	err := r.client.Del(ctx, key).Err()

	logger.FromContext(ctx).Infow("profile cache",
		"key", key,
		"result", "deleted",
		"error", err,
	)

	return err
}
