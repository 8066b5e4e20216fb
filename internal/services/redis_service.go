package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"farm-service/internal/database"
)

type RedisService struct {
	client *database.RedisClient
}

func NewRedisService(client *database.RedisClient) *RedisService {
	return &RedisService{
		client: client,
	}
}

// =============================================================================
// User Presence
// =============================================================================

func (r *RedisService) SetUserOnline(ctx context.Context, userID uint) error {
	pipe := r.client.GetClient().Pipeline()

	pipe.SAdd(ctx, "online_users", userID)
	pipe.HSet(ctx, fmt.Sprintf("user:%d:status", userID), map[string]interface{}{
		"status":     "online",
		"last_seen":  time.Now().Unix(),
		"updated_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, fmt.Sprintf("user:%d:status", userID), 5*time.Minute)

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("Failed to set user online", "userID", userID, "error", err)
		return err
	}
	return nil
}

func (r *RedisService) SetUserOffline(ctx context.Context, userID uint) error {
	pipe := r.client.GetClient().Pipeline()

	pipe.SRem(ctx, "online_users", userID)
	pipe.HSet(ctx, fmt.Sprintf("user:%d:status", userID), map[string]interface{}{
		"status":     "offline",
		"last_seen":  time.Now().Unix(),
		"updated_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, fmt.Sprintf("user:%d:status", userID), 24*time.Hour)

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("Failed to set user offline", "userID", userID, "error", err)
		return err
	}
	return nil
}

func (r *RedisService) IsUserOnline(ctx context.Context, userID uint) (bool, error) {
	return r.client.GetClient().SIsMember(ctx, "online_users", userID).Result()
}

// =============================================================================
// Rate Limiting
// =============================================================================

// CheckRateLimit implements a fixed-window counter keyed by caller and endpoint
func (r *RedisService) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	pipe := r.client.GetClient().Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(limit), nil
}

// =============================================================================
// Farm Event PubSub
// =============================================================================

// PublishFarmEvent pushes a farm event onto the redis channel for the farm.
// Each server instance still owns its own in-memory connection set; this is
// how sibling instances learn about mutations so their hubs can rebroadcast.
func (r *RedisService) PublishFarmEvent(ctx context.Context, farmID uint, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := r.client.GetClient().Publish(ctx, fmt.Sprintf("farm:%d:events", farmID), data).Err(); err != nil {
		slog.Error("Failed to publish farm event", "farmID", farmID, "error", err)
		return err
	}
	return nil
}

// =============================================================================
// Analytics Rollups (written by cmd/worker)
// =============================================================================

// IncrementAlertCount bumps the per-farm, per-day alert counter
func (r *RedisService) IncrementAlertCount(ctx context.Context, farmID uint, day time.Time) error {
	key := fmt.Sprintf("analytics:farm:%d:alerts:%s", farmID, day.Format("2006-01-02"))
	pipe := r.client.GetClient().Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 90*24*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisService) GetAlertCount(ctx context.Context, farmID uint, day time.Time) (int64, error) {
	key := fmt.Sprintf("analytics:farm:%d:alerts:%s", farmID, day.Format("2006-01-02"))
	return r.client.GetClient().Get(ctx, key).Int64()
}
