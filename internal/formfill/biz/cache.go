package biz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/formfill/internal/model"
	"github.com/kart-io/formfill/pkg/utils/json"
)

// ResolutionCacheConfig 解析缓存配置。
type ResolutionCacheConfig struct {
	// Enabled 是否启用缓存。
	Enabled bool
	// TTL 缓存过期时间。
	TTL time.Duration
	// KeyPrefix 缓存键前缀。
	KeyPrefix string
}

// ResolutionCache 字段解析结果缓存。
// 缓存键由租户和字段签名共同决定，不同租户的同名字段互不可见。
type ResolutionCache struct {
	redis  *goredis.Client
	config *ResolutionCacheConfig
}

// NewResolutionCache 创建解析缓存实例。
func NewResolutionCache(redis *goredis.Client, config *ResolutionCacheConfig) *ResolutionCache {
	if config == nil {
		config = &ResolutionCacheConfig{
			Enabled:   false,
			TTL:       1 * time.Hour,
			KeyPrefix: "formfill:resolve:",
		}
	}
	return &ResolutionCache{
		redis:  redis,
		config: config,
	}
}

// Enabled 返回缓存是否启用且 Redis 可用。
func (c *ResolutionCache) Enabled() bool {
	return c.config.Enabled && c.redis != nil
}

// tenantSegment 租户在缓存键中的定长段。哈希后取前缀，
// 保证任意租户 ID 都不会混入 SCAN 通配符。
func tenantSegment(tenantID string) string {
	hash := sha256.Sum256([]byte(tenantID))
	return hex.EncodeToString(hash[:8])
}

// cacheKey 生成缓存键：前缀 + 租户段 + 字段签名哈希。
// 租户独立成段，才能按租户整体失效。
func (c *ResolutionCache) cacheKey(tenantID string, field *model.Field) string {
	sig := strings.Join([]string{
		field.Selector,
		string(field.Type),
		field.Label,
		field.Name,
		strings.Join(field.Options, "\x1f"),
	}, "\x00")

	hash := sha256.Sum256([]byte(sig))
	return c.config.KeyPrefix + tenantSegment(tenantID) + ":" + hex.EncodeToString(hash[:])
}

// Get 从缓存获取字段解析结果，未命中时返回 (nil, nil)。
func (c *ResolutionCache) Get(ctx context.Context, tenantID string, field *model.Field) (*model.ResolvedValue, error) {
	if !c.config.Enabled || c.redis == nil {
		return nil, nil
	}

	cacheKey := c.cacheKey(tenantID, field)

	data, err := c.redis.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err == goredis.Nil {
			logger.Debugw("resolution cache miss", "tenant_id", tenantID, "key", cacheKey)
			return nil, nil
		}
		logger.Warnw("failed to get from resolution cache", "error", err.Error(), "key", cacheKey)
		return nil, err
	}

	var value model.ResolvedValue
	if err := json.Unmarshal(data, &value); err != nil {
		logger.Warnw("failed to unmarshal cached resolution", "error", err.Error(), "key", cacheKey)
		// 删除损坏的缓存
		_ = c.redis.Del(ctx, cacheKey).Err()
		return nil, err
	}

	logger.Debugw("resolution cache hit", "tenant_id", tenantID, "key", cacheKey)
	return &value, nil
}

// Set 将字段解析结果写入缓存。
func (c *ResolutionCache) Set(ctx context.Context, tenantID string, field *model.Field, value *model.ResolvedValue) error {
	if !c.config.Enabled || c.redis == nil {
		return nil
	}

	cacheKey := c.cacheKey(tenantID, field)

	data, err := json.Marshal(value)
	if err != nil {
		logger.Warnw("failed to marshal resolution for caching", "error", err.Error())
		return err
	}

	if err := c.redis.Set(ctx, cacheKey, data, c.config.TTL).Err(); err != nil {
		logger.Warnw("failed to set resolution cache", "error", err.Error(), "key", cacheKey)
		return err
	}

	return nil
}

// Clear 清除所有解析缓存。
func (c *ResolutionCache) Clear(ctx context.Context) error {
	if !c.config.Enabled || c.redis == nil {
		return nil
	}

	deletedCount, err := c.clearPattern(ctx, c.config.KeyPrefix+"*")
	if err != nil {
		return err
	}

	logger.Infow("cleared resolution cache", "deleted_count", deletedCount)
	return nil
}

// ClearTenant 清除指定租户的解析缓存。
// 索引 REPLACE 和租户数据删除后必须调用，否则缓存会继续
// 用已删除的简历内容应答。
func (c *ResolutionCache) ClearTenant(ctx context.Context, tenantID string) error {
	if !c.config.Enabled || c.redis == nil {
		return nil
	}

	deletedCount, err := c.clearPattern(ctx, c.config.KeyPrefix+tenantSegment(tenantID)+":*")
	if err != nil {
		return err
	}

	logger.Infow("cleared tenant resolution cache", "tenant_id", tenantID, "deleted_count", deletedCount)
	return nil
}

// clearPattern 使用 SCAN 遍历匹配的键逐个删除，避免阻塞 Redis。
func (c *ResolutionCache) clearPattern(ctx context.Context, pattern string) (int, error) {
	iter := c.redis.Scan(ctx, 0, pattern, 0).Iterator()

	deletedCount := 0
	for iter.Next(ctx) {
		if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warnw("failed to delete cache key", "error", err.Error(), "key", iter.Val())
		} else {
			deletedCount++
		}
	}

	if err := iter.Err(); err != nil {
		logger.Warnw("error during cache scan", "error", err.Error())
		return deletedCount, err
	}

	return deletedCount, nil
}

// Stats 获取缓存统计信息。
func (c *ResolutionCache) Stats(ctx context.Context) (map[string]interface{}, error) {
	if !c.config.Enabled || c.redis == nil {
		return map[string]interface{}{
			"enabled": false,
		}, nil
	}

	pattern := c.config.KeyPrefix + "*"
	iter := c.redis.Scan(ctx, 0, pattern, 0).Iterator()

	keyCount := 0
	for iter.Next(ctx) {
		keyCount++
	}

	if err := iter.Err(); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"enabled":    true,
		"key_count":  keyCount,
		"ttl":        c.config.TTL.String(),
		"key_prefix": c.config.KeyPrefix,
	}, nil
}
