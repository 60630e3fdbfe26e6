package resilience

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"github.com/redis/go-redis/v9"

	"github.com/kart-io/formfill/pkg/infra/middleware/internal/pathutil"
	mwopts "github.com/kart-io/formfill/pkg/options/middleware"
	"github.com/kart-io/formfill/pkg/utils/errors"
	"github.com/kart-io/formfill/pkg/utils/response"
)

// RateLimiter 定义限流器后端接口。
// 内存实现适用于单实例部署，Redis 实现支持多实例共享配额。
type RateLimiter interface {
	// Allow 检查给定 key 的请求是否允许通过。
	Allow(ctx context.Context, key string) (bool, error)

	// Reset 重置给定 key 的限流计数。
	Reset(ctx context.Context, key string) error
}

// RateLimit returns a rate limiting middleware with default options and
// an in-memory limiter.
func RateLimit() gin.HandlerFunc {
	return RateLimitWithOptions(*mwopts.NewRateLimitOptions(), nil)
}

// RateLimitWithOptions 返回一个带配置选项的限流中间件。
// 这是推荐的构造函数,直接使用 pkg/options/middleware.RateLimitOptions。
//
// limiter 为 nil 时根据配置选择后端：UseRedis 为 true 时创建 Redis
// 限流器，否则使用内存限流器。限流 key 默认为客户端 IP。
//
// 限流器后端出错时请求会放行，避免限流组件故障放大为服务不可用。
func RateLimitWithOptions(opts mwopts.RateLimitOptions, limiter RateLimiter) gin.HandlerFunc {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	if opts.Window <= 0 {
		opts.Window = 60
	}
	if limiter == nil {
		limiter = newLimiterFromOptions(opts)
	}

	skipPath := pathutil.NewPathMatcher(opts.SkipPaths, nil)

	return func(c *gin.Context) {
		if skipPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		key := extractClientIP(c, opts)

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Errorw("rate limiter error",
				"error", err.Error(),
				"key", key,
			)
			c.Next()
			return
		}

		if !allowed {
			response.Fail(c, errors.ErrRateLimitExceeded)
			c.Abort()
			return
		}

		c.Next()
	}
}

// newLimiterFromOptions creates the limiter backend selected by the options.
func newLimiterFromOptions(opts mwopts.RateLimitOptions) RateLimiter {
	if opts.UseRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		return NewRedisRateLimiter(client, opts.Limit, opts.GetWindow())
	}
	return NewMemoryRateLimiter(opts.Limit, opts.GetWindow())
}

// extractClientIP extracts the real client IP from the request.
// Proxy headers (X-Forwarded-For, X-Real-IP) are only honored when
// TrustProxyHeaders is set and the request arrives from a trusted
// proxy, which prevents spoofed headers from bypassing limits.
func extractClientIP(c *gin.Context, opts mwopts.RateLimitOptions) string {
	remoteIP := getRemoteIP(c.Request)

	if opts.TrustProxyHeaders && isTrustedProxy(remoteIP, opts.TrustedProxies) {
		if xff := c.Request.Header.Get("X-Forwarded-For"); xff != "" {
			// X-Forwarded-For 可能包含多级代理，第一个是原始客户端
			ips := strings.Split(xff, ",")
			if len(ips) > 0 {
				ip := strings.TrimSpace(ips[0])
				if net.ParseIP(ip) != nil {
					return ip
				}
			}
		}

		if xri := strings.TrimSpace(c.Request.Header.Get("X-Real-IP")); xri != "" {
			if net.ParseIP(xri) != nil {
				return xri
			}
		}
	}

	return remoteIP
}

// getRemoteIP extracts the IP address from http.Request.RemoteAddr.
func getRemoteIP(req *http.Request) string {
	ip, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return ip
}

// isTrustedProxy checks if the given IP matches the trusted proxy list.
// Entries may be single IPs or CIDR ranges.
func isTrustedProxy(ip string, trustedCIDRs []string) bool {
	if len(trustedCIDRs) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range trustedCIDRs {
		if !strings.Contains(cidr, "/") {
			if cidr == ip {
				return true
			}
			continue
		}

		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			logger.Warnw("invalid CIDR in trusted proxies",
				"cidr", cidr,
				"error", err.Error(),
			)
			continue
		}

		if network.Contains(parsedIP) {
			return true
		}
	}

	return false
}

// MemoryRateLimiter implements sliding window rate limiting in memory.
type MemoryRateLimiter struct {
	limit       int
	window      time.Duration
	store       *sync.Map
	stopCleanup chan struct{}
	cleanupOnce sync.Once
}

// rateLimitEntry stores request timestamps for a single key.
type rateLimitEntry struct {
	requests  []time.Time
	mu        sync.Mutex
	lastCheck time.Time
}

// NewMemoryRateLimiter creates a new memory-based rate limiter.
func NewMemoryRateLimiter(limit int, window time.Duration) *MemoryRateLimiter {
	limiter := &MemoryRateLimiter{
		limit:       limit,
		window:      window,
		store:       &sync.Map{},
		stopCleanup: make(chan struct{}),
	}

	go limiter.cleanupExpiredEntries()

	return limiter
}

// Allow checks if a request with the given key is allowed.
func (m *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := time.Now()

	value, _ := m.store.LoadOrStore(key, &rateLimitEntry{
		requests:  make([]time.Time, 0, m.limit),
		lastCheck: now,
	})

	entry := value.(*rateLimitEntry)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.lastCheck = now

	cutoff := now.Add(-m.window)
	entry.requests = filterExpiredRequests(entry.requests, cutoff)

	if len(entry.requests) >= m.limit {
		return false, nil
	}

	entry.requests = append(entry.requests, now)

	return true, nil
}

// Reset resets the rate limit counter for the given key.
func (m *MemoryRateLimiter) Reset(_ context.Context, key string) error {
	m.store.Delete(key)
	return nil
}

// Stop stops the cleanup goroutine.
func (m *MemoryRateLimiter) Stop() {
	m.cleanupOnce.Do(func() {
		close(m.stopCleanup)
	})
}

func (m *MemoryRateLimiter) cleanupExpiredEntries() {
	ticker := time.NewTicker(m.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.performCleanup()
		case <-m.stopCleanup:
			return
		}
	}
}

// performCleanup removes entries that have not been touched for two
// windows, bounding memory growth from one-off clients.
func (m *MemoryRateLimiter) performCleanup() {
	threshold := time.Now().Add(-m.window * 2)

	m.store.Range(func(key, value interface{}) bool {
		entry := value.(*rateLimitEntry)
		entry.mu.Lock()
		lastCheck := entry.lastCheck
		entry.mu.Unlock()

		if lastCheck.Before(threshold) {
			m.store.Delete(key)
		}
		return true
	})
}

// filterExpiredRequests removes timestamps that fall outside the window.
func filterExpiredRequests(requests []time.Time, cutoff time.Time) []time.Time {
	validIdx := 0
	for i, t := range requests {
		if t.After(cutoff) {
			validIdx = i
			break
		}
	}

	if validIdx > 0 {
		return requests[validIdx:]
	}
	return requests
}

// RedisRateLimiter implements sliding window rate limiting backed by a
// Redis sorted set, so the quota is shared across replicas.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRedisRateLimiter creates a new Redis-based rate limiter.
func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit:",
	}
}

// Allow checks if a request with the given key is allowed.
func (r *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	redisKey := r.prefix + key

	pipe := r.client.Pipeline()

	// 滑动窗口：score 为时间戳，先清理窗口外的旧记录
	minScore := float64(now.Add(-r.window).UnixNano())
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%.0f", minScore))

	countCmd := pipe.ZCard(ctx, redisKey)

	score := float64(now.UnixNano())
	member := fmt.Sprintf("%d", now.UnixNano())
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: score, Member: member})

	pipe.Expire(ctx, redisKey, r.window*2)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis pipeline error: %w", err)
	}

	if countCmd.Val() >= int64(r.limit) {
		return false, nil
	}

	return true, nil
}

// Reset resets the rate limit counter for the given key in Redis.
func (r *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Interface assertions.
var (
	_ RateLimiter = (*MemoryRateLimiter)(nil)
	_ RateLimiter = (*RedisRateLimiter)(nil)
)
