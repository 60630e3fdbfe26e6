package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/formfill/pkg/infra/middleware/observability"
	"github.com/kart-io/formfill/pkg/infra/middleware/requestutil"
	"github.com/kart-io/formfill/pkg/infra/middleware/resilience"
	"github.com/kart-io/formfill/pkg/infra/middleware/security"
	mwopts "github.com/kart-io/formfill/pkg/options/middleware"
)

const (
	benchPath = "/api/v1/fill"
	benchAddr = "10.0.0.7:42100"
)

// benchRouter mounts the given middlewares plus a trivial JSON handler.
func benchRouter(path string, mws ...gin.HandlerFunc) *gin.Engine {
	_, r := gin.CreateTestContext(httptest.NewRecorder())
	r.Use(mws...)
	r.GET(path, func(c *gin.Context) {
		c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

func runBench(b *testing.B, r *gin.Engine, req *http.Request) {
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
}

func BenchmarkLoggerMiddleware(b *testing.B) {
	mw := observability.LoggerWithOptions(mwopts.LoggerOptions{UseStructuredLogger: true}, nil)
	r := benchRouter(benchPath, mw)
	runBench(b, r, httptest.NewRequest(http.MethodGet, benchPath, nil))
}

func BenchmarkLoggerMiddlewareSkippedPath(b *testing.B) {
	mw := observability.LoggerWithOptions(mwopts.LoggerOptions{
		SkipPaths:           []string{"/health"},
		UseStructuredLogger: true,
	}, nil)
	r := benchRouter("/health", mw)
	runBench(b, r, httptest.NewRequest(http.MethodGet, "/health", nil))
}

func BenchmarkRecoveryMiddleware(b *testing.B) {
	mw := resilience.RecoveryWithOptions(*mwopts.NewRecoveryOptions(), nil)
	r := benchRouter(benchPath, mw)
	runBench(b, r, httptest.NewRequest(http.MethodGet, benchPath, nil))
}

func BenchmarkRecoveryMiddlewarePanicPath(b *testing.B) {
	mw := resilience.RecoveryWithOptions(mwopts.RecoveryOptions{EnableStackTrace: false}, nil)
	_, r := gin.CreateTestContext(httptest.NewRecorder())
	r.Use(mw)
	r.GET(benchPath, func(_ *gin.Context) {
		panic("classifier crashed")
	})
	runBench(b, r, httptest.NewRequest(http.MethodGet, benchPath, nil))
}

func BenchmarkRequestIDMiddleware(b *testing.B) {
	mw := RequestIDWithOptions(*mwopts.NewRequestIDOptions(), nil)
	r := benchRouter(benchPath, mw)
	runBench(b, r, httptest.NewRequest(http.MethodGet, benchPath, nil))
}

func BenchmarkRequestIDMiddlewareExistingID(b *testing.B) {
	mw := RequestIDWithOptions(*mwopts.NewRequestIDOptions(), nil)
	r := benchRouter(benchPath, mw)
	req := httptest.NewRequest(http.MethodGet, benchPath, nil)
	req.Header.Set(HeaderXRequestID, "upstream-id-12345678")
	runBench(b, r, req)
}

func BenchmarkGenerateRequestID(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = requestutil.GenerateRequestID()
	}
}

func BenchmarkRateLimitMiddleware(b *testing.B) {
	limiter := resilience.NewMemoryRateLimiter(1000, time.Minute)
	defer limiter.Stop()

	mw := resilience.RateLimitWithOptions(mwopts.RateLimitOptions{Limit: 1000, Window: 60}, limiter)
	r := benchRouter(benchPath, mw)
	req := httptest.NewRequest(http.MethodGet, benchPath, nil)
	req.RemoteAddr = benchAddr
	runBench(b, r, req)
}

func BenchmarkRateLimitMiddlewareSkippedPath(b *testing.B) {
	limiter := resilience.NewMemoryRateLimiter(1000, time.Minute)
	defer limiter.Stop()

	mw := resilience.RateLimitWithOptions(mwopts.RateLimitOptions{
		Limit:     1000,
		Window:    60,
		SkipPaths: []string{"/health"},
	}, limiter)
	r := benchRouter("/health", mw)
	runBench(b, r, httptest.NewRequest(http.MethodGet, "/health", nil))
}

func BenchmarkMemoryRateLimiterAllow(b *testing.B) {
	limiter := resilience.NewMemoryRateLimiter(1000, time.Minute)
	defer limiter.Stop()

	ctx := context.Background()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = limiter.Allow(ctx, "tenant:tenant-acme")
	}
}

func BenchmarkSecurityHeadersMiddleware(b *testing.B) {
	mw := security.SecurityHeadersWithOptions(*mwopts.NewSecurityHeadersOptions())
	r := benchRouter(benchPath, mw)
	runBench(b, r, httptest.NewRequest(http.MethodGet, benchPath, nil))
}

func BenchmarkSecurityHeadersMiddlewareHSTS(b *testing.B) {
	mw := security.SecurityHeadersWithOptions(mwopts.SecurityHeadersOptions{
		FrameOptionsValue:     "DENY",
		XSSProtectionValue:    "1; mode=block",
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		EnableHSTS:            true,
	})
	r := benchRouter(benchPath, mw)
	runBench(b, r, httptest.NewRequest(http.MethodGet, benchPath, nil))
}

func BenchmarkTimeoutMiddleware(b *testing.B) {
	mw := TimeoutWithOptions(mwopts.TimeoutOptions{Timeout: 30 * time.Second})
	r := benchRouter(benchPath, mw)
	runBench(b, r, httptest.NewRequest(http.MethodGet, benchPath, nil))
}

func BenchmarkTimeoutMiddlewareSkippedPath(b *testing.B) {
	mw := TimeoutWithOptions(mwopts.TimeoutOptions{
		Timeout:   30 * time.Second,
		SkipPaths: []string{"/health"},
	})
	r := benchRouter("/health", mw)
	runBench(b, r, httptest.NewRequest(http.MethodGet, "/health", nil))
}

// BenchmarkMiddlewareChain runs the full stack an API instance mounts
// in production: request-id, logger, recovery, security headers,
// timeout and rate limiting.
func BenchmarkMiddlewareChain(b *testing.B) {
	limiter := resilience.NewMemoryRateLimiter(1000, time.Minute)
	defer limiter.Stop()

	r := benchRouter(benchPath,
		RequestID(),
		Logger(),
		Recovery(),
		security.SecurityHeaders(),
		TimeoutWithOptions(mwopts.TimeoutOptions{Timeout: 30 * time.Second}),
		resilience.RateLimitWithOptions(mwopts.RateLimitOptions{Limit: 1000, Window: 60}, limiter),
	)

	req := httptest.NewRequest(http.MethodGet, benchPath, nil)
	req.RemoteAddr = benchAddr
	runBench(b, r, req)
}

func BenchmarkMiddlewareChainMinimal(b *testing.B) {
	r := benchRouter(benchPath, RequestID(), Logger(), Recovery())
	runBench(b, r, httptest.NewRequest(http.MethodGet, benchPath, nil))
}

// BenchmarkMiddlewareChainProduction uses production settings: skip
// paths for probes, no stack traces, HSTS on.
func BenchmarkMiddlewareChainProduction(b *testing.B) {
	limiter := resilience.NewMemoryRateLimiter(100, time.Minute)
	defer limiter.Stop()

	r := benchRouter(benchPath,
		RequestID(),
		observability.LoggerWithOptions(mwopts.LoggerOptions{
			SkipPaths:           []string{"/health", "/metrics"},
			UseStructuredLogger: true,
		}, nil),
		resilience.RecoveryWithOptions(mwopts.RecoveryOptions{EnableStackTrace: false}, nil),
		security.SecurityHeadersWithOptions(mwopts.SecurityHeadersOptions{
			FrameOptionsValue:     "DENY",
			XSSProtectionValue:    "1; mode=block",
			ContentSecurityPolicy: "default-src 'self'",
			ReferrerPolicy:        "strict-origin-when-cross-origin",
			HSTSMaxAge:            31536000,
			HSTSIncludeSubdomains: true,
			EnableHSTS:            true,
		}),
		resilience.RateLimitWithOptions(mwopts.RateLimitOptions{
			Limit:     100,
			Window:    60,
			SkipPaths: []string{"/health"},
		}, limiter),
	)

	req := httptest.NewRequest(http.MethodGet, benchPath, nil)
	req.RemoteAddr = benchAddr
	runBench(b, r, req)
}

func BenchmarkMiddlewareChainConcurrent(b *testing.B) {
	limiter := resilience.NewMemoryRateLimiter(1000, time.Minute)
	defer limiter.Stop()

	r := benchRouter(benchPath,
		RequestID(),
		Logger(),
		Recovery(),
		resilience.RateLimitWithOptions(mwopts.RateLimitOptions{Limit: 1000, Window: 60}, limiter),
	)

	req := httptest.NewRequest(http.MethodGet, benchPath, nil)
	req.RemoteAddr = benchAddr

	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			r.ServeHTTP(httptest.NewRecorder(), req)
		}
	})
}

func BenchmarkMiddlewareAllocations(b *testing.B) {
	tests := []struct {
		name string
		mw   gin.HandlerFunc
	}{
		{"RequestID", RequestID()},
		{"Logger", Logger()},
		{"Recovery", Recovery()},
		{"SecurityHeaders", security.SecurityHeaders()},
	}

	for _, tt := range tests {
		b.Run(tt.name, func(b *testing.B) {
			r := benchRouter(benchPath, tt.mw)
			runBench(b, r, httptest.NewRequest(http.MethodGet, benchPath, nil))
		})
	}
}

func BenchmarkMiddlewareChainWithBody(b *testing.B) {
	_, r := gin.CreateTestContext(httptest.NewRecorder())
	r.Use(RequestID(), Logger(), Recovery())
	r.POST(benchPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	body := []byte(`{"tenant_id":"tenant-acme","form":{"full_name":""}}`)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, benchPath, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
}
