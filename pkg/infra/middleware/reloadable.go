package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/kart-io/logger"
	configpkg "github.com/kart-io/formfill/pkg/infra/config"
)

// ReloadableMiddleware wraps middleware options with hot reload capability,
// so tuning a running autofill service (CORS for a new tenant portal, a
// longer retrieval timeout) does not require a restart.
//
// Hot-reloadable settings:
//   - CORS (origins, methods, headers, credentials, max age)
//   - Timeout duration and skip paths
//   - Request ID header
//   - Logger skip paths and structured-mode flag
//   - Recovery stack trace flag
//   - Health, metrics and pprof paths
//
// Enable/disable flags are not reloadable: toggling them would require
// rebuilding the middleware chain.
type ReloadableMiddleware struct {
	opts *Options
	mu   sync.RWMutex

	onTimeoutChange func(time.Duration, []string) error
	onCORSChange    func(*CORSOptions) error
}

// NewReloadableMiddleware creates a reloadable wrapper around opts.
func NewReloadableMiddleware(opts *Options) *ReloadableMiddleware {
	return &ReloadableMiddleware{opts: opts}
}

// changeSet accumulates human-readable descriptions of applied changes.
type changeSet []string

func (c *changeSet) add(format string, args ...interface{}) {
	*c = append(*c, fmt.Sprintf(format, args...))
}

// OnConfigChange implements the config.Reloadable interface. The new
// configuration is validated first and applied atomically under the
// write lock; a failing callback aborts the reload.
func (rm *ReloadableMiddleware) OnConfigChange(newConfig interface{}) error {
	newOpts, ok := newConfig.(*Options)
	if !ok {
		return fmt.Errorf("invalid config type: expected *middleware.Options, got %T", newConfig)
	}
	if err := newOpts.Validate(); err != nil {
		return fmt.Errorf("invalid middleware configuration: %w", err)
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	var changes changeSet

	if err := rm.applyTimeout(newOpts, &changes); err != nil {
		return err
	}
	if err := rm.applyCORS(newOpts, &changes); err != nil {
		return err
	}
	rm.applyObservability(newOpts, &changes)
	rm.applyEndpoints(newOpts, &changes)

	if len(changes) > 0 {
		logger.Infof("Middleware configuration reloaded: %v", changes)
	} else {
		logger.Debug("Middleware configuration unchanged")
	}
	return nil
}

func (rm *ReloadableMiddleware) applyTimeout(newOpts *Options, changes *changeSet) error {
	if !rm.opts.IsEnabled(MiddlewareTimeout) {
		return nil
	}
	if rm.opts.Timeout.Timeout != newOpts.Timeout.Timeout {
		changes.add("timeout: %v -> %v", rm.opts.Timeout.Timeout, newOpts.Timeout.Timeout)
		if rm.onTimeoutChange != nil {
			if err := rm.onTimeoutChange(newOpts.Timeout.Timeout, newOpts.Timeout.SkipPaths); err != nil {
				return fmt.Errorf("failed to apply timeout change: %w", err)
			}
		}
	}
	rm.opts.Timeout.Timeout = newOpts.Timeout.Timeout
	rm.opts.Timeout.SkipPaths = cloneStrings(newOpts.Timeout.SkipPaths)
	return nil
}

func (rm *ReloadableMiddleware) applyCORS(newOpts *Options, changes *changeSet) error {
	if !rm.opts.IsEnabled(MiddlewareCORS) {
		return nil
	}

	before := len(*changes)
	if !stringSlicesEqual(rm.opts.CORS.AllowOrigins, newOpts.CORS.AllowOrigins) {
		changes.add("cors.allow-origins")
	}
	if !stringSlicesEqual(rm.opts.CORS.AllowMethods, newOpts.CORS.AllowMethods) {
		changes.add("cors.allow-methods")
	}
	if !stringSlicesEqual(rm.opts.CORS.AllowHeaders, newOpts.CORS.AllowHeaders) {
		changes.add("cors.allow-headers")
	}
	if rm.opts.CORS.AllowCredentials != newOpts.CORS.AllowCredentials {
		changes.add("cors.allow-credentials")
	}
	if rm.opts.CORS.MaxAge != newOpts.CORS.MaxAge {
		changes.add("cors.max-age")
	}
	if len(*changes) == before {
		return nil
	}

	if rm.onCORSChange != nil {
		if err := rm.onCORSChange(newOpts.CORS); err != nil {
			return fmt.Errorf("failed to apply CORS change: %w", err)
		}
	}
	rm.opts.CORS = newOpts.CORS
	return nil
}

func (rm *ReloadableMiddleware) applyObservability(newOpts *Options, changes *changeSet) {
	if rm.opts.RequestID.Header != newOpts.RequestID.Header {
		changes.add("request-id.header: %s -> %s", rm.opts.RequestID.Header, newOpts.RequestID.Header)
		rm.opts.RequestID.Header = newOpts.RequestID.Header
	}

	if !stringSlicesEqual(rm.opts.Logger.SkipPaths, newOpts.Logger.SkipPaths) {
		changes.add("logger.skip-paths")
		rm.opts.Logger.SkipPaths = cloneStrings(newOpts.Logger.SkipPaths)
	}
	if rm.opts.Logger.UseStructuredLogger != newOpts.Logger.UseStructuredLogger {
		changes.add("logger.use-structured-logger: %v -> %v",
			rm.opts.Logger.UseStructuredLogger, newOpts.Logger.UseStructuredLogger)
		rm.opts.Logger.UseStructuredLogger = newOpts.Logger.UseStructuredLogger
	}

	if rm.opts.Recovery.EnableStackTrace != newOpts.Recovery.EnableStackTrace {
		changes.add("recovery.enable-stack-trace: %v -> %v",
			rm.opts.Recovery.EnableStackTrace, newOpts.Recovery.EnableStackTrace)
		rm.opts.Recovery.EnableStackTrace = newOpts.Recovery.EnableStackTrace
	}
}

func (rm *ReloadableMiddleware) applyEndpoints(newOpts *Options, changes *changeSet) {
	if rm.opts.Health.Path != newOpts.Health.Path {
		changes.add("health.path: %s -> %s", rm.opts.Health.Path, newOpts.Health.Path)
		rm.opts.Health.Path = newOpts.Health.Path
	}
	if rm.opts.Health.LivenessPath != newOpts.Health.LivenessPath {
		changes.add("health.liveness-path")
		rm.opts.Health.LivenessPath = newOpts.Health.LivenessPath
	}
	if rm.opts.Health.ReadinessPath != newOpts.Health.ReadinessPath {
		changes.add("health.readiness-path")
		rm.opts.Health.ReadinessPath = newOpts.Health.ReadinessPath
	}

	if rm.opts.Metrics.Path != newOpts.Metrics.Path {
		changes.add("metrics.path")
		rm.opts.Metrics.Path = newOpts.Metrics.Path
	}
	if rm.opts.Metrics.Namespace != newOpts.Metrics.Namespace {
		changes.add("metrics.namespace")
		rm.opts.Metrics.Namespace = newOpts.Metrics.Namespace
	}
	if rm.opts.Metrics.Subsystem != newOpts.Metrics.Subsystem {
		changes.add("metrics.subsystem")
		rm.opts.Metrics.Subsystem = newOpts.Metrics.Subsystem
	}

	if rm.opts.Pprof.BlockProfileRate != newOpts.Pprof.BlockProfileRate {
		changes.add("pprof.block-profile-rate")
		rm.opts.Pprof.BlockProfileRate = newOpts.Pprof.BlockProfileRate
	}
	if rm.opts.Pprof.MutexProfileFraction != newOpts.Pprof.MutexProfileFraction {
		changes.add("pprof.mutex-profile-fraction")
		rm.opts.Pprof.MutexProfileFraction = newOpts.Pprof.MutexProfileFraction
	}
}

// GetOptions returns a deep copy of the current middleware options, safe
// to read while reloads happen concurrently.
func (rm *ReloadableMiddleware) GetOptions() *Options {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	opts := &Options{
		DisableRecovery:        rm.opts.DisableRecovery,
		DisableRequestID:       rm.opts.DisableRequestID,
		DisableLogger:          rm.opts.DisableLogger,
		DisableCORS:            rm.opts.DisableCORS,
		DisableTimeout:         rm.opts.DisableTimeout,
		DisableHealth:          rm.opts.DisableHealth,
		DisableMetrics:         rm.opts.DisableMetrics,
		DisablePprof:           rm.opts.DisablePprof,
		DisableVersion:         rm.opts.DisableVersion,
		DisableBodyLimit:       rm.opts.DisableBodyLimit,
		DisableCompression:     rm.opts.DisableCompression,
		DisableSecurityHeaders: rm.opts.DisableSecurityHeaders,
		DisableRateLimit:       rm.opts.DisableRateLimit,
		DisableCircuitBreaker:  rm.opts.DisableCircuitBreaker,

		Recovery: &RecoveryOptions{
			EnableStackTrace: rm.opts.Recovery.EnableStackTrace,
		},
		RequestID: &RequestIDOptions{
			Header:        rm.opts.RequestID.Header,
			GeneratorType: rm.opts.RequestID.GeneratorType,
		},
		Logger: &LoggerOptions{
			SkipPaths:           cloneStrings(rm.opts.Logger.SkipPaths),
			UseStructuredLogger: rm.opts.Logger.UseStructuredLogger,
			Output:              rm.opts.Logger.Output,
		},
		CORS: &CORSOptions{
			AllowOrigins:     cloneStrings(rm.opts.CORS.AllowOrigins),
			AllowMethods:     cloneStrings(rm.opts.CORS.AllowMethods),
			AllowHeaders:     cloneStrings(rm.opts.CORS.AllowHeaders),
			ExposeHeaders:    cloneStrings(rm.opts.CORS.ExposeHeaders),
			AllowCredentials: rm.opts.CORS.AllowCredentials,
			MaxAge:           rm.opts.CORS.MaxAge,
		},
		Timeout: &TimeoutOptions{
			Timeout:   rm.opts.Timeout.Timeout,
			SkipPaths: cloneStrings(rm.opts.Timeout.SkipPaths),
		},
		Health: &HealthOptions{
			Path:          rm.opts.Health.Path,
			LivenessPath:  rm.opts.Health.LivenessPath,
			ReadinessPath: rm.opts.Health.ReadinessPath,
			Checker:       rm.opts.Health.Checker,
		},
		Metrics: &MetricsOptions{
			Path:      rm.opts.Metrics.Path,
			Namespace: rm.opts.Metrics.Namespace,
			Subsystem: rm.opts.Metrics.Subsystem,
		},
		Pprof: &PprofOptions{
			Prefix:               rm.opts.Pprof.Prefix,
			EnableCmdline:        rm.opts.Pprof.EnableCmdline,
			EnableProfile:        rm.opts.Pprof.EnableProfile,
			EnableSymbol:         rm.opts.Pprof.EnableSymbol,
			EnableTrace:          rm.opts.Pprof.EnableTrace,
			BlockProfileRate:     rm.opts.Pprof.BlockProfileRate,
			MutexProfileFraction: rm.opts.Pprof.MutexProfileFraction,
		},
	}

	if rm.opts.Version != nil {
		v := *rm.opts.Version
		opts.Version = &v
	}
	if rm.opts.BodyLimit != nil {
		b := *rm.opts.BodyLimit
		b.SkipPaths = cloneStrings(rm.opts.BodyLimit.SkipPaths)
		b.SkipPathPrefixes = cloneStrings(rm.opts.BodyLimit.SkipPathPrefixes)
		opts.BodyLimit = &b
	}
	if rm.opts.Compression != nil {
		cp := *rm.opts.Compression
		cp.Types = cloneStrings(rm.opts.Compression.Types)
		opts.Compression = &cp
	}
	if rm.opts.SecurityHeaders != nil {
		sh := *rm.opts.SecurityHeaders
		opts.SecurityHeaders = &sh
	}
	if rm.opts.RateLimit != nil {
		rl := *rm.opts.RateLimit
		rl.SkipPaths = cloneStrings(rm.opts.RateLimit.SkipPaths)
		rl.TrustedProxies = cloneStrings(rm.opts.RateLimit.TrustedProxies)
		opts.RateLimit = &rl
	}
	if rm.opts.CircuitBreaker != nil {
		cb := *rm.opts.CircuitBreaker
		cb.SkipPaths = cloneStrings(rm.opts.CircuitBreaker.SkipPaths)
		opts.CircuitBreaker = &cb
	}

	return opts
}

// SetTimeoutChangeCallback registers a callback invoked when the timeout
// configuration changes, so the running middleware can pick up the new value.
func (rm *ReloadableMiddleware) SetTimeoutChangeCallback(fn func(time.Duration, []string) error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.onTimeoutChange = fn
}

// SetCORSChangeCallback registers a callback invoked when the CORS
// configuration changes.
func (rm *ReloadableMiddleware) SetCORSChangeCallback(fn func(*CORSOptions) error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.onCORSChange = fn
}

// RegisterWithWatcher subscribes this reloadable middleware to a config
// watcher. The handlerID must be unique across all registered handlers.
func (rm *ReloadableMiddleware) RegisterWithWatcher(watcher *configpkg.Watcher, handlerID, configKey string) {
	target := NewOptions()
	subscriber := configpkg.NewReloadableSubscriber(rm, configKey, target)
	watcher.Subscribe(handlerID, subscriber.Handler())
}

func cloneStrings(s []string) []string {
	return append([]string(nil), s...)
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
