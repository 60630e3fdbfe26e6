package logger

import (
	"fmt"
	"sync"

	"github.com/kart-io/logger"
	"github.com/kart-io/logger/option"

	configpkg "github.com/kart-io/formfill/pkg/infra/config"
	logopts "github.com/kart-io/formfill/pkg/options/logger"
)

// settings is the hot-reloadable subset of logger configuration.
type settings struct {
	level             string
	format            string
	development       bool
	disableCaller     bool
	disableStacktrace bool
	outputPaths       []string
}

func captureSettings(o *logopts.Options) settings {
	return settings{
		level:             o.Level,
		format:            o.Format,
		development:       o.Development,
		disableCaller:     o.DisableCaller,
		disableStacktrace: o.DisableStacktrace,
		outputPaths:       o.OutputPaths,
	}
}

func (s settings) apply(o *logopts.Options) {
	o.Level = s.level
	o.Format = s.format
	o.Development = s.development
	o.DisableCaller = s.disableCaller
	o.DisableStacktrace = s.disableStacktrace
	o.OutputPaths = s.outputPaths

	if o.LogOption == nil {
		o.LogOption = option.DefaultLogOption()
	}
	o.LogOption.Level = s.level
	o.LogOption.Format = s.format
	o.LogOption.Development = s.development
	o.LogOption.DisableCaller = s.disableCaller
	o.LogOption.DisableStacktrace = s.disableStacktrace
	o.LogOption.OutputPaths = s.outputPaths
}

// ReloadableLogger applies logger configuration changes at runtime
// without a restart. Level, format, output paths, development mode and
// caller/stacktrace switches are all hot-reloadable.
type ReloadableLogger struct {
	opts *logopts.Options
	mu   sync.RWMutex
}

// NewReloadableLogger wraps opts for hot reload.
func NewReloadableLogger(opts *logopts.Options) *ReloadableLogger {
	return &ReloadableLogger{opts: opts}
}

// OnConfigChange implements config.Reloadable. The new configuration is
// validated first and applied atomically; if reinitializing the logger
// fails the previous settings are restored.
func (rl *ReloadableLogger) OnConfigChange(newConfig interface{}) error {
	newOpts, ok := newConfig.(*logopts.Options)
	if !ok {
		return fmt.Errorf("invalid config type: expected *logger.Options, got %T", newConfig)
	}
	if err := newOpts.Validate(); err != nil {
		return fmt.Errorf("invalid logger configuration: %w", err)
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	previous := captureSettings(rl.opts)
	captureSettings(newOpts).apply(rl.opts)

	if err := rl.opts.Init(); err != nil {
		previous.apply(rl.opts)
		return fmt.Errorf("failed to apply logger config: %w", err)
	}

	logger.Infof("Logger configuration reloaded: level=%s, format=%s, development=%v",
		rl.opts.Level, rl.opts.Format, rl.opts.Development)
	return nil
}

// GetOptions returns a copy of the current options, safe to read
// concurrently with reloads.
func (rl *ReloadableLogger) GetOptions() *logopts.Options {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	return &logopts.Options{
		LogOption: &option.LogOption{
			Engine:            rl.opts.Engine,
			Level:             rl.opts.Level,
			Format:            rl.opts.Format,
			OutputPaths:       append([]string(nil), rl.opts.OutputPaths...),
			Development:       rl.opts.Development,
			DisableCaller:     rl.opts.DisableCaller,
			DisableStacktrace: rl.opts.DisableStacktrace,
		},
	}
}

// RegisterWithWatcher subscribes this logger to a config watcher under
// the given handler ID, unmarshalling changes from configKey.
func (rl *ReloadableLogger) RegisterWithWatcher(watcher *configpkg.Watcher, handlerID, configKey string) {
	target := logopts.NewOptions()
	subscriber := configpkg.NewReloadableSubscriber(rl, configKey, target)
	watcher.Subscribe(handlerID, subscriber.Handler())
}
