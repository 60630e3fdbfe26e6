// Package config provides configuration hot-reload plumbing on top of viper.
package config

import (
	"fmt"
	"maps"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/kart-io/logger"
	"github.com/spf13/viper"
)

// ChangeHandler is invoked with the updated viper instance whenever the
// configuration file changes. Returning an error marks the handler as
// failed without affecting other handlers.
type ChangeHandler func(v *viper.Viper) error

// Watcher fans out configuration-file change events to subscribed
// handlers. Subscription and notification are safe for concurrent use.
type Watcher struct {
	viper    *viper.Viper
	handlers map[string]ChangeHandler
	mu       sync.RWMutex
	watching bool
}

// NewWatcher wraps an initialized viper instance. The instance must
// already have a config file loaded before Start is called.
func NewWatcher(v *viper.Viper) *Watcher {
	return &Watcher{
		viper:    v,
		handlers: make(map[string]ChangeHandler),
	}
}

// Subscribe registers a handler under id, replacing any previous
// handler with the same id.
func (w *Watcher) Subscribe(id string, handler ChangeHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[id] = handler
	logger.Infof("Config watcher: subscribed handler '%s'", id)
}

// Unsubscribe removes the handler registered under id, if any.
func (w *Watcher) Unsubscribe(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.handlers[id]; exists {
		delete(w.handlers, id)
		logger.Infof("Config watcher: unsubscribed handler '%s'", id)
	}
}

// Start begins watching the configuration file. Idempotent.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return
	}
	w.watching = true
	w.mu.Unlock()

	w.viper.WatchConfig()
	w.viper.OnConfigChange(func(e fsnotify.Event) {
		logger.Infof("Config file changed: %s", e.Name)
		w.notify()
	})

	logger.Info("Config watcher: started watching for configuration changes")
}

// notify calls every subscribed handler with a snapshot of the handler
// map, so handlers may subscribe or unsubscribe from within a callback.
func (w *Watcher) notify() {
	w.mu.RLock()
	handlers := maps.Clone(w.handlers)
	w.mu.RUnlock()

	for id, handler := range handlers {
		if err := handler(w.viper); err != nil {
			logger.Errorf("Config watcher: handler '%s' failed: %v", id, err)
		} else {
			logger.Infof("Config watcher: handler '%s' processed change successfully", id)
		}
	}
}

// Stop marks the watcher as inactive. viper offers no way to stop the
// underlying fsnotify watch, so events after Stop are still delivered;
// callers that need hard cutoff should Unsubscribe instead.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.watching {
		return
	}
	w.watching = false
	logger.Info("Config watcher: stopped")
}

// IsWatching reports whether Start has been called without a following Stop.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

// HandlerCount returns the number of registered handlers.
func (w *Watcher) HandlerCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.handlers)
}

// ReloadableSubscriber adapts a Reloadable component into a
// ChangeHandler by unmarshalling a viper key into a target struct and
// handing it to the component.
type ReloadableSubscriber struct {
	component Reloadable
	configKey string
	target    interface{}
}

// NewReloadableSubscriber builds a subscriber for component. configKey
// is the viper key path to unmarshal (e.g. "log", "middleware") and
// target must be a pointer to the matching configuration struct.
func NewReloadableSubscriber(component Reloadable, configKey string, target interface{}) *ReloadableSubscriber {
	return &ReloadableSubscriber{
		component: component,
		configKey: configKey,
		target:    target,
	}
}

// Handler returns the ChangeHandler to register with a Watcher.
func (rs *ReloadableSubscriber) Handler() ChangeHandler {
	return func(v *viper.Viper) error {
		if err := v.UnmarshalKey(rs.configKey, rs.target); err != nil {
			return fmt.Errorf("failed to unmarshal config key '%s': %w", rs.configKey, err)
		}
		if err := rs.component.OnConfigChange(rs.target); err != nil {
			return fmt.Errorf("component rejected config change: %w", err)
		}
		return nil
	}
}
