// Package config provides configuration management and hot reload capabilities.
//
// The watcher wraps a viper instance and fans file-change events out to
// registered subscribers. Components opt in to hot reload by implementing
// OnConfigChange and registering a subtree of the config file they care
// about.
//
// Wiring it up:
//
//	package main
//
//	import (
//	    "github.com/kart-io/formfill/cmd/formfill/app"
//	    "github.com/kart-io/formfill/pkg/infra/config"
//	    "github.com/kart-io/formfill/pkg/infra/logger"
//	    "github.com/kart-io/formfill/pkg/infra/middleware"
//	    "github.com/spf13/viper"
//	)
//
//	func main() {
//	    opts := app.NewOptions()
//	    v := viper.New()
//	    v.SetConfigFile("configs/formfill-api.yaml")
//	    if err := v.ReadInConfig(); err != nil {
//	        panic(err)
//	    }
//	    if err := v.Unmarshal(opts); err != nil {
//	        panic(err)
//	    }
//
//	    if err := opts.Log.Init(); err != nil {
//	        panic(err)
//	    }
//
//	    reloadableLogger := logger.NewReloadableLogger(opts.Log)
//	    reloadableMiddleware := middleware.NewReloadableMiddleware(opts.Server.HTTP.Middleware)
//
//	    watcher := config.NewWatcher(v)
//	    reloadableLogger.RegisterWithWatcher(watcher, "logger", "log")
//	    reloadableMiddleware.RegisterWithWatcher(watcher, "middleware", "server.http.middleware")
//	    watcher.Start()
//
//	    // on file change the registered components are notified automatically
//	    app.Run(opts)
//	}
//
// A custom component only needs OnConfigChange:
//
//	type MyService struct {
//	    config MyConfig
//	    mu     sync.RWMutex
//	}
//
//	func (s *MyService) OnConfigChange(newConfig interface{}) error {
//	    cfg, ok := newConfig.(*MyConfig)
//	    if !ok {
//	        return fmt.Errorf("invalid config type")
//	    }
//	    if err := cfg.Validate(); err != nil {
//	        return err
//	    }
//
//	    s.mu.Lock()
//	    defer s.mu.Unlock()
//	    s.config = *cfg
//
//	    logger.Info("MyService configuration reloaded")
//	    return nil
//	}
//
//	service := &MyService{}
//	target := &MyConfig{}
//	subscriber := config.NewReloadableSubscriber(service, "myservice", target)
//	watcher.Subscribe("myservice", subscriber.Handler())
//
// Subscribing and unsubscribing are safe from multiple goroutines. On a
// config change the handlers run sequentially, in registration order, so
// a failing handler cannot race a succeeding one. A handler error is
// logged and does not stop the remaining handlers; each component is
// expected to keep its previous valid state when it rejects a change.
package config
