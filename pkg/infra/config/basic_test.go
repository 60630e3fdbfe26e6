package config

import (
	"errors"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReloadable struct {
	called bool
	reject error
}

func (r *recordingReloadable) OnConfigChange(_ interface{}) error {
	r.called = true
	return r.reject
}

func TestWatcherCreation(t *testing.T) {
	v := viper.New()
	watcher := NewWatcher(v)

	require.NotNil(t, watcher)
	assert.Same(t, v, watcher.viper)
	assert.False(t, watcher.IsWatching())
	assert.Zero(t, watcher.HandlerCount())
}

func TestSubscribeUnsubscribe(t *testing.T) {
	watcher := NewWatcher(viper.New())
	noop := func(_ *viper.Viper) error { return nil }

	watcher.Subscribe("logger", noop)
	watcher.Subscribe("middleware", noop)
	watcher.Subscribe("llm", noop)
	assert.Equal(t, 3, watcher.HandlerCount())

	watcher.Unsubscribe("middleware")
	assert.Equal(t, 2, watcher.HandlerCount())

	// unknown id is a no-op
	watcher.Unsubscribe("unknown")
	assert.Equal(t, 2, watcher.HandlerCount())

	// same id replaces, never accumulates
	watcher.Subscribe("logger", noop)
	assert.Equal(t, 2, watcher.HandlerCount())
}

func TestNotifyCallsAllHandlersDespiteFailures(t *testing.T) {
	watcher := NewWatcher(viper.New())

	var goodCalled, badCalled bool
	watcher.Subscribe("bad", func(_ *viper.Viper) error {
		badCalled = true
		return errors.New("rejected")
	})
	watcher.Subscribe("good", func(_ *viper.Viper) error {
		goodCalled = true
		return nil
	})

	watcher.notify()

	assert.True(t, badCalled)
	assert.True(t, goodCalled, "a failing handler must not block the others")
}

func TestReloadableSubscriber(t *testing.T) {
	type llmSection struct {
		Provider string `mapstructure:"provider"`
		TopK     int    `mapstructure:"top_k"`
	}

	component := &recordingReloadable{}
	target := &llmSection{}
	subscriber := NewReloadableSubscriber(component, "llm", target)

	v := viper.New()
	v.Set("llm.provider", "ollama")
	v.Set("llm.top_k", 5)

	require.NoError(t, subscriber.Handler()(v))
	assert.True(t, component.called)
	assert.Equal(t, "ollama", target.Provider)
	assert.Equal(t, 5, target.TopK)
}

func TestReloadableSubscriberComponentRejects(t *testing.T) {
	component := &recordingReloadable{reject: errors.New("invalid provider")}
	subscriber := NewReloadableSubscriber(component, "llm", &struct{}{})

	err := subscriber.Handler()(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "component rejected config change")
}
