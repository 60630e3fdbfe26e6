package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logopts "github.com/kart-io/formfill/pkg/options/logger"
)

func newTestLogOptions(level string) *logopts.Options {
	opts := logopts.NewOptions()
	opts.Level = level
	opts.Format = "json"
	return opts
}

func TestReloadableLoggerAppliesNewLevel(t *testing.T) {
	rl := NewReloadableLogger(newTestLogOptions("INFO"))

	require.NoError(t, rl.OnConfigChange(newTestLogOptions("DEBUG")))

	assert.Equal(t, "DEBUG", rl.GetOptions().Level)
}

func TestReloadableLoggerRejectsWrongType(t *testing.T) {
	rl := NewReloadableLogger(newTestLogOptions("INFO"))

	err := rl.OnConfigChange("not-an-options-struct")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config type")
	assert.Equal(t, "INFO", rl.GetOptions().Level)
}

func TestReloadableLoggerGetOptionsIsCopy(t *testing.T) {
	rl := NewReloadableLogger(newTestLogOptions("INFO"))

	snapshot := rl.GetOptions()
	snapshot.Level = "ERROR"

	assert.Equal(t, "INFO", rl.GetOptions().Level)
}
