package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveReactorOptions_Defaults(t *testing.T) {
	cfg := resolveReactorOptions(nil)
	require.NotNil(t, cfg.logger)
	assert.Nil(t, cfg.metrics)
}

func TestResolveReactorOptions_WithLogger(t *testing.T) {
	custom := NewNoOpLogger()
	cfg := resolveReactorOptions([]ReactorOption{WithLogger(custom)})
	assert.Same(t, custom, cfg.logger)
}

func TestResolveReactorOptions_WithMetrics(t *testing.T) {
	cfg := resolveReactorOptions([]ReactorOption{WithMetrics(true)})
	require.NotNil(t, cfg.metrics)

	cfg = resolveReactorOptions([]ReactorOption{WithMetrics(true), WithMetrics(false)})
	assert.Nil(t, cfg.metrics)
}

func TestResolveReactorOptions_SkipsNil(t *testing.T) {
	cfg := resolveReactorOptions([]ReactorOption{nil, WithMetrics(true)})
	assert.NotNil(t, cfg.metrics)
}
