package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/dep2p/go-liveevent/pkg/types"
)

// TestNewConfig 测试创建默认配置
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, types.PolicyOncePerSubscriber, cfg.Event.DefaultPolicy)
	assert.Equal(t, Duration(0), cfg.Event.DefaultTimeout)

	t.Log("✅ NewConfig 测试通过")
}

// TestConfig_ValidateCollectsAllErrors 测试验证会合并所有错误
func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := NewConfig()
	cfg.Event.DefaultTimeout = Duration(-time.Second)
	cfg.MainLoop.QueueCapacity = -1
	cfg.Metrics.Namespace = "bad-name"
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 4)
}

// TestEventConfig 测试事件配置
func TestEventConfig(t *testing.T) {
	t.Run("Validate_InvalidPolicy", func(t *testing.T) {
		cfg := DefaultEventConfig()
		cfg.DefaultPolicy = types.Policy(9)
		assert.ErrorIs(t, cfg.Validate(), types.ErrInvalidPolicy)
	})

	t.Run("Validate_Valid", func(t *testing.T) {
		assert.NoError(t, DefaultEventConfig().Validate())
	})
}

// TestFromJSON 测试从 JSON 加载
func TestFromJSON(t *testing.T) {
	cfg, err := FromJSON([]byte(`{
		"event": {"default_policy": "once_globally", "default_timeout": "2s"},
		"metrics": {"enable": true},
		"log": {"level": "debug"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, types.PolicyOnceGlobally, cfg.Event.DefaultPolicy)
	assert.Equal(t, 2*time.Second, cfg.Event.DefaultTimeout.Duration())
	assert.True(t, cfg.Metrics.Enable)
	assert.Equal(t, "liveevent", cfg.Metrics.Namespace)
	assert.Equal(t, 64, cfg.MainLoop.QueueCapacity)

	_, err = FromJSON([]byte(`{"event": {"default_policy": "never"}}`))
	assert.Error(t, err)

	_, err = FromJSON([]byte(`{"log": {"level": "loud"}}`))
	assert.Error(t, err)
}

// TestConfig_RoundTrip 测试保存后再加载
func TestConfig_RoundTrip(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, ApplyPreset(cfg, "transient"))

	data, err := cfg.ToJSON()
	require.NoError(t, err)

	loaded, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

// TestDuration_UnmarshalJSON 测试时长解析
func TestDuration_UnmarshalJSON(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"150ms"`)))
	assert.Equal(t, 150*time.Millisecond, d.Duration())

	require.NoError(t, d.UnmarshalJSON([]byte(`1500`)))
	assert.Equal(t, 1500*time.Millisecond, d.Duration())

	assert.Error(t, d.UnmarshalJSON([]byte(`"soon"`)))
	assert.Error(t, d.UnmarshalJSON([]byte(`true`)))
}

// TestApplyPreset 测试预设
func TestApplyPreset(t *testing.T) {
	cfg := NewConfig()

	require.NoError(t, ApplyPreset(cfg, "sticky"))
	assert.Equal(t, types.PolicyAlways, cfg.Event.DefaultPolicy)

	require.NoError(t, ApplyPreset(cfg, "transient"))
	assert.Equal(t, 3*time.Second, cfg.Event.DefaultTimeout.Duration())

	require.NoError(t, ApplyPreset(cfg, "default"))
	assert.Equal(t, DefaultEventConfig(), cfg.Event)

	assert.Error(t, ApplyPreset(cfg, "server"))
	assert.Error(t, ApplyPreset(nil, "default"))
}

// TestValidateAndFix 测试自动修复
func TestValidateAndFix(t *testing.T) {
	fixed, err := ValidateAndFix(nil)
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), fixed)

	cfg := NewConfig()
	cfg.Event.DefaultPolicy = types.Policy(99)
	cfg.Event.DefaultTimeout = Duration(-time.Second)
	cfg.MainLoop.QueueCapacity = -5
	cfg.Metrics.Namespace = "bad-name"
	cfg.Log.Level = "loud"
	require.Error(t, ValidateAll(cfg))

	fixed, err = ValidateAndFix(cfg)
	require.NoError(t, err)
	assert.Equal(t, types.PolicyOncePerSubscriber, fixed.Event.DefaultPolicy)
	assert.Equal(t, Duration(0), fixed.Event.DefaultTimeout)
	assert.Equal(t, 64, fixed.MainLoop.QueueCapacity)
	assert.Equal(t, "liveevent", fixed.Metrics.Namespace)
	assert.Equal(t, "info", fixed.Log.Level)
}

// TestMustValidate 测试验证失败时 panic
func TestMustValidate(t *testing.T) {
	assert.NotPanics(t, func() { MustValidate(NewConfig()) })
	assert.Panics(t, func() { MustValidate(nil) })
}
