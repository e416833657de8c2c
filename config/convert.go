package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dep2p/go-liveevent/pkg/types"
)

// FromJSON 从 JSON 数据加载配置
//
// 未出现在 JSON 中的字段保留默认值，加载后会执行验证。
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// ToJSON 将配置序列化为带缩进的 JSON
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// ApplyPreset 应用预设配置
//
// 支持的预设：
//   - "default": 默认配置
//   - "transient": 一次性事件（仅注册后事件，3 秒过期）
//   - "sticky": 粘性状态（总是投递，永不过期）
func ApplyPreset(cfg *Config, presetName string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	switch presetName {
	case "default":
		cfg.Event = DefaultEventConfig()
	case "transient":
		cfg.Event.DefaultPolicy = types.PolicyOncePerSubscriber
		cfg.Event.DefaultTimeout = Duration(3 * time.Second)
	case "sticky":
		cfg.Event.DefaultPolicy = types.PolicyAlways
		cfg.Event.DefaultTimeout = 0
	default:
		return fmt.Errorf("unknown preset: %s", presetName)
	}
	return nil
}
