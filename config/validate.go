package config

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-liveevent/pkg/lib/log"
)

// ValidateAll 验证整个配置的有效性
//
// 这是 Config.Validate() 的别名，额外处理 nil。
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并尝试自动修复常见问题
//
// 可修复的问题：
//   - 无效的默认策略 -> 使用默认值
//   - 存活时长为负 -> 0（永不过期）
//   - 队列容量为负 -> 使用默认值
//   - 无效的指标前缀或日志级别 -> 使用默认值
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	if !c.Event.DefaultPolicy.Valid() {
		c.Event.DefaultPolicy = DefaultEventConfig().DefaultPolicy
	}
	if c.Event.DefaultTimeout < 0 {
		c.Event.DefaultTimeout = 0
	}

	if c.MainLoop.QueueCapacity < 0 {
		c.MainLoop.QueueCapacity = DefaultMainLoopConfig().QueueCapacity
	}

	if !namespacePattern.MatchString(c.Metrics.Namespace) {
		c.Metrics.Namespace = DefaultMetricsConfig().Namespace
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		c.Log.Level = DefaultLogConfig().Level
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed after fixes: %w", err)
	}
	return c, nil
}

// MustValidate 验证配置，如果失败则 panic
//
// 仅用于初始化阶段或测试代码。
func MustValidate(c *Config) {
	if err := ValidateAll(c); err != nil {
		panic(fmt.Sprintf("config validation failed: %v", err))
	}
}
