package config

import (
	"errors"
	"regexp"
)

var namespacePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enable 是否向 Prometheus Registerer 注册收集器
	Enable bool `json:"enable"`

	// Namespace 指标名前缀
	Namespace string `json:"namespace"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enable:    false,
		Namespace: "liveevent",
	}
}

// Validate 验证指标配置
func (c MetricsConfig) Validate() error {
	if !namespacePattern.MatchString(c.Namespace) {
		return errors.New("metrics.namespace must be a valid prometheus metric prefix")
	}
	return nil
}
