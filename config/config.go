// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载和保存配置
//   - 支持预设配置（default/transient/sticky）
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Event.DefaultTimeout = config.Duration(3 * time.Second)
//
//	// 应用预设到现有配置
//	config.ApplyPreset(cfg, "transient")
//
//	// 从 JSON 加载
//	cfg, err := config.FromJSON(data)
package config

import "go.uber.org/multierr"

// Config 是 go-liveevent 的完整配置结构
//
// 配置按照功能模块组织：
//   - Event: 事件默认策略与存活时长
//   - MainLoop: 主执行上下文
//   - Metrics: 投递统计
//   - Log: 日志
type Config struct {
	// Event 事件配置
	Event EventConfig `json:"event"`

	// MainLoop 主循环配置
	MainLoop MainLoopConfig `json:"main_loop"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`

	// Log 日志配置
	Log LogConfig `json:"log"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Event:    DefaultEventConfig(),
		MainLoop: DefaultMainLoopConfig(),
		Metrics:  DefaultMetricsConfig(),
		Log:      DefaultLogConfig(),
	}
}

// Validate 验证配置的有效性
//
// 检查所有子配置，返回合并后的全部错误。
func (c *Config) Validate() error {
	var err error
	err = multierr.Append(err, c.Event.Validate())
	err = multierr.Append(err, c.MainLoop.Validate())
	err = multierr.Append(err, c.Metrics.Validate())
	err = multierr.Append(err, c.Log.Validate())
	return err
}
