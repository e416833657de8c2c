package liveevent

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-liveevent/config"
	pkgif "github.com/dep2p/go-liveevent/pkg/interfaces"
	"github.com/dep2p/go-liveevent/pkg/types"
)

// Option 运行时配置选项函数
type Option func(*runtimeConfig) error

// runtimeConfig 内部选项结构
type runtimeConfig struct {
	// config 完整配置
	config *config.Config

	// clock 事件过期使用的时钟
	clock clock.Clock

	// dispatcher 外部提供的主执行上下文，nil 时使用内置主循环
	dispatcher pkgif.Dispatcher

	// registerer prometheus 注册器
	registerer prometheus.Registerer

	// logOutput 日志输出目标，nil 时不修改全局日志配置
	logOutput io.Writer

	// userFxOptions 用户自定义 Fx 选项
	userFxOptions []fx.Option
}

// newRuntimeConfig 创建默认选项
func newRuntimeConfig() *runtimeConfig {
	return &runtimeConfig{
		config: config.NewConfig(),
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              配置选项
// ════════════════════════════════════════════════════════════════════════════

// WithConfig 使用完整配置替换默认配置
//
// 之后的选项在此配置上继续修改。
func WithConfig(cfg *config.Config) Option {
	return func(c *runtimeConfig) error {
		if cfg == nil {
			return ErrNilConfig
		}
		copied := *cfg
		c.config = &copied
		return nil
	}
}

// WithPreset 应用预设（default/transient/sticky）
func WithPreset(name string) Option {
	return func(c *runtimeConfig) error {
		return config.ApplyPreset(c.config, name)
	}
}

// WithDefaultPolicy 设置新建 Job/LiveEvent 的默认消费策略
func WithDefaultPolicy(p types.Policy) Option {
	return func(c *runtimeConfig) error {
		if !p.Valid() {
			return fmt.Errorf("default policy: %w", types.ErrInvalidPolicy)
		}
		c.config.Event.DefaultPolicy = p
		return nil
	}
}

// WithDefaultTimeout 设置新建 Job/LiveEvent 的事件存活时长
func WithDefaultTimeout(d time.Duration) Option {
	return func(c *runtimeConfig) error {
		if d < 0 {
			return fmt.Errorf("default timeout must be >= 0, got %s", d)
		}
		c.config.Event.DefaultTimeout = config.Duration(d)
		return nil
	}
}

// WithQueueCapacity 设置内置主循环的初始队列容量
func WithQueueCapacity(n int) Option {
	return func(c *runtimeConfig) error {
		c.config.MainLoop.QueueCapacity = n
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              组件替换
// ════════════════════════════════════════════════════════════════════════════

// WithClock 设置事件过期使用的时钟（测试中可传入 clock.NewMock()）
func WithClock(clk clock.Clock) Option {
	return func(c *runtimeConfig) error {
		if clk == nil {
			return errors.New("nil clock")
		}
		c.clock = clk
		return nil
	}
}

// WithDispatcher 使用外部主执行上下文代替内置主循环
//
// 例如宿主已经有自己的 UI 主循环，或在测试中使用 mainloop.Immediate。
// 外部 Dispatcher 的启停由调用方负责。
func WithDispatcher(d pkgif.Dispatcher) Option {
	return func(c *runtimeConfig) error {
		if d == nil {
			return errors.New("nil dispatcher")
		}
		c.dispatcher = d
		return nil
	}
}

// WithRegisterer 把投递统计注册到 prometheus，同时启用指标
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *runtimeConfig) error {
		if reg == nil {
			return errors.New("nil registerer")
		}
		c.registerer = reg
		c.config.Metrics.Enable = true
		return nil
	}
}

// WithMetricsNamespace 设置指标命名空间
func WithMetricsNamespace(ns string) Option {
	return func(c *runtimeConfig) error {
		c.config.Metrics.Namespace = ns
		return nil
	}
}

// WithLogOutput 把日志输出到 w，级别取自配置的 Log.Level
//
// 这会替换全局 slog 默认 logger。
func WithLogOutput(w io.Writer) Option {
	return func(c *runtimeConfig) error {
		if w == nil {
			return errors.New("nil log output")
		}
		c.logOutput = w
		return nil
	}
}

// WithLogLevel 设置日志级别（debug/info/warn/error）
func WithLogLevel(level string) Option {
	return func(c *runtimeConfig) error {
		c.config.Log.Level = level
		return nil
	}
}

// WithFxOptions 追加用户自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(c *runtimeConfig) error {
		c.userFxOptions = append(c.userFxOptions, opts...)
		return nil
	}
}
