package eventbus

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-liveevent/internal/core/metrics"
	pkgif "github.com/dep2p/go-liveevent/pkg/interfaces"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Params 事件总线模块依赖参数
type Params struct {
	fx.In

	Dispatcher pkgif.Dispatcher
	Clock      clock.Clock       `optional:"true"`
	Metrics    *metrics.Registry `optional:"true"`
}

// Module 返回 Fx 模块
//
// Bus 是泛型类型，无法直接由 Fx 提供；模块提供 Env，
// 调用方用 eventbus.New[T](env) 创建具体类型的总线。
func Module() fx.Option {
	return fx.Module("eventbus",
		fx.Provide(ProvideEnv),
	)
}

// ProvideEnv 提供总线运行环境
func ProvideEnv(p Params) Env {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return Env{
		Dispatcher: p.Dispatcher,
		Clock:      clk,
		Metrics:    p.Metrics,
	}
}

// ============================================================================
// 模块元信息
// ============================================================================

const (
	// Name 模块名称
	Name = "eventbus"
	// Description 模块描述
	Description = "单槽位事件总线模块，提供按策略消费的最新值广播"
)
