package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-liveevent/config"
	"github.com/dep2p/go-liveevent/pkg/lib/log"
)

var logger = log.Logger("core/metrics")

// Params Metrics 依赖参数
type Params struct {
	fx.In

	Config     *config.Config        `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
	Registry   *Registry
}

// Module 返回 metrics 的 Fx 模块
//
// 总是提供 *Registry；当配置启用且注入了 prometheus.Registerer 时注册 Collector。
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(NewRegistry),
		fx.Invoke(registerCollector),
	)
}

func registerCollector(p Params) error {
	cfg := config.DefaultMetricsConfig()
	if p.Config != nil {
		cfg = p.Config.Metrics
	}
	if !cfg.Enable || p.Registerer == nil {
		return nil
	}
	if err := p.Registerer.Register(NewCollector(cfg.Namespace, p.Registry)); err != nil {
		logger.Warn("注册指标收集器失败", "error", err)
		return err
	}
	logger.Debug("指标收集器已注册", "namespace", cfg.Namespace)
	return nil
}
