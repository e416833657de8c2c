package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector 将 Registry 暴露为 Prometheus 指标
type Collector struct {
	registry *Registry

	posts         *prometheus.Desc
	delivered     *prometheus.Desc
	expired       *prometheus.Desc
	suppressed    *prometheus.Desc
	replays       *prometheus.Desc
	registrations *prometheus.Desc
	removals      *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector 创建收集器
func NewCollector(namespace string, r *Registry) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, []string{"bus"}, nil)
	}
	return &Collector{
		registry:      r,
		posts:         desc("posts_total", "Number of values posted to the bus."),
		delivered:     desc("delivered_total", "Number of values handed to observers."),
		expired:       desc("expired_total", "Number of deliveries skipped because the value expired."),
		suppressed:    desc("suppressed_total", "Number of deliveries skipped because the value was already consumed."),
		replays:       desc("replays_total", "Number of latest-value replays on registration or reactivation."),
		registrations: desc("registrations_total", "Number of observer registrations."),
		removals:      desc("removals_total", "Number of observer removals."),
	}
}

// Describe 实现 prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.posts
	ch <- c.delivered
	ch <- c.expired
	ch <- c.suppressed
	ch <- c.replays
	ch <- c.registrations
	ch <- c.removals
}

// Collect 实现 prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for name, s := range c.registry.Snapshot() {
		ch <- prometheus.MustNewConstMetric(c.posts, prometheus.CounterValue, float64(s.Posts), name)
		ch <- prometheus.MustNewConstMetric(c.delivered, prometheus.CounterValue, float64(s.Delivered), name)
		ch <- prometheus.MustNewConstMetric(c.expired, prometheus.CounterValue, float64(s.Expired), name)
		ch <- prometheus.MustNewConstMetric(c.suppressed, prometheus.CounterValue, float64(s.Suppressed), name)
		ch <- prometheus.MustNewConstMetric(c.replays, prometheus.CounterValue, float64(s.Replays), name)
		ch <- prometheus.MustNewConstMetric(c.registrations, prometheus.CounterValue, float64(s.Registrations), name)
		ch <- prometheus.MustNewConstMetric(c.removals, prometheus.CounterValue, float64(s.Removals), name)
	}
}
