package config

import "fmt"

// MainLoopConfig 主循环配置
type MainLoopConfig struct {
	// QueueCapacity 任务队列的初始容量
	//
	// 队列本身无上界，该值仅用于预分配。
	QueueCapacity int `json:"queue_capacity"`
}

// DefaultMainLoopConfig 返回默认主循环配置
func DefaultMainLoopConfig() MainLoopConfig {
	return MainLoopConfig{
		QueueCapacity: 64,
	}
}

// Validate 验证主循环配置
func (c MainLoopConfig) Validate() error {
	if c.QueueCapacity < 0 {
		return fmt.Errorf("main_loop.queue_capacity must be >= 0, got %d", c.QueueCapacity)
	}
	return nil
}
