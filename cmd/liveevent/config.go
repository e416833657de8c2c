package main

import (
	"fmt"
	"os"

	"github.com/dep2p/go-liveevent/config"
)

// ============================================================================
//                              配置加载（CLI 专用）
// ============================================================================

// loadConfigIfNeeded 指定了配置文件时从文件加载，否则返回默认配置
func loadConfigIfNeeded() (*config.Config, error) {
	if *configFile == "" {
		return config.NewConfig(), nil
	}
	return loadConfigFile(*configFile)
}

// loadConfigFile 从 JSON 文件加载配置
//
// 未出现在文件中的字段保留默认值，可自动修复的问题会被修复。
func loadConfigFile(path string) (*config.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: 用户指定的配置文件路径是预期行为
	if err != nil {
		return nil, fmt.Errorf("加载配置文件失败: %w", err)
	}
	cfg, err := config.FromJSON(data)
	if err != nil {
		return nil, err
	}
	return config.ValidateAndFix(cfg)
}
