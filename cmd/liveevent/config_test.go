package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-liveevent/config"
	"github.com/dep2p/go-liveevent/pkg/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// TestLoadConfigFile 测试从文件加载配置
func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `{"event": {"default_policy": "always", "default_timeout": "3s"}}`)

	cfg, err := loadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, types.PolicyAlways, cfg.Event.DefaultPolicy)
	assert.Equal(t, 3*time.Second, cfg.Event.DefaultTimeout.Duration())
	assert.Equal(t, config.DefaultMainLoopConfig(), cfg.MainLoop)
}

// TestLoadConfigFile_Errors 测试配置文件错误
func TestLoadConfigFile_Errors(t *testing.T) {
	_, err := loadConfigFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = loadConfigFile(writeConfig(t, `{"event": {"default_policy": "sometimes"}}`))
	assert.Error(t, err)

	_, err = loadConfigFile(writeConfig(t, `not json`))
	assert.Error(t, err)
}

// TestLoadConfigIfNeeded 测试未指定配置文件时使用默认配置
func TestLoadConfigIfNeeded(t *testing.T) {
	cfg, err := loadConfigIfNeeded()
	require.NoError(t, err)
	assert.Equal(t, config.NewConfig(), cfg)
}
