package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile 在临时目录写入配置文件
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return dir
}

func TestLoadFromFile(t *testing.T) {
	dir := writeConfigFile(t, `
breaker:
  name: "payment-gateway"
  failure_threshold: 5
  success_threshold: 2
  break_duration: 30s
`)

	loader, err := New(WithConfigPaths(dir))
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	assert.Equal(t, "payment-gateway", loader.Get("breaker.name"))

	var cfg struct {
		Name             string        `mapstructure:"name"`
		FailureThreshold uint32        `mapstructure:"failure_threshold"`
		SuccessThreshold uint32        `mapstructure:"success_threshold"`
		BreakDuration    time.Duration `mapstructure:"break_duration"`
	}
	require.NoError(t, loader.UnmarshalKey("breaker", &cfg))
	assert.Equal(t, uint32(5), cfg.FailureThreshold)
	assert.Equal(t, uint32(2), cfg.SuccessThreshold)
	assert.Equal(t, 30*time.Second, cfg.BreakDuration)
}

func TestLoadMissingFile(t *testing.T) {
	// 配置文件不存在时不报错，仅依赖环境变量
	loader, err := New(WithConfigPaths(t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("BREAKER_BREAKER_NAME", "from-env")

	loader, err := New(WithConfigPaths(t.TempDir()), WithEnvPrefix("breaker"))
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	assert.Equal(t, "from-env", loader.Get("breaker.name"))
}

func TestUnmarshalWholeConfig(t *testing.T) {
	dir := writeConfigFile(t, `
log:
  level: "debug"
  format: "json"
`)

	loader, err := New(WithConfigPaths(dir))
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	var cfg struct {
		Log struct {
			Level  string `mapstructure:"level"`
			Format string `mapstructure:"format"`
		} `mapstructure:"log"`
	}
	require.NoError(t, loader.Unmarshal(&cfg))
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestWatchCancel(t *testing.T) {
	dir := writeConfigFile(t, `breaker: {name: "svc"}`)

	loader, err := New(WithConfigPaths(dir))
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := loader.Watch(ctx, "breaker.name")
	require.NoError(t, err)

	// 取消 context 后通道应被关闭
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "通道应被关闭")
	case <-time.After(2 * time.Second):
		t.Fatal("取消监听超时")
	}
}
