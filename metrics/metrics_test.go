package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNilConfig(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestNewDisabled(t *testing.T) {
	// 禁用时应返回 noop Meter，所有操作都是空操作
	meter, err := New(&Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, meter)

	ctx := context.Background()

	counter, err := meter.Counter("test_total", "test counter")
	require.NoError(t, err)
	counter.Inc(ctx)
	counter.Add(ctx, 5, L("k", "v"))

	gauge, err := meter.Gauge("test_gauge", "test gauge")
	require.NoError(t, err)
	gauge.Set(ctx, 1)
	gauge.Inc(ctx)
	gauge.Dec(ctx)

	histogram, err := meter.Histogram("test_seconds", "test histogram", WithUnit("seconds"))
	require.NoError(t, err)
	histogram.Record(ctx, 0.1)

	require.NoError(t, meter.Shutdown(ctx))
}

func TestNewEnabled(t *testing.T) {
	// 不配置 Port，避免测试中启动 HTTP 服务器
	meter, err := New(&Config{
		Enabled:     true,
		ServiceName: "metrics-test",
		Version:     "v0.0.1",
	})
	require.NoError(t, err)
	require.NotNil(t, meter)

	ctx := context.Background()
	defer meter.Shutdown(ctx)

	counter, err := meter.Counter("breaker_requests_total", "total requests")
	require.NoError(t, err)
	counter.Inc(ctx, L("name", "test"))
	counter.Add(ctx, 2, L("name", "test"))

	gauge, err := meter.Gauge("breaker_state", "current state")
	require.NoError(t, err)
	gauge.Set(ctx, 1, L("name", "test"))

	histogram, err := meter.Histogram("breaker_request_duration_seconds", "request duration",
		WithUnit("seconds"))
	require.NoError(t, err)
	histogram.Record(ctx, 0.05, L("name", "test"))
}

func TestLabel(t *testing.T) {
	label := L("from_state", "closed")
	assert.Equal(t, "from_state", label.Key)
	assert.Equal(t, "closed", label.Value)
}

func TestLabelKey(t *testing.T) {
	assert.Equal(t, "", labelKey(nil))
	assert.Equal(t, "a=1|b=2", labelKey([]Label{L("a", "1"), L("b", "2")}))
}
