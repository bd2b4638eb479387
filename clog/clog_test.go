package clog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseLines 将缓冲区按行解析为 JSON 对象
func parseLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), "日志行应为合法 JSON: %s", line)
		out = append(out, m)
	}
	return out
}

func TestNewDefaults(t *testing.T) {
	// nil 配置应使用默认值
	logger, err := New(nil)
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(&Config{Level: "verbose"})
	require.Error(t, err)
}

func TestNewInvalidFormat(t *testing.T) {
	_, err := New(&Config{Format: "xml"})
	require.Error(t, err)
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{Level: "info", Format: "json"}, WithWriter(&buf))
	require.NoError(t, err)

	logger.Info("hello", String("key", "value"), Int("count", 3))

	lines := parseLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "hello", lines[0]["msg"])
	assert.Equal(t, "value", lines[0]["key"])
	assert.Equal(t, float64(3), lines[0]["count"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{Level: "warn", Format: "json"}, WithWriter(&buf))
	require.NoError(t, err)

	logger.Debug("debug msg")
	logger.Info("info msg")
	logger.Warn("warn msg")
	logger.Error("error msg")

	lines := parseLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "warn msg", lines[0]["msg"])
	assert.Equal(t, "error msg", lines[1]["msg"])
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{Level: "info", Format: "json"}, WithWriter(&buf))
	require.NoError(t, err)

	logger.Debug("before")
	require.NoError(t, logger.SetLevel(DebugLevel))
	logger.Debug("after")

	lines := parseLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "after", lines[0]["msg"])
}

func TestNamespace(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{Level: "info", Format: "json"},
		WithWriter(&buf), WithNamespace("service"))
	require.NoError(t, err)

	logger.WithNamespace("breaker").Info("created")

	lines := parseLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "service.breaker", lines[0][NamespaceKey])
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{Level: "info", Format: "json"}, WithWriter(&buf))
	require.NoError(t, err)

	child := logger.With(String("component", "breaker"))
	child.Info("one")
	child.Info("two")

	lines := parseLines(t, &buf)
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, "breaker", line["component"])
	}
}

func TestErrorField(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{Level: "info", Format: "json"}, WithWriter(&buf))
	require.NoError(t, err)

	logger.Error("failed", Error(errors.New("boom")))

	lines := parseLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "boom", lines[0]["err_msg"])
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug": DebugLevel,
		"INFO":  InfoLevel,
		"warn":  WarnLevel,
		"Error": ErrorLevel,
		"fatal": FatalLevel,
	}
	for input, want := range cases {
		got, err := ParseLevel(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseLevel("trace")
	require.Error(t, err)
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	// 所有操作都不应 panic
	logger.Info("ignored")
	logger.With(String("k", "v")).WithNamespace("ns").Error("ignored")
	require.NoError(t, logger.SetLevel(DebugLevel))
}
