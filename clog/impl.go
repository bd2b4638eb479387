package clog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"
)

// NamespaceKey 是日志中命名空间的字段名，用于标识组件
const NamespaceKey = "namespace"

// loggerImpl 是 Logger 接口的具体实现
type loggerImpl struct {
	handler   slog.Handler
	level     *slog.LevelVar
	namespace []string
	baseAttrs []slog.Attr
}

// newLogger 创建 Logger 实例（内部使用）
func newLogger(config *Config, options *options) (Logger, error) {
	level := new(slog.LevelVar)
	parsed, err := ParseLevel(config.Level)
	if err != nil {
		return nil, err
	}
	level.Set(parsed.toSlog())

	w := options.writer
	if w == nil {
		w, err = openOutput(config.Output)
		if err != nil {
			return nil, fmt.Errorf("failed to open log output: %w", err)
		}
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	if strings.ToLower(config.Format) == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	return &loggerImpl{
		handler:   handler,
		level:     level,
		namespace: options.namespaceParts,
	}, nil
}

// openOutput 解析输出目标（内部使用）
func openOutput(output string) (io.Writer, error) {
	switch output {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	}
}

func (l *loggerImpl) Debug(msg string, fields ...Field) {
	l.log(context.Background(), DebugLevel, msg, fields...)
}

func (l *loggerImpl) Info(msg string, fields ...Field) {
	l.log(context.Background(), InfoLevel, msg, fields...)
}

func (l *loggerImpl) Warn(msg string, fields ...Field) {
	l.log(context.Background(), WarnLevel, msg, fields...)
}

func (l *loggerImpl) Error(msg string, fields ...Field) {
	l.log(context.Background(), ErrorLevel, msg, fields...)
}

func (l *loggerImpl) Fatal(msg string, fields ...Field) {
	l.log(context.Background(), FatalLevel, msg, fields...)
}

func (l *loggerImpl) DebugContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, DebugLevel, msg, fields...)
}

func (l *loggerImpl) InfoContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, InfoLevel, msg, fields...)
}

func (l *loggerImpl) WarnContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, WarnLevel, msg, fields...)
}

func (l *loggerImpl) ErrorContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, ErrorLevel, msg, fields...)
}

func (l *loggerImpl) FatalContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, FatalLevel, msg, fields...)
}

func (l *loggerImpl) With(fields ...Field) Logger {
	attrs := make([]slog.Attr, 0, len(l.baseAttrs)+len(fields))
	attrs = append(attrs, l.baseAttrs...)
	attrs = append(attrs, fields...)

	return &loggerImpl{
		handler:   l.handler,
		level:     l.level,
		namespace: l.namespace,
		baseAttrs: attrs,
	}
}

func (l *loggerImpl) WithNamespace(parts ...string) Logger {
	ns := make([]string, 0, len(l.namespace)+len(parts))
	ns = append(ns, l.namespace...)
	ns = append(ns, parts...)

	return &loggerImpl{
		handler:   l.handler,
		level:     l.level,
		namespace: ns,
		baseAttrs: l.baseAttrs,
	}
}

// SetLevel 动态调整日志级别
func (l *loggerImpl) SetLevel(level Level) error {
	l.level.Set(level.toSlog())
	return nil
}

// log 是所有级别方法的公共入口（内部使用）
func (l *loggerImpl) log(ctx context.Context, level Level, msg string, fields ...Field) {
	slogLevel := level.toSlog()
	if !l.handler.Enabled(ctx, slogLevel) {
		return
	}

	attrs := make([]slog.Attr, 0, len(l.baseAttrs)+len(fields)+1)
	if len(l.namespace) > 0 {
		attrs = append(attrs, slog.String(NamespaceKey, strings.Join(l.namespace, ".")))
	}
	attrs = append(attrs, l.baseAttrs...)
	attrs = append(attrs, fields...)

	// 获取正确的程序计数器(PC)值，用于准确的源码位置
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // skip: runtime.Callers, logger.log, Debug/Info/Error 等
	record := slog.NewRecord(time.Now(), slogLevel, msg, pcs[0])
	record.AddAttrs(attrs...)

	_ = l.handler.Handle(ctx, record)

	if level == FatalLevel {
		os.Exit(1)
	}
}
