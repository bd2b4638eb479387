package clog

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level 日志级别类型
//
// 支持5个级别，按严重程度递增：Debug、Info、Warn、Error、Fatal。
// 数值与 slog 对齐，便于直接映射。
type Level int

const (
	DebugLevel Level = Level(slog.LevelDebug) // 调试级别
	InfoLevel  Level = Level(slog.LevelInfo)  // 信息级别
	WarnLevel  Level = Level(slog.LevelWarn)  // 警告级别
	ErrorLevel Level = Level(slog.LevelError) // 错误级别
	FatalLevel Level = Level(slog.LevelError + 4)
)

// String 返回 Level 的字符串表示
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	case FatalLevel:
		return "fatal"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// toSlog 映射为 slog.Level（内部使用）
func (l Level) toSlog() slog.Level {
	return slog.Level(l)
}

// ParseLevel 将字符串解析为 Level
//
// 支持的字符串（不区分大小写）：debug、info、warn、error、fatal。
// 如果无法解析，会返回 InfoLevel 和错误信息。
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level: %s", s)
	}
}
