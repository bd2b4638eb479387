package xerrors

import (
	"errors"
	"testing"
)

func TestWrap(t *testing.T) {
	// nil 错误应返回 nil
	if err := Wrap(nil, "context"); err != nil {
		t.Errorf("Wrap(nil) = %v，期望 nil", err)
	}

	// 包装后的错误应包含消息
	base := errors.New("base error")
	wrapped := Wrap(base, "context")
	if wrapped == nil {
		t.Fatal("Wrap(err) = nil，期望非 nil")
	}
	if wrapped.Error() != "context: base error" {
		t.Errorf("Wrap(err).Error() = %q，期望 %q", wrapped.Error(), "context: base error")
	}

	// 应保留错误链
	if !errors.Is(wrapped, base) {
		t.Error("errors.Is(wrapped, base) = false，期望 true")
	}
}

func TestWrapf(t *testing.T) {
	// nil 错误应返回 nil
	if err := Wrapf(nil, "call %d", 3); err != nil {
		t.Errorf("Wrapf(nil) = %v，期望 nil", err)
	}

	// 包装后的错误应包含格式化消息
	base := errors.New("connection refused")
	wrapped := Wrapf(base, "call %d", 3)
	if wrapped.Error() != "call 3: connection refused" {
		t.Errorf("Wrapf(err).Error() = %q，期望 %q", wrapped.Error(), "call 3: connection refused")
	}
}

func TestMust(t *testing.T) {
	// 无错误时应返回值
	if v := Must(42, nil); v != 42 {
		t.Errorf("Must(42, nil) = %d，期望 42", v)
	}

	// 有错误时应 panic
	defer func() {
		if r := recover(); r == nil {
			t.Error("Must(_, err) 未 panic")
		}
	}()
	Must(0, errors.New("boom"))
}
