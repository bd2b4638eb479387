package breaker

import (
	"context"
	"errors"
	"testing"
	"time"
)

type receipt struct {
	ID string
}

// TestDoTypedResult 测试泛型封装透传带类型的结果
func TestDoTypedResult(t *testing.T) {
	brk, _ := New(testConfig())

	r, err := Do(context.Background(), brk, func(ctx context.Context) (*receipt, error) {
		return &receipt{ID: "r-1"}, nil
	})
	if err != nil {
		t.Fatalf("Do should not return error, got: %v", err)
	}
	if r == nil || r.ID != "r-1" {
		t.Errorf("unexpected result: %+v", r)
	}
}

// TestDoError 测试泛型封装透传错误并返回零值
func TestDoError(t *testing.T) {
	brk, _ := New(testConfig())

	r, err := Do(context.Background(), brk, func(ctx context.Context) (*receipt, error) {
		return nil, errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("Do should return underlying error, got: %v", err)
	}
	if r != nil {
		t.Errorf("Do should return zero value on error, got: %+v", r)
	}
}

// TestDoFallbackResultType 测试类型不匹配的降级结果返回错误而不是伪造零值
func TestDoFallbackResultType(t *testing.T) {
	brk, _ := New(&Config{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		BreakDuration:    time.Minute,
	}, WithFallback(func(ctx context.Context, err error) (interface{}, error) {
		return 42, nil // 与 *receipt 不兼容
	}))

	Do(context.Background(), brk, func(ctx context.Context) (*receipt, error) {
		return nil, errBoom
	})

	r, err := Do(context.Background(), brk, func(ctx context.Context) (*receipt, error) {
		return &receipt{ID: "r-2"}, nil
	})
	if !errors.Is(err, ErrResultType) {
		t.Fatalf("mismatched fallback result should return ErrResultType, got: %v", err)
	}
	if r != nil {
		t.Errorf("mismatched result should be zero value, got: %+v", r)
	}
}

// TestDoFallbackTypedResult 测试类型匹配的降级结果正常返回
func TestDoFallbackTypedResult(t *testing.T) {
	brk, _ := New(&Config{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		BreakDuration:    time.Minute,
	}, WithFallback(func(ctx context.Context, err error) (interface{}, error) {
		return &receipt{ID: "cached"}, nil
	}))

	Do(context.Background(), brk, func(ctx context.Context) (*receipt, error) {
		return nil, errBoom
	})

	r, err := Do(context.Background(), brk, func(ctx context.Context) (*receipt, error) {
		return &receipt{ID: "fresh"}, nil
	})
	if err != nil {
		t.Fatalf("typed fallback result should be returned, got: %v", err)
	}
	if r == nil || r.ID != "cached" {
		t.Errorf("expected cached fallback result, got: %+v", r)
	}
}

// TestWrapSharesBreaker 测试 Wrap 返回的函数共享同一个熔断器
func TestWrapSharesBreaker(t *testing.T) {
	brk, _ := New(testConfig())

	call := Wrap(brk, func(ctx context.Context) (string, error) {
		return "", errBoom
	})

	for i := 0; i < 3; i++ {
		call(context.Background())
	}

	if brk.State() != StateOpen {
		t.Fatalf("wrapped calls should share breaker state, got: %v", brk.State())
	}

	// 熔断打开后包装函数同样被拒绝
	_, err := call(context.Background())
	if !errors.Is(err, ErrOpenState) {
		t.Errorf("wrapped call should be rejected while open, got: %v", err)
	}
}
