package breaker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func testGroup(t *testing.T, opts ...Option) Group {
	t.Helper()
	grp, err := NewGroup(testConfig(), opts...)
	if err != nil {
		t.Fatalf("NewGroup should not return error, got: %v", err)
	}
	return grp
}

// TestGroupNilConfig 测试 nil 配置
func TestGroupNilConfig(t *testing.T) {
	_, err := NewGroup(nil)
	if !errors.Is(err, ErrConfigNil) {
		t.Fatalf("NewGroup with nil config should return ErrConfigNil, got: %v", err)
	}
}

// TestGroupInvalidConfig 测试配置在组创建时一次性校验
func TestGroupInvalidConfig(t *testing.T) {
	_, err := NewGroup(&Config{FailureThreshold: 0, SuccessThreshold: 1, BreakDuration: time.Second})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("NewGroup should return ErrInvalidConfig, got: %v", err)
	}
}

// TestGroupKeyIsolation 测试不同键的熔断状态彼此独立
func TestGroupKeyIsolation(t *testing.T) {
	grp := testGroup(t)

	for i := 0; i < 3; i++ {
		grp.Execute(context.Background(), "svc-a", func() (interface{}, error) {
			return nil, errBoom
		})
	}

	stateA, err := grp.State("svc-a")
	if err != nil {
		t.Fatalf("State(svc-a) should not return error, got: %v", err)
	}
	if stateA != StateOpen {
		t.Errorf("svc-a should be open, got: %v", stateA)
	}

	// svc-b 未受影响
	result, err := grp.Execute(context.Background(), "svc-b", func() (interface{}, error) {
		return "ok", nil
	})
	if err != nil || result != "ok" {
		t.Errorf("svc-b should pass through, got result=%v err=%v", result, err)
	}
	if stateB, _ := grp.State("svc-b"); stateB != StateClosed {
		t.Errorf("svc-b should be closed, got: %v", stateB)
	}
}

// TestGroupEmptyKey 测试空键被拒绝
func TestGroupEmptyKey(t *testing.T) {
	grp := testGroup(t)

	if _, err := grp.Execute(context.Background(), "", func() (interface{}, error) {
		return nil, nil
	}); !errors.Is(err, ErrKeyEmpty) {
		t.Errorf("Execute with empty key should return ErrKeyEmpty, got: %v", err)
	}
	if _, err := grp.State(""); !errors.Is(err, ErrKeyEmpty) {
		t.Errorf("State with empty key should return ErrKeyEmpty, got: %v", err)
	}
	if _, err := grp.Metrics(""); !errors.Is(err, ErrKeyEmpty) {
		t.Errorf("Metrics with empty key should return ErrKeyEmpty, got: %v", err)
	}
	if err := grp.Reset(""); !errors.Is(err, ErrKeyEmpty) {
		t.Errorf("Reset with empty key should return ErrKeyEmpty, got: %v", err)
	}
}

// TestGroupUnknownKey 测试未知键的查询
func TestGroupUnknownKey(t *testing.T) {
	grp := testGroup(t)

	if _, err := grp.State("never-used"); !errors.Is(err, ErrBreakerNotFound) {
		t.Errorf("State of unknown key should return ErrBreakerNotFound, got: %v", err)
	}
	if _, err := grp.Metrics("never-used"); !errors.Is(err, ErrBreakerNotFound) {
		t.Errorf("Metrics of unknown key should return ErrBreakerNotFound, got: %v", err)
	}
	if err := grp.Reset("never-used"); !errors.Is(err, ErrBreakerNotFound) {
		t.Errorf("Reset of unknown key should return ErrBreakerNotFound, got: %v", err)
	}
}

// TestGroupReset 测试按键重置
func TestGroupReset(t *testing.T) {
	grp := testGroup(t)

	for i := 0; i < 3; i++ {
		grp.Execute(context.Background(), "svc-a", func() (interface{}, error) {
			return nil, errBoom
		})
	}
	if state, _ := grp.State("svc-a"); state != StateOpen {
		t.Fatalf("svc-a should be open before reset, got: %v", state)
	}

	if err := grp.Reset("svc-a"); err != nil {
		t.Fatalf("Reset should not return error, got: %v", err)
	}
	if state, _ := grp.State("svc-a"); state != StateClosed {
		t.Errorf("svc-a should be closed after reset, got: %v", state)
	}
}

// TestGroupObserverReceivesKey 测试状态变更回调收到的是键
func TestGroupObserverReceivesKey(t *testing.T) {
	var gotName string
	grp := testGroup(t, WithOnStateChange(func(name string, from, to State, err error) {
		gotName = name
	}))

	for i := 0; i < 3; i++ {
		grp.Execute(context.Background(), "payment", func() (interface{}, error) {
			return nil, errBoom
		})
	}

	if gotName != "payment" {
		t.Errorf("observer should receive key as name, got: %q", gotName)
	}
}

// TestGroupConcurrentSameKey 测试并发访问同一个键命中同一个熔断器
func TestGroupConcurrentSameKey(t *testing.T) {
	grp := testGroup(t)

	const workers = 20
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			grp.Execute(context.Background(), "shared", func() (interface{}, error) {
				return nil, nil
			})
		}()
	}
	wg.Wait()

	m, err := grp.Metrics("shared")
	if err != nil {
		t.Fatalf("Metrics should not return error, got: %v", err)
	}
	if m.TotalCalls != workers {
		t.Errorf("all calls should hit the same breaker, got total: %d", m.TotalCalls)
	}
}
