package cache

import (
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemoize_CachesResult(t *testing.T) {
	var calls int
	square := Memoize(func(n int) int {
		calls++
		return n * n
	}, MemoOptions[int]{})

	if got := square(4); got != 16 {
		t.Fatalf("expected 16, got %d", got)
	}
	if got := square(4); got != 16 {
		t.Fatalf("expected 16, got %d", got)
	}
	if calls != 1 {
		t.Errorf("expected fn to run once, ran %d times", calls)
	}

	square(5)
	if calls != 2 {
		t.Errorf("expected a new key to call fn, calls=%d", calls)
	}
}

func TestMemoize_ExpiresResult(t *testing.T) {
	var calls int
	ttl := 50 * time.Millisecond
	fn := Memoize(func(s string) string {
		calls++
		return s + "!"
	}, MemoOptions[string]{TTL: &ttl})

	fn("a")
	time.Sleep(80 * time.Millisecond)
	fn("a")

	if calls != 2 {
		t.Errorf("expected recompute after ttl, calls=%d", calls)
	}
}

func TestMemoize_NonPositiveTTLDoesNotReuse(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Second} {
		t.Run(ttl.String(), func(t *testing.T) {
			var calls int
			fn := Memoize(func(n int) int {
				calls++
				return n
			}, MemoOptions[int]{TTL: &ttl})

			fn(1)
			fn(1)
			if calls != 2 {
				t.Errorf("expected fn to run on every call, ran %d times", calls)
			}
		})
	}
}

func TestMemoize_CustomKey(t *testing.T) {
	type query struct {
		ID    int
		Trace string
	}
	var calls int
	fn := Memoize(func(q query) int {
		calls++
		return q.ID
	}, MemoOptions[query]{
		KeyGenerator: func(q query) string { return strconv.Itoa(q.ID) },
	})

	fn(query{ID: 1, Trace: "a"})
	fn(query{ID: 1, Trace: "b"})

	if calls != 1 {
		t.Errorf("expected key generator to collapse calls, calls=%d", calls)
	}
}

func TestMemoize_PrivateStores(t *testing.T) {
	var a, b int
	fa := Memoize(func(n int) int { a++; return n }, MemoOptions[int]{})
	fb := Memoize(func(n int) int { b++; return n }, MemoOptions[int]{})

	fa(1)
	fb(1)
	if a != 1 || b != 1 {
		t.Errorf("memoized functions must not share results, a=%d b=%d", a, b)
	}
}

func TestMemoize_ConcurrentCallsShareOneInvocation(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	fn := Memoize(func(n int) int {
		calls.Add(1)
		<-release
		return n
	}, MemoOptions[int]{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(7)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("expected one invocation, got %d", got)
	}
}

func TestMemoize_NilInterfaceResult(t *testing.T) {
	fn := Memoize(func(int) error { return nil }, MemoOptions[int]{})
	if err := fn(1); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := fn(1); err != nil {
		t.Errorf("expected cached nil, got %v", err)
	}
}
