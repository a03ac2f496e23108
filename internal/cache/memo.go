package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// MemoOptions configures Memoize.
type MemoOptions[A any] struct {
	// TTL of each result. Nil means DefaultTTL; a non-positive TTL expires
	// results immediately, so only concurrent callers share them.
	TTL *time.Duration
	// KeyGenerator maps an argument to a cache key. Defaults to its JSON encoding.
	KeyGenerator func(A) string
}

// Memoize wraps fn with a private TTL store keyed by KeyGenerator(arg).
// Concurrent calls for the same key share a single invocation of fn.
func Memoize[A any, R any](fn func(A) R, opts MemoOptions[A]) func(A) R {
	ttl := DefaultTTL
	if opts.TTL != nil {
		ttl = *opts.TTL
	}
	keyOf := opts.KeyGenerator
	if keyOf == nil {
		keyOf = defaultMemoKey[A]
	}

	store := NewMemory()
	var group singleflight.Group

	return func(arg A) R {
		key := keyOf(arg)
		if v, ok := store.Get(key); ok {
			r, _ := v.(R)
			return r
		}

		v, _, _ := group.Do(key, func() (any, error) {
			if v, ok := store.Get(key); ok {
				return v, nil
			}
			r := fn(arg)
			store.Set(key, r, ttl)
			return r, nil
		})
		r, _ := v.(R)
		return r
	}
}

func defaultMemoKey[A any](arg A) string {
	b, err := json.Marshal(arg)
	if err != nil {
		return fmt.Sprintf("%#v", arg)
	}
	return string(b)
}
