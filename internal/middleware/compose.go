// Package middleware provides composable net/http middlewares for response
// caching, rate limiting, request hygiene and observability.
package middleware

import "net/http"

// Middleware wraps a handler. A middleware that does not call the next
// handler ends the chain.
type Middleware func(http.Handler) http.Handler

// Compose returns a middleware that runs mws in order: the first runs first
// and its next handler is the rest of the chain, ending in the wrapped handler.
// Calling next more than once is not guarded against.
func Compose(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			if mws[i] != nil {
				h = mws[i](h)
			}
		}
		return h
	}
}
