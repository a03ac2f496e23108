package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
)

// DefaultCompressThreshold is the smallest body Compress will encode (1KB).
const DefaultCompressThreshold = 1024

var (
	gzipPool = sync.Pool{
		New: func() any { return gzip.NewWriter(io.Discard) },
	}
	brotliPool = sync.Pool{
		New: func() any { return brotli.NewWriterLevel(io.Discard, brotli.DefaultCompression) },
	}
)

// Compress encodes response bodies larger than threshold bytes with brotli
// or gzip, whichever the client accepts, preferring brotli. Smaller bodies,
// bodies that already carry a Content-Encoding, and bodiless statuses pass
// through unchanged.
func Compress(threshold int) Middleware {
	if threshold < 0 {
		threshold = DefaultCompressThreshold
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			encoding := negotiateEncoding(r.Header.Get("Accept-Encoding"))
			if encoding == "" || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			bw := newBufferWriter(w)
			next.ServeHTTP(bw, r)

			body := bw.Body()
			status := bw.Status()
			if len(body) <= threshold || w.Header().Get("Content-Encoding") != "" ||
				status == http.StatusNoContent || status == http.StatusNotModified {
				bw.flush()
				return
			}

			h := w.Header()
			h.Set("Content-Encoding", encoding)
			h.Add("Vary", "Accept-Encoding")
			h.Del("Content-Length")
			if h.Get("Content-Type") == "" {
				h.Set("Content-Type", http.DetectContentType(body))
			}
			w.WriteHeader(status)

			switch encoding {
			case "br":
				bz := brotliPool.Get().(*brotli.Writer)
				defer brotliPool.Put(bz)
				bz.Reset(w)
				_, _ = bz.Write(body)
				_ = bz.Close()
			default:
				gz := gzipPool.Get().(*gzip.Writer)
				defer gzipPool.Put(gz)
				gz.Reset(w)
				_, _ = gz.Write(body)
				_ = gz.Close()
			}
		})
	}
}

// negotiateEncoding picks "br" or "gzip" from an Accept-Encoding value,
// honoring q=0 exclusions. It returns "" when neither is acceptable.
func negotiateEncoding(header string) string {
	if header == "" {
		return ""
	}
	var br, gz, wildcard bool
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !acceptable(params) {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "br":
			br = true
		case "gzip", "x-gzip":
			gz = true
		case "*":
			wildcard = true
		}
	}
	switch {
	case br:
		return "br"
	case gz, wildcard:
		return "gzip"
	default:
		return ""
	}
}

func acceptable(params string) bool {
	for _, p := range strings.Split(params, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || strings.TrimSpace(k) != "q" {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return err != nil || q > 0
	}
	return true
}
