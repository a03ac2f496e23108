// Package cacheheaders defines the response header presets routes are
// configured with, and renders them as rules for routing configuration.
package cacheheaders

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Header is a single response header.
type Header struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Rule binds a list of headers to a source path pattern.
type Rule struct {
	Source  string   `json:"source" yaml:"source"`
	Headers []Header `json:"headers" yaml:"headers"`
}

var (
	// LongTerm suits fingerprinted static assets.
	LongTerm = []Header{
		{Key: "Cache-Control", Value: "public, max-age=31536000, immutable"},
	}

	// ShortTerm suits frequently regenerated pages.
	ShortTerm = []Header{
		{Key: "Cache-Control", Value: "public, max-age=60, stale-while-revalidate=300"},
	}

	// NoCache suits dashboards, auth and user-specific responses.
	NoCache = []Header{
		{Key: "Cache-Control", Value: "no-store, no-cache, must-revalidate, proxy-revalidate"},
		{Key: "Pragma", Value: "no-cache"},
		{Key: "Expires", Value: "0"},
	}

	// Edge lets a CDN hold the response for a day.
	Edge = []Header{
		{Key: "Cache-Control", Value: "public, s-maxage=86400, stale-while-revalidate=604800"},
	}

	// Security hardens browser handling of any response.
	Security = []Header{
		{Key: "X-Content-Type-Options", Value: "nosniff"},
		{Key: "X-XSS-Protection", Value: "1; mode=block"},
		{Key: "X-Frame-Options", Value: "DENY"},
		{Key: "Referrer-Policy", Value: "strict-origin-when-cross-origin"},
		{Key: "Content-Security-Policy", Value: "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self'; connect-src 'self'; frame-ancestors 'none'"},
		{Key: "Permissions-Policy", Value: "geolocation=(), microphone=(), camera=()"},
	}
)

var presets = map[string][]Header{
	"long-term":  LongTerm,
	"short-term": ShortTerm,
	"no-cache":   NoCache,
	"edge":       Edge,
	"security":   Security,
}

// Apply pairs a source pattern with headers. The headers are copied.
func Apply(source string, headers []Header) Rule {
	return Rule{Source: source, Headers: append([]Header(nil), headers...)}
}

// Lookup returns a copy of the named preset. Names are case-insensitive and
// accept underscores, so "LONG_TERM" and "long-term" are the same preset.
func Lookup(name string) ([]Header, bool) {
	h, ok := presets[normalize(name)]
	if !ok {
		return nil, false
	}
	return append([]Header(nil), h...), true
}

// Names lists the preset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, "_", "-")
}

// Export renders rules as "yaml" or "json".
func Export(format string, rules ...Rule) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		out, err := yaml.Marshal(rules)
		if err != nil {
			return nil, fmt.Errorf("marshal rules as yaml: %w", err)
		}
		return out, nil
	case "json":
		out, err := json.MarshalIndent(rules, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal rules as json: %w", err)
		}
		return append(out, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
