package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/onnwee/optimize-kit/backend/internal/cacheheaders"
	"github.com/onnwee/optimize-kit/backend/internal/utils"
	"gopkg.in/yaml.v3"
)

// RateLimitPolicy overrides the sliding window for a route.
type RateLimitPolicy struct {
	Window time.Duration `yaml:"window"`
	Max    int           `yaml:"max"`
}

// RoutePolicy overrides middleware settings for paths under Prefix.
type RoutePolicy struct {
	Prefix string `yaml:"prefix"`
	// CacheTTL replaces the default response cache TTL. Zero keeps the default.
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// NoCache disables response caching for the route.
	NoCache   bool             `yaml:"no_cache"`
	RateLimit *RateLimitPolicy `yaml:"rate_limit"`
	Methods   []string         `yaml:"methods"`
	// Headers names a cacheheaders preset.
	Headers string `yaml:"headers"`
}

// RoutePolicies is the decoded route policy file.
type RoutePolicies struct {
	Routes []RoutePolicy `yaml:"routes"`
}

var knownMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// LoadRoutes reads and validates a route policy file.
func LoadRoutes(path string) (*RoutePolicies, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route policies: %w", err)
	}
	p, err := ParseRoutes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParseRoutes decodes YAML route policies. Unknown fields are rejected.
func ParseRoutes(data []byte) (*RoutePolicies, error) {
	var p RoutePolicies
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode route policies: %w", err)
	}
	for i := range p.Routes {
		p.Routes[i].Methods = utils.UpperAll(p.Routes[i].Methods)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate reports every invalid route at once.
func (p *RoutePolicies) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(p.Routes))
	for i, r := range p.Routes {
		where := fmt.Sprintf("routes[%d]", i)
		switch {
		case !strings.HasPrefix(r.Prefix, "/"):
			errs = append(errs, fmt.Errorf("%s: prefix %q must start with /", where, r.Prefix))
		case seen[r.Prefix]:
			errs = append(errs, fmt.Errorf("%s: duplicate prefix %q", where, r.Prefix))
		}
		seen[r.Prefix] = true

		if r.CacheTTL < 0 {
			errs = append(errs, fmt.Errorf("%s: cache_ttl must not be negative", where))
		}
		if r.RateLimit != nil && (r.RateLimit.Window <= 0 || r.RateLimit.Max <= 0) {
			errs = append(errs, fmt.Errorf("%s: rate_limit needs a positive window and max", where))
		}
		for _, m := range r.Methods {
			if !utils.ContainsString(knownMethods, m) {
				errs = append(errs, fmt.Errorf("%s: unknown method %q", where, m))
			}
		}
		if r.Headers != "" {
			if _, ok := cacheheaders.Lookup(r.Headers); !ok {
				errs = append(errs, fmt.Errorf("%s: unknown header preset %q (have %s)",
					where, r.Headers, strings.Join(cacheheaders.Names(), ", ")))
			}
		}
	}
	return errors.Join(errs...)
}

// Match returns the policy with the longest prefix covering path.
func (p *RoutePolicies) Match(path string) (RoutePolicy, bool) {
	if p == nil {
		return RoutePolicy{}, false
	}
	var best RoutePolicy
	found := false
	for _, r := range p.Routes {
		if strings.HasPrefix(path, r.Prefix) && (!found || len(r.Prefix) > len(best.Prefix)) {
			best, found = r, true
		}
	}
	return best, found
}

// Prefixes lists the configured prefixes, longest first.
func (p *RoutePolicies) Prefixes() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.Routes))
	for _, r := range p.Routes {
		out = append(out, r.Prefix)
	}
	sort.Slice(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}
