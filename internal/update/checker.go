// Package update implements the per-package fetch/extract/compare pipeline.
package update

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
)

// PackageRecord is the reduced view of an AUR package used by the pipeline:
// name, declared version and recorded homepage. Any other fields supplied by
// the index API are discarded before the record reaches the checker, which
// keeps the pipeline independent of index schema churn. Records are
// read-only once created.
type PackageRecord struct {
	// Name is the AUR package name (e.g. "r-foo")
	Name string
	// Version is the raw AUR version, possibly with a pkgrel suffix
	Version string
	// URL is the recorded homepage pointing at the source repository page
	URL string
}

// Checker runs the per-package update check pipeline: registry lookup,
// page fetch, version extraction, normalization and comparison.
// It is safe for concurrent use: the registry is immutable and the HTTP
// client is shared safely.
type Checker struct {
	registry *Registry
	client   *HTTPClient
	timeout  time.Duration
}

// CheckerOption is a functional option for configuring a Checker.
type CheckerOption func(*Checker)

// WithRegistry sets a custom profile registry.
func WithRegistry(r *Registry) CheckerOption {
	return func(c *Checker) {
		c.registry = r
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *HTTPClient) CheckerOption {
	return func(c *Checker) {
		c.client = client
	}
}

// WithTimeout sets the per-request fetch timeout on the default HTTP
// client. It has no effect when WithHTTPClient supplies the client.
func WithTimeout(d time.Duration) CheckerOption {
	return func(c *Checker) {
		c.timeout = d
	}
}

// NewChecker creates a checker with the default registry and HTTP client
// unless overridden by options.
func NewChecker(opts ...CheckerOption) *Checker {
	c := &Checker{}

	for _, opt := range opts {
		opt(c)
	}

	if c.registry == nil {
		c.registry = DefaultRegistry()
	}
	if c.client == nil {
		config := DefaultRetryConfig()
		if c.timeout > 0 {
			config.Timeout = c.timeout
		}
		c.client = NewHTTPClientWithConfig(config)
	}

	return c
}

// Registry returns the checker's profile registry.
func (c *Checker) Registry() *Registry {
	return c.registry
}

// Check runs the pipeline for a single package and always produces exactly
// one outcome. Every per-package error is converted to a Failed or Skipped
// outcome here; nothing propagates past a single package's check and one
// bad package never aborts the batch. No pipeline step retries.
func (c *Checker) Check(ctx context.Context, pkg PackageRecord) Outcome {
	declared, err := Normalize(pkg.Version)
	if err != nil {
		return Failed(pkg.Name, FailVersion, err.Error())
	}

	host := hostOf(pkg.URL)
	profile, ok := c.registry.LookupByDomain(host)
	if !ok {
		return Skipped(pkg.Name, fmt.Sprintf("repository %s is unsupported (yet)", host))
	}

	page, outcome, ok := c.fetch(ctx, pkg)
	if !ok {
		return outcome
	}

	rawUpstream, err := Extract(page, profile)
	if err != nil {
		return Failed(pkg.Name, FailParse, err.Error())
	}

	upstream, err := NormalizeUpstream(rawUpstream)
	if err != nil {
		return Failed(pkg.Name, FailParse, err.Error())
	}

	if Compare(declared, upstream) < 0 {
		return Outdated(pkg.Name, Clean(pkg.Version), rawUpstream, profile.Name)
	}

	return UpToDate(pkg.Name)
}

// fetch issues a single synchronous GET for the package's homepage and
// returns the page body. Transport failures and timeouts classify as
// network failures, non-2xx responses as server failures.
func (c *Checker) fetch(ctx context.Context, pkg PackageRecord) ([]byte, Outcome, bool) {
	resp, err := c.client.Get(ctx, pkg.URL)
	if err != nil {
		return nil, Failed(pkg.Name, FailNetwork, err.Error()), false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, Failed(pkg.Name, FailServer, fmt.Sprintf("%d", resp.StatusCode)), false
	}

	page, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Failed(pkg.Name, FailNetwork, err.Error()), false
	}

	return page, Outcome{}, true
}

// hostOf extracts the lowercase host component of a homepage URL.
// Scheme and path are ignored; a URL that does not parse yields an empty
// host, which never matches a profile.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
