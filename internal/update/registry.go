// Package update provides the source-repository profile registry.
package update

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Error variables for registry errors
var (
	// ErrDuplicateDomain is returned when two profiles claim the same domain
	ErrDuplicateDomain = errors.New("duplicate profile domain")
	// ErrMissingDomain is returned when a profile has no domain
	ErrMissingDomain = errors.New("profile is missing required field: domain")
	// ErrMissingName is returned when a profile has no display name
	ErrMissingName = errors.New("profile is missing required field: name")
	// ErrNoExtractionRecipe is returned when a profile defines neither a
	// regex recipe nor an HTML selector/xpath recipe
	ErrNoExtractionRecipe = errors.New("profile must define container/version patterns or a selector/xpath")
	// ErrInvalidPattern is returned when a profile pattern does not compile
	ErrInvalidPattern = errors.New("invalid profile pattern")
	// ErrBadCaptureGroup is returned when a pattern's capture group index is
	// out of range for the pattern
	ErrBadCaptureGroup = errors.New("capture group index out of range")
)

// CapturePattern pairs a regular expression with the index of the capture
// group holding the text of interest. Patterns are compiled with the
// dot-matches-newline flag because repository markup spans multiple lines.
type CapturePattern struct {
	// Pattern is the regex source, without the (?s) prefix
	Pattern string
	// Group is the capture group index selecting the extracted text
	Group int

	re *regexp.Regexp
}

func (p *CapturePattern) compile() error {
	re, err := regexp.Compile("(?s)" + p.Pattern)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	if p.Group < 1 || p.Group > re.NumSubexp() {
		return fmt.Errorf("%w: group %d, pattern has %d", ErrBadCaptureGroup, p.Group, re.NumSubexp())
	}
	p.re = re
	return nil
}

// Profile describes how to extract the current version from one class of
// source-repository page. Exactly one extraction recipe applies: the
// two-stage Container/Version regex recipe, or the HTML recipe via a CSS
// Selector or XPath expression (with an optional post-processing Pattern).
// Profiles are immutable once registered.
type Profile struct {
	// Name is the display label used in report lines (e.g. "CRAN")
	Name string
	// Domain is the exact lowercase host the profile matches
	Domain string
	// Container narrows the page to the details/summary fragment
	Container CapturePattern
	// Version extracts the version text within the container fragment
	Version CapturePattern
	// Selector is a CSS selector extracting the version element (HTML recipe)
	Selector string
	// XPath is an XPath expression extracting the version node (HTML recipe)
	XPath string
	// Pattern is an optional post-processing regex for the HTML recipe;
	// its first capture group (or the full match) is the version
	Pattern string

	postRe *regexp.Regexp
}

// usesHTML reports whether the profile extracts via goquery/htmlquery
// instead of the two-stage regex recipe.
func (p *Profile) usesHTML() bool {
	return p.Selector != "" || p.XPath != ""
}

// validate checks required fields and compiles the profile's patterns.
func (p *Profile) validate() error {
	if p.Name == "" {
		return ErrMissingName
	}
	if p.Domain == "" {
		return fmt.Errorf("%w (profile %q)", ErrMissingDomain, p.Name)
	}

	if p.usesHTML() {
		if p.Pattern != "" {
			re, err := regexp.Compile(p.Pattern)
			if err != nil {
				return fmt.Errorf("%w: %v (profile %q)", ErrInvalidPattern, err, p.Name)
			}
			p.postRe = re
		}
		return nil
	}

	if p.Container.Pattern == "" || p.Version.Pattern == "" {
		return fmt.Errorf("%w (profile %q)", ErrNoExtractionRecipe, p.Name)
	}
	if err := p.Container.compile(); err != nil {
		return fmt.Errorf("%v (profile %q container)", err, p.Name)
	}
	if err := p.Version.compile(); err != nil {
		return fmt.Errorf("%v (profile %q version)", err, p.Name)
	}
	return nil
}

// Registry maps source-repository domains to their extraction profiles.
// It is constructed once at startup and never mutated afterwards, so
// lookups need no synchronization.
type Registry struct {
	profiles []*Profile
	byDomain map[string]*Profile
}

// NewRegistry validates the given profiles and builds a registry.
// Domains must be unique across all profiles.
func NewRegistry(profiles ...Profile) (*Registry, error) {
	r := &Registry{
		byDomain: make(map[string]*Profile, len(profiles)),
	}

	for i := range profiles {
		p := profiles[i]
		if err := p.validate(); err != nil {
			return nil, err
		}

		domain := strings.ToLower(p.Domain)
		if _, exists := r.byDomain[domain]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDomain, domain)
		}
		p.Domain = domain

		r.profiles = append(r.profiles, &p)
		r.byDomain[domain] = &p
	}

	return r, nil
}

// DefaultRegistry returns the registry seeded with the built-in profiles.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(builtinProfiles()...)
	if err != nil {
		// Built-in profiles are fixed at compile time; a failure here is a bug.
		panic(fmt.Sprintf("built-in profiles invalid: %v", err))
	}
	return r
}

// builtinProfiles returns the built-in extraction profiles.
// Both encode a two-stage recipe: narrow to the package details table,
// then pick the version cell within it.
func builtinProfiles() []Profile {
	return []Profile{
		{
			Name:      "CRAN",
			Domain:    "cran.r-project.org",
			Container: CapturePattern{Pattern: `<table summary="Package(.*?) summary">(.*?)</table>`, Group: 2},
			Version:   CapturePattern{Pattern: "<tr>\n<td>Version:</td>\n<td>(.*?)</td>", Group: 1},
		},
		{
			Name:      "Bioconductor",
			Domain:    "bioconductor.org",
			Container: CapturePattern{Pattern: `<table class="details">(.*?)</table>`, Group: 1},
			Version:   CapturePattern{Pattern: "<tr(.*?)>\n(\\s*)<td>Version</td>\n(\\s*)<td>(.*?)</td>", Group: 4},
		},
	}
}

// LookupByDomain returns the profile for the given host.
// Matching is a case-insensitive exact match on the host component;
// no wildcard or suffix matching is performed.
func (r *Registry) LookupByDomain(host string) (*Profile, bool) {
	p, ok := r.byDomain[strings.ToLower(host)]
	return p, ok
}

// Profiles returns the registered profiles in registration order.
func (r *Registry) Profiles() []*Profile {
	return r.profiles
}

// Len returns the number of registered profiles.
func (r *Registry) Len() int {
	return len(r.profiles)
}
