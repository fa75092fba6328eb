// Package update provides version extraction from repository pages.
package update

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

// Error variables for extraction errors. Both are recoverable per package,
// never fatal to a run.
var (
	// ErrContainerNotFound is returned when the container pattern finds no
	// package details fragment in the page
	ErrContainerNotFound = errors.New("can't find package info")
	// ErrVersionNotFound is returned when no version text is found within
	// the container fragment (or by the HTML recipe)
	ErrVersionNotFound = errors.New("can't find version info")
)

// Extract pulls the raw upstream version text out of a repository page
// using the given profile's recipe.
//
// The regex recipe runs in two stages: the container pattern isolates the
// details fragment from the full page, then the version pattern runs against
// that fragment only. Restricting the second stage to the fragment prevents
// accidentally matching version-looking text elsewhere on the page.
func Extract(page []byte, p *Profile) (string, error) {
	if p.usesHTML() {
		return extractHTML(page, p)
	}

	container := p.Container.re.FindSubmatch(page)
	if container == nil {
		return "", ErrContainerNotFound
	}
	fragment := container[p.Container.Group]

	version := p.Version.re.FindSubmatch(fragment)
	if version == nil {
		return "", ErrVersionNotFound
	}

	text := string(version[p.Version.Group])
	if text == "" {
		return "", fmt.Errorf("%w: version cell is empty", ErrVersionNotFound)
	}

	return text, nil
}

// extractHTML extracts the version using a CSS selector (goquery) or an
// XPath expression (htmlquery), with optional regex post-processing.
func extractHTML(page []byte, p *Profile) (string, error) {
	var text string
	var err error

	if p.Selector != "" {
		text, err = selectCSS(page, p.Selector)
	} else {
		text, err = selectXPath(page, p.XPath)
	}
	if err != nil {
		return "", err
	}

	if p.postRe != nil {
		text, err = applyPostPattern(text, p)
		if err != nil {
			return "", err
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: matched element is empty", ErrVersionNotFound)
	}

	return text, nil
}

// selectCSS returns the text content of the first element matching the
// CSS selector.
func selectCSS(page []byte, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	selection := doc.Find(selector)
	if selection.Length() == 0 {
		return "", fmt.Errorf("%w: no element matches %q", ErrVersionNotFound, selector)
	}

	return selection.First().Text(), nil
}

// selectXPath returns the text content of the first node matching the
// XPath expression.
func selectXPath(page []byte, xpath string) (string, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	nodes, err := htmlquery.QueryAll(doc, xpath)
	if err != nil {
		return "", fmt.Errorf("invalid xpath expression: %w", err)
	}
	if len(nodes) == 0 {
		return "", fmt.Errorf("%w: no node matches %q", ErrVersionNotFound, xpath)
	}

	return htmlquery.InnerText(nodes[0]), nil
}

// applyPostPattern applies the profile's post-processing regex to the
// extracted text, preferring the first capture group over the full match.
func applyPostPattern(text string, p *Profile) (string, error) {
	matches := p.postRe.FindStringSubmatch(text)
	if matches == nil {
		return "", fmt.Errorf("%w: pattern %q did not match element text", ErrVersionNotFound, p.Pattern)
	}

	if len(matches) > 1 && matches[1] != "" {
		return matches[1], nil
	}
	return matches[0], nil
}
