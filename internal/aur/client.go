// Package aur implements the AUR RPC client that produces the package list
// for the update-detection engine.
package aur

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aurtools/aurrpkgs/internal/update"
)

// Error variables for AUR API errors. These are batch-fatal for one user's
// check, unlike the per-package outcomes produced by the engine.
var (
	// ErrRequestFailed indicates the AUR returned a non-success HTTP status
	ErrRequestFailed = errors.New("AUR request failed")
	// ErrBadResponseType indicates the RPC response type is not "search"
	ErrBadResponseType = errors.New("invalid AUR API response type")
	// ErrNoPackages indicates the maintainer has no packages in the AUR
	ErrNoPackages = errors.New("no packages found for user")
	// ErrNoRPackages indicates the maintainer has packages but none are
	// R packages
	ErrNoRPackages = errors.New("no R packages found for user")
)

const (
	defaultBaseURL = "https://aur.archlinux.org/rpc/"
	rpcVersion     = 5
)

// Client handles communication with the AUR RPC API.
type Client struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// NewClient creates an AUR RPC client with the default endpoint.
func NewClient() *Client {
	return &Client{
		BaseURL:   defaultBaseURL,
		UserAgent: "aurrpkgs/1.0",
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// searchResponse mirrors the RPC v5 search envelope. Unknown fields in the
// response are ignored by the decoder, never a failure.
type searchResponse struct {
	Type        string         `json:"type"`
	ResultCount int            `json:"resultcount"`
	Results     []searchResult `json:"results"`
}

// searchResult is the subset of result fields the engine needs.
type searchResult struct {
	Name    string `json:"Name"`
	Version string `json:"Version"`
	URL     string `json:"URL"`
}

// SearchMaintainer queries the AUR for every package maintained by the
// given user and returns the reduced package records.
func (c *Client) SearchMaintainer(ctx context.Context, user string) ([]update.PackageRecord, error) {
	query := url.Values{
		"v":    {strconv.Itoa(rpcVersion)},
		"type": {"search"},
		"by":   {"maintainer"},
		"arg":  {user},
	}
	queryURL := c.BaseURL + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while trying to connect to the AUR: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: server returned %d", ErrRequestFailed, resp.StatusCode)
	}

	var search searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("failed to decode AUR response: %w", err)
	}

	if search.Type != "search" {
		return nil, fmt.Errorf("%w: %q", ErrBadResponseType, search.Type)
	}
	if search.ResultCount == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPackages, user)
	}

	records := make([]update.PackageRecord, 0, len(search.Results))
	for _, r := range search.Results {
		records = append(records, update.PackageRecord{
			Name:    r.Name,
			Version: r.Version,
			URL:     r.URL,
		})
	}

	return records, nil
}

// RPackages returns the maintainer's R packages: names prefixed "r-",
// excluding VCS variants suffixed "-git".
func (c *Client) RPackages(ctx context.Context, user string) ([]update.PackageRecord, error) {
	records, err := c.SearchMaintainer(ctx, user)
	if err != nil {
		return nil, err
	}

	rpkgs := records[:0]
	for _, r := range records {
		if strings.HasPrefix(r.Name, "r-") && !strings.HasSuffix(r.Name, "-git") {
			rpkgs = append(rpkgs, r)
		}
	}

	if len(rpkgs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRPackages, user)
	}

	return rpkgs, nil
}
