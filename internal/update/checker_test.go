package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

// testRegistry builds a registry whose CRAN-shaped profile points at the
// given test server host, so checks hit the local fixture instead of the
// real repository.
func testRegistry(t *testing.T, serverURL string) *Registry {
	t.Helper()

	u, err := url.Parse(serverURL)
	if err != nil {
		t.Fatal(err)
	}

	cran := builtinProfiles()[0]
	cran.Domain = u.Hostname()

	r, err := NewRegistry(cran)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

// fixtureServer serves a frozen CRAN-style page embedding the given version.
func fixtureServer(t *testing.T, version string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(cranPage("foo", version))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCheckOutdated(t *testing.T) {
	server := fixtureServer(t, "1.3")
	checker := NewChecker(WithRegistry(testRegistry(t, server.URL)))

	pkg := PackageRecord{Name: "r-foo", Version: "1.2-1", URL: server.URL + "/web/packages/foo"}
	outcome := checker.Check(context.Background(), pkg)

	if outcome.Kind != KindOutdated {
		t.Fatalf("expected outdated, got %s (%s)", outcome.Kind, outcome.Reason)
	}
	if outcome.Declared != "1.2" {
		t.Errorf("declared = %q, want \"1.2\" (pkgrel stripped)", outcome.Declared)
	}
	if outcome.Upstream != "1.3" {
		t.Errorf("upstream = %q, want raw \"1.3\"", outcome.Upstream)
	}
	if outcome.RepoName != "CRAN" {
		t.Errorf("repo name = %q, want \"CRAN\"", outcome.RepoName)
	}
}

func TestCheckUpToDate(t *testing.T) {
	server := fixtureServer(t, "1.2")
	checker := NewChecker(WithRegistry(testRegistry(t, server.URL)))

	pkg := PackageRecord{Name: "r-foo", Version: "1.2-1", URL: server.URL}
	outcome := checker.Check(context.Background(), pkg)

	if outcome.Kind != KindUpToDate {
		t.Fatalf("expected up-to-date, got %s (%s)", outcome.Kind, outcome.Reason)
	}
	if outcome.Line() != "" {
		t.Error("up-to-date outcome must render no line")
	}
}

func TestCheckNewerThanUpstream(t *testing.T) {
	server := fixtureServer(t, "1.1")
	checker := NewChecker(WithRegistry(testRegistry(t, server.URL)))

	pkg := PackageRecord{Name: "r-foo", Version: "1.2-1", URL: server.URL}
	outcome := checker.Check(context.Background(), pkg)

	// Declared ahead of upstream is not "outdated"
	if outcome.Kind != KindUpToDate {
		t.Errorf("expected up-to-date, got %s", outcome.Kind)
	}
}

func TestCheckUnsupportedRepository(t *testing.T) {
	checker := NewChecker()

	pkg := PackageRecord{Name: "r-bar", Version: "1.0-1", URL: "https://example.com/bar"}
	outcome := checker.Check(context.Background(), pkg)

	if outcome.Kind != KindSkipped {
		t.Fatalf("expected skipped, got %s", outcome.Kind)
	}
	if !strings.Contains(outcome.Reason, "example.com") {
		t.Errorf("skip reason %q should name the host", outcome.Reason)
	}
	if !strings.Contains(outcome.Reason, "unsupported") {
		t.Errorf("skip reason %q should say the repository is unsupported", outcome.Reason)
	}
}

func TestCheckMalformedDeclaredVersion(t *testing.T) {
	checker := NewChecker()

	pkg := PackageRecord{Name: "r-bad", Version: "not.a.version-1", URL: "https://cran.r-project.org/web/packages/bad"}
	outcome := checker.Check(context.Background(), pkg)

	if outcome.Kind != KindFailed {
		t.Fatalf("expected failed, got %s", outcome.Kind)
	}
	if outcome.Failure != FailVersion {
		t.Errorf("failure = %v, want FailVersion", outcome.Failure)
	}
}

func TestCheckServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	checker := NewChecker(WithRegistry(testRegistry(t, server.URL)))

	pkg := PackageRecord{Name: "r-foo", Version: "1.0-1", URL: server.URL}
	outcome := checker.Check(context.Background(), pkg)

	if outcome.Kind != KindFailed || outcome.Failure != FailServer {
		t.Fatalf("expected server failure, got %s/%v", outcome.Kind, outcome.Failure)
	}
	if !strings.Contains(outcome.Reason, "404") {
		t.Errorf("reason %q should carry the status code", outcome.Reason)
	}
}

func TestCheckNetworkError(t *testing.T) {
	// Start and immediately stop a server so the port refuses connections.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	registry := testRegistry(t, server.URL)
	serverURL := server.URL
	server.Close()

	checker := NewChecker(WithRegistry(registry))

	pkg := PackageRecord{Name: "r-foo", Version: "1.0-1", URL: serverURL}
	outcome := checker.Check(context.Background(), pkg)

	if outcome.Kind != KindFailed || outcome.Failure != FailNetwork {
		t.Fatalf("expected network failure, got %s/%v", outcome.Kind, outcome.Failure)
	}
}

func TestCheckParseFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>no table here</body></html>"))
	}))
	defer server.Close()

	checker := NewChecker(WithRegistry(testRegistry(t, server.URL)))

	pkg := PackageRecord{Name: "r-foo", Version: "1.0-1", URL: server.URL}
	outcome := checker.Check(context.Background(), pkg)

	if outcome.Kind != KindFailed || outcome.Failure != FailParse {
		t.Fatalf("expected parse failure, got %s/%v", outcome.Kind, outcome.Failure)
	}
}

func TestCheckMalformedUpstreamVersion(t *testing.T) {
	server := fixtureServer(t, "devel")
	checker := NewChecker(WithRegistry(testRegistry(t, server.URL)))

	pkg := PackageRecord{Name: "r-foo", Version: "1.0-1", URL: server.URL}
	outcome := checker.Check(context.Background(), pkg)

	// A non-numeric upstream version is a parse failure for this package,
	// never silently truncated or zero-filled.
	if outcome.Kind != KindFailed || outcome.Failure != FailParse {
		t.Fatalf("expected parse failure, got %s/%v", outcome.Kind, outcome.Failure)
	}
}

func TestCheckTimeoutIsNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write(cranPage("foo", "1.3"))
	}))
	defer server.Close()

	checker := NewChecker(
		WithRegistry(testRegistry(t, server.URL)),
		WithTimeout(20*time.Millisecond),
	)

	pkg := PackageRecord{Name: "r-foo", Version: "1.0-1", URL: server.URL}
	outcome := checker.Check(context.Background(), pkg)

	if outcome.Kind != KindFailed || outcome.Failure != FailNetwork {
		t.Fatalf("expected network failure on timeout, got %s/%v", outcome.Kind, outcome.Failure)
	}
}
