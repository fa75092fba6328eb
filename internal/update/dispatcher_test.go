package update

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// mixedFixtureServer serves per-package CRAN pages: /pkg/<name> responds
// with the upstream version mapped for that name.
func mixedFixtureServer(t *testing.T, upstream map[string]string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/pkg/")
		version, ok := upstream[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(cranPage(name, version))
	}))
	t.Cleanup(server.Close)
	return server
}

func recordsFor(serverURL string, declared map[string]string) []PackageRecord {
	names := make([]string, 0, len(declared))
	for name := range declared {
		names = append(names, name)
	}
	sort.Strings(names)

	pkgs := make([]PackageRecord, 0, len(names))
	for _, name := range names {
		pkgs = append(pkgs, PackageRecord{
			Name:    name,
			Version: declared[name],
			URL:     serverURL + "/pkg/" + name,
		})
	}
	return pkgs
}

func TestRunAllProgressReachesTotal(t *testing.T) {
	upstream := map[string]string{}
	declared := map[string]string{}
	for i := 0; i < 17; i++ {
		name := fmt.Sprintf("r-pkg%02d", i)
		upstream[name] = "1.1"
		declared[name] = "1.0-1"
	}

	server := mixedFixtureServer(t, upstream)
	checker := NewChecker(WithRegistry(testRegistry(t, server.URL)))

	for _, workers := range []int{1, 2, 4, 8, 25} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			var last int
			dispatcher := NewDispatcher(checker,
				WithWorkers(workers),
				WithProgress(func(done, total int) {
					if done != last+1 {
						t.Errorf("progress jumped from %d to %d", last, done)
					}
					if done > total {
						t.Errorf("progress %d exceeds total %d", done, total)
					}
					last = done
				}),
			)

			report := dispatcher.RunAll(context.Background(), recordsFor(server.URL, declared))

			if report.Processed != 17 {
				t.Errorf("processed = %d, want 17", report.Processed)
			}
			if len(report.Outcomes) != 17 {
				t.Errorf("outcomes = %d, want 17", len(report.Outcomes))
			}
		})
	}
}

func TestRunAllMoreWorkersThanPackages(t *testing.T) {
	upstream := map[string]string{"r-solo": "2.0"}
	declared := map[string]string{"r-solo": "1.0-1"}

	server := mixedFixtureServer(t, upstream)
	checker := NewChecker(WithRegistry(testRegistry(t, server.URL)))
	dispatcher := NewDispatcher(checker, WithWorkers(16))

	report := dispatcher.RunAll(context.Background(), recordsFor(server.URL, declared))

	// Excess workers get empty chunks and must finish without error.
	if report.Processed != 1 {
		t.Errorf("processed = %d, want 1", report.Processed)
	}
	if len(report.Lines) != 1 {
		t.Errorf("lines = %d, want 1 outdated line", len(report.Lines))
	}
}

func TestRunAllEmptyBatch(t *testing.T) {
	checker := NewChecker()
	dispatcher := NewDispatcher(checker, WithWorkers(4))

	report := dispatcher.RunAll(context.Background(), nil)

	if report.Processed != 0 || !report.AllCurrent() {
		t.Errorf("empty batch: processed=%d allCurrent=%v", report.Processed, report.AllCurrent())
	}
}

func TestRunAllUpToDateBatchYieldsEmptyLog(t *testing.T) {
	upstream := map[string]string{}
	declared := map[string]string{}
	for i := 0; i < 6; i++ {
		name := fmt.Sprintf("r-cur%d", i)
		upstream[name] = "1.2"
		declared[name] = "1.2-3"
	}

	server := mixedFixtureServer(t, upstream)
	checker := NewChecker(WithRegistry(testRegistry(t, server.URL)))
	dispatcher := NewDispatcher(checker, WithWorkers(3))

	report := dispatcher.RunAll(context.Background(), recordsFor(server.URL, declared))

	if !report.AllCurrent() {
		t.Errorf("expected empty log, got %d lines", len(report.Lines))
	}
	if report.Processed != 6 {
		t.Errorf("processed = %d, want 6", report.Processed)
	}
}

func TestRunAllMixedOutcomes(t *testing.T) {
	upstream := map[string]string{
		"r-old": "2.0",
		"r-new": "1.0",
	}
	declared := map[string]string{
		"r-old":  "1.0-1",
		"r-new":  "1.0-1",
		"r-gone": "1.0-1", // fixture server answers 404
	}

	server := mixedFixtureServer(t, upstream)
	checker := NewChecker(WithRegistry(testRegistry(t, server.URL)))
	dispatcher := NewDispatcher(checker, WithWorkers(2))

	pkgs := recordsFor(server.URL, declared)
	// One package on an unregistered host: skipped, still counted.
	pkgs = append(pkgs, PackageRecord{Name: "r-alien", Version: "1.0-1", URL: "https://example.com/alien"})

	report := dispatcher.RunAll(context.Background(), pkgs)

	if report.Processed != 4 {
		t.Errorf("processed = %d, want 4", report.Processed)
	}

	kinds := map[string]Kind{}
	for _, o := range report.Outcomes {
		kinds[o.Package] = o.Kind
	}

	want := map[string]Kind{
		"r-old":   KindOutdated,
		"r-new":   KindUpToDate,
		"r-gone":  KindFailed,
		"r-alien": KindSkipped,
	}
	for pkg, kind := range want {
		if kinds[pkg] != kind {
			t.Errorf("%s: outcome = %s, want %s", pkg, kinds[pkg], kind)
		}
	}

	// Up-to-date packages produce no line; everything else does.
	if len(report.Lines) != 3 {
		t.Errorf("lines = %d, want 3", len(report.Lines))
	}
}

func TestRunAllIdempotentOverFrozenFixtures(t *testing.T) {
	upstream := map[string]string{
		"r-a": "1.5",
		"r-b": "1.0",
		"r-c": "3.0",
	}
	declared := map[string]string{
		"r-a": "1.2-1",
		"r-b": "1.0-2",
		"r-c": "2.9-1",
	}

	server := mixedFixtureServer(t, upstream)
	checker := NewChecker(WithRegistry(testRegistry(t, server.URL)))
	dispatcher := NewDispatcher(checker, WithWorkers(3))

	pkgs := recordsFor(server.URL, declared)

	first := dispatcher.RunAll(context.Background(), pkgs)
	second := dispatcher.RunAll(context.Background(), pkgs)

	// The same frozen input yields the same set of lines; arrival order
	// across workers may differ, so compare sorted.
	a := append([]string(nil), first.Lines...)
	b := append([]string(nil), second.Lines...)
	sort.Strings(a)
	sort.Strings(b)

	if len(a) != len(b) {
		t.Fatalf("runs disagree: %d vs %d lines", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("line %d differs:\n  %q\n  %q", i, a[i], b[i])
		}
	}
}

func TestRunAllCounterProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	// Property: the final counter equals N for any pool size W >= 1,
	// including W > N. Unsupported hosts keep the pipeline offline.
	properties.Property("final counter equals package count", prop.ForAll(
		func(n, workers int) bool {
			pkgs := make([]PackageRecord, n)
			for i := range pkgs {
				pkgs[i] = PackageRecord{
					Name:    fmt.Sprintf("r-p%d", i),
					Version: "1.0-1",
					URL:     "https://unsupported.example.org/p",
				}
			}

			dispatcher := NewDispatcher(NewChecker(), WithWorkers(workers))
			report := dispatcher.RunAll(context.Background(), pkgs)

			return report.Processed == n && len(report.Outcomes) == n
		},
		gen.IntRange(0, 40),
		gen.IntRange(1, 12),
	))

	properties.TestingRun(t)
}
