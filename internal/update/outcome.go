// Package update defines the terminal classification of a package check.
package update

import (
	"fmt"

	"github.com/aurtools/aurrpkgs/internal/common/output"
)

// Kind classifies the outcome of a single package check.
// Exactly one outcome is produced per package per run.
type Kind int

const (
	// KindUpToDate means the declared version is not behind upstream
	KindUpToDate Kind = iota
	// KindOutdated means upstream published a newer version
	KindOutdated
	// KindSkipped means the package's repository has no registered profile.
	// This is an expected non-coverage signal, not an error.
	KindSkipped
	// KindFailed means the check failed for this package alone
	KindFailed
)

// String returns the kind's name for logging and tests.
func (k Kind) String() string {
	switch k {
	case KindUpToDate:
		return "up-to-date"
	case KindOutdated:
		return "outdated"
	case KindSkipped:
		return "skipped"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FailureKind categorizes a failed check.
type FailureKind int

const (
	// FailNone means the check did not fail
	FailNone FailureKind = iota
	// FailVersion means the declared version string is malformed
	FailVersion
	// FailNetwork means a transport-level failure or timeout
	FailNetwork
	// FailServer means the upstream returned a non-success HTTP status
	FailServer
	// FailParse means extraction or upstream normalization failed
	FailParse
)

// Outcome is the terminal result of checking one package.
type Outcome struct {
	// Kind is the outcome classification
	Kind Kind
	// Package is the AUR package name
	Package string
	// Declared is the cleaned AUR version (pkgrel stripped)
	Declared string
	// Upstream is the raw version text scraped from the repository page
	Upstream string
	// RepoName is the matched profile's display label
	RepoName string
	// Failure categorizes a failed check (FailNone otherwise)
	Failure FailureKind
	// Reason is the human-readable skip reason or failure detail
	Reason string
}

// UpToDate builds an up-to-date outcome for a package.
func UpToDate(pkg string) Outcome {
	return Outcome{Kind: KindUpToDate, Package: pkg}
}

// Outdated builds an outdated outcome carrying both version strings and
// the repository display name.
func Outdated(pkg, declared, upstream, repoName string) Outcome {
	return Outcome{
		Kind:     KindOutdated,
		Package:  pkg,
		Declared: declared,
		Upstream: upstream,
		RepoName: repoName,
	}
}

// Skipped builds a skipped outcome with the given reason.
func Skipped(pkg, reason string) Outcome {
	return Outcome{Kind: KindSkipped, Package: pkg, Reason: reason}
}

// Failed builds a failed outcome with the given category and detail.
func Failed(pkg string, failure FailureKind, reason string) Outcome {
	return Outcome{Kind: KindFailed, Package: pkg, Failure: failure, Reason: reason}
}

// Line renders the outcome as a self-contained report line.
// Up-to-date outcomes render nothing, so an empty result log means the
// whole batch is current.
func (o Outcome) Line() string {
	name := output.Sprint(output.Data, o.Package)

	switch o.Kind {
	case KindUpToDate:
		return ""

	case KindOutdated:
		return fmt.Sprintf("%s Package %s is outdated: %s (AUR) vs %s (%s)",
			output.InfoTag(), name,
			output.Sprint(output.Old, o.Declared),
			output.Sprint(output.New, o.Upstream),
			o.RepoName)

	case KindSkipped:
		return fmt.Sprintf("%s Package %s: %s%s",
			output.WarnTag(), name, o.Reason, output.Skipping())

	case KindFailed:
		return fmt.Sprintf("%s Package %s: %s%s",
			output.WarnTag(), name, o.failureDetail(), output.Skipping())

	default:
		return ""
	}
}

// failureDetail renders the failure category with its detail text.
func (o Outcome) failureDetail() string {
	detail := output.Sprint(output.Data, o.Reason)

	switch o.Failure {
	case FailVersion:
		return fmt.Sprintf("malformed version: %s", detail)
	case FailNetwork:
		return fmt.Sprintf("error while trying to connect to repository: %s", detail)
	case FailServer:
		return fmt.Sprintf("error while doing repository request: server returned %s", detail)
	case FailParse:
		return fmt.Sprintf("error while processing repository response: %s", detail)
	default:
		return detail
	}
}
