// Package update implements the update-detection engine for AUR R packages.
//
// The package implements:
//   - Version normalization and integer-tuple comparison
//   - A registry of source-repository extraction profiles (built-in CRAN
//     and Bioconductor, extensible via a TOML profiles file)
//   - Page extraction via two-stage regexes or CSS selector/XPath
//   - The per-package fetch/extract/compare pipeline with its error taxonomy
//   - A fixed worker pool distributing checks with shared progress tracking
//
// Every per-package error degrades to a Skipped or Failed outcome at the
// checker boundary; a run always completes and reports exactly one outcome
// per input package.
//
// Usage:
//
//	checker := update.NewChecker()
//	dispatcher := update.NewDispatcher(checker)
//	report := dispatcher.RunAll(ctx, pkgs)
//	if report.AllCurrent() {
//	    // everything is up to date
//	}
package update
