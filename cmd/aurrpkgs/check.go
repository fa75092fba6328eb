package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aurtools/aurrpkgs/internal/aur"
	"github.com/aurtools/aurrpkgs/internal/common/config"
	"github.com/aurtools/aurrpkgs/internal/common/logger"
	"github.com/aurtools/aurrpkgs/internal/common/output"
	"github.com/aurtools/aurrpkgs/internal/update"
	"github.com/spf13/cobra"
)

var (
	// checkWorkers overrides the worker pool size (0 = one per CPU)
	checkWorkers int
	// checkTimeout overrides the per-fetch timeout in seconds
	checkTimeout int
	// checkProfiles points at an extra profiles TOML file
	checkProfiles string
)

var checkCmd = &cobra.Command{
	Use:   "check <user> [user...]",
	Short: "Check a maintainer's AUR R packages for upstream updates",
	Long: `Query the AUR for every R package maintained by the given user(s) and
compare each package's version against the version published by its source
repository (CRAN, Bioconductor, or any profile from the profiles file).

Examples:
  aurrpkgs check alice                Check packages of user alice
  aurrpkgs check alice bob            Check several maintainers
  aurrpkgs check --workers 8 alice    Use a fixed worker pool size
  aurrpkgs check --timeout 10 alice   Bound each page fetch to 10 seconds`,
	Args: cobra.MinimumNArgs(1),
	Run:  runCheck,
}

func init() {
	checkCmd.Flags().IntVar(&checkWorkers, "workers", 0, "Worker pool size (default: number of CPUs)")
	checkCmd.Flags().IntVar(&checkTimeout, "timeout", 0, "Per-request timeout in seconds")
	checkCmd.Flags().StringVar(&checkProfiles, "profiles", "", "Path to extra repository profiles (TOML)")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading config: %v", err)
		os.Exit(1)
	}

	// Flags override the config file
	if checkWorkers != 0 {
		cfg.Check.Workers = checkWorkers
	}
	if checkTimeout != 0 {
		cfg.Check.TimeoutSeconds = checkTimeout
	}
	if checkProfiles == "" {
		checkProfiles = cfg.Check.ProfilesPath
	}

	registry, err := update.NewRegistryWithExtras(checkProfiles)
	if err != nil {
		logger.Error("loading repository profiles: %v", err)
		os.Exit(1)
	}

	retry := update.DefaultRetryConfig()
	retry.Timeout = cfg.Check.Timeout()
	retry.MaxRetries = cfg.Check.Retries

	checker := update.NewChecker(
		update.WithRegistry(registry),
		update.WithHTTPClient(update.NewHTTPClientWithConfig(retry)),
	)

	opts := []update.DispatcherOption{update.WithWorkers(cfg.Check.Workers)}
	if !quiet {
		opts = append(opts, update.WithProgress(printProgress))
	}
	dispatcher := update.NewDispatcher(checker, opts...)

	client := aur.NewClient()
	if cfg.AUR.URL != "" {
		client.BaseURL = cfg.AUR.URL
	}

	ctx := context.Background()
	hadErrors := false

	for _, user := range args {
		fmt.Printf("%s Checking R packages for user %s\n",
			output.InfoTag(), output.Sprint(output.Data, user))

		if err := checkUser(ctx, client, dispatcher, user); err != nil {
			hadErrors = true
			fmt.Printf("%s %v%s\n", output.ErrorTag(), err, output.Skipping())
		}

		fmt.Println()
	}

	fmt.Printf("%s Job done\n", output.OKTag())

	if hadErrors {
		os.Exit(1)
	}
}

// checkUser queries the AUR for one maintainer and runs the update check
// across all their R packages.
func checkUser(ctx context.Context, client *aur.Client, dispatcher *update.Dispatcher, user string) error {
	pkgs, err := client.RPackages(ctx, user)
	if err != nil {
		return err
	}

	report := dispatcher.RunAll(ctx, pkgs)

	if !quiet {
		output.Println(output.OK, "done")
	}

	if report.AllCurrent() {
		fmt.Printf("%s All AUR R packages of user %s are up-to-date\n",
			output.OKTag(), output.Sprint(output.Data, user))
		return nil
	}

	for _, line := range report.Lines {
		fmt.Println(line)
	}

	return nil
}

// printProgress re-renders the shared progress line. It runs under the
// dispatcher's lock, so concurrent workers never produce overlapping text.
// The final package ends the line with a space so the "done" marker joins it.
func printProgress(done, total int) {
	end := "\r"
	if done == total {
		end = " "
	}
	fmt.Printf("%s Processing package %s/%s...%s",
		output.InfoTag(),
		output.Sprintf(output.Data, "%d", done),
		output.Sprintf(output.Data, "%d", total),
		end)
}
