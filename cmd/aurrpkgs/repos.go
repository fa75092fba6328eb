package main

import (
	"fmt"
	"os"

	"github.com/aurtools/aurrpkgs/internal/common/config"
	"github.com/aurtools/aurrpkgs/internal/common/logger"
	"github.com/aurtools/aurrpkgs/internal/common/output"
	"github.com/aurtools/aurrpkgs/internal/update"
	"github.com/spf13/cobra"
)

// reposProfiles points at an extra profiles TOML file
var reposProfiles string

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List supported source repositories",
	Long: `List the source-repository profiles the checker knows about: the
built-in ones (CRAN, Bioconductor) plus any loaded from the profiles file.`,
	Run: runRepos,
}

func init() {
	reposCmd.Flags().StringVar(&reposProfiles, "profiles", "", "Path to extra repository profiles (TOML)")

	rootCmd.AddCommand(reposCmd)
}

func runRepos(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading config: %v", err)
		os.Exit(1)
	}

	if reposProfiles == "" {
		reposProfiles = cfg.Check.ProfilesPath
	}

	registry, err := update.NewRegistryWithExtras(reposProfiles)
	if err != nil {
		logger.Error("loading repository profiles: %v", err)
		os.Exit(1)
	}

	output.Header.Println("Supported source repositories")
	fmt.Println()

	for _, p := range registry.Profiles() {
		recipe := "regex"
		switch {
		case p.Selector != "":
			recipe = "css selector"
		case p.XPath != "":
			recipe = "xpath"
		}

		fmt.Printf("  %s  %s (%s)\n",
			output.Sprint(output.Data, p.Name),
			p.Domain,
			output.Sprint(output.Dim, recipe))
	}

	fmt.Println()
	output.Info.Printf("Total: %d profile(s)\n", registry.Len())
}
