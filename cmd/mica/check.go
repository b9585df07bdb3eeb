package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mica/internal/astjson"
	"mica/internal/diag"
	"mica/internal/diagfmt"
	"mica/internal/driver"
	"mica/internal/project"
	"mica/internal/sema"
	"mica/internal/source"
	"mica/internal/version"
)

var errCheckFailed = errors.New("check failed")

var (
	checkFormat   string
	checkUI       string
	checkPolicy   string
	checkJobs     int
	checkMaxDiags int
	checkTiming   bool
	checkNoCache  bool
	checkNoNotes  bool
)

func init() {
	checkCmd.Flags().StringVar(&checkFormat, "format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().StringVar(&checkUI, "ui", "auto", "interactive progress view (auto|on|off)")
	checkCmd.Flags().StringVar(&checkPolicy, "policy", "", "allocation policy override (aggressive|conservative)")
	checkCmd.Flags().IntVar(&checkJobs, "jobs", 0, "parallel workers (0 = GOMAXPROCS)")
	checkCmd.Flags().IntVar(&checkMaxDiags, "max-diagnostics", 0, "diagnostics cap per unit")
	checkCmd.Flags().BoolVar(&checkTiming, "timing", false, "report per-unit phase timings")
	checkCmd.Flags().BoolVar(&checkNoCache, "no-cache", false, "skip the on-disk result cache")
	checkCmd.Flags().BoolVar(&checkNoNotes, "no-notes", false, "hide secondary notes")
}

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Analyze program units and report diagnostics",
	Long: `Check runs semantic analysis over every unit under the given path
(default "."). Units are JSON-encoded program trees produced by an
upstream frontend; mica ships no parser of its own. Analysis settings
come from the nearest mica.toml, overridable per flag.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "."
		if len(args) == 1 {
			target = args[0]
		}
		return runCheck(cmd, target)
	},
}

func runCheck(cmd *cobra.Command, target string) error {
	switch checkFormat {
	case "pretty", "json":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", checkFormat)
	}
	mode, err := readUIMode(checkUI)
	if err != nil {
		return err
	}

	opts, err := buildOptions(target)
	if err != nil {
		return err
	}

	var (
		fset    *source.FileSet
		results []driver.UnitResult
	)
	useTUI := shouldUseTUI(mode) && checkFormat == "pretty"
	if useTUI {
		files, err := driver.ListSourceFiles(target)
		if err != nil {
			return err
		}
		fset, results, err = runCheckWithUI(cmd.Context(), target, files, opts)
		if err != nil {
			return err
		}
	} else {
		fset, results, err = driver.CheckDir(contextOrBackground(cmd), target, opts)
		if err != nil {
			return err
		}
	}

	merged, ok := driver.MergeResults(results)
	if err := render(cmd, merged, fset); err != nil {
		return err
	}
	if !ok {
		return errCheckFailed
	}
	return nil
}

// buildOptions resolves mica.toml for the target and applies flag overrides.
func buildOptions(target string) (driver.Options, error) {
	startDir := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		startDir = filepath.Dir(target)
	}
	cfg, _, err := project.LoadNearest(startDir)
	if err != nil {
		return driver.Options{}, err
	}

	policy := cfg.Analysis.Policy
	if checkPolicy != "" {
		policy = checkPolicy
	}
	var allocPolicy sema.AllocationPolicy
	switch policy {
	case project.PolicyAggressive:
		allocPolicy = sema.PolicyAggressive
	case project.PolicyConservative:
		allocPolicy = sema.PolicyConservative
	default:
		return driver.Options{}, fmt.Errorf("unknown policy %q (expected aggressive|conservative)", policy)
	}

	opts := driver.Options{
		Policy:         allocPolicy,
		StackLimit:     cfg.Analysis.StackLimit,
		SIMDWidth:      cfg.Analysis.SIMDWidth,
		MaxDiagnostics: cfg.Analysis.MaxDiagnostics,
		Jobs:           cfg.Analysis.Jobs,
		Timing:         checkTiming,
		ToolVersion:    version.Plain,
		Frontend:       astjson.Frontend,
	}
	if checkJobs > 0 {
		opts.Jobs = checkJobs
	}
	if checkMaxDiags > 0 {
		opts.MaxDiagnostics = checkMaxDiags
	}
	if !checkNoCache {
		// A broken cache never blocks analysis.
		if cache, err := driver.OpenDiskCache("mica"); err == nil {
			opts.Cache = cache
		}
	}
	return opts, nil
}

func render(cmd *cobra.Command, merged *diag.Bag, fset *source.FileSet) error {
	out := cmd.OutOrStdout()
	if checkFormat == "json" {
		return diagfmt.JSON(out, merged, fset, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     !checkNoNotes,
		})
	}
	popts := diagfmt.PrettyOpts{
		Color:       colorEnabled(),
		ShowNotes:   !checkNoNotes,
		ShowPreview: true,
	}
	diagfmt.Pretty(out, merged, fset, popts)
	diagfmt.Summary(out, merged, popts)
	return nil
}

func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
