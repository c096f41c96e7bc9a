package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"twfold/internal/diagfmt"
	"twfold/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file|directory>",
	Short: "Verify that every tw() call folds cleanly, without writing",
	Long:  "Run the rewrite as a dry run and report every call site that would be left untouched. Intended for CI.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|sarif)")
	checkCmd.Flags().Bool("strict", false, "treat warnings as errors")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Bool("cache", false, "reuse results for unchanged files via the disk cache")
	checkCmd.Flags().String("target", "", "identifier to fold (default tw, or [target].name from twfold.toml)")
	checkCmd.Flags().StringSlice("variants", nil, "allowed variant names (default sm,md,lg,xl,2xl)")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

func runCheck(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	strict, err := cmd.Flags().GetBool("strict")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return err
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	switch format {
	case "pretty", "json", "sarif":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	st, err := os.Stat(targetPath)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}

	var (
		baseDir string
		files   []string
	)
	if st.IsDir() {
		baseDir = targetPath
		files, err = driver.ListSourceFiles(targetPath)
		if err != nil {
			return fmt.Errorf("failed to list source files: %w", err)
		}
	} else {
		baseDir = filepath.Dir(targetPath)
		files = []string{targetPath}
	}

	cfg, manifest, err := resolveRewriteConfig(cmd, baseDir)
	if err != nil {
		return err
	}

	opts := driver.Options{
		Config:         cfg,
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
	}
	if useCache || (manifest != nil && manifest.Config.Cache.Enabled) {
		opts.Cache, err = openCache(manifest)
		if err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
	}

	fs, results, err := driver.RewriteFiles(cmd.Context(), baseDir, files, opts)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	switch format {
	case "pretty":
		printDiagnostics(cmd, fs, results, fullPath)
		if !quiet {
			t := summarize(results)
			fmt.Fprintf(os.Stdout, "checked %d files: %d call sites fold, %d failed\n",
				len(files), t.folded, t.failed)
		}
	case "json":
		output := make(map[string]diagfmt.DiagnosticsOutput, len(results))
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     true,
		}
		for _, r := range results {
			if r.Bag.Len() == 0 {
				continue
			}
			displayPath := r.Path
			if f, ok := fs.GetByPath(r.Path); ok {
				mode := "relative"
				if fullPath {
					mode = "absolute"
				}
				displayPath = f.FormatPath(mode, fs.BaseDir())
			}
			output[displayPath] = diagfmt.BuildDiagnosticsOutput(r.Bag, fs, jsonOpts)
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return fmt.Errorf("failed to encode diagnostics output: %w", err)
		}
	case "sarif":
		merged := mergeBags(results, maxDiagnostics)
		meta := diagfmt.SarifRunMeta{
			ToolName:    "twfold",
			ToolVersion: "0.1.0",
		}
		if err := diagfmt.Sarif(os.Stdout, merged, fs, meta); err != nil {
			return fmt.Errorf("failed to encode SARIF output: %w", err)
		}
	}

	if anyErrors(results) || (strict && anyWarnings(results)) {
		return silentExit(cmd)
	}
	return nil
}
