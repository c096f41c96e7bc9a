package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"twfold/internal/driver"
	"twfold/internal/observ"
	"twfold/internal/source"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [flags] <file|directory>",
	Short: "Fold static tw() calls into string literals",
	Long:  "Rewrite JS/TS/JSX sources, replacing every statically-resolvable tw() call with the composed class string. Without --write or --stdout nothing is modified.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRewrite,
}

func init() {
	rewriteCmd.Flags().Bool("write", false, "write rewritten files in place")
	rewriteCmd.Flags().Bool("stdout", false, "print the rewritten text to stdout (single file only)")
	rewriteCmd.Flags().Bool("sourcemap", false, "write a <file>.map.json position map next to each rewritten file")
	rewriteCmd.Flags().Bool("cache", false, "reuse results for unchanged files via the disk cache")
	rewriteCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	rewriteCmd.Flags().String("ui", "auto", "interactive progress view (auto|on|off)")
	rewriteCmd.Flags().String("target", "", "identifier to fold (default tw, or [target].name from twfold.toml)")
	rewriteCmd.Flags().StringSlice("variants", nil, "allowed variant names (default sm,md,lg,xl,2xl)")
	rewriteCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

func runRewrite(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	write, err := cmd.Flags().GetBool("write")
	if err != nil {
		return err
	}
	toStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return err
	}
	withSourcemap, err := cmd.Flags().GetBool("sourcemap")
	if err != nil {
		return err
	}
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
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
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	if write && toStdout {
		return fmt.Errorf("--write and --stdout are mutually exclusive")
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
		if toStdout {
			return fmt.Errorf("--stdout requires a single file argument")
		}
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

	timer := observ.NewTimer()
	phase := timer.Begin("rewrite")

	var (
		fs      *source.FileSet
		results []driver.FileResult
	)
	if shouldUseTUI(mode) && !toStdout && !quiet {
		fs, results, err = runRewriteWithUI(cmd.Context(), "twfold rewrite", baseDir, files, opts)
	} else {
		fs, results, err = driver.RewriteFiles(cmd.Context(), baseDir, files, opts)
	}
	if err != nil {
		return fmt.Errorf("rewrite failed: %w", err)
	}

	timer.End(phase, fmt.Sprintf("%d files", len(files)))

	printDiagnostics(cmd, fs, results, fullPath)

	if toStdout {
		r := results[0]
		if r.Bag.HasErrors() {
			return silentExit(cmd)
		}
		file := fs.Get(r.FileID)
		if r.Res != nil {
			_, _ = os.Stdout.Write(file.Restore(r.Res.Text))
		} else {
			_, _ = os.Stdout.Write(file.Restore(file.Content))
		}
		return nil
	}

	if write {
		wphase := timer.Begin("write")
		written, err := writeResults(fs, results, withSourcemap)
		if err != nil {
			return err
		}
		timer.End(wphase, fmt.Sprintf("%d files", written))
	}

	if !quiet {
		t := summarize(results)
		verb := "folded"
		if !write {
			verb = "would fold"
		}
		fmt.Fprintf(os.Stdout, "%s %d call sites in %d files (%d cached, %d skipped, %d failed)\n",
			verb, t.folded, t.changed, t.cached, t.skipped, t.failed)
	}
	if showTimings {
		fmt.Fprint(os.Stdout, timer.Summary())
	}

	if anyErrors(results) {
		return silentExit(cmd)
	}
	return nil
}

// writeResults persists every rewritten file in place. The normalization
// stripped on load (CRLF, BOM) is restored first, so lines the fold never
// touched come back byte-identical.
func writeResults(fs *source.FileSet, results []driver.FileResult, withSourcemap bool) (int, error) {
	written := 0
	for _, r := range results {
		if r.Res == nil || r.Bag.HasErrors() {
			continue
		}
		restored := fs.Get(r.FileID).Restore(r.Res.Text)
		if err := writeFileAtomic(r.Path, restored); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", r.Path, err)
		}
		if withSourcemap {
			if err := writeSourcemap(r); err != nil {
				return written, fmt.Errorf("failed to write sourcemap for %s: %w", r.Path, err)
			}
		}
		written++
	}
	return written, nil
}

func openCache(manifest *projectManifest) (*driver.DiskCache, error) {
	if manifest != nil && manifest.Config.Cache.Dir != "" {
		dir := manifest.Config.Cache.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(manifest.Root, dir)
		}
		return driver.OpenDiskCacheAt(dir)
	}
	return driver.OpenDiskCache("twfold")
}

// sourcemapPayload is the sidecar schema written next to rewritten files.
type sourcemapPayload struct {
	File     string           `json:"file"`
	Segments []segmentPayload `json:"segments"`
}

type segmentPayload struct {
	NewStart  uint32 `json:"new_start"`
	NewEnd    uint32 `json:"new_end"`
	OrigStart uint32 `json:"orig_start"`
	OrigEnd   uint32 `json:"orig_end"`
	Replaced  bool   `json:"replaced,omitempty"`
}

func writeSourcemap(r driver.FileResult) error {
	payload := sourcemapPayload{File: filepath.Base(r.Path)}
	for _, s := range r.Res.Map.Segments() {
		payload.Segments = append(payload.Segments, segmentPayload{
			NewStart:  s.NewStart,
			NewEnd:    s.NewEnd,
			OrigStart: s.OrigStart,
			OrigEnd:   s.OrigEnd,
			Replaced:  s.Replaced,
		})
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(r.Path+".map.json", append(data, '\n'))
}
