package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"twfold/internal/diag"
	"twfold/internal/diagfmt"
	"twfold/internal/driver"
	"twfold/internal/source"
)

// printDiagnostics pretty-prints every non-empty bag, one header per file.
func printDiagnostics(cmd *cobra.Command, fs *source.FileSet, results []driver.FileResult, fullPath bool) {
	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	opts := diagfmt.PrettyOpts{
		Color:    useColor(cmd),
		PathMode: pathMode,
	}

	first := true
	for _, r := range results {
		if r.Bag.Len() == 0 {
			continue
		}
		if !first {
			fmt.Fprintln(os.Stdout)
		}
		first = false
		diagfmt.Pretty(os.Stdout, r.Bag, fs, opts)
	}
}

type runTotals struct {
	folded  int
	changed int
	cached  int
	skipped int
	failed  int
}

func summarize(results []driver.FileResult) runTotals {
	var t runTotals
	for _, r := range results {
		if r.Bag.HasErrors() {
			t.failed++
			continue
		}
		if r.Skipped {
			t.skipped++
			continue
		}
		if r.CacheHit {
			t.cached++
		}
		if r.Res != nil {
			t.changed++
			t.folded += r.Res.Folded
		}
	}
	return t
}

func anyErrors(results []driver.FileResult) bool {
	for _, r := range results {
		if r.Bag.HasErrors() {
			return true
		}
	}
	return false
}

// mergeBags flattens per-file bags into one, for single-document formats.
func mergeBags(results []driver.FileResult, max int) *diag.Bag {
	merged := diag.NewBag(max)
	for _, r := range results {
		merged.Merge(r.Bag)
	}
	return merged
}

func anyWarnings(results []driver.FileResult) bool {
	for _, r := range results {
		if r.Bag.HasWarnings() {
			return true
		}
	}
	return false
}

// writeFileAtomic replaces path via a temp file in the same directory, so a
// crash mid-write never leaves a truncated source file behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".twfold-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmp, info.Mode())
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// silentExit makes the command fail without repeating anything: the
// diagnostics are already printed, only the exit code remains.
func silentExit(cmd *cobra.Command) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return fmt.Errorf("")
}
