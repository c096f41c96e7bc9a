package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"twfold/internal/driver"
	"twfold/internal/rewrite"
	"twfold/internal/source"
)

var scanCmd = &cobra.Command{
	Use:   "scan [flags] <file|directory>",
	Short: "List every tw() call site as JSON",
	Long:  "Parse the sources and emit each occurrence of the target call with its position, without judging whether it folds. Useful for debugging what the rewriter sees.",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().String("target", "", "identifier to locate (default tw, or [target].name from twfold.toml)")
	scanCmd.Flags().StringSlice("variants", nil, "allowed variant names (unused by scan, accepted for symmetry)")
	scanCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

type callSitePayload struct {
	File        string `json:"file"`
	Line        uint32 `json:"line"`
	Col         uint32 `json:"col"`
	StartByte   uint32 `json:"start_byte"`
	EndByte     uint32 `json:"end_byte"`
	Args        int    `json:"args"`
	Text        string `json:"text"`
	Folds       bool   `json:"folds"`
	Replacement string `json:"replacement,omitempty"`
}

func runScan(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return err
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

	cfg, _, err := resolveRewriteConfig(cmd, baseDir)
	if err != nil {
		return err
	}

	fileSet := source.NewFileSetWithBase(baseDir)
	sites := make([]callSitePayload, 0, 16)

	for _, path := range files {
		fileID, err := fileSet.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		file := fileSet.Get(fileID)

		found, err := rewrite.Locate(cmd.Context(), file, cfg)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		mode := "relative"
		if fullPath {
			mode = "absolute"
		}
		displayPath := file.FormatPath(mode, fileSet.BaseDir())
		for _, site := range found {
			pos := file.Position(site.Span.Start)
			sites = append(sites, callSitePayload{
				File:        displayPath,
				Line:        pos.Line,
				Col:         pos.Col,
				StartByte:   site.Span.Start,
				EndByte:     site.Span.End,
				Args:        site.Args,
				Text:        site.Text,
				Folds:       site.Folds,
				Replacement: site.Replacement,
			})
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(sites)
}
