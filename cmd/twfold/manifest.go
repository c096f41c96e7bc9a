package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"twfold/internal/rewrite"
)

// projectManifest is an optional twfold.toml discovered upward from the
// rewrite target. Everything in it has a default, so its absence is fine.
type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Target targetConfig `toml:"target"`
	Cache  cacheConfig  `toml:"cache"`
}

type targetConfig struct {
	Name     string   `toml:"name"`
	Variants []string `toml:"variants"`
}

type cacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

func findTwfoldToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "twfold.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findTwfoldToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	var cfg projectConfig
	if _, err := toml.DecodeFile(manifestPath, &cfg); err != nil {
		return nil, true, fmt.Errorf("%s: failed to parse TOML: %w", manifestPath, err)
	}
	if name := cfg.Target.Name; name != "" && strings.TrimSpace(name) == "" {
		return nil, true, fmt.Errorf("%s: [target].name must not be blank", manifestPath)
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// resolveRewriteConfig builds the engine configuration with the precedence
// flag > manifest > default. startDir anchors the manifest discovery.
func resolveRewriteConfig(cmd *cobra.Command, startDir string) (rewrite.Config, *projectManifest, error) {
	cfg := rewrite.DefaultConfig()

	manifest, found, err := loadProjectManifest(startDir)
	if err != nil {
		return cfg, nil, err
	}
	if found {
		if name := strings.TrimSpace(manifest.Config.Target.Name); name != "" {
			cfg.TargetName = name
		}
		if manifest.Config.Target.Variants != nil {
			cfg.AllowedVariants = manifest.Config.Target.Variants
		}
	}

	if cmd.Flags().Changed("target") {
		name, err := cmd.Flags().GetString("target")
		if err != nil {
			return cfg, manifest, err
		}
		if strings.TrimSpace(name) == "" {
			return cfg, manifest, fmt.Errorf("--target must not be blank")
		}
		cfg.TargetName = strings.TrimSpace(name)
	}
	if cmd.Flags().Changed("variants") {
		variants, err := cmd.Flags().GetStringSlice("variants")
		if err != nil {
			return cfg, manifest, err
		}
		cfg.AllowedVariants = variants
	}

	return cfg, manifest, nil
}
