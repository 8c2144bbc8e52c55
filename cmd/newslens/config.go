package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/newslens/internal/config"
)

// resolveConfig builds the effective configuration. Explicit flags beat
// environment secrets, which beat the config file; defaults fill the rest.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg config.Config

	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}
	cfg.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser, _ = flags.GetBool("use-browser")
	}
	if flags.Changed("taxonomy") {
		cfg.Taxonomy, _ = flags.GetString("taxonomy")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("addr") {
		cfg.Addr, _ = flags.GetString("addr")
	}
	if flags.Changed("trend-source") {
		cfg.TrendSource, _ = flags.GetString("trend-source")
	}
	if flags.Changed("sources") {
		cfg.Sources, _ = flags.GetStringSlice("sources")
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
