// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"crosscheck/internal/config"
	"crosscheck/internal/paths"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Init writes the built-in configuration, including the legacy, whitespace
and advanced profiles, to the configuration directory
($CROSSCHECK_CONFIG_DIR, or the XDG config home).

Examples:
  # Create the default configuration file
  crosscheck init

  # Write it somewhere else, replacing an existing file
  crosscheck init -o ./crosscheck.yaml -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", "", "Output file path (default: the configuration directory)")
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing configuration file")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = paths.GetConfigFile()
	}
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}
	if err := config.WriteDefault(outputPath, force); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	return nil
}
