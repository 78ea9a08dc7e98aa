// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"

	"crosscheck/internal/version"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crosscheck",
		Short: "Check documents against a reference table",
		Long: `crosscheck looks for the values of a reference table (phone numbers,
e-mail addresses, names, agencies or any chosen columns) in a set of
documents and reports every hit.

Supported documents: .txt, .html, .pdf, .xlsx/.xlsm.
Supported reference tables: .xlsx/.xlsm, .csv, .tsv.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewMatchCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}
