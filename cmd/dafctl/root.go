// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package main

import (
	"io"

	"github.com/spf13/cobra"
)

// NewRootCommand assembles dafctl's command tree, grounded on the
// teacher's cmd.NewRootCommand wiring (a cobra root plus one
// subcommand per concern, a shared --config persistent flag read
// through viper).
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	rc := &cobra.Command{
		Use:   "dafctl",
		Short: "dafctl inspects and queries daf datasets from the command line.",
		Long: `dafctl is a small command-line client for bolt-backed daf datasets.

It can describe a dataset's contents, evaluate one query expression
against it, or open an interactive query console.`,
	}
	rc.PersistentFlags().StringP("config", "c", "", "Configuration file to read from.")

	rc.AddCommand(newConfigCommand(stdout))
	rc.AddCommand(newDescribeCommand(stdout))
	rc.AddCommand(newQueryCommand(stdout))
	rc.AddCommand(newReplCommand(stdin, stdout, stderr))

	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}
