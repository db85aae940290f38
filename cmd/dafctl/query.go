// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/scidaf/daf"
	"github.com/scidaf/daf/boltstore"
	"github.com/scidaf/daf/query"
	"github.com/spf13/cobra"
)

const (
	replPrompt = "daf> "
	replExit   = "quit"
)

// newQueryCommand evaluates one query expression against a dataset
// (spec.md §4.7/C8) and prints the result.
func newQueryCommand(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <path> <expr>",
		Short: "Evaluate one query expression against a dataset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := boltstore.Open(args[0], filepath.Base(args[0]))
			if err != nil {
				return err
			}
			defer store.Close()

			res, err := query.Evaluate(cmd.Context(), daf.NewReadOnly(store), args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, formatResult(res))
			return nil
		},
	}
	return cmd
}

// newReplCommand opens an interactive query console against a dataset,
// grounded on the teacher's cli.CLICommand.Run readline loop.
func newReplCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl <path>",
		Short: "Open an interactive query console against a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd.Context(), args[0], stdin, stdout, stderr)
		},
	}
	return cmd
}

func runRepl(ctx context.Context, path string, stdin io.Reader, stdout, stderr io.Writer) error {
	store, err := boltstore.Open(path, filepath.Base(path))
	if err != nil {
		return err
	}
	defer store.Close()
	f := daf.NewReadOnly(store)

	stdinCloser, ok := stdin.(io.ReadCloser)
	if !ok {
		stdinCloser = io.NopCloser(stdin)
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 replPrompt,
		DisableAutoSaveHistory: true,
		Stdin:                  stdinCloser,
		Stdout:                 stdout,
		Stderr:                 stderr,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == replExit {
			return nil
		}

		res, err := query.Evaluate(ctx, f, line)
		if err != nil {
			fmt.Fprintln(stderr, "error:", err)
			continue
		}
		fmt.Fprintln(stdout, formatResult(res))
	}
}

func formatResult(res query.Result) string {
	switch res.Kind {
	case query.ResultScalar:
		return fmt.Sprintf("%v", res.Scalar)
	case query.ResultVector:
		return fmt.Sprintf("%v", res.Vector)
	case query.ResultMatrix:
		return fmt.Sprintf("%s matrix %v: %v", res.Matrix.Layout.Major, res.Matrix.Layout.Shape, res.Matrix.Dense)
	default:
		return "<unknown result>"
	}
}
