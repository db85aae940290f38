// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package main

import (
	"context"
	"io"
	"path/filepath"

	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"
	"github.com/scidaf/daf"
	"github.com/scidaf/daf/boltstore"
	"github.com/spf13/cobra"
)

// newDescribeCommand prints a dataset's axes, scalars, vectors, and
// matrices as tables, grounded on the teacher's cli.writeOut use of
// github.com/jedib0t/go-pretty/table.
func newDescribeCommand(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <path>",
		Short: "Describe a dataset's axes, scalars, vectors, and matrices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return describe(cmd.Context(), stdout, args[0])
		},
	}
	return cmd
}

func describe(ctx context.Context, stdout io.Writer, path string) error {
	store, err := boltstore.Open(path, filepath.Base(path))
	if err != nil {
		return err
	}
	defer store.Close()
	f := daf.NewReadOnly(store)

	if err := describeAxes(ctx, stdout, f); err != nil {
		return err
	}
	if err := describeScalars(ctx, stdout, f); err != nil {
		return err
	}
	return describeVectorsAndMatrices(ctx, stdout, f)
}

func newTable(stdout io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(stdout)
	t.SetTitle(title)
	t.Style().Format.Header = text.FormatDefault
	return t
}

func describeAxes(ctx context.Context, stdout io.Writer, f daf.Format) error {
	names, err := f.AxisNames(ctx)
	if err != nil {
		return err
	}
	t := newTable(stdout, "axes")
	t.AppendHeader(table.Row{"axis", "length"})
	for _, name := range names {
		n, err := f.AxisLength(ctx, name)
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{name, n})
	}
	t.Render()
	return nil
}

func describeScalars(ctx context.Context, stdout io.Writer, f daf.Format) error {
	names, err := f.ScalarNames(ctx)
	if err != nil {
		return err
	}
	t := newTable(stdout, "scalars")
	t.AppendHeader(table.Row{"name", "kind", "value"})
	for _, name := range names {
		s, err := f.GetScalar(ctx, name)
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{name, s.Kind.String(), s.Value})
	}
	t.Render()
	return nil
}

func describeVectorsAndMatrices(ctx context.Context, stdout io.Writer, f daf.Format) error {
	axisNames, err := f.AxisNames(ctx)
	if err != nil {
		return err
	}

	vt := newTable(stdout, "vectors")
	vt.AppendHeader(table.Row{"axis", "name", "kind"})
	for _, axis := range axisNames {
		names, err := f.VectorNames(ctx, axis)
		if err != nil {
			return err
		}
		for _, name := range names {
			v, err := f.GetVector(ctx, axis, name)
			if err != nil {
				return err
			}
			vt.AppendRow(table.Row{axis, name, v.Kind.String()})
		}
	}
	vt.Render()

	mt := newTable(stdout, "matrices")
	mt.AppendHeader(table.Row{"rows", "cols", "name", "kind", "shape"})
	for _, rows := range axisNames {
		for _, cols := range axisNames {
			names, err := f.MatrixNames(ctx, rows, cols)
			if err != nil {
				return err
			}
			for _, name := range names {
				m, err := f.GetMatrix(ctx, rows, cols, name, daf.RowMajor)
				if err != nil {
					return err
				}
				mt.AppendRow(table.Row{rows, cols, name, m.Layout.Kind.String(), m.Layout.Shape})
			}
		}
	}
	mt.Render()
	return nil
}
