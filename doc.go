// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package daf provides a uniform, typed data container for scientific
// tabular/array data organized along named axes.
//
// A Dataset ("daf data") stores scalars (name -> single value), vectors
// (axis, name -> length-matched sequence) and matrices ((rows-axis,
// cols-axis, name) -> 2-D array with an explicit row-major or
// column-major layout, dense or sparse). Every concrete backend
// implements the same Format contract (format.go); Chain (chain.go)
// overlays a sequence of backends into a single logical dataset with
// last-writer-wins semantics, View (view.go) renames/reprojects a
// read-only subset, and ReadOnly (readonly.go) forbids mutation
// statically. The query package (query/) evaluates a small expression
// language against any Format.
package daf
