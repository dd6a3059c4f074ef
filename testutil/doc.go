// Package testutil provides testing utilities for csvgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating delimited-text tables with a
// deterministic, seedable source of randomness.
//
// # Table Generation
//
//	rng := testutil.NewRNG(seed)
//	rows := rng.SortedRows(10_000)       // ids ascending with gaps
//	data := testutil.TableBytes(rows)    // header + one line per row
//	err := testutil.WriteTable(path, rows)
package testutil
