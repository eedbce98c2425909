// Package testutil provides testing utilities for docval.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Documents
//
//	rng := testutil.NewRNG(seed)
//	v := rng.Value(testutil.DefaultValueOptions())
//
// Generated documents mix every value kind, spread integers across the
// pickle size classes and keep dict keys unique.
package testutil
