// Package testutil provides testing utilities for astrocache.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random sky positions and computing
// exact spatial query results by brute force.
//
// # Random Sky Positions
//
//	rng := testutil.NewRNG(seed)
//	lons, lats := rng.SkyPoints(10_000)           // uniform on the sphere
//	lons, lats = rng.Cluster(180, 0, 0.5, 1_000)  // around (180°, 0°)
//
// # Exact Queries (Ground Truth)
//
//	want := testutil.BruteForceRadius(lons, lats, lon, lat, 0.1)
//	nn := testutil.BruteForceNearest(lons, lats, lon, lat, 10)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(want, got)
package testutil
