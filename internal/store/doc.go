// Package store provides file-based persistence for covrun run manifests.
//
// Manifests are serialised as indented JSON, one file per run, under
// <project>/.covrun/runs. Writes go through a temp file and a rename, so a
// reader never sees a partial manifest. All methods are concurrency-safe via
// internal locking.
//
// The package also computes the BLAKE2b digest recorded for each profile.
package store
