// Package diff implements the line-level comparison engines.
//
// Lines computes a minimal edit script between two line sequences with Myers'
// divide and conquer search; consecutive single-line edits are coalesced into
// Item hunks. Lines3 diffs local and remote against a common base and merges
// the two hunk streams into classified Item3 blocks. Merge and Merge3 apply
// the chosen actions to produce merged content.
//
// Everything in this package is pure and safe for concurrent use.
package diff
