// Package profile provides directory scanning and aggregation.
//
// It walks directory trees using fastwalk for parallel traversal,
// aggregates file statistics by extension, and optionally groups
// files by content digest to detect duplicates.
package profile
