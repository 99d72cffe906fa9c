// Package snapshot persists and restores point-in-time market state,
// bounding journal replay on restart.
package snapshot
