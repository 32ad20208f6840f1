// Package pipeline wires the file readers to graph construction and update.
//
// Construct streams the reference once, splitting each sequence with the
// variants recorded for it. With Precheck, the variant file's chromosome
// order is verified against the reference headers first, so an ordering
// problem is reported before any work is done.
package pipeline
