// Package graph is the variation graph store: nodes keyed by their
// content-addressed ID, with right/left adjacency kept mutually consistent.
//
// The store has a single writer during construction and takes no locks.
package graph
