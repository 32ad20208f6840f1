// Package graphio persists and renders variation graphs.
//
//   - msgpack and JSON carry the pkg/api (v1) wire schema and round-trip.
//   - Badger stores one msgpack node per key, for graphs updated in place.
//   - DOT is write-only, for graphviz.
//
// Decoding recomputes every node ID from its content and rebuilds adjacency
// through graph.Rebuild, so a tampered or truncated file never yields a graph
// with dangling or one-sided edges.
package graphio
