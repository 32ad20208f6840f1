package graphio

import (
	"encoding/json"
	"fmt"
	"io"

	"flexvg/internal/graph"
	"flexvg/pkg/api"
)

// WriteJSON writes the graph as indented JSON.
func WriteJSON(w io.Writer, g *graph.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ToAPI(g))
}

func ReadJSON(r io.Reader) (*graph.Graph, error) {
	var v api.GraphV1
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("graphio: decode json: %w", err)
	}
	return FromAPI(v)
}
