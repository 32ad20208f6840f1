// pkg/api/graph_v1.go
package api

// Version is the wire schema version written by flexvg.
const Version = 1

// GraphV1 is the stable serialized form of a variation graph.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type GraphV1 struct {
	Version int      `json:"version" msgpack:"version"`
	Nodes   []NodeV1 `json:"nodes" msgpack:"nodes"`
}

// NodeV1 is one node; IDs are lowercase hex. Sequences is written only when
// more than Sequence runs through the node.
type NodeV1 struct {
	ID        string     `json:"id" msgpack:"id"`
	Segment   string     `json:"segment" msgpack:"segment"`
	Offset    int        `json:"offset" msgpack:"offset"`
	Sequence  string     `json:"sequence,omitempty" msgpack:"sequence,omitempty"`
	Sequences []string   `json:"sequences,omitempty" msgpack:"sequences,omitempty"`
	Variants  []AlleleV1 `json:"variants,omitempty" msgpack:"variants,omitempty"`
	Right     []string   `json:"right,omitempty" msgpack:"right,omitempty"`
	Left      []string   `json:"left,omitempty" msgpack:"left,omitempty"`
}

// AlleleV1 is the variant payload at a node's right boundary.
type AlleleV1 struct {
	ID       string   `json:"id,omitempty" msgpack:"id,omitempty"`
	Position int      `json:"position" msgpack:"position"`
	Ref      string   `json:"ref" msgpack:"ref"`
	Alt      []string `json:"alt,omitempty" msgpack:"alt,omitempty"`
}
