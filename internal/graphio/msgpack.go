package graphio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"flexvg/internal/graph"
	"flexvg/pkg/api"
)

// Magic starts every msgpack graph file; the byte after it is the version.
const Magic = "FLEXVG"

var ErrNotGraphFile = errors.New("graphio: not a flexvg graph file")

// WriteMsgpack writes the magic header followed by the msgpack-encoded graph.
func WriteMsgpack(w io.Writer, g *graph.Graph) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Magic); err != nil {
		return err
	}
	if err := bw.WriteByte(api.Version); err != nil {
		return err
	}
	if err := msgpack.NewEncoder(bw).Encode(ToAPI(g)); err != nil {
		return fmt.Errorf("graphio: encode msgpack: %w", err)
	}
	return bw.Flush()
}

// ReadMsgpack is the inverse of WriteMsgpack.
func ReadMsgpack(r io.Reader) (*graph.Graph, error) {
	br := bufio.NewReader(r)
	head := make([]byte, len(Magic)+1)
	if _, err := io.ReadFull(br, head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotGraphFile, err)
	}
	if !bytes.Equal(head[:len(Magic)], []byte(Magic)) {
		return nil, ErrNotGraphFile
	}
	if v := int(head[len(Magic)]); v != api.Version {
		return nil, fmt.Errorf("graphio: unsupported file version %d", v)
	}
	var v api.GraphV1
	if err := msgpack.NewDecoder(br).Decode(&v); err != nil {
		return nil, fmt.Errorf("graphio: decode msgpack: %w", err)
	}
	return FromAPI(v)
}
