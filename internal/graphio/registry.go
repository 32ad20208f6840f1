package graphio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"flexvg/internal/graph"
)

// Format is a named stream encoding. Read is nil for write-only formats.
type Format struct {
	Name  string
	Write func(io.Writer, *graph.Graph) error
	Read  func(io.Reader) (*graph.Graph, error)
}

// Badger is the directory-backed format; it has no stream form.
const Badger = "badger"

var formats = map[string]Format{}

// Register adds f (last wins).
func Register(f Format) { formats[f.Name] = f }

func init() {
	Register(Format{Name: "msgpack", Write: WriteMsgpack, Read: ReadMsgpack})
	Register(Format{Name: "json", Write: WriteJSON, Read: ReadJSON})
	Register(Format{Name: "dot", Write: WriteDOT})
}

func Lookup(name string) (Format, bool) {
	f, ok := formats[name]
	return f, ok
}

// Names lists every writable format, Badger included.
func Names() []string {
	out := []string{Badger}
	for n := range formats {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func Write(name string, w io.Writer, g *graph.Graph) error {
	f, ok := formats[name]
	if !ok || f.Write == nil {
		return fmt.Errorf("unknown graph format %q (no writer registered)", name)
	}
	return f.Write(w, g)
}

func Read(name string, r io.Reader) (*graph.Graph, error) {
	f, ok := formats[name]
	if !ok || f.Read == nil {
		return nil, fmt.Errorf("graph format %q cannot be read", name)
	}
	return f.Read(r)
}

// Detect guesses the format of an existing graph at path: a directory is
// Badger, the magic header is msgpack, anything else is tried as JSON.
func Detect(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if fi.IsDir() {
		return Badger, nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer fh.Close()
	head := make([]byte, len(Magic))
	n, _ := io.ReadFull(fh, head)
	if bytes.Equal(head[:n], []byte(Magic)) {
		return "msgpack", nil
	}
	return "json", nil
}

// Load reads the graph at path in its detected format.
func Load(path string, log *slog.Logger) (*graph.Graph, error) {
	name, err := Detect(path)
	if err != nil {
		return nil, err
	}
	if name == Badger {
		return LoadBadger(path, log)
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Read(name, bufio.NewReader(fh))
}

// Save writes g to path ("-" is stdout). Files are written to a temporary
// sibling and renamed, so a failed write never truncates an existing graph.
func Save(path, name string, g *graph.Graph, stdout io.Writer, log *slog.Logger) error {
	if name == Badger {
		if path == "-" {
			return fmt.Errorf("format %q needs a directory, not stdout", Badger)
		}
		return SaveBadger(path, g, log)
	}
	if path == "-" {
		return Write(name, stdout, g)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := Write(name, tmp, g); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
