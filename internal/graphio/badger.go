package graphio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"

	"flexvg/internal/graph"
	"flexvg/pkg/api"
)

var (
	nodePrefix = []byte("n/")
	versionKey = []byte("meta/version")
)

// badgerLogger routes badger's printf-style logging into slog.
type badgerLogger struct{ log *slog.Logger }

func (l badgerLogger) Errorf(f string, a ...interface{})   { l.log.Error(fmt.Sprintf(f, a...)) }
func (l badgerLogger) Warningf(f string, a ...interface{}) { l.log.Warn(fmt.Sprintf(f, a...)) }
func (l badgerLogger) Infof(f string, a ...interface{})    { l.log.Debug(fmt.Sprintf(f, a...)) }
func (l badgerLogger) Debugf(f string, a ...interface{})   { l.log.Debug(fmt.Sprintf(f, a...)) }

func openBadger(dir string, log *slog.Logger) (*badger.DB, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{log: log.With("component", "badger")})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("graphio: open badger %s: %w", dir, err)
	}
	return db, nil
}

func nodeKey(i int) []byte {
	k := make([]byte, len(nodePrefix)+8)
	copy(k, nodePrefix)
	binary.BigEndian.PutUint64(k[len(nodePrefix):], uint64(i))
	return k
}

// SaveBadger replaces the contents of the Badger directory dir with g.
// Keys are "n/" plus the big-endian insertion index, so iteration order is
// the graph's insertion order.
func SaveBadger(dir string, g *graph.Graph, log *slog.Logger) error {
	db, err := openBadger(dir, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DropAll(); err != nil {
		return fmt.Errorf("graphio: clear badger: %w", err)
	}
	wb := db.NewWriteBatch()
	defer wb.Cancel()

	ver, err := msgpack.Marshal(api.Version)
	if err != nil {
		return err
	}
	if err := wb.Set(versionKey, ver); err != nil {
		return err
	}
	i := 0
	for n := range g.Nodes() {
		val, err := msgpack.Marshal(toAPINode(n))
		if err != nil {
			return fmt.Errorf("graphio: encode node %s: %w", n.ID, err)
		}
		if err := wb.Set(nodeKey(i), val); err != nil {
			return err
		}
		i++
	}
	return wb.Flush()
}

// LoadBadger reads a graph saved by SaveBadger.
func LoadBadger(dir string, log *slog.Logger) (*graph.Graph, error) {
	if fi, err := os.Stat(dir); err != nil {
		return nil, err
	} else if !fi.IsDir() {
		return nil, fmt.Errorf("graphio: %s is not a badger directory", dir)
	}
	db, err := openBadger(dir, log)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	v := api.GraphV1{}
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(versionKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotGraphFile
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(b []byte) error { return msgpack.Unmarshal(b, &v.Version) }); err != nil {
			return err
		}

		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 100, Prefix: nodePrefix})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var nv api.NodeV1
			if err := msgpack.Unmarshal(val, &nv); err != nil {
				return fmt.Errorf("decode node: %w", err)
			}
			v.Nodes = append(v.Nodes, nv)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("graphio: load badger %s: %w", dir, err)
	}
	return FromAPI(v)
}
