// Package fasta streams reference sequences from FASTA files.
package fasta

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"flexvg/internal/fileio"
)

var (
	ErrNoHeader = errors.New("sequence data before the first header")
	ErrEmptyID  = errors.New("header has no ID")
)

// SyntaxError is a reference record that cannot be parsed.
type SyntaxError struct {
	Line int
	Err  error
}

func (e *SyntaxError) Error() string { return fmt.Sprintf("fasta line %d: %v", e.Line, e.Err) }

func (e *SyntaxError) Unwrap() error { return e.Err }

// Record is one named reference sequence.
type Record struct {
	ID  string
	Seq []byte
}

// maxLine allows very long single-line sequences (64 MiB).
const maxLine = 64 * 1024 * 1024

// StreamPathCtx opens path and calls emit for every record in file order.
// Return a non-nil error from emit to stop early.
func StreamPathCtx(ctx context.Context, path string, emit func(Record) error) error {
	rc, err := fileio.Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()
	return Scan(ctx, rc, emit)
}

// Scan parses FASTA from r. Cancellation via ctx is checked between lines.
// Sequence data before the first header, or a header without an ID, fails
// with *SyntaxError.
func Scan(ctx context.Context, r io.Reader, emit func(Record) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var (
		id   string
		line int
		seq  = make([]byte, 0, 1<<20)
	)
	flush := func() error {
		if id == "" {
			return nil
		}
		return emit(Record{ID: id, Seq: append([]byte(nil), seq...)})
	}

	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 || text[0] == ';' {
			continue
		}
		if text[0] == '>' {
			if err := flush(); err != nil {
				return err
			}
			seq = seq[:0]
			if id = parseHeaderID(text[1:]); id == "" {
				return &SyntaxError{Line: line, Err: ErrEmptyID}
			}
			continue
		}
		if id == "" {
			return &SyntaxError{Line: line, Err: ErrNoHeader}
		}
		seq = append(seq, bytes.ToUpper(text)...)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("fasta scan: %w", err)
	}
	return flush()
}

// Headers returns the record IDs of path in order without keeping sequences.
// It rejects the same malformed input as Scan.
func Headers(ctx context.Context, path string) ([]string, error) {
	rc, err := fileio.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	var (
		ids  []string
		line int
	)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line++
		text := bytes.TrimSpace(sc.Bytes())
		switch {
		case len(text) == 0 || text[0] == ';':
		case text[0] == '>':
			id := parseHeaderID(text[1:])
			if id == "" {
				return nil, &SyntaxError{Line: line, Err: ErrEmptyID}
			}
			ids = append(ids, id)
		case len(ids) == 0:
			return nil, &SyntaxError{Line: line, Err: ErrNoHeader}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("fasta scan: %w", err)
	}
	return ids, nil
}

// parseHeaderID is the first whitespace-separated word of a header.
func parseHeaderID(h []byte) string {
	f := bytes.Fields(h)
	if len(f) == 0 {
		return ""
	}
	return string(f[0])
}
