// Package vcf reads variant records from VCF files.
//
// Only what graph construction needs is interpreted: the chromosome and the
// 1-based position. The remaining columns are kept verbatim.
package vcf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"flexvg/internal/fileio"
)

// Record is one data line.
type Record struct {
	Chrom   string
	Pos     int // 1-based
	ID      string
	Ref     string
	Alt     []string
	Qual    string
	Filter  string
	Info    string
	Format  string
	Samples []string
}

// Header holds the meta lines and the #CHROM column line.
type Header struct {
	Meta    []string // "##" lines without the prefix
	Columns []string
	Samples []string
}

var (
	ErrTooFewColumns = errors.New("too few columns")
	ErrNotUTF8       = errors.New("not valid UTF-8")
	ErrPosition      = errors.New("position must be a positive integer")
)

// SyntaxError describes a line that could not be parsed.
type SyntaxError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *SyntaxError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("vcf line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("vcf line %d: %s %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

const maxLine = 16 * 1024 * 1024

// Reader yields records one at a time, forward only.
type Reader struct {
	sc      *bufio.Scanner
	closer  io.Closer
	line    int
	header  Header
	pending string
	hasPend bool
}

// NewReader consumes the header lines of r.
func NewReader(r io.Reader) (*Reader, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	vr := &Reader{sc: sc}
	for sc.Scan() {
		vr.line++
		text := strings.TrimRight(sc.Text(), "\r")
		switch {
		case strings.TrimSpace(text) == "":
			continue
		case strings.HasPrefix(text, "##"):
			vr.header.Meta = append(vr.header.Meta, text[2:])
			continue
		case strings.HasPrefix(text, "#"):
			vr.header.Columns = strings.Fields(text[1:])
			if len(vr.header.Columns) > 9 {
				vr.header.Samples = vr.header.Columns[9:]
			}
			return vr, nil
		default:
			// headerless input; keep the first data line
			vr.pending, vr.hasPend = text, true
			return vr, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("vcf header: %w", err)
	}
	return vr, nil
}

// Open opens path (plain, gzip or "-") and reads its header.
func Open(path string) (*Reader, error) {
	rc, err := fileio.Open(path)
	if err != nil {
		return nil, err
	}
	vr, err := NewReader(rc)
	if err != nil {
		_ = rc.Close()
		return nil, err
	}
	vr.closer = rc
	return vr, nil
}

func (r *Reader) Header() Header { return r.header }

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	for {
		var text string
		if r.hasPend {
			text, r.hasPend = r.pending, false
		} else {
			if !r.sc.Scan() {
				if err := r.sc.Err(); err != nil {
					return Record{}, fmt.Errorf("vcf scan: %w", err)
				}
				return Record{}, io.EOF
			}
			r.line++
			text = strings.TrimRight(r.sc.Text(), "\r")
		}
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}
		return parseLine(r.line, text)
	}
}

func parseLine(line int, text string) (Record, error) {
	// Columns are tab separated; some writers pad with spaces, and no column
	// legitimately contains whitespace.
	f := strings.Fields(text)
	if len(f) < 5 {
		return Record{}, &SyntaxError{Line: line, Err: fmt.Errorf("%w: %d", ErrTooFewColumns, len(f))}
	}
	if !utf8.ValidString(f[0]) {
		return Record{}, &SyntaxError{Line: line, Field: "CHROM", Value: f[0], Err: ErrNotUTF8}
	}
	pos, err := strconv.Atoi(f[1])
	if err != nil || pos < 1 {
		return Record{}, &SyntaxError{Line: line, Field: "POS", Value: f[1], Err: ErrPosition}
	}
	rec := Record{
		Chrom: f[0],
		Pos:   pos,
		ID:    f[2],
		Ref:   f[3],
		Alt:   strings.Split(f[4], ","),
	}
	col := func(i int) string {
		if i < len(f) {
			return f[i]
		}
		return ""
	}
	rec.Qual, rec.Filter, rec.Info, rec.Format = col(5), col(6), col(7), col(8)
	if len(f) > 9 {
		rec.Samples = f[9:]
	}
	return rec, nil
}
