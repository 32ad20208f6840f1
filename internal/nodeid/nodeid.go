// Package nodeid derives content-addressed node identifiers.
//
// An ID is the SHA-256 of the segment bytes, a '+' delimiter and the decimal
// offset. The delimiter is outside the nucleotide alphabet and the offset
// encoding is digits only, so the last '+' always separates the two parts.
package nodeid

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/minio/sha256-simd"
	"github.com/templexxx/xhex"
)

// Size is the width of an ID in bytes.
const Size = sha256.Size

// Delimiter separates the segment from the offset in the hashed bytes.
const Delimiter = '+'

// ID identifies a node by (segment, offset).
type ID [Size]byte

// ErrBadLength is returned by Parse for input that is not 2*Size hex digits.
var ErrBadLength = errors.New("nodeid: bad length")

// Compute returns the ID of a segment starting at offset.
func Compute(segment []byte, offset int) ID {
	buf := make([]byte, 0, len(segment)+1+20)
	buf = append(buf, segment...)
	buf = append(buf, Delimiter)
	buf = strconv.AppendInt(buf, int64(offset), 10)
	return ID(sha256.Sum256(buf))
}

// String returns the lowercase hex form.
func (id ID) String() string {
	dst := make([]byte, Size*2)
	xhex.Encode(dst, id[:])
	return string(dst)
}

// Short is the first 8 hex digits, for labels and logs.
func (id ID) Short() string { return id.String()[:8] }

// IsZero reports whether id is the unset value.
func (id ID) IsZero() bool { return id == ID{} }

// Parse is the inverse of String.
func Parse(s string) (ID, error) {
	var id ID
	if len(s) != Size*2 {
		return id, fmt.Errorf("%w: %d hex digits", ErrBadLength, len(s))
	}
	if err := xhex.Decode(id[:], []byte(s)); err != nil {
		return ID{}, fmt.Errorf("nodeid: parse %q: %w", s, err)
	}
	return id, nil
}

// MarshalText lets IDs act as JSON strings and map keys.
func (id ID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText accepts the form produced by MarshalText.
func (id *ID) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}
