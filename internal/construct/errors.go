package construct

import (
	"errors"
	"fmt"

	"flexvg/internal/fasta"
	"flexvg/internal/graph"
	"flexvg/internal/vcf"
)

// MalformedRecordError aborts the split of Sequence. Nodes committed for
// earlier sequences are untouched.
type MalformedRecordError struct {
	Sequence     string
	LastPosition int // last good split position on Sequence
	Line         int // variant file line, 0 if unknown
	Err          error
}

func (e *MalformedRecordError) Error() string {
	msg := fmt.Sprintf("malformed variant record for sequence %q (last good position %d)", e.Sequence, e.LastPosition)
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
	}
	return msg + ": " + e.Err.Error()
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// OrderingViolationError means the variant stream is not in the order the
// reference stream requires; continuing would drop variants.
type OrderingViolationError struct {
	Sequence     string
	Position     int
	LastPosition int
	Reason       string
}

func (e *OrderingViolationError) Error() string {
	if e.Position > 0 {
		return fmt.Sprintf("variant ordering violation on %q at position %d (last position %d): %s",
			e.Sequence, e.Position, e.LastPosition, e.Reason)
	}
	return fmt.Sprintf("variant ordering violation on %q: %s", e.Sequence, e.Reason)
}

// Kind names the error category for user-facing messages.
func Kind(err error) string {
	var (
		mre *MalformedRecordError
		ove *OrderingViolationError
		se  *vcf.SyntaxError
		fe  *fasta.SyntaxError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, graph.ErrDanglingReference):
		return "dangling-reference"
	case errors.As(err, &mre), errors.As(err, &se), errors.As(err, &fe):
		return "malformed-record"
	case errors.As(err, &ove):
		return "ordering-violation"
	default:
		return "io"
	}
}
