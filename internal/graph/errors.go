package graph

import (
	"errors"
	"fmt"
	"strings"

	"flexvg/internal/nodeid"
)

var (
	ErrDanglingReference = errors.New("graph: dangling reference")
	ErrEmptySegment      = errors.New("graph: empty segment")
	ErrIDMismatch        = errors.New("graph: node id does not match content")
	ErrAsymmetricEdge    = errors.New("graph: asymmetric edge")
)

// DanglingReferenceError reports an edge whose endpoint is not in the store.
type DanglingReferenceError struct {
	From, To nodeid.ID
	Missing  []nodeid.ID
}

func (e *DanglingReferenceError) Error() string {
	ids := make([]string, len(e.Missing))
	for i, id := range e.Missing {
		ids[i] = id.String()
	}
	return fmt.Sprintf("edge %s -> %s: node(s) not in graph: %s",
		e.From.Short(), e.To.Short(), strings.Join(ids, ", "))
}

func (e *DanglingReferenceError) Is(target error) bool { return target == ErrDanglingReference }
