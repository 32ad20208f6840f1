// Package stream holds the bookkeeping that keeps the reference stream and the
// variant stream in step: a Seeker with the last split position, and a
// single-slot lookahead for a record read ahead of its sequence.
package stream

import "errors"

// ErrLookaheadFull is the panic value of a Write into an occupied slot.
var ErrLookaheadFull = errors.New("stream: lookahead already holds a record")

// Seeker records the position right after the last processed variant.
// It is a value; advancing replaces it.
type Seeker struct {
	sequence string
	position int
}

func NewSeeker(sequence string, position int) Seeker {
	return Seeker{sequence: sequence, position: position}
}

func (s Seeker) Sequence() string { return s.sequence }
func (s Seeker) Position() int    { return s.position }

// Lookahead holds at most one value.
type Lookahead[T any] struct {
	value T
	full  bool
}

// Write fills the slot. Writing twice without a Read in between would lose a
// record, so it panics.
func (l *Lookahead[T]) Write(v T) {
	if l.full {
		panic(ErrLookaheadFull)
	}
	l.value, l.full = v, true
}

// Read empties the slot. It reports false when there was nothing to read.
func (l *Lookahead[T]) Read() (T, bool) {
	var zero T
	if !l.full {
		return zero, false
	}
	v := l.value
	l.value, l.full = zero, false
	return v, true
}

// Peek returns the held value without consuming it.
func (l *Lookahead[T]) Peek() (T, bool) { return l.value, l.full }

func (l *Lookahead[T]) HasValue() bool { return l.full }

// Synchronizer combines the Seeker and the lookahead for one run.
type Synchronizer[T any] struct {
	seeker   Seeker
	tracking bool

	Buffer Lookahead[T]
}

func NewSynchronizer[T any]() *Synchronizer[T] { return &Synchronizer[T]{} }

// Seeker returns the current seeker; false while no variant has been processed.
func (s *Synchronizer[T]) Seeker() (Seeker, bool) { return s.seeker, s.tracking }

// Start is where the next slice of sequence begins: the tracked position when
// the seeker is on the same sequence, 0 otherwise.
func (s *Synchronizer[T]) Start(sequence string) int {
	if s.tracking && s.seeker.sequence == sequence {
		return s.seeker.position
	}
	return 0
}

// Advance replaces the seeker after a variant at position on sequence.
func (s *Synchronizer[T]) Advance(sequence string, position int) {
	s.seeker = NewSeeker(sequence, position)
	s.tracking = true
}
