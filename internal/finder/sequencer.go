package finder

import (
	"errors"
	"sync/atomic"
)

// ErrStale is returned when a newer request superseded this one
var ErrStale = errors.New("request superseded by a newer one")

// Sequencer hands out increasing generation numbers. The zero value is ready to use.
type Sequencer struct {
	latest atomic.Uint64
}

// Ticket identifies one request issued by a Sequencer
type Ticket struct {
	seq *Sequencer
	gen uint64
}

// Next starts a new request, superseding every earlier ticket
func (s *Sequencer) Next() Ticket {
	return Ticket{seq: s, gen: s.latest.Add(1)}
}

// Generation returns the ticket's sequence number
func (t Ticket) Generation() uint64 {
	return t.gen
}

// Current reports whether no newer ticket has been issued
func (t Ticket) Current() bool {
	return t.seq != nil && t.seq.latest.Load() == t.gen
}

// Check returns ErrStale if the ticket has been superseded
func (t Ticket) Check() error {
	if !t.Current() {
		return ErrStale
	}
	return nil
}
