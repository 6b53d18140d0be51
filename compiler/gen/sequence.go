package gen

import "time"

// Sequencer assigns each table processed within one run a distinct,
// strictly increasing migration timestamp. The base is captured once at
// run start and every issued key advances one second, so generated file
// names sort in processing order even when many tables are generated
// within the same wall-clock second.
type Sequencer struct {
	base time.Time
	n    int
}

// NewSequencer returns a sequencer based at now.
func NewSequencer(now time.Time) *Sequencer {
	return &Sequencer{base: now}
}

// Next returns the ordering timestamp for the next table.
func (s *Sequencer) Next() time.Time {
	at := s.base.Add(time.Duration(s.n) * time.Second)
	s.n++
	return at
}

// Count returns how many keys have been issued.
func (s *Sequencer) Count() int { return s.n }
