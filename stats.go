package denorm

import (
	"fmt"
	"sync/atomic"
)

// Stats counts the work done by populate calls sharing it.
// The zero value is ready to use and safe for concurrent updates.
type Stats struct {
	// Lookups is the number of id lookups against a collection.
	Lookups atomic.Int64
	// Misses is the number of lookups that found no entity.
	Misses atomic.Int64
	// Dropped is the number of ids removed from plural references.
	Dropped atomic.Int64
	// Accesses is the number of field reads on lazy views.
	Accesses atomic.Int64
}

// Snapshot returns a point-in-time copy of the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	if s == nil {
		return StatsSnapshot{}
	}
	return StatsSnapshot{
		Lookups:  s.Lookups.Load(),
		Misses:   s.Misses.Load(),
		Dropped:  s.Dropped.Load(),
		Accesses: s.Accesses.Load(),
	}
}

// Reset resets all counters to zero. It is a no-op on a nil receiver.
func (s *Stats) Reset() {
	if s == nil {
		return
	}
	s.Lookups.Store(0)
	s.Misses.Store(0)
	s.Dropped.Store(0)
	s.Accesses.Store(0)
}

// RecordLookup counts one lookup and whether it found an entity.
// It is a no-op on a nil receiver.
func (s *Stats) RecordLookup(found bool) {
	if s == nil {
		return
	}
	s.Lookups.Add(1)
	if !found {
		s.Misses.Add(1)
	}
}

// RecordDropped counts n ids removed from a plural reference.
func (s *Stats) RecordDropped(n int) {
	if s == nil || n == 0 {
		return
	}
	s.Dropped.Add(int64(n))
}

// RecordAccess counts one lazy field read.
func (s *Stats) RecordAccess() {
	if s == nil {
		return
	}
	s.Accesses.Add(1)
}

// StatsSnapshot is a point-in-time snapshot of Stats.
type StatsSnapshot struct {
	Lookups  int64
	Misses   int64
	Dropped  int64
	Accesses int64
}

// HitRatio returns the fraction of lookups that found an entity.
func (s StatsSnapshot) HitRatio() float64 {
	if s.Lookups == 0 {
		return 0
	}
	return float64(s.Lookups-s.Misses) / float64(s.Lookups)
}

// String returns a human-readable summary of the counters.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"lookups=%d misses=%d dropped=%d accesses=%d hit_ratio=%.2f",
		s.Lookups, s.Misses, s.Dropped, s.Accesses, s.HitRatio(),
	)
}
