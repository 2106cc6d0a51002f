package eventbus

import "sync/atomic"

type StatsSnapshot struct {
	Published  int64
	Dispatched int64
	Errors     int64
}

type stats struct {
	published  atomic.Int64
	dispatched atomic.Int64
	errors     atomic.Int64
}

func (s *stats) RecordPublished(delta int) {
	s.published.Add(int64(delta))
}

func (s *stats) RecordDispatched(delta int) {
	s.dispatched.Add(int64(delta))
}

func (s *stats) RecordError(delta int) {
	s.errors.Add(int64(delta))
}

func (s *stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Published:  s.published.Load(),
		Dispatched: s.dispatched.Load(),
		Errors:     s.errors.Load(),
	}
}
