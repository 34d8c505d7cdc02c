// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ranjhana07/MINE/internal/log"
	"github.com/ranjhana07/MINE/internal/ring"
	"github.com/ranjhana07/MINE/internal/wallclock"
)

type (
	// Store is an in-memory, bounded, multi-group time-series container. A
	// single Append updates all four groups atomically; any number of readers
	// may take snapshots concurrently.
	Store struct {
		// Guards every group together, since one append touches all of them.
		mu     sync.RWMutex
		groups map[Group]*channelGroup

		capacity int
		clock    wallclock.WallClock
		log      log.Logger
	}

	// Series buffers are parallel to layout[group]; all of them and the
	// timestamps buffer always have the same length.
	channelGroup struct {
		timestamps *ring.Buffer[time.Time]
		series     []*ring.Buffer[Sample]
		latest     Latest
	}
)

// New creates a store with the given options.
func New(opt ...Option) *Store {
	var opts Options
	opts.Apply(opt)

	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Clock == nil {
		opts.Clock = wallclock.Instance
	}

	s := &Store{
		groups:   make(map[Group]*channelGroup, len(groups)),
		capacity: opts.Capacity,
		clock:    opts.Clock,
		log:      log.Wrap(opts.Logger),
	}

	initial := Latest{Reading: RawFields{}.Resolve()}
	for _, g := range groups {
		cg := &channelGroup{
			timestamps: ring.New[time.Time](opts.Capacity),
			series:     make([]*ring.Buffer[Sample], len(layout[g])),
			latest:     initial,
		}
		for i := range cg.series {
			cg.series[i] = ring.New[Sample](opts.Capacity)
		}
		s.groups[g] = cg
	}
	return s
}

// Capacity returns the window capacity of every series.
func (s *Store) Capacity() int {
	return s.capacity
}

// Append fans one reading out to every group. Eligible fields holding the
// "no reading" sentinel are stored in the window as absent samples, while
// each group's Latest keeps the raw values.
func (s *Store) Append(raw RawFields) {
	r := raw.Resolve()

	s.mu.Lock()
	ts := s.clock.Now()
	for _, g := range groups {
		cg := s.groups[g]
		cg.timestamps.Push(ts)
		for i, def := range layout[g] {
			cg.series[i].Push(def.value(r))
		}
		cg.latest = Latest{Reading: r, Timestamp: ts}
	}
	n := s.groups[Gas].timestamps.Len()
	s.mu.Unlock()

	s.log.Log(context.Background(), slog.LevelDebug, "reading appended",
		slog.Float64("lpg", r.LPG),
		slog.Float64("lat", r.Lat),
		slog.Float64("lon", r.Lon),
		slog.Int("heart_rate", r.HeartRate),
		slog.Float64("spo2", r.SpO2),
		slog.Int("window", n),
	)
}

// Snapshot returns an independent copy of the named group. It returns false
// only for an unknown group.
func (s *Store) Snapshot(g Group) (GroupView, bool) {
	cg, ok := s.groups[g]
	if !ok {
		return GroupView{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return cg.view(g), true
}

// SnapshotAll copies every group under a single read lock, so all four views
// reflect the same set of appends.
func (s *Store) SnapshotAll() map[Group]GroupView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make(map[Group]GroupView, len(groups))
	for _, g := range groups {
		views[g] = s.groups[g].view(g)
	}
	return views
}

// Gas returns a snapshot of the gas group.
func (s *Store) Gas() GroupView { return s.mustSnapshot(Gas) }

// Health returns a snapshot of the health group.
func (s *Store) Health() GroupView { return s.mustSnapshot(Health) }

// Environmental returns a snapshot of the environmental group.
func (s *Store) Environmental() GroupView { return s.mustSnapshot(Environmental) }

// GPS returns a snapshot of the GPS group.
func (s *Store) GPS() GroupView { return s.mustSnapshot(GPS) }

// Len returns the current window length, which is the same for every series.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.groups[Gas].timestamps.Len()
}

func (s *Store) mustSnapshot(g Group) GroupView {
	v, _ := s.Snapshot(g)
	return v
}

// Must be called with the store lock held.
func (cg *channelGroup) view(g Group) GroupView {
	v := GroupView{
		Group:      g,
		Timestamps: cg.timestamps.Slice(),
		Series:     make(map[string][]Sample, len(cg.series)),
		Latest:     cg.latest,
	}
	for i, def := range layout[g] {
		v.Series[def.name] = cg.series[i].Slice()
	}
	return v
}
