// Package annotation keeps the time partitions attached to a recording.
//
// A partition is a labelled, closed time range [Start, End] in seconds.
// Partitions of one recording never overlap, so they are kept in a tree
// ordered by start time and a point lookup is a floor search.
package annotation

import (
	"fmt"
	"math"

	"github.com/biogo/store/llrb"
	"github.com/grailbio/base/errors"
)

// Partition is a labelled time range, in seconds.  Both ends are closed.
type Partition struct {
	Label      string
	Start, End float64
}

// Contains reports whether t lies inside p.
func (p Partition) Contains(t float64) bool {
	return p.Start <= t && t <= p.End
}

// Overlaps reports whether p and o share at least one point.
func (p Partition) Overlaps(o Partition) bool {
	return p.Start <= o.End && o.Start <= p.End
}

func (p Partition) String() string {
	return fmt.Sprintf("%s[%g,%g]", p.Label, p.Start, p.End)
}

// key orders partitions by start time in the tree.
type key struct {
	start float64
	p     *Partition
}

// Compare implements llrb.Comparable.
func (k key) Compare(c llrb.Comparable) int {
	k2 := c.(key)
	switch {
	case k.start < k2.start:
		return -1
	case k.start > k2.start:
		return 1
	}
	return 0
}

// Partitions is a set of non-overlapping partitions.  The zero value is an
// empty set.  Partitions is not safe for concurrent use.
type Partitions struct {
	byStart llrb.Tree
}

// Len returns the number of partitions.
func (ps *Partitions) Len() int { return ps.byStart.Len() }

// Add inserts a partition.  It returns an errors.Invalid error if the range
// is malformed, and an errors.Exists error if it overlaps an existing
// partition.
func (ps *Partitions) Add(label string, start, end float64) error {
	p := Partition{Label: label, Start: start, End: end}
	if math.IsNaN(start) || math.IsNaN(end) || start > end {
		return errors.E(errors.Invalid, fmt.Sprintf("annotation: invalid partition %v", p))
	}
	if start < 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("annotation: partition %v starts before the recording", p))
	}
	// The stored partitions are disjoint, so if any of them overlaps p, the
	// last one starting at or before end does.
	if c := ps.byStart.Floor(key{start: end}); c != nil && c.(key).p.Overlaps(p) {
		return errors.E(errors.Exists, fmt.Sprintf("annotation: %v overlaps %v", p, *c.(key).p))
	}
	ps.byStart.Insert(key{start: start, p: &p})
	return nil
}

// AddAll inserts len(labels) partitions; labels, starts and ends are
// parallel.  Either all partitions are added or none is.
func (ps *Partitions) AddAll(labels []string, starts, ends []float64) error {
	if len(starts) != len(labels) || len(ends) != len(labels) {
		return errors.E(errors.Invalid, fmt.Sprintf("annotation: %d labels, %d starts, %d ends",
			len(labels), len(starts), len(ends)))
	}
	for i := range labels {
		if err := ps.Add(labels[i], starts[i], ends[i]); err != nil {
			for j := 0; j < i; j++ {
				ps.Remove(starts[j])
			}
			return err
		}
	}
	return nil
}

// Find returns the partition containing t, if any.
func (ps *Partitions) Find(t float64) (Partition, bool) {
	c := ps.byStart.Floor(key{start: t})
	if c == nil {
		return Partition{}, false
	}
	p := c.(key).p
	if !p.Contains(t) {
		return Partition{}, false
	}
	return *p, true
}

// Remove deletes the partition starting at start.  It reports whether such
// a partition existed.
func (ps *Partitions) Remove(start float64) bool {
	k := key{start: start}
	if ps.byStart.Get(k) == nil {
		return false
	}
	ps.byStart.Delete(k)
	return true
}

// Clear removes every partition.
func (ps *Partitions) Clear() {
	ps.byStart = llrb.Tree{}
}

// All returns the partitions in increasing order of start time.
func (ps *Partitions) All() []Partition {
	all := make([]Partition, 0, ps.Len())
	ps.byStart.Do(func(c llrb.Comparable) bool {
		all = append(all, *c.(key).p)
		return false
	})
	return all
}

// Labels returns the distinct labels in order of first appearance.
func (ps *Partitions) Labels() []string {
	var labels []string
	seen := map[string]bool{}
	for _, p := range ps.All() {
		if !seen[p.Label] {
			seen[p.Label] = true
			labels = append(labels, p.Label)
		}
	}
	return labels
}
