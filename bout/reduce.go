// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bout

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// Bout is one contiguous run between two cluster boundaries.
type Bout struct {
	// StartSample and EndSample are sample positions, both ends closed.
	StartSample, EndSample int
	// StartPeak and EndPeak are the indices into the peak sequence that
	// StartSample and EndSample were taken from.
	StartPeak, EndPeak int
}

// Samples returns the number of samples covered by b.
func (b Bout) Samples() int {
	return b.EndSample - b.StartSample + 1
}

// Seconds converts b's sample range into seconds for a signal sampled at
// rate Hz.
func (b Bout) Seconds(rate float64) (start, end float64) {
	return float64(b.StartSample) / rate, float64(b.EndSample) / rate
}

func (b Bout) String() string {
	return fmt.Sprintf("[%d,%d]", b.StartSample, b.EndSample)
}

// IsInvalidInput reports whether err was caused by malformed positions or
// labels.
func IsInvalidInput(err error) bool {
	return errors.Is(errors.Invalid, err)
}

// IsNoTransition reports whether err was caused by a label sequence that
// never changes.
func IsNoTransition(err error) bool {
	return errors.Is(errors.NotExist, err)
}

// Boundaries returns the peak indices at which the cluster label changes,
// in increasing order.  Index i is a boundary if labels[i] != labels[i+1].
// The final index is a boundary too if the last label differs from the
// first one.  If any boundary is found, the last one is replaced by
// len(labels)-1.
func Boundaries(labels []int) []int {
	n := len(labels)
	var b []int
	for i := 0; i < n-1; i++ {
		if labels[i] != labels[i+1] {
			b = append(b, i)
		}
	}
	if n > 1 && labels[n-1] != labels[0] {
		b = append(b, n-1)
	}
	if len(b) > 0 {
		b[len(b)-1] = n - 1
	}
	return b
}

// Reducer turns peak positions and cluster labels into bouts.  The zero
// value keeps every bout.
type Reducer struct {
	// Keep, if non-nil, decides whether a candidate bout is part of the
	// result.
	Keep func(Bout) bool
}

// Reduce is shorthand for Reducer{}.Reduce.
func Reduce(positions, labels []int) ([]Bout, error) {
	return Reducer{}.Reduce(positions, labels)
}

// Reduce computes the bouts for the given peak positions and their cluster
// labels.  positions and labels are parallel; positions must be
// non-negative and strictly increasing.
//
// With k boundaries b[0] < ... < b[k-1], k-1 candidate bouts are formed.
// Candidate j ends at peak b[j+1].  Candidate 0 starts at peak b[0] and every
// later candidate starts at the peak right after the previous end, so the
// candidates tile [positions[b[0]], positions[b[k-1]]] without gaps or
// overlaps.
//
// Reduce returns an error of kind errors.Invalid if the inputs are empty,
// of different lengths, shorter than two, or out of order, and an error of
// kind errors.NotExist if the labels never change.
func (r Reducer) Reduce(positions, labels []int) ([]Bout, error) {
	if err := validate(positions, labels); err != nil {
		return nil, err
	}
	b := Boundaries(labels)
	if len(b) == 0 {
		return nil, errors.E(errors.NotExist,
			fmt.Sprintf("bout: no cluster transition in %d labels", len(labels)))
	}
	bouts := make([]Bout, 0, len(b)-1)
	for j := 0; j+1 < len(b); j++ {
		startPeak := b[j]
		if j > 0 {
			startPeak++
		}
		endPeak := b[j+1]
		bt := Bout{
			StartSample: positions[startPeak],
			EndSample:   positions[endPeak],
			StartPeak:   startPeak,
			EndPeak:     endPeak,
		}
		if r.Keep != nil && !r.Keep(bt) {
			continue
		}
		bouts = append(bouts, bt)
	}
	return bouts, nil
}

func validate(positions, labels []int) error {
	if len(positions) == 0 || len(labels) == 0 {
		return errors.E(errors.Invalid, "bout: empty positions or labels")
	}
	if len(positions) != len(labels) {
		return errors.E(errors.Invalid,
			fmt.Sprintf("bout: %d positions but %d labels", len(positions), len(labels)))
	}
	if len(positions) < 2 {
		return errors.E(errors.Invalid, "bout: need at least two peaks to find a transition")
	}
	for i, p := range positions {
		if p < 0 {
			return errors.E(errors.Invalid, fmt.Sprintf("bout: negative position %d at peak %d", p, i))
		}
		if i > 0 && p <= positions[i-1] {
			return errors.E(errors.Invalid,
				fmt.Sprintf("bout: position %d at peak %d does not follow %d at peak %d", p, i, positions[i-1], i-1))
		}
	}
	return nil
}
