// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package segment defines the contract of a changepoint segmentation step:
// given one signal channel and a target number of segments, it detects peaks
// and assigns each peak to a cluster.  The segmentation algorithm itself
// lives outside this repository; Precomputed loads the result of an offline
// run.
package segment

import (
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
)

// Clusters is the output of a segmentation run.  The three slices are
// parallel: peak i is at sample PeakPos[i], has prominence Prominence[i] and
// belongs to cluster Label[i].
type Clusters struct {
	PeakPos    []int
	Prominence []float64
	Label      []int
}

// Len returns the number of peaks.
func (c Clusters) Len() int { return len(c.PeakPos) }

// Validate checks that the slices are parallel and that peak positions are
// non-negative and strictly increasing.
func (c Clusters) Validate() error {
	if len(c.Prominence) != len(c.PeakPos) || len(c.Label) != len(c.PeakPos) {
		return errors.E(errors.Invalid, fmt.Sprintf("segment: mismatched lengths: %d positions, %d prominences, %d labels",
			len(c.PeakPos), len(c.Prominence), len(c.Label)))
	}
	for i, p := range c.PeakPos {
		if p < 0 {
			return errors.E(errors.Invalid, fmt.Sprintf("segment: negative peak position %d", p))
		}
		if i > 0 && p <= c.PeakPos[i-1] {
			return errors.E(errors.Invalid, fmt.Sprintf("segment: peak %d at %d does not follow %d", i, p, c.PeakPos[i-1]))
		}
	}
	return nil
}

// Segmenter splits a signal channel into nSegments clusters of peaks.
type Segmenter interface {
	Segment(ctx context.Context, values []float64, nSegments int) (Clusters, error)
}

// SegmenterFunc adapts an ordinary function to the Segmenter interface.
type SegmenterFunc func(ctx context.Context, values []float64, nSegments int) (Clusters, error)

// Segment calls f.
func (f SegmenterFunc) Segment(ctx context.Context, values []float64, nSegments int) (Clusters, error) {
	return f(ctx, values, nSegments)
}
