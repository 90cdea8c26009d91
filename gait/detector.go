// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package gait finds walking bouts in an accelerometer channel and turns
// them into partitions of the recording.
package gait

import (
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/biosignal/annotation"
	"github.com/grailbio/biosignal/bout"
	"github.com/grailbio/biosignal/segment"
	"github.com/grailbio/biosignal/signal"
)

// DefaultLabel is the partition label given to detected bouts.
const DefaultLabel = "Activity"

// Detector runs a segmentation step on a track and reduces its clusters to
// bouts.
type Detector struct {
	// Segmenter produces the clusters.  Required.
	Segmenter segment.Segmenter
	// Segments is the number of segments the user asked for.  The segmenter
	// is asked for Segments+1 clusters.
	Segments int
	// Filter, if non-nil, preprocesses the track values before they are
	// passed to Segmenter (e.g. resampling and low-pass filtering).
	Filter func([]float64) []float64
	// Keep, if non-nil, selects which bouts are reported.  See bout.Reducer.
	Keep func(bout.Bout) bool
	// Label is the label of the partitions created by Annotate.  Defaults to
	// DefaultLabel.
	Label string
}

// Detect returns the bouts of track, in increasing order.  Errors from the
// segmenter are returned as is, annotated with the track name.
func (d *Detector) Detect(ctx context.Context, track *signal.Track) ([]bout.Bout, error) {
	if d.Segmenter == nil {
		return nil, errors.E(errors.Invalid, "gait: no segmenter")
	}
	if d.Segments < 1 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("gait: invalid number of segments %d", d.Segments))
	}
	if !(track.SampleRate > 0) {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("gait: %v: invalid sample rate", track))
	}
	values := track.Values
	if d.Filter != nil {
		values = d.Filter(values)
	}
	clusters, err := d.Segmenter.Segment(ctx, values, d.Segments+1)
	if err != nil {
		return nil, errors.E(err, fmt.Sprintf("gait: segment %v", track))
	}
	if err := clusters.Validate(); err != nil {
		return nil, errors.E(err, fmt.Sprintf("gait: segment %v", track))
	}
	r := bout.Reducer{Keep: d.Keep}
	bouts, err := r.Reduce(clusters.PeakPos, clusters.Label)
	if err != nil {
		return nil, errors.E(err, fmt.Sprintf("gait: %v", track))
	}
	log.Debug.Printf("%v: %d peaks, %d bouts", track, clusters.Len(), len(bouts))
	return bouts, nil
}

// Annotate detects the bouts of track and adds one partition per bout to
// ps.  Bout boundaries are converted to seconds using the track's sample
// rate.
func (d *Detector) Annotate(ctx context.Context, track *signal.Track, ps *annotation.Partitions) ([]bout.Bout, error) {
	bouts, err := d.Detect(ctx, track)
	if err != nil {
		return nil, err
	}
	label := d.Label
	if label == "" {
		label = DefaultLabel
	}
	var (
		labels = make([]string, len(bouts))
		starts = make([]float64, len(bouts))
		ends   = make([]float64, len(bouts))
	)
	for i, b := range bouts {
		labels[i] = label
		starts[i], ends[i] = b.Seconds(track.SampleRate)
	}
	if err := ps.AddAll(labels, starts, ends); err != nil {
		return nil, err
	}
	return bouts, nil
}
