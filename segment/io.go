// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package segment

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
)

// clusterRow is one line of a clusters file.
type clusterRow struct {
	PeakPos    int64   `tsv:"peak_pos"`
	Prominence float64 `tsv:"prominence"`
	Cluster    int64   `tsv:"cluster"`
}

// ParseClusters reads a clusters TSV.  The first line must be the header
// "peak_pos\tprominence\tcluster" (in any column order).  Lines starting
// with '#' are ignored.
func ParseClusters(r io.Reader) (Clusters, error) {
	tr := tsv.NewReader(r)
	tr.HasHeaderRow = true
	tr.UseHeaderNames = true
	tr.Comment = '#'
	var c Clusters
	for {
		var row clusterRow
		if err := tr.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return Clusters{}, errors.E(errors.Invalid, err)
		}
		c.PeakPos = append(c.PeakPos, int(row.PeakPos))
		c.Prominence = append(c.Prominence, row.Prominence)
		c.Label = append(c.Label, int(row.Cluster))
	}
	return c, c.Validate()
}

// ReadClusters reads a clusters file written by WriteClusters or by an
// external segmentation run.
func ReadClusters(ctx context.Context, path string) (c Clusters, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return Clusters{}, err
	}
	defer file.CloseAndReport(ctx, in, &err)
	var r io.Reader = in.Reader(ctx)
	if u, _ := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}
	if c, err = ParseClusters(r); err != nil {
		return Clusters{}, errors.E(err, path)
	}
	return c, nil
}

// WriteClusters writes c to path as TSV.
func WriteClusters(ctx context.Context, path string, c Clusters) (err error) {
	if err = c.Validate(); err != nil {
		return err
	}
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := tsv.NewRowWriter(out.Writer(ctx))
	for i := range c.PeakPos {
		row := clusterRow{
			PeakPos:    int64(c.PeakPos[i]),
			Prominence: c.Prominence[i],
			Cluster:    int64(c.Label[i]),
		}
		if err = w.Write(&row); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Precomputed is a Segmenter that returns the clusters stored in a file,
// for recordings segmented ahead of time.
type Precomputed struct {
	Path string
}

// Segment reads the clusters file.  values is only used to check that every
// peak lies inside the signal; nSegments is not enforced.
func (p Precomputed) Segment(ctx context.Context, values []float64, nSegments int) (Clusters, error) {
	c, err := ReadClusters(ctx, p.Path)
	if err != nil {
		return Clusters{}, err
	}
	if n := c.Len(); n > 0 && c.PeakPos[n-1] >= len(values) {
		return Clusters{}, errors.E(errors.Invalid,
			fmt.Sprintf("%s: peak at sample %d is past the end of a %d-sample signal", p.Path, c.PeakPos[n-1], len(values)))
	}
	log.Printf("%s: loaded %d peaks (%d segments requested)", p.Path, c.Len(), nSegments)
	return c, nil
}
