package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/biosignal/bout"
	"github.com/grailbio/biosignal/segment"
)

type boutsOpts struct {
	rate       float64
	minSamples int
}

const boutsHeader = "start_sample\tend_sample\tstart_time\tend_time"

// bouts reduces the clusters file at path and writes one TSV line per bout
// to w.
func bouts(ctx context.Context, w io.Writer, path string, opts boutsOpts) error {
	if !(opts.rate > 0) {
		return errors.E(errors.Invalid, fmt.Sprintf("bouts: invalid sample rate %v", opts.rate))
	}
	c, err := segment.ReadClusters(ctx, path)
	if err != nil {
		return err
	}
	r := bout.Reducer{}
	if opts.minSamples > 0 {
		r.Keep = bout.MinSamples(opts.minSamples)
	}
	bs, err := r.Reduce(c.PeakPos, c.Label)
	if err != nil {
		return err
	}
	log.Debug.Printf("%s: %d peaks, %d bouts", path, c.Len(), len(bs))
	tw := tsv.NewWriter(w)
	tw.WriteString(boutsHeader)
	if err := tw.EndLine(); err != nil {
		return err
	}
	for _, b := range bs {
		start, end := b.Seconds(opts.rate)
		tw.WriteString(strconv.Itoa(b.StartSample))
		tw.WriteString(strconv.Itoa(b.EndSample))
		tw.WriteString(strconv.FormatFloat(start, 'f', 3, 64))
		tw.WriteString(strconv.FormatFloat(end, 'f', 3, 64))
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}
