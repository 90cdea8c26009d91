package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/biosignal/annotation"
	"github.com/grailbio/biosignal/database"
)

type inspectOpts struct {
	analyzeOpts
	// at selects the partition containing this time, in seconds.  Negative
	// selects every partition.
	at float64
}

const inspectHeader = "label\tstart\tend\tduration\tmin\tmax"

// inspect loads the recording at path with its initial annotations and
// writes one TSV line per partition to w, with the range of the main track
// over the partition.
func inspect(ctx context.Context, w io.Writer, reg *database.Registry, path string, opts inspectOpts) error {
	p, err := opts.profile(ctx)
	if err != nil {
		return err
	}
	db, err := reg.New(p)
	if err != nil {
		return err
	}
	if _, err = db.GetData(ctx, path); err != nil {
		return err
	}
	if err = db.SetAnnotationData(ctx); err != nil {
		return err
	}
	main := db.Track(p.MainTrack)
	ps := db.Partitions()
	log.Printf("%v: %.3fs, %d partitions, labels %v", main, main.Duration(), ps.Len(), ps.Labels())

	parts := ps.All()
	if opts.at >= 0 {
		part, ok := ps.Find(opts.at)
		if !ok {
			return errors.E(errors.NotExist, fmt.Sprintf("%s: no partition at %gs", path, opts.at))
		}
		parts = []annotation.Partition{part}
	}
	seconds := func(s float64) string { return strconv.FormatFloat(s, 'f', 3, 64) }
	tw := tsv.NewWriter(w)
	tw.WriteString(inspectHeader)
	if err := tw.EndLine(); err != nil {
		return err
	}
	for _, part := range parts {
		min, max := main.YRange(part.Start, part.End)
		tw.WriteString(part.Label)
		tw.WriteString(seconds(part.Start))
		tw.WriteString(seconds(part.End))
		tw.WriteString(seconds(part.End - part.Start))
		tw.WriteString(strconv.FormatFloat(min, 'g', -1, 64))
		tw.WriteString(strconv.FormatFloat(max, 'g', -1, 64))
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}
