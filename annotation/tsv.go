package annotation

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/klauspost/compress/gzip"
)

const tsvHeader = "label\tstart\tend"

type partitionRow struct {
	Label string  `tsv:"label"`
	Start float64 `tsv:"start"`
	End   float64 `tsv:"end"`
}

// WriteTSV writes the partitions in ps, one per line, after a
// "label\tstart\tend" header.  Times are in seconds.
func WriteTSV(w io.Writer, ps *Partitions) error {
	tw := tsv.NewWriter(w)
	tw.WriteString(tsvHeader)
	if err := tw.EndLine(); err != nil {
		return err
	}
	for _, p := range ps.All() {
		tw.WriteString(p.Label)
		tw.WriteString(strconv.FormatFloat(p.Start, 'g', -1, 64))
		tw.WriteString(strconv.FormatFloat(p.End, 'g', -1, 64))
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// ReadTSV reads partitions written by WriteTSV.
func ReadTSV(r io.Reader) (*Partitions, error) {
	tr := tsv.NewReader(r)
	tr.HasHeaderRow = true
	tr.UseHeaderNames = true
	ps := &Partitions{}
	for {
		var row partitionRow
		if err := tr.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.E(errors.Invalid, err)
		}
		if err := ps.Add(row.Label, row.Start, row.End); err != nil {
			return nil, err
		}
	}
	return ps, nil
}

// Save writes ps to path.  Paths ending in ".gz" are gzip-compressed.
func Save(ctx context.Context, path string, ps *Partitions) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := out.Writer(ctx)
	if !strings.HasSuffix(path, ".gz") {
		return WriteTSV(w, ps)
	}
	gz := gzip.NewWriter(w)
	if err = WriteTSV(gz, ps); err != nil {
		return err
	}
	return gz.Close()
}

// Load reads partitions saved by Save.
func Load(ctx context.Context, path string) (ps *Partitions, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer file.CloseAndReport(ctx, in, &err)
	var r io.Reader = in.Reader(ctx)
	if u, _ := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}
	if ps, err = ReadTSV(r); err != nil {
		return nil, errors.E(err, path)
	}
	return ps, nil
}
