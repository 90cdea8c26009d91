package signal

import (
	"context"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// TableOpts controls how ReadTable parses its input.
type TableOpts struct {
	// Delimiter separates cells.  Defaults to ','.
	Delimiter rune
	// Comment, if nonzero, marks lines to skip.
	Comment rune
}

// Table is a column-oriented numeric table with a header row.
type Table struct {
	// Name is the base name of the file the table was read from.
	Name string
	// Columns lists the header names in file order.
	Columns []string

	cols map[string][]float64
	// bad records the first unparsable cell per column.  The error is only
	// reported if the column is requested.
	bad map[string]error
}

// ReadTable reads a delimited table from path.  Compressed inputs (.gz, .bz2,
// .zst) are decompressed transparently.
func ReadTable(ctx context.Context, path string, opts TableOpts) (t *Table, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer file.CloseAndReport(ctx, in, &err)
	var r io.Reader = in.Reader(ctx)
	if u, _ := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}
	if t, err = ParseTable(r, opts); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	t.Name = filepath.Base(path)
	log.Debug.Printf("%s: read %d columns, %d rows", path, len(t.Columns), t.Rows())
	return t, nil
}

// ParseTable parses a delimited table.  The first row must be the header.
// Empty cells become NaN.
func ParseTable(r io.Reader, opts TableOpts) (*Table, error) {
	tr := tsv.NewReader(r)
	tr.Comma = ','
	if opts.Delimiter != 0 {
		tr.Comma = opts.Delimiter
	}
	tr.Comment = opts.Comment
	// Every row must have as many cells as the header.
	tr.FieldsPerRecord = 0
	header, err := tr.Reader.Read()
	if err == io.EOF {
		return nil, errors.New("empty table")
	}
	if err != nil {
		return nil, errors.Wrap(err, "header")
	}
	t := &Table{
		Columns: make([]string, len(header)),
		cols:    make(map[string][]float64, len(header)),
		bad:     map[string]error{},
	}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, ok := t.cols[name]; ok {
			return nil, errors.Errorf("duplicate column %q", name)
		}
		t.Columns[i] = name
		t.cols[name] = nil
	}
	for row := 1; ; row++ {
		rec, err := tr.Reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", row)
		}
		for i, cell := range rec {
			name := t.Columns[i]
			v, err := parseCell(cell)
			if err != nil && t.bad[name] == nil {
				t.bad[name] = errors.Wrapf(err, "row %d column %q", row, name)
			}
			t.cols[name] = append(t.cols[name], v)
		}
	}
	return t, nil
}

func parseCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

// Rows returns the number of data rows.
func (t *Table) Rows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.cols[t.Columns[0]])
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]float64, error) {
	v, ok := t.cols[name]
	if !ok {
		return nil, errors.Errorf("%s: column %q not found (have %s)", t.Name, name, strings.Join(t.Columns, ","))
	}
	if err := t.bad[name]; err != nil {
		return nil, err
	}
	return v, nil
}

// Tracks builds one track per channel, sampled at rate Hz.  The tracks are
// returned in the order of channels.
func (t *Table) Tracks(channels []string, rate float64) ([]*Track, error) {
	if !(rate > 0) {
		return nil, errors.Errorf("invalid sample rate %v", rate)
	}
	tracks := make([]*Track, 0, len(channels))
	for _, ch := range channels {
		v, err := t.Column(ch)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, NewTrack(ch, v, rate, t.Name))
	}
	return tracks, nil
}
