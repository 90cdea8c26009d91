// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package database

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/biosignal/annotation"
	"github.com/grailbio/biosignal/segment"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

const walkCSV = `acc_x,acc_y,acc_z,gyr_x,gyr_y,gyr_z
0,0,9.8,0,0,0
1,0,9.8,0,0,0
2,0,9.8,0,0,0
3,0,9.8,0,0,0
4,0,9.8,0,0,0
5,0,9.8,0,0,0
6,0,9.8,0,0,0
7,0,9.8,0,0,0
`

func writeFile(t *testing.T, path, data string) {
	assert.NoError(t, ioutil.WriteFile(path, []byte(data), 0644))
}

func TestRegistry(t *testing.T) {
	r := Builtin()
	expect.EQ(t, r.Names(), []string{"pdkit-analyzer", "pdkit-loader"})

	_, err := r.New(Profile{Name: "x", Source: "ecg"})
	expect.True(t, errors.Is(errors.NotExist, err), "got %v", err)

	_, err = r.New(Profile{Name: "x", MainTrack: "ecg"})
	expect.True(t, errors.Is(errors.Invalid, err), "got %v", err)

	db, err := r.New(Profile{Name: "lab", Source: "pdkit-loader"})
	assert.NoError(t, err)
	expect.EQ(t, db.Name(), "lab")

	defer func() {
		expect.True(t, recover() != nil)
	}()
	r.Register("pdkit-loader", NewLoader)
}

func TestLoader(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	path := filepath.Join(tmpdir, "walk.csv")
	writeFile(t, path, walkCSV)

	db, err := Builtin().New(Profile{Name: "lab", Source: "pdkit-loader", OutputPrefix: "ab_"})
	assert.NoError(t, err)
	expect.True(t, db.SetAnnotationData(ctx) != nil)

	tracks, err := db.GetData(ctx, path)
	assert.NoError(t, err)
	expect.EQ(t, len(tracks), 6)
	x := db.Track("acc_x")
	if x == nil {
		t.Fatal("acc_x not loaded")
	}
	expect.EQ(t, x.SampleRate, 102.0)
	expect.EQ(t, x.Len(), 8)
	expect.True(t, db.Track("ecg") == nil)

	assert.NoError(t, db.SetAnnotationData(ctx))
	expect.EQ(t, db.Partitions().Len(), 0)

	assert.NoError(t, db.Partitions().Add("Rest", 0, 0.05))
	saved, err := db.Save(ctx)
	assert.NoError(t, err)
	expect.EQ(t, saved, filepath.Join(tmpdir, "ab_walk.partitions.tsv"))

	other, err := Builtin().New(Profile{Name: "lab", Source: "pdkit-loader"})
	assert.NoError(t, err)
	assert.NoError(t, other.Load(ctx, saved))
	expect.EQ(t, other.Partitions().All(), []annotation.Partition{{Label: "Rest", Start: 0, End: 0.05}})
}

func TestLoaderBadRecording(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	db, err := Builtin().New(Profile{Name: "lab", Source: "pdkit-loader"})
	assert.NoError(t, err)

	missingCol := filepath.Join(tmpdir, "a.csv")
	writeFile(t, missingCol, "acc_x,acc_y\n1,2\n")
	_, err = db.GetData(ctx, missingCol)
	expect.True(t, errors.Is(errors.Invalid, err), "got %v", err)

	empty := filepath.Join(tmpdir, "b.csv")
	writeFile(t, empty, "acc_x,acc_y,acc_z,gyr_x,gyr_y,gyr_z\n")
	_, err = db.GetData(ctx, empty)
	expect.True(t, errors.Is(errors.Invalid, err), "got %v", err)

	_, err = db.GetData(ctx, filepath.Join(tmpdir, "missing.csv"))
	expect.True(t, err != nil)
}

func TestAnalyzer(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	path := filepath.Join(tmpdir, "walk.csv")
	writeFile(t, path, walkCSV)
	assert.NoError(t, segment.WriteClusters(ctx, filepath.Join(tmpdir, "walk.clusters.tsv"), segment.Clusters{
		PeakPos:    []int{1, 2, 3, 4, 5, 6},
		Prominence: []float64{1, 1, 1, 1, 1, 1},
		Label:      []int{0, 0, 1, 1, 2, 2},
	}))

	p := Profile{Name: "lab", SampleRate: 2, Segments: 2, Compress: true}
	db, err := Builtin().New(p)
	assert.NoError(t, err)
	_, err = db.GetData(ctx, path)
	assert.NoError(t, err)
	expect.EQ(t, db.(*Analyzer).ClustersPath(), filepath.Join(tmpdir, "walk.clusters.tsv"))

	assert.NoError(t, db.SetAnnotationData(ctx))
	want := []annotation.Partition{
		{Label: "Activity", Start: 1, End: 2},
		{Label: "Activity", Start: 2.5, End: 3},
	}
	expect.EQ(t, db.Partitions().All(), want)
	// Nothing is saved yet, so detection runs again from scratch.
	assert.NoError(t, db.SetAnnotationData(ctx))
	expect.EQ(t, db.Partitions().All(), want)
	saved, err := db.Save(ctx)
	assert.NoError(t, err)
	expect.EQ(t, saved, filepath.Join(tmpdir, "walk.partitions.tsv.gz"))

	// A second session restores the saved partitions instead of running
	// detection again.
	db, err = NewAnalyzer(p, segment.SegmenterFunc(func(context.Context, []float64, int) (segment.Clusters, error) {
		t.Fatal("segmenter should not run")
		return segment.Clusters{}, nil
	}))
	assert.NoError(t, err)
	_, err = db.GetData(ctx, path)
	assert.NoError(t, err)
	assert.NoError(t, db.SetAnnotationData(ctx))
	expect.EQ(t, db.Partitions().All(), want)
}

func TestAnalyzerNoTransition(t *testing.T) {
	ctx := vcontext.Background()
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	path := filepath.Join(tmpdir, "walk.csv")
	writeFile(t, path, walkCSV)

	var requested int
	db, err := NewAnalyzer(Profile{Name: "lab", Segments: 3, MinBoutSamples: 2},
		segment.SegmenterFunc(func(_ context.Context, v []float64, n int) (segment.Clusters, error) {
			requested = n
			return segment.Clusters{PeakPos: []int{1, 5}, Prominence: []float64{1, 1}, Label: []int{7, 7}}, nil
		}))
	assert.NoError(t, err)
	_, err = db.GetData(ctx, path)
	assert.NoError(t, err)
	err = db.SetAnnotationData(ctx)
	expect.True(t, errors.Is(errors.NotExist, err), "got %v", err)
	expect.EQ(t, requested, 4)
	expect.EQ(t, db.Partitions().Len(), 0)
}

func TestStem(t *testing.T) {
	for _, test := range []struct{ path, want string }{
		{"/data/walk.csv", "walk"},
		{"/data/walk.csv.gz", "walk"},
		{"s3://bucket/sub.01.tsv.zst", "sub.01"},
		{"walk", "walk"},
	} {
		expect.EQ(t, stem(test.path), test.want)
	}
}

func TestMain(m *testing.M) {
	shutdown := grail.Init()
	defer shutdown()
	os.Exit(m.Run())
}
