// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/biosignal/annotation"
	"github.com/grailbio/biosignal/bout"
	"github.com/grailbio/biosignal/gait"
	"github.com/grailbio/biosignal/segment"
)

// Analyzer reads PDKit IMU recordings and proposes gait bouts on the main
// track as initial partitions.
type Analyzer struct {
	base
	segmenter segment.Segmenter
}

// NewAnalyzer creates an Analyzer.  If seg is nil, the clusters of each
// recording are read from the file named by the profile's Clusters pattern.
func NewAnalyzer(p Profile, seg segment.Segmenter) (Database, error) {
	return &Analyzer{base: newBase(p), segmenter: seg}, nil
}

// ClustersPath returns the precomputed clusters file of the loaded
// recording.
func (a *Analyzer) ClustersPath() string {
	r := strings.NewReplacer("{dir}", filepath.Dir(a.path), "{stem}", stem(a.path))
	return r.Replace(a.profile.Clusters)
}

// SetAnnotationData restores previously saved partitions if there are any.
// Otherwise it runs gait detection on the main track and replaces the
// current partitions with one partition per bout.
func (a *Analyzer) SetAnnotationData(ctx context.Context) error {
	if err := a.loaded(); err != nil {
		return err
	}
	saved := a.annotationPath()
	_, err := file.Stat(ctx, saved)
	switch {
	case err == nil:
		log.Printf("Loading annotations from %s", saved)
		return a.Load(ctx, saved)
	case !errors.Is(errors.NotExist, err) && !os.IsNotExist(err):
		return err
	}

	seg := a.segmenter
	if seg == nil {
		seg = segment.Precomputed{Path: a.ClustersPath()}
	}
	d := gait.Detector{
		Segmenter: seg,
		Segments:  a.profile.Segments,
	}
	if a.profile.MinBoutSamples > 0 {
		d.Keep = bout.MinSamples(a.profile.MinBoutSamples)
	}
	ps := &annotation.Partitions{}
	bouts, err := d.Annotate(ctx, a.Track(a.profile.MainTrack), ps)
	if err != nil {
		return err
	}
	a.partitions = ps
	log.Printf("%s: %d gait bouts on %s", a.profile.Name, len(bouts), a.profile.MainTrack)
	return nil
}
