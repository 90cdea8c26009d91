// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package database

import (
	"context"
	"fmt"
	"io/ioutil"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"gopkg.in/yaml.v3"
)

// Profile describes one data source: which implementation reads it and how
// its recordings are laid out.
type Profile struct {
	// Name identifies the profile on the command line.
	Name string `yaml:"name"`
	// Source is the registered implementation, e.g. "pdkit-analyzer".
	Source string `yaml:"source"`
	// SampleRate of every channel, in Hz.
	SampleRate float64 `yaml:"sampleRate"`
	// Channels are the table columns loaded as tracks.
	Channels []string `yaml:"channels"`
	// MainTrack is the track annotations apply to.  It must be one of
	// Channels.
	MainTrack string `yaml:"mainTrack"`
	// Delimiter of the recording tables: "," (default) or "tab".
	Delimiter string `yaml:"delimiter"`
	// OutputDir receives saved partitions.  Empty means next to the
	// recording.
	OutputDir string `yaml:"outputDir"`
	// OutputPrefix is prepended to saved file names, e.g. the annotator's
	// initials.
	OutputPrefix string `yaml:"outputPrefix"`
	// Compress gzips saved partitions.
	Compress bool `yaml:"compress"`
	// Segments is the number of gait segments requested from the
	// segmenter.
	Segments int `yaml:"segments"`
	// Clusters locates precomputed segmentation results.  "{dir}" and
	// "{stem}" are replaced by the directory and the extension-less name of
	// the recording.
	Clusters string `yaml:"clusters"`
	// MinBoutSamples drops shorter bouts.  Zero keeps all bouts.
	MinBoutSamples int `yaml:"minBoutSamples"`
}

// PDKitChannels are the columns of a PDKit IMU export.
var PDKitChannels = []string{"acc_x", "acc_y", "acc_z", "gyr_x", "gyr_y", "gyr_z"}

// DefaultProfile is used for fields a profile leaves unset.
var DefaultProfile = Profile{
	Name:       "pdkit",
	Source:     "pdkit-analyzer",
	SampleRate: 102,
	Channels:   PDKitChannels,
	MainTrack:  "acc_x",
	Delimiter:  ",",
	Segments:   1,
	Clusters:   "{dir}/{stem}.clusters.tsv",
}

// withDefaults fills the unset fields of p from DefaultProfile.
func (p Profile) withDefaults() Profile {
	d := DefaultProfile
	if p.Source == "" {
		p.Source = d.Source
	}
	if p.SampleRate == 0 {
		p.SampleRate = d.SampleRate
	}
	if len(p.Channels) == 0 {
		p.Channels = d.Channels
	}
	if p.MainTrack == "" {
		p.MainTrack = d.MainTrack
	}
	if p.Delimiter == "" {
		p.Delimiter = d.Delimiter
	}
	if p.Segments == 0 {
		p.Segments = d.Segments
	}
	if p.Clusters == "" {
		p.Clusters = d.Clusters
	}
	return p
}

// Validate checks that p is usable.
func (p Profile) Validate() error {
	if !(p.SampleRate > 0) {
		return errors.E(errors.Invalid, fmt.Sprintf("profile %s: invalid sample rate %v", p.Name, p.SampleRate))
	}
	if p.Segments < 1 {
		return errors.E(errors.Invalid, fmt.Sprintf("profile %s: invalid number of segments %d", p.Name, p.Segments))
	}
	if _, err := p.delimiter(); err != nil {
		return err
	}
	for _, ch := range p.Channels {
		if ch == p.MainTrack {
			return nil
		}
	}
	return errors.E(errors.Invalid, fmt.Sprintf("profile %s: main track %q is not one of the channels %v", p.Name, p.MainTrack, p.Channels))
}

func (p Profile) delimiter() (rune, error) {
	switch p.Delimiter {
	case "", ",":
		return ',', nil
	case "tab", "\t":
		return '\t', nil
	case ";":
		return ';', nil
	}
	return 0, errors.E(errors.Invalid, fmt.Sprintf("profile %s: unsupported delimiter %q", p.Name, p.Delimiter))
}

type profileFile struct {
	Databases []Profile `yaml:"databases"`
}

// ParseProfiles parses a YAML document of the form
//
//   databases:
//     - name: walk-lab
//       source: pdkit-analyzer
//       sampleRate: 100
//
// Unset fields take their value from DefaultProfile.
func ParseProfiles(data []byte) ([]Profile, error) {
	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, errors.E(errors.Invalid, "parse profiles", err)
	}
	seen := map[string]bool{}
	profiles := make([]Profile, len(pf.Databases))
	for i, p := range pf.Databases {
		if p.Name == "" {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("profile #%d has no name", i))
		}
		if seen[p.Name] {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("duplicate profile %s", p.Name))
		}
		seen[p.Name] = true
		p = p.withDefaults()
		if err := p.Validate(); err != nil {
			return nil, err
		}
		profiles[i] = p
	}
	return profiles, nil
}

// LoadProfiles reads profiles from a YAML file.
func LoadProfiles(ctx context.Context, path string) (profiles []Profile, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer file.CloseAndReport(ctx, in, &err)
	data, err := ioutil.ReadAll(in.Reader(ctx))
	if err != nil {
		return nil, errors.E(err, path)
	}
	if profiles, err = ParseProfiles(data); err != nil {
		return nil, errors.E(err, path)
	}
	return profiles, nil
}
