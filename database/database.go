// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package database defines the data sources a recording can be read from.
//
// A Database loads the tracks of one recording, proposes initial
// annotations for it, and saves or restores the partitions made on it.
// Implementations are registered by name in a Registry and selected through
// a Profile.
package database

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/biosignal/annotation"
	"github.com/grailbio/biosignal/signal"
)

// Database is one data source.
type Database interface {
	// Name returns the profile name.
	Name() string
	// GetData loads the recording at path.  It must be called before the
	// other methods.
	GetData(ctx context.Context, path string) ([]*signal.Track, error)
	// SetAnnotationData sets the initial annotations of the loaded
	// recording.
	SetAnnotationData(ctx context.Context) error
	// Save writes the current partitions and returns the file written.
	Save(ctx context.Context) (string, error)
	// Load replaces the current partitions with the ones saved at path.
	Load(ctx context.Context, path string) error
	// Partitions returns the current partitions.
	Partitions() *annotation.Partitions
	// Track returns the named track, or nil.
	Track(label string) *signal.Track
}

// Factory creates a Database for a profile.
type Factory func(Profile) (Database, error)

// Registry maps implementation names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Builtin returns a registry holding the implementations of this package:
// "pdkit-loader" and "pdkit-analyzer".
func Builtin() *Registry {
	r := NewRegistry()
	r.Register("pdkit-loader", NewLoader)
	r.Register("pdkit-analyzer", func(p Profile) (Database, error) { return NewAnalyzer(p, nil) })
	return r
}

// Register adds a factory.  It panics if name is already registered.
func (r *Registry) Register(name string, f Factory) {
	if _, ok := r.factories[name]; ok {
		log.Panicf("database: %s registered twice", name)
	}
	r.factories[name] = f
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the Database selected by p.Source.  Unset profile fields are
// taken from DefaultProfile.
func (r *Registry) New(p Profile) (Database, error) {
	p = p.withDefaults()
	f, ok := r.factories[p.Source]
	if !ok {
		return nil, errors.E(errors.NotExist, fmt.Sprintf("database: unknown source %q (have %s)",
			p.Source, strings.Join(r.Names(), ", ")))
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return f(p)
}

// base implements the parts of Database shared by all sources.
type base struct {
	profile    Profile
	path       string
	tracks     []*signal.Track
	partitions *annotation.Partitions
}

func newBase(p Profile) base {
	return base{profile: p.withDefaults(), partitions: &annotation.Partitions{}}
}

func (b *base) Name() string { return b.profile.Name }

func (b *base) Partitions() *annotation.Partitions { return b.partitions }

func (b *base) Track(label string) *signal.Track {
	for _, t := range b.tracks {
		if t.Label == label {
			return t
		}
	}
	return nil
}

// GetData reads the profile's channels from the table at path.
func (b *base) GetData(ctx context.Context, path string) ([]*signal.Track, error) {
	delim, err := b.profile.delimiter()
	if err != nil {
		return nil, err
	}
	tbl, err := signal.ReadTable(ctx, path, signal.TableOpts{Delimiter: delim})
	if err != nil {
		return nil, err
	}
	tracks, err := tbl.Tracks(b.profile.Channels, b.profile.SampleRate)
	if err != nil {
		return nil, errors.E(errors.Invalid, err)
	}
	b.path, b.tracks = path, tracks
	b.partitions = &annotation.Partitions{}
	if err := b.checkSetup(); err != nil {
		return nil, err
	}
	log.Printf("%s: loaded %d tracks from %s", b.profile.Name, len(tracks), path)
	return tracks, nil
}

// checkSetup catches profile mistakes early.
func (b *base) checkSetup() error {
	main := b.Track(b.profile.MainTrack)
	if main == nil {
		return errors.E(errors.Invalid, fmt.Sprintf("%s: main track %q was not loaded", b.profile.Name, b.profile.MainTrack))
	}
	if main.Len() == 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("%s: %s is empty", b.profile.Name, b.path))
	}
	return nil
}

func (b *base) loaded() error {
	if b.path == "" {
		return errors.E(errors.Invalid, fmt.Sprintf("%s: no recording loaded", b.profile.Name))
	}
	return nil
}

// SetAnnotationData does nothing; annotation starts from scratch.
func (b *base) SetAnnotationData(ctx context.Context) error {
	return b.loaded()
}

// stem returns the name of the recording without directory and extensions,
// e.g. "walk" for "/data/walk.csv.gz".
func stem(path string) string {
	name := filepath.Base(path)
	for _, ext := range []string{".gz", ".bz2", ".zst"} {
		name = strings.TrimSuffix(name, ext)
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// annotationPath is where Save writes the partitions of the loaded
// recording.
func (b *base) annotationPath() string {
	dir := b.profile.OutputDir
	if dir == "" {
		dir = filepath.Dir(b.path)
	}
	name := b.profile.OutputPrefix + stem(b.path) + ".partitions.tsv"
	if b.profile.Compress {
		name += ".gz"
	}
	return filepath.Join(dir, name)
}

// Save writes the partitions next to the recording, or into the profile's
// output directory.
func (b *base) Save(ctx context.Context) (string, error) {
	if err := b.loaded(); err != nil {
		return "", err
	}
	path := b.annotationPath()
	if err := annotation.Save(ctx, path, b.partitions); err != nil {
		return "", err
	}
	log.Printf("%s: saved %d partitions to %s", b.profile.Name, b.partitions.Len(), path)
	return path, nil
}

// Load replaces the partitions with the ones saved at path.
func (b *base) Load(ctx context.Context, path string) error {
	ps, err := annotation.Load(ctx, path)
	if err != nil {
		return err
	}
	b.partitions = ps
	return nil
}

// Loader reads PDKit IMU recordings without proposing annotations.
type Loader struct {
	base
}

// NewLoader creates a Loader.
func NewLoader(p Profile) (Database, error) {
	return &Loader{base: newBase(p)}, nil
}
