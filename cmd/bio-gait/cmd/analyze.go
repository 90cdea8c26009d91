package cmd

import (
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/biosignal/database"
)

type analyzeOpts struct {
	database string
	config   string
	segments int
	clusters string
	out      string
}

// profile picks the database profile selected by opts.  Without a config
// file, opts.database is either the default profile name or a registered
// source.
func (opts analyzeOpts) profile(ctx context.Context) (database.Profile, error) {
	var p database.Profile
	if opts.config != "" {
		profiles, err := database.LoadProfiles(ctx, opts.config)
		if err != nil {
			return p, err
		}
		found := false
		for _, q := range profiles {
			if q.Name == opts.database {
				p, found = q, true
				break
			}
		}
		if !found {
			return p, errors.E(errors.NotExist, fmt.Sprintf("%s: no database named %q", opts.config, opts.database))
		}
	} else {
		p = database.DefaultProfile
		if opts.database != "" && opts.database != p.Name {
			p.Name, p.Source = opts.database, opts.database
		}
	}
	if opts.segments > 0 {
		p.Segments = opts.segments
	}
	if opts.clusters != "" {
		p.Clusters = opts.clusters
	}
	if opts.out != "" {
		p.OutputDir = opts.out
	}
	return p, nil
}

// analyze loads the recording at path, sets its initial annotations and
// saves them.  It returns the path of the saved partitions.
func analyze(ctx context.Context, reg *database.Registry, path string, opts analyzeOpts) (string, error) {
	p, err := opts.profile(ctx)
	if err != nil {
		return "", err
	}
	db, err := reg.New(p)
	if err != nil {
		return "", err
	}
	if _, err := db.GetData(ctx, path); err != nil {
		return "", err
	}
	if err := db.SetAnnotationData(ctx); err != nil {
		return "", err
	}
	for _, part := range db.Partitions().All() {
		log.Debug.Printf("%s: %v", db.Name(), part)
	}
	return db.Save(ctx)
}
