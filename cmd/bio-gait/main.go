// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// bio-gait finds walking bouts in wearable sensor recordings and saves them
// as annotation partitions.
//
// Subcommands:
//
//   bio-gait bouts [-rate hz] [-min-samples n] clusters.tsv
//   bio-gait analyze [-database name] [-config databases.yaml] recording.csv
//   bio-gait databases
package main

import "github.com/grailbio/biosignal/cmd/bio-gait/cmd"

func main() {
	cmd.Run()
}
