package cmd

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/biosignal/database"
	"v.io/x/lib/cmdline"
)

func newCmdBouts() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "bouts",
		Short:    "Reduce a clusters file to gait bouts",
		ArgsName: "clusters.tsv",
		Long: `
Bouts reads a peak/cluster table (columns peak_pos, prominence, cluster) and
prints one line per bout: start_sample, end_sample, start_time, end_time.
Times are in seconds at the sampling rate given by -rate.`,
	}
	opts := boutsOpts{}
	cmd.Flags.Float64Var(&opts.rate, "rate", database.DefaultProfile.SampleRate, "Sampling rate of the signal, in Hz")
	cmd.Flags.IntVar(&opts.minSamples, "min-samples", 0, "Drop bouts spanning fewer samples. Zero keeps all bouts")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("bouts takes one clusters path, but got %v", argv)
		}
		return bouts(vcontext.Background(), env.Stdout, argv[0], opts)
	})
	return cmd
}

func newCmdAnalyze() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "analyze",
		Short:    "Detect gait bouts in a recording and save them as partitions",
		ArgsName: "recording",
		Long: `
Analyze loads a recording through a database profile, sets its initial
annotations and saves them. The path of the saved partitions is printed.

With -config, the profile named by -database is read from a YAML file:

  databases:
    - name: walk-lab
      source: pdkit-analyzer
      sampleRate: 100
      outputPrefix: ab_

Without -config, -database names a registered source, e.g. pdkit-loader.`,
	}
	opts := analyzeOpts{}
	cmd.Flags.StringVar(&opts.database, "database", database.DefaultProfile.Name, "Profile name, or registered source name without -config")
	cmd.Flags.StringVar(&opts.config, "config", "", "YAML file holding database profiles")
	cmd.Flags.IntVar(&opts.segments, "segments", 0, "Override the number of gait segments")
	cmd.Flags.StringVar(&opts.clusters, "clusters", "", "Override the clusters file; {dir} and {stem} are expanded")
	cmd.Flags.StringVar(&opts.out, "out", "", "Override the output directory")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("analyze takes one recording path, but got %v", argv)
		}
		path, err := analyze(vcontext.Background(), database.Builtin(), argv[0], opts)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(env.Stdout, path)
		return err
	})
	return cmd
}

func newCmdInspect() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "inspect",
		Short:    "Print the partitions of a recording",
		ArgsName: "recording",
		Long: `
Inspect loads a recording and its initial annotations the way analyze does,
without saving them, and prints one line per partition: label, start, end,
duration and the minimum and maximum of the main track over the partition.
Profiles are selected as in analyze.`,
	}
	opts := inspectOpts{}
	cmd.Flags.StringVar(&opts.database, "database", database.DefaultProfile.Name, "Profile name, or registered source name without -config")
	cmd.Flags.StringVar(&opts.config, "config", "", "YAML file holding database profiles")
	cmd.Flags.StringVar(&opts.clusters, "clusters", "", "Override the clusters file; {dir} and {stem} are expanded")
	cmd.Flags.StringVar(&opts.out, "out", "", "Override the directory holding saved partitions")
	cmd.Flags.Float64Var(&opts.at, "at", -1, "Print only the partition containing this time, in seconds")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("inspect takes one recording path, but got %v", argv)
		}
		return inspect(vcontext.Background(), env.Stdout, database.Builtin(), argv[0], opts)
	})
	return cmd
}

func newCmdDatabases() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "databases",
		Short: "List the registered database sources",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("databases takes no arguments, but got %v", argv)
		}
		_, err := fmt.Fprintln(env.Stdout, strings.Join(database.Builtin().Names(), "\n"))
		return err
	})
	return cmd
}

// Run is the entry point of bio-gait.
func Run() {
	shutdown := grail.Init()
	defer shutdown()
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-gait",
			Short:    "Tools for finding gait bouts in sensor recordings",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdBouts(),
				newCmdAnalyze(),
				newCmdInspect(),
				newCmdDatabases(),
			},
		})
}
