// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Parstat computes speedup and efficiency reports from parallel
// edit-distance benchmark logs.
//
// Usage:
//
//	parstat [--config file] [--log-level level] command [flags]
//
// The commands are:
//
//	analyze   turn every log under --in into a report under --out
//	report    print the report of a single log file
//	dedup     remove repeated lines from edit-distance reports
//	plot      draw a speedup chart for every report under --in
//	store     load every report under --in into a SQL database
//	query     print stored report rows
//
// Each log line holds one run:
//
//	Modality;OMP;MPI;String_generation_time;Communication_time;Edit_distance_time;Program_execution_time#
//	Modality;OMP;BlockSize;String_generation_time;Kernel_edit_distance_time;Program_execution_time;
//
// for the OMP+MPI and OMP+CUDA families respectively. The last
// character of each line is a terminator and is ignored. A file's
// family is taken from the nearest directory in its path whose name
// contains OMP_MPI or OMP_CUDA, unless --family is given.
//
// Runs with the same modality and configuration are averaged, and each
// configuration is compared with the "Approximate" (sequential) run of
// the same configuration. The report has one line per configuration:
// the averaged times followed by the speedup and the efficiency in
// percent.
//
// Batch commands mirror the input tree under the output directory,
// keep going after a file fails, and exit with status 1 if any file
// failed. A failed file leaves no output behind.
//
// Directory defaults and chart settings can be set in a YAML file
// passed with --config or $PARSTAT_CONFIG.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/edistbench/parstat/internal/config"
	"github.com/edistbench/parstat/internal/logutil"
	"github.com/edistbench/parstat/internal/tree"
	"github.com/edistbench/parstat/runfmt"

	_ "github.com/go-sql-driver/mysql"

	_ "github.com/edistbench/parstat/storage/db/sqlite3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := parstat(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// app holds the state shared by all commands.
type app struct {
	ctx            context.Context
	stdout, stderr io.Writer

	configPath string
	logFlags   logutil.Flags

	cfg *config.Config
	log *zap.Logger
}

// parstat runs the command line args, writing results to stdout and
// diagnostics to stderr.
func parstat(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	a := &app{ctx: ctx, stdout: stdout, stderr: stderr}

	k := kingpin.New("parstat", "Speedup and efficiency reports for parallel benchmark logs.")
	k.UsageWriter(stderr)
	k.ErrorWriter(stderr)
	k.Flag("config", "YAML configuration file.").Envar("PARSTAT_CONFIG").StringVar(&a.configPath)
	a.logFlags.Register(k)
	k.PreAction(func(*kingpin.ParseContext) error { return a.setup() })

	(&analyzeCommand{}).setup(a, k)
	(&reportCommand{}).setup(a, k)
	(&dedupCommand{}).setup(a, k)
	(&plotCommand{}).setup(a, k)
	(&storeCommand{}).setup(a, k)
	(&queryCommand{}).setup(a, k)

	if _, err := k.Parse(args); err != nil {
		fmt.Fprintf(stderr, "parstat: %v\n", err)
		return err
	}
	return nil
}

func (a *app) setup() error {
	if a.logFlags.NoColor {
		color.NoColor = true
	}
	a.log = a.logFlags.NewLogger(a.stderr)
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// family returns the family forced by name, or the one detected from
// path.
func family(name, path string) (runfmt.Family, error) {
	if name != "" {
		return runfmt.ParseFamily(name)
	}
	if f, ok := runfmt.DetectFamily(path); ok {
		return f, nil
	}
	return 0, errors.Wrap(tree.ErrSkip, "no OMP_MPI or OMP_CUDA directory in path")
}

// orDefault returns v, or def if v is empty.
func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// batchFlags are the flags of the commands that walk a tree.
type batchFlags struct {
	in, out string
	jobs    int
}

func (b *batchFlags) setup(cmd *kingpin.CmdClause, out bool) {
	cmd.Flag("in", "Input directory.").StringVar(&b.in)
	if out {
		cmd.Flag("out", "Output directory.").StringVar(&b.out)
	}
	cmd.Flag("jobs", "Number of files processed at once (default: config, then one per CPU).").Short('j').IntVar(&b.jobs)
}

func (b *batchFlags) walker(a *app, in, out string) *tree.Walker {
	jobs := b.jobs
	if jobs == 0 {
		jobs = a.cfg.Jobs
	}
	return &tree.Walker{
		Root:    orDefault(b.in, in),
		OutRoot: out,
		Jobs:    jobs,
		Log:     a.log,
	}
}

// summarize prints the outcome of a batch command and returns an
// error if any file failed.
func (a *app) summarize(name string, st tree.Stats, err error) error {
	ok, bad := color.New(color.FgGreen), color.New(color.FgRed)
	ok.Fprintf(a.stdout, "%s: %d processed", name, st.Processed)
	if st.Skipped > 0 {
		fmt.Fprintf(a.stdout, ", %d skipped", st.Skipped)
	}
	if st.Failed > 0 {
		bad.Fprintf(a.stdout, ", %d failed", st.Failed)
	}
	fmt.Fprintln(a.stdout)
	if err == nil {
		return nil
	}
	if st.Failed == 0 {
		// The walk itself failed.
		return err
	}
	return errors.Errorf("%d of %d files failed", st.Failed, st.Processed+st.Failed+st.Skipped)
}
