// fqprep validates, repairs, and trims every paired-end sample listed in a
// samplesheet, either sequentially on the local machine or fanned out across
// a Slurm cluster as one job per sample. Scheduler options after -- are
// passed through to sbatch verbatim.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/bioqc/fqprep/compileinfo"
	_ "github.com/bioqc/fqprep/compileinfoprint"
	"github.com/bioqc/fqprep/config"
	"github.com/bioqc/fqprep/runner"
	"github.com/bioqc/fqprep/samplesheet"
	"github.com/bioqc/fqprep/status"
)

func main() {
	var sheetPath, outDir, mode, configPath, resultsPath, fixedPath, logPath, fqsamplePath string
	var threads int
	var dryRun, verbose, printVersion bool

	flag.StringVar(&sheetPath, "samplesheet", "", "Path to the CSV samplesheet (group,replicate,fastq_1,fastq_2,control).")
	flag.StringVar(&outDir, "outdir", "", "Directory where per-sample outputs, the results table, and logs are written.")
	flag.StringVar(&mode, "mode", "local", "Execution mode: local (sequential, in-process) or slurm (one sbatch job per sample).")
	flag.StringVar(&configPath, "config", "", "Optional config file with tool paths and Slurm defaults.")
	flag.StringVar(&resultsPath, "results", "", "Path to the results table. Defaults to <outdir>/results.tsv.")
	flag.StringVar(&fixedPath, "fixed-samplesheet", "", "Path for the fixed samplesheet covering passing samples. Defaults to <outdir>/samplesheet.fixed.csv.")
	flag.StringVar(&logPath, "log", "", "Path to the free-text run log. Defaults to <outdir>/fqprep.log.")
	flag.StringVar(&fqsamplePath, "fqsample", "", "Path to the fqsample binary for Slurm jobs. Defaults to the binary next to fqprep.")
	flag.IntVar(&threads, "threads", 0, "Threads handed to each external tool. Overrides the config file when nonzero.")
	flag.BoolVar(&dryRun, "dry-run", false, "Log the commands (local) or write the batch scripts (slurm) without executing anything.")
	flag.BoolVar(&verbose, "verbose", false, "Echo each status row to the terminal and log every command line.")
	flag.BoolVar(&printVersion, "version", false, "Print build information and exit.")

	// Everything after -- belongs to sbatch, not to us
	args, passthrough := splitPassthrough(os.Args[1:])
	flag.CommandLine.Parse(args)

	if printVersion {
		fmt.Println(compileinfo.Get())
		os.Exit(0)
	}

	if sheetPath == "" {
		log.Fatalln("Please provide -samplesheet")
	}

	if outDir == "" {
		log.Fatalln("Please provide -outdir")
	}

	if mode != "local" && mode != "slurm" {
		log.Fatalf("Unknown -mode %q (expected local or slurm)\n", mode)
	}

	if mode == "local" && len(passthrough) > 0 {
		log.Fatalln("Scheduler pass-through options after -- require -mode slurm")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalln(err)
	}

	if threads > 0 {
		cfg.Threads = threads
	}

	if resultsPath == "" {
		resultsPath = filepath.Join(outDir, "results.tsv")
	}

	if fixedPath == "" {
		fixedPath = filepath.Join(outDir, "samplesheet.fixed.csv")
	}

	if logPath == "" {
		logPath = filepath.Join(outDir, "fqprep.log")
	}

	if err := os.MkdirAll(outDir, 0777); err != nil {
		log.Fatalln(err)
	}

	rows, err := samplesheet.Read(sheetPath)
	if err != nil {
		log.Fatalln(err)
	}
	log.Printf("Loaded %d samplesheet rows from %s\n", len(rows), sheetPath)

	runLog, closer, err := status.OpenRunLog(logPath)
	if err != nil {
		log.Fatalln(err)
	}
	defer closer.Close()

	results := status.Table{Path: resultsPath}

	switch mode {
	case "local":
		if err := runLocal(cfg, rows, results, runLog, outDir, fixedPath, dryRun, verbose); err != nil {
			log.Fatalln(err)
		}
	case "slurm":
		opts := submitOptions{
			cfg:         cfg,
			outDir:      outDir,
			configPath:  configPath,
			fqsample:    fqsamplePath,
			passthrough: passthrough,
			dryRun:      dryRun,
			verbose:     verbose,
		}
		if err := submitAll(opts, rows, results, runLog); err != nil {
			log.Fatalln(err)
		}
	}
}

func runLocal(cfg config.Config, rows []samplesheet.Row, results status.Table, runLog *log.Logger, outDir, fixedPath string, dryRun, verbose bool) error {
	r := runner.Runner{
		OutDir:        outDir,
		Threads:       cfg.Threads,
		RepairExe:     cfg.RepairExe,
		TrimGaloreExe: cfg.TrimGaloreExe,
		FastqcExe:     cfg.FastqcExe,
		DryRun:        dryRun,
		Verbose:       verbose,
		Results:       results,
		Log:           runLog,
	}

	fixed, err := r.RunLocal(rows)
	if err != nil {
		return err
	}

	if dryRun {
		runLog.Printf("dry-run complete; no samplesheet written")
		return nil
	}

	runLog.Printf("%d of %d samples passed", len(fixed), len(rows))

	if err := samplesheet.Write(fixedPath, fixed); err != nil {
		return err
	}
	runLog.Printf("fixed samplesheet written to %s", fixedPath)

	return nil
}

// splitPassthrough divides the command line at the first bare "--" so that
// scheduler options can ride along without colliding with our flags.
func splitPassthrough(args []string) ([]string, []string) {
	for i, a := range args {
		if a == "--" {
			return args[:i], args[i+1:]
		}
	}

	return args, nil
}
