// fqsample runs the full preflight/repair/trim/QC pipeline for exactly one
// sample. It is the unit of work a Slurm job executes, but it works equally
// well standalone. Status is appended to a results table inside the sample's
// own output directory, so concurrent jobs never share a file. Exits nonzero
// when the sample fails.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	_ "github.com/bioqc/fqprep/compileinfoprint"
	"github.com/bioqc/fqprep/config"
	"github.com/bioqc/fqprep/runner"
	"github.com/bioqc/fqprep/samplesheet"
	"github.com/bioqc/fqprep/status"
)

func main() {
	var group, replicate, fastq1, fastq2, control, outDir, configPath, resultsPath, logPath string
	var threads int
	var dryRun, verbose bool

	flag.StringVar(&group, "group", "", "Sample group name.")
	flag.StringVar(&replicate, "replicate", "", "Replicate identifier within the group.")
	flag.StringVar(&fastq1, "fastq1", "", "Path to the R1 mate FASTQ.")
	flag.StringVar(&fastq2, "fastq2", "", "Path to the R2 mate FASTQ.")
	flag.StringVar(&control, "control", "", "Optional control group identifier.")
	flag.StringVar(&outDir, "outdir", "", "Batch output directory; this sample writes under <outdir>/<group>_R<replicate>.")
	flag.StringVar(&configPath, "config", "", "Optional config file with tool paths.")
	flag.StringVar(&resultsPath, "results", "", "Path to this sample's results table. Defaults to <sample dir>/status.tsv.")
	flag.StringVar(&logPath, "log", "", "Path to this sample's run log. Defaults to <sample dir>/run.log.")
	flag.IntVar(&threads, "threads", 0, "Threads handed to each external tool.")
	flag.BoolVar(&dryRun, "dry-run", false, "Log the commands without executing anything.")
	flag.BoolVar(&verbose, "verbose", false, "Echo the status row and every command line.")

	flag.Parse()

	if group == "" {
		log.Fatalln("Please provide -group")
	}

	if replicate == "" {
		log.Fatalln("Please provide -replicate")
	}

	if fastq1 == "" {
		log.Fatalln("Please provide -fastq1")
	}

	if fastq2 == "" {
		log.Fatalln("Please provide -fastq2")
	}

	if outDir == "" {
		log.Fatalln("Please provide -outdir")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalln(err)
	}

	if threads > 0 {
		cfg.Threads = threads
	}

	row := samplesheet.Row{
		Group:     group,
		Replicate: replicate,
		Fastq1:    fastq1,
		Fastq2:    fastq2,
		Control:   control,
	}

	job := runner.NewJob(outDir, row)
	if err := os.MkdirAll(job.Dir, 0777); err != nil {
		log.Fatalln(err)
	}

	if resultsPath == "" {
		resultsPath = filepath.Join(job.Dir, "status.tsv")
	}

	if logPath == "" {
		logPath = filepath.Join(job.Dir, "run.log")
	}

	runLog, closer, err := status.OpenRunLog(logPath)
	if err != nil {
		log.Fatalln(err)
	}
	defer closer.Close()

	r := runner.Runner{
		OutDir:        outDir,
		Threads:       cfg.Threads,
		RepairExe:     cfg.RepairExe,
		TrimGaloreExe: cfg.TrimGaloreExe,
		FastqcExe:     cfg.FastqcExe,
		DryRun:        dryRun,
		Verbose:       verbose,
		Results:       status.Table{Path: resultsPath},
		Log:           runLog,
	}

	runLog.Printf("sample %s starting", row.Name())
	rec := r.RunSample(&job)

	if err := r.Results.Append(rec); err != nil {
		log.Fatalln(err)
	}
	if verbose {
		status.Echo(rec)
	}
	runLog.Printf("sample %s: %s (%s)", row.Name(), rec.Status, rec.Message)

	if rec.Status == status.Fail {
		os.Exit(1)
	}
}
