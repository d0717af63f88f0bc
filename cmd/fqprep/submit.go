package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kballard/go-shellquote"

	"github.com/bioqc/fqprep/config"
	"github.com/bioqc/fqprep/samplesheet"
	"github.com/bioqc/fqprep/slurm"
	"github.com/bioqc/fqprep/status"
)

type submitOptions struct {
	cfg         config.Config
	outDir      string
	configPath  string
	fqsample    string
	passthrough []string
	dryRun      bool
	verbose     bool
}

// submitAll writes one batch script per valid samplesheet row and hands each
// to sbatch. The submitted job runs fqsample, which does its own status
// bookkeeping inside the sample directory; the batch table here records only
// SKIP and SUBMITTED rows. In a dry run the scripts are written but nothing
// is submitted.
func submitAll(opts submitOptions, rows []samplesheet.Row, results status.Table, runLog *log.Logger) error {
	if !opts.dryRun {
		if err := slurm.Available(opts.cfg.SbatchExe); err != nil {
			return err
		}
	}

	fqsampleExe, err := resolveFqsample(opts.fqsample)
	if err != nil {
		return err
	}

	scriptDir := filepath.Join(opts.outDir, "scripts")
	logDir := filepath.Join(opts.outDir, "logs")
	for _, dir := range []string{scriptDir, logDir} {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return err
		}
	}

	submitted := 0
	for i, row := range rows {
		rec := status.Record{
			Group:     row.Group,
			Replicate: row.Replicate,
			Fastq1:    row.Fastq1,
			Fastq2:    row.Fastq2,
		}

		if err := row.Validate(); err != nil {
			rec.Status = status.Skip
			rec.Message = err.Error()
			runLog.Printf("row %d skipped: %v", i+1, err)
			if err := results.Append(rec); err != nil {
				return err
			}
			if opts.verbose {
				status.Echo(rec)
			}
			continue
		}

		job := slurm.Job{
			Name:      row.Name(),
			LogDir:    logDir,
			CPUs:      opts.cfg.Threads,
			Partition: opts.cfg.Slurm.Partition,
			Time:      opts.cfg.Slurm.Time,
			Memory:    opts.cfg.Slurm.Memory,
			Command:   fqsampleCommand(fqsampleExe, opts, row),
		}

		scriptPath := filepath.Join(scriptDir, row.Name()+".sbatch")
		if err := job.WriteScript(scriptPath); err != nil {
			return err
		}

		if opts.dryRun {
			runLog.Printf("dry-run: wrote %s; not submitting", scriptPath)
			continue
		}

		jobID, err := slurm.Submit(opts.cfg.SbatchExe, scriptPath, opts.passthrough)
		if err != nil {
			rec.Status = status.Fail
			rec.Message = err.Error()
			runLog.Printf("sample %s submission failed: %v", row.Name(), err)
		} else {
			rec.Status = status.Submitted
			rec.Message = "job " + jobID
			runLog.Printf("sample %s submitted as job %s", row.Name(), jobID)
			submitted++
		}

		if err := results.Append(rec); err != nil {
			return err
		}
		if opts.verbose {
			status.Echo(rec)
		}
	}

	runLog.Printf("%d of %d samples submitted", submitted, len(rows))

	return nil
}

// fqsampleCommand builds the single-sample command line a batch script runs.
// Each job writes its status row into its own sample directory, so no two
// jobs ever append to the same file.
func fqsampleCommand(fqsampleExe string, opts submitOptions, row samplesheet.Row) string {
	words := []string{
		fqsampleExe,
		"-group", row.Group,
		"-replicate", row.Replicate,
		"-fastq1", row.Fastq1,
		"-fastq2", row.Fastq2,
		"-outdir", opts.outDir,
		"-threads", strconv.Itoa(opts.cfg.Threads),
	}
	if row.Control != "" {
		words = append(words, "-control", row.Control)
	}
	if opts.configPath != "" {
		words = append(words, "-config", opts.configPath)
	}
	if opts.verbose {
		words = append(words, "-verbose")
	}

	return shellquote.Join(words...)
}

// resolveFqsample locates the single-sample binary: the explicit flag, a
// sibling of the running fqprep binary, or whatever is on PATH.
func resolveFqsample(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("fqsample binary not found at %s: %w", explicit, err)
		}
		return explicit, nil
	}

	self, err := os.Executable()
	if err == nil {
		sibling := filepath.Join(filepath.Dir(self), "fqsample")
		if _, err := os.Stat(sibling); err == nil {
			return sibling, nil
		}
	}

	return "fqsample", nil
}
