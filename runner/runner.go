// Package runner executes the per-sample pipeline: preflight the input pair,
// repair it with BBTools, trim with Trim Galore, QC with FastQC, and record
// one status row per sample. Samples run strictly sequentially; a failed
// sample is recorded and the batch moves on.
package runner

import (
	"log"

	"github.com/bioqc/fqprep/samplesheet"
	"github.com/bioqc/fqprep/status"
)

// Runner carries the settings shared by every job in a batch.
type Runner struct {
	OutDir  string
	Threads int

	RepairExe     string
	TrimGaloreExe string
	FastqcExe     string

	DryRun  bool
	Verbose bool

	Results status.Table
	Log     *log.Logger
}

func (r *Runner) logf(format string, v ...interface{}) {
	if r.Log != nil {
		r.Log.Printf(format, v...)
	}
}

// step pairs a name (for the failure message) with its action.
type step struct {
	name string
	fn   func() error
}

// RunSample executes the full pipeline for one job and returns its status
// record. The first failing step ends the sample; later steps are not
// attempted.
func (r *Runner) RunSample(j *Job) status.Record {
	rec := status.Record{
		Group:     j.Row.Group,
		Replicate: j.Row.Replicate,
		Fastq1:    j.Row.Fastq1,
		Fastq2:    j.Row.Fastq2,
	}

	steps := []step{
		{"preflight", func() error { return r.Preflight(*j) }},
		{"repair", func() error { return r.Repair(*j) }},
		{"trim", func() error { return r.Trim(j) }},
		{"fastqc", func() error { return r.FastQC(*j) }},
	}

	for _, s := range steps {
		if err := s.fn(); err != nil {
			rec.Status = status.Fail
			rec.Message = s.name + ": " + err.Error()
			return rec
		}
	}

	rec.Status = status.Pass
	rec.Message = "all steps completed"
	if r.DryRun {
		rec.Message = "dry-run: no tools executed"
	}

	return rec
}

// RunLocal processes every samplesheet row in order, appending one status
// row per sample, and returns the fixed rows for the samples that passed.
func (r *Runner) RunLocal(rows []samplesheet.Row) ([]samplesheet.Row, error) {
	var fixed []samplesheet.Row

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
			r.logf("row %d skipped: %v", i+1, err)
		} else {
			j := NewJob(r.OutDir, row)
			r.logf("sample %s starting", row.Name())
			rec = r.RunSample(&j)
			if rec.Status == status.Pass && !r.DryRun {
				fixed = append(fixed, j.FixedRow())
			}
		}

		if err := r.Results.Append(rec); err != nil {
			return nil, err
		}
		if r.Verbose {
			status.Echo(rec)
		}
		r.logf("sample %s_R%s: %s (%s)", rec.Group, rec.Replicate, rec.Status, rec.Message)
	}

	return fixed, nil
}
