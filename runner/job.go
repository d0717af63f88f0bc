package runner

import (
	"fmt"
	"path/filepath"

	"github.com/bioqc/fqprep/samplesheet"
)

// Job is the per-sample work record: the samplesheet row plus every path the
// pipeline will read or write for that sample. All outputs live under one
// directory per sample so a Slurm job touches nothing shared.
type Job struct {
	Row samplesheet.Row

	// Dir is outdir/<group>_R<replicate>
	Dir string

	RepairedR1 string
	RepairedR2 string
	Singletons string

	// Resolved after the trim step succeeds
	TrimmedR1 string
	TrimmedR2 string
}

// NewJob templates the output paths for one samplesheet row.
func NewJob(outDir string, row samplesheet.Row) Job {
	name := row.Name()
	dir := filepath.Join(outDir, name)

	return Job{
		Row:        row,
		Dir:        dir,
		RepairedR1: filepath.Join(dir, fmt.Sprintf("%s_1.repaired.fastq.gz", name)),
		RepairedR2: filepath.Join(dir, fmt.Sprintf("%s_2.repaired.fastq.gz", name)),
		Singletons: filepath.Join(dir, fmt.Sprintf("%s.singletons.fastq.gz", name)),
	}
}

// FixedRow is the samplesheet row rewritten to point at this job's final
// FASTQ outputs: the trimmed pair when trimming ran, otherwise the repaired
// pair.
func (j Job) FixedRow() samplesheet.Row {
	out := j.Row
	out.Fastq1 = j.RepairedR1
	out.Fastq2 = j.RepairedR2
	if j.TrimmedR1 != "" && j.TrimmedR2 != "" {
		out.Fastq1 = j.TrimmedR1
		out.Fastq2 = j.TrimmedR2
	}

	return out
}
