package main

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioqc/fqprep/config"
	"github.com/bioqc/fqprep/samplesheet"
	"github.com/bioqc/fqprep/status"
)

// sbatchStub acknowledges like the real thing and drops a marker so tests
// can tell whether it ran.
const sbatchStub = `#!/bin/sh
: > "${0%/*}/sbatch.ran"
echo "Submitted batch job 4242"
`

func newSubmitOptions(t *testing.T, dryRun bool) (submitOptions, string, string) {
	t.Helper()

	stubDir := t.TempDir()
	sbatch := filepath.Join(stubDir, "sbatch")
	require.NoError(t, os.WriteFile(sbatch, []byte(sbatchStub), 0755))

	fqsample := filepath.Join(stubDir, "fqsample")
	require.NoError(t, os.WriteFile(fqsample, []byte("#!/bin/sh\n"), 0755))

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.SbatchExe = sbatch
	cfg.Threads = 2
	cfg.Slurm.Partition = "general"

	outDir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.MkdirAll(outDir, 0777))

	return submitOptions{
		cfg:         cfg,
		outDir:      outDir,
		fqsample:    fqsample,
		passthrough: []string{"--qos=long"},
		dryRun:      dryRun,
	}, outDir, filepath.Join(stubDir, "sbatch.ran")
}

func TestSubmitAll(t *testing.T) {
	opts, outDir, marker := newSubmitOptions(t, false)

	results := status.Table{Path: filepath.Join(outDir, "results.tsv")}
	runLog := log.New(os.Stderr, "", log.LstdFlags)

	rows := []samplesheet.Row{
		{Group: "WT", Replicate: "1", Fastq2: "/data/wt1_R2.fastq.gz"}, // fastq_1 missing
		{Group: "KO", Replicate: "1", Fastq1: "/data/ko1_R1.fastq.gz", Fastq2: "/data/ko1_R2.fastq.gz"},
	}

	require.NoError(t, submitAll(opts, rows, results, runLog))

	raw, err := os.ReadFile(results.Path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3, "header plus one row per sample")
	assert.Contains(t, lines[1], status.Skip)
	assert.Contains(t, lines[1], "missing required field fastq_1")
	assert.Contains(t, lines[2], status.Submitted)
	assert.Contains(t, lines[2], "job 4242")

	script, err := os.ReadFile(filepath.Join(outDir, "scripts", "KO_R1.sbatch"))
	require.NoError(t, err)
	assert.Contains(t, string(script), "#SBATCH -J KO_R1")
	assert.Contains(t, string(script), "#SBATCH -p general")
	assert.Contains(t, string(script), opts.fqsample)
	assert.Contains(t, string(script), "-group KO")

	// no script for the skipped row
	assert.NoFileExists(t, filepath.Join(outDir, "scripts", "WT_R1.sbatch"))

	assert.FileExists(t, marker, "sbatch stub should have been invoked")
}

func TestSubmitAllDryRunWritesScriptsWithoutSubmitting(t *testing.T) {
	opts, outDir, marker := newSubmitOptions(t, true)

	results := status.Table{Path: filepath.Join(outDir, "results.tsv")}
	runLog := log.New(os.Stderr, "", log.LstdFlags)

	rows := []samplesheet.Row{
		{Group: "KO", Replicate: "1", Fastq1: "/data/ko1_R1.fastq.gz", Fastq2: "/data/ko1_R2.fastq.gz"},
	}

	require.NoError(t, submitAll(opts, rows, results, runLog))

	assert.FileExists(t, filepath.Join(outDir, "scripts", "KO_R1.sbatch"))
	assert.NoFileExists(t, results.Path, "a dry run records nothing for valid rows")
	assert.NoFileExists(t, marker, "sbatch must not run in a dry run")
}
