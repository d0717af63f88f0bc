package runner

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/carbocation/pfx"

	"github.com/bioqc/fqprep"
	"github.com/bioqc/fqprep/fastq"
)

// How much of a failed tool's combined output ends up in the results table.
const messageTailBytes = 400

// Preflight confirms both mates exist, are non-empty, and pass gzip
// integrity before any tool is run against them.
func (r *Runner) Preflight(j Job) error {
	for _, path := range []string{j.Row.Fastq1, j.Row.Fastq2} {
		if err := fastq.CheckIntegrity(path); err != nil {
			return err
		}
		r.logf("input %s (%s)", path, bytefmt.ByteSize(uint64(fqprep.FileSize(path))))
	}

	return nil
}

// Repair re-synchronizes the two mates with BBTools repair.sh, then verifies
// the repaired pair: both outputs present and non-empty, and equal read
// counts on both sides.
func (r *Runner) Repair(j Job) error {
	args := []string{
		"in1=" + j.Row.Fastq1,
		"in2=" + j.Row.Fastq2,
		"out1=" + j.RepairedR1,
		"out2=" + j.RepairedR2,
		"outs=" + j.Singletons,
		"t=" + strconv.Itoa(r.Threads),
		"overwrite=t",
		"repair",
	}

	// A dry run touches nothing, not even the sample directory
	if r.DryRun {
		return r.run(r.RepairExe, args...)
	}

	if err := os.MkdirAll(j.Dir, 0777); err != nil {
		return pfx.Err(err)
	}

	if err := r.run(r.RepairExe, args...); err != nil {
		return err
	}

	for _, path := range []string{j.RepairedR1, j.RepairedR2} {
		if !fqprep.FileNonEmpty(path) {
			return fmt.Errorf("repair produced no output at %s", path)
		}
	}

	n, err := fastq.CheckPair(j.RepairedR1, j.RepairedR2)
	if err != nil {
		return err
	}
	r.logf("repaired pair %s: %d reads per mate", j.Row.Name(), n)

	return nil
}

// Trim runs Trim Galore in paired mode against the repaired mates and
// requires both validated outputs (*_val_1*.fq.gz and *_val_2*.fq.gz) to
// appear in the sample directory. On success the job's TrimmedR1/TrimmedR2
// are resolved.
func (r *Runner) Trim(j *Job) error {
	args := []string{
		"--paired",
		"--gzip",
		"--cores", strconv.Itoa(r.Threads),
		"--output_dir", j.Dir,
		j.RepairedR1,
		j.RepairedR2,
	}

	if err := r.run(r.TrimGaloreExe, args...); err != nil {
		return err
	}
	if r.DryRun {
		return nil
	}

	val1, err := globOne(filepath.Join(j.Dir, "*_val_1*.fq.gz"))
	if err != nil {
		return err
	}
	val2, err := globOne(filepath.Join(j.Dir, "*_val_2*.fq.gz"))
	if err != nil {
		return err
	}

	j.TrimmedR1 = val1
	j.TrimmedR2 = val2

	return nil
}

// FastQC runs quality control against the trimmed pair. Reports land next to
// the trimmed FASTQs.
func (r *Runner) FastQC(j Job) error {
	r1, r2 := j.TrimmedR1, j.TrimmedR2
	if r.DryRun {
		// Trim did not resolve outputs in a dry run
		r1, r2 = j.RepairedR1, j.RepairedR2
	}

	args := []string{
		"--threads", strconv.Itoa(r.Threads),
		"--outdir", j.Dir,
		"--quiet",
		r1,
		r2,
	}

	return r.run(r.FastqcExe, args...)
}

// run invokes one external binary, captures its combined output, and folds
// the output tail into the returned error on a nonzero exit. In a dry run
// the command line is logged and nothing is executed.
func (r *Runner) run(name string, args ...string) error {
	if r.DryRun {
		r.logf("dry-run: would execute: %s %s", name, strings.Join(args, " "))
		return nil
	}
	if r.Verbose {
		r.logf("executing: %s %s", name, strings.Join(args, " "))
	}

	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %v: %s", filepath.Base(name), err, tail(out, messageTailBytes))
	}

	return nil
}

// globOne requires the pattern to match exactly one file.
func globOne(pattern string) (string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", pfx.Err(err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("expected output %s not found", pattern)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("pattern %s matched %d files, expected one", pattern, len(matches))
	}

	return matches[0], nil
}

// tail flattens the last n bytes of tool output onto one line so it fits a
// results-table message field.
func tail(out []byte, n int) string {
	s := string(out)
	if len(s) > n {
		s = s[len(s)-n:]
	}
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\n", "; ")

	return s
}
