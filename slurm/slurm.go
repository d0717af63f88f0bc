// Package slurm writes and submits one sbatch batch script per sample. All
// scheduling, retries, and resource allocation are the cluster's problem;
// this package only templates the script and parses the job ID back out.
package slurm

import (
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"text/template"

	"github.com/carbocation/pfx"
)

const scriptTemplate = `#!/bin/bash
#SBATCH -J {{.Name}}
#SBATCH -o {{.LogDir}}/{{.Name}}.out
#SBATCH -e {{.LogDir}}/{{.Name}}.err
#SBATCH -c {{.CPUs}}
{{- if .Partition}}
#SBATCH -p {{.Partition}}
{{- end}}
{{- if .Time}}
#SBATCH -t {{.Time}}
{{- end}}
{{- if .Memory}}
#SBATCH --mem={{.Memory}}
{{- end}}

set -euo pipefail

{{.Command}}
`

var tmpl = template.Must(template.New("sbatch").Parse(scriptTemplate))

var submittedRe = regexp.MustCompile(`Submitted batch job (\d+)`)

// Job is everything one batch script needs.
type Job struct {
	Name      string
	LogDir    string
	CPUs      int
	Partition string
	Time      string
	Memory    string
	Command   string
}

// WriteScript renders the batch script to path.
func (j Job) WriteScript(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return pfx.Err(err)
	}

	if err := tmpl.Execute(f, j); err != nil {
		f.Close()
		return pfx.Err(err)
	}

	return pfx.Err(f.Close())
}

// Available confirms the sbatch binary can be found before any scripts are
// written.
func Available(sbatchExe string) error {
	if _, err := exec.LookPath(sbatchExe); err != nil {
		return fmt.Errorf("sbatch not available: %w", err)
	}

	return nil
}

// Submit hands the script to sbatch, passing any extra scheduler options
// through verbatim, and returns the assigned job ID.
func Submit(sbatchExe, scriptPath string, passthrough []string) (string, error) {
	args := append(append([]string{}, passthrough...), scriptPath)

	out, err := exec.Command(sbatchExe, args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("sbatch: %v: %s", err, out)
	}

	return ParseJobID(string(out))
}

// ParseJobID extracts the job ID from sbatch's "Submitted batch job N"
// acknowledgment.
func ParseJobID(out string) (string, error) {
	m := submittedRe.FindStringSubmatch(out)
	if m == nil {
		return "", fmt.Errorf("could not parse sbatch output: %q", out)
	}

	return m[1], nil
}
