// Package status is the bookkeeping layer: one tab-delimited results row per
// samplesheet row, plus a free-text run log. Both files are append-only and
// written by at most one process at a time.
package status

import (
	"encoding/csv"
	"io"
	"log"
	"os"

	"github.com/carbocation/pfx"
	"github.com/fatih/color"
)

const (
	Pass      = "PASS"
	Fail      = "FAIL"
	Skip      = "SKIP"
	Submitted = "SUBMITTED"
)

var header = []string{"group", "replicate", "fastq_1", "fastq_2", "status", "message"}

// Record is one line of the results table.
type Record struct {
	Group     string
	Replicate string
	Fastq1    string
	Fastq2    string
	Status    string
	Message   string
}

func (r Record) fields() []string {
	return []string{r.Group, r.Replicate, r.Fastq1, r.Fastq2, r.Status, r.Message}
}

// Table appends records to a tab-delimited results file, writing the header
// the first time the file is created.
type Table struct {
	Path string
}

// Append adds one record to the results table. The file is opened and closed
// per append so a crashed batch leaves every completed sample on disk.
func (t Table) Append(rec Record) error {
	writeHeader := true
	if info, err := os.Stat(t.Path); err == nil && info.Size() > 0 {
		writeHeader = false
	}

	f, err := os.OpenFile(t.Path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return pfx.Err(err)
	}

	w := csv.NewWriter(f)
	w.Comma = '\t'

	if writeHeader {
		if err := w.Write(header); err != nil {
			f.Close()
			return pfx.Err(err)
		}
	}
	if err := w.Write(rec.fields()); err != nil {
		f.Close()
		return pfx.Err(err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return pfx.Err(err)
	}

	return pfx.Err(f.Close())
}

// Echo prints the record to the terminal with the status colorized, for
// verbose runs.
func Echo(rec Record) {
	c := color.New(color.FgWhite)
	switch rec.Status {
	case Pass:
		c = color.New(color.FgGreen)
	case Fail:
		c = color.New(color.FgRed)
	case Skip, Submitted:
		c = color.New(color.FgYellow)
	}

	c.Printf("%s\t", rec.Status)
	color.New(color.FgWhite).Printf("%s_R%s\t%s\n", rec.Group, rec.Replicate, rec.Message)
}

// OpenRunLog returns a logger appending timestamped lines to path, tee'd to
// stderr so interactive runs still show progress.
func OpenRunLog(path string) (*log.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, nil, pfx.Err(err)
	}

	return log.New(io.MultiWriter(os.Stderr, f), "", log.LstdFlags), f, nil
}
