// Package samplesheet reads and writes the 5-column CSV sample sheets that
// drive the batch tools (group,replicate,fastq_1,fastq_2,control).
package samplesheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"

	"github.com/bioqc/fqprep"
)

// Row is one sample: a group/replicate pair naming the sample, the two mate
// FASTQ paths, and an optional control group identifier.
type Row struct {
	Group     string `csv:"group"`
	Replicate string `csv:"replicate"`
	Fastq1    string `csv:"fastq_1"`
	Fastq2    string `csv:"fastq_2"`
	Control   string `csv:"control"`
}

// Name is the per-sample identifier used for output directories, job names,
// and log file names.
func (r Row) Name() string {
	return fmt.Sprintf("%s_R%s", r.Group, r.Replicate)
}

// Validate confirms that all required fields are populated. Control is
// optional (input samples have none).
func (r Row) Validate() error {
	switch {
	case r.Group == "":
		return fmt.Errorf("missing required field group")
	case r.Replicate == "":
		return fmt.Errorf("missing required field replicate")
	case r.Fastq1 == "":
		return fmt.Errorf("missing required field fastq_1")
	case r.Fastq2 == "":
		return fmt.Errorf("missing required field fastq_2")
	}

	return nil
}

// Read loads all rows from a samplesheet, sniffing the delimiter rather than
// requiring comma separation. Home-relative FASTQ paths are expanded.
func Read(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	delim := fqprep.DetermineDelimiter(f)
	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		return nil, pfx.Err(err)
	}

	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = delim
		r.LazyQuotes = true
		return r
	})

	rows := []*Row{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		f.Close()
		return nil, pfx.Err(err)
	}
	if err := f.Close(); err != nil {
		return nil, pfx.Err(err)
	}

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		row.Fastq1 = fqprep.ExpandHome(row.Fastq1)
		row.Fastq2 = fqprep.ExpandHome(row.Fastq2)
		out = append(out, *row)
	}

	return out, nil
}

// Write emits rows as a comma-delimited samplesheet with the same schema as
// the input sheets, so the output can be fed straight into downstream
// pipelines.
func Write(path string, rows []Row) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return pfx.Err(err)
	}

	gocsv.SetCSVWriter(func(out io.Writer) *gocsv.SafeCSVWriter {
		return gocsv.NewSafeCSVWriter(csv.NewWriter(out))
	})

	outRows := make([]*Row, 0, len(rows))
	for i := range rows {
		outRows = append(outRows, &rows[i])
	}

	if err := gocsv.MarshalFile(&outRows, f); err != nil {
		f.Close()
		return pfx.Err(err)
	}

	return pfx.Err(f.Close())
}
