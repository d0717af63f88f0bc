package samplesheet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSheet(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0666))
	return path
}

func TestReadCommaDelimited(t *testing.T) {
	path := writeSheet(t, "sheet.csv",
		"group,replicate,fastq_1,fastq_2,control\n"+
			"WT,1,/data/wt1_R1.fastq.gz,/data/wt1_R2.fastq.gz,\n"+
			"KO,2,/data/ko2_R1.fastq.gz,/data/ko2_R2.fastq.gz,WT\n")

	rows, err := Read(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "WT", rows[0].Group)
	assert.Equal(t, "1", rows[0].Replicate)
	assert.Equal(t, "/data/wt1_R1.fastq.gz", rows[0].Fastq1)
	assert.Equal(t, "", rows[0].Control)
	assert.Equal(t, "WT_R1", rows[0].Name())

	assert.Equal(t, "WT", rows[1].Control)
	assert.Equal(t, "KO_R2", rows[1].Name())
}

func TestReadTabDelimited(t *testing.T) {
	path := writeSheet(t, "sheet.tsv",
		"group\treplicate\tfastq_1\tfastq_2\tcontrol\n"+
			"WT\t1\t/data/a_R1.fastq.gz\t/data/a_R2.fastq.gz\t\n")

	rows, err := Read(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "/data/a_R2.fastq.gz", rows[0].Fastq2)
}

func TestValidate(t *testing.T) {
	for _, v := range []struct {
		name    string
		row     Row
		missing string
	}{
		{"complete", Row{Group: "WT", Replicate: "1", Fastq1: "a", Fastq2: "b", Control: "x"}, ""},
		{"no control is fine", Row{Group: "WT", Replicate: "1", Fastq1: "a", Fastq2: "b"}, ""},
		{"missing group", Row{Replicate: "1", Fastq1: "a", Fastq2: "b"}, "group"},
		{"missing replicate", Row{Group: "WT", Fastq1: "a", Fastq2: "b"}, "replicate"},
		{"missing fastq_1", Row{Group: "WT", Replicate: "1", Fastq2: "b"}, "fastq_1"},
		{"missing fastq_2", Row{Group: "WT", Replicate: "1", Fastq1: "a"}, "fastq_2"},
	} {
		err := v.row.Validate()
		if v.missing == "" {
			assert.NoError(t, err, v.name)
		} else {
			require.Error(t, err, v.name)
			assert.Contains(t, err.Error(), v.missing, v.name)
		}
	}
}

func TestWriteKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixed.csv")
	rows := []Row{
		{Group: "WT", Replicate: "1", Fastq1: "/out/WT_R1/WT_R1_1.repaired.fastq.gz", Fastq2: "/out/WT_R1/WT_R1_2.repaired.fastq.gz"},
	}

	require.NoError(t, Write(path, rows))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "group,replicate,fastq_1,fastq_2,control", lines[0])
	assert.Equal(t, "WT,1,/out/WT_R1/WT_R1_1.repaired.fastq.gz,/out/WT_R1/WT_R1_2.repaired.fastq.gz,", lines[1])
}
