package fastq

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gzip "github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastqRecords(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "@read%d\nACGTACGT\n+\nIIIIIIII\n", i)
	}
	return b.String()
}

func writeFastq(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0666))
	return path
}

func writeFastqGz(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	gw := gzip.NewWriter(f)
	_, err = gw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestCountReads(t *testing.T) {
	dir := t.TempDir()

	plain := writeFastq(t, dir, "reads.fastq", fastqRecords(7))
	gzipped := writeFastqGz(t, dir, "reads.fastq.gz", fastqRecords(12))

	n, err := CountReads(plain)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	n, err = CountReads(gzipped)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
}

func TestCountReadsNoTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	content := strings.TrimSuffix(fastqRecords(3), "\n")
	path := writeFastq(t, dir, "reads.fastq", content)

	n, err := CountReads(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestCountReadsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFastq(t, dir, "empty.fastq", "")

	n, err := CountReads(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCountReadsMalformed(t *testing.T) {
	dir := t.TempDir()
	path := writeFastq(t, dir, "truncated.fastq", fastqRecords(2)+"@dangling\nACGT\n")

	_, err := CountReads(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a multiple of 4")
}

func TestCheckPair(t *testing.T) {
	dir := t.TempDir()
	r1 := writeFastqGz(t, dir, "r1.fastq.gz", fastqRecords(5))
	r2 := writeFastqGz(t, dir, "r2.fastq.gz", fastqRecords(5))
	short := writeFastqGz(t, dir, "short.fastq.gz", fastqRecords(4))

	n, err := CheckPair(r1, r2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	_, err = CheckPair(r1, short)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mate read counts differ")
}

func TestCheckIntegrity(t *testing.T) {
	dir := t.TempDir()

	good := writeFastqGz(t, dir, "good.fastq.gz", fastqRecords(10))
	plain := writeFastq(t, dir, "plain.fastq", fastqRecords(2))
	empty := writeFastq(t, dir, "empty.fastq.gz", "")

	assert.NoError(t, CheckIntegrity(good))
	assert.NoError(t, CheckIntegrity(plain))

	err := CheckIntegrity(filepath.Join(dir, "nonexistent.fastq.gz"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such file")

	err = CheckIntegrity(empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestCheckIntegrityTruncatedGzip(t *testing.T) {
	dir := t.TempDir()
	good := writeFastqGz(t, dir, "whole.fastq.gz", fastqRecords(5000))

	raw, err := os.ReadFile(good)
	require.NoError(t, err)

	truncated := filepath.Join(dir, "truncated.fastq.gz")
	require.NoError(t, os.WriteFile(truncated, raw[:len(raw)/2], 0666))

	assert.Error(t, CheckIntegrity(truncated))
}
