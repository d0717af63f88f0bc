// Package fastq holds the FASTQ-level checks the batch tools rely on: read
// counting, mate count comparison, and gzip integrity.
package fastq

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/carbocation/pfx"
	gzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/bioqc/fqprep"
)

// 1MB; FASTQ lines are short but the files are not
const readerBufferSize = 1048576

// CountReads returns the number of FASTQ records in the file, decompressing
// as needed based on the file's leading bytes. A record is 4 lines; a file
// whose line count is not a multiple of 4 is malformed and yields an error.
func CountReads(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, pfx.Err(err)
	}
	defer f.Close()

	// Compression sniffing needs leading bytes; an empty file has none and
	// holds no reads.
	info, err := f.Stat()
	if err != nil {
		return 0, pfx.Err(err)
	}
	if info.Size() == 0 {
		return 0, nil
	}

	r, err := fqprep.MaybeDecompressReadCloserFromFile(f)
	if err != nil {
		return 0, pfx.Err(err)
	}
	defer r.Close()

	reader := bufio.NewReaderSize(r, readerBufferSize)

	var lines int64
	for {
		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			// Tolerate a final line without a trailing newline
			if len(line) > 0 {
				lines++
			}
			break
		}
		if err != nil {
			return 0, pfx.Err(err)
		}
		lines++
	}

	if lines%4 != 0 {
		return 0, fmt.Errorf("%s: %d lines is not a multiple of 4; truncated or malformed FASTQ", path, lines)
	}

	return lines / 4, nil
}

// CountPair counts both mates concurrently and returns their read counts.
func CountPair(fastq1, fastq2 string) (int64, int64, error) {
	var n1, n2 int64

	var g errgroup.Group
	g.Go(func() error {
		var err error
		n1, err = CountReads(fastq1)
		return err
	})
	g.Go(func() error {
		var err error
		n2, err = CountReads(fastq2)
		return err
	})

	if err := g.Wait(); err != nil {
		return 0, 0, err
	}

	return n1, n2, nil
}

// CheckPair confirms that both mates contain the same number of reads.
func CheckPair(fastq1, fastq2 string) (int64, error) {
	n1, n2, err := CountPair(fastq1, fastq2)
	if err != nil {
		return 0, err
	}
	if n1 != n2 {
		return 0, fmt.Errorf("mate read counts differ: %s has %d, %s has %d", fastq1, n1, fastq2, n2)
	}

	return n1, nil
}

// CheckIntegrity confirms that the file exists, is non-empty, and (when
// gzip-compressed) decompresses end to end without error. The full
// decompression is what catches truncated downloads; pgzip verifies the
// stream CRC at EOF.
func CheckIntegrity(path string) error {
	if !fqprep.FileExists(path) {
		return fmt.Errorf("%s: no such file", path)
	}
	if !fqprep.FileNonEmpty(path) {
		return fmt.Errorf("%s: file is empty", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	dt, err := fqprep.DetectDataType(f)
	if err != nil {
		return pfx.Err(err)
	}
	if dt != fqprep.DataTypeGzip {
		return nil
	}
	if _, err := f.Seek(0, 0); err != nil {
		return pfx.Err(err)
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("%s: not a valid gzip file: %w", path, err)
	}
	defer gz.Close()

	if _, err := io.Copy(io.Discard, gz); err != nil {
		return fmt.Errorf("%s: gzip integrity check failed: %w", path, err)
	}

	return nil
}
