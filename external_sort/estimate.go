package extsort

import (
	"bytes"
	"io"
	"os"

	"recsort/common"
)

const ESTIMATE_SAMPLE_SIZE = 64 * 1024

/**
* EstimateLines guesses the number of lines in a file from the average line
* length of its first ESTIMATE_SAMPLE_SIZE bytes. Files smaller than the
* sample are counted exactly.
 */
func EstimateLines(path string) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, common.NewFileError("open", path, err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return 0, common.NewFileError("stat", path, err)
	}
	size := info.Size()
	if size == 0 {
		return 0, nil
	}

	sample := make([]byte, min(size, ESTIMATE_SAMPLE_SIZE))
	n, err := io.ReadFull(file, sample)
	if err != nil && err != io.ErrUnexpectedEOF {
		return 0, common.NewFileError("read", path, err)
	}
	sample = sample[:n]
	lines := int64(bytes.Count(sample, []byte{'\n'}))

	if int64(n) >= size {
		if n > 0 && sample[n-1] != '\n' {
			lines++
		}
		return lines, nil
	}
	if lines == 0 {
		// one enormous line so far; assume the sample is a single line
		return size / int64(n), nil
	}
	return size * lines / int64(n), nil
}
