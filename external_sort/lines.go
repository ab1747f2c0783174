package extsort

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"recsort/common"
	"recsort/record"
)

/**
* lineReader splits input into lines of at most MAX_LINE_SIZE bytes. A longer
* line is consumed in full and handed back as tooLong, so the caller can treat
* it like any other malformed line and keep reading.
 */
type lineReader struct {
	r      *bufio.Reader
	max    int
	number int
	buf    []byte
}

func newLineReader(input io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReaderSize(input, common.IO_BUFFER_SIZE), max: common.MAX_LINE_SIZE}
}

// next returns the next line without its terminator, or io.EOF once the
// input is exhausted.
func (lr *lineReader) next() (string, bool, error) {
	lr.buf = lr.buf[:0]
	tooLong, seen := false, false
	for {
		part, err := lr.r.ReadSlice('\n')
		seen = seen || len(part) > 0
		if !tooLong {
			if len(lr.buf)+len(part) > lr.max+len("\r\n") {
				tooLong = true
				lr.buf = lr.buf[:0]
			} else {
				lr.buf = append(lr.buf, part...)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err != nil && err != io.EOF {
			return "", false, err
		}
		if err == io.EOF && !seen {
			return "", false, io.EOF
		}
		lr.number++
		if tooLong {
			return "", true, nil
		}
		line := strings.TrimSuffix(string(lr.buf), "\n")
		return strings.TrimSuffix(line, "\r"), false, nil
	}
}

// parse decodes a line returned by next. Failures are FormatErrors carrying
// the line number.
func (lr *lineReader) parse(line string, tooLong bool) (*record.Record, error) {
	if tooLong {
		return nil, &common.FormatError{Line: lr.number, Reason: "line longer than " + strconv.Itoa(lr.max) + " bytes"}
	}
	r, err := record.Parse(line)
	if err != nil {
		var fe *common.FormatError
		if errors.As(err, &fe) {
			fe.Line = lr.number
		}
		return nil, err
	}
	return r, nil
}
