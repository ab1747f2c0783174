package extsort

import (
	"cmp"
	"container/heap"
	"context"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/sirupsen/logrus"

	"recsort/common"
	"recsort/record"
)

/**
* TopN returns the first n records of a file produced by Sort. The file's
* order is trusted as is: asking a volume-sorted file for the top amounts
* silently returns the top volumes.
 */
func TopN(path string, n int) ([]*record.Record, error) {
	if n < 0 {
		return nil, common.NewConfigError("n", "must not be negative, got "+strconv.Itoa(n))
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, common.NewFileError("open", path, err)
	}
	defer file.Close()
	return TopNReader(file, path, n)
}

// TopNReader is TopN over an already opened sorted stream.
func TopNReader(r io.Reader, name string, n int) ([]*record.Record, error) {
	if n < 0 {
		return nil, common.NewConfigError("n", "must not be negative, got "+strconv.Itoa(n))
	}
	top := make([]*record.Record, 0, min(n, common.PROGRESS_INTERVAL))
	if n == 0 {
		return top, nil
	}
	lines := newLineReader(r)
	for len(top) < n {
		line, tooLong, err := lines.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, common.NewFileError("read", name, err)
		}
		if line == "" && !tooLong {
			continue
		}
		rec, err := lines.parse(line, tooLong)
		if err != nil {
			return nil, err
		}
		top = append(top, rec)
	}
	return top, nil
}

type ranked struct {
	rec *record.Record
	seq int64
}

/**
* rankHeap keeps the n best records seen so far with the worst one at the
* root, so each new record costs one comparison unless it makes the cut.
* seq breaks ties in input order, matching the stable full sort.
 */
type rankHeap struct {
	items   []ranked
	compare record.Comparator
}

// order is the total order of the final ranking: key first, then input order.
func (h *rankHeap) order(a, b ranked) int {
	if c := h.compare(a.rec, b.rec); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

func (h *rankHeap) before(a, b ranked) bool {
	return h.order(a, b) < 0
}

func (h *rankHeap) Len() int           { return len(h.items) }
func (h *rankHeap) Less(i, j int) bool { return h.before(h.items[j], h.items[i]) }
func (h *rankHeap) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *rankHeap) Push(x interface{}) {
	h.items = append(h.items, x.(ranked))
}

func (h *rankHeap) Pop() interface{} {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

// rankStream feeds every record of input through a bounded heap of size n.
func rankStream(ctx context.Context, input io.Reader, inputName string, n int, opts Options) ([]*record.Record, int64, error) {
	if n < 0 {
		return nil, 0, common.NewConfigError("n", "must not be negative, got "+strconv.Itoa(n))
	}
	h := &rankHeap{items: make([]ranked, 0, min(n, common.DEFAULT_CHUNK_RECORDS)), compare: opts.Key.Comparator()}

	lines := newLineReader(input)
	var seq, skipped int64
	for {
		line, tooLong, err := lines.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, common.NewFileError("read", inputName, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		if line == "" && !tooLong {
			continue
		}
		rec, err := lines.parse(line, tooLong)
		if err != nil {
			if opts.OnMalformed != SkipMalformed {
				return nil, 0, err
			}
			opts.Logger.WithFields(logrus.Fields{"Line": lines.number, "Input": inputName, "Reason": malformedReason(err)}).Warn("Skipping malformed line")
			skipped++
			continue
		}

		item := ranked{rec: rec, seq: seq}
		seq++
		if n == 0 {
			continue
		}
		if h.Len() < n {
			heap.Push(h, item)
		} else if h.before(item, h.items[0]) {
			h.items[0] = item
			heap.Fix(h, 0)
		}
	}

	slices.SortFunc(h.items, h.order)
	top := make([]*record.Record, len(h.items))
	for i, item := range h.items {
		top[i] = item.rec
	}
	return top, skipped, nil
}
