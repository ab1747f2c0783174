package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recsort/common"
	"recsort/config"
	extsort "recsort/external_sort"
	"recsort/helpers"
	"recsort/record"
	"recsort/stats"
)

const HEADER = "code,name,date,volume,amount,max_volume,min_volume,max_amount,min_amount"

func writeRecords(t *testing.T, header bool, volumes ...int64) string {
	t.Helper()
	var b strings.Builder
	if header {
		b.WriteString(HEADER + "\n")
	}
	for i, v := range volumes {
		r := &record.Record{
			Code:      fmt.Sprintf("%06d", i),
			Name:      "Stock",
			Date:      time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
			Volume:    v,
			Amount:    float64(v) * 2,
			MaxVolume: v,
			MaxAmount: float64(v),
		}
		b.WriteString(record.Serialize(r) + "\n")
	}
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func newTestClient(t *testing.T) (Client, *bytes.Buffer, stats.StatsBoard) {
	logger, _ := test.NewNullLogger()
	board := stats.NewStatsBoard(nil)
	board.Start()
	t.Cleanup(board.Stop)
	out := &bytes.Buffer{}
	return NewClient(out, logger, board), out, board
}

func TestClientSortWithHeaderAndTop(t *testing.T) {
	c, out, board := newTestClient(t)
	input := writeRecords(t, true, 300, 100, 500, 200, 400)
	tempDir := filepath.Join(t.TempDir(), "nested", "tmp")
	output := filepath.Join(t.TempDir(), "sorted.csv")

	result, err := c.Sort(context.Background(), SortRequest{
		Input:        input,
		Output:       output,
		Key:          record.VOLUME,
		ChunkRecords: 2,
		TempDir:      tempDir,
		SkipHeader:   true,
		Top:          3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.Records)
	assert.Equal(t, 3, result.Chunks)
	assert.DirExists(t, tempDir)

	top, err := extsort.TopN(output, 5)
	require.NoError(t, err)
	var volumes []int64
	for _, r := range top {
		volumes = append(volumes, r.Volume)
	}
	assert.Equal(t, []int64{500, 400, 300, 200, 100}, volumes)

	printed := out.String()
	assert.Contains(t, printed, "Top 3 by volume")
	assert.Contains(t, printed, "  1. 000002")
	assert.Contains(t, printed, "  3. 000000")
	assert.NotContains(t, printed, "  4. ")
	assert.Equal(t, int64(5), board.GetAll().RecordsMerged)
}

func TestClientSortWithoutSkippingHeaderFails(t *testing.T) {
	c, _, _ := newTestClient(t)
	input := writeRecords(t, true, 1, 2)

	_, err := c.Sort(context.Background(), SortRequest{
		Input:        input,
		Output:       filepath.Join(t.TempDir(), "sorted.csv"),
		Key:          record.VOLUME,
		ChunkRecords: 10,
		TempDir:      t.TempDir(),
	})
	var fe *common.FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 1, fe.Line)
}

func TestClientTopFromSortedAndUnsorted(t *testing.T) {
	c, out, _ := newTestClient(t)
	input := writeRecords(t, false, 7, 9, 8)

	ranked, err := c.Top(context.Background(), TopRequest{Input: input, Key: record.VOLUME, N: 2})
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, int64(9), ranked[0].Volume)
	assert.Equal(t, int64(8), ranked[1].Volume)

	// the unsorted file read as if it were sorted: its order is kept
	trusted, err := c.Top(context.Background(), TopRequest{Sorted: input, N: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(7), trusted[0].Volume)
	assert.Contains(t, out.String(), "Top 2\n")

	_, err = c.Top(context.Background(), TopRequest{Sorted: input, Input: input, N: 2})
	assert.EqualError(t, err, helpers.AMBIGUOUS_TOP_SOURCE_ERROR_MSG)
	_, err = c.Top(context.Background(), TopRequest{N: 2})
	assert.EqualError(t, err, helpers.MISSING_TOP_SOURCE_ERROR_MSG)
}

func TestClientSweep(t *testing.T) {
	c, _, _ := newTestClient(t)
	dir := t.TempDir()
	stale := filepath.Join(dir, "extsort-old-0.chunk")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o600))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	removed, err := c.Sweep(SweepRequest{TempDir: dir, OlderThan: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, []string{stale}, removed)
}

type fakePrompter struct {
	key   record.SortKey
	asked bool
}

func (p *fakePrompter) SelectSortKey() (record.SortKey, error) {
	p.asked = true
	return p.key, nil
}

func TestSortRequestResolution(t *testing.T) {
	cfg := config.Default()
	cfg.Key = "amount"
	cfg.ChunkRecords = 1234
	cfg.SkipMalformed = true

	args := &helpers.Args{Command: helpers.SORT_CMD, Sort: helpers.SortArgs{Input: "in", Output: "out"}}
	req, err := sortRequest(args, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, record.AMOUNT, req.Key)
	assert.Equal(t, 1234, req.ChunkRecords)
	assert.Equal(t, cfg.TempDir, req.TempDir)
	assert.Equal(t, extsort.SkipMalformed, req.OnMalformed)

	args.Sort.Key = "max_volume"
	args.Sort.TempDir = "/elsewhere"
	args.Sort.ChunkRecords = 0
	args.ChunkRecordsSet = true
	req, err = sortRequest(args, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, record.MAX_VOLUME, req.Key)
	assert.Equal(t, 0, req.ChunkRecords, "an explicit zero must reach validation")
	assert.Equal(t, "/elsewhere", req.TempDir)

	args.Sort.Key = "price"
	_, err = sortRequest(args, cfg, nil)
	var ce *common.ConfigError
	assert.True(t, errors.As(err, &ce))
}

func TestResolveKeyWithoutAnySource(t *testing.T) {
	prompter := &fakePrompter{key: record.DATE}
	_, err := resolveKey("", config.Default(), prompter)
	if helpers.IsInteractive() {
		t.Skip("stdin is a terminal")
	}
	var ce *common.ConfigError
	assert.True(t, errors.As(err, &ce))
	assert.False(t, prompter.asked)
}

func TestRunUnknownCommand(t *testing.T) {
	c, _, _ := newTestClient(t)
	err := run(context.Background(), c, nil, &helpers.Args{Command: "shuffle"}, config.Default())
	assert.Error(t, err)
}
