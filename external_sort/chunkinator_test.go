package extsort

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recsort/common"
	"recsort/record"
)

func TestChunkSplitsAndSortsBuffers(t *testing.T) {
	opts := testOptions(t, 2, record.VOLUME)
	c := NewChunkinator("s1", opts, nil)

	chunks, err := c.Chunk(context.Background(), strings.NewReader(encode(volumeRecords(300, 100, 500, 200, 400))), "input")
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	expected := [][]int64{{300, 100}, {500, 200}, {400}}
	for i, chunk := range chunks {
		assert.Equal(t, filepath.Join(opts.TempDir, "extsort-s1-"+string(rune('0'+i))+".chunk"), chunk.Path)
		assert.Equal(t, int64(len(expected[i])), chunk.Records)
		assert.Equal(t, expected[i], volumesOf(readRecords(t, chunk.Path)))
	}
}

func TestChunkEmptyInput(t *testing.T) {
	opts := testOptions(t, 2, record.VOLUME)
	chunks, err := NewChunkinator("s1", opts, nil).Chunk(context.Background(), strings.NewReader("\n\n"), "input")
	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.Empty(t, dirEntries(t, opts.TempDir))
}

func TestChunkRejectsZeroMemoryBound(t *testing.T) {
	opts := testOptions(t, 0, record.VOLUME)
	_, err := NewChunkinator("s1", opts, nil).Chunk(context.Background(), strings.NewReader(""), "input")
	var ce *common.ConfigError
	assert.True(t, errors.As(err, &ce))
}

func TestChunkCountersArePerInstance(t *testing.T) {
	opts := testOptions(t, 1, record.VOLUME)
	input := encode(volumeRecords(1, 2))

	first, err := NewChunkinator("a", opts, nil).Chunk(context.Background(), strings.NewReader(input), "input")
	require.NoError(t, err)
	second, err := NewChunkinator("b", opts, nil).Chunk(context.Background(), strings.NewReader(input), "input")
	require.NoError(t, err)

	assert.Equal(t, "extsort-a-0.chunk", filepath.Base(first[0].Path))
	assert.Equal(t, "extsort-b-0.chunk", filepath.Base(second[0].Path))
	assert.Len(t, dirEntries(t, opts.TempDir), 4)
}

func TestChunkFailedReadAfterFlushRemovesChunks(t *testing.T) {
	opts := testOptions(t, 1, record.VOLUME)
	input := encode(volumeRecords(1, 2, 3))
	reader := &failAfterReader{data: input, fail: errors.New("disk on fire")}

	_, err := NewChunkinator("s1", opts, nil).Chunk(context.Background(), reader, "input")
	var fe *common.FileError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "read", fe.Op)
	assert.Empty(t, dirEntries(t, opts.TempDir), "chunks flushed before the failure must be removed")
}

func TestChunkFlushFailure(t *testing.T) {
	opts := testOptions(t, 1, record.VOLUME)
	c := NewChunkinator("s1", opts, nil).(*ChunkinatorImpl)
	c.tempDir = filepath.Join(opts.TempDir, "gone")

	_, err := c.Chunk(context.Background(), strings.NewReader(encode(volumeRecords(1))), "input")
	var fe *common.FileError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "create", fe.Op)
}

// failAfterReader returns all of data and then fails instead of io.EOF.
type failAfterReader struct {
	data string
	fail error
}

func (r *failAfterReader) Read(p []byte) (int, error) {
	if r.data == "" {
		return 0, r.fail
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}
