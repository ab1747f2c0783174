package extsort

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"recsort/record"
)

func makeRecord(code string, volume int64, amount float64) *record.Record {
	return &record.Record{
		Code:      code,
		Name:      "Stock" + code,
		Date:      time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		Volume:    volume,
		Amount:    amount,
		MaxVolume: volume / 2,
		MinVolume: 0,
		MaxAmount: amount / 2,
		MinAmount: 0,
	}
}

// volumeRecords builds one record per volume with codes 000000, 000001, ...
func volumeRecords(volumes ...int64) []*record.Record {
	records := make([]*record.Record, len(volumes))
	for i, v := range volumes {
		records[i] = makeRecord(fmt.Sprintf("%06d", i), v, float64(v)*1.25)
	}
	return records
}

// pseudoRandomRecords is deterministic and full of ties on volume.
func pseudoRandomRecords(n int) []*record.Record {
	records := make([]*record.Record, n)
	seed := uint32(7)
	for i := range records {
		seed = seed*1103515245 + 12345
		volume := int64(seed>>16) % 97
		records[i] = makeRecord(fmt.Sprintf("%06d", i%1000000), volume, float64(seed%10007)/4)
	}
	return records
}

func encode(records []*record.Record) string {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(record.Serialize(r))
		b.WriteByte('\n')
	}
	return b.String()
}

func writeInput(t *testing.T, dir string, records []*record.Record) string {
	t.Helper()
	path := filepath.Join(dir, "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(encode(records)), 0o600))
	return path
}

func readRecords(t *testing.T, path string) []*record.Record {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	var records []*record.Record
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		r, err := record.Parse(scanner.Text())
		require.NoError(t, err)
		records = append(records, r)
	}
	require.NoError(t, scanner.Err())
	return records
}

func volumesOf(records []*record.Record) []int64 {
	volumes := make([]int64, len(records))
	for i, r := range records {
		volumes[i] = r.Volume
	}
	return volumes
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func testOptions(t *testing.T, chunkRecords int, key record.SortKey) Options {
	logger, _ := test.NewNullLogger()
	return Options{
		TempDir:      t.TempDir(),
		ChunkRecords: chunkRecords,
		Key:          key,
		Logger:       logger,
	}
}

// progressRecorder collects every percentage the sorter reports.
type progressRecorder struct {
	updates []int
}

func (p *progressRecorder) sink(percent int) {
	p.updates = append(p.updates, percent)
}
