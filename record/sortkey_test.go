package record

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recsort/common"
)

func TestParseSortKey(t *testing.T) {
	key, err := ParseSortKey(" Volume ")
	require.NoError(t, err)
	assert.Equal(t, VOLUME, key)

	_, err = ParseSortKey("price")
	var ce *common.ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "sort key", ce.Field)
}

func TestSortKeyNames(t *testing.T) {
	assert.Equal(t, []string{"amount", "code", "date", "max_amount", "max_volume", "min_amount", "min_volume", "volume"}, SortKeyNames())
	for _, name := range SortKeyNames() {
		assert.True(t, SortKey(name).Valid())
		assert.NotNil(t, SortKey(name).Comparator())
	}
	assert.False(t, SortKey("price").Valid())
	assert.Nil(t, SortKey("price").Comparator())
}

func TestComparators(t *testing.T) {
	small := &Record{Code: "000001", Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Volume: 10, Amount: 1.5, MaxVolume: 5, MinVolume: 1, MaxAmount: 1, MinAmount: 0.5}
	large := &Record{Code: "600000", Date: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), Volume: 20, Amount: 2.5, MaxVolume: 6, MinVolume: 2, MaxAmount: 2, MinAmount: 0.75}

	// magnitude keys put the larger record first
	for _, key := range []SortKey{VOLUME, AMOUNT, MAX_VOLUME, MAX_AMOUNT, MIN_VOLUME, MIN_AMOUNT} {
		t.Run(string(key), func(t *testing.T) {
			compare := key.Comparator()
			assert.Negative(t, compare(large, small))
			assert.Positive(t, compare(small, large))
			assert.Zero(t, compare(small, small))
		})
	}
	// identifying keys are ascending
	for _, key := range []SortKey{CODE, DATE} {
		t.Run(string(key), func(t *testing.T) {
			compare := key.Comparator()
			assert.Negative(t, compare(small, large))
			assert.Positive(t, compare(large, small))
		})
	}
}
