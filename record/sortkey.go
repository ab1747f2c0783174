package record

import (
	"cmp"
	"sort"
	"strings"

	"recsort/common"
)

// SortKey names the field a sort is ordered by.
type SortKey string

const (
	VOLUME     SortKey = "volume"
	AMOUNT     SortKey = "amount"
	MAX_VOLUME SortKey = "max_volume"
	MAX_AMOUNT SortKey = "max_amount"
	MIN_VOLUME SortKey = "min_volume"
	MIN_AMOUNT SortKey = "min_amount"
	CODE       SortKey = "code"
	DATE       SortKey = "date"
)

// Comparator returns a negative number when a ranks before b, zero when
// they tie on the key, and a positive number otherwise.
type Comparator func(a, b *Record) int

// magnitude fields rank largest first, identifying fields smallest first
var comparators = map[SortKey]Comparator{
	VOLUME:     func(a, b *Record) int { return cmp.Compare(b.Volume, a.Volume) },
	AMOUNT:     func(a, b *Record) int { return cmp.Compare(b.Amount, a.Amount) },
	MAX_VOLUME: func(a, b *Record) int { return cmp.Compare(b.MaxVolume, a.MaxVolume) },
	MAX_AMOUNT: func(a, b *Record) int { return cmp.Compare(b.MaxAmount, a.MaxAmount) },
	MIN_VOLUME: func(a, b *Record) int { return cmp.Compare(b.MinVolume, a.MinVolume) },
	MIN_AMOUNT: func(a, b *Record) int { return cmp.Compare(b.MinAmount, a.MinAmount) },
	CODE:       func(a, b *Record) int { return strings.Compare(a.Code, b.Code) },
	DATE:       func(a, b *Record) int { return a.Date.Compare(b.Date) },
}

// ParseSortKey resolves a user supplied key name, case-insensitively.
func ParseSortKey(name string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := comparators[key]; !ok {
		return "", common.NewConfigError("sort key", "unsupported key "+name+" (one of "+strings.Join(SortKeyNames(), ", ")+")")
	}
	return key, nil
}

// Comparator returns the ordering bound to k. Unknown keys return nil.
func (k SortKey) Comparator() Comparator {
	return comparators[k]
}

func (k SortKey) Valid() bool {
	_, ok := comparators[k]
	return ok
}

func (k SortKey) String() string {
	return string(k)
}

// SortKeyNames lists the supported keys alphabetically.
func SortKeyNames() []string {
	names := make([]string, 0, len(comparators))
	for k := range comparators {
		names = append(names, string(k))
	}
	sort.Strings(names)
	return names
}
