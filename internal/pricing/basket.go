package pricing

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Counts tallies basket units per SKU. Pipeline stages never modify the
// snapshot they receive; each returns a fresh one.
type Counts map[SKU]int

func (c Counts) clone() Counts {
	out := make(Counts, len(c))
	for sku, n := range c {
		out[sku] = n
	}
	return out
}

// Units returns the total number of units in the basket.
func (c Counts) Units() int {
	total := 0
	for _, n := range c {
		if n > 0 {
			total += n
		}
	}
	return total
}

// Key renders the counts canonically, e.g. `"A":3,"B":1`. SKUs are quoted so
// identifiers containing separators cannot collide. Zero entries are omitted.
func (c Counts) Key() string {
	skus := make([]SKU, 0, len(c))
	for sku, n := range c {
		if n > 0 {
			skus = append(skus, sku)
		}
	}
	sort.Slice(skus, func(i, j int) bool { return skus[i] < skus[j] })
	var b strings.Builder
	for i, sku := range skus {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(string(sku)))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(c[sku]))
	}
	return b.String()
}

// ParseBasket validates raw input against the catalog and tallies it.
//
// A string contributes one identifier per rune. A []string, []SKU or []any of
// strings contributes one identifier per element, which allows multi-character
// codes. Anything else, nil included, fails with ErrTypeMismatch. A single
// unknown identifier rejects the whole basket with ErrUnknownItem.
func ParseBasket(catalog Catalog, input any) (Counts, error) {
	var ids []SKU
	switch v := input.(type) {
	case string:
		ids = make([]SKU, 0, len(v))
		for _, r := range v {
			ids = append(ids, SKU(string(r)))
		}
	case []string:
		ids = make([]SKU, 0, len(v))
		for _, s := range v {
			ids = append(ids, SKU(s))
		}
	case []SKU:
		ids = v
	case []any:
		ids = make([]SKU, 0, len(v))
		for _, elem := range v {
			s, ok := elem.(string)
			if !ok {
				return nil, ErrTypeMismatch
			}
			ids = append(ids, SKU(s))
		}
	default:
		return nil, ErrTypeMismatch
	}

	counts := make(Counts, len(ids))
	for _, id := range ids {
		if !catalog.Has(id) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownItem, string(id))
		}
		counts[id]++
	}
	return counts, nil
}
