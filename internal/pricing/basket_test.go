package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBasket(t *testing.T) {
	catalog := Catalog{"A": 50, "B": 30, "AB": 70}

	counts, err := ParseBasket(catalog, "ABA")
	require.NoError(t, err)
	require.Equal(t, Counts{"A": 2, "B": 1}, counts)

	counts, err = ParseBasket(catalog, []string{"AB", "A", "AB"})
	require.NoError(t, err)
	require.Equal(t, Counts{"AB": 2, "A": 1}, counts)

	counts, err = ParseBasket(catalog, []SKU{"B"})
	require.NoError(t, err)
	require.Equal(t, Counts{"B": 1}, counts)

	counts, err = ParseBasket(catalog, "")
	require.NoError(t, err)
	require.Empty(t, counts)

	for _, input := range []any{nil, 7, []int{1}, map[string]int{"A": 1}, []any{"A", nil}} {
		_, err = ParseBasket(catalog, input)
		require.ErrorIs(t, err, ErrTypeMismatch)
	}

	_, err = ParseBasket(catalog, "ABc")
	require.ErrorIs(t, err, ErrUnknownItem)
}

func TestCountsKey(t *testing.T) {
	require.Equal(t, `"A":3,"B":1`, Counts{"B": 1, "A": 3, "C": 0}.Key())
	require.NotEqual(t, Counts{"A": 1, "B": 1}.Key(), Counts{"A:1,B": 1}.Key())
	require.Equal(t, "", Counts{}.Key())
	require.Equal(t, 4, Counts{"B": 1, "A": 3, "C": 0}.Units())
}

func TestStagesProduceNewSnapshots(t *testing.T) {
	engine, err := NewEngine(Rules{
		Catalog: Catalog{"E": 40, "B": 30, "S": 20, "T": 25},
		Offers: []Offer{
			FreeItemOffer{SKU: "E", BuyQuantity: 2, FreeSKU: "B"},
			GroupDiscount{SKUs: []SKU{"S", "T"}, Quantity: 2, Price: 30},
			BulkOffer{SKU: "S", Quantity: 3, Price: 50},
		},
	})
	require.NoError(t, err)

	in := Counts{"E": 4, "B": 1, "S": 4, "T": 1}
	afterFree := engine.resolveFreeItems(in)
	require.Equal(t, Counts{"E": 4, "B": 0, "S": 4, "T": 1}, afterFree)
	require.Equal(t, 1, in["B"])

	afterGroups, revenue, applied := engine.resolveGroups(afterFree)
	require.Equal(t, Counts{"E": 4, "B": 0, "S": 1, "T": 0}, afterGroups)
	require.Equal(t, Money(60), revenue)
	require.Equal(t, 2, applied)
	require.Equal(t, 4, afterFree["S"])

	require.Equal(t, Money(20), engine.resolveBulk("S", afterGroups["S"]))
	require.Equal(t, Money(70), engine.resolveBulk("S", 4))
	require.Equal(t, Money(0), engine.resolveBulk("S", 0))
}
