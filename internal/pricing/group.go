package pricing

import "sort"

type groupUnit struct {
	sku   SKU
	price Money
}

// resolveGroups applies each group discount, in configured order, to the
// counts left by the previous one. It returns the leftover counts, the revenue
// charged for the groups and how many groups were formed.
func (e *Engine) resolveGroups(counts Counts) (Counts, Money, int) {
	adjusted := counts.clone()
	var revenue Money
	applied := 0
	for _, g := range e.groups {
		pool := e.groupPool(g, adjusted)
		for len(pool) >= g.Quantity {
			for _, u := range pool[:g.Quantity] {
				adjusted[u.sku]--
			}
			pool = pool[g.Quantity:]
			revenue += g.Price
			applied++
		}
	}
	return adjusted, revenue, applied
}

// groupPool lists every eligible unit, most expensive first so the discount
// absorbs the units that would cost the customer most. Equal prices fall back
// to SKU order.
func (e *Engine) groupPool(g GroupDiscount, counts Counts) []groupUnit {
	size := 0
	for _, sku := range g.SKUs {
		if n := counts[sku]; n > 0 {
			size += n
		}
	}
	pool := make([]groupUnit, 0, size)
	for _, sku := range g.SKUs {
		price := e.catalog[sku]
		for i := 0; i < counts[sku]; i++ {
			pool = append(pool, groupUnit{sku: sku, price: price})
		}
	}
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].price != pool[j].price {
			return pool[i].price > pool[j].price
		}
		return pool[i].sku < pool[j].sku
	})
	return pool
}
