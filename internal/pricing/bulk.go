package pricing

// resolveBulk prices count units of sku. Multi-buy offers are tried from the
// largest batch down and whatever is left pays the unit price.
func (e *Engine) resolveBulk(sku SKU, count int) Money {
	if count <= 0 {
		return 0
	}
	remaining := count
	var revenue Money
	for _, o := range e.bulk[sku] {
		batches := remaining / o.Quantity
		revenue += Money(batches) * o.Price
		remaining %= o.Quantity
	}
	return revenue + Money(remaining)*e.catalog[sku]
}
