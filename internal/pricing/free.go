package pricing

// resolveFreeItems removes the units that buy-X-get-Y offers give away.
// Free units are only taken from items actually in the basket.
func (e *Engine) resolveFreeItems(counts Counts) Counts {
	adjusted := counts.clone()

	granted := make(map[SKU]int)
	for trigger, offers := range e.free {
		n := counts[trigger]
		if n <= 0 {
			continue
		}
		for _, o := range offers {
			if f := n / o.BuyQuantity; f > 0 {
				granted[o.FreeSKU] += f
			}
		}
	}

	for sku, f := range granted {
		have := counts[sku]
		if have <= 0 {
			continue
		}
		f = min(f, have)
		if o, ok := e.selfOffer(sku, f, have); ok {
			// Every group of BuyQuantity+1 units pays for BuyQuantity.
			adjusted[sku] = have - have/(o.BuyQuantity+1)
			continue
		}
		adjusted[sku] = have - f
	}
	return adjusted
}

// selfOffer returns the first buy-X-get-X offer on sku able to account for f
// free units out of have.
func (e *Engine) selfOffer(sku SKU, f, have int) (FreeItemOffer, bool) {
	for _, o := range e.free[sku] {
		if o.SelfReferential() && o.BuyQuantity*f <= have {
			return o, true
		}
	}
	return FreeItemOffer{}, false
}
