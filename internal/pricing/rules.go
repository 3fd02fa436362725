package pricing

import (
	"fmt"
	"sort"
)

// Money represents a monetary value stored in minor units.
type Money = int64

// SKU identifies a product type in the catalog.
type SKU string

// Catalog maps each SKU to its base unit price.
type Catalog map[SKU]Money

// Has reports whether the SKU is priced by the catalog.
func (c Catalog) Has(sku SKU) bool {
	_, ok := c[sku]
	return ok
}

// SKUs returns the catalog identifiers in ascending order.
func (c Catalog) SKUs() []SKU {
	out := make([]SKU, 0, len(c))
	for sku := range c {
		out = append(out, sku)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// OfferKind names an offer variant.
type OfferKind string

const (
	KindBulk     OfferKind = "bulk"
	KindFreeItem OfferKind = "free_item"
	KindGroup    OfferKind = "group"
)

// Offer is a pricing rule layered on top of catalog unit prices.
// It is implemented by BulkOffer, FreeItemOffer and GroupDiscount only.
type Offer interface {
	Kind() OfferKind
	validate(Catalog) error
}

// BulkOffer charges Price for every Quantity units of SKU.
type BulkOffer struct {
	SKU      SKU
	Quantity int
	Price    Money
}

// Kind implements Offer.
func (BulkOffer) Kind() OfferKind { return KindBulk }

func (o BulkOffer) validate(c Catalog) error {
	if !c.Has(o.SKU) {
		return fmt.Errorf("%w: bulk offer on unknown sku %q", ErrInvalidRules, o.SKU)
	}
	if o.Quantity <= 0 {
		return fmt.Errorf("%w: bulk offer on %q needs a positive quantity", ErrInvalidRules, o.SKU)
	}
	if o.Price < 0 {
		return fmt.Errorf("%w: bulk offer on %q has a negative price", ErrInvalidRules, o.SKU)
	}
	return nil
}

// FreeItemOffer gives one unit of FreeSKU away for every BuyQuantity units of SKU.
// FreeSKU may equal SKU.
type FreeItemOffer struct {
	SKU         SKU
	BuyQuantity int
	FreeSKU     SKU
}

// Kind implements Offer.
func (FreeItemOffer) Kind() OfferKind { return KindFreeItem }

// SelfReferential reports whether the offer gives away the triggering item itself.
func (o FreeItemOffer) SelfReferential() bool { return o.SKU == o.FreeSKU }

func (o FreeItemOffer) validate(c Catalog) error {
	if !c.Has(o.SKU) {
		return fmt.Errorf("%w: free item offer on unknown sku %q", ErrInvalidRules, o.SKU)
	}
	if !c.Has(o.FreeSKU) {
		return fmt.Errorf("%w: free item offer on %q gives away unknown sku %q", ErrInvalidRules, o.SKU, o.FreeSKU)
	}
	if o.BuyQuantity <= 0 {
		return fmt.Errorf("%w: free item offer on %q needs a positive buy quantity", ErrInvalidRules, o.SKU)
	}
	return nil
}

// GroupDiscount charges Price for any Quantity units drawn from SKUs.
type GroupDiscount struct {
	SKUs     []SKU
	Quantity int
	Price    Money
}

// Kind implements Offer.
func (GroupDiscount) Kind() OfferKind { return KindGroup }

func (g GroupDiscount) validate(c Catalog) error {
	if len(g.SKUs) == 0 {
		return fmt.Errorf("%w: group discount without eligible items", ErrInvalidRules)
	}
	for _, sku := range g.SKUs {
		if !c.Has(sku) {
			return fmt.Errorf("%w: group discount references unknown sku %q", ErrInvalidRules, sku)
		}
	}
	if g.Quantity <= 0 {
		return fmt.Errorf("%w: group discount needs a positive quantity", ErrInvalidRules)
	}
	if g.Price < 0 {
		return fmt.Errorf("%w: group discount has a negative price", ErrInvalidRules)
	}
	return nil
}

// unique returns the group's SKUs without duplicates, keeping first occurrence order.
func (g GroupDiscount) unique() GroupDiscount {
	seen := make(map[SKU]struct{}, len(g.SKUs))
	skus := make([]SKU, 0, len(g.SKUs))
	for _, sku := range g.SKUs {
		if _, ok := seen[sku]; ok {
			continue
		}
		seen[sku] = struct{}{}
		skus = append(skus, sku)
	}
	return GroupDiscount{SKUs: skus, Quantity: g.Quantity, Price: g.Price}
}

// Rules is the full pricing configuration: unit prices plus every offer.
// Group discounts are applied in the order they appear in Offers.
type Rules struct {
	Catalog Catalog
	Offers  []Offer
}

// Validate checks prices, quantities and SKU references.
func (r Rules) Validate() error {
	if len(r.Catalog) == 0 {
		return fmt.Errorf("%w: catalog is empty", ErrInvalidRules)
	}
	for sku, price := range r.Catalog {
		if sku == "" {
			return fmt.Errorf("%w: empty sku in catalog", ErrInvalidRules)
		}
		if price < 0 {
			return fmt.Errorf("%w: negative unit price for %q", ErrInvalidRules, sku)
		}
	}
	for i, o := range r.Offers {
		if o == nil {
			return fmt.Errorf("%w: offer %d is nil", ErrInvalidRules, i)
		}
		if err := o.validate(r.Catalog); err != nil {
			return err
		}
	}
	return nil
}
