package pricing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Line describes how the units of one SKU were priced.
type Line struct {
	SKU       SKU   `json:"sku"`
	Quantity  int   `json:"quantity"`
	Free      int   `json:"free"`
	Grouped   int   `json:"grouped"`
	Charged   int   `json:"charged"`
	UnitPrice Money `json:"unitPrice"`
	Amount    Money `json:"amount"`
}

// Quote aggregates the outcome of a checkout run.
type Quote struct {
	Lines         []Line `json:"lines"`
	Units         int    `json:"units"`
	Subtotal      Money  `json:"subtotal"`
	GroupsApplied int    `json:"groupsApplied"`
	GroupRevenue  Money  `json:"groupRevenue"`
	BulkRevenue   Money  `json:"bulkRevenue"`
	Discount      Money  `json:"discount"`
	Total         Money  `json:"total"`
}

// Engine prices baskets against a fixed set of rules. It is immutable after
// construction and safe for concurrent use.
type Engine struct {
	catalog     Catalog
	skus        []SKU
	offers      []Offer
	bulk        map[SKU][]BulkOffer
	free        map[SKU][]FreeItemOffer
	groups      []GroupDiscount
	fingerprint string
}

// NewEngine validates the rules and compiles them into per-SKU offer tables.
func NewEngine(rules Rules) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		catalog: make(Catalog, len(rules.Catalog)),
		offers:  make([]Offer, 0, len(rules.Offers)),
		bulk:    make(map[SKU][]BulkOffer),
		free:    make(map[SKU][]FreeItemOffer),
	}
	for sku, price := range rules.Catalog {
		e.catalog[sku] = price
	}
	e.skus = e.catalog.SKUs()

	for _, o := range rules.Offers {
		switch v := o.(type) {
		case BulkOffer:
			e.bulk[v.SKU] = append(e.bulk[v.SKU], v)
			e.offers = append(e.offers, v)
		case FreeItemOffer:
			e.free[v.SKU] = append(e.free[v.SKU], v)
			e.offers = append(e.offers, v)
		case GroupDiscount:
			g := v.unique()
			e.groups = append(e.groups, g)
			e.offers = append(e.offers, g)
		default:
			return nil, fmt.Errorf("%w: unsupported offer %T", ErrInvalidRules, o)
		}
	}
	for sku := range e.bulk {
		offers := e.bulk[sku]
		sort.SliceStable(offers, func(i, j int) bool {
			if offers[i].Quantity != offers[j].Quantity {
				return offers[i].Quantity > offers[j].Quantity
			}
			return offers[i].Price < offers[j].Price
		})
	}
	e.fingerprint = fingerprint(e)
	return e, nil
}

// Catalog returns a copy of the unit prices.
func (e *Engine) Catalog() Catalog {
	out := make(Catalog, len(e.catalog))
	for sku, price := range e.catalog {
		out[sku] = price
	}
	return out
}

// Offers returns a deep copy of the configured offers in configuration order.
func (e *Engine) Offers() []Offer {
	out := make([]Offer, len(e.offers))
	for i, o := range e.offers {
		if g, ok := o.(GroupDiscount); ok {
			g.SKUs = append([]SKU(nil), g.SKUs...)
			o = g
		}
		out[i] = o
	}
	return out
}

// Fingerprint identifies the compiled rules. Engines built from equivalent
// rules share a fingerprint.
func (e *Engine) Fingerprint() string { return e.fingerprint }

// Parse validates raw basket input against the engine's catalog.
func (e *Engine) Parse(input any) (Counts, error) {
	return ParseBasket(e.catalog, input)
}

// Checkout returns the basket total, or InvalidTotal when the input is rejected.
func (e *Engine) Checkout(input any) Money {
	q, err := e.Quote(input)
	if err != nil {
		return InvalidTotal
	}
	return q.Total
}

// Quote validates the input and prices it.
func (e *Engine) Quote(input any) (Quote, error) {
	counts, err := e.Parse(input)
	if err != nil {
		return Quote{}, err
	}
	return e.Price(counts)
}

// Price runs the offer pipeline over already tallied counts: free items first,
// then group discounts, then multi-buy and unit pricing on what is left.
func (e *Engine) Price(counts Counts) (Quote, error) {
	for sku, n := range counts {
		if !e.catalog.Has(sku) {
			return Quote{}, fmt.Errorf("%w: %q", ErrUnknownItem, string(sku))
		}
		if n < 0 {
			return Quote{}, fmt.Errorf("%w: negative count for %q", ErrTypeMismatch, string(sku))
		}
	}
	q := Quote{Lines: []Line{}}
	if counts.Units() == 0 {
		return q, nil
	}

	afterFree := e.resolveFreeItems(counts)
	afterGroups, groupRevenue, groups := e.resolveGroups(afterFree)
	q.GroupRevenue = groupRevenue
	q.GroupsApplied = groups

	for _, sku := range e.skus {
		n := counts[sku]
		if n <= 0 {
			continue
		}
		price := e.catalog[sku]
		charged := afterGroups[sku]
		line := Line{
			SKU:       sku,
			Quantity:  n,
			Free:      n - afterFree[sku],
			Grouped:   afterFree[sku] - charged,
			Charged:   charged,
			UnitPrice: price,
			Amount:    e.resolveBulk(sku, charged),
		}
		q.Lines = append(q.Lines, line)
		q.Units += n
		q.Subtotal += Money(n) * price
		q.BulkRevenue += line.Amount
	}
	q.Total = q.GroupRevenue + q.BulkRevenue
	if q.Discount = q.Subtotal - q.Total; q.Discount < 0 {
		q.Discount = 0
	}
	return q, nil
}

func fingerprint(e *Engine) string {
	h := sha256.New()
	for _, sku := range e.skus {
		fmt.Fprintf(h, "item %q %d\n", sku, e.catalog[sku])
	}
	for _, sku := range e.skus {
		for _, o := range e.bulk[sku] {
			fmt.Fprintf(h, "bulk %q %d %d\n", o.SKU, o.Quantity, o.Price)
		}
		for _, o := range e.free[sku] {
			fmt.Fprintf(h, "free %q %d %q\n", o.SKU, o.BuyQuantity, o.FreeSKU)
		}
	}
	for _, g := range e.groups {
		fmt.Fprintf(h, "group %q %d %d\n", g.SKUs, g.Quantity, g.Price)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
