package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/checkout-pricing/internal/pricing"
)

// File is the on-disk layout of a pricing rules file.
//
//	items:
//	  A: 50
//	bulk:
//	  - {sku: A, quantity: 3, price: 130}
//	free_items:
//	  - {sku: E, buy: 2, free: B}
//	groups:
//	  - {skus: [S, T, X], quantity: 3, price: 45}
type File struct {
	Items     map[string]int64 `yaml:"items" validate:"required,min=1,dive,keys,required,endkeys,gte=0"`
	Bulk      []BulkEntry      `yaml:"bulk" validate:"dive"`
	FreeItems []FreeItemEntry  `yaml:"free_items" validate:"dive"`
	Groups    []GroupEntry     `yaml:"groups" validate:"dive"`
}

// BulkEntry is a multi-buy price.
type BulkEntry struct {
	SKU      string `yaml:"sku" validate:"required"`
	Quantity int    `yaml:"quantity" validate:"gt=0"`
	Price    int64  `yaml:"price" validate:"gte=0"`
}

// FreeItemEntry is a buy-X-get-Y-free offer.
type FreeItemEntry struct {
	SKU  string `yaml:"sku" validate:"required"`
	Buy  int    `yaml:"buy" validate:"gt=0"`
	Free string `yaml:"free" validate:"required"`
}

// GroupEntry is an any-N-of-set offer.
type GroupEntry struct {
	SKUs     []string `yaml:"skus" validate:"required,min=1,dive,required"`
	Quantity int      `yaml:"quantity" validate:"gt=0"`
	Price    int64    `yaml:"price" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads and compiles a rules file. An empty path yields the reference rules.
func Load(path string) (pricing.Rules, error) {
	if strings.TrimSpace(path) == "" {
		return Reference(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pricing.Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML rules and checks them field by field.
func Parse(data []byte) (pricing.Rules, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return pricing.Rules{}, fmt.Errorf("%w: decode: %v", pricing.ErrInvalidRules, err)
	}
	if err := validate.Struct(f); err != nil {
		return pricing.Rules{}, fmt.Errorf("%w: %s", pricing.ErrInvalidRules, describe(err))
	}
	rules := f.Rules()
	if err := rules.Validate(); err != nil {
		return pricing.Rules{}, err
	}
	return rules, nil
}

// Rules converts the file into a pricing configuration. Offers keep file order
// within each section.
func (f File) Rules() pricing.Rules {
	rules := pricing.Rules{Catalog: make(pricing.Catalog, len(f.Items))}
	for sku, price := range f.Items {
		rules.Catalog[pricing.SKU(sku)] = price
	}
	for _, b := range f.Bulk {
		rules.Offers = append(rules.Offers, pricing.BulkOffer{SKU: pricing.SKU(b.SKU), Quantity: b.Quantity, Price: b.Price})
	}
	for _, fi := range f.FreeItems {
		rules.Offers = append(rules.Offers, pricing.FreeItemOffer{SKU: pricing.SKU(fi.SKU), BuyQuantity: fi.Buy, FreeSKU: pricing.SKU(fi.Free)})
	}
	for _, g := range f.Groups {
		skus := make([]pricing.SKU, 0, len(g.SKUs))
		for _, s := range g.SKUs {
			skus = append(skus, pricing.SKU(s))
		}
		rules.Offers = append(rules.Offers, pricing.GroupDiscount{SKUs: skus, Quantity: g.Quantity, Price: g.Price})
	}
	return rules
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
