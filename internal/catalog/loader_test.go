package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/checkout-pricing/internal/catalog"
	"github.com/noah-isme/checkout-pricing/internal/pricing"
)

const sampleRules = `
items:
  E: 40
  B: 30
  F: 10
  S: 20
  T: 20
  X: 17
bulk:
  - {sku: B, quantity: 2, price: 45}
free_items:
  - {sku: E, buy: 2, free: B}
  - {sku: F, buy: 2, free: F}
groups:
  - skus: [S, T, X]
    quantity: 3
    price: 45
`

func TestParseRulesFile(t *testing.T) {
	rules, err := catalog.Parse([]byte(sampleRules))
	require.NoError(t, err)
	require.Len(t, rules.Catalog, 6)
	require.Len(t, rules.Offers, 4)

	engine, err := pricing.NewEngine(rules)
	require.NoError(t, err)
	require.Equal(t, pricing.Money(110), engine.Checkout("EEBB"))
	require.Equal(t, pricing.Money(20), engine.Checkout("FFF"))
	require.Equal(t, pricing.Money(45), engine.Checkout("STX"))
	require.Equal(t, pricing.Money(45), engine.Checkout("BB"))
}

func TestParseRejectsInvalidFiles(t *testing.T) {
	cases := map[string]string{
		"no items":          "bulk: []\n",
		"negative price":    "items: {A: -5}\n",
		"zero bulk":         "items: {A: 5}\nbulk:\n  - {sku: A, quantity: 0, price: 1}\n",
		"missing free sku":  "items: {A: 5}\nfree_items:\n  - {sku: A, buy: 2}\n",
		"empty group":       "items: {A: 5}\ngroups:\n  - {skus: [], quantity: 2, price: 1}\n",
		"unknown reference": "items: {A: 5}\nfree_items:\n  - {sku: A, buy: 2, free: Z}\n",
		"unknown field":     "items: {A: 5}\ndiscounts: []\n",
		"not yaml":          "items: [",
	}
	for name, body := range cases {
		_, err := catalog.Parse([]byte(body))
		require.ErrorIs(t, err, pricing.ErrInvalidRules, name)
	}
}

func TestLoad(t *testing.T) {
	rules, err := catalog.Load("")
	require.NoError(t, err)
	require.Len(t, rules.Catalog, 26)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRules), 0o600))
	rules, err = catalog.Load(path)
	require.NoError(t, err)
	require.Len(t, rules.Catalog, 6)

	_, err = catalog.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestReferenceRulesCompile(t *testing.T) {
	engine, err := pricing.NewEngine(catalog.Reference())
	require.NoError(t, err)
	require.Len(t, engine.Catalog(), 26)
	require.Len(t, engine.Offers(), 16)
}
