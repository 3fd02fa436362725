package catalog

import "github.com/noah-isme/checkout-pricing/internal/pricing"

// Reference returns the supermarket price list the service ships with.
func Reference() pricing.Rules {
	return pricing.Rules{
		Catalog: pricing.Catalog{
			"A": 50, "B": 30, "C": 20, "D": 15, "E": 40, "F": 10, "G": 20,
			"H": 10, "I": 35, "J": 60, "K": 70, "L": 90, "M": 15, "N": 40,
			"O": 10, "P": 50, "Q": 30, "R": 50, "S": 20, "T": 20, "U": 40,
			"V": 50, "W": 20, "X": 17, "Y": 20, "Z": 21,
		},
		Offers: []pricing.Offer{
			pricing.BulkOffer{SKU: "A", Quantity: 3, Price: 130},
			pricing.BulkOffer{SKU: "A", Quantity: 5, Price: 200},
			pricing.BulkOffer{SKU: "B", Quantity: 2, Price: 45},
			pricing.BulkOffer{SKU: "H", Quantity: 5, Price: 45},
			pricing.BulkOffer{SKU: "H", Quantity: 10, Price: 80},
			pricing.BulkOffer{SKU: "K", Quantity: 2, Price: 120},
			pricing.BulkOffer{SKU: "P", Quantity: 5, Price: 200},
			pricing.BulkOffer{SKU: "Q", Quantity: 3, Price: 80},
			pricing.BulkOffer{SKU: "V", Quantity: 2, Price: 90},
			pricing.BulkOffer{SKU: "V", Quantity: 3, Price: 130},

			pricing.FreeItemOffer{SKU: "E", BuyQuantity: 2, FreeSKU: "B"},
			pricing.FreeItemOffer{SKU: "F", BuyQuantity: 2, FreeSKU: "F"},
			pricing.FreeItemOffer{SKU: "N", BuyQuantity: 3, FreeSKU: "M"},
			pricing.FreeItemOffer{SKU: "R", BuyQuantity: 3, FreeSKU: "Q"},
			pricing.FreeItemOffer{SKU: "U", BuyQuantity: 3, FreeSKU: "U"},

			pricing.GroupDiscount{SKUs: []pricing.SKU{"S", "T", "X", "Y", "Z"}, Quantity: 3, Price: 45},
		},
	}
}
