package workflow

import "github.com/modelmagic/modelmagic/dao/model"

// Package unit prices in dollars. These match the published packages; the
// wire format keeps dollars as floats, so the model does too.
var unitPrices = map[model.PackageType]float64{
	model.PackageDFY:       29.00,
	model.PackageImageOnly: 9.99,
	model.PackageVideoOnly: 19.99,
}

// Production schedule length per package, used to seed the progress counters
// at submission (delivery promise is 24-48h plus QA and review).
var productionDays = map[model.PackageType]int{
	model.PackageDFY:       4,
	model.PackageImageOnly: 2,
	model.PackageVideoOnly: 3,
}

// UnitPrice returns the fixed price for a package type.
func UnitPrice(pt model.PackageType) (float64, error) {
	price, ok := unitPrices[pt]
	if !ok {
		return 0, validation("unknown package type %q", pt)
	}
	return price, nil
}

// QuoteTotal computes the immutable total cost frozen at submission.
func QuoteTotal(pt model.PackageType, quantity int) (float64, error) {
	if quantity < 1 {
		return 0, validation("item quantity must be at least 1, got %d", quantity)
	}
	price, err := UnitPrice(pt)
	if err != nil {
		return 0, err
	}
	return price * float64(quantity), nil
}
