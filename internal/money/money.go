package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidTaxRate  = errors.New("invalid_tax_rate")
	ErrNoLineItems     = errors.New("no_line_items")
)

var oneHundred = decimal.NewFromInt(100)

// LineInput is a single quantity/price pair to be totalled.
type LineInput struct {
	Quantity int64
	Price    decimal.Decimal
}

// Totals is the result of totalling a sequence of line inputs.
type Totals struct {
	ItemAmounts []decimal.Decimal
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

// Compute totals an ordered sequence of line inputs with a tax rate
// percentage. Rounding to the minor currency unit happens once, at the
// final total, so repeated computation over the same inputs is
// reproducible. Intermediate amounts keep full precision.
func Compute(items []LineInput, taxRate decimal.Decimal) (Totals, error) {
	if len(items) == 0 {
		return Totals{}, ErrNoLineItems
	}
	if taxRate.IsNegative() {
		return Totals{}, ErrInvalidTaxRate
	}

	amounts := make([]decimal.Decimal, 0, len(items))
	subtotal := decimal.Zero
	for _, item := range items {
		if item.Quantity <= 0 {
			return Totals{}, ErrInvalidQuantity
		}
		if item.Price.IsNegative() {
			return Totals{}, ErrInvalidPrice
		}
		amount := item.Price.Mul(decimal.NewFromInt(item.Quantity))
		amounts = append(amounts, amount)
		subtotal = subtotal.Add(amount)
	}

	tax := subtotal.Mul(taxRate).Div(oneHundred)
	total := subtotal.Add(tax).Round(2)

	return Totals{
		ItemAmounts: amounts,
		Subtotal:    subtotal,
		Tax:         tax,
		Total:       total,
	}, nil
}
