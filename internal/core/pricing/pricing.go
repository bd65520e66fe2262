// Package pricing computes order totals from products, menus and the
// promotions linked to them.
//
// Discounts cascade: a product's own promotions are applied first and the
// promotions of the menu containing it are applied on top, multiplicatively.
// Promotion values are percentages and are not clamped, so a value above 100
// yields a negative factor.
package pricing

// Product is a priced product together with the values of its promotions.
type Product struct {
	ID         uint
	Price      float64
	Promotions []float64
}

// Menu is a set of products sold under the menu's own promotions.
type Menu struct {
	ID         uint
	Promotions []float64
	Products   []Product
}

// Factor returns the multiplier for the given promotion values.
// Each value v contributes (1 - v/100); no values means no discount.
func Factor(values ...float64) float64 {
	f := 1.0
	for _, v := range values {
		f *= 1 - v/100
	}
	return f
}

// Net is the product price after its own promotions.
func (p Product) Net() float64 {
	return p.Price * Factor(p.Promotions...)
}

// Net is the sum of the discounted products, discounted again by the menu.
func (m Menu) Net() float64 {
	factor := Factor(m.Promotions...)
	total := 0.0
	for _, p := range m.Products {
		total += p.Net() * factor
	}
	return total
}

// Total prices a selection. Every reference is priced on its own, so a
// product selected directly and through a menu counts twice.
func Total(products []Product, menus []Menu) float64 {
	total := 0.0
	for _, p := range products {
		total += p.Net()
	}
	for _, m := range menus {
		total += m.Net()
	}
	return total
}
