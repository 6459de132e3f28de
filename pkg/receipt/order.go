package receipt

import (
	"math"
	"strconv"
	"time"
)

// DefaultBusinessName is printed when the business profile carries no name.
const DefaultBusinessName = "Restaurant"

// Item is a single ordered line item.
type Item struct {
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	Quantity      int      `json:"quantity"`
	PortionSize   string   `json:"portionSize,omitempty"`
	Modifications []string `json:"modifications,omitempty"`
}

// LineTotal returns price x quantity.
func (i Item) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// DisplayName returns the item name with its portion tag, if any.
func (i Item) DisplayName() string {
	if i.PortionSize == "" {
		return i.Name
	}
	return i.Name + " (" + i.PortionSize + ")"
}

// Coupon is a single coupon applied to the whole order.
type Coupon struct {
	Code     string  `json:"code"`
	Discount float64 `json:"discount"`
}

// DishCoupon is a coupon applied to one dish of the order.
type DishCoupon struct {
	Code     string  `json:"code"`
	DishName string  `json:"dishName"`
	Discount float64 `json:"discount"`
}

// Order is the order consumed by the printing pipeline. It is never mutated.
type Order struct {
	ID            string       `json:"id"`
	OrderNumber   string       `json:"orderNumber"`
	Items         []Item       `json:"items"`
	Subtotal      float64      `json:"subtotal"`
	CGSTAmount    float64      `json:"cgstAmount,omitempty"`
	SGSTAmount    float64      `json:"sgstAmount,omitempty"`
	GSTAmount     float64      `json:"gstAmount,omitempty"`
	Discount      float64      `json:"discount,omitempty"`
	AppliedCoupon *Coupon      `json:"appliedCoupon,omitempty"`
	DishCoupons   []DishCoupon `json:"dishCoupons,omitempty"`
	Total         float64      `json:"total"`
	PaymentMethod string       `json:"paymentMethod,omitempty"`
	TableNames    []string     `json:"tableNames,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// BusinessProfile holds the header details printed at the top of a receipt.
type BusinessProfile struct {
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	GSTNumber string `json:"gstNumber,omitempty"`
	LogoURL   string `json:"logoUrl,omitempty"`
}

// WithDefaults returns a copy of the profile with absent fields substituted.
// A nil profile yields the default profile.
func (p *BusinessProfile) WithDefaults() BusinessProfile {
	var out BusinessProfile
	if p != nil {
		out = *p
	}
	if out.Name == "" {
		out.Name = DefaultBusinessName
	}
	return out
}

// TaxRates are the percentage rates used to label tax rows.
type TaxRates struct {
	CGST float64 `json:"cgst"`
	SGST float64 `json:"sgst"`
}

// TaxComponent is one tax row of the receipt.
type TaxComponent struct {
	Name   string
	Rate   float64
	Amount float64
}

// Label renders the row label, e.g. "CGST @ 2.5%".
func (t TaxComponent) Label() string {
	if t.Rate <= 0 {
		return t.Name
	}
	return t.Name + " @ " + strconv.FormatFloat(t.Rate, 'f', -1, 64) + "%"
}

// TaxComponents returns the tax rows with a positive amount, in print order.
// A combined GST amount is only used when neither split component is set.
func (o *Order) TaxComponents(rates TaxRates) []TaxComponent {
	if o == nil {
		return nil
	}
	var taxes []TaxComponent
	if o.CGSTAmount > 0 || o.SGSTAmount > 0 {
		if o.CGSTAmount > 0 {
			taxes = append(taxes, TaxComponent{Name: "CGST", Rate: o.rateFor(rates.CGST, o.CGSTAmount), Amount: o.CGSTAmount})
		}
		if o.SGSTAmount > 0 {
			taxes = append(taxes, TaxComponent{Name: "SGST", Rate: o.rateFor(rates.SGST, o.SGSTAmount), Amount: o.SGSTAmount})
		}
		return taxes
	}
	if o.GSTAmount > 0 {
		taxes = append(taxes, TaxComponent{Name: "GST", Rate: o.rateFor(rates.CGST+rates.SGST, o.GSTAmount), Amount: o.GSTAmount})
	}
	return taxes
}

// rateFor labels a tax row. The configured rate is used when it reproduces
// the amount to the cent; otherwise the rate is derived from the subtotal so
// the label never contradicts the printed amount.
func (o *Order) rateFor(configured, amount float64) float64 {
	if o.Subtotal <= 0 {
		return configured
	}
	if configured > 0 && math.Abs(roundCents(o.Subtotal*configured/100)-roundCents(amount)) < 0.005 {
		return configured
	}
	return roundCents(amount * 100 / o.Subtotal)
}

// TaxTotal sums the tax rows.
func (o *Order) TaxTotal(rates TaxRates) float64 {
	var total float64
	for _, t := range o.TaxComponents(rates) {
		total += t.Amount
	}
	return total
}

// DiscountKind tags the two shapes an applied discount can take.
type DiscountKind int

const (
	// DiscountWholeOrder is a single aggregate discount over the order.
	DiscountWholeOrder DiscountKind = iota
	// DiscountPerItem is a set of dish-level discounts, printed one line each.
	DiscountPerItem
)

// DiscountLine is one printed discount row.
type DiscountLine struct {
	Label  string
	Amount float64
}

// AppliedDiscount is a tagged discount variant.
type AppliedDiscount struct {
	Kind  DiscountKind
	Lines []DiscountLine
}

// Total sums the discount lines.
func (d AppliedDiscount) Total() float64 {
	var total float64
	for _, l := range d.Lines {
		total += l.Amount
	}
	return total
}

// AppliedDiscounts resolves the order's discount fields into tagged variants.
// A whole-order coupon and dish coupons are combinable; the legacy flat
// discount is only used when no coupon of either kind is present.
func (o *Order) AppliedDiscounts() []AppliedDiscount {
	if o == nil {
		return nil
	}
	var out []AppliedDiscount
	if c := o.AppliedCoupon; c != nil && c.Discount > 0 {
		label := "Discount"
		if c.Code != "" {
			label = "Discount (" + c.Code + ")"
		}
		out = append(out, AppliedDiscount{
			Kind:  DiscountWholeOrder,
			Lines: []DiscountLine{{Label: label, Amount: c.Discount}},
		})
	}
	var dish []DiscountLine
	for _, dc := range o.DishCoupons {
		if dc.Discount <= 0 {
			continue
		}
		label := dc.DishName
		if dc.Code != "" {
			label = dc.Code + " - " + dc.DishName
		}
		dish = append(dish, DiscountLine{Label: label, Amount: dc.Discount})
	}
	if len(dish) > 0 {
		out = append(out, AppliedDiscount{Kind: DiscountPerItem, Lines: dish})
	}
	if len(out) == 0 && o.Discount > 0 {
		out = append(out, AppliedDiscount{
			Kind:  DiscountWholeOrder,
			Lines: []DiscountLine{{Label: "Discount", Amount: o.Discount}},
		})
	}
	return out
}

// DiscountTotal sums every applied discount.
func (o *Order) DiscountTotal() float64 {
	var total float64
	for _, d := range o.AppliedDiscounts() {
		total += d.Total()
	}
	return total
}

// GrandTotal is subtotal + taxes - discounts, never below zero.
func (o *Order) GrandTotal(rates TaxRates) float64 {
	if o == nil {
		return 0
	}
	total := roundCents(o.Subtotal + o.TaxTotal(rates) - o.DiscountTotal())
	if total <= 0 {
		return 0
	}
	return total
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
