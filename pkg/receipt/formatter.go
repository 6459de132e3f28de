package receipt

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Column widths of an item row; the name column takes what is left.
const (
	DefaultWidth = 58
	qtyWidth     = 5
	rateWidth    = 10
	amountWidth  = 11
	minNameWidth = 8
)

// Options control receipt layout.
type Options struct {
	Width    int
	Currency string
	Taxes    TaxRates
	Footer   []string
}

// DefaultOptions returns the 58-column layout with rupee amounts and a 2.5% + 2.5% GST split.
func DefaultOptions() Options {
	return Options{
		Width:    DefaultWidth,
		Currency: "₹",
		Taxes:    TaxRates{CGST: 2.5, SGST: 2.5},
		Footer:   []string{"Thank you! Visit again"},
	}
}

// Format lays an order out as a classified receipt document. It performs no
// I/O and returns identical output for identical input. A nil order or nil
// item list yields a receipt with an empty items section and zero totals.
func Format(order *Order, profile *BusinessProfile, opts Options) *Document {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if order == nil {
		order = &Order{}
	}
	biz := profile.WithDefaults()

	f := &formatter{opts: opts, doc: &Document{Width: opts.Width, Paper: DefaultPaper()}}
	f.header(biz)
	f.divider()
	f.orderInfo(order)
	f.divider()
	f.items(order.Items)
	f.divider()
	f.totals(order)
	f.divider()
	f.footer()
	return f.doc
}

type formatter struct {
	opts Options
	doc  *Document
}

func (f *formatter) add(l Line) {
	f.doc.Lines = append(f.doc.Lines, l)
}

func (f *formatter) divider() {
	f.add(Line{Kind: LineDivider, Text: strings.Repeat("-", f.opts.Width)})
}

func (f *formatter) header(biz BusinessProfile) {
	f.add(Line{Kind: LineHeader, Text: biz.Name, Align: AlignCenter, Bold: true, Size: SizeDouble})
	if biz.Address != "" {
		f.add(Line{Kind: LineHeader, Text: biz.Address, Align: AlignCenter})
	}
	if biz.Phone != "" {
		f.add(Line{Kind: LineHeader, Text: "Ph: " + biz.Phone, Align: AlignCenter})
	}
	if biz.GSTNumber != "" {
		f.add(Line{Kind: LineHeader, Text: "GSTIN: " + biz.GSTNumber, Align: AlignCenter})
	}
}

func (f *formatter) orderInfo(o *Order) {
	number := o.OrderNumber
	if number == "" {
		number = o.ID
	}
	if number != "" {
		f.add(Line{Kind: LineInfo, Text: "Order #: " + number})
	}
	if !o.CreatedAt.IsZero() {
		f.add(Line{Kind: LineInfo, Text: "Date: " + o.CreatedAt.Format("02/01/2006 15:04")})
	}
	if len(o.TableNames) > 0 {
		f.add(Line{Kind: LineInfo, Text: "Table: " + strings.Join(o.TableNames, ", ")})
	}
}

func (f *formatter) items(items []Item) {
	f.add(Line{Kind: LineItemHeader, Text: f.columns("Item", "Qty", "Rate", "Amount"), Bold: true})
	f.divider()
	for _, it := range items {
		f.add(Line{
			Kind: LineItem,
			Text: f.columns(it.DisplayName(), fmt.Sprintf("%d", it.Quantity), money(it.Price), money(it.LineTotal())),
		})
		for _, m := range it.Modifications {
			f.add(Line{Kind: LineItemNote, Text: truncate("  + "+m, f.opts.Width)})
		}
	}
}

func (f *formatter) totals(o *Order) {
	cur := f.opts.Currency
	f.add(Line{Kind: LineTotal, Text: f.keyValue("Subtotal", cur+money(o.Subtotal))})
	for _, t := range o.TaxComponents(f.opts.Taxes) {
		f.add(Line{Kind: LineTotal, Text: f.keyValue(t.Label(), cur+money(t.Amount))})
	}
	for _, d := range o.AppliedDiscounts() {
		for _, l := range d.Lines {
			label := l.Label
			if d.Kind == DiscountPerItem {
				label = "  " + label
			}
			f.add(Line{Kind: LineTotal, Text: f.keyValue(label, "-"+cur+money(l.Amount))})
		}
	}
	f.add(Line{Kind: LineGrandTotal, Text: f.keyValue("Grand Total", cur+money(o.GrandTotal(f.opts.Taxes))), Bold: true})
	if o.PaymentMethod != "" {
		f.add(Line{Kind: LineInfo, Text: "Paid via: " + strings.ToUpper(o.PaymentMethod)})
	}
}

func (f *formatter) footer() {
	for _, s := range f.opts.Footer {
		f.add(Line{Kind: LineFooter, Text: s, Align: AlignCenter})
	}
}

// columns lays out an item row; the name is truncated, never wrapped.
// Numeric fields are never cut: a field wider than its column widens it and
// the name gives up the room, keeping the row within the receipt width.
func (f *formatter) columns(name, qty, rate, amount string) string {
	fields := [3]string{qty, rate, amount}
	widths := [3]int{qtyWidth, rateWidth, amountWidth}
	var need [3]int
	total := 0
	for i, s := range fields {
		need[i] = utf8.RuneCountInString(s) + 1
		if widths[i] < need[i] {
			widths[i] = need[i]
		}
		total += widths[i]
	}

	// Narrow paper: give back column padding until the name has its minimum.
	for i := range widths {
		short := minNameWidth - (f.opts.Width - total)
		if short <= 0 {
			break
		}
		give := min(widths[i]-need[i], short)
		widths[i] -= give
		total -= give
	}

	nameWidth := max(f.opts.Width-total, 0)
	return padRight(truncate(name, nameWidth), nameWidth) +
		padLeft(qty, widths[0]) +
		padLeft(rate, widths[1]) +
		padLeft(amount, widths[2])
}

// keyValue left-aligns key and right-aligns value with at least one space between.
func (f *formatter) keyValue(key, value string) string {
	spaces := f.opts.Width - utf8.RuneCountInString(key) - utf8.RuneCountInString(value)
	if spaces < 1 {
		spaces = 1
	}
	return key + strings.Repeat(" ", spaces) + value
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
