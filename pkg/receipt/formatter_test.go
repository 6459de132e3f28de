package receipt_test

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/receipt-print-api/pkg/receipt"
)

func linesOfKind(doc *receipt.Document, kind receipt.LineKind) []receipt.Line {
	var out []receipt.Line
	for _, l := range doc.Lines {
		if l.Kind == kind {
			out = append(out, l)
		}
	}
	return out
}

func grandTotalLine(t *testing.T, doc *receipt.Document) string {
	t.Helper()
	lines := linesOfKind(doc, receipt.LineGrandTotal)
	require.Len(t, lines, 1)
	return lines[0].Text
}

func sampleProfile() *receipt.BusinessProfile {
	return &receipt.BusinessProfile{
		Name:      "Spice Route",
		Address:   "12 MG Road, Bengaluru",
		Phone:     "080-1234567",
		GSTNumber: "29ABCDE1234F1Z5",
	}
}

func TestFormat_EmptyCart(t *testing.T) {
	order := &receipt.Order{ID: "o-1", Items: []receipt.Item{}}

	doc := receipt.Format(order, sampleProfile(), receipt.DefaultOptions())

	headers := linesOfKind(doc, receipt.LineHeader)
	require.NotEmpty(t, headers)
	assert.Equal(t, "Spice Route", headers[0].Text)
	assert.Len(t, linesOfKind(doc, receipt.LineItemHeader), 1)
	assert.Empty(t, linesOfKind(doc, receipt.LineItem))

	total := grandTotalLine(t, doc)
	assert.True(t, strings.HasPrefix(total, "Grand Total"))
	assert.True(t, strings.HasSuffix(total, "₹0.00"))
	assert.Equal(t, receipt.MinHeightMM, receipt.EstimateHeight(order, nil))
}

func TestFormat_SingleItemNoTax(t *testing.T) {
	order := &receipt.Order{
		Items:    []receipt.Item{{Name: "Tea", Price: 80, Quantity: 2}},
		Subtotal: 160,
		Total:    160,
	}

	doc := receipt.Format(order, nil, receipt.DefaultOptions())
	text := doc.Text()

	assert.True(t, strings.HasSuffix(grandTotalLine(t, doc), "160.00"))
	assert.NotContains(t, text, "CGST")
	assert.NotContains(t, text, "SGST")

	items := linesOfKind(doc, receipt.LineItem)
	require.Len(t, items, 1)
	assert.True(t, strings.HasPrefix(items[0].Text, "Tea"))
	assert.Contains(t, items[0].Text, "80.00")
	assert.True(t, strings.HasSuffix(items[0].Text, "160.00"))
}

func TestFormat_DiscountExceedsSubtotal(t *testing.T) {
	order := &receipt.Order{
		Subtotal:      100,
		AppliedCoupon: &receipt.Coupon{Code: "BIG", Discount: 150},
	}

	doc := receipt.Format(order, nil, receipt.DefaultOptions())
	total := grandTotalLine(t, doc)

	assert.True(t, strings.HasSuffix(total, "₹0.00"))
	assert.NotContains(t, total, "-")
	assert.Contains(t, doc.Text(), "Discount (BIG)")
}

func TestFormat_TaxRows(t *testing.T) {
	tests := []struct {
		name    string
		order   receipt.Order
		present []string
		absent  []string
	}{
		{
			name:    "split components",
			order:   receipt.Order{Subtotal: 200, CGSTAmount: 5, SGSTAmount: 5},
			present: []string{"CGST @ 2.5%", "SGST @ 2.5%"},
			absent:  []string{"GST @ 5%"},
		},
		{
			name:    "zero SGST is suppressed",
			order:   receipt.Order{Subtotal: 200, CGSTAmount: 5},
			present: []string{"CGST @ 2.5%"},
			absent:  []string{"SGST"},
		},
		{
			name:    "combined GST",
			order:   receipt.Order{Subtotal: 200, GSTAmount: 10},
			present: []string{"GST @ 5%"},
			absent:  []string{"CGST", "SGST"},
		},
		{
			name:    "amounts that disagree with configured rates",
			order:   receipt.Order{Subtotal: 100, CGSTAmount: 9, SGSTAmount: 9},
			present: []string{"CGST @ 9%", "SGST @ 9%"},
			absent:  []string{"@ 2.5%"},
		},
		{
			name:    "one component matches, one does not",
			order:   receipt.Order{Subtotal: 400, CGSTAmount: 10, SGSTAmount: 24},
			present: []string{"CGST @ 2.5%", "SGST @ 6%"},
		},
		{
			name:   "no tax",
			order:  receipt.Order{Subtotal: 200},
			absent: []string{"GST"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := receipt.Format(&tt.order, nil, receipt.DefaultOptions()).Text()
			for _, s := range tt.present {
				assert.Contains(t, text, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, text, s)
			}
		})
	}
}

func TestFormat_TaxRateDerivedWithoutConfiguredRates(t *testing.T) {
	order := &receipt.Order{Subtotal: 200, CGSTAmount: 9, SGSTAmount: 9}
	opts := receipt.DefaultOptions()
	opts.Taxes = receipt.TaxRates{}

	text := receipt.Format(order, nil, opts).Text()

	assert.Contains(t, text, "CGST @ 4.5%")
	assert.Contains(t, text, "SGST @ 4.5%")
}

func TestFormat_Discounts(t *testing.T) {
	t.Run("per dish coupons print one line each", func(t *testing.T) {
		order := &receipt.Order{
			Subtotal: 500,
			DishCoupons: []receipt.DishCoupon{
				{Code: "PANEER20", DishName: "Paneer Tikka", Discount: 20},
				{Code: "NAAN5", DishName: "Butter Naan", Discount: 5},
			},
		}
		doc := receipt.Format(order, nil, receipt.DefaultOptions())
		text := doc.Text()

		assert.Contains(t, text, "  PANEER20 - Paneer Tikka")
		assert.Contains(t, text, "-₹20.00")
		assert.Contains(t, text, "  NAAN5 - Butter Naan")
		assert.True(t, strings.HasSuffix(grandTotalLine(t, doc), "₹475.00"))
	})

	t.Run("order and dish coupons combine", func(t *testing.T) {
		order := &receipt.Order{
			Subtotal:      500,
			AppliedCoupon: &receipt.Coupon{Code: "WELCOME", Discount: 50},
			DishCoupons:   []receipt.DishCoupon{{Code: "NAAN5", DishName: "Butter Naan", Discount: 5}},
			Discount:      999,
		}
		assert.InDelta(t, 55, order.DiscountTotal(), 0.001)
		assert.InDelta(t, 445, order.GrandTotal(receipt.TaxRates{}), 0.001)
	})

	t.Run("legacy flat discount", func(t *testing.T) {
		order := &receipt.Order{Subtotal: 300, Discount: 30}
		discounts := order.AppliedDiscounts()

		require.Len(t, discounts, 1)
		assert.Equal(t, receipt.DiscountWholeOrder, discounts[0].Kind)
		assert.Equal(t, "Discount", discounts[0].Lines[0].Label)
	})
}

func TestFormat_OrderInfoAndFooter(t *testing.T) {
	order := &receipt.Order{
		OrderNumber:   "A-102",
		TableNames:    []string{"T1", "T2"},
		PaymentMethod: "upi",
		CreatedAt:     time.Date(2024, 3, 9, 19, 45, 0, 0, time.UTC),
	}

	doc := receipt.Format(order, nil, receipt.DefaultOptions())
	text := doc.Text()

	assert.Contains(t, text, "Order #: A-102")
	assert.Contains(t, text, "Date: 09/03/2024 19:45")
	assert.Contains(t, text, "Table: T1, T2")
	assert.Contains(t, text, "Paid via: UPI")

	footer := linesOfKind(doc, receipt.LineFooter)
	require.Len(t, footer, 1)
	assert.Equal(t, receipt.AlignCenter, footer[0].Align)
}

func TestFormat_NilOrderUsesDefaults(t *testing.T) {
	doc := receipt.Format(nil, nil, receipt.Options{})

	assert.Equal(t, receipt.DefaultWidth, doc.Width)
	assert.Equal(t, receipt.DefaultBusinessName, linesOfKind(doc, receipt.LineHeader)[0].Text)
	assert.True(t, strings.HasSuffix(grandTotalLine(t, doc), "0.00"))
}

func TestFormat_LongItemNameIsTruncated(t *testing.T) {
	order := &receipt.Order{
		Items: []receipt.Item{{
			Name:          strings.Repeat("Hyderabadi Dum Biryani ", 5),
			PortionSize:   "Full",
			Price:         349,
			Quantity:      1,
			Modifications: []string{"extra raita"},
		}},
		Subtotal: 349,
	}

	doc := receipt.Format(order, nil, receipt.DefaultOptions())

	items := linesOfKind(doc, receipt.LineItem)
	require.Len(t, items, 1)
	assert.Equal(t, receipt.DefaultWidth, utf8.RuneCountInString(items[0].Text))
	assert.True(t, strings.HasSuffix(items[0].Text, "349.00"))

	notes := linesOfKind(doc, receipt.LineItemNote)
	require.Len(t, notes, 1)
	assert.Equal(t, "  + extra raita", notes[0].Text)
}

func TestFormat_WideAmountsStayWithinWidth(t *testing.T) {
	order := &receipt.Order{
		Items: []receipt.Item{
			{Name: "Catering Platter", Price: 1234567890, Quantity: 12},
			{Name: "Masala Chai", Price: 20, Quantity: 2},
		},
		Subtotal: 14814814720,
	}

	for _, width := range []int{receipt.DefaultWidth, 42, 32} {
		t.Run(fmt.Sprintf("width %d", width), func(t *testing.T) {
			opts := receipt.DefaultOptions()
			opts.Width = width
			doc := receipt.Format(order, nil, opts)

			items := linesOfKind(doc, receipt.LineItem)
			require.Len(t, items, 2)
			for _, l := range append(linesOfKind(doc, receipt.LineItemHeader), items...) {
				assert.LessOrEqual(t, utf8.RuneCountInString(l.Text), width, l.Text)
			}
			assert.True(t, strings.HasSuffix(items[0].Text, " 1234567890.00 14814814680.00"), items[0].Text)
			assert.True(t, strings.HasSuffix(items[1].Text, "40.00"))
		})
	}
}

func TestFormat_DividersSpanWidth(t *testing.T) {
	doc := receipt.Format(&receipt.Order{}, nil, receipt.Options{Width: 32})
	for _, l := range linesOfKind(doc, receipt.LineDivider) {
		assert.Equal(t, strings.Repeat("-", 32), l.Text)
	}
}

func TestCenter(t *testing.T) {
	assert.Equal(t, "   abc", receipt.Center("abc", 10))
	assert.Equal(t, "  abcd", receipt.Center("abcd", 9))
	assert.Equal(t, "exactly", receipt.Center("exactly", 7))
	assert.Equal(t, "too wide for it", receipt.Center("too wide for it", 5))
}

func TestFromText(t *testing.T) {
	doc := receipt.FromText("line one\r\nline two\n\n", 58)

	require.Len(t, doc.Lines, 2)
	assert.Equal(t, receipt.LineText, doc.Lines[0].Kind)
	assert.Equal(t, "line one\nline two\n", doc.Text())
	assert.Empty(t, receipt.FromText("", 58).Lines)
}

func TestDocumentText_Alignment(t *testing.T) {
	doc := &receipt.Document{Width: 10, Lines: []receipt.Line{
		{Text: "ab", Align: receipt.AlignCenter},
		{Text: "ab", Align: receipt.AlignRight},
		{Text: "ab"},
	}}
	assert.Equal(t, "    ab\n        ab\nab\n", doc.Text())
}

func ExampleFormat() {
	order := &receipt.Order{
		Items:    []receipt.Item{{Name: "Tea", Price: 80, Quantity: 2}},
		Subtotal: 160,
	}
	doc := receipt.Format(order, &receipt.BusinessProfile{Name: "Chai Point"}, receipt.Options{Width: 40, Currency: "Rs."})
	for _, l := range doc.Lines {
		if l.Kind == receipt.LineGrandTotal {
			fmt.Println(l.Text)
		}
	}
	// Output: Grand Total                    Rs.160.00
}
