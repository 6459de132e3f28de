package receipt

// Structural allowances in millimetres.
const (
	headerAllowanceMM      = 12
	orderInfoAllowanceMM   = 6
	itemsHeaderAllowanceMM = 5
	totalsAllowanceMM      = 10
	footerAllowanceMM      = 8
	perItemAllowanceMM     = 6
	addressAllowanceMM     = 4
	contactAllowanceMM     = 4
	taxAllowanceMM         = 4
)

// EstimateHeight returns the paper length needed for the order, clamped to
// [MinHeightMM, MaxHeightMM].
func EstimateHeight(order *Order, profile *BusinessProfile) int {
	h := headerAllowanceMM + orderInfoAllowanceMM + itemsHeaderAllowanceMM + totalsAllowanceMM + footerAllowanceMM
	if order != nil {
		h += perItemAllowanceMM * len(order.Items)
		if order.CGSTAmount > 0 || order.SGSTAmount > 0 || order.GSTAmount > 0 {
			h += taxAllowanceMM
		}
	}
	if profile != nil {
		if profile.Address != "" {
			h += addressAllowanceMM
		}
		if profile.Phone != "" {
			h += contactAllowanceMM
		}
	}
	return ClampHeight(h)
}

// PaperFor picks the page for a print request. Fixed-length printers and
// requests without dynamic height get FixedHeightMM.
func PaperFor(order *Order, profile *BusinessProfile, dynamic, fixedLength bool) PaperSize {
	paper := DefaultPaper()
	if dynamic && !fixedLength && order != nil {
		paper.HeightMM = EstimateHeight(order, profile)
	}
	return paper
}

// ClampHeight bounds a page length to [MinHeightMM, MaxHeightMM].
func ClampHeight(h int) int {
	if h < MinHeightMM {
		return MinHeightMM
	}
	if h > MaxHeightMM {
		return MaxHeightMM
	}
	return h
}
