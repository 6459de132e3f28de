package receipt

import (
	"strings"
	"unicode/utf8"
)

// Paper limits in millimetres.
const (
	PaperWidthMM  = 79.5
	MinHeightMM   = 50
	MaxHeightMM   = 300
	FixedHeightMM = 200
)

// LineKind tags what a receipt line is, assigned when the line is formatted.
type LineKind int

const (
	LineHeader LineKind = iota
	LineInfo
	LineItemHeader
	LineItem
	LineItemNote
	LineTotal
	LineGrandTotal
	LineDivider
	LineFooter
	LineText
)

func (k LineKind) String() string {
	names := [...]string{"header", "info", "item-header", "item", "item-note", "total", "grand-total", "divider", "footer", "text"}
	if int(k) < 0 || int(k) >= len(names) {
		return "text"
	}
	return names[k]
}

// Align is the horizontal alignment of a line.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// Size is the character size of a line.
type Size int

const (
	SizeNormal Size = iota
	SizeDoubleHeight
	SizeDoubleWidth
	SizeDouble
)

// Line is one classified receipt line.
type Line struct {
	Kind  LineKind `json:"kind"`
	Text  string   `json:"text"`
	Align Align    `json:"align"`
	Bold  bool     `json:"bold,omitempty"`
	Size  Size     `json:"size,omitempty"`
}

// PaperSize is the physical page in millimetres.
type PaperSize struct {
	WidthMM  float64 `json:"width_mm"`
	HeightMM int     `json:"height_mm"`
}

// DefaultPaper is the fixed-length fallback page.
func DefaultPaper() PaperSize {
	return PaperSize{WidthMM: PaperWidthMM, HeightMM: FixedHeightMM}
}

// Document is a formatted receipt. It is built per print request and never stored.
type Document struct {
	Width int       `json:"width"`
	Lines []Line    `json:"lines"`
	Paper PaperSize `json:"paper"`
}

// Text renders the document as fixed-width plain text, one line per row.
func (d *Document) Text() string {
	if d == nil {
		return ""
	}
	var b strings.Builder
	for _, l := range d.Lines {
		switch l.Align {
		case AlignCenter:
			b.WriteString(Center(l.Text, d.Width))
		case AlignRight:
			b.WriteString(padLeft(l.Text, d.Width))
		default:
			b.WriteString(l.Text)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Center prefixes text with floor((width-len)/2) spaces. Text at least as
// wide as the line is returned unchanged.
func Center(text string, width int) string {
	n := utf8.RuneCountInString(text)
	if n >= width {
		return text
	}
	return strings.Repeat(" ", (width-n)/2) + text
}

// FromText wraps pre-formatted content as plain text lines.
func FromText(content string, width int) *Document {
	doc := &Document{Width: width, Paper: DefaultPaper()}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return doc
	}
	for _, s := range strings.Split(content, "\n") {
		doc.Lines = append(doc.Lines, Line{Kind: LineText, Text: s})
	}
	return doc
}

func padLeft(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}

func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	return string([]rune(s)[:width])
}
