package printer

import (
	"bytes"

	"github.com/sangkips/receipt-print-api/pkg/receipt"
)

// ESC/POS command constants
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Text alignment
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Font size
const (
	FontNormal = 0x00
	FontDouble = 0x11 // Double width + double height
	FontWide   = 0x10 // Double width only
	FontTall   = 0x01 // Double height only
)

// Builder accumulates an ESC/POS byte stream.
type Builder struct {
	buf bytes.Buffer
}

// NewBuilder creates a builder that has already emitted the initialize command.
func NewBuilder() *Builder {
	b := &Builder{}
	b.Init()
	return b
}

// Init sends the ESC @ (initialize printer) command.
func (b *Builder) Init() *Builder {
	b.buf.Write([]byte{ESC, '@'})
	return b
}

// SetAlign sets text alignment: AlignLeft, AlignCenter, AlignRight.
func (b *Builder) SetAlign(align byte) *Builder {
	b.buf.Write([]byte{ESC, 'a', align})
	return b
}

// SetBold enables or disables bold text.
func (b *Builder) SetBold(on bool) *Builder {
	v := byte(0)
	if on {
		v = 1
	}
	b.buf.Write([]byte{ESC, 'E', v})
	return b
}

// SetFontSize sets the character size. Use FontNormal, FontDouble, FontWide, or FontTall.
func (b *Builder) SetFontSize(size byte) *Builder {
	b.buf.Write([]byte{GS, '!', size})
	return b
}

// Text writes the printable ASCII part of s followed by a line feed.
func (b *Builder) Text(s string) *Builder {
	b.buf.Write(FilterASCII(s))
	b.buf.WriteByte(LF)
	return b
}

// Feed advances the paper n lines with ESC d n.
func (b *Builder) Feed(n int) *Builder {
	if n <= 0 {
		return b
	}
	if n > 255 {
		n = 255
	}
	b.buf.Write([]byte{ESC, 'd', byte(n)})
	return b
}

// Cut sends the paper cut command (full cut).
func (b *Builder) Cut() *Builder {
	b.buf.Write([]byte{GS, 'V', 0x00})
	return b
}

// Bytes returns the accumulated ESC/POS byte stream.
func (b *Builder) Bytes() []byte {
	return b.buf.Bytes()
}

// FilterASCII keeps only printable ASCII (0x20-0x7E). Everything else is
// dropped, so "café" becomes "caf".
func FilterASCII(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r >= 0x20 && r <= 0x7E {
			out = append(out, byte(r))
		}
	}
	return out
}

// EncoderProfile configures the tail of an encoded receipt.
type EncoderProfile struct {
	FeedLines int
	AutoCut   bool
}

// DefaultEncoderProfile feeds three lines and cuts.
func DefaultEncoderProfile() EncoderProfile {
	return EncoderProfile{FeedLines: 3, AutoCut: true}
}

// Encode turns a receipt document into ESC/POS bytes. Every line is preceded
// by its alignment, emphasis and size codes. Encoding cannot fail.
func Encode(doc *receipt.Document, profile EncoderProfile) []byte {
	b := NewBuilder()
	if doc != nil {
		for _, l := range doc.Lines {
			b.SetAlign(alignCode(l.Align)).
				SetBold(l.Bold).
				SetFontSize(sizeCode(l.Size)).
				Text(l.Text)
		}
	}
	b.Feed(profile.FeedLines)
	if profile.AutoCut {
		b.Cut()
	}
	return b.Bytes()
}

func alignCode(a receipt.Align) byte {
	switch a {
	case receipt.AlignCenter:
		return AlignCenter
	case receipt.AlignRight:
		return AlignRight
	default:
		return AlignLeft
	}
}

func sizeCode(s receipt.Size) byte {
	switch s {
	case receipt.SizeDoubleHeight:
		return FontTall
	case receipt.SizeDoubleWidth:
		return FontWide
	case receipt.SizeDouble:
		return FontDouble
	default:
		return FontNormal
	}
}
