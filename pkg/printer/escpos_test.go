package printer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sangkips/receipt-print-api/pkg/receipt"
)

func TestEncode_ExactBytes(t *testing.T) {
	doc := &receipt.Document{Lines: []receipt.Line{
		{Text: "Hi", Align: receipt.AlignCenter, Bold: true, Size: receipt.SizeDouble},
		{Text: "ok"},
	}}

	got := Encode(doc, EncoderProfile{FeedLines: 3, AutoCut: true})

	want := []byte{
		0x1B, 0x40,
		0x1B, 0x61, 0x01, 0x1B, 0x45, 0x01, 0x1D, 0x21, 0x11, 'H', 'i', 0x0A,
		0x1B, 0x61, 0x00, 0x1B, 0x45, 0x00, 0x1D, 0x21, 0x00, 'o', 'k', 0x0A,
		0x1B, 0x64, 0x03,
		0x1D, 0x56, 0x00,
	}
	assert.Equal(t, want, got)
}

func TestEncode_StartsWithInitialize(t *testing.T) {
	assert.Equal(t, []byte{0x1B, 0x40}, Encode(nil, EncoderProfile{})[:2])
	assert.Equal(t, []byte{0x1B, 0x40}, Encode(nil, EncoderProfile{}))
}

func TestEncode_NoCut(t *testing.T) {
	got := Encode(&receipt.Document{}, EncoderProfile{FeedLines: 2, AutoCut: false})

	assert.Equal(t, []byte{0x1B, 0x40, 0x1B, 0x64, 0x02}, got)
	assert.False(t, bytes.Contains(got, []byte{0x1D, 0x56}))
}

func TestEncode_SizeCodes(t *testing.T) {
	tests := []struct {
		size receipt.Size
		code byte
	}{
		{receipt.SizeNormal, 0x00},
		{receipt.SizeDoubleHeight, 0x01},
		{receipt.SizeDoubleWidth, 0x10},
		{receipt.SizeDouble, 0x11},
	}
	for _, tt := range tests {
		doc := &receipt.Document{Lines: []receipt.Line{{Text: "x", Size: tt.size}}}
		assert.True(t, bytes.Contains(Encode(doc, EncoderProfile{}), []byte{0x1D, 0x21, tt.code}))
	}
}

func TestFilterASCII(t *testing.T) {
	assert.Equal(t, []byte("caf"), FilterASCII("café"))
	assert.Equal(t, []byte("Total: 100.00"), FilterASCII("Total: ₹100.00"))
	assert.Equal(t, []byte("ab"), FilterASCII("a\tb\x7f"))
	assert.Empty(t, FilterASCII("ñ"))
}

func TestEncode_DropsOnlyNonASCII(t *testing.T) {
	doc := &receipt.Document{Lines: []receipt.Line{{Text: "café au lait"}}}

	got := Encode(doc, EncoderProfile{})

	assert.True(t, bytes.Contains(got, []byte("caf au lait\n")))
}

func TestBuilder_FeedBounds(t *testing.T) {
	assert.Equal(t, []byte{0x1B, 0x40}, NewBuilder().Feed(0).Bytes())
	assert.Equal(t, []byte{0x1B, 0x40, 0x1B, 0x64, 0xFF}, NewBuilder().Feed(1000).Bytes())
}
