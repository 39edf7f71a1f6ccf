package props

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBagKeepsInsertionOrder(t *testing.T) {
	b := NewBag()
	b.Set("Y", 1.0)
	b.Set("X", 2.0)
	b.Set("Y", 3.0)

	assert.Equal(t, []string{"Y", "X"}, b.Keys())
	v, ok := b.Get("Y")
	require.True(t, ok)
	assert.Equal(t, 3.0, v)
}

func TestBagDeleteAndHas(t *testing.T) {
	b := BagOf("a", 1, "b", 2, "c", 3)
	assert.True(t, b.Has("a", "c"))
	assert.True(t, b.Delete("b"))
	assert.False(t, b.Delete("b"))
	assert.False(t, b.Has("a", "b"))
	assert.Equal(t, []string{"a", "c"}, b.Keys())

	v, ok := b.Get("c")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestBagCloneIsIndependent(t *testing.T) {
	b := BagOf("a", 1)
	c := b.Clone()
	c.Set("b", 2)
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, 2, c.Len())
}

func TestBagAllStopsEarly(t *testing.T) {
	b := BagOf("a", 1, "b", 2, "c", 3)
	var seen []string
	for k := range b.All() {
		seen = append(seen, k)
		if k == "b" {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestBagOfRejectsOddArgs(t *testing.T) {
	assert.Panics(t, func() { BagOf("a") })
	assert.Panics(t, func() { BagOf(1, 2) })
}

func TestNilBagLen(t *testing.T) {
	var b *Bag
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, b.Clone().Len())
}

func TestCoerce(t *testing.T) {
	in := BagOf(
		"Count", 4.0,
		"Size", 3,
		"Name", "x",
		"Colour", "#FF000080",
		"ColourG", float64(12),
		"Other", int64(1),
	)
	out := Coerce(swatchSchema, in)

	get := func(k string) any {
		v, _ := out.Get(k)
		return v
	}
	assert.Equal(t, 4, get("Count"))
	assert.Equal(t, 3.0, get("Size"))
	assert.Equal(t, "x", get("Name"))
	assert.Equal(t, color.RGBA{R: 255, A: 128}, get("Colour"))
	assert.Equal(t, uint8(12), get("ColourG"))
	assert.Equal(t, int64(1), get("Other"), "unknown keys pass through")

	v, _ := in.Get("Count")
	assert.Equal(t, 4.0, v, "input untouched")
}

func TestCoerceLeavesUnconvertible(t *testing.T) {
	out := Coerce(swatchSchema, BagOf("Count", 1.5, "ColourR", 256.0, "Colour", "not-a-colour"))
	for _, k := range []string{"Count", "ColourR", "Colour"} {
		in, _ := BagOf("Count", 1.5, "ColourR", 256.0, "Colour", "not-a-colour").Get(k)
		got, _ := out.Get(k)
		assert.Equal(t, in, got, k)
	}
}

func TestParseColor(t *testing.T) {
	c, ok := ParseColor("black")
	require.True(t, ok)
	assert.Equal(t, color.RGBA{A: 255}, c)

	c, ok = ParseColor("#0a0b0c")
	require.True(t, ok)
	assert.Equal(t, color.RGBA{R: 10, G: 11, B: 12, A: 255}, c)

	assert.Equal(t, "#0A0B0CFF", FormatColor(c))

	_, ok = ParseColor("#12345")
	assert.False(t, ok)
}

func TestColorChannelsStayStraight(t *testing.T) {
	c, ok := ParseColor("#FF000080")
	require.True(t, ok)
	assert.Equal(t, color.RGBA{R: 255, A: 128}, c)

	translucent := color.RGBA{R: 200, G: 100, B: 50, A: 128}
	assert.Equal(t, "#C8643280", FormatColor(translucent))
	back, ok := ParseColor(FormatColor(translucent))
	require.True(t, ok)
	assert.Equal(t, translucent, back)

	c, ok = ParseColor("#fa0")
	require.True(t, ok)
	assert.Equal(t, color.RGBA{R: 255, G: 170, A: 255}, c)
	_, ok = ParseColor("#zzzzzz")
	assert.False(t, ok)

	v, ok := coerce(KindColor, translucent)
	require.True(t, ok)
	assert.Equal(t, translucent, v, "color.RGBA is already straight")

	v, ok = coerce(KindColor, color.NRGBA{R: 200, G: 100, B: 50, A: 128})
	require.True(t, ok)
	assert.Equal(t, translucent, v)
}

func TestCoerceIntRange(t *testing.T) {
	v, ok := coerce(KindInt, 3e9)
	require.True(t, ok)
	assert.Equal(t, 3000000000, v)

	v, ok = coerce(KindInt, int64(-5e12))
	require.True(t, ok)
	assert.Equal(t, -5000000000000, v)

	_, ok = coerce(KindInt, 1e19)
	assert.False(t, ok)
	_, ok = coerce(KindInt, 2.5)
	assert.False(t, ok)
}
