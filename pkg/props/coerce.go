package props

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"cogentcore.org/core/colors"
)

// Coerce returns a copy of in with loosely typed values normalised to the
// kinds d expects: JSON numbers, interpreter int64s, colour strings. Keys
// d does not know, and values that cannot be normalised, are copied as is
// so that Apply still reports them.
func Coerce(d Descriptor, in *Bag) *Bag {
	out := in.Clone()
	for k, v := range in.All() {
		info, ok := d.Lookup(k)
		if !ok {
			continue
		}
		if cv, ok := coerce(info.Kind, v); ok {
			out.Set(k, cv)
		}
	}
	return out
}

func coerce(kind Kind, v any) (any, bool) {
	switch kind {
	case KindFloat:
		if f, ok := asFloat(v); ok {
			return f, true
		}
	case KindInt:
		if f, ok := asFloat(v); ok && f == math.Trunc(f) && f >= minInt && f < -minInt {
			return int(f), true
		}
	case KindByte:
		if f, ok := asFloat(v); ok && f == math.Trunc(f) && f >= 0 && f <= math.MaxUint8 {
			return uint8(f), true
		}
	case KindString:
		if s, ok := v.(string); ok {
			return s, true
		}
	case KindColor:
		switch c := v.(type) {
		case string:
			if rgba, ok := ParseColor(c); ok {
				return rgba, true
			}
		case color.RGBA:
			return c, true
		case color.Color:
			return straight(c), true
		}
	}
	return nil, false
}

// minInt is the smallest int as a float64. Its negation is one past the
// largest int and is exactly representable.
const minInt = float64(math.MinInt)

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	}
	return 0, false
}

// ParseColor accepts "#RGB", "#RRGGBB", "#RRGGBBAA" or a CSS colour name.
func ParseColor(s string) (color.RGBA, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		c, err := colors.FromName(strings.ToLower(s))
		if err != nil {
			return color.RGBA{}, false
		}
		return straight(c), true
	}

	digits := s[1:]
	if strings.Trim(digits, "0123456789abcdefABCDEF") != "" {
		return color.RGBA{}, false
	}
	alpha := uint64(255)
	if len(digits) == 8 {
		// colors.FromHex premultiplies to 8 bits. Only opaque channels
		// go through it.
		alpha, _ = strconv.ParseUint(digits[6:], 16, 8)
		digits = digits[:6]
	}
	if len(digits) != 3 && len(digits) != 6 {
		return color.RGBA{}, false
	}
	c, err := colors.FromHex(digits)
	if err != nil {
		return color.RGBA{}, false
	}
	c.A = uint8(alpha)
	return c, true
}

// FormatColor renders c as "#RRGGBBAA", alpha included even when opaque.
func FormatColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// straight converts a premultiplied colour, as the colors package and
// color.Color produce, to the straight channels molsketch keeps in
// color.RGBA.
func straight(c color.Color) color.RGBA {
	return color.RGBA(color.NRGBAModel.Convert(c).(color.NRGBA))
}
