package diagram

import (
	"image/color"
	"io"
)

// Align is the horizontal anchoring of drawn text relative to its position.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "unknown"
	}
}

// Font is a typeface handle acquired from a Surface for one draw call.
type Font interface {
	io.Closer
}

// Brush is a paint handle acquired from a Surface for one draw call.
type Brush interface {
	io.Closer
}

// Surface is the drawing target objects paint onto. It uses the same
// coordinate space as object positions. Handles it hands out must not
// outlive the draw call that acquired them.
type Surface interface {
	Font(family string, size float64) (Font, error)
	Brush(c color.RGBA) (Brush, error)

	// Text draws s with its baseline at `at`, anchored per align.
	Text(f Font, b Brush, at Point, align Align, s string)
	FillCircle(b Brush, center Point, radius float64)
	Line(b Brush, from, to Point, width float64)
}
