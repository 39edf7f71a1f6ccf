package diagram

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/chazu/molsketch/pkg/props"
	"github.com/deadsy/sdfx/sdf"
)

// Atom defaults.
const (
	DefaultSymbol     = "C"
	DefaultFontFamily = "Arial"
	DefaultFontSize   = 16.0
)

// DefaultColour is opaque black.
var DefaultColour = color.RGBA{A: 255}

// Geometry derived from the font size. The font size is the base scale
// for every offset; a non-positive size yields degenerate geometry.
const (
	glyphOffsetDivisor   = 2.25
	electronRadiusFactor = 0.9
	dotRadiusDivisor     = 10.5
	electronSpread       = math.Pi / 8 // 22.5 degrees either side
)

// AtomSpec holds every stored field of an Atom.
type AtomSpec struct {
	X, Y          float64
	Symbol        string
	FontFamily    string
	FontSize      float64
	Colour        color.RGBA
	Charge        int
	LoneElectrons int
	ElectronAngle float64 // degrees, not range checked
}

// DefaultAtomSpec returns a carbon at the origin in 16pt black Arial.
func DefaultAtomSpec() AtomSpec {
	return AtomSpec{
		Symbol:     DefaultSymbol,
		FontFamily: DefaultFontFamily,
		FontSize:   DefaultFontSize,
		Colour:     DefaultColour,
	}
}

var atomSchema = props.NewSchema(
	props.Float("X", func(s *AtomSpec) *float64 { return &s.X }),
	props.Float("Y", func(s *AtomSpec) *float64 { return &s.Y }),
	props.String("Symbol", func(s *AtomSpec) *string { return &s.Symbol }),
	props.String("FontFamily", func(s *AtomSpec) *string { return &s.FontFamily }),
	props.Float("FontSize", func(s *AtomSpec) *float64 { return &s.FontSize }),
	props.Color("Colour", func(s *AtomSpec) *color.RGBA { return &s.Colour }),
	props.Int("Charge", func(s *AtomSpec) *int { return &s.Charge }),
	props.Int("LoneElectrons", func(s *AtomSpec) *int { return &s.LoneElectrons }),
	props.Float("ElectronAngle", func(s *AtomSpec) *float64 { return &s.ElectronAngle }),
).Decompose(props.ColorChannels("Colour"))

// Atom is an element symbol with optional charge glyph and lone-electron
// dots. Its fields change only through ApplyEdits.
type Atom struct {
	id   ID
	spec AtomSpec
}

var _ Object = (*Atom)(nil)

// NewAtom creates an atom with explicit field values.
func NewAtom(id ID, spec AtomSpec) *Atom {
	return &Atom{id: id, spec: spec}
}

// DefaultAtom creates an atom with DefaultAtomSpec.
func DefaultAtom(id ID) *Atom {
	return NewAtom(id, DefaultAtomSpec())
}

func (a *Atom) ID() ID     { return a.id }
func (a *Atom) Kind() Kind { return KindAtom }

// Spec returns a copy of the stored fields.
func (a *Atom) Spec() AtomSpec { return a.spec }

// Center is the atom position.
func (a *Atom) Center() Point { return Point{X: a.spec.X, Y: a.spec.Y} }

// DotRadius is the radius of one lone-electron dot.
func (a *Atom) DotRadius() float64 { return a.spec.FontSize / dotRadiusDivisor }

// ChargeGlyph renders a formal charge: "" for zero, the bare sign for
// magnitude one, otherwise the magnitude followed by the sign.
func ChargeGlyph(charge int) string {
	switch {
	case charge == 0:
		return ""
	case charge == 1:
		return "+"
	case charge == -1:
		return "-"
	}
	sign := "+"
	if charge < 0 {
		sign = "-"
	}
	return strings.TrimPrefix(strconv.Itoa(charge), "-") + sign
}

// ElectronDots returns the centres of the lone-electron dots: none for a
// count of zero, one at the electron angle for a count of one, and two
// spread 22.5 degrees either side of it for any larger count.
func (a *Atom) ElectronDots() []Point {
	n := a.spec.LoneElectrons
	if n <= 0 {
		return nil
	}
	base := a.spec.ElectronAngle * math.Pi / 180
	angles := []float64{base}
	if n >= 2 {
		angles = []float64{base - electronSpread, base + electronSpread}
	}
	r := a.spec.FontSize * electronRadiusFactor
	c := a.Center()
	dots := make([]Point, len(angles))
	for i, t := range angles {
		dots[i] = c.Add(Point{X: math.Cos(t), Y: math.Sin(t)}.MulScalar(r))
	}
	return dots
}

// Draw paints the charge glyph, the element symbol, then any dots.
func (a *Atom) Draw(s Surface) error {
	sp := a.spec

	brush, err := s.Brush(sp.Colour)
	if err != nil {
		return fmt.Errorf("atom %d: brush: %w", a.id, err)
	}
	defer brush.Close()

	if glyph := ChargeGlyph(sp.Charge); glyph != "" {
		small, err := s.Font(sp.FontFamily, sp.FontSize/2)
		if err != nil {
			return fmt.Errorf("atom %d: charge font: %w", a.id, err)
		}
		defer small.Close()
		s.Text(small, brush, Point{X: sp.X + sp.FontSize/glyphOffsetDivisor, Y: sp.Y}, AlignLeft, glyph)
	}

	font, err := s.Font(sp.FontFamily, sp.FontSize)
	if err != nil {
		return fmt.Errorf("atom %d: font: %w", a.id, err)
	}
	defer font.Close()
	s.Text(font, brush, Point{X: sp.X, Y: sp.Y + sp.FontSize/glyphOffsetDivisor}, AlignCenter, sp.Symbol)

	r := a.DotRadius()
	for _, p := range a.ElectronDots() {
		s.FillCircle(brush, p, r)
	}
	return nil
}

// IsHit is true strictly inside a circle of radius FontSize/2 around the
// atom centre.
func (a *Atom) IsHit(p Point) bool {
	return p.Sub(a.Center()).Length() < a.spec.FontSize/2
}

// Bounds covers the symbol and the outermost dot position.
func (a *Atom) Bounds() sdf.Box2 {
	fs := math.Abs(a.spec.FontSize)
	r := fs*electronRadiusFactor + fs/dotRadiusDivisor
	c := a.Center()
	d := Point{X: r, Y: r}
	return box(c.Sub(d), c.Add(d))
}

func (a *Atom) InternalState() (*props.Bag, error)   { return atomSchema.Internal(&a.spec) }
func (a *Atom) EditableState() (*props.Bag, error)   { return atomSchema.Editable(&a.spec) }
func (a *Atom) ApplyEdits(b *props.Bag) props.Report { return atomSchema.Apply(&a.spec, b) }
func (a *Atom) Schema() props.Descriptor             { return atomSchema }
