package diagram

import (
	"fmt"
	"image/color"
	"math"

	"github.com/chazu/molsketch/pkg/props"
	"github.com/deadsy/sdfx/sdf"
)

// Bond defaults.
const (
	DefaultBondOrder = 1
	DefaultBondWidth = 1.5
)

// minBondHitTolerance keeps thin bonds selectable.
const minBondHitTolerance = 4.0

// BondSpec holds every stored field of a Bond. Endpoints are stored
// directly; a bond does not follow the atoms it was drawn between.
type BondSpec struct {
	X1, Y1 float64
	X2, Y2 float64
	Order  int
	Width  float64
	Colour color.RGBA
}

// DefaultBondSpec returns a single black bond of zero length at the origin.
func DefaultBondSpec() BondSpec {
	return BondSpec{Order: DefaultBondOrder, Width: DefaultBondWidth, Colour: DefaultColour}
}

var bondSchema = props.NewSchema(
	props.Float("X1", func(s *BondSpec) *float64 { return &s.X1 }),
	props.Float("Y1", func(s *BondSpec) *float64 { return &s.Y1 }),
	props.Float("X2", func(s *BondSpec) *float64 { return &s.X2 }),
	props.Float("Y2", func(s *BondSpec) *float64 { return &s.Y2 }),
	props.Int("Order", func(s *BondSpec) *int { return &s.Order }),
	props.Float("Width", func(s *BondSpec) *float64 { return &s.Width }),
	props.Color("Colour", func(s *BondSpec) *color.RGBA { return &s.Colour }),
).Decompose(props.ColorChannels("Colour"))

// Bond is a straight single, double or triple bond line.
type Bond struct {
	id   ID
	spec BondSpec
}

var _ Object = (*Bond)(nil)

// NewBond creates a bond with explicit field values.
func NewBond(id ID, spec BondSpec) *Bond {
	return &Bond{id: id, spec: spec}
}

// DefaultBond creates a bond with DefaultBondSpec.
func DefaultBond(id ID) *Bond {
	return NewBond(id, DefaultBondSpec())
}

func (b *Bond) ID() ID     { return b.id }
func (b *Bond) Kind() Kind { return KindBond }

// Spec returns a copy of the stored fields.
func (b *Bond) Spec() BondSpec { return b.spec }

func (b *Bond) ends() (Point, Point) {
	return Point{X: b.spec.X1, Y: b.spec.Y1}, Point{X: b.spec.X2, Y: b.spec.Y2}
}

// Strokes returns the line segments drawn for the bond: one per order,
// offset perpendicular to the bond axis by three line widths.
func (b *Bond) Strokes() [][2]Point {
	p, q := b.ends()
	n := b.spec.Order
	if n < 1 {
		n = 1
	}
	dir := q.Sub(p)
	l := dir.Length()
	if l == 0 || n == 1 {
		return [][2]Point{{p, q}}
	}
	normal := Point{X: -dir.Y / l, Y: dir.X / l}
	gap := 3 * b.spec.Width
	out := make([][2]Point, n)
	for i := 0; i < n; i++ {
		off := normal.MulScalar(gap * (float64(i) - float64(n-1)/2))
		out[i] = [2]Point{p.Add(off), q.Add(off)}
	}
	return out
}

func (b *Bond) Draw(s Surface) error {
	brush, err := s.Brush(b.spec.Colour)
	if err != nil {
		return fmt.Errorf("bond %d: brush: %w", b.id, err)
	}
	defer brush.Close()

	for _, seg := range b.Strokes() {
		s.Line(brush, seg[0], seg[1], b.spec.Width)
	}
	return nil
}

// IsHit measures the distance from pt to the bond axis segment.
func (b *Bond) IsHit(pt Point) bool {
	p, q := b.ends()
	tol := math.Max(2*b.spec.Width, minBondHitTolerance)
	return segmentDistance(pt, p, q) < tol
}

func segmentDistance(pt, p, q Point) float64 {
	d := q.Sub(p)
	l2 := d.Dot(d)
	if l2 == 0 {
		return pt.Sub(p).Length()
	}
	t := math.Max(0, math.Min(1, pt.Sub(p).Dot(d)/l2))
	return pt.Sub(p.Add(d.MulScalar(t))).Length()
}

func (b *Bond) Bounds() sdf.Box2 {
	var pts []Point
	for _, seg := range b.Strokes() {
		pts = append(pts, seg[0], seg[1])
	}
	return box(pts...)
}

func (b *Bond) InternalState() (*props.Bag, error)   { return bondSchema.Internal(&b.spec) }
func (b *Bond) EditableState() (*props.Bag, error)   { return bondSchema.Editable(&b.spec) }
func (b *Bond) ApplyEdits(e *props.Bag) props.Report { return bondSchema.Apply(&b.spec, e) }
func (b *Bond) Schema() props.Descriptor             { return bondSchema }
