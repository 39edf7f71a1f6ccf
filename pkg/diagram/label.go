package diagram

import (
	"fmt"
	"image/color"
	"math"
	"unicode/utf8"

	"github.com/chazu/molsketch/pkg/props"
	"github.com/deadsy/sdfx/sdf"
)

// labelAdvance approximates glyph advance as a fraction of font size.
const labelAdvance = 0.6

// LabelSpec holds every stored field of a Label.
type LabelSpec struct {
	X, Y       float64
	Text       string
	FontFamily string
	FontSize   float64
	Colour     color.RGBA
}

func DefaultLabelSpec() LabelSpec {
	return LabelSpec{FontFamily: DefaultFontFamily, FontSize: DefaultFontSize, Colour: DefaultColour}
}

var labelSchema = props.NewSchema(
	props.Float("X", func(s *LabelSpec) *float64 { return &s.X }),
	props.Float("Y", func(s *LabelSpec) *float64 { return &s.Y }),
	props.String("Text", func(s *LabelSpec) *string { return &s.Text }),
	props.String("FontFamily", func(s *LabelSpec) *string { return &s.FontFamily }),
	props.Float("FontSize", func(s *LabelSpec) *float64 { return &s.FontSize }),
	props.Color("Colour", func(s *LabelSpec) *color.RGBA { return &s.Colour }),
).Decompose(props.ColorChannels("Colour"))

// Label is free text anchored at its left baseline.
type Label struct {
	id   ID
	spec LabelSpec
}

var _ Object = (*Label)(nil)

func NewLabel(id ID, spec LabelSpec) *Label {
	return &Label{id: id, spec: spec}
}

func DefaultLabel(id ID) *Label {
	return NewLabel(id, DefaultLabelSpec())
}

func (l *Label) ID() ID          { return l.id }
func (l *Label) Kind() Kind      { return KindLabel }
func (l *Label) Spec() LabelSpec { return l.spec }

func (l *Label) Draw(s Surface) error {
	brush, err := s.Brush(l.spec.Colour)
	if err != nil {
		return fmt.Errorf("label %d: brush: %w", l.id, err)
	}
	defer brush.Close()

	font, err := s.Font(l.spec.FontFamily, l.spec.FontSize)
	if err != nil {
		return fmt.Errorf("label %d: font: %w", l.id, err)
	}
	defer font.Close()

	s.Text(font, brush, Point{X: l.spec.X, Y: l.spec.Y}, AlignLeft, l.spec.Text)
	return nil
}

func (l *Label) Bounds() sdf.Box2 {
	fs := math.Abs(l.spec.FontSize)
	w := labelAdvance * fs * float64(utf8.RuneCountInString(l.spec.Text))
	return box(Point{X: l.spec.X, Y: l.spec.Y - fs}, Point{X: l.spec.X + w, Y: l.spec.Y})
}

// IsHit tests the estimated text box, edges excluded.
func (l *Label) IsHit(p Point) bool {
	b := l.Bounds()
	return p.X > b.Min.X && p.X < b.Max.X && p.Y > b.Min.Y && p.Y < b.Max.Y
}

func (l *Label) InternalState() (*props.Bag, error)   { return labelSchema.Internal(&l.spec) }
func (l *Label) EditableState() (*props.Bag, error)   { return labelSchema.Editable(&l.spec) }
func (l *Label) ApplyEdits(b *props.Bag) props.Report { return labelSchema.Apply(&l.spec, b) }
func (l *Label) Schema() props.Descriptor             { return labelSchema }
