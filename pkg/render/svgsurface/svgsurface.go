// Package svgsurface implements diagram.Surface by writing SVG elements
// with github.com/ajstarks/svgo.
package svgsurface

import (
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"
	"unicode"

	svg "github.com/ajstarks/svgo/float"
	"github.com/chazu/molsketch/pkg/diagram"
)

// Compile-time interface check.
var _ diagram.Surface = (*Surface)(nil)

// Decimals is the number of fractional digits written for coordinates.
const Decimals = 6

// Surface streams paint commands into an SVG document.
type Surface struct {
	canvas *svg.SVG
	open   int
}

// New starts an SVG document of the given size on w.
func New(w io.Writer, width, height float64) *Surface {
	c := svg.New(w)
	c.Decimals = Decimals
	c.Start(width, height)
	return &Surface{canvas: c}
}

// NewView starts an SVG document whose user coordinates span the view box
// (minX, minY, width, height).
func NewView(w io.Writer, minX, minY, width, height float64) *Surface {
	c := svg.New(w)
	c.Decimals = Decimals
	c.Startview(width, height, minX, minY, width, height)
	return &Surface{canvas: c}
}

// Open is the number of font and brush handles not yet released.
func (s *Surface) Open() int {
	return s.open
}

// Close ends the document. It fails if handles are still open.
func (s *Surface) Close() error {
	s.canvas.End()
	if s.open != 0 {
		return fmt.Errorf("svgsurface: %d handles not released", s.open)
	}
	return nil
}

type handle struct {
	s      *Surface
	closed bool
}

func (h *handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.s.open--
	return nil
}

type font struct {
	handle
	family string
	size   float64
}

type brush struct {
	handle
	c color.RGBA
}

func (s *Surface) Font(family string, size float64) (diagram.Font, error) {
	s.open++
	return &font{handle: handle{s: s}, family: family, size: size}, nil
}

func (s *Surface) Brush(c color.RGBA) (diagram.Brush, error) {
	s.open++
	return &brush{handle: handle{s: s}, c: c}, nil
}

func (s *Surface) Text(f diagram.Font, b diagram.Brush, at diagram.Point, align diagram.Align, text string) {
	ff, bb := f.(*font), b.(*brush)
	style := fmt.Sprintf("font-family:%s;font-size:%spx;text-anchor:%s;%s",
		family(ff.family), num(ff.size), anchor(align), fill(bb.c))
	s.canvas.Text(at.X, at.Y, text, style)
}

func (s *Surface) FillCircle(b diagram.Brush, center diagram.Point, radius float64) {
	s.canvas.Circle(center.X, center.Y, radius, fill(b.(*brush).c))
}

func (s *Surface) Line(b diagram.Brush, from, to diagram.Point, width float64) {
	c := b.(*brush).c
	style := fmt.Sprintf("stroke:%s;stroke-opacity:%s;stroke-width:%s;stroke-linecap:round",
		rgb(c), opacity(c), num(width))
	s.canvas.Line(from.X, from.Y, to.X, to.Y, style)
}

func anchor(a diagram.Align) string {
	switch a {
	case diagram.AlignCenter:
		return "middle"
	case diagram.AlignRight:
		return "end"
	default:
		return "start"
	}
}

// family quotes a font family for a style attribute, dropping characters
// that could break out of the quoted value.
func family(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(`"'\;:=<>&{}`, r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" {
		return "sans-serif"
	}
	return "'" + name + "'"
}

func fill(c color.RGBA) string {
	return "fill:" + rgb(c) + ";fill-opacity:" + opacity(c)
}

func rgb(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func opacity(c color.RGBA) string {
	return num(float64(c.A) / 255)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Render writes the whole diagram as one SVG document, with the view box
// fitted to the diagram bounds plus margin on every side.
func Render(d *diagram.Diagram, w io.Writer, margin float64) error {
	b, ok := d.Bounds()
	if !ok {
		s := New(w, 2*margin, 2*margin)
		return s.Close()
	}
	size := b.Size()
	s := NewView(w, b.Min.X-margin, b.Min.Y-margin, size.X+2*margin, size.Y+2*margin)
	if err := d.Render(s); err != nil {
		s.canvas.End()
		return fmt.Errorf("svgsurface: %w", err)
	}
	return s.Close()
}
