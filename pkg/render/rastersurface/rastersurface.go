// Package rastersurface implements diagram.Surface on an in-memory image
// using github.com/fogleman/gg, with text set in the embedded Go fonts.
package rastersurface

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/chazu/molsketch/pkg/diagram"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Compile-time interface check.
var _ diagram.Surface = (*Surface)(nil)

// Parsed font data is immutable and shared; faces built from it are
// per-handle and closed on release.
var (
	fontsOnce sync.Once
	regular   *truetype.Font
	mono      *truetype.Font
	fontsErr  error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		regular, fontsErr = truetype.Parse(goregular.TTF)
		if fontsErr != nil {
			return
		}
		mono, fontsErr = truetype.Parse(gomono.TTF)
	})
	return fontsErr
}

// typeface picks the embedded font closest to a requested family.
func typeface(family string) *truetype.Font {
	f := strings.ToLower(family)
	if strings.Contains(f, "mono") || strings.Contains(f, "courier") {
		return mono
	}
	return regular
}

// Surface draws onto a gg context.
type Surface struct {
	dc   *gg.Context
	open int
}

// New returns a surface of the given pixel size, cleared to background.
func New(width, height int, background color.Color) *Surface {
	dc := gg.NewContext(width, height)
	dc.SetColor(background)
	dc.Clear()
	return &Surface{dc: dc}
}

// Transform maps canvas coordinates to pixels: scale, then translate.
func (s *Surface) Transform(scale, dx, dy float64) {
	s.dc.Translate(dx, dy)
	s.dc.Scale(scale, scale)
}

// Open is the number of font and brush handles not yet released.
func (s *Surface) Open() int {
	return s.open
}

// Image returns the rendered image.
func (s *Surface) Image() image.Image {
	return s.dc.Image()
}

// EncodePNG writes the rendered image as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	return s.dc.EncodePNG(w)
}

type fontHandle struct {
	s      *Surface
	face   font.Face
	closed bool
}

func (f *fontHandle) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.s.open--
	return f.face.Close()
}

// brushHandle keeps its colour as NRGBA; gg reads color.RGBA as
// premultiplied.
type brushHandle struct {
	s      *Surface
	c      color.NRGBA
	closed bool
}

func (b *brushHandle) Close() error {
	if !b.closed {
		b.closed = true
		b.s.open--
	}
	return nil
}

func (s *Surface) Font(family string, size float64) (diagram.Font, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("rastersurface: load fonts: %w", err)
	}
	face := truetype.NewFace(typeface(family), &truetype.Options{Size: math.Abs(size)})
	s.open++
	return &fontHandle{s: s, face: face}, nil
}

func (s *Surface) Brush(c color.RGBA) (diagram.Brush, error) {
	s.open++
	return &brushHandle{s: s, c: color.NRGBA(c)}, nil
}

func (s *Surface) Text(f diagram.Font, b diagram.Brush, at diagram.Point, align diagram.Align, text string) {
	fh, bh := f.(*fontHandle), b.(*brushHandle)
	s.dc.SetFontFace(fh.face)
	s.dc.SetColor(bh.c)
	s.dc.DrawStringAnchored(text, at.X, at.Y, anchorX(align), 0)
}

func (s *Surface) FillCircle(b diagram.Brush, center diagram.Point, radius float64) {
	s.dc.SetColor(b.(*brushHandle).c)
	s.dc.DrawCircle(center.X, center.Y, radius)
	s.dc.Fill()
}

func (s *Surface) Line(b diagram.Brush, from, to diagram.Point, width float64) {
	s.dc.SetColor(b.(*brushHandle).c)
	s.dc.SetLineWidth(width)
	s.dc.SetLineCap(gg.LineCapRound)
	s.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	s.dc.Stroke()
}

func anchorX(a diagram.Align) float64 {
	switch a {
	case diagram.AlignCenter:
		return 0.5
	case diagram.AlignRight:
		return 1
	default:
		return 0
	}
}

// Render rasterises the diagram at scale pixels per canvas unit, fitted to
// its bounds plus margin, onto a white background, and writes a PNG.
func Render(d *diagram.Diagram, w io.Writer, scale, margin float64) error {
	b, ok := d.Bounds()
	if !ok {
		return New(1, 1, color.White).EncodePNG(w)
	}
	size := b.Size()
	width := int(math.Ceil((size.X + 2*margin) * scale))
	height := int(math.Ceil((size.Y + 2*margin) * scale))
	s := New(max(width, 1), max(height, 1), color.White)
	s.Transform(scale, (margin-b.Min.X)*scale, (margin-b.Min.Y)*scale)
	if err := d.Render(s); err != nil {
		return fmt.Errorf("rastersurface: %w", err)
	}
	return s.EncodePNG(w)
}
