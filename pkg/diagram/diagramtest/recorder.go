// Package diagramtest provides a recording diagram.Surface for tests.
package diagramtest

import (
	"errors"
	"image/color"

	"github.com/chazu/molsketch/pkg/diagram"
)

// ErrInjected is returned by a Recorder configured to fail.
var ErrInjected = errors.New("diagramtest: injected failure")

// Text records one Surface.Text call.
type Text struct {
	Family string
	Size   float64
	Colour color.RGBA
	At     diagram.Point
	Align  diagram.Align
	S      string
}

// Circle records one Surface.FillCircle call.
type Circle struct {
	Colour color.RGBA
	Center diagram.Point
	Radius float64
}

// Line records one Surface.Line call.
type Line struct {
	Colour   color.RGBA
	From, To diagram.Point
	Width    float64
}

// Recorder captures paint commands and tracks handle lifetimes.
type Recorder struct {
	Texts   []Text
	Circles []Circle
	Lines   []Line

	Acquired int
	Released int

	// FailFontAt makes the n-th Font call (1-based) fail. Zero disables.
	FailFontAt int
	// PanicOnCircle panics inside FillCircle.
	PanicOnCircle bool

	fonts int
}

var _ diagram.Surface = (*Recorder)(nil)

type font struct {
	r      *Recorder
	family string
	size   float64
	closed bool
}

func (f *font) Close() error {
	if !f.closed {
		f.closed = true
		f.r.Released++
	}
	return nil
}

type brush struct {
	r      *Recorder
	c      color.RGBA
	closed bool
}

func (b *brush) Close() error {
	if !b.closed {
		b.closed = true
		b.r.Released++
	}
	return nil
}

func (r *Recorder) Font(family string, size float64) (diagram.Font, error) {
	r.fonts++
	if r.FailFontAt > 0 && r.fonts == r.FailFontAt {
		return nil, ErrInjected
	}
	r.Acquired++
	return &font{r: r, family: family, size: size}, nil
}

func (r *Recorder) Brush(c color.RGBA) (diagram.Brush, error) {
	r.Acquired++
	return &brush{r: r, c: c}, nil
}

func (r *Recorder) Text(f diagram.Font, b diagram.Brush, at diagram.Point, align diagram.Align, s string) {
	ff, fb := f.(*font), b.(*brush)
	r.Texts = append(r.Texts, Text{Family: ff.family, Size: ff.size, Colour: fb.c, At: at, Align: align, S: s})
}

func (r *Recorder) FillCircle(b diagram.Brush, center diagram.Point, radius float64) {
	if r.PanicOnCircle {
		panic("diagramtest: circle")
	}
	r.Circles = append(r.Circles, Circle{Colour: b.(*brush).c, Center: center, Radius: radius})
}

func (r *Recorder) Line(b diagram.Brush, from, to diagram.Point, width float64) {
	r.Lines = append(r.Lines, Line{Colour: b.(*brush).c, From: from, To: to, Width: width})
}

// Outstanding is the number of handles acquired but not yet released.
func (r *Recorder) Outstanding() int {
	return r.Acquired - r.Released
}
