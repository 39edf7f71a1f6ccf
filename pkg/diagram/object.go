// Package diagram defines the diagram-object contract for the molsketch
// editor and its concrete variants. Every entity on the canvas can draw
// itself, hit-test a point, and expose or accept its state as a property
// bag, so an editor shell can handle all kinds uniformly.
package diagram

import (
	"fmt"

	"github.com/chazu/molsketch/pkg/props"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// ID is a diagram-scoped object identifier. It is assigned once at
// construction and never changes.
type ID int

// Point is a position in canvas coordinates.
type Point = v2.Vec

// Kind enumerates the concrete diagram object variants.
type Kind int

const (
	KindAtom  Kind = iota // element symbol with charge and lone electrons
	KindBond              // line segment between two positions
	KindLabel             // free text annotation
)

func (k Kind) String() string {
	switch k {
	case KindAtom:
		return "atom"
	case KindBond:
		return "bond"
	case KindLabel:
		return "label"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "atom":
		return KindAtom, nil
	case "bond":
		return KindBond, nil
	case "label":
		return KindLabel, nil
	}
	return 0, fmt.Errorf("diagram: unknown object kind %q", s)
}

// Object is the capability set every diagram entity implements.
type Object interface {
	ID() ID
	Kind() Kind

	// Draw paints the object onto s without changing its state. Drawing
	// resources are acquired from s and released before Draw returns,
	// whether it succeeds, fails, or panics.
	Draw(s Surface) error

	// IsHit reports whether p lies in the object's interactive region.
	IsHit(p Point) bool

	// InternalState snapshots every stored field, or fails with
	// *props.InternalError and no bag.
	InternalState() (*props.Bag, error)

	// EditableState is InternalState with composites decomposed into
	// scalar parts for an editor UI.
	EditableState() (*props.Bag, error)

	// ApplyEdits merges a possibly partial internal or editable bag.
	// Bad keys are reported, never fatal.
	ApplyEdits(b *props.Bag) props.Report

	// Bounds returns the object's extent on the canvas.
	Bounds() sdf.Box2

	// Schema describes the keys ApplyEdits understands.
	Schema() props.Descriptor
}

// New returns a default object of the given kind.
func New(kind Kind, id ID) (Object, error) {
	switch kind {
	case KindAtom:
		return DefaultAtom(id), nil
	case KindBond:
		return DefaultBond(id), nil
	case KindLabel:
		return DefaultLabel(id), nil
	}
	return nil, fmt.Errorf("diagram: cannot create object of kind %s", kind)
}

// box returns the axis-aligned box spanning the given points.
func box(pts ...Point) sdf.Box2 {
	b := sdf.Box2{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		b = b.Extend(sdf.Box2{Min: p, Max: p})
	}
	return b
}
