package script

import (
	"fmt"
	"image/color"
	"maps"
	"slices"
	"strings"

	"github.com/chazu/molsketch/pkg/diagram"
	"github.com/chazu/molsketch/pkg/props"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms script source before passing it to zygomys.
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal),
//     so keywords need no global symbols.
//  2. Kebab-case to underscore: lone-pair -> lone_pair. zygomys reads a
//     hyphen inside an identifier as subtraction.
//  3. ; line comments become // comments.
//
// All three respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// A hyphen between identifier characters is kebab-case, not minus.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types
// ---------------------------------------------------------------------------

// sexpObjectRef is returned by the object builtins so scripts can bind
// objects to names and pass them on, e.g. atoms to bond.
type sexpObjectRef struct {
	id   diagram.ID
	kind diagram.Kind
}

func (r *sexpObjectRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s #%d)", r.kind, r.id)
}
func (r *sexpObjectRef) Type() *zygo.RegisteredType { return nil }

// sexpColour wraps a colour built by rgba.
type sexpColour struct {
	c color.RGBA
}

func (c *sexpColour) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(rgba %d %d %d %d)", c.c.R, c.c.G, c.c.B, c.c.A)
}
func (c *sexpColour) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW reports the keyword name if s is a preprocessed keyword string.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		if name, ok := isKW(args[i]); ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
			continue
		}
		result.positional = append(result.positional, args[i])
		i++
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toValue converts a script value into the loose Go value props.Coerce
// understands.
func toValue(s zygo.Sexp) (any, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return v.Val, nil
	case *zygo.SexpFloat:
		return v.Val, nil
	case *zygo.SexpStr:
		if name, ok := isKW(v); ok {
			return nil, fmt.Errorf("unexpected keyword :%s", name)
		}
		return v.S, nil
	case *sexpColour:
		return v.c, nil
	}
	return nil, fmt.Errorf("unsupported value %T (%s)", s, s.SexpString(nil))
}

// toByte extracts an integer in 0..255.
func toByte(s zygo.Sexp) (uint8, error) {
	v, ok := s.(*zygo.SexpInt)
	if !ok {
		return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
	}
	if v.Val < 0 || v.Val > 255 {
		return 0, fmt.Errorf("channel %d out of range 0..255", v.Val)
	}
	return uint8(v.Val), nil
}

// toObjectRef extracts an object reference of the wanted kind.
func toObjectRef(s zygo.Sexp, want diagram.Kind) (*sexpObjectRef, error) {
	ref, ok := s.(*sexpObjectRef)
	if !ok {
		return nil, fmt.Errorf("expected %s reference, got %T (%s)", want, s, s.SexpString(nil))
	}
	if ref.kind != want {
		return nil, fmt.Errorf("expected %s reference, got %s #%d", want, ref.kind, ref.id)
	}
	return ref, nil
}

// ---------------------------------------------------------------------------
// Keyword to property key tables
// ---------------------------------------------------------------------------

var atomKeys = map[string]string{
	"x":              "X",
	"y":              "Y",
	"symbol":         "Symbol",
	"font":           "FontFamily",
	"font-size":      "FontSize",
	"colour":         "Colour",
	"color":          "Colour",
	"charge":         "Charge",
	"lone-electrons": "LoneElectrons",
	"electron-angle": "ElectronAngle",
}

var bondKeys = map[string]string{
	"x1":     "X1",
	"y1":     "Y1",
	"x2":     "X2",
	"y2":     "Y2",
	"order":  "Order",
	"width":  "Width",
	"colour": "Colour",
	"color":  "Colour",
}

var labelKeys = map[string]string{
	"x":         "X",
	"y":         "Y",
	"text":      "Text",
	"font":      "FontFamily",
	"font-size": "FontSize",
	"colour":    "Colour",
	"color":     "Colour",
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builder collects the objects a script creates.
type builder struct {
	d    *diagram.Diagram
	atom diagram.AtomSpec
}

// place applies the keyword arguments of a builtin call on top of the
// positional edits in bag, then adds o to the diagram. A value the object
// rejects fails the call.
func (b *builder) place(o diagram.Object, bag *props.Bag, kw map[string]zygo.Sexp, keys map[string]string) (zygo.Sexp, error) {
	kind := o.Kind().String()
	for _, name := range slices.Sorted(maps.Keys(kw)) {
		key, ok := keys[name]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("%s: unknown keyword :%s", kind, name)
		}
		v, err := toValue(kw[name])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %s: %w", kind, name, err)
		}
		bag.Set(key, v)
	}

	if err := o.ApplyEdits(props.Coerce(o.Schema(), bag)).Err(); err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", kind, err)
	}
	if err := b.d.Add(o); err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", kind, err)
	}
	return &sexpObjectRef{id: o.ID(), kind: o.Kind()}, nil
}

// registerBuiltins installs the sketch builtins into a zygomys environment.
// Source must be preprocessed with preprocessSource() first so that
// :keyword tokens arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// -----------------------------------------------------------------------
	// (atom "O" :x 10 :y 10 :charge -2 :lone-electrons 2)
	// -----------------------------------------------------------------------
	env.AddFunction("atom", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		bag := props.NewBag()
		switch len(pa.positional) {
		case 0:
		case 1:
			v, err := toValue(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("atom: symbol: %w", err)
			}
			bag.Set("Symbol", v)
		default:
			return zygo.SexpNull, fmt.Errorf("atom takes at most one positional argument, got %d", len(pa.positional))
		}
		return b.place(diagram.NewAtom(b.d.NextID(), b.atom), bag, pa.kw, atomKeys)
	})

	// -----------------------------------------------------------------------
	// (bond a b :order 2 :width 1.5)
	// Endpoints are copied from the atoms' centres when the bond is made.
	// -----------------------------------------------------------------------
	env.AddFunction("bond", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		bag := props.NewBag()
		switch len(pa.positional) {
		case 0:
		case 2:
			for i, end := range [2][2]string{{"X1", "Y1"}, {"X2", "Y2"}} {
				ref, err := toObjectRef(pa.positional[i], diagram.KindAtom)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("bond: endpoint %d: %w", i+1, err)
				}
				c := b.d.Get(ref.id).(*diagram.Atom).Center()
				bag.Set(end[0], c.X)
				bag.Set(end[1], c.Y)
			}
		default:
			return zygo.SexpNull, fmt.Errorf("bond requires two atoms, got %d positional arguments", len(pa.positional))
		}
		return b.place(diagram.DefaultBond(b.d.NextID()), bag, pa.kw, bondKeys)
	})

	// -----------------------------------------------------------------------
	// (segment x1 y1 x2 y2 :order 1)
	// -----------------------------------------------------------------------
	env.AddFunction("segment", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 4 {
			return zygo.SexpNull, fmt.Errorf("segment requires x1 y1 x2 y2, got %d positional arguments", len(pa.positional))
		}
		bag := props.NewBag()
		for i, key := range []string{"X1", "Y1", "X2", "Y2"} {
			v, err := toValue(pa.positional[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("segment: %s: %w", strings.ToLower(key), err)
			}
			bag.Set(key, v)
		}
		return b.place(diagram.DefaultBond(b.d.NextID()), bag, pa.kw, bondKeys)
	})

	// -----------------------------------------------------------------------
	// (label "H2O" :x 0 :y 40 :font-size 12)
	// -----------------------------------------------------------------------
	env.AddFunction("label", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		bag := props.NewBag()
		switch len(pa.positional) {
		case 0:
		case 1:
			v, err := toValue(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("label: text: %w", err)
			}
			bag.Set("Text", v)
		default:
			return zygo.SexpNull, fmt.Errorf("label takes at most one positional argument, got %d", len(pa.positional))
		}
		return b.place(diagram.DefaultLabel(b.d.NextID()), bag, pa.kw, labelKeys)
	})

	// -----------------------------------------------------------------------
	// (rgba 255 0 0) or (rgba 255 0 0 128)
	// -----------------------------------------------------------------------
	env.AddFunction("rgba", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 && len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("rgba requires 3 or 4 channels, got %d", len(args))
		}
		ch := [4]uint8{3: 255}
		for i, a := range args {
			v, err := toByte(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rgba: channel %d: %w", i+1, err)
			}
			ch[i] = v
		}
		return &sexpColour{c: color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}}, nil
	})
}
