package script

import (
	"image/color"
	"strings"
	"testing"

	"github.com/chazu/molsketch/pkg/diagram"
)

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(atom "O" :x 10)`,
			expect: `(atom "O" "__kw_x" 10)`,
		},
		{
			name:   "hyphenated keyword kept whole",
			input:  `(atom :lone-electrons 2)`,
			expect: `(atom "__kw_lone-electrons" 2)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `(label "ratio :1")`,
			expect: `(label "ratio :1")`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(def ring-top (atom))`,
			expect: `(def ring_top (atom))`,
		},
		{
			name:   "negative literal preserved",
			input:  `:charge -2`,
			expect: `"__kw_charge" -2`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; water :keyword`,
			expect: `// water :keyword`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func mustEvaluate(t *testing.T, src string) *diagram.Diagram {
	t.Helper()
	d, evalErrs, err := NewEngine().Evaluate(src)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	return d
}

func mustFail(t *testing.T, src, want string) {
	t.Helper()
	d, evalErrs, err := NewEngine().Evaluate(src)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if d != nil {
		t.Fatal("expected nil diagram")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors")
	}
	if !strings.Contains(evalErrs[0].Message, want) {
		t.Errorf("message = %q, want containing %q", evalErrs[0].Message, want)
	}
}

func TestAtomBuiltin(t *testing.T) {
	d := mustEvaluate(t, `
; oxygen dianion
(atom "O" :x 10 :y 10 :charge -2 :lone-electrons 2 :electron-angle 90 :colour "#FF0000")
`)
	if d.Len() != 1 {
		t.Fatalf("expected 1 object, got %d", d.Len())
	}
	a, ok := d.Objects()[0].(*diagram.Atom)
	if !ok {
		t.Fatalf("expected atom, got %T", d.Objects()[0])
	}
	want := diagram.DefaultAtomSpec()
	want.Symbol = "O"
	want.X, want.Y = 10, 10
	want.Charge = -2
	want.LoneElectrons = 2
	want.ElectronAngle = 90
	want.Colour = color.RGBA{R: 255, A: 255}
	if got := a.Spec(); got != want {
		t.Errorf("spec = %+v, want %+v", got, want)
	}
}

func TestAtomDefaultsFromEngine(t *testing.T) {
	eng := NewEngine()
	eng.Atom.FontFamily = "Helvetica"
	eng.Atom.FontSize = 24

	d, evalErrs, err := eng.Evaluate(`(atom)`)
	if err != nil || len(evalErrs) > 0 {
		t.Fatalf("evaluate: %v %v", err, evalErrs)
	}
	spec := d.Objects()[0].(*diagram.Atom).Spec()
	if spec.FontFamily != "Helvetica" || spec.FontSize != 24 || spec.Symbol != "C" {
		t.Errorf("unexpected spec %+v", spec)
	}
}

func TestBondBetweenAtoms(t *testing.T) {
	d := mustEvaluate(t, `
(def o (atom "O" :x 10 :y 10))
(def h (atom "H" :x 40 :y 25.5))
(bond o h :order 2 :width 2 :colour (rgba 0 0 255))
`)
	if d.Len() != 3 {
		t.Fatalf("expected 3 objects, got %d", d.Len())
	}
	b, ok := d.Objects()[2].(*diagram.Bond)
	if !ok {
		t.Fatalf("expected bond, got %T", d.Objects()[2])
	}
	want := diagram.BondSpec{X1: 10, Y1: 10, X2: 40, Y2: 25.5, Order: 2, Width: 2, Colour: color.RGBA{B: 255, A: 255}}
	if got := b.Spec(); got != want {
		t.Errorf("spec = %+v, want %+v", got, want)
	}
}

func TestSegmentAndLabel(t *testing.T) {
	d := mustEvaluate(t, `
(segment 0 0 30 0 :order 3)
(label "H2O" :x 5 :y 40 :font-size 12 :font "Courier")
`)
	if d.Len() != 2 {
		t.Fatalf("expected 2 objects, got %d", d.Len())
	}
	b := d.Objects()[0].(*diagram.Bond).Spec()
	if b.X2 != 30 || b.Order != 3 {
		t.Errorf("unexpected bond %+v", b)
	}
	l := d.Objects()[1].(*diagram.Label).Spec()
	if l.Text != "H2O" || l.FontSize != 12 || l.FontFamily != "Courier" || l.X != 5 || l.Y != 40 {
		t.Errorf("unexpected label %+v", l)
	}
}

func TestVariableAndArithmetic(t *testing.T) {
	d := mustEvaluate(t, `
(def step 25)
(atom "C" :x step)
(atom "C" :x (* 2 step))
`)
	xs := []float64{25, 50}
	for i, o := range d.Objects() {
		if got := o.(*diagram.Atom).Spec().X; got != xs[i] {
			t.Errorf("atom %d: x = %v, want %v", i, got, xs[i])
		}
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown keyword", `(atom "C" :isotope 13)`, "unknown keyword :isotope"},
		{"string for number", `(atom "C" :x "ten")`, "X"},
		{"fractional charge", `(atom "C" :charge 1.5)`, "Charge"},
		{"bad colour", `(atom "C" :colour "not-a-colour")`, "Colour"},
		{"bond to label", `(def l (label "x")) (bond l l)`, "expected atom reference"},
		{"bond one end", `(bond (atom))`, "requires two atoms"},
		{"segment short", `(segment 1 2 3)`, "x1 y1 x2 y2"},
		{"rgba range", `(rgba 256 0 0)`, "out of range"},
		{"rgba arity", `(rgba 1 2)`, "3 or 4 channels"},
		{"too many symbols", `(atom "C" "N")`, "at most one positional"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustFail(t, tt.src, tt.want)
		})
	}
}

func TestRgbaAlpha(t *testing.T) {
	d := mustEvaluate(t, `(label "x" :colour (rgba 1 2 3 4))`)
	c := d.Objects()[0].(*diagram.Label).Spec().Colour
	if c != (color.RGBA{R: 1, G: 2, B: 3, A: 4}) {
		t.Errorf("colour = %v", c)
	}
}

func TestObjectRefPrints(t *testing.T) {
	r := &sexpObjectRef{id: 3, kind: diagram.KindAtom}
	if got := r.SexpString(nil); got != "(atom #3)" {
		t.Errorf("SexpString = %q", got)
	}
}
