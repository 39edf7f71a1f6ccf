package props

import (
	"fmt"
	"image/color"
)

// Decomposition declares how a composite field is presented to an editor
// as scalar parts and how the parts are joined back into the composite.
type Decomposition struct {
	Field string
	Parts []FieldInfo
	Split func(v any) ([]any, error)
	Join  func(parts []any) (any, error)
}

func (d Decomposition) partNames() []string {
	names := make([]string, len(d.Parts))
	for i, p := range d.Parts {
		names[i] = p.Name
	}
	return names
}

// ColorChannels decomposes a color.RGBA field into four uint8 channel
// keys named <field>R, <field>G, <field>B and <field>A.
func ColorChannels(field string) Decomposition {
	parts := []FieldInfo{
		{Name: field + "R", Kind: KindByte},
		{Name: field + "G", Kind: KindByte},
		{Name: field + "B", Kind: KindByte},
		{Name: field + "A", Kind: KindByte},
	}
	return Decomposition{
		Field: field,
		Parts: parts,
		Split: func(v any) ([]any, error) {
			c, ok := v.(color.RGBA)
			if !ok {
				return nil, fmt.Errorf("split %s: expected color.RGBA, got %T", field, v)
			}
			return []any{c.R, c.G, c.B, c.A}, nil
		},
		Join: func(vals []any) (any, error) {
			var ch [4]uint8
			for i, v := range vals {
				b, ok := v.(uint8)
				if !ok {
					return nil, &PropertyError{Code: InvalidPropertyType, Key: parts[i].Name, Want: KindByte, Got: v}
				}
				ch[i] = b
			}
			return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
		},
	}
}
