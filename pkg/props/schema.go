package props

import (
	"errors"
	"fmt"
)

// Descriptor is the type-erased view of a Schema: which keys exist and
// what kind of value each expects.
type Descriptor interface {
	// Fields lists the stored fields in declaration order.
	Fields() []FieldInfo
	// Lookup resolves a stored field or a decomposition part.
	Lookup(key string) (FieldInfo, bool)
}

// Schema is the per-variant field table: bag key -> typed accessor, plus
// any composite decompositions presented in editable bags.
type Schema[T any] struct {
	fields  []Field[T]
	index   map[string]int
	decomps []Decomposition
	parts   map[string]FieldInfo
}

var _ Descriptor = (*Schema[struct{}])(nil)

// NewSchema builds a schema from fields in bag order. Duplicate names are
// a programming error and panic.
func NewSchema[T any](fields ...Field[T]) *Schema[T] {
	s := &Schema[T]{
		fields: fields,
		index:  make(map[string]int, len(fields)),
		parts:  make(map[string]FieldInfo),
	}
	for i, f := range fields {
		if _, dup := s.index[f.Name]; dup {
			panic(fmt.Sprintf("props: duplicate field %q", f.Name))
		}
		s.index[f.Name] = i
	}
	return s
}

// Decompose registers a decomposition for an existing field.
func (s *Schema[T]) Decompose(d Decomposition) *Schema[T] {
	if _, ok := s.index[d.Field]; !ok {
		panic(fmt.Sprintf("props: decomposition of unknown field %q", d.Field))
	}
	for _, p := range d.Parts {
		if _, clash := s.index[p.Name]; clash {
			panic(fmt.Sprintf("props: decomposition part %q shadows a field", p.Name))
		}
		s.parts[p.Name] = p
	}
	s.decomps = append(s.decomps, d)
	return s
}

// Fields implements Descriptor.
func (s *Schema[T]) Fields() []FieldInfo {
	out := make([]FieldInfo, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.FieldInfo
	}
	return out
}

// Lookup implements Descriptor.
func (s *Schema[T]) Lookup(key string) (FieldInfo, bool) {
	if i, ok := s.index[key]; ok {
		return s.fields[i].FieldInfo, true
	}
	p, ok := s.parts[key]
	return p, ok
}

// Internal snapshots every stored field of obj. Any failure, including a
// panicking accessor, yields an *InternalError and no bag.
func (s *Schema[T]) Internal(obj *T) (b *Bag, err error) {
	return s.snapshot("internal state", obj)
}

func (s *Schema[T]) snapshot(op string, obj *T) (b *Bag, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, &InternalError{Op: op, Err: fmt.Errorf("%v", r)}
		}
	}()
	if obj == nil {
		return nil, &InternalError{Op: op, Err: errors.New("nil object")}
	}
	b = NewBag()
	for _, f := range s.fields {
		b.Set(f.Name, f.get(obj))
	}
	return b, nil
}

// Editable snapshots obj with every decomposed composite replaced, in
// place, by its parts.
func (s *Schema[T]) Editable(obj *T) (*Bag, error) {
	const op = "editable state"
	b, err := s.snapshot(op, obj)
	if err != nil {
		return nil, err
	}
	for _, d := range s.decomps {
		v, _ := b.Get(d.Field)
		vals, err := d.Split(v)
		if err != nil {
			return nil, &InternalError{Op: op, Err: err}
		}
		if len(vals) != len(d.Parts) {
			return nil, &InternalError{Op: op, Err: fmt.Errorf("split %s: %d parts, want %d", d.Field, len(vals), len(d.Parts))}
		}
		idx := b.m.IndexByKey(d.Field)
		b.replace(d.Field, d.Parts[0].Name, vals[0])
		for i := 1; i < len(vals); i++ {
			b.insertAt(idx+i, d.Parts[i].Name, vals[i])
		}
	}
	return b, nil
}

// Report summarises one Apply call.
type Report struct {
	Applied      []string         // keys written to obj, in bag order
	Invalid      []*PropertyError // type mismatches; those fields are unchanged
	Unrecognized []string         // keys with no field, skipped
}

// Err joins the invalid-type errors, or returns nil.
func (r Report) Err() error {
	if len(r.Invalid) == 0 {
		return nil
	}
	errs := make([]error, len(r.Invalid))
	for i, e := range r.Invalid {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Apply merges an edit bag into obj. Complete sets of decomposition parts
// are joined first and overwrite the composite key. Remaining keys are
// applied in bag order; a bad key is recorded and skipped without
// affecting the others. The input bag is not modified.
func (s *Schema[T]) Apply(obj *T, in *Bag) Report {
	var r Report
	b := in.Clone()

	for _, d := range s.decomps {
		names := d.partNames()
		present := 0
		for _, n := range names {
			if b.Has(n) {
				present++
			}
		}
		if present == 0 {
			continue
		}
		if present < len(names) {
			for _, n := range names {
				if b.Delete(n) {
					r.Unrecognized = append(r.Unrecognized, n)
				}
			}
			continue
		}

		vals := make([]any, len(names))
		for i, n := range names {
			vals[i], _ = b.Get(n)
		}
		joined, err := d.Join(vals)
		if err != nil {
			var pe *PropertyError
			if !errors.As(err, &pe) {
				pe = &PropertyError{Code: InvalidPropertyType, Key: d.Field, Want: s.fields[s.index[d.Field]].Kind, Got: vals}
			}
			r.Invalid = append(r.Invalid, pe)
			for _, n := range names {
				b.Delete(n)
			}
			continue
		}
		if b.Has(d.Field) {
			b.Set(d.Field, joined)
		} else {
			b.replace(names[0], d.Field, joined)
		}
		for _, n := range names {
			b.Delete(n)
		}
	}

	for k, v := range b.All() {
		i, ok := s.index[k]
		if !ok {
			r.Unrecognized = append(r.Unrecognized, k)
			continue
		}
		f := s.fields[i]
		if !f.set(obj, v) {
			r.Invalid = append(r.Invalid, &PropertyError{Code: InvalidPropertyType, Key: k, Want: f.Kind, Got: v})
			continue
		}
		r.Applied = append(r.Applied, k)
	}
	return r
}
