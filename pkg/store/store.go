// Package store saves diagrams as YAML snapshots and restores them.
//
// A snapshot lists every object with its kind, identifier and Internal
// Bag. Bag key order is kept, so a snapshot reads in the same order the
// object reports its properties.
package store

import (
	"fmt"
	"image/color"
	"io"

	"github.com/chazu/molsketch/pkg/diagram"
	"github.com/chazu/molsketch/pkg/props"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Version is the snapshot format version written by Save.
const Version = 1

type document struct {
	Version int      `yaml:"version"`
	ID      string   `yaml:"id"`
	Objects []record `yaml:"objects"`
}

type record struct {
	Kind  string    `yaml:"kind"`
	ID    int       `yaml:"id"`
	State yaml.Node `yaml:"state"`
}

// Save writes a snapshot of d to w.
func Save(d *diagram.Diagram, w io.Writer) error {
	doc := document{Version: Version, ID: d.UUID.String()}
	for _, o := range d.Objects() {
		b, err := d.InternalState(o.ID())
		if err != nil {
			return fmt.Errorf("store: save: %w", err)
		}
		state, err := encodeBag(b)
		if err != nil {
			return fmt.Errorf("store: save object %d: %w", o.ID(), err)
		}
		doc.Objects = append(doc.Objects, record{Kind: o.Kind().String(), ID: int(o.ID()), State: *state})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("store: save: %w", err)
	}
	return enc.Close()
}

func encodeBag(b *props.Bag) (*yaml.Node, error) {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for k, v := range b.All() {
		if c, ok := v.(color.RGBA); ok {
			v = props.FormatColor(c)
		}
		var val yaml.Node
		if err := val.Encode(v); err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: k}, &val)
	}
	return m, nil
}

// Load reads a snapshot and rebuilds the diagram, keeping identifiers and
// the document UUID. State is restored through ApplyEdits; keys an object
// does not recognise are reported to sink and skipped.
func Load(r io.Reader, sink diagram.Sink) (*diagram.Diagram, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("store: load: %w", err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("store: load: unsupported version %d", doc.Version)
	}

	d := diagram.NewDiagram(sink)
	if doc.ID != "" {
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			return nil, fmt.Errorf("store: load: document id: %w", err)
		}
		d.UUID = id
	}

	for _, rec := range doc.Objects {
		if err := restore(d, rec); err != nil {
			return nil, fmt.Errorf("store: load object %d: %w", rec.ID, err)
		}
	}
	return d, nil
}

func restore(d *diagram.Diagram, rec record) error {
	kind, err := diagram.ParseKind(rec.Kind)
	if err != nil {
		return err
	}
	o, err := diagram.New(kind, diagram.ID(rec.ID))
	if err != nil {
		return err
	}
	b, err := decodeBag(o.Schema(), &rec.State)
	if err != nil {
		return err
	}
	if err := d.Add(o); err != nil {
		return err
	}
	r, err := d.ApplyEdits(o.ID(), b)
	if err != nil {
		return err
	}
	return r.Err()
}

func decodeBag(desc props.Descriptor, n *yaml.Node) (*props.Bag, error) {
	b := props.NewBag()
	if n.Kind == 0 {
		return b, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: state is not a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		v, err := decodeValue(desc, key, val)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", val.Line, key, err)
		}
		b.Set(key, v)
	}
	return b, nil
}

func decodeValue(desc props.Descriptor, key string, n *yaml.Node) (any, error) {
	info, ok := desc.Lookup(key)
	if !ok {
		var v any
		err := n.Decode(&v)
		return v, err
	}
	switch info.Kind {
	case props.KindFloat:
		var f float64
		err := n.Decode(&f)
		return f, err
	case props.KindInt:
		var i int
		err := n.Decode(&i)
		return i, err
	case props.KindByte:
		var u uint8
		err := n.Decode(&u)
		return u, err
	case props.KindColor:
		var s string
		if err := n.Decode(&s); err != nil {
			return nil, err
		}
		c, ok := props.ParseColor(s)
		if !ok {
			return nil, fmt.Errorf("invalid colour %q", s)
		}
		return c, nil
	default:
		var s string
		err := n.Decode(&s)
		return s, err
	}
}
