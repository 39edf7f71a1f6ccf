package diagram

import (
	"fmt"

	"github.com/chazu/molsketch/pkg/props"
	"github.com/deadsy/sdfx/sdf"
	"github.com/google/uuid"
)

// Diagram owns a collection of objects, allocates their identifiers, and
// routes edit failures to a Sink. Objects are kept in insertion order,
// which is also paint order.
type Diagram struct {
	UUID uuid.UUID

	nextID  ID
	objects []Object
	byID    map[ID]Object
	sink    Sink
}

// NewDiagram returns an empty diagram. A nil sink discards signals.
func NewDiagram(sink Sink) *Diagram {
	if sink == nil {
		sink = Discard
	}
	return &Diagram{
		UUID:   uuid.New(),
		nextID: 1,
		byID:   make(map[ID]Object),
		sink:   sink,
	}
}

// SetSink replaces the signal sink. A nil sink discards signals.
func (d *Diagram) SetSink(s Sink) {
	if s == nil {
		s = Discard
	}
	d.sink = s
}

// NextID allocates a fresh identifier, unique within this diagram.
func (d *Diagram) NextID() ID {
	id := d.nextID
	d.nextID++
	return id
}

// Add appends o. Its identifier must not already be in use; identifiers
// not obtained from NextID advance the allocator past them.
func (d *Diagram) Add(o Object) error {
	if _, exists := d.byID[o.ID()]; exists {
		return fmt.Errorf("diagram: object %d already exists", o.ID())
	}
	d.objects = append(d.objects, o)
	d.byID[o.ID()] = o
	if o.ID() >= d.nextID {
		d.nextID = o.ID() + 1
	}
	return nil
}

// Create allocates an identifier and adds a default object of kind.
func (d *Diagram) Create(kind Kind) (Object, error) {
	o, err := New(kind, d.NextID())
	if err != nil {
		return nil, err
	}
	return o, d.Add(o)
}

// Remove deletes the object with the given ID, reporting whether it existed.
func (d *Diagram) Remove(id ID) bool {
	if _, ok := d.byID[id]; !ok {
		return false
	}
	delete(d.byID, id)
	for i, o := range d.objects {
		if o.ID() == id {
			d.objects = append(d.objects[:i], d.objects[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the object with the given ID, or nil.
func (d *Diagram) Get(id ID) Object {
	return d.byID[id]
}

// Objects returns the objects in paint order.
func (d *Diagram) Objects() []Object {
	out := make([]Object, len(d.objects))
	copy(out, d.objects)
	return out
}

// Len returns the number of objects.
func (d *Diagram) Len() int {
	return len(d.objects)
}

// Render draws every object onto s in paint order. The first failing
// object ends the pass.
func (d *Diagram) Render(s Surface) error {
	for _, o := range d.objects {
		if err := o.Draw(s); err != nil {
			return fmt.Errorf("diagram: render %s %d: %w", o.Kind(), o.ID(), err)
		}
	}
	return nil
}

// HitTest returns the topmost object whose region contains p.
func (d *Diagram) HitTest(p Point) (Object, bool) {
	for i := len(d.objects) - 1; i >= 0; i-- {
		if d.objects[i].IsHit(p) {
			return d.objects[i], true
		}
	}
	return nil, false
}

// Bounds is the union of object bounds. ok is false for an empty diagram.
func (d *Diagram) Bounds() (b sdf.Box2, ok bool) {
	for i, o := range d.objects {
		if i == 0 {
			b = o.Bounds()
			continue
		}
		b = b.Extend(o.Bounds())
	}
	return b, len(d.objects) > 0
}

// InternalState fetches an object's internal bag for the shell. Failures
// are also sent to the sink.
func (d *Diagram) InternalState(id ID) (*props.Bag, error) {
	return d.state(id, Object.InternalState)
}

// EditableState fetches an object's editable bag for the shell. Failures
// are also sent to the sink.
func (d *Diagram) EditableState(id ID) (*props.Bag, error) {
	return d.state(id, Object.EditableState)
}

func (d *Diagram) state(id ID, get func(Object) (*props.Bag, error)) (*props.Bag, error) {
	o := d.byID[id]
	if o == nil {
		return nil, fmt.Errorf("diagram: no object %d", id)
	}
	b, err := get(o)
	if err != nil {
		d.sink.Notify(err)
		return nil, err
	}
	return b, nil
}

// ApplyEdits submits an edit bag to one object. Type mismatches are
// notified to the user, unrecognized keys only diagnosed; neither stops
// the remaining keys from applying.
func (d *Diagram) ApplyEdits(id ID, b *props.Bag) (props.Report, error) {
	o := d.byID[id]
	if o == nil {
		return props.Report{}, fmt.Errorf("diagram: no object %d", id)
	}
	r := o.ApplyEdits(b)
	for _, e := range r.Invalid {
		d.sink.Notify(e)
	}
	for _, k := range r.Unrecognized {
		d.sink.Diagnose("unrecognized property", "object", int(id), "kind", o.Kind().String(), "key", k)
	}
	return r, nil
}
