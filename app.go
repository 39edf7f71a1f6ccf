package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/chazu/molsketch/pkg/config"
	"github.com/chazu/molsketch/pkg/diagram"
	"github.com/chazu/molsketch/pkg/props"
	"github.com/chazu/molsketch/pkg/render/rastersurface"
	"github.com/chazu/molsketch/pkg/render/svgsurface"
	"github.com/chazu/molsketch/pkg/script"
	"github.com/chazu/molsketch/pkg/store"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// NotifyEvent is the runtime event carrying user-facing edit failures.
const NotifyEvent = "notify"

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx    context.Context
	cfg    *config.Config
	log    *slog.Logger
	engine *script.Engine

	mu      sync.Mutex
	diagram *diagram.Diagram
}

// ObjectData is the JSON-serializable summary of one diagram object.
type ObjectData struct {
	ID     int        `json:"id"`
	Kind   string     `json:"kind"`
	Bounds [4]float64 `json:"bounds"` // minX, minY, maxX, maxY
}

// PropertyData is one Editable Bag entry. Order is significant.
type PropertyData struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of LoadScript.
type EvalResult struct {
	Objects []ObjectData    `json:"objects"`
	Errors  []EvalErrorData `json:"errors"`
}

// EditResult reports what an ApplyEdits call did.
type EditResult struct {
	Applied      []string `json:"applied"`
	Invalid      []string `json:"invalid"`
	Unrecognized []string `json:"unrecognized"`
}

// NewApp creates a new App with an empty diagram.
func NewApp(cfg *config.Config, log *slog.Logger) *App {
	eng := script.NewEngine()
	eng.Atom = cfg.AtomDefaults()
	a := &App{cfg: cfg, log: log, engine: eng}
	a.diagram = diagram.NewDiagram(a.sink())
	return a
}

// startup is called by Wails on app startup. The context is kept for
// runtime event emission.
func (a *App) startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ctx = ctx
}

// appSink logs every signal and forwards user-facing ones to the frontend.
type appSink struct {
	diagram.LogSink
	emit func(msg string)
}

func (s appSink) Notify(err error) {
	s.LogSink.Notify(err)
	s.emit(err.Error())
}

func (a *App) sink() diagram.Sink {
	return appSink{
		LogSink: diagram.LogSink{Logger: a.log},
		emit: func(msg string) {
			// Sinks run with a.mu held; ctx is only written under it.
			if a.ctx != nil {
				runtime.EventsEmit(a.ctx, NotifyEvent, msg)
			}
		},
	}
}

// replace installs d as the current diagram. Caller holds a.mu.
func (a *App) replace(d *diagram.Diagram) {
	d.SetSink(a.sink())
	a.diagram = d
}

func objectData(o diagram.Object) ObjectData {
	b := o.Bounds()
	return ObjectData{
		ID:     int(o.ID()),
		Kind:   o.Kind().String(),
		Bounds: [4]float64{b.Min.X, b.Min.Y, b.Max.X, b.Max.Y},
	}
}

// LoadScript evaluates source and, when it succeeds, makes the result the
// current diagram. On failure the current diagram is kept.
func (a *App) LoadScript(source string) EvalResult {
	result := EvalResult{Objects: []ObjectData{}, Errors: []EvalErrorData{}}

	d, evalErrs, err := a.engine.Evaluate(source)
	var timeout *script.TimeoutError
	switch {
	case errors.As(err, &timeout):
		a.log.Warn("evaluate", "timeout", timeout.Limit)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: fmt.Sprintf("script took longer than %s and was stopped", timeout.Limit),
		})
		return result
	case errors.Is(err, script.ErrSuperseded):
		a.log.Debug("evaluate", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	case err != nil:
		a.log.Error("evaluate", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	a.mu.Lock()
	a.replace(d)
	a.mu.Unlock()

	result.Objects = a.Objects()
	return result
}

// Objects lists the current diagram in paint order.
func (a *App) Objects() []ObjectData {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []ObjectData{}
	for _, o := range a.diagram.Objects() {
		out = append(out, objectData(o))
	}
	return out
}

// HitTest returns the topmost object under (x, y), or nil.
func (a *App) HitTest(x, y float64) *ObjectData {
	a.mu.Lock()
	defer a.mu.Unlock()
	o, ok := a.diagram.HitTest(diagram.Point{X: x, Y: y})
	if !ok {
		return nil
	}
	od := objectData(o)
	return &od
}

// RenderSVG renders the current diagram as an SVG document.
func (a *App) RenderSVG() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var buf strings.Builder
	if err := svgsurface.Render(a.diagram, &buf, a.cfg.Render.Margin); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderPNG renders the current diagram as a base64 PNG data URL.
func (a *App) RenderPNG() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var buf bytes.Buffer
	if err := rastersurface.Render(a.diagram, &buf, a.cfg.Render.Scale, a.cfg.Render.Margin); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// EditableState returns the editable properties of object id, in order.
func (a *App) EditableState(id int) ([]PropertyData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, err := a.diagram.EditableState(diagram.ID(id))
	if err != nil {
		return nil, err
	}
	out := make([]PropertyData, 0, b.Len())
	for k, v := range b.All() {
		out = append(out, PropertyData{Key: k, Value: v})
	}
	return out, nil
}

// ApplyEdits applies edits to object id. JSON numbers and colour strings
// are normalised first; rejected entries are reported, not fatal.
func (a *App) ApplyEdits(id int, edits []PropertyData) (EditResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	o := a.diagram.Get(diagram.ID(id))
	if o == nil {
		return EditResult{}, fmt.Errorf("no object %d", id)
	}
	bag := props.NewBag()
	for _, e := range edits {
		bag.Set(e.Key, e.Value)
	}
	r, err := a.diagram.ApplyEdits(o.ID(), props.Coerce(o.Schema(), bag))
	if err != nil {
		return EditResult{}, err
	}
	res := EditResult{Applied: r.Applied, Invalid: []string{}, Unrecognized: r.Unrecognized}
	for _, pe := range r.Invalid {
		res.Invalid = append(res.Invalid, pe.Key)
	}
	return res, nil
}

// AddAtom places a new atom with the configured defaults at (x, y).
func (a *App) AddAtom(x, y float64) (ObjectData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	spec := a.cfg.AtomDefaults()
	spec.X, spec.Y = x, y
	at := diagram.NewAtom(a.diagram.NextID(), spec)
	if err := a.diagram.Add(at); err != nil {
		return ObjectData{}, err
	}
	return objectData(at), nil
}

// Remove deletes object id and reports whether it existed.
func (a *App) Remove(id int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.diagram.Remove(diagram.ID(id))
}

// SaveYAML returns a snapshot of the current diagram.
func (a *App) SaveYAML() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var buf strings.Builder
	if err := store.Save(a.diagram, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// LoadYAML replaces the current diagram with a snapshot.
func (a *App) LoadYAML(snapshot string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, err := store.Load(strings.NewReader(snapshot), a.sink())
	if err != nil {
		return err
	}
	a.replace(d)
	return nil
}
