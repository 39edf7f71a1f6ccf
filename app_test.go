package main

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/chazu/molsketch/pkg/config"
	"github.com/chazu/molsketch/pkg/diagram"
)

func testConfig() *config.Config {
	return &config.Config{
		Window: config.WindowConfig{Width: 800, Height: 600},
		Atom:   config.AtomConfig{FontFamily: "Arial", FontSize: 16, Colour: diagram.DefaultColour},
		Render: config.RenderConfig{Margin: 10, Scale: 1},
		Log:    config.LogConfig{Level: slog.LevelDebug},
	}
}

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := testConfig()
	var logs bytes.Buffer
	return NewApp(cfg, cfg.Logger(&logs)), &logs
}

// TestE2EWaterExample exercises the full pipeline: script source -> engine ->
// diagram -> SVG. This is the path the Wails bindings take, without the
// Wails runtime.
func TestE2EWaterExample(t *testing.T) {
	app, _ := newTestApp(t)

	source, err := os.ReadFile("examples/water.mol")
	if err != nil {
		t.Fatalf("failed to read water.mol: %v", err)
	}

	result := app.LoadScript(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	wantKinds := []string{"atom", "atom", "atom", "bond", "bond", "label"}
	if len(result.Objects) != len(wantKinds) {
		t.Fatalf("expected %d objects, got %d", len(wantKinds), len(result.Objects))
	}
	for i, o := range result.Objects {
		if o.Kind != wantKinds[i] {
			t.Errorf("object %d: kind = %q, want %q", i, o.Kind, wantKinds[i])
		}
		if o.ID != i+1 {
			t.Errorf("object %d: id = %d, want %d", i, o.ID, i+1)
		}
	}

	svg, err := app.RenderSVG()
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	for _, want := range []string{">O</text>", ">2-</text>", ">H</text>", ">water</text>"} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 lone-electron dots, got %d", n)
	}

	png, err := app.RenderPNG()
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	if !strings.HasPrefix(png, "data:image/png;base64,") {
		t.Errorf("unexpected PNG data URL prefix: %.30s", png)
	}
}

func TestE2EEmptySource(t *testing.T) {
	app, _ := newTestApp(t)
	result := app.LoadScript("")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(result.Errors))
	}
	if result.Objects == nil || result.Errors == nil {
		t.Error("result slices should be non-nil so JSON carries [] not null")
	}
}

func TestE2ESyntaxErrorKeepsDiagram(t *testing.T) {
	app, _ := newTestApp(t)
	if r := app.LoadScript(`(atom "N")`); len(r.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}

	result := app.LoadScript("(atom \"O\"\n(+ 1")
	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if len(result.Objects) != 0 {
		t.Errorf("expected no objects in a failed result, got %d", len(result.Objects))
	}
	if got := app.Objects(); len(got) != 1 {
		t.Errorf("previous diagram should survive a failed load, got %d objects", len(got))
	}
}

func TestE2ETimeoutReportedAndKeepsDiagram(t *testing.T) {
	app, logs := newTestApp(t)
	if r := app.LoadScript(`(atom "N")`); len(r.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}

	// Building the sandbox alone takes longer than this.
	app.engine.Timeout = time.Nanosecond
	result := app.LoadScript(`(atom "O")`)
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
	if msg := result.Errors[0].Message; !strings.Contains(msg, "took longer than 1ns") {
		t.Errorf("unexpected message: %q", msg)
	}
	if !strings.Contains(logs.String(), "timeout=1ns") {
		t.Errorf("timeout not logged: %s", logs.String())
	}
	if got := app.Objects(); len(got) != 1 {
		t.Errorf("previous diagram should survive a timeout, got %d objects", len(got))
	}
}

func TestE2EHitTest(t *testing.T) {
	app, _ := newTestApp(t)
	source, err := os.ReadFile("examples/water.mol")
	if err != nil {
		t.Fatal(err)
	}
	app.LoadScript(string(source))

	hit := app.HitTest(30, 95)
	if hit == nil || hit.Kind != "label" {
		t.Fatalf("expected the label, got %+v", hit)
	}
	if app.HitTest(500, 500) != nil {
		t.Error("expected no hit far outside the diagram")
	}
}
