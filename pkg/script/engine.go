// Package script provides the sketch scripting language for molsketch.
// It wraps zygomys in a sandboxed environment and produces a Diagram
// from user source code.
package script

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/molsketch/pkg/diagram"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error or a rejected property value.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// DefaultTimeout is the hard limit for a single evaluation.
const DefaultTimeout = 5 * time.Second

// ErrSuperseded is returned by Evaluate when a later call started before
// this one finished. The later call's result is the one to keep.
var ErrSuperseded = errors.New("script: evaluation superseded by newer request")

// TimeoutError is returned by Evaluate when a script runs past the
// engine's limit.
type TimeoutError struct {
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("script: evaluation timed out after %s", e.Limit)
}

// Engine wraps the zygomys interpreter.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	// Atom is the starting state for atoms created by scripts. Keyword
	// arguments are applied on top of it.
	Atom diagram.AtomSpec
	// Timeout bounds each evaluation.
	Timeout time.Duration
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{Atom: diagram.DefaultAtomSpec(), Timeout: DefaultTimeout}
}

type evalResult struct {
	diagram *diagram.Diagram
	errors  []EvalError
	err     error
}

// Evaluate takes script source and produces a new Diagram.
//
// Return semantics:
//   - On success: returns diagram + nil errors + nil error
//   - On parse/eval failure: returns nil diagram + eval errors + nil error
//   - On fatal failure: returns nil + nil + error, a *TimeoutError,
//     ErrSuperseded or a recovered panic
func (e *Engine) Evaluate(source string) (*diagram.Diagram, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	atom, limit := e.Atom, e.Timeout
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		d, evalErrs, err := evaluate(source, atom)
		ch <- evalResult{diagram: d, errors: evalErrs, err: err}
	}()

	return e.await(ch, gen, limit)
}

// await takes the result of evaluation gen from ch. A script still running
// after limit is abandoned; its goroutine sends into the buffered channel
// and exits unread.
func (e *Engine) await(ch <-chan evalResult, gen uint64, limit time.Duration) (*diagram.Diagram, []EvalError, error) {
	if limit <= 0 {
		limit = DefaultTimeout
	}
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case res := <-ch:
		e.mu.Lock()
		stale := gen != e.generation
		e.mu.Unlock()
		if stale {
			return nil, nil, ErrSuperseded
		}
		return res.diagram, res.errors, res.err
	case <-timer.C:
		return nil, nil, &TimeoutError{Limit: limit}
	}
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func evaluate(source string, atom diagram.AtomSpec) (*diagram.Diagram, []EvalError, error) {
	d := diagram.NewDiagram(nil)
	if strings.TrimSpace(source) == "" {
		return d, nil, nil
	}

	// Sandbox mode keeps scripts away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, &builder{d: d, atom: atom})

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return d, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values,
// extracting a line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
