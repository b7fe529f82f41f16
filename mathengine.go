package woniuimport

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// MathEngine hosts the math typesetter.
type MathEngine interface {
	// Load makes the engine available. Loading a loaded engine is a no-op.
	Load(ctx context.Context) error
	// API returns the typesetting capability, or nil when not loaded.
	API() TypesetAPI
}

// TypesetAPI is one of DirectAPI or QueueAPI.
type TypesetAPI interface {
	typesetAPI()
}

// DirectAPI typesets with a single call (MathJax 3 style).
type DirectAPI struct {
	Typeset func(ctx context.Context) error
}

// QueueAPI typesets by queueing a command (MathJax 2 Hub style).
type QueueAPI struct {
	Queue func(ctx context.Context, command []string) error
}

func (DirectAPI) typesetAPI() {}
func (QueueAPI) typesetAPI()  {}

// TypesetCommand returns the queue command that typesets the whole page.
func TypesetCommand() []string {
	return []string{"Typeset", "MathJax.Hub"}
}

// Typeset runs api once, choosing the call style by its variant.
// Panics in the engine are returned as ErrTypeset.
func Typeset(ctx context.Context, api TypesetAPI) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: internal error: %v", ErrTypeset, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	switch a := api.(type) {
	case nil:
		return fmt.Errorf("%w: math engine not loaded", ErrTypeset)
	case DirectAPI:
		if a.Typeset == nil {
			return fmt.Errorf("%w: no typeset function", ErrTypeset)
		}
		err = a.Typeset(ctx)
	case QueueAPI:
		if a.Queue == nil {
			return fmt.Errorf("%w: no command queue", ErrTypeset)
		}
		err = a.Queue(ctx, TypesetCommand())
	default:
		return fmt.Errorf("%w: unknown API %T", ErrTypeset, api)
	}

	if err != nil && !errors.Is(err, ErrTypeset) {
		return fmt.Errorf("%w: %v", ErrTypeset, err)
	}
	return err
}

// EngineShape selects which TypesetAPI variant a StaticEngine exposes.
type EngineShape int

const (
	ShapeDirect EngineShape = iota
	ShapeQueue
)

// StaticEngine is an in-process MathEngine that records calls.
type StaticEngine struct {
	mu         sync.Mutex
	shape      EngineShape
	loaded     bool
	loadErr    error
	typesetErr error
	loads      int
	typesets   int
	commands   [][]string
}

// StaticEngineOption configures a StaticEngine.
type StaticEngineOption func(*StaticEngine)

// WithShape selects the exposed API variant.
func WithShape(shape EngineShape) StaticEngineOption {
	return func(e *StaticEngine) { e.shape = shape }
}

// WithLoadError makes Load fail with err.
func WithLoadError(err error) StaticEngineOption {
	return func(e *StaticEngine) { e.loadErr = err }
}

// WithTypesetError makes every typeset call fail with err.
func WithTypesetError(err error) StaticEngineOption {
	return func(e *StaticEngine) { e.typesetErr = err }
}

// Preloaded starts the engine loaded.
func Preloaded() StaticEngineOption {
	return func(e *StaticEngine) { e.loaded = true }
}

// NewStaticEngine creates an unloaded direct-call engine.
func NewStaticEngine(opts ...StaticEngineOption) *StaticEngine {
	e := &StaticEngine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load marks the engine loaded.
func (e *StaticEngine) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loads++
	if e.loaded {
		return nil
	}
	if e.loadErr != nil {
		return fmt.Errorf("%w: %v", ErrMathEngineLoad, e.loadErr)
	}
	e.loaded = true
	return nil
}

// API returns the configured variant, or nil before Load.
func (e *StaticEngine) API() TypesetAPI {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return nil
	}
	if e.shape == ShapeQueue {
		return QueueAPI{Queue: e.queue}
	}
	return DirectAPI{Typeset: e.typeset}
}

func (e *StaticEngine) typeset(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.typesets++
	return e.typesetErr
}

func (e *StaticEngine) queue(_ context.Context, command []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.typesets++
	e.commands = append(e.commands, append([]string(nil), command...))
	return e.typesetErr
}

// Loads returns the number of Load calls.
func (e *StaticEngine) Loads() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loads
}

// Typesets returns the number of typeset calls through either variant.
func (e *StaticEngine) Typesets() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.typesets
}

// Commands returns the commands queued through QueueAPI.
func (e *StaticEngine) Commands() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([][]string(nil), e.commands...)
}

var _ MathEngine = (*StaticEngine)(nil)
