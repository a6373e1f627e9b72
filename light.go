package lightcookie

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/lfe999/lightcookie/internal/parallel"
)

// State is the cookie state of a Light.
type State uint8

// Light states.
const (
	// StateIdle means no cookie is set.
	StateIdle State = iota
	// StateLoading means a produce is running.
	StateLoading
	// StateReady means a cookie is installed.
	StateReady
	// StateFailed means the last produce failed and no cookie is installed.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoading:
		return "Loading"
	case StateReady:
		return "Ready"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Result is the outcome of an asynchronous produce.
type Result struct {
	Resource *CookieResource
	Err      error
}

// Light owns the cookie of one light.
//
// Compute (read, decode, stages, cubemap) runs on the caller's goroutine for
// Produce and on a worker pool for ProduceAsync. Installs, clears and binder
// calls run on a single binding worker, one at a time. A newer produce
// supersedes any older one still running: the older one is cancelled and
// reports ErrSuperseded, so the last produce to start wins.
//
// Exactly one CookieResource is live per light. The previous one is released
// after its replacement is bound.
//
// Thread safety: all methods are safe for concurrent use.
type Light struct {
	opts     lightOptions
	pipeline *Pipeline
	compute  *parallel.WorkerPool
	binding  *parallel.WorkerPool

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelCauseFunc
	closed   bool
	state    State
	path     string
	resource *CookieResource
	err      error
}

// NewLight creates a light with no cookie.
//
// Example:
//
//	light := lightcookie.NewLight(lightcookie.WithBinder(binder))
//	defer light.Close()
//
//	res, err := light.Produce(ctx, "cookies/window.png", lightcookie.Spot, lightcookie.DefaultOptions())
func NewLight(opts ...Option) *Light {
	o := defaultLightOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Light{
		opts:     o,
		pipeline: NewPipeline(o.assets, o.maskCacheSize),
		compute:  parallel.NewWorkerPool(o.computeWorkers),
		binding:  parallel.NewWorkerPool(1),
	}
}

// Produce reads path, runs the pipeline for shape and installs the result.
//
// An empty path clears the cookie and returns (nil, nil). On failure the
// light is left with no cookie, its path is reset to "" and an *Error naming
// the failing stage is returned. If a newer produce starts before this one
// installs, this one returns an error of kind ErrSuperseded and changes
// nothing.
func (l *Light) Produce(ctx context.Context, path string, shape LightShape, opts OptionSet) (*CookieResource, error) {
	runCtx, cancel, gen, err := l.begin(ctx, path)
	if err != nil {
		return nil, err
	}
	return l.run(runCtx, cancel, gen, path, shape, opts)
}

// ProduceAsync is Produce running on the light's compute pool. The channel
// receives exactly one Result.
//
// Supersession follows call order: a later ProduceAsync or Produce always
// wins over an earlier one.
func (l *Light) ProduceAsync(ctx context.Context, path string, shape LightShape, opts OptionSet) <-chan Result {
	results := make(chan Result, 1)
	runCtx, cancel, gen, err := l.begin(ctx, path)
	if err != nil {
		results <- Result{Err: err}
		return results
	}

	ok := l.compute.Submit(func() {
		res, err := l.run(runCtx, cancel, gen, path, shape, opts)
		results <- Result{Resource: res, Err: err}
	})
	if !ok {
		cancel(ErrClosed)
		results <- Result{Err: closedError(path)}
	}
	return results
}

// Clear removes the cookie, cancelling any produce in flight.
func (l *Light) Clear(ctx context.Context) error {
	_, err := l.Produce(ctx, "", Directional, DefaultOptions())
	return err
}

// SetWrapMode changes the wrap mode of the installed cookie without
// re-running the pipeline and re-binds it. It is a no-op with no cookie.
func (l *Light) SetWrapMode(mode WrapMode) error {
	if !mode.Valid() {
		return &Error{Kind: ErrValidation, Stage: StageValidate, Err: fmt.Errorf("unknown wrap mode %d", mode)}
	}
	err := l.binding.Call(context.Background(), func() error {
		l.mu.Lock()
		res := l.resource
		l.mu.Unlock()
		if res == nil {
			return nil
		}
		res.setWrapMode(mode)
		Logger().Info("lightcookie: wrap mode changed", "id", res.ID(), "wrap", mode)
		if l.opts.binder != nil {
			return l.opts.binder.Bind(res)
		}
		return nil
	})
	if err != nil {
		return newError(StageInstall, l.Path(), err)
	}
	return nil
}

// State returns the current state.
func (l *Light) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Resource returns the installed cookie, or nil.
func (l *Light) Resource() *CookieResource {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.resource
}

// Path returns the path of the installed cookie. It is "" when no cookie is
// installed or the last produce failed.
func (l *Light) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// Err returns the error of the last failed produce while in StateFailed.
func (l *Light) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Close cancels any produce in flight, releases the cookie and stops the
// light's workers. Close is safe to call multiple times.
func (l *Light) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	if l.cancel != nil {
		l.cancel(ErrClosed)
	}
	// Every run still in flight is now stale.
	l.gen++
	l.mu.Unlock()

	l.compute.Close()
	err := l.binding.Call(context.Background(), func() error {
		l.mu.Lock()
		gen := l.gen
		l.mu.Unlock()
		l.swap(gen, nil, StateIdle, "", nil)
		return nil
	})
	l.binding.Close()
	return err
}

// begin starts a new generation, superseding whatever is in flight.
func (l *Light) begin(ctx context.Context, path string) (context.Context, context.CancelCauseFunc, uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, nil, 0, closedError(path)
	}
	if l.cancel != nil {
		l.cancel(ErrSuperseded)
	}
	runCtx, cancel := context.WithCancelCause(ctx)
	l.gen++
	l.cancel = cancel
	l.state = StateLoading
	return runCtx, cancel, l.gen, nil
}

func (l *Light) run(ctx context.Context, cancel context.CancelCauseFunc, gen uint64, path string, shape LightShape, opts OptionSet) (*CookieResource, error) {
	defer cancel(nil)

	if path == "" {
		return nil, l.install(gen, "", nil)
	}

	data, err := l.read(ctx, path)
	if err != nil {
		return nil, l.fail(ctx, gen, newError(StageRead, path, err))
	}

	res, err := l.pipeline.Process(ctx, data, shape, opts)
	if err != nil {
		return nil, l.fail(ctx, gen, newError(StageDecode, path, err))
	}

	if err := l.install(gen, path, res); err != nil {
		if errors.Is(err, ErrSuperseded) {
			return nil, err
		}
		return nil, l.fail(ctx, gen, newError(StageInstall, path, err))
	}
	return res, nil
}

// read loads path from the configured fs.FS, or from the OS filesystem.
func (l *Light) read(ctx context.Context, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if l.opts.reader != nil {
		data, err = fs.ReadFile(l.opts.reader, path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

// install makes res the live cookie on the binding worker. res == nil clears.
// A stale generation releases res and reports ErrSuperseded.
func (l *Light) install(gen uint64, path string, res *CookieResource) error {
	stale := false
	err := l.binding.Call(context.Background(), func() error {
		l.mu.Lock()
		stale = gen != l.gen
		l.mu.Unlock()
		if stale {
			return nil
		}

		if res != nil && l.opts.binder != nil {
			if err := l.opts.binder.Bind(res); err != nil {
				return err
			}
		}
		state := StateReady
		if res == nil {
			state = StateIdle
		}
		l.swap(gen, res, state, path, nil)
		return nil
	})

	switch {
	case err != nil:
		res.Release()
		return err
	case stale:
		res.Release()
		Logger().Warn("lightcookie: superseded", "path", path)
		return &Error{Kind: ErrSuperseded, Stage: StageInstall, Path: path, Err: ErrSuperseded}
	}

	if res == nil {
		Logger().Info("lightcookie: cleared")
	} else {
		Logger().Info("lightcookie: installed", "path", path, "id", res.ID(),
			"dimension", res.Dimension(), "width", res.Width(), "height", res.Height())
	}
	return nil
}

// fail records e unless the run was superseded or the light closed, in which
// case e is returned re-kinded and the light is left alone.
func (l *Light) fail(ctx context.Context, gen uint64, e *Error) error {
	if cause := context.Cause(ctx); errors.Is(cause, ErrSuperseded) || errors.Is(cause, ErrClosed) {
		Logger().Warn("lightcookie: produce abandoned", "path", e.Path, "stage", e.Stage, "cause", cause)
		return &Error{Kind: cause, Stage: e.Stage, Path: e.Path, Err: cause}
	}

	_ = l.binding.Call(context.Background(), func() error {
		l.mu.Lock()
		stale := gen != l.gen
		l.mu.Unlock()
		if !stale {
			l.swap(gen, nil, StateFailed, "", e)
		}
		return nil
	})
	Logger().Warn("lightcookie: produce failed", "path", e.Path, "stage", e.Stage, "error", e.Err)
	return e
}

// swap replaces the live cookie. It must run on the binding worker.
// State, path and error are only updated if gen is still current, so a newer
// produce keeps showing Loading. The old cookie is unbound when nothing
// replaces it and is always released.
func (l *Light) swap(gen uint64, res *CookieResource, state State, path string, err error) {
	l.mu.Lock()
	old := l.resource
	l.resource = res
	if gen == l.gen {
		l.state = state
		l.path = path
		l.err = err
	}
	l.mu.Unlock()

	if old == nil || old == res {
		return
	}
	if res == nil && l.opts.binder != nil {
		l.opts.binder.Unbind()
	}
	old.Release()
}

func closedError(path string) *Error {
	return &Error{Kind: ErrClosed, Stage: StageInstall, Path: path, Err: ErrClosed}
}
