package host

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nthnn/ura/domain/entities"
	"github.com/nthnn/ura/domain/errors"
	"github.com/nthnn/ura/domain/ports"
	"github.com/nthnn/ura/hostfuncs"
	"github.com/tetratelabs/wazero/sys"
)

// Loader runs the load pipeline for program names. It holds no state
// between loads apart from a counter naming instances: nothing is cached
// and nothing is retried. A Loader is safe for concurrent use.
type Loader struct {
	source ports.BinarySource
	config loaderConfig
	seq    atomic.Uint64
}

// NewLoader creates a Loader fetching binaries from source.
func NewLoader(source ports.BinarySource, opts ...LoaderOption) *Loader {
	cfg := defaultLoaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Loader{source: source, config: cfg}
}

// EntryPoint returns the export the loader calls.
func (l *Loader) EntryPoint() string {
	return l.config.entryPoint
}

// Load fetches, compiles, instantiates and runs the program called name
// against bridge. It returns once the entry point has returned or a stage
// has failed. The error is one of the staged error types of domain/errors.
func (l *Loader) Load(ctx context.Context, bridge ImportObject, name string) (*entities.LoadResult, error) {
	result := &entities.LoadResult{StartedAt: time.Now(), Name: name}
	logger := l.config.logger.With("program", name)

	req := entities.NewLoadRequest(name)
	l.emit(entities.StageEvent{Name: name, Stage: entities.StageValidate, Phase: entities.PhaseStart})
	if err := req.Validate(); err != nil {
		return nil, l.fail(name, "", entities.StageValidate, &errors.RequestError{Name: name, Err: err})
	}
	l.emit(entities.StageEvent{Name: name, Stage: entities.StageValidate, Phase: entities.PhaseEnd})

	path := req.Path()
	result.Path = path

	// fetch
	l.emit(entities.StageEvent{Name: name, Path: path, Stage: entities.StageFetch, Phase: entities.PhaseStart})
	data, err := l.fetch(ctx, path)
	if err != nil {
		return nil, l.fail(name, path, entities.StageFetch, &errors.RetrievalError{Name: name, Path: path, Err: err})
	}
	result.Size = len(data)
	logger.DebugContext(ctx, "fetched program", "path", path, "size", len(data))
	l.emit(entities.StageEvent{Name: name, Path: path, Stage: entities.StageFetch, Phase: entities.PhaseEnd})

	// compile
	rt := bridge.Runtime()
	l.emit(entities.StageEvent{Name: name, Path: path, Stage: entities.StageCompile, Phase: entities.PhaseStart})
	compiled, err := rt.CompileModule(ctx, data)
	if err != nil {
		return nil, l.fail(name, path, entities.StageCompile, &errors.CompilationError{Name: name, Err: err})
	}
	defer func() { _ = compiled.Close(context.WithoutCancel(ctx)) }()
	l.emit(entities.StageEvent{Name: name, Path: path, Stage: entities.StageCompile, Phase: entities.PhaseEnd})

	// instantiate
	instance := fmt.Sprintf("%s#%d", name, l.seq.Add(1))
	result.Instance = instance
	l.emit(entities.StageEvent{Name: name, Path: path, Stage: entities.StageInstantiate, Phase: entities.PhaseStart})
	mod, err := rt.InstantiateModule(ctx, compiled, bridge.ModuleConfig(name).WithName(instance))
	if err != nil {
		return nil, l.fail(name, path, entities.StageInstantiate, &errors.InstantiationError{Name: name, Instance: instance, Err: err})
	}
	defer func() { _ = mod.Close(context.WithoutCancel(ctx)) }()
	logger.DebugContext(ctx, "instantiated program", "instance", instance)
	l.emit(entities.StageEvent{Name: name, Path: path, Stage: entities.StageInstantiate, Phase: entities.PhaseEnd})

	// run
	entry := l.config.entryPoint
	l.emit(entities.StageEvent{Name: name, Path: path, Stage: entities.StageRun, Phase: entities.PhaseStart})
	fn := mod.ExportedFunction(entry)
	if fn == nil {
		return nil, l.fail(name, path, entities.StageRun, &errors.ExecutionError{Name: name, EntryPoint: entry, Err: errors.ErrEntryPointNotFound})
	}
	if _, err := fn.Call(hostfuncs.WithProgram(ctx, name)); err != nil {
		if execErr := l.classifyRun(ctx, name, err); execErr != nil {
			return nil, l.fail(name, path, entities.StageRun, execErr)
		}
	}
	l.emit(entities.StageEvent{Name: name, Path: path, Stage: entities.StageRun, Phase: entities.PhaseEnd})

	result.Duration = time.Since(result.StartedAt)
	logger.InfoContext(ctx, "program finished", "instance", instance, "duration", result.Duration)
	return result, nil
}

// fetch performs the single retrieval of a load.
func (l *Loader) fetch(ctx context.Context, path string) ([]byte, error) {
	if l.config.fetchTimeout <= 0 {
		return l.source.Fetch(ctx, path)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, l.config.fetchTimeout)
	defer cancel()

	data, err := l.source.Fetch(fetchCtx, path)
	if err != nil && ctx.Err() == nil && stdErrors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %w", &errors.TimeoutError{Operation: "fetch", Target: path, Duration: l.config.fetchTimeout}, err)
	}
	return data, err
}

// classifyRun maps an error from the entry point to an ExecutionError.
// A WASI exit with code 0 is success and yields nil.
func (l *Loader) classifyRun(ctx context.Context, name string, err error) error {
	entry := l.config.entryPoint

	var exitErr *sys.ExitError
	if !stdErrors.As(err, &exitErr) {
		return &errors.ExecutionError{Name: name, EntryPoint: entry, Err: err}
	}

	switch code := exitErr.ExitCode(); {
	case code == 0:
		return nil
	case (code == sys.ExitCodeContextCanceled || code == sys.ExitCodeDeadlineExceeded) && ctx.Err() != nil:
		return &errors.ExecutionError{Name: name, EntryPoint: entry, Err: fmt.Errorf("%w: %w", ctx.Err(), err)}
	default:
		return &errors.ExecutionError{Name: name, EntryPoint: entry, Exited: true, ExitCode: code}
	}
}

func (l *Loader) fail(name, path string, stage entities.Stage, err error) error {
	l.config.logger.Debug("load stage failed", "program", name, "stage", stage.String(), "error", err)
	l.emit(entities.StageEvent{Name: name, Path: path, Stage: stage, Phase: entities.PhaseEnd, Err: err})
	return err
}

func (l *Loader) emit(ev entities.StageEvent) {
	if l.config.observer != nil {
		l.config.observer(ev)
	}
}
