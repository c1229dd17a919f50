package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/tehprofessor/corg/internal/logging"
	"github.com/tehprofessor/corg/pkg/convert"
)

// Converter converts a single runbook.
type Converter interface {
	Convert(ctx context.Context, path string, opts convert.Options) (*convert.Outcome, error)
}

// Runner converts runbooks concurrently.
type Runner struct {
	Converter Converter
}

// New creates a Runner using conv.
func New(conv Converter) *Runner {
	return &Runner{Converter: conv}
}

// Run discovers runbooks under opts.Paths and converts them with a worker
// pool. Outcomes are returned in path order regardless of completion order.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}
	return r.RunFiles(ctx, files, opts)
}

// RunFiles converts the given runbooks without discovery.
func (r *Runner) RunFiles(ctx context.Context, files []string, opts Options) (*Result, error) {
	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)

	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	logging.FromContext(ctx).Debug("converting",
		logging.FieldFilesDiscovered, len(files),
		logging.FieldJobs, jobs,
	)

	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, workCh, outCh, opts.Convert)
		}()
	}

	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	// Workers finish out of order.
	outcomes := make(map[string]FileOutcome, len(files))
	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}

	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	return result, nil
}

func (r *Runner) worker(
	ctx context.Context,
	workCh <-chan string,
	outCh chan<- FileOutcome,
	opts convert.Options,
) {
	for path := range workCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		outcome := FileOutcome{Path: path}

		out, err := r.Converter.Convert(ctx, path, opts)
		if err != nil {
			outcome.Error = err
		} else {
			outcome.Outcome = out
		}

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}
