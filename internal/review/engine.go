package review

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/guard/internal/collect"
	"go.uber.org/zap"
)

// DefaultDelay is the pause between two consecutive analysis calls.
const DefaultDelay = 2 * time.Second

// Source produces the files of a run.
type Source interface {
	Collect(ctx context.Context, root string) ([]collect.FileEntry, error)
}

// Analyzer performs the remote calls.
type Analyzer interface {
	Analyze(ctx context.Context, chunk, instruction string) (string, error)
	Synthesize(ctx context.Context, results []string, instruction string) (string, error)
}

// Store persists the final result and returns where it was written.
type Store interface {
	Save(run *Run) (string, error)
}

// Progress receives user-facing events. Busy starts an activity indicator
// and returns the function that stops it.
type Progress interface {
	Step(step, message string)
	Busy(message string) (stop func())
	Empty()
	Packed(chunks, maxBytes int)
	ChunkStarted(chunk Chunk, total int)
	ChunkDone(chunk Chunk, total int, elapsed time.Duration)
	Result(text string, synthesized bool)
	Saved(path string)
}

// Options tune an Engine.
type Options struct {
	MaxChunkBytes int
	// Delay is the pause between analysis calls. Zero disables it.
	Delay    time.Duration
	Progress Progress
	Logger   *zap.Logger
}

// Engine runs the collect, pack, analyze, synthesize and persist stages.
type Engine struct {
	source   Source
	analyzer Analyzer
	store    Store
	progress Progress
	logger   *zap.Logger

	maxChunkBytes int
	delay         time.Duration
	sleep         func(ctx context.Context, d time.Duration) error
}

// NewEngine creates an Engine. Nil progress and logger are replaced by no-ops.
func NewEngine(source Source, analyzer Analyzer, store Store, opts Options) *Engine {
	e := &Engine{
		source:        source,
		analyzer:      analyzer,
		store:         store,
		progress:      opts.Progress,
		logger:        opts.Logger,
		maxChunkBytes: opts.MaxChunkBytes,
		delay:         opts.Delay,
		sleep:         sleepContext,
	}
	if e.progress == nil {
		e.progress = nopProgress{}
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.maxChunkBytes <= 0 {
		e.maxChunkBytes = DefaultMaxChunkBytes
	}
	return e
}

// Execute drives run to completion. An empty project completes without any
// remote call. Any stage error marks the run failed and is returned wrapped
// with the stage; nothing is persisted in that case.
func (e *Engine) Execute(ctx context.Context, run *Run) (err error) {
	log := e.logger.With(zap.String("run", run.ID))
	defer func() {
		if err != nil {
			run.Status = StatusFailed
			log.Debug("run failed", zap.Error(err))
		}
	}()

	e.progress.Step("1/4", "Scanning and splitting the project...")
	chunks, err := e.collectAndPack(ctx, run.root())
	if err != nil {
		return err
	}
	run.Chunks = chunks
	log.Debug("project packed", zap.Int("chunks", len(chunks)), zap.Int("maxChunkBytes", e.maxChunkBytes))

	if len(chunks) == 0 {
		run.Status = StatusCompletedEmpty
		e.progress.Empty()
		return nil
	}
	e.progress.Packed(len(chunks), e.maxChunkBytes)

	total := len(chunks)
	e.progress.Step("2/4", fmt.Sprintf("AI analysis in progress (%d steps)...", total))
	run.Results = make([]string, 0, total)
	for i, chunk := range chunks {
		result, err := e.analyzeChunk(ctx, run.Instruction, chunk, total)
		if err != nil {
			return fmt.Errorf("analyzing part %d/%d: %w", i+1, total, err)
		}
		run.Results = append(run.Results, result)
		log.Debug("part analyzed", zap.Int("part", i+1), zap.Int("bytes", chunk.Size()))

		if i < total-1 && e.delay > 0 {
			if err := e.sleep(ctx, e.delay); err != nil {
				return fmt.Errorf("waiting before part %d/%d: %w", i+2, total, err)
			}
		}
	}

	if total == 1 {
		e.progress.Step("3/4", "Displaying the single result")
		run.Final = run.Results[0]
	} else {
		e.progress.Step("3/4", "Generating the global synthesis...")
		final, err := e.synthesize(ctx, run.Results, run.Instruction)
		if err != nil {
			return fmt.Errorf("synthesizing %d parts: %w", total, err)
		}
		run.Final = final
		run.Synthesized = true
	}
	e.progress.Result(run.Final, run.Synthesized)

	e.progress.Step("4/4", "Saving and finishing")
	path, err := e.store.Save(run)
	if err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	run.ReportPath = path
	run.Status = StatusCompleted
	e.progress.Saved(path)
	log.Debug("run completed", zap.String("report", path), zap.Duration("elapsed", time.Since(run.StartedAt)))
	return nil
}

func (e *Engine) collectAndPack(ctx context.Context, root string) ([]Chunk, error) {
	stop := e.progress.Busy("Scanning files...")
	defer stop()

	entries, err := e.source.Collect(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("collecting files: %w", err)
	}
	return Pack(entries, e.maxChunkBytes), nil
}

func (e *Engine) analyzeChunk(ctx context.Context, instruction string, chunk Chunk, total int) (string, error) {
	e.progress.ChunkStarted(chunk, total)

	start := time.Now()
	result, err := func() (string, error) {
		stop := e.progress.Busy("The AI is analyzing the code...")
		defer stop()
		return e.analyzer.Analyze(ctx, chunk.Text, ChunkInstruction(instruction, chunk.Index, total))
	}()
	if err != nil {
		return "", err
	}

	e.progress.ChunkDone(chunk, total, time.Since(start))
	return result, nil
}

func (e *Engine) synthesize(ctx context.Context, results []string, instruction string) (string, error) {
	stop := e.progress.Busy("Writing the final report...")
	defer stop()
	return e.analyzer.Synthesize(ctx, results, instruction)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type nopProgress struct{}

func (nopProgress) Step(string, string) {}
func (nopProgress) Busy(string) func() { return func() {} }
func (nopProgress) Empty() {}
func (nopProgress) Packed(int, int) {}
func (nopProgress) ChunkStarted(Chunk, int) {}
func (nopProgress) ChunkDone(Chunk, int, time.Duration) {}
func (nopProgress) Result(string, bool) {}
func (nopProgress) Saved(string) {}
