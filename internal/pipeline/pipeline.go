package pipeline

import "time"

// Processor is one stage of the compiler.
type Processor interface {
	// Phase names the stage for timings and for stopping early. Consecutive
	// processors may share a phase.
	Phase() string
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. It stops once the phase named by ctx.StopAfter
// is complete, and before any phase that would run on a program that
// already has errors.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for i, processor := range p.processors {
		phase := processor.Phase()
		if ctx.Diagnostics.HasErrors() && phase != ctx.lastPhase {
			break
		}
		start := time.Now()
		before := ctx.Stats()
		ctx = processor.Process(ctx)
		after := ctx.Stats()
		ctx.record(Timing{
			Phase:    phase,
			Duration: time.Since(start),
			Nodes:    after.Nodes - before.Nodes,
			Bytes:    after.Bytes - before.Bytes,
		})
		ctx.lastPhase = phase
		last := i+1 == len(p.processors) || p.processors[i+1].Phase() != phase
		if ctx.StopAfter != "" && phase == ctx.StopAfter && last {
			break
		}
	}
	return ctx
}

// record adds a timing, merging it into the previous one of the same phase.
func (ctx *PipelineContext) record(t Timing) {
	if n := len(ctx.Timings); n > 0 && ctx.Timings[n-1].Phase == t.Phase {
		prev := &ctx.Timings[n-1]
		prev.Duration += t.Duration
		prev.Nodes += t.Nodes
		prev.Bytes += t.Bytes
		return
	}
	ctx.Timings = append(ctx.Timings, t)
}

// LastPhase names the last phase that ran.
func (ctx *PipelineContext) LastPhase() string {
	return ctx.lastPhase
}
