package elaborate

import (
	"github.com/funvibe/smlc/internal/config"
	"github.com/funvibe/smlc/internal/pipeline"
)

// ElaborateProcessor elaborates every parsed program into ctx.Decls and
// records the final top-level environment.
type ElaborateProcessor struct {
	// Context is set after Process for callers that want to query it.
	Context *Context
}

func (ep *ElaborateProcessor) Phase() string { return config.PhaseElaborate }

func (ep *ElaborateProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	ep.Context = New(ctx.Arena, ctx.Diagnostics)
	ctx.Decls = ep.Context.ElaborateProgram(ctx.Programs...)
	ctx.TopLevel = ep.Context.TopLevel()
	return ctx
}
