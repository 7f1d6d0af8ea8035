package parser

import (
	"github.com/funvibe/smlc/internal/config"
	"github.com/funvibe/smlc/internal/pipeline"
)

// ParserProcessor parses every file in order with one fixity table, so
// infix declarations carry over from one file to the next.
type ParserProcessor struct {
	Fixity *Fixity
}

func (pp *ParserProcessor) Phase() string { return config.PhaseParse }

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if pp.Fixity == nil {
		pp.Fixity = DefaultFixity()
	}
	for _, file := range ctx.Files {
		p := New(ctx.Tokens[file], pp.Fixity, ctx.Diagnostics)
		ctx.Programs = append(ctx.Programs, p.ParseProgram(file))
	}
	return ctx
}
