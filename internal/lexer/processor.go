package lexer

import (
	"github.com/funvibe/smlc/internal/config"
	"github.com/funvibe/smlc/internal/pipeline"
)

type LexerProcessor struct{}

func (lp *LexerProcessor) Phase() string { return config.PhaseParse }

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	for _, file := range ctx.Files {
		l := New(ctx.Sources.Text(file), file)
		ctx.Tokens[file] = l.Tokenize()
		for _, err := range l.Errors() {
			ctx.Diagnostics.Add(err)
		}
	}
	return ctx
}
