package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/funvibe/smlc/internal/arena"
	"github.com/funvibe/smlc/internal/ast"
	"github.com/funvibe/smlc/internal/core"
	"github.com/funvibe/smlc/internal/diagnostics"
	"github.com/funvibe/smlc/internal/source"
	"github.com/funvibe/smlc/internal/symbols"
	"github.com/funvibe/smlc/internal/token"
	"github.com/funvibe/smlc/internal/typesystem"
)

// BindingKind says what a top-level name denotes.
type BindingKind uint8

const (
	ValueBinding BindingKind = iota
	ConstructorBinding
	ExceptionBinding
	TypeBinding
)

// Binding is one name introduced at top level, in declaration order.
type Binding struct {
	Name   symbols.Symbol
	Kind   BindingKind
	Scheme typesystem.Scheme
	Span   source.Span
}

// Timing records the cost of one phase.
type Timing struct {
	Phase    string
	Duration time.Duration
	Nodes    int
	Bytes    uint64
}

// PipelineContext carries one compilation through every phase. All files
// share the interner, the arena and the diagnostics.
type PipelineContext struct {
	SessionID   string
	Sources     *source.SourceMap
	Files       []source.FileID
	Interner    *symbols.Interner
	Arena       *core.Arena
	Diagnostics *diagnostics.List

	Tokens   map[source.FileID][]token.Token
	Programs []*ast.Program
	Decls    []core.Decl
	TopLevel []Binding

	StopAfter string
	Timings   []Timing

	lastPhase string
}

// NewContext prepares a compilation of the files already added to sources.
func NewContext(sources *source.SourceMap, files []source.FileID) *PipelineContext {
	in := symbols.NewInterner()
	return &PipelineContext{
		SessionID:   uuid.NewString(),
		Sources:     sources,
		Files:       files,
		Interner:    in,
		Arena:       core.NewArena(in),
		Diagnostics: &diagnostics.List{},
		Tokens:      map[source.FileID][]token.Token{},
	}
}

// Stats reports the memory held by the IR and type arenas.
func (ctx *PipelineContext) Stats() arena.Stats {
	if ctx.Arena == nil {
		return arena.Stats{}
	}
	return ctx.Arena.Stats()
}
