package config

const SourceFileExt = ".sml"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".sml", ".sig", ".fun"}

// IsTestMode indicates if the program is running under go test.
// Set once by test helpers; it disables colour and timing output.
var IsTestMode = false

// Phase names, in pipeline order
const (
	PhaseParse        = "parse"
	PhaseElaborate    = "elaborate"
	PhaseMonomorphize = "monomorphize"
	PhaseFlatten      = "flatten"
)

// Phases lists every phase name in order.
var Phases = []string{PhaseParse, PhaseElaborate, PhaseMonomorphize, PhaseFlatten}

// Project file names, looked up in the working directory
const (
	ProjectFileYAML = "smlc.yaml"
	ProjectFileTOML = "smlc.toml"
)

// Built-in type names
const (
	IntTypeName    = "int"
	RealTypeName   = "real"
	StringTypeName = "string"
	CharTypeName   = "char"
	BoolTypeName   = "bool"
	UnitTypeName   = "unit"
	ListTypeName   = "list"
	RefTypeName    = "ref"
	OptionTypeName = "option"
	ExnTypeName    = "exn"
	ArrowTypeName  = "->"
)

// Built-in constructor names
const (
	TrueCtorName  = "true"
	FalseCtorName = "false"
	UnitCtorName  = "()"
	NilCtorName   = "nil"
	ConsCtorName  = "::"
	RefCtorName   = "ref"
	NoneCtorName  = "NONE"
	SomeCtorName  = "SOME"
)

// Built-in exception names
const (
	MatchExnName     = "Match"
	BindExnName      = "Bind"
	DivExnName       = "Div"
	OverflowExnName  = "Overflow"
	SubscriptExnName = "Subscript"
	SizeExnName      = "Size"
	EmptyExnName     = "Empty"
	OptionExnName    = "Option"
	FailExnName      = "Fail"
)

// ItName is the variable a top-level expression is bound to.
const ItName = "it"
