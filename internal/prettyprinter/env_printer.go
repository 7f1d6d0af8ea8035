package prettyprinter

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/smlc/internal/pipeline"
	"github.com/funvibe/smlc/internal/symbols"
	"github.com/funvibe/smlc/internal/typesystem"
)

// EnvEntry is one line of the type environment dump.
type EnvEntry struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	Type string `yaml:"type"`
	File uint32 `yaml:"file,omitempty"`
	Pos  uint32 `yaml:"offset"`
}

func kindName(k pipeline.BindingKind) string {
	switch k {
	case pipeline.ConstructorBinding:
		return "con"
	case pipeline.ExceptionBinding:
		return "exception"
	case pipeline.TypeBinding:
		return "type"
	}
	return "val"
}

// Entries renders each binding's scheme with α-normalised variables.
func Entries(names *symbols.Interner, bindings []pipeline.Binding) []EnvEntry {
	p := typesystem.NewPrinter(names)
	out := make([]EnvEntry, len(bindings))
	for i, b := range bindings {
		e := EnvEntry{
			Name: names.Resolve(b.Name),
			Kind: kindName(b.Kind),
			File: uint32(b.Span.File),
			Pos:  b.Span.Lo,
		}
		if b.Kind == pipeline.TypeBinding {
			e.Type = typeDefinition(names, e.Name, b.Scheme)
		} else {
			e.Type = p.Scheme(b.Scheme)
		}
		out[i] = e
	}
	return out
}

// Environment renders the bindings one per line, `val x : int` style.
func Environment(names *symbols.Interner, bindings []pipeline.Binding) string {
	var sb strings.Builder
	for _, e := range Entries(names, bindings) {
		if e.Kind == "type" {
			fmt.Fprintf(&sb, "type %s\n", e.Type)
			continue
		}
		fmt.Fprintf(&sb, "%s %s : %s\n", e.Kind, e.Name, e.Type)
	}
	return sb.String()
}

// EnvironmentYAML renders the bindings as a YAML list.
func EnvironmentYAML(names *symbols.Interner, bindings []pipeline.Binding) (string, error) {
	data, err := yaml.Marshal(Entries(names, bindings))
	if err != nil {
		return "", fmt.Errorf("failed to encode environment: %w", err)
	}
	return string(data), nil
}

// typeDefinition renders a type name with its parameters, and its
// expansion when it abbreviates another type.
func typeDefinition(names *symbols.Interner, name string, s typesystem.Scheme) string {
	p := typesystem.NewPrinter(names)
	byID := make(map[uint32]*typesystem.TypeVar)
	for _, v := range typesystem.FreeVars(s.Body) {
		byID[v.ID] = v
	}
	params := make([]string, len(s.Vars))
	for i, id := range s.Vars {
		v, ok := byID[id]
		if !ok {
			v = &typesystem.TypeVar{ID: id}
		}
		params[i] = p.Type(v)
	}
	head := name
	switch len(params) {
	case 0:
	case 1:
		head = params[0] + " " + name
	default:
		head = "(" + strings.Join(params, ", ") + ") " + name
	}
	if isSelf(names, name, s) {
		return head
	}
	return head + " = " + p.Type(s.Body)
}

// isSelf reports whether s is a datatype applied to its own parameters.
func isSelf(names *symbols.Interner, name string, s typesystem.Scheme) bool {
	con, ok := typesystem.Apply(s.Body).(*typesystem.TCon)
	if !ok || names.Resolve(con.Tycon.Name) != name || len(con.Args) != len(s.Vars) {
		return false
	}
	for i, a := range con.Args {
		v, ok := typesystem.Apply(a).(*typesystem.TypeVar)
		if !ok || v.ID != s.Vars[i] {
			return false
		}
	}
	return true
}
