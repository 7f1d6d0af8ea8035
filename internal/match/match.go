// Package match decides exhaustiveness and redundancy of pattern matches
// with the usefulness algorithm over pattern matrices.
//
// A match is exhaustive when the all-wildcard vector is not useful against
// its rules; a rule is redundant when it is not useful against the rules
// above it. When a match is not exhaustive, the algorithm also produces a
// witness: a pattern describing values no rule covers.
package match

import (
	"sort"

	"github.com/funvibe/smlc/internal/builtin"
	"github.com/funvibe/smlc/internal/core"
	"github.com/funvibe/smlc/internal/symbols"
	"github.com/funvibe/smlc/internal/typesystem"
)

// Datatypes finds the constructors of a tycon by id.
type Datatypes interface {
	Datatype(id uint32) (*typesystem.Datatype, bool)
}

// Result is the outcome of checking one match.
type Result struct {
	Exhaustive bool
	// Witness renders an unmatched value when Exhaustive is false.
	Witness string
	// Redundant lists the indices of rules that can never be selected.
	Redundant []int
}

// Checker analyses matches of one compilation.
type Checker struct {
	in        *symbols.Interner
	builtins  *builtin.Registry
	datatypes Datatypes
}

func NewChecker(in *symbols.Interner, builtins *builtin.Registry, datatypes Datatypes) *Checker {
	return &Checker{in: in, builtins: builtins, datatypes: datatypes}
}

// Check analyses the patterns of a match in rule order. Exhaustiveness is
// skipped when exhaustive is false, as for exception handlers.
func (c *Checker) Check(pats []*core.Pat, exhaustive bool) Result {
	rows := make([][]*pattern, 0, len(pats))
	res := Result{Exhaustive: true}
	for i, p := range pats {
		q := []*pattern{c.lower(p)}
		if _, useful := c.useful(rows, q); !useful {
			res.Redundant = append(res.Redundant, i)
		}
		rows = append(rows, q)
	}
	if !exhaustive {
		return res
	}
	if w, useful := c.useful(rows, []*pattern{wild}); useful {
		res.Exhaustive = false
		res.Witness = c.render(w[0], precTop)
	}
	return res
}

// useful reports whether some value matched by q is matched by no row of
// rows, and returns such a value as a pattern vector.
func (c *Checker) useful(rows [][]*pattern, q []*pattern) ([]*pattern, bool) {
	if len(q) == 0 {
		if len(rows) == 0 {
			return nil, true
		}
		return nil, false
	}
	switch head := q[0]; head.kind {
	case kindCon, kindLit, kindRecord:
		h := c.headOf(head, rows)
		w, ok := c.useful(c.specializeRows(rows, h), c.specialize(q, h))
		if !ok {
			return nil, false
		}
		return h.rebuild(w), true
	}

	// q starts with a wildcard: look at the heads used in the first column
	heads := c.columnHeads(rows)
	if len(heads) > 0 && heads[0].kind == kindRecord {
		h := heads[0]
		w, ok := c.useful(c.specializeRows(rows, h), c.specialize(q, h))
		if !ok {
			return nil, false
		}
		return h.rebuild(w), true
	}

	if dt, complete := c.complete(heads); complete {
		for _, dc := range dt.Constructors {
			h := conHead(dc.Con)
			w, ok := c.useful(c.specializeRows(rows, h), c.specialize(q, h))
			if ok {
				return h.rebuild(w), true
			}
		}
		return nil, false
	}

	w, ok := c.useful(defaultRows(rows), q[1:])
	if !ok {
		return nil, false
	}
	return append([]*pattern{c.missing(heads)}, w...), true
}

// head describes the constructor a column is specialised by.
type head struct {
	kind   patternKind
	con    typesystem.Constructor
	lit    core.Literal
	labels []symbols.Symbol
}

func conHead(con typesystem.Constructor) head {
	return head{kind: kindCon, con: con}
}

func (h head) arity() int {
	switch h.kind {
	case kindCon:
		return int(h.con.Arity)
	case kindRecord:
		return len(h.labels)
	}
	return 0
}

func (h head) matches(p *pattern) bool {
	if p.kind != h.kind {
		return false
	}
	switch h.kind {
	case kindCon:
		return p.con.Is(h.con)
	case kindLit:
		return p.lit == h.lit
	}
	return true
}

// rebuild puts the first arity() patterns of w back under the head.
func (h head) rebuild(w []*pattern) []*pattern {
	n := h.arity()
	p := &pattern{kind: h.kind, con: h.con, lit: h.lit, labels: h.labels}
	p.args = append([]*pattern(nil), w[:n]...)
	return append([]*pattern{p}, w[n:]...)
}

// headOf returns the head of a non-wildcard pattern. Record heads cover the
// labels used anywhere in the column.
func (c *Checker) headOf(p *pattern, rows [][]*pattern) head {
	if p.kind == kindRecord {
		return c.recordHead(append([][]*pattern{{p}}, rows...))
	}
	return head{kind: p.kind, con: p.con, lit: p.lit}
}

func (c *Checker) columnHeads(rows [][]*pattern) []head {
	var heads []head
	for _, r := range rows {
		p := r[0]
		if p.kind == kindWild {
			continue
		}
		if p.kind == kindRecord {
			return []head{c.recordHead(rows)}
		}
		h := head{kind: p.kind, con: p.con, lit: p.lit}
		dup := false
		for _, seen := range heads {
			if seen.matches(p) {
				dup = true
				break
			}
		}
		if !dup {
			heads = append(heads, h)
		}
	}
	return heads
}

// recordHead collects the labels of every record pattern in the first
// column, in label order.
func (c *Checker) recordHead(rows [][]*pattern) head {
	var labels []symbols.Symbol
	seen := map[symbols.Symbol]bool{}
	for _, r := range rows {
		if r[0].kind != kindRecord {
			continue
		}
		for _, l := range r[0].labels {
			if !seen[l] {
				seen[l] = true
				labels = append(labels, l)
			}
		}
	}
	sort.Slice(labels, func(i, j int) bool { return c.in.LabelLess(labels[i], labels[j]) })
	return head{kind: kindRecord, labels: labels}
}

// complete reports whether heads name every constructor of their datatype.
// Literal columns and exn are never complete.
func (c *Checker) complete(heads []head) (*typesystem.Datatype, bool) {
	if len(heads) == 0 || heads[0].kind != kindCon {
		return nil, false
	}
	tc := heads[0].con.Tycon
	if tc.ID == builtin.ExnID {
		return nil, false
	}
	dt, ok := c.datatypes.Datatype(tc.ID)
	if !ok {
		return nil, false
	}
	for _, dc := range dt.Constructors {
		found := false
		for _, h := range heads {
			if h.con.Is(dc.Con) {
				found = true
				break
			}
		}
		if !found {
			return dt, false
		}
	}
	return dt, true
}

// missing picks the witness head for a column whose heads are incomplete.
func (c *Checker) missing(heads []head) *pattern {
	if len(heads) == 0 || heads[0].kind != kindCon {
		return wild
	}
	dt, _ := c.complete(heads)
	if dt == nil {
		return wild
	}
	for _, dc := range dt.Constructors {
		used := false
		for _, h := range heads {
			if h.con.Is(dc.Con) {
				used = true
				break
			}
		}
		if !used {
			p := &pattern{kind: kindCon, con: dc.Con}
			if dc.Con.Arity == 1 {
				p.args = []*pattern{wild}
			}
			return p
		}
	}
	return wild
}

// specialize expands the head of q by h; q must match h or be a wildcard.
func (c *Checker) specialize(q []*pattern, h head) []*pattern {
	p := q[0]
	n := h.arity()
	out := make([]*pattern, 0, n+len(q)-1)
	switch {
	case p.kind == kindWild:
		for i := 0; i < n; i++ {
			out = append(out, wild)
		}
	case h.kind == kindRecord:
		for _, l := range h.labels {
			out = append(out, p.field(l))
		}
	default:
		out = append(out, p.args...)
	}
	return append(out, q[1:]...)
}

func (c *Checker) specializeRows(rows [][]*pattern, h head) [][]*pattern {
	var out [][]*pattern
	for _, r := range rows {
		if r[0].kind == kindWild || h.matches(r[0]) {
			out = append(out, c.specialize(r, h))
		}
	}
	return out
}

func defaultRows(rows [][]*pattern) [][]*pattern {
	var out [][]*pattern
	for _, r := range rows {
		if r[0].kind == kindWild {
			out = append(out, r[1:])
		}
	}
	return out
}
