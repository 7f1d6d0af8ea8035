package typesystem

// Generalize quantifies every unlinked variable of t whose rank is above
// rank. Because binding lowers ranks, such variables are not reachable from
// any scheme of the enclosing environment.
func Generalize(rank int, t Type) Scheme {
	var ids []uint32
	for _, v := range FreeVars(t) {
		if v.Rank > rank {
			ids = append(ids, v.ID)
		}
	}
	return Scheme{Vars: ids, Body: t}
}

// Instantiate copies the scheme body with fresh variables at rank in place
// of the quantified ones. The fresh variables are also returned in the order
// of s.Vars, which is the order constructor type arguments are recorded in.
func (a *TypeArena) Instantiate(s Scheme, rank int) (Type, []Type) {
	if s.IsMono() {
		return s.Body, nil
	}
	sub := make(map[uint32]Type, len(s.Vars))
	args := make([]Type, len(s.Vars))
	for i, id := range s.Vars {
		v := a.FreshVar(rank)
		sub[id] = v
		args[i] = v
	}
	return a.substitute(s.Body, sub), args
}

// InstantiateWith is Instantiate with caller-chosen replacements.
func (a *TypeArena) InstantiateWith(s Scheme, args []Type) Type {
	if s.IsMono() {
		return s.Body
	}
	sub := make(map[uint32]Type, len(s.Vars))
	for i, id := range s.Vars {
		if i < len(args) {
			sub[id] = args[i]
		}
	}
	return a.substitute(s.Body, sub)
}

// substitute rebuilds only the parts of t that mention a substituted
// variable; everything else is shared with the original.
func (a *TypeArena) substitute(t Type, sub map[uint32]Type) Type {
	switch t := Apply(t).(type) {
	case *TypeVar:
		if r, ok := sub[t.ID]; ok {
			return r
		}
		return t
	case *TCon:
		var args []Type
		for i, arg := range t.Args {
			n := a.substitute(arg, sub)
			if n != Apply(arg) && args == nil {
				args = make([]Type, len(t.Args))
				copy(args, t.Args[:i])
			}
			if args != nil {
				args[i] = n
			}
		}
		if args == nil {
			return t
		}
		return a.Con(t.Tycon, args...)
	case *TRecord:
		rows, changed := a.substituteRows(t.Rows, sub)
		if !changed {
			return t
		}
		return a.Record(rows)
	case *TFlex:
		rows, tail := FlattenRow(t, a.labels)
		out, _ := a.substituteRows(rows, sub)
		if tail == nil {
			return a.Record(out)
		}
		nt := a.substitute(tail, sub)
		switch nt := nt.(type) {
		case *TypeVar:
			return a.Flex(out, nt)
		default:
			// the tail was replaced by a record; merge it in
			more, rest := FlattenRow(nt, a.labels)
			out = append(out, more...)
			if rest == nil {
				return a.Record(out)
			}
			return a.Flex(out, rest)
		}
	}
	return t
}

func (a *TypeArena) substituteRows(rows []Row[Type], sub map[uint32]Type) ([]Row[Type], bool) {
	out := make([]Row[Type], len(rows))
	changed := false
	for i, r := range rows {
		n := a.substitute(r.Data, sub)
		if n != Apply(r.Data) {
			changed = true
		}
		out[i] = Row[Type]{Label: r.Label, Data: n, Span: r.Span}
	}
	return out, changed
}

// LowerRank caps the rank of every free variable of t, so that a later
// Generalize at rank leaves them alone.
func LowerRank(t Type, rank int) {
	adjustRank(t, rank)
}
