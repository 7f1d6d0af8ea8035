package core

// Inspect traverses the expressions reachable from e in depth-first order,
// descending into declarations of Let. If f returns false the children of
// that node are skipped.
func Inspect(e *Expr, f func(*Expr) bool) {
	if e == nil || !f(e) {
		return
	}
	switch k := e.Kind.(type) {
	case *App:
		Inspect(k.Fn, f)
		Inspect(k.Arg, f)
	case *Case:
		Inspect(k.Scrutinee, f)
		inspectRules(k.Rules, f)
	case *Handle:
		Inspect(k.Body, f)
		inspectRules(k.Rules, f)
	case *Lambda:
		Inspect(k.Body, f)
	case *Let:
		InspectDecls(k.Decls, f)
		Inspect(k.Body, f)
	case *List:
		for _, el := range k.Elems {
			Inspect(el, f)
		}
	case *Raise:
		Inspect(k.Exn, f)
	case *Record:
		for _, r := range k.Rows {
			Inspect(r.Data, f)
		}
	case *Seq:
		for _, x := range k.Exprs {
			Inspect(x, f)
		}
	}
}

// InspectDecls runs Inspect over every expression bound by decls.
func InspectDecls(decls []Decl, f func(*Expr) bool) {
	for _, d := range decls {
		switch d := d.(type) {
		case *FunDecl:
			for _, b := range d.Binds {
				Inspect(b.Lambda.Body, f)
			}
		case *ValDecl:
			Inspect(d.Rule.Expr, f)
		}
	}
}

func inspectRules(rules []Rule, f func(*Expr) bool) {
	for _, r := range rules {
		Inspect(r.Expr, f)
	}
}

// InspectPat traverses a pattern and its sub-patterns.
func InspectPat(p *Pat, f func(*Pat) bool) {
	if p == nil || !f(p) {
		return
	}
	switch k := p.Kind.(type) {
	case *PatApp:
		InspectPat(k.Arg, f)
	case *PatList:
		for _, el := range k.Elems {
			InspectPat(el, f)
		}
	case *PatRecord:
		for _, r := range k.Rows {
			InspectPat(r.Data, f)
		}
	}
}

// BoundVars lists the variables a pattern binds, left to right.
func BoundVars(p *Pat) []*Pat {
	var out []*Pat
	InspectPat(p, func(q *Pat) bool {
		if _, ok := q.Kind.(*PatVar); ok {
			out = append(out, q)
		}
		return true
	})
	return out
}
