package typesystem

// Unify makes t1 and t2 equal by linking type variables. On failure some
// links made before the conflict may remain; callers recover by giving the
// offending node a fresh type.
func (a *TypeArena) Unify(t1, t2 Type) error {
	if err := a.unify(t1, t2); err != nil {
		return err
	}
	return nil
}

func (a *TypeArena) unify(t1, t2 Type) *UnifyError {
	t1, t2 = Apply(t1), Apply(t2)
	if t1 == t2 {
		return nil
	}

	if v, ok := t1.(*TypeVar); ok {
		return a.bindVar(v, t2)
	}
	if v, ok := t2.(*TypeVar); ok {
		return a.bindVar(v, t1)
	}

	switch t1 := t1.(type) {
	case *TCon:
		c2, ok := t2.(*TCon)
		if !ok || !t1.Tycon.Is(c2.Tycon) {
			return mismatch(t1, t2)
		}
		if len(t1.Args) != len(c2.Args) {
			return &UnifyError{Kind: TyconArity, Tycon: t1.Tycon, Expected: len(t1.Args), Got: len(c2.Args)}
		}
		for i := range t1.Args {
			if err := a.unify(t1.Args[i], c2.Args[i]); err != nil {
				if err.Kind == Mismatch {
					return mismatch(t1, c2)
				}
				return err
			}
		}
		return nil
	case *TRecord, *TFlex:
		switch t2.(type) {
		case *TRecord, *TFlex:
			return a.unifyRows(t1, t2)
		}
	}
	return mismatch(t1, t2)
}

// bindVar links v to t after the occurs check. Every variable of t is
// lowered to v's rank so that generalization never quantifies a variable
// reachable from an outer binding.
func (a *TypeArena) bindVar(v *TypeVar, t Type) *UnifyError {
	if u, ok := t.(*TypeVar); ok {
		if u.Rank > v.Rank {
			u.Rank = v.Rank
		}
		v.bind(u)
		return nil
	}
	if occurs(v, t) {
		return &UnifyError{Kind: Occurs, Var: v, Right: t}
	}
	adjustRank(t, v.Rank)
	v.bind(t)
	return nil
}

func occurs(v *TypeVar, t Type) bool {
	switch t := Apply(t).(type) {
	case *TypeVar:
		return t == v
	case *TCon:
		for _, arg := range t.Args {
			if occurs(v, arg) {
				return true
			}
		}
	case *TRecord:
		for _, r := range t.Rows {
			if occurs(v, r.Data) {
				return true
			}
		}
	case *TFlex:
		for _, r := range t.Rows {
			if occurs(v, r.Data) {
				return true
			}
		}
		return occurs(v, t.Tail)
	}
	return false
}

func adjustRank(t Type, rank int) {
	switch t := Apply(t).(type) {
	case *TypeVar:
		if t.Rank > rank {
			t.Rank = rank
		}
	case *TCon:
		for _, arg := range t.Args {
			adjustRank(arg, rank)
		}
	case *TRecord:
		for _, r := range t.Rows {
			adjustRank(r.Data, rank)
		}
	case *TFlex:
		for _, r := range t.Rows {
			adjustRank(r.Data, rank)
		}
		adjustRank(t.Tail, rank)
	}
}

// unifyRows handles the four combinations of closed and open records.
func (a *TypeArena) unifyRows(t1, t2 Type) *UnifyError {
	rows1, tail1 := FlattenRow(t1, a.labels)
	rows2, tail2 := FlattenRow(t2, a.labels)

	// 1. Split labels into shared pairs and the residue of each side
	var shared [][2]Type
	var only1, only2 []Row[Type]
	i, j := 0, 0
	for i < len(rows1) || j < len(rows2) {
		switch {
		case j == len(rows2) || (i < len(rows1) && a.labels.LabelLess(rows1[i].Label, rows2[j].Label)):
			only1 = append(only1, rows1[i])
			i++
		case i == len(rows1) || a.labels.LabelLess(rows2[j].Label, rows1[i].Label):
			only2 = append(only2, rows2[j])
			j++
		default:
			shared = append(shared, [2]Type{rows1[i].Data, rows2[j].Data})
			i++
			j++
		}
	}

	// 2. Check the residues against the tails
	switch {
	case tail1 != nil && tail1 == tail2:
		if len(only1) > 0 || len(only2) > 0 {
			return &UnifyError{Kind: RowArity, Left: t1, Right: t2}
		}
	case tail1 == nil && tail2 == nil:
		if l, ok := firstLabel(only1, only2, a.labels); ok {
			return &UnifyError{Kind: MissingLabel, Label: l.Label}
		}
	case tail1 == nil:
		if len(only2) > 0 {
			return &UnifyError{Kind: MissingLabel, Label: only2[0].Label}
		}
	case tail2 == nil:
		if len(only1) > 0 {
			return &UnifyError{Kind: MissingLabel, Label: only1[0].Label}
		}
	}

	// 3. Unify the shared fields
	for _, p := range shared {
		if err := a.unify(p[0], p[1]); err != nil {
			return err
		}
	}

	// 4. Link the tails to whatever the other side still has
	switch {
	case tail1 != nil && tail1 == tail2:
		return nil
	case tail1 == nil && tail2 == nil:
		return nil
	case tail1 == nil:
		return a.linkTail(tail2, a.Record(only1))
	case tail2 == nil:
		return a.linkTail(tail1, a.Record(only2))
	}

	rank := tail1.Rank
	if tail2.Rank < rank {
		rank = tail2.Rank
	}
	fresh := a.FreshVar(rank)
	if err := a.linkTail(tail1, a.residue(only2, fresh)); err != nil {
		return err
	}
	return a.linkTail(tail2, a.residue(only1, fresh))
}

// linkTail binds a row tail, falling back to unification when unifying a
// shared field already linked it.
func (a *TypeArena) linkTail(tail *TypeVar, t Type) *UnifyError {
	if tail.IsLinked() {
		return a.unify(tail, t)
	}
	return a.bindVar(tail, t)
}

func (a *TypeArena) residue(rows []Row[Type], tail *TypeVar) Type {
	if len(rows) == 0 {
		return tail
	}
	return a.Flex(rows, tail)
}

func firstLabel(xs, ys []Row[Type], order LabelOrder) (Row[Type], bool) {
	switch {
	case len(xs) == 0 && len(ys) == 0:
		return Row[Type]{}, false
	case len(xs) == 0:
		return ys[0], true
	case len(ys) == 0:
		return xs[0], true
	case order.LabelLess(ys[0].Label, xs[0].Label):
		return ys[0], true
	}
	return xs[0], true
}
