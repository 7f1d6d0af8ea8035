// Package symbols interns identifiers into opaque Symbol handles.
//
// A Symbol is only meaningful together with the Interner that produced it.
// Equality of symbols is equality of ids, so comparisons are case-significant
// and never touch the underlying strings.
package symbols

import (
	"fmt"
	"strconv"
)

// Symbol is an interned identifier.
type Symbol uint32

// Interner maps strings to symbols and back. The zero Symbol is reserved for
// the empty string.
type Interner struct {
	ids     map[string]Symbol
	strs    []string
	gensyms int
}

func NewInterner() *Interner {
	return WithCapacity(256)
}

// WithCapacity preallocates room for n symbols.
func WithCapacity(n int) *Interner {
	in := &Interner{
		ids:  make(map[string]Symbol, n),
		strs: make([]string, 0, n),
	}
	in.Intern("")
	return in
}

// Intern returns the symbol for s, allocating one if needed.
func (in *Interner) Intern(s string) Symbol {
	if sym, ok := in.ids[s]; ok {
		return sym
	}
	sym := Symbol(len(in.strs))
	in.strs = append(in.strs, s)
	in.ids[s] = sym
	return sym
}

// Lookup returns the symbol for s without interning it.
func (in *Interner) Lookup(s string) (Symbol, bool) {
	sym, ok := in.ids[s]
	return sym, ok
}

// Resolve returns the string a symbol was interned from.
func (in *Interner) Resolve(sym Symbol) string {
	if int(sym) >= len(in.strs) {
		panic(fmt.Sprintf("symbols: unknown symbol %d", sym))
	}
	return in.strs[sym]
}

// Gensym returns a fresh symbol that cannot collide with any source
// identifier: the generated name starts with '$'.
func (in *Interner) Gensym(hint string) Symbol {
	in.gensyms++
	return in.Intern("$" + hint + strconv.Itoa(in.gensyms))
}

// Len returns the number of interned symbols.
func (in *Interner) Len() int {
	return len(in.strs)
}

// Tuple returns the label symbol for tuple position i (1-based).
func (in *Interner) Tuple(i int) Symbol {
	return in.Intern(strconv.Itoa(i))
}

// LabelLess orders record labels: numeric labels first by value, then
// alphanumeric labels by their bytes.
func (in *Interner) LabelLess(a, b Symbol) bool {
	if a == b {
		return false
	}
	sa, sb := in.Resolve(a), in.Resolve(b)
	na, aNum := numericLabel(sa)
	nb, bNum := numericLabel(sb)
	switch {
	case aNum && bNum:
		return na < nb
	case aNum:
		return true
	case bNum:
		return false
	}
	return sa < sb
}

func numericLabel(s string) (int, bool) {
	if s == "" || s[0] == '0' {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
