package typesystem

// DataCon is one constructor of a datatype with its payload type, which is
// nil for constant constructors.
type DataCon struct {
	Con     Constructor
	Payload Type
}

// Datatype is a datatype declaration after elaboration. Params are the
// declared type variables; payloads mention no other variables.
type Datatype struct {
	Tycon        Tycon
	Params       []*TypeVar
	Constructors []DataCon
}

// Vars returns the ids of the declared type variables.
func (dt *Datatype) Vars() []uint32 {
	ids := make([]uint32, len(dt.Params))
	for i, p := range dt.Params {
		ids[i] = p.ID
	}
	return ids
}

// Find returns the constructor entry with the given tag.
func (dt *Datatype) Find(tag uint16) (DataCon, bool) {
	for _, dc := range dt.Constructors {
		if dc.Con.Tag == tag {
			return dc, true
		}
	}
	return DataCon{}, false
}

// Result builds the datatype applied to its own parameters.
func (a *TypeArena) Result(dt *Datatype) Type {
	args := make([]Type, len(dt.Params))
	for i, p := range dt.Params {
		args[i] = p
	}
	return a.Con(dt.Tycon, args...)
}

// ConstructorScheme returns the scheme of a constructor used as a value:
// the datatype itself for constants, payload -> datatype otherwise.
func (a *TypeArena) ConstructorScheme(dt *Datatype, dc DataCon) Scheme {
	var body Type = a.Result(dt)
	if dc.Payload != nil {
		body = a.Arrow(dc.Payload, body)
	}
	return Scheme{Vars: dt.Vars(), Body: body}
}
