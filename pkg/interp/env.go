package interp

// Function is a function made visible by an include.
type Function struct {
	Name     string `json:"name" yaml:"name"`
	Location string `json:"location" yaml:"location"`
}

// Env is the interpreter environment. Entries are only ever appended;
// including the same header twice appends its functions twice.
type Env struct {
	functions []Function
}

// NewEnv returns an empty environment.
func NewEnv() *Env {
	return &Env{}
}

func (e *Env) add(fn Function) {
	e.functions = append(e.functions, fn)
}

// Len returns the number of entries.
func (e *Env) Len() int {
	if e == nil {
		return 0
	}
	return len(e.functions)
}

// Lookup returns the first entry named name.
func (e *Env) Lookup(name string) (Function, bool) {
	if e == nil {
		return Function{}, false
	}
	for _, fn := range e.functions {
		if fn.Name == name {
			return fn, true
		}
	}
	return Function{}, false
}

// Functions returns a copy of every entry in insertion order.
func (e *Env) Functions() []Function {
	if e == nil {
		return nil
	}
	return append([]Function(nil), e.functions...)
}

// Clone returns an independent copy of the environment.
func (e *Env) Clone() *Env {
	return &Env{functions: e.Functions()}
}
