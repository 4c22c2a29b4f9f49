package interp

import (
	"github.com/dolthub/swiss"
)

// Environment is one frame of the lexical scope chain. Frames are linked by
// Parent; a closure keeps a reference to the frame it was created in rather
// than copying it, so two closures sharing an enclosing scope see each
// other's mutations to it.
type Environment struct {
	Parent *Environment
	values *swiss.Map[string, Value]
}

// NewEnvironment creates a frame whose lookups fall through to parent (nil
// for the global frame).
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{Parent: parent, values: swiss.NewMap[string, Value](8)}
}

// Define binds name in this frame, overwriting any existing binding. Callers
// that must reject redeclaration check HasOwn first.
func (e *Environment) Define(name string, v Value) {
	e.values.Put(name, v)
}

// HasOwn reports whether name is bound directly in this frame, without
// walking to a parent.
func (e *Environment) HasOwn(name string) bool {
	_, ok := e.values.Get(name)
	return ok
}

// Get looks up name starting in this frame and walking out through parents.
func (e *Environment) Get(name string) (Value, bool) {
	if v, ok := e.values.Get(name); ok {
		return v, true
	}
	if e.Parent != nil {
		return e.Parent.Get(name)
	}
	return nil, false
}

// GetAt looks up name exactly `distance` frames out, the form the resolver's
// distance map calls for.
func (e *Environment) GetAt(distance int, name string) (Value, bool) {
	return e.ancestor(distance).values.Get(name)
}

// AssignAt assigns to an existing binding exactly `distance` frames out.
func (e *Environment) AssignAt(distance int, name string, v Value) {
	e.ancestor(distance).values.Put(name, v)
}

func (e *Environment) ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.Parent
	}
	return env
}

// Assign sets an existing binding found by walking the parent chain, for
// names the resolver left unresolved (globals).
func (e *Environment) Assign(name string, v Value) bool {
	if _, ok := e.values.Get(name); ok {
		e.values.Put(name, v)
		return true
	}
	if e.Parent != nil {
		return e.Parent.Assign(name, v)
	}
	return false
}
