package interp

import (
	"fmt"

	"github.com/dolthub/swiss"
	"github.com/sdecook/plox/internal/ast"
	"github.com/sdecook/plox/internal/ploxerr"
)

// Callable is anything that can appear as the callee of a Call expression.
type Callable interface {
	Value
	Call(interp *Interp, args []Value) (Value, error)
	Arity() int
}

// Function is a Plox function or method: its declaration plus the frame it
// closed over at definition time.
type Function struct {
	decl        *ast.FuncDecl
	closure     *Environment
	isInitializer bool
}

func (*Function) valueNode() {}
func (f *Function) String() string {
	return fmt.Sprintf("<fn %s: %d>", f.decl.Name, f.Arity())
}

func (f *Function) Arity() int { return len(f.decl.Params) }

// Call runs the function body in a fresh frame parented to its closure. A
// Return signal short-circuits the body; falling off the end returns nil,
// except for __init__, which always returns the bound instance.
func (f *Function) Call(in *Interp, args []Value) (result Value, err error) {
	env := NewEnvironment(f.closure)
	for i, param := range f.decl.Params {
		env.Define(param.Lexeme, args[i])
	}

	result = Nil{}
	sig, err := in.execBlock(f.decl.Body, env)
	if err != nil {
		return nil, err
	}
	if ret, ok := sig.(returnSignal); ok {
		result = ret.value
	}

	if f.isInitializer {
		this, _ := f.closure.Get("this")
		return this, nil
	}
	return result, nil
}

// bind produces a copy of f with a new enclosing frame that binds "this" to
// instance, the mechanism method dispatch uses to give every call its
// receiver without threading it through every parameter list.
func (f *Function) bind(instance *Instance) *Function {
	env := NewEnvironment(f.closure)
	env.Define("this", instance)
	return &Function{decl: f.decl, closure: env, isInitializer: f.isInitializer}
}

// Class is a Plox class value: a name, an optional superclass, and its own
// (non-inherited) methods.
type Class struct {
	Name       string
	Super      *Class
	methods    map[string]*Function
}

func NewClass(name string, super *Class, methods map[string]*Function) *Class {
	return &Class{Name: name, Super: super, methods: methods}
}

func (*Class) valueNode() {}
func (c *Class) String() string { return c.Name }

// FindMethod walks the superclass chain looking for name, own methods first.
func (c *Class) FindMethod(name string) *Function {
	if m, ok := c.methods[name]; ok {
		return m
	}
	if c.Super != nil {
		return c.Super.FindMethod(name)
	}
	return nil
}

// Arity defers to __init__'s arity, or zero if the class declares none.
func (c *Class) Arity() int {
	if init := c.FindMethod("__init__"); init != nil {
		return init.Arity()
	}
	return 0
}

// Call constructs an instance and, if the class (or an ancestor) declares
// __init__, runs it bound to the new instance before returning it.
func (c *Class) Call(in *Interp, args []Value) (Value, error) {
	instance := NewInstance(c)
	if init := c.FindMethod("__init__"); init != nil {
		if _, err := init.bind(instance).Call(in, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// Instance is one object of a Class, with its own mutable field map.
type Instance struct {
	class  *Class
	fields *swiss.Map[string, Value]
}

func NewInstance(class *Class) *Instance {
	return &Instance{class: class, fields: swiss.NewMap[string, Value](4)}
}

func (*Instance) valueNode() {}
func (i *Instance) String() string {
	return fmt.Sprintf("<instance of %s>", i.class.Name)
}

// Get reads a field first, then falls back to a bound method. The returned
// error is a *ploxerr.RuntimeError for an unknown property.
func (i *Instance) Get(name string, line int) (Value, error) {
	if v, ok := i.fields.Get(name); ok {
		return v, nil
	}
	if method := i.class.FindMethod(name); method != nil {
		return method.bind(i), nil
	}
	return nil, ploxerr.NewRuntime(line, "Undefined property '%s'.", name)
}

func (i *Instance) Set(name string, v Value) {
	i.fields.Put(name, v)
}
