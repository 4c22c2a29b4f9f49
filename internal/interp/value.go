package interp

import "fmt"

// Value is anything a Plox expression can evaluate to.
type Value interface {
	valueNode()
	String() string
}

type Nil struct{}

func (Nil) valueNode()     {}
func (Nil) String() string { return "nil" }

type Bool bool

func (Bool) valueNode()     {}
func (b Bool) String() string { return fmt.Sprintf("%t", bool(b)) }

type Number float64

func (Number) valueNode() {}
func (n Number) String() string {
	return fmt.Sprintf("%.10g", float64(n))
}

type String string

func (String) valueNode()     {}
func (s String) String() string { return string(s) }

// IsTruthy applies Plox's truthiness rule: nil, false, and the number zero
// are falsy; everything else, including empty strings, is truthy.
func IsTruthy(v Value) bool {
	switch t := v.(type) {
	case Nil:
		return false
	case Bool:
		return bool(t)
	case Number:
		return t != 0
	default:
		return true
	}
}

// Equal implements Plox's `==`: same dynamic type and equal value, with no
// implicit coercion between types.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case *Function:
		bv, ok := b.(*Function)
		return ok && av == bv
	case *Class:
		bv, ok := b.(*Class)
		return ok && av == bv
	case *Instance:
		bv, ok := b.(*Instance)
		return ok && av == bv
	default:
		return false
	}
}
