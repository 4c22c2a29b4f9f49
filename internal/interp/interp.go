// Package interp is the tree-walking evaluator: given a resolved program it
// executes statements and evaluates expressions directly against the AST,
// using the resolver's distance map to jump straight to the right scope
// frame instead of searching by name.
package interp

import (
	"strconv"

	"github.com/sdecook/plox/internal/ast"
	"github.com/sdecook/plox/internal/ploxerr"
	"github.com/sdecook/plox/internal/token"
)

// Printer receives everything a `print` statement produces. The CLI wires
// this to stdout; tests wire it to a buffer.
type Printer interface {
	Print(s string)
}

type Interp struct {
	globals *Environment
	env     *Environment
	locals  map[int]int
	out     Printer
}

func New(locals map[int]int, out Printer) *Interp {
	globals := NewEnvironment(nil)
	return &Interp{globals: globals, env: globals, locals: locals, out: out}
}

// AddLocals merges another resolver pass's distance map into this
// interpreter's own. A REPL session resolves each line independently but
// keeps one Interp (and so one global frame) alive across lines; since AST
// node ids are unique for the process's lifetime, the maps never collide.
func (in *Interp) AddLocals(locals map[int]int) {
	for id, dist := range locals {
		in.locals[id] = dist
	}
}

// Run executes a resolved program's top-level statements in the global
// frame. echoed reports whether the last top-level statement was a bare
// expression statement, in which case value is what it evaluated to (the
// REPL echo uses this); otherwise value is meaningless. A
// *ploxerr.RuntimeError is returned as err on the first runtime failure;
// execution stops there, matching the pipeline's fail-stop rule.
func (in *Interp) Run(stmts []ast.Stmt) (value Value, echoed bool, err error) {
	for _, s := range stmts {
		echoed = false
		if es, ok := s.(*ast.ExprStmt); ok {
			v, err := in.eval(es.Expr)
			if err != nil {
				return nil, false, err
			}
			value, echoed = v, true
			continue
		}
		if _, err := in.exec(s); err != nil {
			return nil, false, err
		}
	}
	return value, echoed, nil
}

// ---- Statement execution ----

func (in *Interp) exec(s ast.Stmt) (signal, error) {
	switch n := s.(type) {
	case *ast.VarDecl:
		if in.env.HasOwn(n.Name) {
			return nil, ploxerr.NewRuntime(n.Line, "Already a variable named '%s' in this scope.", n.Name)
		}
		v := Value(Nil{})
		if n.Initializer != nil {
			var err error
			v, err = in.eval(n.Initializer)
			if err != nil {
				return nil, err
			}
		}
		in.env.Define(n.Name, v)
		return nil, nil

	case *ast.FuncDecl:
		fn := &Function{decl: n, closure: in.env, isInitializer: n.IsInitializer}
		in.env.Define(n.Name, fn)
		return nil, nil

	case *ast.ClassDecl:
		return in.execClassDecl(n)

	case *ast.ExprStmt:
		_, err := in.eval(n.Expr)
		return nil, err

	case *ast.PrintStmt:
		v, err := in.eval(n.Expr)
		if err != nil {
			return nil, err
		}
		in.out.Print(v.String())
		return nil, nil

	case *ast.Block:
		return in.execBlock(n.Stmts, NewEnvironment(in.env))

	case *ast.If:
		cond, err := in.eval(n.Cond)
		if err != nil {
			return nil, err
		}
		if IsTruthy(cond) {
			return in.exec(n.Then)
		}
		if n.Else != nil {
			return in.exec(n.Else)
		}
		return nil, nil

	case *ast.While:
		for {
			cond, err := in.eval(n.Cond)
			if err != nil {
				return nil, err
			}
			if !IsTruthy(cond) {
				return nil, nil
			}
			sig, err := in.exec(n.Body)
			if err != nil {
				return nil, err
			}
			if _, ok := sig.(breakSignal); ok {
				return nil, nil
			}
			if sig != nil {
				return sig, nil
			}
		}

	case *ast.Return:
		v := Value(Nil{})
		if n.Value != nil {
			var err error
			v, err = in.eval(n.Value)
			if err != nil {
				return nil, err
			}
		}
		return returnSignal{value: v}, nil

	case *ast.Break:
		return breakSignal{}, nil

	default:
		panic("interp: unhandled statement node")
	}
}

// execBlock runs stmts in env, restoring the interpreter's current frame
// before returning regardless of how the block exits (normal, return, or
// break) so a call or loop iteration never leaks a frame into its caller.
func (in *Interp) execBlock(stmts []ast.Stmt, env *Environment) (signal, error) {
	previous := in.env
	in.env = env
	defer func() { in.env = previous }()

	for _, s := range stmts {
		sig, err := in.exec(s)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			return sig, nil
		}
	}
	return nil, nil
}

func (in *Interp) execClassDecl(n *ast.ClassDecl) (signal, error) {
	var super *Class
	if n.Super != nil {
		v, err := in.eval(n.Super)
		if err != nil {
			return nil, err
		}
		sc, ok := v.(*Class)
		if !ok {
			return nil, ploxerr.NewRuntime(n.Line, "Superclass '%s' must be a class.", n.Super.Name.Lexeme)
		}
		super = sc
	}

	in.env.Define(n.Name, Nil{})

	classEnv := in.env
	if super != nil {
		classEnv = NewEnvironment(in.env)
		classEnv.Define("super", super)
	}

	methods := make(map[string]*Function, len(n.Methods))
	for _, m := range n.Methods {
		methods[m.Name] = &Function{decl: m, closure: classEnv, isInitializer: m.IsInitializer}
	}

	class := NewClass(n.Name, super, methods)
	in.env.Assign(n.Name, class)
	return nil, nil
}

// ---- Expression evaluation ----

func (in *Interp) eval(e ast.Expr) (Value, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return in.evalLiteral(n)

	case *ast.Grouping:
		return in.eval(n.Expr)

	case *ast.Unary:
		return in.evalUnary(n)

	case *ast.Binary:
		return in.evalBinary(n)

	case *ast.Logical:
		return in.evalLogical(n)

	case *ast.Identifier:
		return in.lookupVar(n.ID(), n.Name.Lexeme, n.Name.Line)

	case *ast.Assign:
		v, err := in.eval(n.RHS)
		if err != nil {
			return nil, err
		}
		if dist, ok := in.locals[n.ID()]; ok {
			in.env.AssignAt(dist, n.Name.Lexeme, v)
		} else if !in.globals.Assign(n.Name.Lexeme, v) {
			return nil, ploxerr.NewRuntime(n.Line, "Undefined variable '%s'.", n.Name.Lexeme)
		}
		return v, nil

	case *ast.Call:
		return in.evalCall(n)

	case *ast.Get:
		obj, err := in.eval(n.Object)
		if err != nil {
			return nil, err
		}
		inst, ok := obj.(*Instance)
		if !ok {
			return nil, ploxerr.NewRuntime(n.Line, "Only instances have properties.")
		}
		return inst.Get(n.Name, n.Line)

	case *ast.Set:
		obj, err := in.eval(n.Object)
		if err != nil {
			return nil, err
		}
		inst, ok := obj.(*Instance)
		if !ok {
			return nil, ploxerr.NewRuntime(n.Line, "Only instances have fields.")
		}
		v, err := in.eval(n.RHS)
		if err != nil {
			return nil, err
		}
		inst.Set(n.Name, v)
		return v, nil

	case *ast.This:
		return in.lookupVar(n.ID(), "this", n.Token.Line)

	case *ast.Super:
		return in.evalSuper(n)

	case *ast.Construct:
		return nil, ploxerr.NewRuntime(n.Line, "__init__ cannot be used as a value.")

	default:
		panic("interp: unhandled expression node")
	}
}

func (in *Interp) evalLiteral(n *ast.Literal) (Value, error) {
	switch n.Token.Kind {
	case token.TRUE:
		return Bool(true), nil
	case token.FALSE:
		return Bool(false), nil
	case token.NIL:
		return Nil{}, nil
	case token.NUMBER:
		f, _ := strconv.ParseFloat(n.Value, 64)
		return Number(f), nil
	case token.STRING:
		return String(n.Value), nil
	default:
		panic("interp: unhandled literal kind")
	}
}

func (in *Interp) evalUnary(n *ast.Unary) (Value, error) {
	right, err := in.eval(n.Right)
	if err != nil {
		return nil, err
	}
	switch n.Op.Lexeme {
	case "-":
		num, ok := right.(Number)
		if !ok {
			return nil, ploxerr.NewRuntime(n.Op.Line, "%s Operator: Expected NUMBER", n.Op.Lexeme)
		}
		return -num, nil
	case "!":
		return Bool(!IsTruthy(right)), nil
	default:
		panic("interp: unhandled unary operator")
	}
}

func (in *Interp) evalBinary(n *ast.Binary) (Value, error) {
	left, err := in.eval(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.eval(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Op.Lexeme {
	case "==":
		return Bool(Equal(left, right)), nil
	case "!=":
		return Bool(!Equal(left, right)), nil
	case "+":
		if ln, ok := left.(Number); ok {
			if rn, ok := right.(Number); ok {
				return ln + rn, nil
			}
		}
		if _, lok := left.(String); lok {
			if _, rok := right.(String); rok {
				return String(left.String() + right.String()), nil
			}
		}
		// Number/String mixed operand: coerce the Number side to text.
		if isNumberOrString(left) && isNumberOrString(right) {
			return String(left.String() + right.String()), nil
		}
		return nil, ploxerr.NewRuntime(n.Op.Line, "Operands must be two numbers, two strings, or a number and a string.")
	case "-", "*", "/", "<", "<=", ">", ">=":
		ln, ok := left.(Number)
		if !ok {
			return nil, ploxerr.NewRuntime(n.Op.Line, "%s Operator: Expected NUMBER", n.Op.Lexeme)
		}
		rn, ok := right.(Number)
		if !ok {
			return nil, ploxerr.NewRuntime(n.Op.Line, "%s Operator: Expected NUMBER", n.Op.Lexeme)
		}
		switch n.Op.Lexeme {
		case "-":
			return ln - rn, nil
		case "*":
			return ln * rn, nil
		case "/":
			// Go's float64 division already follows IEEE-754 for a zero
			// divisor (±Inf, or NaN for 0/0), so no special case is needed.
			return ln / rn, nil
		case "<":
			return Bool(ln < rn), nil
		case "<=":
			return Bool(ln <= rn), nil
		case ">":
			return Bool(ln > rn), nil
		case ">=":
			return Bool(ln >= rn), nil
		}
	}
	panic("interp: unhandled binary operator")
}

func isNumberOrString(v Value) bool {
	switch v.(type) {
	case Number, String:
		return true
	default:
		return false
	}
}

func (in *Interp) evalLogical(n *ast.Logical) (Value, error) {
	left, err := in.eval(n.Left)
	if err != nil {
		return nil, err
	}
	if n.Op.Lexeme == "or" {
		if IsTruthy(left) {
			return left, nil
		}
	} else {
		if !IsTruthy(left) {
			return left, nil
		}
	}
	return in.eval(n.Right)
}

func (in *Interp) evalCall(n *ast.Call) (Value, error) {
	callee, err := in.eval(n.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := in.eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	fn, ok := callee.(Callable)
	if !ok {
		return nil, ploxerr.NewRuntime(n.Line, "Can only call functions and classes.")
	}
	if len(args) != fn.Arity() {
		return nil, ploxerr.NewRuntime(n.Line, "Expected %d arguments but got %d.", fn.Arity(), len(args))
	}
	return fn.Call(in, args)
}

func (in *Interp) evalSuper(n *ast.Super) (Value, error) {
	dist, ok := in.locals[n.ID()]
	if !ok {
		return nil, ploxerr.NewRuntime(n.Line, "Unresolved 'super'.")
	}
	superVal, _ := in.env.GetAt(dist, "super")
	super, ok := superVal.(*Class)
	if !ok {
		return nil, ploxerr.NewRuntime(n.Line, "Unresolved 'super'.")
	}
	thisVal, _ := in.env.GetAt(dist-1, "this")
	instance, _ := thisVal.(*Instance)

	method := super.FindMethod(n.Method)
	if method == nil {
		return nil, ploxerr.NewRuntime(n.Line, "Undefined property '%s'.", n.Method)
	}
	return method.bind(instance), nil
}

func (in *Interp) lookupVar(id int, name string, line int) (Value, error) {
	if dist, ok := in.locals[id]; ok {
		if v, ok := in.env.GetAt(dist, name); ok {
			return v, nil
		}
	} else if v, ok := in.globals.Get(name); ok {
		return v, nil
	}
	return nil, ploxerr.NewRuntime(line, "Undefined variable '%s'.", name)
}
