// Package resolver performs the static scope-distance pass between parsing
// and evaluation: for every variable, this, and super reference it computes
// how many enclosing block scopes to skip to find the declaring one, so the
// interpreter never has to walk an environment chain by name.
package resolver

import (
	"github.com/sdecook/plox/internal/ast"
	"github.com/sdecook/plox/internal/ploxerr"
)

type functionType int

const (
	funcNone functionType = iota
	funcFunction
	funcInitializer
	funcMethod
)

type classType int

const (
	classNone classType = iota
	classClass
	classSubclass
)

// Resolver walks a program once, recording a scope distance for every
// resolved expression node (keyed by its stable ast node id) and collecting
// any static errors it finds along the way.
type Resolver struct {
	locals    map[int]int
	scopes    []map[string]bool
	global    map[string]bool
	funcType  functionType
	classType classType
	loopDepth int
	diags     []ploxerr.Diagnostic
}

func New() *Resolver {
	return &Resolver{locals: make(map[int]int), global: make(map[string]bool)}
}

// Resolve runs the pass over a program's top-level statements and returns
// the distance map plus any diagnostics. A non-empty diagnostics slice means
// the interpreter must not run.
func Resolve(stmts []ast.Stmt) (map[int]int, []ploxerr.Diagnostic) {
	r := New()
	for _, s := range stmts {
		r.resolveStmt(s)
	}
	return r.locals, r.diags
}

func (r *Resolver) errf(line int, format string, args ...any) {
	r.diags = append(r.diags, ploxerr.NewStatic(line, format, args...))
}

func (r *Resolver) beginScope() { r.scopes = append(r.scopes, make(map[string]bool)) }

func (r *Resolver) endScope() { r.scopes = r.scopes[:len(r.scopes)-1] }

// declare records name as pending (declared-but-not-defined) in the
// innermost scope. Redeclaring a name already bound in that scope is not a
// static error here; for a var declaration it surfaces at evaluation time as
// a runtime error, when the interpreter finds the name already bound in the
// current frame.
func (r *Resolver) declare(name string, line int) {
	if len(r.scopes) == 0 {
		r.global[name] = false
		return
	}
	r.scopes[len(r.scopes)-1][name] = false
}

func (r *Resolver) define(name string) {
	if len(r.scopes) == 0 {
		r.global[name] = true
		return
	}
	r.scopes[len(r.scopes)-1][name] = true
}

// resolveLocal records how many scopes out `id` must look to find `name`.
// An unresolved name is left out of the map entirely: the interpreter then
// treats it as a global lookup.
func (r *Resolver) resolveLocal(id int, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.locals[id] = len(r.scopes) - 1 - i
			return
		}
	}
}

// ---- Statements ----

func (r *Resolver) resolveStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VarDecl:
		r.declare(n.Name, n.Line)
		if n.Initializer != nil {
			r.resolveExpr(n.Initializer)
		}
		r.define(n.Name)
	case *ast.FuncDecl:
		if n.Name == "__init__" {
			r.errf(n.Line, "__init__ can only be declared inside a class.")
		}
		r.declare(n.Name, n.Line)
		r.define(n.Name)
		r.resolveFunction(n, funcFunction)
	case *ast.ClassDecl:
		r.resolveClass(n)
	case *ast.ExprStmt:
		r.resolveExpr(n.Expr)
	case *ast.PrintStmt:
		r.resolveExpr(n.Expr)
	case *ast.Block:
		r.beginScope()
		for _, stmt := range n.Stmts {
			r.resolveStmt(stmt)
		}
		r.endScope()
	case *ast.If:
		r.resolveExpr(n.Cond)
		r.resolveStmt(n.Then)
		if n.Else != nil {
			r.resolveStmt(n.Else)
		}
	case *ast.While:
		r.resolveExpr(n.Cond)
		r.loopDepth++
		r.resolveStmt(n.Body)
		r.loopDepth--
	case *ast.Return:
		if r.funcType == funcNone {
			r.errf(n.Line, "Can't return from top-level code.")
		}
		if n.Value != nil {
			if r.funcType == funcInitializer {
				r.errf(n.Line, "Can't return a value from __init__.")
			}
			r.resolveExpr(n.Value)
		}
	case *ast.Break:
		if r.loopDepth == 0 {
			r.errf(n.Line, "Can't use 'break' outside of a loop.")
		}
	default:
		panic("resolver: unhandled statement node")
	}
}

func (r *Resolver) resolveClass(c *ast.ClassDecl) {
	enclosingClass := r.classType
	r.classType = classClass

	r.declare(c.Name, c.Line)
	r.define(c.Name)

	if c.Super != nil {
		if c.Super.Name.Lexeme == c.Name {
			r.errf(c.Line, "A class can't inherit from itself.")
		}
		r.classType = classSubclass
		r.resolveExpr(c.Super)

		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = true
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true

	for _, method := range c.Methods {
		fnType := funcMethod
		if method.IsInitializer {
			fnType = funcInitializer
		}
		r.resolveFunction(method, fnType)
	}

	r.endScope()
	if c.Super != nil {
		r.endScope()
	}

	r.classType = enclosingClass
}

func (r *Resolver) resolveFunction(fd *ast.FuncDecl, ft functionType) {
	enclosingFn := r.funcType
	enclosingLoop := r.loopDepth
	r.funcType = ft
	r.loopDepth = 0

	r.beginScope()
	for _, param := range fd.Params {
		r.declare(param.Lexeme, param.Line)
		r.define(param.Lexeme)
	}
	for _, stmt := range fd.Body {
		r.resolveStmt(stmt)
	}
	r.endScope()

	r.funcType = enclosingFn
	r.loopDepth = enclosingLoop
}

// ---- Expressions ----

func (r *Resolver) resolveExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Literal:
		// nothing to resolve
	case *ast.Grouping:
		r.resolveExpr(n.Expr)
	case *ast.Unary:
		r.resolveExpr(n.Right)
	case *ast.Binary:
		r.resolveExpr(n.Left)
		r.resolveExpr(n.Right)
	case *ast.Logical:
		r.resolveExpr(n.Left)
		r.resolveExpr(n.Right)
	case *ast.Identifier:
		if last := len(r.scopes) - 1; last >= 0 {
			if defined, declared := r.scopes[last][n.Name.Lexeme]; declared && !defined {
				r.errf(n.Name.Line, "Can't read variable in its own initializer")
			}
		} else if defined, declared := r.global[n.Name.Lexeme]; declared && !defined {
			r.errf(n.Name.Line, "Can't read variable in its own initializer")
		}
		r.resolveLocal(n.ID(), n.Name.Lexeme)
	case *ast.Assign:
		r.resolveExpr(n.RHS)
		r.resolveLocal(n.ID(), n.Name.Lexeme)
	case *ast.Call:
		r.resolveExpr(n.Callee)
		for _, arg := range n.Args {
			r.resolveExpr(arg)
		}
	case *ast.Get:
		r.resolveExpr(n.Object)
	case *ast.Set:
		r.resolveExpr(n.RHS)
		r.resolveExpr(n.Object)
	case *ast.This:
		if r.classType == classNone {
			r.errf(n.Token.Line, "Can't use 'this' outside of a class.")
		}
		r.resolveLocal(n.ID(), "this")
	case *ast.Super:
		switch r.classType {
		case classNone:
			r.errf(n.Line, "Can't use 'super' outside of a class.")
		case classClass:
			r.errf(n.Line, "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(n.ID(), "super")
	case *ast.Construct:
		r.errf(n.Line, "__init__ cannot be used as a value.")
	default:
		panic("resolver: unhandled expression node")
	}
}
