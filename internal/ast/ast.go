// Package ast defines Plox's tagged-variant syntax tree: expression and
// statement nodes produced by the parser and walked by the resolver and
// interpreter.
package ast

import (
	"fmt"
	"strings"

	"github.com/sdecook/plox/internal/token"
)

// nextID hands out the stable per-node identity the resolver uses as its
// distance-map key. Nodes are never parsed concurrently, so a package
// counter is sufficient — there is no parallelism anywhere in this pipeline.
var nextID int

func newID() int {
	nextID++
	return nextID
}

// Expr is any expression node. Resolve and Evaluate dispatch is a switch
// over concrete type in the resolver/interpreter packages — the node set is
// closed, so no visitor indirection is used.
type Expr interface {
	exprNode()
	ID() int
	String() string
}

// Stmt is any statement node.
type Stmt interface {
	stmtNode()
	String() string
}

type base struct {
	id int
}

func (b base) ID() int { return b.id }

func newBase() base { return base{id: newID()} }

// ---- Expressions ----

type Literal struct {
	base
	Token token.Token
	Value string // display form; Token.Kind says how to interpret it
}

func NewLiteral(tok token.Token, value string) *Literal {
	return &Literal{base: newBase(), Token: tok, Value: value}
}
func (*Literal) exprNode()      {}
func (l *Literal) String() string { return l.Value }

type Grouping struct {
	base
	Expr Expr
}

func NewGrouping(expr Expr) *Grouping { return &Grouping{base: newBase(), Expr: expr} }
func (*Grouping) exprNode()           {}
func (g *Grouping) String() string    { return fmt.Sprintf("(group %s)", g.Expr) }

type Unary struct {
	base
	Op    token.Token
	Right Expr
}

func NewUnary(op token.Token, right Expr) *Unary { return &Unary{base: newBase(), Op: op, Right: right} }
func (*Unary) exprNode()                         {}
func (u *Unary) String() string                  { return fmt.Sprintf("(%s %s)", u.Op.Lexeme, u.Right) }

type Binary struct {
	base
	Left  Expr
	Op    token.Token
	Right Expr
}

func NewBinary(left Expr, op token.Token, right Expr) *Binary {
	return &Binary{base: newBase(), Left: left, Op: op, Right: right}
}
func (*Binary) exprNode() {}
func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Op.Lexeme, b.Left, b.Right)
}

type Logical struct {
	base
	Left  Expr
	Op    token.Token // AND or OR
	Right Expr
}

func NewLogical(left Expr, op token.Token, right Expr) *Logical {
	return &Logical{base: newBase(), Left: left, Op: op, Right: right}
}
func (*Logical) exprNode() {}
func (l *Logical) String() string {
	return fmt.Sprintf("(%s %s %s)", l.Op.Lexeme, l.Left, l.Right)
}

type Identifier struct {
	base
	Name token.Token
}

func NewIdentifier(name token.Token) *Identifier { return &Identifier{base: newBase(), Name: name} }
func (*Identifier) exprNode()                    {}
func (i *Identifier) String() string             { return i.Name.Lexeme }

type Assign struct {
	base
	Name token.Token
	RHS  Expr
	Line int
}

func NewAssign(name token.Token, rhs Expr, line int) *Assign {
	return &Assign{base: newBase(), Name: name, RHS: rhs, Line: line}
}
func (*Assign) exprNode()      {}
func (a *Assign) String() string { return fmt.Sprintf("%s = %s", a.Name.Lexeme, a.RHS) }

type Call struct {
	base
	Callee Expr
	Args   []Expr
	Line   int
}

func NewCall(callee Expr, args []Expr, line int) *Call {
	return &Call{base: newBase(), Callee: callee, Args: args, Line: line}
}
func (*Call) exprNode() {}
func (c *Call) String() string {
	var sb strings.Builder
	sb.WriteString(c.Callee.String())
	sb.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

type Get struct {
	base
	Object Expr
	Name   string
	Line   int
}

func NewGet(object Expr, name string, line int) *Get {
	return &Get{base: newBase(), Object: object, Name: name, Line: line}
}
func (*Get) exprNode()      {}
func (g *Get) String() string { return fmt.Sprintf("%s.%s", g.Object, g.Name) }

type Set struct {
	base
	Object Expr
	Name   string
	RHS    Expr
	Line   int
}

func NewSet(object Expr, name string, rhs Expr, line int) *Set {
	return &Set{base: newBase(), Object: object, Name: name, RHS: rhs, Line: line}
}
func (*Set) exprNode()      {}
func (s *Set) String() string { return fmt.Sprintf("%s.%s = %s", s.Object, s.Name, s.RHS) }

type This struct {
	base
	Token token.Token
}

func NewThis(tok token.Token) *This { return &This{base: newBase(), Token: tok} }
func (*This) exprNode()             {}
func (*This) String() string        { return "this" }

type Super struct {
	base
	Token  token.Token
	Method string
	Line   int
}

func NewSuper(tok token.Token, method string, line int) *Super {
	return &Super{base: newBase(), Token: tok, Method: method, Line: line}
}
func (*Super) exprNode()      {}
func (s *Super) String() string { return fmt.Sprintf("super.%s", s.Method) }

// Construct is the bare `__init__` symbol: valid only as a method name in a
// class declaration, never as an expression a user can call or assign to.
type Construct struct {
	base
	Line int
}

func NewConstruct(line int) *Construct { return &Construct{base: newBase(), Line: line} }
func (*Construct) exprNode()           {}
func (*Construct) String() string      { return "__init__" }

// ---- Statements ----

type ExprStmt struct{ Expr Expr }

func (*ExprStmt) stmtNode()      {}
func (e *ExprStmt) String() string { return e.Expr.String() }

type PrintStmt struct{ Expr Expr }

func (*PrintStmt) stmtNode()      {}
func (p *PrintStmt) String() string { return "print " + p.Expr.String() }

type VarDecl struct {
	Name        string
	NameToken   token.Token
	Initializer Expr
	Line        int
}

func (*VarDecl) stmtNode() {}
func (v *VarDecl) String() string {
	if v.Initializer != nil {
		return fmt.Sprintf("var %s = %s", v.Name, v.Initializer)
	}
	return "var " + v.Name
}

type Block struct{ Stmts []Stmt }

func (*Block) stmtNode() {}
func (b *Block) String() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range b.Stmts {
		sb.WriteString("    " + s.String() + "\n")
	}
	sb.WriteByte('}')
	return sb.String()
}

type If struct {
	Cond Expr
	Then Stmt
	Else Stmt
}

func (*If) stmtNode() {}
func (i *If) String() string {
	s := fmt.Sprintf("if (%s) %s", i.Cond, i.Then)
	if i.Else != nil {
		s += " else " + i.Else.String()
	}
	return s
}

type While struct {
	Cond Expr
	Body Stmt
}

func (*While) stmtNode()      {}
func (w *While) String() string { return fmt.Sprintf("while (%s) %s", w.Cond, w.Body) }

type FuncDecl struct {
	Name          string
	NameToken     token.Token
	Params        []token.Token
	Body          []Stmt
	Line          int
	IsInitializer bool
}

func (*FuncDecl) stmtNode() {}
func (f *FuncDecl) String() string {
	var sb strings.Builder
	sb.WriteString("fun " + f.Name + "(")
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Lexeme)
	}
	sb.WriteString(") {\n")
	for _, s := range f.Body {
		sb.WriteString("    " + s.String() + "\n")
	}
	sb.WriteByte('}')
	return sb.String()
}

type Return struct {
	Value Expr
	Line  int
}

func (*Return) stmtNode() {}
func (r *Return) String() string {
	if r.Value != nil {
		return "return " + r.Value.String()
	}
	return "return"
}

type Break struct{ Line int }

func (*Break) stmtNode()      {}
func (*Break) String() string { return "break" }

type ClassDecl struct {
	Name      string
	NameToken token.Token
	Super     *Identifier
	Methods   []*FuncDecl
	Line      int
}

func (*ClassDecl) stmtNode() {}
func (c *ClassDecl) String() string {
	var sb strings.Builder
	sb.WriteString("class " + c.Name)
	if c.Super != nil {
		sb.WriteString(" > " + c.Super.Name.Lexeme)
	}
	sb.WriteString(" {\n")
	for _, m := range c.Methods {
		sb.WriteString("    " + m.String() + "\n")
	}
	sb.WriteByte('}')
	return sb.String()
}
