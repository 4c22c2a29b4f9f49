// Package parser builds Plox's AST from a token stream via recursive
// descent, with Pratt-style precedence climbing for expressions.
package parser

import (
	"github.com/sdecook/plox/internal/ast"
	"github.com/sdecook/plox/internal/ploxerr"
	"github.com/sdecook/plox/internal/token"
)

// Parser consumes a token stream and builds a program: an ordered list of
// top-level statements, plus any syntax diagnostics collected along the way.
type Parser struct {
	tokens []token.Token
	idx    int
	diags  []ploxerr.Diagnostic
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// syntaxPanic is how a parse rule aborts the current statement; Parse's
// synchronize loop recovers at the next statement boundary.
type syntaxPanic struct{}

// Parse returns the top-level statements and any syntax diagnostics. A
// non-empty diagnostics slice means downstream stages must not run.
func (p *Parser) Parse() ([]ast.Stmt, []ploxerr.Diagnostic) {
	var stmts []ast.Stmt
	for !p.atEnd() {
		stmt, ok := p.safeDeclaration()
		if ok {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, p.diags
}

func (p *Parser) safeDeclaration() (stmt ast.Stmt, ok bool) {
	start := p.idx
	defer func() {
		if r := recover(); r != nil {
			if _, isSyntax := r.(syntaxPanic); !isSyntax {
				panic(r)
			}
			// If the failing token is the one the declaration started on,
			// skip it so the caller's loop always makes progress.
			if p.idx == start {
				p.advance()
			}
			p.synchronize()
			ok = false
		}
	}()
	return p.declaration(), true
}

// synchronize discards tokens until it finds a plausible statement boundary,
// so one syntax error does not cascade into spurious follow-on errors.
func (p *Parser) synchronize() {
	for !p.atEnd() {
		if p.previous().Kind == token.SEMICOLON {
			return
		}
		switch p.current().Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF,
			token.WHILE, token.PRINT, token.RETURN, token.BREAK:
			return
		}
		p.advance()
	}
}

func (p *Parser) declaration() ast.Stmt {
	switch {
	case p.match(token.VAR):
		return p.varDecl()
	case p.match(token.FUN):
		return p.funDecl("function")
	case p.match(token.CLASS):
		return p.classDecl()
	default:
		return p.statement()
	}
}

func (p *Parser) varDecl() ast.Stmt {
	name := p.consume(token.IDENTIFIER, "Expect variable name.")
	var init ast.Expr
	if p.match(token.EQUAL) {
		init = p.expression()
	}
	p.consume(token.SEMICOLON, "Expect ';' after variable declaration.")
	return &ast.VarDecl{Name: name.Lexeme, NameToken: name, Initializer: init, Line: name.Line}
}

// funDecl parses `IDENT "(" params? ")" block`. The function's own name may
// be an ordinary identifier or, inside a class body, the bare __init__
// symbol — the resolver is responsible for rejecting __init__ declared
// outside of a class body.
func (p *Parser) funDecl(kind string) *ast.FuncDecl {
	nameTok, isInit := p.functionName(kind)
	p.consume(token.LEFT_PAREN, "Expect '(' after "+kind+" name.")

	var params []token.Token
	if !p.check(token.RIGHT_PAREN) {
		for {
			params = append(params, p.consume(token.IDENTIFIER, "Expect parameter name."))
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RIGHT_PAREN, "Expect ')' after parameters.")
	p.consume(token.LEFT_BRACE, "Expect '{' before "+kind+" body.")
	body := p.blockStmts()

	name := nameTok.Lexeme
	if isInit {
		name = "__init__"
	}
	return &ast.FuncDecl{Name: name, NameToken: nameTok, Params: params, Body: body, Line: nameTok.Line, IsInitializer: isInit}
}

func (p *Parser) functionName(kind string) (token.Token, bool) {
	if p.match(token.CONSTRUCTOR) {
		return p.previous(), true
	}
	return p.consume(token.IDENTIFIER, "Expect "+kind+" name."), false
}

func (p *Parser) classDecl() ast.Stmt {
	name := p.consume(token.IDENTIFIER, "Expect class name.")

	var super *ast.Identifier
	if p.match(token.GREATER) {
		superName := p.consume(token.IDENTIFIER, "Expect superclass name.")
		super = ast.NewIdentifier(superName)
	}

	p.consume(token.LEFT_BRACE, "Expect '{' before class body.")
	var methods []*ast.FuncDecl
	for !p.check(token.RIGHT_BRACE) && !p.atEnd() {
		p.consume(token.FUN, "Expect 'fun' before method name.")
		methods = append(methods, p.funDecl("method"))
	}
	p.consume(token.RIGHT_BRACE, "Expect '}' after class body.")

	return &ast.ClassDecl{Name: name.Lexeme, NameToken: name, Super: super, Methods: methods, Line: name.Line}
}

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.IF):
		return p.ifStmt()
	case p.match(token.WHILE):
		return p.whileStmt()
	case p.match(token.PRINT):
		return p.printStmt()
	case p.match(token.RETURN):
		return p.returnStmt()
	case p.match(token.BREAK):
		return p.breakStmt()
	case p.match(token.LEFT_BRACE):
		return &ast.Block{Stmts: p.blockStmts()}
	default:
		return p.exprStmt()
	}
}

// condition parses the required parenthesised expression before an if/while
// body, wrapping it as a Grouping so the tree records the parens.
func (p *Parser) condition() ast.Expr {
	p.consume(token.LEFT_PAREN, "Expect '(' before condition.")
	expr := p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after condition.")
	return ast.NewGrouping(expr)
}

func (p *Parser) ifStmt() ast.Stmt {
	cond := p.condition()
	then := p.blockAsStmt("Expect block after if condition.")
	var elseBranch ast.Stmt
	if p.match(token.ELSE) {
		elseBranch = p.blockAsStmt("Expect block after else.")
	}
	return &ast.If{Cond: cond, Then: then, Else: elseBranch}
}

func (p *Parser) whileStmt() ast.Stmt {
	cond := p.condition()
	body := p.blockAsStmt("Expect block after while condition.")
	return &ast.While{Cond: cond, Body: body}
}

// blockAsStmt parses a "{" ... "}" block, matching the grammar's
// `if/while ... block` productions (the then/else/loop body is always a
// brace-delimited block, not an arbitrary statement).
func (p *Parser) blockAsStmt(msg string) ast.Stmt {
	p.consume(token.LEFT_BRACE, msg)
	return &ast.Block{Stmts: p.blockStmts()}
}

func (p *Parser) blockStmts() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RIGHT_BRACE) && !p.atEnd() {
		stmt, ok := p.safeDeclaration()
		if ok {
			stmts = append(stmts, stmt)
		}
	}
	p.consume(token.RIGHT_BRACE, "Expect '}' after block.")
	return stmts
}

func (p *Parser) printStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after value.")
	return &ast.PrintStmt{Expr: expr}
}

func (p *Parser) returnStmt() ast.Stmt {
	line := p.previous().Line
	var value ast.Expr
	if !p.check(token.SEMICOLON) {
		value = p.expression()
	}
	p.consume(token.SEMICOLON, "Expect ';' after return value.")
	return &ast.Return{Value: value, Line: line}
}

func (p *Parser) breakStmt() ast.Stmt {
	line := p.previous().Line
	p.consume(token.SEMICOLON, "Expect ';' after break.")
	return &ast.Break{Line: line}
}

// exprStmt allows a trailing semicolon to be omitted for a bare expression,
// so the REPL can echo its value, but requires one when the expression is
// an Assign or a Call.
func (p *Parser) exprStmt() ast.Stmt {
	expr := p.expression()
	requiresSemi := false
	switch expr.(type) {
	case *ast.Assign, *ast.Call:
		requiresSemi = true
	}
	if requiresSemi {
		p.consume(token.SEMICOLON, "Expect ';' after expression.")
	} else {
		p.match(token.SEMICOLON)
	}
	return &ast.ExprStmt{Expr: expr}
}

// ---- Expressions, lowest to highest precedence ----

func (p *Parser) expression() ast.Expr { return p.assignment() }

func (p *Parser) assignment() ast.Expr {
	expr := p.logicOr()

	if p.match(token.EQUAL) {
		equals := p.previous()
		value := p.assignment()

		switch target := expr.(type) {
		case *ast.Identifier:
			return ast.NewAssign(target.Name, value, equals.Line)
		case *ast.Get:
			return ast.NewSet(target.Object, target.Name, value, equals.Line)
		case *ast.Construct:
			p.errAt(equals, "Reassignment of __init__ is not allowed.")
		default:
			p.errAt(equals, "Invalid assignment target.")
		}
	}
	return expr
}

func (p *Parser) logicOr() ast.Expr {
	expr := p.logicAnd()
	for p.match(token.OR) {
		op := p.previous()
		expr = ast.NewLogical(expr, op, p.logicAnd())
	}
	return expr
}

func (p *Parser) logicAnd() ast.Expr {
	expr := p.equality()
	for p.match(token.AND) {
		op := p.previous()
		expr = ast.NewLogical(expr, op, p.equality())
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.comparison()
	for p.match(token.EQUAL_EQUAL, token.BANG_EQUAL) {
		op := p.previous()
		expr = ast.NewBinary(expr, op, p.comparison())
	}
	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.term()
	for p.match(token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL) {
		op := p.previous()
		expr = ast.NewBinary(expr, op, p.term())
	}
	return expr
}

func (p *Parser) term() ast.Expr {
	expr := p.factor()
	for p.match(token.PLUS, token.MINUS) {
		op := p.previous()
		expr = ast.NewBinary(expr, op, p.factor())
	}
	return expr
}

func (p *Parser) factor() ast.Expr {
	expr := p.unary()
	for p.match(token.STAR, token.SLASH) {
		op := p.previous()
		expr = ast.NewBinary(expr, op, p.unary())
	}
	return expr
}

func (p *Parser) unary() ast.Expr {
	if p.match(token.BANG, token.MINUS) {
		op := p.previous()
		return ast.NewUnary(op, p.unary())
	}
	return p.call()
}

func (p *Parser) call() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.match(token.LEFT_PAREN):
			expr = p.finishCall(expr)
		case p.match(token.DOT):
			expr = p.finishGet(expr)
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	if _, ok := callee.(*ast.Construct); ok {
		p.errAt(p.previous(), "Explicit invocation of __init__ is not allowed.")
	}
	var args []ast.Expr
	if !p.check(token.RIGHT_PAREN) {
		for {
			args = append(args, p.expression())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	paren := p.consume(token.RIGHT_PAREN, "Expect ')' after arguments.")
	return ast.NewCall(callee, args, paren.Line)
}

func (p *Parser) finishGet(object ast.Expr) ast.Expr {
	if p.check(token.CONSTRUCTOR) {
		p.errAt(p.current(), "__init__ cannot be used as a property name.")
	}
	name := p.consume(token.IDENTIFIER, "Expect property name after '.'.")
	return ast.NewGet(object, name.Lexeme, name.Line)
}

func (p *Parser) primary() ast.Expr {
	switch {
	case p.match(token.TRUE):
		return ast.NewLiteral(p.previous(), "true")
	case p.match(token.FALSE):
		return ast.NewLiteral(p.previous(), "false")
	case p.match(token.NIL):
		return ast.NewLiteral(p.previous(), "nil")
	case p.match(token.NUMBER):
		return ast.NewLiteral(p.previous(), p.previous().Literal)
	case p.match(token.STRING):
		return ast.NewLiteral(p.previous(), p.previous().Literal)
	case p.match(token.THIS):
		return ast.NewThis(p.previous())
	case p.match(token.CONSTRUCTOR):
		return ast.NewConstruct(p.previous().Line)
	case p.match(token.SUPER):
		return p.superExpr()
	case p.match(token.IDENTIFIER):
		return ast.NewIdentifier(p.previous())
	case p.match(token.LEFT_PAREN):
		expr := p.expression()
		p.consume(token.RIGHT_PAREN, "Expect ')' after expression.")
		return ast.NewGrouping(expr)
	default:
		p.errAt(p.current(), "Expect expression.")
		panic(syntaxPanic{}) // unreachable: errAt always panics
	}
}

func (p *Parser) superExpr() ast.Expr {
	keyword := p.previous()
	p.consume(token.DOT, "Expect '.' after 'super'.")
	method := p.consume(token.IDENTIFIER, "Expect superclass method name.")
	return ast.NewSuper(keyword, method.Lexeme, method.Line)
}

// ---- Token stream helpers ----

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(kind token.Kind) bool {
	return !p.atEnd() && p.current().Kind == kind
}

func (p *Parser) advance() token.Token {
	tok := p.current()
	if !p.atEnd() {
		p.idx++
	}
	return tok
}

func (p *Parser) atEnd() bool { return p.current().Kind == token.EOF }

func (p *Parser) current() token.Token { return p.tokens[p.idx] }

func (p *Parser) previous() token.Token {
	if p.idx > 0 {
		return p.tokens[p.idx-1]
	}
	return p.current()
}

func (p *Parser) consume(kind token.Kind, msg string) token.Token {
	if !p.check(kind) {
		p.errAt(p.current(), msg)
	}
	return p.advance()
}

func (p *Parser) errAt(tok token.Token, msg string) {
	where := tok.Lexeme
	if tok.Kind == token.EOF {
		where = "end"
	}
	p.diags = append(p.diags, ploxerr.NewSyntax(tok.Line, "at '%s': %s", where, msg))
	panic(syntaxPanic{})
}
