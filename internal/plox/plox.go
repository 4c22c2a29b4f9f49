// Package plox wires the four pipeline stages together behind the single
// entry point a CLI, REPL, or test harness drives: Run.
package plox

import (
	"fmt"

	"github.com/sdecook/plox/internal/interp"
	"github.com/sdecook/plox/internal/lexer"
	"github.com/sdecook/plox/internal/parser"
	"github.com/sdecook/plox/internal/ploxerr"
	"github.com/sdecook/plox/internal/resolver"
)

// Result reports which, if any, stage failed. HadError covers lexical,
// syntax, and static diagnostics; HadRuntimeError covers a failure during
// evaluation. At most one of the two is ever true for a given Run.
type Result struct {
	HadError        bool
	HadRuntimeError bool
}

// stdoutPrinter adapts a plain func(string) to interp.Printer so Run can
// hand the interpreter somewhere to send `print` output.
type stdoutPrinter struct{ report func(string) }

func (p stdoutPrinter) Print(s string) { p.report(s) }

// Run lexes, parses, resolves, and evaluates source in one pass, stopping at
// the first stage that reports a diagnostic. out receives `print` statement
// output; diag receives formatted diagnostic lines; echo, which may be nil,
// receives the REPL result line and is called only when replMode is true and
// the last top-level statement was a bare expression.
func Run(source string, replMode bool, out, diag, echo func(string)) Result {
	toks, diags := lexer.New(source).Scan()
	if len(diags) > 0 {
		reportAll(diags, diag)
		return Result{HadError: true}
	}

	stmts, diags := parser.New(toks).Parse()
	if len(diags) > 0 {
		reportAll(diags, diag)
		return Result{HadError: true}
	}

	locals, diags := resolver.Resolve(stmts)
	if len(diags) > 0 {
		reportAll(diags, diag)
		return Result{HadError: true}
	}

	in := interp.New(locals, stdoutPrinter{report: out})
	last, echoed, err := in.Run(stmts)
	if err != nil {
		diag(err.Error())
		return Result{HadRuntimeError: true}
	}

	if replMode && echoed && echo != nil {
		echo(fmt.Sprintf("    Result:\n            %s\n", last.String()))
	}

	return Result{}
}

func reportAll(diags []ploxerr.Diagnostic, diag func(string)) {
	for _, d := range diags {
		diag(d.Error())
	}
}

// Session is a persistent REPL session: one interpreter whose global frame
// survives across multiple Run calls, so a variable declared on one line is
// still in scope on the next. File-mode execution has no use for this — a
// file is always a single Run call. Session.Run runs the same stages as Run,
// but against the session's own interpreter.
type Session struct {
	in *interp.Interp
}

// NewSession starts a fresh REPL session. out receives every `print`
// statement's output for the lifetime of the session.
func NewSession(out func(string)) *Session {
	return &Session{in: interp.New(make(map[int]int), stdoutPrinter{report: out})}
}

// Run lexes, parses, and resolves source on its own, merges the resulting
// distance map into the session's interpreter, then evaluates it against the
// session's persistent global frame.
// Semantics otherwise match Run in REPL mode: diag receives diagnostics, and
// echo receives the REPL result line for a bare expression statement.
func (s *Session) Run(source string, diag, echo func(string)) Result {
	toks, diags := lexer.New(source).Scan()
	if len(diags) > 0 {
		reportAll(diags, diag)
		return Result{HadError: true}
	}

	stmts, diags := parser.New(toks).Parse()
	if len(diags) > 0 {
		reportAll(diags, diag)
		return Result{HadError: true}
	}

	locals, diags := resolver.Resolve(stmts)
	if len(diags) > 0 {
		reportAll(diags, diag)
		return Result{HadError: true}
	}
	s.in.AddLocals(locals)

	last, echoed, err := s.in.Run(stmts)
	if err != nil {
		diag(err.Error())
		return Result{HadRuntimeError: true}
	}

	if echoed && echo != nil {
		echo(fmt.Sprintf("    Result:\n            %s\n", last.String()))
	}

	return Result{}
}
