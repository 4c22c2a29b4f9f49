// Command plox runs a Plox script file or starts an interactive REPL,
// following the same exit-code convention as the reference tree-walkers in
// this family: 65 for a compile-time (lexical/syntax/static) diagnostic, 70
// for a runtime error, 0 otherwise. A wrong argument count exits 64 and an
// unreadable script file exits 66.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/sdecook/plox/internal/plox"
)

var (
	errColor    = color.New(color.FgRed)
	resultColor = color.New(color.FgYellow)
	bannerColor = color.New(color.FgCyan)
)

func main() {
	switch len(os.Args) {
	case 1:
		runRepl()
	case 2:
		runFile(os.Args[1])
	default:
		fmt.Fprintln(os.Stderr, "Usage: plox [script]")
		os.Exit(64)
	}
}

func runFile(path string) {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(66)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	result := plox.Run(string(src), false,
		func(s string) { fmt.Fprintln(out, s) },
		func(s string) { errColor.Fprintln(os.Stderr, s) },
		nil,
	)

	switch {
	case result.HadError:
		os.Exit(65)
	case result.HadRuntimeError:
		os.Exit(70)
	}
}

func runRepl() {
	bannerColor.Println("Plox — a small Lox-family scripting language")
	bannerColor.Println("Ctrl-D to exit.")

	rl, err := readline.New(">> ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer rl.Close()

	session := plox.NewSession(func(s string) { fmt.Println(s) })

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF on Ctrl-D, readline.ErrInterrupt on Ctrl-C
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rl.SaveHistory(line)

		session.Run(line,
			func(s string) { errColor.Println(s) },
			func(s string) { resultColor.Print(s) },
		)
	}
}
