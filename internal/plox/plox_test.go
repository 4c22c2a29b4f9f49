package plox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// goldenCase is a named script paired with its expected stdout lines,
// compared in-process against Run rather than against a reference binary.
type goldenCase struct {
	name     string
	source   string
	replMode bool
	wantOut  []string
	wantErr  bool
	wantDiag string // substring expected in the single diagnostic line, if wantErr
}

func runGolden(t *testing.T, tc goldenCase) Result {
	t.Helper()
	var out, diags []string
	res := Run(tc.source, tc.replMode,
		func(s string) { out = append(out, s) },
		func(s string) { diags = append(diags, s) },
		func(s string) { out = append(out, s) },
	)

	if tc.wantErr {
		if len(diags) == 0 {
			t.Fatalf("%s: expected a diagnostic, got none", tc.name)
		}
		assert.Contains(t, strings.Join(diags, "\n"), tc.wantDiag)
		return res
	}
	assert.Empty(t, diags, "%s: unexpected diagnostics %v", tc.name, diags)
	assert.Equal(t, tc.wantOut, out, "%s: stdout mismatch", tc.name)
	return res
}

func TestGolden_EndToEndScenarios(t *testing.T) {
	cases := []goldenCase{
		{
			name:    "numeric arithmetic with grouping",
			source:  `print (3 * 4) + (17 - 3);`,
			wantOut: []string{"26"},
		},
		{
			name:    "string concatenation",
			source:  `print "foo" + "bar";`,
			wantOut: []string{"foobar"},
		},
		{
			name: "closures capture outer locals by reference",
			source: `
				fun makeCounter() {
					var count = 0;
					fun inc() {
						count = count + 1;
						return count;
					}
					return inc;
				}
				var counter = makeCounter();
				print counter();
				print counter();
			`,
			wantOut: []string{"1", "2"},
		},
		{
			name: "break exits the innermost loop",
			source: `
				var i = 0;
				while (true) {
					i = i + 1;
					print i;
					if (i > 2) { break; }
				}
				print "done";
			`,
			wantOut: []string{"1", "2", "3", "done"},
		},
		{
			name: "class, this, and inheritance with super",
			source: `
				class Store { fun buy(c) { print "$" + c; } }
				class Bakery > Store {
					fun __init__(t, p) { this.t = t; this.p = p; }
					fun sell() { super.buy(this.p); }
				}
				Bakery("rye", 2).sell();
			`,
			wantOut: []string{"$2"},
		},
		{
			name: "function and instance display forms",
			source: `
				class Point {}
				fun add(a, b) { return a + b; }
				print add;
				print Point();
			`,
			wantOut: []string{"<fn add: 2>", "<instance of Point>"},
		},
		{
			name:     "self-referential initializer is a static error",
			source:   `var x = x;`,
			wantErr:  true,
			wantDiag: "Can't read variable in its own initializer",
		},
		{
			name:     "non-numeric operand to a numeric operator is a runtime error",
			source:   `"a" - 1;`,
			wantErr:  true,
			wantDiag: "- Operator: Expected NUMBER",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runGolden(t, tc)
		})
	}
}

func TestGolden_ReplEchoesBareExpression(t *testing.T) {
	var out []string
	res := Run(`1 + 1`, true,
		func(s string) { out = append(out, s) },
		func(s string) { t.Fatalf("unexpected diagnostic: %s", s) },
		func(s string) { out = append(out, s) },
	)
	assert.False(t, res.HadError)
	assert.False(t, res.HadRuntimeError)
	assert.Len(t, out, 1)
	assert.Contains(t, out[0], "2")
}

func TestGolden_ReplDoesNotEchoNonExpressionStatement(t *testing.T) {
	var out []string
	res := Run(`var x = 1;`, true,
		func(s string) { out = append(out, s) },
		func(s string) { t.Fatalf("unexpected diagnostic: %s", s) },
		func(s string) { out = append(out, s) },
	)
	assert.False(t, res.HadError)
	assert.Empty(t, out)
}

func TestGolden_LexicalErrorStopsBeforeParsing(t *testing.T) {
	var diags []string
	res := Run(`"unterminated`, false,
		func(string) {},
		func(s string) { diags = append(diags, s) },
		nil,
	)
	assert.True(t, res.HadError)
	assert.False(t, res.HadRuntimeError)
	assert.Len(t, diags, 1)
}

func TestGolden_RuntimeErrorSetsHadRuntimeError(t *testing.T) {
	var diags []string
	res := Run(`print 1 / "a";`, false,
		func(string) {},
		func(s string) { diags = append(diags, s) },
		nil,
	)
	assert.False(t, res.HadError)
	assert.True(t, res.HadRuntimeError)
	assert.Len(t, diags, 1)
}

func TestSession_PersistsGlobalsAcrossLines(t *testing.T) {
	var out []string
	session := NewSession(func(s string) { out = append(out, s) })

	res := session.Run(`var x = 1;`, func(s string) { t.Fatalf("unexpected diagnostic: %s", s) }, nil)
	assert.False(t, res.HadError)

	res = session.Run(`x = x + 1;`, func(s string) { t.Fatalf("unexpected diagnostic: %s", s) }, nil)
	assert.False(t, res.HadError)

	res = session.Run(`print x;`, func(s string) { t.Fatalf("unexpected diagnostic: %s", s) }, nil)
	assert.False(t, res.HadError)
	assert.Equal(t, []string{"2"}, out)
}

func TestSession_FunctionDeclaredOnOneLineCallableOnTheNext(t *testing.T) {
	var out []string
	session := NewSession(func(s string) { out = append(out, s) })

	session.Run(`fun greet(name) { print "hi " + name; }`, func(s string) { t.Fatalf("unexpected diagnostic: %s", s) }, nil)
	session.Run(`greet("Ann");`, func(s string) { t.Fatalf("unexpected diagnostic: %s", s) }, nil)

	assert.Equal(t, []string{"hi Ann"}, out)
}

func TestGolden_MultipleSyntaxErrorsAreAllCollected(t *testing.T) {
	var diags []string
	res := Run(`
		var a = ;
		var b = ;
		var c = 3;
	`, false,
		func(string) {},
		func(s string) { diags = append(diags, s) },
		nil,
	)
	assert.True(t, res.HadError)
	assert.Len(t, diags, 2)
}
