package interp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdecook/plox/internal/lexer"
	"github.com/sdecook/plox/internal/parser"
	"github.com/sdecook/plox/internal/resolver"
)

type captureOut struct{ lines []string }

func (c *captureOut) Print(s string) { c.lines = append(c.lines, s) }

func runProgram(t *testing.T, src string) (*captureOut, Value, bool, error) {
	t.Helper()
	toks, diags := lexer.New(src).Scan()
	require.Empty(t, diags)
	stmts, pdiags := parser.New(toks).Parse()
	require.Empty(t, pdiags)
	locals, rdiags := resolver.Resolve(stmts)
	require.Empty(t, rdiags)

	out := &captureOut{}
	in := New(locals, out)
	v, echoed, err := in.Run(stmts)
	return out, v, echoed, err
}

func TestInterp_Arithmetic(t *testing.T) {
	out, _, _, err := runProgram(t, `print 1 + 2 * 3;`)
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, out.lines)
}

func TestInterp_StringConcat(t *testing.T) {
	out, _, _, err := runProgram(t, `print "foo" + "bar";`)
	require.NoError(t, err)
	assert.Equal(t, []string{"foobar"}, out.lines)
}

func TestInterp_ClosureCounter(t *testing.T) {
	out, _, _, err := runProgram(t, `
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
		print counter();
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, out.lines)
}

func TestInterp_ClassesAndInheritance(t *testing.T) {
	out, _, _, err := runProgram(t, `
		class Animal {
			fun __init__(name) { this.name = name; }
			fun speak() { print this.name + " makes a sound"; }
		}
		class Dog > Animal {
			fun speak() {
				super.speak();
				print this.name + " barks";
			}
		}
		var d = Dog("Rex");
		d.speak();
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rex makes a sound", "Rex barks"}, out.lines)
}

func TestInterp_WhileAndBreak(t *testing.T) {
	out, _, _, err := runProgram(t, `
		var i = 0;
		while (true) {
			if (i >= 3) { break; }
			print i;
			i = i + 1;
		}
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "2"}, out.lines)
}

func TestInterp_UndefinedVariableIsRuntimeError(t *testing.T) {
	_, _, _, err := runProgram(t, `print undefinedVar;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable")
}

func TestInterp_ArityMismatchIsRuntimeError(t *testing.T) {
	_, _, _, err := runProgram(t, `
		fun f(a, b) { return a + b; }
		f(1);
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected 2 arguments")
}

func TestInterp_UnknownFieldIsRuntimeError(t *testing.T) {
	_, _, _, err := runProgram(t, `
		class A {}
		var a = A();
		print a.missing;
	`)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "Undefined property"))
}

func TestInterp_DivisionByZeroFollowsIEEE754(t *testing.T) {
	out, _, _, err := runProgram(t, `
		print 1 / 0;
		print -1 / 0;
		print 0 / 0;
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"+Inf", "-Inf", "NaN"}, out.lines)
}

func TestInterp_MixedNumberStringConcat(t *testing.T) {
	out, _, _, err := runProgram(t, `
		print "count: " + 3;
		print 3 + " items";
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"count: 3", "3 items"}, out.lines)
}

func TestInterp_ReplEchoesBareExpression(t *testing.T) {
	_, v, echoed, err := runProgram(t, `1 + 1`)
	require.NoError(t, err)
	assert.True(t, echoed)
	assert.Equal(t, "2", v.String())
}

func TestInterp_DuplicateDeclarationInSameFrameIsRuntimeError(t *testing.T) {
	_, _, _, err := runProgram(t, `
		var a = 1;
		var a = 2;
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Already a variable named")
}

func TestInterp_DuplicateDeclarationInDifferentFramesIsFine(t *testing.T) {
	out, _, _, err := runProgram(t, `
		var a = "outer";
		{
			var a = "inner";
			print a;
		}
		print a;
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"inner", "outer"}, out.lines)
}

func TestInterp_NumericOperandErrorWording(t *testing.T) {
	_, _, _, err := runProgram(t, `"a" - 1;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "- Operator: Expected NUMBER")
}

func TestInterp_ZeroIsFalsy(t *testing.T) {
	out, _, _, err := runProgram(t, `
		if (0) { print "truthy"; } else { print "falsy"; }
		if (1) { print "truthy"; } else { print "falsy"; }
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"falsy", "truthy"}, out.lines)
}

func TestInterp_FunctionDisplayFormIncludesArity(t *testing.T) {
	out, _, _, err := runProgram(t, `
		fun add(a, b) { return a + b; }
		print add;
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"<fn add: 2>"}, out.lines)
}

func TestInterp_InstanceDisplayForm(t *testing.T) {
	out, _, _, err := runProgram(t, `
		class Point {}
		print Point();
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"<instance of Point>"}, out.lines)
}

func TestInterp_LogicalShortCircuit(t *testing.T) {
	out, _, _, err := runProgram(t, `
		fun noisy() { print "called"; return true; }
		print false and noisy();
		print true or noisy();
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"false", "true"}, out.lines)
}
