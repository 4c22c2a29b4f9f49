package interp

// signal is how executing a statement can unwind more than one level
// without that unwinding being a user-visible error: a return propagates out
// of nested blocks to the enclosing call, a break propagates out to the
// enclosing loop.
type signal interface{ signalNode() }

type returnSignal struct{ value Value }

func (returnSignal) signalNode() {}

type breakSignal struct{}

func (breakSignal) signalNode() {}
