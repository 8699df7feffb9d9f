// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiberwork

import (
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates a non-blocking operation could not proceed
// immediately: the ready ring is momentarily full, for instance. It is a
// control-flow signal, not a failure, and callers should retry with
// backoff rather than propagate it.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// IsWouldBlock reports whether err indicates the operation would block.
func IsWouldBlock(err error) bool { return iox.IsWouldBlock(err) }

// AssertVerdict is the action an [AssertSink] requests after observing a
// programming-error assertion (§7: "reported via a sink that returns one
// of {continue, trap, abort}; the caller honours the verdict").
type AssertVerdict int

const (
	// AssertContinue ignores the assertion and resumes execution. Only
	// safe for assertions that describe a recoverable inefficiency.
	AssertContinue AssertVerdict = iota
	// AssertTrap triggers a debugger breakpoint (runtime.Breakpoint).
	AssertTrap
	// AssertAbort panics with the assertion's message and a stack trace.
	AssertAbort
)

// AssertSink decides how the scheduler reacts to a programming-error
// assertion: yielding outside a fiber, double-unlocking a spin lock,
// re-yielding on an already-fired chain, or submitting work with a nil
// function.
type AssertSink interface {
	Assert(msg string) AssertVerdict
}

// DefaultAssertSink aborts every assertion, matching the spec's "in debug,
// abort with a stack trace; in release, undefined" by always treating this
// module as the debug build (Go has no separate release/debug toolchain
// split at the language level, so the safer behavior is unconditional).
type DefaultAssertSink struct{}

// Assert always returns AssertAbort.
func (DefaultAssertSink) Assert(msg string) AssertVerdict { return AssertAbort }

// AssertionError is the panic value raised by [Engine] when an
// [AssertSink] returns [AssertAbort].
type AssertionError struct {
	Msg   string
	Stack []byte
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("fiberwork: assertion failed: %s", e.Msg)
}

// assertf evaluates the assertion sink for a formatted programming-error
// message and honours its verdict.
func assertf(sink AssertSink, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	switch sink.Assert(msg) {
	case AssertContinue:
		return
	case AssertTrap:
		breakpoint()
	case AssertAbort:
		panic(&AssertionError{Msg: msg, Stack: dumpStackTrace()})
	default:
		panic(&AssertionError{Msg: msg, Stack: dumpStackTrace()})
	}
}
