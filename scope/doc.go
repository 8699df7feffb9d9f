// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package scope implements the job system's scoped-deferred-cleanup
// record (spec §4.6, §3 "Defer record"): a per-fiber stack of cleanup
// blocks run in reverse of declaration order when the fiber's work
// function returns.
//
// The original engine implements this with the address-of-label GNU C
// extension: a defer record holds the address to jump to next, and a
// "live guard" distinguishes reached blocks (pushed onto the chain) from
// unreached ones (never pushed). Go's own built-in defer statement
// already is a guard-based scope guard — a deferred call is only ever
// registered when control actually reaches the defer statement — so the
// guard field has no Go equivalent to carry: construction IS the "reached"
// signal. [Scope] exists as an explicit, fiber-owned analogue of that
// same discipline for call sites that need a composable, inspectable
// cleanup stack rather than the lexical built-in: the scheduler runs each
// fiber's Scope when its work function returns, and work functions reach
// it through fiberwork.ScopeFromContext.
package scope
