// Package generation discards results of asynchronous work whose requester
// has gone away. A Counter hands out Tokens; Invalidate makes every
// previously issued Token stale.
package generation

import "sync/atomic"

// Counter is safe for concurrent use. The zero value is ready.
type Counter struct {
	n atomic.Uint64
}

// Token captures the current generation.
func (c *Counter) Token() Token {
	return Token{c: c, gen: c.n.Load()}
}

// Invalidate bumps the generation and returns the new value.
func (c *Counter) Invalidate() uint64 {
	return c.n.Add(1)
}

// Current returns the current generation.
func (c *Counter) Current() uint64 {
	return c.n.Load()
}

// Token is a snapshot of a Counter.
type Token struct {
	c   *Counter
	gen uint64
}

// Valid reports whether no Invalidate happened since the token was issued.
// The zero Token is never valid.
func (t Token) Valid() bool {
	return t.c != nil && t.c.n.Load() == t.gen
}

// Generation returns the generation the token was issued at.
func (t Token) Generation() uint64 {
	return t.gen
}

// Guard wraps fn so it only runs while t is valid. It reports whether fn ran.
func Guard[T any](t Token, fn func(T)) func(T) bool {
	return func(v T) bool {
		if !t.Valid() {
			return false
		}
		fn(v)
		return true
	}
}
