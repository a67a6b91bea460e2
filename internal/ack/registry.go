// Package ack mints opaque 64-bit handles for still-pending message
// confirmations handed across the foreign-runtime boundary.
package ack

import (
	"sync"
	"sync/atomic"
)

// Registry maps opaque handles to the native tokens they were minted for.
// Handles are never zero and never reused within a process.
type Registry struct {
	next   atomic.Uint64
	tokens sync.Map // map[uint64]any
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register mints a handle for token. The token stays registered until
// Release is called with the returned handle.
func (r *Registry) Register(token any) uint64 {
	h := r.next.Add(1)
	r.tokens.Store(h, token)
	return h
}

// Resolve returns the token registered under h, if any.
func (r *Registry) Resolve(h uint64) (any, bool) {
	return r.tokens.Load(h)
}

// Release removes h from the registry and returns the token it referenced.
func (r *Registry) Release(h uint64) (any, bool) {
	return r.tokens.LoadAndDelete(h)
}

// Len reports the number of outstanding handles.
func (r *Registry) Len() int {
	n := 0
	r.tokens.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}
