// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package gfx defines rendering related features that renderers must implement.
package gfx

// Releasable defines any memory-occupying item that can be freed.
type Releasable interface {

	// Release releases memory occupied by the implementing structure.
	Release()
}

// ReleaseFunc adapts a plain function to Releasable.
type ReleaseFunc func()

// Release implements Releasable.
func (f ReleaseFunc) Release() {
	f()
}

// ReleaseStack collects resources as they are created and releases
// them in reverse order. The zero value is ready to use.
type ReleaseStack struct {
	items []Releasable
}

// Push adds a resource that will be released before every
// resource pushed earlier.
func (s *ReleaseStack) Push(r Releasable) {
	s.items = append(s.items, r)
}

// Defer pushes a release function.
func (s *ReleaseStack) Defer(f func()) {
	s.Push(ReleaseFunc(f))
}

// Len returns the number of resources held.
func (s *ReleaseStack) Len() int {
	return len(s.items)
}

// Release releases everything held, last pushed first,
// and leaves the stack empty.
func (s *ReleaseStack) Release() {
	for i := len(s.items) - 1; i >= 0; i-- {
		s.items[i].Release()
		s.items[i] = nil
	}
	s.items = s.items[:0]
}
