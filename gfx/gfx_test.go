// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/carbon/gfx"
)

type named struct {
	name  string
	order *[]string
}

func (n named) Release() {
	*n.order = append(*n.order, n.name)
}

func TestReleaseStackOrder(t *testing.T) {
	c := qt.New(t)

	var (
		order []string
		stack gfx.ReleaseStack
	)
	stack.Push(named{"device", &order})
	stack.Defer(func() { order = append(order, "swapchain") })
	stack.Push(named{"views", &order})
	c.Assert(stack.Len(), qt.Equals, 3)

	stack.Release()
	c.Assert(order, qt.DeepEquals, []string{"views", "swapchain", "device"})
	c.Assert(stack.Len(), qt.Equals, 0)

	// a released stack is empty and can be reused
	stack.Release()
	c.Assert(order, qt.HasLen, 3)
	stack.Push(named{"framebuffers", &order})
	stack.Release()
	c.Assert(order[3], qt.Equals, "framebuffers")
}

func TestReleaseStackNested(t *testing.T) {
	c := qt.New(t)

	var (
		order        []string
		outer, inner gfx.ReleaseStack
	)
	outer.Push(named{"instance", &order})
	inner.Push(named{"image views", &order})
	inner.Push(named{"pipeline", &order})
	outer.Push(&inner)
	outer.Release()

	c.Assert(order, qt.DeepEquals, []string{"pipeline", "image views", "instance"})
}
