// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"encoding/binary"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/carbon/core"
)

func TestSliceUint32(t *testing.T) {
	c := qt.New(t)

	data := []byte{0x03, 0x02, 0x23, 0x07, 0x01, 0x00, 0x00, 0x00}
	words := core.SliceUint32(data)
	c.Assert(words, qt.HasLen, 2)
	c.Assert(words[0], qt.Equals, binary.LittleEndian.Uint32(data[:4]))
	c.Assert(words[1], qt.Equals, uint32(1))

	c.Assert(core.SliceUint32(nil), qt.HasLen, 0)
	c.Assert(core.SliceUint32([]byte{1, 2, 3}), qt.HasLen, 0)
}

func TestBytes(t *testing.T) {
	c := qt.New(t)

	indices := []uint16{0, 1, 2, 2, 3, 0}
	raw := core.Bytes(indices)
	c.Assert(raw, qt.HasLen, 12)
	for i, idx := range indices {
		c.Assert(binary.LittleEndian.Uint16(raw[i*2:]), qt.Equals, idx)
	}

	c.Assert(core.Bytes([]uint32{}), qt.IsNil)
}

func TestSafeStrings(t *testing.T) {
	c := qt.New(t)

	c.Assert(core.SafeString("VK_KHR_swapchain"), qt.Equals, "VK_KHR_swapchain\x00")
	c.Assert(core.SafeString("VK_KHR_swapchain\x00"), qt.Equals, "VK_KHR_swapchain\x00")
	c.Assert(core.SafeStrings([]string{"a", "b\x00"}), qt.DeepEquals, []string{"a\x00", "b\x00"})
}

func TestMissingName(t *testing.T) {
	c := qt.New(t)

	available := []string{"VK_KHR_surface", "VK_KHR_xcb_surface\x00"}

	_, missing := core.MissingName(available, []string{"VK_KHR_surface\x00", "VK_KHR_xcb_surface"})
	c.Assert(missing, qt.IsFalse)

	name, missing := core.MissingName(available, []string{"VK_KHR_surface", core.DebugReportExtension})
	c.Assert(missing, qt.IsTrue)
	c.Assert(name, qt.Equals, core.DebugReportExtension)
}

func BenchmarkSliceUint32Small(b *testing.B) {
	data := make([]byte, 100)
	for idx := 0; idx < b.N; idx++ {
		core.SliceUint32(data)
	}
}

func BenchmarkSliceUint32Medium(b *testing.B) {
	data := make([]byte, 1000)
	for idx := 0; idx < b.N; idx++ {
		core.SliceUint32(data)
	}
}

func BenchmarkSliceUint32Big(b *testing.B) {
	data := make([]byte, 100000)
	for idx := 0; idx < b.N; idx++ {
		core.SliceUint32(data)
	}
}
