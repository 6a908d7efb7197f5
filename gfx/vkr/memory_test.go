// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"testing"

	"github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/carbon/core"
)

func testAllocator() *MemoryAllocator {
	var props vk.PhysicalDeviceMemoryProperties
	props.MemoryTypeCount = 3
	props.MemoryTypes[0].PropertyFlags = DeviceLocal
	props.MemoryTypes[1].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)
	props.MemoryTypes[2].PropertyFlags = HostVisible | DeviceLocal
	return &MemoryAllocator{memProperties: props}
}

func TestFindMemoryType(t *testing.T) {
	c := qt.New(t)
	ma := testAllocator()

	idx, err := ma.findMemoryType(0b111, DeviceLocal)
	c.Assert(err, qt.IsNil)
	c.Assert(idx, qt.Equals, uint32(0))

	// visible but not coherent is skipped
	idx, err = ma.findMemoryType(0b111, HostVisible)
	c.Assert(err, qt.IsNil)
	c.Assert(idx, qt.Equals, uint32(2))

	// the filter excludes the first type
	idx, err = ma.findMemoryType(0b110, DeviceLocal)
	c.Assert(err, qt.IsNil)
	c.Assert(idx, qt.Equals, uint32(2))
}

func TestFindMemoryTypeMissing(t *testing.T) {
	c := qt.New(t)
	ma := testAllocator()

	_, err := ma.findMemoryType(0b011, HostVisible)
	c.Assert(err, qt.IsNotNil)
	c.Assert(errors.Is(err, core.ErrResourceCreation), qt.IsTrue)

	// types beyond the reported count are never considered
	_, err = ma.findMemoryType(0b1000, 0)
	c.Assert(err, qt.IsNotNil)
}

func TestMemoryWriteUnmapped(t *testing.T) {
	c := qt.New(t)

	var m Memory
	c.Assert(m.Mapped(), qt.IsFalse)
	c.Assert(m.Write([]byte{1, 2, 3, 4}), qt.ErrorMatches, "vkr: write to unmapped memory")
}
