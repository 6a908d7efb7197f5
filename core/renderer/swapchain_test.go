// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"math"
	"testing"

	qt "github.com/frankban/quicktest"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/carbon/device"
)

func TestChooseSurfaceFormat(t *testing.T) {
	c := qt.New(t)

	preferred := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	unorm := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	rgba := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	c.Assert(chooseSurfaceFormat([]vk.SurfaceFormat{unorm, preferred, rgba}), qt.Equals, preferred)
	c.Assert(chooseSurfaceFormat([]vk.SurfaceFormat{rgba, unorm}), qt.Equals, rgba)
	c.Assert(chooseSurfaceFormat([]vk.SurfaceFormat{unorm}), qt.Equals, unorm)
}

func TestChoosePresentMode(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		modes []vk.PresentMode
		want  vk.PresentMode
	}{
		{[]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}, vk.PresentModeMailbox},
		{[]vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifo}, vk.PresentModeFifo},
		{[]vk.PresentMode{vk.PresentModeFifoRelaxed}, vk.PresentModeFifo},
		{nil, vk.PresentModeFifo},
	}
	for _, test := range tests {
		c.Check(choosePresentMode(test.modes), qt.Equals, test.want, qt.Commentf("%v", test.modes))
	}
}

func TestChooseExtent(t *testing.T) {
	c := qt.New(t)

	fixed := vk.SurfaceCapabilities{
		CurrentExtent: vk.Extent2D{Width: 640, Height: 480},
	}
	c.Assert(chooseExtent(fixed, 1920, 1080), qt.Equals, vk.Extent2D{Width: 640, Height: 480})

	openHeight := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: 640, Height: math.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 100, Height: 100},
		MaxImageExtent: vk.Extent2D{Width: 2000, Height: 1000},
	}
	c.Assert(chooseExtent(openHeight, 1920, 1080), qt.Equals, vk.Extent2D{Width: 1920, Height: 1000})

	open := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 100, Height: 100},
		MaxImageExtent: vk.Extent2D{Width: 2000, Height: 1000},
	}
	tests := []struct {
		name          string
		width, height int
		want          vk.Extent2D
	}{
		{"inside", 800, 600, vk.Extent2D{Width: 800, Height: 600}},
		{"too large", 4000, 3000, vk.Extent2D{Width: 2000, Height: 1000}},
		{"too small", 10, 20, vk.Extent2D{Width: 100, Height: 100}},
		{"negative", -5, 500, vk.Extent2D{Width: 100, Height: 500}},
	}
	for _, test := range tests {
		c.Run(test.name, func(c *qt.C) {
			c.Assert(chooseExtent(open, test.width, test.height), qt.Equals, test.want)
		})
	}
}

func TestChooseImageCount(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		min, max uint32
		want     uint32
	}{
		{2, 8, 3},
		{2, 0, 3},
		{3, 3, 3},
		{1, 2, 2},
	}
	for _, test := range tests {
		caps := vk.SurfaceCapabilities{MinImageCount: test.min, MaxImageCount: test.max}
		c.Check(chooseImageCount(caps), qt.Equals, test.want, qt.Commentf("min %d max %d", test.min, test.max))
	}
}

func TestChooseSharing(t *testing.T) {
	c := qt.New(t)

	var same device.QueueFamilyIndices
	same.SetGraphics(0)
	same.SetPresent(0)
	mode, families := chooseSharing(same)
	c.Assert(mode, qt.Equals, vk.SharingModeExclusive)
	c.Assert(families, qt.IsNil)

	var split device.QueueFamilyIndices
	split.SetGraphics(0)
	split.SetPresent(2)
	mode, families = chooseSharing(split)
	c.Assert(mode, qt.Equals, vk.SharingModeConcurrent)
	c.Assert(families, qt.DeepEquals, []uint32{0, 2})
}

func TestClamp(t *testing.T) {
	c := qt.New(t)

	c.Assert(clamp(5, 1, 10), qt.Equals, uint32(5))
	c.Assert(clamp(0, 1, 10), qt.Equals, uint32(1))
	c.Assert(clamp(11, 1, 10), qt.Equals, uint32(10))
}
