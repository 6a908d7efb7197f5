// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/carbon/core"
	"github.com/devblok/carbon/device"
)

func families(graphics, present uint32) device.QueueFamilyIndices {
	var f device.QueueFamilyIndices
	f.SetGraphics(graphics)
	f.SetPresent(present)
	return f
}

func suitable(name string, discrete bool, dim uint32) device.Candidate {
	return device.Candidate{
		Name:                name,
		Discrete:            discrete,
		MaxImageDimension2D: dim,
		GeometryShader:      true,
		SwapchainExtension:  true,
		Families:            families(0, 0),
		FormatCount:         2,
		PresentModeCount:    3,
	}
}

func TestScore(t *testing.T) {
	c := qt.New(t)

	c.Assert(suitable("integrated", false, 16384).Score(), qt.Equals, uint32(16384))
	c.Assert(suitable("discrete", true, 16384).Score(), qt.Equals, uint32(17384))
}

func TestScoreUnsuitable(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*device.Candidate)
	}{
		{"no geometry shader", func(d *device.Candidate) { d.GeometryShader = false }},
		{"no swapchain extension", func(d *device.Candidate) { d.SwapchainExtension = false }},
		{"no present family", func(d *device.Candidate) {
			var f device.QueueFamilyIndices
			f.SetGraphics(0)
			d.Families = f
		}},
		{"no graphics family", func(d *device.Candidate) {
			var f device.QueueFamilyIndices
			f.SetPresent(1)
			d.Families = f
		}},
		{"no surface formats", func(d *device.Candidate) { d.FormatCount = 0 }},
		{"no present modes", func(d *device.Candidate) { d.PresentModeCount = 0 }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := qt.New(t)
			d := suitable("gpu", true, 8192)
			test.modify(&d)
			c.Assert(d.Suitable(), qt.IsFalse)
			c.Assert(d.Score(), qt.Equals, uint32(0))
		})
	}
}

func TestChoose(t *testing.T) {
	c := qt.New(t)

	broken := suitable("broken", true, 32768)
	broken.GeometryShader = false

	record, err := device.Choose([]device.Candidate{
		suitable("integrated", false, 16384),
		broken,
		suitable("discrete", true, 16384),
	})
	c.Assert(err, qt.IsNil)
	c.Assert(record.Name, qt.Equals, "discrete")
}

func TestChooseTie(t *testing.T) {
	c := qt.New(t)

	record, err := device.Choose([]device.Candidate{
		suitable("first", false, 8192),
		suitable("second", false, 8192),
	})
	c.Assert(err, qt.IsNil)
	c.Assert(record.Name, qt.Equals, "first")
}

func TestChooseNone(t *testing.T) {
	c := qt.New(t)

	broken := suitable("broken", true, 32768)
	broken.PresentModeCount = 0

	_, err := device.Choose([]device.Candidate{broken})
	c.Assert(errors.Is(err, device.ErrNoSuitableGPU), qt.IsTrue)
	c.Assert(errors.Is(err, core.ErrEnvironment), qt.IsTrue)

	_, err = device.Choose(nil)
	c.Assert(errors.Is(err, device.ErrNoSuitableGPU), qt.IsTrue)
}

func TestFindQueueFamilies(t *testing.T) {
	tests := []struct {
		name     string
		families []device.QueueFamily
		complete bool
		graphics uint32
		present  uint32
	}{{
		name:     "shared family",
		families: []device.QueueFamily{{Graphics: true, Present: true}},
		complete: true,
	}, {
		name: "separate present",
		families: []device.QueueFamily{
			{Graphics: false, Present: false},
			{Graphics: true, Present: false},
			{Graphics: false, Present: true},
		},
		complete: true,
		graphics: 1,
		present:  2,
	}, {
		name: "present before graphics",
		families: []device.QueueFamily{
			{Present: true},
			{Graphics: true},
		},
		complete: true,
		graphics: 1,
		present:  0,
	}, {
		name:     "no present",
		families: []device.QueueFamily{{Graphics: true}},
	}, {
		name: "no families",
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := qt.New(t)
			f := device.FindQueueFamilies(test.families)
			c.Assert(f.IsComplete(), qt.Equals, test.complete)
			if test.complete {
				c.Assert(f.Graphics, qt.Equals, test.graphics)
				c.Assert(f.Present, qt.Equals, test.present)
			}
		})
	}
}

func TestQueueCreateInfos(t *testing.T) {
	c := qt.New(t)

	shared := device.QueueCreateInfos(families(0, 0))
	c.Assert(shared, qt.HasLen, 1)
	c.Assert(shared[0].QueueFamilyIndex, qt.Equals, uint32(0))
	c.Assert(shared[0].QueueCount, qt.Equals, uint32(1))
	c.Assert(shared[0].PQueuePriorities, qt.DeepEquals, []float32{1})

	separate := device.QueueCreateInfos(families(2, 1))
	c.Assert(separate, qt.HasLen, 2)
	c.Assert(separate[0].QueueFamilyIndex, qt.Equals, uint32(1))
	c.Assert(separate[1].QueueFamilyIndex, qt.Equals, uint32(2))
	for _, info := range separate {
		c.Assert(info.SType, qt.Equals, vk.StructureTypeDeviceQueueCreateInfo)
	}
}

func TestTypeName(t *testing.T) {
	c := qt.New(t)

	c.Assert(device.TypeName(vk.PhysicalDeviceTypeDiscreteGpu), qt.Equals, "Discrete GPU")
	c.Assert(device.TypeName(vk.PhysicalDeviceTypeCpu), qt.Equals, "CPU")
	c.Assert(device.TypeName(vk.PhysicalDeviceTypeOther), qt.Equals, "Other")
}
