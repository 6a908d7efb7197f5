// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package device picks the physical GPU to render with and opens
// a logical device with its graphics and present queues.
package device

import (
	"sort"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/carbon/core"
)

// ErrNoSuitableGPU is returned when no physical device scores above zero
var ErrNoSuitableGPU = core.EnvironmentError(errors.New("failed to find a suitable GPU"))

// PhysicalDeviceInfo describes available physical properties of a rendering device
type PhysicalDeviceInfo struct {
	ID            int
	VendorID      int
	DriverVersion int
	Name          string
	Type          string
	Invalid       bool
	Extensions    []string
	Layers        []string
	Memory        vk.DeviceSize
}

// QueueFamilyIndices holds the queue families the renderer submits to
type QueueFamilyIndices struct {
	Graphics uint32
	Present  uint32

	hasGraphics bool
	hasPresent  bool
}

// SetGraphics records the graphics family
func (q *QueueFamilyIndices) SetGraphics(idx uint32) {
	q.Graphics = idx
	q.hasGraphics = true
}

// SetPresent records the present family
func (q *QueueFamilyIndices) SetPresent(idx uint32) {
	q.Present = idx
	q.hasPresent = true
}

// IsComplete tells if both families were found
func (q QueueFamilyIndices) IsComplete() bool {
	return q.hasGraphics && q.hasPresent
}

// Unique returns the distinct family indices in ascending order
func (q QueueFamilyIndices) Unique() []uint32 {
	if q.Graphics == q.Present {
		return []uint32{q.Graphics}
	}
	families := []uint32{q.Graphics, q.Present}
	sort.Slice(families, func(i, j int) bool { return families[i] < families[j] })
	return families
}

// Shared tells if graphics and present go through the same family
func (q QueueFamilyIndices) Shared() bool {
	return q.Graphics == q.Present
}

// QueueFamily is what the selector needs to know about a queue family
type QueueFamily struct {
	Graphics bool
	Present  bool
}

// FindQueueFamilies picks the first graphics family, and presents through
// it if it can. Otherwise the first family able to present is used.
func FindQueueFamilies(families []QueueFamily) QueueFamilyIndices {
	var indices QueueFamilyIndices
	for i, f := range families {
		if f.Graphics {
			indices.SetGraphics(uint32(i))
			if f.Present {
				indices.SetPresent(uint32(i))
				return indices
			}
			break
		}
	}
	for i, f := range families {
		if f.Present {
			indices.SetPresent(uint32(i))
			break
		}
	}
	return indices
}

// Candidate is a physical device as seen by the selector
type Candidate struct {
	Physical vk.PhysicalDevice
	Name     string

	Discrete            bool
	MaxImageDimension2D uint32
	GeometryShader      bool
	SwapchainExtension  bool
	Families            QueueFamilyIndices
	FormatCount         int
	PresentModeCount    int
	Capabilities        vk.SurfaceCapabilities
}

// Suitable tells if the device can render to the surface at all
func (c Candidate) Suitable() bool {
	return c.GeometryShader &&
		c.SwapchainExtension &&
		c.Families.IsComplete() &&
		c.FormatCount > 0 &&
		c.PresentModeCount > 0
}

// Score ranks the device. Unsuitable devices score 0, discrete GPUs get
// a head start of 1000 and larger image dimensions rank higher.
func (c Candidate) Score() uint32 {
	if !c.Suitable() {
		return 0
	}
	var score uint32
	if c.Discrete {
		score += 1000
	}
	return score + c.MaxImageDimension2D
}

// Record is the outcome of device selection
type Record struct {
	Physical     vk.PhysicalDevice
	Name         string
	Families     QueueFamilyIndices
	Capabilities vk.SurfaceCapabilities
}

// Choose returns the best scoring candidate, ties go to the one
// enumerated first.
func Choose(candidates []Candidate) (Record, error) {
	var (
		best      Candidate
		bestScore uint32
	)
	for _, c := range candidates {
		if score := c.Score(); score > bestScore {
			best, bestScore = c, score
		}
	}
	if bestScore == 0 {
		return Record{}, ErrNoSuitableGPU
	}
	return Record{
		Physical:     best.Physical,
		Name:         best.Name,
		Families:     best.Families,
		Capabilities: best.Capabilities,
	}, nil
}

// TypeName returns a readable device type
func TypeName(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "Integrated GPU"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "Discrete GPU"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "Virtual GPU"
	case vk.PhysicalDeviceTypeCpu:
		return "CPU"
	}
	return "Other"
}
