// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package vkr implements Vulkan buffers and the memory behind them.
package vkr

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/carbon/core"
)

// Memory property sets used by the renderer
const (
	HostVisible = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	DeviceLocal = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
)

// NewBuffer creates, configures, allocates and binds a new buffer.
func NewBuffer(dev vk.Device, size uint, usage vk.BufferUsageFlags, prop vk.MemoryPropertyFlags, ma *MemoryAllocator) (Buffer, error) {
	createInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	var buffer vk.Buffer
	if err := core.CheckResult(core.ErrResourceCreation, "vk.CreateBuffer", vk.CreateBuffer(dev, &createInfo, nil, &buffer)); err != nil {
		return Buffer{}, err
	}

	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(dev, buffer, &req)
	req.Deref()

	memory, err := ma.Malloc(req, prop)
	if err != nil {
		vk.DestroyBuffer(dev, buffer, nil)
		return Buffer{}, err
	}

	if err := core.CheckResult(core.ErrResourceCreation, "vk.BindBufferMemory", vk.BindBufferMemory(dev, buffer, memory.Get(), vk.DeviceSize(memory.Offset()))); err != nil {
		vk.DestroyBuffer(dev, buffer, nil)
		memory.Release()
		return Buffer{}, err
	}

	return Buffer{
		device: dev,
		buffer: buffer,
		size:   size,
		memory: memory,
	}, nil
}

// Buffer implements a generic vulkan buffer.
type Buffer struct {
	device vk.Device
	buffer vk.Buffer
	size   uint

	memory Memory
}

// Mem returns the Memory that the buffer is based on.
func (b *Buffer) Mem() *Memory {
	return &b.memory
}

// Get returns the vulkan Buffer handle.
func (b *Buffer) Get() vk.Buffer {
	return b.buffer
}

// Size returns the requested size of the buffer, which may be
// smaller than the memory behind it.
func (b *Buffer) Size() uint {
	return b.size
}

// Release destroys the buffer and memory asociated with it.
func (b *Buffer) Release() {
	vk.DestroyBuffer(b.device, b.buffer, nil)
	b.memory.Release()
}
