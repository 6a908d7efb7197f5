// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/carbon/core"
)

// Transfer records and submits one-shot transfer commands on a queue
// and waits for them to finish.
type Transfer struct {
	Device vk.Device
	Pool   vk.CommandPool
	Queue  vk.Queue
}

func (t Transfer) begin() (vk.CommandBuffer, error) {
	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		Level:              vk.CommandBufferLevelPrimary,
		CommandPool:        t.Pool,
		CommandBufferCount: 1,
	}

	commandBuffers := make([]vk.CommandBuffer, 1)
	if err := core.CheckResult(core.ErrResourceCreation, "vk.AllocateCommandBuffers", vk.AllocateCommandBuffers(t.Device, &cbai, commandBuffers)); err != nil {
		return nil, err
	}

	cbbi := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if err := core.CheckResult(core.ErrResourceCreation, "vk.BeginCommandBuffer", vk.BeginCommandBuffer(commandBuffers[0], &cbbi)); err != nil {
		vk.FreeCommandBuffers(t.Device, t.Pool, 1, commandBuffers)
		return nil, err
	}
	return commandBuffers[0], nil
}

func (t Transfer) end(commandBuffer vk.CommandBuffer) error {
	defer vk.FreeCommandBuffers(t.Device, t.Pool, 1, []vk.CommandBuffer{commandBuffer})

	if err := core.CheckResult(core.ErrResourceCreation, "vk.EndCommandBuffer", vk.EndCommandBuffer(commandBuffer)); err != nil {
		return err
	}

	submit := []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{commandBuffer},
	}}
	if err := core.CheckResult(core.ErrResourceCreation, "vk.QueueSubmit", vk.QueueSubmit(t.Queue, 1, submit, vk.NullFence)); err != nil {
		return err
	}
	return core.CheckResult(core.ErrResourceCreation, "vk.QueueWaitIdle", vk.QueueWaitIdle(t.Queue))
}

// CopyBuffer copies size bytes from the start of src to the start of dst
// and returns once the copy completed.
func (t Transfer) CopyBuffer(src, dst vk.Buffer, size uint) error {
	commandBuffer, err := t.begin()
	if err != nil {
		return err
	}

	vk.CmdCopyBuffer(commandBuffer, src, dst, 1, []vk.BufferCopy{{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      vk.DeviceSize(size),
	}})

	return t.end(commandBuffer)
}

// Upload creates a device-local buffer with the given usage holding data.
// The bytes go through a host-visible staging buffer which is released
// before returning.
func Upload(t Transfer, ma *MemoryAllocator, usage vk.BufferUsageFlags, data []byte) (Buffer, error) {
	size := uint(len(data))

	staging, err := NewBuffer(t.Device, size, vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit), HostVisible, ma)
	if err != nil {
		return Buffer{}, err
	}
	defer staging.Release()

	if _, err := staging.Mem().Map(); err != nil {
		return Buffer{}, err
	}
	if err := staging.Mem().Write(data); err != nil {
		return Buffer{}, err
	}
	staging.Mem().Unmap()

	buffer, err := NewBuffer(t.Device, size, usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit), DeviceLocal, ma)
	if err != nil {
		return Buffer{}, err
	}

	if err := t.CopyBuffer(staging.Get(), buffer.Get(), size); err != nil {
		buffer.Release()
		return Buffer{}, err
	}
	return buffer, nil
}
