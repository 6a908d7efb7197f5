// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/carbon/core"
	"github.com/devblok/carbon/gfx"
)

// frameSlot synchronises one frame in flight
type frameSlot struct {
	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore
	inFlight       vk.Fence
}

// createFrameSlots creates n slots. Fences start signalled so the first
// wait on each slot returns at once.
func createFrameSlots(dev vk.Device, n int, stack *gfx.ReleaseStack) ([]frameSlot, error) {
	sci := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	fci := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}

	slots := make([]frameSlot, n)
	for idx := range slots {
		var (
			imageAvailable vk.Semaphore
			renderFinished vk.Semaphore
			fence          vk.Fence
		)
		if err := core.CheckResult(core.ErrResourceCreation, "vk.CreateSemaphore", vk.CreateSemaphore(dev, &sci, nil, &imageAvailable)); err != nil {
			return nil, errors.Wrapf(err, "frame %d", idx)
		}
		stack.Defer(func() { vk.DestroySemaphore(dev, imageAvailable, nil) })

		if err := core.CheckResult(core.ErrResourceCreation, "vk.CreateSemaphore", vk.CreateSemaphore(dev, &sci, nil, &renderFinished)); err != nil {
			return nil, errors.Wrapf(err, "frame %d", idx)
		}
		stack.Defer(func() { vk.DestroySemaphore(dev, renderFinished, nil) })

		if err := core.CheckResult(core.ErrResourceCreation, "vk.CreateFence", vk.CreateFence(dev, &fci, nil, &fence)); err != nil {
			return nil, errors.Wrapf(err, "frame %d", idx)
		}
		stack.Defer(func() { vk.DestroyFence(dev, fence, nil) })

		slots[idx] = frameSlot{
			imageAvailable: imageAvailable,
			renderFinished: renderFinished,
			inFlight:       fence,
		}
	}
	return slots, nil
}
