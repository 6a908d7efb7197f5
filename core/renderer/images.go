// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/carbon/core"
	"github.com/devblok/carbon/gfx"
	"github.com/devblok/carbon/gfx/vkr"
	"github.com/devblok/carbon/model"
)

// swapImage is everything owned per swap-chain image
type swapImage struct {
	framebuffer   vk.Framebuffer
	uniform       vkr.Buffer
	descriptorSet vk.DescriptorSet
}

var uniformSize = uint(unsafe.Sizeof(model.Uniform{}))

func createFramebuffers(dev vk.Device, renderPass vk.RenderPass, sc *swapchain, images []swapImage, stack *gfx.ReleaseStack) error {
	for idx, view := range sc.views {
		attachments := []vk.ImageView{view}
		fci := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      renderPass,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           sc.extent.Width,
			Height:          sc.extent.Height,
			Layers:          1,
		}

		var framebuffer vk.Framebuffer
		if err := core.CheckResult(core.ErrResourceCreation, "vk.CreateFramebuffer", vk.CreateFramebuffer(dev, &fci, nil, &framebuffer)); err != nil {
			return errors.Wrapf(err, "image %d", idx)
		}
		images[idx].framebuffer = framebuffer
		stack.Defer(func() {
			vk.DestroyFramebuffer(dev, framebuffer, nil)
		})
	}
	return nil
}

// createUniformBuffers creates one host-visible uniform buffer per image,
// mapped for as long as the buffer lives.
func createUniformBuffers(dev vk.Device, ma *vkr.MemoryAllocator, images []swapImage, stack *gfx.ReleaseStack) error {
	for idx := range images {
		buffer, err := vkr.NewBuffer(dev, uniformSize, vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit), vkr.HostVisible, ma)
		if err != nil {
			return errors.Wrapf(err, "uniform buffer %d", idx)
		}
		stack.Push(&buffer)

		if _, err := buffer.Mem().Map(); err != nil {
			return errors.Wrapf(err, "uniform buffer %d", idx)
		}
		images[idx].uniform = buffer
	}
	return nil
}

// createDescriptorSets creates a pool sized for the images and points
// set i at uniform buffer i.
func createDescriptorSets(dev vk.Device, layout vk.DescriptorSetLayout, images []swapImage, stack *gfx.ReleaseStack) error {
	count := uint32(len(images))
	dpci := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       count,
		PoolSizeCount: 1,
		PPoolSizes: []vk.DescriptorPoolSize{{
			Type:            vk.DescriptorTypeUniformBuffer,
			DescriptorCount: count,
		}},
	}

	var descriptorPool vk.DescriptorPool
	if err := core.CheckResult(core.ErrResourceCreation, "vk.CreateDescriptorPool", vk.CreateDescriptorPool(dev, &dpci, nil, &descriptorPool)); err != nil {
		return err
	}
	stack.Defer(func() {
		vk.DestroyDescriptorPool(dev, descriptorPool, nil)
	})

	layouts := make([]vk.DescriptorSetLayout, count)
	for i := range layouts {
		layouts[i] = layout
	}
	dsai := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     descriptorPool,
		DescriptorSetCount: count,
		PSetLayouts:        layouts,
	}

	sets := make([]vk.DescriptorSet, count)
	if err := core.CheckResult(core.ErrResourceCreation, "vk.AllocateDescriptorSets", vk.AllocateDescriptorSets(dev, &dsai, &sets[0])); err != nil {
		return err
	}

	for idx := range images {
		images[idx].descriptorSet = sets[idx]
		writes := []vk.WriteDescriptorSet{{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          sets[idx],
			DstBinding:      0,
			DstArrayElement: 0,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			PBufferInfo: []vk.DescriptorBufferInfo{{
				Buffer: images[idx].uniform.Get(),
				Offset: 0,
				Range:  vk.DeviceSize(uniformSize),
			}},
		}}
		vk.UpdateDescriptorSets(dev, uint32(len(writes)), writes, 0, nil)
	}
	return nil
}
