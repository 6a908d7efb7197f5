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
	"github.com/devblok/carbon/model"
)

// clearColor is opaque white
var clearColor = []float32{1, 1, 1, 1}

func createCommandPool(dev vk.Device, family uint32, stack *gfx.ReleaseStack) (vk.CommandPool, error) {
	cpci := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
	}

	var commandPool vk.CommandPool
	if err := core.CheckResult(core.ErrResourceCreation, "vk.CreateCommandPool", vk.CreateCommandPool(dev, &cpci, nil, &commandPool)); err != nil {
		return nil, err
	}
	stack.Defer(func() {
		vk.DestroyCommandPool(dev, commandPool, nil)
	})
	return commandPool, nil
}

func allocateCommandBuffers(dev vk.Device, pool vk.CommandPool, count int, stack *gfx.ReleaseStack) ([]vk.CommandBuffer, error) {
	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}

	commandBuffers := make([]vk.CommandBuffer, count)
	if err := core.CheckResult(core.ErrResourceCreation, "vk.AllocateCommandBuffers", vk.AllocateCommandBuffers(dev, &cbai, commandBuffers)); err != nil {
		return nil, err
	}
	stack.Defer(func() {
		vk.FreeCommandBuffers(dev, pool, uint32(len(commandBuffers)), commandBuffers)
	})
	return commandBuffers, nil
}

// drawRecording is what a command buffer needs to draw the quad into one image
type drawRecording struct {
	renderPass    vk.RenderPass
	framebuffer   vk.Framebuffer
	extent        vk.Extent2D
	pipeline      vk.Pipeline
	layout        vk.PipelineLayout
	vertexBuffer  vk.Buffer
	indexBuffer   vk.Buffer
	descriptorSet vk.DescriptorSet
}

func recordCommandBuffer(commandBuffer vk.CommandBuffer, r drawRecording) error {
	cbbi := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	if err := core.CheckResult(core.ErrResourceCreation, "vk.BeginCommandBuffer", vk.BeginCommandBuffer(commandBuffer, &cbbi)); err != nil {
		return err
	}

	rpbi := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  r.renderPass,
		Framebuffer: r.framebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: r.extent,
		},
		ClearValueCount: 1,
		PClearValues:    []vk.ClearValue{vk.NewClearValue(clearColor)},
	}

	vk.CmdBeginRenderPass(commandBuffer, &rpbi, vk.SubpassContentsInline)
	vk.CmdBindPipeline(commandBuffer, vk.PipelineBindPointGraphics, r.pipeline)
	vk.CmdBindVertexBuffers(commandBuffer, 0, 1, []vk.Buffer{r.vertexBuffer}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(commandBuffer, r.indexBuffer, 0, vk.IndexTypeUint16)
	vk.CmdBindDescriptorSets(commandBuffer, vk.PipelineBindPointGraphics, r.layout, 0, 1, []vk.DescriptorSet{r.descriptorSet}, 0, nil)
	vk.CmdDrawIndexed(commandBuffer, uint32(len(model.QuadIndices)), 1, 0, 0, 0)
	vk.CmdEndRenderPass(commandBuffer)

	return core.CheckResult(core.ErrResourceCreation, "vk.EndCommandBuffer", vk.EndCommandBuffer(commandBuffer))
}

// recordCommandBuffers records buffer i against framebuffer i and
// descriptor set i. Recording happens once per swap-chain.
func recordCommandBuffers(commandBuffers []vk.CommandBuffer, base drawRecording, images []swapImage) error {
	for idx, commandBuffer := range commandBuffers {
		r := base
		r.framebuffer = images[idx].framebuffer
		r.descriptorSet = images[idx].descriptorSet
		if err := recordCommandBuffer(commandBuffer, r); err != nil {
			return errors.Wrapf(err, "command buffer %d", idx)
		}
	}
	return nil
}
